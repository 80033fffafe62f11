// Package controllers handles HTTP request handling
package controllers

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/selvaalegre/portal/internal/app/models"
	"github.com/selvaalegre/portal/internal/app/models/dto"
	"github.com/selvaalegre/portal/internal/middleware"
)

// caller returns the authenticated user or writes a 401.
func caller(ctx *gin.Context) (*models.User, bool) {
	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")
		ctx.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
		return nil, false
	}
	return user, true
}

// optionalFile returns the uploaded file under name, or nil when none was sent.
func optionalFile(ctx *gin.Context, name string) (*multipart.FileHeader, error) {
	file, err := ctx.FormFile(name)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, err
	}
	return file, nil
}
