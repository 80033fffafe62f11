package helpers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/selvaalegre/portal/internal/pkg/apperrors"
)

// ParseIDParam reads a positive integer path parameter.
func ParseIDParam(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError(name, "invalid "+name)
	}
	return id, nil
}

// ParseOptionalIntQuery reads an integer query parameter. ok is false when it is absent.
func ParseOptionalIntQuery(c *gin.Context, name string) (value int, ok bool, err error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return 0, false, nil
	}
	value, err = strconv.Atoi(raw)
	if err != nil {
		return 0, false, apperrors.NewValidationError(name, name+" must be an integer")
	}
	return value, true, nil
}

// ParseOptionalBoolQuery reads a boolean query parameter, nil when absent.
func ParseOptionalBoolQuery(c *gin.Context, name string) (*bool, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, apperrors.NewValidationError(name, name+" must be true or false")
	}
	return &v, nil
}
