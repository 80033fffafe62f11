package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/selvaalegre/portal/internal/app/models/dto"
	"github.com/selvaalegre/portal/internal/app/services"
	"github.com/selvaalegre/portal/internal/middleware"
)

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// DashboardController serves the landing summary and the health check
type DashboardController struct {
	dashboardService services.DashboardService
	db               Pinger
}

// NewDashboardController creates a new DashboardController
func NewDashboardController(dashboardService services.DashboardService, db Pinger) *DashboardController {
	return &DashboardController{dashboardService: dashboardService, db: db}
}

// GetDashboard returns the caller's summary
// @Summary Dashboard
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.DashboardResponse}
// @Router /dashboard [get]
func (c *DashboardController) GetDashboard(ctx *gin.Context) {
	user, ok := caller(ctx)
	if !ok {
		return
	}

	summary, err := c.dashboardService.Build(ctx.Request.Context(), user)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(summary))
}

// Health reports whether the database is reachable
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} dto.APIResponse
// @Failure 503 {object} dto.ErrorResponse "Database unreachable"
// @Router /health [get]
func (c *DashboardController) Health(ctx *gin.Context) {
	pingCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	if c.db != nil {
		if err := c.db.Ping(pingCtx); err != nil {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Database unreachable")
			ctx.JSON(http.StatusServiceUnavailable, dto.NewErrorResponse(errorDetail))
			return
		}
	}
	ctx.JSON(http.StatusOK, dto.NewInfoResponse("ok"))
}
