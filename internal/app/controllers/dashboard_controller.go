package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yigit/skillmart/internal/app/models"
	"github.com/yigit/skillmart/internal/app/models/dto"
	"github.com/yigit/skillmart/internal/middleware"
	"github.com/yigit/skillmart/internal/pkg/helpers"
)

// DashboardService aggregates the profile page
type DashboardService interface {
	Get(ctx context.Context, page, size int) (*models.Dashboard, error)
}

// DashboardController handles the caller's profile and wallet page
type DashboardController struct {
	dashboardService DashboardService
}

// NewDashboardController creates a new DashboardController
func NewDashboardController(dashboardService DashboardService) *DashboardController {
	return &DashboardController{
		dashboardService: dashboardService,
	}
}

// GetDashboard returns the profile, wallet and transactions of the caller
// @Summary Get my dashboard
// @Description Returns the caller's profile, wallet balance and one page of wallet transactions
// @Tags profile
// @Produce json
// @Security BearerAuth
// @Param pageNumber query int false "Transaction page" minimum(1) default(1)
// @Param pageSize query int false "Transactions per page" minimum(1) maximum(100) default(10)
// @Success 200 {object} dto.APIResponse{data=models.Dashboard} "Dashboard retrieved"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 502 {object} dto.ErrorResponse "Backend unavailable"
// @Router /me/dashboard [get]
func (c *DashboardController) GetDashboard(ctx *gin.Context) {
	if _, ok := actorOrAbort(ctx); !ok {
		return
	}

	page, size := helpers.ParsePaginationParams(ctx)

	dashboard, err := c.dashboardService.Get(ctx.Request.Context(), page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dashboard, ""))
}
