package controllers

import (
	"github.com/gin-gonic/gin"
)

// AdminController handles the admin instructor application table
type AdminController struct {
	registrations Lister
}

// NewAdminController creates a new AdminController
func NewAdminController(registrations Lister) *AdminController {
	return &AdminController{
		registrations: registrations,
	}
}

// ListRegistrations returns one page of instructor applications
// @Summary List instructor applications
// @Description Returns one page of instructor applications with canonical query links. The table is never cached.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param status query string false "Application status" Enums(PENDING, APPROVED, REJECTED)
// @Param keyword query string false "Search keyword"
// @Param sortBy query string false "Sort field" Enums(createdAt, fullName, status)
// @Param pageNumber query int false "Page number" minimum(1)
// @Param pageSize query int false "Page size" minimum(1) maximum(100)
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]models.RegistrationSummary}} "Applications retrieved"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - Admins only"
// @Failure 502 {object} dto.ErrorResponse "Backend unavailable"
// @Router /admin/registrations [get]
func (c *AdminController) ListRegistrations(ctx *gin.Context) {
	listPage(ctx, c.registrations)
}

// ChangeRegistrationQuery applies toolbar changes to an application table query string
// @Summary Change the application table query
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.QueryChangeRequest true "Current query and changes"
// @Success 200 {object} dto.APIResponse{data=dto.QueryChangeResponse} "Query to navigate to"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - Admins only"
// @Router /admin/registrations/query [post]
func (c *AdminController) ChangeRegistrationQuery(ctx *gin.Context) {
	changeQuery(ctx, c.registrations)
}
