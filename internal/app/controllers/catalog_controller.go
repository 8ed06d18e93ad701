package controllers

import (
	"context"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/yigit/skillmart/internal/app/models"
	"github.com/yigit/skillmart/internal/app/models/dto"
	"github.com/yigit/skillmart/internal/middleware"
)

// Lister serves a paginated listing and rewrites its query string for toolbar changes
type Lister interface {
	List(ctx context.Context, raw url.Values) (*dto.PaginatedResponse, error)
	ChangeQuery(current string, changes map[string]string) dto.QueryChangeResponse
}

// ReferenceService serves the lookup lists
type ReferenceService interface {
	Categories(ctx context.Context) ([]models.Category, error)
	Banks(ctx context.Context) ([]models.Bank, error)
}

// CatalogController handles the public course catalogue and lookup lists
type CatalogController struct {
	courses    Lister
	references ReferenceService
}

// NewCatalogController creates a new CatalogController
func NewCatalogController(courses Lister, references ReferenceService) *CatalogController {
	return &CatalogController{
		courses:    courses,
		references: references,
	}
}

// ListCourses returns one page of courses
// @Summary List courses
// @Description Returns one page of courses. Unknown and default-valued parameters are dropped, and the response carries the canonical query string of the current, next and previous page.
// @Tags courses
// @Produce json
// @Param keyword query string false "Search keyword"
// @Param categoryId query int false "Category ID" minimum(1)
// @Param level query string false "Course level" Enums(BEGINNER, INTERMEDIATE, ADVANCED, ALL_LEVELS)
// @Param minPrice query number false "Minimum price" minimum(0)
// @Param maxPrice query number false "Maximum price" minimum(0)
// @Param minRating query number false "Minimum rating" minimum(0) maximum(5)
// @Param language query string false "Course language"
// @Param pageNumber query int false "Page number" minimum(1)
// @Param pageSize query int false "Page size" minimum(1) maximum(100)
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]models.Course}} "Courses retrieved"
// @Failure 502 {object} dto.ErrorResponse "Backend unavailable"
// @Router /courses [get]
func (c *CatalogController) ListCourses(ctx *gin.Context) {
	listPage(ctx, c.courses)
}

// ChangeCourseQuery applies toolbar changes to a course query string
// @Summary Change the course listing query
// @Description Applies toolbar changes to the current query string. Changing a filter returns to the first page; an empty value clears the parameter.
// @Tags courses
// @Accept json
// @Produce json
// @Param request body dto.QueryChangeRequest true "Current query and changes"
// @Success 200 {object} dto.APIResponse{data=dto.QueryChangeResponse} "Query to navigate to"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Router /courses/query [post]
func (c *CatalogController) ChangeCourseQuery(ctx *gin.Context) {
	changeQuery(ctx, c.courses)
}

// GetCategories returns the course categories
// @Summary List course categories
// @Tags courses
// @Produce json
// @Success 200 {object} dto.APIResponse{data=[]models.Category} "Categories retrieved"
// @Failure 502 {object} dto.ErrorResponse "Backend unavailable"
// @Router /categories [get]
func (c *CatalogController) GetCategories(ctx *gin.Context) {
	categories, err := c.references.Categories(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(categories, ""))
}

// GetBanks returns the payout banks
// @Summary List payout banks
// @Tags courses
// @Produce json
// @Success 200 {object} dto.APIResponse{data=[]models.Bank} "Banks retrieved"
// @Failure 502 {object} dto.ErrorResponse "Backend unavailable"
// @Router /banks [get]
func (c *CatalogController) GetBanks(ctx *gin.Context) {
	banks, err := c.references.Banks(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(banks, ""))
}

func listPage(ctx *gin.Context, lister Lister) {
	page, err := lister.List(ctx.Request.Context(), ctx.Request.URL.Query())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(page, ""))
}

func changeQuery(ctx *gin.Context, lister Lister) {
	var req dto.QueryChangeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(lister.ChangeQuery(req.Query, req.Changes), ""))
}
