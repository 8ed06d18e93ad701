package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/yigit/skillmart/internal/app/controllers"
	"github.com/yigit/skillmart/internal/app/models"
	"github.com/yigit/skillmart/internal/middleware"
)

// Controllers groups every HTTP handler the router mounts
type Controllers struct {
	Wizard    *controllers.WizardController
	Upload    *controllers.UploadController
	Catalog   *controllers.CatalogController
	Admin     *controllers.AdminController
	Dashboard *controllers.DashboardController
	Health    *controllers.HealthController
}

// SetupRouter configures all application routes
func SetupRouter(router *gin.Engine, c Controllers, authMiddleware *middleware.AuthMiddleware) {
	// API version group
	v1 := router.Group("/api/v1")

	v1.GET("/health", c.Health.Health)

	// --- Public catalogue routes ---
	v1.GET("/courses", c.Catalog.ListCourses)
	v1.POST("/courses/query", c.Catalog.ChangeCourseQuery)
	v1.GET("/categories", c.Catalog.GetCategories)
	v1.GET("/banks", c.Catalog.GetBanks)

	// --- Authenticated Routes Group ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())

	authenticated.GET("/me/dashboard", c.Dashboard.GetDashboard)

	// Wizard routes. Which roles may start which wizard is decided by the wizard service.
	wizards := authenticated.Group("/wizards")
	{
		// :id holds the wizard kind on creation
		wizards.POST("/:id", c.Wizard.CreateSession)
		wizards.GET("/:id", c.Wizard.GetSession)
		wizards.PATCH("/:id", c.Wizard.MergeForm)
		wizards.DELETE("/:id", c.Wizard.Abandon)

		wizards.POST("/:id/navigate", c.Wizard.Navigate)
		wizards.POST("/:id/next", c.Wizard.Next)
		wizards.POST("/:id/back", c.Wizard.Back)

		wizards.POST("/:id/lists/:list", c.Wizard.AddItem)
		wizards.PATCH("/:id/lists/:list/:index", c.Wizard.UpdateItem)
		wizards.DELETE("/:id/lists/:list/:index", c.Wizard.RemoveItem)

		wizards.POST("/:id/uploads/:slot", c.Upload.Upload)

		wizards.POST("/:id/ai-review", c.Wizard.StartReview)
		wizards.POST("/:id/ai-review/skip", c.Wizard.SkipReview)
		wizards.POST("/:id/ai-review/retry", c.Wizard.RetryReview)

		wizards.POST("/:id/submit", c.Wizard.Submit)
	}

	// Admin-only routes
	admin := authenticated.Group("/admin")
	admin.Use(authMiddleware.RoleRequired(models.RoleAdmin))
	{
		admin.GET("/registrations", c.Admin.ListRegistrations)
		admin.POST("/registrations/query", c.Admin.ChangeRegistrationQuery)
	}
}
