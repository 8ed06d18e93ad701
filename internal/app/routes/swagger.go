package routes

import (
	"net/url"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/yigit/skillmart/docs"
)

// SetupSwagger configures Swagger documentation routes. The document host follows the
// public URL of the server.
func SetupSwagger(router *gin.Engine, publicURL string) {
	if u, err := url.Parse(publicURL); err == nil && u.Host != "" {
		docs.SwaggerInfo.Host = u.Host
	}

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler,
		ginSwagger.URL("/swagger/doc.json"),
		ginSwagger.DefaultModelsExpandDepth(1),
	))
}
