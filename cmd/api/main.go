package main

import (
	"os"

	"github.com/yigit/skillmart/internal/pkg/logger"
	"github.com/yigit/skillmart/internal/server"
)

// @title SkillMart Portal API
// @version 1.0
// @description Backend-for-frontend of the SkillMart course marketplace

// @contact.name API Support
// @contact.email support@skillmart.local

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT token for authorization

func main() {
	srv, err := server.NewServer()
	if err != nil {
		// Error details are logged within NewServer's setup functions
		logger.Error().Err(err).Msg("Failed to initialize server")
		os.Exit(1)
	}

	// Run blocks until a shutdown signal
	if err := srv.Run(); err != nil {
		logger.Error().Err(err).Msg("Server execution failed or shutdown encountered errors")
		os.Exit(1)
	}

	logger.Info().Msg("Application finished gracefully.")
}
