package main

import (
	"flag"
	"os"

	"github.com/selvaalegre/portal/internal/pkg/logger"
	"github.com/selvaalegre/portal/internal/server"
)

// @title Selva Alegre Portal API
// @version 1.0
// @description API for the Selva Alegre residential community portal

// @host localhost:8080
// @BasePath /api/v1
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT token for authorization

func main() {
	configPath := flag.String("config", "", "path to the YAML configuration (default configs/config.yaml)")
	flag.Parse()

	srv, err := server.NewServer(*configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize server")
		os.Exit(1)
	}

	if err := srv.Run(); err != nil {
		logger.Error().Err(err).Msg("Server execution failed or shutdown encountered errors")
		os.Exit(1)
	}

	logger.Info().Msg("Application finished gracefully.")
}
