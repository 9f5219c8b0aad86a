package main

import (
	"streamhub/internal/app"
	"streamhub/pkg/config"

	_ "streamhub/docs" // Swagger docs
)

// @title           StreamHub Account Service API
// @version         1.0
// @description     User accounts, sessions and profile media for the StreamHub platform

// @host      localhost:8000
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	if cfg.AccessTokenSecret == "" || cfg.RefreshTokenSecret == "" {
		panic("ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET must be set in environment variables")
	}

	application, err := app.NewApp(cfg)
	if err != nil {
		panic(err)
	}

	if err := application.Run(); err != nil {
		panic(err)
	}

	application.Wait()

	if err := application.Shutdown(); err != nil {
		panic(err)
	}
}
