package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"datalens/internal/config"
	"datalens/internal/container"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	gin.SetMode(appConfig.Server.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c, err := container.New(ctx, appConfig)
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}
	defer c.Close()

	log.Printf("Data directory: %s", appConfig.Data.Dir)
	if err := c.Server().Run(ctx, ":"+appConfig.Server.Port); err != nil {
		log.Printf("Server stopped: %v", err)
	}
}
