package main

import (
	"context"
	"log"
	"net/http"
	_ "net/http/pprof"
	"time"

	"cardiorisk/internal"
	"cardiorisk/internal/config"
	"cardiorisk/internal/container"
	"cardiorisk/ui"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

// startupTimeout bounds dataset and model loading, including database retries
const startupTimeout = 2 * time.Minute

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	internal.DefaultLogger.SetLevel(internal.ParseLogLevel(appConfig.LogLevel))
	gin.SetMode(appConfig.Server.GinMode)

	appContainer, err := container.New(appConfig)
	if err != nil {
		log.Fatalf("Failed to create application container: %v", err)
	}
	defer appContainer.Close()

	// A missing dataset or model file is shown on the affected pages, not fatal
	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	err = appContainer.Load(ctx)
	cancel()
	if err != nil {
		log.Fatalf("Failed to load data: %v", err)
	}

	server := ui.NewServer(appContainer)
	if err := server.Initialize(); err != nil {
		log.Fatalf("Failed to initialize server: %v", err)
	}

	// Start pprof server for performance profiling
	if appConfig.Profiling.Enabled {
		go func() {
			log.Printf("Performance profiling server starting on :%s", appConfig.Profiling.Port)
			if err := http.ListenAndServe(":"+appConfig.Profiling.Port, nil); err != nil {
				log.Printf("pprof server failed: %v", err)
			}
		}()
	}

	log.Fatal(server.Start(":" + appConfig.Server.Port))
}
