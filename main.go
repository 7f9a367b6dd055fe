package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Vibhav-y/streamix/config"
	"github.com/Vibhav-y/streamix/handlers"
	"github.com/Vibhav-y/streamix/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	// Upstream collaborators, injected into the handlers
	extractor := services.NewYouTubeExtractor(config.UpstreamClient)
	metadata := services.NewMetadataClient(config.MetadataClient, config.DataAPIKey())

	download := handlers.NewDownloadHandler(extractor)
	videos := handlers.NewVideosHandler(metadata)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:       "Streamix",
		ServerHeader:  "streamix",
		CaseSensitive: true,
		StrictRouting: false,
		// Disable body limit for media streaming
		BodyLimit: 0,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format:     "${time} | ${status} | ${latency} | ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Content-Type,Accept,X-Api-Key",
	}))

	// API routes
	api := app.Group("/api")
	api.Get("/download", download.Handle)
	api.Get("/videos/popular", videos.HandlePopular)
	api.Get("/videos/search", videos.HandleSearch)
	api.Get("/videos/:id", videos.HandleVideo)
	api.Get("/videos/:id/related", videos.HandleRelated)
	api.Get("/categories", videos.HandleCategories)
	api.Post("/recommendations", handlers.HandleRecommendations)

	// Health check
	app.Get("/health", handlers.HandleHealth)

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down server...")
		if err := app.Shutdown(); err != nil {
			log.Printf("Error shutting down: %v\n", err)
		}
	}()

	// Start server
	addr := fmt.Sprintf(":%d", config.Port())
	log.Printf("Streamix download server running at http://localhost%s\n", addr)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
