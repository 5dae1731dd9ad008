package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"api-yt/config"
	"api-yt/handlers"
	"api-yt/routes"
	"api-yt/services"
)

func main() {
	// Set log format for better debugging
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	// Load configuration
	cfg := config.Load()
	log.Println("Configuration loaded successfully")

	// Working directories must exist before the first request
	for _, dir := range []string{cfg.DownloadDir, cfg.ThumbnailDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Fatalf("Failed to create directory %s: %v", dir, err)
		}
	}

	// Optional S3 artifact archive
	var archive *services.ArchiveService
	if cfg.ArchiveEnabled() {
		var err error
		archive, err = services.NewArchiveService(cfg)
		if err != nil {
			log.Printf("Failed to initialize S3 archive: %v", err)
			log.Println("   Running in local mode only")
			archive = nil
		} else {
			log.Println("S3 artifact archive initialized successfully")
		}
	}

	// Core services
	extractor := services.NewExtractor(cfg)
	thumbnails := services.NewThumbnailService(
		cfg.ThumbnailDir,
		time.Duration(cfg.SocketTimeoutSeconds)*time.Second,
		cfg.UserAgent,
	)
	packager := services.NewPackager()
	limiter := services.NewLimiter(cfg.MaxConcurrentDownloads)

	videoHandler := handlers.NewVideoHandler(extractor, thumbnails, packager, limiter, archive)

	// Setup routes
	router := routes.SetupRoutes(cfg, videoHandler)
	log.Println("Routes configured successfully")

	// Downloads and transcodes can run long; write timeout must cover the
	// whole artifact stream.
	server := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        router,
		MaxHeaderBytes: 1 << 20,
		ReadTimeout:    1 * time.Minute,
		WriteTimeout:   30 * time.Minute,
		IdleTimeout:    60 * time.Second,
	}

	log.Printf("Starting server on port :%s", cfg.Port)
	log.Printf("API endpoints:")
	log.Printf("  POST /api/info")
	log.Printf("  GET  /api/thumbnail/:video_id")
	log.Printf("  POST /api/download")
	log.Printf("  GET  /api/detect_playlist")
	log.Printf("  GET  /api/health")
	log.Printf("  GET  /metrics")

	if err := server.ListenAndServe(); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
