package main

import (
	"context"
	"log"

	"readshelf/internal/config"
	"readshelf/internal/db"
	"readshelf/internal/drive"
	"readshelf/internal/pdfrender"
	"readshelf/internal/router"
	"readshelf/internal/services"
	"readshelf/internal/utils"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.MustLoad()
	ctx := context.Background()

	// Initialize Database
	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := db.EnsureAdmin(conn, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		log.Fatalf("Failed to create bootstrap admin: %v", err)
	}

	// External storage, built once and shared by every handler
	storage, err := drive.NewGoogleDrive(ctx, cfg.Google)
	if err != nil {
		log.Fatalf("Failed to create Drive client: %v", err)
	}

	deps := router.Deps{
		DB:            conn,
		Storage:       storage,
		Renderer:      pdfrender.NewRenderer(storage, nil, cfg.CoverDPI, utils.NewCache[[]byte](cfg.CoverCacheSize, cfg.CoverCacheTTL)),
		Notifier:      services.NewNotifier(conn, services.NewMailService(cfg.SMTP), cfg.SiteURL),
		Stories:       services.NewStoryFeed(cfg.StoryFeedURL),
		DriveFolderID: cfg.DriveFolderID,
	}

	if cfg.RedisURL != "" {
		registry, err := drive.NewChannelRegistry(cfg.RedisURL)
		if err != nil {
			log.Printf("⚠️ Drive channel registry disabled: %v", err)
		} else {
			defer registry.Close()
			deps.Channels = registry
		}
	}

	// Initialize Gin
	r := gin.Default()

	// Setup Sessions
	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{Path: "/", MaxAge: 30 * 24 * 3600, HttpOnly: true})
	r.Use(sessions.Sessions("readshelf_session", store))

	router.RegisterRoutes(r, deps)

	log.Printf("Readshelf server starting on :%s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}
