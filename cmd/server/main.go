package main

import (
	"fmt"
	"log"
	"os"

	"quiethours/internal/auth"
	"quiethours/internal/database"
	"quiethours/internal/handlers"
	"quiethours/internal/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env in development; production injects real environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// The pool connects lazily; force the first connection now so migration
	// problems surface at startup
	pool := database.NewPool()
	if _, err := pool.DB(); err != nil {
		log.Fatal("Failed to initialize database:", err)
	}

	authService, err := auth.NewService(pool)
	if err != nil {
		log.Fatal("Failed to initialize auth:", err)
	}

	emailService := services.NewEmailService()
	reminderService := services.NewReminderService(pool, emailService)

	handler := handlers.New(pool, authService, reminderService)

	router := gin.Default()
	router.SetTrustedProxies([]string{"127.0.0.1"})

	corsConfig := cors.DefaultConfig()
	if origin := os.Getenv("FRONTEND_ORIGIN"); origin != "" {
		corsConfig.AllowOrigins = []string{origin}
	} else {
		corsConfig.AllowOrigins = []string{"http://localhost:3000"}
	}
	corsConfig.AllowCredentials = true
	router.Use(cors.New(corsConfig))

	// Basic routes
	router.GET("/", handler.Home)
	router.GET("/health", handler.Health)

	// Auth routes (no auth required)
	router.GET("/auth/login", handler.Login)
	router.GET("/auth/callback", handler.GoogleCallback)

	// Cron trigger for deployments that schedule sweeps externally
	router.GET("/cron/run", handler.RunCron)
	router.POST("/cron/run", handler.RunCron)

	// Protected routes (auth required)
	protected := router.Group("")
	protected.Use(authService.Middleware())
	{
		protected.POST("/auth/logout", handler.Logout)
		protected.GET("/auth/me", handler.GetCurrentUser)

		protected.POST("/blocks", handler.CreateBlock)
		protected.GET("/blocks", handler.GetBlocks)
		protected.GET("/blocks/:block_id", handler.GetBlockByID)
		protected.DELETE("/blocks/:block_id", handler.DeleteBlock)
	}

	// In-process periodic sweep and purge
	scheduler, err := services.StartReminderWorker(reminderService)
	if err != nil {
		log.Fatal("Failed to start reminder worker:", err)
	}
	defer func() {
		if err := scheduler.Shutdown(); err != nil {
			log.Printf("Warning: scheduler shutdown: %v", err)
		}
	}()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	fmt.Printf("Server starting on port %s...\n", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal(err)
	}
}
