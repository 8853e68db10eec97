package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"time"

	"github.com/fintrack/fintrack-api/config"
	"github.com/fintrack/fintrack-api/middleware"
	"github.com/fintrack/fintrack-api/routes"
	"github.com/fintrack/fintrack-api/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	db, err := config.InitDB()
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	log.Println("✅ Database connected successfully")

	if err := config.RunMigrations(db); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	go scheduleRecurringTransactions(db)

	router := gin.Default()

	frontendURL := os.Getenv("FRONTEND_URL")
	if frontendURL == "" {
		frontendURL = "http://localhost:3000"
	}

	corsConfig := cors.Config{
		AllowOrigins:     []string{frontendURL},
		AllowMethods:     []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           86400,
	}
	router.Use(cors.New(corsConfig))

	router.Use(func(c *gin.Context) {
		start := time.Now()
		requestID := uuid.NewString()[:8]
		c.Header("X-Request-ID", requestID)
		log.Printf("📨 [%s] %s %s from %s", requestID, c.Request.Method, c.Request.URL.Path, c.ClientIP())
		c.Next()
		duration := time.Since(start)
		log.Printf("✅ [%s] %s %s - %d (%v)", requestID, c.Request.Method, c.Request.URL.Path, c.Writer.Status(), duration)
	})

	router.Use(middleware.RateLimiter())

	routes.SetupRoutes(router, db)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
			"time":    time.Now().Format(time.RFC3339),
		})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("🚀 Server starting on port %s...", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

// scheduleRecurringTransactions clones due recurring incomes and expenses on
// a fixed interval (RECURRING_INTERVAL, default 24h), starting with one pass
// at boot.
func scheduleRecurringTransactions(db *sql.DB) {
	interval := 24 * time.Hour
	if raw := os.Getenv("RECURRING_INTERVAL"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil || parsed <= 0 {
			log.Printf("⚠️ Invalid RECURRING_INTERVAL %q, using 24h", raw)
		} else {
			interval = parsed
		}
	}

	recurring := services.NewRecurringService(db)

	run := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if err := recurring.ProcessRecurringIncomes(ctx); err != nil {
			log.Printf("❌ Recurring income pass failed: %v", err)
		}
		if err := recurring.ProcessRecurringExpenses(ctx); err != nil {
			log.Printf("❌ Recurring expense pass failed: %v", err)
		}
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	run()
	for range ticker.C {
		run()
	}
}
