package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/omanias/tienda-api/models"
	"github.com/omanias/tienda-api/routes"
	"github.com/omanias/tienda-api/services/assistant"
	"github.com/omanias/tienda-api/services/cartstore"
	"github.com/omanias/tienda-api/services/catalog"
	"github.com/omanias/tienda-api/services/llm"
	"github.com/omanias/tienda-api/services/session"
	"github.com/omanias/tienda-api/services/whatsapp"
)

func main() {
	log.Println("✅ Starting application...")

	// Load environment variables
	_ = godotenv.Load()

	// Init DB
	db := initDatabase()

	// Auto-migrate all tables
	if err := db.AutoMigrate(
		&models.Product{},
		&models.Cart{},
		&models.CartItem{},
	); err != nil {
		log.Fatalf("❌ AutoMigrate failed: %v", err)
	}

	ctx := context.Background()

	// Generation service client
	gemini, err := llm.NewGeminiClient(ctx, envOr("GEMINI_MODEL", "gemini-2.5-flash"), llmTimeout())
	if err != nil {
		log.Fatalf("❌ Gemini client init failed: %v", err)
	}

	// Services
	catalogSvc := catalog.New(db)
	cartSvc := cartstore.New(db)
	sessions := session.NewMemoryStore(session.IdleTimeout)
	assistantSvc := assistant.New(gemini, catalogSvc, cartSvc, sessions)
	sender := whatsapp.NewTwilioSenderFromEnv()

	// Purge idle conversational sessions in the background
	session.StartSweeper(ctx, sessions, 5*time.Minute)

	// Gin setup
	r := gin.Default()

	// CORS settings
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-API-KEY"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Setup routes
	routes.SetupRoutes(r, routes.Services{
		Catalog:   catalogSvc,
		Carts:     cartSvc,
		Assistant: assistantSvc,
		Sender:    sender,
	})

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("🚀 Server running on port %s...", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

// initDatabase sets up the GORM DB connection
func initDatabase() *gorm.DB {
	if databaseURL := os.Getenv("DATABASE_URL"); databaseURL != "" {
		db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{})
		if err != nil {
			log.Fatalf("❌ DB connection failed: %v", err)
		}
		return db
	}

	host := os.Getenv("DB_HOST")
	port := os.Getenv("DB_PORT")
	user := os.Getenv("DB_USER")
	password := os.Getenv("DB_PASSWORD")
	dbname := os.Getenv("DB_NAME")

	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		host, user, password, dbname, port,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("❌ Failed to connect DB: %v", err)
	}
	return db
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func llmTimeout() time.Duration {
	if v := os.Getenv("LLM_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return time.Duration(n) * time.Second
		}
	}
	return 15 * time.Second
}
