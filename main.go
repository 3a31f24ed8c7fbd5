package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"github.com/velourbar/members-app/config"
	"github.com/velourbar/members-app/middlewares"
	"github.com/velourbar/members-app/models"
	"github.com/velourbar/members-app/router"
	"github.com/velourbar/members-app/services"
	"github.com/velourbar/members-app/utils"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	utils.InitLogger()

	db, err := config.InitDB()
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}

	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	autoMigrate(db)

	matchingSvc := services.NewMatchingService(db)
	matchingSvc.StartExpiryChecker()
	defer matchingSvc.StopExpiryChecker()

	rateLimiter := middlewares.NewRateLimiter(50, 1)

	r := router.SetupRouter(db, matchingSvc, rateLimiter)

	if proxies := os.Getenv("TRUSTED_PROXIES"); proxies != "" {
		if err := r.SetTrustedProxies([]string{proxies}); err != nil {
			utils.ErrorLogger.Errorf("Invalid TRUSTED_PROXIES: %v", err)
		}
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	utils.InfoLogger.Printf("Listening on port %s", port)
	if err := r.Run(":" + port); err != nil {
		utils.ErrorLogger.Fatal(err)
	}
}

func autoMigrate(db *gorm.DB) {
	err := db.AutoMigrate(
		&models.User{},
		&models.Membership{},
		&models.MatchingRequest{},
		&models.MatchingHistory{},
		&models.Notification{},
		&models.VisitPlan{},
		&models.Event{},
		&models.BlogPost{},
	)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to AutoMigrate: %v", err)
	}
	utils.InfoLogger.Println("AutoMigrate completed.")
}
