package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/yeremiapane/photobooth-app/config"
	"github.com/yeremiapane/photobooth-app/database"
	"github.com/yeremiapane/photobooth-app/live"
	"github.com/yeremiapane/photobooth-app/router"
	"github.com/yeremiapane/photobooth-app/services"
	"github.com/yeremiapane/photobooth-app/utils"
	"gorm.io/gorm"
)

func main() {
	// Load .env di awal sebelum apapun
	envErr := godotenv.Load()
	utils.InitLogger()
	if envErr != nil {
		utils.InfoLogger.Println("Warning: .env file not found")
	}

	cfg := config.Load()
	utils.SetJWTSecret(cfg.JWTSecret)

	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := config.InitDB(cfg.DB)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		utils.ErrorLogger.Fatalf("Failed to migrate database: %v", err)
	}

	hub := live.NewHub()
	mail := services.NewMailService(cfg.SMTP, cfg.AppURL)
	sms := services.NewSMSService(cfg.Twilio)
	scheduler := newScheduler(cfg, db, hub, mail, sms)
	if cfg.Scheduler.Enabled {
		scheduler.Start()
		defer scheduler.Stop()
	} else {
		utils.InfoLogger.Println("Notification scheduler disabled by SCHEDULER_ENABLED")
	}

	r := router.SetupRouter(router.Dependencies{
		DB:          db,
		Scheduler:   scheduler,
		Hub:         hub,
		Mail:        mail,
		SMS:         sms,
		CORSOrigins: cfg.CORSOrigins,
		HSTS:        strings.HasPrefix(cfg.AppURL, "https://"),
		RateLimit:   600,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		utils.InfoLogger.Printf("Listening on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.ErrorLogger.Fatal(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	utils.InfoLogger.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		utils.ErrorLogger.Printf("Server forced to shutdown: %v", err)
	}
}

func newScheduler(cfg *config.Config, db *gorm.DB, hub *live.Hub, mail *services.MailService, sms *services.SMSService) *services.Scheduler {
	scheduler := services.NewScheduler(db, mail, sms)
	scheduler.Events = hub
	scheduler.AppURL = cfg.AppURL
	scheduler.BatchSize = cfg.Scheduler.BatchSize
	scheduler.DrainInterval = cfg.Scheduler.DrainInterval
	return scheduler
}
