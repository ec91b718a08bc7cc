package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/gagansiddarth/SmartAgricultureExchange-sub000/internal/config"
	"github.com/gagansiddarth/SmartAgricultureExchange-sub000/internal/handler"
	"github.com/gagansiddarth/SmartAgricultureExchange-sub000/internal/middleware"
	"github.com/gagansiddarth/SmartAgricultureExchange-sub000/internal/model"
	"github.com/gagansiddarth/SmartAgricultureExchange-sub000/internal/mongo"
	"github.com/gagansiddarth/SmartAgricultureExchange-sub000/internal/obs"
	"github.com/gagansiddarth/SmartAgricultureExchange-sub000/internal/repository"
	"github.com/gagansiddarth/SmartAgricultureExchange-sub000/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Error loading .env file")
	}
	obs.InitLogger()
	cfg := config.Load()

	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	db, err := sqlx.Connect("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect error: %v", err)
	}

	mongoClient := mongo.NewMongoClient(cfg.MongoURI)

	listingRepo := repository.NewListingRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	dealRepo := repository.NewDealRepository(db)
	userRepo := repository.NewUserRepository(db)
	imageRepo := repository.NewImageRepository(mongoClient, cfg.MongoDB)

	notifier := service.NewNotificationService(notificationRepo, userRepo, obs.Logger)
	moderation := service.NewModerationService(listingRepo, notifier, userRepo, cfg.ListingTTLDays, obs.Logger)
	dashboard := service.NewDashboardService(listingRepo, dealRepo, userRepo)

	listings := &handler.ListingHandler{Repo: listingRepo, Moderation: moderation}
	admin := &handler.AdminHandler{Moderation: moderation}
	deals := &handler.DealHandler{Repo: dealRepo, ListingRepo: listingRepo}
	notifications := &handler.NotificationHandler{Service: notifier}
	dash := &handler.DashboardHandler{Service: dashboard}
	images := &handler.ImageHandler{Repo: imageRepo, ListingRepo: listingRepo}

	r := gin.Default()
	r.Use(middleware.RequestID())
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")

	// Open routes: anyone can browse approved listings and images.
	listings.RegisterPublic(api)
	images.RegisterPublic(api)

	// Authenticated routes.
	protected := api.Group("/")
	protected.Use(middleware.RequireAuth(cfg.JWTSecret))
	{
		listings.RegisterProtected(protected)
		images.RegisterProtected(protected)
		deals.RegisterRoutes(protected)
		notifications.RegisterRoutes(protected)
		dash.RegisterRoutes(protected)

		adminOnly := protected.Group("/")
		adminOnly.Use(middleware.RequireRole(model.RoleAdmin))
		admin.RegisterRoutes(adminOnly)
	}

	// Approved listings past their expiry date get swept on a timer.
	go func() {
		ticker := time.NewTicker(cfg.ExpirySweepPeriod)
		defer ticker.Stop()
		for range ticker.C {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			if _, err := moderation.ExpireOverdue(ctx); err != nil {
				obs.Logger.Error("expiry sweep failed", "err", err)
			}
			cancel()
		}
	}()

	obs.Logger.Info("crop marketplace service running", "addr", cfg.HTTPAddr)
	if err := r.Run(cfg.HTTPAddr); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
