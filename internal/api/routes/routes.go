package routes

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"github.com/slotflare/slotflare/backend/internal/api/handlers"
	"github.com/slotflare/slotflare/backend/internal/api/middleware"
	"github.com/slotflare/slotflare/backend/internal/config"
	"github.com/slotflare/slotflare/backend/internal/logger"
	"github.com/slotflare/slotflare/backend/internal/metrics"
	"github.com/slotflare/slotflare/backend/internal/models"
	"github.com/slotflare/slotflare/backend/internal/services"
)

// Register wires up API routes and performs automatic migrations.
func Register(router *gin.Engine, db *gorm.DB, cfg config.Config) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.WorkerScript{},
		&models.Domain{},
		&models.WorkerRoute{},
		&models.DeployLog{},
		&models.Alert{},
		&models.NotificationProvider{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	registry := prometheus.NewRegistry()
	metrics.Register(registry)

	clients := services.NewClientFactory(cfg.CloudflareAPI)

	historyService := services.NewHistoryService(db)
	authService := services.NewAuthService(db, cfg.JWTSecret)
	notificationService := services.NewNotificationService(db)
	alertService := services.NewAlertService(db, notificationService)
	scriptService := services.NewScriptService(db, historyService, clients, cfg.BaseURL)
	domainService := services.NewDomainService(db, historyService, clients)
	routeService := services.NewRouteService(db, historyService, clients, cfg.BaseURL)

	authHandler := handlers.NewAuthHandler(authService)
	scriptHandler := handlers.NewScriptHandler(scriptService)
	domainHandler := handlers.NewDomainHandler(domainService)
	routeHandler := handlers.NewRouteHandler(routeService)
	alertHandler := handlers.NewAlertHandler(alertService)
	historyHandler := handlers.NewHistoryHandler(historyService)
	triggerHandler := handlers.NewTriggerHandler(alertService)
	cloudflareHandler := handlers.NewCloudflareHandler(db, clients)
	providerHandler := handlers.NewNotificationProviderHandler(notificationService)

	router.GET("/api/v1/health", handlers.HealthHandler)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	// Worker callback endpoint. Deployed workers POST here when they block
	// a request; they carry no credentials, so this stays public.
	router.POST("/api/trigger", triggerHandler.Trigger)

	api := router.Group("/api/v1")
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)

	protected := api.Group("/")
	protected.Use(middleware.Auth(authService))
	{
		protected.GET("/auth/me", authHandler.Me)

		protected.GET("/cloudflare/config", cloudflareHandler.Config)
		protected.POST("/cloudflare/config", authHandler.UpdateCredentials)
		protected.GET("/cloudflare/status", cloudflareHandler.Status)

		protected.GET("/scripts", scriptHandler.List)
		protected.POST("/scripts", scriptHandler.Create)
		protected.PUT("/scripts/:uuid", scriptHandler.Update)
		protected.DELETE("/scripts/:uuid", scriptHandler.Delete)

		protected.GET("/domains", domainHandler.List)
		protected.POST("/domains", domainHandler.Create)
		protected.DELETE("/domains/:uuid", domainHandler.Delete)

		protected.GET("/routes", routeHandler.List)
		protected.POST("/routes", routeHandler.Create)
		protected.PUT("/routes/:uuid", routeHandler.Update)
		protected.DELETE("/routes/:uuid", routeHandler.Delete)

		protected.GET("/alerts", alertHandler.List)
		protected.GET("/alerts/stats", alertHandler.Stats)
		protected.GET("/alerts/script-config/:scriptName", alertHandler.ScriptConfig)
		protected.GET("/alerts/preference", authHandler.GetAlertPreference)
		protected.POST("/alerts/preference", authHandler.UpdateAlertPreference)
		protected.POST("/alerts/test", alertHandler.Test)
		protected.PUT("/alerts/:uuid/status", alertHandler.UpdateStatus)
		protected.DELETE("/alerts/:uuid", alertHandler.Delete)
		protected.DELETE("/alerts", alertHandler.DeleteAll)

		protected.GET("/history", historyHandler.List)
		protected.DELETE("/history", historyHandler.Clear)

		protected.GET("/notification-providers", providerHandler.List)
		protected.POST("/notification-providers", providerHandler.Create)
		protected.DELETE("/notification-providers/:uuid", providerHandler.Delete)
	}

	startZoneStatusSync(domainService)

	return nil
}

// startZoneStatusSync schedules the hourly reconciliation of adopted domain
// statuses against Cloudflare.
func startZoneStatusSync(domains *services.DomainService) {
	c := cron.New()
	if _, err := c.AddFunc("@hourly", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		domains.SyncZoneStatuses(ctx)
	}); err != nil {
		logger.Log().WithError(err).Warn("failed to schedule zone status sync")
		return
	}
	c.Start()
}
