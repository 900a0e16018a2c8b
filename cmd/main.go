package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/shenikar/incident_moderation_console/internal/config"
	"github.com/shenikar/incident_moderation_console/internal/dedup"
	v1 "github.com/shenikar/incident_moderation_console/internal/handler/http/v1"
	"github.com/shenikar/incident_moderation_console/internal/markers"
	"github.com/shenikar/incident_moderation_console/internal/moderation"
	"github.com/shenikar/incident_moderation_console/internal/remote"
	"github.com/shenikar/incident_moderation_console/internal/replica"
	"github.com/shenikar/incident_moderation_console/internal/store"
	"github.com/shenikar/incident_moderation_console/internal/stream"
	"github.com/shenikar/incident_moderation_console/internal/views"
	"github.com/shenikar/incident_moderation_console/internal/webhook"
	"github.com/shenikar/incident_moderation_console/pkg/logger"
	redisclient "github.com/shenikar/incident_moderation_console/pkg/redis"
)

// @title Incident Moderation Console API
// @version 1.0
// @description Operations console over the incident reporting platform: live replica, derived views, moderation.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
func main() {
	// Загрузка конфигурации
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	// Инициализация логгера
	log := logger.New(cfg.LogLevel)

	// Контекст сессии: при завершении детерминированно останавливает
	// push-канал, движок реплики и воркер вебхуков
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Инициализация Redis клиента (очередь доставки вебхуков)
	redisClient, err := redisclient.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()
	log.Info("Successfully connected to Redis")

	// Клиент удаленного источника инцидентов
	source := remote.NewClient(cfg, log)

	// Реплика и движок сверки
	replicaStore := store.New()
	engine := replica.New(replicaStore, source, log, replica.Options{
		AdminCapability: cfg.HasAdminCapability(),
		SyncOnReconnect: cfg.SyncOnReconnect,
	})

	// Публикация изменений реплики в очередь вебхуков
	webhookPublisher := webhook.NewRedisPublisher(redisClient)
	engine.Subscribe(webhook.Bridge(ctx, webhookPublisher, log))

	// Воркер доставки вебхуков
	webhookWorker := webhook.NewWorker(redisClient, log, cfg)
	webhookWorker.Start(ctx)

	// Начальная загрузка реплики из удаленного источника
	bootstrapCtx, bootstrapCancel := context.WithTimeout(ctx, 30*time.Second)
	if err := engine.Bootstrap(bootstrapCtx); err != nil {
		bootstrapCancel()
		log.Fatalf("Failed to bootstrap replica: %v", err)
	}
	bootstrapCancel()
	log.Info("Replica bootstrapped from upstream")

	// Цикл сверки и push-канал
	go engine.Run(ctx)
	channel := stream.NewChannel(cfg, engine, log)
	go channel.Run(ctx)

	// Проекции, модерация, подбор кандидатов, маркеры
	viewEngine := views.New(replicaStore)
	orchestrator := moderation.New(engine, source, log)
	matcher := dedup.NewMatcher(replicaStore, dedup.HeuristicScorer{})
	reconciler := markers.NewReconciler()

	// Инициализация хэндлеров
	handler := v1.NewHandler(viewEngine, orchestrator, matcher, reconciler, source, channel.Connected, log, cfg)

	// Настройка Gin роутера
	router := gin.Default()
	api := router.Group("/api/v1")
	handler.RegisterRoutes(api)

	// Запуск HTTP-сервера
	serverAddr := fmt.Sprintf(":%s", cfg.HTTPPort)

	srv := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	// Запуск сервера в горутине
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Error starting HTTP server: %v", err)
		}
	}()
	log.Infof("HTTP server started on port %s", cfg.HTTPPort)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Received shutdown signal, shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Info("Server gracefully stopped")
}
