package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"rescueradar/config"
	"rescueradar/database"
	"rescueradar/repositories"
	"rescueradar/routes"
	"rescueradar/websocket"
	"rescueradar/workers"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg := config.Load()

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	setupLogger(cfg)

	reports, closeStore := openReportStore(cfg)
	defer closeStore()

	redis := config.InitRedis(cfg)
	defer redis.Close()
	if err := redis.Ping(context.Background()).Err(); err != nil {
		logrus.Warnf("Redis unreachable, caching and rate limiting degrade to pass-through: %v", err)
	}

	publisher := cfg.InitEventPublisher()
	defer publisher.Close()

	hub := websocket.NewHub()
	go hub.Run()

	svc := routes.InitializeServices(routes.Dependencies{
		Config:    cfg,
		Reports:   reports,
		Redis:     redis,
		Hub:       hub,
		Storage:   cfg.InitImageStorage(),
		Publisher: publisher,
	})

	feedWorker := workers.NewFeedWorker(svc.Feed, hub, cfg.FeedInterval())
	if err := feedWorker.Start(); err != nil {
		logrus.Errorf("Failed to start feed worker: %v", err)
	}

	router := routes.SetupRoutes(cfg, svc, redis, hub)

	server := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        router,
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   60 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		logrus.Info("🚀 RescueRadar server starting on port ", cfg.Port)
		logrus.Info("📡 Live feed endpoint: /ws")
		logrus.Info("📈 Metrics: /metrics")
		logrus.Info("💖 Health Check: /api/health")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatal("Failed to start server: ", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := feedWorker.Stop(); err != nil {
		logrus.Errorf("Failed to stop feed worker: %v", err)
	}
	hub.Shutdown()

	if err := server.Shutdown(ctx); err != nil {
		logrus.Error("Server forced to shutdown: ", err)
	}

	logrus.Info("✅ Server shutdown complete")
}

// openReportStore connects the store selected by STORE_DRIVER. An unreachable
// store leaves the server running on a repository that reports the outage.
func openReportStore(cfg *config.Config) (repositories.ReportRepository, func()) {
	switch cfg.StoreDriver {
	case config.StoreMongo:
		db, disconnect, err := database.Connect(cfg.MongoURL, cfg.MongoDatabase, database.MongoSettings{})
		if err != nil {
			logrus.Errorf("Failed to connect to MongoDB, serving without a store: %v", err)
			return repositories.NewUnavailableReportRepository(cfg.StoreDriver, err), func() {}
		}
		return repositories.NewMongoReportRepository(db), disconnect

	case config.StorePostgres:
		if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
			logrus.Errorf("Failed to run migrations, serving without a store: %v", err)
			return repositories.NewUnavailableReportRepository(cfg.StoreDriver, err), func() {}
		}
		db, err := database.OpenPostgres(cfg.DatabaseURL)
		if err != nil {
			logrus.Errorf("Failed to connect to PostgreSQL, serving without a store: %v", err)
			return repositories.NewUnavailableReportRepository(cfg.StoreDriver, err), func() {}
		}
		return repositories.NewPostgresReportRepository(db), func() { db.Close() }

	default:
		logrus.Fatalf("Unknown STORE_DRIVER %q, expected postgres or mongo", cfg.StoreDriver)
		return nil, func() {}
	}
}

func setupLogger(cfg *config.Config) {
	logrus.SetFormatter(&logrus.JSONFormatter{})

	if cfg.IsDevelopment() {
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
			ForceColors:   true,
		})
		logrus.SetLevel(logrus.DebugLevel)
	} else {
		logrus.SetLevel(logrus.InfoLevel)
	}
}
