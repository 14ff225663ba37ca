package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/sharath018/jharkhand-tourism-backend/config"
	"github.com/sharath018/jharkhand-tourism-backend/database"
	"github.com/sharath018/jharkhand-tourism-backend/internal/application"
	"github.com/sharath018/jharkhand-tourism-backend/internal/auditlog"
	"github.com/sharath018/jharkhand-tourism-backend/internal/notification"
	"github.com/sharath018/jharkhand-tourism-backend/internal/vendorprofile"
	"github.com/sharath018/jharkhand-tourism-backend/routes"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	db := database.Connect(cfg)

	// Auto-migrate models
	log.Println("🔄 Running database migrations...")
	if err := db.AutoMigrate(
		&vendorprofile.User{},
		&vendorprofile.VendorProfile{},
		&application.Application{},
		&application.Document{},
		&application.Certificate{},
		&auditlog.AuditLog{},
		&notification.InAppNotification{},
		&notification.FCMDeviceToken{},
	); err != nil {
		panic(fmt.Sprintf("❌ DB AutoMigrate failed: %v", err))
	}
	log.Println("✅ Database migrations completed")

	rdb := connectRedis(ctx, cfg)
	if rdb != nil {
		defer rdb.Close()
	}

	publisher := notification.NewPublisher(cfg.KafkaBrokers, cfg.KafkaApplicationTopic)
	defer func() {
		if err := publisher.Close(); err != nil {
			log.Printf("⚠️ Kafka publisher close: %v", err)
		}
	}()

	log.Println("🔄 Initializing Firebase...")
	pusher := notification.NewFCMPusher(ctx, cfg)

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173", "http://127.0.0.1:5173", "http://localhost:4173", "http://127.0.0.1:4173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS", "HEAD"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "Content-Length", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.Setup(router, cfg, routes.Infra{
		DB:        db,
		Redis:     rdb,
		Publisher: publisher,
		Pusher:    pusher,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		fmt.Printf("🚀 Server starting on port %s\n", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("❌ Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("🔄 Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("⚠️ Server shutdown: %v", err)
	}
	log.Println("✅ Server stopped")
}

// connectRedis returns nil when Redis is not configured or unreachable; rate
// limits then fall back to memory.
func connectRedis(ctx context.Context, cfg *config.Config) *redis.Client {
	if cfg.RedisAddr == "" {
		log.Println("⚠️ REDIS_ADDR not set, running without Redis")
		return nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		log.Printf("⚠️ Redis unreachable at %s: %v", cfg.RedisAddr, err)
		rdb.Close()
		return nil
	}
	log.Println("✅ Redis connected")
	return rdb
}
