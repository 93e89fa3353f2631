package main

import (
	"codelive/internal/cache"
	"codelive/internal/config"
	"codelive/internal/repository"
	"codelive/internal/service"
	"codelive/internal/transport/rest"
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	log.Println("started")
	ctx := context.Background()

	// Optional .env for local development
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded .env")
	}

	cfg := config.Load()

	// MongoDB connection
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer mongoClient.Disconnect(ctx)

	// Ping MongoDB
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		log.Fatal("Failed to ping MongoDB:", err)
	}
	log.Println("Connected to MongoDB")

	db := mongoClient.Database(cfg.MongoDatabase)

	// Redis connection
	redisAddr := strings.TrimPrefix(cfg.RedisAddr, "redis://")
	rdb := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})
	defer rdb.Close()

	// Ping Redis
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatal("Failed to ping Redis:", err)
	}
	log.Println("Connected to Redis")

	// Initialize repositories and caches
	sessionRepo := repository.NewSessionRepo(db)
	sessionCache := cache.NewSessionCache(rdb)

	// Initialize services
	authSvc := service.NewAuthService()
	sessionSvc := service.NewSessionService(sessionRepo, sessionCache)
	participantSvc := service.NewParticipantService(sessionRepo, sessionCache, authSvc)
	broadcastSvc := service.NewBroadcastService(sessionRepo, sessionCache)
	scratchpadSvc := service.NewScratchpadService(sessionRepo)
	sweeperSvc := service.NewSweeperService(sessionRepo, sessionCache)

	// Background expiry sweep; the cron endpoint covers multi-node setups
	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go sweeperSvc.Run(sweepCtx, cfg.SweepInterval)
	log.Printf("Background sweeper started (interval %s)", cfg.SweepInterval)

	if cfg.CronSecret == "" {
		log.Println("Warning: CRON_SECRET not set, cron endpoint disabled")
	}

	// Create router with container
	container := &rest.Container{
		AuthService:        authSvc,
		SessionService:     sessionSvc,
		ParticipantService: participantSvc,
		BroadcastService:   broadcastSvc,
		ScratchpadService:  scratchpadSvc,
		SweeperService:     sweeperSvc,
		CronSecret:         cfg.CronSecret,
	}

	router := rest.NewRouter(container)

	// Start server
	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
	}

	go func() {
		log.Printf("Server starting on :%s", cfg.HTTPPort)
		log.Println("Endpoints:")
		log.Println("  POST /v1/auth/login")
		log.Println("  POST /v1/sessions")
		log.Println("  POST /v1/sessions/{code}/join")
		log.Println("  POST /v1/sessions/{code}/leave")
		log.Println("  GET  /v1/sessions/{code}/live")
		log.Println("  POST /v1/sessions/{code}/broadcast")
		log.Println("  POST /v1/sessions/{code}/scratchpad")
		log.Println("  GET  /v1/sessions/{code}/scratchpads")
		log.Println("  GET  /v1/sessions/{code}/metadata")
		log.Println("  POST /v1/sessions/{code}/end")
		log.Println("  POST /v1/cron/deactivate-sessions")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("ListenAndServe:", err)
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")
	stopSweep()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
