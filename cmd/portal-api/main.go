package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	v1 "certificate-automation/certifier-portal/certifier-portal-backend/api/v1"
	"certificate-automation/certifier-portal/certifier-portal-backend/internal/config"
	"certificate-automation/certifier-portal/certifier-portal-backend/internal/logging"
	"certificate-automation/certifier-portal/certifier-portal-backend/internal/server"
	"certificate-automation/certifier-portal/certifier-portal-backend/internal/store"
	"certificate-automation/certifier-portal/certifier-portal-backend/pkg/storage"
)

func main() {
	configPath := flag.String("config", "config.json", "path to the JSON config file")
	memory := flag.Bool("memory", false, "use the in-process store instead of MongoDB")
	flag.Parse()

	// A missing .env is fine; real deployments set the environment directly
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fallback, _ := zap.NewDevelopment()
		fallback.Fatal("Failed to load configuration", zap.Error(err))
	}

	// Initialize logger
	logger, err := logging.NewLogger(cfg.Logging)
	if err != nil {
		fallback, _ := zap.NewDevelopment()
		fallback.Fatal("Failed to create logger", zap.Error(err))
	}
	defer logger.Sync()

	if cfg.Security.JWTSecret == "" {
		secret := make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			logger.Fatal("Failed to generate session secret", zap.Error(err))
		}
		cfg.Security.JWTSecret = hex.EncodeToString(secret)
		logger.Warn("JWT_SECRET is not set; sessions will not survive a restart")
	}

	// Connect to the document store
	var db store.DocumentStore
	if *memory || cfg.Database.Memory {
		logger.Warn("Using the in-memory store; data is lost on restart")
		db = store.NewMemoryStore()
	} else {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Database.ConnectTimeout)
		db, err = store.NewMongoStore(ctx, cfg.Database, logger.Named("store"))
		cancel()
		if err != nil {
			logger.Fatal("Failed to connect to database", zap.Error(err))
		}
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := db.Close(ctx); err != nil {
			logger.Error("Failed to close database", zap.Error(err))
		}
	}()

	var s3 storage.S3Client
	if cfg.Storage.HasS3() {
		s3, err = storage.NewS3Client(context.Background(), storage.S3Options{
			Region:    cfg.Storage.S3Region,
			Endpoint:  cfg.Storage.S3Endpoint,
			AccessKey: cfg.Storage.S3AccessKey,
			SecretKey: cfg.Storage.S3SecretKey,
		})
		if err != nil {
			logger.Fatal("Failed to create S3 client", zap.Error(err))
		}
		logger.Info("S3 template storage enabled", zap.String("region", cfg.Storage.S3Region))
	}

	// Initialize portal
	api, err := v1.SetupPortalAPI(v1.Dependencies{
		Config: cfg,
		Store:  db,
		S3:     s3,
		Logger: logger,
	})
	if err != nil {
		logger.Fatal("Failed to set up portal", zap.Error(err))
	}

	// Setup Router
	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router, err := server.NewRouter(api, db, logger.Named("http"))
	if err != nil {
		logger.Fatal("Failed to build router", zap.Error(err))
	}

	// Start Server
	srv := &http.Server{
		Addr:         cfg.Server.GetServerAddr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	logger.Info("Server started", zap.String("addr", srv.Addr))

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exiting")
}
