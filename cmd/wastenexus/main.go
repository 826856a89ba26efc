package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/wastenexus/wastenexus/internal/classify"
	"github.com/wastenexus/wastenexus/internal/database"
	"github.com/wastenexus/wastenexus/internal/logging"
	"github.com/wastenexus/wastenexus/internal/server"
	"github.com/wastenexus/wastenexus/internal/storage"
)

func main() {
	logger := logging.Setup(os.Getenv("WASTENEXUS_LOG_LEVEL"), os.Getenv("WASTENEXUS_LOG_FORMAT"))

	port := envOr("WASTENEXUS_PORT", "8080")
	dbPath := envOr("WASTENEXUS_DB_PATH", "wastenexus.db")

	jwtSecret := os.Getenv("WASTENEXUS_JWT_SECRET")
	if jwtSecret == "" {
		logger.Error("WASTENEXUS_JWT_SECRET is required")
		os.Exit(1)
	}

	db, err := database.Open(dbPath)
	if err != nil {
		logger.Error("open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	cfg := server.Config{
		JWTSecret:       jwtSecret,
		VAPIDPublicKey:  os.Getenv("WASTENEXUS_VAPID_PUBLIC_KEY"),
		VAPIDPrivateKey: os.Getenv("WASTENEXUS_VAPID_PRIVATE_KEY"),
		PushSubscriber:  os.Getenv("WASTENEXUS_PUSH_SUBSCRIBER"),
		Classify: classify.Config{
			BaseURL: os.Getenv("WASTENEXUS_CLASSIFY_URL"),
			APIKey:  os.Getenv("WASTENEXUS_CLASSIFY_API_KEY"),
		},
		Media: storage.Config{
			Endpoint:  os.Getenv("WASTENEXUS_S3_ENDPOINT"),
			Bucket:    os.Getenv("WASTENEXUS_S3_BUCKET"),
			Region:    envOr("WASTENEXUS_S3_REGION", "auto"),
			AccessKey: os.Getenv("WASTENEXUS_S3_ACCESS_KEY"),
			SecretKey: os.Getenv("WASTENEXUS_S3_SECRET_KEY"),
		},
	}

	srv := server.New(db, cfg, logger)

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Expired rate limit entries accumulate without periodic cleanup.
	cleanupCtx, cancelCleanup := context.WithCancel(context.Background())
	defer cancelCleanup()
	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-cleanupCtx.Done():
				return
			case <-ticker.C:
				srv.RateLimiter().Cleanup()
			}
		}
	}()

	go func() {
		logger.Info("listening", "port", port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
