package main

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/pulseboard/backend/internal/config"
	"github.com/pulseboard/backend/internal/server"
	"github.com/pulseboard/backend/pkg/database"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load config")
	}

	setupLogger(cfg)

	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Connect(cfg.DSN())
	if err != nil {
		logrus.WithError(err).Fatal("failed to connect to database")
	}

	if err := database.Migrate(db); err != nil {
		logrus.WithError(err).Fatal("failed to run migrations")
	}

	rdb := connectRedis(cfg.RedisURL)

	srv := server.New(cfg, db, rdb)

	logrus.WithField("port", cfg.Port).Info("starting server")
	if err := srv.Run(":" + cfg.Port); err != nil {
		logrus.WithError(err).Fatal("server exited")
	}
}

func setupLogger(cfg *config.Config) {
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
	if cfg.AppEnv == "production" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}
}

// connectRedis returns nil when Redis is unconfigured or unreachable.
// Callers treat a nil client as "caching and cooldowns disabled".
func connectRedis(url string) *redis.Client {
	if url == "" {
		logrus.Info("REDIS_URL not set, running without redis")
		return nil
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		logrus.WithError(err).Warn("invalid REDIS_URL, running without redis")
		return nil
	}

	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logrus.WithError(err).Warn("redis unreachable, running without redis")
		return nil
	}

	return client
}
