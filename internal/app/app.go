package app

import (
	"database/sql"
	"go-leave/internal/config"
	"go-leave/internal/middleware"
	"go-leave/internal/shared/connection"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// BuildApp connects infrastructure, migrates the schema and mounts every
// route on router. The returned cleanup releases the connections.
func BuildApp(router *gin.Engine, cfg config.Config) (func(), error) {
	logger := zap.L().Named("app")

	gormDB, err := connection.ConnectGORMWithRetry(
		cfg.DB.Host,
		cfg.DB.User,
		cfg.DB.Password,
		cfg.DB.Name,
		cfg.DB.Port,
		cfg.DB.SSLMode,
		cfg.ConnectRetries,
	)
	if err != nil {
		return nil, err
	}
	logger.Info("database connection established")

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, err
	}

	if err := Migrate(gormDB, logger); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	redisClient, err := connection.ConnectRedisWithRetry(cfg.RedisAddr, cfg.ConnectRetries)
	if err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	logger.Info("redis connection established")

	router.Use(middleware.RequestID())
	router.Use(middleware.RateLimitByIP(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst))
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	if err := registerModules(router, cfg, sqlDB, gormDB, redisClient, logger); err != nil {
		closeAll(sqlDB, redisClient.Close)
		return nil, err
	}

	return func() { closeAll(sqlDB, redisClient.Close) }, nil
}

func closeAll(db *sql.DB, closers ...func() error) {
	_ = db.Close()
	for _, c := range closers {
		_ = c()
	}
}
