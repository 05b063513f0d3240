package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go-leave/internal/middleware"
	"go-leave/internal/shared/connection"
	"go-leave/internal/shared/empid"
	"go-leave/internal/shared/migration"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Router *gin.Engine
	DB     *gorm.DB
	SQL    *sql.DB
	Redis  *redis.Client
}

// BuildApp connects to the stores, applies migrations when enabled and
// registers every module on a new router.
func BuildApp(ctx context.Context, cfg Config, logger *zap.Logger) (*App, error) {
	mc, err := resolveModuleConfig(cfg)
	if err != nil {
		return nil, err
	}

	// 1. Setup Infrastructure
	gormDB, err := connection.ConnectGORMWithRetry(cfg.DB, cfg.DBMaxRetries, logger)
	if err != nil {
		return nil, err
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, err
	}

	if cfg.RunMigrations {
		if err := migration.Run(ctx, sqlDB, logger); err != nil {
			_ = sqlDB.Close()
			return nil, err
		}
	}

	rdb, err := connection.ConnectRedisWithRetry(cfg.RedisAddr, cfg.DBMaxRetries, logger)
	if err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	if rdb == nil {
		logger.Warn("REDIS_ADDR not set, balance cache and idempotency keys disabled")
	}

	// 2. Register Modules & Routes
	router := NewRouter(cfg, logger)
	registerModules(router, sqlDB, gormDB, rdb, mc, logger)

	return &App{
		Router: router,
		DB:     gormDB,
		SQL:    sqlDB,
		Redis:  rdb,
	}, nil
}

// Close releases the store connections. It is registered as a server
// shutdown hook and runs after in-flight requests finish.
func (a *App) Close(context.Context) error {
	var errs []error
	if a.Redis != nil {
		errs = append(errs, a.Redis.Close())
	}
	if a.SQL != nil {
		errs = append(errs, a.SQL.Close())
	}
	return errors.Join(errs...)
}

func NewRouter(cfg Config, logger *zap.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.ContextLogger(logger),
		cors.New(corsConfig(cfg.CORSAllowOrigins)),
	)
	return router
}

func corsConfig(origins []string) cors.Config {
	c := cors.DefaultConfig()
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = origins
	}
	c.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Accept",
		middleware.HeaderRequestID, middleware.HeaderIdempotencyKey}
	c.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "OPTIONS"}
	c.ExposeHeaders = []string{middleware.HeaderRequestID, middleware.HeaderIdempotencyReplayed}
	return c
}

func resolveModuleConfig(cfg Config) (moduleConfig, error) {
	policy, err := empid.New(cfg.EmployeeIDPolicy, cfg.EmployeeIDPattern)
	if err != nil {
		return moduleConfig{}, fmt.Errorf("employee id policy: %w", err)
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return moduleConfig{}, fmt.Errorf("timezone: %w", err)
	}
	return moduleConfig{
		policy:          policy,
		defaults:        cfg.Defaults,
		location:        loc,
		maxAdvance:      cfg.MaxAdvanceMonths,
		balanceCacheTTL: cfg.BalanceCacheTTL,
		idempotencyTTL:  cfg.IdempotencyTTL,
		rateLimitRPS:    cfg.RateLimitRPS,
		rateLimitBurst:  cfg.RateLimitBurst,
	}, nil
}
