package app

import (
	"database/sql"
	"time"

	"go-leave/internal/balance"
	"go-leave/internal/leave"
	"go-leave/internal/middleware"
	"go-leave/internal/shared/empid"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

// moduleConfig is the part of Config the feature modules need, resolved
// into ready-to-use values.
type moduleConfig struct {
	policy          empid.Policy
	defaults        balance.Defaults
	location        *time.Location
	maxAdvance      int
	balanceCacheTTL time.Duration
	idempotencyTTL  time.Duration
	rateLimitRPS    float64
	rateLimitBurst  int
}

func registerModules(
	router *gin.Engine,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
	cfg moduleConfig,
	logger *zap.Logger,
) {
	// --- Repositories ---
	balanceRepo := balance.NewRepository(gormDB)
	leaveRepo := leave.NewRepository(gormDB)

	// --- Services ---
	balanceCache := balance.NewCache(rdb, cfg.balanceCacheTTL)
	balanceService := balance.NewService(balanceRepo, balanceCache, cfg.policy, cfg.defaults, logger)
	leaveService := leave.NewService(db, leaveRepo, balanceRepo, balanceCache, leave.Rules{
		EmployeeIDs:      cfg.policy,
		Defaults:         cfg.defaults,
		MaxAdvanceMonths: cfg.maxAdvance,
		Location:         cfg.location,
		Now:              time.Now,
	}, logger)

	// --- Handlers ---
	balanceHandler := balance.NewHandler(balanceService, logger)
	leaveHandler := leave.NewHandler(leaveService, logger)

	// --- Routes Registration ---
	router.GET("/health", healthHandler(db))

	writeLimit := middleware.RateLimitByIP(rate.Limit(cfg.rateLimitRPS), cfg.rateLimitBurst)
	idempotency := middleware.Idempotency(rdb, cfg.idempotencyTTL, logger)

	api := router.Group("/api")
	{
		balance.RegisterRoutes(api, balanceHandler)
		leave.RegisterRoutes(api, leaveHandler, writeLimit, idempotency)
	}
}
