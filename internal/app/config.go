package app

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go-leave/internal/balance"
	"go-leave/internal/shared/connection"
)

type Config struct {
	Port string
	Env  string

	DB            connection.PostgresConfig
	DBMaxRetries  int
	RunMigrations bool

	// RedisAddr empty disables the balance cache and idempotency keys.
	RedisAddr       string
	BalanceCacheTTL time.Duration
	IdempotencyTTL  time.Duration

	EmployeeIDPolicy  string
	EmployeeIDPattern string
	Defaults          balance.Defaults
	MaxAdvanceMonths  int
	Timezone          string

	CORSAllowOrigins []string
	RateLimitRPS     float64
	RateLimitBurst   int
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// LoadConfig reads the process environment. Call godotenv.Load first to pick
// up a local .env file.
func LoadConfig() (Config, error) {
	return loadConfig(os.Getenv)
}

func loadConfig(getenv func(string) string) (Config, error) {
	p := envParser{getenv: getenv}

	cfg := Config{
		Port: p.str("PORT", "3000"),
		Env:  p.str("APP_ENV", "development"),
		DB: connection.PostgresConfig{
			Host:     p.str("DB_HOST", "localhost"),
			Port:     p.str("DB_PORT", "5432"),
			User:     p.str("DB_USER", "postgres"),
			Password: getenv("DB_PASSWORD"),
			DBName:   p.str("DB_NAME", "leave_management"),
			SSLMode:  p.str("DB_SSLMODE", "disable"),
		},
		DBMaxRetries:  p.int("DB_MAX_RETRIES", 5),
		RunMigrations: p.bool("RUN_MIGRATIONS", true),

		RedisAddr:       getenv("REDIS_ADDR"),
		BalanceCacheTTL: p.duration("BALANCE_CACHE_TTL", 10*time.Minute),
		IdempotencyTTL:  p.duration("IDEMPOTENCY_TTL", 24*time.Hour),

		EmployeeIDPolicy:  p.str("EMPLOYEE_ID_POLICY", "alphanumeric"),
		EmployeeIDPattern: getenv("EMPLOYEE_ID_PATTERN"),
		Defaults: balance.Defaults{
			Annual: p.int("LEAVE_DEFAULT_ANNUAL", balance.DefaultAllowance.Annual),
			Sick:   p.int("LEAVE_DEFAULT_SICK", balance.DefaultAllowance.Sick),
			Casual: p.int("LEAVE_DEFAULT_CASUAL", balance.DefaultAllowance.Casual),
		},
		MaxAdvanceMonths: p.int("LEAVE_MAX_ADVANCE_MONTHS", 6),
		Timezone:         p.str("APP_TIMEZONE", "UTC"),

		CORSAllowOrigins: p.list("CORS_ALLOW_ORIGINS", []string{"*"}),
		RateLimitRPS:     p.float("RATE_LIMIT_RPS", 20),
		RateLimitBurst:   p.int("RATE_LIMIT_BURST", 40),
	}

	if cfg.Defaults.Annual < 0 || cfg.Defaults.Sick < 0 || cfg.Defaults.Casual < 0 {
		p.errs = append(p.errs, errors.New("LEAVE_DEFAULT_* must not be negative"))
	}
	if cfg.MaxAdvanceMonths < 1 {
		p.errs = append(p.errs, errors.New("LEAVE_MAX_ADVANCE_MONTHS must be at least 1"))
	}
	if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		p.errs = append(p.errs, fmt.Errorf("APP_TIMEZONE: %w", err))
	}

	if len(p.errs) > 0 {
		return Config{}, fmt.Errorf("invalid configuration: %w", errors.Join(p.errs...))
	}
	return cfg, nil
}

type envParser struct {
	getenv func(string) string
	errs   []error
}

func (p *envParser) str(key, def string) string {
	if v := strings.TrimSpace(p.getenv(key)); v != "" {
		return v
	}
	return def
}

func (p *envParser) int(key string, def int) int {
	v := strings.TrimSpace(p.getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return n
}

func (p *envParser) float(key string, def float64) float64 {
	v := strings.TrimSpace(p.getenv(key))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return f
}

func (p *envParser) bool(key string, def bool) bool {
	v := strings.TrimSpace(p.getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return b
}

func (p *envParser) duration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(p.getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return d
}

func (p *envParser) list(key string, def []string) []string {
	v := strings.TrimSpace(p.getenv(key))
	if v == "" {
		return def
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
