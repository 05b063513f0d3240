package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go-leave/internal/app"
	"go-leave/internal/shared/connection"
	"go-leave/internal/shared/migration"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [up|down|version]\n", os.Args[0])
	}
	flag.Parse()

	command := flag.Arg(0)
	if command == "" {
		command = "up"
	}

	_ = godotenv.Load()

	cfg, err := app.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, err := app.NewLogger(cfg)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	if err := run(context.Background(), cfg, command, logger); err != nil {
		logger.Fatal("migrate failed", zap.String("command", command), zap.Error(err))
	}
}

func run(ctx context.Context, cfg app.Config, command string, logger *zap.Logger) error {
	gormDB, err := connection.ConnectGORMWithRetry(cfg.DB, cfg.DBMaxRetries, logger)
	if err != nil {
		return err
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	m, err := migration.New(ctx, sqlDB, logger)
	if err != nil {
		return err
	}
	defer m.Close()

	switch command {
	case "up":
		return m.Up()
	case "down":
		return m.Down()
	case "version":
		v, dirty, err := m.Version()
		if err != nil {
			return err
		}
		logger.Info("schema version", zap.Uint("version", v), zap.Bool("dirty", dirty))
		return nil
	default:
		flag.Usage()
		return fmt.Errorf("unknown command %q", command)
	}
}
