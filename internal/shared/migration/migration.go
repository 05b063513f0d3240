package migration

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

//go:embed sql/*.sql
var files embed.FS

// Migrator applies the embedded schema. It borrows one connection from the
// pool and gives it back on Close; the pool itself stays open.
type Migrator struct {
	m      *migrate.Migrate
	logger *zap.Logger
}

func New(ctx context.Context, db *sql.DB, logger ...*zap.Logger) (*Migrator, error) {
	l := zap.L().Named("migration")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("migration")
	}

	src, err := iofs.New(files, "sql")
	if err != nil {
		return nil, fmt.Errorf("open embedded migrations: %w", err)
	}

	conn, err := db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire migration connection: %w", err)
	}

	driver, err := postgres.WithConnection(ctx, conn, &postgres.Config{})
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("create postgres migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		_ = driver.Close()
		return nil, fmt.Errorf("create migration instance: %w", err)
	}

	return &Migrator{m: m, logger: l}, nil
}

func (m *Migrator) Up() error {
	if err := m.m.Up(); err != nil {
		return m.classify("up", err)
	}
	m.logger.Info("migrations applied")
	return nil
}

func (m *Migrator) Down() error {
	if err := m.m.Down(); err != nil {
		return m.classify("down", err)
	}
	m.logger.Info("migrations rolled back")
	return nil
}

// Version returns the applied schema version. A fresh database reports 0.
func (m *Migrator) Version() (uint, bool, error) {
	v, dirty, err := m.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return v, dirty, err
}

func (m *Migrator) Close() error {
	srcErr, dbErr := m.m.Close()
	return errors.Join(srcErr, dbErr)
}

func (m *Migrator) classify(direction string, err error) error {
	if errors.Is(err, migrate.ErrNoChange) {
		m.logger.Info("no new migrations", zap.String("direction", direction))
		return nil
	}

	var dirtyErr migrate.ErrDirty
	if errors.As(err, &dirtyErr) {
		m.logger.Error("migration left database dirty", zap.Int("version", dirtyErr.Version))
		return fmt.Errorf("migration %s failed: dirty database version %d", direction, dirtyErr.Version)
	}

	m.logger.Error("migration failed", zap.String("direction", direction), zap.Error(err))
	return fmt.Errorf("migration %s failed: %w", direction, err)
}

// Run applies all pending migrations and releases the connection.
func Run(ctx context.Context, db *sql.DB, logger ...*zap.Logger) error {
	m, err := New(ctx, db, logger...)
	if err != nil {
		return err
	}
	defer m.Close()

	return m.Up()
}
