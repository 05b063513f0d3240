package app

import "go.uber.org/zap"

// NewLogger returns a production JSON logger when APP_ENV=production and a
// development console logger otherwise.
func NewLogger(cfg Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
