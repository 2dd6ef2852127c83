package config

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// NewLogger provides the shared zap logger. Services log swallowed
// notification/email failures here so they stay observable.
func NewLogger(lc fx.Lifecycle) (*zap.Logger, error) {
	logger, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			_ = logger.Sync()
			return nil
		},
	})
	return logger, nil
}
