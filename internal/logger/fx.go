package logger

import (
	"context"

	"github.com/sewtrack/sewtrack/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func newFromConfig(appCfg config.Config) (*zap.Logger, error) {
	return New(appCfg.Logger)
}

func registerHooks(lc fx.Lifecycle, log *zap.Logger) {
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			_ = log.Sync()
			return nil
		},
	})
}

// Module wires the global zap logger for the application.
var Module = fx.Module("logger",
	fx.Provide(newFromConfig),
	fx.Invoke(registerHooks),
)
