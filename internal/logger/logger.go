package logger

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"royalgate-platform/internal/config"
)

var Module = fx.Module("zap",
	fx.Provide(New),
	fx.Invoke(ReplaceGlobals),
)

// New builds the application logger. Production gets structured JSON on
// stdout; anything else gets the human-readable development encoder.
func New(cfg *config.Config) (*zap.Logger, error) {
	if cfg.AppEnv != "production" {
		return zap.NewDevelopment()
	}

	zcfg := zap.NewProductionConfig()
	zcfg.EncoderConfig.TimeKey = "timestamp"
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zcfg.EncoderConfig.LevelKey = "severity"
	zcfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	zcfg.EncoderConfig.CallerKey = "caller"
	zcfg.EncoderConfig.EncodeCaller = zapcore.ShortCallerEncoder
	zcfg.OutputPaths = []string{"stdout"}
	zcfg.ErrorOutputPaths = []string{"stderr"}

	return zcfg.Build()
}

// ReplaceGlobals installs the logger as zap.L() for packages that log through
// the global.
func ReplaceGlobals(log *zap.Logger) {
	zap.ReplaceGlobals(log)
}
