package logger

import (
	"github.com/kurtgav/wizardmatch-sub001/internal/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the process logger and installs it as the zap global.
func New(cfg *config.Config) *zap.Logger {
	log := zap.Must(zap.NewDevelopment())
	if cfg != nil && cfg.IsProduction() {
		config := zap.NewProductionConfig()
		config.EncoderConfig.TimeKey = "timestamp"
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		config.EncoderConfig.StacktraceKey = "stacktrace"
		config.EncoderConfig.LevelKey = "severity"
		config.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		config.EncoderConfig.CallerKey = "caller"
		config.EncoderConfig.EncodeCaller = zapcore.ShortCallerEncoder
		config.Encoding = "json"
		config.OutputPaths = []string{"stdout"}
		config.ErrorOutputPaths = []string{"stderr"}

		log = zap.Must(config.Build())
	}

	if cfg != nil {
		log = log.With(
			zap.String("env", cfg.Environment),
			zap.String("service_name", cfg.ServiceName),
		)
	}

	zap.ReplaceGlobals(log)

	return log
}
