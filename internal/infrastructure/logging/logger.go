package logging

import (
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/nerrad567/gray-logic-registry/internal/infrastructure/config"
)

// serviceName is attached to every log entry.
const serviceName = "graylogic-registry"

// Logger wraps a zap SugaredLogger with Gray Logic-specific functionality.
//
// It provides structured logging with default fields and level-based
// filtering. Methods take a message followed by alternating key-value pairs:
//
//	logger.Info("values saved", "count", 12)
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
type Logger struct {
	sugar *zap.SugaredLogger
}

// New creates a new Logger with the specified configuration.
//
// It configures:
//   - Output format (JSON for production, console for development)
//   - Log level filtering
//   - Default fields (service name, version)
//   - Output destination
//
// Parameters:
//   - cfg: Logging configuration from config.yaml
//   - version: Application version for default field
//
// Returns:
//   - *Logger: Configured logger ready for use
func New(cfg config.LoggingConfig, version string) *Logger {
	var output io.Writer
	switch strings.ToLower(cfg.Output) {
	case "stderr":
		output = os.Stderr
	default:
		output = os.Stdout
	}

	var encoder zapcore.Encoder
	switch strings.ToLower(cfg.Format) {
	case "text", "console":
		encCfg := zap.NewDevelopmentEncoderConfig()
		encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		encCfg.EncodeCaller = zapcore.ShortCallerEncoder
		encoder = zapcore.NewConsoleEncoder(encCfg)
	default:
		encCfg := zap.NewProductionEncoderConfig()
		encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		encoder = zapcore.NewJSONEncoder(encCfg)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(output), zap.NewAtomicLevelAt(parseLevel(cfg.Level)))
	return newWithCore(core, version)
}

// newWithCore builds a Logger over an existing core with the default fields.
func newWithCore(core zapcore.Core, version string) *Logger {
	base := zap.New(core).With(
		zap.String("service", serviceName),
		zap.String("version", version),
	)
	return &Logger{sugar: base.Sugar()}
}

// parseLevel converts a string log level to a zap level.
//
// Supported levels: debug, info, warn, error
// Defaults to info if unrecognised.
func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Debug logs a message at debug level with key-value pairs.
func (l *Logger) Debug(msg string, args ...any) { l.sugar.Debugw(msg, args...) }

// Info logs a message at info level with key-value pairs.
func (l *Logger) Info(msg string, args ...any) { l.sugar.Infow(msg, args...) }

// Warn logs a message at warn level with key-value pairs.
func (l *Logger) Warn(msg string, args ...any) { l.sugar.Warnw(msg, args...) }

// Error logs a message at error level with key-value pairs.
func (l *Logger) Error(msg string, args ...any) { l.sugar.Errorw(msg, args...) }

// With returns a new Logger with additional default attributes.
//
// Parameters:
//   - args: Key-value pairs to add as default attributes
//
// Returns:
//   - *Logger: New logger with added attributes
//
// Example:
//
//	mqttLogger := logger.With("component", "mqtt")
//	mqttLogger.Info("connected") // Includes component=mqtt
func (l *Logger) With(args ...any) *Logger {
	return &Logger{sugar: l.sugar.With(args...)}
}

// Zap returns the underlying zap logger for libraries that take one.
func (l *Logger) Zap() *zap.Logger {
	return l.sugar.Desugar()
}

// Sync flushes buffered log entries. Call it before exit.
func (l *Logger) Sync() error {
	return l.sugar.Sync()
}

// Default creates a default logger for use before configuration is loaded.
//
// This logger outputs to stdout in JSON format at info level.
// It should only be used during early startup before config is available.
//
// Returns:
//   - *Logger: Default logger
func Default() *Logger {
	return New(config.LoggingConfig{
		Level:  "info",
		Format: "json",
		Output: "stdout",
	}, "dev")
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{sugar: zap.NewNop().Sugar()}
}
