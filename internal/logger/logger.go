// Package logger configures the process-wide zap logger.
//
// All output goes to stderr: the MCP transport owns stdout for protocol
// frames, so nothing else may write there.
package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config controls logger construction
type Config struct {
	Level  zapcore.Level
	Format string // "console" or "json"
}

// DefaultConfig returns the stderr console configuration
func DefaultConfig() Config {
	return Config{
		Level:  zapcore.InfoLevel,
		Format: "console",
	}
}

// SetLevel parses a textual level ("debug", "info", "warn", "error") into
// the config
func (c *Config) SetLevel(level string) error {
	parsed, err := zapcore.ParseLevel(level)
	if err != nil {
		return err
	}
	c.Level = parsed
	return nil
}

var root *zap.Logger = zap.NewNop()

// Init builds the root logger; call once at process start
func Init(cfg Config) {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	if cfg.Format == "json" {
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	} else {
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	}

	core := zapcore.NewCore(encoder, zapcore.Lock(os.Stderr), cfg.Level)
	root = zap.New(core)
}

// Sync flushes buffered log entries
func Sync() {
	_ = root.Sync()
}

// ForComponent returns a sugared logger tagged with the component name
func ForComponent(component string) *zap.SugaredLogger {
	return root.Sugar().With("component", component)
}
