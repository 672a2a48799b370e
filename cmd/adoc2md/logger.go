package main

import (
	"io"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/alnah/go-adoc2md/internal/config"
)

// newLogger returns the console logger for level ("none", "normal",
// "debug"). Everything goes to w so stdout stays free for converted output.
func newLogger(level string, w io.Writer) *zap.Logger {
	var enabler zapcore.LevelEnabler
	switch strings.ToLower(level) {
	case config.LogDebug:
		enabler = zapcore.DebugLevel
	case config.LogNone:
		return zap.NewNop()
	case "error":
		enabler = zapcore.ErrorLevel
	default:
		enabler = zapcore.InfoLevel
	}

	ec := zap.NewDevelopmentEncoderConfig()
	ec.EncodeCaller = nil
	ec.TimeKey = zapcore.OmitKey
	ec.EncodeLevel = zapcore.CapitalLevelEncoder

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(ec), zapcore.Lock(zapcore.AddSync(w)), enabler)
	return zap.New(core).Named("adoc2md")
}

// logLevel resolves the effective level: --quiet and --verbose win over
// the configured one.
func logLevel(flags commonFlags, cfg *config.Config) string {
	switch {
	case flags.quiet:
		return "error"
	case flags.verbose:
		return config.LogDebug
	default:
		return cfg.Logging.Level
	}
}
