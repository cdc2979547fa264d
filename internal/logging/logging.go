// Package logging builds the zap loggers used by the CLI and TUI.
//
// Logs never go to stdout: the CLI reserves stdout for its JSON result.
package logging

import (
	"fmt"
	"os"
	"strings"

	"github.com/judgeabook/judge-a-book/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ParseLevel converts a configured level name to a zap level.
func ParseLevel(level string) (zapcore.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return zap.DebugLevel, nil
	case "", "info":
		return zap.InfoLevel, nil
	case "warn", "warning":
		return zap.WarnLevel, nil
	case "error":
		return zap.ErrorLevel, nil
	}
	return zap.InfoLevel, fmt.Errorf("invalid log level %q", level)
}

// New builds a logger from cfg. Console output goes to stderr unless
// cfg.File is set, in which case records are appended to that file.
//
// The returned close func flushes the logger and closes the log file; call
// it once the logger is no longer used.
func New(cfg config.Log) (*zap.Logger, func(), error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, err
	}

	sink := zapcore.Lock(os.Stderr)
	var file *os.File
	if cfg.File != "" {
		file, err = os.OpenFile(cfg.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		sink = zapcore.Lock(file)
	}

	log := zap.New(zapcore.NewCore(newEncoder(cfg.Format), sink, zap.NewAtomicLevelAt(level)))
	closeLog := func() {
		log.Sync()
		if file != nil {
			file.Close()
		}
	}
	return log, closeLog, nil
}

func newEncoder(format string) zapcore.Encoder {
	if strings.ToLower(format) == "json" {
		encCfg := zap.NewProductionEncoderConfig()
		encCfg.EncodeTime = zapcore.RFC3339TimeEncoder
		encCfg.EncodeDuration = zapcore.StringDurationEncoder
		return zapcore.NewJSONEncoder(encCfg)
	}

	consoleCfg := zap.NewProductionEncoderConfig()
	consoleCfg.EncodeTime = zapcore.RFC3339TimeEncoder
	consoleCfg.EncodeDuration = zapcore.StringDurationEncoder
	consoleCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	consoleCfg.StacktraceKey = ""
	consoleCfg.CallerKey = ""
	return zapcore.NewConsoleEncoder(consoleCfg)
}
