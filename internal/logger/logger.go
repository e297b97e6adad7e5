// Package logger builds the zap loggers used by the server, the consumer and
// the terminal client.
package logger

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"
)

// Encodings accepted by Config.Encoding.
const (
	EncodingJSON    = "json"
	EncodingConsole = "console"
)

// Config drives how the logger is built.
type Config struct {
	Development bool
	Level       string
	Encoding    string
	// Color forces coloured console levels on or off. Nil means colour when
	// stderr is a terminal and NO_COLOR is unset.
	Color *bool
	// OutputPaths overrides zap's default sink (stderr).
	OutputPaths []string
}

// New returns a logger configured from cfg.
func New(cfg Config) (*zap.Logger, error) {
	zapCfg := zap.NewProductionConfig()
	if cfg.Development {
		zapCfg = zap.NewDevelopmentConfig()
	}

	if cfg.Encoding != "" {
		if cfg.Encoding != EncodingJSON && cfg.Encoding != EncodingConsole {
			return nil, fmt.Errorf("logger: unknown encoding %q", cfg.Encoding)
		}

		zapCfg.Encoding = cfg.Encoding
	}

	if cfg.Level != "" {
		level, err := zapcore.ParseLevel(strings.ToLower(cfg.Level))
		if err != nil {
			return nil, fmt.Errorf("logger: invalid level %q: %w", cfg.Level, err)
		}

		zapCfg.Level = zap.NewAtomicLevelAt(level)
	}

	if len(cfg.OutputPaths) > 0 {
		zapCfg.OutputPaths = cfg.OutputPaths
	}

	colored := shouldColorize()
	if cfg.Color != nil {
		colored = *cfg.Color
	}

	zapCfg.EncoderConfig = encoderConfig(zapCfg.Encoding, colored)

	return zapCfg.Build(zap.AddStacktrace(zapcore.ErrorLevel))
}

// Sync flushes l, ignoring the errors stderr and stdout return when they are
// terminals.
func Sync(l *zap.Logger) error {
	err := l.Sync()
	if err == nil || errors.Is(err, syscall.ENOTTY) || errors.Is(err, syscall.EINVAL) || errors.Is(err, os.ErrInvalid) {
		return nil
	}

	return err
}

func encoderConfig(encoding string, colored bool) zapcore.EncoderConfig {
	cfg := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stack",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
		EncodeName:     zapcore.FullNameEncoder,
	}

	if encoding != EncodingConsole {
		cfg.EncodeLevel = zapcore.LowercaseLevelEncoder
		cfg.EncodeTime = zapcore.ISO8601TimeEncoder

		return cfg
	}

	cfg.ConsoleSeparator = " | "
	cfg.EncodeTime = func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(t.Format("2006-01-02 15:04:05.000"))
	}
	cfg.EncodeLevel = func(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
		label := fmt.Sprintf("%-5s", level.CapitalString())
		if colored {
			label = levelColor(level) + label + colorReset
		}

		enc.AppendString(label)
	}

	return cfg
}

func shouldColorize() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}

	return term.IsTerminal(int(os.Stderr.Fd()))
}

const (
	colorReset   = "\x1b[0m"
	colorRed     = "\x1b[31m"
	colorGreen   = "\x1b[32m"
	colorYellow  = "\x1b[33m"
	colorMagenta = "\x1b[35m"
	colorCyan    = "\x1b[36m"
)

func levelColor(level zapcore.Level) string {
	switch level {
	case zapcore.DebugLevel:
		return colorCyan
	case zapcore.WarnLevel:
		return colorYellow
	case zapcore.ErrorLevel, zapcore.FatalLevel:
		return colorRed
	case zapcore.DPanicLevel, zapcore.PanicLevel:
		return colorMagenta
	default:
		return colorGreen
	}
}
