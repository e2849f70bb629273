// Package logging builds the process logger from configuration.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/sirupsen/logrus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/unkn0wn-root/bookcache"
	"github.com/unkn0wn-root/bookcache/internal/config"
	logruslog "github.com/unkn0wn-root/bookcache/log/logrus"
	sloglog "github.com/unkn0wn-root/bookcache/log/slog"
	zaplog "github.com/unkn0wn-root/bookcache/log/zap"
)

// Loggers is what the rest of the process logs through. Slog feeds the
// slog-based event hooks and shares the level of Logger.
type Loggers struct {
	Logger bookcache.Logger
	Slog   *slog.Logger
	Sync   func() error
}

func Build(cfg config.LogConfig, out io.Writer) (*Loggers, error) {
	level := strings.ToLower(cfg.Level)
	if level == "warning" {
		level = "warn"
	}

	var sl slog.Level
	if err := sl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("logging: level %q: %w", cfg.Level, err)
	}
	ls := &Loggers{
		Slog: slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: sl})),
		Sync: func() error { return nil },
	}

	switch cfg.Backend {
	case "", "zap":
		zl, err := zapcore.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("logging: level %q: %w", cfg.Level, err)
		}
		encCfg := zap.NewProductionEncoderConfig()
		enc := zapcore.NewJSONEncoder(encCfg)
		if cfg.Development {
			encCfg = zap.NewDevelopmentEncoderConfig()
			enc = zapcore.NewConsoleEncoder(encCfg)
		}
		base := zap.New(zapcore.NewCore(enc, zapcore.AddSync(out), zl), zap.AddCaller())
		ls.Logger = zaplog.New(base)
		ls.Sync = base.Sync

	case "logrus":
		lr, err := logrus.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("logging: level %q: %w", cfg.Level, err)
		}
		l := logrus.New()
		l.SetOutput(out)
		l.SetLevel(lr)
		if cfg.Development {
			l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		} else {
			l.SetFormatter(&logrus.JSONFormatter{})
		}
		ls.Logger = logruslog.New(l)

	case "slog":
		ls.Logger = sloglog.New(ls.Slog)

	default:
		return nil, fmt.Errorf("logging: unknown backend %q", cfg.Backend)
	}
	return ls, nil
}
