package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/trego/provider/internal/config"
)

// New builds the process logger from configuration.
func New(cfg *config.Config) (*logrus.Logger, error) {
	return newLogger(cfg, os.Stderr)
}

func newLogger(cfg *config.Config, out io.Writer) (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("logging: parse level: %w", err)
	}

	l := logrus.New()
	l.SetOutput(out)
	l.SetLevel(level)

	switch cfg.LogFormat {
	case "json":
		l.SetFormatter(&logrus.JSONFormatter{})
	case "text", "":
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return nil, fmt.Errorf("logging: unknown format %q", cfg.LogFormat)
	}

	return l, nil
}
