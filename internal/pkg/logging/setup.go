package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/Vodeneev/keirin-odds/internal/pkg/config"
)

// SetupLogger настраивает глобальный logrus logger и возвращает entry с полем service
func SetupLogger(cfg *config.LoggingConfig, serviceName string) (*logrus.Entry, error) {
	return SetupLoggerWithOutput(cfg, serviceName, os.Stdout)
}

// SetupLoggerWithOutput is SetupLogger writing to out instead of stdout.
func SetupLoggerWithOutput(cfg *config.LoggingConfig, serviceName string, out io.Writer) (*logrus.Entry, error) {
	level := logrus.InfoLevel
	if cfg != nil && cfg.Level != "" {
		parsed, err := logrus.ParseLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("parse logging.level: %w", err)
		}
		level = parsed
	}

	format := "text"
	if cfg != nil && cfg.Format != "" {
		format = strings.ToLower(cfg.Format)
	}

	var formatter logrus.Formatter
	switch format {
	case "text":
		formatter = &logrus.TextFormatter{FullTimestamp: true}
	case "json":
		formatter = &logrus.JSONFormatter{}
	default:
		return nil, fmt.Errorf("unknown logging.format %q (want text or json)", format)
	}

	// Глобальный logger: chromedp и gin пишут через него же
	logrus.SetOutput(out)
	logrus.SetLevel(level)
	logrus.SetFormatter(formatter)

	return logrus.WithField("service", serviceName), nil
}
