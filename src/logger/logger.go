package logger

import (
	"fmt"
	"io"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/uptrace/opentelemetry-go-extra/otellogrus"
)

const (
	TextFormat = "text"
	JSONFormat = "json"
)

// Setup configures the package level logrus logger and attaches log entries to the
// active span of the entry's context.
func Setup(out io.Writer, level, format string) error {
	lvl, err := log.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		return fmt.Errorf("logger.Setup: %w", err)
	}

	log.SetLevel(lvl)

	if out != nil {
		log.SetOutput(out)
	}

	switch strings.ToLower(format) {
	case "", TextFormat:
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	case JSONFormat:
		log.SetFormatter(&log.JSONFormatter{})
	default:
		return fmt.Errorf("logger.Setup: unknown format %q", format)
	}

	log.AddHook(otellogrus.NewHook(otellogrus.WithLevels(
		log.PanicLevel,
		log.FatalLevel,
		log.ErrorLevel,
		log.WarnLevel,
		log.InfoLevel,
	)))

	return nil
}
