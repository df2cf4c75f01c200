package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/bilgisen/sevennews/internal/logger"
)

// LoggerConfig defines the config for the logger middleware
type LoggerConfig struct {
	// Skip defines a function to skip middleware.
	// Optional. Default: nil
	Next func(c *fiber.Ctx) bool

	// Logger is the zerolog logger instance to use.
	// If not provided, the default logger will be used.
	Logger *zerolog.Logger

	// Fields to include in the logs
	Fields []string
}

// DefaultLoggerConfig is the default config
var DefaultLoggerConfig = LoggerConfig{
	Next:   nil,
	Fields: []string{"latency", "status", "method", "path", "ip", "user_agent"},
}

// NewLogger creates a new middleware handler
func NewLogger(config ...LoggerConfig) fiber.Handler {
	cfg := DefaultLoggerConfig

	if len(config) > 0 {
		cfg = config[0]
		if len(cfg.Fields) == 0 {
			cfg.Fields = DefaultLoggerConfig.Fields
		}
	}

	fields := make(map[string]bool)
	for _, f := range cfg.Fields {
		fields[f] = true
	}

	return func(c *fiber.Ctx) error {
		if cfg.Next != nil && cfg.Next(c) {
			return c.Next()
		}

		start := time.Now()
		err := c.Next()
		latency := time.Since(start)

		log := cfg.Logger
		if log == nil {
			log = logger.Get()
		}

		// The error handler has not run yet, so derive the status it will
		// write from the error.
		status := c.Response().StatusCode()
		if err != nil {
			status = StatusOf(err)
		}

		var event *zerolog.Event
		switch {
		case status >= fiber.StatusInternalServerError:
			event = log.Error()
		case status >= fiber.StatusBadRequest:
			event = log.Warn()
		default:
			event = log.Info()
		}

		if fields["method"] {
			event = event.Str("method", c.Method())
		}
		if fields["path"] {
			event = event.Str("path", c.Path())
		}
		if fields["status"] {
			event = event.Int("status", status)
		}
		if fields["ip"] {
			event = event.Str("ip", c.IP())
		}
		if fields["user_agent"] {
			event = event.Str("user_agent", c.Get(fiber.HeaderUserAgent))
		}
		if fields["latency"] {
			event = event.Dur("latency", latency)
		}
		if err != nil {
			event = event.Err(err)
		}

		event.Msg("request")

		return err
	}
}

// RequestLogger is a simpler version of the logger middleware
func RequestLogger() fiber.Handler {
	return NewLogger(LoggerConfig{
		Fields: []string{"latency", "status", "method", "path", "ip"},
		Next: func(c *fiber.Ctx) bool {
			return c.Path() == "/api/health" || c.Path() == "/metrics"
		},
	})
}
