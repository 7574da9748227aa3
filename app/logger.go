package app

import (
	"os"
	"time"

	"Gin_postgres_redis_library_api/config"

	"github.com/rs/zerolog"
)

// NewLogger writes JSON in production and a console format otherwise.
func NewLogger(cfg config.Config) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	var logger zerolog.Logger
	if cfg.Production() {
		logger = zerolog.New(os.Stdout)
	} else {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})
	}
	return logger.Level(level).With().Timestamp().Str("app", cfg.AppName).Logger()
}
