package main

import (
	"fmt"
	"sync"
	"time"

	"github.com/Belphemur/titlovi/internal/config"
	"github.com/getsentry/sentry-go"
)

var (
	sentryOnce    sync.Once
	sentryEnabled bool
)

// initSentry enables error reporting when a DSN is configured
func initSentry(cfg *config.Config) error {
	var err error
	sentryOnce.Do(func() {
		if cfg == nil || cfg.Sentry.DSN == "" {
			return
		}
		err = sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.Sentry.DSN,
			Environment: cfg.Sentry.Environment,
		})
		if err != nil {
			err = fmt.Errorf("initialize sentry: %w", err)
			return
		}
		sentryEnabled = true
		logger := config.GetLogger()
		logger.Debug().Str("environment", cfg.Sentry.Environment).Msg("Sentry error reporting enabled")
	})
	return err
}

func flushSentry() {
	if sentryEnabled {
		sentry.Flush(2 * time.Second)
	}
}
