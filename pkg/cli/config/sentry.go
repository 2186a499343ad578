package config

import (
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

// Sentry holds configuration for error reporting
type Sentry struct {
	dsn         string
	environment string
}

// Flags returns CLI flags for Sentry configuration
func (s *Sentry) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "sentry-dsn",
			Usage:       "Sentry DSN. Empty disables error reporting",
			Category:    "Sentry",
			Sources:     cli.EnvVars("MEDASSIST_SENTRY_DSN"),
			Destination: &s.dsn,
		},
		&cli.StringFlag{
			Name:        "sentry-env",
			Usage:       "Sentry environment",
			Value:       "production",
			Category:    "Sentry",
			Sources:     cli.EnvVars("MEDASSIST_SENTRY_ENV"),
			Destination: &s.environment,
		},
	}
}

// Enabled reports whether a DSN is configured
func (s *Sentry) Enabled() bool {
	return s.dsn != ""
}

// Configure initializes the Sentry client. The returned closer flushes
// buffered events and is safe to call when Sentry is disabled.
func (s *Sentry) Configure(release string) (func(), error) {
	if s.dsn == "" {
		return func() {}, nil
	}

	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         s.dsn,
		Environment: s.environment,
		Release:     release,
	}); err != nil {
		return nil, goerr.Wrap(err, "failed to initialize sentry")
	}

	return func() {
		sentry.Flush(2 * time.Second)
	}, nil
}
