package config

import (
	"log/slog"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

// Sentry holds CLI flags for error reporting configuration
type Sentry struct {
	dsn string
	env string
}

// Flags returns CLI flags for Sentry configuration
func (x *Sentry) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "sentry-dsn",
			Usage:       "Sentry DSN (error reporting is disabled when empty)",
			Category:    "Error reporting",
			Sources:     cli.EnvVars("FORMLOOM_SENTRY_DSN"),
			Destination: &x.dsn,
		},
		&cli.StringFlag{
			Name:        "sentry-env",
			Usage:       "Sentry environment name",
			Category:    "Error reporting",
			Sources:     cli.EnvVars("FORMLOOM_SENTRY_ENV"),
			Destination: &x.env,
		},
	}
}

// Enabled reports whether a DSN has been provided.
func (x *Sentry) Enabled() bool {
	return x.dsn != ""
}

// Configure initializes the Sentry client when a DSN is set. The
// returned closer flushes buffered events and must be called on
// shutdown.
func (x *Sentry) Configure(version string) (func(), error) {
	if !x.Enabled() {
		return func() {}, nil
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:         x.dsn,
		Environment: x.env,
		Release:     "formloom@" + version,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to initialize sentry")
	}

	return func() { sentry.Flush(2 * time.Second) }, nil
}

func (x Sentry) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Bool("enabled", x.Enabled()),
		slog.String("env", x.env),
	)
}
