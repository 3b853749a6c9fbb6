package cli

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/formloom/formloom/pkg/cli/config"
	httpctrl "github.com/formloom/formloom/pkg/controller/http"
	"github.com/formloom/formloom/pkg/service/worker"
	"github.com/formloom/formloom/pkg/usecase"
	"github.com/formloom/formloom/pkg/utils/logging"
)

func cmdServe() *cli.Command {
	var addr string
	var autoSaveInterval time.Duration
	var sseHeartbeat time.Duration
	var activityInterval time.Duration
	var repoCfg config.Repository
	var srcCfg config.Sources

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("FORMLOOM_ADDR"),
			Destination: &addr,
		},
		&cli.DurationFlag{
			Name:        "autosave-interval",
			Usage:       "Quiet window before a draft update is persisted",
			Value:       usecase.DefaultAutoSaveInterval,
			Sources:     cli.EnvVars("FORMLOOM_AUTOSAVE_INTERVAL"),
			Destination: &autoSaveInterval,
		},
		&cli.DurationFlag{
			Name:        "sse-heartbeat",
			Usage:       "Keep-alive interval for watch streams",
			Value:       15 * time.Second,
			Sources:     cli.EnvVars("FORMLOOM_SSE_HEARTBEAT"),
			Destination: &sseHeartbeat,
		},
		&cli.DurationFlag{
			Name:        "activity-interval",
			Usage:       "Interval for entry activity summary logs (0 disables)",
			Sources:     cli.EnvVars("FORMLOOM_ACTIVITY_INTERVAL"),
			Destination: &activityInterval,
		},
	}

	// Add shared config flags
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, srcCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()

			// Initialize repository based on backend type
			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logger.Error("failed to close repository", "error", err.Error())
				}
			}()

			uc := usecase.New(repo, usecase.WithAutoSaveInterval(autoSaveInterval))

			// Seed form definitions on boot when sources are configured.
			// Seeding only happens against an empty form collection, so a
			// restart never clobbers forms edited through the API.
			if srcCfg.Configured() {
				forms, err := srcCfg.Load()
				if err != nil {
					return goerr.Wrap(err, "failed to load form definitions")
				}
				seeded, err := uc.Form.EnsureSeeded(ctx, forms)
				if err != nil {
					return goerr.Wrap(err, "failed to seed form definitions")
				}
				if seeded {
					logger.Info("Seeded form definitions", "count", len(forms))
				} else {
					logger.Info("Forms already present, skipping seed")
				}
			}

			// Start activity reporter when enabled
			var reporter *worker.ActivityReporter
			if activityInterval > 0 {
				reporter = worker.NewActivityReporter(repo, activityInterval)
				if err := reporter.Start(ctx); err != nil {
					return goerr.Wrap(err, "failed to start activity reporter")
				}
			}

			handler := httpctrl.New(uc, httpctrl.WithHeartbeat(sseHeartbeat))

			// Watch streams hold their connections open until the request
			// context ends, so shutdown cancels the base context before
			// draining.
			baseCtx, cancelBase := context.WithCancel(ctx)
			defer cancelBase()

			server := &http.Server{
				Addr:              addr,
				Handler:           handler,
				ReadHeaderTimeout: 30 * time.Second,
				BaseContext: func(net.Listener) context.Context {
					return baseCtx
				},
			}

			// Setup signal handling for graceful shutdown
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			// Start server in goroutine
			errCh := make(chan error, 1)
			go func() {
				logger.Info("Starting HTTP server",
					"addr", addr,
					"autosave_interval", autoSaveInterval.String(),
				)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			// Wait for shutdown signal or server error
			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				logger.Info("Received shutdown signal", "signal", sig)

				// Stop the activity reporter first
				if reporter != nil {
					reporter.Stop()
				}

				cancelBase()

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				// Flush pending auto-saves before the repository goes away
				if err := uc.Close(shutdownCtx); err != nil {
					logger.Error("failed to flush pending auto-saves", "error", err.Error())
				}

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}

				logger.Info("Server shutdown completed")
				return nil
			}
		},
	}
}
