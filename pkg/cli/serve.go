package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/medassist-dev/medassist/pkg/cli/config"
	httpctrl "github.com/medassist-dev/medassist/pkg/controller/http"
	"github.com/medassist-dev/medassist/pkg/domain/interfaces"
	"github.com/medassist-dev/medassist/pkg/service/report"
	"github.com/medassist-dev/medassist/pkg/service/worker"
	"github.com/medassist-dev/medassist/pkg/usecase"
	"github.com/medassist-dev/medassist/pkg/utils/logging"
	"github.com/medassist-dev/medassist/pkg/utils/safe"
	"github.com/urfave/cli/v3"
)

// buildUseCases opens the repository and language model and wires the use cases.
// The caller closes the returned repository.
func buildUseCases(ctx context.Context, repoCfg *config.Repository, llmCfg *config.LLM, appCfg *config.App) (*usecase.UseCases, interfaces.Repository, error) {
	ucOpts, err := appCfg.Configure()
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to load application configuration")
	}

	llmClient, err := llmCfg.Configure(ctx)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to configure LLM")
	}
	if llmClient != nil {
		ucOpts = append(ucOpts, usecase.WithLLM(llmClient))
		logging.Default().Info("Language model enabled", "llm", llmCfg.LogAttrs())
	} else {
		logging.Default().Warn("LLM provider not configured, consultation turns will fail")
	}

	repo, err := repoCfg.Configure(ctx)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to initialize repository")
	}

	return usecase.New(repo, ucOpts...), repo, nil
}

func cmdServe() *cli.Command {
	var addr string
	var sessionTTL time.Duration
	var fonts []string
	var appCfg config.App
	var repoCfg config.Repository
	var llmCfg config.LLM

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("MEDASSIST_ADDR"),
			Destination: &addr,
		},
		&cli.DurationFlag{
			Name:        "session-idle-ttl",
			Usage:       "Evict idle consultation sessions unused for this long",
			Value:       30 * time.Minute,
			Sources:     cli.EnvVars("MEDASSIST_SESSION_IDLE_TTL"),
			Destination: &sessionTTL,
		},
		&cli.StringSliceFlag{
			Name:        "report-font",
			Usage:       "TrueType font for PDF reports (first readable file wins)",
			Sources:     cli.EnvVars("MEDASSIST_REPORT_FONT"),
			Destination: &fonts,
		},
	}

	// Add shared config flags
	flags = append(flags, appCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, llmCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			uc, repo, err := buildUseCases(ctx, &repoCfg, &llmCfg, &appCfg)
			if err != nil {
				return err
			}
			defer safe.Close(ctx, repo)

			var sweeper *worker.SessionSweeper
			if sessionTTL > 0 {
				sweeper = worker.NewSessionSweeper(uc.Sessions, time.Minute, sessionTTL)
				if err := sweeper.Start(ctx); err != nil {
					return goerr.Wrap(err, "failed to start session sweeper")
				}
			}

			server := &http.Server{
				Addr:              addr,
				Handler:           httpctrl.New(uc, httpctrl.WithReport(report.New(fonts...))),
				ReadHeaderTimeout: 30 * time.Second,
			}

			// Setup signal handling for graceful shutdown
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			errCh := make(chan error, 1)
			go func() {
				logging.Default().Info("Starting HTTP server", "addr", addr)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				logging.Default().Info("Received shutdown signal", "signal", sig)

				if sweeper != nil {
					sweeper.Stop()
				}

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}

				logging.Default().Info("Server shutdown completed")
				return nil
			}
		},
	}
}
