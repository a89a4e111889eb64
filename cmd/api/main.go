package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/delordemm1/dealer-dashboard/internal/config"
	"github.com/spf13/cobra"
)

// Options for the CLI.
type Options struct {
	Port int `help:"Port to listen on (defaults to SERVER_PORT)" short:"p"`
}

func main() {
	newCLI(func(err error) {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}).Run()
}

// newCLI wires the serve hooks and the purge subcommand. fail is called with
// any error that should end the process.
func newCLI(fail func(error)) humacli.CLI {
	cli := humacli.New(func(hooks humacli.Hooks, options *Options) {
		// humacli calls this before every subcommand as well, so nothing here
		// may open a connection. The server is built when it starts.
		s := &serve{options: options, fail: fail}
		hooks.OnStart(s.start)
		hooks.OnStop(s.stop)
	})

	cli.Root().AddCommand(&cobra.Command{
		Use:   "purge",
		Short: "Delete expired and stale login credentials once, then exit",
		Run: func(cmd *cobra.Command, _ []string) {
			if err := runPurge(cmd.Context()); err != nil {
				fail(fmt.Errorf("purge: %w", err))
			}
		},
	})
	return cli
}

// serve owns the HTTP server and the app behind it for the root command.
type serve struct {
	options *Options
	fail    func(error)

	mu     sync.Mutex
	srv    *http.Server
	app    *app
	cancel context.CancelFunc
	logger *slog.Logger
}

func (s *serve) start() {
	cfg, err := config.Load()
	if err != nil {
		s.fail(fmt.Errorf("load configuration: %w", err))
		return
	}
	logger := newLogger(cfg)
	slog.SetDefault(logger)
	logger.Info("configuration loaded successfully", "env", cfg.Server.Env, "dev_mode", cfg.Auth.DevMode)

	ctx, cancel := context.WithCancel(context.Background())
	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		cancel()
		s.fail(fmt.Errorf("initialize application: %w", err))
		return
	}

	port := cfg.Server.Port
	if s.options.Port != 0 {
		port = strconv.Itoa(s.options.Port)
	}
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           a.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.mu.Lock()
	s.srv, s.app, s.cancel, s.logger = srv, a, cancel, logger
	s.mu.Unlock()

	a.scheduler.Start(ctx)
	logger.Info(fmt.Sprintf("Starting server on port %s...", port))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.fail(fmt.Errorf("server failed to start: %w", err))
	}
}

func (s *serve) stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.srv == nil {
		return
	}

	shutdownCtx, done := context.WithTimeout(context.Background(), 10*time.Second)
	defer done()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("server shutdown failed", "error", err)
	}
	s.app.auth.Wait()
	s.app.scheduler.Stop()
	s.cancel()
	s.app.close()
	s.logger.Info("server stopped")
}

func newLogger(cfg *config.Config) *slog.Logger {
	if cfg.IsProduction() {
		return slog.New(slog.NewJSONHandler(os.Stdout, nil))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// runPurge opens only the credential store, so it works without Redis or Mongo.
func runPurge(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)
	if cfg.Database.URL == "" {
		return errors.New("DATABASE_URL is required to purge credentials")
	}

	job, closePool, err := newPurgeJob(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closePool()
	return job.Run(ctx)
}
