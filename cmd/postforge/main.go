package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/postforge/postforge/internal/api/linkedin"
	"github.com/postforge/postforge/internal/auth"
	"github.com/postforge/postforge/internal/config"
	"github.com/postforge/postforge/internal/domain"
	"github.com/postforge/postforge/internal/generator"
	"github.com/postforge/postforge/internal/identity"
	"github.com/postforge/postforge/internal/pipeline"
	"github.com/postforge/postforge/internal/publisher"
	"github.com/postforge/postforge/internal/registration"
	"github.com/postforge/postforge/internal/safehttp"
	"github.com/postforge/postforge/internal/scheduler"
	"github.com/postforge/postforge/internal/server"
	"github.com/postforge/postforge/internal/storage"
	"github.com/postforge/postforge/internal/storage/memory"
	"github.com/postforge/postforge/internal/storage/sqlite"
	"github.com/postforge/postforge/internal/telemetry"
)

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Register built-in generator providers
	registration.RegisterBuiltins()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize OpenTelemetry
	shutdownTracer, err := telemetry.InitTracer("postforge", cfg.Telemetry, logger)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			logger.Error("failed to shutdown tracer", slog.String("error", err.Error()))
		}
	}()

	httpClient := safehttp.NewClient(60 * time.Second)

	liOpts := []linkedin.ClientOption{linkedin.WithHTTPClient(httpClient)}
	if cfg.LinkedIn.BaseURL != "" {
		liOpts = append(liOpts, linkedin.WithBaseURL(cfg.LinkedIn.BaseURL))
	}
	li := linkedin.NewClient(cfg.LinkedIn.AccessToken, liOpts...)

	gen, err := generator.New(cfg.Generator, httpClient)
	if err != nil {
		log.Fatalf("Failed to create generator: %v", err)
	}

	store, err := newStore(cfg.Storage)
	if err != nil {
		log.Fatalf("Failed to open run store: %v", err)
	}
	defer store.Close()

	fetcher := identity.NewLinkedInFetcher(li)
	pub := publisher.NewLinkedInPublisher(li,
		publisher.WithMaxChars(cfg.Generator.MaxChars),
		publisher.WithLogger(logger),
	)

	pipe := pipeline.New(fetcher, gen, pub,
		pipeline.WithStore(store),
		pipeline.WithLogger(logger),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	entries, err := scheduleEntries(cfg.Schedule)
	if err != nil {
		log.Fatalf("Invalid schedule config: %v", err)
	}
	sched := scheduler.New(entries, pipe.Run, logger)
	sched.Start(ctx)

	authenticator := auth.NewAuthenticator(cfg.Server.APIKeys)
	srv := server.New(cfg.Server.Port, logger, authenticator)

	handlers := server.NewHandlers(pipe, fetcher, gen, pub,
		server.DelayerFunc(func(spec *domain.ContentSpec, delay time.Duration) {
			sched.ScheduleOnce(ctx, spec, delay)
		}),
		store,
	)
	handlers.Routes(srv.Router)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	logger.Info("postforge started",
		slog.Int("port", cfg.Server.Port),
		slog.String("provider", gen.Name()),
		slog.String("storage", cfg.Storage.Type),
		slog.Int("schedules", len(entries)),
		slog.Bool("auth", authenticator.Enabled()),
	)

	// Wait for shutdown signal or server failure
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			logger.Error("server failed", slog.String("error", err.Error()))
		}
	}

	cancel()
	sched.Wait()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", slog.String("error", err.Error()))
		// os.Exit skips the deferred cleanups, so run them here.
		if cerr := store.Close(); cerr != nil {
			logger.Error("store close error", slog.String("error", cerr.Error()))
		}
		if terr := shutdownTracer(context.Background()); terr != nil {
			logger.Error("failed to shutdown tracer", slog.String("error", terr.Error()))
		}
		os.Exit(1)
	}

	logger.Info("postforge shutdown complete")
}

func newStore(cfg config.StorageConfig) (storage.RunStore, error) {
	switch cfg.Type {
	case "sqlite":
		path := cfg.SQLite.Path
		if path == "" {
			path = "./data/postforge.db"
		}
		return sqlite.New(path)
	case "none":
		return storage.Nop{}, nil
	default:
		return memory.New(), nil
	}
}

func scheduleEntries(cfgs []config.ScheduleConfig) ([]scheduler.Entry, error) {
	entries := make([]scheduler.Entry, 0, len(cfgs))
	for _, c := range cfgs {
		every, err := c.Interval()
		if err != nil {
			return nil, err
		}
		entries = append(entries, scheduler.Entry{
			Topic:  c.Topic,
			Every:  every,
			Tone:   domain.Tone(c.Tone),
			Length: domain.Length(c.Length),
		})
	}
	return entries, nil
}
