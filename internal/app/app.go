package app

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/Pratham266/cassure-go/internal/api"
	"github.com/Pratham266/cassure-go/internal/config"
	"github.com/Pratham266/cassure-go/internal/storage"
	"github.com/Pratham266/cassure-go/internal/upload"
	"github.com/Pratham266/cassure-go/internal/upstream"
)

// App wires configuration, storage, the upstream parser client, and the
// HTTP server into a runnable service.
type App struct {
	cfg    *config.Config
	logger zerolog.Logger
}

// New builds an App from loaded configuration.
func New(cfg *config.Config, logger zerolog.Logger) *App {
	return &App{cfg: cfg, logger: logger}
}

// Run starts the HTTP server and blocks until the context is cancelled or
// an interrupt arrives, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		statements   storage.StatementStore
		transactions storage.TransactionStore
		store        *storage.Store
	)
	if a.cfg.Database.DSN != "" {
		pool, err := storage.NewPool(ctx, storage.PoolConfig{
			DSN:             a.cfg.Database.DSN,
			MaxOpenConns:    a.cfg.Database.MaxOpenConns,
			MaxIdleConns:    a.cfg.Database.MaxIdleConns,
			ConnMaxLifetime: a.cfg.Database.ConnMaxLifetime,
		})
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		store = storage.NewStore(pool)
		defer store.Close()
		statements = store
		transactions = store
		a.logger.Info().Msg("database connected")
	} else {
		// The streaming endpoint still works without a database; audit
		// writes are skipped and the persistence endpoints return 503.
		a.logger.Warn().Msg("database.dsn not set, running without persistence")
	}

	parserClient := upstream.New(upstream.Options{
		URL:     a.cfg.Parser.URL,
		APIKey:  a.cfg.Parser.APIKey,
		Timeout: a.cfg.Parser.Timeout,
	}, a.logger)

	uploads := upload.NewStore(a.cfg.Uploads.Dir, a.cfg.Uploads.MaxFileSize, a.logger)

	handler := &api.Handler{
		Statements:     statements,
		Transactions:   transactions,
		Parser:         parserClient,
		Uploads:        uploads,
		Tolerance:      a.cfg.Reconcile.Tolerance,
		ProcessTimeout: a.cfg.Reconcile.ProcessTimeout,
		Logger:         a.logger,
	}

	srv := fiber.New(fiber.Config{
		AppName:               a.cfg.App.Name,
		BodyLimit:             a.cfg.Server.BodyLimit,
		ReadTimeout:           a.cfg.Server.ReadTimeout,
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if fe, ok := err.(*fiber.Error); ok {
				code = fe.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"success": false,
				"message": err.Error(),
			})
		},
	})
	handler.RegisterRoutes(srv)

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info().Str("addr", a.cfg.Server.Addr).Msg("http server listening")
		errCh <- srv.Listen(a.cfg.Server.Addr)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	a.logger.Info().Msg("shutting down")
	if err := srv.ShutdownWithTimeout(a.cfg.Server.ShutdownTimeout); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	return nil
}
