// Package server wires the iQube auth server together: it opens the store,
// applies the schema, builds the services and the operation dispatcher,
// and runs the gRPC endpoint until the process is signalled.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/iqube/internal/logging"
	"github.com/dmitrijs2005/iqube/internal/server/auth"
	"github.com/dmitrijs2005/iqube/internal/server/config"
	"github.com/dmitrijs2005/iqube/internal/server/dispatch"
	"github.com/dmitrijs2005/iqube/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/iqube/internal/server/services"
	"golang.org/x/sync/errgroup"

	gs "github.com/dmitrijs2005/iqube/internal/server/grpc"
)

type App struct {
	config     *config.Config
	logger     logging.Logger
	db         *sql.DB
	dispatcher *dispatch.Dispatcher
	tokens     *auth.TokenIssuer
}

// NewApp opens the configured database, ensures the schema exists and
// builds the dispatcher. The caller owns the returned App and must Close it.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	if c.UsesDevSecret() {
		logger.Warn(ctx, "using development signing secret, set JWT_SECRET before deploying")
	}

	db, err := repomanager.OpenDB(ctx, c.DatabaseDriver, c.DSN(), c.ConnectionTimeout)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	app, err := newApp(ctx, c, logger, db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return app, nil
}

func newApp(ctx context.Context, c *config.Config, logger logging.Logger, db *sql.DB) (*App, error) {
	rm, err := repomanager.NewSQLRepositoryManager(db, c.DatabaseDriver, c.ConnectionTimeout)
	if err != nil {
		return nil, err
	}

	report, err := rm.EnsureSchema(ctx)
	if err != nil {
		return nil, fmt.Errorf("schema init error: %w", err)
	}
	logger.Info(ctx, "schema ready", "applied", report.AppliedVersions, "version", report.CurrentVersion)

	hasher := auth.NewCredentialHasher(c.BcryptCost, 0)
	tokens := auth.NewTokenIssuer(c.SecretKey, c.TokenValidity)

	as := services.NewAuthService(db, rm, hasher, tokens, logger)
	ss := services.NewSystemService(rm, c.ServerName, c.ServerVersion, logger)

	d := dispatch.NewDispatcher(as, ss, dispatch.Options{
		CollapseAuthErrors: c.CollapseAuthErrors,
		RequireToken:       c.RequireToken,
	}, logger)
	logger.Info(ctx, "dispatcher ready", "operations", d.Operations(),
		"requireToken", c.RequireToken, "collapseAuthErrors", c.CollapseAuthErrors)

	return &App{config: c, logger: logger, db: db, dispatcher: d, tokens: tokens}, nil
}

// Run serves until ctx is cancelled or SIGINT, SIGTERM or SIGQUIT arrives.
func (app *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	app.logger.Info(ctx, "Starting app...", "addr", app.config.GRPCAddress, "driver", app.config.DatabaseDriver)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s := gs.NewGRPCServer(app.config.GRPCAddress, app.logger, app.dispatcher, app.tokens)
		return s.Run(ctx)
	})

	if err := g.Wait(); err != nil {
		app.logger.Error(ctx, err.Error())
		return err
	}

	app.logger.Info(ctx, "app stopped")
	return nil
}

func (app *App) Close() error {
	return app.db.Close()
}
