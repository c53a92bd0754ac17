// Package server wires the matchkeeper components together and runs the
// HTTP server until the process is told to stop.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/matchkeeper/internal/cryptox"
	"github.com/dmitrijs2005/matchkeeper/internal/dbx"
	"github.com/dmitrijs2005/matchkeeper/internal/logging"
	"github.com/dmitrijs2005/matchkeeper/internal/server/config"
	"github.com/dmitrijs2005/matchkeeper/internal/server/httpapi"
	"github.com/dmitrijs2005/matchkeeper/internal/server/identity"
	"github.com/dmitrijs2005/matchkeeper/internal/server/metrics"
	"github.com/dmitrijs2005/matchkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/matchkeeper/internal/server/services"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	http   *httpapi.Server
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	cipher, err := cryptox.FromSecret(c.DBKey)
	if err != nil {
		return nil, fmt.Errorf("db key: %w", err)
	}

	db, err := repomanager.Open(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	mx := metrics.New()
	coord := dbx.NewCoordinator(db, logger.With("module", "dbx"), dbx.WithObserver(mx.ObserveTx))
	resolver := identity.NewSteamResolver(c.SteamAPIBaseURL, c.SteamAPIKey,
		c.IdentityTimeout, c.IdentityCacheTTL, c.IdentityCacheSize)

	us := services.NewUserService(db, coord, rm, resolver, logger, mx)
	ss := services.NewServerService(db, coord, rm, cipher, logger, mx)
	ts := services.NewTeamService(db, coord, rm, resolver, logger, mx)
	ls := services.NewLogoService(db, coord, rm, services.NewS3Presigner(c), c.LogoURLValidity, logger)

	hs := httpapi.NewServer(c.EndpointAddrHTTP, logger, mx, c.SharedSecret, us, ss, ts, ls)

	return &App{config: c, logger: logger, db: db, http: hs}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.http.Run(ctx); err != nil {
		app.logger.Error(ctx, "http server failed", "error", err)
		cancelFunc()
	}
}

// Run serves until a termination signal arrives or the server fails, then
// closes the database pool.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close failed", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
