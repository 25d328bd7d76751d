// Package server assembles the gophauth server: it opens the configured
// account store, builds the credential and token components, and runs the
// gRPC and HTTP transports until the process is told to stop.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/gophauth/internal/filex"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/dmitrijs2005/gophauth/internal/server/httpapi"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/users"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
	"github.com/redis/go-redis/v9"

	gs "github.com/dmitrijs2005/gophauth/internal/server/grpc"
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	accounts *services.AccountService
	closers  []func() error
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel).With("app", c.AppName)
	app := &App{config: c, logger: logger}

	repo, err := app.openStore(ctx)
	if err != nil {
		return nil, fmt.Errorf("store init error: %w", err)
	}

	hasher, err := auth.NewHasher(c.BcryptCost)
	if err != nil {
		_ = app.Close()
		return nil, err
	}
	signing, err := auth.NewSigningConfig(c.SecretKey, c.SigningAlgorithm)
	if err != nil {
		_ = app.Close()
		return nil, err
	}

	app.accounts = services.NewAccountService(repo, hasher,
		auth.NewIssuer(signing), auth.NewVerifier(signing),
		c.AccessTokenValidityDuration, c.RefreshTokenValidityDuration, logger)

	return app, nil
}

// Accounts returns the account service the transports are built on.
func (app *App) Accounts() *services.AccountService {
	return app.accounts
}

func (app *App) openStore(ctx context.Context) (users.Repository, error) {
	c := app.config
	app.logger.Info(ctx, "Opening store", "backend", c.StoreBackend)

	switch c.StoreBackend {
	case config.StoreMemory:
		return users.NewMemoryRepository(), nil

	case config.StorePostgres:
		db, err := sql.Open("pgx", c.DatabaseDSN)
		if err != nil {
			return nil, err
		}
		return app.openSQL(ctx, db, repomanager.NewPostgresRepositoryManager())

	case config.StoreSQLite:
		path, err := filex.EnsureParentDir(c.SQLitePath)
		if err != nil {
			return nil, err
		}
		db, err := sql.Open("sqlite", path)
		if err != nil {
			return nil, err
		}
		db.SetMaxOpenConns(1)
		return app.openSQL(ctx, db, repomanager.NewSQLiteRepositoryManager())

	case config.StoreRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     c.RedisAddr,
			Password: c.RedisPassword,
			DB:       c.RedisDB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, fmt.Errorf("redis ping: %w", err)
		}
		app.closers = append(app.closers, rdb.Close)
		return users.NewRedisRepository(rdb, c.AppName), nil
	}

	return nil, fmt.Errorf("unknown store backend %q", c.StoreBackend)
}

func (app *App) openSQL(ctx context.Context, db *sql.DB, m repomanager.RepositoryManager) (users.Repository, error) {
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}
	if err := m.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}
	app.closers = append(app.closers, db.Close)
	return m.Users(db), nil
}

// Close releases the store connections.
func (app *App) Close() error {
	var firstErr error
	for _, closeFn := range app.closers {
		if err := closeFn(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	app.closers = nil
	return firstErr
}

func (app *App) initSignalHandler(ctx context.Context, cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		defer signal.Stop(sigs)
		select {
		case s := <-sigs:
			app.logger.Info(ctx, "Signal received", "signal", s.String())
			cancelFunc()
		case <-ctx.Done():
		}
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s, err := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.accounts)
	if err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
		return
	}
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s, err := httpapi.NewHTTPServer(app.config.EndpointAddrHTTP, app.config.AppName, app.logger, app.accounts)
	if err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
		return
	}
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves both transports until ctx is cancelled, a termination signal
// arrives or either server fails, then closes the store.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(ctx, cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.Close(); err != nil {
		app.logger.Error(ctx, "store close failed", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
