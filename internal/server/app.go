// Package server wires the ticket authority: ACL storage, the relay store
// admin client, the nonce store and the ticket HTTP API.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/corral/internal/identity"
	"github.com/dmitrijs2005/corral/internal/logging"
	"github.com/dmitrijs2005/corral/internal/server/authority"
	"github.com/dmitrijs2005/corral/internal/server/config"
	"github.com/dmitrijs2005/corral/internal/server/relaystore"
	"github.com/dmitrijs2005/corral/internal/server/repositories/acl"
	"github.com/gin-gonic/gin"
)

var errNoParams = errors.New("key issuer params or master key required")

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	nonces *authority.NonceStore
	server *authority.Server
}

// Params returns the public key issuer parameters signatures are verified
// against.
func Params(c *config.Config) (identity.Params, error) {
	if c.IBSParams != "" {
		return identity.ParseParams(c.IBSParams)
	}
	if c.IBSMasterKey != "" {
		m, err := identity.ParseMasterKey(c.IBSMasterKey)
		if err != nil {
			return identity.Params{}, err
		}
		return m.Params, nil
	}
	return identity.Params{}, errNoParams
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.New(logging.Options{Format: c.LogFormat, File: c.LogFile, Debug: c.Debug})
	app := &App{config: c, logger: logger}

	params, err := Params(c)
	if err != nil {
		return nil, err
	}

	var repo acl.Repository
	if c.DatabaseDSN != "" {
		db, err := acl.OpenPostgres(ctx, c.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("db init error: %w", err)
		}
		app.db = db
		repo = acl.NewPostgresRepository(db)
	} else {
		logger.Warn(ctx, "no database configured, ACLs are kept in memory")
		repo = acl.NewInMemoryRepository()
	}

	admin, err := relaystore.NewAdmin(ctx, relaystore.Options{
		AccessKey: c.S3AccessKey,
		SecretKey: c.S3SecretKey,
		Region:    c.S3Region,
		Endpoint:  c.S3BaseEndpoint,
		Bucket:    c.S3Bucket,
		Logger:    logger,
	})
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("relay store: %w", err)
	}
	if c.S3Provision {
		if err := admin.EnsureBucket(ctx); err != nil {
			app.Close()
			return nil, err
		}
	}

	app.nonces, err = authority.NewNonceStore(ctx, c.ChallengeValidity)
	if err != nil {
		app.Close()
		return nil, err
	}

	app.server = authority.NewServer(authority.Options{
		ACL:             repo,
		Objects:         admin,
		Tickets:         relaystore.NewSigner(c.S3AccessKey, c.S3SecretKey, c.S3Bucket),
		Verifier:        params,
		Nonces:          app.nonces,
		SessionSecret:   []byte(c.SecretKey),
		SessionValidity: c.SessionValidity,
		EpochSkew:       c.EpochSkew,
		Middleware:      []gin.HandlerFunc{authority.RequestLogger(logger)},
		Logger:          logger,
	})
	return app, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()
	defer app.Close()

	app.logger.Info(ctx, "Starting authority...")
	app.initSignalHandler(cancelFunc)

	var (
		wg     sync.WaitGroup
		runErr error
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.server.Serve(ctx, app.config.ListenAddr); err != nil {
			app.logger.Error(ctx, err.Error())
			runErr = err
			cancelFunc()
		}
	}()
	wg.Wait()
	return runErr
}

func (app *App) Close() {
	if app.nonces != nil {
		app.nonces.Close()
	}
	if app.db != nil {
		app.db.Close()
	}
}
