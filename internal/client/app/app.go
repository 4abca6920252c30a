// Package app wires the device daemon: object store, origin server,
// Bluetooth listener, download coordinator, uploader, control API and the
// metrics/events listener.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	evbus "github.com/asaskevich/EventBus"
	"github.com/dmitrijs2005/corral/internal/client/bluetooth"
	"github.com/dmitrijs2005/corral/internal/client/config"
	"github.com/dmitrijs2005/corral/internal/client/control"
	"github.com/dmitrijs2005/corral/internal/client/coordinator"
	"github.com/dmitrijs2005/corral/internal/client/fetcher"
	"github.com/dmitrijs2005/corral/internal/client/metrics"
	"github.com/dmitrijs2005/corral/internal/client/models"
	"github.com/dmitrijs2005/corral/internal/client/origin"
	"github.com/dmitrijs2005/corral/internal/client/relay"
	"github.com/dmitrijs2005/corral/internal/client/repositories/objects"
	"github.com/dmitrijs2005/corral/internal/client/service"
	"github.com/dmitrijs2005/corral/internal/client/ticket"
	"github.com/dmitrijs2005/corral/internal/client/uploader"
	"github.com/dmitrijs2005/corral/internal/filex"
	"github.com/dmitrijs2005/corral/internal/identity"
	"github.com/dmitrijs2005/corral/internal/logging"
	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	bus     evbus.Bus
	metrics *metrics.Metrics

	bt        bluetooth.Transport
	btServer  *bluetooth.Server
	tokens    *origin.TokenRegistry
	origin    *origin.Server
	coord     *coordinator.Coordinator
	service   *service.Service
	control   *control.GRPCServer
	hub       *control.Hub
	rootCtx   context.Context
	rootClose context.CancelFunc
}

// KeyManager picks the signing key source: in-process issuance when a
// master key is configured, issued key files otherwise.
func KeyManager(c *config.Config) (identity.KeyManager, error) {
	if c.IBSMasterKey != "" {
		master, err := identity.ParseMasterKey(c.IBSMasterKey)
		if err != nil {
			return nil, fmt.Errorf("ibs master key: %w", err)
		}
		return identity.NewIssuingKeyManager(master), nil
	}
	return identity.NewFileKeyManager(c.KeysDir()), nil
}

func NewApp(c *config.Config) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	logger := logging.New(logging.Options{Format: c.LogFormat, File: c.LogFile, Debug: c.Debug})
	rootCtx, rootClose := context.WithCancel(context.Background())

	for _, dir := range []string{c.DataDir, c.CacheDir(), c.StagingDir()} {
		if err := filex.EnsureDir(dir); err != nil {
			rootClose()
			return nil, err
		}
	}
	for _, dir := range []string{c.CacheDir(), c.StagingDir()} {
		n, err := filex.RemoveStale(dir)
		if err != nil {
			logger.Warn(rootCtx, "stale file cleanup failed", "dir", dir, "error", err)
		} else if n > 0 {
			logger.Info(rootCtx, "removed stale partial files", "dir", dir, "count", n)
		}
	}

	db, err := objects.OpenSQLite(rootCtx, c.DatabasePath())
	if err != nil {
		rootClose()
		return nil, fmt.Errorf("db init error: %w", err)
	}
	repo := objects.NewSQLiteRepository(db)

	keys, err := KeyManager(c)
	if err != nil {
		db.Close()
		rootClose()
		return nil, err
	}

	tokens, err := origin.NewTokenRegistry(rootCtx, c.OriginTokenValidity)
	if err != nil {
		db.Close()
		rootClose()
		return nil, fmt.Errorf("token registry: %w", err)
	}

	a := &App{config: c, logger: logger, db: db, bus: evbus.New(), metrics: metrics.New(nil),
		tokens: tokens, rootCtx: rootCtx, rootClose: rootClose}

	a.bt = bluetooth.Unavailable("disabled by configuration")
	if c.BluetoothEnabled {
		a.bt = bluetooth.Detect()
	}
	btRegistry := bluetooth.NewRegistry()
	a.btServer = bluetooth.NewServer(btRegistry, logger)

	a.origin = origin.NewServer(origin.Options{
		AppID:      c.AppID,
		Advertise:  c.Advertised(),
		AssetsDir:  c.AssetsDir,
		Objects:    repo,
		Tokens:     tokens,
		Bluetooth:  btRegistry,
		BTAddr:     c.BluetoothAddr,
		BTChannel:  c.BluetoothChannel,
		Middleware: []gin.HandlerFunc{a.metrics.Middleware()},
		Logger:     logger,
	})

	self := c.Identity.Descriptor()
	signer := identity.NewSigner(self, keys)
	newSession := func() (*ticket.Session, error) {
		return ticket.NewSession(ticket.Options{
			BaseURL: c.AuthorityURL,
			Self:    self,
			Signer:  signer,
			Timeout: c.HTTPTimeout,
			Logger:  logger,
		})
	}
	store := relay.NewClient(c.RelayBaseURL, c.HTTPTimeout, logger)

	channels := []fetcher.Channel{
		fetcher.NewLAN(c.HTTPTimeout),
		fetcher.NewBluetooth(a.bt),
		fetcher.NewRelay(func() (fetcher.TicketSource, error) {
			s, err := newSession()
			if err != nil {
				return nil, err
			}
			return s, nil
		}, store),
	}
	f := fetcher.New(c.CacheDir(), channels, fetcher.WithRecorder(a.metrics), fetcher.WithLogger(logger))
	a.coord = coordinator.New(f,
		coordinator.WithBus(a.bus),
		coordinator.WithGauge(a.metrics),
		coordinator.WithLogger(logger),
	)

	up := uploader.New(uploader.Options{
		StagingDir: c.StagingDir(),
		Sessions: func() (uploader.Session, error) {
			s, err := newSession()
			if err != nil {
				return nil, err
			}
			return s, nil
		},
		Store:    store,
		Objects:  repo,
		LegacyIV: c.LegacyIV,
		Recorder: a.metrics,
		Logger:   logger,
	})

	a.service = service.New(c.AppID, repo, a.coord, a.origin, up, logger)
	a.control = control.NewGRPCServer(c.ControlAddr, a.service, c.ControlSecret, logger)
	a.hub = control.NewHub(a.bus, logger)

	return a, nil
}

// Service exposes the application layer for in-process callers.
func (app *App) Service() *service.Service { return app.service }

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// refreshMediaIndex is the hook run when content lands in the cache.
func (app *App) refreshMediaIndex(obj *models.Object, path string) {
	app.logger.Info(app.rootCtx, "media index refresh", "object_id", obj.ID, "content_id", obj.ContentHash, "mime", obj.MIME, "path", path)
}

func (app *App) startOrigin(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.origin.Serve(ctx, app.config.OriginAddr); err != nil {
		app.logger.Error(ctx, "origin server failed", "error", err)
		cancelFunc()
	}
}

func (app *App) startControl(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.control.Run(ctx); err != nil {
		app.logger.Error(ctx, "control server failed", "error", err)
		cancelFunc()
	}
}

func (app *App) startBluetooth(ctx context.Context) {
	if !app.bt.Available() {
		app.logger.Info(ctx, "bluetooth channel unavailable")
		return
	}
	l, err := app.bt.Listen(app.config.BluetoothChannel)
	if err != nil {
		// the daemon keeps running on the remaining channels
		app.logger.Warn(ctx, "bluetooth listen failed", "error", err)
		return
	}
	app.logger.Info(ctx, "Starting bluetooth server", "channel", app.config.BluetoothChannel)
	if err := app.btServer.Serve(ctx, l); err != nil {
		app.logger.Warn(ctx, "bluetooth server stopped", "error", err)
	}
}

func (app *App) metricsHandler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", app.metrics.Handler())
	mux.Handle("/events", app.hub)
	return mux
}

func (app *App) startMetrics(ctx context.Context, cancelFunc context.CancelFunc) {
	srv := &http.Server{Addr: app.config.MetricsAddr, Handler: app.metricsHandler(), ReadHeaderTimeout: 10 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	app.logger.Info(ctx, "Starting metrics server", "address", app.config.MetricsAddr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.logger.Error(ctx, "metrics server failed", "error", err)
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "identity", app.config.Identity.Descriptor().Short(), "app_id", app.config.AppID)

	app.initSignalHandler(cancelFunc)

	if err := app.bus.Subscribe(coordinator.TopicContentReady, app.refreshMediaIndex); err != nil {
		return err
	}
	if err := app.hub.Start(); err != nil {
		return err
	}
	app.coord.Start()

	var wg sync.WaitGroup
	for _, run := range []func(){
		func() { app.startOrigin(ctx, cancelFunc) },
		func() { app.startControl(ctx, cancelFunc) },
		func() { app.startMetrics(ctx, cancelFunc) },
		func() { app.startBluetooth(ctx) },
	} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			run()
		}()
	}

	wg.Wait()
	app.Close()
	app.logger.Info(context.Background(), "App stopped")
	return nil
}

// Close releases everything NewApp acquired. Run calls it on the way out.
func (app *App) Close() {
	app.coord.Close()
	app.hub.Stop()
	app.bus.Unsubscribe(coordinator.TopicContentReady, app.refreshMediaIndex)
	app.tokens.Close()
	app.rootClose()
	app.db.Close()
}
