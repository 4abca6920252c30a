// Package origin is the device's LAN origin server. It serves content this
// device authored to peers that hold a minted access token, or through the
// legacy content-by-hash route that only accepts the exact path recorded
// for the hash.
package origin

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/dmitrijs2005/corral/internal/client/bluetooth"
	"github.com/dmitrijs2005/corral/internal/client/models"
	"github.com/dmitrijs2005/corral/internal/client/repositories/objects"
	"github.com/dmitrijs2005/corral/internal/common"
	"github.com/dmitrijs2005/corral/internal/logging"
	"github.com/gin-gonic/gin"
)

const feedLimit = 50

// Options configure a Server. Metrics and Bluetooth are optional.
type Options struct {
	AppID      string
	Advertise  string
	AssetsDir  string
	Objects    objects.Repository
	Tokens     *TokenRegistry
	Bluetooth  *bluetooth.Registry
	BTAddr     string
	BTChannel  uint8
	Middleware []gin.HandlerFunc
	Logger     logging.Logger
}

type Server struct {
	opts   Options
	logger logging.Logger
	router *gin.Engine
}

func NewServer(o Options) *Server {
	if o.Logger == nil {
		o.Logger = logging.Nop()
	}
	s := &Server{opts: o, logger: o.Logger.With("module", "origin")}
	s.router = s.routes()
	return s
}

func (s *Server) routes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(s.opts.Middleware...)

	r.GET("/raw/:id", s.raw)
	r.GET("/", s.byHash)
	r.GET("/feed", s.feed)
	if s.opts.AssetsDir != "" {
		r.StaticFS("/assets", gin.Dir(s.opts.AssetsDir, false))
	}
	return r
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }

// Serve listens on addr until ctx is done.
func (s *Server) Serve(ctx context.Context, addr string) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("origin listen: %w", err)
	}
	return s.ServeListener(ctx, l)
}

func (s *Server) ServeListener(ctx context.Context, l net.Listener) error {
	srv := &http.Server{Handler: s.router, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "origin listening", "addr", l.Addr().String())
	if err := srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Announce makes an authored object reachable by peers and returns the
// peer block to embed in the object's metadata.
func (s *Server) Announce(ctx context.Context, obj *models.Object) (models.Peer, error) {
	if !obj.Authored() {
		return models.Peer{}, fmt.Errorf("object %s: not authored here", obj.ID)
	}
	token, err := s.opts.Tokens.Mint(obj.AppID, obj.ID)
	if err != nil {
		return models.Peer{}, fmt.Errorf("mint token: %w", err)
	}
	peer := models.Peer{LANAddr: s.opts.Advertise, Token: token, LocalURI: obj.LocalURI}
	if s.opts.Bluetooth != nil && s.opts.BTAddr != "" {
		s.opts.Bluetooth.Register(obj.ContentHash, bluetooth.Blob{Path: obj.LocalURI, ContentType: obj.MIME})
		peer.BluetoothAddr = s.opts.BTAddr
		peer.BluetoothChannel = s.opts.BTChannel
	}
	s.logger.Debug(ctx, "object announced", "object_id", obj.ID, "content_id", obj.ContentHash)
	return peer, nil
}

// Withdraw stops serving a deleted object: its token is revoked and its
// blob leaves the Bluetooth registry. The hash route answers 410 from the
// store.
func (s *Server) Withdraw(obj *models.Object) {
	if obj.Peer.Token != "" {
		if err := s.opts.Tokens.Revoke(obj.Peer.Token); err != nil {
			s.logger.Warn(context.Background(), "token revoke failed", "object_id", obj.ID, "error", err)
		}
	}
	if s.opts.Bluetooth != nil {
		s.opts.Bluetooth.Unregister(obj.ContentHash)
	}
}

func (s *Server) raw(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")
	if !s.opts.Tokens.Check(c.Query("ticket"), s.opts.AppID, id) {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	obj, err := s.opts.Objects.GetByID(ctx, id)
	if err != nil {
		s.fail(c, err)
		return
	}
	if !s.check(c, obj) {
		return
	}
	s.stream(c, obj)
}

func (s *Server) byHash(c *gin.Context) {
	ctx := c.Request.Context()
	content, hash := c.Query("content"), c.Query("hash")
	if content == "" || hash == "" {
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	obj, err := s.opts.Objects.GetByHash(ctx, hash)
	if err != nil {
		s.fail(c, err)
		return
	}
	if !s.check(c, obj) {
		return
	}
	if filepath.Clean(content) != obj.LocalURI {
		s.logger.Warn(ctx, "path mismatch on legacy route", "hash", hash, "requested", content)
		s.fail(c, common.ErrPathMismatch)
		return
	}
	s.stream(c, obj)
}

// check rejects deleted objects and objects this device did not author.
func (s *Server) check(c *gin.Context, obj *models.Object) bool {
	switch {
	case obj.Deleted:
		s.fail(c, common.ErrGone)
		return false
	case !obj.Authored():
		s.fail(c, common.ErrorNotFound)
		return false
	}
	return true
}

func (s *Server) stream(c *gin.Context, obj *models.Object) {
	f, err := os.Open(obj.LocalURI)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.fail(c, common.ErrGone)
			return
		}
		s.fail(c, err)
		return
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		s.fail(c, err)
		return
	}
	mime := obj.MIME
	if mime == "" {
		mime = "application/octet-stream"
	}
	c.DataFromReader(http.StatusOK, fi.Size(), mime, f, nil)
}

type feedItem struct {
	ID        string    `json:"id"`
	Hash      string    `json:"hash"`
	MIME      string    `json:"mime"`
	Length    int64     `json:"length"`
	CreatedAt time.Time `json:"created_at"`
}

func (s *Server) feed(c *gin.Context) {
	list, err := s.opts.Objects.ListAuthored(c.Request.Context(), feedLimit)
	if err != nil {
		s.fail(c, err)
		return
	}
	items := make([]feedItem, 0, len(list))
	for _, o := range list {
		items = append(items, feedItem{ID: o.ID, Hash: o.ContentHash, MIME: o.MIME, Length: o.Length, CreatedAt: o.CreatedAt})
	}
	c.JSON(http.StatusOK, gin.H{"app_id": s.opts.AppID, "objects": items})
}

func (s *Server) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, common.ErrorNotFound):
		c.AbortWithStatus(http.StatusNotFound)
	case errors.Is(err, common.ErrGone):
		c.AbortWithStatus(http.StatusGone)
	case errors.Is(err, common.ErrPathMismatch):
		c.AbortWithStatus(http.StatusBadRequest)
	default:
		s.logger.Error(c.Request.Context(), "origin request failed", "path", c.Request.URL.Path, "error", err)
		c.AbortWithStatus(http.StatusInternalServerError)
	}
}
