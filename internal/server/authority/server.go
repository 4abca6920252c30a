// Package authority is the ticket authority's HTTP API. Devices prove their
// identity by signing a one-time nonce and receive relay capability tickets
// for objects they own or have been granted.
package authority

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrijs2005/corral/internal/auth"
	"github.com/dmitrijs2005/corral/internal/client/ticket"
	"github.com/dmitrijs2005/corral/internal/common"
	"github.com/dmitrijs2005/corral/internal/identity"
	"github.com/dmitrijs2005/corral/internal/logging"
	"github.com/dmitrijs2005/corral/internal/server/repositories/acl"
	"github.com/gin-gonic/gin"
)

// Session cookie handed out with every ticket. Its subject is the short
// descriptor of the identity that answered the challenge.
const (
	SessionCookie = "corral_session"
	SessionScope  = "session"
)

const (
	opUpload    = "upload"
	opDownload  = "download"
	opUpdateACL = "update-acl"
)

var (
	errNoChallenge      = errors.New("no outstanding challenge")
	errIdentityMismatch = errors.New("descriptor does not match request path")
	errStaleEpoch       = errors.New("key epoch out of range")
)

// Verifier checks an identity-based signature; identity.Params implements it.
type Verifier interface {
	Verify(id string, msg, sig []byte) error
}

// ObjectChecker reports whether the relay store holds an object.
type ObjectChecker interface {
	Exists(ctx context.Context, key string) (bool, error)
}

// TicketSigner issues relay tickets; relaystore.Signer implements it.
type TicketSigner interface {
	Upload(key, contentType string, md5sum []byte) ticket.Ticket
	Download(key string) ticket.Ticket
}

type Options struct {
	ACL             acl.Repository
	Objects         ObjectChecker
	Tickets         TicketSigner
	Verifier        Verifier
	Nonces          *NonceStore
	SessionSecret   []byte
	SessionValidity time.Duration
	EpochSkew       int
	Middleware      []gin.HandlerFunc
	Logger          logging.Logger
}

type Server struct {
	opts   Options
	logger logging.Logger
	router *gin.Engine
	now    func() time.Time
}

func NewServer(o Options) *Server {
	if o.Logger == nil {
		o.Logger = logging.Nop()
	}
	s := &Server{opts: o, logger: o.Logger.With("module", "authority"), now: time.Now}
	s.router = s.routes()
	return s
}

func (s *Server) routes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(s.opts.Middleware...)

	obj := r.Group("/user/:user/object/:key")
	obj.GET("/upload-ticket/:mime/:length/:md5/", s.uploadTicket)
	obj.GET("/download-ticket/", s.downloadTicket)
	obj.POST("/update-acl/", s.updateACL)
	return r
}

func (s *Server) Handler() http.Handler { return s.router }

// Serve listens on addr until ctx is done.
func (s *Server) Serve(ctx context.Context, addr string) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("authority listen: %w", err)
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

	s.logger.Info(ctx, "authority listening", "addr", l.Addr().String())
	if err := srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// target validates the identity and object named by the path.
func (s *Server) target(c *gin.Context) (string, string, bool) {
	d, err := identity.ParseDescriptor(c.Param("user"))
	key := c.Param("key")
	if err != nil || key == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "bad identity or object key"})
		return "", "", false
	}
	return d.Short(), key, true
}

func (s *Server) uploadTicket(c *gin.Context) {
	ctx := c.Request.Context()
	user, key, ok := s.target(c)
	if !ok {
		return
	}
	mime, err := hex.DecodeString(c.Param("mime"))
	if err != nil || len(mime) == 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "bad content type"})
		return
	}
	if n, err := strconv.ParseInt(c.Param("length"), 10, 64); err != nil || n < 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "bad length"})
		return
	}
	md5sum, err := hex.DecodeString(c.Param("md5"))
	if err != nil || len(md5sum) != md5.Size {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "bad md5"})
		return
	}

	unclaimedOrOwned := func() (bool, error) {
		a, err := s.opts.ACL.Get(ctx, key)
		if errors.Is(err, common.ErrorNotFound) {
			return true, nil
		}
		if err != nil {
			return false, err
		}
		return a.Owner == user, nil
	}
	if !s.authenticate(c, user, opUpload, key, unclaimedOrOwned) {
		return
	}

	owner, err := s.opts.ACL.ClaimOwner(ctx, key, user)
	if err != nil {
		s.fail(c, err)
		return
	}
	if owner != user {
		s.deny(c, "object owned by another identity", user, key)
		return
	}
	s.grant(c, user, s.opts.Tickets.Upload(key, string(mime), md5sum))
}

func (s *Server) downloadTicket(c *gin.Context) {
	ctx := c.Request.Context()
	user, key, ok := s.target(c)
	if !ok {
		return
	}
	granted := func() (bool, error) {
		a, err := s.opts.ACL.Get(ctx, key)
		if errors.Is(err, common.ErrorNotFound) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		return a.Allows(user), nil
	}
	if !s.authenticate(c, user, opDownload, key, granted) {
		return
	}
	s.grant(c, user, s.opts.Tickets.Download(key))
}

func (s *Server) updateACL(c *gin.Context) {
	ctx := c.Request.Context()
	user, key, ok := s.target(c)
	if !ok {
		return
	}
	members, err := identity.ParseDescriptorList(c.PostForm("identities"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	owned := func() (bool, error) {
		a, err := s.opts.ACL.Get(ctx, key)
		if errors.Is(err, common.ErrorNotFound) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		return a.Owner == user, nil
	}
	if s.hasSession(c, user) {
		ok, err := owned()
		if err != nil {
			s.fail(c, err)
			return
		}
		if !ok {
			s.deny(c, "not the owner", user, key)
			return
		}
	} else if !s.authenticate(c, user, opUpdateACL, key, owned) {
		return
	}

	exists, err := s.opts.Objects.Exists(ctx, key)
	if err != nil {
		s.fail(c, err)
		return
	}
	if !exists {
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "object not uploaded"})
		return
	}

	shorts := make([]string, len(members))
	for i, m := range members {
		shorts[i] = m.Short()
	}
	if err := s.opts.ACL.ReplaceMembers(ctx, key, shorts); err != nil {
		s.fail(c, err)
		return
	}
	s.logger.Info(ctx, "acl updated", "object_key", key, "members", len(shorts))
	c.JSON(http.StatusOK, gin.H{"object_key": key, "members": shorts})
}

// authenticate runs the challenge half of a request. Requests that allowed
// rejects are refused without a challenge. Without an Authorization header a
// fresh nonce is issued. Otherwise the answer must sign the outstanding
// nonce with the key of the identity named in the path.
func (s *Server) authenticate(c *gin.Context, user, op, key string, allowed func() (bool, error)) bool {
	ctx := c.Request.Context()
	ok, err := allowed()
	if err != nil {
		s.fail(c, err)
		return false
	}
	if !ok {
		s.deny(c, "not permitted", user, key)
		return false
	}

	scope := nonceScope(user, op, key)
	h := c.GetHeader("Authorization")
	if h == "" {
		nonce, err := s.opts.Nonces.Issue(scope)
		if err != nil {
			s.fail(c, err)
			return false
		}
		c.Header(ticket.ChallengeHeader, ticket.ChallengeValue(nonce))
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "challenge"})
		return false
	}

	if err := s.verify(scope, user, h); err != nil {
		s.logger.Warn(ctx, "challenge answer rejected", "user", user, "op", op, "object_key", key, "error", err)
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "denied"})
		return false
	}
	return true
}

func (s *Server) verify(scope, user, authorization string) error {
	nonce, ok := s.opts.Nonces.Take(scope)
	if !ok {
		return errNoChallenge
	}
	descriptor, sig, err := ticket.ParseAuthorization(authorization)
	if err != nil {
		return err
	}
	d, epoch, err := identity.ParseFullDescriptor(descriptor)
	if err != nil {
		return err
	}
	if d.Short() != user {
		return errIdentityMismatch
	}
	current := d.Epoch(s.now())
	skew := uint64(s.opts.EpochSkew)
	if epoch+skew < current || epoch > current+skew {
		return fmt.Errorf("%w: %d (now %d)", errStaleEpoch, epoch, current)
	}
	return s.opts.Verifier.Verify(descriptor, []byte(nonce), sig)
}

func (s *Server) hasSession(c *gin.Context, user string) bool {
	v, err := c.Cookie(SessionCookie)
	if err != nil || v == "" {
		return false
	}
	subject, err := auth.SubjectForScope(v, SessionScope, s.opts.SessionSecret)
	return err == nil && subject == user
}

func (s *Server) grant(c *gin.Context, user string, t ticket.Ticket) {
	token, err := auth.GenerateToken(user, SessionScope, s.opts.SessionSecret, s.opts.SessionValidity)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.SetCookie(SessionCookie, token, int(s.opts.SessionValidity/time.Second), "/", "", false, true)
	c.JSON(http.StatusOK, t)
}

// deny refuses without a challenge; devices treat that as final.
func (s *Server) deny(c *gin.Context, reason, user, key string) {
	s.logger.Info(c.Request.Context(), "ticket denied", "reason", reason, "user", user, "object_key", key)
	c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "denied"})
}

func (s *Server) fail(c *gin.Context, err error) {
	s.logger.Error(c.Request.Context(), "authority request failed", "path", c.FullPath(), "error", err)
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
