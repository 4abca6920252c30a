// Package uploader pushes authored content to the relay store: it encrypts
// the file under a fresh key, obtains an upload ticket, stores the
// ciphertext and publishes the recipients' access-control list.
package uploader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/corral/internal/client/fetcher"
	"github.com/dmitrijs2005/corral/internal/client/models"
	"github.com/dmitrijs2005/corral/internal/client/relay"
	"github.com/dmitrijs2005/corral/internal/client/repositories/objects"
	"github.com/dmitrijs2005/corral/internal/client/ticket"
	"github.com/dmitrijs2005/corral/internal/common"
	"github.com/dmitrijs2005/corral/internal/cryptox"
	"github.com/dmitrijs2005/corral/internal/filex"
	"github.com/dmitrijs2005/corral/internal/identity"
	"github.com/dmitrijs2005/corral/internal/logging"
)

// Session is the part of an authority session an upload needs. Both calls
// go through the same session so the ACL post carries the session cookie
// handed out with the ticket.
type Session interface {
	UploadTicket(ctx context.Context, objectKey, mime string, length int64, md5sum []byte) (ticket.Ticket, error)
	UpdateACL(ctx context.Context, objectKey string, recipients []identity.Descriptor) error
}

type SessionFactory func() (Session, error)

// Recorder observes finished uploads; *metrics.Metrics implements it.
type Recorder interface {
	Upload(outcome models.Outcome, bytes int64)
}

type nopRecorder struct{}

func (nopRecorder) Upload(models.Outcome, int64) {}

type Options struct {
	StagingDir string
	Sessions   SessionFactory
	Store      *relay.Client
	Objects    objects.Repository

	// LegacyIV encrypts new uploads with the zero-IV layout for relays
	// shared with older deployments.
	LegacyIV bool

	Recorder Recorder
	Logger   logging.Logger
}

type Uploader struct {
	opts   Options
	logger logging.Logger
}

func New(o Options) *Uploader {
	if o.Recorder == nil {
		o.Recorder = nopRecorder{}
	}
	if o.Logger == nil {
		o.Logger = logging.Nop()
	}
	return &Uploader{opts: o, logger: o.Logger.With("module", "uploader")}
}

// Upload encrypts obj's local file, stores it on the relay and grants
// recipients access. On success obj carries its relay key and scheme and
// is persisted as uploaded. The staging file is always removed.
func (u *Uploader) Upload(ctx context.Context, obj *models.Object, recipients []identity.Descriptor, report models.ProgressFunc) (err error) {
	if report == nil {
		report = models.Discard
	}
	if !obj.Authored() {
		return fmt.Errorf("upload %s: not authored on this device", obj.ID)
	}

	var sent int64
	defer func() {
		switch {
		case err == nil:
			u.opts.Recorder.Upload(models.OutcomeSuccess, sent)
		case common.IsCancelled(err):
			u.opts.Recorder.Upload(models.OutcomeCancelled, sent)
		default:
			u.opts.Recorder.Upload(models.OutcomeFailure, sent)
		}
	}()

	report = fetcher.Monotonic(report)
	report(models.Progress{State: models.StatePreparing, Channel: models.ChannelRelay})

	src, err := os.Open(obj.LocalURI)
	if err != nil {
		return fmt.Errorf("open %s: %w", obj.LocalURI, err)
	}
	defer src.Close()

	staged, err := filex.NewPartial(filepath.Join(u.opts.StagingDir, obj.ContentHash+".enc"))
	if err != nil {
		return err
	}
	defer staged.Abort()

	key := cryptox.GenerateKey()
	defer common.WipeByteArray(key)
	scheme := models.SchemeRandomIV
	if u.opts.LegacyIV {
		scheme = models.SchemeZeroIV
	}

	// encrypting a large file takes a while; it counts as preparation
	sum, err := cryptox.Encrypt(ctx, staged, src, key, cryptox.Options{
		ZeroIV: scheme == models.SchemeZeroIV,
		OnPlaintext: func(n int64) {
			pct, ok := models.Percent(n, obj.Length)
			report(models.Progress{State: models.StatePreparing, Channel: models.ChannelRelay, Percent: pct, PercentKnown: ok})
		},
	})
	if err != nil {
		return fmt.Errorf("upload %s: %w", obj.ID, err)
	}
	if _, err := staged.Seek(0, io.SeekStart); err != nil {
		return err
	}

	session, err := u.opts.Sessions()
	if err != nil {
		return fmt.Errorf("authority session: %w", err)
	}
	objectKey := obj.RelayObjectKey()
	t, err := session.UploadTicket(ctx, objectKey, relay.ContentType, sum.Length, sum.MD5)
	if err != nil {
		return fmt.Errorf("upload ticket: %w", err)
	}
	if err := u.opts.Store.Put(ctx, objectKey, staged, sum.Length, sum.MD5, t, report); err != nil {
		return err
	}
	sent = sum.Length

	if err := session.UpdateACL(ctx, objectKey, recipients); err != nil {
		return fmt.Errorf("update acl: %w", err)
	}

	obj.RelayKey = cryptox.EncodeKey(key)
	obj.CipherScheme = scheme
	if err := u.opts.Objects.Upsert(ctx, obj); err != nil {
		return fmt.Errorf("save object: %w", err)
	}
	if err := u.opts.Objects.MarkUploaded(ctx, obj.ID); err != nil {
		return fmt.Errorf("mark uploaded: %w", err)
	}
	u.logger.Info(ctx, "object uploaded", "object_id", obj.ID, "content_id", obj.ContentHash,
		"bytes", sum.Length, "recipients", len(recipients))
	return nil
}

// UploadPending uploads every authored object not yet on the relay and
// returns how many succeeded. A cancellation stops the loop; other failures
// are logged and skipped.
func (u *Uploader) UploadPending(ctx context.Context, recipients func(*models.Object) []identity.Descriptor) (int, error) {
	pending, err := u.opts.Objects.ListPendingUpload(ctx)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, obj := range pending {
		err := u.Upload(ctx, obj, recipients(obj), nil)
		if common.IsCancelled(err) || errors.Is(ctx.Err(), context.Canceled) {
			return n, fmt.Errorf("upload pending: %w", common.ErrCancelled)
		}
		if err != nil {
			u.logger.Warn(ctx, "upload failed", "object_id", obj.ID, "error", err)
			continue
		}
		n++
	}
	return n, nil
}
