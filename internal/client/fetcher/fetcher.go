// Package fetcher resolves a content object to a local file by trying an
// ordered chain of transport channels: the authored original, the local
// cache, the author's LAN origin, Bluetooth and finally the encrypted relay.
// The first channel that succeeds wins; a file reaches its cache path only
// after it was written completely.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/dmitrijs2005/corral/internal/client/models"
	"github.com/dmitrijs2005/corral/internal/common"
	"github.com/dmitrijs2005/corral/internal/filex"
	"github.com/dmitrijs2005/corral/internal/logging"
)

// Channel is one transport strategy of the chain.
type Channel interface {
	// Kind names the channel in progress events.
	Kind() models.Channel

	// Applicable reports whether obj carries what the channel needs, such as
	// a peer address or a relay key. Inapplicable channels are skipped
	// without an attempt.
	Applicable(obj *models.Object) bool

	// Attempt writes the plaintext of obj into dst and returns the number of
	// bytes written. Progress is reported through report; the terminal
	// event is emitted by the caller.
	Attempt(ctx context.Context, obj *models.Object, dst *filex.Partial, report models.ProgressFunc) (int64, error)
}

// Recorder observes channel attempts; *metrics.Metrics implements it.
type Recorder interface {
	Attempt(ch models.Channel, outcome models.Outcome, bytes int64, d time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) Attempt(models.Channel, models.Outcome, int64, time.Duration) {}

// Result describes where the content ended up.
type Result struct {
	Path    string
	Channel models.Channel
	Bytes   int64
}

// Fetcher runs the channel chain for one object at a time.
type Fetcher struct {
	cacheDir string
	channels []Channel
	recorder Recorder
	logger   logging.Logger
}

// Option customizes a Fetcher.
type Option func(*Fetcher)

func WithRecorder(r Recorder) Option {
	return func(f *Fetcher) {
		if r != nil {
			f.recorder = r
		}
	}
}

func WithLogger(l logging.Logger) Option {
	return func(f *Fetcher) {
		if l != nil {
			f.logger = l
		}
	}
}

// New builds a fetcher writing into cacheDir. Channels are tried in the
// given order.
func New(cacheDir string, channels []Channel, opts ...Option) *Fetcher {
	f := &Fetcher{
		cacheDir: cacheDir,
		channels: channels,
		recorder: nopRecorder{},
		logger:   logging.Nop(),
	}
	for _, o := range opts {
		o(f)
	}
	f.logger = f.logger.With("module", "fetcher")
	return f
}

// CachePath is the canonical cache file of obj.
func (f *Fetcher) CachePath(obj *models.Object) string {
	return filepath.Join(f.cacheDir, models.CacheFileName(obj))
}

// Cached reports whether obj resolves without any network I/O.
func (f *Fetcher) Cached(obj *models.Object) (string, bool) {
	if obj.Authored() {
		return obj.LocalURI, true
	}
	p := f.CachePath(obj)
	return p, filex.Exists(p)
}

// Fetch resolves obj. Cancellation returns an error matching
// common.ErrCancelled as soon as the running channel notices it; no later
// channel is tried. When every channel fails the error wraps
// common.ErrAllChannelsFailed.
func (f *Fetcher) Fetch(ctx context.Context, obj *models.Object, report models.ProgressFunc) (Result, error) {
	if report == nil {
		report = models.Discard
	}
	if path, ok := f.Cached(obj); ok {
		f.logger.Debug(ctx, "resolved locally", "content_id", obj.ContentHash, "path", path)
		return Result{Path: path, Channel: models.ChannelNone}, nil
	}

	final := f.CachePath(obj)
	var errs []error
	for _, ch := range f.channels {
		if err := ctx.Err(); err != nil {
			return Result{}, fmt.Errorf("fetch %s: %w", obj.ContentHash, common.ErrCancelled)
		}
		if !ch.Applicable(obj) {
			continue
		}

		started := time.Now()
		n, err := f.attempt(ctx, ch, obj, final, report)
		switch {
		case err == nil:
			f.recorder.Attempt(ch.Kind(), models.OutcomeSuccess, n, time.Since(started))
			f.logger.Info(ctx, "content fetched", "content_id", obj.ContentHash, "channel", ch.Kind().String(), "bytes", n)
			return Result{Path: final, Channel: ch.Kind(), Bytes: n}, nil
		case common.IsCancelled(err) || ctx.Err() != nil:
			f.recorder.Attempt(ch.Kind(), models.OutcomeCancelled, n, time.Since(started))
			return Result{}, fmt.Errorf("fetch %s: %w", obj.ContentHash, common.ErrCancelled)
		default:
			f.recorder.Attempt(ch.Kind(), models.OutcomeFailure, n, time.Since(started))
			f.logger.Debug(ctx, "channel failed", "content_id", obj.ContentHash, "channel", ch.Kind().String(), "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", ch.Kind(), err))
		}
	}

	if len(errs) == 0 {
		return Result{}, fmt.Errorf("fetch %s: %w: no applicable channel", obj.ContentHash, common.ErrAllChannelsFailed)
	}
	return Result{}, fmt.Errorf("fetch %s: %w: %w", obj.ContentHash, common.ErrAllChannelsFailed, errors.Join(errs...))
}

func (f *Fetcher) attempt(ctx context.Context, ch Channel, obj *models.Object, final string, report models.ProgressFunc) (int64, error) {
	dst, err := filex.NewPartial(final)
	if err != nil {
		return 0, err
	}
	defer dst.Abort()

	n, err := ch.Attempt(ctx, obj, dst, Monotonic(report))
	if err != nil {
		return n, err
	}
	if obj.Length > 0 && n != obj.Length {
		return n, fmt.Errorf("length mismatch: got %d bytes, want %d", n, obj.Length)
	}
	if err := dst.Commit(); err != nil {
		return n, err
	}
	return n, nil
}
