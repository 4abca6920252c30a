// Package netx contains the chunked copy loop shared by every transfer
// channel and small helpers for HTTP clients and responses.
package netx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/corral/internal/common"
)

// ProgressFunc receives the running byte count and the expected total
// (total <= 0 when unknown).
type ProgressFunc func(done, total int64)

// Copy moves src into dst one chunk at a time. ctx is checked before every
// chunk; cancellation yields common.ErrCancelled, a stall detected by
// WithStallTimeout yields common.ErrStalled.
func Copy(ctx context.Context, dst io.Writer, src io.Reader, total int64, progress ProgressFunc) (int64, error) {
	buf := make([]byte, common.DefaultChunkSize)
	var done int64
	for {
		if ctx.Err() != nil {
			return done, Interrupted(ctx, "copy")
		}
		n, rerr := src.Read(buf)
		if n > 0 {
			if _, err := dst.Write(buf[:n]); err != nil {
				return done, fmt.Errorf("write: %w", err)
			}
			done += int64(n)
			if progress != nil {
				progress(done, total)
			}
		}
		if rerr == io.EOF {
			return done, nil
		}
		if rerr != nil {
			// a cancelled request surfaces as a read error on the body
			if ctx.Err() != nil {
				return done, Interrupted(ctx, "copy")
			}
			return done, fmt.Errorf("read: %w", rerr)
		}
	}
}

// Interrupted describes why ctx ended: common.ErrStalled when a stall
// watchdog fired, common.ErrCancelled otherwise.
func Interrupted(ctx context.Context, op string) error {
	if cause := context.Cause(ctx); errors.Is(cause, common.ErrStalled) {
		return fmt.Errorf("%s: %w", op, cause)
	}
	return fmt.Errorf("%s: %w", op, common.ErrCancelled)
}

// WithStallTimeout derives a context that is cancelled with cause
// common.ErrStalled when kick is not called for d. stop releases the
// watchdog and must be called once the transfer is over. d <= 0 disables
// the watchdog.
func WithStallTimeout(parent context.Context, d time.Duration) (ctx context.Context, kick func(), stop func()) {
	ctx, cancel := context.WithCancelCause(parent)
	if d <= 0 {
		return ctx, func() {}, func() { cancel(nil) }
	}
	t := time.AfterFunc(d, func() { cancel(common.ErrStalled) })
	return ctx, func() { t.Reset(d) }, func() {
		t.Stop()
		cancel(nil)
	}
}

// NewClient returns an HTTP client for bulk transfers. timeout bounds
// dialing, the TLS handshake and the wait for response headers; the body
// itself may take as long as it keeps making progress, so callers bound it
// with ctx.
func NewClient(timeout time.Duration) *http.Client {
	dialer := &net.Dialer{Timeout: timeout, KeepAlive: 30 * time.Second}
	return &http.Client{
		Transport: &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			DialContext:           dialer.DialContext,
			TLSHandshakeTimeout:   timeout,
			ResponseHeaderTimeout: timeout,
			IdleConnTimeout:       90 * time.Second,
			MaxIdleConns:          16,
			ExpectContinueTimeout: time.Second,
		},
	}
}

// CheckStatus returns nil when resp carries one of the accepted codes, or an
// error wrapping common.ErrUnexpectedStatus with a snippet of the body.
func CheckStatus(resp *http.Response, accepted ...int) error {
	for _, c := range accepted {
		if resp.StatusCode == c {
			return nil
		}
	}
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return fmt.Errorf("%w: %s; body: %s", common.ErrUnexpectedStatus, resp.Status, string(b))
}
