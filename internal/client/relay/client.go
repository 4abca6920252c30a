// Package relay is the client of the S3-compatible relay store. Requests are
// authorized by capability tickets from the authority; the store only ever
// sees ciphertext.
package relay

import (
	"context"
	"crypto/md5"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/corral/internal/client/models"
	"github.com/dmitrijs2005/corral/internal/client/ticket"
	"github.com/dmitrijs2005/corral/internal/common"
	"github.com/dmitrijs2005/corral/internal/logging"
	"github.com/dmitrijs2005/corral/internal/netx"
)

// ContentType is sent with every blob; tickets are signed over it.
const ContentType = "application/octet-stream"

// Client issues PUT and GET requests against {base}/{objectKey}.
type Client struct {
	base   string
	http   *http.Client
	stall  time.Duration
	logger logging.Logger

	// CheckEvery is how many chunks an upload sends between cancellation
	// checks.
	CheckEvery int
}

// NewClient bounds connecting and waiting for headers by timeout. A transfer
// that moves no bytes for timeout fails with common.ErrStalled.
func NewClient(baseURL string, timeout time.Duration, logger logging.Logger) *Client {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Client{
		base:       strings.TrimRight(baseURL, "/"),
		http:       netx.NewClient(timeout),
		stall:      timeout,
		logger:     logger.With("module", "relay"),
		CheckEvery: 8,
	}
}

// URL is the location of objectKey.
func (c *Client) URL(objectKey string) string {
	return c.base + "/" + objectKey
}

func authorize(req *http.Request, t ticket.Ticket) {
	req.Header.Set("Authorization", "AWS "+t.Value)
	req.Header.Set("Date", t.Date)
}

// Put uploads length bytes of ciphertext from body. md5sum must be the
// digest of exactly those bytes; the ticket was issued for it.
func (c *Client) Put(ctx context.Context, objectKey string, body io.Reader, length int64, md5sum []byte, t ticket.Ticket, progress models.ProgressFunc) error {
	if progress == nil {
		progress = models.Discard
	}
	progress(models.Progress{State: models.StatePreparing, Channel: models.ChannelRelay})

	ctx, kick, stop := netx.WithStallTimeout(ctx, c.stall)
	defer stop()

	pr := &progressReader{
		ctx:        ctx,
		r:          body,
		total:      length,
		checkEvery: c.CheckEvery,
		report: func(done, total int64) {
			kick()
			progress(models.Transferring(models.ChannelRelay, done, total))
		},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.URL(objectKey), pr)
	if err != nil {
		return err
	}
	req.ContentLength = length
	authorize(req, t)
	req.Header.Set("Content-Md5", base64.StdEncoding.EncodeToString(md5sum))
	req.Header.Set("Content-Type", ContentType)

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return netx.Interrupted(ctx, "relay put")
		}
		return fmt.Errorf("relay put: %w", err)
	}
	defer resp.Body.Close()

	if err := netx.CheckStatus(resp, http.StatusOK, http.StatusCreated, http.StatusNoContent); err != nil {
		return fmt.Errorf("relay put %s: %w", objectKey, err)
	}
	c.logger.Debug(ctx, "blob stored", "key", objectKey, "bytes", length)
	return nil
}

// Get streams the blob into dst and returns the number of ciphertext bytes.
// When the store reports a plain MD5 ETag the bytes are checked against it.
func (c *Client) Get(ctx context.Context, objectKey string, t ticket.Ticket, dst io.Writer, progress models.ProgressFunc) (int64, error) {
	if progress == nil {
		progress = models.Discard
	}
	progress(models.Progress{State: models.StatePreparing, Channel: models.ChannelRelay})

	ctx, kick, stop := netx.WithStallTimeout(ctx, c.stall)
	defer stop()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL(objectKey), nil)
	if err != nil {
		return 0, err
	}
	authorize(req, t)

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return 0, netx.Interrupted(ctx, "relay get")
		}
		return 0, fmt.Errorf("relay get: %w", err)
	}
	defer resp.Body.Close()

	if err := netx.CheckStatus(resp, http.StatusOK); err != nil {
		return 0, fmt.Errorf("relay get %s: %w", objectKey, err)
	}

	digest := md5.New()
	n, err := netx.Copy(ctx, io.MultiWriter(dst, digest), resp.Body, resp.ContentLength, func(done, total int64) {
		kick()
		progress(models.Transferring(models.ChannelRelay, done, total))
	})
	if err != nil {
		return n, err
	}
	if err := checkETag(resp.Header.Get("ETag"), digest); err != nil {
		return n, err
	}
	return n, nil
}

func checkETag(etag string, digest hash.Hash) error {
	etag = strings.Trim(etag, `"`)
	if len(etag) != 2*md5.Size {
		// multipart uploads and other stores use opaque etags
		return nil
	}
	if _, err := hex.DecodeString(etag); err != nil {
		return nil
	}
	if got := hex.EncodeToString(digest.Sum(nil)); !strings.EqualFold(got, etag) {
		return fmt.Errorf("%w: etag %s, body %s", common.ErrDigestMismatch, etag, got)
	}
	return nil
}

// progressReader reports upload progress and polls ctx every checkEvery
// reads.
type progressReader struct {
	ctx        context.Context
	r          io.Reader
	total      int64
	done       int64
	reads      int
	checkEvery int
	report     func(done, total int64)
}

func (p *progressReader) Read(b []byte) (int, error) {
	if p.checkEvery <= 0 || p.reads%p.checkEvery == 0 {
		if p.ctx.Err() != nil {
			return 0, netx.Interrupted(p.ctx, "relay put")
		}
	}
	p.reads++
	n, err := p.r.Read(b)
	if n > 0 {
		p.done += int64(n)
		p.report(p.done, p.total)
	}
	return n, err
}
