package fetcher

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/dmitrijs2005/corral/internal/client/models"
	"github.com/dmitrijs2005/corral/internal/common"
	"github.com/dmitrijs2005/corral/internal/filex"
	"github.com/dmitrijs2005/corral/internal/netx"
)

// LAN pulls content from the author's local origin server.
type LAN struct {
	http  *http.Client
	stall time.Duration
}

// NewLAN bounds connecting and waiting for headers by timeout. A body that
// delivers nothing for timeout is abandoned with common.ErrStalled.
func NewLAN(timeout time.Duration) *LAN {
	return &LAN{http: netx.NewClient(timeout), stall: timeout}
}

func (l *LAN) Kind() models.Channel { return models.ChannelLAN }

func (l *LAN) Applicable(obj *models.Object) bool {
	p := obj.Peer
	return p.LANAddr != "" && (p.Token != "" || p.LocalURI != "")
}

// URL prefers the token route and falls back to the legacy
// content-by-hash route.
func (l *LAN) URL(obj *models.Object) string {
	if obj.Peer.Token != "" {
		return l.tokenURL(obj)
	}
	return l.hashURL(obj)
}

func (l *LAN) tokenURL(obj *models.Object) string {
	u := url.URL{Scheme: "http", Host: obj.Peer.LANAddr, Path: "/raw/" + obj.ID}
	u.RawQuery = url.Values{"ticket": {obj.Peer.Token}}.Encode()
	return u.String()
}

func (l *LAN) hashURL(obj *models.Object) string {
	u := url.URL{Scheme: "http", Host: obj.Peer.LANAddr, Path: "/"}
	u.RawQuery = url.Values{"content": {obj.Peer.LocalURI}, "hash": {obj.ContentHash}}.Encode()
	return u.String()
}

// rejected reports a token the origin no longer honours: expired tokens
// answer 401, tokens of a restarted origin 404.
func rejected(resp *http.Response) bool {
	return resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusNotFound
}

func (l *LAN) Attempt(ctx context.Context, obj *models.Object, dst *filex.Partial, report models.ProgressFunc) (int64, error) {
	report(models.Progress{State: models.StatePreparing, Channel: models.ChannelLAN})

	ctx, kick, stop := netx.WithStallTimeout(ctx, l.stall)
	defer stop()

	resp, err := l.get(ctx, l.URL(obj))
	if err != nil {
		return 0, err
	}
	if obj.Peer.Token != "" && obj.Peer.LocalURI != "" && rejected(resp) {
		resp.Body.Close()
		if resp, err = l.get(ctx, l.hashURL(obj)); err != nil {
			return 0, err
		}
	}
	defer resp.Body.Close()

	if err := netx.CheckStatus(resp, http.StatusOK); err != nil {
		return 0, fmt.Errorf("lan: %w", err)
	}

	total := resp.ContentLength
	if total <= 0 {
		total = obj.Length
	}
	return netx.Copy(ctx, dst, resp.Body, total, func(done, total int64) {
		kick()
		report(models.Transferring(models.ChannelLAN, done, total))
	})
}

func (l *LAN) get(ctx context.Context, u string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := l.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, netx.Interrupted(ctx, "lan")
		}
		return nil, fmt.Errorf("%w: %v", common.ErrChannelUnavailable, err)
	}
	return resp, nil
}
