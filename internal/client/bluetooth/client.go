package bluetooth

import (
	"context"
	"fmt"
	"io"

	"github.com/dmitrijs2005/corral/internal/common"
	"github.com/dmitrijs2005/corral/internal/netx"
)

// Fetch pulls the blob registered under hash from the peer at addr/channel
// into dst. Every failure is reported as common.ErrChannelUnavailable except
// cancellation.
func Fetch(ctx context.Context, t Transport, addr string, channel uint8, hash string, dst io.Writer, progress netx.ProgressFunc) (int64, error) {
	if !t.Available() {
		return 0, fmt.Errorf("%w: bluetooth not supported", common.ErrChannelUnavailable)
	}
	conn, err := t.Dial(ctx, addr, channel)
	if err != nil {
		return 0, channelError(ctx, err)
	}
	defer conn.Close()
	// a read blocked on a silent peer returns only once conn is closed
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()
	return Exchange(ctx, conn, hash, dst, progress)
}

// Exchange runs the client half of one exchange on an open connection.
func Exchange(ctx context.Context, conn io.ReadWriter, hash string, dst io.Writer, progress netx.ProgressFunc) (int64, error) {
	if err := writeFrame(conn, FetchRequest{Action: actionFetch, Hash: hash}); err != nil {
		return 0, channelError(ctx, err)
	}
	var resp FetchResponse
	if err := readFrame(conn, &resp); err != nil {
		return 0, channelError(ctx, err)
	}
	if resp.Status != StatusOK {
		return 0, fmt.Errorf("%w: peer answered %s", common.ErrChannelUnavailable, resp.Status)
	}

	n, err := netx.Copy(ctx, dst, io.LimitReader(conn, resp.Size), resp.Size, progress)
	if err != nil {
		return n, channelError(ctx, err)
	}
	if n != resp.Size {
		return n, fmt.Errorf("%w: short blob, %d of %d bytes", common.ErrChannelUnavailable, n, resp.Size)
	}
	return n, nil
}

func channelError(ctx context.Context, err error) error {
	if ctx.Err() != nil || common.IsCancelled(err) {
		return fmt.Errorf("bluetooth: %w", common.ErrCancelled)
	}
	return fmt.Errorf("%w: %v", common.ErrChannelUnavailable, err)
}
