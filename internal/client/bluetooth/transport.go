package bluetooth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/corral/internal/common"
)

// Conn is one RFCOMM stream.
type Conn = io.ReadWriteCloser

// Listener accepts inbound connections.
type Listener interface {
	Accept() (Conn, error)
	Close() error
}

// Transport is the platform strategy picked once at start-up by Detect.
type Transport interface {
	// Available reports whether the platform can open RFCOMM sockets.
	Available() bool
	Dial(ctx context.Context, addr string, channel uint8) (Conn, error)
	Listen(channel uint8) (Listener, error)
}

// unavailable is the strategy for platforms without Bluetooth support.
type unavailable struct{ reason string }

func (u unavailable) Available() bool { return false }

func (u unavailable) Dial(context.Context, string, uint8) (Conn, error) {
	return nil, fmt.Errorf("%w: bluetooth: %s", common.ErrChannelUnavailable, u.reason)
}

func (u unavailable) Listen(uint8) (Listener, error) {
	return nil, fmt.Errorf("%w: bluetooth: %s", common.ErrChannelUnavailable, u.reason)
}

// Unavailable returns a Transport that refuses every operation.
func Unavailable(reason string) Transport { return unavailable{reason: reason} }

var ErrBadAddress = errors.New("bad bluetooth address")

// ParseAddr parses "AA:BB:CC:DD:EE:FF" into the byte order used on the
// wire by the Linux Bluetooth stack (least significant byte first).
func ParseAddr(s string) ([6]byte, error) {
	var out [6]byte
	parts := strings.Split(s, ":")
	if len(parts) != 6 {
		return out, fmt.Errorf("%w: %q", ErrBadAddress, s)
	}
	for i, p := range parts {
		v, err := strconv.ParseUint(p, 16, 8)
		if err != nil || len(p) != 2 {
			return out, fmt.Errorf("%w: %q", ErrBadAddress, s)
		}
		out[5-i] = byte(v)
	}
	return out, nil
}
