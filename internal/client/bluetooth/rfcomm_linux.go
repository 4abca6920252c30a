//go:build linux

package bluetooth

import (
	"context"
	"fmt"
	"os"

	"github.com/dmitrijs2005/corral/internal/common"
	"golang.org/x/sys/unix"
)

// Detect checks once for RFCOMM support by opening and closing a socket.
func Detect() Transport {
	fd, err := unix.Socket(unix.AF_BLUETOOTH, unix.SOCK_STREAM|unix.SOCK_CLOEXEC, unix.BTPROTO_RFCOMM)
	if err != nil {
		return Unavailable(fmt.Sprintf("rfcomm socket: %v", err))
	}
	unix.Close(fd)
	return rfcomm{}
}

type rfcomm struct{}

func (rfcomm) Available() bool { return true }

func (rfcomm) Dial(ctx context.Context, addr string, channel uint8) (Conn, error) {
	bdaddr, err := ParseAddr(addr)
	if err != nil {
		return nil, err
	}
	fd, err := unix.Socket(unix.AF_BLUETOOTH, unix.SOCK_STREAM|unix.SOCK_CLOEXEC, unix.BTPROTO_RFCOMM)
	if err != nil {
		return nil, fmt.Errorf("%w: rfcomm socket: %v", common.ErrChannelUnavailable, err)
	}

	// connect(2) blocks; shutting the socket down aborts it on cancel
	stop := context.AfterFunc(ctx, func() { unix.Shutdown(fd, unix.SHUT_RDWR) })
	err = unix.Connect(fd, &unix.SockaddrRFCOMM{Addr: bdaddr, Channel: channel})
	stop()
	if err != nil {
		unix.Close(fd)
		if ctx.Err() != nil {
			return nil, common.ErrCancelled
		}
		return nil, fmt.Errorf("rfcomm connect %s/%d: %w", addr, channel, err)
	}
	return newConn(fd, "rfcomm:"+addr)
}

// newConn hands fd to the runtime poller, so Close unblocks a pending Read.
func newConn(fd int, name string) (Conn, error) {
	if err := unix.SetNonblock(fd, true); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("rfcomm nonblock: %w", err)
	}
	return os.NewFile(uintptr(fd), name), nil
}

func (rfcomm) Listen(channel uint8) (Listener, error) {
	fd, err := unix.Socket(unix.AF_BLUETOOTH, unix.SOCK_STREAM|unix.SOCK_CLOEXEC, unix.BTPROTO_RFCOMM)
	if err != nil {
		return nil, fmt.Errorf("%w: rfcomm socket: %v", common.ErrChannelUnavailable, err)
	}
	if err := unix.Bind(fd, &unix.SockaddrRFCOMM{Channel: channel}); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("rfcomm bind %d: %w", channel, err)
	}
	if err := unix.Listen(fd, 4); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("rfcomm listen: %w", err)
	}
	return &rfcommListener{fd: fd}, nil
}

type rfcommListener struct {
	fd int
}

func (l *rfcommListener) Accept() (Conn, error) {
	nfd, _, err := unix.Accept(l.fd)
	if err != nil {
		return nil, err
	}
	return newConn(nfd, "rfcomm-peer")
}

// Close unblocks a pending Accept.
func (l *rfcommListener) Close() error {
	unix.Shutdown(l.fd, unix.SHUT_RDWR)
	return unix.Close(l.fd)
}
