// Package bluetooth is the best-effort Bluetooth channel: an RFCOMM
// listener that streams pre-registered blobs, and the matching client.
//
// Each exchange is one request and one response on a fresh connection.
// Both are CBOR maps preceded by a 4-byte big-endian length; a successful
// response is followed by exactly Size raw bytes.
package bluetooth

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
)

// maxHeaderSize bounds a CBOR header; headers are a few dozen bytes.
const maxHeaderSize = 4 << 10

const actionFetch = "fetch"

// Response statuses.
const (
	StatusOK       = "ok"
	StatusNotFound = "not_found"
	StatusError    = "error"
)

var ErrFrameTooLarge = errors.New("frame too large")

// FetchRequest asks the peer for the blob registered under Hash.
type FetchRequest struct {
	Action string `cbor:"action"`
	Hash   string `cbor:"hash"`
}

// FetchResponse precedes the blob bytes.
type FetchResponse struct {
	Status      string `cbor:"status"`
	Size        int64  `cbor:"size"`
	ContentType string `cbor:"content_type,omitempty"`
	Message     string `cbor:"message,omitempty"`
}

var encMode cbor.EncMode

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("bluetooth: CBOR encoder initialization failed: " + err.Error())
	}
}

func writeFrame(w io.Writer, v any) error {
	b, err := encMode.Marshal(v)
	if err != nil {
		return err
	}
	if len(b) > maxHeaderSize {
		return ErrFrameTooLarge
	}
	var prefix [4]byte
	binary.BigEndian.PutUint32(prefix[:], uint32(len(b)))
	if _, err := w.Write(append(prefix[:], b...)); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

func readFrame(r io.Reader, v any) error {
	var prefix [4]byte
	if _, err := io.ReadFull(r, prefix[:]); err != nil {
		return fmt.Errorf("read frame length: %w", err)
	}
	n := binary.BigEndian.Uint32(prefix[:])
	if n > maxHeaderSize {
		return ErrFrameTooLarge
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return fmt.Errorf("read frame: %w", err)
	}
	if err := cbor.Unmarshal(b, v); err != nil {
		return fmt.Errorf("decode frame: %w", err)
	}
	return nil
}
