package cryptox

import (
	"bytes"
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/md5"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"github.com/dmitrijs2005/corral/internal/common"
)

// Options tune a cipher stream.
type Options struct {
	// ZeroIV selects the legacy layout (all-zero IV, no prefix).
	ZeroIV bool

	// CheckEvery is how many chunks pass between cancellation checks while
	// encrypting. Zero means 8.
	CheckEvery int

	// OnPlaintext, if set, receives the running count of plaintext bytes
	// consumed by Encrypt.
	OnPlaintext func(n int64)
}

func (o Options) checkEvery() int {
	if o.CheckEvery <= 0 {
		return 8
	}
	return o.CheckEvery
}

// Summary describes the ciphertext produced by Encrypt, as needed for the
// relay upload headers.
type Summary struct {
	Length int64
	MD5    []byte
}

func (s Summary) MD5Base64() string { return base64.StdEncoding.EncodeToString(s.MD5) }

func (s Summary) MD5Hex() string { return hex.EncodeToString(s.MD5) }

// Encrypt reads src to EOF and writes its encryption to dst. The returned
// Summary covers exactly the bytes written to dst. ctx is polled every
// Options.CheckEvery chunks.
func Encrypt(ctx context.Context, dst io.Writer, src io.Reader, key []byte, opts Options) (Summary, error) {
	if err := checkKey(key); err != nil {
		return Summary{}, err
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return Summary{}, err
	}

	digest := md5.New()
	out := &countingWriter{w: io.MultiWriter(dst, digest)}

	iv := zeroIV
	if !opts.ZeroIV {
		iv = common.GenerateRandByteArray(aes.BlockSize)
		if _, err := out.Write(iv); err != nil {
			return Summary{}, fmt.Errorf("write iv: %w", err)
		}
	}
	mode := cipher.NewCBCEncrypter(block, iv)

	buf := make([]byte, common.DefaultChunkSize)
	pending := 0 // bytes in buf not yet encrypted
	var consumed int64
	chunks := 0

	for {
		if chunks%opts.checkEvery() == 0 {
			if err := ctx.Err(); err != nil {
				return Summary{}, fmt.Errorf("encrypt: %w", common.ErrCancelled)
			}
		}
		chunks++

		n, rerr := io.ReadFull(src, buf[pending:])
		pending += n
		consumed += int64(n)
		if opts.OnPlaintext != nil && n > 0 {
			opts.OnPlaintext(consumed)
		}

		if rerr == io.EOF || rerr == io.ErrUnexpectedEOF {
			final := pad(buf[:pending])
			mode.CryptBlocks(final, final)
			if _, err := out.Write(final); err != nil {
				return Summary{}, fmt.Errorf("write ciphertext: %w", err)
			}
			break
		}
		if rerr != nil {
			return Summary{}, fmt.Errorf("read plaintext: %w", rerr)
		}

		// buffer is full and a multiple of the block size
		mode.CryptBlocks(buf, buf)
		if _, err := out.Write(buf); err != nil {
			return Summary{}, fmt.Errorf("write ciphertext: %w", err)
		}
		pending = 0
	}

	return Summary{Length: out.n, MD5: digest.Sum(nil)}, nil
}

// pad appends PKCS#5 padding; the result always grows by 1..16 bytes.
func pad(b []byte) []byte {
	n := aes.BlockSize - len(b)%aes.BlockSize
	out := make([]byte, len(b), len(b)+n)
	copy(out, b)
	return append(out, bytes.Repeat([]byte{byte(n)}, n)...)
}

func unpad(b []byte) ([]byte, error) {
	if len(b) == 0 || len(b)%aes.BlockSize != 0 {
		return nil, common.ErrBadPadding
	}
	n := int(b[len(b)-1])
	if n == 0 || n > aes.BlockSize {
		return nil, common.ErrBadPadding
	}
	for _, c := range b[len(b)-n:] {
		if int(c) != n {
			return nil, common.ErrBadPadding
		}
	}
	return b[:len(b)-n], nil
}

// DecryptWriter is a cipher-wrapped sink: ciphertext written to it comes out
// of the underlying writer as plaintext. The final block is held back until
// Close, which strips the padding. Close does not close the underlying
// writer.
type DecryptWriter struct {
	dst    io.Writer
	block  cipher.Block
	mode   cipher.BlockMode
	buf    []byte
	closed bool
}

// NewDecryptWriter wraps dst for the layout selected by opts.
func NewDecryptWriter(dst io.Writer, key []byte, opts Options) (*DecryptWriter, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	w := &DecryptWriter{dst: dst, block: block}
	if opts.ZeroIV {
		w.mode = cipher.NewCBCDecrypter(block, zeroIV)
	}
	return w, nil
}

func (w *DecryptWriter) Write(p []byte) (int, error) {
	if w.closed {
		return 0, errors.New("write after close")
	}
	w.buf = append(w.buf, p...)

	if w.mode == nil {
		if len(w.buf) < aes.BlockSize {
			return len(p), nil
		}
		w.mode = cipher.NewCBCDecrypter(w.block, w.buf[:aes.BlockSize])
		w.buf = append([]byte(nil), w.buf[aes.BlockSize:]...)
	}

	// keep at least one full block for Close
	ready := (len(w.buf) - 1) / aes.BlockSize * aes.BlockSize
	if ready <= 0 {
		return len(p), nil
	}
	w.mode.CryptBlocks(w.buf[:ready], w.buf[:ready])
	if _, err := w.dst.Write(w.buf[:ready]); err != nil {
		return 0, err
	}
	w.buf = append(w.buf[:0], w.buf[ready:]...)
	return len(p), nil
}

// Close decrypts the held-back block and validates the padding. A
// truncated stream or a wrong key surfaces as common.ErrBadPadding.
func (w *DecryptWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	if w.mode == nil || len(w.buf) != aes.BlockSize {
		return common.ErrBadPadding
	}
	w.mode.CryptBlocks(w.buf, w.buf)
	plain, err := unpad(w.buf)
	if err != nil {
		return err
	}
	_, err = w.dst.Write(plain)
	return err
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
