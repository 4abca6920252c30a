package relay

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/base64"
	"encoding/hex"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/dmitrijs2005/corral/internal/client/models"
	"github.com/dmitrijs2005/corral/internal/client/ticket"
	"github.com/dmitrijs2005/corral/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var tk = ticket.Ticket{Value: "AK:c2ln", Date: "Mon, 02 Jan 2006 15:04:05 GMT"}

// store is a minimal in-memory S3 stand-in that records request headers.
type store struct {
	mu      sync.Mutex
	blobs   map[string][]byte
	headers http.Header
	etag    bool
}

func newStore(t *testing.T) (*store, *httptest.Server) {
	s := &store{blobs: map[string][]byte{}, etag: true}
	srv := httptest.NewServer(s)
	t.Cleanup(srv.Close)
	return s, srv
}

func (s *store) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.headers = r.Header.Clone()
	if r.Header.Get("Authorization") != "AWS "+tk.Value {
		w.WriteHeader(http.StatusForbidden)
		return
	}
	key := strings.TrimPrefix(r.URL.Path, "/bucket/")
	switch r.Method {
	case http.MethodPut:
		b, _ := io.ReadAll(r.Body)
		sum := md5.Sum(b)
		if r.Header.Get("Content-Md5") != base64.StdEncoding.EncodeToString(sum[:]) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		s.blobs[key] = b
		w.WriteHeader(http.StatusOK)
	case http.MethodGet:
		b, ok := s.blobs[key]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if s.etag {
			sum := md5.Sum(b)
			w.Header().Set("ETag", `"`+hex.EncodeToString(sum[:])+`"`)
		}
		w.Header().Set("Content-Length", strconv.Itoa(len(b)))
		w.Write(b)
	}
}

func TestPutGet_RoundTrip(t *testing.T) {
	s, srv := newStore(t)
	c := NewClient(srv.URL+"/bucket/", 0, nil)

	blob := bytes.Repeat([]byte{7}, 100_000)
	sum := md5.Sum(blob)

	var events []models.Progress
	err := c.Put(context.Background(), "h1", bytes.NewReader(blob), int64(len(blob)), sum[:], tk, func(p models.Progress) {
		events = append(events, p)
	})
	require.NoError(t, err)
	assert.Equal(t, ContentType, s.headers.Get("Content-Type"))
	assert.Equal(t, tk.Date, s.headers.Get("Date"))
	require.NotEmpty(t, events)
	assert.Equal(t, models.StatePreparing, events[0].State)
	last := events[len(events)-1]
	assert.Equal(t, 100, last.Percent)

	var got bytes.Buffer
	events = nil
	n, err := c.Get(context.Background(), "h1", tk, &got, func(p models.Progress) { events = append(events, p) })
	require.NoError(t, err)
	assert.Equal(t, int64(len(blob)), n)
	assert.Equal(t, blob, got.Bytes())
	prev := -1
	for _, e := range events[1:] {
		assert.Equal(t, models.ChannelRelay, e.Channel)
		assert.GreaterOrEqual(t, e.Percent, prev)
		prev = e.Percent
	}
	assert.Equal(t, 100, prev)
}

func TestGet_Errors(t *testing.T) {
	s, srv := newStore(t)
	c := NewClient(srv.URL+"/bucket", 0, nil)

	_, err := c.Get(context.Background(), "missing", tk, io.Discard, nil)
	assert.ErrorIs(t, err, common.ErrUnexpectedStatus)

	_, err = c.Get(context.Background(), "missing", ticket.Ticket{Value: "bad"}, io.Discard, nil)
	assert.ErrorIs(t, err, common.ErrUnexpectedStatus)

	s.blobs["x"] = []byte("abc")
	s.etag = false
	_, err = c.Get(context.Background(), "x", tk, io.Discard, nil)
	assert.NoError(t, err, "missing etag is not checked")
}

func TestGet_DigestMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("ETag", `"00000000000000000000000000000000"`)
		w.Write([]byte("tampered"))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, 0, nil).Get(context.Background(), "k", tk, io.Discard, nil)
	assert.ErrorIs(t, err, common.ErrDigestMismatch)
}

func TestPut_Cancelled(t *testing.T) {
	_, srv := newStore(t)
	c := NewClient(srv.URL+"/bucket", 0, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := c.Put(ctx, "k", bytes.NewReader([]byte("x")), 1, []byte{0}, tk, nil)
	require.Error(t, err)
	assert.True(t, common.IsCancelled(err))
}

func TestPut_RejectedDigest(t *testing.T) {
	_, srv := newStore(t)
	c := NewClient(srv.URL+"/bucket", 0, nil)

	err := c.Put(context.Background(), "k", strings.NewReader("abc"), 3, []byte("wrong"), tk, nil)
	assert.ErrorIs(t, err, common.ErrUnexpectedStatus)
}
