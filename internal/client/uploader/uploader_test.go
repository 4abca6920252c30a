package uploader

import (
	"bytes"
	"context"
	"crypto/md5"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/corral/internal/client/models"
	"github.com/dmitrijs2005/corral/internal/client/relay"
	"github.com/dmitrijs2005/corral/internal/client/repositories/objects"
	"github.com/dmitrijs2005/corral/internal/client/ticket"
	"github.com/dmitrijs2005/corral/internal/common"
	"github.com/dmitrijs2005/corral/internal/cryptox"
	"github.com/dmitrijs2005/corral/internal/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSession struct {
	mu         sync.Mutex
	mime       string
	length     int64
	md5        []byte
	recipients []identity.Descriptor
	denyTicket bool
}

func (s *fakeSession) UploadTicket(_ context.Context, _ string, mime string, length int64, md5sum []byte) (ticket.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.denyTicket {
		return ticket.Ticket{}, common.ErrTicketDenied
	}
	s.mime, s.length, s.md5 = mime, length, md5sum
	return ticket.Ticket{Value: "AK:sig", Date: "Mon, 02 Jan 2006 15:04:05 GMT"}, nil
}

func (s *fakeSession) UpdateACL(_ context.Context, _ string, r []identity.Descriptor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recipients = r
	return nil
}

type blobStore struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

func (b *blobStore) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut || r.Header.Get("Authorization") != "AWS AK:sig" {
		w.WriteHeader(http.StatusForbidden)
		return
	}
	data, _ := io.ReadAll(r.Body)
	b.mu.Lock()
	b.blobs[filepath.Base(r.URL.Path)] = data
	b.mu.Unlock()
	w.WriteHeader(http.StatusOK)
}

type fixture struct {
	up      *Uploader
	session *fakeSession
	store   *blobStore
	repo    *objects.SQLiteRepository
	staging string
	obj     *models.Object
	plain   []byte
}

func setup(t *testing.T, legacy bool) *fixture {
	t.Helper()
	dir := t.TempDir()
	ctx := context.Background()

	db, err := objects.OpenSQLite(ctx, filepath.Join(dir, "corral.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	repo := objects.NewSQLiteRepository(db)

	plain := bytes.Repeat([]byte("holiday video "), 20_000)
	path := filepath.Join(dir, "video.mp4")
	require.NoError(t, os.WriteFile(path, plain, 0o600))
	obj := &models.Object{ID: "obj-1", AppID: "corral", ContentHash: "h1", MIME: "video/mp4",
		Length: int64(len(plain)), LocalURI: path, CreatedAt: time.UnixMilli(1_700_000_000_000)}
	require.NoError(t, repo.Upsert(ctx, obj))

	store := &blobStore{blobs: map[string][]byte{}}
	srv := httptest.NewServer(store)
	t.Cleanup(srv.Close)

	session := &fakeSession{}
	staging := filepath.Join(dir, "staging")
	up := New(Options{
		StagingDir: staging,
		Sessions:   func() (Session, error) { return session, nil },
		Store:      relay.NewClient(srv.URL+"/bucket", 5*time.Second, nil),
		Objects:    repo,
		LegacyIV:   legacy,
	})
	return &fixture{up: up, session: session, store: store, repo: repo, staging: staging, obj: obj, plain: plain}
}

func TestUpload_RoundTrip(t *testing.T) {
	for _, legacy := range []bool{false, true} {
		f := setup(t, legacy)
		ctx := context.Background()
		recipients := []identity.Descriptor{{Type: identity.TypeEmail, Hash: bytes.Repeat([]byte{1}, 32)}}

		var events []models.Progress
		require.NoError(t, f.up.Upload(ctx, f.obj, recipients, func(p models.Progress) { events = append(events, p) }))

		blob := f.store.blobs["h1"]
		require.NotEmpty(t, blob)
		sum := md5.Sum(blob)
		assert.Equal(t, sum[:], f.session.md5)
		assert.Equal(t, int64(len(blob)), f.session.length)
		assert.Equal(t, relay.ContentType, f.session.mime)
		assert.Equal(t, recipients, f.session.recipients)

		stored, err := f.repo.GetByID(ctx, "obj-1")
		require.NoError(t, err)
		require.NotEmpty(t, stored.RelayKey)
		want := models.SchemeRandomIV
		if legacy {
			want = models.SchemeZeroIV
		}
		assert.Equal(t, want, stored.CipherScheme)

		key, err := cryptox.DecodeKey(stored.RelayKey)
		require.NoError(t, err)
		var got bytes.Buffer
		dw, err := cryptox.NewDecryptWriter(&got, key, cryptox.Options{ZeroIV: legacy})
		require.NoError(t, err)
		_, err = dw.Write(blob)
		require.NoError(t, err)
		require.NoError(t, dw.Close())
		assert.Equal(t, f.plain, got.Bytes())

		pending, err := f.repo.ListPendingUpload(ctx)
		require.NoError(t, err)
		assert.Empty(t, pending)

		entries, _ := os.ReadDir(f.staging)
		assert.Empty(t, entries)

		require.NotEmpty(t, events)
		assert.Equal(t, models.StatePreparing, events[0].State)
		assert.Equal(t, 100, events[len(events)-1].Percent)

		// encryption reports through PREPARING before any byte is sent
		encrypted := -1
		for i, e := range events {
			if e.State == models.StatePreparing && e.PercentKnown && e.Percent == 100 {
				encrypted = i
				break
			}
		}
		require.GreaterOrEqual(t, encrypted, 0, "events: %v", events)
		for _, e := range events[:encrypted] {
			assert.NotEqual(t, models.StateTransferring, e.State)
		}
	}
}

func TestUpload_FreshKeyPerObject(t *testing.T) {
	f := setup(t, false)
	ctx := context.Background()
	require.NoError(t, f.up.Upload(ctx, f.obj, nil, nil))
	first := f.obj.RelayKey
	require.NoError(t, f.up.Upload(ctx, f.obj, nil, nil))
	assert.NotEqual(t, first, f.obj.RelayKey)
}

func TestUpload_DeniedTicket(t *testing.T) {
	f := setup(t, false)
	f.session.denyTicket = true

	err := f.up.Upload(context.Background(), f.obj, nil, nil)
	require.ErrorIs(t, err, common.ErrTicketDenied)
	assert.Empty(t, f.obj.RelayKey)
	assert.Empty(t, f.store.blobs)

	entries, _ := os.ReadDir(f.staging)
	assert.Empty(t, entries)
}

func TestUpload_Cancelled(t *testing.T) {
	f := setup(t, false)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := f.up.Upload(ctx, f.obj, nil, nil)
	require.Error(t, err)
	assert.True(t, common.IsCancelled(err))
	entries, _ := os.ReadDir(f.staging)
	assert.Empty(t, entries)
}

func TestUpload_NotAuthored(t *testing.T) {
	f := setup(t, false)
	err := f.up.Upload(context.Background(), &models.Object{ID: "x"}, nil, nil)
	assert.Error(t, err)
}

func TestUploadPending(t *testing.T) {
	f := setup(t, false)
	n, err := f.up.UploadPending(context.Background(), func(*models.Object) []identity.Descriptor { return nil })
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = f.up.UploadPending(context.Background(), func(*models.Object) []identity.Descriptor { return nil })
	require.NoError(t, err)
	assert.Zero(t, n)
}
