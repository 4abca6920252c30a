package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/corral/internal/client/coordinator"
	"github.com/dmitrijs2005/corral/internal/client/fetcher"
	"github.com/dmitrijs2005/corral/internal/client/models"
	"github.com/dmitrijs2005/corral/internal/client/repositories/objects"
	"github.com/dmitrijs2005/corral/internal/common"
	"github.com/dmitrijs2005/corral/internal/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOrigin struct {
	announced []string
	withdrawn []string
}

func (o *fakeOrigin) Announce(_ context.Context, obj *models.Object) (models.Peer, error) {
	o.announced = append(o.announced, obj.ID)
	return models.Peer{LANAddr: "192.168.1.5:8311", Token: "tok-" + obj.ID}, nil
}

func (o *fakeOrigin) Withdraw(obj *models.Object) {
	o.withdrawn = append(o.withdrawn, obj.ID)
}

type fakeUploader struct {
	recipients []identity.Descriptor
}

func (u *fakeUploader) Upload(_ context.Context, obj *models.Object, r []identity.Descriptor, _ models.ProgressFunc) error {
	u.recipients = r
	obj.RelayKey = "relay-key"
	return nil
}

// blockingFetcher holds every fetch until its context ends.
type blockingFetcher struct{}

func (blockingFetcher) Fetch(ctx context.Context, _ *models.Object, _ models.ProgressFunc) (fetcher.Result, error) {
	<-ctx.Done()
	return fetcher.Result{}, common.ErrCancelled
}

type fixture struct {
	svc    *Service
	repo   *objects.SQLiteRepository
	origin *fakeOrigin
	up     *fakeUploader
	dir    string
}

func setup(t *testing.T, f coordinator.Fetcher) *fixture {
	t.Helper()
	dir := t.TempDir()
	db, err := objects.OpenSQLite(context.Background(), filepath.Join(dir, "corral.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	repo := objects.NewSQLiteRepository(db)

	if f == nil {
		f = fetcher.New(filepath.Join(dir, "cache"), nil)
	}
	coord := coordinator.New(f)
	coord.Start()
	t.Cleanup(coord.Close)

	origin := &fakeOrigin{}
	up := &fakeUploader{}
	return &fixture{
		svc:    New("corral", repo, coord, origin, up, nil),
		repo:   repo,
		origin: origin,
		up:     up,
		dir:    dir,
	}
}

func TestAuthor_AnnouncesAndStores(t *testing.T) {
	f := setup(t, nil)
	ctx := context.Background()
	path := filepath.Join(f.dir, "photo.jpg")
	require.NoError(t, os.WriteFile(path, []byte("jpeg bytes"), 0o600))

	obj, err := f.svc.Author(ctx, path, "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, models.ContentHash([]byte("jpeg bytes")), obj.ContentHash)
	assert.Equal(t, int64(10), obj.Length)
	assert.Equal(t, "corral", obj.AppID)
	assert.Equal(t, "tok-"+obj.ID, obj.Peer.Token)
	assert.Equal(t, []string{obj.ID}, f.origin.announced)

	stored, err := f.repo.GetByID(ctx, obj.ID)
	require.NoError(t, err)
	assert.Equal(t, path, stored.LocalURI)
	assert.True(t, stored.Authored())
}

func TestAuthor_MissingFile(t *testing.T) {
	f := setup(t, nil)
	_, err := f.svc.Author(context.Background(), filepath.Join(f.dir, "nope"), "")
	require.Error(t, err)
	assert.Empty(t, f.origin.announced)
}

func TestFetch_AuthoredObjectIsLocal(t *testing.T) {
	f := setup(t, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	path := filepath.Join(f.dir, "clip.mp4")
	require.NoError(t, os.WriteFile(path, []byte("mp4"), 0o600))
	obj, err := f.svc.Author(ctx, path, "video/mp4")
	require.NoError(t, err)

	res, err := f.svc.Fetch(ctx, obj.ID)
	require.NoError(t, err)
	assert.Equal(t, path, res.Path)
	assert.Equal(t, models.ChannelNone, res.Channel)
}

func TestIngest(t *testing.T) {
	f := setup(t, nil)
	ctx := context.Background()

	err := f.svc.Ingest(ctx, &models.Object{ID: "x"})
	require.ErrorIs(t, err, ErrInvalidObject)

	in := &models.Object{ID: "remote", ContentHash: "h", LocalURI: "/etc/passwd", Deleted: true}
	require.NoError(t, f.svc.Ingest(ctx, in))
	stored, err := f.repo.GetByID(ctx, "remote")
	require.NoError(t, err)
	assert.Empty(t, stored.LocalURI)
	assert.False(t, stored.Deleted)
	assert.Equal(t, "corral", stored.AppID)
	assert.False(t, stored.CreatedAt.IsZero())
}

func TestStartTaskCancel(t *testing.T) {
	f := setup(t, blockingFetcher{})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, f.svc.Ingest(ctx, &models.Object{ID: "r1", ContentHash: "h1"}))

	_, err := f.svc.Task(ctx, "r1")
	require.ErrorIs(t, err, common.ErrorNotFound)

	task, err := f.svc.Start(ctx, "r1")
	require.NoError(t, err)
	again, err := f.svc.Start(ctx, "r1")
	require.NoError(t, err)
	assert.Same(t, task, again)
	assert.Len(t, f.svc.Tasks(), 1)

	live, err := f.svc.Task(ctx, "r1")
	require.NoError(t, err)
	assert.Same(t, task, live)

	require.NoError(t, f.svc.Cancel(ctx, "r1"))
	_, err = task.Await(ctx)
	assert.True(t, common.IsCancelled(err))
	assert.Equal(t, models.OutcomeCancelled, task.Last().Outcome)

	_, err = f.svc.Start(ctx, "missing")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestDelete(t *testing.T) {
	f := setup(t, nil)
	ctx := context.Background()
	require.NoError(t, f.svc.Ingest(ctx, &models.Object{ID: "r1", ContentHash: "h1"}))

	require.NoError(t, f.svc.Delete(ctx, "r1"))
	assert.Equal(t, []string{"r1"}, f.origin.withdrawn)

	_, err := f.svc.Start(ctx, "r1")
	require.ErrorIs(t, err, common.ErrGone)

	require.ErrorIs(t, f.svc.Delete(ctx, "missing"), common.ErrorNotFound)
}

func TestUpload(t *testing.T) {
	f := setup(t, nil)
	ctx := context.Background()
	require.NoError(t, f.svc.Ingest(ctx, &models.Object{ID: "r1", ContentHash: "h1"}))

	recipients := []identity.Descriptor{{Type: identity.TypeEmail, Hash: make([]byte, 32)}}
	obj, err := f.svc.Upload(ctx, "r1", recipients)
	require.NoError(t, err)
	assert.Equal(t, "relay-key", obj.RelayKey)
	assert.Equal(t, recipients, f.up.recipients)

	_, err = f.svc.Upload(ctx, "missing", nil)
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestIngest_EchoOfAuthoredObjectKeepsOriginal(t *testing.T) {
	f := setup(t, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	path := filepath.Join(f.dir, "photo.jpg")
	require.NoError(t, os.WriteFile(path, []byte("jpeg bytes"), 0o600))

	obj, err := f.svc.Author(ctx, path, "image/jpeg")
	require.NoError(t, err)

	// metadata coming back from the feed never carries the local path
	echo := *obj
	echo.LocalURI = ""
	echo.Peer.LocalURI = ""
	require.NoError(t, f.svc.Ingest(ctx, &echo))

	stored, err := f.repo.GetByID(ctx, obj.ID)
	require.NoError(t, err)
	assert.Equal(t, path, stored.LocalURI)
	assert.True(t, stored.Authored())

	res, err := f.svc.Fetch(ctx, obj.ID)
	require.NoError(t, err)
	assert.Equal(t, path, res.Path)
	assert.Equal(t, models.ChannelNone, res.Channel)
}

func TestIngest_DeletedObjectStaysDeleted(t *testing.T) {
	f := setup(t, nil)
	ctx := context.Background()
	require.NoError(t, f.svc.Ingest(ctx, &models.Object{ID: "r1", ContentHash: "h1", RelayKey: "k1"}))
	require.NoError(t, f.svc.Delete(ctx, "r1"))

	require.NoError(t, f.svc.Ingest(ctx, &models.Object{ID: "r1", ContentHash: "h1"}))
	stored, err := f.repo.GetByID(ctx, "r1")
	require.NoError(t, err)
	assert.True(t, stored.Deleted)
	assert.Equal(t, "k1", stored.RelayKey)

	_, err = f.svc.Start(ctx, "r1")
	assert.ErrorIs(t, err, common.ErrGone)
}
