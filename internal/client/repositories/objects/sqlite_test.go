package objects

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/corral/internal/client/models"
	"github.com/dmitrijs2005/corral/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "objects.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func sample(id, hash string, created time.Time) *models.Object {
	return &models.Object{
		ID:          id,
		AppID:       "photos",
		ContentHash: hash,
		MIME:        "image/jpeg",
		Length:      1234,
		Peer:        models.Peer{LANAddr: "10.0.0.2:8311", Token: "tok", BluetoothChannel: 11},
		CreatedAt:   created,
	}
}

func TestUpsert_InsertAndUpdate(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	created := time.UnixMilli(1_700_000_000_000)
	o := sample("o1", "h1", created)
	require.NoError(t, r.Upsert(ctx, o))

	got, err := r.GetByID(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, o, got)

	o.RelayKey = "a2V5"
	o.CipherScheme = models.SchemeZeroIV
	o.Peer.LANAddr = ""
	require.NoError(t, r.Upsert(ctx, o))

	got, err = r.GetByID(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, "a2V5", got.RelayKey)
	assert.Equal(t, models.SchemeZeroIV, got.CipherScheme)
	assert.Empty(t, got.Peer.LANAddr)
	assert.Equal(t, "tok", got.Peer.Token)
}

func TestUpsert_SetsCreatedAt(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	o := sample("o1", "h1", time.Time{})
	require.NoError(t, r.Upsert(context.Background(), o))
	assert.False(t, o.CreatedAt.IsZero())
}

func TestGet_NotFound(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	_, err := r.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, common.ErrorNotFound)
	_, err = r.GetByHash(ctx, "missing")
	assert.ErrorIs(t, err, common.ErrorNotFound)
	assert.ErrorIs(t, r.MarkDeleted(ctx, "missing"), common.ErrorNotFound)
}

func TestGetByHash_ReturnsNewest(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()
	base := time.UnixMilli(1_700_000_000_000)

	require.NoError(t, r.Upsert(ctx, sample("old", "h", base)))
	require.NoError(t, r.Upsert(ctx, sample("new", "h", base.Add(time.Minute))))

	got, err := r.GetByHash(ctx, "h")
	require.NoError(t, err)
	assert.Equal(t, "new", got.ID)
}

func TestListAuthoredAndPending(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()
	base := time.UnixMilli(1_700_000_000_000)

	for i, id := range []string{"a", "b", "c"} {
		o := sample(id, "h"+id, base.Add(time.Duration(i)*time.Second))
		o.LocalURI = "/media/" + id + ".jpg"
		require.NoError(t, r.Upsert(ctx, o))
	}
	require.NoError(t, r.Upsert(ctx, sample("remote", "hr", base)))
	require.NoError(t, r.MarkDeleted(ctx, "b"))
	require.NoError(t, r.MarkUploaded(ctx, "c"))

	authored, err := r.ListAuthored(ctx, 10)
	require.NoError(t, err)
	require.Len(t, authored, 2)
	assert.Equal(t, "c", authored[0].ID)
	assert.Equal(t, "a", authored[1].ID)

	authored, err = r.ListAuthored(ctx, 1)
	require.NoError(t, err)
	require.Len(t, authored, 1)

	pending, err := r.ListPendingUpload(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "a", pending[0].ID)

	deleted, err := r.GetByID(ctx, "b")
	require.NoError(t, err)
	assert.True(t, deleted.Deleted)
}
