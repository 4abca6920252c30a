package dbx

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"testing/fstest"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/corral/internal/client/migrations"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

// setupDB returns an in-memory object store migrated with the device schema.
func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", "file:"+t.Name()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, Migrate(context.Background(), db, DialectSQLite, migrations.Migrations))
	return db
}

const insertObject = `INSERT INTO objects (id, app_id, content_hash, mime, created_at) VALUES (?, 'app', ?, 'image/png', 1)`

func countObjects(t *testing.T, db *sql.DB) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM objects`).Scan(&n))
	return n
}

func TestWithTx_CommitsOnSuccess(t *testing.T) {
	db := setupDB(t)

	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		if _, err := tx.ExecContext(ctx, insertObject, "o1", "h1"); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, insertObject, "o2", "h2")
		return err
	})
	require.NoError(t, err)
	require.Equal(t, 2, countObjects(t, db), "both rows must be committed")
}

func TestWithTx_FailedStatementRollsBackEarlierOnes(t *testing.T) {
	db := setupDB(t)
	_, err := db.Exec(insertObject, "o1", "h1")
	require.NoError(t, err)

	err = WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		if _, err := tx.ExecContext(ctx, `UPDATE objects SET deleted = 1 WHERE id = ?`, "o1"); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, insertObject, "o1", "h1")
		return err
	})
	require.Error(t, err, "duplicate id must fail")

	var deleted bool
	require.NoError(t, db.QueryRow(`SELECT deleted FROM objects WHERE id = ?`, "o1").Scan(&deleted))
	require.False(t, deleted, "the tombstone must be rolled back")
}

func TestWithTx_ReturnsFnError(t *testing.T) {
	db := setupDB(t)
	boom := errors.New("boom")

	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		_, e := tx.ExecContext(ctx, insertObject, "o1", "h1")
		require.NoError(t, e)
		return boom
	})
	require.ErrorIs(t, err, boom)
	require.Equal(t, 0, countObjects(t, db), "must rollback when fn returns error")
}

func TestWithTx_RollbackOnPanic(t *testing.T) {
	db := setupDB(t)

	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected panic to propagate")
		}
		require.Equal(t, 0, countObjects(t, db), "must rollback on panic")
	}()

	_ = WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		_, e := tx.ExecContext(ctx, insertObject, "o1", "h1")
		require.NoError(t, e)
		panic("kaput")
	})
}

func TestWithTx_BeginError(t *testing.T) {
	db := setupDB(t)
	require.NoError(t, db.Close())

	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		t.Fatal("fn must not run without a transaction")
		return nil
	})
	require.ErrorContains(t, err, "begin tx")
}

func TestWithTx_CommitError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectCommit().WillReturnError(errors.New("disk full"))

	err = WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error { return nil })
	require.ErrorContains(t, err, "commit tx: disk full")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTx_RollbackErrorIsJoined(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectRollback().WillReturnError(errors.New("conn lost"))

	boom := errors.New("boom")
	err = WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error { return boom })
	require.ErrorIs(t, err, boom)
	require.ErrorContains(t, err, "rollback tx: conn lost")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTx_OnConn(t *testing.T) {
	db := setupDB(t)
	conn, err := db.Conn(context.Background())
	require.NoError(t, err)
	defer conn.Close()

	err = WithTx(context.Background(), conn, nil, func(ctx context.Context, tx DBTX) error {
		_, err := tx.ExecContext(ctx, insertObject, "o1", "h1")
		return err
	})
	require.NoError(t, err)
	require.Equal(t, 1, countObjects(t, db))
}

func TestMigrate_DeviceSchema(t *testing.T) {
	db := setupDB(t)

	for _, idx := range []string{"objects_content_hash", "objects_authored"} {
		var name string
		require.NoError(t, db.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'index' AND name = ?`, idx).Scan(&name))
	}

	// second run is a no-op
	require.NoError(t, Migrate(context.Background(), db, DialectSQLite, migrations.Migrations))
	require.Equal(t, 0, countObjects(t, db))
}

func TestMigrate_AppliesEmbeddedFiles(t *testing.T) {
	db, err := sql.Open("sqlite", "file:"+t.Name()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	defer db.Close()
	fsys := fstest.MapFS{
		"00002_acl_cache.sql": {Data: []byte(`-- +goose Up
CREATE TABLE acl_cache (object_key TEXT PRIMARY KEY, members TEXT NOT NULL);

-- +goose Down
DROP TABLE acl_cache;
`)},
	}

	require.NoError(t, Migrate(context.Background(), db, DialectSQLite, fsys))
	_, err = db.Exec(`INSERT INTO acl_cache(object_key, members) VALUES ('h1', '[]')`)
	require.NoError(t, err)
}

func TestMigrate_WrapsErrors(t *testing.T) {
	db := setupDB(t)

	orig := gooseUp
	gooseUp = func(ctx context.Context, db *sql.DB, dir string) error {
		require.Equal(t, ".", dir)
		return errors.New("boom")
	}
	defer func() { gooseUp = orig }()

	err := Migrate(context.Background(), db, DialectPostgres, fstest.MapFS{})
	require.ErrorContains(t, err, "migrate: boom")

	err = Migrate(context.Background(), db, "no-such-dialect", fstest.MapFS{})
	require.ErrorContains(t, err, "goose dialect")
}
