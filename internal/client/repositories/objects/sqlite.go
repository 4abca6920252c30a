package objects

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/corral/internal/client/migrations"
	"github.com/dmitrijs2005/corral/internal/client/models"
	"github.com/dmitrijs2005/corral/internal/common"
	"github.com/dmitrijs2005/corral/internal/dbx"
	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// OpenSQLite opens the database at path and brings its schema up to date.
func OpenSQLite(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", "file:"+path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	if err := dbx.Migrate(ctx, db, dbx.DialectSQLite, migrations.Migrations); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}
	return db, nil
}

const objectColumns = `id, app_id, content_hash, mime, length, local_uri, relay_key, cipher_scheme, peer, deleted, created_at`

func (r *SQLiteRepository) Upsert(ctx context.Context, o *models.Object) error {
	peer, err := json.Marshal(o.Peer)
	if err != nil {
		return fmt.Errorf("encode peer: %w", err)
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now()
	}

	query := `INSERT INTO objects (` + objectColumns + `)
			values (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET app_id = excluded.app_id,
				content_hash = excluded.content_hash,
				mime = excluded.mime,
				length = excluded.length,
				local_uri = excluded.local_uri,
				relay_key = excluded.relay_key,
				cipher_scheme = excluded.cipher_scheme,
				peer = excluded.peer,
				deleted = excluded.deleted
	`
	_, err = r.db.ExecContext(ctx, query, o.ID, o.AppID, o.ContentHash, o.MIME, o.Length, o.LocalURI,
		o.RelayKey, string(o.CipherScheme), string(peer), o.Deleted, o.CreatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to upsert object: %w", err)
	}

	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanObject(s scanner) (*models.Object, error) {
	o := &models.Object{}
	var scheme, peer string
	var created int64
	err := s.Scan(&o.ID, &o.AppID, &o.ContentHash, &o.MIME, &o.Length, &o.LocalURI, &o.RelayKey,
		&scheme, &peer, &o.Deleted, &created)
	if err != nil {
		return nil, err
	}
	o.CipherScheme = models.CipherScheme(scheme)
	o.CreatedAt = time.UnixMilli(created)
	if peer != "" {
		if err := json.Unmarshal([]byte(peer), &o.Peer); err != nil {
			return nil, fmt.Errorf("decode peer: %w", err)
		}
	}
	return o, nil
}

func (r *SQLiteRepository) getOne(ctx context.Context, query string, arg any) (*models.Object, error) {
	o, err := scanObject(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("error selecting object: %w", err)
	}
	return o, nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.Object, error) {
	return r.getOne(ctx, `select `+objectColumns+` from objects where id=?`, id)
}

func (r *SQLiteRepository) GetByHash(ctx context.Context, hash string) (*models.Object, error) {
	return r.getOne(ctx, `select `+objectColumns+` from objects where content_hash=? order by created_at desc limit 1`, hash)
}

func (r *SQLiteRepository) list(ctx context.Context, query string, args ...any) ([]*models.Object, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error selecting objects: %w", err)
	}
	defer rows.Close()

	var result []*models.Object
	for rows.Next() {
		o, err := scanObject(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, o)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *SQLiteRepository) ListAuthored(ctx context.Context, limit int) ([]*models.Object, error) {
	if limit <= 0 {
		limit = 50
	}
	return r.list(ctx, `select `+objectColumns+` from objects
		where local_uri <> '' and deleted=0 order by created_at desc, id limit ?`, limit)
}

func (r *SQLiteRepository) ListPendingUpload(ctx context.Context) ([]*models.Object, error) {
	return r.list(ctx, `select `+objectColumns+` from objects
		where local_uri <> '' and deleted=0 and uploaded=0 order by created_at`)
}

func (r *SQLiteRepository) exec1(ctx context.Context, query, id string) error {
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to update object: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected != 1 {
		return common.ErrorNotFound
	}

	return nil
}

func (r *SQLiteRepository) MarkUploaded(ctx context.Context, id string) error {
	return r.exec1(ctx, `update objects set uploaded=1 where id=?`, id)
}

func (r *SQLiteRepository) MarkDeleted(ctx context.Context, id string) error {
	return r.exec1(ctx, `update objects set deleted=1 where id=?`, id)
}

var _ Repository = (*SQLiteRepository)(nil)
