package acl

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/corral/internal/common"
	"github.com/dmitrijs2005/corral/internal/dbx"
	"github.com/dmitrijs2005/corral/internal/server/migrations"
	"github.com/dmitrijs2005/corral/internal/server/models"
	_ "github.com/jackc/pgx/v5/stdlib"
)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// OpenPostgres connects through pgx and applies the ACL migrations.
func OpenPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}
	if err := dbx.Migrate(ctx, db, dbx.DialectPostgres, migrations.Migrations); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}
	return db, nil
}

func (r *PostgresRepository) ClaimOwner(ctx context.Context, key, owner string) (string, error) {
	// the no-op update makes RETURNING yield the existing row on conflict
	query :=
		`INSERT INTO acl_objects (object_key, owner)
		 VALUES ($1, $2)
		 ON CONFLICT (object_key) DO UPDATE SET object_key = EXCLUDED.object_key
		 RETURNING owner`

	var got string
	if err := r.db.QueryRowContext(ctx, query, key, owner).Scan(&got); err != nil {
		return "", fmt.Errorf("db error: %w", err)
	}
	return got, nil
}

func (r *PostgresRepository) Get(ctx context.Context, key string) (*models.ACL, error) {
	a := &models.ACL{ObjectKey: key}
	err := r.db.QueryRowContext(ctx,
		`SELECT owner, created_at FROM acl_objects WHERE object_key = $1`, key).
		Scan(&a.Owner, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT identity FROM acl_entries WHERE object_key = $1 ORDER BY identity`, key)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		a.Members = append(a.Members, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return a, nil
}

func (r *PostgresRepository) ReplaceMembers(ctx context.Context, key string, members []string) error {
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var one int
		err := tx.QueryRowContext(ctx,
			`SELECT 1 FROM acl_objects WHERE object_key = $1 FOR UPDATE`, key).Scan(&one)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return common.ErrorNotFound
			}
			return fmt.Errorf("db error: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM acl_entries WHERE object_key = $1`, key); err != nil {
			return fmt.Errorf("db error: %w", err)
		}
		for _, m := range members {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO acl_entries (object_key, identity) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
				key, m); err != nil {
				return fmt.Errorf("db error: %w", err)
			}
		}
		return nil
	})
}

var _ Repository = (*PostgresRepository)(nil)
