package credentials

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/planner/internal/common"
	"github.com/dmitrijs2005/planner/internal/dbx"
	"github.com/dmitrijs2005/planner/internal/storage"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Get(ctx context.Context, email string) ([]byte, []byte, error) {
	var salt, key []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT salt, key FROM credentials WHERE email = ?`, email).Scan(&salt, &key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get credentials[%s]: %w", email, err)
	}
	return salt, key, nil
}

func (r *SQLiteRepository) Set(ctx context.Context, email string, salt, key []byte) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO credentials (email, salt, key, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(email) DO UPDATE SET salt = excluded.salt, key = excluded.key, updated_at = excluded.updated_at
	`, email, salt, key, storage.FormatTime(time.Now()))
	if err != nil {
		return fmt.Errorf("failed to set credentials[%s]: %w", email, err)
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, email string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM credentials WHERE email = ?`, email)
	if err != nil {
		return fmt.Errorf("failed to delete credentials[%s]: %w", email, err)
	}
	return nil
}

func (r *SQLiteRepository) GetFlag(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := r.db.QueryRowContext(ctx, `SELECT value FROM device_flags WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get device flag[%s]: %w", key, err)
	}
	return value, nil
}

func (r *SQLiteRepository) SetFlag(ctx context.Context, key string, value []byte) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO device_flags (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set device flag[%s]: %w", key, err)
	}
	return nil
}
