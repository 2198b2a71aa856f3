package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/planner/internal/common"
	"github.com/dmitrijs2005/planner/internal/dbx"
	"github.com/dmitrijs2005/planner/internal/models"
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

func (r *SQLiteRepository) Create(ctx context.Context, email, localID string) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (email, local_id, created_at) VALUES (?, ?, ?)`,
		email, localID, storage.FormatTime(time.Now()))
	if err != nil {
		return 0, fmt.Errorf("failed to insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get inserted user id: %w", err)
	}
	return id, nil
}

func (r *SQLiteRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, local_id, email, auth_token, created_at FROM users WHERE email = ?`, email)
	return scanUser(row)
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, local_id, email, auth_token, created_at FROM users WHERE id = ?`, id)
	return scanUser(row)
}

// Current returns the most recently created user row.
func (r *SQLiteRepository) Current(ctx context.Context) (*models.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, local_id, email, auth_token, created_at FROM users ORDER BY id DESC LIMIT 1`)
	return scanUser(row)
}

func (r *SQLiteRepository) UpdateAuthToken(ctx context.Context, userID int64, token string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE users SET auth_token = ? WHERE id = ?`, token, userID)
	if err != nil {
		return fmt.Errorf("failed to update auth token: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ClearAuthToken(ctx context.Context, userID int64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE users SET auth_token = NULL WHERE id = ?`, userID)
	if err != nil {
		return fmt.Errorf("failed to clear auth token: %w", err)
	}
	return nil
}

func scanUser(row *sql.Row) (*models.User, error) {
	var (
		u         models.User
		token     sql.NullString
		createdAt string
	)
	if err := row.Scan(&u.ID, &u.LocalID, &u.Email, &token, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	if token.Valid {
		u.AuthToken = &token.String
	}
	t, err := storage.ParseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse user created_at: %w", err)
	}
	u.CreatedAt = t
	return &u, nil
}
