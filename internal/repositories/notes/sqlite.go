package notes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/planner/internal/common"
	"github.com/dmitrijs2005/planner/internal/dbx"
	"github.com/dmitrijs2005/planner/internal/models"
	"github.com/dmitrijs2005/planner/internal/storage"
)

const noteColumns = `id, local_id, user_id, folder_id, title, content, created_at, updated_at, sync_status`

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Create(ctx context.Context, userID int64, localID string, folderID *int64, title *string, content string) (int64, error) {
	now := storage.FormatTime(time.Now())
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO notes (local_id, user_id, folder_id, title, content, created_at, updated_at, sync_status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		localID, userID, folderID, title, content, now, now, models.SyncStatusPending)
	if err != nil {
		return 0, fmt.Errorf("failed to insert note: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get inserted note id: %w", err)
	}
	return id, nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, userID, id int64) (*models.Note, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+noteColumns+` FROM notes WHERE id = ? AND user_id = ?`, id, userID)

	n, err := scanNote(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("failed to get note: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) ListByUser(ctx context.Context, userID int64) ([]models.Note, error) {
	return r.list(ctx,
		`SELECT `+noteColumns+` FROM notes WHERE user_id = ? ORDER BY updated_at DESC`, userID)
}

func (r *SQLiteRepository) ListRoot(ctx context.Context, userID int64) ([]models.Note, error) {
	return r.list(ctx,
		`SELECT `+noteColumns+` FROM notes WHERE user_id = ? AND folder_id IS NULL ORDER BY updated_at DESC`, userID)
}

func (r *SQLiteRepository) ListByFolder(ctx context.Context, userID, folderID int64) ([]models.Note, error) {
	return r.list(ctx,
		`SELECT `+noteColumns+` FROM notes WHERE user_id = ? AND folder_id = ? ORDER BY updated_at DESC`,
		userID, folderID)
}

func (r *SQLiteRepository) ListPending(ctx context.Context, userID int64) ([]models.Note, error) {
	return r.list(ctx,
		`SELECT `+noteColumns+` FROM notes WHERE user_id = ? AND sync_status = ? ORDER BY updated_at`,
		userID, models.SyncStatusPending)
}

func (r *SQLiteRepository) Update(ctx context.Context, userID, id int64, title *string, content string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE notes SET title = ?, content = ?, updated_at = ?, sync_status = ?
		WHERE id = ? AND user_id = ?`,
		title, content, storage.FormatTime(time.Now()), models.SyncStatusPending, id, userID)
	if err != nil {
		return fmt.Errorf("failed to update note: %w", err)
	}
	return requireAffected(res)
}

func (r *SQLiteRepository) Move(ctx context.Context, userID, id int64, folderID *int64) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE notes SET folder_id = ?, updated_at = ?, sync_status = ?
		WHERE id = ? AND user_id = ?`,
		folderID, storage.FormatTime(time.Now()), models.SyncStatusPending, id, userID)
	if err != nil {
		return fmt.Errorf("failed to move note: %w", err)
	}
	return requireAffected(res)
}

// MoveAll relocates every note from one folder (nil = root) to another.
func (r *SQLiteRepository) MoveAll(ctx context.Context, userID int64, from, to *int64) error {
	now := storage.FormatTime(time.Now())
	var err error
	if from == nil {
		_, err = r.db.ExecContext(ctx, `
			UPDATE notes SET folder_id = ?, updated_at = ?, sync_status = ?
			WHERE user_id = ? AND folder_id IS NULL`,
			to, now, models.SyncStatusPending, userID)
	} else {
		_, err = r.db.ExecContext(ctx, `
			UPDATE notes SET folder_id = ?, updated_at = ?, sync_status = ?
			WHERE user_id = ? AND folder_id = ?`,
			to, now, models.SyncStatusPending, userID, *from)
	}
	if err != nil {
		return fmt.Errorf("failed to move notes: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM notes WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}
	return requireAffected(res)
}

// DeleteInFolders removes every note contained in any of the given folders.
// It is the note half of the recursive folder delete and runs inside the
// caller's transaction.
func (r *SQLiteRepository) DeleteInFolders(ctx context.Context, userID int64, folderIDs []int64) error {
	if len(folderIDs) == 0 {
		return nil
	}
	args := make([]any, 0, len(folderIDs)+1)
	args = append(args, userID)
	for _, id := range folderIDs {
		args = append(args, id)
	}
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM notes WHERE user_id = ? AND folder_id IN (`+placeholders(len(folderIDs))+`)`, args...)
	if err != nil {
		return fmt.Errorf("failed to delete notes in folders: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Search(ctx context.Context, userID int64, text string) ([]models.Note, error) {
	pattern := "%" + text + "%"
	return r.list(ctx, `
		SELECT `+noteColumns+` FROM notes
		WHERE user_id = ? AND (title LIKE ? OR content LIKE ?)
		ORDER BY updated_at DESC`,
		userID, pattern, pattern)
}

// SearchWithFolder is Search joined with each note's folder name, for
// result lists that show where the match lives.
func (r *SQLiteRepository) SearchWithFolder(ctx context.Context, userID int64, text string) ([]models.NoteWithFolder, error) {
	pattern := "%" + text + "%"
	rows, err := r.db.QueryContext(ctx, `
		SELECT n.id, n.local_id, n.user_id, n.folder_id, n.title, n.content,
			n.created_at, n.updated_at, n.sync_status, f.name
		FROM notes n
		LEFT JOIN folders f ON f.id = n.folder_id
		WHERE n.user_id = ? AND (n.title LIKE ? OR n.content LIKE ?)
		ORDER BY n.updated_at DESC`,
		userID, pattern, pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to search notes: %w", err)
	}
	defer rows.Close()

	var result []models.NoteWithFolder
	for rows.Next() {
		var (
			item       models.NoteWithFolder
			localID    sql.NullString
			folderID   sql.NullInt64
			title      sql.NullString
			createdAt  string
			updatedAt  string
			folderName sql.NullString
		)
		if err := rows.Scan(&item.ID, &localID, &item.UserID, &folderID, &title, &item.Content,
			&createdAt, &updatedAt, &item.SyncStatus, &folderName); err != nil {
			return nil, err
		}
		item.LocalID = localID.String
		if folderID.Valid {
			item.FolderID = &folderID.Int64
		}
		if title.Valid {
			item.Title = &title.String
		}
		if folderName.Valid {
			item.FolderName = &folderName.String
		}
		if item.CreatedAt, err = storage.ParseTime(createdAt); err != nil {
			return nil, fmt.Errorf("failed to parse note created_at: %w", err)
		}
		if item.UpdatedAt, err = storage.ParseTime(updatedAt); err != nil {
			return nil, fmt.Errorf("failed to parse note updated_at: %w", err)
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) UpdateSyncStatus(ctx context.Context, id int64, status models.SyncStatus) error {
	_, err := r.db.ExecContext(ctx, `UPDATE notes SET sync_status = ? WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update note sync status: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) list(ctx context.Context, query string, args ...any) ([]models.Note, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select notes: %w", err)
	}
	defer rows.Close()

	var result []models.Note
	for rows.Next() {
		n, err := scanNote(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, *n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func scanNote(scan func(dest ...any) error) (*models.Note, error) {
	var (
		n         models.Note
		localID   sql.NullString
		folderID  sql.NullInt64
		title     sql.NullString
		createdAt string
		updatedAt string
	)
	if err := scan(&n.ID, &localID, &n.UserID, &folderID, &title, &n.Content,
		&createdAt, &updatedAt, &n.SyncStatus); err != nil {
		return nil, err
	}
	n.LocalID = localID.String
	if folderID.Valid {
		n.FolderID = &folderID.Int64
	}
	if title.Valid {
		n.Title = &title.String
	}
	var err error
	if n.CreatedAt, err = storage.ParseTime(createdAt); err != nil {
		return nil, fmt.Errorf("failed to parse note created_at: %w", err)
	}
	if n.UpdatedAt, err = storage.ParseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("failed to parse note updated_at: %w", err)
	}
	return &n, nil
}

func requireAffected(res sql.Result) error {
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
