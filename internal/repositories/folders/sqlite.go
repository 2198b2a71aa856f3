package folders

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

const folderColumns = `id, local_id, user_id, name, parent_folder_id, created_at, sync_status`

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Create(ctx context.Context, userID int64, localID, name string, parent *int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO folders (local_id, user_id, name, parent_folder_id, created_at, sync_status)
		VALUES (?, ?, ?, ?, ?, ?)`,
		localID, userID, name, parent, storage.FormatTime(time.Now()), models.SyncStatusPending)
	if err != nil {
		return 0, fmt.Errorf("failed to insert folder: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get inserted folder id: %w", err)
	}
	return id, nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, userID, id int64) (*models.Folder, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+folderColumns+` FROM folders WHERE id = ? AND user_id = ?`, id, userID)

	f, err := scanFolder(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("failed to get folder: %w", err)
	}
	return f, nil
}

func (r *SQLiteRepository) ListByUser(ctx context.Context, userID int64) ([]models.Folder, error) {
	return r.list(ctx,
		`SELECT `+folderColumns+` FROM folders WHERE user_id = ? ORDER BY name COLLATE NOCASE ASC`, userID)
}

func (r *SQLiteRepository) ListChildren(ctx context.Context, userID int64, parent *int64) ([]models.Folder, error) {
	if parent == nil {
		return r.list(ctx,
			`SELECT `+folderColumns+` FROM folders WHERE user_id = ? AND parent_folder_id IS NULL ORDER BY name COLLATE NOCASE ASC`,
			userID)
	}
	return r.list(ctx,
		`SELECT `+folderColumns+` FROM folders WHERE user_id = ? AND parent_folder_id = ? ORDER BY name COLLATE NOCASE ASC`,
		userID, *parent)
}

func (r *SQLiteRepository) SearchByName(ctx context.Context, userID int64, text string) ([]models.Folder, error) {
	return r.list(ctx,
		`SELECT `+folderColumns+` FROM folders WHERE user_id = ? AND name LIKE ? ORDER BY name COLLATE NOCASE ASC`,
		userID, "%"+text+"%")
}

func (r *SQLiteRepository) ListPending(ctx context.Context, userID int64) ([]models.Folder, error) {
	return r.list(ctx,
		`SELECT `+folderColumns+` FROM folders WHERE user_id = ? AND sync_status = ? ORDER BY created_at`,
		userID, models.SyncStatusPending)
}

// DescendantIDs returns the ids of every folder below id, not including id
// itself. The walk is a single recursive CTE.
func (r *SQLiteRepository) DescendantIDs(ctx context.Context, userID, id int64) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx, `
		WITH RECURSIVE subtree(id) AS (
			SELECT id FROM folders WHERE user_id = ? AND parent_folder_id = ?
			UNION ALL
			SELECT f.id FROM folders f
			INNER JOIN subtree s ON f.parent_folder_id = s.id
			WHERE f.user_id = ?
		)
		SELECT id FROM subtree`, userID, id, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to select descendants: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var fid int64
		if err := rows.Scan(&fid); err != nil {
			return nil, err
		}
		ids = append(ids, fid)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

// TreeWithCounts returns the whole folder tree annotated with depth and the
// number of notes directly inside each folder, breadth-first by depth then
// case-insensitive name.
func (r *SQLiteRepository) TreeWithCounts(ctx context.Context, userID int64) ([]models.FolderTreeItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		WITH RECURSIVE folder_tree AS (
			SELECT f.id, f.local_id, f.user_id, f.name, f.parent_folder_id, f.created_at, f.sync_status,
				0 AS level,
				(SELECT COUNT(*) FROM notes n WHERE n.user_id = ? AND n.folder_id = f.id) AS note_count
			FROM folders f
			WHERE f.user_id = ? AND f.parent_folder_id IS NULL

			UNION ALL

			SELECT f.id, f.local_id, f.user_id, f.name, f.parent_folder_id, f.created_at, f.sync_status,
				ft.level + 1 AS level,
				(SELECT COUNT(*) FROM notes n WHERE n.user_id = ? AND n.folder_id = f.id) AS note_count
			FROM folders f
			INNER JOIN folder_tree ft ON f.parent_folder_id = ft.id
			WHERE f.user_id = ?
		)
		SELECT * FROM folder_tree ORDER BY level, name COLLATE NOCASE`,
		userID, userID, userID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to select folder tree: %w", err)
	}
	defer rows.Close()

	var result []models.FolderTreeItem
	for rows.Next() {
		var (
			item      models.FolderTreeItem
			localID   sql.NullString
			parent    sql.NullInt64
			createdAt string
		)
		if err := rows.Scan(&item.ID, &localID, &item.UserID, &item.Name, &parent,
			&createdAt, &item.SyncStatus, &item.Level, &item.NoteCount); err != nil {
			return nil, err
		}
		item.LocalID = localID.String
		if parent.Valid {
			item.ParentFolderID = &parent.Int64
		}
		t, err := storage.ParseTime(createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse folder created_at: %w", err)
		}
		item.CreatedAt = t
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Detail returns one folder with its direct note and subfolder counts.
func (r *SQLiteRepository) Detail(ctx context.Context, userID, id int64) (*models.FolderDetail, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+folderColumns+`,
			(SELECT COUNT(*) FROM notes n WHERE n.user_id = ? AND n.folder_id = folders.id),
			(SELECT COUNT(*) FROM folders sf WHERE sf.user_id = ? AND sf.parent_folder_id = folders.id)
		FROM folders WHERE id = ? AND user_id = ?`,
		userID, userID, id, userID)

	var (
		d         models.FolderDetail
		localID   sql.NullString
		parent    sql.NullInt64
		createdAt string
	)
	err := row.Scan(&d.ID, &localID, &d.UserID, &d.Name, &parent, &createdAt, &d.SyncStatus,
		&d.NoteCount, &d.SubfolderCount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get folder detail: %w", err)
	}
	d.LocalID = localID.String
	if parent.Valid {
		d.ParentFolderID = &parent.Int64
	}
	t, err := storage.ParseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse folder created_at: %w", err)
	}
	d.CreatedAt = t
	return &d, nil
}

func (r *SQLiteRepository) Rename(ctx context.Context, userID, id int64, name string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE folders SET name = ?, sync_status = ? WHERE id = ? AND user_id = ?`,
		name, models.SyncStatusPending, id, userID)
	if err != nil {
		return fmt.Errorf("failed to rename folder: %w", err)
	}
	return requireAffected(res)
}

func (r *SQLiteRepository) Move(ctx context.Context, userID, id int64, parent *int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE folders SET parent_folder_id = ?, sync_status = ? WHERE id = ? AND user_id = ?`,
		parent, models.SyncStatusPending, id, userID)
	if err != nil {
		return fmt.Errorf("failed to move folder: %w", err)
	}
	return requireAffected(res)
}

// DeleteByIDs removes the given folders in one statement. The caller is
// expected to have cleaned up contained notes first, inside the same
// transaction.
func (r *SQLiteRepository) DeleteByIDs(ctx context.Context, userID int64, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	args := make([]any, 0, len(ids)+1)
	for _, id := range ids {
		args = append(args, id)
	}
	args = append(args, userID)

	_, err := r.db.ExecContext(ctx,
		`DELETE FROM folders WHERE id IN (`+placeholders(len(ids))+`) AND user_id = ?`, args...)
	if err != nil {
		return fmt.Errorf("failed to delete folders: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) UpdateSyncStatus(ctx context.Context, id int64, status models.SyncStatus) error {
	_, err := r.db.ExecContext(ctx, `UPDATE folders SET sync_status = ? WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update folder sync status: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) list(ctx context.Context, query string, args ...any) ([]models.Folder, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select folders: %w", err)
	}
	defer rows.Close()

	var result []models.Folder
	for rows.Next() {
		f, err := scanFolder(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, *f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func scanFolder(scan func(dest ...any) error) (*models.Folder, error) {
	var (
		f         models.Folder
		localID   sql.NullString
		parent    sql.NullInt64
		createdAt string
	)
	if err := scan(&f.ID, &localID, &f.UserID, &f.Name, &parent, &createdAt, &f.SyncStatus); err != nil {
		return nil, err
	}
	f.LocalID = localID.String
	if parent.Valid {
		f.ParentFolderID = &parent.Int64
	}
	t, err := storage.ParseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse folder created_at: %w", err)
	}
	f.CreatedAt = t
	return &f, nil
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
