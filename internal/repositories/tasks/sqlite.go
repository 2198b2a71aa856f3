package tasks

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

const taskColumns = `id, local_id, user_id, content, priority, date, start_time, end_time, completed, created_at, updated_at, sync_status`

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Create(ctx context.Context, userID int64, localID, content string, priority models.Priority, date, start, end *string) (int64, error) {
	now := storage.FormatTime(time.Now())
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO tasks (local_id, user_id, content, priority, date, start_time, end_time, completed, created_at, updated_at, sync_status)
		VALUES (?, ?, ?, ?, ?, ?, ?, 0, ?, ?, ?)`,
		localID, userID, content, priority, date, start, end, now, now, models.SyncStatusPending)
	if err != nil {
		return 0, fmt.Errorf("failed to insert task: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get inserted task id: %w", err)
	}
	return id, nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, userID, id int64) (*models.Task, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = ? AND user_id = ?`, id, userID)

	task, err := scanTask(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return task, nil
}

func (r *SQLiteRepository) ListByUser(ctx context.Context, userID int64) ([]models.Task, error) {
	return r.list(ctx, `
		SELECT `+taskColumns+` FROM tasks WHERE user_id = ?
		ORDER BY
			CASE priority WHEN 'high' THEN 1 ELSE 2 END,
			CASE WHEN date IS NULL THEN 1 ELSE 0 END,
			date ASC,
			CASE WHEN start_time IS NULL THEN 1 ELSE 0 END,
			start_time ASC`, userID)
}

func (r *SQLiteRepository) ListByDate(ctx context.Context, userID int64, date string) ([]models.Task, error) {
	return r.list(ctx, `
		SELECT `+taskColumns+` FROM tasks WHERE user_id = ? AND date = ?
		ORDER BY
			CASE priority WHEN 'high' THEN 1 ELSE 2 END,
			CASE WHEN start_time IS NULL THEN 1 ELSE 0 END,
			start_time ASC`,
		userID, date)
}

// ListByMonth returns the incomplete tasks of one month ("2006-01"),
// in calendar order.
func (r *SQLiteRepository) ListByMonth(ctx context.Context, userID int64, yearMonth string) ([]models.Task, error) {
	return r.list(ctx, `
		SELECT `+taskColumns+` FROM tasks
		WHERE user_id = ? AND completed = 0 AND date LIKE ?
		ORDER BY date ASC, COALESCE(start_time, '00:00') ASC`,
		userID, yearMonth+"%")
}

func (r *SQLiteRepository) ListOverdue(ctx context.Context, userID int64, today string) ([]models.Task, error) {
	return r.list(ctx, `
		SELECT `+taskColumns+` FROM tasks
		WHERE user_id = ? AND completed = 0 AND date IS NOT NULL AND date < ?
		ORDER BY date ASC, COALESCE(start_time, '00:00') ASC`,
		userID, today)
}

func (r *SQLiteRepository) ListPending(ctx context.Context, userID int64) ([]models.Task, error) {
	return r.list(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE user_id = ? AND sync_status = ? ORDER BY updated_at`,
		userID, models.SyncStatusPending)
}

func (r *SQLiteRepository) Update(ctx context.Context, userID, id int64, content string, priority models.Priority, date, start, end *string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE tasks SET content = ?, priority = ?, date = ?, start_time = ?, end_time = ?, updated_at = ?, sync_status = ?
		WHERE id = ? AND user_id = ?`,
		content, priority, date, start, end, storage.FormatTime(time.Now()), models.SyncStatusPending, id, userID)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	return requireAffected(res)
}

func (r *SQLiteRepository) SetCompleted(ctx context.Context, userID, id int64, completed bool) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE tasks SET completed = ?, updated_at = ?, sync_status = ?
		WHERE id = ? AND user_id = ?`,
		completed, storage.FormatTime(time.Now()), models.SyncStatusPending, id, userID)
	if err != nil {
		return fmt.Errorf("failed to set task completion: %w", err)
	}
	return requireAffected(res)
}

func (r *SQLiteRepository) Delete(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM tasks WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return requireAffected(res)
}

func (r *SQLiteRepository) UpdateSyncStatus(ctx context.Context, id int64, status models.SyncStatus) error {
	_, err := r.db.ExecContext(ctx, `UPDATE tasks SET sync_status = ? WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update task sync status: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) list(ctx context.Context, query string, args ...any) ([]models.Task, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select tasks: %w", err)
	}
	defer rows.Close()

	var result []models.Task
	for rows.Next() {
		task, err := scanTask(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, *task)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func scanTask(scan func(dest ...any) error) (*models.Task, error) {
	var (
		task      models.Task
		localID   sql.NullString
		date      sql.NullString
		start     sql.NullString
		end       sql.NullString
		createdAt string
		updatedAt string
	)
	if err := scan(&task.ID, &localID, &task.UserID, &task.Content, &task.Priority,
		&date, &start, &end, &task.Completed, &createdAt, &updatedAt, &task.SyncStatus); err != nil {
		return nil, err
	}
	task.LocalID = localID.String
	if date.Valid {
		task.Date = &date.String
	}
	if start.Valid {
		task.StartTime = &start.String
	}
	if end.Valid {
		task.EndTime = &end.String
	}
	var err error
	if task.CreatedAt, err = storage.ParseTime(createdAt); err != nil {
		return nil, fmt.Errorf("failed to parse task created_at: %w", err)
	}
	if task.UpdatedAt, err = storage.ParseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("failed to parse task updated_at: %w", err)
	}
	return &task, nil
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
