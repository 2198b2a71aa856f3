// Package tasks persists to-do items and their calendar queries.
package tasks

import (
	"context"

	"github.com/dmitrijs2005/planner/internal/models"
)

// Repository is the persistence surface for tasks.
//
// Dates are "2006-01-02" strings and times of day "15:04" strings, so
// all calendar queries are plain lexicographic comparisons. ListByUser
// orders high priority first, then dated before undated, then timed
// before untimed. ListByMonth returns only incomplete tasks.
type Repository interface {
	Create(ctx context.Context, userID int64, localID, content string, priority models.Priority, date, start, end *string) (int64, error)
	GetByID(ctx context.Context, userID, id int64) (*models.Task, error)
	ListByUser(ctx context.Context, userID int64) ([]models.Task, error)
	ListByDate(ctx context.Context, userID int64, date string) ([]models.Task, error)
	ListByMonth(ctx context.Context, userID int64, yearMonth string) ([]models.Task, error)
	ListOverdue(ctx context.Context, userID int64, today string) ([]models.Task, error)
	Update(ctx context.Context, userID, id int64, content string, priority models.Priority, date, start, end *string) error
	SetCompleted(ctx context.Context, userID, id int64, completed bool) error
	Delete(ctx context.Context, userID, id int64) error
	ListPending(ctx context.Context, userID int64) ([]models.Task, error)
	UpdateSyncStatus(ctx context.Context, id int64, status models.SyncStatus) error
}
