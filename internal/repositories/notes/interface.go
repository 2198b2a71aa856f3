// Package notes persists text notes and their folder placement.
package notes

import (
	"context"

	"github.com/dmitrijs2005/planner/internal/models"
)

// Repository is the persistence surface for notes.
//
// The three List* methods form the folder filter: ListByUser ignores
// folders entirely, ListRoot returns only unfiled notes, ListByFolder
// returns the contents of one folder. Search matches title and content;
// SearchWithFolder additionally joins the owning folder's name.
type Repository interface {
	Create(ctx context.Context, userID int64, localID string, folderID *int64, title *string, content string) (int64, error)
	GetByID(ctx context.Context, userID, id int64) (*models.Note, error)
	ListByUser(ctx context.Context, userID int64) ([]models.Note, error)
	ListRoot(ctx context.Context, userID int64) ([]models.Note, error)
	ListByFolder(ctx context.Context, userID, folderID int64) ([]models.Note, error)
	Update(ctx context.Context, userID, id int64, title *string, content string) error
	Move(ctx context.Context, userID, id int64, folderID *int64) error
	MoveAll(ctx context.Context, userID int64, from, to *int64) error
	Delete(ctx context.Context, userID, id int64) error
	DeleteInFolders(ctx context.Context, userID int64, folderIDs []int64) error
	Search(ctx context.Context, userID int64, text string) ([]models.Note, error)
	SearchWithFolder(ctx context.Context, userID int64, text string) ([]models.NoteWithFolder, error)
	ListPending(ctx context.Context, userID int64) ([]models.Note, error)
	UpdateSyncStatus(ctx context.Context, id int64, status models.SyncStatus) error
}
