// Package folders persists the self-referential folder tree.
package folders

import (
	"context"

	"github.com/dmitrijs2005/planner/internal/models"
)

// Repository is the persistence surface for folders.
//
// ListChildren distinguishes a nil parent (root folders) from ListByUser
// (all folders, no filter). DescendantIDs and TreeWithCounts walk the tree
// with recursive CTEs; DeleteByIDs is the low-level half of the recursive
// delete and expects the caller to run it inside a transaction together
// with the note cleanup.
type Repository interface {
	Create(ctx context.Context, userID int64, localID, name string, parent *int64) (int64, error)
	GetByID(ctx context.Context, userID, id int64) (*models.Folder, error)
	ListByUser(ctx context.Context, userID int64) ([]models.Folder, error)
	ListChildren(ctx context.Context, userID int64, parent *int64) ([]models.Folder, error)
	DescendantIDs(ctx context.Context, userID, id int64) ([]int64, error)
	TreeWithCounts(ctx context.Context, userID int64) ([]models.FolderTreeItem, error)
	Detail(ctx context.Context, userID, id int64) (*models.FolderDetail, error)
	SearchByName(ctx context.Context, userID int64, text string) ([]models.Folder, error)
	Rename(ctx context.Context, userID, id int64, name string) error
	Move(ctx context.Context, userID, id int64, parent *int64) error
	DeleteByIDs(ctx context.Context, userID int64, ids []int64) error
	ListPending(ctx context.Context, userID int64) ([]models.Folder, error)
	UpdateSyncStatus(ctx context.Context, id int64, status models.SyncStatus) error
}
