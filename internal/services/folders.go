// Package services contains the application services of the planner core:
// typed CRUD over the local store (folders, notes, tasks) and the auth &
// sync orchestrator. Every service takes the owning user id explicitly;
// there is no hidden "current user" singleton below the orchestrator.
package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/planner/internal/common"
	"github.com/dmitrijs2005/planner/internal/dbx"
	"github.com/dmitrijs2005/planner/internal/models"
	"github.com/dmitrijs2005/planner/internal/repositories/folders"
	"github.com/dmitrijs2005/planner/internal/repositories/notes"
)

// FolderService manages the folder tree of one user.
type FolderService interface {
	Create(ctx context.Context, userID int64, name string, parent *int64) (*models.Folder, error)
	Get(ctx context.Context, userID, id int64) (*models.Folder, error)
	List(ctx context.Context, userID int64) ([]models.Folder, error)
	Children(ctx context.Context, userID int64, parent *int64) ([]models.Folder, error)
	Tree(ctx context.Context, userID int64) ([]models.FolderTreeItem, error)
	Detail(ctx context.Context, userID, id int64) (*models.FolderDetail, error)
	Search(ctx context.Context, userID int64, text string) ([]models.Folder, error)
	Rename(ctx context.Context, userID, id int64, name string) error
	Move(ctx context.Context, userID, id int64, parent *int64) error
	Delete(ctx context.Context, userID, id int64) error
}

type folderService struct {
	db *sql.DB
}

// NewFolderService constructs a FolderService over the given store.
func NewFolderService(db *sql.DB) FolderService {
	return &folderService{db: db}
}

func (s *folderService) repo() folders.Repository {
	return folders.NewSQLiteRepository(s.db)
}

func (s *folderService) Create(ctx context.Context, userID int64, name string, parent *int64) (*models.Folder, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, common.ErrorEmptyFolderName
	}
	repo := s.repo()
	if parent != nil {
		if _, err := repo.GetByID(ctx, userID, *parent); err != nil {
			return nil, fmt.Errorf("parent folder: %w", err)
		}
	}
	id, err := repo.Create(ctx, userID, uuid.NewString(), name, parent)
	if err != nil {
		return nil, fmt.Errorf("error creating folder: %w", err)
	}
	return repo.GetByID(ctx, userID, id)
}

func (s *folderService) Get(ctx context.Context, userID, id int64) (*models.Folder, error) {
	return s.repo().GetByID(ctx, userID, id)
}

func (s *folderService) List(ctx context.Context, userID int64) ([]models.Folder, error) {
	return s.repo().ListByUser(ctx, userID)
}

func (s *folderService) Children(ctx context.Context, userID int64, parent *int64) ([]models.Folder, error) {
	return s.repo().ListChildren(ctx, userID, parent)
}

func (s *folderService) Tree(ctx context.Context, userID int64) ([]models.FolderTreeItem, error) {
	return s.repo().TreeWithCounts(ctx, userID)
}

func (s *folderService) Detail(ctx context.Context, userID, id int64) (*models.FolderDetail, error) {
	return s.repo().Detail(ctx, userID, id)
}

func (s *folderService) Search(ctx context.Context, userID int64, text string) ([]models.Folder, error) {
	return s.repo().SearchByName(ctx, userID, strings.TrimSpace(text))
}

func (s *folderService) Rename(ctx context.Context, userID, id int64, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return common.ErrorEmptyFolderName
	}
	return s.repo().Rename(ctx, userID, id, name)
}

// Move reparents a folder. The new parent must belong to the same user and
// must not be the folder itself or one of its descendants.
func (s *folderService) Move(ctx context.Context, userID, id int64, parent *int64) error {
	repo := s.repo()
	if parent != nil {
		if *parent == id {
			return fmt.Errorf("%w: folder cannot be its own parent", common.ErrorValidation)
		}
		if _, err := repo.GetByID(ctx, userID, *parent); err != nil {
			return fmt.Errorf("parent folder: %w", err)
		}
		descendants, err := repo.DescendantIDs(ctx, userID, id)
		if err != nil {
			return err
		}
		for _, d := range descendants {
			if d == *parent {
				return fmt.Errorf("%w: cannot move a folder into its own subtree", common.ErrorValidation)
			}
		}
	}
	return repo.Move(ctx, userID, id, parent)
}

// Delete removes a folder, every descendant folder and every note inside
// the subtree, in one transaction. Notes are deleted first so no note is
// ever left referencing a deleted folder.
func (s *folderService) Delete(ctx context.Context, userID, id int64) error {
	repo := s.repo()
	if _, err := repo.GetByID(ctx, userID, id); err != nil {
		return err
	}
	descendants, err := repo.DescendantIDs(ctx, userID, id)
	if err != nil {
		return err
	}
	ids := append(descendants, id)

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := notes.NewSQLiteRepository(tx).DeleteInFolders(ctx, userID, ids); err != nil {
			return err
		}
		return folders.NewSQLiteRepository(tx).DeleteByIDs(ctx, userID, ids)
	})
}
