package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/planner/internal/common"
	"github.com/dmitrijs2005/planner/internal/models"
	"github.com/dmitrijs2005/planner/internal/repositories/folders"
	"github.com/dmitrijs2005/planner/internal/repositories/notes"
)

// NoteService manages the notes of one user.
//
// The folder filter is tri-state: List returns everything, ListRoot only
// unfiled notes, ListInFolder the contents of one folder.
type NoteService interface {
	Create(ctx context.Context, userID int64, folderID *int64, title, content string) (*models.Note, error)
	Get(ctx context.Context, userID, id int64) (*models.Note, error)
	List(ctx context.Context, userID int64) ([]models.Note, error)
	ListRoot(ctx context.Context, userID int64) ([]models.Note, error)
	ListInFolder(ctx context.Context, userID, folderID int64) ([]models.Note, error)
	Update(ctx context.Context, userID, id int64, title, content string) error
	Move(ctx context.Context, userID, id int64, folderID *int64) error
	MoveAll(ctx context.Context, userID int64, from, to *int64) error
	Delete(ctx context.Context, userID, id int64) error
	Search(ctx context.Context, userID int64, text string) ([]models.NoteWithFolder, error)
}

type noteService struct {
	db *sql.DB
}

// NewNoteService constructs a NoteService over the given store.
func NewNoteService(db *sql.DB) NoteService {
	return &noteService{db: db}
}

func (s *noteService) repo() notes.Repository {
	return notes.NewSQLiteRepository(s.db)
}

// normalizeTitle trims the title and maps an empty result to "absent".
// An empty title is never stored.
func normalizeTitle(title string) *string {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil
	}
	return &title
}

func (s *noteService) Create(ctx context.Context, userID int64, folderID *int64, title, content string) (*models.Note, error) {
	if strings.TrimSpace(content) == "" {
		return nil, common.ErrorEmptyNoteContent
	}
	if folderID != nil {
		if _, err := folders.NewSQLiteRepository(s.db).GetByID(ctx, userID, *folderID); err != nil {
			return nil, fmt.Errorf("folder: %w", err)
		}
	}
	repo := s.repo()
	id, err := repo.Create(ctx, userID, uuid.NewString(), folderID, normalizeTitle(title), content)
	if err != nil {
		return nil, fmt.Errorf("error creating note: %w", err)
	}
	return repo.GetByID(ctx, userID, id)
}

func (s *noteService) Get(ctx context.Context, userID, id int64) (*models.Note, error) {
	return s.repo().GetByID(ctx, userID, id)
}

func (s *noteService) List(ctx context.Context, userID int64) ([]models.Note, error) {
	return s.repo().ListByUser(ctx, userID)
}

func (s *noteService) ListRoot(ctx context.Context, userID int64) ([]models.Note, error) {
	return s.repo().ListRoot(ctx, userID)
}

func (s *noteService) ListInFolder(ctx context.Context, userID, folderID int64) ([]models.Note, error) {
	return s.repo().ListByFolder(ctx, userID, folderID)
}

func (s *noteService) Update(ctx context.Context, userID, id int64, title, content string) error {
	if strings.TrimSpace(content) == "" {
		return common.ErrorEmptyNoteContent
	}
	return s.repo().Update(ctx, userID, id, normalizeTitle(title), content)
}

func (s *noteService) Move(ctx context.Context, userID, id int64, folderID *int64) error {
	if folderID != nil {
		if _, err := folders.NewSQLiteRepository(s.db).GetByID(ctx, userID, *folderID); err != nil {
			return fmt.Errorf("folder: %w", err)
		}
	}
	return s.repo().Move(ctx, userID, id, folderID)
}

func (s *noteService) MoveAll(ctx context.Context, userID int64, from, to *int64) error {
	if to != nil {
		if _, err := folders.NewSQLiteRepository(s.db).GetByID(ctx, userID, *to); err != nil {
			return fmt.Errorf("folder: %w", err)
		}
	}
	return s.repo().MoveAll(ctx, userID, from, to)
}

func (s *noteService) Delete(ctx context.Context, userID, id int64) error {
	return s.repo().Delete(ctx, userID, id)
}

func (s *noteService) Search(ctx context.Context, userID int64, text string) ([]models.NoteWithFolder, error) {
	return s.repo().SearchWithFolder(ctx, userID, strings.TrimSpace(text))
}
