package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/planner/internal/common"
)

func TestNoteCreate_TitleNormalization(t *testing.T) {
	db := setupDB(t)
	s := NewNoteService(db)
	ctx := context.Background()

	for _, title := range []string{"", "   ", "\t\n"} {
		n, err := s.Create(ctx, 1, nil, title, "content")
		require.NoError(t, err)
		assert.Nil(t, n.Title, "title %q reads back as absent", title)
	}

	n, err := s.Create(ctx, 1, nil, "  padded  ", "content")
	require.NoError(t, err)
	require.NotNil(t, n.Title)
	assert.Equal(t, "padded", *n.Title)
}

func TestNoteCreate_Validation(t *testing.T) {
	db := setupDB(t)
	s := NewNoteService(db)
	ctx := context.Background()

	_, err := s.Create(ctx, 1, nil, "title", "   ")
	require.ErrorIs(t, err, common.ErrorEmptyNoteContent)

	_, err = s.Create(ctx, 1, int64Ptr(42), "title", "content")
	require.ErrorIs(t, err, common.ErrorNotFound, "folder must exist")
}

func TestNoteUpdate_NormalizesTitleAndStampsPending(t *testing.T) {
	db := setupDB(t)
	s := NewNoteService(db)
	ctx := context.Background()

	n, err := s.Create(ctx, 1, nil, "old", "body")
	require.NoError(t, err)
	_, err = db.Exec(`UPDATE notes SET sync_status = 'synced' WHERE id = ?`, n.ID)
	require.NoError(t, err)

	require.NoError(t, s.Update(ctx, 1, n.ID, "  ", "new body"))

	got, err := s.Get(ctx, 1, n.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Title)
	assert.Equal(t, "new body", got.Content)
	assert.Equal(t, "pending", string(got.SyncStatus))
}

func TestNoteList_TriState(t *testing.T) {
	db := setupDB(t)
	fs := NewFolderService(db)
	s := NewNoteService(db)
	ctx := context.Background()

	folder, err := fs.Create(ctx, 1, "Work", nil)
	require.NoError(t, err)
	_, err = s.Create(ctx, 1, nil, "", "at root")
	require.NoError(t, err)
	_, err = s.Create(ctx, 1, &folder.ID, "", "filed")
	require.NoError(t, err)

	all, err := s.List(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	root, err := s.ListRoot(ctx, 1)
	require.NoError(t, err)
	require.Len(t, root, 1)
	assert.Equal(t, "at root", root[0].Content)

	filed, err := s.ListInFolder(ctx, 1, folder.ID)
	require.NoError(t, err)
	require.Len(t, filed, 1)
	assert.Equal(t, "filed", filed[0].Content)
}

func TestNoteMoveAll(t *testing.T) {
	db := setupDB(t)
	fs := NewFolderService(db)
	s := NewNoteService(db)
	ctx := context.Background()

	from, err := fs.Create(ctx, 1, "From", nil)
	require.NoError(t, err)
	to, err := fs.Create(ctx, 1, "To", nil)
	require.NoError(t, err)
	_, err = s.Create(ctx, 1, &from.ID, "", "one")
	require.NoError(t, err)
	_, err = s.Create(ctx, 1, &from.ID, "", "two")
	require.NoError(t, err)

	require.NoError(t, s.MoveAll(ctx, 1, &from.ID, &to.ID))

	moved, err := s.ListInFolder(ctx, 1, to.ID)
	require.NoError(t, err)
	assert.Len(t, moved, 2)

	empty, err := s.ListInFolder(ctx, 1, from.ID)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestNoteSearch_JoinsFolderName(t *testing.T) {
	db := setupDB(t)
	fs := NewFolderService(db)
	s := NewNoteService(db)
	ctx := context.Background()

	folder, err := fs.Create(ctx, 1, "Recipes", nil)
	require.NoError(t, err)
	_, err = s.Create(ctx, 1, &folder.ID, "Pasta", "boil water")
	require.NoError(t, err)
	_, err = s.Create(ctx, 1, nil, "", "pasta at root")
	require.NoError(t, err)

	found, err := s.Search(ctx, 1, "pasta")
	require.NoError(t, err)
	require.Len(t, found, 2)

	names := map[string]bool{}
	for _, n := range found {
		if n.FolderName != nil {
			names[*n.FolderName] = true
		}
	}
	assert.True(t, names["Recipes"])
}
