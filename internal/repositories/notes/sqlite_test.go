package notes

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/planner/internal/common"
	"github.com/dmitrijs2005/planner/internal/models"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE folders (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  local_id TEXT,
  user_id INTEGER NOT NULL,
  name TEXT NOT NULL,
  parent_folder_id INTEGER REFERENCES folders(id) ON DELETE SET NULL,
  created_at TEXT NOT NULL DEFAULT (datetime('now')),
  sync_status TEXT NOT NULL DEFAULT 'pending'
);
CREATE TABLE notes (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  local_id TEXT,
  user_id INTEGER NOT NULL,
  folder_id INTEGER REFERENCES folders(id) ON DELETE SET NULL,
  title TEXT,
  content TEXT NOT NULL,
  created_at TEXT NOT NULL DEFAULT (datetime('now')),
  updated_at TEXT NOT NULL DEFAULT (datetime('now')),
  sync_status TEXT NOT NULL DEFAULT 'pending'
);
`)
	require.NoError(t, err)
	return db
}

func addFolder(t *testing.T, db *sql.DB, userID int64, name string) int64 {
	t.Helper()
	res, err := db.Exec(`INSERT INTO folders (user_id, name) VALUES (?, ?)`, userID, name)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return id
}

func strPtr(s string) *string { return &s }

func TestCreateGet(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	id, err := r.Create(ctx, 1, "local-1", nil, strPtr("Shopping"), "milk, eggs")
	require.NoError(t, err)

	n, err := r.GetByID(ctx, 1, id)
	require.NoError(t, err)
	require.NotNil(t, n.Title)
	assert.Equal(t, "Shopping", *n.Title)
	assert.Equal(t, "milk, eggs", n.Content)
	assert.Nil(t, n.FolderID)
	assert.Equal(t, models.SyncStatusPending, n.SyncStatus)
}

func TestCreate_NilTitleStoredAsNull(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	id, err := r.Create(ctx, 1, "local-1", nil, nil, "untitled body")
	require.NoError(t, err)

	n, err := r.GetByID(ctx, 1, id)
	require.NoError(t, err)
	assert.Nil(t, n.Title)
}

func TestList_TriStateFolderFilter(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	folderID := addFolder(t, db, 1, "Work")
	_, err := r.Create(ctx, 1, "l1", nil, nil, "root note")
	require.NoError(t, err)
	_, err = r.Create(ctx, 1, "l2", &folderID, nil, "filed note")
	require.NoError(t, err)
	_, err = r.Create(ctx, 2, "l3", nil, nil, "other user")
	require.NoError(t, err)

	all, err := r.ListByUser(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	root, err := r.ListRoot(ctx, 1)
	require.NoError(t, err)
	require.Len(t, root, 1)
	assert.Equal(t, "root note", root[0].Content)

	filed, err := r.ListByFolder(ctx, 1, folderID)
	require.NoError(t, err)
	require.Len(t, filed, 1)
	assert.Equal(t, "filed note", filed[0].Content)
}

func TestUpdate(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	id, err := r.Create(ctx, 1, "l1", nil, strPtr("old"), "old body")
	require.NoError(t, err)
	require.NoError(t, r.UpdateSyncStatus(ctx, id, models.SyncStatusSynced))

	require.NoError(t, r.Update(ctx, 1, id, nil, "new body"))

	n, err := r.GetByID(ctx, 1, id)
	require.NoError(t, err)
	assert.Nil(t, n.Title, "update can clear the title")
	assert.Equal(t, "new body", n.Content)
	assert.Equal(t, models.SyncStatusPending, n.SyncStatus)

	require.ErrorIs(t, r.Update(ctx, 2, id, nil, "x"), common.ErrorNotFound)
}

func TestMoveAndMoveAll(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	aID := addFolder(t, db, 1, "A")
	bID := addFolder(t, db, 1, "B")

	n1, err := r.Create(ctx, 1, "l1", &aID, nil, "one")
	require.NoError(t, err)
	n2, err := r.Create(ctx, 1, "l2", &aID, nil, "two")
	require.NoError(t, err)

	require.NoError(t, r.Move(ctx, 1, n1, &bID))
	got, err := r.GetByID(ctx, 1, n1)
	require.NoError(t, err)
	require.NotNil(t, got.FolderID)
	assert.Equal(t, bID, *got.FolderID)

	// remaining note in A goes to root
	require.NoError(t, r.MoveAll(ctx, 1, &aID, nil))
	got, err = r.GetByID(ctx, 1, n2)
	require.NoError(t, err)
	assert.Nil(t, got.FolderID)

	// root notes go to B
	require.NoError(t, r.MoveAll(ctx, 1, nil, &bID))
	inB, err := r.ListByFolder(ctx, 1, bID)
	require.NoError(t, err)
	assert.Len(t, inB, 2)
}

func TestDelete(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	id, err := r.Create(ctx, 1, "l1", nil, nil, "bye")
	require.NoError(t, err)

	require.ErrorIs(t, r.Delete(ctx, 2, id), common.ErrorNotFound)
	require.NoError(t, r.Delete(ctx, 1, id))

	_, err = r.GetByID(ctx, 1, id)
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestDeleteInFolders(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	aID := addFolder(t, db, 1, "A")
	bID := addFolder(t, db, 1, "B")

	_, err := r.Create(ctx, 1, "l1", &aID, nil, "in a")
	require.NoError(t, err)
	_, err = r.Create(ctx, 1, "l2", &bID, nil, "in b")
	require.NoError(t, err)
	keep, err := r.Create(ctx, 1, "l3", nil, nil, "at root")
	require.NoError(t, err)

	require.NoError(t, r.DeleteInFolders(ctx, 1, []int64{aID, bID}))
	require.NoError(t, r.DeleteInFolders(ctx, 1, nil))

	all, err := r.ListByUser(ctx, 1)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, keep, all[0].ID)
}

func TestSearch(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	_, err := r.Create(ctx, 1, "l1", nil, strPtr("Grocery list"), "apples")
	require.NoError(t, err)
	_, err = r.Create(ctx, 1, "l2", nil, nil, "buy groceries tomorrow")
	require.NoError(t, err)
	_, err = r.Create(ctx, 1, "l3", nil, strPtr("Other"), "nothing here")
	require.NoError(t, err)

	found, err := r.Search(ctx, 1, "grocer")
	require.NoError(t, err)
	assert.Len(t, found, 2, "matches in title and in content")
}

func TestSearchWithFolder(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	folderID := addFolder(t, db, 1, "Work")
	_, err := r.Create(ctx, 1, "l1", &folderID, strPtr("meeting"), "agenda")
	require.NoError(t, err)
	_, err = r.Create(ctx, 1, "l2", nil, strPtr("meeting at home"), "x")
	require.NoError(t, err)

	found, err := r.SearchWithFolder(ctx, 1, "meeting")
	require.NoError(t, err)
	require.Len(t, found, 2)

	byContent := map[string]*string{}
	for _, n := range found {
		byContent[n.Content] = n.FolderName
	}
	require.NotNil(t, byContent["agenda"])
	assert.Equal(t, "Work", *byContent["agenda"])
	assert.Nil(t, byContent["x"], "root-level note has no folder name")
}

func TestListPending(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	syncedID, err := r.Create(ctx, 1, "l1", nil, nil, "synced")
	require.NoError(t, err)
	_, err = r.Create(ctx, 1, "l2", nil, nil, "still pending")
	require.NoError(t, err)
	require.NoError(t, r.UpdateSyncStatus(ctx, syncedID, models.SyncStatusSynced))

	pending, err := r.ListPending(ctx, 1)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "still pending", pending[0].Content)
}
