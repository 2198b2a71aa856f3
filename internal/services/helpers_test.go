package services

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/planner/internal/models"
	"github.com/dmitrijs2005/planner/internal/provider"

	_ "modernc.org/sqlite"
)

// setupDB builds an in-memory store with the full schema the services
// touch.
func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE users (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  local_id TEXT NOT NULL UNIQUE,
  email TEXT NOT NULL UNIQUE,
  auth_token TEXT,
  created_at TEXT NOT NULL DEFAULT (datetime('now'))
);
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
CREATE TABLE tasks (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  local_id TEXT,
  user_id INTEGER NOT NULL,
  content TEXT NOT NULL,
  priority TEXT NOT NULL DEFAULT 'low',
  date TEXT,
  start_time TEXT,
  end_time TEXT,
  completed INTEGER NOT NULL DEFAULT 0,
  created_at TEXT NOT NULL DEFAULT (datetime('now')),
  updated_at TEXT NOT NULL DEFAULT (datetime('now')),
  sync_status TEXT NOT NULL DEFAULT 'pending'
);
CREATE TABLE credentials (
  email TEXT PRIMARY KEY,
  salt BLOB NOT NULL,
  key BLOB NOT NULL,
  updated_at TEXT NOT NULL DEFAULT (datetime('now'))
);
CREATE TABLE device_flags (
  key TEXT PRIMARY KEY,
  value BLOB NOT NULL
);
`)
	require.NoError(t, err)
	return db
}

// fakeProvider is a scriptable provider.Client recording the last call
// arguments.
type fakeProvider struct {
	mu sync.Mutex

	loginRes  *provider.AuthResult
	loginErr  error
	regRes    *provider.AuthResult
	regErr    error
	logoutErr error
	syncErr   error
	cloudRes  *models.SyncPayload

	LastLoginEmail    string
	LastLoginPassword string
	LastRegEmail      string
	LastSyncToken     string
	LastSyncPayload   *models.SyncPayload
	LoginCalls        int
	RegisterCalls     int
	LogoutCalls       int
	SyncCalls         int
}

func (f *fakeProvider) Login(ctx context.Context, email, password string) (*provider.AuthResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LoginCalls++
	f.LastLoginEmail, f.LastLoginPassword = email, password
	return f.loginRes, f.loginErr
}

func (f *fakeProvider) Register(ctx context.Context, email, password string) (*provider.AuthResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.RegisterCalls++
	f.LastRegEmail = email
	return f.regRes, f.regErr
}

func (f *fakeProvider) Logout(ctx context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LogoutCalls++
	return f.logoutErr
}

func (f *fakeProvider) SyncData(ctx context.Context, token string, payload *models.SyncPayload) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.SyncCalls++
	f.LastSyncToken = token
	f.LastSyncPayload = payload
	return f.syncErr
}

func (f *fakeProvider) GetCloudData(ctx context.Context, token string) (*models.SyncPayload, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cloudRes, nil
}

func (f *fakeProvider) Ping(ctx context.Context) error { return nil }

func (f *fakeProvider) syncCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.SyncCalls
}

// fakeNet is a scriptable Reachability.
type fakeNet struct {
	mu     sync.Mutex
	online bool
	ch     chan bool
}

func newFakeNet(online bool) *fakeNet {
	return &fakeNet{online: online, ch: make(chan bool, 1)}
}

func (f *fakeNet) IsOnline() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.online
}

func (f *fakeNet) Subscribe() <-chan bool { return f.ch }

func (f *fakeNet) setOnline(online bool) {
	f.mu.Lock()
	f.online = online
	f.mu.Unlock()
	f.ch <- online
}

func int64Ptr(v int64) *int64 { return &v }
