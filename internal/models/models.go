// Package models contains the domain types shared by the planner core:
// users, folders, notes, tasks and the derived authentication state.
package models

import "time"

// SyncStatus tracks the cloud-sync state of a local record.
type SyncStatus string

const (
	SyncStatusSynced  SyncStatus = "synced"
	SyncStatusPending SyncStatus = "pending"
	SyncStatusError   SyncStatus = "error"
)

// Priority of a task. The legacy data model also mentioned "medium",
// but no code path ever produced it, so it is not part of the domain.
type Priority string

const (
	PriorityHigh Priority = "high"
	PriorityLow  Priority = "low"
)

// User is the single-tenant identity record of the local store.
// AuthToken is nil when the user is logged out.
type User struct {
	ID        int64
	LocalID   string
	Email     string
	AuthToken *string
	CreatedAt time.Time
}

// Folder is a node of the self-referential folder tree.
// ParentFolderID == nil means the folder sits at the root.
type Folder struct {
	ID             int64
	LocalID        string
	UserID         int64
	Name           string
	ParentFolderID *int64
	CreatedAt      time.Time
	SyncStatus     SyncStatus
}

// FolderTreeItem is a folder annotated with its depth in the tree and
// the number of notes directly inside it.
type FolderTreeItem struct {
	Folder
	Level     int
	NoteCount int
}

// FolderDetail is a single folder with direct note and subfolder counts.
type FolderDetail struct {
	Folder
	NoteCount      int
	SubfolderCount int
}

// Note is a text note. Title == nil means the note has no title;
// an empty title is never stored. FolderID == nil means root level.
type Note struct {
	ID         int64
	LocalID    string
	UserID     int64
	FolderID   *int64
	Title      *string
	Content    string
	CreatedAt  time.Time
	UpdatedAt  time.Time
	SyncStatus SyncStatus
}

// NoteWithFolder is a note joined with the name of its owning folder.
// FolderName is nil for root-level notes.
type NoteWithFolder struct {
	Note
	FolderName *string
}

// Task is a to-do item, optionally bound to a calendar day ("2006-01-02")
// and a start/end time of day ("15:04").
type Task struct {
	ID         int64
	LocalID    string
	UserID     int64
	Content    string
	Priority   Priority
	Date       *string
	StartTime  *string
	EndTime    *string
	Completed  bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
	SyncStatus SyncStatus
}

// AuthState is the single authoritative value the UI reads. It is derived,
// never persisted, and recomputed on init, login, register, logout and
// connectivity changes. CurrentUserID is 0 when no user is authenticated.
type AuthState struct {
	User            *User
	CurrentUserID   int64
	IsAuthenticated bool
	IsLoading       bool
	IsOnline        bool
	IsOffline       bool // last successful auth used the local fallback
}
