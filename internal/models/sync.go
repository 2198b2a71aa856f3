package models

// SyncPayload is the versioned document pushed to the cloud provider by a
// sync pass. The legacy client sent an untyped blob; the payload is now an
// explicit struct so the wire shape can evolve behind Version.
type SyncPayload struct {
	Version   int           `json:"version"`
	UserKey   string        `json:"user_key"`
	Timestamp string        `json:"timestamp"`
	Folders   []FolderDelta `json:"folders,omitempty"`
	Notes     []NoteDelta   `json:"notes,omitempty"`
	Tasks     []TaskDelta   `json:"tasks,omitempty"`
}

// SyncPayloadVersion is the current wire version of SyncPayload.
const SyncPayloadVersion = 1

// FolderDelta describes one folder in the payload. The parent link is the
// parent's local id, not a row id, so the reference survives a reinstall.
type FolderDelta struct {
	LocalID       string `json:"local_id"`
	Name          string `json:"name"`
	ParentLocalID string `json:"parent_local_id,omitempty"`
	CreatedAt     string `json:"created_at"`
}

type NoteDelta struct {
	LocalID   string  `json:"local_id"`
	FolderID  *int64  `json:"folder_id,omitempty"`
	Title     *string `json:"title,omitempty"`
	Content   string  `json:"content"`
	UpdatedAt string  `json:"updated_at"`
}

type TaskDelta struct {
	LocalID   string  `json:"local_id"`
	Content   string  `json:"content"`
	Priority  string  `json:"priority"`
	Date      *string `json:"date,omitempty"`
	StartTime *string `json:"start_time,omitempty"`
	EndTime   *string `json:"end_time,omitempty"`
	Completed bool    `json:"completed"`
	UpdatedAt string  `json:"updated_at"`
}
