package services

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/planner/internal/common"
	"github.com/dmitrijs2005/planner/internal/models"
	"github.com/dmitrijs2005/planner/internal/repositories/folders"
	"github.com/dmitrijs2005/planner/internal/repositories/notes"
	"github.com/dmitrijs2005/planner/internal/repositories/tasks"
	"github.com/dmitrijs2005/planner/internal/storage"
)

const (
	syncPassTimeout = 30 * time.Second
	lastSyncFlag    = "last_sync"
)

// TriggerSync requests a background sync pass after the debounce delay.
// It never blocks. Repeated calls inside the debounce window collapse
// into a single pass.
func (s *authService) TriggerSync() {
	s.scheduleSync()
}

func (s *authService) scheduleSync() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.state.IsAuthenticated {
		return
	}
	gen := s.generation
	if s.syncTimer != nil {
		s.syncTimer.Stop()
	}
	s.syncTimer = time.AfterFunc(s.debounce, func() {
		s.syncPass(gen)
	})
}

// syncPass drains pending records to the provider. Sync is advisory:
// every failure is logged and swallowed. A generation bump (logout)
// between scheduling and completion discards the result.
func (s *authService) syncPass(gen uint64) {
	ctx, cancel := context.WithTimeout(context.Background(), syncPassTimeout)
	defer cancel()

	state := s.State()
	if !state.IsAuthenticated || !state.IsOnline || state.User == nil || state.User.AuthToken == nil {
		return
	}
	user := state.User

	payload, pending, err := s.buildSyncPayload(ctx, user)
	if err != nil {
		s.log.Warn(ctx, "sync pass skipped", "error", err)
		return
	}
	if pending.empty() {
		return
	}

	if err := s.provider.SyncData(ctx, *user.AuthToken, payload); err != nil {
		s.log.Warn(ctx, "sync pass failed", "error", fmt.Errorf("%w: %s", common.ErrorSyncFailed, err))
		return
	}

	s.mu.Lock()
	stale := s.generation != gen
	s.mu.Unlock()
	if stale {
		s.log.Debug(ctx, "discarding sync result, user changed")
		return
	}

	if err := s.markSynced(ctx, pending); err != nil {
		s.log.Warn(ctx, "failed to mark records synced", "error", err)
		return
	}
	ts := storage.FormatTime(time.Now())
	if err := s.credRepo().SetFlag(ctx, lastSyncFlag, []byte(ts)); err != nil {
		s.log.Warn(ctx, "failed to record sync timestamp", "error", err)
	}
	s.log.Info(ctx, "sync pass completed",
		"folders", len(pending.folders), "notes", len(pending.notes), "tasks", len(pending.tasks))
}

// pendingSet holds the record ids covered by one payload so they can be
// flipped to synced after a successful push.
type pendingSet struct {
	folders []int64
	notes   []int64
	tasks   []int64
}

func (p pendingSet) empty() bool {
	return len(p.folders) == 0 && len(p.notes) == 0 && len(p.tasks) == 0
}

// buildSyncPayload assembles the typed, versioned payload from every
// record still marked pending. The three collections load concurrently.
func (s *authService) buildSyncPayload(ctx context.Context, user *models.User) (*models.SyncPayload, pendingSet, error) {
	var (
		pendingFolders []models.Folder
		pendingNotes   []models.Note
		pendingTasks   []models.Task
	)

	folderRepo := folders.NewSQLiteRepository(s.db)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		pendingFolders, err = folderRepo.ListPending(gctx, user.ID)
		return err
	})
	g.Go(func() error {
		var err error
		pendingNotes, err = notes.NewSQLiteRepository(s.db).ListPending(gctx, user.ID)
		return err
	})
	g.Go(func() error {
		var err error
		pendingTasks, err = tasks.NewSQLiteRepository(s.db).ListPending(gctx, user.ID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, pendingSet{}, fmt.Errorf("collecting pending records: %w", err)
	}

	// parent links travel as local ids so the payload stays meaningful
	// off-device; row ids are private to this store
	var parentLocal map[int64]string
	if len(pendingFolders) > 0 {
		all, err := folderRepo.ListByUser(ctx, user.ID)
		if err != nil {
			return nil, pendingSet{}, fmt.Errorf("resolving folder parents: %w", err)
		}
		parentLocal = make(map[int64]string, len(all))
		for _, f := range all {
			parentLocal[f.ID] = f.LocalID
		}
	}

	payload := &models.SyncPayload{
		Version:   models.SyncPayloadVersion,
		UserKey:   user.Email,
		Timestamp: storage.FormatTime(time.Now()),
	}
	var set pendingSet

	for _, f := range pendingFolders {
		delta := models.FolderDelta{
			LocalID:   f.LocalID,
			Name:      f.Name,
			CreatedAt: storage.FormatTime(f.CreatedAt),
		}
		if f.ParentFolderID != nil {
			delta.ParentLocalID = parentLocal[*f.ParentFolderID]
		}
		payload.Folders = append(payload.Folders, delta)
		set.folders = append(set.folders, f.ID)
	}
	for _, n := range pendingNotes {
		payload.Notes = append(payload.Notes, models.NoteDelta{
			LocalID:   n.LocalID,
			FolderID:  n.FolderID,
			Title:     n.Title,
			Content:   n.Content,
			UpdatedAt: storage.FormatTime(n.UpdatedAt),
		})
		set.notes = append(set.notes, n.ID)
	}
	for _, task := range pendingTasks {
		payload.Tasks = append(payload.Tasks, models.TaskDelta{
			LocalID:   task.LocalID,
			Content:   task.Content,
			Priority:  string(task.Priority),
			Date:      task.Date,
			StartTime: task.StartTime,
			EndTime:   task.EndTime,
			Completed: task.Completed,
			UpdatedAt: storage.FormatTime(task.UpdatedAt),
		})
		set.tasks = append(set.tasks, task.ID)
	}
	return payload, set, nil
}

func (s *authService) markSynced(ctx context.Context, set pendingSet) error {
	folderRepo := folders.NewSQLiteRepository(s.db)
	for _, id := range set.folders {
		if err := folderRepo.UpdateSyncStatus(ctx, id, models.SyncStatusSynced); err != nil {
			return err
		}
	}
	noteRepo := notes.NewSQLiteRepository(s.db)
	for _, id := range set.notes {
		if err := noteRepo.UpdateSyncStatus(ctx, id, models.SyncStatusSynced); err != nil {
			return err
		}
	}
	taskRepo := tasks.NewSQLiteRepository(s.db)
	for _, id := range set.tasks {
		if err := taskRepo.UpdateSyncStatus(ctx, id, models.SyncStatusSynced); err != nil {
			return err
		}
	}
	return nil
}

// CloudData pulls the latest payload stored at the provider for the
// current user. It requires an authenticated, online session.
func (s *authService) CloudData(ctx context.Context) (*models.SyncPayload, error) {
	state := s.State()
	if !state.IsAuthenticated || state.User == nil || state.User.AuthToken == nil {
		return nil, common.ErrorUnauthorized
	}
	if !state.IsOnline {
		return nil, common.ErrorProviderUnavailable
	}
	return s.provider.GetCloudData(ctx, *state.User.AuthToken)
}
