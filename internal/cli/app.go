// Package cli is a small interactive REPL over the planner core: auth
// commands, folder/note/task CRUD and sync control. It is a thin shell;
// all behavior lives in the services.
package cli

import (
	"bufio"
	"context"
	"database/sql"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/planner/internal/config"
	"github.com/dmitrijs2005/planner/internal/filex"
	"github.com/dmitrijs2005/planner/internal/logging"
	"github.com/dmitrijs2005/planner/internal/netx"
	"github.com/dmitrijs2005/planner/internal/provider"
	"github.com/dmitrijs2005/planner/internal/services"
	"github.com/dmitrijs2005/planner/internal/storage"

	_ "modernc.org/sqlite"
)

// App wires the planner core together for interactive use.
type App struct {
	config  *config.Config
	db      *sql.DB
	auth    services.AuthService
	folders services.FolderService
	notes   services.NoteService
	tasks   services.TaskService
	monitor *netx.Monitor
	log     logging.Logger
	reader  *bufio.Reader
}

// NewApp opens the local store inside a data subdirectory and builds the
// service graph. The store schema is initialized later by auth.Init.
func NewApp(cfg *config.Config, log logging.Logger) (*App, error) {
	dsn := cfg.DatabaseDSN
	if filepath.Base(dsn) == dsn {
		dir, err := filex.EnsureSubDir("data")
		if err != nil {
			return nil, err
		}
		dsn = filepath.Join(dir, dsn)
	}

	db, err := storage.Open(dsn)
	if err != nil {
		return nil, err
	}

	client := provider.NewHTTPClient(cfg.ProviderBaseURL, cfg.ProviderTimeout)
	monitor := netx.NewMonitor(client, cfg.OnlineCheckInterval, log)

	return &App{
		config:  cfg,
		db:      db,
		auth:    services.NewAuthService(db, client, monitor, cfg.SyncDebounce, log),
		folders: services.NewFolderService(db),
		notes:   services.NewNoteService(db),
		tasks:   services.NewTaskService(db),
		monitor: monitor,
		log:     log,
		reader:  bufio.NewReader(os.Stdin),
	}, nil
}

// Run initializes the core, starts the background watchers and enters
// the command loop. It returns when the user exits or ctx is done.
func (a *App) Run(ctx context.Context) error {
	defer a.db.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go a.monitor.Start(ctx)
	go a.auth.Watch(ctx)

	if err := a.auth.Init(ctx); err != nil {
		return err
	}

	a.root(ctx)
	return nil
}

func (a *App) currentUserID() int64 {
	return a.auth.State().CurrentUserID
}

func (a *App) isLoggedIn() bool {
	return a.auth.State().IsAuthenticated
}
