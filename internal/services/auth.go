package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/planner/internal/common"
	"github.com/dmitrijs2005/planner/internal/cryptox"
	"github.com/dmitrijs2005/planner/internal/logging"
	"github.com/dmitrijs2005/planner/internal/models"
	"github.com/dmitrijs2005/planner/internal/provider"
	"github.com/dmitrijs2005/planner/internal/repositories/credentials"
	"github.com/dmitrijs2005/planner/internal/repositories/users"
	"github.com/dmitrijs2005/planner/internal/storage"
)

const minPasswordLen = 6

// Reachability is the connectivity surface the orchestrator consumes.
type Reachability interface {
	IsOnline() bool
	Subscribe() <-chan bool
}

// AuthService is the auth & sync orchestrator: the single component that
// decides the online-vs-offline path for login, register and logout, keeps
// the authoritative AuthState, and schedules background sync passes.
//
// Auth operations are serialized: a login, register or logout arriving
// while another one is in flight is rejected with common.ErrorAuthBusy.
// Sync is advisory and runs in the background; it never blocks a caller.
type AuthService interface {
	Init(ctx context.Context) error
	Login(ctx context.Context, email, password string) error
	Register(ctx context.Context, email, password, confirm string) error
	Logout(ctx context.Context) error
	State() models.AuthState
	Subscribe() <-chan models.AuthState
	TriggerSync()
	CloudData(ctx context.Context) (*models.SyncPayload, error)
	Watch(ctx context.Context)
}

type authService struct {
	db       *sql.DB
	provider provider.Client
	net      Reachability
	log      logging.Logger
	debounce time.Duration

	opMu sync.Mutex // serializes login/register/logout/init

	mu         sync.Mutex
	state      models.AuthState
	subs       []chan models.AuthState
	generation uint64 // bumped on logout; stale sync results are discarded
	syncTimer  *time.Timer
}

// NewAuthService constructs the orchestrator. The store must already be
// open; Init runs schema initialization and loads the current user.
func NewAuthService(db *sql.DB, p provider.Client, net Reachability, debounce time.Duration, log logging.Logger) AuthService {
	return &authService{db: db, provider: p, net: net, log: log, debounce: debounce}
}

func (s *authService) userRepo() users.Repository {
	return users.NewSQLiteRepository(s.db)
}

func (s *authService) credRepo() credentials.Repository {
	return credentials.NewSQLiteRepository(s.db)
}

// Init initializes the local store (recovering it if broken), loads the
// single-tenant current user, and schedules a sync pass when a user is
// already authenticated and the provider is reachable.
func (s *authService) Init(ctx context.Context) error {
	if !s.opMu.TryLock() {
		return common.ErrorAuthBusy
	}
	defer s.opMu.Unlock()

	s.setLoading(true)
	defer s.setLoading(false)

	if err := storage.Initialize(ctx, s.db, s.log); err != nil {
		return fmt.Errorf("store initialization: %w", err)
	}

	user, err := s.userRepo().Current(ctx)
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		return fmt.Errorf("%w: loading current user: %s", common.ErrorStorage, err)
	}

	online := s.net.IsOnline()
	if user != nil && user.AuthToken != nil {
		offline := strings.HasPrefix(*user.AuthToken, offlineTokenPrefix)
		s.setAuthenticated(user, offline, online)
		if online {
			s.scheduleSync()
		}
	} else {
		s.setUnauthenticated(online)
	}
	return nil
}

// Login authenticates the user, remote-first when the provider is
// reachable, with a local fallback on transport failures only. A
// credential rejection from the provider is terminal.
func (s *authService) Login(ctx context.Context, email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return common.ErrorEmptyCredentials
	}

	if !s.opMu.TryLock() {
		return common.ErrorAuthBusy
	}
	defer s.opMu.Unlock()

	s.setLoading(true)
	defer s.setLoading(false)

	if !s.net.IsOnline() {
		return s.localLogin(ctx, email, password)
	}

	res, err := s.provider.Login(ctx, email, password)
	if err != nil {
		if isCredentialRejection(err) {
			return err
		}
		s.log.Warn(ctx, "remote login failed, falling back to local", "error", err)
		return s.localLogin(ctx, email, password)
	}
	return s.adoptRemoteUser(ctx, email, password, res)
}

// adoptRemoteUser persists the outcome of a successful remote login or
// registration: a local user row (created if absent), a credential cache
// entry so future offline logins work, and the remote token.
func (s *authService) adoptRemoteUser(ctx context.Context, email, password string, res *provider.AuthResult) error {
	repo := s.userRepo()

	user, err := repo.GetByEmail(ctx, email)
	if errors.Is(err, common.ErrorNotFound) {
		id, cerr := repo.Create(ctx, email, res.UID)
		if cerr != nil {
			return fmt.Errorf("%w: creating user: %s", common.ErrorStorage, cerr)
		}
		if user, err = repo.GetByID(ctx, id); err != nil {
			return fmt.Errorf("%w: loading user: %s", common.ErrorStorage, err)
		}
	} else if err != nil {
		return fmt.Errorf("%w: loading user: %s", common.ErrorStorage, err)
	}

	salt, key := cryptox.HashPassword([]byte(password))
	if err := s.credRepo().Set(ctx, email, salt, key); err != nil {
		return fmt.Errorf("%w: caching credentials: %s", common.ErrorStorage, err)
	}
	if err := repo.UpdateAuthToken(ctx, user.ID, res.Token); err != nil {
		return fmt.Errorf("%w: storing token: %s", common.ErrorStorage, err)
	}
	user.AuthToken = &res.Token

	s.setAuthenticated(user, false, true)
	s.scheduleSync()
	return nil
}

const offlineTokenPrefix = "offline_token_"

// localLogin verifies against the credential cache. A user with a row but
// no cache entry is accepted and the entry is created on the spot: their
// only prior login was remote, and the cache has nothing to check against.
// That is a deliberate trust-on-first-use gap, not a security boundary.
func (s *authService) localLogin(ctx context.Context, email, password string) error {
	user, err := s.userRepo().GetByEmail(ctx, email)
	if errors.Is(err, common.ErrorNotFound) {
		return common.ErrorUserNotFound
	}
	if err != nil {
		return fmt.Errorf("%w: loading user: %s", common.ErrorStorage, err)
	}

	salt, key, err := s.credRepo().Get(ctx, email)
	switch {
	case errors.Is(err, common.ErrorNotFound):
		salt, key = cryptox.HashPassword([]byte(password))
		if err := s.credRepo().Set(ctx, email, salt, key); err != nil {
			return fmt.Errorf("%w: caching credentials: %s", common.ErrorStorage, err)
		}
	case err != nil:
		return fmt.Errorf("%w: loading credentials: %s", common.ErrorStorage, err)
	default:
		if !cryptox.VerifyPassword([]byte(password), salt, key) {
			return common.ErrorWrongPassword
		}
	}

	token := fmt.Sprintf("%s%d", offlineTokenPrefix, time.Now().Unix())
	if err := s.userRepo().UpdateAuthToken(ctx, user.ID, token); err != nil {
		return fmt.Errorf("%w: storing token: %s", common.ErrorStorage, err)
	}
	user.AuthToken = &token

	s.setAuthenticated(user, true, s.net.IsOnline())
	return nil
}

// Register creates an account, remote-first with the same fallback rules
// as Login. The purely local path rejects an email that already has a
// local row; the remote-success path adopts such a row instead.
func (s *authService) Register(ctx context.Context, email, password, confirm string) error {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return common.ErrorEmptyCredentials
	}
	if password != confirm {
		return common.ErrorPasswordMismatch
	}
	if len(password) < minPasswordLen {
		return common.ErrorPasswordTooShort
	}

	if !s.opMu.TryLock() {
		return common.ErrorAuthBusy
	}
	defer s.opMu.Unlock()

	s.setLoading(true)
	defer s.setLoading(false)

	if !s.net.IsOnline() {
		return s.localRegister(ctx, email, password)
	}

	res, err := s.provider.Register(ctx, email, password)
	if err != nil {
		if isCredentialRejection(err) {
			return err
		}
		s.log.Warn(ctx, "remote registration failed, falling back to local", "error", err)
		return s.localRegister(ctx, email, password)
	}
	return s.adoptRemoteUser(ctx, email, password, res)
}

func (s *authService) localRegister(ctx context.Context, email, password string) error {
	repo := s.userRepo()

	if _, err := repo.GetByEmail(ctx, email); err == nil {
		return common.ErrorAlreadyExists
	} else if !errors.Is(err, common.ErrorNotFound) {
		return fmt.Errorf("%w: loading user: %s", common.ErrorStorage, err)
	}

	id, err := repo.Create(ctx, email, uuid.NewString())
	if err != nil {
		return fmt.Errorf("%w: creating user: %s", common.ErrorStorage, err)
	}
	user, err := repo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("%w: loading user: %s", common.ErrorStorage, err)
	}

	salt, key := cryptox.HashPassword([]byte(password))
	if err := s.credRepo().Set(ctx, email, salt, key); err != nil {
		return fmt.Errorf("%w: caching credentials: %s", common.ErrorStorage, err)
	}

	token := fmt.Sprintf("%s%d", offlineTokenPrefix, time.Now().Unix())
	if err := repo.UpdateAuthToken(ctx, user.ID, token); err != nil {
		return fmt.Errorf("%w: storing token: %s", common.ErrorStorage, err)
	}
	user.AuthToken = &token

	s.setAuthenticated(user, true, s.net.IsOnline())
	return nil
}

// Logout signs out remotely on a best-effort basis, always clears the
// local token, and always ends unauthenticated. A sync pass running at
// that moment has its result discarded: logout wins.
func (s *authService) Logout(ctx context.Context) error {
	if !s.opMu.TryLock() {
		return common.ErrorAuthBusy
	}
	defer s.opMu.Unlock()

	s.setLoading(true)
	defer s.setLoading(false)

	s.mu.Lock()
	user := s.state.User
	s.generation++
	if s.syncTimer != nil {
		s.syncTimer.Stop()
		s.syncTimer = nil
	}
	s.mu.Unlock()

	if user == nil {
		s.setUnauthenticated(s.net.IsOnline())
		return nil
	}

	if s.net.IsOnline() && user.AuthToken != nil {
		if err := s.provider.Logout(ctx, *user.AuthToken); err != nil {
			s.log.Warn(ctx, "remote logout failed", "error", err)
		}
	}
	if err := s.userRepo().ClearAuthToken(ctx, user.ID); err != nil {
		return fmt.Errorf("%w: clearing token: %s", common.ErrorStorage, err)
	}

	s.setUnauthenticated(s.net.IsOnline())
	return nil
}

// Watch reacts to connectivity transitions until ctx is done. An
// offline-to-online transition while authenticated triggers exactly one
// debounced sync attempt.
func (s *authService) Watch(ctx context.Context) {
	ch := s.net.Subscribe()
	for {
		select {
		case online := <-ch:
			s.setOnline(online)
			if online && s.State().IsAuthenticated {
				s.scheduleSync()
			}
		case <-ctx.Done():
			return
		}
	}
}

func (s *authService) State() models.AuthState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe returns a channel receiving every AuthState change. The
// channel is buffered; on overflow the oldest snapshot is dropped.
func (s *authService) Subscribe() <-chan models.AuthState {
	ch := make(chan models.AuthState, 8)
	s.mu.Lock()
	s.subs = append(s.subs, ch)
	s.mu.Unlock()
	return ch
}

func isCredentialRejection(err error) bool {
	return errors.Is(err, common.ErrorUnauthorized) ||
		errors.Is(err, common.ErrorUserNotFound) ||
		errors.Is(err, common.ErrorWrongPassword) ||
		errors.Is(err, common.ErrorAlreadyExists)
}

// state transitions; every helper publishes the new snapshot

func (s *authService) setLoading(loading bool) {
	s.mu.Lock()
	s.state.IsLoading = loading
	s.publishLocked()
	s.mu.Unlock()
}

func (s *authService) setAuthenticated(user *models.User, offline, online bool) {
	s.mu.Lock()
	s.state = models.AuthState{
		User:            user,
		CurrentUserID:   user.ID,
		IsAuthenticated: true,
		IsLoading:       s.state.IsLoading,
		IsOnline:        online,
		IsOffline:       offline,
	}
	s.publishLocked()
	s.mu.Unlock()
}

func (s *authService) setUnauthenticated(online bool) {
	s.mu.Lock()
	s.state = models.AuthState{
		IsLoading: s.state.IsLoading,
		IsOnline:  online,
	}
	s.publishLocked()
	s.mu.Unlock()
}

func (s *authService) setOnline(online bool) {
	s.mu.Lock()
	s.state.IsOnline = online
	s.publishLocked()
	s.mu.Unlock()
}

func (s *authService) publishLocked() {
	for _, ch := range s.subs {
		select {
		case ch <- s.state:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- s.state
		}
	}
}
