package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/planner/internal/common"
	"github.com/dmitrijs2005/planner/internal/logging"
	"github.com/dmitrijs2005/planner/internal/provider"
	"github.com/dmitrijs2005/planner/internal/repositories/users"
)

func newTestAuth(t *testing.T, p *fakeProvider, net *fakeNet) (AuthService, *authService) {
	t.Helper()
	db := setupDB(t)
	svc := NewAuthService(db, p, net, time.Millisecond, logging.NewNop())
	return svc, svc.(*authService)
}

func userToken(t *testing.T, s *authService, email string) string {
	t.Helper()
	u, err := users.NewSQLiteRepository(s.db).GetByEmail(context.Background(), email)
	require.NoError(t, err)
	require.NotNil(t, u.AuthToken)
	return *u.AuthToken
}

func TestLogin_ValidatesBeforeAnyIO(t *testing.T) {
	p := &fakeProvider{}
	svc, _ := newTestAuth(t, p, newFakeNet(true))

	require.ErrorIs(t, svc.Login(context.Background(), "", "pass"), common.ErrorEmptyCredentials)
	require.ErrorIs(t, svc.Login(context.Background(), "a@example.com", ""), common.ErrorEmptyCredentials)
	assert.Zero(t, p.LoginCalls, "no provider call on invalid input")
	assert.False(t, svc.State().IsLoading, "loading reset after failure")
}

func TestLogin_OnlineSuccess(t *testing.T) {
	p := &fakeProvider{loginRes: &provider.AuthResult{UID: "uid-1", Email: "a@example.com", Token: "tok-1"}}
	svc, inner := newTestAuth(t, p, newFakeNet(true))
	ctx := context.Background()

	require.NoError(t, svc.Login(ctx, "a@example.com", "secret1"))

	st := svc.State()
	assert.True(t, st.IsAuthenticated)
	assert.False(t, st.IsOffline)
	assert.NotZero(t, st.CurrentUserID)
	assert.Equal(t, "tok-1", userToken(t, inner, "a@example.com"))

	// credential entry cached for future offline logins
	var n int
	require.NoError(t, inner.db.QueryRow(
		`SELECT COUNT(*) FROM credentials WHERE email = ?`, "a@example.com").Scan(&n))
	assert.Equal(t, 1, n)
}

func TestLogin_CredentialRejectionHasNoFallback(t *testing.T) {
	p := &fakeProvider{loginErr: common.ErrorUnauthorized}
	svc, _ := newTestAuth(t, p, newFakeNet(true))

	err := svc.Login(context.Background(), "a@example.com", "bad")
	require.ErrorIs(t, err, common.ErrorUnauthorized)
	assert.False(t, svc.State().IsAuthenticated)
	assert.False(t, svc.State().IsLoading)
}

func TestLogin_TransientFailureFallsBackToLocal(t *testing.T) {
	p := &fakeProvider{loginErr: common.ErrorProviderUnavailable}
	ctx := context.Background()

	// seed a local account via the offline path
	seeded, inner := newTestAuth(t, p, newFakeNet(false))
	require.NoError(t, seeded.Register(ctx, "a@example.com", "secret1", "secret1"))
	require.NoError(t, seeded.Logout(ctx))

	// same store, now "online" but the provider is erroring
	online := NewAuthService(inner.db, p, newFakeNet(true), time.Millisecond, logging.NewNop())
	require.NoError(t, online.Login(ctx, "a@example.com", "secret1"))

	st := online.State()
	assert.True(t, st.IsAuthenticated)
	assert.True(t, st.IsOffline, "fallback path is an offline login")
	assert.True(t, strings.HasPrefix(userToken(t, inner, "a@example.com"), "offline_token_"))
}

func TestLocalLogin_UnknownUserFailsClosed(t *testing.T) {
	svc, _ := newTestAuth(t, &fakeProvider{}, newFakeNet(false))

	err := svc.Login(context.Background(), "nobody@example.com", "whatever")
	require.ErrorIs(t, err, common.ErrorUserNotFound)
	assert.False(t, svc.State().IsAuthenticated)
}

func TestLocalLogin_WrongPassword(t *testing.T) {
	svc, _ := newTestAuth(t, &fakeProvider{}, newFakeNet(false))
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, "a@example.com", "secret1", "secret1"))
	require.NoError(t, svc.Logout(ctx))

	require.ErrorIs(t, svc.Login(ctx, "a@example.com", "nope"), common.ErrorWrongPassword)
}

func TestLocalLogin_TrustOnFirstUse(t *testing.T) {
	// user row exists (from a past remote login on another install) but
	// the credential cache is empty: the attempt is accepted and the
	// entry is created with the supplied password
	svc, inner := newTestAuth(t, &fakeProvider{}, newFakeNet(false))
	ctx := context.Background()

	_, err := users.NewSQLiteRepository(inner.db).Create(ctx, "a@example.com", "uid-remote")
	require.NoError(t, err)

	require.NoError(t, svc.Login(ctx, "a@example.com", "whatever"))
	assert.True(t, svc.State().IsAuthenticated)

	// the password used is now the one that must verify
	require.NoError(t, svc.Logout(ctx))
	require.ErrorIs(t, svc.Login(ctx, "a@example.com", "different"), common.ErrorWrongPassword)
	require.NoError(t, svc.Login(ctx, "a@example.com", "whatever"))
}

func TestRegister_Validation(t *testing.T) {
	p := &fakeProvider{}
	svc, _ := newTestAuth(t, p, newFakeNet(true))
	ctx := context.Background()

	require.ErrorIs(t, svc.Register(ctx, "", "secret1", "secret1"), common.ErrorEmptyCredentials)
	require.ErrorIs(t, svc.Register(ctx, "a@example.com", "secret1", "other"), common.ErrorPasswordMismatch)
	require.ErrorIs(t, svc.Register(ctx, "a@example.com", "short", "short"), common.ErrorPasswordTooShort)
	assert.Zero(t, p.RegisterCalls)
}

func TestRegister_OfflineThenDuplicate(t *testing.T) {
	svc, _ := newTestAuth(t, &fakeProvider{}, newFakeNet(false))
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, "a@example.com", "secret1", "secret1"))
	st := svc.State()
	assert.True(t, st.IsAuthenticated)
	assert.True(t, st.IsOffline)

	require.NoError(t, svc.Logout(ctx))
	require.ErrorIs(t, svc.Register(ctx, "a@example.com", "secret1", "secret1"), common.ErrorAlreadyExists)
}

func TestRegister_RemoteAdoptsExistingLocalRow(t *testing.T) {
	p := &fakeProvider{regRes: &provider.AuthResult{UID: "uid-1", Email: "a@example.com", Token: "tok-1"}}
	svc, inner := newTestAuth(t, p, newFakeNet(true))
	ctx := context.Background()

	existing, err := users.NewSQLiteRepository(inner.db).Create(ctx, "a@example.com", "uid-old")
	require.NoError(t, err)

	require.NoError(t, svc.Register(ctx, "a@example.com", "secret1", "secret1"))
	st := svc.State()
	assert.Equal(t, existing, st.CurrentUserID, "remote success reuses the local row")
}

func TestRegisterLogoutOfflineLogin_SameUser(t *testing.T) {
	p := &fakeProvider{regRes: &provider.AuthResult{UID: "uid-1", Email: "a@example.com", Token: "tok-1"}}
	net := newFakeNet(true)
	svc, _ := newTestAuth(t, p, net)
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, "a@example.com", "secret1", "secret1"))
	registeredID := svc.State().CurrentUserID

	require.NoError(t, svc.Logout(ctx))
	assert.False(t, svc.State().IsAuthenticated)

	net.mu.Lock()
	net.online = false
	net.mu.Unlock()

	require.NoError(t, svc.Login(ctx, "a@example.com", "secret1"))
	st := svc.State()
	assert.True(t, st.IsOffline)
	assert.Equal(t, registeredID, st.CurrentUserID)
}

func TestLogout_BestEffortRemote(t *testing.T) {
	p := &fakeProvider{
		loginRes:  &provider.AuthResult{UID: "uid-1", Email: "a@example.com", Token: "tok-1"},
		logoutErr: common.ErrorProviderUnavailable,
	}
	svc, inner := newTestAuth(t, p, newFakeNet(true))
	ctx := context.Background()

	require.NoError(t, svc.Login(ctx, "a@example.com", "secret1"))
	require.NoError(t, svc.Logout(ctx), "remote logout failure is ignored")

	assert.False(t, svc.State().IsAuthenticated)
	assert.Equal(t, 1, p.LogoutCalls)

	u, err := users.NewSQLiteRepository(inner.db).GetByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Nil(t, u.AuthToken, "token cleared, row kept")
}

func TestAuthStateObserver(t *testing.T) {
	svc, _ := newTestAuth(t, &fakeProvider{}, newFakeNet(false))
	ch := svc.Subscribe()

	require.NoError(t, svc.Register(context.Background(), "a@example.com", "secret1", "secret1"))

	// drain until the authenticated snapshot arrives
	deadline := time.After(time.Second)
	for {
		select {
		case st := <-ch:
			if st.IsAuthenticated && !st.IsLoading {
				return
			}
		case <-deadline:
			t.Fatal("never observed the authenticated state")
		}
	}
}

func TestWatch_OnlineTransitionTriggersSync(t *testing.T) {
	p := &fakeProvider{}
	net := newFakeNet(false)
	svc, inner := newTestAuth(t, p, net)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, svc.Register(ctx, "a@example.com", "secret1", "secret1"))
	go svc.Watch(ctx)

	// something pending to push
	_, err := NewNoteService(inner.db).Create(ctx, svc.State().CurrentUserID, nil, "", "offline note")
	require.NoError(t, err)

	net.setOnline(true)

	require.Eventually(t, func() bool { return p.syncCalls() == 1 },
		time.Second, 5*time.Millisecond, "exactly one debounced sync attempt")
	assert.True(t, svc.State().IsOnline)
}
