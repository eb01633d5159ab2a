// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/binderdex/internal/platform/apperr"
	"github.com/taibuivan/binderdex/internal/platform/dberr"
	"github.com/taibuivan/binderdex/internal/users/auth"
)

// # Test Doubles

type memoryUsers struct {
	mu    sync.Mutex
	users map[string]*auth.User
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{users: map[string]*auth.User{}}
}

func (store *memoryUsers) FindByID(_ context.Context, id string) (*auth.User, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	if user, ok := store.users[id]; ok {
		return user, nil
	}
	return nil, dberr.ErrNotFound
}

func (store *memoryUsers) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	for _, user := range store.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, dberr.ErrNotFound
}

func (store *memoryUsers) Create(_ context.Context, user *auth.User) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.users[user.ID] = user
	return nil
}

type memorySessions struct {
	mu       sync.Mutex
	sessions map[string]*auth.Session
	failWith error
}

func newMemorySessions() *memorySessions {
	return &memorySessions{sessions: map[string]*auth.Session{}}
}

func (store *memorySessions) Create(_ context.Context, session *auth.Session) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.sessions[session.ID] = session
	return nil
}

func (store *memorySessions) FindByTokenHash(_ context.Context, tokenHash string) (*auth.Session, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.failWith != nil {
		return nil, store.failWith
	}
	for _, session := range store.sessions {
		if session.TokenHash == tokenHash && !session.IsRevoked && session.ExpiresAt.After(time.Now()) {
			return session, nil
		}
	}
	return nil, dberr.ErrNotFound
}

func (store *memorySessions) Revoke(_ context.Context, sessionID string) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	if session, ok := store.sessions[sessionID]; ok {
		session.IsRevoked = true
	}
	return nil
}

func (store *memorySessions) DeleteExpired(_ context.Context) (int64, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	var removed int64
	for id, session := range store.sessions {
		if session.ExpiresAt.Before(time.Now()) {
			delete(store.sessions, id)
			removed++
		}
	}
	return removed, nil
}

func (store *memorySessions) active() int {
	store.mu.Lock()
	defer store.mu.Unlock()
	count := 0
	for _, session := range store.sessions {
		if !session.IsRevoked {
			count++
		}
	}
	return count
}

type stubTokens struct{}

func (stubTokens) GenerateAccessToken(userID, email string, _ time.Duration) (string, error) {
	return "token-for-" + userID + "-" + email, nil
}

func newAuthService() (*auth.Service, *memoryUsers, *memorySessions) {
	users := newMemoryUsers()
	sessions := newMemorySessions()
	return auth.NewService(users, sessions, stubTokens{}), users, sessions
}

func errCode(t *testing.T, err error) string {
	t.Helper()
	appErr := apperr.As(err)
	require.NotNil(t, appErr, "expected an AppError, got %v", err)
	return appErr.Code
}

// # Registration

/*
TestService_Register verifies normalization, hashing and the optional name.
*/
func TestService_Register(t *testing.T) {
	service, users, _ := newAuthService()

	user, err := service.Register(context.Background(), auth.RegisterInput{
		Email:    "  Ash@Example.COM ",
		Password: "pikachu",
		Name:     " Ash ",
	})
	require.NoError(t, err)

	assert.Equal(t, "ash@example.com", user.Email)
	require.NotNil(t, user.Name)
	assert.Equal(t, "Ash", *user.Name)
	assert.NotEqual(t, "pikachu", user.PasswordHash)
	assert.Len(t, users.users, 1)

	anonymous, err := service.Register(context.Background(), auth.RegisterInput{
		Email:    "misty@example.com",
		Password: "staryu",
	})
	require.NoError(t, err)
	assert.Nil(t, anonymous.Name)
}

/*
TestService_Register_Rejections verifies validation and duplicate handling.
*/
func TestService_Register_Rejections(t *testing.T) {
	service, _, _ := newAuthService()
	_, err := service.Register(context.Background(), auth.RegisterInput{Email: "ash@example.com", Password: "pikachu"})
	require.NoError(t, err)

	tests := []struct {
		name  string
		input auth.RegisterInput
		code  string
	}{
		{"duplicate email differing in case", auth.RegisterInput{Email: "ASH@example.com", Password: "pikachu"}, "CONFLICT"},
		{"short password", auth.RegisterInput{Email: "brock@example.com", Password: "onix"}, "VALIDATION_ERROR"},
		{"malformed email", auth.RegisterInput{Email: "brock", Password: "geodude"}, "VALIDATION_ERROR"},
		{"missing email", auth.RegisterInput{Password: "geodude"}, "VALIDATION_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.Register(context.Background(), tt.input)
			require.Error(t, err)
			assert.Equal(t, tt.code, errCode(t, err))
		})
	}
}

// # Sessions

/*
TestService_LoginRefreshLogout walks a full session lifecycle.
*/
func TestService_LoginRefreshLogout(t *testing.T) {
	service, _, sessions := newAuthService()
	ctx := context.Background()

	user, err := service.Register(ctx, auth.RegisterInput{Email: "ash@example.com", Password: "pikachu"})
	require.NoError(t, err)

	login, err := service.Login(ctx, auth.LoginInput{Email: "ASH@example.com", Password: "pikachu"})
	require.NoError(t, err)
	assert.Equal(t, "token-for-"+user.ID+"-ash@example.com", login.AccessToken)
	assert.NotEmpty(t, login.RefreshToken)
	assert.WithinDuration(t, time.Now().Add(auth.RefreshTokenTTL), login.RefreshTokenExpiresAt, time.Minute)
	assert.Equal(t, 1, sessions.active())

	// Rotation revokes the presented token
	refreshed, err := service.RefreshSession(ctx, login.RefreshToken, "agent", "127.0.0.1")
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)
	assert.Equal(t, 1, sessions.active())

	_, err = service.RefreshSession(ctx, login.RefreshToken, "agent", "127.0.0.1")
	assert.Equal(t, "UNAUTHORIZED", errCode(t, err))

	require.NoError(t, service.Logout(ctx, refreshed.RefreshToken))
	assert.Equal(t, 0, sessions.active())

	// Logging out twice is harmless
	require.NoError(t, service.Logout(ctx, refreshed.RefreshToken))
}

/*
TestService_Login_InvalidCredentials verifies that unknown emails and bad passwords look alike.
*/
func TestService_Login_InvalidCredentials(t *testing.T) {
	service, _, _ := newAuthService()
	_, err := service.Register(context.Background(), auth.RegisterInput{Email: "ash@example.com", Password: "pikachu"})
	require.NoError(t, err)

	_, err = service.Login(context.Background(), auth.LoginInput{Email: "ash@example.com", Password: "raichu"})
	assert.Same(t, auth.ErrInvalidCredentials, err)

	_, err = service.Login(context.Background(), auth.LoginInput{Email: "gary@example.com", Password: "eevee1"})
	assert.Same(t, auth.ErrInvalidCredentials, err)
}

/*
TestService_Logout_StorageFailure verifies that lookup failures other than not-found surface.
*/
func TestService_Logout_StorageFailure(t *testing.T) {
	service, _, sessions := newAuthService()
	sessions.failWith = errors.New("connection reset")

	err := service.Logout(context.Background(), "whatever")
	assert.ErrorContains(t, err, "connection reset")
}

/*
TestService_PruneSessions verifies that only expired sessions are removed.
*/
func TestService_PruneSessions(t *testing.T) {
	service, _, sessions := newAuthService()
	sessions.sessions["old"] = &auth.Session{ID: "old", ExpiresAt: time.Now().Add(-time.Hour)}
	sessions.sessions["new"] = &auth.Session{ID: "new", ExpiresAt: time.Now().Add(time.Hour)}

	removed, err := service.PruneSessions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
	assert.Contains(t, sessions.sessions, "new")
}
