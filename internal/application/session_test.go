package application

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/pony-express-cli/internal/domain"
)

func TestSessionManagerStartsEmpty(t *testing.T) {
	t.Parallel()

	manager := NewSessionManager(context.Background(), nil)

	assert.False(t, manager.Current().IsLoggedIn())
	_, ok := manager.Token()
	assert.False(t, ok)
}

func TestSessionManagerLoginStoresTokenAndNotifies(t *testing.T) {
	t.Parallel()

	manager := NewSessionManager(context.Background(), nil)

	var seen []domain.Session
	cancel := manager.Subscribe(func(s domain.Session) {
		seen = append(seen, s)
	})
	defer cancel()

	err := manager.Login(context.Background(), domain.TokenGrant{AccessToken: "tok-1", TokenType: "Bearer"})
	require.NoError(t, err)

	token, ok := manager.Token()
	assert.True(t, ok)
	assert.Equal(t, "tok-1", token)
	require.Len(t, seen, 1)
	assert.True(t, seen[0].IsLoggedIn())
}

func TestSessionManagerLoginRejectsEmptyGrant(t *testing.T) {
	t.Parallel()

	manager := NewSessionManager(context.Background(), nil)

	err := manager.Login(context.Background(), domain.TokenGrant{})
	require.Error(t, err)
	assert.False(t, manager.Current().IsLoggedIn())
}

func TestSessionManagerLogoutClearsTokenAndNotifies(t *testing.T) {
	t.Parallel()

	manager := NewSessionManager(context.Background(), nil)
	require.NoError(t, manager.Login(context.Background(), domain.TokenGrant{AccessToken: "tok-1"}))

	var seen []domain.Session
	cancel := manager.Subscribe(func(s domain.Session) {
		seen = append(seen, s)
	})
	defer cancel()

	require.NoError(t, manager.Logout(context.Background()))

	assert.False(t, manager.Current().IsLoggedIn())
	require.Len(t, seen, 1)
	assert.False(t, seen[0].IsLoggedIn())
}

func TestSessionManagerRestoresPersistedSession(t *testing.T) {
	t.Parallel()

	repo := &fakeSessionRepo{stored: domain.Session{Token: "persisted"}}
	manager := NewSessionManager(context.Background(), repo)

	token, ok := manager.Token()
	assert.True(t, ok)
	assert.Equal(t, "persisted", token)
}

func TestSessionManagerPersistsLoginAndLogout(t *testing.T) {
	t.Parallel()

	repo := &fakeSessionRepo{}
	manager := NewSessionManager(context.Background(), repo)

	require.NoError(t, manager.Login(context.Background(), domain.TokenGrant{AccessToken: "tok-2"}))
	assert.Equal(t, "tok-2", repo.stored.Token)

	require.NoError(t, manager.Logout(context.Background()))
	assert.False(t, repo.stored.IsLoggedIn())
	assert.Equal(t, 1, repo.clears)
}

func TestSessionManagerLoginKeepsStateOnPersistFailure(t *testing.T) {
	t.Parallel()

	repo := &fakeSessionRepo{saveErr: errors.New("disk full")}
	manager := NewSessionManager(context.Background(), repo)

	err := manager.Login(context.Background(), domain.TokenGrant{AccessToken: "tok-3"})
	require.Error(t, err)
	assert.False(t, manager.Current().IsLoggedIn())
}

func TestSessionManagerSubscribeCancelIsIdempotent(t *testing.T) {
	t.Parallel()

	manager := NewSessionManager(context.Background(), nil)

	calls := 0
	cancel := manager.Subscribe(func(domain.Session) { calls++ })
	cancel()
	cancel()

	require.NoError(t, manager.Login(context.Background(), domain.TokenGrant{AccessToken: "tok"}))
	assert.Zero(t, calls)
}

type fakeSessionRepo struct {
	stored  domain.Session
	saveErr error
	clears  int
}

func (r *fakeSessionRepo) Load(context.Context) (domain.Session, error) {
	if !r.stored.IsLoggedIn() {
		return domain.Session{}, domain.ErrSessionNotFound
	}
	return r.stored, nil
}

func (r *fakeSessionRepo) Save(_ context.Context, session domain.Session) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.stored = session
	return nil
}

func (r *fakeSessionRepo) Clear(context.Context) error {
	r.stored = domain.Session{}
	r.clears++
	return nil
}
