package application

import (
	"context"
	"fmt"
	"sync"

	"github.com/bnema/pony-express-cli/internal/domain"
	"github.com/bnema/pony-express-cli/internal/ports"
)

// ProfileService resolves the authenticated user's profile through the
// query cache. Entries are keyed by token, so a changed token addresses a
// different resource and a previous account's cached profile can never be
// served after logout or re-login.
type ProfileService struct {
	api     ports.AuthAPI
	cache   *Cache
	session *SessionManager

	mu        sync.Mutex
	lastToken string
}

func NewProfileService(api ports.AuthAPI, cache *Cache, session *SessionManager) *ProfileService {
	s := &ProfileService{
		api:       api,
		cache:     cache,
		session:   session,
		lastToken: session.Current().Token,
	}
	session.Subscribe(s.onSessionChange)
	return s
}

// CurrentUser reports domain.ErrNotLoggedIn while no token is held; the
// profile is "unresolved" rather than an error state to render.
func (s *ProfileService) CurrentUser(ctx context.Context) (domain.User, error) {
	token, ok := s.session.Token()
	if !ok {
		return domain.User{}, domain.ErrNotLoggedIn
	}

	entry, err := s.cache.Request(ctx, UserKey(token), func(ctx context.Context) (any, error) {
		return s.api.UserForToken(ctx, token)
	})
	if err != nil {
		return domain.User{}, err
	}
	if entry.Err != nil {
		return domain.User{}, fmt.Errorf("resolve profile: %w", entry.Err)
	}

	user, ok := entry.Data.(domain.User)
	if !ok {
		return domain.User{}, fmt.Errorf("unexpected cached profile payload %T", entry.Data)
	}
	return user, nil
}

func (s *ProfileService) onSessionChange(next domain.Session) {
	s.mu.Lock()
	prev := s.lastToken
	s.lastToken = next.Token
	s.mu.Unlock()

	if prev != "" && prev != next.Token {
		s.cache.Invalidate(UserKey(prev))
	}
}
