package application

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/bnema/pony-express-cli/internal/domain"
	"github.com/bnema/pony-express-cli/internal/ports"
)

// SessionManager owns the bearer token for the process. Consumers observe
// login/logout transitions through Subscribe instead of polling; the
// manager itself performs no retries and no credential validation.
type SessionManager struct {
	repo ports.SessionRepository

	mu       sync.Mutex
	current  domain.Session
	watchers map[int]func(domain.Session)
	nextID   int
}

// NewSessionManager starts with an empty session. When repo is non-nil a
// previously persisted session is restored once, here; a missing or
// unreadable stored session silently yields the empty one.
func NewSessionManager(ctx context.Context, repo ports.SessionRepository) *SessionManager {
	m := &SessionManager{
		repo:     repo,
		watchers: map[int]func(domain.Session){},
	}
	if repo != nil {
		if session, err := repo.Load(ctx); err == nil {
			m.current = session
		}
	}
	return m
}

// Login stores the granted token and notifies subscribers. The session is
// persisted before the in-memory transition so a persistence failure
// leaves the previous state observable.
func (m *SessionManager) Login(ctx context.Context, grant domain.TokenGrant) error {
	if grant.AccessToken == "" {
		return errors.New("token grant missing access token")
	}

	session := domain.Session{Token: grant.AccessToken}
	if m.repo != nil {
		if err := m.repo.Save(ctx, session); err != nil {
			return fmt.Errorf("persist session: %w", err)
		}
	}

	m.apply(session)
	return nil
}

// Logout clears the token and its persisted copy and notifies
// subscribers. Clearing an already-empty session is not an error.
func (m *SessionManager) Logout(ctx context.Context) error {
	if m.repo != nil {
		if err := m.repo.Clear(ctx); err != nil {
			return fmt.Errorf("clear persisted session: %w", err)
		}
	}

	m.apply(domain.Session{})
	return nil
}

func (m *SessionManager) Current() domain.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Token returns the bearer token for Authorization headers, if present.
func (m *SessionManager) Token() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current.Token, m.current.IsLoggedIn()
}

// Subscribe registers fn for session transitions. The returned cancel is
// idempotent. Callbacks run on the goroutine driving the transition.
func (m *SessionManager) Subscribe(fn func(domain.Session)) (cancel func()) {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.watchers[id] = fn
	m.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			delete(m.watchers, id)
		})
	}
}

func (m *SessionManager) apply(session domain.Session) {
	m.mu.Lock()
	m.current = session
	notify := make([]func(domain.Session), 0, len(m.watchers))
	for _, fn := range m.watchers {
		notify = append(notify, fn)
	}
	m.mu.Unlock()

	for _, fn := range notify {
		fn(session)
	}
}
