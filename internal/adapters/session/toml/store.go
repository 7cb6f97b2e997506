package toml

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/bnema/pony-express-cli/internal/domain"
	"github.com/bnema/pony-express-cli/internal/ports"
)

const (
	schemaVersion   = 1
	sessionFileMode = 0o600
	sessionDirMode  = 0o700
	tempFilePattern = ".session-*.toml.tmp"
)

type fileSchema struct {
	Version int       `toml:"version"`
	Token   string    `toml:"token"`
	SavedAt time.Time `toml:"saved_at"`
}

// Store persists the session token as a single TOML file, written on
// login and removed on logout. The file carries only the credential, no
// remote data.
type Store struct {
	path  string
	clock ports.Clock
	mu    sync.RWMutex
}

var _ ports.SessionRepository = (*Store)(nil)

func NewStore(path string, clock ports.Clock) *Store {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	return &Store{path: filepath.Clean(path), clock: clock}
}

func (s *Store) Load(ctx context.Context) (domain.Session, error) {
	if err := ctx.Err(); err != nil {
		return domain.Session{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.Session{}, domain.ErrSessionNotFound
		}
		return domain.Session{}, fmt.Errorf("read session file: %w", err)
	}

	var file fileSchema
	if err := toml.Unmarshal(data, &file); err != nil {
		return domain.Session{}, fmt.Errorf("decode session file: %w", err)
	}
	if file.Version != 0 && file.Version != schemaVersion {
		return domain.Session{}, fmt.Errorf("unsupported session file version %d", file.Version)
	}
	if file.Token == "" {
		return domain.Session{}, domain.ErrSessionNotFound
	}

	return domain.Session{Token: file.Token}, nil
}

func (s *Store) Save(ctx context.Context, session domain.Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !session.IsLoggedIn() {
		return errors.New("refusing to persist an empty session")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), sessionDirMode); err != nil {
		return fmt.Errorf("create session directory: %w", err)
	}

	data, err := toml.Marshal(fileSchema{
		Version: schemaVersion,
		Token:   session.Token,
		SavedAt: s.clock.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("encode session file: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(s.path), tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp session file: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp session file: %w", err)
	}

	if err := tempFile.Chmod(sessionFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp session file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp session file: %w", err)
	}

	if err := os.Rename(tempName, s.path); err != nil {
		return fmt.Errorf("replace session file: %w", err)
	}
	cleanup = false

	return nil
}

func (s *Store) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}
