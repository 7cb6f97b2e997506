package ports

import (
	"context"

	"github.com/bnema/pony-express-cli/internal/domain"
)

// SessionRepository persists the session token between process runs.
// Load returns domain.ErrSessionNotFound when nothing is stored.
type SessionRepository interface {
	Load(ctx context.Context) (domain.Session, error)
	Save(ctx context.Context, session domain.Session) error
	Clear(ctx context.Context) error
}
