package application

import (
	"context"
	"fmt"

	"github.com/bnema/pony-express-cli/internal/ports"
)

// AuthService runs the credential flows against the remote service and
// feeds the session manager.
type AuthService struct {
	api     ports.AuthAPI
	session *SessionManager
}

func NewAuthService(api ports.AuthAPI, session *SessionManager) *AuthService {
	return &AuthService{api: api, session: session}
}

// Login exchanges credentials for a token and stores it. Rejected
// credentials surface as *domain.AuthError and leave the session
// untouched.
func (s *AuthService) Login(ctx context.Context, username, password string) error {
	grant, err := s.api.Token(ctx, username, password)
	if err != nil {
		return err
	}
	return s.session.Login(ctx, grant)
}

func (s *AuthService) Register(ctx context.Context, username, email, password string) error {
	if err := s.api.Register(ctx, username, email, password); err != nil {
		return fmt.Errorf("register account: %w", err)
	}
	return nil
}

func (s *AuthService) Logout(ctx context.Context) error {
	return s.session.Logout(ctx)
}
