package ports

import (
	"context"

	"github.com/bnema/pony-express-cli/internal/domain"
)

type ChatAPI interface {
	ListChats(ctx context.Context) ([]domain.Chat, error)
	ListMessages(ctx context.Context, chatID domain.ChatID) ([]domain.Message, error)
	CreateMessage(ctx context.Context, chatID domain.ChatID, text string, token string) (domain.Message, error)
}

type AuthAPI interface {
	Token(ctx context.Context, username, password string) (domain.TokenGrant, error)
	Register(ctx context.Context, username, email, password string) error
	UserForToken(ctx context.Context, token string) (domain.User, error)
}
