package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bnema/pony-express-cli/internal/domain"
	"github.com/bnema/pony-express-cli/internal/ports"
)

// ChatService serves chat lists and message histories through the query
// cache and executes the send-message mutation, invalidating exactly the
// affected message-list entry on success.
type ChatService struct {
	api     ports.ChatAPI
	cache   *Cache
	session *SessionManager
}

func NewChatService(api ports.ChatAPI, cache *Cache, session *SessionManager) *ChatService {
	return &ChatService{api: api, cache: cache, session: session}
}

// Chats returns the chat list in server order.
func (s *ChatService) Chats(ctx context.Context) ([]domain.Chat, error) {
	entry, err := s.cache.Request(ctx, ChatsKey(), func(ctx context.Context) (any, error) {
		return s.api.ListChats(ctx)
	})
	if err != nil {
		return nil, err
	}
	if entry.Err != nil {
		return nil, fmt.Errorf("list chats: %w", entry.Err)
	}

	chats, ok := entry.Data.([]domain.Chat)
	if !ok {
		return nil, fmt.Errorf("unexpected cached chats payload %T", entry.Data)
	}
	return chats, nil
}

// Messages returns the message history for one chat in server order.
func (s *ChatService) Messages(ctx context.Context, chatID domain.ChatID) ([]domain.Message, error) {
	if chatID == "" {
		return nil, errors.New("chat id is required")
	}

	entry, err := s.cache.Request(ctx, MessagesKey(chatID), func(ctx context.Context) (any, error) {
		return s.api.ListMessages(ctx, chatID)
	})
	if err != nil {
		return nil, err
	}
	if entry.Err != nil {
		return nil, fmt.Errorf("list messages for chat %s: %w", chatID, entry.Err)
	}

	messages, ok := entry.Data.([]domain.Message)
	if !ok {
		return nil, fmt.Errorf("unexpected cached messages payload %T", entry.Data)
	}
	return messages, nil
}

// Send posts a message to the chat. On success the chat's message-list
// entry is invalidated so the next read reflects the write; other entries
// are untouched. A failed write mutates nothing: there is no optimistic
// insert to roll back.
func (s *ChatService) Send(ctx context.Context, chatID domain.ChatID, text string) (domain.Message, error) {
	if chatID == "" {
		return domain.Message{}, errors.New("chat id is required")
	}
	if strings.TrimSpace(text) == "" {
		return domain.Message{}, errors.New("message text is empty")
	}

	token, ok := s.session.Token()
	if !ok {
		return domain.Message{}, domain.ErrNotLoggedIn
	}

	message, err := s.api.CreateMessage(ctx, chatID, text, token)
	if err != nil {
		return domain.Message{}, fmt.Errorf("send message: %w", err)
	}

	s.cache.Invalidate(MessagesKey(chatID))
	return message, nil
}

// RefreshChats and Refresh expose manual invalidation; retry after a
// failed fetch is always a caller decision.
func (s *ChatService) RefreshChats() {
	s.cache.Invalidate(ChatsKey())
}

func (s *ChatService) Refresh(chatID domain.ChatID) {
	s.cache.Invalidate(MessagesKey(chatID))
}
