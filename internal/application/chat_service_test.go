package application

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/pony-express-cli/internal/domain"
)

func TestChatServiceServesChatsFromCache(t *testing.T) {
	t.Parallel()

	api := &fakeChatAPI{chats: []domain.Chat{
		{ID: "1", Name: "General", CreatedAt: "2024-01-01"},
		{ID: "2", Name: "Random", CreatedAt: "2024-01-02"},
	}}
	service := NewChatService(api, NewCache(), NewSessionManager(context.Background(), nil))

	first, err := service.Chats(context.Background())
	require.NoError(t, err)
	second, err := service.Chats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, api.chats, first, "server order preserved")
	assert.Equal(t, int64(1), api.chatCalls.Load())
}

func TestChatServiceSendRequiresLogin(t *testing.T) {
	t.Parallel()

	service := NewChatService(&fakeChatAPI{}, NewCache(), NewSessionManager(context.Background(), nil))

	_, err := service.Send(context.Background(), "7", "hi")
	assert.ErrorIs(t, err, domain.ErrNotLoggedIn)
}

func TestChatServiceSendInvalidatesOnlyItsOwnChat(t *testing.T) {
	t.Parallel()

	api := &fakeChatAPI{messages: map[domain.ChatID][]domain.Message{
		"7": {{ID: "m1", ChatID: "7", Text: "hello"}},
		"8": {{ID: "m2", ChatID: "8", Text: "other"}},
	}}
	cache := NewCache()
	session := NewSessionManager(context.Background(), nil)
	require.NoError(t, session.Login(context.Background(), domain.TokenGrant{AccessToken: "tok"}))
	service := NewChatService(api, cache, session)

	_, err := service.Chats(context.Background())
	require.NoError(t, err)
	_, err = service.Messages(context.Background(), "7")
	require.NoError(t, err)
	_, err = service.Messages(context.Background(), "8")
	require.NoError(t, err)

	_, err = service.Send(context.Background(), "7", "new message")
	require.NoError(t, err)

	seven, ok := cache.Peek(MessagesKey("7"))
	require.True(t, ok)
	assert.True(t, seven.Stale)

	eight, ok := cache.Peek(MessagesKey("8"))
	require.True(t, ok)
	assert.False(t, eight.Stale)

	chats, ok := cache.Peek(ChatsKey())
	require.True(t, ok)
	assert.False(t, chats.Stale)
}

func TestChatServiceFailedSendLeavesCacheUntouched(t *testing.T) {
	t.Parallel()

	api := &fakeChatAPI{
		messages: map[domain.ChatID][]domain.Message{"7": {}},
		sendErr:  fmt.Errorf("server rejected message"),
	}
	cache := NewCache()
	session := NewSessionManager(context.Background(), nil)
	require.NoError(t, session.Login(context.Background(), domain.TokenGrant{AccessToken: "tok"}))
	service := NewChatService(api, cache, session)

	_, err := service.Messages(context.Background(), "7")
	require.NoError(t, err)

	_, err = service.Send(context.Background(), "7", "doomed")
	require.Error(t, err)

	entry, ok := cache.Peek(MessagesKey("7"))
	require.True(t, ok)
	assert.False(t, entry.Stale)
	assert.Equal(t, StatusSuccess, entry.Status)
}

func TestChatServiceSendRejectsEmptyText(t *testing.T) {
	t.Parallel()

	session := NewSessionManager(context.Background(), nil)
	require.NoError(t, session.Login(context.Background(), domain.TokenGrant{AccessToken: "tok"}))
	service := NewChatService(&fakeChatAPI{}, NewCache(), session)

	_, err := service.Send(context.Background(), "7", "   ")
	require.Error(t, err)
}

// Full walkthrough: anonymous chat browsing, login, reading an empty
// history, sending, and observing the refetched history.
func TestChatFlowEndToEnd(t *testing.T) {
	t.Parallel()

	api := &fakeChatAPI{
		chats:    []domain.Chat{{ID: "1", Name: "General", CreatedAt: "2024-01-01"}},
		messages: map[domain.ChatID][]domain.Message{"1": {}},
	}
	auth := &fakeAuthAPI{
		grants: map[string]domain.TokenGrant{"ann": {AccessToken: "tok-ann"}},
		users:  map[string]domain.User{"tok-ann": {ID: "u1", Username: "ann"}},
	}
	cache := NewCache()
	session := NewSessionManager(context.Background(), nil)
	accounts := NewAuthService(auth, session)
	chats := NewChatService(api, cache, session)

	list, err := chats.Chats(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "General", list[0].Name)

	require.NoError(t, accounts.Login(context.Background(), "ann", "pw"))

	history, err := chats.Messages(context.Background(), "1")
	require.NoError(t, err)
	assert.Empty(t, history)

	sent, err := chats.Send(context.Background(), "1", "hi")
	require.NoError(t, err)
	assert.Equal(t, "hi", sent.Text)

	entry, ok := cache.Peek(MessagesKey("1"))
	require.True(t, ok)
	assert.True(t, entry.Stale)

	history, err = chats.Messages(context.Background(), "1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "hi", history[0].Text)
	assert.Equal(t, int64(2), api.messageCalls.Load(), "exactly one refetch after the send")
}

func TestAuthServiceLoginFailureLeavesSessionUntouched(t *testing.T) {
	t.Parallel()

	auth := &fakeAuthAPI{}
	session := NewSessionManager(context.Background(), nil)
	accounts := NewAuthService(auth, session)

	err := accounts.Login(context.Background(), "ann", "wrong")
	var authErr *domain.AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "invalid username or password", authErr.Description)
	assert.False(t, session.Current().IsLoggedIn())
}

type fakeChatAPI struct {
	chats    []domain.Chat
	messages map[domain.ChatID][]domain.Message
	sendErr  error

	chatCalls    atomic.Int64
	messageCalls atomic.Int64
	nextID       atomic.Int64
}

func (a *fakeChatAPI) ListChats(context.Context) ([]domain.Chat, error) {
	a.chatCalls.Add(1)
	return a.chats, nil
}

func (a *fakeChatAPI) ListMessages(_ context.Context, chatID domain.ChatID) ([]domain.Message, error) {
	a.messageCalls.Add(1)
	messages, ok := a.messages[chatID]
	if !ok {
		return nil, domain.ErrEntityNotFound
	}
	return messages, nil
}

func (a *fakeChatAPI) CreateMessage(_ context.Context, chatID domain.ChatID, text string, token string) (domain.Message, error) {
	if a.sendErr != nil {
		return domain.Message{}, a.sendErr
	}
	if token == "" {
		return domain.Message{}, &domain.AuthError{Description: "missing bearer token"}
	}
	message := domain.Message{
		ID:     fmt.Sprintf("m%d", a.nextID.Add(1)),
		ChatID: chatID,
		Text:   text,
	}
	if a.messages == nil {
		a.messages = map[domain.ChatID][]domain.Message{}
	}
	a.messages[chatID] = append(a.messages[chatID], message)
	return message, nil
}
