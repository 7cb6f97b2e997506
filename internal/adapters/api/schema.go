package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/bnema/pony-express-cli/internal/domain"
)

type chatPayload struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
}

func (p chatPayload) toDomain() domain.Chat {
	return domain.Chat{
		ID:        domain.ChatID(p.ID),
		Name:      p.Name,
		CreatedAt: p.CreatedAt,
	}
}

type chatCollection struct {
	Chats []chatPayload `json:"chats"`
}

type userPayload struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	CreatedAt string `json:"created_at"`
}

func (p userPayload) toDomain() domain.User {
	return domain.User{
		ID:        p.ID,
		Username:  p.Username,
		Email:     p.Email,
		CreatedAt: p.CreatedAt,
	}
}

type userResponse struct {
	User *userPayload `json:"user"`
}

// messagePayload accepts both author shapes the service emits: an embedded
// user object or a bare user_id scalar.
type messagePayload struct {
	ID        string       `json:"id"`
	ChatID    string       `json:"chat_id"`
	User      *userPayload `json:"user"`
	UserID    string       `json:"user_id"`
	Text      string       `json:"text"`
	CreatedAt string       `json:"created_at"`
}

func (p messagePayload) toDomain(chatID domain.ChatID) domain.Message {
	author := domain.UserRef{ID: p.UserID}
	if p.User != nil {
		author = domain.UserRef{ID: p.User.ID, Username: p.User.Username}
	}

	id := domain.ChatID(p.ChatID)
	if id == "" {
		id = chatID
	}

	return domain.Message{
		ID:        p.ID,
		ChatID:    id,
		Author:    author,
		Text:      p.Text,
		CreatedAt: p.CreatedAt,
	}
}

type messageCollection struct {
	Messages []messagePayload `json:"messages"`
}

type newMessageRequest struct {
	Text string `json:"text"`
}

type registrationRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenPayload struct {
	AccessToken string `json:"access_token"`
	Token       string `json:"token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// decodeMessageResponse handles both the enveloped ({"message": {...}})
// and bare created-message response bodies.
func decodeMessageResponse(raw json.RawMessage) (messagePayload, error) {
	var envelope struct {
		Message *messagePayload `json:"message"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Message != nil {
		return *envelope.Message, nil
	}

	var payload messagePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return messagePayload{}, fmt.Errorf("decode message response: %w", err)
	}
	if payload.ID == "" && payload.Text == "" {
		return messagePayload{}, errors.New("message response missing message")
	}
	return payload, nil
}

type errorDetail struct {
	ErrorDescription string `json:"error_description"`
	EntityField      string `json:"entity_field"`
	EntityName       string `json:"entity_name"`
	EntityID         string `json:"entity_id"`
}

type errorResponse struct {
	Detail json.RawMessage `json:"detail"`
}

// decodeAPIError maps the service's error bodies onto the domain error
// taxonomy: 401 detail.error_description -> AuthError, 422
// detail.entity_field -> ValidationError, 404 detail.entity_name ->
// ErrEntityNotFound. Anything else degrades to a status-code error.
func decodeAPIError(resp *http.Response) error {
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("status %d", resp.StatusCode)
	}

	var payload errorResponse
	if err := json.Unmarshal(body, &payload); err == nil && len(payload.Detail) > 0 {
		var detail errorDetail
		if err := json.Unmarshal(payload.Detail, &detail); err == nil {
			switch {
			case resp.StatusCode == http.StatusUnauthorized:
				return &domain.AuthError{Description: detail.ErrorDescription}
			case resp.StatusCode == http.StatusUnprocessableEntity && detail.EntityField != "":
				return &domain.ValidationError{Field: detail.EntityField}
			case resp.StatusCode == http.StatusNotFound && detail.EntityName != "":
				return fmt.Errorf("%s %q: %w", detail.EntityName, detail.EntityID, domain.ErrEntityNotFound)
			}
		}

		// FastAPI also emits plain-string details.
		var message string
		if err := json.Unmarshal(payload.Detail, &message); err == nil && message != "" {
			return fmt.Errorf("status %d: %s", resp.StatusCode, message)
		}
	}

	return fmt.Errorf("status %d", resp.StatusCode)
}
