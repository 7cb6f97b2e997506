package api

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bnema/pony-express-cli/internal/domain"
	"github.com/bnema/pony-express-cli/internal/ports"
)

const maxResponseBytes = 1 << 20

// Client talks to the Pony Express REST service. The zero RequestTimeout
// falls back to 30 seconds; a caller-supplied context deadline wins.
type Client struct {
	BaseURL        string
	HTTPClient     *http.Client
	RequestTimeout time.Duration
}

var (
	_ ports.ChatAPI = (*Client)(nil)
	_ ports.AuthAPI = (*Client)(nil)
)

func (c *Client) ListChats(ctx context.Context) ([]domain.Chat, error) {
	var payload chatCollection
	if err := c.doJSON(ctx, http.MethodGet, "/chats", nil, "", "", &payload); err != nil {
		return nil, fmt.Errorf("list chats: %w", err)
	}

	chats := make([]domain.Chat, 0, len(payload.Chats))
	for _, chat := range payload.Chats {
		chats = append(chats, chat.toDomain())
	}
	return chats, nil
}

func (c *Client) ListMessages(ctx context.Context, chatID domain.ChatID) ([]domain.Message, error) {
	if chatID == "" {
		return nil, errors.New("chat id is required")
	}

	path := "/chats/" + url.PathEscape(string(chatID)) + "/messages"
	var payload messageCollection
	if err := c.doJSON(ctx, http.MethodGet, path, nil, "", "", &payload); err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	messages := make([]domain.Message, 0, len(payload.Messages))
	for _, message := range payload.Messages {
		messages = append(messages, message.toDomain(chatID))
	}
	return messages, nil
}

func (c *Client) CreateMessage(ctx context.Context, chatID domain.ChatID, text string, token string) (domain.Message, error) {
	if chatID == "" {
		return domain.Message{}, errors.New("chat id is required")
	}
	if token == "" {
		return domain.Message{}, domain.ErrNotLoggedIn
	}

	body, err := json.Marshal(newMessageRequest{Text: text})
	if err != nil {
		return domain.Message{}, fmt.Errorf("encode message body: %w", err)
	}

	path := "/chats/" + url.PathEscape(string(chatID)) + "/messages"
	var raw json.RawMessage
	if err := c.doJSON(ctx, http.MethodPost, path, bytes.NewReader(body), "application/json", token, &raw); err != nil {
		return domain.Message{}, fmt.Errorf("create message: %w", err)
	}

	payload, err := decodeMessageResponse(raw)
	if err != nil {
		return domain.Message{}, fmt.Errorf("create message: %w", err)
	}
	return payload.toDomain(chatID), nil
}

func (c *Client) Token(ctx context.Context, username, password string) (domain.TokenGrant, error) {
	if username == "" {
		return domain.TokenGrant{}, errors.New("username is required")
	}

	values := url.Values{}
	values.Set("username", username)
	values.Set("password", password)

	var payload tokenPayload
	err := c.doJSON(ctx, http.MethodPost, "/auth/token",
		strings.NewReader(values.Encode()), "application/x-www-form-urlencoded", "", &payload)
	if err != nil {
		return domain.TokenGrant{}, fmt.Errorf("request token: %w", err)
	}

	token := payload.AccessToken
	if token == "" {
		// Legacy deployments grant under "token".
		token = payload.Token
	}
	if token == "" {
		return domain.TokenGrant{}, errors.New("token response missing access token")
	}

	return domain.TokenGrant{
		AccessToken: token,
		TokenType:   payload.TokenType,
		ExpiresIn:   payload.ExpiresIn,
	}, nil
}

func (c *Client) Register(ctx context.Context, username, email, password string) error {
	body, err := json.Marshal(registrationRequest{
		Username: username,
		Email:    email,
		Password: password,
	})
	if err != nil {
		return fmt.Errorf("encode registration body: %w", err)
	}

	var raw json.RawMessage
	if err := c.doJSON(ctx, http.MethodPost, "/auth/registration", bytes.NewReader(body), "application/json", "", &raw); err != nil {
		return err
	}
	return nil
}

// UserForToken resolves the profile behind a bearer token. The user id is
// read from the token's JWT claims without verification; the signature is
// the server's concern.
func (c *Client) UserForToken(ctx context.Context, token string) (domain.User, error) {
	userID, err := subjectFromToken(token)
	if err != nil {
		return domain.User{}, err
	}

	var payload userResponse
	path := "/users/" + url.PathEscape(userID)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, "", token, &payload); err != nil {
		return domain.User{}, fmt.Errorf("fetch user %s: %w", userID, err)
	}
	if payload.User == nil {
		return domain.User{}, errors.New("user response missing user")
	}
	return payload.User.toDomain(), nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, body io.Reader, contentType, token string, out any) error {
	endpoint, err := buildAPIURL(c.BaseURL, path)
	if err != nil {
		return err
	}

	requestCtx, cancel := c.requestContext(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(requestCtx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return fmt.Errorf("perform request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return decodeAPIError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

func (c *Client) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}

	requestTimeout := c.RequestTimeout
	if requestTimeout <= 0 {
		requestTimeout = 30 * time.Second
	}

	return context.WithTimeout(ctx, requestTimeout)
}

func subjectFromToken(token string) (string, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return "", errors.New("malformed bearer token")
	}

	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return "", fmt.Errorf("decode token claims: %w", err)
	}

	var claims struct {
		Sub string `json:"sub"`
	}
	if err := json.Unmarshal(payload, &claims); err != nil {
		return "", fmt.Errorf("parse token claims: %w", err)
	}
	if claims.Sub == "" {
		return "", errors.New("token claims missing subject")
	}
	return claims.Sub, nil
}

func buildAPIURL(baseURL string, path string) (string, error) {
	if baseURL == "" {
		return "", errors.New("api base url is required")
	}
	if path == "" {
		return "", errors.New("api path is required")
	}

	parsed, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("parse api base url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", errors.New("api base url must use http or https")
	}
	if parsed.Host == "" {
		return "", errors.New("api base url host is required")
	}

	endpoint, err := parsed.Parse(path)
	if err != nil {
		return "", fmt.Errorf("parse api path: %w", err)
	}
	return endpoint.String(), nil
}
