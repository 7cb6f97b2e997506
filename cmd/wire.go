package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	apiadapter "github.com/bnema/pony-express-cli/internal/adapters/api"
	chatsadapter "github.com/bnema/pony-express-cli/internal/adapters/render/chats"
	sessionstore "github.com/bnema/pony-express-cli/internal/adapters/session/toml"
	"github.com/bnema/pony-express-cli/internal/application"
	"github.com/bnema/pony-express-cli/internal/domain"
	"github.com/bnema/pony-express-cli/internal/ports"
)

const (
	configName     = "config"
	configType     = "toml"
	configDir      = ".pony-express"
	sessionFile    = "session.toml"
	baseURLKey     = "api.base_url"
	sessionPathKey = "session.path"
)

type app struct {
	chats   *application.ChatService
	profile *application.ProfileService
	auth    *application.AuthService
	session *application.SessionManager
	cache   *application.Cache

	chatsRenderer    func([]domain.Chat) (string, error)
	messagesRenderer func(domain.Chat, []domain.Message) (string, error)
	profileRenderer  func(domain.User) (string, error)
	now              func() time.Time
}

func wireApp(ctx context.Context) (*app, error) {
	cfg := viper.New()

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}

	cfg.SetConfigName(configName)
	cfg.SetConfigType(configType)
	cfg.AddConfigPath(filepath.Join(homeDir, configDir))
	cfg.SetDefault(baseURLKey, envOrDefault("PONY_API_BASE_URL", "http://localhost:8000"))
	cfg.SetDefault(sessionPathKey, envOrDefault("PONY_SESSION_PATH", filepath.Join(homeDir, configDir, sessionFile)))

	if err := cfg.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	baseURL := cfg.GetString(baseURLKey)
	if baseURL == "" {
		return nil, errors.New("api base url is empty")
	}
	sessionPath := cfg.GetString(sessionPathKey)
	if sessionPath == "" {
		return nil, errors.New("session path is empty")
	}

	client := &apiadapter.Client{
		BaseURL:    baseURL,
		HTTPClient: http.DefaultClient,
	}

	store := sessionstore.NewStore(sessionPath, ports.SystemClock{})
	sessionManager := application.NewSessionManager(ctx, store)
	cache := application.NewCache()

	return &app{
		chats:            application.NewChatService(client, cache, sessionManager),
		profile:          application.NewProfileService(client, cache, sessionManager),
		auth:             application.NewAuthService(client, sessionManager),
		session:          sessionManager,
		cache:            cache,
		chatsRenderer:    chatsadapter.RenderChats,
		messagesRenderer: chatsadapter.RenderMessages,
		profileRenderer:  chatsadapter.RenderProfile,
		now:              time.Now,
	}, nil
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
