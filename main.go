package main

import (
	"context"
	"os"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"google.golang.org/genai"

	"github.com/emyai/server/internal/chat/completion"
	"github.com/emyai/server/internal/chat/memory"
	"github.com/emyai/server/internal/chat/model"
	"github.com/emyai/server/internal/chat/resolver"
	"github.com/emyai/server/internal/chat/store"
	"github.com/emyai/server/internal/core"
	"github.com/emyai/server/internal/server"
	logx "github.com/emyai/server/pkg/logger"
	pkgredis "github.com/emyai/server/pkg/redis"
)

// AppConfig defines all configurable parameters for the relay, sourced
// from environment variables (loaded from .env for local runs).
type AppConfig struct {
	Environment string `envconfig:"APP_ENV" default:"development"`

	// LLM provider. The key may alternatively come from a file, for
	// secret-mount deployments.
	APIKey     string `envconfig:"GEMINI_API_KEY"`
	APIKeyFile string `envconfig:"GEMINI_API_KEY_FILE"`
	BaseURL    string `envconfig:"GEMINI_BASE_URL"`

	// Infrastructure
	Redis pkgredis.Config

	Server  model.ServerConfig
	History model.HistoryConfig
	Models  model.ModelsConfig
}

func main() {
	ctx := context.Background()

	if err := godotenv.Load(".env"); err != nil {
		logx.Warn().Err(err).Msg("could not load .env file")
	}

	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		logx.Fatal().Err(err).Msg("failed to process environment config")
	}

	logx.Init(logx.LoggerOpts{Environment: core.ParseEnvironment(cfg.Environment)})

	apiKey, err := resolveAPIKey(cfg)
	if err != nil {
		logx.Fatal().Err(err).Msg("missing Gemini API key: set GEMINI_API_KEY or GEMINI_API_KEY_FILE")
	}

	historyStore, err := buildStore(ctx, cfg)
	if err != nil {
		logx.Fatal().Err(err).Str("driver", cfg.History.Driver).Msg("failed to initialise history store")
	}
	defer historyStore.Close()

	backend, err := buildChatModel(ctx, cfg, apiKey)
	if err != nil {
		logx.Fatal().Err(err).Msg("failed to initialise chat model")
	}

	srv := server.New(
		resolver.New(cfg.Models),
		memory.NewManager(historyStore, cfg.History),
		completion.New(backend, cfg.Models),
		cfg.Server,
	)

	if err := srv.Run(); err != nil {
		logx.Fatal().Err(err).Msg("server stopped")
	}
}

func resolveAPIKey(cfg AppConfig) (string, error) {
	if key := strings.TrimSpace(cfg.APIKey); key != "" {
		return key, nil
	}
	if cfg.APIKeyFile != "" {
		b, err := os.ReadFile(cfg.APIKeyFile)
		if err != nil {
			return "", err
		}
		if key := strings.TrimSpace(string(b)); key != "" {
			return key, nil
		}
	}
	return "", os.ErrNotExist
}

func buildStore(ctx context.Context, cfg AppConfig) (store.Store, error) {
	switch store.Driver(cfg.History.Driver) {
	case store.DriverRedis:
		rdb, err := cfg.Redis.New(ctx)
		if err != nil {
			return nil, err
		}
		return store.New(store.DriverRedis,
			store.WithRedisClient(rdb),
			store.WithTTL(cfg.History.TTL),
		)
	default:
		return store.New(store.DriverMemory)
	}
}

func buildChatModel(ctx context.Context, cfg AppConfig, apiKey string) (completion.ChatModel, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions.BaseURL = cfg.BaseURL
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, err
	}

	// The concrete model, token limit and temperature are overridden per
	// call; the balanced tier just seeds the defaults.
	temperature := cfg.Models.Balanced.Temperature
	maxTokens := cfg.Models.Balanced.MaxTokens
	return gemini.NewChatModel(ctx, &gemini.Config{
		Client:      client,
		Model:       cfg.Models.Balanced.Model,
		Temperature: &temperature,
		MaxTokens:   &maxTokens,
	})
}
