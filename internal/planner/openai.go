package planner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"

	"github.com/youruser/carouselapp/internal/config"
)

// ErrNoAPIKey is returned by FromConfig when no API key is configured.
var ErrNoAPIKey = errors.New("no API key configured")

// FromConfig builds a Planner for the configured provider.
func FromConfig(ctx context.Context, cfg config.Config) (*Planner, error) {
	if cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}
	var (
		chatModel model.BaseChatModel
		err       error
	)
	switch cfg.Provider {
	case config.ProviderOpenAI:
		chatModel, err = newOpenAIModel(ctx, cfg.APIKey, cfg.BaseURL, cfg.Model, cfg.PlannerTimeout)
	default:
		chatModel, err = NewGeminiChatModel(ctx, &GeminiConfig{
			APIKey:         cfg.APIKey,
			BaseURL:        cfg.BaseURL,
			Model:          cfg.Model,
			Timeout:        cfg.PlannerTimeout,
			ResponseSchema: planSchema,
		})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create %s chat model: %w", cfg.Provider, err)
	}
	return New(chatModel, cfg.Temperature, cfg.Language), nil
}

// newOpenAIModel wraps the eino-ext OpenAI client. BaseURL may point at
// any OpenAI-compatible endpoint.
func newOpenAIModel(ctx context.Context, apiKey, baseURL, modelName string, timeout time.Duration) (model.BaseChatModel, error) {
	return openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey:  apiKey,
		BaseURL: baseURL,
		Model:   modelName,
		Timeout: timeout,
	})
}
