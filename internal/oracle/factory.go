package oracle

import (
	"context"
	"errors"
	"fmt"

	"github.com/kozaktomas/bioguard/internal/config"
)

// NewProviderFromConfig builds the configured inference backend.
func NewProviderFromConfig(ctx context.Context, cfg *config.Config) (Provider, error) {
	switch cfg.Oracle.Provider {
	case "gemini":
		if cfg.Gemini.APIKey == "" {
			return nil, errors.New("GEMINI_API_KEY environment variable is required")
		}
		return NewGeminiProvider(ctx, cfg.Gemini.APIKey)
	case "openai":
		if cfg.OpenAI.Token == "" {
			return nil, errors.New("OPENAI_TOKEN environment variable is required")
		}
		return NewOpenAIProvider(cfg.OpenAI.Token), nil
	case "ollama":
		return NewOllamaProvider(cfg.Ollama.URL, cfg.Ollama.Model), nil
	default:
		return nil, fmt.Errorf("unknown oracle provider %q (expected gemini, openai or ollama)", cfg.Oracle.Provider)
	}
}

// NewClientFromConfig builds the configured provider wrapped in a Client.
func NewClientFromConfig(ctx context.Context, cfg *config.Config) (*Client, error) {
	provider, err := NewProviderFromConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return NewClient(provider, cfg.Oracle.Timeout), nil
}
