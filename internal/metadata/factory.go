package metadata

import (
	"fmt"

	"github.com/zepiy/stockmeta/internal/config"
	"github.com/zepiy/stockmeta/internal/gemini"
	"github.com/zepiy/stockmeta/internal/ollama"
	"github.com/zepiy/stockmeta/internal/openai"
	"github.com/zepiy/stockmeta/internal/providers"
)

// NewProvider builds the provider named in cfg
func NewProvider(cfg config.Config) (providers.Provider, error) {
	switch cfg.Provider {
	case config.ProviderGemini:
		return gemini.New(cfg.GeminiAPIKey), nil
	case config.ProviderOpenAI:
		return openai.New(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL), nil
	case config.ProviderOllama:
		return ollama.New(cfg.OllamaURL), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", cfg.Provider)
	}
}

// NewClientFromConfig builds a client for the configured provider and model
func NewClientFromConfig(cfg config.Config) (*Client, error) {
	p, err := NewProvider(cfg)
	if err != nil {
		return nil, err
	}
	return NewClient(p, cfg.Model, cfg.Temperature), nil
}
