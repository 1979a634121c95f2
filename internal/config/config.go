// Package config resolves runtime settings from defaults, an optional YAML
// file and the environment, in that order.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Providers
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
)

const (
	defaultProvider    = ProviderGemini
	defaultTemperature = 0.4
	defaultOllamaURL   = "http://localhost:11434"
	defaultArchiveName = "Zepiy_Generated_Assets.zip"
	defaultMaxUploadMB = 100
	defaultPort        = "8888"
)

// Config holds runtime settings
type Config struct {
	Provider      string  `yaml:"provider"`
	Model         string  `yaml:"model"`
	Temperature   float64 `yaml:"temperature"`
	GeminiAPIKey  string  `yaml:"gemini_api_key"`
	OpenAIAPIKey  string  `yaml:"openai_api_key"`
	OpenAIBaseURL string  `yaml:"openai_base_url"`
	OllamaURL     string  `yaml:"ollama_url"`
	ArchiveName   string  `yaml:"archive_name"`
	MaxUploadMB   int     `yaml:"max_upload_mb"`
	Port          string  `yaml:"port"`
}

// Default returns a Config populated with defaults
func Default() Config {
	return Config{
		Provider:    defaultProvider,
		Temperature: defaultTemperature,
		OllamaURL:   defaultOllamaURL,
		ArchiveName: defaultArchiveName,
		MaxUploadMB: defaultMaxUploadMB,
		Port:        defaultPort,
	}
}

// Load reads configuration. path may be empty; a named file must exist.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}

	cfg.Provider = strings.ToLower(strings.TrimSpace(cfg.Provider))
	if cfg.Model == "" {
		cfg.Model = DefaultModel(cfg.Provider)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.Provider, "STOCKMETA_PROVIDER")
	setString(&c.Model, "STOCKMETA_MODEL")
	setString(&c.GeminiAPIKey, "API_KEY")
	setString(&c.GeminiAPIKey, "GEMINI_API_KEY")
	setString(&c.OpenAIAPIKey, "OPENAI_API_KEY")
	setString(&c.OpenAIBaseURL, "OPENAI_BASE_URL")
	setString(&c.OllamaURL, "OLLAMA_HOST")
	setString(&c.OllamaURL, "OLLAMA_URL")
	setString(&c.ArchiveName, "STOCKMETA_ARCHIVE_NAME")
	setString(&c.Port, "PORT")

	if v := strings.TrimSpace(os.Getenv("STOCKMETA_TEMPERATURE")); v != "" {
		t, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid STOCKMETA_TEMPERATURE %q: %w", v, err)
		}
		c.Temperature = t
	}
	if v := strings.TrimSpace(os.Getenv("STOCKMETA_MAX_UPLOAD_MB")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid STOCKMETA_MAX_UPLOAD_MB %q: %w", v, err)
		}
		c.MaxUploadMB = n
	}
	return nil
}

// setString overwrites dst when the variable is set. Later calls win.
func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

// DefaultModel returns the model used when none is configured
func DefaultModel(provider string) string {
	switch provider {
	case ProviderGemini:
		if model := os.Getenv("GEMINI_MODEL"); model != "" {
			return model
		}
		return "gemini-2.5-flash"
	case ProviderOpenAI:
		if model := os.Getenv("OPENAI_MODEL"); model != "" {
			return model
		}
		return "gpt-4o"
	case ProviderOllama:
		if model := os.Getenv("OLLAMA_MODEL"); model != "" {
			return model
		}
		return "mistral-small3.2:24b"
	default:
		return ""
	}
}

// Validate checks the resolved configuration
func (c Config) Validate() error {
	switch c.Provider {
	case ProviderGemini, ProviderOpenAI, ProviderOllama:
	default:
		return fmt.Errorf("unsupported provider: %s", c.Provider)
	}
	if c.MaxUploadMB <= 0 {
		return fmt.Errorf("max_upload_mb must be positive, got %d", c.MaxUploadMB)
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("temperature must be between 0 and 2, got %v", c.Temperature)
	}
	if c.ArchiveName == "" {
		return fmt.Errorf("archive_name must not be empty")
	}
	return nil
}

// MaxUploadBytes is the upload limit in bytes
func (c Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) * 1024 * 1024
}
