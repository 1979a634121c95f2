package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/zepiy/stockmeta/internal/config"
)

type rootOptions struct {
	configPath string
	logLevel   string
	logFormat  string
}

func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "stockmeta",
		Short: "Stock-site metadata generation for images, videos and vectors",
		Long: `Stockmeta generates titles, descriptions, keywords and per-site categories
for stock media using vision-capable LLMs (Gemini, OpenAI or Ollama).

Assets are queued, generated one at a time, and exported as a ZIP archive of
renamed assets with a CSV manifest, or as per-site CSV files for Adobe Stock,
Shutterstock, Vecteezy, 123RF and Dreamstime.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
			return setupLogger(opts.logLevel, opts.logFormat)
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Path to a YAML config file")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", "text", "Log format (text or json)")

	cmd.AddCommand(newGenerateCmd(opts))
	cmd.AddCommand(newSiteCSVCmd(opts))
	cmd.AddCommand(newServeCmd(opts))

	return cmd
}

func (o *rootOptions) loadConfig() (config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	slog.Debug("Configuration loaded", "provider", cfg.Provider, "model", cfg.Model)
	return cfg, nil
}

func setupLogger(level, format string) error {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("invalid log level %q", level)
	}

	handlerOpts := &slog.HandlerOptions{Level: lvl, AddSource: lvl <= slog.LevelDebug}
	var handler slog.Handler
	switch strings.ToLower(format) {
	case "json":
		handler = slog.NewJSONHandler(os.Stderr, handlerOpts)
	case "text", "":
		handler = slog.NewTextHandler(os.Stderr, handlerOpts)
	default:
		return fmt.Errorf("unsupported log format %q", format)
	}
	slog.SetDefault(slog.New(handler))
	return nil
}
