package cmd

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/arin/gptchat/internal/ai"
	"github.com/arin/gptchat/internal/chat"
	"github.com/arin/gptchat/internal/config"
	"github.com/arin/gptchat/internal/credential"
	"github.com/arin/gptchat/internal/logging"
)

var (
	flagModel       string
	flagMaxTokens   int
	flagTemperature float64
	verbose         bool
	logFile         string
)

var rootCmd = &cobra.Command{
	Use:   "gptchat",
	Short: "Chat with OpenAI models from your terminal",
	Long: `gptchat streams replies from OpenAI chat models as they are generated.

Run without a subcommand to start an interactive chat. The API key is read
from OPENAI_API_KEY (or the variable named by api_key_env), and a .env file
in the working directory is loaded first.

Examples:
  gptchat
  gptchat chat --model gpt-4o --temperature 1.2
  gptchat serve --addr :7860
  gptchat config set max_tokens 500`,
	RunE:                       runChat,
	SilenceUsage:               true,
	SilenceErrors:              true,
	SuggestionsMinimumDistance: 1,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadDotEnv(".env")
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flagModel, "model", "m", "", "Model to use (overrides config)")
	pf.IntVar(&flagMaxTokens, "max-tokens", 0, "Maximum tokens per reply (overrides config)")
	pf.Float64VarP(&flagTemperature, "temperature", "t", 0, "Sampling temperature (overrides config)")
	pf.BoolVarP(&verbose, "verbose", "v", false, "Write debug logs to stderr")
	pf.StringVar(&logFile, "log-file", "", "Write JSON logs to this file (overrides config)")

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(modelsCmd)
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute is the entry point called from main.
func Execute() error {
	return rootCmd.Execute()
}

// loadDotEnv loads path into the environment without overriding variables
// that are already set. A missing file is fine.
func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// app bundles what every chat-capable command needs.
type app struct {
	cfg      *config.Config
	settings chat.Settings
	log      *zap.Logger
	agg      *chat.Aggregator
}

func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}

	opts := logging.Options{Level: cfg.Log.Level, File: cfg.Log.File}
	if logFile != "" {
		opts.File = logFile
	}
	if verbose {
		opts.Level = "debug"
		opts.Console = true
	}
	log, err := logging.New(opts)
	if err != nil {
		return nil, err
	}

	agg := chat.NewAggregator(
		credential.FromEnv(cfg.APIKeyEnv),
		ai.OpenAIFactory{BaseURL: cfg.BaseURL, Logger: log},
	)
	agg.PreservePartial = cfg.KeepPartial
	agg.Logger = log

	return &app{
		cfg:      cfg,
		settings: applyFlags(cmd, cfg.Settings()),
		log:      log,
		agg:      agg,
	}, nil
}

// applyFlags overrides s with the generation flags the user actually set.
func applyFlags(cmd *cobra.Command, s chat.Settings) chat.Settings {
	flags := cmd.Flags()
	if flags.Changed("model") {
		s.Model = flagModel
	}
	if flags.Changed("max-tokens") {
		s.MaxTokens = flagMaxTokens
	}
	if flags.Changed("temperature") {
		s.Temperature = flagTemperature
	}
	return s
}
