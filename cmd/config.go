package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arin/gptchat/internal/config"
	"github.com/arin/gptchat/internal/credential"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage gptchat configuration",
}

var setCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value and save it to ~/.gptchat/config.yaml.

Keys: model, max_tokens, temperature, api_key_env, base_url, keep_partial,
listen, log.level, log.file`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Set(args[0], args[1]); err != nil {
			return fmt.Errorf("failed to save %s: %w", args[0], err)
		}
		fmt.Printf("%s set to %s.\n", args[0], args[1])
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		key := "(not set)"
		if cred, err := credential.FromEnv(cfg.APIKeyEnv).Resolve(); err == nil {
			key = cred.Masked()
		}
		fmt.Printf("Model:        %s\n", cfg.Model)
		fmt.Printf("Max tokens:   %d\n", cfg.MaxTokens)
		fmt.Printf("Temperature:  %.1f\n", cfg.Temperature)
		fmt.Printf("API key env:  %s\n", cfg.APIKeyEnv)
		fmt.Printf("API key:      %s\n", key)
		fmt.Printf("Base URL:     %s\n", orDefault(cfg.BaseURL, "(OpenAI)"))
		fmt.Printf("Keep partial: %t\n", cfg.KeepPartial)
		fmt.Printf("Listen:       %s\n", cfg.Listen)
		fmt.Printf("Log level:    %s\n", cfg.Log.Level)
		fmt.Printf("Log file:     %s\n", orDefault(cfg.Log.File, "(none)"))
		fmt.Printf("Config file:  %s\n", config.Path())
		return nil
	},
}

var pathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file path",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(config.Path())
	},
}

func init() {
	configCmd.AddCommand(setCmd)
	configCmd.AddCommand(showCmd)
	configCmd.AddCommand(pathCmd)
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
