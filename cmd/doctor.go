package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/arin/gptchat/internal/ai"
	"github.com/arin/gptchat/internal/config"
	"github.com/arin/gptchat/internal/credential"
)

const defaultOpenAIBaseURL = "https://api.openai.com/v1"

var doctorOffline bool

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check configuration and API access",
	Long: `Run a health check on your gptchat setup.
Verifies the config file, generation settings, API key, client
construction and OpenAI reachability.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		green := color.New(color.FgGreen)
		red := color.New(color.FgRed)
		yellow := color.New(color.FgYellow)
		dim := color.New(color.FgHiBlack)
		cyan := color.New(color.FgCyan, color.Bold)

		cyan.Fprintf(os.Stderr, "\n  🩺 gptchat doctor\n\n")

		pass, fail, warn := 0, 0, 0

		check := func(name string, fn func() (string, error)) {
			detail, err := fn()
			if err != nil {
				if strings.HasPrefix(err.Error(), "warn:") {
					yellow.Fprintf(os.Stderr, "  ⚠ %s\n", name)
					dim.Fprintf(os.Stderr, "    %s\n", strings.TrimPrefix(err.Error(), "warn:"))
					warn++
				} else {
					red.Fprintf(os.Stderr, "  ✗ %s\n", name)
					dim.Fprintf(os.Stderr, "    %s\n", err.Error())
					fail++
				}
			} else {
				green.Fprintf(os.Stderr, "  ✓ %s", name)
				if detail != "" {
					dim.Fprintf(os.Stderr, " (%s)", detail)
				}
				fmt.Fprintln(os.Stderr)
				pass++
			}
		}

		check("gptchat binary", func() (string, error) {
			path, err := os.Executable()
			if err != nil {
				return "", fmt.Errorf("could not find gptchat binary")
			}
			return path, nil
		})

		check("Config file", func() (string, error) {
			info, err := os.Stat(config.Path())
			if err != nil {
				return "", fmt.Errorf("warn:%s not found, using defaults", config.Path())
			}
			if info.IsDir() {
				return "", fmt.Errorf("%s is a directory", config.Path())
			}
			return config.Path(), nil
		})

		cfg, cfgErr := config.Load()
		check("Config readable", func() (string, error) {
			if cfgErr != nil {
				return "", cfgErr
			}
			return "", nil
		})
		if cfgErr != nil {
			fmt.Fprintln(os.Stderr)
			red.Fprintf(os.Stderr, "  Fix the config file before running the remaining checks.\n\n")
			return nil
		}
		settings := applyFlags(cmd, cfg.Settings())

		check("Generation settings", func() (string, error) {
			if err := settings.Validate(); err != nil {
				return "", err
			}
			return fmt.Sprintf("%s, %d tokens, temperature %.1f", settings.Model, settings.MaxTokens, settings.Temperature), nil
		})

		check(".env file", func() (string, error) {
			abs, _ := filepath.Abs(".env")
			if _, err := os.Stat(abs); err != nil {
				return "none in working directory", nil
			}
			return abs, nil
		})

		cred, credErr := credential.FromEnv(cfg.APIKeyEnv).Resolve()
		check("API key", func() (string, error) {
			if credErr != nil {
				return "", fmt.Errorf("%v Export it or add it to .env.", credErr)
			}
			return fmt.Sprintf("%s=%s", credential.FromEnv(cfg.APIKeyEnv).Name, cred.Masked()), nil
		})

		check("OpenAI client", func() (string, error) {
			if credErr != nil {
				return "", fmt.Errorf("warn:skipped, no API key")
			}
			if _, err := (ai.OpenAIFactory{BaseURL: cfg.BaseURL}).Build(settings.Model, cred); err != nil {
				return "", err
			}
			return orDefault(cfg.BaseURL, defaultOpenAIBaseURL), nil
		})

		check("OpenAI reachable", func() (string, error) {
			if doctorOffline {
				return "", fmt.Errorf("warn:skipped (--offline)")
			}
			if credErr != nil {
				return "", fmt.Errorf("warn:skipped, no API key")
			}
			return pingOpenAI(cmd.Context(), ai.OpenAIFactory{BaseURL: cfg.BaseURL}, settings.Model, cred)
		})

		if cfg.Log.File != "" {
			check("Log file", func() (string, error) {
				if err := os.MkdirAll(filepath.Dir(cfg.Log.File), 0o700); err != nil {
					return "", fmt.Errorf("warn:cannot create %s", filepath.Dir(cfg.Log.File))
				}
				return cfg.Log.File, nil
			})
		}

		check("System info", func() (string, error) {
			return fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH), nil
		})

		fmt.Fprintln(os.Stderr)
		total := pass + fail + warn
		if fail == 0 && warn == 0 {
			green.Fprintf(os.Stderr, "  All %d checks passed. You're good to go.\n\n", total)
		} else if fail == 0 {
			yellow.Fprintf(os.Stderr, "  %d passed, %d warnings. Everything works, but some things could be better.\n\n", pass, warn)
		} else {
			red.Fprintf(os.Stderr, "  %d passed, %d failed, %d warnings. Fix the failures above.\n\n", pass, fail, warn)
		}

		return nil
	},
}

func init() {
	doctorCmd.Flags().BoolVar(&doctorOffline, "offline", false, "Skip the network check")
}

// pingOpenAI builds a client through the factory and lists models to
// confirm the endpoint is up and accepts the key.
func pingOpenAI(ctx context.Context, factory ai.OpenAIFactory, model string, cred credential.Credential) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	built, err := factory.Build(model, cred)
	if err != nil {
		return "", err
	}
	client := built.(*ai.OpenAIClient)

	baseURL := orDefault(factory.BaseURL, defaultOpenAIBaseURL)
	if err := client.Ping(ctx); err != nil {
		if errors.Is(err, ai.ErrUnauthorized) {
			return "", err
		}
		return "", fmt.Errorf("could not reach %s: %w", baseURL, err)
	}
	return fmt.Sprintf("%s via %s", client.Model(), baseURL), nil
}
