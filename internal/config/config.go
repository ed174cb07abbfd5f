// Package config handles loading and persisting user configuration
// for gptchat. Configuration is stored in ~/.gptchat/config.yaml and every
// key can be overridden with a GPTCHAT_ environment variable.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"

	"github.com/arin/gptchat/internal/chat"
	"github.com/arin/gptchat/internal/credential"
)

const (
	dirName       = ".gptchat"
	fileName      = "config"
	fileType      = "yaml"
	envPrefix     = "GPTCHAT"
	defaultListen = ":7860"
)

// Keys accepted by Set.
const (
	KeyModel       = "model"
	KeyMaxTokens   = "max_tokens"
	KeyTemperature = "temperature"
	KeyAPIKeyEnv   = "api_key_env"
	KeyBaseURL     = "base_url"
	KeyKeepPartial = "keep_partial"
	KeyListen      = "listen"
	KeyLogLevel    = "log.level"
	KeyLogFile     = "log.file"
)

// Keys lists every supported key in display order.
var Keys = []string{
	KeyModel, KeyMaxTokens, KeyTemperature, KeyAPIKeyEnv, KeyBaseURL,
	KeyKeepPartial, KeyListen, KeyLogLevel, KeyLogFile,
}

// Config holds the user's configuration.
type Config struct {
	Model       string    `mapstructure:"model"`
	MaxTokens   int       `mapstructure:"max_tokens"`
	Temperature float64   `mapstructure:"temperature"`
	APIKeyEnv   string    `mapstructure:"api_key_env"`
	BaseURL     string    `mapstructure:"base_url"`
	KeepPartial bool      `mapstructure:"keep_partial"`
	Listen      string    `mapstructure:"listen"`
	Log         LogConfig `mapstructure:"log"`
}

// LogConfig controls the diagnostic log.
type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

// Settings returns the generation settings the config describes.
func (c *Config) Settings() chat.Settings {
	return chat.Settings{
		Model:       c.Model,
		MaxTokens:   c.MaxTokens,
		Temperature: c.Temperature,
	}
}

// Dir returns the configuration directory path.
func Dir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, dirName)
}

// Path returns the configuration file path.
func Path() string {
	return filepath.Join(Dir(), fileName+"."+fileType)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigName(fileName)
	v.SetConfigType(fileType)
	v.AddConfigPath(Dir())

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyModel, chat.DefaultModel)
	v.SetDefault(KeyMaxTokens, chat.DefaultMaxTokens)
	v.SetDefault(KeyTemperature, chat.DefaultTemperature)
	v.SetDefault(KeyAPIKeyEnv, credential.DefaultEnvVar)
	v.SetDefault(KeyBaseURL, "")
	v.SetDefault(KeyKeepPartial, false)
	v.SetDefault(KeyListen, defaultListen)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFile, "")
	return v
}

// Load reads the configuration from disk and environment variables.
// A missing file is not an error.
func Load() (*Config, error) {
	v := newViper()
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Set validates value for key and persists it to the config file.
func Set(key, value string) error {
	parsed, err := parse(key, value)
	if err != nil {
		return err
	}

	v := newViper()
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}
	v.Set(key, parsed)

	if err := os.MkdirAll(Dir(), 0o700); err != nil {
		return err
	}
	return v.WriteConfigAs(Path())
}

func parse(key, value string) (any, error) {
	switch key {
	case KeyModel:
		if !chat.IsAllowedModel(value) {
			return nil, fmt.Errorf("unknown model %q (choose from %s)", value, strings.Join(chat.Models, ", "))
		}
		return value, nil
	case KeyMaxTokens:
		n, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("max_tokens must be an integer: %w", err)
		}
		s := chat.DefaultSettings()
		s.MaxTokens = n
		if err := s.Validate(); err != nil {
			return nil, err
		}
		return n, nil
	case KeyTemperature:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("temperature must be a number: %w", err)
		}
		s := chat.DefaultSettings()
		s.Temperature = f
		if err := s.Validate(); err != nil {
			return nil, err
		}
		return f, nil
	case KeyKeepPartial:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("keep_partial must be true or false: %w", err)
		}
		return b, nil
	case KeyLogLevel:
		switch value {
		case "debug", "info", "warn", "error":
			return value, nil
		}
		return nil, fmt.Errorf("unknown log level %q", value)
	case KeyAPIKeyEnv, KeyBaseURL, KeyListen, KeyLogFile:
		return value, nil
	}
	return nil, fmt.Errorf("unknown config key %q (valid keys: %s)", key, strings.Join(Keys, ", "))
}
