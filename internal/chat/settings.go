package chat

import (
	"fmt"
	"math"
	"slices"
)

// Models the front-end offers, in display order.
var Models = []string{"gpt-4o", "gpt-3.5-turbo"}

const (
	DefaultModel = "gpt-3.5-turbo"

	MinMaxTokens     = 50
	MaxMaxTokens     = 1000
	MaxTokensStep    = 10
	DefaultMaxTokens = 100

	MinTemperature     = 0.1
	MaxTemperature     = 2.0
	TemperatureStep    = 0.1
	DefaultTemperature = 0.7
)

// Settings are the per-request generation knobs.
type Settings struct {
	Model       string  `json:"model"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
}

// DefaultSettings returns the settings a fresh session starts with.
func DefaultSettings() Settings {
	return Settings{
		Model:       DefaultModel,
		MaxTokens:   DefaultMaxTokens,
		Temperature: DefaultTemperature,
	}
}

// IsAllowedModel reports whether model is on the allow-list.
func IsAllowedModel(model string) bool {
	return slices.Contains(Models, model)
}

// Validate checks the settings against the allow-list and numeric bounds.
func (s Settings) Validate() error {
	if !IsAllowedModel(s.Model) {
		return fmt.Errorf("%w: unknown model %q", ErrInvalidSettings, s.Model)
	}
	if s.MaxTokens < MinMaxTokens || s.MaxTokens > MaxMaxTokens {
		return fmt.Errorf("%w: max tokens must be between %d and %d", ErrInvalidSettings, MinMaxTokens, MaxMaxTokens)
	}
	if (s.MaxTokens-MinMaxTokens)%MaxTokensStep != 0 {
		return fmt.Errorf("%w: max tokens must be a multiple of %d", ErrInvalidSettings, MaxTokensStep)
	}
	// Compare in tenths to dodge float noise like 0.30000000000000004.
	tenths := math.Round(s.Temperature * 10)
	if math.IsNaN(tenths) || tenths < math.Round(MinTemperature*10) || tenths > math.Round(MaxTemperature*10) {
		return fmt.Errorf("%w: temperature must be between %.1f and %.1f", ErrInvalidSettings, MinTemperature, MaxTemperature)
	}
	if math.Abs(s.Temperature*10-tenths) > 1e-6 {
		return fmt.Errorf("%w: temperature must use steps of %.1f", ErrInvalidSettings, TemperatureStep)
	}
	return nil
}
