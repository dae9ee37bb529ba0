// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
)

// Config represents the CLI configuration. Values come from a JSON file,
// environment variables, and CLI flags, merged in that order of increasing
// priority. Validation runs only after the merge, so every individual
// source may be partial.
type Config struct {
	// Required secrets and identifiers
	SpreadsheetID string `json:"spreadsheet_id,omitempty" validate:"required"`
	GeminiAPIKey  string `json:"gemini_api_key,omitempty" validate:"required"`
	HunterAPIKey  string `json:"hunter_api_key,omitempty" validate:"required"`

	// OAuth material for Sheets/Gmail access
	CredentialsFile string `json:"credentials_file,omitempty" validate:"required"`
	TokenFile       string `json:"token_file,omitempty" validate:"required"`

	// Spreadsheet layout
	InputRange   string `json:"input_range,omitempty" validate:"required"`
	SuccessRange string `json:"success_range,omitempty" validate:"required"`
	FailureRange string `json:"failure_range,omitempty" validate:"required"`

	// Behavior
	DatabaseURL string `json:"database_url,omitempty"` // optional run history
	UseBrowser  bool   `json:"use_browser,omitempty"`  // headless fallback for SPA sites
	Verbose     bool   `json:"verbose,omitempty"`
}

// LoadConfig loads configuration from a JSON file.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// FromEnv returns a Config populated from environment variables.
func FromEnv() Config {
	return Config{
		SpreadsheetID:   os.Getenv("GOOGLE_SPREADSHEET_ID"),
		GeminiAPIKey:    os.Getenv("GEMINI_API_KEY"),
		HunterAPIKey:    os.Getenv("HUNTER_API_KEY"),
		CredentialsFile: os.Getenv("GOOGLE_CREDENTIALS_FILE"),
		TokenFile:       os.Getenv("GOOGLE_TOKEN_FILE"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
	}
}

// Defaults returns the fallback values applied after all other sources.
func Defaults() Config {
	return Config{
		CredentialsFile: "credentials.json",
		TokenFile:       "token.json",
		InputRange:      "Sheet1!A:A",
		SuccessRange:    "Success!A:C",
		FailureRange:    "Failures!A:A",
	}
}

// MergeWithDefaults returns a new Config with empty string fields filled
// from defaults. Bool fields are not merged; flags always win for those.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.SpreadsheetID == "" {
		result.SpreadsheetID = defaults.SpreadsheetID
	}
	if result.GeminiAPIKey == "" {
		result.GeminiAPIKey = defaults.GeminiAPIKey
	}
	if result.HunterAPIKey == "" {
		result.HunterAPIKey = defaults.HunterAPIKey
	}
	if result.CredentialsFile == "" {
		result.CredentialsFile = defaults.CredentialsFile
	}
	if result.TokenFile == "" {
		result.TokenFile = defaults.TokenFile
	}
	if result.InputRange == "" {
		result.InputRange = defaults.InputRange
	}
	if result.SuccessRange == "" {
		result.SuccessRange = defaults.SuccessRange
	}
	if result.FailureRange == "" {
		result.FailureRange = defaults.FailureRange
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}

	return result
}

// Validate checks that the merged configuration is complete.
func (c *Config) Validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(c); err != nil {
		if fieldErrs, ok := err.(validator.ValidationErrors); ok && len(fieldErrs) > 0 {
			return fmt.Errorf("config error: %s is %s", fieldErrs[0].Field(), fieldErrs[0].Tag())
		}
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}
