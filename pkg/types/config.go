// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	// DefaultNotionVersion is the Notion-Version header sent with every request.
	DefaultNotionVersion = "2022-06-28"

	// DefaultBaseURL is the Notion REST API root.
	DefaultBaseURL = "https://api.notion.com/v1"

	// DefaultUserAgent is the User-Agent header sent with HTTP requests.
	DefaultUserAgent = "notion-math/0.1"

	// DefaultJournalPath is where fix runs are journaled.
	DefaultJournalPath = ".notion-math/journal.db"
)

// HTTPConfig holds shared HTTP settings for the Notion client.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout (default 60s).
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`

	// MaxRetries bounds retries on HTTP 429 (default 5).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`
}

// NotionConfig identifies the workspace integration and the page to rewrite.
type NotionConfig struct {
	// Token is the integration secret sent as a bearer credential.
	Token string `json:"-" yaml:"-" mapstructure:"token" validate:"required"`

	// PageID is the root page (or block) whose children are scanned.
	PageID string `json:"page_id" yaml:"page_id" mapstructure:"page_id" validate:"required"`

	// Version is the Notion-Version header value.
	Version string `json:"notion_version" yaml:"notion_version" mapstructure:"notion_version" validate:"required"`

	// BaseURL is the API root; tests point it at an httptest server.
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url" validate:"required,url"`
}

// FixConfig controls a single rewrite run over a page.
type FixConfig struct {
	// DryRun reports the blocks that would change without updating them.
	DryRun bool `json:"dry_run" yaml:"dry_run" mapstructure:"dry_run"`

	// Recursive descends into child blocks (toggles, columns, nested lists).
	Recursive bool `json:"recursive" yaml:"recursive" mapstructure:"recursive"`

	// NormalizeUnicode rewrites symbols such as ≥ and → inside expressions
	// to their LaTeX commands.
	NormalizeUnicode bool `json:"normalize_unicode" yaml:"normalize_unicode" mapstructure:"normalize_unicode"`

	// BlockDelay is the pause between consecutive blocks (default 50ms).
	BlockDelay time.Duration `json:"block_delay" yaml:"block_delay" mapstructure:"block_delay" validate:"gte=0"`

	// JournalPath is the SQLite journal file. Empty disables journaling.
	JournalPath string `json:"journal" yaml:"journal" mapstructure:"journal"`
}

// LogConfig selects the logrus output.
type LogConfig struct {
	Level  string `json:"log_level" yaml:"log_level" mapstructure:"log_level" validate:"omitempty,oneof=trace debug info warn warning error"`
	Format string `json:"log_format" yaml:"log_format" mapstructure:"log_format" validate:"omitempty,oneof=text json"`

	// File, when set, receives log output through a rotating writer.
	File string `json:"log_file" yaml:"log_file" mapstructure:"log_file"`
}

// Config groups every setting of a notion-math invocation.
type Config struct {
	HTTPConfig   `yaml:",inline" mapstructure:",squash"`
	NotionConfig `yaml:",inline" mapstructure:",squash"`
	FixConfig    `yaml:",inline" mapstructure:",squash"`
	LogConfig    `yaml:",inline" mapstructure:",squash"`
}

// DefaultConfig returns a Config with every optional field filled in.
// Token and PageID are left empty.
func DefaultConfig() Config {
	return Config{
		HTTPConfig: HTTPConfig{
			Timeout:    60 * time.Second,
			UserAgent:  DefaultUserAgent,
			MaxRetries: 5,
		},
		NotionConfig: NotionConfig{
			Version: DefaultNotionVersion,
			BaseURL: DefaultBaseURL,
		},
		FixConfig: FixConfig{
			Recursive:   true,
			BlockDelay:  50 * time.Millisecond,
			JournalPath: DefaultJournalPath,
		},
		LogConfig: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

var validate = validator.New()

// Validate checks that the required credential and page id are present and
// that the remaining fields hold acceptable values.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid config: %s failed %q", configKey(fe.Field()), fe.Tag())
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// configKey maps a struct field name to its config key for error messages.
func configKey(field string) string {
	switch field {
	case "Token":
		return "token (set NOTION_TOKEN or .secrets/notion-token)"
	case "PageID":
		return "page_id (set NOTION_PAGE_ID or pass a page argument)"
	case "Version":
		return "notion_version"
	case "BaseURL":
		return "base_url"
	case "BlockDelay":
		return "block_delay"
	case "Level":
		return "log_level"
	case "Format":
		return "log_format"
	}
	return field
}
