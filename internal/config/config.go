package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ErrConfig is wrapped by every configuration failure.
var ErrConfig = errors.New("config error")

// Default polling behaviour when the settings file does not specify one.
const (
	DefaultPollInterval = time.Second
	DefaultPollTimeout  = 5 * time.Minute
)

// Environment variables that override values from the settings file.
const (
	EnvAPIKey          = "OPENAI_API_KEY"
	EnvAssistantID     = "CALASSIST_ASSISTANT_ID"
	EnvCalendarID      = "CALASSIST_CALENDAR_ID"
	EnvTimeZone        = "CALASSIST_TIMEZONE"
	EnvCredentialsFile = "CALASSIST_CREDENTIALS"
)

// Duration is a time.Duration that unmarshals from a Go duration string ("1500ms", "2m").
type Duration time.Duration

// UnmarshalJSON accepts either a duration string or a number of seconds.
// null and "" leave the value unset.
func (d *Duration) UnmarshalJSON(b []byte) error {
	if string(bytes.TrimSpace(b)) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		if s == "" {
			return nil
		}
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", s, err)
		}
		*d = Duration(parsed)
		return nil
	}
	var secs float64
	if err := json.Unmarshal(b, &secs); err != nil {
		return fmt.Errorf("invalid duration %s", string(b))
	}
	*d = Duration(time.Duration(secs * float64(time.Second)))
	return nil
}

// Config holds the settings for one calassist process.
type Config struct {
	// CalendarID is the target calendar ("primary" or a calendar address)
	CalendarID string `json:"calendar_id"`

	// CredentialsFile is the path to the Google service account key file
	CredentialsFile string `json:"credentials_file"`

	// TimeZone is the IANA zone paired with every event timestamp
	TimeZone string `json:"timezone"`

	// OpenAIAPIKey authenticates against the assistant provider
	OpenAIAPIKey string `json:"openAI_API_key"`

	// AssistantID identifies the preconfigured assistant
	AssistantID string `json:"assistant_id"`

	// ThreadID optionally reuses an existing conversation thread
	ThreadID string `json:"thread_id,omitempty"`

	// PollInterval is the initial delay between run status checks
	PollInterval Duration `json:"poll_interval,omitempty"`

	// PollTimeout bounds the total time spent waiting for one run
	PollTimeout Duration `json:"poll_timeout,omitempty"`
}

// Load reads the settings file at path, applies .env and environment
// overrides and validates the result.
func Load(path string) (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: configuration file not found: %s", ErrConfig, path)
		}
		return nil, fmt.Errorf("%w: unable to read configuration file %s: %v", ErrConfig, path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes settings from JSON, applies environment overrides and validates.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: failed to decode JSON configuration: %v", ErrConfig, err)
	}

	cfg.applyEnv()

	if cfg.PollInterval <= 0 {
		cfg.PollInterval = Duration(DefaultPollInterval)
	}
	if cfg.PollTimeout <= 0 {
		cfg.PollTimeout = Duration(DefaultPollTimeout)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that every required key is present and usable.
func (c *Config) Validate() error {
	required := []struct {
		key   string
		value string
	}{
		{"calendar_id", c.CalendarID},
		{"credentials_file", c.CredentialsFile},
		{"timezone", c.TimeZone},
		{"openAI_API_key", c.OpenAIAPIKey},
		{"assistant_id", c.AssistantID},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return fmt.Errorf("%w: missing required key %q", ErrConfig, r.key)
		}
	}

	// "Local" resolves on this host but means nothing to the calendar.
	if c.TimeZone == "Local" {
		return fmt.Errorf("%w: invalid timezone %q: an IANA zone name is required", ErrConfig, c.TimeZone)
	}
	if _, err := time.LoadLocation(c.TimeZone); err != nil {
		return fmt.Errorf("%w: invalid timezone %q: %v", ErrConfig, c.TimeZone, err)
	}

	return nil
}

// Location returns the configured timezone as a *time.Location.
// Validate guarantees it resolves.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c *Config) applyEnv() {
	overrides := []struct {
		env    string
		target *string
	}{
		{EnvAPIKey, &c.OpenAIAPIKey},
		{EnvAssistantID, &c.AssistantID},
		{EnvCalendarID, &c.CalendarID},
		{EnvTimeZone, &c.TimeZone},
		{EnvCredentialsFile, &c.CredentialsFile},
	}
	for _, o := range overrides {
		if v := os.Getenv(o.env); v != "" {
			*o.target = v
		}
	}
}

// loadDotEnv loads KEY=VALUE pairs from path into the environment.
// A missing file is not an error; existing variables are not overwritten.
func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("%w: failed to load %s: %v", ErrConfig, path, err)
	}
	return nil
}
