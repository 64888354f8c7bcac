package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validJSON = `{
	"calendar_id": "primary",
	"credentials_file": "service-account.json",
	"timezone": "America/New_York",
	"openAI_API_key": "sk-test",
	"assistant_id": "asst_123"
}`

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{EnvAPIKey, EnvAssistantID, EnvCalendarID, EnvTimeZone, EnvCredentialsFile} {
		t.Setenv(key, "")
	}
}

func TestParse_Valid(t *testing.T) {
	clearEnv(t)

	cfg, err := Parse([]byte(validJSON))
	require.NoError(t, err)

	assert.Equal(t, "primary", cfg.CalendarID)
	assert.Equal(t, "service-account.json", cfg.CredentialsFile)
	assert.Equal(t, "America/New_York", cfg.TimeZone)
	assert.Equal(t, "sk-test", cfg.OpenAIAPIKey)
	assert.Equal(t, "asst_123", cfg.AssistantID)
	assert.Equal(t, Duration(DefaultPollInterval), cfg.PollInterval)
	assert.Equal(t, Duration(DefaultPollTimeout), cfg.PollTimeout)
	assert.Equal(t, "America/New_York", cfg.Location().String())
}

func TestParse_MissingKeys(t *testing.T) {
	clearEnv(t)

	tests := []struct {
		name    string
		json    string
		wantKey string
	}{
		{
			name:    "missing calendar_id",
			json:    `{"credentials_file":"c.json","timezone":"UTC","openAI_API_key":"k","assistant_id":"a"}`,
			wantKey: "calendar_id",
		},
		{
			name:    "missing credentials_file",
			json:    `{"calendar_id":"primary","timezone":"UTC","openAI_API_key":"k","assistant_id":"a"}`,
			wantKey: "credentials_file",
		},
		{
			name:    "missing timezone",
			json:    `{"calendar_id":"primary","credentials_file":"c.json","openAI_API_key":"k","assistant_id":"a"}`,
			wantKey: "timezone",
		},
		{
			name:    "missing api key",
			json:    `{"calendar_id":"primary","credentials_file":"c.json","timezone":"UTC","assistant_id":"a"}`,
			wantKey: "openAI_API_key",
		},
		{
			name:    "missing assistant_id",
			json:    `{"calendar_id":"primary","credentials_file":"c.json","timezone":"UTC","openAI_API_key":"k"}`,
			wantKey: "assistant_id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.json))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrConfig)
			assert.Contains(t, err.Error(), tt.wantKey)
		})
	}
}

func TestParse_InvalidTimezone(t *testing.T) {
	clearEnv(t)

	_, err := Parse([]byte(`{"calendar_id":"primary","credentials_file":"c.json","timezone":"Mars/Olympus","openAI_API_key":"k","assistant_id":"a"}`))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfig)
	assert.Contains(t, err.Error(), "invalid timezone")
}

func TestParse_LocalTimezone(t *testing.T) {
	clearEnv(t)

	_, err := Parse([]byte(`{"calendar_id":"primary","credentials_file":"c.json","timezone":"Local","openAI_API_key":"k","assistant_id":"a"}`))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfig)
	assert.Contains(t, err.Error(), "IANA")
}

func TestParse_MalformedJSON(t *testing.T) {
	clearEnv(t)

	_, err := Parse([]byte(`{"calendar_id": `))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfig)
}

func TestParse_Durations(t *testing.T) {
	clearEnv(t)

	cfg, err := Parse([]byte(`{"calendar_id":"primary","credentials_file":"c.json","timezone":"UTC","openAI_API_key":"k","assistant_id":"a","poll_interval":"250ms","poll_timeout":90}`))
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, time.Duration(cfg.PollInterval))
	assert.Equal(t, 90*time.Second, time.Duration(cfg.PollTimeout))

	_, err = Parse([]byte(`{"calendar_id":"primary","credentials_file":"c.json","timezone":"UTC","openAI_API_key":"k","assistant_id":"a","poll_interval":"soon"}`))
	assert.ErrorIs(t, err, ErrConfig)

	cfg, err = Parse([]byte(`{"calendar_id":"primary","credentials_file":"c.json","timezone":"UTC","openAI_API_key":"k","assistant_id":"a","poll_interval":null,"poll_timeout":""}`))
	require.NoError(t, err)
	assert.Equal(t, Duration(DefaultPollInterval), cfg.PollInterval)
	assert.Equal(t, Duration(DefaultPollTimeout), cfg.PollTimeout)
}

func TestParse_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvAPIKey, "sk-from-env")
	t.Setenv(EnvTimeZone, "Europe/Berlin")

	cfg, err := Parse([]byte(validJSON))
	require.NoError(t, err)
	assert.Equal(t, "sk-from-env", cfg.OpenAIAPIKey)
	assert.Equal(t, "Europe/Berlin", cfg.TimeZone)
}

func TestLoad_FromFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "secrets.json")
	require.NoError(t, os.WriteFile(path, []byte(validJSON), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "asst_123", cfg.AssistantID)
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfig)
	assert.Contains(t, err.Error(), "not found")
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()

	// Missing file is not an error
	assert.NoError(t, loadDotEnv(filepath.Join(dir, ".env")))

	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("CALASSIST_TEST_DOTENV=loaded\n"), 0600))
	t.Setenv("CALASSIST_TEST_DOTENV", "")
	require.NoError(t, os.Unsetenv("CALASSIST_TEST_DOTENV"))

	require.NoError(t, loadDotEnv(path))
	assert.Equal(t, "loaded", os.Getenv("CALASSIST_TEST_DOTENV"))
}
