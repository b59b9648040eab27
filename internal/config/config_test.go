package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/placement/internal/errors"
	"github.com/felixgeelhaar/placement/internal/log"
)

func isolatedHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, key := range []string{"API_URL", "TOKEN_FILE", "POLL_INTERVAL", "PAGE_SIZE", "REQUEST_TIMEOUT", "OUTPUT", "LOG_LEVEL"} {
		t.Setenv(EnvPrefix+"_"+key, "")
		os.Unsetenv(EnvPrefix + "_" + key)
	}
	return home
}

func writeConfig(t *testing.T, home, body string) {
	t.Helper()
	dir := filepath.Join(home, ".placement")
	require.NoError(t, os.MkdirAll(dir, 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0o600))
}

func TestLoad_Defaults(t *testing.T) {
	home := isolatedHome(t)

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultAPIURL, cfg.APIURL)
	assert.Equal(t, filepath.Join(home, ".placement", "session.json"), cfg.TokenFile)
	assert.Equal(t, 30*time.Second, cfg.PollInterval)
	assert.Equal(t, DefaultPageSize, cfg.PageSize)
	assert.Equal(t, "text", cfg.Output)
	assert.Empty(t, cfg.File)
	assert.Equal(t, log.LevelWarn, cfg.Logging().Level)
}

func TestLoad_FileThenEnvThenFlags(t *testing.T) {
	home := isolatedHome(t)
	writeConfig(t, home, `
api_url: https://portal.example.edu/api
poll_interval: 45s
token_file: ~/tokens.json
log:
  level: debug
  format: json
`)

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "https://portal.example.edu/api", cfg.APIURL)
	assert.Equal(t, 45*time.Second, cfg.PollInterval)
	assert.Equal(t, filepath.Join(home, "tokens.json"), cfg.TokenFile)
	assert.Equal(t, log.FormatJSON, cfg.Logging().Format)
	assert.Equal(t, log.LevelDebug, cfg.Logging().Level)
	assert.NotEmpty(t, cfg.File)

	t.Setenv("PLACEMENT_API_URL", "https://staging.example.edu/api")
	cfg, err = Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "https://staging.example.edu/api", cfg.APIURL)

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("api-url", "", "")
	flags.String("output", "text", "")
	require.NoError(t, flags.Parse([]string{"--api-url", "http://127.0.0.1:9000"}))

	cfg, err = Load("", flags)
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:9000", cfg.APIURL)
}

func TestLoad_PageSizeFlag(t *testing.T) {
	home := isolatedHome(t)
	writeConfig(t, home, "page_size: 30\n")

	flags := pflag.NewFlagSet("watch", pflag.ContinueOnError)
	flags.Int("page-size", 0, "")
	require.NoError(t, flags.Parse(nil))

	cfg, err := Load("", flags)
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.PageSize, "an unset flag must not override the file")

	require.NoError(t, flags.Parse([]string{"--page-size", "50"}))
	cfg, err = Load("", flags)
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.PageSize)
}

func TestLoad_ExplicitPath(t *testing.T) {
	isolatedHome(t)
	path := filepath.Join(t.TempDir(), "alt.yaml")
	require.NoError(t, os.WriteFile(path, []byte("output: json\n"), 0o600))

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Output)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	assert.True(t, errors.HasCode(err, errors.ErrCodeFileReadFailed), "got %v", err)
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"relative url", "api_url: portal.local/api\n"},
		{"poll too fast", "poll_interval: 10ms\n"},
		{"unknown output", "output: xml\n"},
		{"zero timeout", "request_timeout: 0s\n"},
		{"zero page size", "page_size: 0\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			home := isolatedHome(t)
			writeConfig(t, home, tt.body)

			_, err := Load("", nil)
			assert.True(t, errors.HasCode(err, errors.ErrCodeConfigInvalid), "got %v", err)
		})
	}
}

func TestLoad_MalformedFile(t *testing.T) {
	home := isolatedHome(t)
	writeConfig(t, home, "api_url: [unterminated\n")

	_, err := Load("", nil)
	assert.True(t, errors.HasCode(err, errors.ErrCodeFileUnmarshal), "got %v", err)
}

func TestLoad_Telemetry(t *testing.T) {
	home := isolatedHome(t)

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.False(t, cfg.Tracing().Enabled)
	assert.Equal(t, 1.0, cfg.Tracing().SampleRate)

	writeConfig(t, home, `
telemetry:
  enabled: true
  endpoint: otel.example.edu:4318
  sample_rate: 0.25
`)
	cfg, err = Load("", nil)
	require.NoError(t, err)
	tc := cfg.Tracing()
	assert.True(t, tc.Enabled)
	assert.Equal(t, "otel.example.edu:4318", tc.Endpoint)
	assert.Equal(t, 0.25, tc.SampleRate)
	assert.Equal(t, "placement", tc.ServiceName)

	writeConfig(t, home, "telemetry:\n  sample_rate: 2\n")
	_, err = Load("", nil)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeConfigInvalid))
}
