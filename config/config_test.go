package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/qyinm/offtui/browse"
	"github.com/qyinm/offtui/offapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "offtui.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, offapi.DefaultBaseURL, cfg.Catalog.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.Catalog.Timeout)
	assert.Equal(t, 20, cfg.Catalog.PageSize)
	assert.Equal(t, "category", cfg.Browse.Precedence)
	assert.True(t, cfg.Browse.ResetPage)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "8080", cfg.Web.Port)
	assert.Equal(t, "8081", cfg.MCP.Port)
	assert.Equal(t, 15*time.Minute, cfg.MCP.SessionTimeout)
	assert.Empty(t, cfg.MCP.AllowedOrigins)

	opts := cfg.Options()
	assert.Equal(t, browse.DefaultOptions(), opts)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
catalog:
  base_url: http://localhost:9999
  timeout: 3s
  rps: 5
browse:
  precedence: combined
  reset_page: false
log:
  level: debug
mcp:
  allowed_origins: ["https://a.example", "https://b.example"]
  api_key: secret
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:9999", cfg.Catalog.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.Catalog.Timeout)
	assert.Equal(t, 5.0, cfg.Catalog.RPS)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.MCP.AllowedOrigins)
	assert.Equal(t, "secret", cfg.MCP.APIKey)

	opts := cfg.Options()
	assert.Equal(t, browse.PrecedenceCombined, opts.Precedence)
	assert.False(t, opts.ResetPageOnQueryChange)

	client := cfg.Catalog.ClientConfig()
	assert.Equal(t, "http://localhost:9999", client.BaseURL)
	assert.Equal(t, 5, client.Burst)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "mcp:\n  port: \"9000\"\n")
	t.Setenv("OFFTUI_MCP_PORT", "9100")
	t.Setenv("OFFTUI_WEB_ALLOWED_ORIGINS", "https://x.example, https://y.example")
	t.Setenv("OFFTUI_BROWSE_PRECEDENCE", "Combined")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9100", cfg.MCP.Port)
	assert.Equal(t, []string{"https://x.example", "https://y.example"}, cfg.Web.AllowedOrigins)
	assert.Equal(t, "combined", cfg.Browse.Precedence)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"precedence": "browse:\n  precedence: term\n",
		"page size":  "catalog:\n  page_size: 0\n",
		"log level":  "log:\n  level: loud\n",
		"base url":   "catalog:\n  base_url: not a url\n",
		"port":       "web:\n  port: http\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid configuration")
		})
	}
}

func TestLogging(t *testing.T) {
	lc := LogConfig{Level: "warn", File: "/tmp/x.log", Development: true}
	got := lc.Logging()
	assert.Equal(t, "warn", got.Level)
	assert.Equal(t, "/tmp/x.log", got.File)
	assert.True(t, got.Development)
}
