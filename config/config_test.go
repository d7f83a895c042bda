package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig_FileAndDefaults(t *testing.T) {
	path := writeConfig(t, `
weaviate:
  url: https://kb.example.com/
  class: Docs
unstructured:
  strategy: hi_res
  max_characters: 1500
  new_after_n_chars: 1200
  overlap: 100
ingest:
  batch_size: 50
  title_prefix: Prairiewood
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "https://kb.example.com", cfg.Weaviate.Host)
	assert.Equal(t, "Docs", cfg.Weaviate.Class)
	assert.Equal(t, "like", cfg.Weaviate.SearchMode)
	assert.Equal(t, "hi_res", cfg.Unstructured.Strategy)
	assert.Equal(t, 1500, cfg.Unstructured.MaxCharacters)
	assert.Equal(t, 100, cfg.Unstructured.Overlap)
	assert.Equal(t, 60*time.Second, cfg.Unstructured.Timeout)
	assert.Equal(t, 50, cfg.Ingest.BatchSize)
	assert.Equal(t, 50, cfg.Ingest.MinContentLen)
	assert.Equal(t, "Prairiewood", cfg.Ingest.TitlePrefix)
	assert.Equal(t, DefaultSkipExtensions, cfg.Ingest.SkipExtensions)
	assert.Equal(t, "https://api.vapi.ai", cfg.Vapi.BaseURL)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
}

func TestLoadConfig_AllowedOrigins(t *testing.T) {
	path := writeConfig(t, "server:\n  allowed_origins:\n    - https://app.example.com\n    - https://admin.example.com\n")
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://app.example.com", "https://admin.example.com"}, cfg.Server.AllowedOrigins)
}

func TestLoadConfig_EnvOverridesSecrets(t *testing.T) {
	path := writeConfig(t, "weaviate:\n  url: http://localhost:8080\n")
	t.Setenv("WEAVIATE_API_KEY", "wv-key")
	t.Setenv("UNSTRUCTURED_API_KEY", "un-key")
	t.Setenv("VAPI_API_KEY", "vapi-key")
	t.Setenv("PORT", "9000")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "wv-key", cfg.Weaviate.APIKey)
	assert.Equal(t, "un-key", cfg.Unstructured.APIKey)
	assert.Equal(t, "vapi-key", cfg.Vapi.APIKey)
	assert.Equal(t, "9000", cfg.Server.Port)
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	path := writeConfig(t, "ingest:\n  batch_size: 10\n")
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	t.Run("only requested sections are checked", func(t *testing.T) {
		assert.Empty(t, cfg.Validate(0))
	})

	t.Run("missing secrets are reported per field", func(t *testing.T) {
		errs := cfg.Validate(NeedWeaviate | NeedUnstructured | NeedVapi)
		fields := make([]string, 0, len(errs))
		for _, e := range errs {
			fields = append(fields, e.Field)
		}
		assert.Contains(t, fields, "weaviate.url")
		assert.Contains(t, fields, "unstructured.api_key")
		assert.Contains(t, fields, "vapi.api_key")
	})

	t.Run("bad values", func(t *testing.T) {
		bad := *cfg
		bad.Weaviate.Host = "http://localhost:8080"
		bad.Weaviate.SearchMode = "fuzzy"
		bad.Ingest.BatchSize = 0
		bad.Ingest.SkipExtensions = []string{"png"}
		errs := bad.Validate(NeedWeaviate)
		assert.Len(t, errs, 3)
	})
}
