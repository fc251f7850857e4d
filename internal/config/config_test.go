package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noEnv(string) string { return "" }

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "http://localhost:8001/api", cfg.API.BaseURL)
	assert.Equal(t, "15s", cfg.API.Timeout)
	assert.Equal(t, 15*time.Second, cfg.API.CallTimeout)
	assert.Equal(t, BackendSQLite, cfg.Storage.Backend)
	assert.Equal(t, "", cfg.Storage.Path)
	assert.Equal(t, "cart-items", cfg.Storage.Slot)
	assert.False(t, cfg.Cart.StrictQuantities)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestParse_FileValuesWin(t *testing.T) {
	cfg, err := Loader{Getenv: noEnv}.Parse([]byte(`
api:
  base_url: https://shop.example.com/api
  timeout: 2.5s
storage:
  backend: file
  path: /var/lib/storefront
cart:
  strict_quantities: true
log:
  level: debug
`))
	require.NoError(t, err)

	assert.Equal(t, "https://shop.example.com/api", cfg.API.BaseURL)
	assert.Equal(t, 2500*time.Millisecond, cfg.API.CallTimeout)
	assert.Equal(t, BackendFile, cfg.Storage.Backend)
	assert.Equal(t, "/var/lib/storefront", cfg.Storage.Path)
	assert.Equal(t, "cart-items", cfg.Storage.Slot, "unset keys keep defaults")
	assert.True(t, cfg.Cart.StrictQuantities)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestParse_EnvOverridesFile(t *testing.T) {
	l := Loader{Getenv: envMap(map[string]string{
		EnvAPIURL:   "http://10.0.0.5:8001/api",
		EnvDB:       "/tmp/cart.db",
		EnvLogLevel: "warn",
	})}

	cfg, err := l.Parse([]byte("api:\n  base_url: https://shop.example.com/api\n"))
	require.NoError(t, err)

	assert.Equal(t, "http://10.0.0.5:8001/api", cfg.API.BaseURL)
	assert.Equal(t, "/tmp/cart.db", cfg.Storage.Path)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestParse_Invalid(t *testing.T) {
	tests := map[string]string{
		"bad yaml":        "api: [",
		"bad backend":     "storage:\n  backend: redis\n",
		"bad url":         "api:\n  base_url: localhost:8001\n",
		"bad timeout":     "api:\n  timeout: soon\n",
		"zero timeout":    "api:\n  timeout: 0s\n",
		"bad level":       "log:\n  level: trace\n",
		"bad slot":        "storage:\n  slot: ../escape\n",
		"wrong type":      "cart:\n  strict_quantities: \"yes\"\n",
		"unknown section": "metrics:\n  enabled: true\n",
		"unknown key":     "api:\n  retries: 3\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Loader{Getenv: noEnv}.Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestParse_InvalidEnv(t *testing.T) {
	_, err := Loader{Getenv: envMap(map[string]string{EnvAPIURL: "not-a-url"})}.Parse(nil)
	assert.Error(t, err)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storefront.yaml")
	require.NoError(t, os.WriteFile(path, []byte("storage:\n  slot: my-cart\n"), 0o600))

	cfg, err := Loader{Getenv: noEnv}.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "my-cart", cfg.Storage.Slot)
}

func TestLoad_EmptyPathUsesDefaults(t *testing.T) {
	cfg, err := Loader{Getenv: noEnv}.Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Loader{Getenv: noEnv}.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad_ErrorNamesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: loud\n"), 0o600))

	_, err := Loader{Getenv: noEnv}.Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.yaml")
}
