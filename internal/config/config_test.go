package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 15, cfg.HTTP.TimeoutSecs)
	assert.Equal(t, "Norgesglass/1.0 github.com/norgesglass", cfg.HTTP.UserAgent)
	require.Len(t, cfg.HTTP.RateLimits, 4)
	assert.Equal(t, "api.met.no", cfg.HTTP.RateLimits[0].Host)
	assert.InDelta(t, 10.0, cfg.HTTP.RateLimits[0].RPS, 0.001)
	assert.Equal(t, "https://ws.geonorge.no", cfg.Sources.GeonorgeURL)
	assert.Equal(t, "https://api.met.no/weatherapi", cfg.Sources.MetURL)
	assert.Equal(t, 14, cfg.Lookup.Zoom)
	assert.InDelta(t, 5.0, cfg.Lookup.StoreRadiusKm, 0.001)
	assert.Equal(t, []string{"narvesen"}, cfg.Lookup.StoreChains)
	assert.True(t, cfg.Lookup.CancelSuperseded)
	assert.Equal(t, 250, cfg.Search.DebounceMs)
	assert.Equal(t, 2, cfg.Search.MinChars)
	assert.Equal(t, map[string]string{"narvesen": "https://narvesen.no/finn-butikk"}, cfg.Stores.Directories)
	assert.Equal(t, int64(2*1024*1024), cfg.Stores.MaxBodyBytes)
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
log:
  level: debug
  format: json
search:
  debounce_ms: 100
lookup:
  store_chains: [narvesen]
  store_radius_km: 2.5
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 100, cfg.Search.DebounceMs)
	assert.Equal(t, []string{"narvesen"}, cfg.Lookup.StoreChains)
	assert.InDelta(t, 2.5, cfg.Lookup.StoreRadiusKm, 0.001)
	// Defaults still apply for unset values
	assert.Equal(t, 2, cfg.Search.MinChars)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("NORGESGLASS_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadNVEKeyFromBareEnv(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	t.Setenv("NVE_API_KEY", "secret-key")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "secret-key", cfg.Sources.NVEAPIKey)
	assert.Equal(t, "********", cfg.Redacted().Sources.NVEAPIKey)
	assert.Equal(t, "secret-key", cfg.Sources.NVEAPIKey, "Redacted must not mutate the receiver")
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("NORGESGLASS_SEARCH_MIN_CHARS=3\n"), 0644))
	t.Cleanup(func() { os.Unsetenv("NORGESGLASS_SEARCH_MIN_CHARS") })

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Search.MinChars)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Search: SearchConfig{DebounceMs: 250, MinChars: 2},
			Lookup: LookupConfig{StoreRadiusKm: 5, StoreChains: []string{"narvesen"}},
			Stores: StoresConfig{Directories: map[string]string{"narvesen": "https://narvesen.no/finn-butikk"}},
		}
	}

	assert.NoError(t, valid().Validate())

	cfg := valid()
	cfg.Search.MinChars = 0
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "min_chars")

	cfg = valid()
	cfg.Lookup.StoreRadiusKm = -1
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store_radius_km")

	cfg = valid()
	cfg.Lookup.StoreChains = []string{"rema"}
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"rema"`)
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "norgesglass.log")
	require.NoError(t, InitLogger(LogConfig{Level: "info", Format: "json", File: path}))

	zap.L().Info("hello file")
	_ = zap.L().Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello file")
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}
