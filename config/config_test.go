package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)

	assert.Equal(t, DefaultEndpoint, cfg.Endpoint)
	assert.Equal(t, DefaultPhotoPath, cfg.PhotoPath)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, AppName+"/"+AppVersion, cfg.UserAgent)
	assert.True(t, cfg.APIEnabled)
	assert.Equal(t, DefaultAPIAddr, cfg.APIAddr)
	assert.True(t, cfg.SetWallpaper)
	assert.Empty(t, cfg.ConfigPath)
	assert.Equal(t, "http://onweekdays.ulmus.cz/api/photo/random", cfg.PhotoURL())
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	content := `{
		"endpoint": "https://photos.example.org/",
		"photo-path": "/v2/random",
		"request-timeout": "10s",
		"api-enabled": false,
		"data-dir": "` + filepath.ToSlash(dir) + `"
	}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	t.Setenv("ONWEEKDAYS_USER_AGENT", "custom-agent")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, path, cfg.ConfigPath)
	assert.Equal(t, "https://photos.example.org/v2/random", cfg.PhotoURL())
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.False(t, cfg.APIEnabled)
	assert.Equal(t, "custom-agent", cfg.UserAgent)
	assert.Equal(t, filepath.Join(dir, "state.db"), cfg.StatePath())
	assert.Equal(t, filepath.Join(dir, "artwork"), cfg.CacheDir())
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := Config{
		Endpoint:       DefaultEndpoint,
		PhotoPath:      DefaultPhotoPath,
		RequestTimeout: time.Second,
		APIEnabled:     true,
		APIAddr:        DefaultAPIAddr,
		DataDir:        "/tmp/onweekdays",
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"Endpoint without scheme", func(c *Config) { c.Endpoint = "onweekdays.ulmus.cz" }},
		{"FTP endpoint", func(c *Config) { c.Endpoint = "ftp://onweekdays.ulmus.cz" }},
		{"Relative photo path", func(c *Config) { c.PhotoPath = "api/photo" }},
		{"Zero timeout", func(c *Config) { c.RequestTimeout = 0 }},
		{"Bad API address", func(c *Config) { c.APIAddr = "localhost" }},
		{"Empty data dir", func(c *Config) { c.DataDir = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)
			assert.Error(t, c.Validate())
		})
	}

	disabled := valid
	disabled.APIEnabled = false
	disabled.APIAddr = ""
	assert.NoError(t, disabled.Validate())
}
