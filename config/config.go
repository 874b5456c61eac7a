// Package config provides configuration management for the OnWeekdays art source.
package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the daemon configuration. User-facing preferences live in AppConfig.
type Config struct {
	Endpoint        string        `mapstructure:"endpoint"`
	PhotoPath       string        `mapstructure:"photo-path"`
	RequestTimeout  time.Duration `mapstructure:"request-timeout"`
	UserAgent       string        `mapstructure:"user-agent"`
	ConnectivityURL string        `mapstructure:"connectivity-url"`
	APIEnabled      bool          `mapstructure:"api-enabled"`
	APIAddr         string        `mapstructure:"api-addr"`
	DataDir         string        `mapstructure:"data-dir"`
	SetWallpaper    bool          `mapstructure:"set-wallpaper"`

	// ConfigPath is the file the configuration was read from, empty when defaults were used.
	ConfigPath string `mapstructure:"-"`
}

// GetPath returns the path to the user's config directory
func GetPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "." + strings.ToLower(AppName)
	}
	return filepath.Join(homeDir, "."+strings.ToLower(AppName))
}

// GetFilename returns the path to the user's config file
func GetFilename() string {
	return filepath.Join(GetPath(), "config.json")
}

// Load reads the configuration from configPath, or the default config file when empty.
// Environment variables (ONWEEKDAYS_*) override the file, which overrides built-in defaults.
// A missing config file is not an error.
func Load(configPath string) (Config, error) {
	var cfg Config

	v := viper.New()
	v.SetEnvPrefix(strings.ToUpper(AppName))
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("endpoint", DefaultEndpoint)
	v.SetDefault("photo-path", DefaultPhotoPath)
	v.SetDefault("request-timeout", 30*time.Second)
	v.SetDefault("user-agent", AppName+"/"+AppVersion)
	v.SetDefault("connectivity-url", DefaultConnectivityURL)
	v.SetDefault("api-enabled", true)
	v.SetDefault("api-addr", DefaultAPIAddr)
	v.SetDefault("data-dir", GetPath())
	v.SetDefault("set-wallpaper", true)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigFile(GetFilename())
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("reading config: %w", err)
		}
	} else {
		cfg.ConfigPath = v.ConfigFileUsed()
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding config: %w", err)
	}

	if strings.HasPrefix(cfg.DataDir, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			cfg.DataDir = filepath.Join(home, cfg.DataDir[2:])
		}
	}

	return cfg, cfg.Validate()
}

// Validate checks the configuration for values the daemon cannot run with.
func (c Config) Validate() error {
	u, err := url.Parse(c.Endpoint)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("invalid endpoint: %q", c.Endpoint)
	}
	if !strings.HasPrefix(c.PhotoPath, "/") {
		return fmt.Errorf("invalid photo-path: %q (must start with /)", c.PhotoPath)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("invalid request-timeout: %v", c.RequestTimeout)
	}
	if c.APIEnabled {
		if _, _, err := net.SplitHostPort(c.APIAddr); err != nil {
			return fmt.Errorf("invalid api-addr %q: %w", c.APIAddr, err)
		}
	}
	if c.DataDir == "" {
		return errors.New("data-dir must not be empty")
	}
	return nil
}

// PhotoURL returns the full URL of the random photo resource.
func (c Config) PhotoURL() string {
	return strings.TrimRight(c.Endpoint, "/") + c.PhotoPath
}

// StatePath returns the path of the state database.
func (c Config) StatePath() string {
	return filepath.Join(c.DataDir, "state.db")
}

// CacheDir returns the directory downloaded artwork images are kept in.
func (c Config) CacheDir() string {
	return filepath.Join(c.DataDir, "artwork")
}
