package config

import (
	"errors"
	"os/user"
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	"github.com/zalando/go-keyring"
)

// Preference keys. The first two keep the names the Android settings screen used.
const (
	WifiOnlyPrefKey            = "pref_wifi"
	IntervalPrefKey            = "pref_interval"
	AppNotificationsEnabledKey = "app_notifications_enabled"
	AppUpdateCheckEnabledKey   = "app_update_check_enabled"
)

// OriginTokenKeyringService is the keyring service the optional origin token is stored under.
const OriginTokenKeyringService = AppName + "_origin_token"

// Preference defaults.
const (
	DefaultWifiOnly      = true
	DefaultIntervalHours = 6
)

// IntervalChoices are the rotation intervals offered in the tray, in hours.
var IntervalChoices = []int{1, 3, 6, 12, 24}

// AppConfig holds the user preferences of the application
type AppConfig struct {
	prefs  fyne.Preferences
	userid string
}

// NewAppConfig creates a new AppConfig instance
func NewAppConfig(p fyne.Preferences) *AppConfig {
	uid := "default"
	if u, err := user.Current(); err == nil {
		uid = u.Uid
	}
	return &AppConfig{prefs: p, userid: uid}
}

// GetWifiOnly returns whether artwork should only be fetched over Wi-Fi
func (c *AppConfig) GetWifiOnly() bool {
	return c.prefs.BoolWithFallback(WifiOnlyPrefKey, DefaultWifiOnly)
}

// SetWifiOnly sets whether artwork should only be fetched over Wi-Fi
func (c *AppConfig) SetWifiOnly(enabled bool) {
	c.prefs.SetBool(WifiOnlyPrefKey, enabled)
}

// GetIntervalHours returns the rotation interval in hours. The preference is stored as a
// string; anything that does not parse to a positive integer yields the default.
func (c *AppConfig) GetIntervalHours() int {
	raw := c.prefs.StringWithFallback(IntervalPrefKey, strconv.Itoa(DefaultIntervalHours))
	hours, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || hours <= 0 {
		return DefaultIntervalHours
	}
	return hours
}

// SetIntervalHours sets the rotation interval in hours.
func (c *AppConfig) SetIntervalHours(hours int) error {
	if hours <= 0 {
		return errors.New("interval must be a positive number of hours")
	}
	c.prefs.SetString(IntervalPrefKey, strconv.Itoa(hours))
	return nil
}

// GetAppNotificationsEnabled returns whether system notifications are enabled
func (c *AppConfig) GetAppNotificationsEnabled() bool {
	return c.prefs.BoolWithFallback(AppNotificationsEnabledKey, true)
}

// SetAppNotificationsEnabled sets whether system notifications are enabled
func (c *AppConfig) SetAppNotificationsEnabled(enabled bool) {
	c.prefs.SetBool(AppNotificationsEnabledKey, enabled)
}

// GetUpdateCheckEnabled returns whether the application should check for updates
func (c *AppConfig) GetUpdateCheckEnabled() bool {
	return c.prefs.BoolWithFallback(AppUpdateCheckEnabledKey, true)
}

// SetUpdateCheckEnabled sets whether the application should check for updates
func (c *AppConfig) SetUpdateCheckEnabled(enabled bool) {
	c.prefs.SetBool(AppUpdateCheckEnabledKey, enabled)
}

// GetOriginToken returns the origin bearer token from the keyring, or "" when none is stored.
func (c *AppConfig) GetOriginToken() (string, error) {
	token, err := keyring.Get(OriginTokenKeyringService, c.userid)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", nil
	}
	return token, err
}

// SetOriginToken stores the origin bearer token in the keyring. An empty token removes it.
func (c *AppConfig) SetOriginToken(token string) error {
	if token == "" {
		err := keyring.Delete(OriginTokenKeyringService, c.userid)
		if err != nil && !errors.Is(err, keyring.ErrNotFound) {
			return err
		}
		return nil
	}
	return keyring.Set(OriginTokenKeyringService, c.userid, token)
}

// AddChangeListener registers fn to be called when any preference changes.
func (c *AppConfig) AddChangeListener(fn func()) {
	c.prefs.AddChangeListener(fn)
}
