package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/zalando/go-keyring"
)

// MockPreferences implements fyne.Preferences for testing
type MockPreferences struct {
	data      map[string]interface{}
	listeners []func()
}

func NewMockPreferences() *MockPreferences {
	return &MockPreferences{
		data: make(map[string]interface{}),
	}
}

func (m *MockPreferences) set(key string, value interface{}) {
	m.data[key] = value
	for _, fn := range m.listeners {
		fn()
	}
}

func (m *MockPreferences) Bool(key string) bool {
	return m.BoolWithFallback(key, false)
}

func (m *MockPreferences) BoolWithFallback(key string, fallback bool) bool {
	val, ok := m.data[key]
	if !ok {
		return fallback
	}
	return val.(bool)
}

func (m *MockPreferences) SetBool(key string, value bool) { m.set(key, value) }

func (m *MockPreferences) Float(key string) float64 {
	return m.FloatWithFallback(key, 0.0)
}

func (m *MockPreferences) FloatWithFallback(key string, fallback float64) float64 {
	val, ok := m.data[key]
	if !ok {
		return fallback
	}
	return val.(float64)
}

func (m *MockPreferences) SetFloat(key string, value float64) { m.set(key, value) }

func (m *MockPreferences) Int(key string) int {
	return m.IntWithFallback(key, 0)
}

func (m *MockPreferences) IntWithFallback(key string, fallback int) int {
	val, ok := m.data[key]
	if !ok {
		return fallback
	}
	return val.(int)
}

func (m *MockPreferences) SetInt(key string, value int) { m.set(key, value) }

func (m *MockPreferences) String(key string) string {
	return m.StringWithFallback(key, "")
}

func (m *MockPreferences) StringWithFallback(key string, fallback string) string {
	val, ok := m.data[key]
	if !ok {
		return fallback
	}
	return val.(string)
}

func (m *MockPreferences) SetString(key string, value string) { m.set(key, value) }

func (m *MockPreferences) StringList(key string) []string {
	return m.StringListWithFallback(key, []string{})
}

func (m *MockPreferences) StringListWithFallback(key string, fallback []string) []string {
	val, ok := m.data[key]
	if !ok {
		return fallback
	}
	return val.([]string)
}

func (m *MockPreferences) SetStringList(key string, value []string) { m.set(key, value) }

func (m *MockPreferences) BoolList(key string) []bool {
	return m.BoolListWithFallback(key, []bool{})
}

func (m *MockPreferences) BoolListWithFallback(key string, fallback []bool) []bool {
	val, ok := m.data[key]
	if !ok {
		return fallback
	}
	return val.([]bool)
}

func (m *MockPreferences) SetBoolList(key string, value []bool) { m.set(key, value) }

func (m *MockPreferences) FloatList(key string) []float64 {
	return m.FloatListWithFallback(key, []float64{})
}

func (m *MockPreferences) FloatListWithFallback(key string, fallback []float64) []float64 {
	val, ok := m.data[key]
	if !ok {
		return fallback
	}
	return val.([]float64)
}

func (m *MockPreferences) SetFloatList(key string, value []float64) { m.set(key, value) }

func (m *MockPreferences) IntList(key string) []int {
	return m.IntListWithFallback(key, []int{})
}

func (m *MockPreferences) IntListWithFallback(key string, fallback []int) []int {
	val, ok := m.data[key]
	if !ok {
		return fallback
	}
	return val.([]int)
}

func (m *MockPreferences) SetIntList(key string, value []int) { m.set(key, value) }

func (m *MockPreferences) RemoveValue(key string) {
	delete(m.data, key)
}

func (m *MockPreferences) AddChangeListener(fn func()) {
	m.listeners = append(m.listeners, fn)
}

func (m *MockPreferences) ChangeListeners() []func() {
	return m.listeners
}

func TestAppConfig(t *testing.T) {
	prefs := NewMockPreferences()
	cfg := NewAppConfig(prefs)

	t.Run("WifiOnly", func(t *testing.T) {
		// Default should be true
		assert.True(t, cfg.GetWifiOnly())

		cfg.SetWifiOnly(false)
		assert.False(t, cfg.GetWifiOnly())
		assert.Equal(t, false, prefs.data[WifiOnlyPrefKey])

		cfg.SetWifiOnly(true)
		assert.True(t, cfg.GetWifiOnly())
	})

	t.Run("Interval", func(t *testing.T) {
		// Default should be 6 hours
		assert.Equal(t, 6, cfg.GetIntervalHours())

		assert.NoError(t, cfg.SetIntervalHours(12))
		assert.Equal(t, 12, cfg.GetIntervalHours())
		// Stored as a string, like the original settings screen did
		assert.Equal(t, "12", prefs.data[IntervalPrefKey])

		assert.Error(t, cfg.SetIntervalHours(0))
		assert.Equal(t, 12, cfg.GetIntervalHours())
	})

	t.Run("InvalidIntervalFallsBack", func(t *testing.T) {
		for _, raw := range []string{"", "abc", "0", "-3"} {
			prefs.SetString(IntervalPrefKey, raw)
			assert.Equal(t, DefaultIntervalHours, cfg.GetIntervalHours(), "raw=%q", raw)
		}
		prefs.SetString(IntervalPrefKey, " 3 ")
		assert.Equal(t, 3, cfg.GetIntervalHours())
	})

	t.Run("Notifications", func(t *testing.T) {
		// Default should be true
		assert.True(t, cfg.GetAppNotificationsEnabled())

		cfg.SetAppNotificationsEnabled(false)
		assert.False(t, cfg.GetAppNotificationsEnabled())

		cfg.SetAppNotificationsEnabled(true)
		assert.True(t, cfg.GetAppNotificationsEnabled())
	})

	t.Run("UpdateCheck", func(t *testing.T) {
		// Default should be true
		assert.True(t, cfg.GetUpdateCheckEnabled())

		cfg.SetUpdateCheckEnabled(false)
		assert.False(t, cfg.GetUpdateCheckEnabled())
	})

	t.Run("ChangeListener", func(t *testing.T) {
		calls := 0
		cfg.AddChangeListener(func() { calls++ })
		cfg.SetWifiOnly(false)
		assert.Equal(t, 1, calls)
	})
}

func TestOriginToken(t *testing.T) {
	keyring.MockInit()
	cfg := NewAppConfig(NewMockPreferences())

	token, err := cfg.GetOriginToken()
	assert.NoError(t, err)
	assert.Equal(t, "", token)

	assert.NoError(t, cfg.SetOriginToken("s3cret"))
	token, err = cfg.GetOriginToken()
	assert.NoError(t, err)
	assert.Equal(t, "s3cret", token)

	stored, err := keyring.Get("OnWeekdays_origin_token", cfg.userid)
	assert.NoError(t, err)
	assert.Equal(t, "s3cret", stored)

	assert.NoError(t, cfg.SetOriginToken(""))
	token, err = cfg.GetOriginToken()
	assert.NoError(t, err)
	assert.Equal(t, "", token)

	// Removing twice is fine
	assert.NoError(t, cfg.SetOriginToken(""))
}
