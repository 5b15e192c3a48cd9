package recap

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.True(t, cfg.Enabled)
	assert.Equal(t, 0.8, cfg.Threshold)
	assert.Empty(t, cfg.Provider)
	assert.Empty(t, cfg.Model)
	assert.True(t, cfg.NotifyUser)
	assert.False(t, cfg.UseSimplePrompt)
	assert.Equal(t, DefaultSummaryPrompt, cfg.SummaryPrompt)
	assert.Equal(t, DefaultSimplePrompt, cfg.SimplePrompt)
	assert.Equal(t, 2, cfg.RetainRecentCount)

	require.NoError(t, cfg.Validate())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		errPart string
	}{
		{"valid", func(c *Config) {}, ""},
		{"threshold zero ok", func(c *Config) { c.Threshold = 0 }, ""},
		{"threshold one ok", func(c *Config) { c.Threshold = 1 }, ""},
		{"threshold negative", func(c *Config) { c.Threshold = -0.1 }, "threshold"},
		{"threshold above one", func(c *Config) { c.Threshold = 1.1 }, "threshold"},
		{"negative retain", func(c *Config) { c.RetainRecentCount = -1 }, "retain_recent_count"},
		{"retain zero ok", func(c *Config) { c.RetainRecentCount = 0 }, ""},
		{"empty summary prompt", func(c *Config) { c.SummaryPrompt = "" }, "summary_prompt"},
		{"empty simple prompt", func(c *Config) { c.SimplePrompt = "" }, "simple_prompt"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.errPart == "" {
				assert.NoError(t, err)
				return
			}
			var vErr *ConfigValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Contains(t, err.Error(), tc.errPart)
		})
	}
}

func TestConfig_ApplyUpdate(t *testing.T) {
	cfg := DefaultConfig()

	next, err := cfg.ApplyUpdate([]byte(
		`{"threshold": 0.7, "retain_recent_count": 4, "enabled": false}`,
	))
	require.NoError(t, err)

	assert.Equal(t, 0.7, next.Threshold)
	assert.Equal(t, 4, next.RetainRecentCount)
	assert.False(t, next.Enabled)

	// Untouched fields are carried over.
	assert.Equal(t, DefaultSummaryPrompt, next.SummaryPrompt)
	assert.True(t, next.NotifyUser)

	// The receiver is never mutated.
	assert.Equal(t, 0.8, cfg.Threshold)
	assert.True(t, cfg.Enabled)
}

func TestConfig_ApplyUpdate_AllFields(t *testing.T) {
	cfg := DefaultConfig()
	next, err := cfg.ApplyUpdate([]byte(`{
		"enabled": false,
		"threshold": 0.5,
		"provider": "cheap",
		"model": "cheap-small",
		"notify_user": false,
		"use_simple_prompt": true,
		"summary_prompt": "full prompt",
		"simple_prompt": "short prompt",
		"retain_recent_count": 0
	}`))
	require.NoError(t, err)
	assert.Equal(t, Config{
		Enabled:           false,
		Threshold:         0.5,
		Provider:          "cheap",
		Model:             "cheap-small",
		NotifyUser:        false,
		UseSimplePrompt:   true,
		SummaryPrompt:     "full prompt",
		SimplePrompt:      "short prompt",
		RetainRecentCount: 0,
	}, next)
}

func TestConfig_ApplyUpdate_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		partial string
	}{
		{"not JSON", `{"threshold":`},
		{"unknown field", `{"thresold": 0.5}`},
		{"threshold out of range", `{"threshold": 1.5}`},
		{"threshold wrong type", `{"threshold": "high"}`},
		{"enabled wrong type", `{"enabled": "yes"}`},
		{"negative retain", `{"retain_recent_count": -1}`},
		{"fractional retain", `{"retain_recent_count": 1.5}`},
		{"empty summary prompt", `{"summary_prompt": ""}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			next, err := cfg.ApplyUpdate([]byte(tc.partial))

			var vErr *ConfigValidationError
			require.ErrorAs(t, err, &vErr)
			// The original config is returned unchanged.
			assert.Equal(t, cfg, next)
		})
	}
}

func TestConfigValidationError_Unwrap(t *testing.T) {
	inner := errors.New("inner")
	err := &ConfigValidationError{Err: inner}
	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "config validation failed")
}
