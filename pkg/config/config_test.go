package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("POSTGRES_PORT", "")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "gpt-4o", cfg.OpenAI.Model)
	assert.Equal(t, 90*time.Second, cfg.OpenAI.Timeout)
	assert.Equal(t, 150, cfg.Extraction.RenderDPI)
	assert.Equal(t, "local", cfg.Storage.Type)
	assert.False(t, cfg.VisionAvailable())
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("OPENAI_TIMEOUT", "30s")
	t.Setenv("OPENAI_REQUESTS_PER_SECOND", "0.5")
	t.Setenv("POSTGRES_HOST", "db")
	t.Setenv("POSTGRES_PORT", "6543")
	t.Setenv("STORAGE_MAX_BYTES", "1024")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.True(t, cfg.VisionAvailable())
	assert.Equal(t, 30*time.Second, cfg.OpenAI.Timeout)
	assert.InDelta(t, 0.5, cfg.OpenAI.RequestsPerSecond, 1e-9)
	assert.Equal(t, int64(1024), cfg.Storage.MaxBytes)
	assert.Contains(t, cfg.Database.DSN(), "host=db port=6543")
}

func TestFromEnv_VisionSwitchedOff(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("EXTRACTION_VISION_ENABLED", "false")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.False(t, cfg.VisionAvailable())
}

func TestFromEnv_Invalid(t *testing.T) {
	t.Setenv("EXTRACTION_RENDER_DPI", "0")
	_, err := FromEnv()
	assert.Error(t, err)
}

func TestFromEnv_BadNumbersFallBack(t *testing.T) {
	t.Setenv("POSTGRES_PORT", "not-a-port")
	t.Setenv("OPENAI_TIMEOUT", "soon")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, 90*time.Second, cfg.OpenAI.Timeout)
}
