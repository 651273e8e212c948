package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "gsk_test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8100", cfg.Addr)
	assert.Equal(t, "gsk_test", cfg.GroqAPIKey)
	assert.Equal(t, "https://api.groq.com/openai/v1", cfg.GroqBaseURL)
	assert.Equal(t, "llama-3.3-70b-versatile", cfg.ChatModel)
	assert.Equal(t, "whisper-large-v3-turbo", cfg.WhisperModel)
	assert.Equal(t, TTSBackendChatterbox, cfg.TTSBackend)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, time.Hour, cfg.AudioTTL)
	assert.NotEmpty(t, cfg.TempDir)
}

func TestLoadRequiresAPIKey(t *testing.T) {
	// t.Setenv registers cleanup even though we unset immediately after
	t.Setenv("GROQ_API_KEY", "x")
	os.Unsetenv("GROQ_API_KEY")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsEmptyAPIKey(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsUnknownTTSBackend(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "gsk_test")
	t.Setenv("TTS_BACKEND", "espeak")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TTS_BACKEND")
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "gsk_test")
	t.Setenv("ADDR", ":9000")
	t.Setenv("TTS_BACKEND", "openai")
	t.Setenv("REQUEST_TIMEOUT", "10s")
	t.Setenv("TEMP_DIR", "/tmp/luna-test")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Addr)
	assert.Equal(t, TTSBackendOpenAI, cfg.TTSBackend)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "/tmp/luna-test", cfg.TempDir)
}
