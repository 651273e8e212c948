package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// TTS backend selectors.
const (
	TTSBackendChatterbox = "chatterbox"
	TTSBackendOpenAI     = "openai"
)

// Config is read once from the environment at startup. A missing
// GROQ_API_KEY is fatal before the server starts listening.
type Config struct {
	Addr string `env:"ADDR" envDefault:":8100"`

	GroqAPIKey  string `env:"GROQ_API_KEY,required,notEmpty"`
	GroqBaseURL string `env:"GROQ_BASE_URL" envDefault:"https://api.groq.com/openai/v1"`

	ChatModel    string `env:"CHAT_MODEL" envDefault:"llama-3.3-70b-versatile"`
	WhisperModel string `env:"WHISPER_MODEL" envDefault:"whisper-large-v3-turbo"`

	TTSBackend    string `env:"TTS_BACKEND" envDefault:"chatterbox"`
	ChatterboxURL string `env:"CHATTERBOX_URL" envDefault:"http://localhost:8004"`
	SpeechModel   string `env:"SPEECH_MODEL" envDefault:"playai-tts"`
	SpeechVoice   string `env:"SPEECH_VOICE" envDefault:"Fritz-PlayAI"`

	TempDir        string        `env:"TEMP_DIR"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`
	AudioTTL       time.Duration `env:"AUDIO_TTL" envDefault:"1h"`
	ReapInterval   time.Duration `env:"REAP_INTERVAL" envDefault:"5m"`
}

// Load reads .env if present, then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}

	switch cfg.TTSBackend {
	case TTSBackendChatterbox, TTSBackendOpenAI:
	default:
		return nil, fmt.Errorf("unknown TTS_BACKEND %q", cfg.TTSBackend)
	}

	if cfg.TempDir == "" {
		cfg.TempDir = filepath.Join(os.TempDir(), "luna")
	}
	return &cfg, nil
}
