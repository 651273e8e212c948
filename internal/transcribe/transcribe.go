package transcribe

import (
	"context"
	"fmt"
	"os"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// maxAudioBytes matches the upload cap enforced at the HTTP boundary.
const maxAudioBytes = 16 << 20

// Service wraps a Whisper-compatible transcription endpoint. Groq
// exposes one behind its OpenAI-compatible API, which is what the
// default configuration points at.
type Service struct {
	client *openai.Client
	model  string
}

func New(baseURL, apiKey, model string) *Service {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = baseURL
	return &Service{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

// Transcribe sends the audio file at path to the transcription service
// and returns the recognized text. The caller owns the file; it is
// never deleted here.
func (s *Service) Transcribe(ctx context.Context, path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("audio file unavailable: %w", err)
	}
	if info.Size() == 0 {
		return "", fmt.Errorf("audio file %s is empty", path)
	}
	if info.Size() > maxAudioBytes {
		return "", fmt.Errorf("audio file %s exceeds %d bytes", path, maxAudioBytes)
	}

	resp, err := s.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    s.model,
		FilePath: path,
		Format:   openai.AudioResponseFormatText,
	})
	if err != nil {
		return "", fmt.Errorf("transcription request failed: %w", err)
	}
	return strings.TrimSpace(resp.Text), nil
}
