package tts

import (
	"context"
	"fmt"

	"github.com/lunachat/luna/internal/store"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// OpenAISpeech synthesizes speech through an OpenAI-compatible
// /audio/speech endpoint. The API has no voice-cloning support, so a
// supplied reference sample is ignored.
type OpenAISpeech struct {
	client *openai.Client
	model  string
	voice  string
	store  *store.FileStore
	logger *zap.Logger
}

func NewOpenAISpeech(baseURL, apiKey, model, voice string, fileStore *store.FileStore, logger *zap.Logger) *OpenAISpeech {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = baseURL
	return &OpenAISpeech{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
		voice:  voice,
		store:  fileStore,
		logger: logger,
	}
}

func (s *OpenAISpeech) Synthesize(ctx context.Context, text, referencePath string) (string, error) {
	if referencePath != "" {
		s.logger.Debug("openai speech backend cannot clone voices, reference ignored",
			zap.String("path", referencePath))
	}

	resp, err := s.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(s.model),
		Input:          text,
		Voice:          openai.SpeechVoice(s.voice),
		ResponseFormat: openai.SpeechResponseFormatWav,
	})
	if err != nil {
		return "", fmt.Errorf("synthesis request failed: %w", err)
	}
	defer resp.Close()

	path, err := s.store.Save(store.KindResponse, resp)
	if err != nil {
		return "", fmt.Errorf("failed to store synthesized audio: %w", err)
	}
	return path, nil
}
