package tts

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/lunachat/luna/internal/store"
	"go.uber.org/zap"
)

// Chatterbox synthesizes speech through a Chatterbox TTS server. When
// a reference sample is supplied and readable, it is attached so the
// generated voice matches the sample's timbre.
type Chatterbox struct {
	baseURL    string
	httpClient *http.Client
	store      *store.FileStore
	logger     *zap.Logger
}

func NewChatterbox(baseURL string, fileStore *store.FileStore, logger *zap.Logger) *Chatterbox {
	return &Chatterbox{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 2 * time.Minute},
		store:      fileStore,
		logger:     logger,
	}
}

func (c *Chatterbox) Synthesize(ctx context.Context, text, referencePath string) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	if err := writer.WriteField("input", text); err != nil {
		return "", fmt.Errorf("failed to build synthesis request: %w", err)
	}
	if referencePath != "" {
		if err := c.attachReference(writer, referencePath); err != nil {
			// A vanished reference downgrades to the default voice
			// rather than failing the whole synthesis.
			c.logger.Warn("reference sample unavailable, using default voice",
				zap.String("path", referencePath), zap.Error(err))
		}
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to build synthesis request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/audio/speech", &body)
	if err != nil {
		return "", fmt.Errorf("failed to build synthesis request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("synthesis request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("synthesis server returned %d: %s", resp.StatusCode, snippet)
	}

	path, err := c.store.Save(store.KindResponse, resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to store synthesized audio: %w", err)
	}
	return path, nil
}

func (c *Chatterbox) attachReference(writer *multipart.Writer, referencePath string) error {
	f, err := os.Open(referencePath)
	if err != nil {
		return err
	}
	defer f.Close()

	part, err := writer.CreateFormFile("voice_file", filepath.Base(referencePath))
	if err != nil {
		return err
	}
	_, err = io.Copy(part, f)
	return err
}
