package main

import (
	"context"
	"net/http"

	"github.com/lunachat/luna/internal/api"
	"github.com/lunachat/luna/internal/config"
	"github.com/lunachat/luna/internal/history"
	"github.com/lunachat/luna/internal/llm"
	"github.com/lunachat/luna/internal/pipeline"
	"github.com/lunachat/luna/internal/store"
	"github.com/lunachat/luna/internal/transcribe"
	"github.com/lunachat/luna/internal/tts"
	"go.uber.org/zap"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	fileStore, err := store.New(cfg.TempDir, logger)
	if err != nil {
		logger.Fatal("failed to initialize file store",
			zap.Error(err),
			zap.String("dir", cfg.TempDir))
	}
	reference := store.NewReferenceSlot(fileStore)

	transcriber := transcribe.New(cfg.GroqBaseURL, cfg.GroqAPIKey, cfg.WhisperModel)

	generator, err := llm.New(cfg.GroqBaseURL, cfg.GroqAPIKey, cfg.ChatModel, logger)
	if err != nil {
		logger.Fatal("failed to initialize LLM service", zap.Error(err))
	}

	var synthesizer tts.Synthesizer
	switch cfg.TTSBackend {
	case config.TTSBackendOpenAI:
		synthesizer = tts.NewOpenAISpeech(cfg.GroqBaseURL, cfg.GroqAPIKey, cfg.SpeechModel, cfg.SpeechVoice, fileStore, logger)
	default:
		synthesizer = tts.NewChatterbox(cfg.ChatterboxURL, fileStore, logger)
	}

	hist := history.NewLog()
	pipe := pipeline.New(fileStore, reference, transcriber, generator, synthesizer, hist, logger, cfg.RequestTimeout)
	handler := api.NewHandler(pipe, fileStore, reference, hist, logger)

	fileStore.StartJanitor(context.Background(), cfg.AudioTTL, cfg.ReapInterval)

	http.HandleFunc("/chat", handler.HandleChat)
	http.HandleFunc("/upload_reference", handler.HandleUploadReference)
	http.HandleFunc("/audio/", handler.HandleAudio)
	http.HandleFunc("/history", handler.HandleHistory)
	http.HandleFunc("/clear_history", handler.HandleClearHistory)

	// Serve the UI entry page and its assets
	fs := http.FileServer(http.Dir("web"))
	http.Handle("/", fs)

	logger.Info("starting server",
		zap.String("addr", cfg.Addr),
		zap.String("tts_backend", cfg.TTSBackend))
	if err := http.ListenAndServe(cfg.Addr, nil); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}
}
