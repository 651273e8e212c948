package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/lunachat/luna/internal/history"
	"github.com/lunachat/luna/internal/pipeline"
	"github.com/lunachat/luna/internal/store"
	"go.uber.org/zap"
)

// maxBodyBytes caps request bodies before they reach the pipeline.
const maxBodyBytes = 16 << 20

type Handler struct {
	pipeline  *pipeline.Pipeline
	store     *store.FileStore
	reference *store.ReferenceSlot
	history   *history.Log
	logger    *zap.Logger
}

func NewHandler(pipe *pipeline.Pipeline, fileStore *store.FileStore, reference *store.ReferenceSlot, hist *history.Log, logger *zap.Logger) *Handler {
	return &Handler{
		pipeline:  pipe,
		store:     fileStore,
		reference: reference,
		history:   hist,
		logger:    logger,
	}
}

type chatResponse struct {
	UserMessage    string `json:"user_message"`
	AIResponse     string `json:"ai_response"`
	AudioAvailable bool   `json:"audio_available"`
	AudioURL       string `json:"audio_url,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// HandleChat processes one voice or text exchange.
func (h *Handler) HandleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	req := pipeline.Request{
		Mode:    r.FormValue("type"),
		Message: r.FormValue("message"),
	}
	if req.Mode == pipeline.ModeVoice {
		file, header, err := r.FormFile("audio")
		if err == nil {
			defer file.Close()
			req.Audio = file
			req.Filename = header.Filename
		}
	}

	result, err := h.pipeline.Exchange(r.Context(), req)
	if err != nil {
		h.writeChatError(w, err)
		return
	}

	resp := chatResponse{
		UserMessage:    result.UserMessage,
		AIResponse:     result.Reply,
		AudioAvailable: result.AudioFile != "",
	}
	if result.AudioFile != "" {
		resp.AudioURL = "/audio/" + result.AudioFile
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) writeChatError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, pipeline.ErrNoAudioFile):
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "No audio file provided"})
	case errors.Is(err, pipeline.ErrNoFileSelected):
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "No file selected"})
	case errors.Is(err, pipeline.ErrNoMessage):
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "No message provided"})
	case errors.Is(err, pipeline.ErrTranscription):
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Could not transcribe audio"})
	default:
		h.logger.Error("chat exchange failed", zap.Error(err))
		h.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}
}

// HandleUploadReference replaces the reference voice sample used for
// voice cloning. The previous sample, if any, is deleted.
func (h *Handler) HandleUploadReference(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	file, header, err := r.FormFile("audio")
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "No audio file provided"})
		return
	}
	defer file.Close()
	if header.Filename == "" {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "No file selected"})
		return
	}

	path, err := h.store.Save(store.KindReference, file)
	if err != nil {
		h.logger.Error("failed to save reference sample", zap.Error(err))
		h.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	h.reference.Set(path)

	h.logger.Info("reference sample uploaded", zap.String("path", path))
	h.writeJSON(w, http.StatusOK, messageResponse{Message: "Reference audio uploaded successfully"})
}

// HandleAudio streams a previously generated response recording.
func (h *Handler) HandleAudio(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	name := strings.TrimPrefix(r.URL.Path, "/audio/")
	f, err := h.store.Open(name)
	if err != nil {
		http.Error(w, "Audio file not found", http.StatusNotFound)
		return
	}
	defer f.Close()

	contentType := "audio/wav"
	if mtype, err := mimetype.DetectReader(f); err == nil {
		contentType = mtype.String()
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		h.logger.Error("failed to rewind audio file", zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentType)
	if _, err := io.Copy(w, f); err != nil {
		h.logger.Warn("failed to stream audio file", zap.String("name", name), zap.Error(err))
	}
}

// HandleHistory returns the full conversation log in order.
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	h.writeJSON(w, http.StatusOK, h.history.Turns())
}

// HandleClearHistory empties the conversation log.
func (h *Handler) HandleClearHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	h.history.Clear()
	h.writeJSON(w, http.StatusOK, messageResponse{Message: "Chat history cleared"})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to encode response", zap.Error(err))
	}
}
