package pipeline

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/lunachat/luna/internal/history"
	"github.com/lunachat/luna/internal/llm"
	"github.com/lunachat/luna/internal/models"
	"github.com/lunachat/luna/internal/store"
	"github.com/lunachat/luna/internal/tts"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Client input and transcription failures are terminal for a request.
// The HTTP layer maps each to its wire message, so handlers never have
// to parse error strings.
var (
	ErrNoAudioFile    = errors.New("no audio file provided")
	ErrNoFileSelected = errors.New("no file selected")
	ErrNoMessage      = errors.New("no message provided")
	ErrTranscription  = errors.New("could not transcribe audio")
)

// Input modalities accepted by Exchange.
const (
	ModeVoice = "voice"
	ModeText  = "text"
)

// historyWindow caps the prior turns handed to the generator at three
// exchanges.
const historyWindow = 6

// Transcriber resolves an audio file to text.
type Transcriber interface {
	Transcribe(ctx context.Context, path string) (string, error)
}

// Generator produces the assistant reply for the resolved user text.
type Generator interface {
	Reply(ctx context.Context, userText string, window []models.Turn) (string, error)
}

// Request describes one incoming exchange. Audio is nil when no upload
// accompanied a voice request.
type Request struct {
	Mode     string
	Audio    io.Reader
	Filename string
	Message  string
}

// Result is the outcome of a completed exchange. AudioFile is the bare
// filename of the synthesized reply, or "" when synthesis failed.
type Result struct {
	UserMessage string
	Reply       string
	AudioFile   string
}

// Pipeline sequences one exchange: resolve input, generate the reply,
// synthesize it, record both turns. All shared state it touches is
// injected and internally synchronized.
type Pipeline struct {
	store       *store.FileStore
	reference   *store.ReferenceSlot
	transcriber Transcriber
	generator   Generator
	synthesizer tts.Synthesizer
	history     *history.Log
	logger      *zap.Logger
	timeout     time.Duration
}

func New(
	fileStore *store.FileStore,
	reference *store.ReferenceSlot,
	transcriber Transcriber,
	generator Generator,
	synthesizer tts.Synthesizer,
	hist *history.Log,
	logger *zap.Logger,
	timeout time.Duration,
) *Pipeline {
	return &Pipeline{
		store:       fileStore,
		reference:   reference,
		transcriber: transcriber,
		generator:   generator,
		synthesizer: synthesizer,
		history:     hist,
		logger:      logger,
		timeout:     timeout,
	}
}

// Exchange runs one full conversation exchange. Every transient file
// created along the way except the retained response audio is deleted
// before Exchange returns, on success and failure alike.
func (p *Pipeline) Exchange(ctx context.Context, req Request) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	var transient []string
	defer func() { p.release(transient) }()

	userText, err := p.resolveText(ctx, req, &transient)
	if err != nil {
		return nil, err
	}

	reply, err := p.generator.Reply(ctx, userText, p.history.Window(historyWindow))
	if err != nil {
		p.logger.Warn("reply generation failed, using fallback", zap.Error(err))
		reply = llm.FallbackReply
	}

	audioPath, err := p.synthesizer.Synthesize(ctx, reply, p.reference.Path())
	if err != nil {
		p.logger.Warn("voice synthesis failed, responding text-only", zap.Error(err))
		audioPath = ""
	}

	now := time.Now()
	userTurn := models.Turn{Role: models.RoleUser, Content: userText, Timestamp: now}
	assistantTurn := models.Turn{Role: models.RoleAssistant, Content: reply, Timestamp: now}
	if audioPath != "" {
		assistantTurn.AudioFile = filepath.Base(audioPath)
	}
	p.history.Append(userTurn, assistantTurn)

	return &Result{
		UserMessage: userText,
		Reply:       reply,
		AudioFile:   assistantTurn.AudioFile,
	}, nil
}

// resolveText turns the raw request into the user's text, persisting
// and transcribing voice uploads. Files it creates are registered in
// transient for cleanup by the caller.
func (p *Pipeline) resolveText(ctx context.Context, req Request, transient *[]string) (string, error) {
	switch req.Mode {
	case ModeVoice:
		if req.Audio == nil {
			return "", ErrNoAudioFile
		}
		if req.Filename == "" {
			return "", ErrNoFileSelected
		}

		path, err := p.store.Save(store.KindInput, req.Audio)
		if err != nil {
			return "", err
		}
		*transient = append(*transient, path)

		text, err := p.transcriber.Transcribe(ctx, path)
		if err != nil {
			p.logger.Warn("transcription failed", zap.String("path", path), zap.Error(err))
			return "", ErrTranscription
		}
		text = strings.TrimSpace(text)
		if text == "" {
			return "", ErrTranscription
		}
		return text, nil

	default:
		message := strings.TrimSpace(req.Message)
		if message == "" {
			return "", ErrNoMessage
		}
		return message, nil
	}
}

func (p *Pipeline) release(paths []string) {
	var errs error
	for _, path := range paths {
		errs = multierr.Append(errs, p.store.Delete(path))
	}
	if errs != nil {
		p.logger.Warn("temp file cleanup failed", zap.Error(errs))
	}
}
