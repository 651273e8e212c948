package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/lunachat/luna/internal/models"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"
	"go.uber.org/zap"
)

// FallbackReply is substituted for the assistant's reply whenever
// generation fails. The turn still completes and the fallback is what
// gets spoken.
const FallbackReply = "I'm sorry, I'm having trouble processing that right now. Could you try again?"

// systemPrompt defines the assistant persona. Replies are spoken
// aloud, so it insists on short conversational answers.
const systemPrompt = `You are Luna, a compassionate wellness coach and empathetic companion. Your role is to provide supportive, understanding, and encouraging responses to users who may be seeking emotional support, guidance, or just someone to talk to.

Key characteristics:
- Be warm, empathetic, and genuinely caring
- Show active listening by referencing what the user has shared
- Offer practical wellness advice when appropriate
- Keep responses conversational and natural (2-3 sentences max)
- Focus on emotional support and positive reinforcement
- Ask thoughtful follow-up questions to show engagement

Remember: Your responses will be converted to speech, so keep them concise but meaningful. Always maintain a supportive and caring tone.`

const (
	temperature      = 0.7
	maxReplyTokens   = 150
	promptTokenLimit = 3000
)

// Service generates assistant replies through an OpenAI-compatible
// chat-completion endpoint.
type Service struct {
	llm    llms.Model
	model  string
	logger *zap.Logger

	// countTokens is swappable so tests can avoid the tiktoken tables.
	countTokens func(text string) int
}

func New(baseURL, token, model string, logger *zap.Logger) (*Service, error) {
	llm, err := openai.New(
		openai.WithToken(token),
		openai.WithBaseURL(baseURL),
		openai.WithModel(model),
	)
	if err != nil {
		return nil, err
	}
	s := &Service{llm: llm, model: model, logger: logger}
	s.countTokens = func(text string) int {
		return llms.CountTokens(model, text)
	}
	return s, nil
}

// Reply generates the assistant's answer to userText given a window of
// prior turns. The window is already capped by the caller; it is
// trimmed further from the oldest end if the prompt would exceed the
// token limit.
func (s *Service) Reply(ctx context.Context, userText string, window []models.Turn) (string, error) {
	messages := s.buildMessages(userText, window)

	resp, err := s.llm.GenerateContent(ctx, messages,
		llms.WithTemperature(temperature),
		llms.WithMaxTokens(maxReplyTokens),
	)
	if err != nil {
		return "", fmt.Errorf("failed to generate completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("completion returned no choices")
	}

	reply := strings.TrimSpace(resp.Choices[0].Content)
	if reply == "" {
		return "", fmt.Errorf("completion returned empty content")
	}
	return reply, nil
}

func (s *Service) buildMessages(userText string, window []models.Turn) []llms.MessageContent {
	window = s.trimToBudget(userText, window)

	messages := make([]llms.MessageContent, 0, len(window)+2)
	messages = append(messages, llms.TextParts(schema.ChatMessageTypeSystem, systemPrompt))
	for _, turn := range window {
		role := schema.ChatMessageTypeHuman
		if turn.Role == models.RoleAssistant {
			role = schema.ChatMessageTypeAI
		}
		messages = append(messages, llms.TextParts(role, turn.Content))
	}
	messages = append(messages, llms.TextParts(schema.ChatMessageTypeHuman, userText))
	return messages
}

// trimToBudget drops turns from the oldest end until the prompt fits
// promptTokenLimit. The system prompt and current input always stay.
func (s *Service) trimToBudget(userText string, window []models.Turn) []models.Turn {
	total := s.countTokens(systemPrompt) + s.countTokens(userText)
	for _, turn := range window {
		total += s.countTokens(turn.Content)
	}
	dropped := 0
	for total > promptTokenLimit && len(window) > 0 {
		total -= s.countTokens(window[0].Content)
		window = window[1:]
		dropped++
	}
	if dropped > 0 {
		s.logger.Debug("trimmed history window to fit token limit", zap.Int("dropped", dropped))
	}
	return window
}
