package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"

	"fable2md/internal/logger"
)

// maxVariations caps how many alternative titles a variation search
// will ever try.
const maxVariations = 3

// OpenAIConfig configures the OpenAI-backed language service.
type OpenAIConfig struct {
	Model       string  // e.g. gpt-4o-mini
	Temperature float32 // low values keep extraction deterministic
	MaxAttempts int     // retries for request failures and malformed JSON
}

// OpenAIService implements LanguageService using the OpenAI chat API.
type OpenAIService struct {
	client *openai.Client
	config OpenAIConfig
	log    zerolog.Logger
}

// NewOpenAIService creates the service with an explicit client so tests
// can point it at a fake server.
func NewOpenAIService(client *openai.Client, config OpenAIConfig) *OpenAIService {
	if config.Model == "" {
		config.Model = "gpt-4o-mini"
	}
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 3
	}
	return &OpenAIService{
		client: client,
		config: config,
		log:    logger.WithComponent("llm-openai"),
	}
}

// AnalyzeText interprets one OCR text block as a list of books.
func (s *OpenAIService) AnalyzeText(ctx context.Context, text string) (*Analysis, error) {
	const op = "AnalyzeText"

	content, err := s.complete(ctx, analyzeSystemPrompt, text)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var analysis Analysis
	if err := json.Unmarshal([]byte(StripCodeFence(content)), &analysis); err != nil {
		return nil, fmt.Errorf("%s: model reply is not valid JSON: %w", op, err)
	}
	analysis.RawResponse = content

	s.log.Debug().
		Int("books", len(analysis.Books)).
		Float64("confidence", analysis.Confidence).
		Msg("Text block analyzed")

	return &analysis, nil
}

// GenerateTitleVariations proposes up to three alternative titles.
func (s *OpenAIService) GenerateTitleVariations(ctx context.Context, title, author string) ([]string, error) {
	const op = "GenerateTitleVariations"

	user := fmt.Sprintf("Title: %s", title)
	if author != "" {
		user += fmt.Sprintf("\nAuthor: %s", author)
	}

	content, err := s.complete(ctx, variationsSystemPrompt, user)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var variations []string
	if err := json.Unmarshal([]byte(StripCodeFence(content)), &variations); err != nil {
		return nil, fmt.Errorf("%s: model reply is not valid JSON: %w", op, err)
	}

	// Drop empties and echoes of the original title.
	out := variations[:0]
	for _, v := range variations {
		v = strings.TrimSpace(v)
		if v == "" || strings.EqualFold(v, title) {
			continue
		}
		out = append(out, v)
		if len(out) == maxVariations {
			break
		}
	}

	s.log.Debug().
		Str("title", title).
		Strs("variations", out).
		Msg("Title variations generated")

	return out, nil
}

// complete sends one system+user exchange and returns the reply text,
// retrying transient request failures up to MaxAttempts.
func (s *OpenAIService) complete(ctx context.Context, system, user string) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= s.config.MaxAttempts; attempt++ {
		resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:       s.config.Model,
			Temperature: s.config.Temperature,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: system},
				{Role: openai.ChatMessageRoleUser, Content: user},
			},
			MaxTokens: 4000,
		})
		if err != nil {
			lastErr = err
			s.log.Warn().
				Err(err).
				Int("attempt", attempt).
				Int("max_attempts", s.config.MaxAttempts).
				Msg("Chat completion failed, retrying")
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			continue
		}
		if len(resp.Choices) == 0 {
			lastErr = fmt.Errorf("no response choices from model")
			continue
		}
		return resp.Choices[0].Message.Content, nil
	}
	return "", fmt.Errorf("all %d attempts failed, last error: %w", s.config.MaxAttempts, lastErr)
}

// StripCodeFence removes a surrounding markdown code fence from a model
// reply. Models wrap JSON in ```json fences no matter how firmly the
// prompt forbids it.
func StripCodeFence(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```")
	// Drop the optional language tag on the opening fence line.
	if idx := strings.IndexByte(trimmed, '\n'); idx >= 0 {
		firstLine := strings.TrimSpace(trimmed[:idx])
		if firstLine == "json" || firstLine == "" {
			trimmed = trimmed[idx+1:]
		}
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
