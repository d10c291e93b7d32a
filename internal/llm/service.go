package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// GenerateInput describes a text generation request at the service level.
type GenerateInput struct {
	// Prompt is the user-facing request.
	Prompt string

	// Context is optional reference material prepended to the prompt.
	Context string

	// System overrides the default persona when set.
	System string

	// Raw skips the tutoring persona entirely (classification calls).
	Raw bool

	MaxTokens   int
	Temperature float64
}

// Evaluation is the outcome of a confidence-scored generation.
type Evaluation struct {
	Answer     string
	Confidence int // 0-100
	IsGuess    bool
}

// defaultPersona frames every learner-facing generation.
const defaultPersona = `You are Bindu, a patient and encouraging tutor. Explain clearly, use short paragraphs and concrete examples, and match your depth to the learner's level. Admit when you are unsure instead of inventing facts.`

const confidenceInstruction = `

After your answer, on separate final lines, report how confident you are:
CONFIDENCE: <0-100>
IS_GUESS: <true|false>`

var (
	confidenceRe = regexp.MustCompile(`(?im)^\s*CONFIDENCE:\s*(\d{1,3})\s*$`)
	guessRe      = regexp.MustCompile(`(?im)^\s*IS_GUESS:\s*(true|false)\s*$`)
)

// Service is the high-level generation API the tutoring handlers use. It
// wraps a Provider (already carrying retry and event-logging middleware)
// with prompt framing, text extraction, and confidence parsing.
type Service struct {
	provider Provider
	logger   *zap.Logger

	maxTokens int
}

// NewService creates a Service around a provider.
func NewService(provider Provider, logger *zap.Logger) *Service {
	return &Service{provider: provider, logger: logger, maxTokens: 1024}
}

// Provider exposes the underlying provider for callers that need
// schema-validated structured output directly.
func (s *Service) Provider() Provider {
	return s.provider
}

// GenerateText produces a plain-text completion.
func (s *Service) GenerateText(ctx context.Context, in GenerateInput) (string, error) {
	resp, err := s.provider.Generate(ctx, s.buildRequest(in))
	if err != nil {
		return "", fmt.Errorf("generate text: %w", err)
	}
	return decodeText(resp.Content), nil
}

// GenerateObject produces schema-validated JSON output.
func (s *Service) GenerateObject(ctx context.Context, system, prompt string, schema *Schema) (json.RawMessage, error) {
	req := Request{
		System:    system,
		Messages:  []Message{{Role: RoleUser, Content: prompt}},
		Schema:    schema,
		MaxTokens: s.maxTokens,
	}
	resp, err := s.provider.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("generate %s: %w", schema.Name, err)
	}
	return resp.Content, nil
}

// EvaluateConfidence answers a question and self-scores the answer. It
// never returns an error: generation failures and unparseable confidence
// blocks both degrade to a low-confidence guess so the caller's threshold
// gate can decide what to do.
func (s *Service) EvaluateConfidence(ctx context.Context, in GenerateInput) Evaluation {
	in.Prompt += confidenceInstruction

	text, err := s.GenerateText(ctx, in)
	if err != nil {
		s.logger.Warn("confidence generation failed", zap.Error(err))
		return Evaluation{Confidence: 30, IsGuess: true}
	}
	return parseConfidence(text)
}

func (s *Service) buildRequest(in GenerateInput) Request {
	system := in.System
	if system == "" && !in.Raw {
		system = defaultPersona
	}

	prompt := in.Prompt
	if in.Context != "" {
		prompt = fmt.Sprintf("Reference material:\n%s\n\n%s", in.Context, in.Prompt)
	}

	maxTokens := in.MaxTokens
	if maxTokens <= 0 {
		maxTokens = s.maxTokens
	}

	return Request{
		System:      system,
		Messages:    []Message{{Role: RoleUser, Content: prompt}},
		MaxTokens:   maxTokens,
		Temperature: in.Temperature,
	}
}

// decodeText unwraps a response that may arrive either as a bare string
// or as a JSON-encoded string.
func decodeText(content json.RawMessage) string {
	var s string
	if err := json.Unmarshal(content, &s); err == nil {
		return s
	}
	return string(content)
}

// parseConfidence strips the trailing CONFIDENCE/IS_GUESS block from the
// answer. A missing or malformed block yields confidence 30 and marks the
// answer a guess; a confidence above 100 is clamped.
func parseConfidence(text string) Evaluation {
	ev := Evaluation{Answer: strings.TrimSpace(text), Confidence: 30, IsGuess: true}

	m := confidenceRe.FindStringSubmatch(text)
	if m == nil {
		return ev
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return ev
	}
	if n > 100 {
		n = 100
	}
	ev.Confidence = n
	ev.IsGuess = false

	if g := guessRe.FindStringSubmatch(text); g != nil {
		ev.IsGuess = strings.EqualFold(g[1], "true")
	}

	answer := confidenceRe.ReplaceAllString(text, "")
	answer = guessRe.ReplaceAllString(answer, "")
	ev.Answer = strings.TrimSpace(answer)
	return ev
}
