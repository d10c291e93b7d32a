package quiz

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/bindulearn/bindu/internal/llm"
)

const systemPrompt = `You are a tutor writing multiple-choice quizzes.

Rules:
- Write exactly the requested number of questions about the given topic at the given level.
- Each question has exactly four options labeled A through D, with exactly one correct option.
- Distractors should reflect plausible misconceptions, not random values.
- Number questions starting from 1.
- Keep explanations to one or two sentences.
- Do not repeat questions the learner has already seen; the variation seed marks each request as distinct.`

// GenerateInput holds all context needed to generate a quiz.
type GenerateInput struct {
	// Topic is the subject of the quiz.
	Topic string

	// Level is the learner's skill level ("beginner", "intermediate",
	// "advanced").
	Level string

	// Count is the number of questions to generate.
	Count int

	// Content is previously taught material for the topic, included so the
	// quiz tests what was actually covered. Optional.
	Content string

	// Distribution pins per-difficulty counts (diagnostic quizzes).
	// Nil means the LLM mixes difficulties freely.
	Distribution map[Difficulty]int
}

// ParseOutcome names how the generated questions were obtained.
type ParseOutcome string

const (
	// OutcomeStrict means the response decoded cleanly.
	OutcomeStrict ParseOutcome = "strict"

	// OutcomeExtracted means the questions were recovered from a response
	// with surrounding prose by slicing at the JSON boundaries.
	OutcomeExtracted ParseOutcome = "extracted"

	// OutcomeFallback means generation or parsing failed and the canned
	// fallback question was substituted.
	OutcomeFallback ParseOutcome = "fallback"
)

// Config controls the behavior of the Generator.
type Config struct {
	// MaxTokens is the token budget for the LLM response.
	MaxTokens int

	// Temperature controls LLM output randomness (0.0-1.0).
	Temperature float64

	// MaxContentChars caps how much cached topic content goes into the
	// prompt.
	MaxContentChars int
}

// DefaultConfig returns a Config with recommended defaults.
func DefaultConfig() Config {
	return Config{
		MaxTokens:       2048,
		Temperature:     0.7,
		MaxContentChars: 1500,
	}
}

// Generator produces quizzes through the LLM provider.
type Generator struct {
	provider llm.Provider
	config   Config
	now      func() time.Time
}

// NewGenerator creates a Generator with the given provider and config.
func NewGenerator(provider llm.Provider, cfg Config) *Generator {
	return &Generator{provider: provider, config: cfg, now: time.Now}
}

// quizOutput is the raw LLM response before validation.
type quizOutput struct {
	Questions []questionOutput `json:"questions"`
}

type questionOutput struct {
	ID            int               `json:"id"`
	Difficulty    string            `json:"difficulty"`
	Question      string            `json:"question"`
	Options       map[string]string `json:"options"`
	CorrectAnswer string            `json:"correct_answer"`
	Explanation   string            `json:"explanation"`
}

// Generate produces a quiz for the given input. It never returns an empty
// quiz: when the provider fails or the response cannot be decoded, the
// fallback question is returned with OutcomeFallback so the turn can still
// proceed.
func (g *Generator) Generate(ctx context.Context, input GenerateInput) ([]Question, ParseOutcome, error) {
	ctx = llm.WithPurpose(ctx, "quiz-gen")

	req := llm.Request{
		System: systemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: g.buildUserMessage(input)},
		},
		Schema:      QuizSchema,
		MaxTokens:   g.config.MaxTokens,
		Temperature: g.config.Temperature,
	}

	resp, err := g.provider.Generate(ctx, req)
	if err != nil {
		return Fallback(input.Topic), OutcomeFallback, fmt.Errorf("quiz generation failed: %w", err)
	}

	questions, outcome := decodeQuestions(resp.Content)
	if outcome == OutcomeFallback {
		return Fallback(input.Topic), OutcomeFallback, nil
	}
	return questions, outcome, nil
}

// decodeQuestions applies the layered parse: strict decode first, then a
// boundary slice between the outermost braces for responses wrapped in
// prose, and finally the fallback outcome.
func decodeQuestions(content json.RawMessage) ([]Question, ParseOutcome) {
	if qs, ok := decodeStrict(content); ok {
		return qs, OutcomeStrict
	}

	s := string(content)
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start >= 0 && end > start {
		if qs, ok := decodeStrict(json.RawMessage(s[start : end+1])); ok {
			return qs, OutcomeExtracted
		}
	}
	return nil, OutcomeFallback
}

func decodeStrict(content json.RawMessage) ([]Question, bool) {
	var raw quizOutput
	if err := json.Unmarshal(content, &raw); err != nil || len(raw.Questions) == 0 {
		return nil, false
	}

	questions := make([]Question, 0, len(raw.Questions))
	for i, q := range raw.Questions {
		if q.Question == "" || len(q.Options) != 4 || !validLetter(q.CorrectAnswer) {
			return nil, false
		}
		id := q.ID
		if id == 0 {
			id = i + 1
		}
		questions = append(questions, Question{
			ID:            id,
			Difficulty:    Difficulty(q.Difficulty),
			Question:      q.Question,
			Options:       q.Options,
			CorrectAnswer: strings.ToUpper(q.CorrectAnswer),
			Explanation:   q.Explanation,
		})
	}
	return questions, true
}

func validLetter(s string) bool {
	switch strings.ToUpper(s) {
	case "A", "B", "C", "D":
		return true
	}
	return false
}

func (g *Generator) buildUserMessage(input GenerateInput) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Topic: %s\n", input.Topic)
	fmt.Fprintf(&b, "Level: %s\n", input.Level)
	fmt.Fprintf(&b, "Questions: %d\n", input.Count)

	if len(input.Distribution) > 0 {
		b.WriteString("Difficulty distribution:\n")
		for _, d := range []Difficulty{DifficultyBasic, DifficultyIntermediate, DifficultyAdvanced} {
			if n := input.Distribution[d]; n > 0 {
				fmt.Fprintf(&b, "- %s: %d\n", d, n)
			}
		}
	}

	// Seed keeps regenerated quizzes from repeating earlier ones.
	fmt.Fprintf(&b, "Variation seed: %d-%d\n", rand.Intn(100000), g.now().UnixNano())

	if input.Content != "" {
		content := input.Content
		if g.config.MaxContentChars > 0 && len(content) > g.config.MaxContentChars {
			content = content[:g.config.MaxContentChars]
		}
		b.WriteString("\nBase the questions on this material the learner studied:\n")
		b.WriteString(content)
	}

	return b.String()
}
