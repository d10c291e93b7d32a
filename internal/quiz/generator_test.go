package quiz

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/bindulearn/bindu/internal/llm"
	"github.com/stretchr/testify/require"
)

const validQuizJSON = `{
	"questions": [
		{
			"id": 1,
			"difficulty": "basic",
			"question": "What does SQL stand for?",
			"options": {"A": "Structured Query Language", "B": "Simple Query Language", "C": "Sequential Query Language", "D": "Standard Query Language"},
			"correct_answer": "A",
			"explanation": "SQL is Structured Query Language."
		},
		{
			"id": 2,
			"difficulty": "intermediate",
			"question": "Which clause filters grouped rows?",
			"options": {"A": "WHERE", "B": "HAVING", "C": "GROUP BY", "D": "ORDER BY"},
			"correct_answer": "b",
			"explanation": "HAVING filters after grouping."
		}
	]
}`

func TestGenerate_Strict(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(validQuizJSON)})
	gen := NewGenerator(mock, DefaultConfig())

	questions, outcome, err := gen.Generate(context.Background(), GenerateInput{
		Topic: "sql",
		Level: "beginner",
		Count: 2,
	})
	require.NoError(t, err)
	require.Equal(t, OutcomeStrict, outcome)
	require.Len(t, questions, 2)
	require.Equal(t, "A", questions[0].CorrectAnswer)
	require.Equal(t, "B", questions[1].CorrectAnswer, "letters are normalized to upper case")
	require.Equal(t, DifficultyIntermediate, questions[1].Difficulty)
}

func TestGenerate_ExtractsFromProse(t *testing.T) {
	wrapped := "Sure! Here is the quiz you asked for:\n" + validQuizJSON + "\nGood luck!"
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(wrapped)})
	gen := NewGenerator(mock, DefaultConfig())

	questions, outcome, err := gen.Generate(context.Background(), GenerateInput{Topic: "sql", Count: 2})
	require.NoError(t, err)
	require.Equal(t, OutcomeExtracted, outcome)
	require.Len(t, questions, 2)
}

func TestGenerate_FallbackOnGarbage(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(`"I cannot write quizzes today"`)})
	gen := NewGenerator(mock, DefaultConfig())

	questions, outcome, err := gen.Generate(context.Background(), GenerateInput{Topic: "python", Count: 5})
	require.NoError(t, err)
	require.Equal(t, OutcomeFallback, outcome)
	require.Len(t, questions, 1)
	require.Equal(t, "D", questions[0].CorrectAnswer)
	require.Contains(t, questions[0].Question, "python")
}

func TestGenerate_FallbackOnProviderError(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Err: &llm.ErrRateLimit{}})
	gen := NewGenerator(mock, DefaultConfig())

	questions, outcome, err := gen.Generate(context.Background(), GenerateInput{Topic: "go", Count: 5})
	require.Error(t, err)
	require.Equal(t, OutcomeFallback, outcome)
	require.Len(t, questions, 1, "provider failure still yields a usable quiz")
}

func TestGenerate_RejectsIncompleteQuestions(t *testing.T) {
	// Three options instead of four.
	bad := `{"questions": [{"id": 1, "question": "Pick one", "options": {"A": "x", "B": "y", "C": "z"}, "correct_answer": "A", "explanation": ""}]}`
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(bad)})
	gen := NewGenerator(mock, DefaultConfig())

	_, outcome, err := gen.Generate(context.Background(), GenerateInput{Topic: "go", Count: 1})
	require.NoError(t, err)
	require.Equal(t, OutcomeFallback, outcome)
}

func TestGenerate_PromptCarriesDistributionAndContent(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(validQuizJSON)})
	gen := NewGenerator(mock, DefaultConfig())

	_, _, err := gen.Generate(context.Background(), GenerateInput{
		Topic:   "sql",
		Level:   "beginner",
		Count:   5,
		Content: "JOIN combines rows from two tables.",
		Distribution: map[Difficulty]int{
			DifficultyBasic:        2,
			DifficultyIntermediate: 2,
			DifficultyAdvanced:     1,
		},
	})
	require.NoError(t, err)
	require.Len(t, mock.Calls, 1)

	prompt := mock.Calls[0].Messages[0].Content
	require.Contains(t, prompt, "basic: 2")
	require.Contains(t, prompt, "advanced: 1")
	require.Contains(t, prompt, "JOIN combines rows")
	require.Contains(t, prompt, "Variation seed:")
	require.Equal(t, QuizSchema, mock.Calls[0].Schema)
}

func TestGenerate_ContentTruncated(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(validQuizJSON)})
	cfg := DefaultConfig()
	cfg.MaxContentChars = 10
	gen := NewGenerator(mock, cfg)

	_, _, err := gen.Generate(context.Background(), GenerateInput{
		Topic:   "sql",
		Count:   2,
		Content: strings.Repeat("x", 100),
	})
	require.NoError(t, err)
	require.NotContains(t, mock.Calls[0].Messages[0].Content, strings.Repeat("x", 11))
}

func TestFormat(t *testing.T) {
	text := Format("sql", Fallback("sql"))

	require.Contains(t, text, "quiz on sql (1 questions)")
	require.Contains(t, text, "D) All of the above")
	require.Contains(t, text, "Reply with your answers")
}

func TestFormatResult_ReviewsMissedOnly(t *testing.T) {
	questions := []Question{
		{ID: 1, Question: "Q1", Options: map[string]string{"A": "right", "B": "wrong"}, CorrectAnswer: "A", Explanation: "because"},
		{ID: 2, Question: "Q2", Options: map[string]string{"A": "wrong", "B": "right"}, CorrectAnswer: "B"},
	}
	res := Grade(questions, map[int]string{1: "B", 2: "B"})

	text := FormatResult(res, "Keep going!")
	require.Contains(t, text, "1/2 (50%)")
	require.Contains(t, text, "Q1")
	require.NotContains(t, text, "Q2")
	require.Contains(t, text, "Keep going!")
}
