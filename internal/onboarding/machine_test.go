package onboarding

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/bindulearn/bindu/internal/course"
	"github.com/bindulearn/bindu/internal/llm"
	"github.com/bindulearn/bindu/internal/quiz"
	"github.com/bindulearn/bindu/internal/store"
	"github.com/bindulearn/bindu/internal/turn"
	"github.com/stretchr/testify/require"
)

func diagnosticJSON(t *testing.T) llm.MockResponse {
	t.Helper()
	difficulties := []string{"basic", "basic", "intermediate", "intermediate", "advanced"}
	var questions []map[string]any
	for i, d := range difficulties {
		questions = append(questions, map[string]any{
			"id": i + 1, "difficulty": d,
			"question":       "Q",
			"options":        map[string]string{"A": "1", "B": "2", "C": "3", "D": "4"},
			"correct_answer": "A",
			"explanation":    "",
		})
	}
	raw, err := json.Marshal(map[string]any{"questions": questions})
	require.NoError(t, err)
	return llm.MockResponse{Content: raw}
}

func newTestMachine(t *testing.T, mock *llm.MockProvider) (*Machine, *store.Store) {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	svc := llm.NewService(mock, zap.NewNop())
	courses := course.NewService(s.CourseRepo(), mock, zap.NewNop())
	gen := quiz.NewGenerator(mock, quiz.DefaultConfig())

	return NewMachine(gen, courses, svc, nil, zap.NewNop()), s
}

func TestBegin_WithoutTopicAsksForOne(t *testing.T) {
	m, _ := newTestMachine(t, llm.NewMockProvider())
	st := turn.New("u1", "I want to learn", nil, nil)

	require.NoError(t, m.Begin(context.Background(), st, ""))
	require.Equal(t, turn.StepDiagnosticPending, st.OnboardingStep())
	require.Contains(t, st.Reply, "What would you like to learn")
}

func TestBegin_WithTopicIssuesDiagnostic(t *testing.T) {
	mock := llm.NewMockProvider(diagnosticJSON(t))
	m, _ := newTestMachine(t, mock)
	st := turn.New("u1", "teach me sql", nil, nil)

	require.NoError(t, m.Begin(context.Background(), st, "sql"))
	require.Equal(t, turn.StepEvaluateAndPlan, st.OnboardingStep())
	require.Equal(t, "sql", st.Topic)
	require.Contains(t, st.Reply, "5 questions")

	topic, questions, ok := quiz.PendingFrom(st.Metadata)
	require.True(t, ok)
	require.Equal(t, "sql", topic)
	require.Len(t, questions, 5)
	require.True(t, quiz.IsDiagnostic(st.Metadata))
}

func TestHandle_TopicCapture(t *testing.T) {
	mock := llm.NewMockProvider(diagnosticJSON(t))
	m, _ := newTestMachine(t, mock)

	st := turn.New("u1", "python", nil, map[string]any{"onboarding_step": "diagnostic_quiz_pending"})
	require.NoError(t, m.Handle(context.Background(), st))

	require.Equal(t, "python", st.Topic)
	require.Equal(t, turn.StepEvaluateAndPlan, st.OnboardingStep())
}

func TestHandle_GreetingResets(t *testing.T) {
	m, _ := newTestMachine(t, llm.NewMockProvider())

	st := turn.New("u1", "hey", nil, map[string]any{
		"onboarding_step": "evaluate_and_plan",
		"current_topic":   "sql",
	})
	require.NoError(t, m.Handle(context.Background(), st))

	require.Equal(t, turn.StepDiagnosticPending, st.OnboardingStep())
	require.Equal(t, "general", st.Topic)
	require.Contains(t, st.Reply, "What would you like to learn")
}

func TestHandle_EvaluateAndPlan(t *testing.T) {
	// Calls in order: diagnostic gen, syllabus gen, study plan.
	mock := llm.NewMockProvider(
		diagnosticJSON(t),
		llm.MockResponse{Content: json.RawMessage(`{"modules":[{"title":"Basics","topics":["select","where"]}]}`)},
		llm.MockResponse{Content: json.RawMessage("Here is your plan.")},
	)
	m, s := newTestMachine(t, mock)
	ctx := context.Background()

	st := turn.New("u1", "sql", nil, map[string]any{"onboarding_step": "diagnostic_quiz_pending"})
	require.NoError(t, m.Handle(ctx, st))

	// Quiz persists across the turn boundary.
	raw, err := json.Marshal(st.Metadata)
	require.NoError(t, err)
	var loaded map[string]any
	require.NoError(t, json.Unmarshal(raw, &loaded))

	// All basic and intermediate right, advanced wrong -> intermediate.
	st2 := turn.New("u1", "1. A, 2. A, 3. A, 4. A, 5. B", nil, loaded)
	require.NoError(t, m.Handle(ctx, st2))

	require.Equal(t, turn.StepCompleted, st2.OnboardingStep())
	require.Equal(t, turn.LevelIntermediate, st2.SkillLevel)
	require.Contains(t, st2.Reply, "4/5")
	require.Contains(t, st2.Reply, "intermediate")
	require.Contains(t, st2.Reply, "Here is your plan.")
	require.Contains(t, st2.Reply, "select")

	_, _, ok := quiz.PendingFrom(st2.Metadata)
	require.False(t, ok, "diagnostic cleared after grading")

	c, err := s.CourseRepo().LatestByUser(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, c)
	require.Equal(t, "sql", c.Topic)
	require.Equal(t, "intermediate", c.SkillLevel)
	require.Equal(t, c.ID, st2.CourseID)
}

func TestHandle_NonAnswerReprompts(t *testing.T) {
	mock := llm.NewMockProvider(diagnosticJSON(t))
	m, _ := newTestMachine(t, mock)
	ctx := context.Background()

	st := turn.New("u1", "sql", nil, map[string]any{"onboarding_step": "diagnostic_quiz_pending"})
	require.NoError(t, m.Handle(ctx, st))

	st2 := turn.New("u1", "why do you ask?", nil, st.Metadata)
	require.NoError(t, m.Handle(ctx, st2))

	require.Equal(t, turn.StepEvaluateAndPlan, st2.OnboardingStep())
	require.Contains(t, st2.Reply, "1. A")
	_, _, ok := quiz.PendingFrom(st2.Metadata)
	require.True(t, ok, "quiz stays pending")
}

func TestHandle_RoadmapShortcut(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockResponse{Content: json.RawMessage(`{"modules":[{"title":"M","topics":["t1"]}]}`)},
		llm.MockResponse{Content: json.RawMessage("Shortcut plan.")},
	)
	m, _ := newTestMachine(t, mock)

	st := turn.New("u1", "generate a roadmap for advanced level", nil, map[string]any{
		"onboarding_step": "diagnostic_quiz_pending",
		"current_topic":   "kubernetes",
	})
	require.NoError(t, m.Handle(context.Background(), st))

	require.Equal(t, turn.StepCompleted, st.OnboardingStep())
	require.Equal(t, turn.LevelAdvanced, st.SkillLevel)
	require.Contains(t, st.Reply, "Shortcut plan.")
	_, _, ok := quiz.PendingFrom(st.Metadata)
	require.False(t, ok, "no quiz on the shortcut path")
}

func TestHandle_RoadmapShortcutDuringDiagnostic(t *testing.T) {
	// The shortcut must still work once the diagnostic is on the table:
	// declaring a level skips the pending quiz entirely.
	mock := llm.NewMockProvider(
		diagnosticJSON(t),
		llm.MockResponse{Content: json.RawMessage(`{"modules":[{"title":"M","topics":["t1"]}]}`)},
		llm.MockResponse{Content: json.RawMessage("Level-based plan.")},
	)
	m, _ := newTestMachine(t, mock)
	ctx := context.Background()

	st := turn.New("u1", "sql", nil, map[string]any{"onboarding_step": "diagnostic_quiz_pending"})
	require.NoError(t, m.Handle(ctx, st))
	require.Equal(t, turn.StepEvaluateAndPlan, st.OnboardingStep())

	st2 := turn.New("u1", "generate a roadmap for beginner level", nil, st.Metadata)
	require.NoError(t, m.Handle(ctx, st2))

	require.Equal(t, turn.StepCompleted, st2.OnboardingStep())
	require.Equal(t, turn.LevelBeginner, st2.SkillLevel)
	require.Contains(t, st2.Reply, "Level-based plan.")
	_, _, ok := quiz.PendingFrom(st2.Metadata)
	require.False(t, ok, "pending diagnostic discarded by the shortcut")
}

func TestHandle_UnknownStepCompletes(t *testing.T) {
	m, _ := newTestMachine(t, llm.NewMockProvider())

	st := turn.New("u1", "keep going", nil, map[string]any{"onboarding_step": "???"})
	require.NoError(t, m.Handle(context.Background(), st))

	require.Equal(t, turn.StepCompleted, st.OnboardingStep())
	require.Contains(t, st.Reply, "start learning")
	require.False(t, st.OnboardingStep().Active(), "next turn routes normally")
}

func TestHandle_MissingQuizReissued(t *testing.T) {
	mock := llm.NewMockProvider(diagnosticJSON(t))
	m, _ := newTestMachine(t, mock)

	st := turn.New("u1", "1. A", nil, map[string]any{
		"onboarding_step": "evaluate_and_plan",
		"current_topic":   "sql",
	})
	require.NoError(t, m.Handle(context.Background(), st))

	require.Equal(t, turn.StepEvaluateAndPlan, st.OnboardingStep())
	_, questions, ok := quiz.PendingFrom(st.Metadata)
	require.True(t, ok)
	require.Len(t, questions, 5)
}
