package onboarding

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/bindulearn/bindu/internal/assess"
	"github.com/bindulearn/bindu/internal/course"
	"github.com/bindulearn/bindu/internal/intent"
	"github.com/bindulearn/bindu/internal/llm"
	"github.com/bindulearn/bindu/internal/quiz"
	"github.com/bindulearn/bindu/internal/rag"
	"github.com/bindulearn/bindu/internal/turn"
)

// greetingTokens reset onboarding back to topic capture.
var greetingTokens = map[string]struct{}{
	"hi": {}, "hello": {}, "hey": {}, "start": {}, "begin": {},
}

// roadmapShortcutRe lets a learner skip the diagnostic by declaring a
// level outright: "generate a roadmap for intermediate level".
var roadmapShortcutRe = regexp.MustCompile(`(?i)generate a roadmap for (\w+) level`)

// Machine drives a learner from first contact to an assessed level with
// a course and study plan. Its position lives entirely in the turn
// metadata, so each Handle call is stateless.
type Machine struct {
	generator assess.QuizGenerator
	courses   *course.Service
	llm       *llm.Service
	retriever rag.Retriever
	logger    *zap.Logger
}

// NewMachine creates an onboarding Machine.
func NewMachine(gen assess.QuizGenerator, courses *course.Service, svc *llm.Service, retriever rag.Retriever, logger *zap.Logger) *Machine {
	return &Machine{generator: gen, courses: courses, llm: svc, retriever: retriever, logger: logger}
}

// Begin starts onboarding for a learner who asked to learn something.
// With a topic in hand it issues the diagnostic immediately; otherwise it
// asks for one first.
func (m *Machine) Begin(ctx context.Context, st *turn.State, topic string) error {
	if topic == "" {
		st.SetOnboardingStep(turn.StepDiagnosticPending)
		st.Reply = "Great, let's get you set up! What would you like to learn?"
		return nil
	}
	return m.issueDiagnostic(ctx, st, topic)
}

// Handle advances the machine one step based on the persisted step value.
func (m *Machine) Handle(ctx context.Context, st *turn.State) error {
	if isGreeting(st.Message) {
		st.SetTopic("general")
		quiz.Clear(st.Metadata)
		st.SetOnboardingStep(turn.StepDiagnosticPending)
		st.Reply = "Hello! What would you like to learn?"
		return nil
	}

	switch st.OnboardingStep() {
	case turn.StepDiagnosticPending:
		return m.captureTopic(ctx, st)
	case turn.StepEvaluateAndPlan:
		return m.evaluateAndPlan(ctx, st)
	default:
		// Corrupt or unexpected step value: close onboarding out so
		// the next turn routes normally instead of being captured.
		m.logger.Warn("unrecognized onboarding step, completing",
			zap.String("user_id", st.UserID))
		quiz.Clear(st.Metadata)
		st.SetOnboardingStep(turn.StepCompleted)
		st.Reply = "Let's start learning!"
		return nil
	}
}

// captureTopic reads the topic from the message and issues the
// diagnostic quiz, unless the learner used the roadmap shortcut.
func (m *Machine) captureTopic(ctx context.Context, st *turn.State) error {
	if level, ok := roadmapShortcut(st.Message); ok {
		return m.skipToPlan(ctx, st, level)
	}

	topic := intent.Truncate(strings.TrimSpace(st.Message))
	if topic == "" {
		topic = "general"
	}
	return m.issueDiagnostic(ctx, st, topic)
}

func (m *Machine) issueDiagnostic(ctx context.Context, st *turn.State, topic string) error {
	topic = intent.Truncate(topic)
	st.SetTopic(topic)

	questions := assess.Diagnostic(ctx, m.generator, topic, m.logger)
	quiz.SetDiagnostic(st.Metadata, topic, questions)
	st.SetOnboardingStep(turn.StepEvaluateAndPlan)

	st.Reply = fmt.Sprintf(
		"Let's see where you stand with %s. Answer these %d questions and I'll tailor a plan for you.\n\n%s",
		topic, len(questions), quiz.Format(topic, questions))
	return nil
}

// evaluateAndPlan grades the diagnostic, assesses a level, creates a
// course, and delivers the study plan. The roadmap shortcut stays open
// here: a learner staring at the diagnostic can still declare a level
// and skip it.
func (m *Machine) evaluateAndPlan(ctx context.Context, st *turn.State) error {
	if level, ok := roadmapShortcut(st.Message); ok {
		return m.skipToPlan(ctx, st, level)
	}

	topic, questions, ok := quiz.PendingFrom(st.Metadata)
	if !ok {
		// The quiz vanished from metadata; reissue rather than guess.
		m.logger.Warn("pending diagnostic missing, reissuing",
			zap.String("user_id", st.UserID))
		return m.issueDiagnostic(ctx, st, fallbackTopic(st))
	}

	if !quiz.LooksLikeAnswers(st.Message) {
		st.Reply = fmt.Sprintf(
			"Whenever you're ready, answer the diagnostic (e.g. \"1. A, 2. C\") and I'll build your %s plan.", topic)
		return nil
	}

	res := quiz.Grade(questions, quiz.ParseAnswers(st.Message, len(questions)))
	ev := assess.Evaluate(topic, res)

	st.SetSkillLevel(ev.Level)
	quiz.Clear(st.Metadata)

	c, syl, err := m.courses.Create(ctx, st.UserID, topic, string(ev.Level))
	if err != nil {
		return fmt.Errorf("create course: %w", err)
	}
	st.SetCourseID(c.ID)

	plan := assess.StudyPlan(ctx, m.llm, m.retriever, topic, ev, m.logger)
	st.SetOnboardingStep(turn.StepCompleted)

	st.Reply = fmt.Sprintf(
		"You scored %d/%d, which puts you at the %s level.\n\nStrengths: %s\nWorth practicing: %s\n\n%s\n\nWe'll start with \"%s\". Ready?",
		res.Score, res.Total, ev.Level,
		strings.Join(ev.Strengths, "; "),
		strings.Join(ev.Weaknesses, "; "),
		plan,
		m.courses.CurrentTopic(c, syl))
	return nil
}

// skipToPlan honors the roadmap shortcut: trust the declared level, skip
// the quiz, and go straight to course and plan.
func (m *Machine) skipToPlan(ctx context.Context, st *turn.State, level turn.SkillLevel) error {
	topic := fallbackTopic(st)

	st.SetSkillLevel(level)
	st.SetTopic(topic)
	quiz.Clear(st.Metadata)

	c, syl, err := m.courses.Create(ctx, st.UserID, topic, string(level))
	if err != nil {
		return fmt.Errorf("create course: %w", err)
	}
	st.SetCourseID(c.ID)
	st.SetOnboardingStep(turn.StepCompleted)

	ev := assess.Evaluation{
		Level:      level,
		Strengths:  []string{fmt.Sprintf("self-assessed %s command of %s", level, topic)},
		Weaknesses: []string{fmt.Sprintf("areas of %s we haven't mapped yet", topic)},
	}
	plan := assess.StudyPlan(ctx, m.llm, m.retriever, topic, ev, m.logger)

	st.Reply = fmt.Sprintf(
		"Done - I'll treat you as %s.\n\n%s\n\nWe'll start with \"%s\". Ready?",
		level, plan, m.courses.CurrentTopic(c, syl))
	return nil
}

func fallbackTopic(st *turn.State) string {
	if st.Topic != "" {
		return st.Topic
	}
	return "general"
}

func roadmapShortcut(message string) (turn.SkillLevel, bool) {
	match := roadmapShortcutRe.FindStringSubmatch(message)
	if match == nil {
		return "", false
	}
	return turn.ParseSkillLevel(match[1]), true
}

func isGreeting(message string) bool {
	_, ok := greetingTokens[strings.ToLower(strings.TrimSpace(message))]
	return ok
}
