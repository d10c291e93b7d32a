package turn

import (
	"strings"
	"time"
)

// Intent is the coarse-grained purpose assigned to a user message.
type Intent string

const (
	IntentLearn    Intent = "learn"
	IntentQuiz     Intent = "quiz"
	IntentRoadmap  Intent = "roadmap"
	IntentAssess   Intent = "assess"
	IntentExplain  Intent = "explain"
	IntentPractice Intent = "practice"
	IntentProgress Intent = "progress"
	IntentChat     Intent = "chat"
	IntentUnknown  Intent = "unknown"
)

// Agent names a turn handler. The dispatcher routes each turn to exactly
// one agent.
type Agent string

const (
	AgentTeaching   Agent = "teaching"
	AgentQuiz       Agent = "quiz"
	AgentPlanning   Agent = "planning"
	AgentAssessment Agent = "assessment"
	AgentProgress   Agent = "progress"
)

// SkillLevel is the learner's assessed proficiency band.
type SkillLevel string

const (
	LevelBeginner     SkillLevel = "beginner"
	LevelIntermediate SkillLevel = "intermediate"
	LevelAdvanced     SkillLevel = "advanced"
)

// ParseSkillLevel normalizes a free-form level string. Unrecognized values
// fall back to beginner, matching the evaluator's default band.
func ParseSkillLevel(s string) SkillLevel {
	switch SkillLevel(strings.ToLower(strings.TrimSpace(s))) {
	case LevelIntermediate:
		return LevelIntermediate
	case LevelAdvanced:
		return LevelAdvanced
	default:
		return LevelBeginner
	}
}

// State is the per-turn working state shared by the dispatcher and the
// handler it selects. It lives for exactly one message; the only part
// that survives between turns is Metadata, which round-trips through the
// conversation log.
type State struct {
	// UserID identifies the learner for persistence lookups.
	UserID string

	// Message is the raw user message for this turn.
	Message string

	// Profile carries optional caller-supplied user profile data.
	Profile map[string]any

	Intent     Intent
	Confidence int // 0-100

	// CourseID is set when the turn happens inside an enrolled course.
	CourseID string

	// Topic is the current learning topic, when known.
	Topic string

	SkillLevel SkillLevel

	// Reply is the natural-language response built by the handler.
	Reply string

	// UsedRAG reports whether retrieval augmented the reply.
	UsedRAG bool

	// Metadata is the free-form bag persisted with the conversation entry.
	// The onboarding step, quiz data, and topic all live here between turns.
	Metadata map[string]any

	// NextAgent is the router's handler hint.
	NextAgent Agent

	// Completed marks that no further internal routing is needed this turn.
	Completed bool

	Timestamp time.Time
}

// New builds a fresh State for one message, seeding it from the persisted
// context map (most recent conversation metadata plus caller context).
func New(userID, message string, profile, context map[string]any) *State {
	st := &State{
		UserID:     userID,
		Message:    message,
		Profile:    profile,
		Intent:     IntentUnknown,
		SkillLevel: LevelBeginner,
		Metadata:   map[string]any{},
		NextAgent:  AgentTeaching,
		Timestamp:  time.Now().UTC(),
	}

	if context != nil {
		st.Metadata = context
		if v, ok := context["skill_level"].(string); ok {
			st.SkillLevel = ParseSkillLevel(v)
		}
		if v, ok := context["current_topic"].(string); ok && v != "" {
			st.Topic = v
		}
		if v, ok := context["course_id"].(string); ok {
			st.CourseID = v
		}
	}

	return st
}
