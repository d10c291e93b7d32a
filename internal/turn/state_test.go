package turn

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseSkillLevel(t *testing.T) {
	tests := []struct {
		input string
		want  SkillLevel
	}{
		{"beginner", LevelBeginner},
		{"Intermediate", LevelIntermediate},
		{" ADVANCED ", LevelAdvanced},
		{"expert", LevelBeginner},
		{"", LevelBeginner},
	}

	for _, tc := range tests {
		if got := ParseSkillLevel(tc.input); got != tc.want {
			t.Errorf("ParseSkillLevel(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestParseStep(t *testing.T) {
	tests := []struct {
		input any
		want  Step
	}{
		{nil, StepNone},
		{"", StepNone},
		{"diagnostic_quiz_pending", StepDiagnosticPending},
		{"evaluate_and_plan", StepEvaluateAndPlan},
		{"completed", StepCompleted},
		{"garbage", StepUnknown},
		{42, StepNone},
	}

	for _, tc := range tests {
		if got := ParseStep(tc.input); got != tc.want {
			t.Errorf("ParseStep(%v) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestStepActive(t *testing.T) {
	if StepNone.Active() || StepCompleted.Active() {
		t.Error("none/completed must not capture routing")
	}
	if !StepDiagnosticPending.Active() || !StepEvaluateAndPlan.Active() || !StepUnknown.Active() {
		t.Error("pending, evaluate, and unknown steps must capture routing")
	}
}

func TestNewSeedsFromContext(t *testing.T) {
	st := New("u1", "hello", nil, map[string]any{
		"skill_level":     "advanced",
		"current_topic":   "sql",
		"course_id":       "c1",
		"onboarding_step": "evaluate_and_plan",
	})

	require.Equal(t, LevelAdvanced, st.SkillLevel)
	require.Equal(t, "sql", st.Topic)
	require.Equal(t, "c1", st.CourseID)
	require.Equal(t, StepEvaluateAndPlan, st.OnboardingStep())
	require.Equal(t, IntentUnknown, st.Intent)
}

func TestNewWithoutContext(t *testing.T) {
	st := New("u1", "hello", nil, nil)

	require.Equal(t, LevelBeginner, st.SkillLevel)
	require.Equal(t, StepNone, st.OnboardingStep())
	require.NotNil(t, st.Metadata)
}

func TestStepRoundTrip(t *testing.T) {
	st := New("u1", "m", nil, nil)

	st.SetOnboardingStep(StepDiagnosticPending)
	require.Equal(t, StepDiagnosticPending, st.OnboardingStep())
	require.Equal(t, "diagnostic_quiz_pending", st.Metadata[stepKey])

	st.SetOnboardingStep(StepNone)
	require.Equal(t, StepNone, st.OnboardingStep())
	require.Equal(t, "", st.Metadata[stepKey])
}

func TestSettersKeepMetadataInSync(t *testing.T) {
	st := New("u1", "m", nil, nil)

	st.SetTopic("databases")
	st.SetSkillLevel(LevelIntermediate)
	st.SetCourseID("c9")

	require.Equal(t, "databases", st.Metadata["current_topic"])
	require.Equal(t, "intermediate", st.Metadata["skill_level"])
	require.Equal(t, "c9", st.Metadata["course_id"])
}

func TestFinalExamFlag(t *testing.T) {
	st := New("u1", "m", nil, nil)
	require.False(t, st.FinalExamTaken())

	st.MarkFinalExamTaken()
	require.True(t, st.FinalExamTaken())

	// Survives the persistence round trip.
	raw, _ := json.Marshal(st.Metadata)
	var loaded map[string]any
	require.NoError(t, json.Unmarshal(raw, &loaded))
	next := New("u1", "m2", nil, loaded)
	require.True(t, next.FinalExamTaken())
}
