package turn

// Step marks where a learner is in the onboarding/assessment pipeline.
// It is persisted as a string inside the metadata bag because the system
// is stateless between turns; ParseStep validates the wire form back into
// the closed set on every read.
type Step string

const (
	// StepNone means no onboarding flow is active.
	StepNone Step = ""

	// StepDiagnosticPending means a topic is being captured and a
	// diagnostic quiz will be generated on the next message.
	StepDiagnosticPending Step = "diagnostic_quiz_pending"

	// StepEvaluateAndPlan means a diagnostic quiz is outstanding and the
	// next message is expected to carry answers.
	StepEvaluateAndPlan Step = "evaluate_and_plan"

	// StepCompleted is the terminal state; ordinary intent routing resumes.
	StepCompleted Step = "completed"

	// StepUnknown marks a corrupt or unrecognized persisted value. The
	// onboarding machine treats it as its fallback branch.
	StepUnknown Step = "unknown"
)

// stepKey is the metadata key the step round-trips through.
const stepKey = "onboarding_step"

// ParseStep validates a persisted step value. Absent and "completed"
// values are distinguishable so the dispatcher can tell "never onboarded"
// from "finished onboarding"; anything outside the closed set maps to
// StepUnknown rather than being silently carried along.
func ParseStep(v any) Step {
	s, ok := v.(string)
	if !ok || s == "" {
		return StepNone
	}
	switch Step(s) {
	case StepDiagnosticPending, StepEvaluateAndPlan, StepCompleted:
		return Step(s)
	}
	return StepUnknown
}

// Active reports whether the step should capture routing for the turn.
func (s Step) Active() bool {
	return s == StepDiagnosticPending || s == StepEvaluateAndPlan || s == StepUnknown
}

// OnboardingStep reads the validated step from the metadata bag.
func (st *State) OnboardingStep() Step {
	if st.Metadata == nil {
		return StepNone
	}
	return ParseStep(st.Metadata[stepKey])
}

// SetOnboardingStep writes the step into the metadata bag. StepNone is
// stored as an empty string so a fresh flow and a reset flow look alike
// on the wire.
func (st *State) SetOnboardingStep(s Step) {
	if st.Metadata == nil {
		st.Metadata = map[string]any{}
	}
	if s == StepNone {
		st.Metadata[stepKey] = ""
		return
	}
	st.Metadata[stepKey] = string(s)
}
