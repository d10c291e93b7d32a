package quiz

import "encoding/json"

// metaKey is where the pending quiz lives inside the conversation
// metadata bag between the turn that issues it and the turn that
// answers it.
const metaKey = "quiz_data"

// pendingData is the persisted form of an outstanding quiz.
type pendingData struct {
	Topic      string     `json:"topic"`
	Questions  []Question `json:"questions"`
	Diagnostic bool       `json:"diagnostic,omitempty"`
	FinalExam  bool       `json:"final_exam,omitempty"`
}

// PendingFrom reads the outstanding quiz from a metadata bag. ok is
// false when no quiz is pending or the stored value is unreadable.
func PendingFrom(md map[string]any) (topic string, questions []Question, ok bool) {
	data, ok := decodePending(md)
	if !ok || len(data.Questions) == 0 {
		return "", nil, false
	}
	return data.Topic, data.Questions, true
}

// IsDiagnostic reports whether the pending quiz is an onboarding
// diagnostic.
func IsDiagnostic(md map[string]any) bool {
	data, ok := decodePending(md)
	return ok && data.Diagnostic
}

// IsFinalExam reports whether the pending quiz is a course final exam.
func IsFinalExam(md map[string]any) bool {
	data, ok := decodePending(md)
	return ok && data.FinalExam
}

// SetPending stores a regular topic quiz in the metadata bag.
func SetPending(md map[string]any, topic string, questions []Question) {
	setPending(md, pendingData{Topic: topic, Questions: questions})
}

// SetDiagnostic stores an onboarding diagnostic quiz in the metadata bag.
func SetDiagnostic(md map[string]any, topic string, questions []Question) {
	setPending(md, pendingData{Topic: topic, Questions: questions, Diagnostic: true})
}

// SetFinalExam stores a course final exam in the metadata bag.
func SetFinalExam(md map[string]any, topic string, questions []Question) {
	setPending(md, pendingData{Topic: topic, Questions: questions, FinalExam: true})
}

// Clear removes any pending quiz from the metadata bag.
func Clear(md map[string]any) {
	delete(md, metaKey)
}

func setPending(md map[string]any, data pendingData) {
	md[metaKey] = data
}

// decodePending tolerates both shapes the stored value can take: the
// typed struct written this process, and the generic map it becomes
// after a round trip through the conversation log. Re-marshaling
// through JSON normalizes both.
func decodePending(md map[string]any) (pendingData, bool) {
	if md == nil {
		return pendingData{}, false
	}
	v, exists := md[metaKey]
	if !exists {
		return pendingData{}, false
	}

	if data, isTyped := v.(pendingData); isTyped {
		return data, true
	}

	raw, err := json.Marshal(v)
	if err != nil {
		return pendingData{}, false
	}
	var data pendingData
	if err := json.Unmarshal(raw, &data); err != nil {
		return pendingData{}, false
	}
	return data, true
}
