package turn

// Metadata keys shared across turns. Handlers read and write only through
// the helpers below so the wire forms stay consistent.
const (
	topicKey     = "current_topic"
	skillKey     = "skill_level"
	courseKey    = "course_id"
	finalExamKey = "final_exam_taken"
	errorKey     = "error"
)

// SetTopic updates the working topic and its persisted form together.
func (st *State) SetTopic(topic string) {
	st.Topic = topic
	st.ensureMetadata()
	st.Metadata[topicKey] = topic
}

// SetSkillLevel updates the skill level and its persisted form together.
func (st *State) SetSkillLevel(level SkillLevel) {
	st.SkillLevel = level
	st.ensureMetadata()
	st.Metadata[skillKey] = string(level)
}

// SetCourseID updates the course binding and its persisted form together.
func (st *State) SetCourseID(id string) {
	st.CourseID = id
	st.ensureMetadata()
	st.Metadata[courseKey] = id
}

// FinalExamTaken reports whether the course final exam was already
// offered. The final exam happens at most once per course.
func (st *State) FinalExamTaken() bool {
	if st.Metadata == nil {
		return false
	}
	b, _ := st.Metadata[finalExamKey].(bool)
	return b
}

// MarkFinalExamTaken records that the final exam was offered.
func (st *State) MarkFinalExamTaken() {
	st.ensureMetadata()
	st.Metadata[finalExamKey] = true
}

// SetError records a handler failure in the metadata bag for diagnosis.
func (st *State) SetError(msg string) {
	st.ensureMetadata()
	st.Metadata[errorKey] = msg
}

func (st *State) ensureMetadata() {
	if st.Metadata == nil {
		st.Metadata = map[string]any{}
	}
}
