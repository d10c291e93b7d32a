package quiz

// Difficulty buckets a question for generation and for skill evaluation.
type Difficulty string

const (
	DifficultyBasic        Difficulty = "basic"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

// Question is a single multiple-choice question. Questions round-trip
// through conversation metadata verbatim, so every field is exported and
// JSON-tagged.
type Question struct {
	// ID is the 1-based position of the question within its quiz.
	ID int `json:"id"`

	Difficulty Difficulty `json:"difficulty"`

	// Question is the prompt text shown to the learner.
	Question string `json:"question"`

	// Options maps option letters ("A".."D") to option text.
	Options map[string]string `json:"options"`

	// CorrectAnswer is the letter of the correct option.
	CorrectAnswer string `json:"correct_answer"`

	// Explanation is a short rationale shown after grading.
	Explanation string `json:"explanation"`
}

// Answer pairs a question number with the letter the learner chose.
type Answer struct {
	Number int
	Letter string
}

// QuestionResult records the grading outcome for one question.
type QuestionResult struct {
	Question Question
	Given    string
	Correct  bool
}

// Result is the grading outcome for a full quiz submission.
type Result struct {
	Score   int
	Total   int
	Percent float64
	Details []QuestionResult
}

// Passed reports whether the submission clears the progression threshold.
func (r Result) Passed() bool {
	return r.Percent >= PassThreshold
}

// PassThreshold is the minimum percentage that advances course progress.
const PassThreshold = 70.0
