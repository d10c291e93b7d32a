package quiz

import "fmt"

// Fallback returns the single-question quiz used when generation fails.
// "All of the above" is the correct option so a learner who knows the
// topic at all still gets a fair question.
func Fallback(topic string) []Question {
	if topic == "" {
		topic = "this subject"
	}
	return []Question{
		{
			ID:         1,
			Difficulty: DifficultyBasic,
			Question:   fmt.Sprintf("Which of these is a good way to get better at %s?", topic),
			Options: map[string]string{
				"A": "Practice regularly",
				"B": "Review mistakes",
				"C": "Ask questions when stuck",
				"D": "All of the above",
			},
			CorrectAnswer: "D",
			Explanation:   "Consistent practice, reviewing mistakes, and asking questions all build skill together.",
		},
	}
}
