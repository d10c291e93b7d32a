package quiz

import (
	"fmt"
	"strings"
)

// Format renders a quiz as the reply text shown to the learner.
func Format(topic string, questions []Question) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Here is your quiz on %s (%d questions):\n\n", topic, len(questions))
	for _, q := range questions {
		fmt.Fprintf(&b, "%d. %s\n", q.ID, q.Question)
		for _, letter := range []string{"A", "B", "C", "D"} {
			fmt.Fprintf(&b, "   %s) %s\n", letter, q.Options[letter])
		}
		b.WriteString("\n")
	}
	b.WriteString("Reply with your answers, e.g. \"1. A, 2. C, 3. B\".")

	return b.String()
}

// FormatResult renders a graded submission: the score line, a review of
// each missed question, and a closing note supplied by the caller
// (progress advance, retry prompt, final-exam verdict).
func FormatResult(res Result, closing string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You scored %d/%d (%.0f%%).\n", res.Score, res.Total, res.Percent)

	missed := 0
	for _, d := range res.Details {
		if d.Correct {
			continue
		}
		missed++
		if missed == 1 {
			b.WriteString("\nLet's review what you missed:\n")
		}
		given := d.Given
		if given == "" {
			given = "no answer"
		}
		fmt.Fprintf(&b, "\n%d. %s\n", d.Question.ID, d.Question.Question)
		fmt.Fprintf(&b, "   Your answer: %s. Correct answer: %s) %s\n",
			given, d.Question.CorrectAnswer, d.Question.Options[d.Question.CorrectAnswer])
		if d.Question.Explanation != "" {
			fmt.Fprintf(&b, "   %s\n", d.Question.Explanation)
		}
	}

	if closing != "" {
		b.WriteString("\n")
		b.WriteString(closing)
	}
	return b.String()
}
