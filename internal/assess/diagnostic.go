package assess

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/bindulearn/bindu/internal/quiz"
)

// diagnosticSize is the number of questions in a diagnostic quiz:
// two basic, two intermediate, one advanced.
const diagnosticSize = 5

var diagnosticDistribution = map[quiz.Difficulty]int{
	quiz.DifficultyBasic:        2,
	quiz.DifficultyIntermediate: 2,
	quiz.DifficultyAdvanced:     1,
}

// QuizGenerator is the slice of the quiz generator the assessor needs.
type QuizGenerator interface {
	Generate(ctx context.Context, input quiz.GenerateInput) ([]quiz.Question, quiz.ParseOutcome, error)
}

// Diagnostic generates the onboarding diagnostic quiz for a topic. When
// generation cannot deliver a full five-question quiz the fixed fallback
// set is used so onboarding always proceeds.
func Diagnostic(ctx context.Context, gen QuizGenerator, topic string, logger *zap.Logger) []quiz.Question {
	questions, outcome, err := gen.Generate(ctx, quiz.GenerateInput{
		Topic:        topic,
		Level:        "mixed",
		Count:        diagnosticSize,
		Distribution: diagnosticDistribution,
	})
	if err != nil || outcome == quiz.OutcomeFallback || len(questions) < diagnosticSize {
		logger.Warn("diagnostic generation incomplete, using fixed set",
			zap.String("topic", topic),
			zap.String("outcome", string(outcome)),
			zap.Error(err))
		return FallbackDiagnostic(topic)
	}
	return questions
}

// FallbackDiagnostic is the fixed five-question set used when diagnostic
// generation fails. It keeps the 2/2/1 difficulty distribution.
func FallbackDiagnostic(topic string) []quiz.Question {
	return []quiz.Question{
		{
			ID:         1,
			Difficulty: quiz.DifficultyBasic,
			Question:   fmt.Sprintf("How familiar are you with the basic terms used in %s?", topic),
			Options: map[string]string{
				"A": "I know most of them",
				"B": "I know some of them",
				"C": "I have heard a few",
				"D": "They are all new to me",
			},
			CorrectAnswer: "A",
			Explanation:   "Knowing the vocabulary is the first step.",
		},
		{
			ID:         2,
			Difficulty: quiz.DifficultyBasic,
			Question:   fmt.Sprintf("Have you used %s to solve a small practical problem before?", topic),
			Options: map[string]string{
				"A": "Yes, several times",
				"B": "Once or twice",
				"C": "Only in examples I read",
				"D": "Never",
			},
			CorrectAnswer: "A",
			Explanation:   "Hands-on use signals working knowledge of the basics.",
		},
		{
			ID:         3,
			Difficulty: quiz.DifficultyIntermediate,
			Question:   fmt.Sprintf("Could you explain a core concept of %s to a friend?", topic),
			Options: map[string]string{
				"A": "Yes, clearly with examples",
				"B": "Roughly, with some gaps",
				"C": "Only the general idea",
				"D": "Not yet",
			},
			CorrectAnswer: "A",
			Explanation:   "Teaching a concept back is a reliable test of understanding.",
		},
		{
			ID:         4,
			Difficulty: quiz.DifficultyIntermediate,
			Question:   fmt.Sprintf("When something goes wrong while working with %s, what do you do?", topic),
			Options: map[string]string{
				"A": "Diagnose it methodically on my own",
				"B": "Search for the error and adapt what I find",
				"C": "Ask someone for help",
				"D": "Start over from scratch",
			},
			CorrectAnswer: "A",
			Explanation:   "Methodical debugging reflects intermediate command of a subject.",
		},
		{
			ID:         5,
			Difficulty: quiz.DifficultyAdvanced,
			Question:   fmt.Sprintf("Have you compared different approaches or tools within %s and chosen between them?", topic),
			Options: map[string]string{
				"A": "Yes, with clear reasoning",
				"B": "Yes, but mostly by habit",
				"C": "I use whatever a tutorial suggests",
				"D": "I did not know there were alternatives",
			},
			CorrectAnswer: "A",
			Explanation:   "Weighing trade-offs between approaches is an advanced skill.",
		},
	}
}
