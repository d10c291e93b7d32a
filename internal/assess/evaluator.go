package assess

import (
	"fmt"

	"github.com/bindulearn/bindu/internal/quiz"
	"github.com/bindulearn/bindu/internal/turn"
)

// Evaluation is the outcome of grading a diagnostic quiz.
type Evaluation struct {
	Level      turn.SkillLevel
	Strengths  []string
	Weaknesses []string
	Result     quiz.Result
}

// bucket accumulates per-difficulty correctness.
type bucket struct {
	correct int
	total   int
}

func (b bucket) ratio() float64 {
	if b.total == 0 {
		return 0
	}
	return float64(b.correct) / float64(b.total)
}

// Evaluate derives a skill level from a graded diagnostic. The level gate
// is conjunctive: advanced requires at least one correct answer in every
// difficulty bucket, intermediate requires basic and intermediate hits.
// Strengths are buckets at 75% or better, weaknesses below 50%.
func Evaluate(topic string, res quiz.Result) Evaluation {
	buckets := map[quiz.Difficulty]*bucket{
		quiz.DifficultyBasic:        {},
		quiz.DifficultyIntermediate: {},
		quiz.DifficultyAdvanced:     {},
	}
	for _, d := range res.Details {
		b, ok := buckets[d.Question.Difficulty]
		if !ok {
			// Unlabeled questions count toward the basic bucket.
			b = buckets[quiz.DifficultyBasic]
		}
		b.total++
		if d.Correct {
			b.correct++
		}
	}

	level := turn.LevelBeginner
	if buckets[quiz.DifficultyBasic].correct > 0 && buckets[quiz.DifficultyIntermediate].correct > 0 {
		level = turn.LevelIntermediate
		if buckets[quiz.DifficultyAdvanced].correct > 0 {
			level = turn.LevelAdvanced
		}
	}

	ev := Evaluation{Level: level, Result: res}
	for _, d := range []quiz.Difficulty{quiz.DifficultyBasic, quiz.DifficultyIntermediate, quiz.DifficultyAdvanced} {
		b := buckets[d]
		if b.total == 0 {
			continue
		}
		switch r := b.ratio(); {
		case r >= 0.75:
			ev.Strengths = append(ev.Strengths, fmt.Sprintf("%s %s concepts", d, topic))
		case r < 0.5:
			ev.Weaknesses = append(ev.Weaknesses, fmt.Sprintf("%s %s concepts", d, topic))
		}
	}

	if len(ev.Strengths) == 0 {
		ev.Strengths = []string{fmt.Sprintf("willingness to learn %s", topic)}
	}
	if len(ev.Weaknesses) == 0 {
		ev.Weaknesses = []string{fmt.Sprintf("deepening %s knowledge further", topic)}
	}
	return ev
}
