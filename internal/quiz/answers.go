package quiz

import (
	"regexp"
	"strconv"
	"strings"
)

// pairRe matches explicit number/letter answer pairs such as
// "1. A", "2:b", "3) C" or "4 d".
var pairRe = regexp.MustCompile(`(?i)(\d+)[\.\:\)\s]*([A-D])`)

// letterRe matches a bare option letter standing alone.
var letterRe = regexp.MustCompile(`(?i)\b([A-D])\b`)

// LooksLikeAnswers reports whether a message reads as a quiz submission.
// Only meaningful while a quiz is pending; the caller checks that.
func LooksLikeAnswers(message string) bool {
	if pairRe.MatchString(message) {
		return true
	}
	// A run of bare letters ("a b c d" or "A, C, B, D") with nothing else
	// of substance also counts.
	letters := letterRe.FindAllString(message, -1)
	if len(letters) == 0 {
		return false
	}
	stripped := strings.Map(func(r rune) rune {
		if r == ',' || r == ' ' || r == '\n' || r == '\t' {
			return -1
		}
		return r
	}, message)
	return len(stripped) == len(letters)
}

// ParseAnswers extracts (question number, letter) pairs from a message.
// Explicit pairs win; when the message carries only bare letters they are
// assigned positionally to questions 1..total. Letters are normalized to
// upper case. Pairs referencing question numbers outside 1..total are
// dropped.
func ParseAnswers(message string, total int) map[int]string {
	answers := map[int]string{}

	for _, m := range pairRe.FindAllStringSubmatch(message, -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil || n < 1 || n > total {
			continue
		}
		answers[n] = strings.ToUpper(m[2])
	}
	if len(answers) > 0 {
		return answers
	}

	for i, m := range letterRe.FindAllStringSubmatch(message, -1) {
		if i >= total {
			break
		}
		answers[i+1] = strings.ToUpper(m[1])
	}
	return answers
}

// Grade scores a submission against the pending questions. Unanswered
// questions count as wrong. Percent is 0 for an empty question list.
func Grade(questions []Question, answers map[int]string) Result {
	res := Result{Total: len(questions)}
	for _, q := range questions {
		given := answers[q.ID]
		correct := given != "" && strings.EqualFold(given, q.CorrectAnswer)
		if correct {
			res.Score++
		}
		res.Details = append(res.Details, QuestionResult{
			Question: q,
			Given:    given,
			Correct:  correct,
		})
	}
	if res.Total > 0 {
		res.Percent = float64(res.Score) / float64(res.Total) * 100
	}
	return res
}
