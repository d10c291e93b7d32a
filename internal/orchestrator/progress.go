package orchestrator

import (
	"context"
	"fmt"
	"strings"

	"github.com/bindulearn/bindu/internal/turn"
)

// progress summarizes where the learner stands: course completion, quiz
// average, and any questions still waiting on better material.
func (d *Dispatcher) progress(ctx context.Context, st *turn.State) error {
	c, syl, err := d.courses.Current(ctx, st.UserID)
	if err != nil {
		return err
	}
	if c == nil {
		st.Reply = "You're not enrolled in a course yet. Tell me what you'd like to learn and we'll get started!"
		return nil
	}

	pct := d.courses.Progress(c, syl)
	avg, err := d.results.AverageByCourse(ctx, c.ID)
	if err != nil {
		return err
	}
	gaps, err := d.gaps.Open(ctx, st.UserID)
	if err != nil {
		return err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Your %s course is %.0f%% complete.\n", c.Topic, pct)
	if c.Completed {
		b.WriteString("You've finished every topic - congratulations!\n")
	} else {
		fmt.Fprintf(&b, "Current topic: %s\n", d.courses.CurrentTopic(c, syl))
	}
	if avg > 0 {
		fmt.Fprintf(&b, "Quiz average: %.0f%%\n", avg)
	} else {
		b.WriteString("No quizzes taken yet - say \"quiz\" to check your understanding.\n")
	}
	if n := len(gaps); n > 0 {
		fmt.Fprintf(&b, "\nThere are %d question(s) I couldn't answer well from the material; ingest more documents and ask again.", n)
	}

	st.Reply = strings.TrimRight(b.String(), "\n")
	return nil
}
