package assess

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/bindulearn/bindu/internal/llm"
	"github.com/bindulearn/bindu/internal/rag"
)

const planSystem = `You are a tutor writing a short personalized study plan. Write a friendly plan with a "This week" section of 3-4 concrete steps and a "Next" section of 2 steps. Address the learner's weaknesses first and build on their strengths. Keep it under 200 words.`

// StudyPlan generates a personalized plan from a diagnostic evaluation,
// augmented with any relevant corpus material. LLM failure degrades to a
// fixed plan so onboarding always completes.
func StudyPlan(ctx context.Context, svc *llm.Service, retriever rag.Retriever, topic string, ev Evaluation, logger *zap.Logger) string {
	var ragContext string
	if retriever != nil {
		docs, err := retriever.Retrieve(ctx, topic, 3)
		if err != nil {
			logger.Warn("plan retrieval failed", zap.String("topic", topic), zap.Error(err))
		}
		var parts []string
		for _, d := range docs {
			parts = append(parts, d.Text)
		}
		ragContext = strings.Join(parts, "\n\n")
	}

	prompt := fmt.Sprintf(
		"Topic: %s\nAssessed level: %s\nStrengths: %s\nWeaknesses: %s\n\nWrite the study plan.",
		topic, ev.Level,
		strings.Join(ev.Strengths, "; "),
		strings.Join(ev.Weaknesses, "; "))

	plan, err := svc.GenerateText(llm.WithPurpose(ctx, "study-plan"), llm.GenerateInput{
		Prompt:  prompt,
		Context: ragContext,
	})
	if err != nil || strings.TrimSpace(plan) == "" {
		logger.Warn("study plan generation failed, using fallback",
			zap.String("topic", topic), zap.Error(err))
		return FallbackPlan(topic, ev)
	}
	return plan
}

// FallbackPlan is the fixed study plan used when generation fails.
func FallbackPlan(topic string, ev Evaluation) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Here is your %s study plan (level: %s).\n\n", topic, ev.Level)
	b.WriteString("This week:\n")
	fmt.Fprintf(&b, "1. Review the fundamentals of %s for 20 minutes a day.\n", topic)
	if len(ev.Weaknesses) > 0 {
		fmt.Fprintf(&b, "2. Spend extra time on: %s.\n", strings.Join(ev.Weaknesses, ", "))
	} else {
		fmt.Fprintf(&b, "2. Work through one small %s exercise daily.\n", topic)
	}
	b.WriteString("3. Take a short quiz to check what stuck.\n\n")
	b.WriteString("Next:\n")
	fmt.Fprintf(&b, "1. Apply %s to a small project of your own.\n", topic)
	b.WriteString("2. Ask me to quiz you again and watch your score climb.")

	return b.String()
}
