package roadmap

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/bindulearn/bindu/internal/llm"
	"github.com/bindulearn/bindu/internal/turn"
)

// defaultWeeks is the roadmap length when the learner names none.
const defaultWeeks = 4

var (
	weeksRe = regexp.MustCompile(`(?i)(\d+)\s*weeks?`)
	hoursRe = regexp.MustCompile(`(?i)(\d+)\s*hours?\s*(?:a|per)\s*day`)
)

// Week is one step of a learning roadmap.
type Week struct {
	Week  int      `json:"week"`
	Focus string   `json:"focus"`
	Goals []string `json:"goals"`
}

// Roadmap is a multi-week learning plan.
type Roadmap struct {
	Topic string `json:"topic"`
	Weeks []Week `json:"weeks"`
}

// Schema defines the JSON schema for roadmap generation.
var Schema = &llm.Schema{
	Name:        "learning-roadmap",
	Description: "A week-by-week learning roadmap",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"weeks": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"week":  map[string]any{"type": "integer", "minimum": 1},
						"focus": map[string]any{"type": "string"},
						"goals": map[string]any{
							"type":  "array",
							"items": map[string]any{"type": "string"},
						},
					},
					"required":             []any{"week", "focus", "goals"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"weeks"},
		"additionalProperties": false,
	},
}

const planSystem = `You are a tutor planning a realistic week-by-week learning roadmap. Each week gets a focus and 2-4 concrete, checkable goals. Respect the learner's stated time budget.`

// Planner builds learning roadmaps.
type Planner struct {
	llm    *llm.Service
	logger *zap.Logger
}

// NewPlanner creates a Planner.
func NewPlanner(svc *llm.Service, logger *zap.Logger) *Planner {
	return &Planner{llm: svc, logger: logger}
}

// Handle answers a roadmap request: it reads the duration and daily time
// budget out of the message, generates the roadmap, and renders it. The
// LLM failing yields the fixed fallback roadmap.
func (p *Planner) Handle(ctx context.Context, st *turn.State) error {
	topic := st.Topic
	if topic == "" {
		topic = "your subject"
	}
	weeks, hoursPerDay := parseTimeBudget(st.Message)

	rm := p.generate(ctx, topic, string(st.SkillLevel), weeks, hoursPerDay)
	st.Reply = Render(rm, hoursPerDay)
	st.Completed = true
	return nil
}

func (p *Planner) generate(ctx context.Context, topic, level string, weeks, hoursPerDay int) *Roadmap {
	ctx = llm.WithPurpose(ctx, "roadmap-gen")

	prompt := fmt.Sprintf("Topic: %s\nLevel: %s\nWeeks: %d", topic, level, weeks)
	if hoursPerDay > 0 {
		prompt += fmt.Sprintf("\nTime budget: %d hours per day", hoursPerDay)
	}

	raw, err := p.llm.GenerateObject(ctx, planSystem, prompt, Schema)
	if err != nil {
		p.logger.Warn("roadmap generation failed, using fallback",
			zap.String("topic", topic), zap.Error(err))
		return Fallback(topic, weeks)
	}

	var out struct {
		Weeks []Week `json:"weeks"`
	}
	if err := json.Unmarshal(raw, &out); err != nil || len(out.Weeks) == 0 {
		p.logger.Warn("roadmap response unusable, using fallback",
			zap.String("topic", topic))
		return Fallback(topic, weeks)
	}
	return &Roadmap{Topic: topic, Weeks: out.Weeks}
}

// parseTimeBudget extracts "N weeks" and "N hours a/per day" from the
// message. Weeks default to defaultWeeks; hours default to 0 (unstated).
func parseTimeBudget(message string) (weeks, hoursPerDay int) {
	weeks = defaultWeeks
	if m := weeksRe.FindStringSubmatch(message); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			weeks = n
		}
	}
	if m := hoursRe.FindStringSubmatch(message); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			hoursPerDay = n
		}
	}
	return weeks, hoursPerDay
}

// Render formats a roadmap for the learner.
func Render(rm *Roadmap, hoursPerDay int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Here's your %d-week roadmap for %s", len(rm.Weeks), rm.Topic)
	if hoursPerDay > 0 {
		fmt.Fprintf(&b, " (about %d hours a day)", hoursPerDay)
	}
	b.WriteString(":\n")

	for _, w := range rm.Weeks {
		fmt.Fprintf(&b, "\nWeek %d: %s\n", w.Week, w.Focus)
		for _, g := range w.Goals {
			fmt.Fprintf(&b, "- %s\n", g)
		}
	}

	b.WriteString("\nSay \"quiz me\" at the end of any week to check yourself.")
	return b.String()
}

// Fallback is the fixed roadmap used when generation fails.
func Fallback(topic string, weeks int) *Roadmap {
	if weeks <= 0 {
		weeks = defaultWeeks
	}
	phases := []struct {
		focus string
		goals []string
	}{
		{"Fundamentals of " + topic, []string{
			"Read an introduction to " + topic,
			"Learn the core vocabulary",
			"Try two small examples",
		}},
		{"Core skills", []string{
			"Work through guided exercises",
			"Explain one concept in your own words",
		}},
		{"Applying " + topic, []string{
			"Build a small project using " + topic,
			"Review and fix your mistakes",
		}},
		{"Consolidation", []string{
			"Take a self-test on " + topic,
			"Revisit your weakest area",
			"Plan what to learn next",
		}},
	}

	rm := &Roadmap{Topic: topic}
	for i := 0; i < weeks; i++ {
		ph := phases[min(i*len(phases)/weeks, len(phases)-1)]
		rm.Weeks = append(rm.Weeks, Week{Week: i + 1, Focus: ph.focus, Goals: ph.goals})
	}
	return rm
}
