package course

import "github.com/bindulearn/bindu/internal/llm"

// SyllabusSchema defines the JSON schema for LLM syllabus generation.
var SyllabusSchema = &llm.Schema{
	Name:        "course-syllabus",
	Description: "An ordered course syllabus of modules, each with an ordered topic list",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"modules": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"title": map[string]any{
							"type":        "string",
							"description": "Module title",
						},
						"topics": map[string]any{
							"type":        "array",
							"items":       map[string]any{"type": "string"},
							"description": "Topics taught in order within this module",
						},
					},
					"required":             []any{"title", "topics"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"modules"},
		"additionalProperties": false,
	},
}
