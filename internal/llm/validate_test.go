package llm

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func questionSchema() *Schema {
	return &Schema{
		Name:        "quiz-question",
		Description: "A multiple-choice quiz question",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"question":       map[string]any{"type": "string"},
				"id":             map[string]any{"type": "integer", "minimum": 1},
				"correct_answer": map[string]any{"type": "string", "enum": []any{"A", "B", "C", "D"}},
			},
			"required": []any{"question", "id"},
		},
	}
}

func TestValidateResponse_ValidQuestion(t *testing.T) {
	raw := json.RawMessage(`{"question":"What does SELECT do?","id":1,"correct_answer":"B"}`)
	require.NoError(t, validateResponse(questionSchema(), raw))
}

func TestValidateResponse_OptionalFieldMayBeAbsent(t *testing.T) {
	raw := json.RawMessage(`{"question":"What does SELECT do?","id":2}`)
	require.NoError(t, validateResponse(questionSchema(), raw))
}

func TestValidateResponse_MissingRequired(t *testing.T) {
	raw := json.RawMessage(`{"question":"No id on this one"}`)
	err := validateResponse(questionSchema(), raw)
	require.Error(t, err)
	var invErr *ErrInvalidResponse
	require.ErrorAs(t, err, &invErr)
}

func TestValidateResponse_WrongType(t *testing.T) {
	raw := json.RawMessage(`{"question":"What does SELECT do?","id":"one"}`)
	err := validateResponse(questionSchema(), raw)
	require.Error(t, err)
	var invErr *ErrInvalidResponse
	require.ErrorAs(t, err, &invErr)
}

func TestValidateResponse_AnswerOutsideOptionSet(t *testing.T) {
	raw := json.RawMessage(`{"question":"What does SELECT do?","id":3,"correct_answer":"E"}`)
	err := validateResponse(questionSchema(), raw)
	require.Error(t, err)
	var invErr *ErrInvalidResponse
	require.ErrorAs(t, err, &invErr)
}

func TestValidateResponse_MalformedJSON(t *testing.T) {
	err := validateResponse(questionSchema(), json.RawMessage(`{not json}`))
	require.Error(t, err)
	var invErr *ErrInvalidResponse
	require.ErrorAs(t, err, &invErr)
}

func TestValidateResponse_EmptyResponse(t *testing.T) {
	require.Error(t, validateResponse(questionSchema(), json.RawMessage(``)))
}

func TestValidateResponse_NilSchemaAcceptsAnything(t *testing.T) {
	require.NoError(t, validateResponse(nil, json.RawMessage(`{"free":"text"}`)))
}

func TestValidateResponse_NestedSyllabus(t *testing.T) {
	schema := &Schema{
		Name:        "syllabus-nested",
		Description: "A course syllabus",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"module": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"title": map[string]any{"type": "string"},
					},
					"required": []any{"title"},
				},
				"topics": map[string]any{
					"type":  "array",
					"items": map[string]any{"type": "string"},
				},
			},
			"required": []any{"module", "topics"},
		},
	}

	valid := json.RawMessage(`{"module":{"title":"SQL Basics"},"topics":["select","where","joins"]}`)
	require.NoError(t, validateResponse(schema, valid))

	invalid := json.RawMessage(`{"module":{"title":"SQL Basics"},"topics":[1,2]}`)
	require.Error(t, validateResponse(schema, invalid))
}
