package course

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/bindulearn/bindu/internal/llm"
	"github.com/bindulearn/bindu/internal/store"
)

const systemPrompt = `You are a curriculum designer. Produce a course syllabus as ordered modules, each with 2-4 concrete topics. Start from fundamentals appropriate for the stated level and build up. Use short topic names a tutor can teach in one sitting.`

// Service creates courses and moves learners through them.
type Service struct {
	repo     store.CourseRepo
	provider llm.Provider
	logger   *zap.Logger
}

// NewService creates a course Service.
func NewService(repo store.CourseRepo, provider llm.Provider, logger *zap.Logger) *Service {
	return &Service{repo: repo, provider: provider, logger: logger}
}

// Create generates a syllabus for the topic and level and persists a new
// course starting at its first topic. Generation failures fall back to a
// generic syllabus so enrollment never fails on the LLM.
func (s *Service) Create(ctx context.Context, userID, topic, level string) (*store.Course, *Syllabus, error) {
	syl := s.generateSyllabus(ctx, topic, level)

	raw, err := json.Marshal(syl)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal syllabus: %w", err)
	}

	c := &store.Course{
		UserID:     userID,
		Topic:      topic,
		SkillLevel: level,
		Syllabus:   raw,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, nil, err
	}

	s.logger.Info("course created",
		zap.String("user_id", userID),
		zap.String("topic", topic),
		zap.String("level", level),
		zap.Int("modules", len(syl.Modules)))

	return c, syl, nil
}

// Current returns the user's most recent course with its decoded
// syllabus, or (nil, nil, nil) when the user has no course.
func (s *Service) Current(ctx context.Context, userID string) (*store.Course, *Syllabus, error) {
	c, err := s.repo.LatestByUser(ctx, userID)
	if err != nil || c == nil {
		return nil, nil, err
	}
	syl, err := Decode(c.Syllabus)
	if err != nil {
		return nil, nil, err
	}
	return c, syl, nil
}

// Get returns a course by ID with its decoded syllabus, or nils.
func (s *Service) Get(ctx context.Context, id string) (*store.Course, *Syllabus, error) {
	c, err := s.repo.Get(ctx, id)
	if err != nil || c == nil {
		return nil, nil, err
	}
	syl, err := Decode(c.Syllabus)
	if err != nil {
		return nil, nil, err
	}
	return c, syl, nil
}

// CurrentTopic returns the topic under the course cursor, or "" when the
// course is completed.
func (s *Service) CurrentTopic(c *store.Course, syl *Syllabus) string {
	if c.Completed {
		return ""
	}
	return syl.TopicAt(Cursor{Module: c.ModuleIndex, Topic: c.TopicIndex})
}

// Advance moves the course cursor one topic forward and persists it.
// Returns the next topic ("" when the course just completed) and the
// completion flag.
func (s *Service) Advance(ctx context.Context, c *store.Course, syl *Syllabus) (string, bool, error) {
	cur, done := syl.Advance(Cursor{Module: c.ModuleIndex, Topic: c.TopicIndex})

	c.ModuleIndex = cur.Module
	c.TopicIndex = cur.Topic
	c.Completed = done
	if err := s.repo.UpdateProgress(ctx, c.ID, cur.Module, cur.Topic, done); err != nil {
		return "", false, err
	}

	if done {
		return "", true, nil
	}
	return syl.TopicAt(cur), false, nil
}

// Progress returns percent complete for a course.
func (s *Service) Progress(c *store.Course, syl *Syllabus) float64 {
	return syl.Progress(Cursor{Module: c.ModuleIndex, Topic: c.TopicIndex}, c.Completed)
}

// Decode parses a persisted syllabus blob.
func Decode(raw json.RawMessage) (*Syllabus, error) {
	var syl Syllabus
	if err := json.Unmarshal(raw, &syl); err != nil {
		return nil, fmt.Errorf("decode syllabus: %w", err)
	}
	return &syl, nil
}

func (s *Service) generateSyllabus(ctx context.Context, topic, level string) *Syllabus {
	ctx = llm.WithPurpose(ctx, "syllabus-gen")

	req := llm.Request{
		System: systemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: fmt.Sprintf("Topic: %s\nLevel: %s\nModules: 4", topic, level)},
		},
		Schema:      SyllabusSchema,
		MaxTokens:   1024,
		Temperature: 0.3,
	}

	resp, err := s.provider.Generate(ctx, req)
	if err != nil {
		s.logger.Warn("syllabus generation failed, using fallback",
			zap.String("topic", topic), zap.Error(err))
		return FallbackSyllabus(topic, level)
	}

	var out struct {
		Modules []Module `json:"modules"`
	}
	if err := json.Unmarshal(resp.Content, &out); err != nil || len(out.Modules) == 0 {
		s.logger.Warn("syllabus response unusable, using fallback",
			zap.String("topic", topic))
		return FallbackSyllabus(topic, level)
	}

	return &Syllabus{Topic: topic, Level: level, Modules: out.Modules}
}

// FallbackSyllabus is the generic plan used when generation fails.
func FallbackSyllabus(topic, level string) *Syllabus {
	return &Syllabus{
		Topic: topic,
		Level: level,
		Modules: []Module{
			{Title: "Foundations", Topics: []string{
				topic + " basics",
				"core concepts of " + topic,
			}},
			{Title: "Working knowledge", Topics: []string{
				"common " + topic + " techniques",
				"practical " + topic + " examples",
			}},
			{Title: "Applying it", Topics: []string{
				"solving problems with " + topic,
				"avoiding common " + topic + " mistakes",
			}},
			{Title: "Going further", Topics: []string{
				"advanced " + topic + " ideas",
				"next steps in " + topic,
			}},
		},
	}
}
