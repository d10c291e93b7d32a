package teach

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/bindulearn/bindu/internal/course"
	"github.com/bindulearn/bindu/internal/knowledge"
	"github.com/bindulearn/bindu/internal/llm"
	"github.com/bindulearn/bindu/internal/rag"
	"github.com/bindulearn/bindu/internal/store"
	"github.com/bindulearn/bindu/internal/turn"
	"github.com/stretchr/testify/require"
)

func newTestTeacher(t *testing.T, mock *llm.MockProvider) (*Teacher, *store.Store, *course.Service) {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	svc := llm.NewService(mock, zap.NewNop())
	retriever := rag.NewIndex(s.DocumentRepo(), zap.NewNop())
	kn := knowledge.NewService(svc, retriever, s.GapRepo(), zap.NewNop())
	courses := course.NewService(s.CourseRepo(), mock, zap.NewNop())

	return NewTeacher(svc, kn, courses, s.TopicContentRepo(), retriever, zap.NewNop()), s, courses
}

func enroll(t *testing.T, s *store.Store, userID string) *store.Course {
	t.Helper()
	syl := course.Syllabus{
		Topic: "sql",
		Modules: []course.Module{
			{Title: "Basics", Topics: []string{"select statements", "where clauses"}},
		},
	}
	raw, err := json.Marshal(syl)
	require.NoError(t, err)
	c := &store.Course{UserID: userID, Topic: "sql", SkillLevel: "beginner", Syllabus: raw}
	require.NoError(t, s.CourseRepo().Create(context.Background(), c))
	return c
}

func TestHandle_AffirmativeTeachesCursorTopic(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage("SELECT retrieves rows.")})
	teacher, s, _ := newTestTeacher(t, mock)
	enroll(t, s, "u1")

	st := turn.New("u1", "yes", nil, nil)
	require.NoError(t, teacher.Handle(context.Background(), st))

	require.Contains(t, st.Reply, "SELECT retrieves rows.")
	require.Contains(t, st.Reply, "no doubts")
	require.Equal(t, "select statements", st.Topic)
}

func TestHandle_LessonCachedOnFirstVisit(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage("lesson v1")})
	teacher, s, _ := newTestTeacher(t, mock)
	c := enroll(t, s, "u1")
	ctx := context.Background()

	st := turn.New("u1", "ready", nil, nil)
	require.NoError(t, teacher.Handle(ctx, st))
	require.Equal(t, 1, mock.CallCount())

	cached, err := s.TopicContentRepo().Get(ctx, "u1", c.ID, "select statements")
	require.NoError(t, err)
	require.NotNil(t, cached)
	require.Equal(t, "lesson v1", cached.Content)

	// Second visit serves the cache, no extra generation.
	st2 := turn.New("u1", "continue", nil, nil)
	require.NoError(t, teacher.Handle(ctx, st2))
	require.Contains(t, st2.Reply, "lesson v1")
	require.Equal(t, 1, mock.CallCount())
}

func TestHandle_NegativePauses(t *testing.T) {
	mock := llm.NewMockProvider()
	teacher, s, _ := newTestTeacher(t, mock)
	enroll(t, s, "u1")

	st := turn.New("u1", "not now", nil, nil)
	require.NoError(t, teacher.Handle(context.Background(), st))

	require.Contains(t, st.Reply, "pause")
	require.Contains(t, st.Reply, "select statements")
	require.Zero(t, mock.CallCount())
}

func TestHandle_TopicMentionTeachesIt(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage("lesson")})
	teacher, s, _ := newTestTeacher(t, mock)
	enroll(t, s, "u1")

	st := turn.New("u1", "tell me about select statements", nil, nil)
	require.NoError(t, teacher.Handle(context.Background(), st))
	require.Contains(t, st.Reply, "lesson")
}

func TestHandle_FreeQuestionDelegatesToKnowledge(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(
		"An index speeds up lookups.\nCONFIDENCE: 90\nIS_GUESS: false")})
	teacher, s, _ := newTestTeacher(t, mock)
	enroll(t, s, "u1")

	st := turn.New("u1", "what is an index used for?", nil, nil)
	require.NoError(t, teacher.Handle(context.Background(), st))

	require.Equal(t, "An index speeds up lookups.", st.Reply)
	require.False(t, st.UsedRAG)
}

func TestHandle_NoCourseGoesStraightToKnowledge(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(
		"Sure thing.\nCONFIDENCE: 95\nIS_GUESS: false")})
	teacher, _, _ := newTestTeacher(t, mock)

	// "yes" with no course is just a message, not a continue trigger.
	st := turn.New("u1", "yes", nil, nil)
	require.NoError(t, teacher.Handle(context.Background(), st))
	require.Equal(t, "Sure thing.", st.Reply)
}

func TestHandle_CompletedCourseCongratulates(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(
		"Answer.\nCONFIDENCE: 90\nIS_GUESS: false")})
	teacher, s, _ := newTestTeacher(t, mock)
	c := enroll(t, s, "u1")
	require.NoError(t, s.CourseRepo().UpdateProgress(context.Background(), c.ID, 1, 0, true))

	// Completed course: continue triggers fall through to knowledge.
	st := turn.New("u1", "continue", nil, nil)
	require.NoError(t, teacher.Handle(context.Background(), st))
	require.Equal(t, "Answer.", st.Reply)
}
