package teach

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/bindulearn/bindu/internal/course"
	"github.com/bindulearn/bindu/internal/knowledge"
	"github.com/bindulearn/bindu/internal/llm"
	"github.com/bindulearn/bindu/internal/rag"
	"github.com/bindulearn/bindu/internal/store"
	"github.com/bindulearn/bindu/internal/turn"
)

// affirmatives move the learner forward to the next course topic.
var affirmatives = map[string]struct{}{
	"yes": {}, "ready": {}, "continue": {}, "next": {}, "ok": {}, "okay": {},
	"sure": {}, "go on": {}, "let's go": {}, "lets go": {}, "yes please": {},
}

// negatives pause course-guided teaching for the turn.
var negatives = map[string]struct{}{
	"no": {}, "not now": {}, "later": {}, "stop": {}, "pause": {}, "not yet": {},
}

const lessonSystem = `You are a tutor teaching one topic in one sitting. Explain it from the ground up for the learner's level, with one worked example and one short thing to try. Keep it under 350 words.`

// Teacher serves learn/explain/chat turns: course-guided lessons when
// the learner is following a course, free-form answering otherwise.
type Teacher struct {
	llm       *llm.Service
	knowledge *knowledge.Service
	courses   *course.Service
	contents  store.TopicContentRepo
	retriever rag.Retriever
	logger    *zap.Logger
}

// NewTeacher creates a Teacher.
func NewTeacher(svc *llm.Service, kn *knowledge.Service, courses *course.Service, contents store.TopicContentRepo, retriever rag.Retriever, logger *zap.Logger) *Teacher {
	return &Teacher{llm: svc, knowledge: kn, courses: courses, contents: contents, retriever: retriever, logger: logger}
}

// Handle serves one teaching turn. With an active course, continue
// triggers teach the topic under the cursor and negative triggers pause;
// anything else is answered as a free question through the knowledge
// protocol.
func (t *Teacher) Handle(ctx context.Context, st *turn.State) error {
	msg := strings.ToLower(strings.TrimSpace(st.Message))

	c, syl, err := t.courses.Current(ctx, st.UserID)
	if err != nil {
		return err
	}

	if c != nil && !c.Completed {
		cursorTopic := t.courses.CurrentTopic(c, syl)

		if _, neg := negatives[msg]; neg {
			st.Reply = fmt.Sprintf(
				"No problem, we'll pause here. Your course picks up at \"%s\" whenever you're ready - or ask me anything else.",
				cursorTopic)
			return nil
		}

		_, aff := affirmatives[msg]
		if aff || mentionsTopic(msg, cursorTopic) {
			return t.teachTopic(ctx, st, c, cursorTopic)
		}
	}

	ans, err := t.knowledge.Answer(ctx, st.UserID, st.Topic, st.Message)
	if err != nil {
		return err
	}
	st.Reply = ans.Text
	st.UsedRAG = ans.UsedRAG
	return nil
}

// teachTopic delivers the lesson for a course topic, generating and
// caching the content on first visit.
func (t *Teacher) teachTopic(ctx context.Context, st *turn.State, c *store.Course, topic string) error {
	if topic == "" {
		st.Reply = "You've covered everything in your course - congratulations! Ask for a quiz to take your final exam."
		return nil
	}

	cached, err := t.contents.Get(ctx, st.UserID, c.ID, topic)
	if err != nil {
		return err
	}

	var content string
	if cached != nil {
		content = cached.Content
	} else {
		content, err = t.generateLesson(ctx, st, topic)
		if err != nil {
			return err
		}
		if err := t.contents.Upsert(ctx, &store.TopicContent{
			UserID:   st.UserID,
			CourseID: c.ID,
			Topic:    topic,
			Content:  content,
		}); err != nil {
			// Teaching proceeds even if the cache write fails.
			t.logger.Error("cache topic content", zap.Error(err))
		}
	}

	st.SetTopic(topic)
	st.Reply = content + "\n\nWhen this feels clear, say \"no doubts\" and I'll quiz you on it."
	return nil
}

func (t *Teacher) generateLesson(ctx context.Context, st *turn.State, topic string) (string, error) {
	ctx = llm.WithPurpose(ctx, "lesson-gen")

	var ragContext string
	if t.retriever != nil {
		docs, err := t.retriever.Retrieve(ctx, topic, 3)
		if err != nil {
			t.logger.Warn("lesson retrieval failed", zap.Error(err))
		}
		var parts []string
		for _, d := range docs {
			parts = append(parts, d.Text)
		}
		ragContext = strings.Join(parts, "\n\n")
		st.UsedRAG = len(docs) > 0
	}

	content, err := t.llm.GenerateText(ctx, llm.GenerateInput{
		System:  lessonSystem,
		Prompt:  fmt.Sprintf("Topic: %s\nLearner level: %s", topic, st.SkillLevel),
		Context: ragContext,
	})
	if err != nil {
		return "", fmt.Errorf("generate lesson: %w", err)
	}
	return content, nil
}

// mentionsTopic reports whether the message names the cursor topic.
func mentionsTopic(msg, topic string) bool {
	topic = strings.ToLower(strings.TrimSpace(topic))
	return topic != "" && strings.Contains(msg, topic)
}
