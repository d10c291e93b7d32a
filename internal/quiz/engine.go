package quiz

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/bindulearn/bindu/internal/course"
	"github.com/bindulearn/bindu/internal/store"
	"github.com/bindulearn/bindu/internal/turn"
)

const (
	// quizSize is the question count for a regular topic quiz.
	quizSize = 5

	// finalExamSize is the question count for the course final exam.
	finalExamSize = 20
)

// Engine serves quiz turns: it grades answers to the pending quiz when
// the message contains them, and issues a fresh quiz otherwise. Passing
// a topic quiz advances the learner's course; finishing the last topic
// triggers the one-time final exam.
type Engine struct {
	gen      *Generator
	courses  *course.Service
	results  store.QuizResultRepo
	contents store.TopicContentRepo
	logger   *zap.Logger
}

// NewEngine creates a quiz Engine.
func NewEngine(gen *Generator, courses *course.Service, results store.QuizResultRepo, contents store.TopicContentRepo, logger *zap.Logger) *Engine {
	return &Engine{gen: gen, courses: courses, results: results, contents: contents, logger: logger}
}

// Handle serves one quiz turn.
func (e *Engine) Handle(ctx context.Context, st *turn.State) error {
	if topic, questions, ok := PendingFrom(st.Metadata); ok && LooksLikeAnswers(st.Message) {
		return e.grade(ctx, st, topic, questions)
	}
	return e.issue(ctx, st)
}

// grade scores a submission against the pending quiz, records the
// result, and moves the course forward on a pass.
func (e *Engine) grade(ctx context.Context, st *turn.State, topic string, questions []Question) error {
	res := Grade(questions, ParseAnswers(st.Message, len(questions)))
	finalExam := IsFinalExam(st.Metadata)
	Clear(st.Metadata)

	if err := e.results.Save(ctx, &store.QuizResult{
		UserID:   st.UserID,
		CourseID: st.CourseID,
		Topic:    topic,
		Score:    res.Score,
		Total:    res.Total,
		Percent:  res.Percent,
	}); err != nil {
		// The learner still gets their grade if the record fails.
		e.logger.Error("save quiz result", zap.Error(err))
	}

	var closing string
	var err error
	switch {
	case finalExam:
		closing, err = e.finalExamVerdict(ctx, st, res)
	case res.Passed():
		closing, err = e.advanceCourse(ctx, st)
	default:
		closing = fmt.Sprintf(
			"You need %.0f%% to move on. Review \"%s\" and say \"quiz\" when you want another shot.",
			PassThreshold, topic)
	}
	if err != nil {
		return err
	}

	st.Reply = FormatResult(res, closing)
	return nil
}

// advanceCourse moves the course cursor after a pass. Completing the
// last topic issues the final exam, exactly once per course.
func (e *Engine) advanceCourse(ctx context.Context, st *turn.State) (string, error) {
	c, syl, err := e.courseFor(ctx, st)
	if err != nil {
		return "", err
	}
	if c == nil || c.Completed {
		return "Nice work! Ask me anything else, or pick a new topic to learn.", nil
	}

	next, done, err := e.courses.Advance(ctx, c, syl)
	if err != nil {
		return "", fmt.Errorf("advance course: %w", err)
	}

	if !done {
		return fmt.Sprintf("You passed! Next up in your course: \"%s\". Say \"continue\" when you're ready.", next), nil
	}

	if st.FinalExamTaken() {
		return "That was the last topic - your course is complete. Congratulations!", nil
	}
	return e.issueFinalExam(ctx, st, c.Topic), nil
}

// issueFinalExam generates the 20-question course exam and marks it
// taken so it is never offered again.
func (e *Engine) issueFinalExam(ctx context.Context, st *turn.State, courseTopic string) string {
	st.MarkFinalExamTaken()

	questions, outcome, err := e.gen.Generate(ctx, GenerateInput{
		Topic: courseTopic,
		Level: string(st.SkillLevel),
		Count: finalExamSize,
	})
	if err != nil {
		e.logger.Warn("final exam generation degraded", zap.Error(err))
	}
	e.logger.Info("final exam issued",
		zap.String("user_id", st.UserID),
		zap.String("topic", courseTopic),
		zap.String("outcome", string(outcome)))

	SetFinalExam(st.Metadata, courseTopic, questions)
	return fmt.Sprintf(
		"You've covered every topic in your course - time for the final exam!\n\n%s",
		Format(courseTopic, questions))
}

// finalExamVerdict closes out the course with the exam result and the
// learner's average across all course quizzes.
func (e *Engine) finalExamVerdict(ctx context.Context, st *turn.State, res Result) (string, error) {
	avg := res.Percent
	if st.CourseID != "" {
		a, err := e.results.AverageByCourse(ctx, st.CourseID)
		if err != nil {
			return "", fmt.Errorf("course average: %w", err)
		}
		avg = a
	}

	if res.Passed() {
		return fmt.Sprintf(
			"You passed your final exam - congratulations on finishing the course! Your quiz average was %.0f%%.", avg), nil
	}
	return fmt.Sprintf(
		"The final exam is behind you (quiz average %.0f%%). Revisit the topics that tripped you up - I'm happy to reteach any of them.", avg), nil
}

// issue generates a fresh quiz on the best-known topic and parks it in
// the metadata bag for the next turn's answers.
func (e *Engine) issue(ctx context.Context, st *turn.State) error {
	c, syl, err := e.courseFor(ctx, st)
	if err != nil {
		return err
	}

	topic := st.Topic
	if topic == "" && c != nil {
		if cur := e.courses.CurrentTopic(c, syl); cur != "" {
			topic = cur
		} else {
			topic = c.Topic
		}
	}
	if topic == "" {
		topic = topicFromMessage(st.Message)
	}
	if topic == "" {
		topic = "general knowledge"
	}

	var content string
	if c != nil && e.contents != nil {
		cached, err := e.contents.Get(ctx, st.UserID, c.ID, topic)
		if err != nil {
			e.logger.Warn("topic content lookup failed", zap.Error(err))
		} else if cached != nil {
			content = cached.Content
		}
	}

	questions, outcome, err := e.gen.Generate(ctx, GenerateInput{
		Topic:   topic,
		Level:   string(st.SkillLevel),
		Count:   quizSize,
		Content: content,
	})
	if err != nil {
		e.logger.Warn("quiz generation degraded", zap.Error(err))
	}
	e.logger.Info("quiz issued",
		zap.String("user_id", st.UserID),
		zap.String("topic", topic),
		zap.Int("questions", len(questions)),
		zap.String("outcome", string(outcome)))

	st.SetTopic(topic)
	SetPending(st.Metadata, topic, questions)
	st.Reply = Format(topic, questions)
	return nil
}

// topicFromMessage strips quiz framing from the message and treats the
// remainder as the subject: "quiz me on recursion" leaves "recursion".
func topicFromMessage(message string) string {
	s := strings.ToLower(message)
	for _, filler := range []string{"quiz", "test", "me on"} {
		s = strings.ReplaceAll(s, filler, "")
	}
	s = strings.TrimSpace(s)
	if s == "me" {
		return ""
	}
	return s
}

// courseFor resolves the turn's course: the bound one when the turn
// carries a course ID, the latest enrollment otherwise.
func (e *Engine) courseFor(ctx context.Context, st *turn.State) (*store.Course, *course.Syllabus, error) {
	if e.courses == nil {
		return nil, nil, nil
	}
	if st.CourseID != "" {
		c, syl, err := e.courses.Get(ctx, st.CourseID)
		if err != nil || c != nil {
			return c, syl, err
		}
	}
	c, syl, err := e.courses.Current(ctx, st.UserID)
	if err != nil {
		return nil, nil, err
	}
	if c != nil && st.CourseID == "" {
		st.SetCourseID(c.ID)
	}
	return c, syl, nil
}
