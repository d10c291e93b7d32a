package orchestrator

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/bindulearn/bindu/internal/course"
	"github.com/bindulearn/bindu/internal/intent"
	"github.com/bindulearn/bindu/internal/onboarding"
	"github.com/bindulearn/bindu/internal/quiz"
	"github.com/bindulearn/bindu/internal/roadmap"
	"github.com/bindulearn/bindu/internal/store"
	"github.com/bindulearn/bindu/internal/teach"
	"github.com/bindulearn/bindu/internal/turn"
)

// apology is the reply when a handler fails or panics. The learner gets
// this instead of an error; the cause lands in the turn metadata and the
// log.
const apology = "Sorry, something went wrong on my end. Could you try that again?"

// Dispatcher routes each user message to exactly one handler and logs
// the completed turn. Tutoring state lives in the conversation log's
// metadata, so the dispatcher is stateless between calls.
type Dispatcher struct {
	router        *intent.Router
	machine       *onboarding.Machine
	teacher       *teach.Teacher
	engine        *quiz.Engine
	planner       *roadmap.Planner
	conversations store.ConversationRepo
	courses       *course.Service
	results       store.QuizResultRepo
	gaps          store.GapRepo
	logger        *zap.Logger
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(
	router *intent.Router,
	machine *onboarding.Machine,
	teacher *teach.Teacher,
	engine *quiz.Engine,
	planner *roadmap.Planner,
	conversations store.ConversationRepo,
	courses *course.Service,
	results store.QuizResultRepo,
	gaps store.GapRepo,
	logger *zap.Logger,
) *Dispatcher {
	return &Dispatcher{
		router:        router,
		machine:       machine,
		teacher:       teacher,
		engine:        engine,
		planner:       planner,
		conversations: conversations,
		courses:       courses,
		results:       results,
		gaps:          gaps,
		logger:        logger,
	}
}

// Dispatch serves one user message end to end: it restores the turn
// state from the last logged turn, routes to a handler, and appends the
// completed turn. Handler failures become an apology reply rather than
// an error; only infrastructure failures (loading the prior turn)
// surface to the caller.
func (d *Dispatcher) Dispatch(ctx context.Context, userID, message string, profile map[string]any) (*turn.State, error) {
	prev, err := d.conversations.Latest(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load last turn: %w", err)
	}

	var md map[string]any
	if prev != nil {
		md = prev.Metadata
	}
	st := turn.New(userID, message, profile, md)

	d.route(ctx, st)

	if err := d.conversations.Append(ctx, &store.Conversation{
		UserID:   st.UserID,
		Message:  st.Message,
		Response: st.Reply,
		Metadata: st.Metadata,
	}); err != nil {
		// The learner already has their reply; losing the log entry is
		// recoverable, losing the reply is not.
		d.logger.Error("append conversation", zap.Error(err), zap.String("user_id", userID))
	}

	return st, nil
}

// route runs the selected handler, converting errors and panics into
// the apology reply so a single bad turn never takes the session down.
func (d *Dispatcher) route(ctx context.Context, st *turn.State) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("turn handler panicked",
				zap.Any("panic", r), zap.String("user_id", st.UserID))
			d.apologize(st, fmt.Sprintf("panic: %v", r))
		}
	}()

	if err := d.handle(ctx, st); err != nil {
		d.logger.Error("turn handler failed",
			zap.Error(err), zap.String("user_id", st.UserID),
			zap.String("intent", string(st.Intent)))
		d.apologize(st, err.Error())
	}
}

func (d *Dispatcher) apologize(st *turn.State, cause string) {
	st.Intent = turn.IntentUnknown
	st.Confidence = 0
	st.SetError(cause)
	st.Reply = apology
}

// handle picks the handler for the turn. An active onboarding step
// captures the turn before any classification happens, because mid-flow
// messages (quiz answers, topic names) are not classifiable intents.
func (d *Dispatcher) handle(ctx context.Context, st *turn.State) error {
	step := st.OnboardingStep()
	if step.Active() {
		return d.machine.Handle(ctx, st)
	}

	res := d.router.Classify(ctx, st)
	st.Intent = res.Intent
	st.Confidence = res.Confidence
	st.NextAgent = res.NextAgent
	if res.TopicChanged {
		st.SetTopic(res.Topic)
	}

	if st.Intent == turn.IntentLearn {
		if step == turn.StepNone {
			// Never onboarded: a learn request starts the flow.
			return d.machine.Begin(ctx, st, st.Topic)
		}
		if res.TopicChanged {
			in, err := d.topicInCourse(ctx, st)
			if err != nil {
				return err
			}
			// A genuinely new subject restarts assessment; a topic from
			// the current course stays with the teacher.
			if !in {
				return d.machine.Begin(ctx, st, st.Topic)
			}
		}
	}

	switch st.NextAgent {
	case turn.AgentQuiz:
		return d.engine.Handle(ctx, st)
	case turn.AgentPlanning:
		return d.planner.Handle(ctx, st)
	case turn.AgentAssessment:
		return d.machine.Begin(ctx, st, st.Topic)
	case turn.AgentProgress:
		return d.progress(ctx, st)
	default:
		return d.teacher.Handle(ctx, st)
	}
}

// topicInCourse reports whether the turn's topic belongs to the user's
// current course, either as its subject or one of its syllabus topics.
func (d *Dispatcher) topicInCourse(ctx context.Context, st *turn.State) (bool, error) {
	c, syl, err := d.courses.Current(ctx, st.UserID)
	if err != nil || c == nil {
		return false, err
	}

	want := strings.ToLower(st.Topic)
	if want == "" {
		return true, nil
	}
	if containsEither(strings.ToLower(c.Topic), want) {
		return true, nil
	}
	for _, m := range syl.Modules {
		for _, topic := range m.Topics {
			if containsEither(strings.ToLower(topic), want) {
				return true, nil
			}
		}
	}
	return false, nil
}

func containsEither(a, b string) bool {
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// CourseTopicSource adapts the course service to the router's topic
// fallback lookup.
type CourseTopicSource struct {
	Courses *course.Service
}

// ActiveTopic returns the cursor topic and course subject for the
// user's current course, or empty strings without one.
func (s CourseTopicSource) ActiveTopic(ctx context.Context, userID string) (string, string, error) {
	c, syl, err := s.Courses.Current(ctx, userID)
	if err != nil || c == nil {
		return "", "", err
	}
	return s.Courses.CurrentTopic(c, syl), c.Topic, nil
}
