package intent

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/bindulearn/bindu/internal/llm"
	"github.com/bindulearn/bindu/internal/turn"
)

// maxTopicLen caps extracted topics before they enter metadata.
const maxTopicLen = 50

// noDoubtPhrases signal the learner is done with the current topic and
// ready to be quizzed on it. Matched exactly against the trimmed
// message: a bare "no" means "no doubts" here, but "no" inside a longer
// sentence does not.
var noDoubtPhrases = map[string]struct{}{
	"no": {}, "no.": {}, "no doubt": {}, "no doubts": {}, "nope": {},
	"none": {}, "clear": {}, "all clear": {}, "it's clear": {}, "its clear": {},
	"no more doubts": {}, "no questions": {}, "makes sense": {}, "got it": {},
	"i understand everything": {}, "i'm ready for the quiz": {},
}

// entry is one row of the keyword table. Rows are scored in order and a
// tie keeps the earlier row, so the table order is the tie-break.
type entry struct {
	intent   turn.Intent
	keywords []string
}

// keywordTable is the fixed priority-ordered intent table.
var keywordTable = []entry{
	{turn.IntentQuiz, []string{"quiz", "test me", "examine me"}},
	{turn.IntentRoadmap, []string{"roadmap", "study plan", "learning path", "plan for me"}},
	{turn.IntentAssess, []string{"assess", "evaluate", "skill level", "how good am i", "diagnostic"}},
	{turn.IntentProgress, []string{"progress", "how am i doing", "my score", "my stats", "how far"}},
	{turn.IntentPractice, []string{"practice", "exercise", "drill", "problems to solve"}},
	{turn.IntentExplain, []string{"explain", "what is", "what are", "how does", "why does", "difference between"}},
	{turn.IntentLearn, []string{"learn", "teach", "study", "course", "tutorial", "i want to know"}},
}

// agentFor maps an intent to the handler that serves it.
var agentFor = map[turn.Intent]turn.Agent{
	turn.IntentLearn:    turn.AgentTeaching,
	turn.IntentExplain:  turn.AgentTeaching,
	turn.IntentChat:     turn.AgentTeaching,
	turn.IntentQuiz:     turn.AgentQuiz,
	turn.IntentPractice: turn.AgentQuiz,
	turn.IntentRoadmap:  turn.AgentPlanning,
	turn.IntentAssess:   turn.AgentAssessment,
	turn.IntentProgress: turn.AgentProgress,
}

// Result is the router's verdict for one message. Topic and TopicChanged
// are returned explicitly; the router never mutates the turn state.
type Result struct {
	Intent       turn.Intent
	Confidence   int
	Topic        string
	TopicChanged bool
	NextAgent    turn.Agent
}

// CourseTopics supplies the topic fallback chain for no-doubt overrides.
type CourseTopics interface {
	// ActiveTopic returns the topic under the user's course cursor, and
	// the course topic itself as a second fallback. Empty strings when
	// the user has no course.
	ActiveTopic(ctx context.Context, userID string) (cursorTopic, courseTopic string, err error)
}

// Router classifies messages into intents.
type Router struct {
	llm     *llm.Service
	courses CourseTopics
	logger  *zap.Logger
}

// NewRouter creates a Router.
func NewRouter(svc *llm.Service, courses CourseTopics, logger *zap.Logger) *Router {
	return &Router{llm: svc, courses: courses, logger: logger}
}

// Classify determines the intent and topic for the message in st.
// Order: no-doubt override, literal quiz/test override, keyword table,
// LLM fallback. Topic extraction runs for learn-like intents.
func (r *Router) Classify(ctx context.Context, st *turn.State) Result {
	msg := strings.ToLower(strings.TrimSpace(st.Message))

	if isNoDoubt(msg) {
		// Only force the quiz when a topic resolves; a bare "no" with
		// nothing to be quizzed on falls through to normal routing.
		if topic := r.quizTopicFor(ctx, st); topic != "" {
			r.logger.Debug("no-doubt override", zap.String("topic", topic))
			return r.finish(Result{
				Intent:     turn.IntentQuiz,
				Confidence: 90,
				Topic:      topic,
			}, st)
		}
	}

	if strings.Contains(msg, "quiz") || strings.Contains(msg, "test") {
		return r.finish(Result{Intent: turn.IntentQuiz, Confidence: 95, Topic: st.Topic}, st)
	}

	if intent, score := scoreKeywords(msg); score > 0 {
		res := Result{Intent: intent, Confidence: 70 + min(score*10, 25)}
		res.Topic = r.extractTopic(ctx, st.Message, intent, st.Topic)
		return r.finish(res, st)
	}

	intent := r.classifyWithLLM(ctx, st.Message)
	res := Result{Intent: intent, Confidence: 60}
	res.Topic = r.extractTopic(ctx, st.Message, intent, st.Topic)
	return r.finish(res, st)
}

func (r *Router) finish(res Result, st *turn.State) Result {
	if res.Topic == "" {
		res.Topic = st.Topic
	}
	res.Topic = Truncate(res.Topic)
	res.TopicChanged = res.Topic != "" && res.Topic != st.Topic

	agent, ok := agentFor[res.Intent]
	if !ok {
		agent = turn.AgentTeaching
	}
	res.NextAgent = agent
	return res
}

// quizTopicFor resolves the no-doubt quiz topic: the turn's topic first,
// then the course cursor topic, then the course subject itself.
func (r *Router) quizTopicFor(ctx context.Context, st *turn.State) string {
	if st.Topic != "" {
		return st.Topic
	}
	if r.courses == nil {
		return ""
	}
	cursorTopic, courseTopic, err := r.courses.ActiveTopic(ctx, st.UserID)
	if err != nil {
		r.logger.Warn("course topic lookup failed", zap.Error(err))
		return ""
	}
	if cursorTopic != "" {
		return cursorTopic
	}
	return courseTopic
}

// scoreKeywords returns the best-scoring table row. Earlier rows win ties.
func scoreKeywords(msg string) (turn.Intent, int) {
	best := turn.IntentUnknown
	bestScore := 0
	for _, e := range keywordTable {
		score := 0
		for _, kw := range e.keywords {
			if strings.Contains(msg, kw) {
				score++
			}
		}
		if score > bestScore {
			best = e.intent
			bestScore = score
		}
	}
	return best, bestScore
}

// classifyWithLLM asks for a single-word classification from the closed
// intent set. On error or an unexpected answer the learner most likely
// wants to learn something, so that is the default.
func (r *Router) classifyWithLLM(ctx context.Context, message string) turn.Intent {
	ctx = llm.WithPurpose(ctx, "intent-classify")

	reply, err := r.llm.GenerateText(ctx, llm.GenerateInput{
		Prompt: "Classify this tutoring message into exactly one word from: " +
			"learn, quiz, roadmap, assess, explain, practice, progress, chat.\n\n" +
			"Message: " + message + "\n\nAnswer with the single word only.",
		Raw:       true,
		MaxTokens: 8,
	})
	if err != nil {
		r.logger.Warn("LLM intent classification failed", zap.Error(err))
		return turn.IntentLearn
	}

	switch turn.Intent(strings.ToLower(strings.TrimSpace(reply))) {
	case turn.IntentLearn:
		return turn.IntentLearn
	case turn.IntentQuiz:
		return turn.IntentQuiz
	case turn.IntentRoadmap:
		return turn.IntentRoadmap
	case turn.IntentAssess:
		return turn.IntentAssess
	case turn.IntentExplain:
		return turn.IntentExplain
	case turn.IntentPractice:
		return turn.IntentPractice
	case turn.IntentProgress:
		return turn.IntentProgress
	case turn.IntentChat:
		return turn.IntentChat
	default:
		return turn.IntentLearn
	}
}

// extractTopic pulls the learning topic out of the message for intents
// that carry one. The model answers "unknown" when no topic is present,
// which maps to keeping the current topic.
func (r *Router) extractTopic(ctx context.Context, message string, intent turn.Intent, current string) string {
	switch intent {
	case turn.IntentLearn, turn.IntentExplain, turn.IntentQuiz, turn.IntentRoadmap, turn.IntentAssess, turn.IntentPractice:
	default:
		return current
	}

	ctx = llm.WithPurpose(ctx, "topic-extract")
	reply, err := r.llm.GenerateText(ctx, llm.GenerateInput{
		Prompt: "Extract the subject the learner wants to work on from this message. " +
			"Answer with the bare subject in a few words, or the single word unknown if none is named.\n\n" +
			"Message: " + message,
		Raw:       true,
		MaxTokens: 16,
	})
	if err != nil {
		r.logger.Warn("topic extraction failed", zap.Error(err))
		return current
	}

	topic := strings.ToLower(strings.TrimSpace(reply))
	if topic == "" || topic == "unknown" {
		return current
	}
	return topic
}

// Truncate caps a topic string for metadata storage.
func Truncate(topic string) string {
	if len(topic) > maxTopicLen {
		return strings.TrimSpace(topic[:maxTopicLen])
	}
	return topic
}

func isNoDoubt(msg string) bool {
	_, ok := noDoubtPhrases[msg]
	return ok
}
