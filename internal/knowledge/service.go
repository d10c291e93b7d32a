package knowledge

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/bindulearn/bindu/internal/llm"
	"github.com/bindulearn/bindu/internal/rag"
	"github.com/bindulearn/bindu/internal/store"
)

// confidenceThreshold is the minimum self-reported confidence for a
// model-only answer.
const confidenceThreshold = 70

// generalKnowledgeFloor: with no corpus match, an answer above this
// confidence still goes out as general knowledge; at or below it the
// question is logged as a knowledge gap instead.
const generalKnowledgeFloor = 40

// greetings answered directly without scoring or retrieval.
var greetings = map[string]struct{}{
	"hi": {}, "hello": {}, "hey": {}, "start": {}, "begin": {},
}

// forcedRetrievalKeywords name topics the corpus is authoritative for;
// questions touching them skip the model-first shortcut.
var forcedRetrievalKeywords = []string{
	"course material", "study material", "lecture", "notes", "syllabus",
	"according to", "the document", "the material",
}

// Answer is the outcome of one knowledge query.
type Answer struct {
	Text       string
	Confidence int
	UsedRAG    bool
	GapLogged  bool
}

// Service answers learner questions model-first, falling back to
// retrieval when the model is unsure, and logs what it cannot answer.
type Service struct {
	llm       *llm.Service
	retriever rag.Retriever
	gaps      store.GapRepo
	logger    *zap.Logger
}

// NewService creates a knowledge Service.
func NewService(svc *llm.Service, retriever rag.Retriever, gaps store.GapRepo, logger *zap.Logger) *Service {
	return &Service{llm: svc, retriever: retriever, gaps: gaps, logger: logger}
}

// Answer runs the confidence-gated protocol for one question.
func (s *Service) Answer(ctx context.Context, userID, topic, question string) (Answer, error) {
	ctx = llm.WithPurpose(ctx, "knowledge")

	if isGreeting(question) {
		return Answer{
			Text:       "Hello! I'm Bindu, your tutor. Ask me anything, or tell me a topic you'd like to learn.",
			Confidence: 100,
		}, nil
	}

	ev := s.llm.EvaluateConfidence(ctx, llm.GenerateInput{Prompt: question})

	// A forced-retrieval question is answered and scored model-first
	// like any other; the keyword only removes the confident shortcut.
	if !needsRetrieval(question) && ev.Confidence >= confidenceThreshold && !ev.IsGuess {
		return Answer{Text: ev.Answer, Confidence: ev.Confidence}, nil
	}

	s.logger.Debug("trying retrieval",
		zap.Int("confidence", ev.Confidence),
		zap.Bool("is_guess", ev.IsGuess),
		zap.Bool("forced", needsRetrieval(question)))

	return s.answerWithRetrieval(ctx, userID, topic, question, ev)
}

// answerWithRetrieval augments the question with corpus material and
// regenerates once, re-scoring the result. With no corpus match the
// prior model answer ships as general knowledge when it cleared the
// floor; below it the prior answer still goes out, flagged as a gap.
func (s *Service) answerWithRetrieval(ctx context.Context, userID, topic, question string, prior llm.Evaluation) (Answer, error) {
	docs, err := s.retriever.Retrieve(ctx, question, 3)
	if err != nil {
		s.logger.Warn("retrieval failed", zap.Error(err))
	}

	if len(docs) == 0 {
		if prior.Confidence > generalKnowledgeFloor && prior.Answer != "" {
			return Answer{
				Text:       prior.Answer + "\n\n(I answered from general knowledge; I don't have course material on this yet.)",
				Confidence: prior.Confidence,
			}, nil
		}
		s.logGap(ctx, userID, question, prior.Confidence)
		if prior.Answer != "" {
			return Answer{Text: prior.Answer, Confidence: prior.Confidence, GapLogged: true}, nil
		}
		return Answer{
			Text: fmt.Sprintf("I don't have a reliable answer to that yet, so I won't guess. "+
				"I've noted it as something to cover. Meanwhile, want to keep going with %s?", orGeneral(topic)),
			Confidence: prior.Confidence,
			GapLogged:  true,
		}, nil
	}

	var parts []string
	for _, d := range docs {
		parts = append(parts, d.Text)
	}

	ev := s.llm.EvaluateConfidence(ctx, llm.GenerateInput{
		Prompt:  question,
		Context: strings.Join(parts, "\n\n"),
	})
	if ev.Answer == "" {
		s.logGap(ctx, userID, question, prior.Confidence)
		return Answer{
			Text:       orAnswer(prior.Answer, "I couldn't put together a reliable answer; I've noted it as something to cover."),
			Confidence: prior.Confidence,
			UsedRAG:    true,
			GapLogged:  true,
		}, nil
	}

	// Still shaky after grounding: the improved answer goes out, but the
	// question is recorded so the corpus can grow to cover it.
	if ev.Confidence < confidenceThreshold {
		s.logGap(ctx, userID, question, ev.Confidence)
		return Answer{Text: ev.Answer, Confidence: ev.Confidence, UsedRAG: true, GapLogged: true}, nil
	}

	return Answer{Text: ev.Answer, Confidence: ev.Confidence, UsedRAG: true}, nil
}

// logGap records the question under its derived topic. Re-asking about
// the same topic bumps the occurrence counter instead of duplicating.
func (s *Service) logGap(ctx context.Context, userID, question string, confidence int) {
	topic := deriveTopic(question)
	if err := s.gaps.Record(ctx, userID, topic, question); err != nil {
		// The learner still gets a reply when bookkeeping fails.
		s.logger.Error("record knowledge gap", zap.Error(err))
		return
	}
	s.logger.Info("knowledge gap",
		zap.String("user_id", userID),
		zap.String("topic", topic),
		zap.Int("confidence", confidence))
}

// stopWords are question scaffolding stripped before a gap topic is
// derived from the question text.
var stopWords = map[string]struct{}{
	"what": {}, "is": {}, "are": {}, "how": {}, "why": {}, "when": {},
	"where": {}, "can": {}, "do": {}, "does": {},
}

// deriveTopic condenses a question to its first few substantive words so
// repeat questions about one subject collapse into one gap record.
func deriveTopic(question string) string {
	var keywords []string
	for _, w := range strings.Fields(strings.ToLower(question)) {
		if _, stop := stopWords[w]; stop || len(w) <= 3 {
			continue
		}
		keywords = append(keywords, w)
		if len(keywords) == 3 {
			break
		}
	}
	if len(keywords) == 0 {
		return "unknown"
	}
	return strings.Join(keywords, " ")
}

func orAnswer(answer, fallback string) string {
	if answer != "" {
		return answer
	}
	return fallback
}

func isGreeting(message string) bool {
	_, ok := greetings[strings.ToLower(strings.TrimSpace(message))]
	return ok
}

func needsRetrieval(message string) bool {
	lower := strings.ToLower(message)
	for _, kw := range forcedRetrievalKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func orGeneral(topic string) string {
	if topic == "" {
		return "your studies"
	}
	return topic
}
