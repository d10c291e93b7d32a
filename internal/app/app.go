package app

import (
	"go.uber.org/zap"

	"github.com/bindulearn/bindu/internal/course"
	"github.com/bindulearn/bindu/internal/intent"
	"github.com/bindulearn/bindu/internal/knowledge"
	"github.com/bindulearn/bindu/internal/llm"
	"github.com/bindulearn/bindu/internal/onboarding"
	"github.com/bindulearn/bindu/internal/orchestrator"
	"github.com/bindulearn/bindu/internal/quiz"
	"github.com/bindulearn/bindu/internal/rag"
	"github.com/bindulearn/bindu/internal/roadmap"
	"github.com/bindulearn/bindu/internal/store"
	"github.com/bindulearn/bindu/internal/teach"
)

// DefaultUserID is the learner identity for the single-user CLI. All
// persistence is keyed by user ID so a multi-user frontend can reuse
// the same services.
const DefaultUserID = "local"

// Options carries the externally-owned dependencies.
type Options struct {
	Store    *store.Store
	Provider llm.Provider
	Logger   *zap.Logger
	UserID   string
}

// App wires every service behind the dispatcher. Construction is pure;
// nothing here touches the network or the database.
type App struct {
	Store      *store.Store
	Dispatcher *orchestrator.Dispatcher
	Retriever  rag.Retriever
	Ingester   *rag.Ingester
	Logger     *zap.Logger
	UserID     string
}

// New builds the full service graph from the store and provider.
func New(opts Options) *App {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	userID := opts.UserID
	if userID == "" {
		userID = DefaultUserID
	}

	s := opts.Store
	svc := llm.NewService(opts.Provider, logger)
	retriever := rag.NewIndex(s.DocumentRepo(), logger)
	ingester := rag.NewIngester(s.DocumentRepo(), logger)

	courses := course.NewService(s.CourseRepo(), opts.Provider, logger)
	gen := quiz.NewGenerator(opts.Provider, quiz.DefaultConfig())
	kn := knowledge.NewService(svc, retriever, s.GapRepo(), logger)

	router := intent.NewRouter(svc, orchestrator.CourseTopicSource{Courses: courses}, logger)
	machine := onboarding.NewMachine(gen, courses, svc, retriever, logger)
	teacher := teach.NewTeacher(svc, kn, courses, s.TopicContentRepo(), retriever, logger)
	engine := quiz.NewEngine(gen, courses, s.QuizResultRepo(), s.TopicContentRepo(), logger)
	planner := roadmap.NewPlanner(svc, logger)

	dispatcher := orchestrator.NewDispatcher(router, machine, teacher, engine, planner,
		s.ConversationRepo(), courses, s.QuizResultRepo(), s.GapRepo(), logger)

	return &App{
		Store:      s,
		Dispatcher: dispatcher,
		Retriever:  retriever,
		Ingester:   ingester,
		Logger:     logger,
		UserID:     userID,
	}
}
