package store

import (
	"context"
	"encoding/json"
	"time"
)

// Conversation is one logged turn: the user message, the reply, and the
// metadata bag that carries tutoring state to the next turn.
type Conversation struct {
	ID        string         `db:"id"`
	UserID    string         `db:"user_id"`
	Message   string         `db:"message"`
	Response  string         `db:"response"`
	Metadata  map[string]any `db:"-"`
	CreatedAt time.Time      `db:"created_at"`
}

// ConversationRepo is the conversation log.
type ConversationRepo interface {
	// Append stores one completed turn.
	Append(ctx context.Context, c *Conversation) error

	// Latest returns the most recent turn for a user, or nil if none exist.
	Latest(ctx context.Context, userID string) (*Conversation, error)

	// History returns up to limit recent turns for a user, newest first.
	History(ctx context.Context, userID string, limit int) ([]Conversation, error)

	// DeleteByUser removes all turns for a user and returns the count.
	DeleteByUser(ctx context.Context, userID string) (int64, error)
}

// Course is a persisted syllabus plus the learner's position in it.
// Syllabus is an opaque JSON blob owned by the course package.
type Course struct {
	ID          string          `db:"id"`
	UserID      string          `db:"user_id"`
	Topic       string          `db:"topic"`
	SkillLevel  string          `db:"skill_level"`
	Syllabus    json.RawMessage `db:"syllabus"`
	ModuleIndex int             `db:"module_index"`
	TopicIndex  int             `db:"topic_index"`
	Completed   bool            `db:"completed"`
	CreatedAt   time.Time       `db:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at"`
}

// CourseRepo manages courses and the progress cursor.
type CourseRepo interface {
	Create(ctx context.Context, c *Course) error

	// Get returns the course by ID, or nil if not found.
	Get(ctx context.Context, id string) (*Course, error)

	// LatestByUser returns the user's most recent course, or nil.
	LatestByUser(ctx context.Context, userID string) (*Course, error)

	// UpdateProgress persists the cursor and completion flag.
	UpdateProgress(ctx context.Context, id string, moduleIndex, topicIndex int, completed bool) error
}

// QuizResult is one graded quiz submission.
type QuizResult struct {
	ID        int64     `db:"id"`
	UserID    string    `db:"user_id"`
	CourseID  string    `db:"course_id"`
	Topic     string    `db:"topic"`
	Score     int       `db:"score"`
	Total     int       `db:"total"`
	Percent   float64   `db:"percent"`
	CreatedAt time.Time `db:"created_at"`
}

// QuizResultRepo records quiz outcomes.
type QuizResultRepo interface {
	Save(ctx context.Context, r *QuizResult) error

	// AverageByCourse returns the mean percent across a course's quizzes.
	// Returns 0 when no quizzes were taken.
	AverageByCourse(ctx context.Context, courseID string) (float64, error)

	// ByUser returns up to limit recent results, newest first.
	ByUser(ctx context.Context, userID string, limit int) ([]QuizResult, error)
}

// TopicContent caches generated teaching material so quizzes can test
// what was actually taught.
type TopicContent struct {
	ID        int64     `db:"id"`
	UserID    string    `db:"user_id"`
	CourseID  string    `db:"course_id"`
	Topic     string    `db:"topic"`
	Content   string    `db:"content"`
	CreatedAt time.Time `db:"created_at"`
}

// TopicContentRepo is the taught-content cache.
type TopicContentRepo interface {
	// Upsert stores content for (user, course, topic), replacing any
	// previous version.
	Upsert(ctx context.Context, tc *TopicContent) error

	// Get returns the cached content, or nil if nothing was taught yet.
	Get(ctx context.Context, userID, courseID, topic string) (*TopicContent, error)
}

// Gap statuses.
const (
	GapStatusOpen     = "open"
	GapStatusResolved = "resolved"
)

// KnowledgeGap records a question the system could not answer.
type KnowledgeGap struct {
	ID          int64     `db:"id"`
	UserID      string    `db:"user_id"`
	Topic       string    `db:"topic"`
	Question    string    `db:"question"`
	Status      string    `db:"status"`
	Occurrences int       `db:"occurrences"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// GapRepo manages knowledge gap records.
type GapRepo interface {
	// Record logs a gap. While a (user, topic) gap is still open,
	// logging it again bumps the occurrence counter instead of
	// inserting a duplicate; the stored question is the first one asked.
	Record(ctx context.Context, userID, topic, question string) error

	// Open returns open gaps for a user, most recently seen first.
	Open(ctx context.Context, userID string) ([]KnowledgeGap, error)
}

// Document is one entry in the retrieval corpus.
type Document struct {
	ID        string         `db:"id"`
	Source    string         `db:"source"`
	Content   string         `db:"content"`
	Metadata  map[string]any `db:"-"`
	CreatedAt time.Time      `db:"created_at"`
}

// DocumentRepo is the retrieval corpus.
type DocumentRepo interface {
	Add(ctx context.Context, d *Document) error

	// All returns the full corpus. The corpus is small enough to rank
	// in memory.
	All(ctx context.Context) ([]Document, error)

	Count(ctx context.Context) (int, error)
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMEvent is one persisted LLM API call record.
type LLMEvent struct {
	ID           int64     `db:"id"`
	Provider     string    `db:"provider"`
	Model        string    `db:"model"`
	Purpose      string    `db:"purpose"`
	InputTokens  int       `db:"input_tokens"`
	OutputTokens int       `db:"output_tokens"`
	LatencyMs    int64     `db:"latency_ms"`
	Success      bool      `db:"success"`
	ErrorMessage string    `db:"error_message"`
	RequestBody  string    `db:"request_body"`
	ResponseBody string    `db:"response_body"`
	CreatedAt    time.Time `db:"created_at"`
}

// LLMUsage aggregates token usage across events, grouped by purpose or
// by model depending on the query.
type LLMUsage struct {
	Purpose      string `db:"purpose"`
	Model        string `db:"model"`
	Calls        int    `db:"calls"`
	InputTokens  int    `db:"input_tokens"`
	OutputTokens int    `db:"output_tokens"`
	AvgLatencyMs int64  `db:"avg_latency_ms"`
}

// EventRepo records and inspects LLM request events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// RecentLLMEvents returns up to limit events, newest first.
	RecentLLMEvents(ctx context.Context, limit int) ([]LLMEvent, error)

	// GetLLMEvent returns one event by ID, or nil if not found.
	GetLLMEvent(ctx context.Context, id int64) (*LLMEvent, error)

	// LLMUsageByPurpose aggregates usage per purpose label.
	LLMUsageByPurpose(ctx context.Context) ([]LLMUsage, error)

	// LLMUsageByModel aggregates usage per model.
	LLMUsageByModel(ctx context.Context) ([]LLMUsage, error)
}
