package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

type topicContentRepo struct {
	db *sqlx.DB
}

func (r *topicContentRepo) Upsert(ctx context.Context, tc *TopicContent) error {
	if tc.CreatedAt.IsZero() {
		tc.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO topic_contents (user_id, course_id, topic, content, created_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(user_id, course_id, topic) DO UPDATE SET content = excluded.content`,
		tc.UserID, tc.CourseID, tc.Topic, tc.Content, tc.CreatedAt)
	if err != nil {
		return fmt.Errorf("upsert topic content: %w", err)
	}
	return nil
}

func (r *topicContentRepo) Get(ctx context.Context, userID, courseID, topic string) (*TopicContent, error) {
	var tc TopicContent
	err := r.db.GetContext(ctx, &tc,
		`SELECT * FROM topic_contents WHERE user_id = ? AND course_id = ? AND topic = ?`,
		userID, courseID, topic)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get topic content: %w", err)
	}
	return &tc, nil
}
