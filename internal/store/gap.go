package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

type gapRepo struct {
	db *sqlx.DB
}

func (r *gapRepo) Record(ctx context.Context, userID, topic, question string) error {
	now := time.Now().UTC()

	// One open record per topic: re-asking bumps the counter. A topic
	// closed earlier gets a fresh record if it resurfaces.
	res, err := r.db.ExecContext(ctx,
		`UPDATE knowledge_gaps
		 SET occurrences = occurrences + 1, updated_at = ?
		 WHERE user_id = ? AND topic = ? AND status = ?`,
		now, userID, topic, GapStatusOpen)
	if err != nil {
		return fmt.Errorf("record knowledge gap: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		return nil
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO knowledge_gaps (user_id, topic, question, status, occurrences, created_at, updated_at)
		 VALUES (?, ?, ?, ?, 1, ?, ?)`,
		userID, topic, question, GapStatusOpen, now, now)
	if err != nil {
		return fmt.Errorf("record knowledge gap: %w", err)
	}
	return nil
}

func (r *gapRepo) Open(ctx context.Context, userID string) ([]KnowledgeGap, error) {
	var gaps []KnowledgeGap
	err := r.db.SelectContext(ctx, &gaps,
		`SELECT * FROM knowledge_gaps WHERE user_id = ? AND status = ? ORDER BY updated_at DESC, id DESC`,
		userID, GapStatusOpen)
	if err != nil {
		return nil, fmt.Errorf("open knowledge gaps: %w", err)
	}
	return gaps, nil
}
