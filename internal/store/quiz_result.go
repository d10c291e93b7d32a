package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

type quizResultRepo struct {
	db *sqlx.DB
}

func (r *quizResultRepo) Save(ctx context.Context, qr *QuizResult) error {
	if qr.CreatedAt.IsZero() {
		qr.CreatedAt = time.Now().UTC()
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO quiz_results (user_id, course_id, topic, score, total, percent, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		qr.UserID, qr.CourseID, qr.Topic, qr.Score, qr.Total, qr.Percent, qr.CreatedAt)
	if err != nil {
		return fmt.Errorf("save quiz result: %w", err)
	}
	qr.ID, _ = res.LastInsertId()
	return nil
}

func (r *quizResultRepo) AverageByCourse(ctx context.Context, courseID string) (float64, error) {
	var avg float64
	err := r.db.GetContext(ctx, &avg,
		`SELECT COALESCE(AVG(percent), 0) FROM quiz_results WHERE course_id = ?`, courseID)
	if err != nil {
		return 0, fmt.Errorf("quiz average: %w", err)
	}
	return avg, nil
}

func (r *quizResultRepo) ByUser(ctx context.Context, userID string, limit int) ([]QuizResult, error) {
	if limit <= 0 {
		limit = 20
	}
	var results []QuizResult
	err := r.db.SelectContext(ctx, &results,
		`SELECT * FROM quiz_results WHERE user_id = ? ORDER BY created_at DESC, id DESC LIMIT ?`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("quiz results: %w", err)
	}
	return results, nil
}
