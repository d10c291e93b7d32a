package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type courseRepo struct {
	db *sqlx.DB
}

func (r *courseRepo) Create(ctx context.Context, c *Course) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO courses (id, user_id, topic, skill_level, syllabus, module_index, topic_index, completed, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.UserID, c.Topic, c.SkillLevel, string(c.Syllabus),
		c.ModuleIndex, c.TopicIndex, c.Completed, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create course: %w", err)
	}
	return nil
}

func (r *courseRepo) Get(ctx context.Context, id string) (*Course, error) {
	var c Course
	err := r.db.GetContext(ctx, &c, `SELECT * FROM courses WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get course: %w", err)
	}
	return &c, nil
}

func (r *courseRepo) LatestByUser(ctx context.Context, userID string) (*Course, error) {
	var c Course
	err := r.db.GetContext(ctx, &c,
		`SELECT * FROM courses WHERE user_id = ? ORDER BY created_at DESC, id DESC LIMIT 1`,
		userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest course: %w", err)
	}
	return &c, nil
}

func (r *courseRepo) UpdateProgress(ctx context.Context, id string, moduleIndex, topicIndex int, completed bool) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE courses SET module_index = ?, topic_index = ?, completed = ?, updated_at = ? WHERE id = ?`,
		moduleIndex, topicIndex, completed, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update course progress: %w", err)
	}
	return nil
}
