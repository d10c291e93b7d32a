package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type conversationRepo struct {
	db *sqlx.DB
}

// conversationRow is the wire form; metadata travels as a JSON column.
type conversationRow struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	Message   string    `db:"message"`
	Response  string    `db:"response"`
	Metadata  string    `db:"metadata"`
	CreatedAt time.Time `db:"created_at"`
}

func (r *conversationRepo) Append(ctx context.Context, c *Conversation) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}

	meta, err := json.Marshal(orEmpty(c.Metadata))
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO conversations (id, user_id, message, response, metadata, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.UserID, c.Message, c.Response, string(meta), c.CreatedAt)
	if err != nil {
		return fmt.Errorf("append conversation: %w", err)
	}
	return nil
}

func (r *conversationRepo) Latest(ctx context.Context, userID string) (*Conversation, error) {
	var row conversationRow
	err := r.db.GetContext(ctx, &row,
		`SELECT * FROM conversations WHERE user_id = ? ORDER BY created_at DESC, id DESC LIMIT 1`,
		userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest conversation: %w", err)
	}
	return row.toConversation()
}

func (r *conversationRepo) History(ctx context.Context, userID string, limit int) ([]Conversation, error) {
	if limit <= 0 {
		limit = 20
	}
	var rows []conversationRow
	err := r.db.SelectContext(ctx, &rows,
		`SELECT * FROM conversations WHERE user_id = ? ORDER BY created_at DESC, id DESC LIMIT ?`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("conversation history: %w", err)
	}

	out := make([]Conversation, 0, len(rows))
	for _, row := range rows {
		c, err := row.toConversation()
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, nil
}

func (r *conversationRepo) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM conversations WHERE user_id = ?`, userID)
	if err != nil {
		return 0, fmt.Errorf("delete conversations: %w", err)
	}
	return res.RowsAffected()
}

func (row conversationRow) toConversation() (*Conversation, error) {
	meta := map[string]any{}
	if row.Metadata != "" {
		if err := json.Unmarshal([]byte(row.Metadata), &meta); err != nil {
			return nil, fmt.Errorf("unmarshal conversation metadata: %w", err)
		}
	}
	return &Conversation{
		ID:        row.ID,
		UserID:    row.UserID,
		Message:   row.Message,
		Response:  row.Response,
		Metadata:  meta,
		CreatedAt: row.CreatedAt,
	}, nil
}

func orEmpty(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}
