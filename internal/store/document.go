package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type documentRepo struct {
	db *sqlx.DB
}

type documentRow struct {
	ID        string    `db:"id"`
	Source    string    `db:"source"`
	Content   string    `db:"content"`
	Metadata  string    `db:"metadata"`
	CreatedAt time.Time `db:"created_at"`
}

func (r *documentRepo) Add(ctx context.Context, d *Document) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}

	meta, err := json.Marshal(orEmpty(d.Metadata))
	if err != nil {
		return fmt.Errorf("marshal document metadata: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO documents (id, source, content, metadata, created_at) VALUES (?, ?, ?, ?, ?)`,
		d.ID, d.Source, d.Content, string(meta), d.CreatedAt)
	if err != nil {
		return fmt.Errorf("add document: %w", err)
	}
	return nil
}

func (r *documentRepo) All(ctx context.Context) ([]Document, error) {
	var rows []documentRow
	err := r.db.SelectContext(ctx, &rows, `SELECT * FROM documents ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	docs := make([]Document, 0, len(rows))
	for _, row := range rows {
		meta := map[string]any{}
		if row.Metadata != "" {
			if err := json.Unmarshal([]byte(row.Metadata), &meta); err != nil {
				return nil, fmt.Errorf("unmarshal document metadata: %w", err)
			}
		}
		docs = append(docs, Document{
			ID:        row.ID,
			Source:    row.Source,
			Content:   row.Content,
			Metadata:  meta,
			CreatedAt: row.CreatedAt,
		})
	}
	return docs, nil
}

func (r *documentRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM documents`); err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}
	return n, nil
}
