package rag

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/bindulearn/bindu/internal/store"
)

// chunkSize is the target chunk length in characters. Chunks split on
// paragraph boundaries where possible.
const chunkSize = 1200

// Ingester loads plain-text files into the retrieval corpus.
type Ingester struct {
	repo   store.DocumentRepo
	logger *zap.Logger
}

// NewIngester creates an Ingester over the document repository.
func NewIngester(repo store.DocumentRepo, logger *zap.Logger) *Ingester {
	return &Ingester{repo: repo, logger: logger}
}

// IngestFile splits one text file into chunks and stores them. Returns
// the number of chunks stored.
func (in *Ingester) IngestFile(ctx context.Context, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", path, err)
	}

	source := filepath.Base(path)
	chunks := Chunk(string(data))
	for i, chunk := range chunks {
		doc := &store.Document{
			Source:  source,
			Content: chunk,
			Metadata: map[string]any{
				"source": source,
				"chunk":  i,
			},
		}
		if err := in.repo.Add(ctx, doc); err != nil {
			return i, err
		}
	}

	in.logger.Info("ingested file",
		zap.String("path", path),
		zap.Int("chunks", len(chunks)))

	return len(chunks), nil
}

// Chunk splits text into roughly chunkSize pieces, preferring paragraph
// boundaries. Blank input yields no chunks.
func Chunk(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	paragraphs := strings.Split(text, "\n\n")
	var chunks []string
	var b strings.Builder

	flush := func() {
		if s := strings.TrimSpace(b.String()); s != "" {
			chunks = append(chunks, s)
		}
		b.Reset()
	}

	for _, p := range paragraphs {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if b.Len() > 0 && b.Len()+len(p) > chunkSize {
			flush()
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(p)

		// A single oversized paragraph is hard-split.
		for b.Len() > chunkSize {
			s := b.String()
			chunks = append(chunks, strings.TrimSpace(s[:chunkSize]))
			b.Reset()
			b.WriteString(strings.TrimSpace(s[chunkSize:]))
		}
	}
	flush()

	return chunks
}
