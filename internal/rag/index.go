package rag

import (
	"context"
	"sort"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/bindulearn/bindu/internal/store"
)

// Index is a lexical retriever over the documents table. It ranks by
// token overlap with the query: distance = 1 - shared/queryTokens.
// The corpus is small enough to scan in memory on every call.
type Index struct {
	repo   store.DocumentRepo
	logger *zap.Logger
}

// NewIndex creates an Index over the document repository.
func NewIndex(repo store.DocumentRepo, logger *zap.Logger) *Index {
	return &Index{repo: repo, logger: logger}
}

// Retrieve returns up to topK documents with any overlap with the query,
// closest first.
func (ix *Index) Retrieve(ctx context.Context, query string, topK int) ([]Document, error) {
	if topK <= 0 {
		topK = 3
	}

	queryTokens := tokenize(query)
	if len(queryTokens) == 0 {
		return nil, nil
	}

	docs, err := ix.repo.All(ctx)
	if err != nil {
		return nil, err
	}

	var matches []Document
	for _, d := range docs {
		overlap := overlapRatio(queryTokens, tokenize(d.Content))
		if overlap == 0 {
			continue
		}
		matches = append(matches, Document{
			Text:     d.Content,
			Metadata: d.Metadata,
			Distance: 1 - overlap,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Distance < matches[j].Distance
	})
	if len(matches) > topK {
		matches = matches[:topK]
	}

	ix.logger.Debug("retrieval",
		zap.String("query", query),
		zap.Int("corpus", len(docs)),
		zap.Int("matches", len(matches)))

	return matches, nil
}

// tokenize lowercases and splits on non-alphanumeric runes, dropping
// single-rune tokens.
func tokenize(s string) map[string]struct{} {
	tokens := map[string]struct{}{}
	for _, tok := range strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	}) {
		if len(tok) > 1 {
			tokens[tok] = struct{}{}
		}
	}
	return tokens
}

func overlapRatio(query, doc map[string]struct{}) float64 {
	if len(query) == 0 {
		return 0
	}
	shared := 0
	for tok := range query {
		if _, ok := doc[tok]; ok {
			shared++
		}
	}
	return float64(shared) / float64(len(query))
}
