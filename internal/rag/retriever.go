package rag

import "context"

// Document is one retrieved chunk with its match distance.
// Distance is 0 for a perfect match and 1 for no lexical overlap.
type Document struct {
	Text     string
	Metadata map[string]any
	Distance float64
}

// Retriever finds corpus documents relevant to a query. An empty result
// slice is the valid no-match answer, not an error.
type Retriever interface {
	Retrieve(ctx context.Context, query string, topK int) ([]Document, error)
}
