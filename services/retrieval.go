package services

import (
	"context"
	"errors"

	"rag-chatbot-backend/internal/config"
	"rag-chatbot-backend/internal/telemetry"
)

// ErrInvalidK rejects non-positive result counts.
var ErrInvalidK = errors.New("k must be a positive integer")

// Snippet is one retrieved passage projected down to the fields callers
// usually want.
type Snippet struct {
	Content string `json:"content"`
	PDFName string `json:"pdf_name"`
}

// RetrievalService embeds a query and searches the vector store for the
// nearest stored passages. No minimum-score threshold is applied: the k
// nearest records are returned regardless of relevance.
type RetrievalService struct {
	class    string
	embedder EmbeddingClient
	store    VectorIndex
	metrics  *telemetry.Metrics
}

func NewRetrievalService(cfg *config.Config, embedder EmbeddingClient, store VectorIndex, metrics *telemetry.Metrics) *RetrievalService {
	return &RetrievalService{
		class:    cfg.VectorClass,
		embedder: embedder,
		store:    store,
		metrics:  metrics,
	}
}

// Retrieve returns up to k snippets ordered nearest first. An empty
// collection yields an empty slice, not an error.
func (s *RetrievalService) Retrieve(ctx context.Context, query string, k int) ([]Snippet, error) {
	if k <= 0 {
		return nil, ErrInvalidK
	}

	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}

	results, err := s.store.Search(ctx, s.class, vec, k)
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.VectorSearches.Add(ctx, 1)
	}

	snippets := make([]Snippet, 0, len(results))
	for _, r := range results {
		snippets = append(snippets, Snippet{Content: r.Record.Content, PDFName: r.Record.PDFName})
	}
	return snippets, nil
}

// ListDocuments returns up to limit stored documents in store order, for
// the document inventory endpoint.
func (s *RetrievalService) ListDocuments(ctx context.Context, limit int) ([]Snippet, error) {
	results, err := s.store.List(ctx, s.class, limit)
	if err != nil {
		return nil, err
	}

	snippets := make([]Snippet, 0, len(results))
	for _, r := range results {
		snippets = append(snippets, Snippet{Content: r.Record.Content, PDFName: r.Record.PDFName})
	}
	return snippets, nil
}
