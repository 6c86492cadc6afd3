package telemetry

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the application meters recorded by the ingestion and
// retrieval paths.
type Metrics struct {
	DocumentsIngested metric.Int64Counter
	IngestDuration    metric.Float64Histogram
	EmbeddingDuration metric.Float64Histogram
	TokensUsed        metric.Int64Counter
	VectorSearches    metric.Int64Counter
}

// InitMetrics initializes all application metrics
func InitMetrics() (*Metrics, error) {
	meter := otel.Meter("rag-chatbot-backend")

	documentsIngested, err := meter.Int64Counter(
		"ingest.documents.total",
		metric.WithDescription("Total documents ingested into the vector store"),
	)
	if err != nil {
		return nil, err
	}

	ingestDuration, err := meter.Float64Histogram(
		"ingest.duration",
		metric.WithDescription("End-to-end ingestion duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	embeddingDuration, err := meter.Float64Histogram(
		"embedding.duration",
		metric.WithDescription("Embedding call duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	tokensUsed, err := meter.Int64Counter(
		"chat.tokens.used",
		metric.WithDescription("Total chat-completion tokens used"),
	)
	if err != nil {
		return nil, err
	}

	vectorSearches, err := meter.Int64Counter(
		"retrieval.searches.total",
		metric.WithDescription("Total nearest-neighbor searches issued"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		DocumentsIngested: documentsIngested,
		IngestDuration:    ingestDuration,
		EmbeddingDuration: embeddingDuration,
		TokensUsed:        tokensUsed,
		VectorSearches:    vectorSearches,
	}, nil
}
