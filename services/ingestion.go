package services

import (
	"context"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"rag-chatbot-backend/internal/config"
	"rag-chatbot-backend/internal/logger"
	"rag-chatbot-backend/internal/telemetry"
	"rag-chatbot-backend/internal/vectorstore"
)

// TextExtractor produces plain text and embedded images from a stored PDF.
type TextExtractor interface {
	ExtractText(filePath string) (string, error)
	ExtractImages(filePath string) ([]image.Image, error)
}

// EmbeddingClient produces fixed-dimension vectors for text.
type EmbeddingClient interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimension() int
}

// VectorIndex is the subset of the vector store the pipeline depends on.
type VectorIndex interface {
	EnsureClass(ctx context.Context, name string) error
	Insert(ctx context.Context, class string, rec vectorstore.Record) (string, error)
	Search(ctx context.Context, class string, vector []float32, k int) ([]vectorstore.SearchResult, error)
	List(ctx context.Context, class string, limit int) ([]vectorstore.SearchResult, error)
}

// IngestResult describes one processed upload.
type IngestResult struct {
	RecordID     string `json:"record_id"`
	PDFName      string `json:"pdf_name"`
	HasText      bool   `json:"has_text"`
	HasImages    bool   `json:"has_images"`
	HasCharts    bool   `json:"has_charts"`
	DocumentType string `json:"document_type"`
}

// IngestionService composes extraction, embedding and vector storage for
// one uploaded document. Each step is a hard dependency on the previous
// one succeeding; no partial rollback is attempted.
type IngestionService struct {
	cfg       *config.Config
	extractor TextExtractor
	embedder  EmbeddingClient
	store     VectorIndex
	metrics   *telemetry.Metrics
}

func NewIngestionService(cfg *config.Config, extractor TextExtractor, embedder EmbeddingClient, store VectorIndex, metrics *telemetry.Metrics) *IngestionService {
	return &IngestionService{
		cfg:       cfg,
		extractor: extractor,
		embedder:  embedder,
		store:     store,
		metrics:   metrics,
	}
}

// Ingest persists the uploaded bytes, extracts and embeds the text, and
// inserts the record into the vector store. The storage key is derived
// from a fresh UUID so concurrent uploads of the same filename cannot
// collide.
func (s *IngestionService) Ingest(ctx context.Context, src io.Reader, filename string) (*IngestResult, error) {
	start := time.Now()

	if err := os.MkdirAll(s.cfg.FileStorageDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to prepare storage dir: %w", err)
	}

	storageKey := uuid.New().String() + "_" + filepath.Base(filename)
	filePath := filepath.Join(s.cfg.FileStorageDir, storageKey)

	if err := saveFile(filePath, src); err != nil {
		return nil, err
	}
	defer func() {
		// Best-effort cleanup; a leaked temp file is a resource nuisance,
		// not a correctness bug.
		if err := os.Remove(filePath); err != nil {
			logger.Warn("failed to remove uploaded file", "path", filePath, "error", err)
		}
	}()

	text, err := s.extractor.ExtractText(filePath)
	if err != nil {
		return nil, err
	}

	images, err := s.extractor.ExtractImages(filePath)
	if err != nil {
		logger.Warn("image extraction failed", "pdf", filename, "error", err)
		images = nil
	}
	hasCharts := false
	for _, img := range images {
		if DetectChart(img) {
			hasCharts = true
			break
		}
	}

	// Empty extraction is not an error: the record is stored with empty
	// content and a zero-information embedding.
	vec, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	if err := s.store.EnsureClass(ctx, s.cfg.VectorClass); err != nil {
		return nil, err
	}

	recordID, err := s.store.Insert(ctx, s.cfg.VectorClass, vectorstore.Record{
		Content: text,
		PDFName: filename,
		Metadata: map[string]string{
			"source_name": filename,
			"storage_key": storageKey,
		},
		Vector: vec,
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.DocumentsIngested.Add(ctx, 1)
		s.metrics.IngestDuration.Record(ctx, time.Since(start).Seconds())
	}
	logger.Info("document ingested", "pdf", filename, "record_id", recordID, "chars", len(text), "images", len(images))

	return &IngestResult{
		RecordID:     recordID,
		PDFName:      filename,
		HasText:      text != "",
		HasImages:    len(images) > 0,
		HasCharts:    hasCharts,
		DocumentType: classifyDocument(text != "", len(images) > 0, hasCharts),
	}, nil
}

func saveFile(path string, src io.Reader) error {
	dst, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("failed to save file: %w", err)
	}
	return nil
}

// classifyDocument mirrors the coarse document typing reported by the
// upload endpoint.
func classifyDocument(hasText, hasImages, hasCharts bool) string {
	switch {
	case hasText && !hasImages:
		return "text"
	case hasImages && hasCharts:
		return "charted"
	case hasImages:
		return "illustrated"
	default:
		return "unknown"
	}
}
