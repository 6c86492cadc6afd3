package vectorstore

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/weaviate/weaviate/entities/models"

	"rag-chatbot-backend/internal/config"
)

func TestNewStore(t *testing.T) {
	cfg := &config.Config{WeaviateURL: "http://localhost:8080", RemoteTimeoutSecs: 5}
	store, err := NewStore(cfg)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	defer store.Close()
}

func TestParseResults(t *testing.T) {
	resp := &models.GraphQLResponse{
		Data: map[string]models.JSONObject{
			"Get": map[string]interface{}{
				"Document": []interface{}{
					map[string]interface{}{
						"content":  "hello world",
						"pdf_name": "greeting.pdf",
						"metadata": `{"source_name":"greeting.pdf"}`,
						"_additional": map[string]interface{}{
							"id":       "abc-123",
							"distance": 0.12,
						},
					},
					map[string]interface{}{
						"content":  "second",
						"pdf_name": "other.pdf",
						"metadata": "{}",
					},
				},
			},
		},
	}

	results, err := parseResults(resp, "Document")
	if err != nil {
		t.Fatalf("parseResults: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}

	first := results[0]
	if first.Record.Content != "hello world" || first.Record.PDFName != "greeting.pdf" {
		t.Errorf("first record = %+v", first.Record)
	}
	if first.Record.ID != "abc-123" {
		t.Errorf("id = %q", first.Record.ID)
	}
	if first.Distance != 0.12 {
		t.Errorf("distance = %v", first.Distance)
	}
	if first.Record.Metadata["source_name"] != "greeting.pdf" {
		t.Errorf("metadata = %v", first.Record.Metadata)
	}

	if results[1].Record.Metadata != nil {
		t.Errorf("empty metadata decoded to %v, want nil", results[1].Record.Metadata)
	}
}

func TestParseResultsEmptyCollection(t *testing.T) {
	resp := &models.GraphQLResponse{
		Data: map[string]models.JSONObject{
			"Get": map[string]interface{}{},
		},
	}

	results, err := parseResults(resp, "Document")
	if err != nil {
		t.Fatalf("parseResults: %v", err)
	}
	if results == nil || len(results) != 0 {
		t.Errorf("results = %v, want empty non-nil slice", results)
	}
}

func TestParseResultsGraphQLError(t *testing.T) {
	resp := &models.GraphQLResponse{
		Errors: []*models.GraphQLError{{Message: "class not found"}},
	}

	_, err := parseResults(resp, "Document")
	var queryErr *StoreQueryError
	if !errors.As(err, &queryErr) {
		t.Fatalf("err = %v, want *StoreQueryError", err)
	}
}

func TestStoreErrorUnwrap(t *testing.T) {
	inner := errors.New("connection refused")

	var err error = &StoreWriteError{Op: "insert", Err: inner}
	if !errors.Is(err, inner) {
		t.Error("StoreWriteError does not unwrap")
	}

	err = &StoreQueryError{Op: "search", Err: inner}
	if !errors.Is(err, inner) {
		t.Error("StoreQueryError does not unwrap")
	}
}

// TestStoreRoundTrip exercises a live Weaviate instance. Skipped unless
// WEAVIATE_TEST_URL is set.
func TestStoreRoundTrip(t *testing.T) {
	url := os.Getenv("WEAVIATE_TEST_URL")
	if url == "" {
		t.Skip("WEAVIATE_TEST_URL not set, skipping integration test")
	}

	cfg := &config.Config{WeaviateURL: url, RemoteTimeoutSecs: 10}
	store, err := NewStore(cfg)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	const class = "IntegrationTestDoc"

	if err := store.EnsureClass(ctx, class); err != nil {
		t.Fatalf("EnsureClass: %v", err)
	}
	// Idempotency.
	if err := store.EnsureClass(ctx, class); err != nil {
		t.Fatalf("EnsureClass second call: %v", err)
	}

	vec := []float32{0.1, 0.2, 0.3, 0.4}
	id, err := store.Insert(ctx, class, Record{
		Content:  "integration test content",
		PDFName:  "it.pdf",
		Metadata: map[string]string{"source_name": "it.pdf"},
		Vector:   vec,
	})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if id == "" {
		t.Fatal("empty record id")
	}

	results, err := store.Search(ctx, class, vec, 1)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].Record.Content != "integration test content" {
		t.Errorf("search results = %+v", results)
	}
}
