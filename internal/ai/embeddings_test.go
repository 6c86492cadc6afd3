package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"rag-chatbot-backend/internal/config"
)

func openAITestEmbedder(t *testing.T, dim int) *Embedder {
	t.Helper()
	cfg := &config.Config{
		EmbeddingsProvider:    "openai",
		OpenAIAPIKey:          "test-key",
		OpenAIEmbeddingsModel: "text-embedding-3-small",
		VectorDimension:       dim,
		RemoteTimeoutSecs:     5,
	}
	e, err := NewEmbedder(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("NewEmbedder: %v", err)
	}
	return e
}

func TestNewEmbedderUnknownProvider(t *testing.T) {
	cfg := &config.Config{EmbeddingsProvider: "acme", VectorDimension: 8, RemoteTimeoutSecs: 5}
	if _, err := NewEmbedder(context.Background(), cfg, nil); err == nil {
		t.Error("unknown provider accepted")
	}
}

func TestEmbedEmptyTextIsZeroVector(t *testing.T) {
	e := openAITestEmbedder(t, 5)

	vec, err := e.Embed(context.Background(), "")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(vec) != 5 {
		t.Fatalf("len = %d, want configured dimension 5", len(vec))
	}
	for i, v := range vec {
		if v != 0 {
			t.Errorf("vec[%d] = %v, want 0", i, v)
		}
	}
}

func TestEmbedOpenAI(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embeddings" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("authorization = %q", got)
		}
		var req struct {
			Input string `json:"input"`
			Model string `json:"model"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Input != "hello" || req.Model != "text-embedding-3-small" {
			t.Errorf("request = %+v", req)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{{"embedding": []float32{0.1, 0.2, 0.3}}},
		})
	}))
	defer srv.Close()

	e := openAITestEmbedder(t, 3)
	e.baseURL = srv.URL

	vec, err := e.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(vec) != 3 || vec[0] != 0.1 {
		t.Errorf("vec = %v", vec)
	}
}

func TestEmbedCohere(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embed" {
			t.Errorf("path = %q", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"embeddings": [][]float32{{1, 2, 3}},
		})
	}))
	defer srv.Close()

	cfg := &config.Config{
		EmbeddingsProvider:    "cohere",
		CohereAPIKey:          "test-key",
		CohereEmbeddingsModel: "embed-english-v3.0",
		VectorDimension:       3,
		RemoteTimeoutSecs:     5,
	}
	e, err := NewEmbedder(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("NewEmbedder: %v", err)
	}
	e.baseURL = srv.URL

	vec, err := e.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(vec) != 3 || vec[2] != 3 {
		t.Errorf("vec = %v", vec)
	}
}

func TestEmbedDimensionMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{{"embedding": []float32{0.1, 0.2}}},
		})
	}))
	defer srv.Close()

	e := openAITestEmbedder(t, 8)
	e.baseURL = srv.URL

	_, err := e.Embed(context.Background(), "hello")
	var embErr *EmbeddingError
	if !errors.As(err, &embErr) {
		t.Fatalf("err = %v, want *EmbeddingError", err)
	}
	if embErr.Provider != "openai" {
		t.Errorf("provider = %q", embErr.Provider)
	}
}

func TestEmbedServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	e := openAITestEmbedder(t, 3)
	e.baseURL = srv.URL

	_, err := e.Embed(context.Background(), "hello")
	var embErr *EmbeddingError
	if !errors.As(err, &embErr) {
		t.Fatalf("err = %v, want *EmbeddingError", err)
	}
}

func TestEmbeddingErrorUnwrap(t *testing.T) {
	inner := errors.New("boom")
	err := &EmbeddingError{Provider: "openai", Err: inner}
	if !errors.Is(err, inner) {
		t.Error("Unwrap does not expose the inner error")
	}
}
