package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"rag-chatbot-backend/internal/config"
	"rag-chatbot-backend/internal/telemetry"
)

// EmbeddingError wraps failures from the configured embeddings backend.
type EmbeddingError struct {
	Provider string
	Err      error
}

func (e *EmbeddingError) Error() string {
	return fmt.Sprintf("embedding (%s): %v", e.Provider, e.Err)
}

func (e *EmbeddingError) Unwrap() error { return e.Err }

// Embedder produces fixed-dimension dense vectors for text. It is
// constructed once at startup and is safe for concurrent use; the
// underlying clients hold no per-call state.
//
// Calls are single-attempt: callers decide whether a transport failure is
// worth retrying.
type Embedder struct {
	provider string
	model    string
	dim      int
	timeout  time.Duration

	genaiClient *genai.Client // google provider
	httpClient  *http.Client  // openai / cohere providers
	apiKey      string
	baseURL     string

	metrics *telemetry.Metrics
}

// NewEmbedder builds the embedder for the configured provider. The vector
// dimension is a configuration constant, not probed at runtime.
func NewEmbedder(ctx context.Context, cfg *config.Config, metrics *telemetry.Metrics) (*Embedder, error) {
	e := &Embedder{
		provider: cfg.EmbeddingsProvider,
		dim:      cfg.VectorDimension,
		timeout:  time.Duration(cfg.RemoteTimeoutSecs) * time.Second,
		metrics:  metrics,
	}

	switch cfg.EmbeddingsProvider {
	case "google":
		client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiAPIKey))
		if err != nil {
			return nil, fmt.Errorf("failed to create genai client: %w", err)
		}
		e.genaiClient = client
		e.model = cfg.GoogleEmbeddingsModel

	case "openai":
		e.httpClient = &http.Client{Timeout: e.timeout}
		e.apiKey = cfg.OpenAIAPIKey
		e.baseURL = "https://api.openai.com/v1"
		e.model = cfg.OpenAIEmbeddingsModel

	case "cohere":
		e.httpClient = &http.Client{Timeout: e.timeout}
		e.apiKey = cfg.CohereAPIKey
		e.baseURL = "https://api.cohere.com/v1"
		e.model = cfg.CohereEmbeddingsModel

	default:
		return nil, fmt.Errorf("unknown embeddings provider: %s", cfg.EmbeddingsProvider)
	}

	return e, nil
}

// Dimension returns the configured output dimension.
func (e *Embedder) Dimension() int { return e.dim }

// Close releases the underlying client connection.
func (e *Embedder) Close() error {
	if e.genaiClient != nil {
		return e.genaiClient.Close()
	}
	return nil
}

// Embed returns the embedding vector for text. The empty string embeds to
// the zero vector without a remote call, so an empty PDF still yields a
// record of the right shape.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return make([]float32, e.dim), nil
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	start := time.Now()
	var (
		vec []float32
		err error
	)

	switch e.provider {
	case "google":
		vec, err = e.embedGoogle(ctx, text)
	case "openai":
		vec, err = e.embedOpenAI(ctx, text)
	case "cohere":
		vec, err = e.embedCohere(ctx, text)
	default:
		err = fmt.Errorf("unknown embeddings provider: %s", e.provider)
	}

	if err != nil {
		return nil, &EmbeddingError{Provider: e.provider, Err: err}
	}

	if len(vec) != e.dim {
		return nil, &EmbeddingError{
			Provider: e.provider,
			Err:      fmt.Errorf("model returned %d dimensions, configured %d", len(vec), e.dim),
		}
	}

	if e.metrics != nil {
		e.metrics.EmbeddingDuration.Record(ctx, time.Since(start).Seconds())
	}
	return vec, nil
}

func (e *Embedder) embedGoogle(ctx context.Context, text string) ([]float32, error) {
	model := e.genaiClient.EmbeddingModel(e.model)
	resp, err := model.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, err
	}
	if resp.Embedding == nil {
		return nil, fmt.Errorf("no embedding returned")
	}
	return resp.Embedding.Values, nil
}

func (e *Embedder) embedOpenAI(ctx context.Context, text string) ([]float32, error) {
	body, _ := json.Marshal(map[string]any{
		"input": text,
		"model": e.model,
	})
	payload, err := e.postJSON(ctx, e.baseURL+"/embeddings", body)
	if err != nil {
		return nil, err
	}

	var out struct {
		Data []struct {
			Embedding []float32 `json:"embedding"`
		} `json:"data"`
	}
	if err := json.Unmarshal(payload, &out); err != nil {
		return nil, err
	}
	if len(out.Data) == 0 || len(out.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("no embedding returned")
	}
	return out.Data[0].Embedding, nil
}

func (e *Embedder) embedCohere(ctx context.Context, text string) ([]float32, error) {
	body, _ := json.Marshal(map[string]any{
		"texts":      []string{text},
		"model":      e.model,
		"input_type": "search_document",
	})
	payload, err := e.postJSON(ctx, e.baseURL+"/embed", body)
	if err != nil {
		return nil, err
	}

	var out struct {
		Embeddings [][]float32 `json:"embeddings"`
	}
	if err := json.Unmarshal(payload, &out); err != nil {
		return nil, err
	}
	if len(out.Embeddings) == 0 || len(out.Embeddings[0]) == 0 {
		return nil, fmt.Errorf("no embedding returned")
	}
	return out.Embeddings[0], nil
}

func (e *Embedder) postJSON(ctx context.Context, url string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.apiKey)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("embeddings request failed: %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}
