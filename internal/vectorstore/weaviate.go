// Package vectorstore is the single point of contact with the Weaviate
// vector database. All operations are single-attempt; callers decide retry
// policy.
package vectorstore

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/weaviate/weaviate-go-client/v4/weaviate"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"

	"rag-chatbot-backend/internal/config"
)

// Record is one stored document. Immutable once inserted.
type Record struct {
	ID       string
	Content  string
	PDFName  string
	Metadata map[string]string
	Vector   []float32
}

// SearchResult pairs a record with the store's distance metric
// (smaller is closer).
type SearchResult struct {
	Record   Record
	Distance float64
}

// Store wraps a Weaviate connection acquired at construction and released
// by Close. Safe for concurrent use.
type Store struct {
	client     *weaviate.Client
	httpClient *http.Client
	timeout    time.Duration

	// Serializes check-then-create so concurrent ingests cannot race the
	// schema. Weaviate's duplicate-create error is also tolerated in case
	// another process created the class first.
	ensureMu sync.Mutex
	ensured  map[string]bool
}

// NewStore connects to the Weaviate instance named by cfg.WeaviateURL.
func NewStore(cfg *config.Config) (*Store, error) {
	u, err := url.Parse(cfg.WeaviateURL)
	if err != nil {
		return nil, fmt.Errorf("invalid weaviate URL: %w", err)
	}
	scheme := u.Scheme
	if scheme == "" {
		scheme = "http"
	}

	timeout := time.Duration(cfg.RemoteTimeoutSecs) * time.Second
	httpClient := &http.Client{Timeout: timeout}

	headers := map[string]string{}
	if cfg.WeaviateAPIKey != "" {
		headers["Authorization"] = "Bearer " + cfg.WeaviateAPIKey
	}

	client, err := weaviate.NewClient(weaviate.Config{
		Host:             u.Host,
		Scheme:           scheme,
		Headers:          headers,
		ConnectionClient: httpClient,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create weaviate client: %w", err)
	}

	return &Store{
		client:     client,
		httpClient: httpClient,
		timeout:    timeout,
		ensured:    map[string]bool{},
	}, nil
}

// Close releases the underlying client connection.
func (s *Store) Close() {
	s.httpClient.CloseIdleConnections()
}

// EnsureClass creates the named class if absent. Idempotent: calling it
// twice never errors and never duplicates the schema.
func (s *Store) EnsureClass(ctx context.Context, name string) error {
	s.ensureMu.Lock()
	defer s.ensureMu.Unlock()

	if s.ensured[name] {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	exists, err := s.client.Schema().ClassExistenceChecker().WithClassName(name).Do(ctx)
	if err != nil {
		return &StoreWriteError{Op: "ensure class", Err: err}
	}
	if exists {
		s.ensured[name] = true
		return nil
	}

	class := &models.Class{
		Class:      name,
		Vectorizer: "none", // vectors are supplied externally
		Properties: []*models.Property{
			{Name: "content", DataType: []string{"text"}},
			{Name: "pdf_name", DataType: []string{"text"}},
			{Name: "metadata", DataType: []string{"text"}},
		},
	}
	if err := s.client.Schema().ClassCreator().WithClass(class).Do(ctx); err != nil {
		// Another writer may have won the create race. Re-check before
		// surfacing the error.
		exists, checkErr := s.client.Schema().ClassExistenceChecker().WithClassName(name).Do(ctx)
		if checkErr == nil && exists {
			s.ensured[name] = true
			return nil
		}
		return &StoreWriteError{Op: "create class", Err: err}
	}

	s.ensured[name] = true
	return nil
}

// Insert stores a record under the given class. If rec.ID is empty a new
// UUID is generated. Returns the stored record's id.
func (s *Store) Insert(ctx context.Context, class string, rec Record) (string, error) {
	id := rec.ID
	if id == "" {
		id = uuid.New().String()
	}

	metadata := "{}"
	if len(rec.Metadata) > 0 {
		raw, err := json.Marshal(rec.Metadata)
		if err != nil {
			return "", &StoreWriteError{Op: "encode metadata", Err: err}
		}
		metadata = string(raw)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	_, err := s.client.Data().Creator().
		WithClassName(class).
		WithID(id).
		WithProperties(map[string]interface{}{
			"content":  rec.Content,
			"pdf_name": rec.PDFName,
			"metadata": metadata,
		}).
		WithVector(rec.Vector).
		Do(ctx)
	if err != nil {
		return "", &StoreWriteError{Op: "insert", Err: err}
	}
	return id, nil
}

// Search returns up to k records nearest to the query vector, nearest
// first. An empty collection yields an empty slice, not an error.
func (s *Store) Search(ctx context.Context, class string, vector []float32, k int) ([]SearchResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	nearVector := s.client.GraphQL().NearVectorArgBuilder().WithVector(vector)
	resp, err := s.client.GraphQL().Get().
		WithClassName(class).
		WithFields(resultFields()...).
		WithNearVector(nearVector).
		WithLimit(k).
		Do(ctx)
	if err != nil {
		return nil, &StoreQueryError{Op: "search", Err: err}
	}
	return parseResults(resp, class)
}

// List returns up to limit records in store order, for the document
// inventory endpoint.
func (s *Store) List(ctx context.Context, class string, limit int) ([]SearchResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.client.GraphQL().Get().
		WithClassName(class).
		WithFields(resultFields()...).
		WithLimit(limit).
		Do(ctx)
	if err != nil {
		return nil, &StoreQueryError{Op: "list", Err: err}
	}
	return parseResults(resp, class)
}

func resultFields() []graphql.Field {
	return []graphql.Field{
		{Name: "content"},
		{Name: "pdf_name"},
		{Name: "metadata"},
		{Name: "_additional", Fields: []graphql.Field{
			{Name: "id"},
			{Name: "distance"},
		}},
	}
}

func parseResults(resp *models.GraphQLResponse, class string) ([]SearchResult, error) {
	if len(resp.Errors) > 0 {
		return nil, &StoreQueryError{Op: "graphql", Err: fmt.Errorf("%s", resp.Errors[0].Message)}
	}

	get, ok := resp.Data["Get"].(map[string]interface{})
	if !ok {
		return []SearchResult{}, nil
	}
	items, ok := get[class].([]interface{})
	if !ok {
		return []SearchResult{}, nil
	}

	results := make([]SearchResult, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		var r SearchResult
		if v, ok := obj["content"].(string); ok {
			r.Record.Content = v
		}
		if v, ok := obj["pdf_name"].(string); ok {
			r.Record.PDFName = v
		}
		if v, ok := obj["metadata"].(string); ok && v != "" && v != "{}" {
			meta := map[string]string{}
			if err := json.Unmarshal([]byte(v), &meta); err == nil {
				r.Record.Metadata = meta
			}
		}
		if add, ok := obj["_additional"].(map[string]interface{}); ok {
			if v, ok := add["id"].(string); ok {
				r.Record.ID = v
			}
			if v, ok := add["distance"].(float64); ok {
				r.Distance = v
			}
		}
		results = append(results, r)
	}
	return results, nil
}
