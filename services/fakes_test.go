package services

import (
	"context"
	"fmt"
	"image"
	"math"
	"sort"
	"sync"

	"rag-chatbot-backend/internal/vectorstore"
)

type fakeExtractor struct {
	text   string
	images []image.Image
	err    error

	paths []string
}

func (f *fakeExtractor) ExtractText(filePath string) (string, error) {
	f.paths = append(f.paths, filePath)
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

func (f *fakeExtractor) ExtractImages(filePath string) ([]image.Image, error) {
	return f.images, nil
}

// fakeEmbedder maps text deterministically onto a small vector so that
// identical texts embed identically and different texts do not.
type fakeEmbedder struct {
	dim int
}

func (f *fakeEmbedder) Dimension() int { return f.dim }

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vec := make([]float32, f.dim)
	if text == "" {
		return vec, nil
	}
	vec[0] = float32(len(text))
	for i, b := range []byte(text) {
		vec[1+i%(f.dim-1)] += float32(b) / 255
	}
	return vec, nil
}

// fakeIndex is an in-memory vector index ranking by Euclidean distance.
type fakeIndex struct {
	mu      sync.Mutex
	ensured int
	seq     int
	records map[string][]vectorstore.Record
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{records: map[string][]vectorstore.Record{}}
}

func (f *fakeIndex) EnsureClass(ctx context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ensured++
	return nil
}

func (f *fakeIndex) Insert(ctx context.Context, class string, rec vectorstore.Record) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	if rec.ID == "" {
		rec.ID = fmt.Sprintf("rec-%d", f.seq)
	}
	f.records[class] = append(f.records[class], rec)
	return rec.ID, nil
}

func (f *fakeIndex) Search(ctx context.Context, class string, vector []float32, k int) ([]vectorstore.SearchResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	results := make([]vectorstore.SearchResult, 0, len(f.records[class]))
	for _, rec := range f.records[class] {
		results = append(results, vectorstore.SearchResult{
			Record:   rec,
			Distance: euclidean(rec.Vector, vector),
		})
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Distance < results[j].Distance })
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

func (f *fakeIndex) List(ctx context.Context, class string, limit int) ([]vectorstore.SearchResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	results := make([]vectorstore.SearchResult, 0, len(f.records[class]))
	for _, rec := range f.records[class] {
		if len(results) == limit {
			break
		}
		results = append(results, vectorstore.SearchResult{Record: rec})
	}
	return results, nil
}

func euclidean(a, b []float32) float64 {
	var sum float64
	for i := range a {
		var bv float64
		if i < len(b) {
			bv = float64(b[i])
		}
		d := float64(a[i]) - bv
		sum += d * d
	}
	return math.Sqrt(sum)
}
