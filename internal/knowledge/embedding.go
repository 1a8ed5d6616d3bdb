package knowledge

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"go.uber.org/zap"

	"SignalSage/internal/model"
)

// DefaultSimilarityFloor drops matches below this cosine similarity.
const DefaultSimilarityFloor = 0.3

// Embedder turns texts into vectors, one per input, in order.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// EmbeddingRetriever ranks entries by cosine similarity to the query
// embedding. Entry vectors are computed on first use. Any embedding failure
// falls back to keyword scoring.
type EmbeddingRetriever struct {
	embedder Embedder
	fallback *KeywordRetriever
	floor    float64
	log      *zap.Logger

	mu      sync.Mutex
	vectors [][]float32
}

// NewEmbeddingRetriever creates a retriever over the fallback's entries.
// A non-positive floor selects DefaultSimilarityFloor.
func NewEmbeddingRetriever(embedder Embedder, fallback *KeywordRetriever, floor float64, log *zap.Logger) *EmbeddingRetriever {
	if floor <= 0 {
		floor = DefaultSimilarityFloor
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &EmbeddingRetriever{embedder: embedder, fallback: fallback, floor: floor, log: log}
}

func (r *EmbeddingRetriever) entryVectors(ctx context.Context) ([][]float32, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.vectors != nil {
		return r.vectors, nil
	}

	entries := r.fallback.Entries()
	texts := make([]string, len(entries))
	for i, e := range entries {
		texts[i] = e.Title + "\n" + e.Content
	}
	vecs, err := r.embedder.Embed(ctx, texts)
	if err != nil {
		return nil, err
	}
	if len(vecs) != len(entries) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d entries", len(vecs), len(entries))
	}
	r.vectors = vecs
	return vecs, nil
}

func (r *EmbeddingRetriever) Search(ctx context.Context, query string, topK int) []model.KnowledgeMatch {
	if topK <= 0 {
		topK = DefaultTopK
	}
	matches, err := r.search(ctx, query, topK)
	if err != nil {
		r.log.Warn("embedding search failed, using keyword scoring", zap.Error(err))
		return r.fallback.Search(ctx, query, topK)
	}
	return matches
}

func (r *EmbeddingRetriever) search(ctx context.Context, query string, topK int) ([]model.KnowledgeMatch, error) {
	vecs, err := r.entryVectors(ctx)
	if err != nil {
		return nil, fmt.Errorf("embed entries: %w", err)
	}
	qv, err := r.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(qv) != 1 {
		return nil, fmt.Errorf("embedder returned %d vectors for query", len(qv))
	}

	entries := r.fallback.Entries()
	var matches []model.KnowledgeMatch
	for i, v := range vecs {
		sim := CosineSimilarity(qv[0], v)
		if sim < r.floor {
			continue
		}
		matches = append(matches, model.KnowledgeMatch{Entry: entries[i], Score: int(math.Round(sim * 100))})
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

// CosineSimilarity returns 0 for mismatched or zero-length vectors.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
