package knowledge

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"

	"SignalSage/internal/model"
)

// axisEmbedder maps texts onto fixed axes by keyword so similarities are exact.
type axisEmbedder struct {
	calls int
	err   error
}

func (e *axisEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		t = strings.ToLower(t)
		v := make([]float32, 3)
		if strings.Contains(t, "risk") {
			v[0] = 1
		}
		if strings.Contains(t, "trend") {
			v[1] = 1
		}
		if strings.Contains(t, "psychology") {
			v[2] = 1
		}
		out[i] = v
	}
	return out, nil
}

func testEntries() []model.KnowledgeEntry {
	return []model.KnowledgeEntry{
		{ID: "risk", Title: "Risk", Content: "risk sizing", Keywords: []string{"risk"}},
		{ID: "mixed", Title: "Trend risk", Content: "trend and risk", Keywords: []string{"trend"}},
		{ID: "mind", Title: "Psychology", Content: "psychology", Keywords: []string{"psychology"}},
	}
}

func TestEmbeddingRetriever_RanksBySimilarity(t *testing.T) {
	emb := &axisEmbedder{}
	r := NewEmbeddingRetriever(emb, NewKeywordRetriever(testEntries()), 0, zaptest.NewLogger(t))

	got := r.Search(context.Background(), "risk", 5)
	if len(got) != 2 {
		t.Fatalf("expected 2 matches above floor, got %d", len(got))
	}
	if got[0].Entry.ID != "risk" || got[0].Score != 100 {
		t.Errorf("expected risk with 100, got %s with %d", got[0].Entry.ID, got[0].Score)
	}
	if got[1].Entry.ID != "mixed" || got[1].Score != 71 {
		t.Errorf("expected mixed with 71, got %s with %d", got[1].Entry.ID, got[1].Score)
	}

	r.Search(context.Background(), "trend", 5)
	// one batch for entries, then one call per query
	if emb.calls != 3 {
		t.Errorf("expected entry vectors to be computed once, got %d embed calls", emb.calls)
	}
}

func TestEmbeddingRetriever_FloorExcludes(t *testing.T) {
	r := NewEmbeddingRetriever(&axisEmbedder{}, NewKeywordRetriever(testEntries()), 0.8, nil)
	got := r.Search(context.Background(), "risk", 5)
	if len(got) != 1 || got[0].Entry.ID != "risk" {
		t.Errorf("expected only exact match above 0.8, got %v", got)
	}
}

func TestEmbeddingRetriever_FallsBackToKeyword(t *testing.T) {
	kw := NewKeywordRetriever(testEntries())
	r := NewEmbeddingRetriever(&axisEmbedder{err: errors.New("status 401")}, kw, 0, zaptest.NewLogger(t))

	got := r.Search(context.Background(), "risk", 3)
	want := kw.Search(context.Background(), "risk", 3)
	if len(got) != len(want) || len(got) == 0 {
		t.Fatalf("expected keyword results, got %v", got)
	}
	for i := range got {
		if got[i].Entry.ID != want[i].Entry.ID || got[i].Score != want[i].Score {
			t.Errorf("result %d differs from keyword search", i)
		}
	}
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		a, b []float32
		want float64
	}{
		{[]float32{1, 0}, []float32{1, 0}, 1},
		{[]float32{1, 0}, []float32{0, 1}, 0},
		{[]float32{1, 1}, []float32{1, 0}, 1 / math.Sqrt2},
		{[]float32{1, 0}, []float32{1}, 0},
		{[]float32{0, 0}, []float32{1, 0}, 0},
	}
	for _, tt := range tests {
		if got := CosineSimilarity(tt.a, tt.b); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("CosineSimilarity(%v, %v) = %f, want %f", tt.a, tt.b, got, tt.want)
		}
	}
}
