package knowledge

import (
	"context"
	"sort"
	"strings"
	"unicode"

	"SignalSage/internal/model"
)

// DefaultTopK is used when callers pass a non-positive topK.
const DefaultTopK = 3

// Keyword scoring weights.
const (
	titleWeight   = 10
	keywordWeight = 5
	contentWeight = 2
	minTokenLen   = 3
)

// Retriever ranks knowledge entries against a free-text query.
type Retriever interface {
	Search(ctx context.Context, query string, topK int) []model.KnowledgeMatch
}

// KeywordRetriever scores entries by literal substring overlap.
type KeywordRetriever struct {
	entries []model.KnowledgeEntry
}

// NewKeywordRetriever creates a retriever over entries. The slice is copied.
func NewKeywordRetriever(entries []model.KnowledgeEntry) *KeywordRetriever {
	return &KeywordRetriever{entries: append([]model.KnowledgeEntry(nil), entries...)}
}

// Entries returns the knowledge base in insertion order.
func (r *KeywordRetriever) Entries() []model.KnowledgeEntry {
	return r.entries
}

// Search returns at most topK entries with a positive score, highest first.
// Ties keep insertion order.
func (r *KeywordRetriever) Search(_ context.Context, query string, topK int) []model.KnowledgeMatch {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	if topK <= 0 {
		topK = DefaultTopK
	}
	tokens := queryTokens(q)

	var matches []model.KnowledgeMatch
	for _, e := range r.entries {
		if score := scoreEntry(e, q, tokens); score > 0 {
			matches = append(matches, model.KnowledgeMatch{Entry: e, Score: score})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches
}

func scoreEntry(e model.KnowledgeEntry, q string, tokens []string) int {
	score := 0
	if strings.Contains(strings.ToLower(e.Title), q) {
		score += titleWeight
	}
	for _, kw := range e.Keywords {
		kw = strings.ToLower(kw)
		for _, tok := range tokens {
			if strings.Contains(kw, tok) || strings.Contains(tok, kw) {
				score += keywordWeight
				break
			}
		}
	}
	if strings.Contains(strings.ToLower(e.Content), q) {
		score += contentWeight
	}
	return score
}

// queryTokens splits on whitespace, strips surrounding punctuation and keeps
// tokens of at least minTokenLen runes.
func queryTokens(q string) []string {
	var tokens []string
	for _, f := range strings.Fields(q) {
		f = strings.TrimFunc(f, func(r rune) bool { return !unicode.IsLetter(r) && !unicode.IsDigit(r) })
		if len([]rune(f)) >= minTokenLen {
			tokens = append(tokens, f)
		}
	}
	return tokens
}
