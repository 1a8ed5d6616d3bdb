package model

// Category groups knowledge entries by topic.
type Category string

const (
	CategoryBasics     Category = "basics"
	CategoryTechnical  Category = "technical"
	CategoryRisk       Category = "risk"
	CategoryStrategy   Category = "strategy"
	CategoryPsychology Category = "psychology"
	CategoryPlatform   Category = "platform"
)

// KnowledgeEntry is a short static document used as chat context.
type KnowledgeEntry struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	Category Category `json:"category"`
	Keywords []string `json:"keywords"`
}

// KnowledgeMatch is a scored entry for a single query.
type KnowledgeMatch struct {
	Entry KnowledgeEntry `json:"entry"`
	Score int            `json:"score"`
}
