package domain

// Tier splits retrieved evidence into two pools that are searched and
// budgeted separately. Primary sources are authored documentation;
// supplementary sources are discussion threads, issues, and the like.
type Tier string

const (
	TierPrimary       Tier = "primary"
	TierSupplementary Tier = "supplementary"
)

func (t Tier) Valid() bool {
	return t == TierPrimary || t == TierSupplementary
}

// Candidate is one retrieved evidence chunk. Ordinal is assigned during
// selection: 1-based, contiguous, and the number the model must cite.
type Candidate struct {
	SourceID string  `json:"source_id"`
	Content  string  `json:"content"`
	Title    string  `json:"title"`
	URL      string  `json:"url"`
	Tier     Tier    `json:"tier"`
	Score    float64 `json:"score"`
	Ordinal  int     `json:"ordinal"`
}

// SelectionBudget caps how much evidence reaches the prompt.
type SelectionBudget struct {
	MaxTokens    int
	MaxDocuments int
}

// SparseVector is a hashed term-weight vector; indices are sorted ascending
// and pair positionally with values.
type SparseVector struct {
	Indices []uint32  `json:"indices"`
	Values  []float32 `json:"values"`
}

// PromptTurn is one role-tagged message of a chat prompt.
type PromptTurn struct {
	Role    string `json:"role" yaml:"role"`
	Content string `json:"content" yaml:"content"`
}

type Citation struct {
	Ordinal int    `json:"ordinal"`
	URL     string `json:"url"`
	Title   string `json:"title,omitempty"`
}

// Answer is the final result of one query: normalized text plus the resolved
// sources for every ordinal the model cited.
type Answer struct {
	Text      string     `json:"text"`
	Model     string     `json:"model"`
	Citations []Citation `json:"citations"`
}

// Topic is one routable subject area; Key doubles as the vector index
// namespace for the topic's documents.
type Topic struct {
	Key         string
	Description string
}

// TopicCatalog is the ordered topic list. Order matters: the router
// numbers topics 1..N by position when asking the model to choose.
type TopicCatalog []Topic

func (c TopicCatalog) Keys() []string {
	keys := make([]string, len(c))
	for i, t := range c {
		keys[i] = t.Key
	}
	return keys
}

func (c TopicCatalog) Contains(key string) bool {
	for _, t := range c {
		if t.Key == key {
			return true
		}
	}
	return false
}
