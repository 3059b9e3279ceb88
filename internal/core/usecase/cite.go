package usecase

import (
	"log/slog"
	"regexp"
	"sort"
	"strconv"

	"github.com/kirillkom/docs-qa-agent/internal/core/domain"
)

var (
	// Covers the notations models produce for document references:
	// "Document 2", "(Document 2)", "[Document 2]", "Document [2]" and the
	// mixed-bracket mutations in between.
	citationPattern = regexp.MustCompile(`(?i)[\[\(]?Document\s*\[?(\d+)\]?\)?[\]\)]?`)
	ordinalPattern  = regexp.MustCompile(`\[(\d+)\]`)
)

// CitationResolver normalizes the model's free-text references to the
// canonical [n] form and resolves each distinct ordinal against the same
// candidate list the prompt was composed from.
type CitationResolver struct {
	logger *slog.Logger
}

func NewCitationResolver(logger *slog.Logger) *CitationResolver {
	return &CitationResolver{logger: logger}
}

// NormalizeCitations rewrites every citation-like substring to [n]. Running
// it twice yields the same text.
func NormalizeCitations(text string) string {
	return citationPattern.ReplaceAllString(text, "[$1]")
}

func (r *CitationResolver) Resolve(answerText, model string, docs []domain.Candidate) *domain.Answer {
	normalized := NormalizeCitations(answerText)

	matches := ordinalPattern.FindAllStringSubmatch(normalized, -1)
	if len(matches) == 0 {
		r.logger.Debug("no_supporting_citations")
		return &domain.Answer{
			Text:      normalized,
			Model:     model,
			Citations: []domain.Citation{},
		}
	}

	seen := make(map[int]struct{}, len(matches))
	ordinals := make([]int, 0, len(matches))
	for _, m := range matches {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		ordinals = append(ordinals, n)
	}
	sort.Ints(ordinals)

	citations := make([]domain.Citation, 0, len(ordinals))
	for _, n := range ordinals {
		if n < 1 || n > len(docs) {
			// In-text marker stays; only the citation entry is dropped.
			r.logger.Warn("citation_out_of_range", "ordinal", n, "documents", len(docs))
			continue
		}
		doc := docs[n-1]
		citations = append(citations, domain.Citation{
			Ordinal: doc.Ordinal,
			URL:     doc.URL,
			Title:   doc.Title,
		})
	}

	return &domain.Answer{
		Text:      normalized,
		Model:     model,
		Citations: citations,
	}
}
