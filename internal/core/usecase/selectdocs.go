package usecase

import (
	"log/slog"
	"sort"

	"github.com/kirillkom/docs-qa-agent/internal/core/domain"
	"github.com/kirillkom/docs-qa-agent/internal/core/ports"
)

// Selection is the selector's output: a fresh ordinal-numbered candidate
// slice plus diagnostics. BudgetExceeded is non-fatal; the pipeline proceeds
// with the best-effort set.
type Selection struct {
	Candidates     []domain.Candidate
	TotalTokens    int
	BudgetExceeded bool
}

// Selector ranks candidates and enforces the token and document-count
// ceilings, removing supplementary evidence before primary and preserving at
// least one document per tier present in the input.
type Selector struct {
	counter ports.TokenCounter
	budget  domain.SelectionBudget
	logger  *slog.Logger
}

func NewSelector(counter ports.TokenCounter, budget domain.SelectionBudget, logger *slog.Logger) *Selector {
	return &Selector{
		counter: counter,
		budget:  budget,
		logger:  logger,
	}
}

func (s *Selector) Select(in []domain.Candidate) Selection {
	out := make([]domain.Candidate, len(in))
	copy(out, in)

	// Stable keeps retrieval order for equal scores.
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	assignOrdinals(out)

	total := s.totalTokens(out)
	exceeded := false

	// Token ceiling first. The iteration guard bounds a pathological
	// reduction that never converges.
	maxIterations := len(out) + 1
	iterations := 0
	for s.budget.MaxTokens > 0 && total > s.budget.MaxTokens {
		if iterations >= maxIterations {
			exceeded = true
			s.logger.Warn("token_budget_iteration_guard",
				"max_tokens", s.budget.MaxTokens,
				"total_tokens", total,
				"documents", len(out),
			)
			break
		}
		trimmed, ok := removeLowestPriority(out)
		if !ok {
			exceeded = true
			s.logger.Warn("token_budget_unsatisfiable",
				"max_tokens", s.budget.MaxTokens,
				"total_tokens", total,
				"documents", len(out),
			)
			break
		}
		out = trimmed
		total = s.totalTokens(out)
		iterations++
	}

	// Count ceiling with the same removal priority, no token recount.
	for s.budget.MaxDocuments > 0 && len(out) > s.budget.MaxDocuments {
		trimmed, ok := removeLowestPriority(out)
		if !ok {
			exceeded = true
			s.logger.Warn("document_budget_unsatisfiable",
				"max_documents", s.budget.MaxDocuments,
				"documents", len(out),
			)
			break
		}
		out = trimmed
	}

	assignOrdinals(out)
	return Selection{
		Candidates:     out,
		TotalTokens:    total,
		BudgetExceeded: exceeded,
	}
}

// removeLowestPriority drops the lowest-scoring supplementary candidate when
// more than one supplementary remains, else the lowest-scoring primary when
// more than one primary remains. Returns false when neither tier can spare a
// document.
func removeLowestPriority(docs []domain.Candidate) ([]domain.Candidate, bool) {
	primary := 0
	supplementary := 0
	for _, doc := range docs {
		switch doc.Tier {
		case domain.TierPrimary:
			primary++
		case domain.TierSupplementary:
			supplementary++
		}
	}

	victim := domain.Tier("")
	switch {
	case supplementary > 1:
		victim = domain.TierSupplementary
	case primary > 1:
		victim = domain.TierPrimary
	default:
		return docs, false
	}

	// Sorted descending, so the last candidate of the tier scores lowest.
	for i := len(docs) - 1; i >= 0; i-- {
		if docs[i].Tier == victim {
			return append(docs[:i:i], docs[i+1:]...), true
		}
	}
	return docs, false
}

func assignOrdinals(docs []domain.Candidate) {
	for i := range docs {
		docs[i].Ordinal = i + 1
	}
}

func (s *Selector) totalTokens(docs []domain.Candidate) int {
	total := 0
	for _, doc := range docs {
		total += s.counter.Count(doc.Content)
	}
	return total
}
