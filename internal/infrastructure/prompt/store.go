// Package prompt loads chat prompt templates from YAML files. A template is
// an ordered list of role turns; the single user turn is the slot the
// composer substitutes the rendered query into.
package prompt

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/kirillkom/docs-qa-agent/internal/core/domain"
)

type Store struct {
	dir string

	mu    sync.RWMutex
	cache map[string][]domain.PromptTurn
}

func NewStore(dir string) *Store {
	return &Store{
		dir:   dir,
		cache: make(map[string][]domain.PromptTurn),
	}
}

// Load reads <dir>/<name>.yaml, validates it, and caches the parsed turns.
// Callers receive a copy; the cached template is never handed out directly.
func (s *Store) Load(name string) ([]domain.PromptTurn, error) {
	s.mu.RLock()
	cached, ok := s.cache[name]
	s.mu.RUnlock()
	if ok {
		return copyTurns(cached), nil
	}

	if strings.ContainsAny(name, `/\`) {
		return nil, domain.WrapError(domain.ErrConfiguration, "load template",
			fmt.Errorf("template name %q must not contain path separators", name))
	}

	raw, err := os.ReadFile(filepath.Join(s.dir, name+".yaml"))
	if err != nil {
		return nil, domain.WrapError(domain.ErrConfiguration, "load template", err)
	}

	var turns []domain.PromptTurn
	if err := yaml.Unmarshal(raw, &turns); err != nil {
		return nil, domain.WrapError(domain.ErrConfiguration, "load template",
			fmt.Errorf("parse %s.yaml: %w", name, err))
	}
	if err := validateTurns(name, turns); err != nil {
		return nil, domain.WrapError(domain.ErrConfiguration, "load template", err)
	}

	s.mu.Lock()
	s.cache[name] = turns
	s.mu.Unlock()
	return copyTurns(turns), nil
}

func validateTurns(name string, turns []domain.PromptTurn) error {
	if len(turns) == 0 {
		return fmt.Errorf("template %s has no turns", name)
	}
	userTurns := 0
	for i, turn := range turns {
		switch turn.Role {
		case "system", "assistant":
		case "user":
			userTurns++
		default:
			return fmt.Errorf("template %s turn %d has unknown role %q", name, i, turn.Role)
		}
		if strings.TrimSpace(turn.Content) == "" {
			return fmt.Errorf("template %s turn %d has empty content", name, i)
		}
	}
	if userTurns != 1 {
		return fmt.Errorf("template %s must have exactly one user turn, found %d", name, userTurns)
	}
	return nil
}

func copyTurns(turns []domain.PromptTurn) []domain.PromptTurn {
	out := make([]domain.PromptTurn, len(turns))
	copy(out, turns)
	return out
}
