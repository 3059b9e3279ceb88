package prompt

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kirillkom/docs-qa-agent/internal/core/domain"
)

func writeTemplate(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name+".yaml"), []byte(content), 0o644); err != nil {
		t.Fatalf("write template: %v", err)
	}
}

func TestLoadParsesRoleTurns(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, "docs_answer", `
- role: system
  content: Answer using only the provided documents.
- role: user
  content: placeholder
`)

	store := NewStore(dir)
	turns, err := store.Load("docs_answer")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(turns) != 2 || turns[0].Role != "system" || turns[1].Role != "user" {
		t.Fatalf("unexpected turns: %+v", turns)
	}
}

func TestLoadReturnsCopies(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, "docs_answer", `
- role: user
  content: placeholder
`)

	store := NewStore(dir)
	first, err := store.Load("docs_answer")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	first[0].Content = "mutated"

	second, err := store.Load("docs_answer")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if second[0].Content != "placeholder" {
		t.Fatalf("cached template was mutated: %+v", second)
	}
}

func TestLoadRejectsMissingUserTurn(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, "broken", `
- role: system
  content: no user turn here
`)

	store := NewStore(dir)
	_, err := store.Load("broken")
	if err == nil || !domain.IsKind(err, domain.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestLoadRejectsUnknownRole(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, "broken", `
- role: narrator
  content: once upon a time
- role: user
  content: q
`)

	store := NewStore(dir)
	if _, err := store.Load("broken"); err == nil {
		t.Fatalf("expected error for unknown role")
	}
}

func TestLoadMissingFile(t *testing.T) {
	store := NewStore(t.TempDir())
	_, err := store.Load("absent")
	if err == nil || !domain.IsKind(err, domain.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestLoadRejectsPathTraversal(t *testing.T) {
	store := NewStore(t.TempDir())
	if _, err := store.Load("../etc/passwd"); err == nil {
		t.Fatalf("expected error for path separator in name")
	}
}
