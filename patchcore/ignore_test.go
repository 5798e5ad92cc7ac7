package patchcore

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadIgnorePolicy_createsDefault(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".patchignore")

	policy, err := LoadIgnorePolicy(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected default ignore file to be written: %v", err)
	}
	if !policy.Match("package-lock.lock") {
		t.Fatal("expected default pattern *.lock to match")
	}
}

func TestLoadIgnorePolicy_parsesExisting(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".patchignore")
	content := "# a comment\n\nvendor/**\nsecrets.txt\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	policy, err := LoadIgnorePolicy(path)
	if err != nil {
		t.Fatal(err)
	}
	cases := map[string]bool{
		"vendor/pkg/a.go":    true,
		"vendor":             true,
		"secrets.txt":        true,
		"src/secrets.txt":    true,
		"src/main.go":        false,
	}
	for path, want := range cases {
		if got := policy.Match(path); got != want {
			t.Errorf("Match(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestIgnorePolicy_globPattern(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".patchignore")
	if err := os.WriteFile(path, []byte("*.min.js\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	policy, err := LoadIgnorePolicy(path)
	if err != nil {
		t.Fatal(err)
	}
	if !policy.Match("bundle.min.js") {
		t.Fatal("expected *.min.js to match bundle.min.js")
	}
	if policy.Match("bundle.js") {
		t.Fatal("did not expect *.min.js to match bundle.js")
	}
}
