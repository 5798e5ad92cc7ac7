package patchcore

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestEngine(t *testing.T, dir string) *Engine {
	t.Helper()
	e, err := Open(context.Background(), dir, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(e.Close)
	return e
}

func TestAnalyze_uniqueExactMatch(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.txt"), []byte("hello world\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	e := newTestEngine(t, dir)

	blocks := []Block{{Filename: "a.txt", SearchBlock: "hello", ReplaceBlock: "goodbye"}}
	verdicts := e.Analyze(blocks)

	v := verdicts[0]
	if v.Status != StatusSuccess {
		t.Fatalf("got status %v, want success: %+v", v.Status, v)
	}
	if v.LineNumber != 1 || v.SimilarityScore != 100 {
		t.Fatalf("unexpected verdict: %+v", v)
	}
	if blocks[0].ValidMatch != "hello" {
		t.Fatalf("expected ValidMatch to be populated, got %q", blocks[0].ValidMatch)
	}
}

func TestAnalyze_whitespaceDriftResolvesViaRegexTier(t *testing.T) {
	dir := t.TempDir()
	content := "def  f ( x ):\n    return x+1\n"
	if err := os.WriteFile(filepath.Join(dir, "f.py"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	e := newTestEngine(t, dir)

	blocks := []Block{{Filename: "f.py", SearchBlock: "def f(x):\n    return x+1", ReplaceBlock: "def f(x):\n    return x+2"}}
	verdicts := e.Analyze(blocks)

	v := verdicts[0]
	if v.Status != StatusWarning {
		t.Fatalf("got status %v, want warning: %+v", v.Status, v)
	}
	if v.SimilarityScore != 95 {
		t.Fatalf("got score %v, want 95", v.SimilarityScore)
	}
}

func TestAnalyze_ambiguousExactMatch(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.txt"), []byte("x=1\nx=1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	e := newTestEngine(t, dir)

	blocks := []Block{{Filename: "a.txt", SearchBlock: "x=1", ReplaceBlock: "x=2"}}
	verdicts := e.Analyze(blocks)

	v := verdicts[0]
	if v.Status != StatusError {
		t.Fatalf("got status %v, want error: %+v", v.Status, v)
	}
	if v.Message != "Ambiguous! Found 2 exact matches" {
		t.Fatalf("got message %q", v.Message)
	}
	if blocks[0].ValidMatch != "" {
		t.Fatalf("expected ValidMatch to stay empty on ambiguity")
	}
}

func TestAnalyze_ambiguousRegexMatchAnchorsRealLine(t *testing.T) {
	dir := t.TempDir()
	content := "a\nb\ndef  f ( x ):\n    return x+1\ndef  f ( x ):\n    return x+1\n"
	if err := os.WriteFile(filepath.Join(dir, "f.py"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	e := newTestEngine(t, dir)

	blocks := []Block{{Filename: "f.py", SearchBlock: "def f(x):\n    return x+1", ReplaceBlock: "def f(x):\n    return x+2"}}
	verdicts := e.Analyze(blocks)

	v := verdicts[0]
	if v.Message != "Found 2 similar blocks" {
		t.Fatalf("got message %q", v.Message)
	}
	marked := ""
	for _, line := range strings.Split(v.ErrorContext, "\n") {
		if strings.HasPrefix(line, ">>>") {
			marked = line
		}
	}
	if !strings.Contains(marked, "3 | def  f ( x ):") {
		t.Fatalf("expected the marked line to be the first real occurrence (line 3), got marked line %q in:\n%s", marked, v.ErrorContext)
	}
}

func TestAnalyze_fuzzyThreshold(t *testing.T) {
	dir := t.TempDir()
	content := "def compute_total(rows):\n    return sum(rows)\n"
	if err := os.WriteFile(filepath.Join(dir, "f.py"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	e := newTestEngine(t, dir)

	blocks := []Block{{
		Filename:     "f.py",
		SearchBlock:  "def computeTotal(rows):\n    return sum(r for r in rows)",
		ReplaceBlock: "def computeTotal(rows):\n    return sum(rows) * 2",
	}}
	verdicts := e.Analyze(blocks)
	v := verdicts[0]

	if v.SimilarityScore >= fuzzyThreshold && v.Status != StatusWarning {
		t.Fatalf("expected warning when similarity >= threshold, got %+v", v)
	}
	if v.SimilarityScore < fuzzyThreshold && v.Status != StatusError {
		t.Fatalf("expected error when similarity < threshold, got %+v", v)
	}
}

func TestAnalyze_creationMissingParentDir(t *testing.T) {
	dir := t.TempDir()
	e := newTestEngine(t, dir)

	blocks := []Block{{Filename: "new/mod.txt", SearchBlock: "", ReplaceBlock: "hi\n"}}
	verdicts := e.Analyze(blocks)
	v := verdicts[0]

	if v.Status != StatusWarning {
		t.Fatalf("got status %v, want warning: %+v", v.Status, v)
	}
}

func TestAnalyze_ignoredPath(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".patchignore"), []byte("secrets.env\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "secrets.env"), []byte("KEY=1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	e := newTestEngine(t, dir)

	blocks := []Block{{Filename: "secrets.env", SearchBlock: "KEY=1", ReplaceBlock: "KEY=2"}}
	verdicts := e.Analyze(blocks)
	if verdicts[0].Status != StatusError {
		t.Fatalf("expected ignored path to error, got %+v", verdicts[0])
	}
}

func TestAnalyze_deleteWhenReplaceBlank(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.txt"), []byte("bye\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	e := newTestEngine(t, dir)

	blocks := []Block{{Filename: "a.txt", SearchBlock: "", ReplaceBlock: ""}}
	verdicts := e.Analyze(blocks)
	if verdicts[0].Status != StatusWarning {
		t.Fatalf("expected deletion warning, got %+v", verdicts[0])
	}
}

func TestAnalyze_emptySearchExistingFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.txt"), []byte("bye\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	e := newTestEngine(t, dir)

	blocks := []Block{{Filename: "a.txt", SearchBlock: "", ReplaceBlock: "hi\n"}}
	verdicts := e.Analyze(blocks)
	if verdicts[0].Status != StatusError {
		t.Fatalf("expected error for blank search on existing file, got %+v", verdicts[0])
	}
}

func TestAnalyze_missingFileWithNonblankSearch(t *testing.T) {
	dir := t.TempDir()
	e := newTestEngine(t, dir)

	blocks := []Block{{Filename: "nope.txt", SearchBlock: "x", ReplaceBlock: "y"}}
	verdicts := e.Analyze(blocks)
	if verdicts[0].Status != StatusError {
		t.Fatalf("expected error, got %+v", verdicts[0])
	}
}
