package patchcore

import (
	"strings"
	"testing"
)

func TestParse_singleBlock(t *testing.T) {
	text := "FILE: a.txt\n<<<<< SEARCH\nhello\n=====\ngoodbye\n>>>>>\n"
	blocks := Parse(text)
	if len(blocks) != 1 {
		t.Fatalf("got %d blocks, want 1", len(blocks))
	}
	b := blocks[0]
	if b.Filename != "a.txt" || b.SearchBlock != "hello" || b.ReplaceBlock != "goodbye" {
		t.Fatalf("unexpected block: %+v", b)
	}
	if !b.Enabled {
		t.Fatal("expected a freshly parsed block to be enabled")
	}
}

func TestParse_backToBackBlocks(t *testing.T) {
	text := "" +
		"FILE: a.txt\n<<<<< SEARCH\none\n=====\nONE\n>>>>>\n" +
		"FILE: b.txt\n<<<<< SEARCH\ntwo\n=====\nTWO\n>>>>>\n"
	blocks := Parse(text)
	if len(blocks) != 2 {
		t.Fatalf("got %d blocks, want 2", len(blocks))
	}
	if blocks[0].Filename != "a.txt" || blocks[1].Filename != "b.txt" {
		t.Fatalf("unexpected order: %+v", blocks)
	}
}

func TestParse_emptySearchAndReplace(t *testing.T) {
	text := "FILE: new/mod.txt\n<<<<< SEARCH\n=====\nhi\n>>>>>\n"
	blocks := Parse(text)
	if len(blocks) != 1 {
		t.Fatalf("got %d blocks, want 1", len(blocks))
	}
	if blocks[0].SearchBlock != "" || blocks[0].ReplaceBlock != "hi" {
		t.Fatalf("unexpected block: %+v", blocks[0])
	}
}

func TestParse_ignoresTextOutsideBlocks(t *testing.T) {
	text := "Here's the patch:\n\nFILE: a.txt\n<<<<< SEARCH\nx\n=====\ny\n>>>>>\n\nLet me know if you need anything else."
	blocks := Parse(text)
	if len(blocks) != 1 {
		t.Fatalf("got %d blocks, want 1", len(blocks))
	}
}

func TestParse_rejectsAbsolutePath(t *testing.T) {
	text := "FILE: /etc/passwd\n<<<<< SEARCH\nroot\n=====\nx\n>>>>>\n"
	blocks := Parse(text)
	if len(blocks) != 0 {
		t.Fatalf("expected absolute-path block to be dropped, got %+v", blocks)
	}
}

func TestParse_noMatch(t *testing.T) {
	blocks := Parse("just some free text with no blocks at all")
	if len(blocks) != 0 {
		t.Fatalf("got %d blocks, want 0", len(blocks))
	}
}

func TestRender_roundTrip(t *testing.T) {
	b := Block{Filename: "a.txt", SearchBlock: "hello", ReplaceBlock: "goodbye"}
	rendered := Render(b)
	parsed := Parse(rendered)
	if len(parsed) != 1 {
		t.Fatalf("got %d blocks after round-trip, want 1", len(parsed))
	}
	if parsed[0].Filename != b.Filename || parsed[0].SearchBlock != b.SearchBlock || parsed[0].ReplaceBlock != b.ReplaceBlock {
		t.Fatalf("round-trip mismatch: %+v vs %+v", parsed[0], b)
	}
}

// FuzzParse exercises parse totality: Parse must never panic, and every
// block it returns must have a non-empty, relative filename.
func FuzzParse(f *testing.F) {
	seeds := []string{
		"FILE: a.txt\n<<<<< SEARCH\nhello\n=====\ngoodbye\n>>>>>\n",
		"FILE: /etc/passwd\n<<<<< SEARCH\nroot\n=====\nx\n>>>>>\n",
		"FILE: \n<<<<< SEARCH\n=====\n>>>>>\n",
		"FILE: a.txt\n<<<<< SEARCH\n=====\nhi\n>>>>>\n",
		"no blocks here at all",
		"FILE: a.txt\n<<<<< SEARCH\none\n=====\nONE\n>>>>>\nFILE: b.txt\n<<<<< SEARCH\ntwo\n=====\nTWO\n>>>>>\n",
		"FILE: a.txt\n<<<<< SEARCH\n>>>>>\n=====\n>>>>>\n",
	}
	for _, s := range seeds {
		f.Add(s)
	}

	f.Fuzz(func(t *testing.T, text string) {
		blocks := Parse(text)
		for _, b := range blocks {
			if b.Filename == "" {
				t.Fatalf("Parse returned a block with an empty filename for input %q", text)
			}
			if strings.HasPrefix(b.Filename, "/") {
				t.Fatalf("Parse returned a block with an absolute filename %q for input %q", b.Filename, text)
			}
		}
	})
}

// FuzzRenderParseRoundTrip checks that any block Render produces is
// recovered unchanged by Parse, for any filename/search/replace triple
// that doesn't itself violate Parse's own acceptance rules.
func FuzzRenderParseRoundTrip(f *testing.F) {
	f.Add("a.txt", "hello", "goodbye")
	f.Add("new/mod.txt", "", "hi")
	f.Add("a.txt", "x\ny\nz", "")

	f.Fuzz(func(t *testing.T, filename, search, replace string) {
		filename = strings.TrimSpace(filename)
		if filename == "" || strings.HasPrefix(filename, "/") {
			return
		}
		if strings.Contains(search, "\n=====\n") || strings.Contains(search, "\n>>>>>") {
			return
		}
		if strings.Contains(replace, "\n>>>>>") {
			return
		}

		b := Block{Filename: filename, SearchBlock: search, ReplaceBlock: replace}
		parsed := Parse(Render(b))
		if len(parsed) != 1 {
			t.Fatalf("got %d blocks after round-trip, want 1 (block: %+v)", len(parsed), b)
		}
		if parsed[0].Filename != b.Filename || parsed[0].SearchBlock != b.SearchBlock || parsed[0].ReplaceBlock != b.ReplaceBlock {
			t.Fatalf("round-trip mismatch: %+v vs %+v", parsed[0], b)
		}
	})
}
