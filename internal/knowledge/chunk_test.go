package knowledge

import (
	"strings"
	"testing"
)

func TestChunkID_Deterministic(t *testing.T) {
	a := ChunkID("acme-widgets", "main.go", 0)
	if a != ChunkID("acme-widgets", "main.go", 0) {
		t.Fatal("same input produced different ids")
	}
	others := []string{
		ChunkID("acme-widgets", "main.go", 1),
		ChunkID("acme-widgets", "util.go", 0),
		ChunkID("acme-gadgets", "main.go", 0),
	}
	for _, o := range others {
		if o == a {
			t.Errorf("id collision: %s", o)
		}
	}
}

func TestSplit(t *testing.T) {
	t.Run("empty document", func(t *testing.T) {
		if got := Split("k", Document{Path: "a.go", Content: "  \n\t"}, 500); len(got) != 0 {
			t.Errorf("Split() = %d chunks, want 0", len(got))
		}
	})

	t.Run("small document is one chunk", func(t *testing.T) {
		got := Split("k", Document{Path: "a.go", Content: "package a\n"}, 500)
		if len(got) != 1 {
			t.Fatalf("Split() = %d chunks, want 1", len(got))
		}
		if got[0].Content != "package a" || got[0].Index != 0 || got[0].RepoKey != "k" {
			t.Errorf("chunk = %+v", got[0])
		}
	})

	t.Run("large document covers everything within size", func(t *testing.T) {
		var b strings.Builder
		for i := 0; i < 200; i++ {
			b.WriteString("func f() { return }  // line\n")
		}
		content := strings.TrimSpace(b.String())
		size := 500
		chunks := Split("k", Document{Path: "a.go", Content: content}, size)
		if len(chunks) < 2 {
			t.Fatalf("expected several chunks, got %d", len(chunks))
		}
		for i, c := range chunks {
			if len(c.Content) > size {
				t.Errorf("chunk %d has %d bytes, limit %d", i, len(c.Content), size)
			}
			if c.Index != i {
				t.Errorf("chunk %d has index %d", i, c.Index)
			}
			if c.ID != ChunkID("k", "a.go", i) {
				t.Errorf("chunk %d has unexpected id", i)
			}
		}
		if !strings.HasPrefix(content, chunks[0].Content) {
			t.Error("first chunk is not a prefix")
		}
		if !strings.HasSuffix(content, chunks[len(chunks)-1].Content) {
			t.Error("last chunk is not a suffix")
		}
	})

	t.Run("multibyte runes are not split", func(t *testing.T) {
		content := strings.Repeat("héllo wörld ", 300)
		for _, c := range Split("k", Document{Path: "a.md", Content: content}, 301) {
			if !strings.Contains(content, c.Content) {
				t.Fatal("chunk is not a substring")
			}
			for _, r := range c.Content {
				if r == '�' {
					t.Fatal("chunk contains a broken rune")
				}
			}
		}
	})
}
