package symbols

import (
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"
)

func init() {
	log.SetLevel(log.ErrorLevel)
}

func walk(t *testing.T, idx *Index, letters string) (Cursor, bool) {
	t.Helper()
	c := idx.Root()
	for _, r := range letters {
		var ok bool
		c, ok = c.Next(r)
		if !ok {
			return c, false
		}
	}
	return c, true
}

func TestBuild(t *testing.T) {
	idx := Build([]string{"AAPL", "aa", "NVDA", "BRK.B", "", "  ", "AAPL", "T"})

	if got, want := idx.Len(), 4; got != want {
		t.Fatalf("Len() = %d, want %d", got, want)
	}
	want := []string{"AAPL", "NVDA", "T", "aa"}
	if diff := cmp.Diff(want, idx.Symbols()); diff != "" {
		t.Errorf("Symbols() mismatch (-want +got):\n%s", diff)
	}
}

func TestCursor(t *testing.T) {
	idx := Build([]string{"AAPL", "AA", "NVDA"})

	tests := []struct {
		letters  string
		exists   bool
		terminal bool
		symbol   string
	}{
		{"a", true, false, ""},
		{"aa", true, true, "AA"},
		{"AAP", true, false, ""},
		{"aApL", true, true, "AAPL"},
		{"AAPLX", false, false, ""},
		{"NV", true, false, ""},
		{"X", false, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.letters, func(t *testing.T) {
			c, ok := walk(t, idx, tt.letters)
			if ok != tt.exists {
				t.Fatalf("path %q exists = %v, want %v", tt.letters, ok, tt.exists)
			}
			if !ok {
				return
			}
			if c.Terminal() != tt.terminal {
				t.Errorf("Terminal() = %v, want %v", c.Terminal(), tt.terminal)
			}
			if c.Symbol() != tt.symbol {
				t.Errorf("Symbol() = %q, want %q", c.Symbol(), tt.symbol)
			}
			if c.Depth() != len(tt.letters) {
				t.Errorf("Depth() = %d, want %d", c.Depth(), len(tt.letters))
			}
		})
	}
}

func TestCursor_IsAValue(t *testing.T) {
	idx := Build([]string{"AB", "AC"})
	a, _ := idx.Root().Next('a')
	b, ok := a.Next('b')
	if !ok {
		t.Fatal("expected AB path")
	}
	if a.Prefix() != "A" || b.Prefix() != "AB" {
		t.Errorf("prefixes = %q, %q", a.Prefix(), b.Prefix())
	}
	if _, ok := a.Next('c'); !ok {
		t.Error("advancing b must not affect a")
	}
}

func TestCursor_RejectsNonLetters(t *testing.T) {
	idx := Build([]string{"A"})
	if _, ok := idx.Root().Next('1'); ok {
		t.Error("digits must never advance the cursor")
	}
}

func TestEmptyIndex(t *testing.T) {
	idx := Build(nil)
	if idx.Len() != 0 {
		t.Errorf("Len() = %d, want 0", idx.Len())
	}
	if _, ok := idx.Root().Next('A'); ok {
		t.Error("empty index has no children")
	}
	if idx.Root().Terminal() {
		t.Error("root is never terminal")
	}
	if idx.Contains("A") {
		t.Error("empty index contains nothing")
	}
}

func TestContains(t *testing.T) {
	idx := Build([]string{"MSFT"})
	if !idx.Contains("msft") {
		t.Error("Contains is case-insensitive")
	}
	if idx.Contains("MSF") {
		t.Error("a prefix is not a symbol")
	}
}
