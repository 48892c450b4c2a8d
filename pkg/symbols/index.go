// Package symbols holds the ticker-symbol prefix tree used by the span matcher.
//
// The index is built once from the symbol universe and is read-only afterwards,
// so a single *Index can be shared by any number of concurrent callers.
package symbols

import (
	"sort"
	"strings"
	"unicode"

	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"
)

// Index is a prefix tree over upper-cased ticker symbols.
// Terminal keys carry the originating symbol as their item.
type Index struct {
	trie  *patricia.Trie
	count int
}

// Build inserts every symbol letter by letter, case-normalized to upper case.
// Symbols that are empty or contain anything other than letters can never be
// spelled from words and are skipped.
func Build(symbols []string) *Index {
	idx := &Index{trie: patricia.NewTrie()}

	for _, raw := range symbols {
		symbol := strings.TrimSpace(raw)
		key, ok := normalize(symbol)
		if !ok {
			log.Debugf("Skipping unspellable symbol %q", raw)
			continue
		}
		if idx.trie.Insert(patricia.Prefix(key), symbol) {
			idx.count++
		}
	}

	log.Debugf("Built symbol index with %d symbols", idx.count)
	return idx
}

func normalize(symbol string) (string, bool) {
	if symbol == "" {
		return "", false
	}
	var b strings.Builder
	for _, r := range symbol {
		if !unicode.IsLetter(r) {
			return "", false
		}
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String(), true
}

// Len returns the number of distinct symbols in the index.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return idx.count
}

// Root returns a cursor positioned at the empty prefix.
func (idx *Index) Root() Cursor {
	return Cursor{idx: idx}
}

// Contains reports whether symbol is a complete key of the index.
func (idx *Index) Contains(symbol string) bool {
	key, ok := normalize(strings.TrimSpace(symbol))
	if !ok || idx.Len() == 0 {
		return false
	}
	return idx.trie.Get(patricia.Prefix(key)) != nil
}

// Symbols lists the stored symbols in key order.
func (idx *Index) Symbols() []string {
	if idx.Len() == 0 {
		return nil
	}
	out := make([]string, 0, idx.count)
	idx.trie.Visit(func(_ patricia.Prefix, item patricia.Item) error {
		out = append(out, item.(string))
		return nil
	})
	sort.Strings(out)
	return out
}

// Cursor is a position in the index: the prefix spelled so far.
// Cursors are values; advancing one never changes another.
type Cursor struct {
	idx    *Index
	prefix string
}

// Next advances the cursor by one letter. It reports false when no symbol in
// the index continues the current prefix with that letter.
func (c Cursor) Next(r rune) (Cursor, bool) {
	if c.idx.Len() == 0 || !unicode.IsLetter(r) {
		return c, false
	}
	next := c.prefix + string(unicode.ToUpper(r))
	if !c.idx.trie.MatchSubtree(patricia.Prefix(next)) {
		return c, false
	}
	return Cursor{idx: c.idx, prefix: next}, true
}

// Depth is the number of letters consumed.
func (c Cursor) Depth() int {
	return len([]rune(c.prefix))
}

// Prefix returns the upper-cased letters consumed so far.
func (c Cursor) Prefix() string {
	return c.prefix
}

// Terminal reports whether the consumed letters spell a complete symbol.
func (c Cursor) Terminal() bool {
	return c.Symbol() != ""
}

// Symbol returns the stored symbol when the cursor is terminal, or "".
func (c Cursor) Symbol() string {
	if c.prefix == "" || c.idx.Len() == 0 {
		return ""
	}
	if item := c.idx.trie.Get(patricia.Prefix(c.prefix)); item != nil {
		return item.(string)
	}
	return ""
}
