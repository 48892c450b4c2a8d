// Package match finds ticker symbols spelled as letter subsequences of short
// word windows. A window is one to MaxSpan consecutive words; letters may be
// picked from anywhere in it as long as their order is kept.
package match

import (
	"slices"
	"unicode"

	"github.com/bastiangx/tickerspell/pkg/symbols"
	"github.com/bastiangx/tickerspell/pkg/tokenize"
)

// MaxSpan is the widest word window searched for a symbol.
const MaxSpan = 3

// Letter is one letter of a window together with its absolute rune offset
// in the original text.
type Letter struct {
	Rune   rune
	Offset int
}

// Candidate is a symbol spelled inside the words StartWord..EndWord.
// CharIndices holds one strictly increasing absolute offset per symbol letter.
type Candidate struct {
	Symbol      string `json:"symbol" msgpack:"s"`
	StartWord   int    `json:"start_word" msgpack:"sw"`
	EndWord     int    `json:"end_word" msgpack:"ew"`
	CharIndices []int  `json:"char_indices" msgpack:"ci"`
}

// MinIndex returns the first matched offset.
func (c Candidate) MinIndex() int {
	return c.CharIndices[0]
}

// MaxIndex returns the last matched offset.
func (c Candidate) MaxIndex() int {
	return c.CharIndices[len(c.CharIndices)-1]
}

// Words returns the number of words the candidate consumes.
func (c Candidate) Words() int {
	return c.EndWord - c.StartWord + 1
}

// Longest returns the longest symbol that can be spelled by picking letters
// in order from the window. Among equally long symbols the first one found
// wins; the search consumes before it skips, so earlier letters are favored.
// StartWord and EndWord of the result are left for the caller to fill.
func Longest(letters []Letter, idx *symbols.Index) (Candidate, bool) {
	if len(letters) == 0 || idx.Len() == 0 {
		return Candidate{}, false
	}

	s := &search{letters: letters, memo: make(map[state]completion)}
	best := s.from(0, idx.Root())
	if best.symbol == "" {
		return Candidate{}, false
	}

	indices := make([]int, len(best.picks))
	for i, p := range best.picks {
		indices[i] = letters[p].Offset
	}
	return Candidate{Symbol: best.symbol, CharIndices: indices}, true
}

type state struct {
	pos    int
	prefix string
}

type completion struct {
	symbol string
	length int
	picks  []int // positions in the window, one per letter of the symbol
}

// search memoizes the best completion per (position, prefix). The best
// completion from a state does not depend on how the state was reached, so a
// cached answer equals what re-exploring the state would return.
type search struct {
	letters []Letter
	memo    map[state]completion
}

// from returns the best completion of cursor using letters[pos:]. Picks are
// relative to the letters consumed after pos; the cursor's own prefix is
// accounted for by the caller.
func (s *search) from(pos int, cursor symbols.Cursor) completion {
	key := state{pos: pos, prefix: cursor.Prefix()}
	if cached, ok := s.memo[key]; ok {
		return cached
	}

	var best completion
	if symbol := cursor.Symbol(); symbol != "" {
		best = completion{symbol: symbol, length: cursor.Depth()}
	}

	// Only the first occurrence of each letter is worth consuming: a later
	// occurrence leaves a subset of the remaining letters, so it can never
	// spell something strictly longer.
	var tried []rune
	for j := pos; j < len(s.letters); j++ {
		r := unicode.ToUpper(s.letters[j].Rune)
		if slices.Contains(tried, r) {
			continue
		}
		tried = append(tried, r)

		next, ok := cursor.Next(r)
		if !ok {
			continue
		}
		sub := s.from(j+1, next)
		if sub.symbol == "" || sub.length <= best.length {
			continue
		}
		picks := make([]int, 0, len(sub.picks)+1)
		picks = append(picks, j)
		picks = append(picks, sub.picks...)
		best = completion{symbol: sub.symbol, length: sub.length, picks: picks}
	}

	s.memo[key] = best
	return best
}

// Candidates precomputes, for every start word, the longest match of each
// window of 1..maxSpan words. The outer slice is indexed by start word and
// each inner slice is ordered by span. maxSpan <= 0 means MaxSpan.
func Candidates(words []tokenize.Word, idx *symbols.Index, maxSpan int) [][]Candidate {
	if maxSpan <= 0 {
		maxSpan = MaxSpan
	}

	out := make([][]Candidate, len(words))
	if idx.Len() == 0 {
		return out
	}

	var letters []Letter
	for start := range words {
		letters = letters[:0]
		for span := 1; span <= maxSpan && start+span <= len(words); span++ {
			w := words[start+span-1]
			for k, r := range []rune(w.Text) {
				letters = append(letters, Letter{Rune: r, Offset: w.Start + k})
			}

			c, ok := Longest(letters, idx)
			if !ok {
				continue
			}
			c.StartWord = start
			c.EndWord = start + span - 1
			out[start] = append(out[start], c)
		}
	}
	return out
}
