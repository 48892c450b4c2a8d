// Package tag labels every character of the input with the role it plays in a
// final selection, for downstream highlighting.
package tag

import (
	"github.com/RoaringBitmap/roaring"
	"github.com/bastiangx/tickerspell/pkg/match"
	"github.com/bastiangx/tickerspell/pkg/tokenize"
)

// Role is the part a character plays in the selection.
type Role int

const (
	// Normal characters were not touched by any selected match.
	Normal Role = iota
	// Ticker characters spell a selected symbol.
	Ticker
	// InBetween characters sit strictly between the first and last letter of a
	// match without being part of it.
	InBetween
	// OutsideTicker characters belong to a consumed word but lie before the
	// first or after the last letter of its match.
	OutsideTicker
)

func (r Role) String() string {
	switch r {
	case Ticker:
		return "ticker"
	case InBetween:
		return "in-between"
	case OutsideTicker:
		return "outside-ticker"
	default:
		return "normal"
	}
}

// Token is one input character and its role.
type Token struct {
	Char string `json:"char"`
	Role Role   `json:"role"`
}

// Tag returns one token per rune. words must be the tokenization of runes that
// produced tickers.
func Tag(runes []rune, words []tokenize.Word, tickers []match.Candidate) []Token {
	tokens := make([]Token, len(runes))
	for i, r := range runes {
		tokens[i] = Token{Char: string(r)}
	}
	if len(tickers) == 0 {
		return tokens
	}

	matched := roaring.New()
	spans := roaring.New()
	consumed := roaring.New()

	for _, c := range tickers {
		if len(c.CharIndices) == 0 {
			continue
		}
		for _, i := range c.CharIndices {
			matched.Add(uint32(i))
		}
		spans.AddRange(uint64(c.MinIndex()), uint64(c.MaxIndex())+1)
		for k := range c.Words() {
			w := c.StartWord + k
			if w >= len(words) {
				break
			}
			consumed.AddRange(uint64(words[w].Start), uint64(words[w].End)+1)
		}
	}

	between := roaring.AndNot(spans, matched)
	outside := roaring.AndNot(consumed, spans)

	for i := range tokens {
		idx := uint32(i)
		switch {
		case matched.Contains(idx):
			tokens[i].Role = Ticker
		case between.Contains(idx):
			tokens[i].Role = InBetween
		case outside.Contains(idx):
			tokens[i].Role = OutsideTicker
		}
	}
	return tokens
}

// Count tallies tokens per role.
func Count(tokens []Token) map[Role]int {
	out := make(map[Role]int, 4)
	for _, t := range tokens {
		out[t.Role]++
	}
	return out
}
