// Package tokenize splits raw text into words, the maximal runs of letters,
// keeping their absolute rune offsets so later stages can map matches back
// onto the original characters.
package tokenize

import "unicode"

// MaxInputLength is the hard ceiling on processed input, in runes.
// Longer text is cut to this length before tokenizing.
const MaxInputLength = 3000

// Word is a maximal run of letters. Start and End are inclusive rune offsets.
type Word struct {
	Text  string
	Start int
	End   int
}

// Len returns the number of runes in the word.
func (w Word) Len() int {
	return w.End - w.Start + 1
}

// Truncate converts text to runes and keeps at most limit of them.
// A limit <= 0 means no limit.
func Truncate(text string, limit int) []rune {
	runes := []rune(text)
	if limit > 0 && len(runes) > limit {
		runes = runes[:limit]
	}
	return runes
}

// Tokenize scans runes left to right and returns every letter run as a Word.
// Digits, punctuation and whitespace separate words and never belong to one.
func Tokenize(runes []rune) []Word {
	var words []Word
	start := -1

	for i, r := range runes {
		if unicode.IsLetter(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			words = append(words, newWord(runes, start, i-1))
			start = -1
		}
	}
	if start >= 0 {
		words = append(words, newWord(runes, start, len(runes)-1))
	}

	return words
}

func newWord(runes []rune, start, end int) Word {
	return Word{
		Text:  string(runes[start : end+1]),
		Start: start,
		End:   end,
	}
}
