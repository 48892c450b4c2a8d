// Package segment chooses the best non-overlapping set of candidate matches
// for one scoring function. A symbol is selected at most once.
//
// The choice is a bottom-up dynamic program over word positions. dp[i] holds
// the best outcomes using only words i..n-1; it depends only on cells to its
// right, so the table is filled from n down to 0 and every suffix is solved
// exactly once. Each cell looks at "skip word i" plus at most MaxSpan
// precomputed candidates, which keeps the whole run linear in the word count.
//
// A cell keeps the Alternatives best selections with distinct symbol sets,
// not just the best one. Taking a candidate whose symbol already appears in
// the best suffix falls back to the next suffix alternative without it. The
// result is optimal whenever such conflicts resolve within the kept
// alternatives; a portfolio that needs a deeper fallback can come out below
// the true maximum.
package segment

import (
	"context"
	"sort"
	"strings"

	"github.com/bastiangx/tickerspell/pkg/match"
)

// TiePolicy decides between skipping and taking a match on an exact score tie.
type TiePolicy int

const (
	// PreferSkip keeps the first evaluated option; skip is evaluated first,
	// so ties leave the word unmatched.
	PreferSkip TiePolicy = iota
	// PreferTake replaces the incumbent with a taking option on a tie, showing
	// the user more matches for the same score.
	PreferTake
)

// DefaultTiePolicy is the policy used when Options leaves it unset.
const DefaultTiePolicy = PreferSkip

func (p TiePolicy) String() string {
	switch p {
	case PreferSkip:
		return "skip"
	case PreferTake:
		return "take"
	default:
		return "unknown"
	}
}

// ParseTiePolicy maps "skip" and "take" to their policies. Anything else
// yields DefaultTiePolicy and false.
func ParseTiePolicy(s string) (TiePolicy, bool) {
	switch s {
	case "skip":
		return PreferSkip, true
	case "take":
		return PreferTake, true
	default:
		return DefaultTiePolicy, false
	}
}

// Options tunes a segmentation run.
type Options struct {
	TiePolicy TiePolicy
}

// Selection is the best outcome from a word index onward: the summed score of
// the chosen candidates and the candidates themselves, left to right.
type Selection struct {
	Score   float64
	Tickers []match.Candidate
}

// Symbols returns the selected symbols in text order.
func (s Selection) Symbols() []string {
	out := make([]string, len(s.Tickers))
	for i, c := range s.Tickers {
		out[i] = c.Symbol
	}
	return out
}

// ScoreFunc scores a matched symbol. Scores are summed across a selection.
type ScoreFunc func(symbol string) float64

// Alternatives is how many distinct selections each dp cell keeps.
const Alternatives = 4

// option is one selection from a word index onward. Tickers are shared as a
// linked list so that building dp[i] from dp[next] never copies or mutates
// the suffix.
type option struct {
	score   float64
	head    *node
	symbols map[string]struct{}
	key     string // sorted symbol set
	taken   bool   // the option matches a candidate at its own index
}

// cell holds up to Alternatives options with distinct symbol sets, best first.
type cell []option

type node struct {
	cand match.Candidate
	next *node
}

// Segment runs the dynamic program over n words with the default options.
func Segment(ctx context.Context, n int, candidates [][]match.Candidate, score ScoreFunc) (Selection, error) {
	return SegmentWith(ctx, n, candidates, score, Options{TiePolicy: DefaultTiePolicy})
}

// SegmentWith runs the dynamic program with explicit options. The context is
// checked once per cell; a cancelled run returns the context's error.
func SegmentWith(ctx context.Context, n int, candidates [][]match.Candidate, score ScoreFunc, opts Options) (Selection, error) {
	dp, err := fill(ctx, n, candidates, score, opts)
	if err != nil {
		return Selection{}, err
	}
	return dp[0][0].selection(), nil
}

// Table returns the score of every dp cell, dp[0] through dp[n].
func Table(ctx context.Context, n int, candidates [][]match.Candidate, score ScoreFunc, opts Options) ([]float64, error) {
	dp, err := fill(ctx, n, candidates, score, opts)
	if err != nil {
		return nil, err
	}
	scores := make([]float64, len(dp))
	for i, c := range dp {
		scores[i] = c[0].score
	}
	return scores, nil
}

func fill(ctx context.Context, n int, candidates [][]match.Candidate, score ScoreFunc, opts Options) ([]cell, error) {
	if n < 0 {
		n = 0
	}
	dp := make([]cell, n+1)
	dp[n] = cell{{}}

	for i := n - 1; i >= 0; i-- {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		options := make([]option, 0, len(dp[i+1])*(1+match.MaxSpan))
		for _, o := range dp[i+1] {
			o.taken = false
			options = append(options, o)
		}
		if i < len(candidates) {
			for _, c := range candidates[i] {
				next := c.EndWord + 1
				if c.StartWord != i || next <= i || next > n {
					continue
				}
				v := score(c.Symbol)
				for _, suffix := range dp[next] {
					if _, dup := suffix.symbols[c.Symbol]; dup {
						continue
					}
					options = append(options, suffix.prepend(c, v+suffix.score))
				}
			}
		}
		dp[i] = rank(options, opts.TiePolicy)
	}
	return dp, nil
}

// rank orders options by score. On equal scores the evaluation order holds
// (skips before takes, shorter spans before longer ones) except that
// PreferTake moves takes ahead of skips. Options repeating an earlier
// symbol set are dropped.
func rank(options []option, policy TiePolicy) cell {
	sort.SliceStable(options, func(a, b int) bool {
		x, y := options[a], options[b]
		if x.score != y.score {
			return x.score > y.score
		}
		return policy == PreferTake && x.taken && !y.taken
	})

	out := make(cell, 0, Alternatives)
	seen := make(map[string]struct{}, Alternatives)
	for _, o := range options {
		if _, ok := seen[o.key]; ok {
			continue
		}
		seen[o.key] = struct{}{}
		out = append(out, o)
		if len(out) == Alternatives {
			break
		}
	}
	return out
}

func (o option) prepend(cand match.Candidate, total float64) option {
	symbols := make(map[string]struct{}, len(o.symbols)+1)
	keys := make([]string, 0, len(o.symbols)+1)
	for s := range o.symbols {
		symbols[s] = struct{}{}
		keys = append(keys, s)
	}
	symbols[cand.Symbol] = struct{}{}
	keys = append(keys, cand.Symbol)
	sort.Strings(keys)

	return option{
		score:   total,
		head:    &node{cand: cand, next: o.head},
		symbols: symbols,
		key:     strings.Join(keys, "\x00"),
		taken:   true,
	}
}

func (o option) selection() Selection {
	sel := Selection{Score: o.score, Tickers: []match.Candidate{}}
	for n := o.head; n != nil; n = n.next {
		sel.Tickers = append(sel.Tickers, n.cand)
	}
	return sel
}
