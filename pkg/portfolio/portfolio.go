// Package portfolio is the entry point of the ticker spelling pipeline.
//
// A Portfolio is built from free text in four steps: the text is truncated
// and split into words, every window of one to three words is searched for
// the longest spellable ticker symbol, a dynamic program picks the
// non-overlapping matches with the best summed strategy score, and finally
// every character is tagged with its role for highlighting.
//
// The Engine holds the symbol index, which is built once and shared
// read-only, so one Engine serves any number of concurrent Build calls.
package portfolio

import (
	"context"
	"fmt"
	"time"

	"github.com/bastiangx/tickerspell/pkg/match"
	"github.com/bastiangx/tickerspell/pkg/segment"
	"github.com/bastiangx/tickerspell/pkg/strategy"
	"github.com/bastiangx/tickerspell/pkg/symbols"
	"github.com/bastiangx/tickerspell/pkg/tag"
	"github.com/bastiangx/tickerspell/pkg/tokenize"
	"github.com/bastiangx/tickerspell/pkg/universe"
	"github.com/charmbracelet/log"
)

// Portfolio is the result of one segmentation run for one strategy.
type Portfolio struct {
	Strategy strategy.Strategy `json:"strategy"`
	Tickers  []string          `json:"tickers"`
	Matches  []match.Candidate `json:"matches"`
	Score    float64           `json:"score"`
	Tokens   []tag.Token       `json:"tokens"`
}

// Option configures an Engine.
type Option func(*Engine)

// WithMaxInput sets the input ceiling in runes.
func WithMaxInput(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxInput = n
		}
	}
}

// WithMaxSpan sets the widest word window searched for a symbol.
func WithMaxSpan(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxSpan = n
		}
	}
}

// WithTiePolicy sets the skip-versus-take tie policy.
func WithTiePolicy(p segment.TiePolicy) Option {
	return func(e *Engine) {
		e.tiePolicy = p
	}
}

// Engine runs the pipeline against a fixed ticker universe.
type Engine struct {
	index     *symbols.Index
	lookup    strategy.Lookup
	size      int
	maxInput  int
	maxSpan   int
	tiePolicy segment.TiePolicy
}

// New builds the symbol index for tickers. The universe is expected to be
// pre-filtered to the tickers eligible for scoring.
func New(tickers []universe.Ticker, opts ...Option) *Engine {
	e := &Engine{
		index:     symbols.Build(universe.Symbols(tickers)),
		lookup:    universe.Lookup(tickers),
		size:      len(tickers),
		maxInput:  tokenize.MaxInputLength,
		maxSpan:   match.MaxSpan,
		tiePolicy: segment.DefaultTiePolicy,
	}
	for _, opt := range opts {
		opt(e)
	}
	log.Debugf("Engine ready: %d tickers, %d indexed symbols", e.size, e.index.Len())
	return e
}

// Build is the one-shot form: it builds a throwaway Engine for tickers.
func Build(text string, tickers []universe.Ticker, s strategy.Strategy) (*Portfolio, error) {
	return New(tickers).Build(context.Background(), text, s)
}

// Size returns the number of tickers the engine was built from.
func (e *Engine) Size() int {
	return e.size
}

// Index returns the engine's symbol index.
func (e *Engine) Index() *symbols.Index {
	return e.index
}

// prepared is the strategy-independent part of a run.
type prepared struct {
	runes      []rune
	words      []tokenize.Word
	candidates [][]match.Candidate
}

func (e *Engine) prepare(text string) prepared {
	runes := tokenize.Truncate(text, e.maxInput)
	words := tokenize.Tokenize(runes)
	return prepared{
		runes:      runes,
		words:      words,
		candidates: match.Candidates(words, e.index, e.maxSpan),
	}
}

// Build runs the full pipeline for one strategy.
func (e *Engine) Build(ctx context.Context, text string, s strategy.Strategy) (*Portfolio, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %v", strategy.ErrUnknownStrategy, s)
	}
	start := time.Now()
	p, err := e.segment(ctx, e.prepare(text), s)
	if err != nil {
		return nil, err
	}
	log.Debugf("Built %v portfolio in %v: %d tickers, score %.2f", s, time.Since(start), len(p.Tickers), p.Score)
	return p, nil
}

// BuildAll computes the candidates once and segments them for every strategy.
func (e *Engine) BuildAll(ctx context.Context, text string) (map[strategy.Strategy]*Portfolio, error) {
	prep := e.prepare(text)
	out := make(map[strategy.Strategy]*Portfolio, len(strategy.All))
	for _, s := range strategy.All {
		p, err := e.segment(ctx, prep, s)
		if err != nil {
			return nil, err
		}
		out[s] = p
	}
	return out, nil
}

func (e *Engine) segment(ctx context.Context, prep prepared, s strategy.Strategy) (*Portfolio, error) {
	scorer, err := strategy.NewScorer(s, e.lookup)
	if err != nil {
		return nil, err
	}

	sel, err := segment.SegmentWith(ctx, len(prep.words), prep.candidates, scorer.Score,
		segment.Options{TiePolicy: e.tiePolicy})
	if err != nil {
		return nil, err
	}

	return &Portfolio{
		Strategy: s,
		Tickers:  sel.Symbols(),
		Matches:  sel.Tickers,
		Score:    sel.Score,
		Tokens:   tag.Tag(prep.runes, prep.words, sel.Tickers),
	}, nil
}
