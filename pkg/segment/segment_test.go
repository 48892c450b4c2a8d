package segment

import (
	"context"
	"errors"
	"testing"

	"github.com/bastiangx/tickerspell/pkg/match"
	"github.com/bastiangx/tickerspell/pkg/symbols"
	"github.com/bastiangx/tickerspell/pkg/tokenize"
	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"
)

func init() {
	log.SetLevel(log.ErrorLevel)
}

func cand(symbol string, start, end int) match.Candidate {
	return match.Candidate{Symbol: symbol, StartWord: start, EndWord: end, CharIndices: []int{start}}
}

func scores(m map[string]float64) ScoreFunc {
	return func(s string) float64 { return m[s] }
}

func TestSegment_Empty(t *testing.T) {
	sel, err := Segment(context.Background(), 0, nil, scores(nil))
	if err != nil {
		t.Fatal(err)
	}
	if sel.Score != 0 || len(sel.Tickers) != 0 {
		t.Errorf("Segment() = %+v, want empty", sel)
	}
	if sel.Tickers == nil {
		t.Error("Tickers must be a non-nil empty slice")
	}
}

func TestSegment_PicksMaxSum(t *testing.T) {
	// words: 0 1 2 3
	// A covers 0..1 (5), B covers 1..2 (4), C covers 2..3 (4), D covers 3 (1)
	cands := [][]match.Candidate{
		{cand("A", 0, 1)},
		{cand("B", 1, 2)},
		{cand("C", 2, 3)},
		{cand("D", 3, 3)},
	}
	sc := scores(map[string]float64{"A": 5, "B": 4, "C": 4, "D": 1})

	sel, err := Segment(context.Background(), 4, cands, sc)
	if err != nil {
		t.Fatal(err)
	}
	if sel.Score != 9 {
		t.Errorf("Score = %v, want 9", sel.Score)
	}
	if diff := cmp.Diff([]string{"A", "C"}, sel.Symbols()); diff != "" {
		t.Errorf("Symbols mismatch (-want +got):\n%s", diff)
	}
}

func TestSegment_NonOverlapping(t *testing.T) {
	cands := [][]match.Candidate{
		{cand("A", 0, 0), cand("AB", 0, 1), cand("ABC", 0, 2)},
		{cand("B", 1, 1), cand("BC", 1, 2)},
		{cand("C", 2, 2)},
	}
	sc := scores(map[string]float64{"A": 1, "AB": 3, "ABC": 2, "B": 1, "BC": 1, "C": 1.5})

	sel, err := Segment(context.Background(), 3, cands, sc)
	if err != nil {
		t.Fatal(err)
	}
	if sel.Score != 4.5 {
		t.Errorf("Score = %v, want 4.5", sel.Score)
	}
	for i := 1; i < len(sel.Tickers); i++ {
		if sel.Tickers[i].StartWord <= sel.Tickers[i-1].EndWord {
			t.Errorf("overlap between %+v and %+v", sel.Tickers[i-1], sel.Tickers[i])
		}
	}
}

func TestSegment_TiePolicy(t *testing.T) {
	cands := [][]match.Candidate{{cand("ZERO", 0, 0)}}
	sc := scores(map[string]float64{})

	skip, err := SegmentWith(context.Background(), 1, cands, sc, Options{TiePolicy: PreferSkip})
	if err != nil {
		t.Fatal(err)
	}
	if len(skip.Tickers) != 0 {
		t.Errorf("PreferSkip selected %v on a tie", skip.Symbols())
	}

	take, err := SegmentWith(context.Background(), 1, cands, sc, Options{TiePolicy: PreferTake})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"ZERO"}, take.Symbols()); diff != "" {
		t.Errorf("PreferTake mismatch (-want +got):\n%s", diff)
	}

	if DefaultTiePolicy != PreferSkip {
		t.Errorf("DefaultTiePolicy = %v, want skip", DefaultTiePolicy)
	}
}

func TestSegment_NoDuplicateSymbols(t *testing.T) {
	cands := [][]match.Candidate{
		{cand("KO", 0, 0)},
		{cand("X", 1, 1)},
		{cand("KO", 2, 2)},
	}
	sc := scores(map[string]float64{"KO": 10, "X": 1})

	sel, err := Segment(context.Background(), 3, cands, sc)
	if err != nil {
		t.Fatal(err)
	}
	seen := map[string]bool{}
	for _, s := range sel.Symbols() {
		if seen[s] {
			t.Errorf("symbol %s selected twice: %v", s, sel.Symbols())
		}
		seen[s] = true
	}
	if sel.Score != 11 {
		t.Errorf("Score = %v, want 11", sel.Score)
	}
}

func TestSegment_RepeatedSymbolFallsBack(t *testing.T) {
	// X at 0, X at 1 or Y over 1..2: the best suffix from word 1 is X alone,
	// but X at 0 joined with Y beats it.
	cands := [][]match.Candidate{
		{cand("X", 0, 0)},
		{cand("X", 1, 1), cand("Y", 1, 2)},
		nil,
	}
	sc := scores(map[string]float64{"X": 10, "Y": 9.5})

	for _, policy := range []TiePolicy{PreferSkip, PreferTake} {
		sel, err := SegmentWith(context.Background(), 3, cands, sc, Options{TiePolicy: policy})
		if err != nil {
			t.Fatal(err)
		}
		if sel.Score != 19.5 {
			t.Errorf("policy %v: Score = %v, want 19.5", policy, sel.Score)
		}
		want := []match.Candidate{cand("X", 0, 0), cand("Y", 1, 2)}
		if diff := cmp.Diff(want, sel.Tickers); diff != "" {
			t.Errorf("policy %v: tickers mismatch (-want +got):\n%s", policy, diff)
		}
	}
}

func TestSegment_PreferTakeKeepsNarrowestSpan(t *testing.T) {
	// The same symbol spelled from one, two and three words.
	cands := [][]match.Candidate{
		{cand("AAPL", 0, 0), cand("AAPL", 0, 1), cand("AAPL", 0, 2)},
		nil,
		nil,
	}
	for _, sc := range []ScoreFunc{scores(map[string]float64{"AAPL": 12}), scores(nil)} {
		sel, err := SegmentWith(context.Background(), 3, cands, sc, Options{TiePolicy: PreferTake})
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff([]match.Candidate{cand("AAPL", 0, 0)}, sel.Tickers); diff != "" {
			t.Errorf("tickers mismatch (-want +got):\n%s", diff)
		}
	}
}

func TestTable_MonotonicSuffix(t *testing.T) {
	idx := symbols.Build([]string{"A", "AA", "AAPL", "T", "GE", "F", "IBM", "TSLA", "NVDA"})
	text := "The Great Apple tree is a fine treat, but Tesla and Nvidia are not apples at all"
	words := tokenize.Tokenize([]rune(text))
	cands := match.Candidates(words, idx, match.MaxSpan)
	sc := func(s string) float64 { return float64(len(s)) }

	for _, policy := range []TiePolicy{PreferSkip, PreferTake} {
		table, err := Table(context.Background(), len(words), cands, sc, Options{TiePolicy: policy})
		if err != nil {
			t.Fatal(err)
		}
		if len(table) != len(words)+1 {
			t.Fatalf("table has %d cells, want %d", len(table), len(words)+1)
		}
		if table[len(words)] != 0 {
			t.Errorf("dp[n] = %v, want 0", table[len(words)])
		}
		for i := 0; i < len(words); i++ {
			if table[i] < table[i+1] {
				t.Errorf("policy %v: dp[%d]=%v < dp[%d]=%v", policy, i, table[i], i+1, table[i+1])
			}
		}
	}
}

func TestSegment_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Segment(ctx, 2, [][]match.Candidate{nil, nil}, scores(nil))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Segment() error = %v, want context.Canceled", err)
	}
}

func TestSegment_IgnoresMalformedCandidates(t *testing.T) {
	cands := [][]match.Candidate{
		{cand("PAST", 0, 5), cand("WRONG", 1, 1)},
		nil,
	}
	sel, err := Segment(context.Background(), 2, cands, scores(map[string]float64{"PAST": 9, "WRONG": 9}))
	if err != nil {
		t.Fatal(err)
	}
	if len(sel.Tickers) != 0 {
		t.Errorf("malformed candidates selected: %v", sel.Symbols())
	}
}

func TestParseTiePolicy(t *testing.T) {
	if p, ok := ParseTiePolicy("take"); !ok || p != PreferTake {
		t.Errorf("ParseTiePolicy(take) = %v, %v", p, ok)
	}
	if p, ok := ParseTiePolicy("skip"); !ok || p != PreferSkip {
		t.Errorf("ParseTiePolicy(skip) = %v, %v", p, ok)
	}
	if p, ok := ParseTiePolicy("coinflip"); ok || p != DefaultTiePolicy {
		t.Errorf("ParseTiePolicy(coinflip) = %v, %v", p, ok)
	}
}
