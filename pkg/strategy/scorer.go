package strategy

// Lookup returns the metadata for a symbol, if any.
type Lookup func(symbol string) (Metadata, bool)

// Scorer memoizes one strategy's scores for the duration of a single call.
// It is not safe for concurrent use; build one per call.
type Scorer struct {
	strategy Strategy
	lookup   Lookup
	cache    map[string]float64
	misses   int
}

// NewScorer returns a Scorer for s reading metadata through lookup.
// A nil lookup scores every symbol 0.
func NewScorer(s Strategy, lookup Lookup) (*Scorer, error) {
	if !s.Valid() {
		return nil, ErrUnknownStrategy
	}
	return &Scorer{
		strategy: s,
		lookup:   lookup,
		cache:    make(map[string]float64),
	}, nil
}

// Strategy returns the strategy being scored.
func (sc *Scorer) Strategy() Strategy {
	return sc.strategy
}

// Score returns the memoized score of symbol. Symbols without metadata score 0.
func (sc *Scorer) Score(symbol string) float64 {
	if v, ok := sc.cache[symbol]; ok {
		return v
	}
	sc.misses++

	var v float64
	if sc.lookup != nil {
		if m, ok := sc.lookup(symbol); ok {
			v = sc.strategy.Score(m)
		}
	}
	sc.cache[symbol] = v
	return v
}

// Computed returns how many distinct symbols were actually scored.
func (sc *Scorer) Computed() int {
	return sc.misses
}

// MapLookup adapts a symbol-keyed map to a Lookup.
func MapLookup(m map[string]Metadata) Lookup {
	return func(symbol string) (Metadata, bool) {
		md, ok := m[symbol]
		return md, ok
	}
}
