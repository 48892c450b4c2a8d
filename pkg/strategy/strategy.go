// Package strategy maps ticker metadata to a desirability score under one of
// five named portfolio strategies.
package strategy

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrUnknownStrategy is returned for strategy keys and values outside the
// five known strategies.
var ErrUnknownStrategy = errors.New("unknown strategy")

// Strategy is a named scoring policy.
type Strategy int

const (
	// DividendDaddy favors high yield with low volatility.
	DividendDaddy Strategy = iota
	// MoonShot favors high beta and room to run.
	MoonShot
	// FallingKnife favors deep discounts to the 200 day trend.
	FallingKnife
	// OverHyped favors overbought names.
	OverHyped
	// InstWhale favors size and liquidity.
	InstWhale
)

// All lists every strategy in declaration order.
var All = []Strategy{DividendDaddy, MoonShot, FallingKnife, OverHyped, InstWhale}

var keys = map[Strategy]string{
	DividendDaddy: "dividendDaddy",
	MoonShot:      "moonShot",
	FallingKnife:  "fallingKnife",
	OverHyped:     "overHyped",
	InstWhale:     "instWhale",
}

// Fields is a set of Metadata fields.
type Fields uint8

const (
	FieldYield Fields = 1 << iota
	FieldBeta
	FieldRSI
	FieldMA200
	FieldPrice
	FieldMarketCap
)

// Has reports whether every field of f2 is in f.
func (f Fields) Has(f2 Fields) bool {
	return f&f2 == f2
}

// Metadata is the market data a strategy scores. Yield is a fraction
// (0.031 for 3.1%), RSI is the 14 day relative strength index.
// Missing marks fields the data source reported as null; their stored value
// is zero and scoring substitutes a neutral fill.
type Metadata struct {
	Yield     float64 `json:"yield" msgpack:"y"`
	Beta      float64 `json:"beta" msgpack:"b"`
	RSI       float64 `json:"rsi" msgpack:"r"`
	MA200     float64 `json:"ma200" msgpack:"ma"`
	Price     float64 `json:"price" msgpack:"p"`
	MarketCap float64 `json:"market_cap" msgpack:"mc"`
	Missing   Fields  `json:"missing,omitempty" msgpack:"m,omitempty"`
}

// Filled returns m with missing fields replaced by the fills used for s:
// yield 0, beta 1 for DividendDaddy and 0 otherwise, rsi 50, ma200 equal to
// price, market cap 1.
func (m Metadata) Filled(s Strategy) Metadata {
	if m.Missing == 0 {
		return m
	}
	if m.Missing.Has(FieldYield) {
		m.Yield = 0
	}
	if m.Missing.Has(FieldBeta) {
		m.Beta = 0
		if s == DividendDaddy {
			m.Beta = 1
		}
	}
	if m.Missing.Has(FieldRSI) {
		m.RSI = 50
	}
	if m.Missing.Has(FieldMA200) {
		m.MA200 = m.Price
	}
	if m.Missing.Has(FieldMarketCap) {
		m.MarketCap = 1
	}
	m.Missing = 0
	return m
}

// Parse resolves a strategy key. Both camelCase ("fallingKnife") and
// snake_case ("falling_knife") keys are accepted, case-insensitively.
func Parse(key string) (Strategy, error) {
	norm := strings.ToLower(strings.NewReplacer("_", "", "-", "", " ", "").Replace(key))
	for s, k := range keys {
		if strings.ToLower(k) == norm {
			return s, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownStrategy, key)
}

// Valid reports whether s is one of the five strategies.
func (s Strategy) Valid() bool {
	_, ok := keys[s]
	return ok
}

// String returns the strategy key.
func (s Strategy) String() string {
	if k, ok := keys[s]; ok {
		return k
	}
	return fmt.Sprintf("Strategy(%d)", int(s))
}

// Score computes the strategy's score for m after filling missing fields.
// Results are never negative.
// Score panics on an invalid strategy; callers check Valid at the boundary.
func (s Strategy) Score(m Metadata) float64 {
	m = m.Filled(s)
	var v float64
	switch s {
	case DividendDaddy:
		v = m.Yield*100 + (100 - math.Abs(m.Beta)*20)
	case MoonShot:
		v = m.Beta*50 + (100 - m.RSI)
	case FallingKnife:
		v = 100 - m.RSI
		if m.Price > 0 {
			v += math.Max(0, (m.MA200-m.Price)/m.Price*100)
		}
	case OverHyped:
		v = m.RSI
	case InstWhale:
		if m.MarketCap > 1 {
			v = math.Log10(m.MarketCap)
		}
	default:
		panic(fmt.Sprintf("strategy: score with invalid %v", s))
	}

	if v < 0 || math.IsNaN(v) {
		return 0
	}
	return v
}
