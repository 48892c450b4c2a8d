// Package universe loads the ticker universe produced by the upstream build
// step and narrows it to the tickers eligible for scoring.
package universe

import (
	"sort"

	"github.com/bastiangx/tickerspell/pkg/strategy"
)

// Ticker is one tradable symbol and its latest market data.
type Ticker struct {
	Symbol   string            `json:"symbol" msgpack:"symbol"`
	Name     string            `json:"name,omitempty" msgpack:"name,omitempty"`
	Exchange string            `json:"exchange,omitempty" msgpack:"exchange,omitempty"`
	Volume   int64             `json:"volume,omitempty" msgpack:"volume,omitempty"`
	Metadata strategy.Metadata `json:"metadata" msgpack:"metadata"`
}

// Eligibility mirrors the build step's filter for tickers worth scoring.
type Eligibility struct {
	MinPrice  float64
	MinVolume int64
}

// DefaultEligibility is the build step's liquidity floor.
var DefaultEligibility = Eligibility{MinPrice: 5.0, MinVolume: 100000}

// Filter keeps tickers at or above the price and volume floors that also
// report a market cap.
func Filter(tickers []Ticker, e Eligibility) []Ticker {
	out := make([]Ticker, 0, len(tickers))
	for _, t := range tickers {
		if t.Metadata.Price < e.MinPrice || t.Volume < e.MinVolume {
			continue
		}
		if t.Metadata.MarketCap <= 0 {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Symbols lists the symbols of tickers in input order.
func Symbols(tickers []Ticker) []string {
	out := make([]string, len(tickers))
	for i, t := range tickers {
		out[i] = t.Symbol
	}
	return out
}

// Lookup indexes tickers by symbol for the scorer. Later duplicates win.
func Lookup(tickers []Ticker) strategy.Lookup {
	m := make(map[string]strategy.Metadata, len(tickers))
	for _, t := range tickers {
		m[t.Symbol] = t.Metadata
	}
	return strategy.MapLookup(m)
}

// sortBySymbol orders tickers for deterministic output.
func sortBySymbol(tickers []Ticker) {
	sort.Slice(tickers, func(i, j int) bool {
		return tickers[i].Symbol < tickers[j].Symbol
	})
}
