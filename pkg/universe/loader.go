package universe

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bastiangx/tickerspell/pkg/strategy"
	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

// FileFormat is the on-disk encoding of a universe file.
type FileFormat int

const (
	FormatUnknown  FileFormat = iota
	FormatMetadata            // metadata.json written by the build step
	FormatSnapshot            // msgpack snapshot written by WriteSnapshot
)

// ErrUnknownFormat is returned for files whose extension is not recognized.
var ErrUnknownFormat = errors.New("unknown universe file format")

// DetectFileFormat picks the format from the file extension.
func DetectFileFormat(path string) (FileFormat, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatMetadata, nil
	case ".msgpack", ".mpk":
		return FormatSnapshot, nil
	default:
		return FormatUnknown, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
}

// metadataEntry is one value of metadata.json. Market fields are nullable
// there and nulls are kept as strategy.Metadata.Missing; dividendYield is a
// percentage.
type metadataEntry struct {
	Name          string   `json:"name"`
	Exchange      string   `json:"exchange"`
	Price         *float64 `json:"price"`
	Volume        *int64   `json:"volume"`
	MarketCap     *float64 `json:"marketCap"`
	DividendYield *float64 `json:"dividendYield"`
	Beta          *float64 `json:"beta"`
	RSI           *float64 `json:"rsi"`
	MA200         *float64 `json:"ma200"`
}

func deref[T int64 | float64](v *T) T {
	if v == nil {
		return 0
	}
	return *v
}

func (e metadataEntry) missing() strategy.Fields {
	var f strategy.Fields
	for _, field := range []struct {
		null bool
		bit  strategy.Fields
	}{
		{e.DividendYield == nil, strategy.FieldYield},
		{e.Beta == nil, strategy.FieldBeta},
		{e.RSI == nil, strategy.FieldRSI},
		{e.MA200 == nil, strategy.FieldMA200},
		{e.Price == nil, strategy.FieldPrice},
		{e.MarketCap == nil, strategy.FieldMarketCap},
	} {
		if field.null {
			f |= field.bit
		}
	}
	return f
}

func (e metadataEntry) ticker(symbol string) Ticker {
	return Ticker{
		Symbol:   symbol,
		Name:     e.Name,
		Exchange: e.Exchange,
		Volume:   deref(e.Volume),
		Metadata: strategy.Metadata{
			Yield:     deref(e.DividendYield) / 100,
			Beta:      deref(e.Beta),
			RSI:       deref(e.RSI),
			MA200:     deref(e.MA200),
			Price:     deref(e.Price),
			MarketCap: deref(e.MarketCap),
			Missing:   e.missing(),
		},
	}
}

// LoadFile reads a universe file in either supported format. Tickers come
// back sorted by symbol.
func LoadFile(path string) ([]Ticker, error) {
	format, err := DetectFileFormat(path)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open universe file %s: %w", path, err)
	}
	defer file.Close()

	var tickers []Ticker
	switch format {
	case FormatMetadata:
		tickers, err = ReadMetadata(bufio.NewReader(file))
	case FormatSnapshot:
		tickers, err = ReadSnapshot(bufio.NewReader(file))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode universe file %s: %w", path, err)
	}

	log.Debugf("Loaded %d tickers from %s", len(tickers), path)
	return tickers, nil
}

// ReadMetadata decodes a metadata.json document keyed by symbol.
func ReadMetadata(r io.Reader) ([]Ticker, error) {
	var doc map[string]metadataEntry
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, err
	}

	tickers := make([]Ticker, 0, len(doc))
	for symbol, entry := range doc {
		tickers = append(tickers, entry.ticker(symbol))
	}
	sortBySymbol(tickers)
	return tickers, nil
}

// ReadSnapshot decodes a msgpack snapshot.
func ReadSnapshot(r io.Reader) ([]Ticker, error) {
	var tickers []Ticker
	if err := msgpack.NewDecoder(r).Decode(&tickers); err != nil {
		return nil, err
	}
	sortBySymbol(tickers)
	return tickers, nil
}

// WriteSnapshot stores tickers as a msgpack snapshot at path.
func WriteSnapshot(path string, tickers []Ticker) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create snapshot %s: %w", path, err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	if err := msgpack.NewEncoder(w).Encode(tickers); err != nil {
		return fmt.Errorf("failed to encode snapshot %s: %w", path, err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write snapshot %s: %w", path, err)
	}
	log.Debugf("Wrote snapshot with %d tickers to %s", len(tickers), path)
	return nil
}
