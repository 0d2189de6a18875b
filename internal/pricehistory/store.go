package pricehistory

import (
	"os"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/moznion/go-optional"
	"go.uber.org/zap"

	"github.com/rxtech-lab/argo-montecarlo/internal/logger"
	"github.com/rxtech-lab/argo-montecarlo/internal/types"
)

// Store holds the price history indexes for a set of instruments loaded from
// CSV quote files. Loading is per-instrument best-effort: an unreadable or
// missing source leaves that instrument with an empty index (logged, not
// fatal), so downstream coverage queries naturally report no data instead of
// aborting the whole load.
type Store struct {
	log     *logger.Logger
	indexes map[string]*Index
}

// NewStore creates an empty store. A nil log falls back to a no-op logger.
func NewStore(log *logger.Logger) *Store {
	if log == nil {
		log = logger.NewNopLogger()
	}

	return &Store{
		log:     log,
		indexes: make(map[string]*Index),
	}
}

// Load reads quote CSV files into indexes, one per instrument. The sources
// map instrument symbol to file path. When start or end is given, quotes
// outside the window are dropped during load.
func (s *Store) Load(sources map[string]string, start optional.Option[time.Time], end optional.Option[time.Time]) {
	for symbol, path := range sources {
		quotes, err := readQuoteFile(symbol, path, start, end)
		if err != nil {
			s.log.Warn("failed to load price history, instrument index left empty",
				zap.String("symbol", symbol),
				zap.String("path", path),
				zap.Error(err),
			)

			quotes = nil
		}

		s.indexes[symbol] = NewIndex(symbol, quotes)
	}
}

// AddIndex registers a prebuilt index, replacing any existing one for the
// same symbol. Used by tests and by callers that build quotes in memory.
func (s *Store) AddIndex(idx *Index) {
	s.indexes[idx.Symbol()] = idx
}

// Index returns the index for symbol, or None if the instrument was never
// loaded.
func (s *Store) Index(symbol string) optional.Option[*Index] {
	idx, ok := s.indexes[symbol]
	if !ok {
		return optional.None[*Index]()
	}

	return optional.Some(idx)
}

// Symbols returns all loaded instrument symbols.
func (s *Store) Symbols() []string {
	symbols := make([]string, 0, len(s.indexes))
	for symbol := range s.indexes {
		symbols = append(symbols, symbol)
	}

	return symbols
}

// MostRecentQuote returns the quote for symbol with the greatest timestamp
// at or before t, or None.
func (s *Store) MostRecentQuote(symbol string, t time.Time) optional.Option[types.QuoteRecord] {
	idx, ok := s.indexes[symbol]
	if !ok {
		return optional.None[types.QuoteRecord]()
	}

	return idx.MostRecentQuote(t)
}

// Coverage returns the covered interval for symbol, or None.
func (s *Store) Coverage(symbol string) optional.Option[types.Interval] {
	idx, ok := s.indexes[symbol]
	if !ok {
		return optional.None[types.Interval]()
	}

	return idx.Coverage()
}

// HasEnoughHistory reports whether symbol's coverage span is at least
// duration.
func (s *Store) HasEnoughHistory(symbol string, duration time.Duration) bool {
	idx, ok := s.indexes[symbol]
	if !ok {
		return false
	}

	return idx.HasEnoughHistory(duration)
}

// CommonDateRange returns the intersection of the coverage intervals of the
// given symbols, or None when a symbol is unknown, empty, or the intervals
// do not overlap.
func (s *Store) CommonDateRange(symbols []string) optional.Option[types.Interval] {
	if len(symbols) == 0 {
		return optional.None[types.Interval]()
	}

	indexes := make([]*Index, 0, len(symbols))

	for _, symbol := range symbols {
		idx, ok := s.indexes[symbol]
		if !ok {
			return optional.None[types.Interval]()
		}

		indexes = append(indexes, idx)
	}

	return CommonDateRange(indexes)
}

// readQuoteFile unmarshals one quote CSV file, filling in the symbol for
// rows that omit it and dropping rows outside the optional window.
func readQuoteFile(symbol string, path string, start optional.Option[time.Time], end optional.Option[time.Time]) ([]types.QuoteRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var rows []types.QuoteRecord
	if err := gocsv.UnmarshalFile(file, &rows); err != nil {
		return nil, err
	}

	quotes := make([]types.QuoteRecord, 0, len(rows))

	for _, row := range rows {
		if row.Symbol == "" {
			row.Symbol = symbol
		}

		if start.IsSome() && row.Time.Before(start.Unwrap()) {
			continue
		}

		if end.IsSome() && row.Time.After(end.Unwrap()) {
			continue
		}

		quotes = append(quotes, row)
	}

	return quotes, nil
}
