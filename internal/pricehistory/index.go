package pricehistory

import (
	"sort"
	"time"

	"github.com/moznion/go-optional"

	"github.com/rxtech-lab/argo-montecarlo/internal/types"
	"github.com/rxtech-lab/argo-montecarlo/pkg/errors"
)

// Index provides indexed access to one instrument's quote history.
// Quotes are held sorted by timestamp, so floor lookups (most recent quote
// at or before an instant) are O(log n) binary searches. An Index is built
// once at trial-set setup and is read-only afterward, which makes it safe to
// share across all parallel trials of an instrument set without locking.
type Index struct {
	symbol string
	quotes []types.QuoteRecord
}

// NewIndex builds an Index for symbol from the given quotes. The input slice
// is copied and sorted by timestamp; order of the input does not matter.
func NewIndex(symbol string, quotes []types.QuoteRecord) *Index {
	sorted := make([]types.QuoteRecord, len(quotes))
	copy(sorted, quotes)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Time.Before(sorted[j].Time)
	})

	return &Index{
		symbol: symbol,
		quotes: sorted,
	}
}

// Symbol returns the instrument this index covers.
func (idx *Index) Symbol() string {
	return idx.symbol
}

// Len returns the number of quotes in the index.
func (idx *Index) Len() int {
	return len(idx.quotes)
}

// floor returns the position of the greatest timestamp <= t, or -1 if every
// quote is after t.
func (idx *Index) floor(t time.Time) int {
	// first position with quote time strictly after t
	pos := sort.Search(len(idx.quotes), func(i int) bool {
		return idx.quotes[i].Time.After(t)
	})

	return pos - 1
}

// MostRecentQuote returns the quote with the greatest timestamp at or before
// t, or None if the index is empty or every quote is after t.
func (idx *Index) MostRecentQuote(t time.Time) optional.Option[types.QuoteRecord] {
	pos := idx.floor(t)
	if pos < 0 {
		return optional.None[types.QuoteRecord]()
	}

	return optional.Some(idx.quotes[pos])
}

// QuoteAt returns the quote exactly at t, or None.
func (idx *Index) QuoteAt(t time.Time) optional.Option[types.QuoteRecord] {
	pos := idx.floor(t)
	if pos < 0 || !idx.quotes[pos].Time.Equal(t) {
		return optional.None[types.QuoteRecord]()
	}

	return optional.Some(idx.quotes[pos])
}

// Coverage returns the closed interval from the first to the last covered
// timestamp, or None for an empty index.
func (idx *Index) Coverage() optional.Option[types.Interval] {
	if len(idx.quotes) == 0 {
		return optional.None[types.Interval]()
	}

	return optional.Some(types.Interval{
		Start: idx.quotes[0].Time,
		End:   idx.quotes[len(idx.quotes)-1].Time,
	})
}

// HasEnoughHistory reports whether the covered span is at least duration.
func (idx *Index) HasEnoughHistory(duration time.Duration) bool {
	coverage := idx.Coverage()
	if coverage.IsNone() {
		return false
	}

	return coverage.Unwrap().Span() >= duration
}

// PreviousNQuotes returns the count quotes ending at the floor of t
// (inclusive), oldest first. It returns an error when fewer than count
// quotes exist at or before t.
func (idx *Index) PreviousNQuotes(t time.Time, count int) ([]types.QuoteRecord, error) {
	if count <= 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidParameter, "count must be positive, got %d", count)
	}

	end := idx.floor(t)
	if end < 0 {
		return nil, errors.Newf(errors.ErrCodeNoQuote, "no quote at or before %v for %s", t, idx.symbol)
	}

	start := end - count + 1
	if start < 0 {
		return nil, errors.Newf(errors.ErrCodeInsufficientData,
			"insufficient history for %s: requested %d quotes, have %d", idx.symbol, count, end+1)
	}

	// Return a copy to keep the index read-only.
	result := make([]types.QuoteRecord, count)
	copy(result, idx.quotes[start:end+1])

	return result, nil
}

// CommonDateRange returns the intersection of the coverage intervals of all
// given indexes: (max of all starts, min of all ends). It returns None when
// any index is empty, when no index is given, or when the intervals do not
// overlap. The result bounds valid trial windows when several instruments
// must be traded simultaneously.
func CommonDateRange(indexes []*Index) optional.Option[types.Interval] {
	if len(indexes) == 0 {
		return optional.None[types.Interval]()
	}

	var common types.Interval

	for i, idx := range indexes {
		coverage := idx.Coverage()
		if coverage.IsNone() {
			return optional.None[types.Interval]()
		}

		interval := coverage.Unwrap()
		if i == 0 {
			common = interval

			continue
		}

		if interval.Start.After(common.Start) {
			common.Start = interval.Start
		}

		if interval.End.Before(common.End) {
			common.End = interval.End
		}
	}

	if common.Start.After(common.End) {
		return optional.None[types.Interval]()
	}

	return optional.Some(common)
}
