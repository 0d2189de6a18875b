// Package datagen generates synthetic price histories for demos, tests and
// benchmarks. Prices follow a geometric Brownian motion with configurable
// drift and volatility; bars land only on trading-calendar session
// instants, so generated files behave like real exchange data.
package datagen

import (
	"math"
	"math/rand"
	"os"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/rxtech-lab/argo-montecarlo/internal/calendar"
	"github.com/rxtech-lab/argo-montecarlo/internal/types"
	"github.com/rxtech-lab/argo-montecarlo/pkg/errors"
)

// Generator produces reproducible synthetic quote series.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator creates a Generator seeded for reproducible output.
func NewGenerator(seed int64) *Generator {
	return &Generator{
		rng: rand.New(rand.NewSource(seed)),
	}
}

// Config controls one generated quote series.
type Config struct {
	// Symbol is the instrument the bars belong to.
	Symbol string
	// Start is the instant the series begins; it snaps forward to the next
	// session instant when it falls outside trading hours.
	Start time.Time
	// Interval is the spacing between bars.
	Interval time.Duration
	// Count is the number of bars to generate.
	Count int
	// InitialPrice is the open of the first bar.
	InitialPrice float64
	// Volatility controls per-bar price movement (0.002 is 0.2% per bar).
	Volatility float64
	// Trend is the total drift across the whole series, negative for
	// bearish.
	Trend float64
}

// DefaultConfig returns one year of daily bars for a neutral instrument.
func DefaultConfig() Config {
	return Config{
		Symbol:       "TEST",
		Start:        time.Date(2024, 1, 2, 9, 30, 0, 0, time.UTC),
		Interval:     24 * time.Hour,
		Count:        252,
		InitialPrice: 100.0,
		Volatility:   0.01,
		Trend:        0.0,
	}
}

func (c Config) validate() error {
	if c.Symbol == "" {
		return errors.New(errors.ErrCodeInvalidParameter, "generator config needs a symbol")
	}

	if c.Count <= 0 {
		return errors.Newf(errors.ErrCodeInvalidParameter, "generator count must be positive, got %d", c.Count)
	}

	if c.Interval <= 0 {
		return errors.Newf(errors.ErrCodeInvalidParameter, "generator interval must be positive, got %v", c.Interval)
	}

	if c.InitialPrice <= 0 {
		return errors.Newf(errors.ErrCodeInvalidParameter, "generator initial price must be positive, got %v", c.InitialPrice)
	}

	return nil
}

// Generate produces config.Count bars on cal's session instants. The walk
// is geometric Brownian motion: each close moves from the open by a normal
// draw scaled by volatility, plus the per-bar share of the total trend.
func (g *Generator) Generate(cal *calendar.Calendar, config Config) ([]types.QuoteRecord, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}

	quotes := make([]types.QuoteRecord, 0, config.Count)
	price := config.InitialPrice
	drift := config.Trend / float64(config.Count)

	for t := range cal.SessionSeries(config.Start, config.Interval) {
		if len(quotes) == config.Count {
			break
		}

		open := price

		// Box-Muller transform for a standard normal draw. Float64 is in
		// [0, 1); shifting to (0, 1] keeps the log argument off zero.
		u1 := 1 - g.rng.Float64()
		u2 := g.rng.Float64()
		z := math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)

		close := open * (1 + config.Volatility*z + drift)
		if close <= 0 {
			close = open * 0.99
		}

		highExtension := math.Abs(g.rng.Float64() * config.Volatility * open * 0.5)
		lowExtension := math.Abs(g.rng.Float64() * config.Volatility * open * 0.5)

		high := math.Max(open, close) + highExtension

		low := math.Min(open, close) - lowExtension
		if low <= 0 {
			low = math.Min(open, close) * 0.99
		}

		quotes = append(quotes, types.QuoteRecord{
			Symbol: config.Symbol,
			Time:   t,
			Open:   round(open),
			High:   round(high),
			Low:    round(low),
			Close:  round(close),
		})

		price = close
	}

	return quotes, nil
}

// GenerateMultiSymbol generates one series per symbol from the same base
// config, varying initial price and volatility per symbol so the
// instruments are not clones of each other.
func (g *Generator) GenerateMultiSymbol(cal *calendar.Calendar, symbols []string, base Config) (map[string][]types.QuoteRecord, error) {
	series := make(map[string][]types.QuoteRecord, len(symbols))

	for _, symbol := range symbols {
		config := base
		config.Symbol = symbol
		config.InitialPrice = base.InitialPrice * (0.8 + g.rng.Float64()*0.4)
		config.Volatility = base.Volatility * (0.8 + g.rng.Float64()*0.4)

		quotes, err := g.Generate(cal, config)
		if err != nil {
			return nil, err
		}

		series[symbol] = quotes
	}

	return series, nil
}

// WriteCSV writes quotes as a CSV quote file readable by the price history
// store.
func WriteCSV(path string, quotes []types.QuoteRecord) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeHistoryLoadFailed, err, "failed to create quote file %s", path)
	}
	defer file.Close()

	if err := gocsv.MarshalFile(&quotes, file); err != nil {
		return errors.Wrapf(errors.ErrCodeHistoryLoadFailed, err, "failed to write quote file %s", path)
	}

	return nil
}

func round(value float64) float64 {
	return math.Round(value*10000) / 10000
}
