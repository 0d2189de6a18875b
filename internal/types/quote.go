package types

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/rxtech-lab/argo-montecarlo/pkg/errors"
)

// QuoteRecord is one OHLC bar for one instrument at one instant.
// Records are immutable; timestamps are unique per instrument.
// The csv tags match the quote file format: time is RFC3339
// (time.Time satisfies encoding.TextUnmarshaler, which gocsv uses).
type QuoteRecord struct {
	Symbol string    `csv:"symbol" yaml:"symbol" json:"symbol" validate:"required"`
	Time   time.Time `csv:"time" yaml:"time" json:"time" validate:"required"`
	Open   float64   `csv:"open" yaml:"open" json:"open" validate:"gte=0"`
	High   float64   `csv:"high" yaml:"high" json:"high" validate:"gte=0"`
	Low    float64   `csv:"low" yaml:"low" json:"low" validate:"gte=0"`
	Close  float64   `csv:"close" yaml:"close" json:"close" validate:"gte=0"`
}

// Validate validates the QuoteRecord struct.
func (q *QuoteRecord) Validate() error {
	validate := validator.New()
	if err := validate.Struct(q); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidQuote, "invalid quote record", err)
	}

	return nil
}

// Interval is a closed time interval [Start, End].
type Interval struct {
	Start time.Time `yaml:"start" json:"start"`
	End   time.Time `yaml:"end" json:"end"`
}

// Span returns the wall-clock length of the interval.
func (i Interval) Span() time.Duration {
	return i.End.Sub(i.Start)
}

// Contains reports whether t falls inside the closed interval.
func (i Interval) Contains(t time.Time) bool {
	return !t.Before(i.Start) && !t.After(i.End)
}
