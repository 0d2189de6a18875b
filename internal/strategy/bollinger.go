package strategy

import (
	"sort"
	"time"

	"github.com/moznion/go-optional"

	"github.com/rxtech-lab/argo-montecarlo/internal/calendar"
	"github.com/rxtech-lab/argo-montecarlo/internal/experiment"
	"github.com/rxtech-lab/argo-montecarlo/internal/ledger"
	"github.com/rxtech-lab/argo-montecarlo/internal/machine"
	"github.com/rxtech-lab/argo-montecarlo/internal/stats"
	"github.com/rxtech-lab/argo-montecarlo/internal/types"
	"github.com/rxtech-lab/argo-montecarlo/pkg/errors"
)

const (
	defaultBollingerPeriod = 20
	defaultBollingerWidth  = 2.0
)

// bandState is the per-symbol Bollinger indicator memory: the last full
// window of closes (oldest first) and the moving average computed over it.
// States are rebuilt, never mutated, at every step.
type bandState struct {
	Window  []float64
	Average optional.Option[float64]
}

// NewBollingerBand returns a mean-reversion strategy driven by Bollinger
// bands: buy as much as cash affords when the close drops below the lower
// band, liquidate the position when it rises above the upper band.
//
// Strategy parameters:
//
//	period: moving-average window length in steps (default 20)
//	width:  band half-width in standard deviations (default 2)
//
// The strategy requires period steps of warm-up history before the trial
// window starts, reported through RequiredLookback so the runner only draws
// windows the indicator can be seeded for.
func NewBollingerBand() experiment.Strategy {
	return experiment.Strategy{
		Name:  "bollinger_band",
		Build: buildBollingerBand,
		RequiredLookback: func(params experiment.Params, strategyParams experiment.StrategyParams, cal *calendar.Calendar) time.Duration {
			period := strategyParams.GetInt("period", defaultBollingerPeriod)

			return cal.EstimatedDurationForPeriods(period, params.Step, params.Start)
		},
	}
}

func buildBollingerBand(env experiment.TrialEnv) machine.Definition[experiment.TrialConstant, experiment.TrialState, experiment.TrialResult] {
	period := env.StrategyParams.GetInt("period", defaultBollingerPeriod)
	width := env.StrategyParams.Get("width", defaultBollingerWidth)

	return machine.Definition[experiment.TrialConstant, experiment.TrialState, experiment.TrialResult]{
		BuildConstantState: func() (experiment.TrialConstant, error) {
			if period <= 0 {
				return experiment.TrialConstant{}, errors.Newf(errors.ErrCodeInvalidParameter,
					"bollinger period must be positive, got %d", period)
			}

			if width <= 0 {
				return experiment.TrialConstant{}, errors.Newf(errors.ErrCodeInvalidParameter,
					"bollinger width must be positive, got %v", width)
			}

			return env.Constant(), nil
		},

		BuildInitialState: func(constant experiment.TrialConstant) (experiment.TrialState, error) {
			start := constant.Calendar.SoonestSessionInstant(constant.Window.Start)
			memory := make(map[string]bandState, len(constant.Symbols))

			for _, symbol := range sortedSymbols(constant.Symbols) {
				index := constant.Store.Index(symbol)
				if index.IsNone() {
					return experiment.TrialState{}, errors.Newf(errors.ErrCodeNoQuote,
						"no price history for %s", symbol)
				}

				warmup, err := index.Unwrap().PreviousNQuotes(start, period)
				if err != nil {
					return experiment.TrialState{}, err
				}

				window := make([]float64, len(warmup))
				for i, quote := range warmup {
					window[i] = quote.Close
				}

				memory[symbol] = bandState{
					Window:  window,
					Average: optional.Some(stats.Mean(window)),
				}
			}

			return experiment.TrialState{
				Time:      start,
				Portfolio: types.NewPortfolio(constant.InitialCash),
				Memory:    memory,
			}, nil
		},

		IsFinalState: func(constant experiment.TrialConstant, current experiment.TrialState) bool {
			return !current.Time.Before(constant.Window.End)
		},

		BuildNextState: func(constant experiment.TrialConstant, current experiment.TrialState) (experiment.TrialState, error) {
			next := constant.Calendar.SoonestSessionInstant(current.Time.Add(constant.Step))

			previous, ok := current.Memory.(map[string]bandState)
			if !ok {
				return experiment.TrialState{}, errors.New(errors.ErrCodeTransitionFailed,
					"bollinger memory missing from trial state")
			}

			portfolio := current.Portfolio
			memory := make(map[string]bandState, len(previous))

			for _, symbol := range sortedSymbols(constant.Symbols) {
				quote := constant.Store.MostRecentQuote(symbol, next)
				if quote.IsNone() {
					return experiment.TrialState{}, errors.Newf(errors.ErrCodeNoQuote,
						"no quote at or before %v for %s", next, symbol)
				}

				close := quote.Unwrap().Close
				last := previous[symbol]

				window := slideWindow(last.Window, close, period)
				average := stats.SMAUpdate(window, period, last.Average, last.Window)
				sigma := stats.PopulationStdDev(window, average)

				memory[symbol] = bandState{
					Window:  window,
					Average: optional.Some(average),
				}

				var err error

				switch {
				case close < average-width*sigma:
					portfolio, err = ledger.BuyMaxAffordable(portfolio, constant.Commission, symbol, next, constant.Store)
				case close > average+width*sigma:
					portfolio, err = ledger.SellAll(portfolio, constant.Commission, symbol, next, constant.Store)
				}

				if err != nil {
					return experiment.TrialState{}, err
				}
			}

			return experiment.TrialState{
				Time:      next,
				Portfolio: portfolio,
				Memory:    memory,
			}, nil
		},

		BuildReturnState: func(constant experiment.TrialConstant, current experiment.TrialState) (experiment.TrialResult, error) {
			value, err := ledger.PortfolioValue(current.Portfolio, constant.Window.End, constant.Store)
			if err != nil {
				return experiment.TrialResult{}, err
			}

			return experiment.TrialResult{
				FinalValue: value.InexactFloat64(),
				Portfolio:  current.Portfolio,
				End:        constant.Window.End,
			}, nil
		},
	}
}

// slideWindow appends the newest close and keeps only the trailing period
// values. The input slice is never aliased: trial states share no storage.
func slideWindow(window []float64, close float64, period int) []float64 {
	combined := make([]float64, 0, len(window)+1)
	combined = append(combined, window...)
	combined = append(combined, close)

	if len(combined) > period {
		combined = combined[len(combined)-period:]
	}

	return combined
}

func sortedSymbols(symbols []string) []string {
	sorted := make([]string, len(symbols))
	copy(sorted, symbols)
	sort.Strings(sorted)

	return sorted
}
