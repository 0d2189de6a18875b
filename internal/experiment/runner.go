package experiment

import (
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/moznion/go-optional"
	"go.uber.org/zap"

	"github.com/rxtech-lab/argo-montecarlo/internal/calendar"
	"github.com/rxtech-lab/argo-montecarlo/internal/ledger"
	"github.com/rxtech-lab/argo-montecarlo/internal/logger"
	"github.com/rxtech-lab/argo-montecarlo/internal/machine"
	"github.com/rxtech-lab/argo-montecarlo/internal/pricehistory"
	"github.com/rxtech-lab/argo-montecarlo/internal/stats"
	"github.com/rxtech-lab/argo-montecarlo/internal/types"
	"github.com/rxtech-lab/argo-montecarlo/pkg/errors"
)

// OnTrialDone is called after each trial finishes, successfully or not,
// with the number of finished trials and the experiment's total budget. The
// runner serializes calls, so the callback needs no locking of its own.
type OnTrialDone func(completed int, total int)

// TrialSetResult is the aggregate outcome of one instrument set's trials.
type TrialSetResult struct {
	Symbols []string           `yaml:"symbols" json:"symbols"`
	Stats   stats.Distribution `yaml:"stats" json:"stats"`
}

// Result is the experiment outcome: per-set statistics with unusable sets
// filtered out, and the pooled experiment-level distribution.
type Result struct {
	TrialSets []TrialSetResult   `yaml:"trial_sets" json:"trial_sets"`
	Overall   stats.Distribution `yaml:"overall" json:"overall"`
}

// Runner orchestrates an experiment: it computes valid randomized trading
// windows bounded by data availability and strategy lookback, distributes
// the trial budget across instrument sets, runs each set's trials in
// parallel, and pools the statistics.
type Runner struct {
	log      *logger.Logger
	params   Params
	calendar *calendar.Calendar
	store    *pricehistory.Store
}

// NewRunner validates params and builds a Runner. A nil log falls back to a
// no-op logger.
func NewRunner(log *logger.Logger, params Params, cal *calendar.Calendar, store *pricehistory.Store) (*Runner, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	if cal == nil {
		return nil, errors.New(errors.ErrCodeInvalidParameter, "runner needs a calendar")
	}

	if store == nil {
		return nil, errors.New(errors.ErrCodeInvalidParameter, "runner needs a price history store")
	}

	if log == nil {
		log = logger.NewNopLogger()
	}

	return &Runner{
		log:      log,
		params:   params,
		calendar: cal,
		store:    store,
	}, nil
}

// ValidStartWindow returns the interval of valid trial start instants for an
// instrument set: bounded below by the experiment start and the common data
// range plus the strategy's required lookback, and above by both the
// experiment end and the common range end less one trading period. None
// means the set cannot host a single trial and is skipped, which is a
// routine outcome, not an error.
func (r *Runner) ValidStartWindow(symbols []string, lookback time.Duration) optional.Option[types.Interval] {
	common := r.store.CommonDateRange(symbols)
	if common.IsNone() {
		return optional.None[types.Interval]()
	}

	interval := common.Unwrap()

	earliest := r.params.Start
	if withData := interval.Start.Add(lookback); withData.After(earliest) {
		earliest = withData
	}

	latest := r.params.End.Add(-r.params.TradingPeriod)
	if withData := interval.End.Add(-r.params.TradingPeriod); withData.Before(latest) {
		latest = withData
	}

	if earliest.After(latest) {
		return optional.None[types.Interval]()
	}

	return optional.Some(types.Interval{Start: earliest, End: latest})
}

// randomStart draws a uniformly random trial start inside window.
func randomStart(window types.Interval, rng *rand.Rand) time.Time {
	span := window.Span()
	if span <= 0 {
		return window.Start
	}

	return window.Start.Add(time.Duration(rng.Int63n(int64(span) + 1)))
}

// runTrial executes one randomized trial and returns its final portfolio
// value.
func (r *Runner) runTrial(strategy Strategy, strategyParams StrategyParams, symbols []string, startWindow types.Interval, rng *rand.Rand) (TrialResult, error) {
	start := randomStart(startWindow, rng)

	env := TrialEnv{
		Params:         r.params,
		StrategyParams: strategyParams,
		Symbols:        symbols,
		Window: types.Interval{
			Start: start,
			End:   start.Add(r.params.TradingPeriod),
		},
		Calendar: r.calendar,
		Store:    r.store,
	}

	return machine.Run(strategy.Build(env))
}

// RunTrialSet runs all trials allocated to one instrument set in parallel
// and aggregates their final portfolio values into a sample distribution.
// It returns None when the set has no valid start window. Trials share only
// the read-only store and calendar; each owns its state, so no locking is
// needed around the simulation itself.
func (r *Runner) RunTrialSet(strategy Strategy, strategyParams StrategyParams, allocation Allocation, rng *rand.Rand, onTrialDone func()) (optional.Option[TrialSetResult], error) {
	if allocation.Trials <= 0 {
		return optional.None[TrialSetResult](), nil
	}

	lookback := strategy.Lookback(r.params, strategyParams, r.calendar)

	window := r.ValidStartWindow(allocation.Symbols, lookback)
	if window.IsNone() {
		r.log.Debug("instrument set has no valid trial window, skipping",
			zap.String("symbols", strings.Join(allocation.Symbols, ",")),
			zap.Duration("lookback", lookback),
		)

		return optional.None[TrialSetResult](), nil
	}

	startWindow := window.Unwrap()

	// Seeds are drawn sequentially before the goroutines launch so results
	// are reproducible regardless of scheduling.
	seeds := make([]int64, allocation.Trials)
	for i := range seeds {
		seeds[i] = rng.Int63()
	}

	values := make([]float64, allocation.Trials)
	trialErrors := make([]error, allocation.Trials)

	var wg sync.WaitGroup

	for i := 0; i < allocation.Trials; i++ {
		wg.Add(1)

		go func(trial int) {
			defer wg.Done()

			trialRng := rand.New(rand.NewSource(seeds[trial]))

			result, err := r.runTrial(strategy, strategyParams, allocation.Symbols, startWindow, trialRng)
			if err != nil {
				trialErrors[trial] = err
			} else {
				values[trial] = result.FinalValue
			}

			// Failed trials report too, so progress keeps moving while the
			// set's error surfaces after the wait.
			if onTrialDone != nil {
				onTrialDone()
			}
		}(i)
	}

	wg.Wait()

	for _, err := range trialErrors {
		if err != nil {
			return optional.None[TrialSetResult](), errors.Wrapf(errors.ErrCodeTrialSetFailed, err,
				"trial failed for instrument set %s", strings.Join(allocation.Symbols, ","))
		}
	}

	return optional.Some(TrialSetResult{
		Symbols: allocation.Symbols,
		Stats:   stats.Sample(values),
	}), nil
}

// Run executes the whole experiment over the given allocations. Instrument
// sets are isolated from each other: a set whose trials fail is logged and
// excluded from the results, and the remaining sets still complete. Sets
// with no valid window are silently filtered. Run fails only when no set
// produced a usable distribution.
func (r *Runner) Run(strategy Strategy, strategyParams StrategyParams, allocations []Allocation, onTrialDone optional.Option[OnTrialDone]) (Result, error) {
	if strategy.Build == nil {
		return Result{}, errors.New(errors.ErrCodeUnknownStrategy, "strategy has no Build function")
	}

	seed := r.params.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	rng := rand.New(rand.NewSource(seed))

	total := 0
	for _, allocation := range allocations {
		total += allocation.Trials
	}

	var progressMu sync.Mutex

	completed := 0
	reportDone := func() {
		if onTrialDone.IsNone() {
			return
		}

		progressMu.Lock()
		defer progressMu.Unlock()

		completed++
		onTrialDone.Unwrap()(completed, total)
	}

	var trialSets []TrialSetResult

	for _, allocation := range allocations {
		setResult, err := r.RunTrialSet(strategy, strategyParams, allocation, rng, reportDone)
		if err != nil {
			// isolate the failing set; the rest of the experiment goes on
			r.log.Error("instrument set failed, excluding from results",
				zap.String("symbols", strings.Join(allocation.Symbols, ",")),
				zap.Error(err),
			)

			continue
		}

		if setResult.IsSome() {
			trialSets = append(trialSets, setResult.Unwrap())
		}
	}

	if len(trialSets) == 0 {
		return Result{}, errors.New(errors.ErrCodeNoUsableTrialSets, "no instrument set produced a usable trial distribution")
	}

	distributions := make([]stats.Distribution, 0, len(trialSets))
	for _, set := range trialSets {
		distributions = append(distributions, set.Stats)
	}

	overall, err := stats.Combine(distributions)
	if err != nil {
		return Result{}, err
	}

	return Result{
		TrialSets: trialSets,
		Overall:   overall,
	}, nil
}

// The runner's store must satisfy the ledger's quote-source contract.
var _ ledger.QuoteSource = (*pricehistory.Store)(nil)
