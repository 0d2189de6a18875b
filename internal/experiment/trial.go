package experiment

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/rxtech-lab/argo-montecarlo/internal/calendar"
	"github.com/rxtech-lab/argo-montecarlo/internal/machine"
	"github.com/rxtech-lab/argo-montecarlo/internal/pricehistory"
	"github.com/rxtech-lab/argo-montecarlo/internal/types"
)

// TrialEnv is everything a strategy needs to build the state machine for one
// randomized trial: the window drawn for it, the shared read-only price
// store and calendar, and the parameter bundles. The env itself is owned by
// the single trial it was built for.
type TrialEnv struct {
	Params         Params
	StrategyParams StrategyParams
	Symbols        []string
	Window         types.Interval
	Calendar       *calendar.Calendar
	Store          *pricehistory.Store
}

// TrialConstant is the per-trial immutable constant state: parameters fixed
// at trial start, never mutated after construction.
type TrialConstant struct {
	Window      types.Interval
	Symbols     []string
	Commission  decimal.Decimal
	InitialCash decimal.Decimal
	Step        time.Duration
	Calendar    *calendar.Calendar
	Store       *pricehistory.Store
}

// Constant builds the TrialConstant for this env.
func (env TrialEnv) Constant() TrialConstant {
	return TrialConstant{
		Window:      env.Window,
		Symbols:     env.Symbols,
		Commission:  env.Params.Commission,
		InitialCash: env.Params.InitialCash,
		Step:        env.Params.Step,
		Calendar:    env.Calendar,
		Store:       env.Store,
	}
}

// TrialState is the per-step simulation state. It is exclusively owned by
// the one trial executing it and replaced, never mutated, at every step.
// Memory carries strategy-specific indicator state (previous windows,
// running averages); a strategy replaces it wholesale each step too.
type TrialState struct {
	Time      time.Time
	Portfolio types.Portfolio
	Memory    any
}

// TrialResult is the outcome of one trial.
type TrialResult struct {
	// FinalValue is the portfolio valuation at the trial's final instant.
	FinalValue float64
	// Portfolio is the final portfolio, kept for reporting.
	Portfolio types.Portfolio
	// End is the instant of the final valuation.
	End time.Time
}

// Strategy is the pluggable trading-signal contract: a name, a builder that
// closes the five state-machine functions over a trial env, and an optional
// lookback sizing hook consumed when bounding valid trial windows.
type Strategy struct {
	Name string

	// Build returns the state-machine definition for one trial.
	Build func(env TrialEnv) machine.Definition[TrialConstant, TrialState, TrialResult]

	// RequiredLookback returns the wall-clock history span the strategy
	// needs before a window starts (indicator warm-up). Nil means none.
	RequiredLookback func(params Params, strategyParams StrategyParams, cal *calendar.Calendar) time.Duration
}

// Lookback resolves the strategy's required lookback, zero when unset.
func (s Strategy) Lookback(params Params, strategyParams StrategyParams, cal *calendar.Calendar) time.Duration {
	if s.RequiredLookback == nil {
		return 0
	}

	return s.RequiredLookback(params, strategyParams, cal)
}
