package experiment

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/rxtech-lab/argo-montecarlo/pkg/errors"
)

// Params are the experiment-level parameters shared by every trial set:
// the overall experiment window, the length of each randomized trading
// period, the simulation step, money settings, and the trial budget. Params
// are immutable once validated; trials receive them by value.
type Params struct {
	// Start and End bound the experiment: every randomized trial window must
	// fall inside [Start, End].
	Start time.Time `yaml:"start" json:"start" validate:"required" jsonschema:"title=Experiment Start,description=Earliest instant any trial window may begin"`
	End   time.Time `yaml:"end" json:"end" validate:"required" jsonschema:"title=Experiment End,description=Latest instant any trial window may end"`
	// TradingPeriod is the length of each trial's trading window.
	TradingPeriod time.Duration `yaml:"trading_period" json:"trading_period" validate:"gt=0" jsonschema:"title=Trading Period,description=Length of each randomized trial window"`
	// Step is the simulation step between strategy decisions.
	Step time.Duration `yaml:"step" json:"step" validate:"gt=0" jsonschema:"title=Step,description=Simulation step between strategy decisions"`
	// InitialCash funds each trial's portfolio.
	InitialCash decimal.Decimal `yaml:"initial_cash" json:"initial_cash" jsonschema:"title=Initial Cash,description=Starting cash per trial"`
	// Commission is the flat per-order commission.
	Commission decimal.Decimal `yaml:"commission" json:"commission" jsonschema:"title=Commission,description=Flat commission charged per order"`
	// TrialCount is the total trial budget distributed across instrument
	// sets.
	TrialCount int `yaml:"trial_count" json:"trial_count" validate:"gt=0" jsonschema:"title=Trial Count,description=Total number of trials across all instrument sets"`
	// Seed seeds the experiment's random source; zero means seed from the
	// clock.
	Seed int64 `yaml:"seed" json:"seed" jsonschema:"title=Seed,description=Random seed; 0 seeds from the clock"`
}

// DefaultParams returns Params with the money and budget defaults used when
// a config omits them.
func DefaultParams() Params {
	return Params{
		TradingPeriod: 365 * 24 * time.Hour,
		Step:          24 * time.Hour,
		InitialCash:   decimal.NewFromInt(10000),
		Commission:    decimal.Zero,
		TrialCount:    100,
		Seed:          0,
	}
}

// Validate checks the struct tags plus the relations the tags cannot
// express.
func (p *Params) Validate() error {
	validate := validator.New()
	if err := validate.Struct(p); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid experiment params", err)
	}

	if !p.End.After(p.Start) {
		return errors.Newf(errors.ErrCodeInvalidConfiguration, "experiment end %v is not after start %v", p.End, p.Start)
	}

	if p.InitialCash.Sign() <= 0 {
		return errors.New(errors.ErrCodeInvalidConfiguration, "initial cash must be positive")
	}

	if p.Commission.Sign() < 0 {
		return errors.New(errors.ErrCodeInvalidConfiguration, "commission must not be negative")
	}

	return nil
}

// UnmarshalYAML implements custom unmarshaling for Params: durations are
// written as Go duration strings ("8760h", "1h30m") and money as decimal
// strings, neither of which yaml handles natively.
func (p *Params) UnmarshalYAML(value *yaml.Node) error {
	type rawParams struct {
		Start         time.Time `yaml:"start"`
		End           time.Time `yaml:"end"`
		TradingPeriod string    `yaml:"trading_period"`
		Step          string    `yaml:"step"`
		InitialCash   string    `yaml:"initial_cash"`
		Commission    string    `yaml:"commission"`
		TrialCount    int       `yaml:"trial_count"`
		Seed          int64     `yaml:"seed"`
	}

	var raw rawParams
	if err := value.Decode(&raw); err != nil {
		return err
	}

	defaults := DefaultParams()

	p.Start = raw.Start
	p.End = raw.End
	p.TradingPeriod = defaults.TradingPeriod
	p.Step = defaults.Step
	p.InitialCash = defaults.InitialCash
	p.Commission = defaults.Commission
	p.TrialCount = defaults.TrialCount
	p.Seed = raw.Seed

	if raw.TradingPeriod != "" {
		duration, err := time.ParseDuration(raw.TradingPeriod)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid trading_period", err)
		}

		p.TradingPeriod = duration
	}

	if raw.Step != "" {
		duration, err := time.ParseDuration(raw.Step)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid step", err)
		}

		p.Step = duration
	}

	if raw.InitialCash != "" {
		cash, err := decimal.NewFromString(raw.InitialCash)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid initial_cash", err)
		}

		p.InitialCash = cash
	}

	if raw.Commission != "" {
		commission, err := decimal.NewFromString(raw.Commission)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid commission", err)
		}

		p.Commission = commission
	}

	if raw.TrialCount != 0 {
		p.TrialCount = raw.TrialCount
	}

	return nil
}

// StrategyParams is the opaque numeric parameter bundle a strategy is built
// from. Keeping it a flat name-to-value map is what lets an external
// genetic-algorithm optimizer mutate it without knowing any strategy's
// shape.
type StrategyParams map[string]float64

// Get returns the named parameter, or fallback when absent.
func (sp StrategyParams) Get(name string, fallback float64) float64 {
	if value, ok := sp[name]; ok {
		return value
	}

	return fallback
}

// GetInt returns the named parameter truncated to int, or fallback.
func (sp StrategyParams) GetInt(name string, fallback int) int {
	if value, ok := sp[name]; ok {
		return int(value)
	}

	return fallback
}

// Clone returns an independent copy.
func (sp StrategyParams) Clone() StrategyParams {
	clone := make(StrategyParams, len(sp))
	for name, value := range sp {
		clone[name] = value
	}

	return clone
}
