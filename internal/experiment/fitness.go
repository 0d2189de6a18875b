package experiment

import (
	"github.com/moznion/go-optional"

	"github.com/rxtech-lab/argo-montecarlo/internal/calendar"
	"github.com/rxtech-lab/argo-montecarlo/internal/logger"
	"github.com/rxtech-lab/argo-montecarlo/internal/pricehistory"
)

// Fitness runs a full experiment and reduces it to a single scalar: the
// pooled mean final portfolio value across all trials. It is the pure
// fitness function an external genetic-algorithm optimizer consumes when
// searching strategy parameters; the optimizer itself (selection, crossover,
// mutation) lives outside this module.
func Fitness(log *logger.Logger, params Params, cal *calendar.Calendar, store *pricehistory.Store, strategy Strategy, strategyParams StrategyParams, allocations []Allocation) (float64, error) {
	runner, err := NewRunner(log, params, cal, store)
	if err != nil {
		return 0, err
	}

	result, err := runner.Run(strategy, strategyParams, allocations, optional.None[OnTrialDone]())
	if err != nil {
		return 0, err
	}

	return result.Overall.Mean, nil
}
