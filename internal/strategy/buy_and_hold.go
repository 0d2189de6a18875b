package strategy

import (
	"github.com/shopspring/decimal"

	"github.com/rxtech-lab/argo-montecarlo/internal/experiment"
	"github.com/rxtech-lab/argo-montecarlo/internal/ledger"
	"github.com/rxtech-lab/argo-montecarlo/internal/machine"
	"github.com/rxtech-lab/argo-montecarlo/internal/types"
)

// NewBuyAndHold returns the buy-and-hold baseline: at the first session
// instant of the window it splits cash evenly across the instrument set and
// buys as many shares of each as that share affords, then holds until the
// window ends. Needs no warm-up history.
func NewBuyAndHold() experiment.Strategy {
	return experiment.Strategy{
		Name:             "buy_and_hold",
		Build:            buildBuyAndHold,
		RequiredLookback: nil,
	}
}

func buildBuyAndHold(env experiment.TrialEnv) machine.Definition[experiment.TrialConstant, experiment.TrialState, experiment.TrialResult] {
	return machine.Definition[experiment.TrialConstant, experiment.TrialState, experiment.TrialResult]{
		BuildConstantState: func() (experiment.TrialConstant, error) {
			return env.Constant(), nil
		},

		BuildInitialState: func(constant experiment.TrialConstant) (experiment.TrialState, error) {
			start := constant.Calendar.SoonestSessionInstant(constant.Window.Start)
			portfolio := types.NewPortfolio(constant.InitialCash)

			symbols := sortedSymbols(constant.Symbols)
			budget := constant.InitialCash.Div(decimal.NewFromInt(int64(len(symbols))))

			for _, symbol := range symbols {
				quote := constant.Store.MostRecentQuote(symbol, start)
				if quote.IsNone() {
					continue
				}

				price := decimal.NewFromFloat(quote.Unwrap().Close)
				if price.Sign() <= 0 {
					continue
				}

				quantity := budget.Sub(constant.Commission).Div(price).Floor().IntPart()
				if quantity <= 0 {
					continue
				}

				next, err := ledger.BuyShares(portfolio, constant.Commission, symbol, quantity, start, constant.Store, false)
				if err != nil {
					return experiment.TrialState{}, err
				}

				portfolio = next
			}

			return experiment.TrialState{
				Time:      start,
				Portfolio: portfolio,
				Memory:    nil,
			}, nil
		},

		IsFinalState: func(constant experiment.TrialConstant, current experiment.TrialState) bool {
			return !current.Time.Before(constant.Window.End)
		},

		BuildNextState: func(constant experiment.TrialConstant, current experiment.TrialState) (experiment.TrialState, error) {
			return experiment.TrialState{
				Time:      constant.Calendar.SoonestSessionInstant(current.Time.Add(constant.Step)),
				Portfolio: current.Portfolio,
				Memory:    nil,
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
