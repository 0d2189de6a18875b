package strategy

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/rxtech-lab/argo-montecarlo/internal/calendar"
	"github.com/rxtech-lab/argo-montecarlo/internal/experiment"
	"github.com/rxtech-lab/argo-montecarlo/internal/machine"
	"github.com/rxtech-lab/argo-montecarlo/internal/pricehistory"
	"github.com/rxtech-lab/argo-montecarlo/internal/types"
	"github.com/rxtech-lab/argo-montecarlo/pkg/errors"
)

type StrategyTestSuite struct {
	suite.Suite
	cal *calendar.Calendar
}

func TestStrategySuite(t *testing.T) {
	suite.Run(t, new(StrategyTestSuite))
}

func (suite *StrategyTestSuite) SetupTest() {
	cal, err := calendar.New(
		calendar.Weekdays(calendar.ClockTime{Hour: 9, Minute: 30}, calendar.ClockTime{Hour: 16}),
		time.UTC,
		time.Minute,
	)
	suite.Require().NoError(err)
	suite.cal = cal
}

// dailyQuotes builds one quote per given trading day at 10:00 UTC.
func dailyQuotes(symbol string, days []time.Time, closes []float64) *pricehistory.Index {
	quotes := make([]types.QuoteRecord, len(days))
	for i, day := range days {
		quotes[i] = types.QuoteRecord{
			Symbol: symbol,
			Time:   day,
			Open:   closes[i],
			High:   closes[i],
			Low:    closes[i],
			Close:  closes[i],
		}
	}

	return pricehistory.NewIndex(symbol, quotes)
}

func tradingDay(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 10, 0, 0, 0, time.UTC)
}

func (suite *StrategyTestSuite) TestBuyAndHoldSplitsCashAndHolds() {
	// Mon Jan 6 through Fri Jan 10, 2020.
	days := []time.Time{
		tradingDay(2020, 1, 6),
		tradingDay(2020, 1, 7),
		tradingDay(2020, 1, 8),
		tradingDay(2020, 1, 9),
		tradingDay(2020, 1, 10),
	}

	store := pricehistory.NewStore(nil)
	store.AddIndex(dailyQuotes("AAA", days, []float64{10, 10, 10, 10, 10}))
	store.AddIndex(dailyQuotes("BBB", days, []float64{10, 12, 14, 16, 20}))

	env := experiment.TrialEnv{
		Params: experiment.Params{
			InitialCash: decimal.NewFromInt(1000),
			Commission:  decimal.Zero,
			Step:        24 * time.Hour,
		},
		Symbols:  []string{"BBB", "AAA"},
		Window:   types.Interval{Start: days[0], End: days[4]},
		Calendar: suite.cal,
		Store:    store,
	}

	result, err := machine.Run(NewBuyAndHold().Build(env))
	suite.Require().NoError(err)

	// 500 per symbol at 10 buys 50 shares each; BBB doubles.
	suite.Equal(int64(50), result.Portfolio.Position("AAA"))
	suite.Equal(int64(50), result.Portfolio.Position("BBB"))
	suite.True(result.Portfolio.Cash.IsZero(), "got cash %s", result.Portfolio.Cash)
	suite.InDelta(1500, result.FinalValue, 1e-9)
	suite.Equal(days[4], result.End)
}

func (suite *StrategyTestSuite) TestBuyAndHoldSkipsUnaffordableSymbol() {
	days := []time.Time{tradingDay(2020, 1, 6), tradingDay(2020, 1, 7)}

	store := pricehistory.NewStore(nil)
	store.AddIndex(dailyQuotes("AAA", days, []float64{10, 10}))
	store.AddIndex(dailyQuotes("BBB", days, []float64{500, 500}))

	env := experiment.TrialEnv{
		Params: experiment.Params{
			InitialCash: decimal.NewFromInt(200),
			Commission:  decimal.Zero,
			Step:        24 * time.Hour,
		},
		Symbols:  []string{"AAA", "BBB"},
		Window:   types.Interval{Start: days[0], End: days[1]},
		Calendar: suite.cal,
		Store:    store,
	}

	result, err := machine.Run(NewBuyAndHold().Build(env))
	suite.Require().NoError(err)

	// 100 per symbol: 10 shares of AAA, nothing of BBB at 500.
	suite.Equal(int64(10), result.Portfolio.Position("AAA"))
	suite.Equal(int64(0), result.Portfolio.Position("BBB"))
	suite.True(result.Portfolio.Cash.Equal(decimal.NewFromInt(100)))
}

func (suite *StrategyTestSuite) TestBollingerBuysDipSellsSpike() {
	// Warm-up Thu Jan 2, Fri Jan 3, and the window start Mon Jan 6 are all
	// flat at 100. The dip to 90 breaks the lower band, the run to 120
	// breaks the upper band.
	days := []time.Time{
		tradingDay(2020, 1, 2),
		tradingDay(2020, 1, 3),
		tradingDay(2020, 1, 6),
		tradingDay(2020, 1, 7),
		tradingDay(2020, 1, 8),
		tradingDay(2020, 1, 9),
		tradingDay(2020, 1, 10),
	}

	store := pricehistory.NewStore(nil)
	store.AddIndex(dailyQuotes("AAA", days, []float64{100, 100, 100, 90, 100, 120, 120}))

	env := experiment.TrialEnv{
		Params: experiment.Params{
			InitialCash: decimal.NewFromInt(1000),
			Commission:  decimal.Zero,
			Step:        24 * time.Hour,
		},
		StrategyParams: experiment.StrategyParams{"period": 3, "width": 1},
		Symbols:        []string{"AAA"},
		Window:         types.Interval{Start: days[2], End: days[6]},
		Calendar:       suite.cal,
		Store:          store,
	}

	result, err := machine.Run(NewBollingerBand().Build(env))
	suite.Require().NoError(err)

	// Bought 11 at 90 on Tue, sold 11 at 120 on Thu: 10 + 1320 cash.
	suite.Require().Len(result.Portfolio.Transactions, 2)
	suite.Equal(types.TransactionKindBuy, result.Portfolio.Transactions[0].Kind)
	suite.Equal(int64(11), result.Portfolio.Transactions[0].Quantity)
	suite.Equal(types.TransactionKindSell, result.Portfolio.Transactions[1].Kind)
	suite.Equal(int64(11), result.Portfolio.Transactions[1].Quantity)
	suite.Equal(int64(0), result.Portfolio.Position("AAA"))
	suite.InDelta(1330, result.FinalValue, 1e-9)
}

func (suite *StrategyTestSuite) TestBollingerInsufficientWarmup() {
	days := []time.Time{tradingDay(2020, 1, 6), tradingDay(2020, 1, 7)}

	store := pricehistory.NewStore(nil)
	store.AddIndex(dailyQuotes("AAA", days, []float64{100, 100}))

	env := experiment.TrialEnv{
		Params: experiment.Params{
			InitialCash: decimal.NewFromInt(1000),
			Commission:  decimal.Zero,
			Step:        24 * time.Hour,
		},
		StrategyParams: experiment.StrategyParams{"period": 5},
		Symbols:        []string{"AAA"},
		Window:         types.Interval{Start: days[0], End: days[1]},
		Calendar:       suite.cal,
		Store:          store,
	}

	_, err := machine.Run(NewBollingerBand().Build(env))
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInitialStateFailed))
	suite.True(errors.HasCode(err, errors.ErrCodeInsufficientData))
}

func (suite *StrategyTestSuite) TestBollingerRequiredLookback() {
	strategy := NewBollingerBand()
	params := experiment.Params{
		Start: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		Step:  24 * time.Hour,
	}

	lookback := strategy.Lookback(params, experiment.StrategyParams{"period": 10}, suite.cal)
	suite.Greater(lookback, time.Duration(0))

	// Buy-and-hold needs no warm-up.
	suite.Equal(time.Duration(0), NewBuyAndHold().Lookback(params, nil, suite.cal))
}

func (suite *StrategyTestSuite) TestBollingerRejectsBadParams() {
	env := experiment.TrialEnv{
		StrategyParams: experiment.StrategyParams{"period": -1},
		Calendar:       suite.cal,
	}

	_, err := machine.Run(NewBollingerBand().Build(env))
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidParameter))
}

func (suite *StrategyTestSuite) TestRegistry() {
	registry := DefaultRegistry()

	suite.Equal([]string{"bollinger_band", "buy_and_hold"}, registry.ListStrategies())

	strategy, err := registry.GetStrategy("buy_and_hold")
	suite.NoError(err)
	suite.Equal("buy_and_hold", strategy.Name)

	_, err = registry.GetStrategy("momentum")
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeUnknownStrategy))

	err = registry.RegisterStrategy(experiment.Strategy{Name: "buy_and_hold"})
	suite.Error(err)
}
