package experiment

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rxtech-lab/argo-montecarlo/pkg/errors"
)

const sampleConfig = `
experiment:
  start: 2020-01-01T00:00:00Z
  end: 2021-01-01T00:00:00Z
  trading_period: 720h
  step: 24h
  initial_cash: "25000"
  commission: "1.5"
  trial_count: 50
  seed: 7
strategy: bollinger_band
strategy_params:
  period: 20
  width: 2
`

func TestParseConfig(t *testing.T) {
	config, err := ParseConfig([]byte(sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "bollinger_band", config.Strategy)
	assert.Equal(t, 720*time.Hour, config.Experiment.TradingPeriod)
	assert.Equal(t, 24*time.Hour, config.Experiment.Step)
	assert.True(t, config.Experiment.InitialCash.Equal(decimal.NewFromInt(25000)))
	assert.True(t, config.Experiment.Commission.Equal(decimal.NewFromFloat(1.5)))
	assert.Equal(t, 50, config.Experiment.TrialCount)
	assert.Equal(t, int64(7), config.Experiment.Seed)
	assert.Equal(t, 20.0, config.StrategyParams.Get("period", 0))
	assert.Equal(t, 2.0, config.StrategyParams.Get("width", 0))
}

func TestParseConfigDefaults(t *testing.T) {
	doc := `
experiment:
  start: 2020-01-01T00:00:00Z
  end: 2021-01-01T00:00:00Z
strategy: buy_and_hold
`

	config, err := ParseConfig([]byte(doc))
	require.NoError(t, err)

	defaults := DefaultParams()
	assert.Equal(t, defaults.TradingPeriod, config.Experiment.TradingPeriod)
	assert.Equal(t, defaults.Step, config.Experiment.Step)
	assert.True(t, config.Experiment.InitialCash.Equal(defaults.InitialCash))
	assert.Equal(t, defaults.TrialCount, config.Experiment.TrialCount)
	assert.Equal(t, int64(0), config.Experiment.Seed)
}

func TestParseConfigRejectsMissingStrategy(t *testing.T) {
	doc := `
experiment:
  start: 2020-01-01T00:00:00Z
  end: 2021-01-01T00:00:00Z
`

	_, err := ParseConfig([]byte(doc))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidConfiguration))
}

func TestParseConfigRejectsBadDuration(t *testing.T) {
	doc := `
experiment:
  start: 2020-01-01T00:00:00Z
  end: 2021-01-01T00:00:00Z
  trading_period: one year
strategy: buy_and_hold
`

	_, err := ParseConfig([]byte(doc))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidConfiguration))
}

func TestParseConfigRejectsInvertedWindow(t *testing.T) {
	doc := `
experiment:
  start: 2021-01-01T00:00:00Z
  end: 2020-01-01T00:00:00Z
strategy: buy_and_hold
`

	_, err := ParseConfig([]byte(doc))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidConfiguration))
}

func TestParamsValidate(t *testing.T) {
	valid := DefaultParams()
	valid.Start = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	valid.End = time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, valid.Validate())

	missingStart := valid
	missingStart.Start = time.Time{}
	assert.Error(t, missingStart.Validate())

	negativeCommission := valid
	negativeCommission.Commission = decimal.NewFromInt(-1)
	assert.Error(t, negativeCommission.Validate())

	zeroCash := valid
	zeroCash.InitialCash = decimal.Zero
	assert.Error(t, zeroCash.Validate())
}

func TestGenerateSchemaJSON(t *testing.T) {
	config := Config{}

	schema, err := config.GenerateSchemaJSON()
	require.NoError(t, err)

	assert.Contains(t, schema, "experiment-config")
	assert.Contains(t, schema, "trading_period")
	assert.Contains(t, schema, "strategy_params")
}

func TestStrategyParams(t *testing.T) {
	params := StrategyParams{"period": 20, "width": 2.5}

	assert.Equal(t, 20, params.GetInt("period", 0))
	assert.Equal(t, 2.5, params.Get("width", 0))
	assert.Equal(t, 14, params.GetInt("missing", 14))

	clone := params.Clone()
	clone["period"] = 50
	assert.Equal(t, 20.0, params["period"], "clone must not alias the original")
}
