package experiment

import (
	"encoding/json"
	"reflect"
	"time"

	"github.com/invopop/jsonschema"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/rxtech-lab/argo-montecarlo/pkg/errors"
)

// Config is the YAML document the CLI feeds an experiment run from.
type Config struct {
	// Experiment holds the experiment-level parameters.
	Experiment Params `yaml:"experiment" json:"experiment" jsonschema:"title=Experiment,description=Experiment-level parameters"`
	// Strategy names the registered strategy to run.
	Strategy string `yaml:"strategy" json:"strategy" jsonschema:"title=Strategy,description=Name of the strategy to run"`
	// StrategyParams parameterizes the strategy.
	StrategyParams StrategyParams `yaml:"strategy_params" json:"strategy_params" jsonschema:"title=Strategy Params,description=Numeric strategy parameters"`
}

// ParseConfig unmarshals and validates a Config document.
func ParseConfig(content []byte) (Config, error) {
	config := Config{
		Experiment:     DefaultParams(),
		Strategy:       "",
		StrategyParams: StrategyParams{},
	}

	if err := yaml.Unmarshal(content, &config); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse experiment config", err)
	}

	if config.Strategy == "" {
		return Config{}, errors.New(errors.ErrCodeInvalidConfiguration, "config names no strategy")
	}

	if err := config.Experiment.Validate(); err != nil {
		return Config{}, err
	}

	return config, nil
}

// GenerateSchema generates a JSON schema for the Config.
func (c *Config) GenerateSchema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		ExpandedStruct:             true,
		AllowAdditionalProperties:  false,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			if t == reflect.TypeOf(decimal.Decimal{}) {
				return &jsonschema.Schema{
					Type:        "string",
					Description: "decimal number as a string",
				}
			}

			if t == reflect.TypeOf(time.Duration(0)) {
				return &jsonschema.Schema{
					Type:        "string",
					Description: "Go duration string, e.g. 24h",
				}
			}

			return nil
		},
	}

	schema := reflector.Reflect(c)
	schema.Title = "experiment-config"
	schema.Description = "Configuration schema for a randomized-trial experiment"
	schema.Version = "http://json-schema.org/draft-07/schema#"

	return schema
}

// GenerateSchemaJSON generates a JSON schema string for the Config.
func (c *Config) GenerateSchemaJSON() (string, error) {
	schemaBytes, err := json.MarshalIndent(c.GenerateSchema(), "", "  ")
	if err != nil {
		return "", err
	}

	return string(schemaBytes), nil
}
