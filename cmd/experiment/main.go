package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/moznion/go-optional"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/rxtech-lab/argo-montecarlo/internal/calendar"
	"github.com/rxtech-lab/argo-montecarlo/internal/datagen"
	"github.com/rxtech-lab/argo-montecarlo/internal/experiment"
	"github.com/rxtech-lab/argo-montecarlo/internal/logger"
	"github.com/rxtech-lab/argo-montecarlo/internal/pricehistory"
	"github.com/rxtech-lab/argo-montecarlo/internal/strategy"
	"github.com/rxtech-lab/argo-montecarlo/internal/version"
)

// discoverSources maps each CSV file matched by the glob to an instrument
// symbol taken from its base name, so data/AAPL.csv trades as AAPL.
func discoverSources(glob string) (map[string]string, error) {
	files, err := filepath.Glob(glob)
	if err != nil {
		return nil, err
	}

	sources := make(map[string]string, len(files))
	for _, file := range files {
		symbol := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
		sources[symbol] = file
	}

	return sources, nil
}

// runAction loads the config and price data, resolves the strategy, and
// executes the full randomized experiment.
func runAction(ctx context.Context, cmd *cli.Command) error {
	level := zapcore.WarnLevel
	if cmd.Bool("verbose") {
		level = zapcore.DebugLevel
	}

	appLogger, err := logger.NewLoggerWithLevel(level)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer appLogger.Sync()

	content, err := os.ReadFile(cmd.String("config"))
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}

	config, err := experiment.ParseConfig(content)
	if err != nil {
		return err
	}

	cal, err := calendar.NYSE()
	if err != nil {
		return err
	}

	sources, err := discoverSources(cmd.String("data"))
	if err != nil {
		return fmt.Errorf("failed to resolve data glob: %w", err)
	}

	if len(sources) == 0 {
		return fmt.Errorf("no data files match %q", cmd.String("data"))
	}

	store := pricehistory.NewStore(appLogger)
	store.Load(sources, optional.None[time.Time](), optional.None[time.Time]())

	if len(store.Symbols()) == 0 {
		return fmt.Errorf("no instrument loaded any usable quotes")
	}

	selected, err := strategy.DefaultRegistry().GetStrategy(config.Strategy)
	if err != nil {
		return err
	}

	seed := config.Experiment.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	rng := rand.New(rand.NewSource(seed))

	generator := experiment.SetGenerator(experiment.SingletonSets)
	if setSize := cmd.Int("set-size"); setSize > 1 {
		generator = experiment.RandomSets(int(setSize), int(cmd.Int("set-count")), rng)
	}

	sets := generator(store.Symbols())
	if len(sets) == 0 {
		return fmt.Errorf("no instrument sets could be formed from %d instruments", len(store.Symbols()))
	}

	distributor := experiment.Distributor(experiment.DistributeEvenly)
	if cmd.String("distribution") == "multinomial" {
		distributor = experiment.DistributeMultinomial
	}

	allocations := distributor(sets, config.Experiment.TrialCount, rng)

	runner, err := experiment.NewRunner(appLogger, config.Experiment, cal, store)
	if err != nil {
		return err
	}

	bar := progressbar.NewOptions(config.Experiment.TrialCount,
		progressbar.OptionSetDescription(fmt.Sprintf("Running %s", config.Strategy)),
		progressbar.OptionShowCount(),
	)

	onTrialDone := experiment.OnTrialDone(func(completed int, total int) {
		_ = bar.Set(completed)
	})

	result, err := runner.Run(selected, config.StrategyParams, allocations, optional.Some(onTrialDone))
	if err != nil {
		return err
	}

	_ = bar.Finish()
	fmt.Println()

	report, err := yaml.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to render results: %w", err)
	}

	if output := cmd.String("output"); output != "" {
		if err := os.WriteFile(output, report, 0o644); err != nil {
			return fmt.Errorf("failed to write results: %w", err)
		}

		log.Printf("Results written to %s", output)

		return nil
	}

	fmt.Print(string(report))

	return nil
}

// schemaAction prints the JSON schema of the experiment config file.
func schemaAction(ctx context.Context, cmd *cli.Command) error {
	config := experiment.Config{}

	schema, err := config.GenerateSchemaJSON()
	if err != nil {
		return fmt.Errorf("failed to generate schema: %w", err)
	}

	if output := cmd.String("output"); output != "" {
		return os.WriteFile(output, []byte(schema), 0o644)
	}

	fmt.Println(schema)

	return nil
}

// generateAction writes synthetic quote CSVs, one per symbol, into the
// output directory.
func generateAction(ctx context.Context, cmd *cli.Command) error {
	cal, err := calendar.NYSE()
	if err != nil {
		return err
	}

	symbols := strings.Split(cmd.String("symbols"), ",")
	for i, symbol := range symbols {
		symbols[i] = strings.TrimSpace(symbol)
	}

	config := datagen.DefaultConfig()
	config.Start = cmd.Timestamp("start")
	config.Count = int(cmd.Int("count"))
	config.Volatility = cmd.Float("volatility")
	config.Trend = cmd.Float("trend")

	generator := datagen.NewGenerator(int64(cmd.Int("seed")))

	series, err := generator.GenerateMultiSymbol(cal, symbols, config)
	if err != nil {
		return err
	}

	outputDir := cmd.String("output")
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	for symbol, quotes := range series {
		path := filepath.Join(outputDir, symbol+".csv")
		if err := datagen.WriteCSV(path, quotes); err != nil {
			return err
		}

		log.Printf("Wrote %d bars to %s", len(quotes), path)
	}

	return nil
}

// listAction prints the registered strategy names.
func listAction(ctx context.Context, cmd *cli.Command) error {
	for _, name := range strategy.DefaultRegistry().ListStrategies() {
		fmt.Println(name)
	}

	return nil
}

func main() {
	cmd := &cli.Command{
		Name:    "experiment",
		Usage:   "Run randomized trading-strategy experiments over historical data",
		Version: version.GetVersion(),
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Run the experiment described by a config file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "config",
						Aliases:  []string{"c"},
						Usage:    "Path to the experiment config YAML",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "data",
						Aliases: []string{"d"},
						Usage:   "Glob of instrument CSV files; the base name is the symbol",
						Value:   "data/*.csv",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write the results YAML to this file instead of stdout",
					},
					&cli.IntFlag{
						Name:  "set-size",
						Usage: "Instruments per randomized set; 1 runs each instrument alone",
						Value: 1,
					},
					&cli.IntFlag{
						Name:  "set-count",
						Usage: "Number of randomized instrument sets when set-size > 1",
						Value: 10,
					},
					&cli.StringFlag{
						Name:  "distribution",
						Usage: "Trial budget split across sets: even or multinomial",
						Value: "even",
					},
					&cli.BoolFlag{
						Name:    "verbose",
						Aliases: []string{"v"},
						Usage:   "Enable debug logging",
					},
				},
				Action: runAction,
			},
			{
				Name:  "schema",
				Usage: "Print the JSON schema for the experiment config file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write the schema to this file instead of stdout",
					},
				},
				Action: schemaAction,
			},
			{
				Name:  "generate",
				Usage: "Generate synthetic quote CSVs for demos and testing",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "symbols",
						Aliases: []string{"s"},
						Usage:   "Comma-separated instrument symbols to generate",
						Value:   "AAPL,MSFT,GOOG",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Directory the CSV files are written into",
						Value:   "data",
					},
					&cli.TimestampFlag{
						Name:  "start",
						Usage: "First bar date in `YYYY-MM-DD` format",
						Value: time.Date(2020, 1, 2, 9, 30, 0, 0, time.UTC),
						Config: cli.TimestampConfig{
							Layouts: []string{"2006-01-02"},
						},
					},
					&cli.IntFlag{
						Name:  "count",
						Usage: "Number of daily bars per instrument",
						Value: 252,
					},
					&cli.FloatFlag{
						Name:  "volatility",
						Usage: "Per-bar volatility of the price walk",
						Value: 0.01,
					},
					&cli.FloatFlag{
						Name:  "trend",
						Usage: "Total drift across the series, negative for bearish",
						Value: 0.0,
					},
					&cli.IntFlag{
						Name:  "seed",
						Usage: "Random seed for reproducible data",
						Value: 42,
					},
				},
				Action: generateAction,
			},
			{
				Name:   "strategies",
				Usage:  "List the registered strategies",
				Action: listAction,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
