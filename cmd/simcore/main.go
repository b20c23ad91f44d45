// Command simcore runs discrete-event simulations defined in a YAML
// component file, either round-by-round (synchronous) or event-by-event
// (event-driven), following the divinesense CLI's cobra/viper/godotenv
// wiring pattern.
package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hrygo/simcore/internal/engine"
	"github.com/hrygo/simcore/internal/inputgen"
	"github.com/hrygo/simcore/internal/loader"
	"github.com/hrygo/simcore/internal/runconfig"
	"github.com/hrygo/simcore/internal/version"
)

var cfg = runconfig.FromEnv()

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "simcore",
		Short:   "Discrete-event simulation engine",
		Version: version.String(),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
				slog.Warn("failed to load .env", "error", err)
			}
			return bindFlags(cmd)
		},
	}

	root.AddCommand(runCmd(), metricsServeCmd())
	return root
}

func bindFlags(cmd *cobra.Command) error {
	return viper.BindPFlags(cmd.Flags())
}

func runCmd() *cobra.Command {
	mode := "sync"
	inputMode := "random"
	initialInputs := ""

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a simulation from a component definition file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runSimulation(cfg, mode, inputMode, initialInputs)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&cfg.ComponentFile, "component-file", "f", cfg.ComponentFile, "path to the YAML component definition")
	flags.StringVarP(&cfg.OutputPath, "output", "o", cfg.OutputPath, "path to write the execution log to (stdout if empty)")
	flags.StringVar(&cfg.OutputFormat, "format", cfg.OutputFormat, "execution log format: json or csv")
	flags.IntVar(&cfg.MaxRounds, "max-rounds", cfg.MaxRounds, "stop after this many rounds/events (0 = unbounded)")
	flags.Float64Var(&cfg.MaxTime, "max-time", cfg.MaxTime, "stop once simulated time reaches this value (0 = unbounded)")
	flags.IntVar(&cfg.MaxEvents, "max-events", cfg.MaxEvents, "stop after this many events processed (0 = unbounded, event-driven mode only)")
	flags.IntVar(&cfg.MaxWorkers, "max-workers", cfg.MaxWorkers, "maximum tasks executed concurrently for one activated batch")
	flags.Uint64Var(&cfg.Seed, "rng-seed", cfg.Seed, "seed for the random input generator")
	flags.Float64Var(&cfg.InputInterval, "input-interval", cfg.InputInterval, "recurring input regeneration cadence in simulated time (0 = disabled, event-driven mode only)")
	flags.StringVar(&mode, "mode", mode, "execution mode: sync or async")
	flags.StringVar(&inputMode, "input-mode", inputMode, "input generation mode: random, fixed, or interactive")
	flags.StringVar(&initialInputs, "initial-inputs", initialInputs, "path to a JSON file of pre-recorded input records, one object per round (required when --input-mode=fixed)")

	return cmd
}

func metricsServeCmd() *cobra.Command {
	addr := cfg.MetricsAddr
	cmd := &cobra.Command{
		Use:   "metrics-serve",
		Short: "Serve /metrics from a fresh simcore metrics registry (not fed by any run)",
		RunE: func(cmd *cobra.Command, args []string) error {
			m := engine.NewMetrics()
			mux := http.NewServeMux()
			mux.Handle("/metrics", m.Handler())
			slog.Info("serving metrics", "addr", addr)
			return http.ListenAndServe(addr, mux)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", addr, "address to serve /metrics on")
	return cmd
}

func runSimulation(cfg *runconfig.Config, mode, inputMode, initialInputs string) error {
	components, err := loader.LoadFile(cfg.ComponentFile)
	if err != nil {
		return err
	}
	if len(components) == 0 {
		return fmt.Errorf("component file defines no components")
	}
	component := components[0]

	source, err := inputSource(component, inputMode, cfg.Seed, initialInputs)
	if err != nil {
		return err
	}
	clock := engine.NewSimulationTime(0)
	termination := buildTermination(cfg)
	logger := slog.Default()

	metrics := engine.NewMetrics()

	var log *engine.ExecutionLog
	switch mode {
	case "sync":
		exec := engine.NewSynchronousExecutor(component, clock, termination, source, logger)
		exec.Metrics = metrics
		log, err = exec.Run()
	case "async":
		exec := engine.NewEventDrivenExecutor(component, clock, termination, source, cfg.MaxWorkers, logger)
		exec.InputInterval = cfg.InputInterval
		exec.Metrics = metrics
		log, err = exec.Run()
	default:
		return fmt.Errorf("unknown mode %q (expected sync or async)", mode)
	}
	if err != nil {
		return err
	}

	return writeLog(log, cfg)
}

func inputSource(c *engine.Component, mode string, seed uint64, initialInputs string) (engine.InputSource, error) {
	fields := make([]inputgen.FieldSpec, 0, len(c.Inputs))
	for _, name := range c.Inputs {
		fields = append(fields, inputgen.FieldSpec{Name: name, Kind: inputgen.KindFloat, Min: 0, Max: 100})
	}

	switch mode {
	case "interactive":
		return &inputgen.Interactive{Fields: fields, In: os.Stdin, Out: os.Stdout}, nil
	case "fixed":
		if initialInputs == "" {
			return nil, fmt.Errorf("--input-mode=fixed requires --initial-inputs to name a JSON file of input records")
		}
		sequence, err := inputgen.LoadFixedSequence(initialInputs)
		if err != nil {
			return nil, err
		}
		return &inputgen.Fixed{Sequence: sequence}, nil
	default:
		return inputgen.NewRandom(fields, seed), nil
	}
}

func buildTermination(cfg *runconfig.Config) engine.TerminationCondition {
	var conds []engine.TerminationCondition
	if cfg.MaxRounds > 0 {
		conds = append(conds, &engine.MaxRounds{Limit: cfg.MaxRounds})
	}
	if cfg.MaxTime > 0 {
		conds = append(conds, &engine.MaxTime{Limit: cfg.MaxTime})
	}
	if cfg.MaxEvents > 0 {
		conds = append(conds, &engine.MaxEvents{Limit: cfg.MaxEvents})
	}
	if len(conds) == 1 {
		return conds[0]
	}
	return &engine.Composite{Conditions: conds}
}

func writeLog(log *engine.ExecutionLog, cfg *runconfig.Config) error {
	out := os.Stdout
	if cfg.OutputPath != "" {
		f, err := os.Create(cfg.OutputPath)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	switch cfg.OutputFormat {
	case "csv":
		return log.WriteCSV(out)
	default:
		return log.WriteJSON(out)
	}
}
