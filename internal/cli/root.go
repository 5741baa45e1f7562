// Package cli is the keycalc command line.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"keycalc/internal/calc"
	"keycalc/internal/config"
	"keycalc/internal/telemetry"
)

// tuiLogFile receives the keypad UI's log when the config points logging
// at the terminal.
const tuiLogFile = "keycalc.log"

// options holds the persistent flags.
type options struct {
	configPath    string
	logLevel      string
	jsonOutput    bool
	metricsListen string
}

// Execute runs the root command.
func Execute(ctx context.Context, version string) error {
	return NewRootCommand(version).ExecuteContext(ctx)
}

// NewRootCommand builds the command tree. Without a subcommand it starts the
// keypad UI.
func NewRootCommand(version string) *cobra.Command {
	opts := &options{}
	rootCmd := &cobra.Command{
		Use:   "keycalc",
		Short: "Keypad calculator with integrals",
		Long: `keycalc evaluates calculator expressions the way a 16-key keypad
calculator does: + - * / ^, sin( root( ln( s_(, the constants pi and e,
':' separated clauses and definite integrals written [a,b](f) over x.

Run without a subcommand to get the keypad UI.`,
		Version:      version,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKeypad(cmd, opts)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "output in JSON format")
	rootCmd.PersistentFlags().StringVar(&opts.metricsListen, "metrics-listen", "", "serve Prometheus metrics on this address")

	rootCmd.AddCommand(newEvalCommand(opts))
	rootCmd.AddCommand(newReplCommand(opts))
	rootCmd.AddCommand(newKeypadCommand(opts))
	rootCmd.AddCommand(newHistoryCommand(opts))
	rootCmd.AddCommand(newConfigCommand(opts))

	return rootCmd
}

// env is what every command needs once flags are parsed.
type env struct {
	cfg     *config.Config
	log     zerolog.Logger
	metrics *telemetry.Metrics
	closer  io.Closer
}

// load reads the config, applies flag overrides and validates the result.
func (o *options) load() (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.logLevel != "" {
		cfg.Logging.Level = o.logLevel
	}
	if o.metricsListen != "" {
		cfg.Metrics.Enabled = true
		cfg.Metrics.Listen = o.metricsListen
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// start builds the logger and metrics. With tui set, terminal log output is
// redirected to a file.
func (o *options) start(cmd *cobra.Command, tui bool) (*env, error) {
	cfg, err := o.load()
	if err != nil {
		return nil, err
	}
	logging := cfg.Logging
	if tui && (logging.Output == "stdout" || logging.Output == "stderr") {
		logging.Output = tuiLogFile
	}
	log, closer, err := telemetry.NewLogger(logging)
	if err != nil {
		return nil, fmt.Errorf("failed to open log output: %w", err)
	}
	log = log.With().Str("session", uuid.NewString()).Logger()
	log.Debug().
		Str("command", cmd.Name()).
		Str("config", o.configPath).
		Msg("starting")

	rt := &env{cfg: cfg, log: log, metrics: telemetry.NewMetrics(), closer: closer}
	if cfg.Metrics.Enabled {
		rt.metrics.Serve(cmd.Context(), cfg.Metrics.Listen, cfg.Metrics.Path, telemetry.Component(log, "metrics"))
	}
	return rt, nil
}

func (rt *env) Close() error {
	return rt.closer.Close()
}

// evaluate runs expr on eng, recording metrics and a log line.
func (rt *env) evaluate(eng *calc.Engine, expr string) calc.Result {
	start := time.Now()
	r := eng.Evaluate(expr)
	elapsed := time.Since(start)
	rt.metrics.Observe(r, elapsed)
	telemetry.LogEvaluation(rt.log, expr, r, elapsed)
	return r
}

// evalRecord is the JSON form of one evaluation.
type evalRecord struct {
	Expr     string `json:"expr"`
	Result   string `json:"result"`
	Estimate string `json:"estimate,omitempty"`
	Error    string `json:"error,omitempty"`
	Kind     string `json:"kind,omitempty"`
}

func printResult(w io.Writer, jsonOutput bool, expr string, r calc.Result) error {
	if jsonOutput {
		rec := evalRecord{Expr: expr, Result: r.Text, Estimate: r.Estimate}
		if r.Err != nil {
			rec.Result = ""
			rec.Error = r.Err.Error()
			var cerr *calc.Error
			if errors.As(r.Err, &cerr) {
				rec.Kind = cerr.Kind().String()
			}
		}
		return json.NewEncoder(w).Encode(rec)
	}
	if _, err := fmt.Fprintln(w, r.Text); err != nil {
		return err
	}
	if r.Estimate != "" {
		_, err := fmt.Fprintln(w, r.Estimate)
		return err
	}
	return nil
}
