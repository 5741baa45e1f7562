package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"keycalc/internal/calc"
)

func newEvalCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eval EXPR...",
		Short: "Evaluate expressions and print the results",
		Long: `Evaluate each argument as one keypad input and print its result.

Integrals print the value and then the error estimate on its own line.
The command fails if any expression fails.`,
		Example: `  # Precedence and functions
  keycalc eval '2+3*4' 'sin(30)' 'root(2)'

  # Clauses and integrals
  keycalc eval '1:2+3' '[0,1](x^2)'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := opts.start(cmd, false)
			if err != nil {
				return err
			}
			defer rt.Close()

			eng := calc.New(rt.cfg.EngineOptions())
			failed := 0
			for _, expr := range args {
				r := rt.evaluate(eng, expr)
				if err := printResult(cmd.OutOrStdout(), opts.jsonOutput, expr, r); err != nil {
					return err
				}
				if !r.OK() {
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d expressions failed", failed, len(args))
			}
			return nil
		},
	}
	return cmd
}
