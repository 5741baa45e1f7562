package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"keycalc/internal/calc"
	"keycalc/internal/storage"
)

func newReplCommand(opts *options) *cobra.Command {
	var (
		prompt string
		save   bool
	)

	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Evaluate expressions line by line",
		Long: `Read one expression per line from standard input and print each result.

Empty lines are skipped; "quit" or "exit" ends the session. With --save the
evaluated lines are appended to the history file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := opts.start(cmd, false)
			if err != nil {
				return err
			}
			defer rt.Close()

			eng := calc.New(rt.cfg.EngineOptions())
			out := cmd.OutOrStdout()
			var entries []storage.Entry

			scanner := bufio.NewScanner(cmd.InOrStdin())
			for {
				fmt.Fprint(out, prompt)
				if !scanner.Scan() {
					break
				}
				line := strings.TrimSpace(scanner.Text())
				if line == "" {
					continue
				}
				if line == "quit" || line == "exit" {
					break
				}
				start := time.Now()
				r := rt.evaluate(eng, line)
				entries = append(entries, storage.Entry{Time: start, Expr: line, Result: r.Text, Estimate: r.Estimate})
				if err := printResult(out, opts.jsonOutput, line, r); err != nil {
					return err
				}
			}
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("failed to read input: %w", err)
			}

			if save && len(entries) > 0 {
				return appendHistory(rt.cfg.History.Path, rt.cfg.History.Limit, entries)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&prompt, "prompt", "> ", "prompt printed before each line")
	cmd.Flags().BoolVar(&save, "save", false, "append evaluated lines to the history file")

	return cmd
}

// appendHistory adds entries to the history file at path, keeping the
// newest limit entries.
func appendHistory(path string, limit int, entries []storage.Entry) error {
	if path == "" {
		return errors.New("no history file configured")
	}
	existing, err := storage.LoadCSV(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load history: %w", err)
	}
	all := storage.Trim(append(existing, entries...), limit)
	if err := storage.SaveCSV(path, all); err != nil {
		return fmt.Errorf("failed to save history: %w", err)
	}
	return nil
}
