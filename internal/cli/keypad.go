package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"

	"keycalc/internal/app"
	"keycalc/internal/config"
	"keycalc/internal/storage"
	"keycalc/internal/telemetry"
)

func newKeypadCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "keypad",
		Short: "Run the keypad calculator in the terminal",
		Long: `Draw the calculator's character LCD and drive it with the 16 keypad
keys: 0-9 . + - * / =. Press ? inside for the key layers and commands.

The history file is loaded on start and saved on exit. When --config is
given the file is watched and display and engine changes apply live.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKeypad(cmd, opts)
		},
	}
}

func runKeypad(cmd *cobra.Command, opts *options) error {
	rt, err := opts.start(cmd, true)
	if err != nil {
		return err
	}
	defer rt.Close()
	log := telemetry.Component(rt.log, "keypad")

	a := app.NewApp(rt.cfg, log, rt.metrics)
	historyPath := rt.cfg.History.Path
	if historyPath != "" {
		entries, err := storage.LoadCSV(historyPath)
		switch {
		case err == nil:
			a.Session.SetHistory(entries)
		case !errors.Is(err, fs.ErrNotExist):
			log.Warn().Err(err).Str("file", historyPath).Msg("ignoring unreadable history")
		}
	}

	s, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("cannot create screen: %w", err)
	}
	if err := s.Init(); err != nil {
		return fmt.Errorf("cannot init screen: %w", err)
	}
	defer s.Fini()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	if opts.configPath != "" {
		err := config.Watch(ctx, opts.configPath, func(cfg *config.Config, err error) {
			if err != nil {
				log.Warn().Err(err).Msg("config reload rejected")
				return
			}
			if err := app.PostConfig(s, cfg); err != nil {
				log.Warn().Err(err).Msg("config reload dropped")
			}
		})
		if err != nil {
			log.Warn().Err(err).Str("config", opts.configPath).Msg("config watch unavailable")
		}
	}

	runErr := a.Run(ctx, s)
	if historyPath != "" {
		if err := storage.SaveCSV(historyPath, a.Session.History()); err != nil {
			log.Error().Err(err).Str("file", historyPath).Msg("saving history failed")
		}
	}
	if errors.Is(runErr, context.Canceled) {
		return nil
	}
	return runErr
}
