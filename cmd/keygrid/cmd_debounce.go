package main

import (
	"fmt"

	"keygrid/internal/debounce"
	"keygrid/internal/logging"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var debounceAlgorithm string

// debounceCmd replays a recorded matrix trace through a debounce algorithm
var debounceCmd = &cobra.Command{
	Use:   "debounce [trace.yaml]",
	Short: "Replay a raw matrix trace through sym_defer_pr or asym_defer_pk",
	Long: `Reads a YAML trace of raw matrix states and prints the debounced key
transitions the firmware would report.

Trace format:
  algorithm: asym        # optional, sym or asym
  settings:              # optional, ms; unset fields use these defaults
    debounce: 5          # down and up default to this
    down: 5
    up: 5
    mute: 20             # 0 disables the mute window
  frames:
    - at: 10
      pressed: [k4D]
    - at: 12
      pressed: []

Labels use the configured matrix prefix and size.`,
	Args: cobra.ExactArgs(1),
	RunE: runDebounce,
}

func runDebounce(cmd *cobra.Command, args []string) error {
	log := logging.Get(logging.CategoryDebounce)

	tr, err := debounce.LoadTrace(args[0])
	if err != nil {
		return err
	}

	algorithm := debounceAlgorithm
	if algorithm == "" {
		algorithm = tr.Algorithm
	}
	if algorithm == "" {
		algorithm = "sym"
	}

	events, err := debounce.Replay(tr, debounce.ReplayOptions{
		Algorithm: algorithm,
		Prefix:    cfg.Matrix.Prefix,
		Rows:      cfg.Matrix.Rows,
		Cols:      cfg.Matrix.Cols,
		Settings:  tr.Settings.Resolve(),
	})
	if err != nil {
		return fmt.Errorf("replay %s: %w", args[0], err)
	}
	log.Debug("trace replayed",
		zap.String("algorithm", algorithm),
		zap.Int("frames", len(tr.Frames)),
		zap.Int("events", len(events)))

	out := cmd.OutOrStdout()
	for _, e := range events {
		fmt.Fprintln(out, e)
	}
	return nil
}
