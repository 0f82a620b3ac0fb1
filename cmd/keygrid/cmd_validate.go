package main

import (
	"fmt"

	"keygrid/internal/logging"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// validateCmd checks every occupied label, even when strict is off
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the layout config and every occupied label",
	Args:  cobra.NoArgs,
	RunE:  runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	log := logging.Get(logging.CategoryConfig)
	out := cmd.OutOrStdout()

	strict := *cfg
	strict.Strict = true
	if err := strict.Validate(); err != nil {
		log.Warn("layout config invalid", zap.String("path", configPath), zap.Error(err))
		return fmt.Errorf("%s: invalid layout config:\n%w", configPath, err)
	}

	set := cfg.OccupiedSet()
	fmt.Fprintf(out, "%s: OK (%s, %dx%d, %d of %d positions wired)\n",
		configPath, cfg.Name, cfg.Matrix.Rows, cfg.Matrix.Cols, set.Len(), cfg.Matrix.Rows*cfg.Matrix.Cols)
	if dups := len(cfg.Occupied) - set.Len(); dups > 0 {
		fmt.Fprintf(out, "note: %d duplicate occupied entries\n", dups)
	}
	return nil
}
