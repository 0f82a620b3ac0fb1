package main

import (
	"fmt"
	"os"

	"keygrid/internal/config"

	"github.com/spf13/cobra"
)

var forceInit bool

// initCmd writes the default layout config
var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write the default (Sculpt) layout config to edit",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runInit,
}

func init() {
	initCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "Overwrite an existing file")
}

func runInit(cmd *cobra.Command, args []string) error {
	path := configPath
	if len(args) == 1 {
		path = args[0]
	}

	if _, err := os.Stat(path); err == nil && !forceInit {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	if err := config.DefaultConfig().Save(path); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
	return nil
}
