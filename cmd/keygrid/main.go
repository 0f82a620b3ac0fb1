package main

import (
	"fmt"
	"os"

	"keygrid/internal/config"
	"keygrid/internal/logging"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Global flags
	verbose    bool
	configPath string

	// Loaded in PersistentPreRunE
	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "keygrid",
	Short: "keygrid - keyboard LAYOUT matrix generator",
	Long: `keygrid emits the positional LAYOUT matrix for a keyboard firmware header.

Every (row, column) of the key matrix becomes one token: the cell's label
(k<row><col>) if a key is wired there, or KC_NO if not. Rows print one per
line as macro-continued initializers, ready to paste into the LAYOUT define.

Run without arguments to print the Microsoft Sculpt wired conversion layout,
or the layout in ./keygrid.yaml if present.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded

		if err := logging.Initialize(cfg.Logging.Options(verbose)); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger = logging.Get(logging.CategoryBoot)
		logger.Debug("config loaded", zap.String("path", configPath), zap.String("layout", cfg.Name))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync()
	},
	RunE: runGenerate,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "Layout config file (defaults apply if missing)")

	addGenerateFlags(rootCmd)
	addGenerateFlags(generateCmd)
	watchCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write to file instead of stdout")
	debounceCmd.Flags().StringVarP(&debounceAlgorithm, "algorithm", "a", "", "Debounce algorithm: sym or asym (default from trace, else sym)")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(debounceCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
