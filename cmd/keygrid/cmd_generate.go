package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"keygrid/internal/config"
	"keygrid/internal/emit"
	"keygrid/internal/logging"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	outputPath   string
	templateName string
)

// generateCmd prints the LAYOUT matrix
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Print the LAYOUT matrix for the configured keyboard",
	Args:  cobra.NoArgs,
	RunE:  runGenerate,
}

func addGenerateFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write to file instead of stdout")
	cmd.Flags().StringVarP(&templateName, "template", "t", "", fmt.Sprintf("Row template %v (overrides config)", emit.TemplateNames()))
}

func runGenerate(cmd *cobra.Command, args []string) error {
	if templateName != "" {
		cfg.Template = config.TemplateConfig{Name: templateName}
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid layout config: %w", err)
	}

	if outputPath == "" {
		return generate(cfg, cmd.OutOrStdout())
	}
	return generateFile(cfg, outputPath)
}

// generate renders c's layout into w.
func generate(c *config.Config, w io.Writer) error {
	opts, err := c.EmitterOptions()
	if err != nil {
		return err
	}
	e, err := emit.New(opts, logging.Get(logging.CategoryEmit))
	if err != nil {
		return err
	}
	return e.Write(w, c.OccupiedSet())
}

// generateFile renders into a temp file beside path and renames it over
// path, so a failed run never leaves a partial layout behind.
func generateFile(c *config.Config, path string) error {
	var buf bytes.Buffer
	if err := generate(c, &buf); err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".keygrid-*")
	if err != nil {
		return fmt.Errorf("failed to create temp output: %w", err)
	}
	defer os.Remove(tmp.Name())

	// CreateTemp opens 0600; keep an existing file's mode, else 0644.
	mode := os.FileMode(0644)
	if fi, err := os.Stat(path); err == nil {
		mode = fi.Mode().Perm()
	}
	if err := tmp.Chmod(mode); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set output mode: %w", err)
	}

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace output: %w", err)
	}

	logging.Get(logging.CategoryEmit).Info("layout written",
		zap.String("path", path),
		zap.Int("bytes", buf.Len()))
	return nil
}
