// Package emit renders the positional LAYOUT matrix for a keyboard.
//
// For every (row, column) of the matrix, in row-major order, the emitter
// writes the cell's label when the cell is wired, or a placeholder when it
// is not. Output position is the contract: the Nth token of the Rth line
// corresponds to physical matrix cell (R, N).
package emit

import (
	"fmt"
	"io"
	"strings"

	"keygrid/internal/matrix"

	"go.uber.org/zap"
)

// Options configures an Emitter.
type Options struct {
	Rows        int
	Cols        int
	Prefix      string
	Placeholder string
	Template    Template
}

// DefaultOptions is the Sculpt conversion: 8x18, "k" labels, KC_NO, qmk.
func DefaultOptions() Options {
	return Options{
		Rows:        matrix.DefaultRows,
		Cols:        matrix.DefaultCols,
		Prefix:      matrix.DefaultPrefix,
		Placeholder: matrix.Placeholder,
		Template:    QMK,
	}
}

// Emitter renders occupied sets into LAYOUT rows. It holds no state
// between calls and is safe for concurrent use.
type Emitter struct {
	opts   Options
	logger *zap.Logger
}

// New returns an Emitter for opts. A nil logger is replaced with a no-op.
func New(opts Options, logger *zap.Logger) (*Emitter, error) {
	if err := matrix.CheckDimensions(opts.Rows, opts.Cols); err != nil {
		return nil, err
	}
	if opts.Prefix == "" {
		return nil, fmt.Errorf("label prefix must not be empty")
	}
	if opts.Placeholder == "" {
		return nil, fmt.Errorf("placeholder must not be empty")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Emitter{opts: opts, logger: logger}, nil
}

// Tokens returns the token grid: Rows slices of Cols tokens each.
func (e *Emitter) Tokens(occupied matrix.Set) [][]string {
	grid := make([][]string, e.opts.Rows)
	used := 0
	for r := 0; r < e.opts.Rows; r++ {
		row := make([]string, e.opts.Cols)
		for c := 0; c < e.opts.Cols; c++ {
			label := matrix.Label(e.opts.Prefix, r, c)
			if occupied.Contains(label) {
				row[c] = label
				used++
			} else {
				row[c] = e.opts.Placeholder
			}
		}
		grid[r] = row
	}

	// Entries that never matched are inert here; strict configs reject
	// them before they reach the emitter.
	if inert := occupied.Len() - used; inert > 0 {
		e.logger.Debug("occupied entries outside the matrix were ignored",
			zap.Int("ignored", inert),
			zap.Int("rows", e.opts.Rows),
			zap.Int("cols", e.opts.Cols))
	}
	return grid
}

// Lines returns one formatted line per row, in row order.
func (e *Emitter) Lines(occupied matrix.Set) []string {
	t := e.opts.Template
	grid := e.Tokens(occupied)
	lines := make([]string, len(grid))
	for r, row := range grid {
		lines[r] = t.RowOpen + strings.Join(row, t.Separator) + t.RowClose + t.Terminator
	}
	return lines
}

// Write emits each line followed by a newline. The first write error
// aborts emission and is returned.
func (e *Emitter) Write(w io.Writer, occupied matrix.Set) error {
	lines := e.Lines(occupied)
	for r, line := range lines {
		if _, err := io.WriteString(w, line+"\n"); err != nil {
			return fmt.Errorf("write row %d: %w", r, err)
		}
	}
	e.logger.Debug("layout emitted",
		zap.Int("rows", len(lines)),
		zap.Int("occupied", occupied.Len()),
		zap.String("template", e.opts.Template.Name))
	return nil
}

// Emit renders occupied over a rows x cols matrix with the default label
// prefix, placeholder and qmk template. Dimensions outside what labels can
// express yield nil.
func Emit(occupied matrix.Set, rows, cols int) []string {
	opts := DefaultOptions()
	opts.Rows, opts.Cols = rows, cols
	e, err := New(opts, nil)
	if err != nil {
		return nil
	}
	return e.Lines(occupied)
}
