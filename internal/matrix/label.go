// Package matrix models the key matrix coordinate space and the labels that
// name each cell in a keyboard LAYOUT macro.
//
// A label is a prefix followed by the row as a decimal digit and the column
// as a single token: the digit for columns 0-9, then 'A' for column 10,
// 'B' for 11, and so on. The Sculpt conversion uses prefix "k" over an
// 8x18 matrix, so "k4D" is row 4, column 13.
package matrix

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	// DefaultRows and DefaultCols are the Sculpt conversion's matrix size.
	DefaultRows = 8
	DefaultCols = 18

	// DefaultPrefix starts every label.
	DefaultPrefix = "k"

	// Placeholder marks a matrix position with no key wired to it.
	Placeholder = "KC_NO"

	// MaxRows keeps the row part of a label to one digit.
	MaxRows = 10
	// MaxCols covers the digits plus 'A' through 'Z'.
	MaxCols = 36
)

var (
	ErrMalformedLabel    = errors.New("malformed label")
	ErrOutOfBounds       = errors.New("label outside matrix")
	ErrInvalidDimensions = errors.New("invalid matrix dimensions")
)

// Coord is a (row, column) position in the key matrix.
type Coord struct {
	Row int
	Col int
}

func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.Row, c.Col)
}

// ColumnToken returns the column part of a label.
func ColumnToken(col int) string {
	if col <= 9 {
		return strconv.Itoa(col)
	}
	return string(rune(55 + col))
}

// Label returns the label for (row, col) under prefix.
func Label(prefix string, row, col int) string {
	return prefix + strconv.Itoa(row) + ColumnToken(col)
}

// ParseLabel is the inverse of Label. It only accepts strings Label could
// have produced for some row in [0,MaxRows) and column in [0,MaxCols).
func ParseLabel(prefix, label string) (Coord, error) {
	rest, ok := strings.CutPrefix(label, prefix)
	if !ok || len(rest) != 2 {
		return Coord{}, fmt.Errorf("%w: %q", ErrMalformedLabel, label)
	}

	r, c := rest[0], rest[1]
	if r < '0' || r > '9' {
		return Coord{}, fmt.Errorf("%w: %q: bad row %q", ErrMalformedLabel, label, r)
	}

	var col int
	switch {
	case c >= '0' && c <= '9':
		col = int(c - '0')
	case c >= 'A' && c <= 'Z':
		col = int(c) - 55
	default:
		return Coord{}, fmt.Errorf("%w: %q: bad column %q", ErrMalformedLabel, label, c)
	}

	return Coord{Row: int(r - '0'), Col: col}, nil
}

// CheckDimensions reports whether a rows x cols matrix can be labelled.
func CheckDimensions(rows, cols int) error {
	if rows < 1 || rows > MaxRows {
		return fmt.Errorf("%w: rows=%d (want 1..%d)", ErrInvalidDimensions, rows, MaxRows)
	}
	if cols < 1 || cols > MaxCols {
		return fmt.Errorf("%w: cols=%d (want 1..%d)", ErrInvalidDimensions, cols, MaxCols)
	}
	return nil
}
