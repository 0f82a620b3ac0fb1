// Package debounce filters contact chatter out of raw key matrix scans.
//
// A scan produces one Row bitmask per matrix row. A Debouncer turns the
// raw rows into cooked rows that only change once a key has held steady
// for long enough. Two algorithms are provided:
//
//   - SymDeferPerRow waits until a whole row has been stable for Debounce
//     milliseconds, then copies it. One countdown per row.
//   - AsymDeferPerKey runs a countdown per key with separate press and
//     release delays, and mutes a key for a while after it flips.
//
// Time comes from an injected Clock so replays are deterministic.
package debounce

import (
	"errors"
	"fmt"
)

// Row is the state of one matrix row: bit c set means column c is closed.
type Row uint32

// MaxCols is the widest row a Row can hold.
const MaxCols = 32

// maxElapsed caps the time credited to a single scan, in ms.
const maxElapsed = 255

// Clock returns a free-running 16-bit millisecond counter.
type Clock func() uint16

// Debouncer updates cooked from raw in place. changed reports whether the
// matrix scan saw any difference from the previous scan.
type Debouncer interface {
	Debounce(raw, cooked []Row, changed bool)
}

// Settings are the debounce delays, in ms. Debounce, Down and Up must be
// at least 1: a countdown that starts at zero never settles. Mute may be 0.
type Settings struct {
	Debounce uint8
	Down     uint8
	Up       uint8
	Mute     uint8
}

// DefaultSettings matches the firmware defaults: 5 ms both ways and a
// 20 ms mute window.
func DefaultSettings() Settings {
	return Settings{Debounce: 5, Down: 5, Up: 5, Mute: 20}
}

// TraceSettings is the YAML form of Settings. Unset fields take the
// firmware defaults; Down and Up fall back to Debounce when only it is
// given. An explicit 0 is kept as 0.
type TraceSettings struct {
	Debounce *uint8 `yaml:"debounce,omitempty"`
	Down     *uint8 `yaml:"down,omitempty"`
	Up       *uint8 `yaml:"up,omitempty"`
	Mute     *uint8 `yaml:"mute,omitempty"`
}

// Resolve fills unset fields.
func (t TraceSettings) Resolve() Settings {
	s := DefaultSettings()
	if t.Debounce != nil {
		s.Debounce = *t.Debounce
		s.Down = s.Debounce
		s.Up = s.Debounce
	}
	if t.Down != nil {
		s.Down = *t.Down
	}
	if t.Up != nil {
		s.Up = *t.Up
	}
	if t.Mute != nil {
		s.Mute = *t.Mute
	}
	return s
}

var ErrZeroDelay = errors.New("debounce delay must be at least 1 ms")

var ErrTooWide = errors.New("matrix too wide for debounce row")

func checkSize(rows, cols int) error {
	if rows < 1 {
		return fmt.Errorf("debounce: rows=%d", rows)
	}
	if cols < 1 || cols > MaxCols {
		return fmt.Errorf("%w: cols=%d (max %d)", ErrTooWide, cols, MaxCols)
	}
	return nil
}

// elapsedSince returns now-last in ms, modulo 2^16, clamped to 255.
func elapsedSince(now, last uint16) uint8 {
	d := now - last
	if d > maxElapsed {
		return maxElapsed
	}
	return uint8(d)
}

// New returns the named algorithm: "sym" or "asym".
func New(algorithm string, rows, cols int, s Settings, clock Clock) (Debouncer, error) {
	var (
		d   Debouncer
		err error
	)
	switch algorithm {
	case "sym", "sym_defer_pr":
		d, err = NewSymDeferPerRow(rows, cols, s, clock)
	case "asym", "asym_defer_pk":
		d, err = NewAsymDeferPerKey(rows, cols, s, clock)
	default:
		return nil, fmt.Errorf("unknown debounce algorithm %q", algorithm)
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}
