package debounce

import (
	"fmt"
	"os"

	"keygrid/internal/matrix"

	"gopkg.in/yaml.v3"
)

// maxTraceMs bounds how long a replay may run.
const maxTraceMs = 10 * 60 * 1000

// Frame sets the raw matrix from At (ms) onward: the listed labels are
// closed, every other key is open.
type Frame struct {
	At      int      `yaml:"at"`
	Pressed []string `yaml:"pressed"`
}

// Trace is a recorded sequence of raw matrix states.
type Trace struct {
	Algorithm string        `yaml:"algorithm,omitempty"`
	Settings  TraceSettings `yaml:"settings,omitempty"`
	Frames    []Frame       `yaml:"frames"`
}

// Event is one change of a cooked key.
type Event struct {
	At      int
	Label   string
	Pressed bool
}

func (e Event) String() string {
	action := "release"
	if e.Pressed {
		action = "press"
	}
	return fmt.Sprintf("%6dms  %-4s %s", e.At, e.Label, action)
}

// ReplayOptions describes the matrix a trace is replayed against.
type ReplayOptions struct {
	Algorithm string
	Prefix    string
	Rows      int
	Cols      int
	Settings  Settings
}

// LoadTrace reads a YAML trace file.
func LoadTrace(path string) (*Trace, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read trace: %w", err)
	}
	return ParseTrace(data)
}

// ParseTrace decodes a YAML trace.
func ParseTrace(data []byte) (*Trace, error) {
	var tr Trace
	if err := yaml.Unmarshal(data, &tr); err != nil {
		return nil, fmt.Errorf("failed to parse trace: %w", err)
	}
	return &tr, nil
}

// ManualClock is a Clock driven by the caller.
type ManualClock struct {
	ms int
}

// Now returns the low 16 bits of the current time, like a hardware timer.
func (c *ManualClock) Now() uint16 { return uint16(c.ms) }

// Set moves the clock to ms.
func (c *ManualClock) Set(ms int) { c.ms = ms }

// Replay scans the matrix once per millisecond from 0 until the last frame
// has had time to settle, feeding each scan through the chosen algorithm,
// and returns every cooked transition in time then row-major order.
func Replay(tr *Trace, opts ReplayOptions) ([]Event, error) {
	if err := matrix.CheckDimensions(opts.Rows, opts.Cols); err != nil {
		return nil, err
	}
	states, err := frameStates(tr, opts)
	if err != nil {
		return nil, err
	}

	clock := &ManualClock{}
	d, err := New(opts.Algorithm, opts.Rows, opts.Cols, opts.Settings, clock.Now)
	if err != nil {
		return nil, err
	}

	s := opts.Settings
	end := 0
	if n := len(tr.Frames); n > 0 {
		end = tr.Frames[n-1].At
	}
	end += int(s.Debounce) + int(s.Down) + int(s.Up) + int(s.Mute) + 1

	raw := make([]Row, opts.Rows)
	prevRaw := make([]Row, opts.Rows)
	cooked := make([]Row, opts.Rows)
	prevCooked := make([]Row, opts.Rows)

	var events []Event
	next := 0
	for t := 0; t <= end; t++ {
		for next < len(states) && tr.Frames[next].At <= t {
			copy(raw, states[next])
			next++
		}

		changed := false
		for r := range raw {
			if raw[r] != prevRaw[r] {
				changed = true
			}
		}

		clock.Set(t)
		d.Debounce(raw, cooked, changed)
		copy(prevRaw, raw)

		for r := range cooked {
			diff := cooked[r] ^ prevCooked[r]
			for c := 0; c < opts.Cols && diff != 0; c++ {
				mask := Row(1) << c
				if diff&mask == 0 {
					continue
				}
				diff &^= mask
				events = append(events, Event{
					At:      t,
					Label:   matrix.Label(opts.Prefix, r, c),
					Pressed: cooked[r]&mask != 0,
				})
			}
		}
		copy(prevCooked, cooked)
	}
	return events, nil
}

// frameStates converts each frame's labels into raw rows.
func frameStates(tr *Trace, opts ReplayOptions) ([][]Row, error) {
	states := make([][]Row, len(tr.Frames))
	last := 0
	for i, f := range tr.Frames {
		if f.At < last {
			return nil, fmt.Errorf("frame %d: at=%d goes back in time (previous %d)", i, f.At, last)
		}
		if f.At > maxTraceMs {
			return nil, fmt.Errorf("frame %d: at=%d exceeds %d ms", i, f.At, maxTraceMs)
		}
		last = f.At

		rows := make([]Row, opts.Rows)
		for _, label := range f.Pressed {
			coord, err := matrix.ParseLabel(opts.Prefix, label)
			if err != nil {
				return nil, fmt.Errorf("frame %d: %w", i, err)
			}
			if coord.Row >= opts.Rows || coord.Col >= opts.Cols {
				return nil, fmt.Errorf("frame %d: %w: %q", i, matrix.ErrOutOfBounds, label)
			}
			rows[coord.Row] |= Row(1) << coord.Col
		}
		states[i] = rows
	}
	return states, nil
}
