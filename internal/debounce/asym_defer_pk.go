package debounce

import "fmt"

// AsymDeferPerKey keeps a countdown per key. A key that differs from its
// cooked state starts counting down from Down (press) or Up (release); if
// it still differs when the countdown ends, the cooked bit flips and the
// key is muted for Mute ms so bounce right after the flip is ignored. With
// Mute 0 the key goes idle as soon as it flips.
type AsymDeferPerKey struct {
	settings  Settings
	clock     Clock
	lastTime  uint16
	cols      int
	counts    []uint8 // [row*cols+col] ms remaining, 0 when idle
	rowCounts []uint8 // [row] keys currently counting, to skip idle rows
}

// NewAsymDeferPerKey sizes a per-key debouncer.
func NewAsymDeferPerKey(rows, cols int, s Settings, clock Clock) (*AsymDeferPerKey, error) {
	if err := checkSize(rows, cols); err != nil {
		return nil, err
	}
	if s.Down == 0 || s.Up == 0 {
		return nil, fmt.Errorf("%w: down=%d up=%d", ErrZeroDelay, s.Down, s.Up)
	}
	return &AsymDeferPerKey{
		settings:  s,
		clock:     clock,
		lastTime:  clock(),
		cols:      cols,
		counts:    make([]uint8, rows*cols),
		rowCounts: make([]uint8, rows),
	}, nil
}

// Debounce implements Debouncer.
func (d *AsymDeferPerKey) Debounce(raw, cooked []Row, changed bool) {
	now := d.clock()
	elapsed := elapsedSince(now, d.lastTime)
	d.lastTime = now

	for row := range d.rowCounts {
		if d.rowCounts[row] == 0 && !changed {
			continue
		}

		rawRow := raw[row]
		cookedRow := cooked[row]
		delta := rawRow ^ cookedRow

		state := d.counts[row*d.cols : (row+1)*d.cols]
		for col := range state {
			mask := Row(1) << col
			switch {
			case state[col] > elapsed:
				state[col] -= elapsed
			case state[col] != 0:
				flipped := delta&mask != 0
				if flipped {
					cookedRow ^= mask
				}
				if flipped && d.settings.Mute != 0 {
					state[col] = d.settings.Mute
				} else {
					state[col] = 0
					d.rowCounts[row]--
				}
			case changed && delta&mask != 0:
				d.rowCounts[row]++
				if rawRow&mask != 0 {
					state[col] = d.settings.Down
				} else {
					state[col] = d.settings.Up
				}
			}
		}

		cooked[row] = cookedRow
	}
}
