package debounce

import "fmt"

// SymDeferPerRow applies a row's raw state once the row has not changed
// for Debounce ms. Press and release are treated alike.
type SymDeferPerRow struct {
	delay       uint8
	clock       Clock
	lastTime    uint16
	countdowns  []uint8 // [row] ms until the row is considered stable
	lastRaw     []Row
	initialized bool
}

// NewSymDeferPerRow sizes a per-row debouncer. Only s.Debounce is used.
func NewSymDeferPerRow(rows, cols int, s Settings, clock Clock) (*SymDeferPerRow, error) {
	if err := checkSize(rows, cols); err != nil {
		return nil, err
	}
	if s.Debounce == 0 {
		return nil, fmt.Errorf("%w: debounce=0", ErrZeroDelay)
	}
	return &SymDeferPerRow{
		delay:      s.Debounce,
		clock:      clock,
		lastTime:   clock(),
		countdowns: make([]uint8, rows),
		lastRaw:    make([]Row, rows),
	}, nil
}

// Debounce implements Debouncer. The first call only records raw; cooked
// follows after the first change settles.
func (d *SymDeferPerRow) Debounce(raw, cooked []Row, changed bool) {
	if !d.initialized {
		copy(d.lastRaw, raw)
		d.initialized = true
	}

	now := d.clock()
	elapsed := elapsedSince(now, d.lastTime)
	d.lastTime = now

	for row := range d.countdowns {
		rawRow := raw[row]
		switch {
		case rawRow != d.lastRaw[row]:
			d.countdowns[row] = d.delay
			d.lastRaw[row] = rawRow
		case d.countdowns[row] > elapsed:
			d.countdowns[row] -= elapsed
		case d.countdowns[row] != 0:
			cooked[row] = rawRow
			d.countdowns[row] = 0
		}
	}
}
