package debounce

import (
	"testing"

	"keygrid/internal/matrix"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sculptOpts(algorithm string) ReplayOptions {
	return ReplayOptions{
		Algorithm: algorithm,
		Prefix:    "k",
		Rows:      8,
		Cols:      18,
		Settings:  DefaultSettings(),
	}
}

func replay(t *testing.T, algorithm string, frames ...Frame) []Event {
	t.Helper()
	events, err := Replay(&Trace{Frames: frames}, sculptOpts(algorithm))
	require.NoError(t, err)
	return events
}

func TestElapsedSince(t *testing.T) {
	assert.Equal(t, uint8(0), elapsedSince(7, 7))
	assert.Equal(t, uint8(5), elapsedSince(12, 7))
	assert.Equal(t, uint8(16), elapsedSince(10, 65530), "16-bit timer wraps")
	assert.Equal(t, uint8(255), elapsedSince(1000, 0), "clamped")
}

func u8(v uint8) *uint8 { return &v }

func TestTraceSettings_Resolve(t *testing.T) {
	assert.Equal(t, DefaultSettings(), TraceSettings{}.Resolve())
	assert.Equal(t, Settings{Debounce: 8, Down: 8, Up: 3, Mute: 20}, TraceSettings{Debounce: u8(8), Up: u8(3)}.Resolve())
	assert.Equal(t, Settings{Debounce: 5, Down: 5, Up: 5, Mute: 0}, TraceSettings{Mute: u8(0)}.Resolve())
}

func TestNew_RejectsZeroDelays(t *testing.T) {
	clock := &ManualClock{}

	_, err := New("sym", 8, 18, Settings{Debounce: 0, Down: 5, Up: 5}, clock.Now)
	assert.ErrorIs(t, err, ErrZeroDelay)

	_, err = New("asym", 8, 18, Settings{Debounce: 5, Down: 0, Up: 5}, clock.Now)
	assert.ErrorIs(t, err, ErrZeroDelay)

	_, err = New("asym", 8, 18, Settings{Debounce: 5, Down: 5, Up: 5, Mute: 0}, clock.Now)
	assert.NoError(t, err)
}

func TestReplay_CleanPressRelease(t *testing.T) {
	frames := []Frame{
		{At: 10, Pressed: []string{"k00"}},
		{At: 100, Pressed: nil},
	}

	want := []Event{
		{At: 15, Label: "k00", Pressed: true},
		{At: 105, Label: "k00", Pressed: false},
	}
	for _, alg := range []string{"sym", "asym"} {
		if diff := cmp.Diff(want, replay(t, alg, frames...)); diff != "" {
			t.Errorf("%s events mismatch (-want +got):\n%s", alg, diff)
		}
	}
}

func TestReplay_GlitchIsFiltered(t *testing.T) {
	frames := []Frame{
		{At: 10, Pressed: []string{"k4D"}},
		{At: 12, Pressed: nil},
	}
	for _, alg := range []string{"sym", "asym"} {
		assert.Empty(t, replay(t, alg, frames...), alg)
	}
}

func TestReplay_SymWaitsForQuietRow(t *testing.T) {
	events := replay(t, "sym",
		Frame{At: 10, Pressed: []string{"k00"}},
		Frame{At: 12, Pressed: nil},
		Frame{At: 13, Pressed: []string{"k00"}},
	)
	assert.Equal(t, []Event{{At: 18, Label: "k00", Pressed: true}}, events)
}

func TestReplay_AsymMutesAfterFlip(t *testing.T) {
	frames := []Frame{
		{At: 10, Pressed: []string{"k7C"}},
		{At: 20, Pressed: nil},
	}

	// sym: release settles 5 ms after it happens
	assert.Equal(t, []Event{
		{At: 15, Label: "k7C", Pressed: true},
		{At: 25, Label: "k7C", Pressed: false},
	}, replay(t, "sym", frames...))

	// asym: release is held back until the 20 ms mute window ends
	assert.Equal(t, []Event{
		{At: 15, Label: "k7C", Pressed: true},
		{At: 35, Label: "k7C", Pressed: false},
	}, replay(t, "asym", frames...))
}

func TestReplay_AsymWithoutMute(t *testing.T) {
	opts := sculptOpts("asym")
	opts.Settings.Mute = 0
	events, err := Replay(&Trace{Frames: []Frame{
		{At: 10, Pressed: []string{"k7C"}},
		{At: 20, Pressed: nil},
	}}, opts)
	require.NoError(t, err)

	// without a mute window the release settles like the press did
	assert.Equal(t, []Event{
		{At: 15, Label: "k7C", Pressed: true},
		{At: 25, Label: "k7C", Pressed: false},
	}, events)
}

func TestReplay_AsymSeparateDelays(t *testing.T) {
	opts := sculptOpts("asym")
	opts.Settings = Settings{Debounce: 5, Down: 2, Up: 10, Mute: 20}
	events, err := Replay(&Trace{Frames: []Frame{
		{At: 10, Pressed: []string{"k1A"}},
		{At: 50, Pressed: nil},
	}}, opts)
	require.NoError(t, err)
	assert.Equal(t, []Event{
		{At: 12, Label: "k1A", Pressed: true},
		{At: 60, Label: "k1A", Pressed: false},
	}, events)
}

func TestReplay_MultipleKeysRowMajor(t *testing.T) {
	events := replay(t, "asym", Frame{At: 0, Pressed: []string{"k7C", "k4D", "k01"}})
	labels := make([]string, len(events))
	for i, e := range events {
		assert.Equal(t, 5, e.At)
		labels[i] = e.Label
	}
	assert.Equal(t, []string{"k01", "k4D", "k7C"}, labels)
}

func TestReplay_Errors(t *testing.T) {
	_, err := Replay(&Trace{}, sculptOpts("bogus"))
	assert.Error(t, err)

	_, err = Replay(&Trace{Frames: []Frame{{At: 10}, {At: 5}}}, sculptOpts("sym"))
	assert.ErrorContains(t, err, "back in time")

	_, err = Replay(&Trace{Frames: []Frame{{At: 1, Pressed: []string{"k8A"}}}}, sculptOpts("sym"))
	assert.ErrorIs(t, err, matrix.ErrOutOfBounds)

	_, err = Replay(&Trace{Frames: []Frame{{At: 1, Pressed: []string{"q00"}}}}, sculptOpts("sym"))
	assert.ErrorIs(t, err, matrix.ErrMalformedLabel)

	opts := sculptOpts("sym")
	opts.Cols = 33
	_, err = Replay(&Trace{}, opts)
	assert.ErrorIs(t, err, ErrTooWide)
}

func TestSymDeferPerRow_FirstScanSeedsState(t *testing.T) {
	clock := &ManualClock{}
	d, err := NewSymDeferPerRow(1, 4, DefaultSettings(), clock.Now)
	require.NoError(t, err)

	raw := []Row{0b0010}
	cooked := []Row{0}
	for ms := 0; ms < 50; ms++ {
		clock.Set(ms)
		d.Debounce(raw, cooked, ms == 0)
	}
	assert.Equal(t, Row(0), cooked[0], "keys held at boot are not reported until they change")
}

func TestAsymDeferPerKey_SkipsIdleRows(t *testing.T) {
	clock := &ManualClock{}
	d, err := NewAsymDeferPerKey(2, 4, DefaultSettings(), clock.Now)
	require.NoError(t, err)

	raw := []Row{0b0001, 0}
	cooked := []Row{0, 0}

	// a difference that was never reported as changed is ignored
	clock.Set(1)
	d.Debounce(raw, cooked, false)
	clock.Set(100)
	d.Debounce(raw, cooked, false)
	assert.Equal(t, []Row{0, 0}, cooked)
}

func TestParseTrace(t *testing.T) {
	tr, err := ParseTrace([]byte(`
algorithm: asym
settings:
  down: 3
  mute: 0
frames:
  - at: 5
    pressed: [k00, k4D]
  - at: 40
    pressed: []
`))
	require.NoError(t, err)
	assert.Equal(t, "asym", tr.Algorithm)
	require.NotNil(t, tr.Settings.Down)
	assert.Equal(t, uint8(3), *tr.Settings.Down)
	assert.Equal(t, Settings{Debounce: 5, Down: 3, Up: 5, Mute: 0}, tr.Settings.Resolve())
	require.Len(t, tr.Frames, 2)
	assert.Equal(t, []string{"k00", "k4D"}, tr.Frames[0].Pressed)

	_, err = ParseTrace([]byte("frames: {"))
	assert.Error(t, err)
}

func TestEvent_String(t *testing.T) {
	assert.Equal(t, "    15ms  k4D  press", Event{At: 15, Label: "k4D", Pressed: true}.String())
}
