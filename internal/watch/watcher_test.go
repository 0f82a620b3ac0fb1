package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func waitFor(t *testing.T, ch <-chan struct{}, what string) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for %s", what)
	}
}

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "keygrid.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: a\n"), 0644))

	fired := make(chan struct{}, 8)
	w, err := New(path, func(ctx context.Context) error {
		fired <- struct{}{}
		return nil
	}, WithDebounce(20*time.Millisecond))
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))

	// several writes in one burst collapse into one reload
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(path, []byte("name: b\n"), 0644))
	}
	waitFor(t, fired, "reload")
	w.Stop()

	stats := w.Stats()
	assert.GreaterOrEqual(t, stats.Events, 1)
	assert.GreaterOrEqual(t, stats.Reloads, 1)
	assert.Zero(t, stats.ReloadErrors)
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "keygrid.yaml")

	fired := make(chan struct{}, 8)
	w, err := New(path, func(ctx context.Context) error {
		fired <- struct{}{}
		return nil
	}, WithDebounce(10*time.Millisecond))
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x"), 0644))
	time.Sleep(100 * time.Millisecond)
	w.Stop()

	assert.Empty(t, fired)
	assert.Zero(t, w.Stats().Events)
}

func TestWatcher_CountsReloadErrors(t *testing.T) {
	defer goleak.VerifyNone(t)

	path := filepath.Join(t.TempDir(), "keygrid.yaml")

	fired := make(chan struct{}, 8)
	w, err := New(path, func(ctx context.Context) error {
		defer func() { fired <- struct{}{} }()
		return errors.New("bad layout")
	}, WithDebounce(10*time.Millisecond))
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))

	require.NoError(t, os.WriteFile(path, []byte("matrix: ["), 0644))
	waitFor(t, fired, "reload")
	w.Stop()

	assert.GreaterOrEqual(t, w.Stats().ReloadErrors, 1)
}

func TestWatcher_ContextCancelStopsLoop(t *testing.T) {
	defer goleak.VerifyNone(t)

	path := filepath.Join(t.TempDir(), "keygrid.yaml")
	w, err := New(path, func(ctx context.Context) error { return nil })
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, w.Start(ctx))
	cancel()
	waitFor(t, w.Done(), "event loop exit")
	w.Stop()
}

func TestNew_NilCallback(t *testing.T) {
	_, err := New("keygrid.yaml", nil)
	assert.Error(t, err)
}

func TestStart_MissingDirectory(t *testing.T) {
	defer goleak.VerifyNone(t)

	w, err := New(filepath.Join(t.TempDir(), "missing", "keygrid.yaml"), func(ctx context.Context) error { return nil })
	require.NoError(t, err)
	assert.Error(t, w.Start(context.Background()))
	w.Stop()
}
