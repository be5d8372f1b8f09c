package watcher_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/corejs-upgrade/internal/adapters/watcher"
	"go.trai.ch/corejs-upgrade/internal/core/ports"
	"go.trai.ch/corejs-upgrade/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func startWatcher(t *testing.T, root string, ignore ...string) (*watcher.Watcher, <-chan ports.WatchEvent) {
	t.Helper()
	ctrl := gomock.NewController(t)
	logger := mocks.NewMockLogger(ctrl)
	logger.EXPECT().Error(gomock.Any()).AnyTimes()

	w, err := watcher.NewWatcher(logger, ignore...)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(func() {
		cancel()
		_ = w.Stop()
	})
	require.NoError(t, w.Start(ctx, root))

	events := make(chan ports.WatchEvent, 64)
	go func() {
		for ev := range w.Events() {
			events <- ev
		}
		close(events)
	}()
	return w, events
}

// waitFor returns the first event for path, failing after a timeout.
func waitFor(t *testing.T, events <-chan ports.WatchEvent, path string) ports.WatchEvent {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case ev, ok := <-events:
			require.True(t, ok, "event stream closed")
			if ev.Path == path {
				return ev
			}
		case <-deadline:
			t.Fatalf("no event for %s", path)
		}
	}
}

func TestWatcher_ReportsWrites(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "index.js")
	require.NoError(t, os.WriteFile(file, []byte("a"), 0o600))

	_, events := startWatcher(t, root)

	require.NoError(t, os.WriteFile(file, []byte("b"), 0o600))
	ev := waitFor(t, events, file)
	assert.Contains(t, []ports.WatchOp{ports.OpWrite, ports.OpCreate}, ev.Operation)
}

func TestWatcher_WatchesNewDirectories(t *testing.T) {
	root := t.TempDir()
	_, events := startWatcher(t, root)

	dir := filepath.Join(root, "lib")
	require.NoError(t, os.Mkdir(dir, 0o750))
	ev := waitFor(t, events, dir)
	assert.Equal(t, ports.OpCreate, ev.Operation)

	// Give the watcher a moment to register the new directory.
	time.Sleep(50 * time.Millisecond)

	file := filepath.Join(dir, "util.js")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o600))
	waitFor(t, events, file)
}

func TestWatcher_IgnoresOutputAndNodeModules(t *testing.T) {
	root := t.TempDir()
	out := filepath.Join(root, "dist")
	require.NoError(t, os.MkdirAll(out, 0o750))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "node_modules", "core-js"), 0o750))

	_, events := startWatcher(t, root, out)

	require.NoError(t, os.WriteFile(filepath.Join(out, "bundle.js"), []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(root, "node_modules", "core-js", "index.js"), []byte("x"), 0o600))
	marker := filepath.Join(root, "marker.js")
	require.NoError(t, os.WriteFile(marker, []byte("x"), 0o600))

	deadline := time.After(5 * time.Second)
	for {
		select {
		case ev := <-events:
			assert.NotContains(t, ev.Path, out+string(filepath.Separator))
			assert.NotContains(t, ev.Path, "node_modules"+string(filepath.Separator))
			if ev.Path == marker {
				return
			}
		case <-deadline:
			t.Fatal("marker event not received")
		}
	}
}

func TestWatcher_StopClosesEvents(t *testing.T) {
	root := t.TempDir()
	w, events := startWatcher(t, root)

	require.NoError(t, w.Stop())
	select {
	case _, ok := <-events:
		for ok {
			_, ok = <-events
		}
	case <-time.After(5 * time.Second):
		t.Fatal("events not closed after Stop")
	}
}
