package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeModule(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("MZ"), 0o644))
}

func TestNew_Errors(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		modules []string
	}{
		"no modules":     {modules: nil},
		"missing parent": {modules: []string{filepath.Join(t.TempDir(), "gone", "M.dll")}},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			w, err := New(tt.modules)
			require.Error(t, err)
			assert.Nil(t, w)
		})
	}
}

func TestNew_DeduplicatesModules(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	a := filepath.Join(dir, "A.dll")
	b := filepath.Join(dir, "B.dll")

	w, err := New([]string{a, b, a})
	require.NoError(t, err)
	defer w.Close()

	assert.Equal(t, []string{a, b}, w.Modules())
}

func TestWatcher_Run_DebouncesChanges(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	a := filepath.Join(dir, "A.dll")
	b := filepath.Join(dir, "B.dll")
	writeModule(t, a)

	w, err := New([]string{a, b}, WithDebounce(100*time.Millisecond))
	require.NoError(t, err)
	defer w.Close()

	calls := make(chan []string, 4)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(_ context.Context, modules []string) {
			calls <- modules
		})
	}()

	writeModule(t, filepath.Join(dir, "unrelated.txt"))
	writeModule(t, b)
	writeModule(t, a)
	writeModule(t, a)

	select {
	case got := <-calls:
		assert.Equal(t, []string{a, b}, got)
	case <-time.After(5 * time.Second):
		t.Fatal("no change delivered")
	}

	select {
	case extra := <-calls:
		t.Fatalf("unexpected second delivery: %v", extra)
	case <-time.After(300 * time.Millisecond):
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestWatcher_Run_StopsOnClose(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	w, err := New([]string{filepath.Join(dir, "A.dll")})
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		done <- w.Run(context.Background(), func(context.Context, []string) {})
	}()

	require.NoError(t, w.Close())
	require.NoError(t, w.Close())

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after Close")
	}
}

func TestWatcher_Relevant(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	a := filepath.Join(dir, "A.dll")
	w, err := New([]string{a})
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })

	tests := map[string]struct {
		event fsnotify.Event
		want  bool
	}{
		"write":        {event: fsnotify.Event{Name: a, Op: fsnotify.Write}, want: true},
		"create":       {event: fsnotify.Event{Name: a, Op: fsnotify.Create}, want: true},
		"rename":       {event: fsnotify.Event{Name: a, Op: fsnotify.Rename}, want: true},
		"chmod only":   {event: fsnotify.Event{Name: a, Op: fsnotify.Chmod}, want: false},
		"remove":       {event: fsnotify.Event{Name: a, Op: fsnotify.Remove}, want: false},
		"other file":   {event: fsnotify.Event{Name: filepath.Join(dir, "B.dll"), Op: fsnotify.Write}, want: false},
		"unclean name": {event: fsnotify.Event{Name: dir + "/./A.dll", Op: fsnotify.Write}, want: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, w.relevant(tt.event))
		})
	}
}
