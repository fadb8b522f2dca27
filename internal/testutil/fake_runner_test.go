package testutil

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFakeRunner_Routes(t *testing.T) {
	t.Parallel()

	startErr := errors.New("not found")
	f := NewFakeRunner().
		When("--version", FakeResponse{Stdout: "8.0.0"}).
		When("--broken", FakeResponse{Err: startErr}).
		Default(FakeResponse{Stdout: "verified", ExitCode: 0})

	res, err := f.Run(t.Context(), "ilverify", "--version")
	require.NoError(t, err)
	assert.Equal(t, "8.0.0", res.Stdout)

	res, err = f.Run(t.Context(), "ilverify", "a.dll")
	require.NoError(t, err)
	assert.Equal(t, "verified", res.Stdout)

	_, err = f.Run(t.Context(), "ilverify", "--broken")
	assert.ErrorIs(t, err, startErr)

	assert.Len(t, f.Calls(), 3)
	assert.Len(t, f.CallsWith("--version"), 1)
	assert.Len(t, f.CallsWithout("--version"), 2)
}

func TestFakeRunner_CancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err := NewFakeRunner().Run(ctx, "ilverify", "x.dll")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFakeRunner_OnRunAndCallLog(t *testing.T) {
	t.Parallel()

	var seen []string
	f := NewFakeRunner()
	f.OnRun = func(name string, args []string) { seen = append(seen, name) }

	_, err := f.Run(t.Context(), "ilverify", "--version")
	require.NoError(t, err)
	assert.Equal(t, []string{"ilverify"}, seen)

	path := filepath.Join(t.TempDir(), "calls.yaml")
	require.NoError(t, WriteCallLog(path, f.Calls()))
	log, err := ReadCallLog(path)
	require.NoError(t, err)
	require.Len(t, log.Entries, 1)
	assert.Equal(t, []string{"--version"}, log.Entries[0].Args)
}
