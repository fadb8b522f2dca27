package cli

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/ariel-frischer/ilverify/internal/cli/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

func TestRootCmd_Structure(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "ilverify-go", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
	assert.NotEmpty(t, rootCmd.Example)
	assert.True(t, rootCmd.SilenceErrors)
}

func TestRootCmd_PersistentFlags(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"config", "debug", "trace"} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(name), "flag %s should exist", name)
	}
}

func TestRootCmd_Subcommands(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		group string
	}{
		"verify":  {group: shared.GroupVerification},
		"doctor":  {group: shared.GroupGettingStarted},
		"history": {group: shared.GroupConfiguration},
		"config":  {group: shared.GroupConfiguration},
		"version": {group: shared.GroupGettingStarted},
	}

	commands := map[string]string{}
	for _, c := range rootCmd.Commands() {
		commands[c.Name()] = c.GroupID
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			group, ok := commands[name]
			require.True(t, ok, "command %s should be registered", name)
			assert.Equal(t, tt.group, group)
		})
	}
}

func TestRootCmd_Groups(t *testing.T) {
	t.Parallel()

	ids := map[string]bool{}
	for _, g := range rootCmd.Groups() {
		ids[g.ID] = true
	}
	assert.True(t, ids[shared.GroupVerification])
	assert.True(t, ids[shared.GroupConfiguration])
	assert.True(t, ids[shared.GroupGettingStarted])
}

// TestSetupLogging swaps the package logger and cannot run in parallel.
func TestSetupLogging(t *testing.T) {
	orig := logger
	t.Cleanup(func() { logger = orig })

	require.NoError(t, setupLogging(true))
	assert.True(t, logger.Core().Enabled(zap.DebugLevel))

	require.NoError(t, setupLogging(false))
	assert.False(t, logger.Core().Enabled(zap.DebugLevel))
}

// TestSetupTracing swaps the global tracer provider and cannot run in parallel.
func TestSetupTracing(t *testing.T) {
	t.Cleanup(func() { _ = setupTracing(false, io.Discard) })

	var buf bytes.Buffer
	require.NoError(t, setupTracing(true, &buf))
	require.NotNil(t, tracerProvider)

	_, span := otel.Tracer("cli-test").Start(context.Background(), "verifier.probe")
	span.End()
	assert.Contains(t, buf.String(), `"Name": "verifier.probe"`)

	require.NoError(t, setupTracing(false, &buf))
	assert.Nil(t, tracerProvider)

	buf.Reset()
	_, span = otel.Tracer("cli-test").Start(context.Background(), "verifier.run")
	span.End()
	assert.Empty(t, buf.String())
}
