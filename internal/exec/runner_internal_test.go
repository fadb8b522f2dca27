package exec

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestExecRunner_CommandWaitDelay(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		runner *ExecRunner
		want   time.Duration
	}{
		"default":  {runner: NewRunner(), want: DefaultWaitDelay},
		"override": {runner: &ExecRunner{WaitDelay: 50 * time.Millisecond}, want: 50 * time.Millisecond},
		"negative": {runner: &ExecRunner{WaitDelay: -time.Second}, want: DefaultWaitDelay},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			cmd := tt.runner.command(context.Background(), "ilverify", []string{"--version"})
			assert.Equal(t, tt.want, cmd.WaitDelay)
			assert.Equal(t, []string{"ilverify", "--version"}, cmd.Args)
		})
	}
}
