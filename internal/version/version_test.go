package version

import (
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInfo_ShortCommit(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		commit string
		want   string
	}{
		"full hash": {commit: "0123456789abcdef", want: "0123456"},
		"short":     {commit: "abc", want: "abc"},
		"unknown":   {commit: "unknown", want: "unknown"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Info{Commit: tt.commit}.ShortCommit())
		})
	}
}

func TestInfo_Plain(t *testing.T) {
	t.Parallel()

	info := Info{Version: "1.2.3", Commit: "abc", BuildDate: "2026-01-01", GoVersion: "go1.25.1", Platform: "linux/amd64"}
	assert.Equal(t, "ilverify-go 1.2.3\ncommit: abc\nbuilt: 2026-01-01\ngo: go1.25.1\nplatform: linux/amd64\n", info.Plain())
}

func TestGet(t *testing.T) {
	t.Parallel()

	info := Get()
	assert.Equal(t, Version, info.Version)
	assert.Equal(t, runtime.Version(), info.GoVersion)
	assert.True(t, strings.Contains(info.Platform, runtime.GOOS))
	assert.Equal(t, Version == "dev", IsDevBuild())
}
