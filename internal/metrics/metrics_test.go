package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ariel-frischer/ilverify/internal/lifecycle"
	"github.com/ariel-frischer/ilverify/internal/verifier"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// counts returns the verifications_total value per verdict label.
func counts(t *testing.T, r *Recorder) map[string]float64 {
	t.Helper()
	families, err := r.Gatherer().Gather()
	require.NoError(t, err)

	got := map[string]float64{}
	for _, mf := range families {
		if mf.GetName() != "ilverify_verifications_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == "verdict" {
					got[lp.GetValue()] = m.GetCounter().GetValue()
				}
			}
		}
	}
	return got
}

func TestRecorder_OnVerificationComplete(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		events []lifecycle.Event
		want   map[string]float64
	}{
		"no events": {
			want: map[string]float64{},
		},
		"passes and failures": {
			events: []lifecycle.Event{
				{Module: "A.dll", Duration: time.Second},
				{Module: "B.dll", Err: &verifier.Error{Kind: verifier.KindVerificationFailed}},
				{Module: "A.dll"},
			},
			want: map[string]float64{"passed": 2, "failed": 1},
		},
		"tool missing is its own verdict": {
			events: []lifecycle.Event{
				{Module: "A.dll", Err: &verifier.Error{Kind: verifier.KindToolMissing}},
			},
			want: map[string]float64{"tool missing": 1},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			r := NewRecorder()
			for _, e := range tt.events {
				r.OnVerificationComplete(e)
			}
			assert.Equal(t, tt.want, counts(t, r))
		})
	}
}

func TestRecorder_Isolated(t *testing.T) {
	t.Parallel()

	a, b := NewRecorder(), NewRecorder()
	a.OnVerificationComplete(lifecycle.Event{Module: "A.dll"})

	assert.Equal(t, map[string]float64{"passed": 1}, counts(t, a))
	assert.Empty(t, counts(t, b))
}

func TestRecorder_WriteTextfile(t *testing.T) {
	t.Parallel()

	r := NewRecorder()
	r.OnVerificationComplete(lifecycle.Event{Module: "A.dll", Duration: 250 * time.Millisecond})

	path := filepath.Join(t.TempDir(), "ilverify.prom")
	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, `ilverify_verifications_total{verdict="passed"} 1`)
	assert.Contains(t, text, `ilverify_verification_duration_seconds_count{verdict="passed"} 1`)
	assert.Contains(t, text, "ilverify_last_verification_timestamp_seconds")
}

func TestRecorder_WriteTextfile_BadDir(t *testing.T) {
	t.Parallel()

	r := NewRecorder()
	err := r.WriteTextfile(filepath.Join(t.TempDir(), "missing", "ilverify.prom"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "writing metrics")
}
