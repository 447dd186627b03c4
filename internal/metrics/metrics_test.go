package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pable/go-sb-features/internal/model"
)

func TestRecorderCounters(t *testing.T) {
	r := NewRecorder()
	r.EventsSeen(120)
	r.ShotDerived()
	r.ShotDerived()
	r.ShotFailed(model.DiagMalformedShot)

	assert.Equal(t, 120.0, testutil.ToFloat64(r.events))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.shots))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.shotFailures.WithLabelValues("malformed_shot")))
}

func TestRecorderStageErrors(t *testing.T) {
	r := NewRecorder()
	r.StageDone("locations", time.Millisecond, nil)
	r.StageDone("possession", time.Millisecond, errors.New("boom"))

	assert.Equal(t, 0.0, testutil.ToFloat64(r.stageErrors.WithLabelValues("locations")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.stageErrors.WithLabelValues("possession")))
}

func TestSnapshot(t *testing.T) {
	r := NewRecorder(WithNamespace("test"))
	r.EventsSeen(3)
	r.StageDone("freeze_frame", 2*time.Millisecond, nil)

	samples, err := r.Snapshot()
	require.NoError(t, err)

	byName := make(map[string]Sample)
	for _, s := range samples {
		byName[s.Name] = s
	}
	assert.Equal(t, 3.0, byName["test_pipeline_events_total"].Value)

	hist := byName["test_pipeline_stage_duration_seconds"]
	assert.Equal(t, uint64(1), hist.Count)
	assert.Equal(t, "freeze_frame", hist.Labels["stage"])
}
