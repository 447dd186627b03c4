package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pable/go-sb-features/internal/model"
)

type recordingObserver struct {
	mu      sync.Mutex
	stages  []string
	events  int
	derived int
	failed  map[model.DiagnosticKind]int
}

func (o *recordingObserver) StageDone(stage string, _ time.Duration, _ error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.stages = append(o.stages, stage)
}

func (o *recordingObserver) EventsSeen(n int) { o.events += n }

func (o *recordingObserver) ShotDerived() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.derived++
}

func (o *recordingObserver) ShotFailed(kind model.DiagnosticKind) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.failed == nil {
		o.failed = make(map[model.DiagnosticKind]int)
	}
	o.failed[kind]++
}

func sampleMatch() []model.Event {
	return []model.Event{
		passEvent([]float64{60, 40}, []float64{100, 38}, atTime(1, 0, 5, "00:00:05.100"), inPossession(2)),
		shotEvent([]float64{100, 38}, []model.FreezeFramePlayer{
			keeper(118, 40),
			opponent(110, 40, posRCB),
			opponent(106, 35, posCB),
			teammate(109, 42),
		}, atTime(1, 0, 9, "00:00:09.800"), inPossession(2)),
		shotEvent([]float64{119, 39}, nil, atTime(1, 10, 0, "00:10:00.000"), inPossession(9)),
		shotEvent([]float64{95, 50}, []model.FreezeFramePlayer{
			{Location: []float64{1}, Position: posCB},
		}, atTime(2, 50, 0, "00:05:00.000"), inPossession(40)),
	}
}

func TestRerun_Idempotent(t *testing.T) {
	p := New(WithWorkers(3))
	b, err := p.Run(context.Background(), sampleMatch())
	require.NoError(t, err)

	before := append([]model.Record(nil), b.Records...)
	require.NoError(t, p.Rerun(context.Background(), b))
	assert.Equal(t, before, b.Records)
	assert.Len(t, b.Diagnostics(), 1, "diagnostics are not duplicated by a rerun")
}

func TestRun_Deterministic(t *testing.T) {
	one, err := New(WithWorkers(1)).Run(context.Background(), sampleMatch())
	require.NoError(t, err)
	many, err := New(WithWorkers(8)).Run(context.Background(), sampleMatch())
	require.NoError(t, err)

	assert.Equal(t, len(one.Records), len(many.Records))
	for i := range one.Records {
		a, b := one.Records[i], many.Records[i]
		assert.Equal(t, a.Angles, b.Angles)
		assert.Equal(t, a.Timing, b.Timing)
		assert.Equal(t, a.PossTimes, b.PossTimes)
		assert.Equal(t, a.Geometry.Valid(), b.Geometry.Valid())
	}
}

func TestRun_UnimplementedStage(t *testing.T) {
	stages := DefaultStages()[:3]
	stages = append(stages, Unimplemented(StageFreezeFrame))
	_, err := New(WithStages(stages...)).Run(context.Background(), sampleMatch())

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnimplementedStage))
	assert.False(t, errors.Is(err, ErrMalformedShot))
	assert.Contains(t, err.Error(), StageFreezeFrame)
}

func TestRun_DuplicateEventID(t *testing.T) {
	events := sampleMatch()
	events[2].ID = events[0].ID
	_, err := New().Run(context.Background(), events)
	assert.ErrorIs(t, err, ErrDuplicateEventID)
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New().Run(ctx, sampleMatch())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_EmptyBatch(t *testing.T) {
	b, err := New().Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, b.Records)
	assert.Empty(t, b.Shots())
	assert.Empty(t, b.ShotFeatures())
}

func TestRun_Observer(t *testing.T) {
	obs := &recordingObserver{}
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)

	b, err := New(WithObserver(obs), WithLogger(log)).Run(context.Background(), sampleMatch())
	require.NoError(t, err)

	assert.Equal(t, 4, obs.events)
	assert.Equal(t, []string{
		StageLocations, StageGoalkeeper, StageShotAngles,
		StageFreezeFrame, StageElapsedTime, StagePossession,
	}, obs.stages)
	assert.Equal(t, 1, obs.derived)
	assert.Equal(t, 1, obs.failed[model.DiagMalformedShot])
	assert.Len(t, b.Shots(), 3)

	var warned bool
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel {
			warned = true
			assert.Equal(t, model.DiagMalformedShot, e.Data["kind"])
		}
	}
	assert.True(t, warned, "a failed shot is logged")
}

func TestBatch_ShotFeatures(t *testing.T) {
	b := runAll(t, sampleMatch()...)
	feats := b.ShotFeatures()
	require.Len(t, feats, 3)

	f := feats[0]
	assert.Equal(t, testMatch, f.MatchID)
	assert.Equal(t, model.Some(20055), f.KeeperID)
	assert.True(t, f.DefendersInCone.Valid())
	assert.Empty(t, f.Diagnostic)

	assert.False(t, feats[1].DefendersInCone.Valid(), "no freeze-frame")
	assert.Contains(t, feats[2].Diagnostic, string(model.DiagMalformedShot))
}

func TestBatch_Properties(t *testing.T) {
	b := runAll(t, sampleMatch()...)
	for _, r := range b.Shots() {
		if a, ok := r.Angles.AngleToGoal.Get(); ok {
			assert.GreaterOrEqual(t, a, 0.0)
			assert.LessOrEqual(t, a, 180.0)
		}
		if d, ok := r.Angles.DistToGoal.Get(); ok {
			assert.GreaterOrEqual(t, d, 0.0)
		}
		g, ok := r.Geometry.Get()
		if !ok {
			continue
		}
		assert.GreaterOrEqual(t, g.Density, g.DensityInCone)
		assert.GreaterOrEqual(t, g.DefendersBehindBall, g.DefendersInCone)
	}
	for _, r := range b.Records {
		p := r.PossTimes
		if s, ok := p.TimeInPossession.Get(); ok {
			assert.GreaterOrEqual(t, s, 0.0)
			assert.GreaterOrEqual(t, p.TimeToPossessionEnd.Or(-1), 0.0)
		}
	}
}
