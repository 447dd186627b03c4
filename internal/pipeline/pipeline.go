// Package pipeline derives shot and possession features from an event batch.
//
// Stages run strictly in order, each reading raw event fields and earlier derived
// columns and writing only its own columns. Re-running a batch recomputes every column
// from raw fields, so the result is deterministic and idempotent.
package pipeline

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/pable/go-sb-features/internal/logger"
	"github.com/pable/go-sb-features/internal/model"
)

// StageFunc transforms a batch in place.
type StageFunc func(ctx context.Context, p *Pipeline, b *Batch) error

// Stage is a named step of the derivation.
type Stage struct {
	Name  string
	Apply StageFunc
}

// Stage names, in execution order.
const (
	StageLocations   = "locations"
	StageGoalkeeper  = "goalkeeper"
	StageShotAngles  = "shot_angles"
	StageFreezeFrame = "freeze_frame"
	StageElapsedTime = "elapsed_time"
	StagePossession  = "possession"
)

// DefaultStages returns the full derivation in dependency order.
func DefaultStages() []Stage {
	return []Stage{
		{Name: StageLocations, Apply: applyLocations},
		{Name: StageGoalkeeper, Apply: applyGoalkeeper},
		{Name: StageShotAngles, Apply: applyShotAngles},
		{Name: StageFreezeFrame, Apply: applyFreezeFrame},
		{Name: StageElapsedTime, Apply: applyElapsedTime},
		{Name: StagePossession, Apply: applyPossession},
	}
}

// Unimplemented returns a stage that always fails with ErrUnimplementedStage.
func Unimplemented(name string) Stage {
	return Stage{
		Name: name,
		Apply: func(context.Context, *Pipeline, *Batch) error {
			return fmt.Errorf("%w: %s", ErrUnimplementedStage, name)
		},
	}
}

// Observer receives stage timings and per-shot outcomes.
type Observer interface {
	StageDone(stage string, elapsed time.Duration, err error)
	EventsSeen(n int)
	ShotDerived()
	ShotFailed(kind model.DiagnosticKind)
}

type nopObserver struct{}

func (nopObserver) StageDone(string, time.Duration, error) {}
func (nopObserver) EventsSeen(int)                         {}
func (nopObserver) ShotDerived()                           {}
func (nopObserver) ShotFailed(model.DiagnosticKind)        {}

// Pipeline runs the stage list over batches.
type Pipeline struct {
	stages   []Stage
	workers  int
	observer Observer
	log      logrus.FieldLogger
}

// New creates a Pipeline with the default stages.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		stages:   DefaultStages(),
		workers:  runtime.NumCPU(),
		observer: nopObserver{},
		log:      logger.WithComponent("pipeline"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Batch is the shared per-event record collection the stages augment.
type Batch struct {
	Records []model.Record
	index   map[uuid.UUID]int
}

// NewBatch wraps events into records ordered by match id. Events of the same match
// keep their input order.
func NewBatch(events []model.Event) (*Batch, error) {
	recs := make([]model.Record, len(events))
	for i := range events {
		recs[i] = model.Record{Event: events[i]}
	}
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].MatchID < recs[j].MatchID
	})
	b := &Batch{Records: recs, index: make(map[uuid.UUID]int, len(recs))}
	for i := range recs {
		id := recs[i].ID
		if _, dup := b.index[id]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateEventID, id)
		}
		b.index[id] = i
	}
	return b, nil
}

// Lookup returns the record with the given event id.
func (b *Batch) Lookup(id uuid.UUID) (*model.Record, bool) {
	i, ok := b.index[id]
	if !ok {
		return nil, false
	}
	return &b.Records[i], true
}

// Shots returns pointers to every shot record, in batch order.
func (b *Batch) Shots() []*model.Record {
	var out []*model.Record
	for i := range b.Records {
		if b.Records[i].IsShot() {
			out = append(out, &b.Records[i])
		}
	}
	return out
}

// Diagnostics returns the per-event diagnostics keyed by event id.
func (b *Batch) Diagnostics() map[uuid.UUID][]model.Diagnostic {
	out := make(map[uuid.UUID][]model.Diagnostic)
	for i := range b.Records {
		if d := b.Records[i].Diagnostics; len(d) > 0 {
			out[b.Records[i].ID] = d
		}
	}
	return out
}

// ShotFeatures flattens every shot record.
func (b *Batch) ShotFeatures() []model.ShotFeatures {
	var out []model.ShotFeatures
	for i := range b.Records {
		if f, ok := b.Records[i].ShotFeatures(); ok {
			out = append(out, f)
		}
	}
	return out
}

// Run builds a batch from events and derives every column.
func (p *Pipeline) Run(ctx context.Context, events []model.Event) (*Batch, error) {
	b, err := NewBatch(events)
	if err != nil {
		return nil, err
	}
	p.observer.EventsSeen(len(b.Records))
	if err := p.Rerun(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// Rerun re-derives every column of an existing batch.
func (p *Pipeline) Rerun(ctx context.Context, b *Batch) error {
	for i := range b.Records {
		b.Records[i].Diagnostics = nil
	}
	for _, st := range p.stages {
		if err := ctx.Err(); err != nil {
			return err
		}
		start := time.Now()
		err := st.Apply(ctx, p, b)
		elapsed := time.Since(start)
		p.observer.StageDone(st.Name, elapsed, err)
		if err != nil {
			return fmt.Errorf("stage %s: %w", st.Name, err)
		}
		p.log.WithFields(logrus.Fields{
			"stage":   st.Name,
			"events":  len(b.Records),
			"elapsed": elapsed,
		}).Debug("stage done")
	}
	return nil
}
