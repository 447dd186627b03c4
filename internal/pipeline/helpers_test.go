package pipeline

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pable/go-sb-features/internal/model"
)

const testMatch = 3788741

var (
	posGK  = model.Position{ID: 1, Name: "Goalkeeper"}
	posRCB = model.Position{ID: 3, Name: "Right Center Back"}
	posCB  = model.Position{ID: 4, Name: "Center Back"}
	posLCB = model.Position{ID: 5, Name: "Left Center Back"}
	posCDM = model.Position{ID: 10, Name: "Center Defensive Midfield"}
	posRW  = model.Position{ID: 17, Name: "Right Wing"}
)

func opponent(x, y float64, pos model.Position) model.FreezeFramePlayer {
	return model.FreezeFramePlayer{Location: []float64{x, y}, Position: pos, Player: model.Ref{ID: int(x*100 + y), Name: pos.Name}}
}

func teammate(x, y float64) model.FreezeFramePlayer {
	return model.FreezeFramePlayer{Location: []float64{x, y}, Teammate: true, Position: posRW, Player: model.Ref{ID: int(x*100 + y), Name: "mate"}}
}

func keeper(x, y float64) model.FreezeFramePlayer {
	p := opponent(x, y, posGK)
	p.Player = model.Ref{ID: 20055, Name: "Keeper"}
	return p
}

type eventOpt func(*model.Event)

func atTime(period, minute, second int, ts string) eventOpt {
	return func(e *model.Event) {
		e.Period, e.Minute, e.Second, e.Timestamp = period, minute, second, ts
	}
}

func inPossession(n int) eventOpt { return func(e *model.Event) { e.Possession = n } }

func inMatch(id int) eventOpt { return func(e *model.Event) { e.MatchID = id } }

func passEvent(loc, end []float64, opts ...eventOpt) model.Event {
	e := model.Event{
		ID: uuid.New(), MatchID: testMatch, Period: 1, Type: model.TypePass,
		Location: loc, Pass: &model.Pass{EndLocation: end},
	}
	for _, o := range opts {
		o(&e)
	}
	return e
}

func shotEvent(loc []float64, frame []model.FreezeFramePlayer, opts ...eventOpt) model.Event {
	e := model.Event{
		ID: uuid.New(), MatchID: testMatch, Period: 1, Type: model.TypeShot,
		Location: loc, Shot: &model.Shot{FreezeFrame: frame},
	}
	for _, o := range opts {
		o(&e)
	}
	return e
}

func runAll(t *testing.T, events ...model.Event) *Batch {
	t.Helper()
	b, err := New(WithWorkers(2)).Run(context.Background(), events)
	require.NoError(t, err)
	return b
}

func mustLookup(t *testing.T, b *Batch, id uuid.UUID) *model.Record {
	t.Helper()
	r, ok := b.Lookup(id)
	require.True(t, ok, "record %s not in batch", id)
	return r
}

func some(v float64) model.Opt[float64] { return model.Some(v) }

func newID() uuid.UUID { return uuid.New() }
