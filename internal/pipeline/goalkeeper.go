package pipeline

import (
	"context"

	"github.com/pable/go-sb-features/internal/model"
)

// findGoalkeeper returns the first opposing goalkeeper in freeze-frame order.
func findGoalkeeper(frame []model.FreezeFramePlayer) (model.FreezeFramePlayer, bool) {
	for _, p := range frame {
		if !p.Teammate && p.Position.IsGoalkeeper() {
			return p, true
		}
	}
	return model.FreezeFramePlayer{}, false
}

func resolveGoalkeeper(r *model.Record) {
	r.Goalkeeper = model.Goalkeeper{}
	if !r.IsShot() {
		return
	}
	gk, ok := findGoalkeeper(r.Shot.FreezeFrame)
	if !ok {
		return
	}
	loc := flatten(gk.Location)
	r.Goalkeeper = model.Goalkeeper{
		PlayerID: model.Some(gk.Player.ID),
		Name:     model.Some(gk.Player.Name),
		X:        loc.X,
		Y:        loc.Y,
	}
}

func applyGoalkeeper(_ context.Context, _ *Pipeline, b *Batch) error {
	for i := range b.Records {
		resolveGoalkeeper(&b.Records[i])
	}
	return nil
}
