package pipeline

import (
	"context"

	"github.com/pable/go-sb-features/internal/model"
)

// flatten splits a raw coordinate sequence into scalar columns. Absent or
// too-short sequences yield absent columns; z is set only for exactly three values.
func flatten(seq []float64) model.Coords {
	var c model.Coords
	if len(seq) < 2 {
		return c
	}
	c.X = model.Finite(model.Some(seq[0]))
	c.Y = model.Finite(model.Some(seq[1]))
	if len(seq) == 3 {
		c.Z = model.Finite(model.Some(seq[2]))
	}
	return c
}

func normalizeLocations(r *model.Record) {
	r.Locations = model.Locations{Location: flatten(r.Location)}
	if r.Pass != nil {
		r.Locations.PassEnd = flatten(r.Pass.EndLocation)
	}
	if r.Shot != nil {
		r.Locations.ShotEnd = flatten(r.Shot.EndLocation)
	}
}

func applyLocations(_ context.Context, _ *Pipeline, b *Batch) error {
	for i := range b.Records {
		normalizeLocations(&b.Records[i])
	}
	return nil
}
