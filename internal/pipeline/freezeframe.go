package pipeline

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"

	"github.com/pable/go-sb-features/internal/geom"
	"github.com/pable/go-sb-features/internal/model"
)

const (
	// coincidentDistance replaces a zero player-to-ball distance before taking reciprocals.
	coincidentDistance = 1.0 / 3
	// noDefenderDistance is reported when no opponent qualifies for a nearest slot.
	noDefenderDistance = 30.0
	// openSpaceArea is the defended area when no defensive-line opponent is in frame.
	openSpaceArea = 1000.0
	// keeperConeHalfWidth is the vertical half-width of the keeper-blocking quad.
	keeperConeHalfWidth = 1.0
)

var (
	postLow  = geom.Pt(model.GoalX, model.GoalPostLowY)
	postHigh = geom.Pt(model.GoalX, model.GoalPostHiY)
)

// shotInput is everything the geometry of one shot depends on.
type shotInput struct {
	id      uuid.UUID
	shooter geom.Point
	angle   float64 // degrees, 0..180
	dist    float64
	keeper  model.Opt[geom.Point]
	frame   []model.FreezeFramePlayer
}

type shotResult struct {
	geometry model.ShotGeometry
	diag     *model.Diagnostic
}

// coneApex projects dist+1 along the folded goal angle from the goal centre,
// on the shooter's side of the goal axis.
func coneApex(shooter geom.Point, angle, dist float64) geom.Point {
	fold := angle
	if fold > 90 {
		fold = 180 - fold
	}
	rad := geom.Radians(fold)
	dx := math.Sin(rad) * (dist + 1)
	dy := math.Cos(rad) * (dist + 1)
	apex := geom.Pt(model.GoalX-dx, model.GoalY+dy)
	if shooter.Y < model.GoalY {
		apex.Y = model.GoalY - dy
	}
	return apex
}

// shotCone is the triangle between the shooter and both goalposts.
func shotCone(shooter geom.Point) geom.Polygon {
	return geom.Triangle(postLow, postHigh, shooter)
}

// keeperCone is the band joining the keeper and the shooter, one unit either side
// of each. It is empty when the keeper is unknown.
func keeperCone(shooter geom.Point, keeper model.Opt[geom.Point]) geom.Polygon {
	k, ok := keeper.Get()
	if !ok {
		return nil
	}
	return geom.Polygon{
		geom.Pt(k.X, k.Y-keeperConeHalfWidth),
		geom.Pt(k.X, k.Y+keeperConeHalfWidth),
		geom.Pt(shooter.X, shooter.Y+keeperConeHalfWidth),
		geom.Pt(shooter.X, shooter.Y-keeperConeHalfWidth),
	}
}

func framePoint(p model.FreezeFramePlayer) (geom.Point, bool) {
	if len(p.Location) < 2 || len(p.Location) > 3 {
		return geom.Point{}, false
	}
	pt := geom.Pt(p.Location[0], p.Location[1])
	return pt, pt.Finite()
}

// deriveGeometry classifies every freeze-frame entry and aggregates defender pressure.
func deriveGeometry(in shotInput) (model.ShotGeometry, error) {
	g := model.ShotGeometry{
		ConeApex:   coneApex(in.shooter, in.angle, in.dist),
		Cone:       shotCone(in.shooter),
		KeeperCone: keeperCone(in.shooter, in.keeper),
		Players:    make([]model.PlayerClass, 0, len(in.frame)),
	}

	for i, p := range in.frame {
		loc, ok := framePoint(p)
		if !ok {
			return model.ShotGeometry{}, fmt.Errorf("%w: freeze-frame entry %d has location %v", ErrMalformedShot, i, p.Location)
		}
		d := loc.Dist(in.shooter)
		if d == 0 {
			d = coincidentDistance
		}
		g.Players = append(g.Players, model.PlayerClass{
			Player:       p.Player,
			Position:     p.Position,
			Teammate:     p.Teammate,
			Location:     loc,
			DistToBall:   d,
			InCone:       g.Cone.Contains(loc),
			InKeeperCone: g.KeeperCone.Contains(loc),
			Forward:      loc.X >= in.shooter.X,
		})
	}

	var (
		recips, recipsInCone []float64
		forward, rearward    []float64
		lineup               []geom.Point
	)
	for _, pc := range g.Players {
		if pc.Teammate {
			if pc.Forward {
				g.AttackersBehindBall++
			}
			continue
		}
		if pc.Forward && pc.InKeeperCone {
			g.KeeperConeDefenders++
		}
		if pc.Position.IsDefender() {
			lineup = append(lineup, pc.Location)
		}
		if pc.Position.IsGoalkeeper() {
			continue
		}
		if !pc.Forward {
			rearward = append(rearward, pc.DistToBall)
			continue
		}
		g.DefendersBehindBall++
		forward = append(forward, pc.DistToBall)
		recips = append(recips, 1/pc.DistToBall)
		if pc.InCone {
			g.DefendersInCone++
			recipsInCone = append(recipsInCone, 1/pc.DistToBall)
		}
	}

	g.Density = floats.Sum(recips)
	g.DensityInCone = floats.Sum(recipsInCone)
	g.NearestDefender, g.SecondNearestDefender = nearestTwo(forward, rearward)
	g.DefendedArea = defendedArea(lineup)

	for _, v := range []float64{g.Density, g.DensityInCone, g.DefendedArea} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return model.ShotGeometry{}, fmt.Errorf("%w: non-finite aggregate", ErrDegenerateGeometry)
		}
	}
	return g, nil
}

// nearestTwo picks the two smallest forward distances, falling back to rearward
// opponents reported as negative distances when nobody is ahead of the ball.
func nearestTwo(forward, rearward []float64) (float64, float64) {
	cands := append([]float64(nil), forward...)
	sign := 1.0
	if len(cands) == 0 {
		cands = append(cands, rearward...)
		sign = -1
	}
	sort.Float64s(cands)
	first, second := noDefenderDistance, noDefenderDistance
	if len(cands) > 0 {
		first = sign * cands[0]
	}
	if len(cands) > 1 {
		second = sign * cands[1]
	}
	return first, second
}

// defendedArea is the bounding-box area of the opposing defensive line.
func defendedArea(pts []geom.Point) float64 {
	lo, hi, ok := geom.BoundingBox(pts)
	if !ok {
		return openSpaceArea
	}
	return (hi.X - lo.X) * (hi.Y - lo.Y)
}

// deriveIsolated runs deriveGeometry and turns errors and panics into a diagnostic.
func deriveIsolated(in shotInput) (res shotResult) {
	defer func() {
		if rec := recover(); rec != nil {
			res = shotResult{diag: &model.Diagnostic{Kind: model.DiagPanic, Message: fmt.Sprint(rec)}}
		}
	}()
	g, err := deriveGeometry(in)
	if err != nil {
		kind := model.DiagMalformedShot
		if errors.Is(err, ErrDegenerateGeometry) {
			kind = model.DiagDegenerateGeometry
		}
		return shotResult{diag: &model.Diagnostic{Kind: kind, Message: err.Error()}}
	}
	return shotResult{geometry: g}
}

// shotInputs collects the shots ready for geometry. Shots whose freeze-frame failed to
// decode are returned as diagnostics straight away.
func shotInputs(b *Batch) ([]shotInput, map[uuid.UUID]shotResult) {
	var inputs []shotInput
	early := make(map[uuid.UUID]shotResult)
	for i := range b.Records {
		r := &b.Records[i]
		if !r.IsShot() {
			continue
		}
		if r.Shot.FreezeFrameErr != nil {
			early[r.ID] = shotResult{diag: &model.Diagnostic{
				Kind:    model.DiagMalformedShot,
				Message: fmt.Errorf("%w: %v", ErrMalformedShot, r.Shot.FreezeFrameErr).Error(),
			}}
			continue
		}
		if r.Shot.FreezeFrame == nil {
			continue
		}
		x, okX := r.Angles.ShooterX.Get()
		y, okY := r.Angles.ShooterY.Get()
		angle, okA := r.Angles.AngleToGoal.Get()
		dist, okD := r.Angles.DistToGoal.Get()
		if !okX || !okY || !okA || !okD {
			continue
		}
		inputs = append(inputs, shotInput{
			id:      r.ID,
			shooter: geom.Pt(x, y),
			angle:   angle,
			dist:    dist,
			keeper:  model.Map2(r.Angles.KeeperX, r.Angles.KeeperY, geom.Pt),
			frame:   r.Shot.FreezeFrame,
		})
	}
	return inputs, early
}

// applyFreezeFrame fans shots out over the worker limit, collects results into a side
// table keyed by event id and joins them back onto the batch.
func applyFreezeFrame(ctx context.Context, p *Pipeline, b *Batch) error {
	for i := range b.Records {
		b.Records[i].Geometry = model.None[model.ShotGeometry]()
	}
	inputs, results := shotInputs(b)

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for _, in := range inputs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res := deriveIsolated(in)
			mu.Lock()
			results[in.id] = res
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for id, res := range results {
		r, ok := b.Lookup(id)
		if !ok {
			continue
		}
		if res.diag != nil {
			r.Diagnostics = append(r.Diagnostics, *res.diag)
			p.observer.ShotFailed(res.diag.Kind)
			p.log.WithFields(logrus.Fields{
				"event_id": id,
				"match_id": r.MatchID,
				"kind":     res.diag.Kind,
			}).Warn(res.diag.Message)
			continue
		}
		r.Geometry = model.Some(res.geometry)
		p.observer.ShotDerived()
	}
	return nil
}
