package pipeline

import (
	"context"
	"math"

	"github.com/pable/go-sb-features/internal/geom"
	"github.com/pable/go-sb-features/internal/model"
)

// Replacement x for a shooter or keeper standing exactly on the goal centre,
// where distance is zero and the angle undefined.
const (
	shooterGoalCentreX = 119.66666
	keeperGoalCentreX  = 119.88888
)

func offGoalCentre(x float64) func(geom.Point) geom.Point {
	return func(p geom.Point) geom.Point {
		if p == model.Goal {
			p.X = x
		}
		return p
	}
}

func distToGoal(p geom.Point) float64 { return p.Dist(model.Goal) }

// angleToGoal is the angle in degrees between the goal line and the line from p to
// the goal centre, running 0..180 from the y<40 touchline round to the y>40 one.
func angleToGoal(p geom.Point) model.Opt[float64] {
	d := distToGoal(p)
	if d == 0 {
		return model.None[float64]()
	}
	ratio := math.Max(0, math.Min(1, (model.GoalX-p.X)/d))
	if p.Y <= model.GoalY {
		return model.Some(geom.Degrees(math.Asin(ratio)))
	}
	return model.Some(90 + geom.Degrees(math.Acos(ratio)))
}

// avgShotVelocity is planar start-to-end distance over duration; absent for a
// missing or non-positive duration.
func avgShotVelocity(start, end model.Opt[geom.Point], duration model.Opt[float64]) model.Opt[float64] {
	dur, ok := duration.Get()
	if !ok || dur <= 0 {
		return model.None[float64]()
	}
	return model.Finite(model.Map2(start, end, func(s, e geom.Point) float64 {
		return s.Dist(e) / dur
	}))
}

func deriveShotAngles(r *model.Record) {
	r.Angles = model.ShotAngles{}
	if !r.IsShot() {
		return
	}
	shooter := model.Map(r.Locations.Location.Point(), offGoalCentre(shooterGoalCentreX))
	keeper := model.Map(r.Goalkeeper.Point(), offGoalCentre(keeperGoalCentreX))

	a := &r.Angles
	a.ShooterX = model.Map(shooter, func(p geom.Point) float64 { return p.X })
	a.ShooterY = model.Map(shooter, func(p geom.Point) float64 { return p.Y })
	a.KeeperX = model.Map(keeper, func(p geom.Point) float64 { return p.X })
	a.KeeperY = model.Map(keeper, func(p geom.Point) float64 { return p.Y })

	a.DistToGoal = model.Map(shooter, distToGoal)
	a.AngleToGoal = model.Bind(shooter, angleToGoal)
	a.DistToKeeper = model.Map(keeper, distToGoal)
	a.AngleToKeeper = model.Bind(keeper, angleToGoal)
	a.AngleDeviation = model.Map2(a.AngleToGoal, a.AngleToKeeper, func(g, k float64) float64 {
		return math.Abs(g - k)
	})
	a.AvgShotVelocity = avgShotVelocity(r.Locations.Location.Point(), r.Locations.ShotEnd.Point(), r.Shot.Duration)
	a.DistShooterToKeeper = model.Map2(shooter, keeper, geom.Point.Dist)
}

func applyShotAngles(_ context.Context, _ *Pipeline, b *Batch) error {
	for i := range b.Records {
		deriveShotAngles(&b.Records[i])
	}
	return nil
}
