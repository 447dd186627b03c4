// Package geom holds the small amount of planar geometry the shot features need:
// points, simple polygons and an even-odd containment test.
package geom

import "math"

// Point is a location in pitch units.
type Point struct {
	X, Y float64
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point { return Point{X: x, Y: y} }

// Dist returns the Euclidean distance between p and q.
func (p Point) Dist(q Point) float64 {
	return math.Hypot(q.X-p.X, q.Y-p.Y)
}

// Finite reports whether both coordinates are finite numbers.
func (p Point) Finite() bool {
	return !math.IsNaN(p.X) && !math.IsNaN(p.Y) && !math.IsInf(p.X, 0) && !math.IsInf(p.Y, 0)
}

// Polygon is a closed ring given by its vertices; the closing edge is implicit.
// A polygon with fewer than three vertices is empty and contains nothing.
type Polygon []Point

// Empty reports whether the polygon encloses no area.
func (pg Polygon) Empty() bool { return len(pg) < 3 }

// Contains reports whether p lies inside pg using ray casting (even-odd rule).
// Points on an edge may fall either way, but always the same way for the same input.
func (pg Polygon) Contains(p Point) bool {
	if pg.Empty() {
		return false
	}
	inside := false
	j := len(pg) - 1
	for i := range pg {
		a, b := pg[i], pg[j]
		if (a.Y > p.Y) != (b.Y > p.Y) {
			xCross := (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y) + a.X
			if p.X < xCross {
				inside = !inside
			}
		}
		j = i
	}
	return inside
}

// Triangle builds a three-vertex polygon.
func Triangle(a, b, c Point) Polygon { return Polygon{a, b, c} }

// BoundingBox returns the min and max corners of pts. ok is false for no points.
func BoundingBox(pts []Point) (lo, hi Point, ok bool) {
	if len(pts) == 0 {
		return Point{}, Point{}, false
	}
	lo, hi = pts[0], pts[0]
	for _, p := range pts[1:] {
		lo.X = math.Min(lo.X, p.X)
		lo.Y = math.Min(lo.Y, p.Y)
		hi.X = math.Max(hi.X, p.X)
		hi.Y = math.Max(hi.Y, p.Y)
	}
	return lo, hi, true
}

// Degrees converts radians to degrees.
func Degrees(rad float64) float64 { return rad * 180 / math.Pi }

// Radians converts degrees to radians.
func Radians(deg float64) float64 { return deg * math.Pi / 180 }
