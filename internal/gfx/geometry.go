// Package gfx holds the small geometric primitives shared by every layout
// and SVG-emission package: points, rectangles, polylines, and the
// arc-length midpoint contract used for edge label anchors.
package gfx

import "math"

// Point is a 2D coordinate in SVG user-space units.
type Point struct {
	X, Y float64
}

// Rect is an axis-aligned bounding box.
type Rect struct {
	X, Y, W, H float64
}

func (r Rect) Right() float64   { return r.X + r.W }
func (r Rect) Bottom() float64  { return r.Y + r.H }
func (r Rect) CenterX() float64 { return r.X + r.W/2 }
func (r Rect) CenterY() float64 { return r.Y + r.H/2 }

// Contains reports whether p lies inside r (borders inclusive).
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.Right() && p.Y >= r.Y && p.Y <= r.Bottom()
}

// Union returns the smallest rectangle containing both r and o.
func (r Rect) Union(o Rect) Rect {
	minX := math.Min(r.X, o.X)
	minY := math.Min(r.Y, o.Y)
	maxX := math.Max(r.Right(), o.Right())
	maxY := math.Max(r.Bottom(), o.Bottom())
	return Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

// Polyline is an ordered, non-empty list of points describing an edge
// route. The layout solver's routes and the sequence self-loop are made of
// axis-aligned segments only.
type Polyline []Point

// Length returns the total Euclidean length of the polyline's segments.
func (pl Polyline) Length() float64 {
	var total float64
	for i := 1; i < len(pl); i++ {
		total += dist(pl[i-1], pl[i])
	}
	return total
}

// ArcLengthMidpoint returns the point at exactly 50% of the polyline's
// total length, interpolating inside the straddling segment. This is the
// canonical label anchor contract: implementations must
// never fall back to points[len/2], which degenerates to an endpoint for a
// 2-point line and violates the "no label at endpoint" property.
func (pl Polyline) ArcLengthMidpoint() Point {
	switch len(pl) {
	case 0:
		return Point{}
	case 1:
		return pl[0]
	}

	total := pl.Length()
	if total == 0 {
		return pl[0]
	}

	target := total / 2
	var walked float64
	for i := 1; i < len(pl); i++ {
		seg := dist(pl[i-1], pl[i])
		if walked+seg >= target {
			remaining := target - walked
			t := 0.0
			if seg > 0 {
				t = remaining / seg
			}
			return lerp(pl[i-1], pl[i], t)
		}
		walked += seg
	}
	return pl[len(pl)-1]
}

// Bounds returns the bounding rectangle of the polyline's points.
func (pl Polyline) Bounds() Rect {
	if len(pl) == 0 {
		return Rect{}
	}
	minX, minY := pl[0].X, pl[0].Y
	maxX, maxY := pl[0].X, pl[0].Y
	for _, p := range pl[1:] {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	return Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

// Tangent returns the unit vector pointing from the second-to-last point
// to the last point, used by the ER crow's-foot marker geometry.
// It returns (0, 1) for a degenerate single-point polyline.
func (pl Polyline) Tangent() Point {
	if len(pl) < 2 {
		return Point{X: 0, Y: 1}
	}
	a, b := pl[len(pl)-2], pl[len(pl)-1]
	dx, dy := b.X-a.X, b.Y-a.Y
	d := math.Hypot(dx, dy)
	if d == 0 {
		return Point{X: 0, Y: 1}
	}
	return Point{X: dx / d, Y: dy / d}
}

// Perpendicular rotates a unit vector by 90 degrees.
func Perpendicular(t Point) Point {
	return Point{X: -t.Y, Y: t.X}
}

func dist(a, b Point) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

func lerp(a, b Point, t float64) Point {
	return Point{X: a.X + (b.X-a.X)*t, Y: a.Y + (b.Y-a.Y)*t}
}

// DistancePointToSegment returns the shortest distance from p to the
// segment ab. Used by tests validating the label-on-path invariant.
func DistancePointToSegment(p, a, b Point) float64 {
	abx, aby := b.X-a.X, b.Y-a.Y
	apx, apy := p.X-a.X, p.Y-a.Y
	lenSq := abx*abx + aby*aby
	if lenSq == 0 {
		return dist(p, a)
	}
	t := (apx*abx + apy*aby) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	proj := Point{X: a.X + t*abx, Y: a.Y + t*aby}
	return dist(p, proj)
}

// DistancePointToPolyline returns the minimum distance from p to the
// closest segment of pl.
func DistancePointToPolyline(p Point, pl Polyline) float64 {
	if len(pl) == 0 {
		return math.Inf(1)
	}
	if len(pl) == 1 {
		return dist(p, pl[0])
	}
	min := math.Inf(1)
	for i := 1; i < len(pl); i++ {
		d := DistancePointToSegment(p, pl[i-1], pl[i])
		if d < min {
			min = d
		}
	}
	return min
}

// Distance is the Euclidean distance between two points.
func Distance(a, b Point) float64 {
	return dist(a, b)
}
