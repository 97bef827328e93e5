package gfx

// PointAtFraction returns the point at fraction f (0..1) of the
// polyline's total arc length, interpolating inside the straddling
// segment like ArcLengthMidpoint does for f = 0.5.
func (pl Polyline) PointAtFraction(f float64) Point {
	switch len(pl) {
	case 0:
		return Point{}
	case 1:
		return pl[0]
	}
	if f <= 0 {
		return pl[0]
	}
	if f >= 1 {
		return pl[len(pl)-1]
	}

	total := pl.Length()
	if total == 0 {
		return pl[0]
	}
	target := total * f
	var walked float64
	for i := 1; i < len(pl); i++ {
		seg := dist(pl[i-1], pl[i])
		if walked+seg >= target {
			t := 0.0
			if seg > 0 {
				t = (target - walked) / seg
			}
			return lerp(pl[i-1], pl[i], t)
		}
		walked += seg
	}
	return pl[len(pl)-1]
}

// anchorFractions is the preference order for label anchors when earlier
// labels already claimed the space: the arc-length midpoint first, then
// 35/65% and 25/75% of the length, then 42/58% as a last try.
var anchorFractions = []float64{0.5, 0.35, 0.65, 0.25, 0.75, 0.42, 0.58}

// PlaceLabelAnchors assigns one anchor per route, starting from each
// route's arc-length midpoint and sliding along the path when two anchors
// would come closer than minSeparation. Every returned anchor lies on its
// polyline, so the label-on-path invariant holds by construction.
func PlaceLabelAnchors(routes []Polyline, minSeparation float64) []Point {
	anchors := make([]Point, len(routes))
	placed := make([]Point, 0, len(routes))

	for i, route := range routes {
		best := route.ArcLengthMidpoint()
		for _, f := range anchorFractions {
			candidate := route.PointAtFraction(f)
			if clearOf(candidate, placed, minSeparation) {
				best = candidate
				break
			}
		}
		anchors[i] = best
		placed = append(placed, best)
	}
	return anchors
}

func clearOf(p Point, placed []Point, min float64) bool {
	for _, q := range placed {
		if dist(p, q) < min {
			return false
		}
	}
	return true
}
