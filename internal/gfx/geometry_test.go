package gfx_test

import (
	"testing"

	"github.com/inkboard/diagram/internal/gfx"
	"github.com/teleivo/assertive/assert"
)

func TestArcLengthMidpoint(t *testing.T) {
	tests := map[string]struct {
		in   gfx.Polyline
		want gfx.Point
	}{
		"TwoPointLine": {
			in:   gfx.Polyline{{X: 0, Y: 0}, {X: 10, Y: 0}},
			want: gfx.Point{X: 5, Y: 0},
		},
		"LShape": {
			// Total length 20: the midpoint sits exactly on the corner.
			in:   gfx.Polyline{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}},
			want: gfx.Point{X: 10, Y: 0},
		},
		"ZShapeInsideSegment": {
			// Total length 40: midpoint is 20 along, inside the middle leg.
			in:   gfx.Polyline{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 20}, {X: 20, Y: 20}},
			want: gfx.Point{X: 10, Y: 10},
		},
		"SinglePoint": {
			in:   gfx.Polyline{{X: 3, Y: 4}},
			want: gfx.Point{X: 3, Y: 4},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			got := test.in.ArcLengthMidpoint()
			assert.EqualValues(t, got, test.want, "ArcLengthMidpoint(%v)", test.in)
		})
	}
}

func TestArcLengthMidpointNeverAtEndpointOfTwoPointLine(t *testing.T) {
	// The naive points[len/2] picks an endpoint here; the arc-length walk
	// must not.
	pl := gfx.Polyline{{X: 0, Y: 0}, {X: 100, Y: 0}}
	mid := pl.ArcLengthMidpoint()
	assert.True(t, gfx.Distance(mid, pl[0]) >= 5, "midpoint away from start")
	assert.True(t, gfx.Distance(mid, pl[1]) >= 5, "midpoint away from end")
}

func TestPointAtFraction(t *testing.T) {
	pl := gfx.Polyline{{X: 0, Y: 0}, {X: 10, Y: 0}}
	assert.EqualValues(t, pl.PointAtFraction(0.25), gfx.Point{X: 2.5, Y: 0}, "quarter point")
	assert.EqualValues(t, pl.PointAtFraction(0), gfx.Point{X: 0, Y: 0}, "start")
	assert.EqualValues(t, pl.PointAtFraction(1), gfx.Point{X: 10, Y: 0}, "end")
}

func TestPlaceLabelAnchorsSeparates(t *testing.T) {
	// Two identical routes would collide at the shared midpoint; the
	// second anchor must slide along its path.
	routes := []gfx.Polyline{
		{{X: 0, Y: 0}, {X: 100, Y: 0}},
		{{X: 0, Y: 0}, {X: 100, Y: 0}},
	}
	anchors := gfx.PlaceLabelAnchors(routes, 10)
	assert.True(t, gfx.Distance(anchors[0], anchors[1]) >= 10, "anchors separated")
	for i, a := range anchors {
		assert.True(t, gfx.DistancePointToPolyline(a, routes[i]) <= 2, "anchor %d stays on its path", i)
	}
}

func TestDistancePointToPolyline(t *testing.T) {
	pl := gfx.Polyline{{X: 0, Y: 0}, {X: 10, Y: 0}}
	assert.EqualValues(t, gfx.DistancePointToPolyline(gfx.Point{X: 5, Y: 3}, pl), 3.0, "perpendicular distance")
	assert.EqualValues(t, gfx.DistancePointToPolyline(gfx.Point{X: 13, Y: 4}, pl), 5.0, "distance past the end clamps to the endpoint")
}

func TestRectUnionAndContains(t *testing.T) {
	a := gfx.Rect{X: 0, Y: 0, W: 10, H: 10}
	b := gfx.Rect{X: 20, Y: 5, W: 10, H: 10}
	u := a.Union(b)
	assert.EqualValues(t, u, gfx.Rect{X: 0, Y: 0, W: 30, H: 15}, "union")
	assert.True(t, u.Contains(gfx.Point{X: 15, Y: 7}), "contains interior point")
	assert.False(t, a.Contains(gfx.Point{X: 11, Y: 0}), "outside right edge")
}

func TestTangentAndPerpendicular(t *testing.T) {
	pl := gfx.Polyline{{X: 0, Y: 0}, {X: 0, Y: 10}}
	tan := pl.Tangent()
	assert.EqualValues(t, tan, gfx.Point{X: 0, Y: 1}, "unit tangent")
	assert.EqualValues(t, gfx.Perpendicular(tan), gfx.Point{X: -1, Y: 0}, "perpendicular")
}

func TestEscapeText(t *testing.T) {
	got := gfx.EscapeText(`a < b & "c" > 'd'`)
	assert.EqualValues(t, got, "a &lt; b &amp; &quot;c&quot; &gt; &#39;d&#39;", "all five characters escaped")
}
