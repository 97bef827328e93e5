package metrics_test

import (
	"testing"

	"github.com/inkboard/diagram/internal/metrics"
	"github.com/teleivo/assertive/assert"
)

func TestMeasureWidthScalesWithLength(t *testing.T) {
	short := metrics.MeasureWidth("ab", 14, false)
	long := metrics.MeasureWidth("abcdef", 14, false)
	assert.True(t, long > short, "longer strings measure wider")
}

func TestMeasureWidthMonoIsUniform(t *testing.T) {
	a := metrics.MeasureWidth("iiii", 14, true)
	b := metrics.MeasureWidth("MMMM", 14, true)
	assert.EqualValues(t, a, b, "monospace glyphs share one advance")
}

func TestMeasureWidthProportionalVaries(t *testing.T) {
	narrow := metrics.MeasureWidth("iiii", 14, false)
	wide := metrics.MeasureWidth("MMMM", 14, false)
	assert.True(t, wide > narrow, "wide glyphs measure wider than narrow ones")
}

func TestMeasureLines(t *testing.T) {
	w, h := metrics.MeasureLines("short\nmuch longer line", 14, 20, false)
	wantW := metrics.MeasureWidth("much longer line", 14, false)
	assert.EqualValues(t, w, wantW, "width of the widest line")
	assert.EqualValues(t, h, 40.0, "two lines at the given line height")
}

func TestMeasureWidthDeterministicUnderRepeats(t *testing.T) {
	a := metrics.MeasureWidth("determinism", 14, false)
	b := metrics.MeasureWidth("determinism", 14, false)
	assert.EqualValues(t, a, b, "cache warm-up must not change results")
}
