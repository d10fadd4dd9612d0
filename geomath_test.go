package osm2street

import (
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/paulmach/orb"
)

func TestGreatCircleDistance(t *testing.T) {
	p1 := orb.Point{37.6417350769043, 55.751849391735284}
	p2 := orb.Point{37.668514251708984, 55.73261980350401}
	res := 2.71693096539 // kilometers
	gcd := greatCircleDistance(p1, p2)
	if Round(gcd, 0.0005) != Round(res, 0.0005) {
		t.Errorf("Great circle dist must be %f, but got %f", res, gcd)
	}
}

func Round(x, unit float64) float64 {
	if x > 0 {
		return float64(int64(x/unit+0.5)) * unit
	}
	return float64(int64(x/unit-0.5)) * unit
}

func lineAsString(l orb.LineString) string {
	agg := []string{}
	for _, pt := range l {
		agg = append(agg, fmt.Sprintf("[%f, %f]", pt.X(), pt.Y()))
	}
	return "[" + strings.Join(agg, ",") + "]"
}

func TestOffset(t *testing.T) {
	line := orb.LineString{{10.0, 10.0}, {15.0, 10.0}, {18.0, 15.0}, {18.0, 20.0}, {15.0, 24.0}, {12.0, 24.0}, {10.0, 18.0}, {10.0, 15.0}, {13.0, 12.0}, {15.0, 16.0}}
	distance := 1.0

	leftL := lineAsString(offsetCurve(line, distance))
	rightL := lineAsString(offsetCurve(line, -distance))

	correctLeft := "[[10.000000, 11.000000],[14.433810, 11.000000],[17.000000, 15.276984],[17.000000, 19.666667],[14.500000, 23.000000],[12.720759, 23.000000],[11.000000, 17.837722],[11.000000, 15.414214],[12.726049, 13.688165],[14.105573, 16.447214]]"
	if leftL != correctLeft {
		t.Errorf("Left offset line should be '%s' but got '%s'", correctLeft, leftL)
	}
	correctRight := "[[10.000000, 9.000000],[15.566190, 9.000000],[19.000000, 14.723016],[19.000000, 20.333333],[15.500000, 25.000000],[11.279241, 25.000000],[9.000000, 18.162278],[9.000000, 14.585786],[13.273951, 10.311835],[15.894427, 15.552786]]"
	if rightL != correctRight {
		t.Errorf("Right offset line should be '%s' but got '%s'", correctRight, rightL)
	}
}

func TestOffsetSkipsRepeatedPoints(t *testing.T) {
	line := orb.LineString{{0, 0}, {5, 0}, {5, 0}, {10, 0}}
	offset := offsetCurve(line, 2.0)
	// Collinear segments collapse into single one
	if len(offset) != 2 {
		t.Errorf("Offset line must have %d points, but got %d", 2, len(offset))
		return
	}
	for _, pt := range offset {
		if math.Abs(pt.Y()-2.0) > 1e-9 {
			t.Errorf("Offset point must be at y=%f, but got %v", 2.0, pt)
		}
	}
}

func TestIntersect(t *testing.T) {
	pt, err := intersect(orb.Point{0, 0}, orb.Point{1, 1}, orb.Point{0, 2}, orb.Point{1, 1})
	if err != nil {
		t.Error(err)
		return
	}
	if !samePoint(pt, orb.Point{1, 1}) {
		t.Errorf("Intersection must be %v, but got %v", orb.Point{1, 1}, pt)
	}
	_, err = intersect(orb.Point{0, 0}, orb.Point{1, 0}, orb.Point{0, 1}, orb.Point{1, 1})
	if err == nil {
		t.Errorf("Parallel lines must not intersect")
	}
}

func TestSegmentsIntersection(t *testing.T) {
	pt, ok := segmentsIntersection(orb.Point{0, 0}, orb.Point{10, 0}, orb.Point{5, -5}, orb.Point{5, 5})
	if !ok {
		t.Errorf("Segments must intersect")
	}
	if !samePoint(pt, orb.Point{5, 0}) {
		t.Errorf("Intersection must be %v, but got %v", orb.Point{5, 0}, pt)
	}
	if _, ok := segmentsIntersection(orb.Point{0, 0}, orb.Point{10, 0}, orb.Point{11, -5}, orb.Point{11, 5}); ok {
		t.Errorf("Segments must not intersect")
	}
}

func TestProjectOnSegment(t *testing.T) {
	closest, along := projectOnSegment(orb.Point{0, 0}, orb.Point{10, 0}, orb.Point{3, 4})
	if !samePoint(closest, orb.Point{3, 0}) || math.Abs(along-3.0) > 1e-9 {
		t.Errorf("Projection must be %v at %f, but got %v at %f", orb.Point{3, 0}, 3.0, closest, along)
	}
	closest, along = projectOnSegment(orb.Point{0, 0}, orb.Point{10, 0}, orb.Point{-3, 4})
	if closest != (orb.Point{0, 0}) || along != 0 {
		t.Errorf("Projection must be clamped to %v, but got %v at %f", orb.Point{0, 0}, closest, along)
	}
}

func TestNormalizeAngle(t *testing.T) {
	if a := normalizeAngle(-math.Pi / 2); math.Abs(a-3*math.Pi/2) > 1e-12 {
		t.Errorf("Angle must be %f, but got %f", 3*math.Pi/2, a)
	}
	if a := normalizeAngle(5 * math.Pi); math.Abs(a-math.Pi) > 1e-12 {
		t.Errorf("Angle must be %f, but got %f", math.Pi, a)
	}
}
