package osm2street

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
)

func TestGPSBoundsRoundTrip(t *testing.T) {
	bounds := NewGPSBounds(orb.Bound{Min: orb.Point{37.60, 55.70}, Max: orb.Point{37.62, 55.72}})
	origin := bounds.Convert(orb.Point{37.60, 55.70})
	if !almostEqualPoints(origin, orb.Point{0, 0}, 1e-9) {
		t.Errorf("Minimum corner must become origin, but got %v", origin)
	}
	pt := orb.Point{37.6123, 55.7087}
	back := bounds.ConvertBack(bounds.Convert(pt))
	if !almostEqualPoints(back, pt, 1e-9) {
		t.Errorf("Round trip must return %v, but got %v", pt, back)
	}
	planar := bounds.PlanarBound()
	width := planar.Max[0] - planar.Min[0]
	correctWidth := greatCircleDistance(orb.Point{37.60, 55.71}, orb.Point{37.62, 55.71}) * 1000.0
	if math.Abs(width-correctWidth) > 1.0 {
		t.Errorf("Planar width must be about %f, but got %f", correctWidth, width)
	}
	if !bounds.Contains(pt) || bounds.Contains(orb.Point{0, 0}) {
		t.Errorf("Contains must check geographic bound")
	}
}

func TestPolyLineValidation(t *testing.T) {
	if _, err := newPolyLine(orb.LineString{{0, 0}, {0.001, 0}}); err != ErrTooFewPoints {
		t.Errorf("Error must be %v, but got %v", ErrTooFewPoints, err)
	}
	if _, err := newPolyLine(orb.LineString{{0, 0}, {10, 10}, {10, 0}, {0, 10}}); err != ErrSelfIntersecting {
		t.Errorf("Error must be %v, but got %v", ErrSelfIntersecting, err)
	}
	doubledBack := []orb.LineString{
		{{0, 0}, {10, 0}, {5, 0}},
		{{0, 0}, {10, 0}, {20, 0}, {5, 0}},
		{{0, 0}, {10, 0}, {10, 5}, {10, -5}},
		{{0, 0}, {10, 0}, {10, 10}, {5, 10}, {5, 0}, {15, 0}},
	}
	for _, pts := range doubledBack {
		if _, err := newPolyLine(pts); err != ErrSelfIntersecting {
			t.Errorf("Error for %v must be %v, but got %v", pts, ErrSelfIntersecting, err)
		}
	}
	if _, err := newPolyLine(orb.LineString{{0, 0}, {10, 0}, {20, 0}, {30, 0}}); err != nil {
		t.Errorf("Straight line with collinear points must be valid, but got %v", err)
	}
	line, err := newPolyLine(orb.LineString{{0, 0}, {0, 0}, {10, 0}, {10, 10}})
	if err != nil {
		t.Error(err)
		return
	}
	if len(line) != 3 {
		t.Errorf("Repeated points must be dropped, number of points must be %d, but got %d", 3, len(line))
	}
}

func TestExactSlice(t *testing.T) {
	line := orb.LineString{{0, 0}, {10, 0}, {10, 10}}
	slice := exactSlice(line, 5, 15)
	correct := orb.LineString{{5, 0}, {10, 0}, {10, 5}}
	if len(slice) != len(correct) {
		t.Errorf("Number of points must be %d, but got %d", len(correct), len(slice))
		return
	}
	for i := range slice {
		if !almostEqualPoints(slice[i], correct[i], 1e-9) {
			t.Errorf("Point #%d must be %v, but got %v", i, correct[i], slice[i])
		}
	}
	if empty := exactSlice(line, 15, 5); empty != nil {
		t.Errorf("Inverted slice must be empty, but got %v", empty)
	}
}

func TestProjectOnLine(t *testing.T) {
	line := orb.LineString{{0, 0}, {10, 0}, {10, 10}}
	closest, along, dist := projectOnLine(line, orb.Point{12, 4})
	if !almostEqualPoints(closest, orb.Point{10, 4}, 1e-9) || math.Abs(along-14) > 1e-9 || math.Abs(dist-2) > 1e-9 {
		t.Errorf("Projection must be %v at %f (dist %f), but got %v at %f (dist %f)", orb.Point{10, 4}, 14.0, 2.0, closest, along, dist)
	}
}

func TestConvexHullAndSimplePolygon(t *testing.T) {
	bowTie := []orb.Point{{0, 0}, {10, 10}, {10, 0}, {0, 10}}
	if isSimplePolygon(bowTie) {
		t.Errorf("Bow tie must not be simple")
	}
	hull := convexHull(append(bowTie, orb.Point{5, 5}))
	if len(hull) != 4 {
		t.Errorf("Hull must have %d vertices, but got %d: %v", 4, len(hull), hull)
	}
	if !isSimplePolygon(hull) || signedArea(hull) <= 0 {
		t.Errorf("Hull must be simple counterclockwise polygon")
	}
}
