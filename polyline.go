package osm2street

import (
	"math"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/pkg/errors"
)

// collinearTolerance is the largest deviation (meters, or sine for unit vectors) still treated as collinear
const collinearTolerance = 1e-9

var (
	ErrTooFewPoints     = errors.New("polyline needs at least two distinct points")
	ErrSelfIntersecting = errors.New("polyline intersects itself")
)

// newPolyLine validates raw points and drops consecutive duplicates.
// Returns error when there are not enough distinct points or when line crosses itself
func newPolyLine(pts orb.LineString) (orb.LineString, error) {
	line := make(orb.LineString, 0, len(pts))
	for _, pt := range pts {
		if len(line) > 0 && samePoint(line[len(line)-1], pt) {
			continue
		}
		line = append(line, pt)
	}
	if len(line) < 2 {
		return nil, ErrTooFewPoints
	}
	if selfIntersects(line) {
		return nil, ErrSelfIntersecting
	}
	return line, nil
}

// selfIntersects checks every pair of non-adjacent segments for a hit or collinear overlap
// and every pair of adjacent segments for turning back
func selfIntersects(line orb.LineString) bool {
	for i := 1; i < len(line); i++ {
		if i+1 < len(line) && turnsBack(line[i-1], line[i], line[i+1]) {
			return true
		}
		for j := i + 2; j < len(line); j++ {
			if _, ok := segmentsIntersection(line[i-1], line[i], line[j-1], line[j]); ok {
				return true
			}
			if collinearOverlap(line[i-1], line[i], line[j-1], line[j]) {
				return true
			}
		}
	}
	return false
}

// turnsBack tells if segment [q, r] goes back along [p, q]
func turnsBack(p, q, r orb.Point) bool {
	u, _ := unitVector(p, q)
	v, _ := unitVector(q, r)
	return math.Abs(cross(u, v)) < collinearTolerance && dot(u, v) < 0
}

// collinearOverlap tells if segments [p1, p2] and [p3, p4] lie on the same line and share at least one point
func collinearOverlap(p1, p2, p3, p4 orb.Point) bool {
	dir, segLen := unitVector(p1, p2)
	if segLen == 0 {
		return false
	}
	for _, pt := range []orb.Point{p3, p4} {
		if math.Abs(cross(dir, orb.Point{pt[0] - p1[0], pt[1] - p1[1]})) > collinearTolerance {
			return false
		}
	}
	t3 := dot(dir, orb.Point{p3[0] - p1[0], p3[1] - p1[1]})
	t4 := dot(dir, orb.Point{p4[0] - p1[0], p4[1] - p1[1]})
	return math.Max(0, math.Min(t3, t4)) <= math.Min(segLen, math.Max(t3, t4))
}

// lineLength returns planar length of the line
func lineLength(line orb.LineString) float64 {
	return planar.Length(line)
}

// reverseLine returns reversed copy of the line
func reverseLine(line orb.LineString) orb.LineString {
	reversed := line.Clone()
	reversed.Reverse()
	return reversed
}

// pointAlong returns point on the line at given distance from its start and direction of the segment containing it.
// Distance is clamped to the line length
func pointAlong(line orb.LineString, distance float64) (orb.Point, orb.Point) {
	if distance <= 0 {
		dir, _ := unitVector(line[0], line[1])
		return line[0], dir
	}
	passed := 0.0
	for i := 1; i < len(line); i++ {
		dir, segLen := unitVector(line[i-1], line[i])
		if passed+segLen >= distance {
			return projectAway(line[i-1], dir, distance-passed), dir
		}
		passed += segLen
	}
	dir, _ := unitVector(line[len(line)-2], line[len(line)-1])
	return line[len(line)-1], dir
}

// exactSlice returns part of the line between given distances from its start
func exactSlice(line orb.LineString, start, end float64) orb.LineString {
	total := lineLength(line)
	if start < 0 {
		start = 0
	}
	if end > total {
		end = total
	}
	if end <= start {
		return nil
	}
	startPt, _ := pointAlong(line, start)
	result := orb.LineString{startPt}
	passed := 0.0
	for i := 1; i < len(line); i++ {
		passed += findDistance(line[i-1], line[i])
		if passed <= start {
			continue
		}
		if passed >= end {
			break
		}
		if !samePoint(result[len(result)-1], line[i]) {
			result = append(result, line[i])
		}
	}
	endPt, _ := pointAlong(line, end)
	if samePoint(result[len(result)-1], endPt) {
		if len(result) == 1 {
			return orb.LineString{startPt, endPt}
		}
		result[len(result)-1] = endPt
		return result
	}
	return append(result, endPt)
}

// projectOnLine returns closest point of the line to pt, distance along the line to it and distance between pt and the line
func projectOnLine(line orb.LineString, pt orb.Point) (orb.Point, float64, float64) {
	best := line[0]
	bestAlong := 0.0
	bestDist := findDistance(line[0], pt)
	passed := 0.0
	for i := 1; i < len(line); i++ {
		closest, along := projectOnSegment(line[i-1], line[i], pt)
		dist := findDistance(closest, pt)
		if dist < bestDist {
			best = closest
			bestAlong = passed + along
			bestDist = dist
		}
		passed += findDistance(line[i-1], line[i])
	}
	return best, bestAlong, bestDist
}

// isSimplePolygon tells if ring of points (not closed explicitly) has at least 3 vertices and no self-intersections
func isSimplePolygon(pts []orb.Point) bool {
	n := len(pts)
	if n < 3 {
		return false
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if samePoint(pts[i], pts[j]) {
				return false
			}
		}
	}
	for i := 0; i < n; i++ {
		a1, a2 := pts[i], pts[(i+1)%n]
		for j := i + 1; j < n; j++ {
			if j == i+1 || (i == 0 && j == n-1) {
				// Adjacent edges share vertex
				continue
			}
			b1, b2 := pts[j], pts[(j+1)%n]
			if _, ok := segmentsIntersection(a1, a2, b1, b2); ok {
				return false
			}
		}
	}
	return planar.Area(closeRing(pts)) != 0
}

// closeRing returns ring with the first point repeated at the end
func closeRing(pts []orb.Point) orb.Ring {
	ring := make(orb.Ring, 0, len(pts)+1)
	ring = append(ring, pts...)
	if len(pts) > 0 && pts[0] != pts[len(pts)-1] {
		ring = append(ring, pts[0])
	}
	return ring
}

// openRing drops closing point of the ring if present
func openRing(ring orb.Ring) []orb.Point {
	if len(ring) > 1 && ring[0] == ring[len(ring)-1] {
		return ring[:len(ring)-1]
	}
	return ring
}

// dedupPoints drops consecutive (cyclic) duplicates
func dedupPoints(pts []orb.Point) []orb.Point {
	result := make([]orb.Point, 0, len(pts))
	for _, pt := range pts {
		if len(result) > 0 && samePoint(result[len(result)-1], pt) {
			continue
		}
		result = append(result, pt)
	}
	for len(result) > 1 && samePoint(result[0], result[len(result)-1]) {
		result = result[:len(result)-1]
	}
	return result
}

// convexHull returns counterclockwise hull of the points (Andrew's monotone chain)
func convexHull(pts []orb.Point) []orb.Point {
	sorted := make([]orb.Point, len(pts))
	copy(sorted, pts)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i][0] != sorted[j][0] {
			return sorted[i][0] < sorted[j][0]
		}
		return sorted[i][1] < sorted[j][1]
	})
	if len(sorted) < 3 {
		return sorted
	}
	turn := func(o, a, b orb.Point) float64 {
		return cross(orb.Point{a[0] - o[0], a[1] - o[1]}, orb.Point{b[0] - o[0], b[1] - o[1]})
	}
	hull := make([]orb.Point, 0, 2*len(sorted))
	for _, pt := range sorted {
		for len(hull) >= 2 && turn(hull[len(hull)-2], hull[len(hull)-1], pt) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, pt)
	}
	lower := len(hull) + 1
	for i := len(sorted) - 2; i >= 0; i-- {
		pt := sorted[i]
		for len(hull) >= lower && turn(hull[len(hull)-2], hull[len(hull)-1], pt) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, pt)
	}
	return hull[:len(hull)-1]
}
