package osm2street

import (
	"fmt"
	"math"
	"sort"

	"github.com/paulmach/orb"
)

// GeometryOptions are tolerances of the intersection polygon synthesis
type GeometryOptions struct {
	// ParallelTolerance is the smallest |sin| of angle between two edge lines which still counts as converging
	ParallelTolerance float64
	// MaxTrimFactor bounds trimming (and so polygon size) by factor of the biggest incident half-width
	MaxTrimFactor float64
	// MinRoadLength is the shortest road allowed to remain after trimming (meters)
	MinRoadLength float64
	// ThroughTrim is how much straight roads are cut back at intersections of degree 2 (meters)
	ThroughTrim float64
	// MaxThroughBend is the maximum deviation from straight line (radians) handled as simple pass-through
	MaxThroughBend float64
}

// DefaultGeometryOptions returns tolerances used unless configured otherwise
func DefaultGeometryOptions() GeometryOptions {
	return GeometryOptions{
		ParallelTolerance: 0.017,
		MaxTrimFactor:     10.0,
		MinRoadLength:     0.5,
		ThroughTrim:       0.1,
		MaxThroughBend:    math.Pi / 3.0,
	}
}

// approach is the road as seen from the intersection: its geometry goes outward, away from the intersection
type approach struct {
	road      *InitialRoad
	atSrc     bool
	outward   orb.LineString
	node      orb.Point
	dir       orb.Point
	angle     float64
	halfWidth float64
}

func newApproach(i *InitialIntersection, road *InitialRoad) approach {
	outward := road.TrimmedCenterPts
	atSrc := road.Src == i.ID
	if !atSrc {
		outward = reverseLine(outward)
	}
	// Direction is taken at some distance from the node: short first segments must not define the heading
	ahead, _ := pointAlong(outward, math.Max(road.HalfWidth, 1.0))
	dir, _ := unitVector(outward[0], ahead)
	return approach{
		road:      road,
		atSrc:     atSrc,
		outward:   outward,
		node:      outward[0],
		dir:       dir,
		angle:     angleOf(dir),
		halfWidth: road.HalfWidth,
	}
}

// edgePoint returns point of the left (CCW) or right edge of the road at given distance from the intersection
func (a approach) edgePoint(distance float64, left bool) orb.Point {
	pt, dir := pointAlong(a.outward, distance)
	normal := leftNormal(dir)
	if !left {
		normal = orb.Point{-normal[0], -normal[1]}
	}
	return projectAway(pt, normal, a.halfWidth)
}

// edgeLine returns the outward center line shifted to the left (CCW) or right edge of the road
func (a approach) edgeLine(left bool) orb.LineString {
	if left {
		return offsetCurve(a.outward, a.halfWidth)
	}
	return offsetCurve(a.outward, -a.halfWidth)
}

// SynthesizeIntersections computes polygon of every intersection and trims incident roads to it.
// It is the only place where road geometry changes after the graph has been built
func (m *InitialMap) SynthesizeIntersections(opts GeometryOptions, diag *Diagnostics) {
	for _, id := range sortedIntersectionIDs(m.Intersections) {
		i := m.Intersections[id]
		i.Polygon = m.intersectionPolygon(i, opts, diag)
	}
}

func (m *InitialMap) sortedApproaches(i *InitialIntersection) []approach {
	roads := i.SortedRoads()
	approaches := make([]approach, 0, len(roads))
	for _, rID := range roads {
		approaches = append(approaches, newApproach(i, m.Roads[rID]))
	}
	sort.SliceStable(approaches, func(a, b int) bool {
		if approaches[a].angle != approaches[b].angle {
			return approaches[a].angle < approaches[b].angle
		}
		return approaches[a].road.ID.Less(approaches[b].road.ID)
	})
	return approaches
}

// intersectionPolygon returns counterclockwise polygon of the intersection
func (m *InitialMap) intersectionPolygon(i *InitialIntersection, opts GeometryOptions, diag *Diagnostics) []orb.Point {
	approaches := m.sortedApproaches(i)
	maxHalfWidth := 0.0
	for _, a := range approaches {
		maxHalfWidth = math.Max(maxHalfWidth, a.halfWidth)
	}

	var pts []orb.Point
	switch len(approaches) {
	case 1:
		pts = deadEndPolygon(approaches[0])
		trimRoad(approaches[0], approaches[0].halfWidth, i.ID, opts, diag)
	case 2:
		if trim, ok := throughTrim(approaches[0], approaches[1], opts); ok {
			trims := []float64{trim, trim}
			if pts = throughPolygon(approaches[0], approaches[1], trims); isSimplePolygon(dedupPoints(pts)) {
				trimAll(i, approaches, trims, opts, diag)
				break
			}
		}
		pts = junctionPolygon(i, approaches, maxHalfWidth, opts, diag)
	default:
		pts = junctionPolygon(i, approaches, maxHalfWidth, opts, diag)
	}

	pts = dedupPoints(pts)
	if !isSimplePolygon(pts) {
		pts = dedupPoints(convexHull(pts))
		if len(pts) < 3 {
			// Every candidate vertex collapsed: use square around the node
			h := math.Max(maxHalfWidth, 1.0)
			center := i.Point
			pts = []orb.Point{
				{center[0] - h, center[1] - h},
				{center[0] + h, center[1] - h},
				{center[0] + h, center[1] + h},
				{center[0] - h, center[1] + h},
			}
		}
		diag.Report(WARNING_POLYGON_REPAIRED, i.ID, "synthesized polygon was not simple, replaced with convex hull")
	}
	if signedArea(pts) < 0 {
		for l, r := 0, len(pts)-1; l < r; l, r = l+1, r-1 {
			pts[l], pts[r] = pts[r], pts[l]
		}
	}
	return pts
}

// deadEndPolygon caps single road with rectangle as deep as the road's half-width
func deadEndPolygon(a approach) []orb.Point {
	depth := a.halfWidth
	return []orb.Point{
		a.edgePoint(0, false),
		a.edgePoint(depth, false),
		a.edgePoint(depth, true),
		a.edgePoint(0, true),
	}
}

// throughTrim returns how much two roads are cut back by the thin pass-through quadrilateral.
// Returns false when roads bend too much for that
func throughTrim(a, b approach, opts GeometryOptions) (float64, bool) {
	theta := normalizeAngle(b.angle - a.angle)
	bend := math.Abs(math.Pi - theta)
	if bend > opts.MaxThroughBend {
		return 0, false
	}
	maxHalfWidth := math.Max(a.halfWidth, b.halfWidth)
	trim := math.Max(opts.ThroughTrim, maxHalfWidth*math.Tan(bend/2.0))
	if trim > lineLength(a.outward)-opts.MinRoadLength || trim > lineLength(b.outward)-opts.MinRoadLength {
		return 0, false
	}
	return trim, true
}

// throughPolygon bridges two trimmed roads with quadrilateral made of their end edges
func throughPolygon(a, b approach, trims []float64) []orb.Point {
	pts := make([]orb.Point, 0, 4)
	for idx, ap := range []approach{a, b} {
		pts = append(pts, ap.edgePoint(trims[idx], false), ap.edgePoint(trims[idx], true))
	}
	return pts
}

// junctionPolygon walks roads counterclockwise. Every pair of neighbouring roads trims both of them to the hit
// of the left edge of the first road and the right edge of the next one.
// Polygon is made of edge points of the trimmed road ends, so every road ends on the polygon boundary
func junctionPolygon(i *InitialIntersection, approaches []approach, maxHalfWidth float64, opts GeometryOptions, diag *Diagnostics) []orb.Point {
	n := len(approaches)
	trims := make([]float64, n)
	maxTrim := opts.MaxTrimFactor * maxHalfWidth
	for k := 0; k < n; k++ {
		next := (k + 1) % n
		a, b := approaches[k], approaches[next]
		trimA, trimB, ok := convergingCorner(a, b, maxTrim, opts)
		if !ok {
			fallback := math.Max(a.halfWidth, b.halfWidth)
			diag.Report(WARNING_FALLBACK_TRIM, i.ID, fmt.Sprintf("edges of %s and %s do not converge, trimmed by %.2f", a.road.ID, b.road.ID, fallback))
			trimA, trimB = fallback, fallback
		}
		trims[k] = math.Max(trims[k], trimA)
		trims[next] = math.Max(trims[next], trimB)
	}
	applied := trimAll(i, approaches, trims, opts, diag)
	pts := make([]orb.Point, 0, 2*n)
	for k := 0; k < n; k++ {
		next := (k + 1) % n
		pts = append(pts, approaches[k].edgePoint(applied[k], true), approaches[next].edgePoint(applied[next], false))
	}
	return pts
}

// convergingCorner intersects left edge of the road a with the right edge of the road b.
// Both edges are the center lines shifted by half-widths. Returns distances along both center lines to the hit,
// which must not be farther than maxTrim
func convergingCorner(a, b approach, maxTrim float64, opts GeometryOptions) (float64, float64, bool) {
	if math.Abs(cross(a.dir, b.dir)) < opts.ParallelTolerance {
		return 0, 0, false
	}
	left := a.edgeLine(true)
	right := b.edgeLine(false)
	found := false
	bestA, bestB := 0.0, 0.0
	for p := 1; p < len(left); p++ {
		for q := 1; q < len(right); q++ {
			hit, ok := segmentsIntersection(left[p-1], left[p], right[q-1], right[q])
			if !ok {
				continue
			}
			_, trimA, _ := projectOnLine(a.outward, hit)
			_, trimB, _ := projectOnLine(b.outward, hit)
			if !found || trimA+trimB < bestA+bestB {
				bestA, bestB = trimA, trimB
				found = true
			}
		}
	}
	if !found || bestA > maxTrim || bestB > maxTrim {
		return 0, 0, false
	}
	return bestA, bestB, true
}

// trimAll trims every road and returns trims actually applied
func trimAll(i *InitialIntersection, approaches []approach, trims []float64, opts GeometryOptions, diag *Diagnostics) []float64 {
	applied := make([]float64, len(approaches))
	for idx, a := range approaches {
		if trimRoad(a, trims[idx], i.ID, opts, diag) {
			applied[idx] = trims[idx]
		}
	}
	return applied
}

// trimRoad cuts given distance from the intersection's end of the road. Never extends the road.
// Returns false when the road is left untouched
func trimRoad(a approach, trim float64, iID OriginalIntersection, opts GeometryOptions, diag *Diagnostics) bool {
	if trim <= 0 {
		return false
	}
	road := a.road
	length := lineLength(road.TrimmedCenterPts)
	if length-trim < opts.MinRoadLength {
		diag.Report(WARNING_GEOMETRY_FAILURE, road.ID, fmt.Sprintf("trimming %.2f at %s leaves %.2f of %.2f, keeping the end untrimmed", trim, iID, length-trim, length))
		return false
	}
	if a.atSrc {
		road.TrimmedCenterPts = exactSlice(road.TrimmedCenterPts, trim, length)
	} else {
		road.TrimmedCenterPts = exactSlice(road.TrimmedCenterPts, 0, length-trim)
	}
	return true
}

// signedArea is positive for counterclockwise rings
func signedArea(pts []orb.Point) float64 {
	area := 0.0
	for k := range pts {
		p, q := pts[k], pts[(k+1)%len(pts)]
		area += p[0]*q[1] - q[0]*p[1]
	}
	return area / 2.0
}
