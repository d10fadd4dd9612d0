package osm2street

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
)

// singleLane returns one forward driving lane of given total width
func singleLane(width float64) []LaneSpec {
	return []LaneSpec{{LaneType: LANE_DRIVING, Direction: DIRECTION_FORWARD, Width: width}}
}

// streetLanes is two driving lanes with sidewalks on both sides. Half-width is 5.5
func streetLanes() []LaneSpec {
	return []LaneSpec{
		{LaneType: LANE_SIDEWALK, Direction: DIRECTION_BACKWARD, Width: 2.0},
		{LaneType: LANE_DRIVING, Direction: DIRECTION_BACKWARD, Width: 3.5},
		{LaneType: LANE_DRIVING, Direction: DIRECTION_FORWARD, Width: 3.5},
		{LaneType: LANE_SIDEWALK, Direction: DIRECTION_FORWARD, Width: 2.0},
	}
}

func addIntersection(raw *RawMap, id int64, pt orb.Point) OriginalIntersection {
	iID := OriginalIntersection{NodeID: osm.NodeID(id)}
	raw.Intersections[iID] = &RawIntersection{Point: pt, IntersectionType: INTERSECTION_PLAIN}
	return iID
}

func addRoad(raw *RawMap, way, i1, i2 int64, specs []LaneSpec, tags osm.Tags, pts ...orb.Point) OriginalRoad {
	rID := OriginalRoad{WayID: osm.WayID(way), I1: osm.NodeID(i1), I2: osm.NodeID(i2)}
	raw.Roads[rID] = &RawRoad{CenterPoints: orb.LineString(pts), Tags: tags, LaneSpecs: specs}
	return rID
}

// starMap puts center intersection 1 at origin and one road of given length per angle (degrees).
// Outer intersections get ids 2, 3, ... and roads go from the center outward
func starMap(angles []float64, length float64, specs []LaneSpec) *RawMap {
	raw := NewRawMap(MapConfig{DrivingSide: DRIVING_SIDE_RIGHT})
	center := orb.Point{0, 0}
	addIntersection(raw, 1, center)
	for idx, angle := range angles {
		rad := degreesToRadians(angle)
		far := orb.Point{length * math.Cos(rad), length * math.Sin(rad)}
		outer := int64(idx + 2)
		addIntersection(raw, outer, far)
		addRoad(raw, int64(100+idx), 1, outer, specs, nil, center, far)
	}
	return raw
}

// streetRaw is single 200 meters street along X axis with sidewalks on both sides
func streetRaw() *RawMap {
	raw := NewRawMap(MapConfig{DrivingSide: DRIVING_SIDE_RIGHT})
	for _, iID := range []OriginalIntersection{addIntersection(raw, 1, orb.Point{0, 0}), addIntersection(raw, 2, orb.Point{200, 0})} {
		raw.Intersections[iID].IntersectionType = INTERSECTION_DEAD_END
	}
	addRoad(raw, 10, 1, 2, streetLanes(), osm.Tags{{Key: "name", Value: "Elm street"}}, orb.Point{0, 0}, orb.Point{200, 0})
	return raw
}

func streetMap(t *testing.T) *Map {
	t.Helper()
	return finalizeRaw(t, streetRaw())
}

func finalizeRaw(t *testing.T, raw *RawMap) *Map {
	t.Helper()
	diag := NewDiagnostics(nil)
	initial, err := BuildInitialMap(raw, nil, diag)
	if err != nil {
		t.Fatal(err)
	}
	initial.SynthesizeIntersections(DefaultGeometryOptions(), diag)
	m, err := initial.Finalize()
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func squareRing(center orb.Point, half float64) orb.Ring {
	return orb.Ring{
		{center[0] - half, center[1] - half},
		{center[0] + half, center[1] - half},
		{center[0] + half, center[1] + half},
		{center[0] - half, center[1] + half},
		{center[0] - half, center[1] - half},
	}
}

func almostEqualPoints(p, q orb.Point, tolerance float64) bool {
	return math.Abs(p[0]-q[0]) <= tolerance && math.Abs(p[1]-q[1]) <= tolerance
}
