package osm2street

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
	"go.uber.org/zap/zaptest"
)

const sampleOSM = `<?xml version="1.0" encoding="UTF-8"?>
<osm version="0.6" generator="handmade">
  <bounds minlat="0.0" minlon="0.0" maxlat="0.002" maxlon="0.002"/>
  <node id="1" lat="0.0005" lon="0.0005" version="1"/>
  <node id="2" lat="0.0005" lon="0.001" version="1">
    <tag k="highway" v="traffic_signals"/>
    <tag k="ele" v="12.5"/>
  </node>
  <node id="3" lat="0.0005" lon="0.0015" version="1"/>
  <node id="4" lat="0.002" lon="0.001" version="1"/>
  <node id="5" lat="0.0010" lon="0.0003" version="1"/>
  <node id="6" lat="0.0010" lon="0.0007" version="1"/>
  <node id="7" lat="0.0014" lon="0.0007" version="1"/>
  <node id="8" lat="0.0014" lon="0.0003" version="1"/>
  <node id="9" lat="0.0001" lon="0.0001" version="1"/>
  <node id="10" lat="0.0001" lon="0.0019" version="1"/>
  <way id="10" version="1">
    <nd ref="1"/>
    <nd ref="2"/>
    <nd ref="3"/>
    <tag k="highway" v="residential"/>
    <tag k="name" v="Main street"/>
  </way>
  <way id="11" version="1">
    <nd ref="4"/>
    <nd ref="2"/>
    <tag k="highway" v="residential"/>
  </way>
  <way id="12" version="1">
    <nd ref="9"/>
    <nd ref="10"/>
    <tag k="highway" v="proposed"/>
  </way>
  <way id="13" version="1">
    <nd ref="9"/>
    <nd ref="10"/>
    <tag k="waterway" v="ditch"/>
  </way>
  <way id="20" version="1">
    <nd ref="5"/>
    <nd ref="6"/>
    <nd ref="7"/>
    <nd ref="8"/>
    <nd ref="5"/>
    <tag k="building" v="yes"/>
    <tag k="amenity" v="cafe"/>
    <tag k="name" v="Cafe"/>
    <tag k="capacity" v="3"/>
  </way>
</osm>`

func writeSampleOSM(t *testing.T) string {
	t.Helper()
	fname := filepath.Join(t.TempDir(), "sample.osm")
	if err := os.WriteFile(fname, []byte(sampleOSM), 0644); err != nil {
		t.Fatal(err)
	}
	return fname
}

func TestReadOSM(t *testing.T) {
	raw, err := ReadOSM(context.Background(), writeSampleOSM(t), MapConfig{DrivingSide: DRIVING_SIDE_RIGHT}, zaptest.NewLogger(t))
	if err != nil {
		t.Error(err)
		return
	}
	correctRoads := []OriginalRoad{
		{WayID: 10, I1: 1, I2: 2},
		{WayID: 10, I1: 2, I2: 3},
		{WayID: 11, I1: 4, I2: 2},
	}
	if len(raw.Roads) != len(correctRoads) {
		t.Errorf("Number of roads must be %d, but got %d", len(correctRoads), len(raw.Roads))
	}
	for _, rID := range correctRoads {
		r, ok := raw.Roads[rID]
		if !ok {
			t.Errorf("Road %s must exist", rID)
			continue
		}
		if len(r.CenterPoints) != 2 {
			t.Errorf("Road %s must have %d points, but got %d", rID, 2, len(r.CenterPoints))
		}
	}
	if name := raw.Roads[correctRoads[0]].Tags.Find("name"); name != "Main street" {
		t.Errorf("Road must keep tags of the way, name must be %q, but got %q", "Main street", name)
	}

	correctTypes := map[osm.NodeID]IntersectionType{
		1: INTERSECTION_DEAD_END,
		2: INTERSECTION_CONTROLLED,
		3: INTERSECTION_DEAD_END,
		4: INTERSECTION_BORDER,
	}
	if len(raw.Intersections) != len(correctTypes) {
		t.Errorf("Number of intersections must be %d, but got %d", len(correctTypes), len(raw.Intersections))
	}
	for nodeID, correct := range correctTypes {
		i, ok := raw.Intersections[OriginalIntersection{NodeID: nodeID}]
		if !ok {
			t.Errorf("Intersection for node %d must exist", nodeID)
			continue
		}
		if i.IntersectionType != correct {
			t.Errorf("Intersection %d must be %s, but got %s", nodeID, correct, i.IntersectionType)
		}
	}
	if ele := raw.Intersections[OriginalIntersection{NodeID: 2}].Elevation; ele != 12.5 {
		t.Errorf("Elevation must be %f, but got %f", 12.5, ele)
	}

	// Projection keeps geographic distances
	i1 := raw.Intersections[OriginalIntersection{NodeID: 1}].Point
	i2 := raw.Intersections[OriginalIntersection{NodeID: 2}].Point
	correctDist := greatCircleDistance(orb.Point{0.0005, 0.0005}, orb.Point{0.001, 0.0005}) * 1000.0
	if dist := findDistance(i1, i2); math.Abs(dist-correctDist) > 0.5 {
		t.Errorf("Distance between nodes must be %f, but got %f", correctDist, dist)
	}

	if len(raw.Buildings) != 1 {
		t.Errorf("Number of buildings must be %d, but got %d", 1, len(raw.Buildings))
		return
	}
	b := raw.Buildings[OriginalBuilding{WayID: 20}]
	if len(b.Polygon) != 5 {
		t.Errorf("Building polygon must have %d points, but got %d", 5, len(b.Polygon))
	}
	if len(b.Amenities) != 1 || b.Amenities[0].Kind != "cafe" || b.Amenities[0].Name != "Cafe" {
		t.Errorf("Building must have single cafe amenity, but got %v", b.Amenities)
	}
	if b.NumParkingSpots != 3 {
		t.Errorf("Number of parking spots must be %d, but got %d", 3, b.NumParkingSpots)
	}
	if raw.Bounds == nil {
		t.Errorf("Bounds must be set")
	}
}

func TestReadOSMErrors(t *testing.T) {
	if _, err := ReadOSM(context.Background(), filepath.Join(t.TempDir(), "missing.osm"), MapConfig{}, nil); err == nil {
		t.Errorf("Missing file must produce error")
	}
	fname := filepath.Join(t.TempDir(), "sample.txt")
	if err := os.WriteFile(fname, []byte(sampleOSM), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadOSM(context.Background(), fname, MapConfig{}, nil); err == nil {
		t.Errorf("Unknown extension must produce error")
	}
}

func TestIsRoadWay(t *testing.T) {
	cases := []struct {
		tags    osm.Tags
		correct bool
	}{
		{osm.Tags{{Key: "highway", Value: "primary"}}, true},
		{osm.Tags{{Key: "highway", Value: "footway"}}, true},
		{osm.Tags{{Key: "highway", Value: "construction"}}, false},
		{osm.Tags{{Key: "highway", Value: "pedestrian"}, {Key: "area", Value: "yes"}}, false},
		{osm.Tags{{Key: "railway", Value: "rail"}}, false},
	}
	for i, tc := range cases {
		if isRoad := isRoadWay(tc.tags); isRoad != tc.correct {
			t.Errorf("Case #%d: must be %t, but got %t", i, tc.correct, isRoad)
		}
	}
}
