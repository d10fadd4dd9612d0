package osm2street

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	geojson "github.com/paulmach/go.geojson"
	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
)

func streetResult(t *testing.T) *Result {
	t.Helper()
	raw := streetRaw()
	raw.Buildings[OriginalBuilding{WayID: 501}] = &RawBuilding{
		Polygon: squareRing(orb.Point{100, 30}, 5),
		Tags:    osm.Tags{{Key: "building", Value: "retail"}, {Key: "name", Value: "Corner store"}},
	}
	res, err := NewConverter().Convert(context.Background(), raw)
	if err != nil {
		t.Fatal(err)
	}
	return res
}

func readCSV(t *testing.T, fname string) [][]string {
	t.Helper()
	file, err := os.Open(fname)
	if err != nil {
		t.Fatal(err)
	}
	defer file.Close()
	reader := csv.NewReader(file)
	reader.Comma = ';'
	records, err := reader.ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	return records
}

func TestExportToCSV(t *testing.T) {
	res := streetResult(t)
	dir := t.TempDir()
	if err := res.ExportToCSV(filepath.Join(dir, "map.csv"), GEOM_FORMAT_WKT); err != nil {
		t.Error(err)
		return
	}
	correctRows := map[string]int{
		"map_intersections.csv": 3,
		"map_roads.csv":         2,
		"map_lanes.csv":         5,
		"map_buildings.csv":     2,
	}
	for fname, rows := range correctRows {
		records := readCSV(t, filepath.Join(dir, fname))
		if len(records) != rows {
			t.Errorf("Number of rows in '%s' must be %d, but got %d", fname, rows, len(records))
		}
	}

	intersections := readCSV(t, filepath.Join(dir, "map_intersections.csv"))
	if intersections[1][2] != "dead_end" {
		t.Errorf("Intersection type must be '%s', but got '%s'", "dead_end", intersections[1][2])
	}
	if geom := intersections[1][len(intersections[1])-1]; !strings.HasPrefix(geom, "POLYGON") {
		t.Errorf("Intersection geometry must be WKT polygon, but got '%s'", geom)
	}
	roads := readCSV(t, filepath.Join(dir, "map_roads.csv"))
	if roads[1][7] != "Elm street" {
		t.Errorf("Road name must be '%s', but got '%s'", "Elm street", roads[1][7])
	}
	buildings := readCSV(t, filepath.Join(dir, "map_buildings.csv"))
	if buildings[1][3] != "??? Elm street" || buildings[1][4] != "commercial" {
		t.Errorf("Building must be commercial with address '??? Elm street', but got %v", buildings[1])
	}
	if driveway := buildings[1][9]; !strings.HasPrefix(driveway, "LINESTRING") {
		t.Errorf("Driveway must be WKT line, but got '%s'", driveway)
	}
}

func TestExportToCSVGeoJSONGeometry(t *testing.T) {
	res := streetResult(t)
	dir := t.TempDir()
	if err := res.ExportToCSV(filepath.Join(dir, "map.csv"), GEOM_FORMAT_GEOJSON); err != nil {
		t.Error(err)
		return
	}
	lanes := readCSV(t, filepath.Join(dir, "map_lanes.csv"))
	geom := lanes[1][len(lanes[1])-1]
	g, err := geojson.UnmarshalGeometry([]byte(geom))
	if err != nil {
		t.Error(err)
		return
	}
	if !g.IsLineString() {
		t.Errorf("Lane geometry must be LineString, but got %s", g.Type)
	}
}

func TestExportToGeoJSON(t *testing.T) {
	res := streetResult(t)
	fname := filepath.Join(t.TempDir(), "map.geojson")
	if err := res.ExportToGeoJSON(fname); err != nil {
		t.Error(err)
		return
	}
	data, err := os.ReadFile(fname)
	if err != nil {
		t.Fatal(err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		t.Error(err)
		return
	}
	counts := make(map[string]int)
	for _, f := range fc.Features {
		counts[f.PropertyMustString("kind")]++
	}
	correctCounts := map[string]int{
		"intersection": 2,
		"road":         1,
		"lane":         4,
		"building":     1,
		"driveway":     1,
	}
	for kind, correct := range correctCounts {
		if counts[kind] != correct {
			t.Errorf("Number of '%s' features must be %d, but got %d", kind, correct, counts[kind])
		}
	}
}

func TestParseGeomFormat(t *testing.T) {
	for _, format := range []GeomFormat{GEOM_FORMAT_WKT, GEOM_FORMAT_GEOJSON} {
		parsed, ok := ParseGeomFormat(strings.ToUpper(format.String()))
		if !ok || parsed != format {
			t.Errorf("Format must be %s, but got %s", format, parsed)
		}
	}
	if _, ok := ParseGeomFormat("kml"); ok {
		t.Errorf("Unknown format must not be parsed")
	}
}

func TestPrepareGeoJSON(t *testing.T) {
	str, err := PrepareGeoJSON(orb.LineString{{1, 2}, {3, 4}})
	if err != nil {
		t.Error(err)
		return
	}
	if !strings.Contains(str, `"type":"LineString"`) || !strings.Contains(str, `"coordinates":[[1,2],[3,4]]`) {
		t.Errorf("GeoJSON must describe line [[1,2],[3,4]], but got %s", str)
	}
	if _, err := PrepareGeoJSON(orb.MultiPoint{{1, 2}}); err == nil {
		t.Errorf("Unhandled geometry must produce error")
	}
	if wkt := PrepareWKT(orb.Point{1, 2}); wkt != "POINT(1 2)" {
		t.Errorf("WKT must be %s, but got %s", "POINT(1 2)", wkt)
	}
}
