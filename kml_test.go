package osm2street

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
)

const sampleKML = `<?xml version="1.0" encoding="UTF-8"?>
<kml xmlns="http://www.opengis.net/kml/2.2">
<Document>
  <Placemark>
    <name>Parcel 1</name>
    <ExtendedData>
      <SchemaData schemaUrl="#parcels">
        <SimpleData name="osm_bldg">501</SimpleData>
        <SimpleData name="households">2</SimpleData>
      </SchemaData>
    </ExtendedData>
    <Polygon>
      <outerBoundaryIs>
        <LinearRing>
          <coordinates>
            37.60,55.70,0 37.61,55.70,0 37.61,55.71,0 37.60,55.71,0 37.60,55.70,0
          </coordinates>
        </LinearRing>
      </outerBoundaryIs>
      <innerBoundaryIs>
        <LinearRing>
          <coordinates>37.601,55.701 37.602,55.701 37.602,55.702 37.601,55.701</coordinates>
        </LinearRing>
      </innerBoundaryIs>
    </Polygon>
  </Placemark>
  <Placemark>
    <name>Bus stop</name>
    <ExtendedData>
      <Data name="parking"><value>4</value></Data>
    </ExtendedData>
    <Point><coordinates>37.605,55.705</coordinates></Point>
  </Placemark>
  <Placemark>
    <name>Empty</name>
  </Placemark>
</Document>
</kml>`

func TestParseKML(t *testing.T) {
	shapes, err := ParseKML([]byte(sampleKML))
	if err != nil {
		t.Error(err)
		return
	}
	if len(shapes.Shapes) != 2 {
		t.Errorf("Number of shapes must be %d, but got %d", 2, len(shapes.Shapes))
		return
	}
	parcel := shapes.Shapes[0]
	if len(parcel.Points) != 5 {
		t.Errorf("Parcel must have %d points of the outer boundary, but got %d", 5, len(parcel.Points))
	}
	if parcel.Points[1] != (orb.Point{37.61, 55.70}) {
		t.Errorf("Second point must be %v, but got %v", orb.Point{37.61, 55.70}, parcel.Points[1])
	}
	correctAttributes := map[string]string{
		"name":         "Parcel 1",
		"osm_bldg":     "501",
		"households":   "2",
		"spatial_type": "Polygon",
	}
	for k, v := range correctAttributes {
		if parcel.Attributes[k] != v {
			t.Errorf("Attribute '%s' must be %q, but got %q", k, v, parcel.Attributes[k])
		}
	}
	stop := shapes.Shapes[1]
	if len(stop.Points) != 1 || stop.Points[0] != (orb.Point{37.605, 55.705}) {
		t.Errorf("Stop must be single point %v, but got %v", orb.Point{37.605, 55.705}, stop.Points)
	}
	if stop.Attributes["parking"] != "4" {
		t.Errorf("Attribute 'parking' must be %q, but got %q", "4", stop.Attributes["parking"])
	}
	if _, ok := stop.Attributes["spatial_type"]; ok {
		t.Errorf("Point must not be marked as polygon")
	}
}

func TestParseKMLBadCoordinates(t *testing.T) {
	data := `<kml><Placemark><name>x</name><Point><coordinates>37.6;55.7</coordinates></Point></Placemark></kml>`
	if _, err := ParseKML([]byte(data)); err == nil {
		t.Errorf("Broken coordinates must produce error")
	}
}

func TestLoadKML(t *testing.T) {
	fname := filepath.Join(t.TempDir(), "parcels.kml")
	if err := os.WriteFile(fname, []byte(sampleKML), 0644); err != nil {
		t.Fatal(err)
	}
	shapes, err := LoadKML(fname)
	if err != nil {
		t.Error(err)
		return
	}
	if len(shapes.Shapes) != 2 {
		t.Errorf("Number of shapes must be %d, but got %d", 2, len(shapes.Shapes))
	}
	if _, err := LoadKML(filepath.Join(t.TempDir(), "missing.kml")); err == nil {
		t.Errorf("Missing file must produce error")
	}
}
