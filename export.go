package osm2street

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	geojson "github.com/paulmach/go.geojson"
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
)

type GeomFormat uint16

const (
	GEOM_FORMAT_WKT = GeomFormat(iota + 1)
	GEOM_FORMAT_GEOJSON
)

func (iotaIdx GeomFormat) String() string {
	return [...]string{"wkt", "geojson"}[iotaIdx-1]
}

// ParseGeomFormat returns geometry format by its name
func ParseGeomFormat(s string) (GeomFormat, bool) {
	switch strings.ToLower(s) {
	case "wkt":
		return GEOM_FORMAT_WKT, true
	case "geojson":
		return GEOM_FORMAT_GEOJSON, true
	default:
		return 0, false
	}
}

// geographic turns planar geometry back into [lon, lat] when map has projection
func (res *Result) geographic(g orb.Geometry) orb.Geometry {
	bounds := res.Map.Bounds()
	if bounds == nil {
		return g
	}
	switch v := g.(type) {
	case orb.Point:
		return bounds.ConvertBack(v)
	case orb.LineString:
		return bounds.ConvertBackLine(v)
	case orb.Ring:
		return bounds.ConvertBackRing(v)
	}
	return g
}

func (res *Result) geomString(g orb.Geometry, format GeomFormat) (string, error) {
	g = res.geographic(g)
	if format == GEOM_FORMAT_GEOJSON {
		return PrepareGeoJSON(g)
	}
	return PrepareWKT(g), nil
}

// ExportToCSV writes intersections, roads, lanes and buildings into separate ';'-separated files.
// E.g.: if file name is 'map.csv' then 'map_intersections.csv', 'map_roads.csv', 'map_lanes.csv' and 'map_buildings.csv' are produced
func (res *Result) ExportToCSV(fname string, format GeomFormat) error {
	fnameParts := strings.Split(fname, ".csv")
	exports := []struct {
		suffix string
		fn     func(writer *csv.Writer, format GeomFormat) error
	}{
		{"_intersections.csv", res.exportIntersections},
		{"_roads.csv", res.exportRoads},
		{"_lanes.csv", res.exportLanes},
		{"_buildings.csv", res.exportBuildings},
	}
	for _, export := range exports {
		if err := writeCSV(fnameParts[0]+export.suffix, format, export.fn); err != nil {
			return errors.Wrapf(err, "Can't export '%s'", export.suffix)
		}
	}
	return nil
}

func writeCSV(fname string, format GeomFormat, fn func(writer *csv.Writer, format GeomFormat) error) error {
	file, err := os.Create(fname)
	if err != nil {
		return errors.Wrap(err, "Can't create file")
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	writer.Comma = ';'
	if err := fn(writer, format); err != nil {
		return err
	}
	writer.Flush()
	return writer.Error()
}

func (res *Result) exportIntersections(writer *csv.Writer, format GeomFormat) error {
	err := writer.Write([]string{"id", "osm_node_id", "intersection_type", "elevation", "roads", "geom"})
	if err != nil {
		return errors.Wrap(err, "Can't write header")
	}
	for _, i := range res.Map.Intersections() {
		roads := make([]string, len(i.Roads))
		for idx, r := range i.Roads {
			roads[idx] = r.String()
		}
		geomStr, err := res.geomString(i.Polygon, format)
		if err != nil {
			return errors.Wrap(err, "Can't prepare geometry")
		}
		err = writer.Write([]string{
			i.ID.String(),
			fmt.Sprintf("%d", i.ID.NodeID),
			i.IntersectionType.String(),
			fmt.Sprintf("%f", i.Elevation),
			strings.Join(roads, ","),
			geomStr,
		})
		if err != nil {
			return errors.Wrap(err, "Can't write intersection")
		}
	}
	return nil
}

func (res *Result) exportRoads(writer *csv.Writer, format GeomFormat) error {
	err := writer.Write([]string{"id", "osm_way_id", "source_intersection", "target_intersection", "half_width", "lanes", "length_meters", "name", "geom"})
	if err != nil {
		return errors.Wrap(err, "Can't write header")
	}
	for _, r := range res.Map.Roads() {
		geomStr, err := res.geomString(r.CenterPts, format)
		if err != nil {
			return errors.Wrap(err, "Can't prepare geometry")
		}
		err = writer.Write([]string{
			r.ID.String(),
			fmt.Sprintf("%d", r.ID.WayID),
			r.Src.String(),
			r.Dst.String(),
			fmt.Sprintf("%f", r.HalfWidth),
			fmt.Sprintf("%d", len(r.Lanes)),
			fmt.Sprintf("%f", r.Length()),
			r.Tags.Find("name"),
			geomStr,
		})
		if err != nil {
			return errors.Wrap(err, "Can't write road")
		}
	}
	return nil
}

func (res *Result) exportLanes(writer *csv.Writer, format GeomFormat) error {
	err := writer.Write([]string{"id", "road", "index", "lane_type", "direction", "width", "geom"})
	if err != nil {
		return errors.Wrap(err, "Can't write header")
	}
	for _, l := range res.Map.Lanes() {
		geomStr, err := res.geomString(l.CenterPts, format)
		if err != nil {
			return errors.Wrap(err, "Can't prepare geometry")
		}
		err = writer.Write([]string{
			fmt.Sprintf("%d", l.ID),
			l.Road.String(),
			fmt.Sprintf("%d", l.Index),
			l.LaneType.String(),
			l.Direction.String(),
			fmt.Sprintf("%f", l.Width),
			geomStr,
		})
		if err != nil {
			return errors.Wrap(err, "Can't write lane")
		}
	}
	return nil
}

func (res *Result) exportBuildings(writer *csv.Writer, format GeomFormat) error {
	err := writer.Write([]string{"id", "osm_way_id", "name", "address", "building_type", "parking", "sidewalk_lane", "sidewalk_dist", "label", "driveway", "geom"})
	if err != nil {
		return errors.Wrap(err, "Can't write header")
	}
	for _, b := range res.Buildings {
		labelStr, err := res.geomString(b.LabelCenter, format)
		if err != nil {
			return errors.Wrap(err, "Can't prepare label geometry")
		}
		drivewayStr, err := res.geomString(b.DrivewayGeom, format)
		if err != nil {
			return errors.Wrap(err, "Can't prepare driveway geometry")
		}
		geomStr, err := res.geomString(b.Polygon, format)
		if err != nil {
			return errors.Wrap(err, "Can't prepare geometry")
		}
		err = writer.Write([]string{
			fmt.Sprintf("%d", b.ID),
			fmt.Sprintf("%d", b.OriginalID.WayID),
			b.Name,
			b.Address,
			b.Type.String(),
			b.Parking.String(),
			fmt.Sprintf("%d", b.Sidewalk()),
			fmt.Sprintf("%f", b.SidewalkPos.DistAlong),
			labelStr,
			drivewayStr,
			geomStr,
		})
		if err != nil {
			return errors.Wrap(err, "Can't write building")
		}
	}
	return nil
}

// FeatureCollection returns the whole derived model as GeoJSON features
func (res *Result) FeatureCollection() (*geojson.FeatureCollection, error) {
	fc := geojson.NewFeatureCollection()
	add := func(g orb.Geometry, props map[string]interface{}) error {
		geom, err := toGeoJSONGeometry(res.geographic(g))
		if err != nil {
			return err
		}
		feature := geojson.NewFeature(geom)
		feature.Properties = props
		fc.AddFeature(feature)
		return nil
	}
	for _, i := range res.Map.Intersections() {
		err := add(i.Polygon, map[string]interface{}{
			"kind":              "intersection",
			"id":                i.ID.String(),
			"intersection_type": i.IntersectionType.String(),
			"elevation":         i.Elevation,
		})
		if err != nil {
			return nil, errors.Wrapf(err, "Can't add intersection %s", i.ID)
		}
	}
	for _, r := range res.Map.Roads() {
		err := add(r.CenterPts, map[string]interface{}{
			"kind":       "road",
			"id":         r.ID.String(),
			"name":       r.Name(),
			"half_width": r.HalfWidth,
		})
		if err != nil {
			return nil, errors.Wrapf(err, "Can't add road %s", r.ID)
		}
	}
	for _, l := range res.Map.Lanes() {
		err := add(l.CenterPts, map[string]interface{}{
			"kind":      "lane",
			"id":        int(l.ID),
			"road":      l.Road.String(),
			"lane_type": l.LaneType.String(),
			"direction": l.Direction.String(),
			"width":     l.Width,
		})
		if err != nil {
			return nil, errors.Wrapf(err, "Can't add lane %d", l.ID)
		}
	}
	for _, b := range res.Buildings {
		err := add(b.Polygon, map[string]interface{}{
			"kind":          "building",
			"id":            int(b.ID),
			"osm_way_id":    int64(b.OriginalID.WayID),
			"address":       b.Address,
			"building_type": b.Type.String(),
			"parking":       b.Parking.String(),
			"sidewalk_lane": int(b.Sidewalk()),
		})
		if err != nil {
			return nil, errors.Wrapf(err, "Can't add building %d", b.ID)
		}
		err = add(b.DrivewayGeom, map[string]interface{}{
			"kind":     "driveway",
			"building": int(b.ID),
		})
		if err != nil {
			return nil, errors.Wrapf(err, "Can't add driveway of building %d", b.ID)
		}
	}
	return fc, nil
}

// ExportToGeoJSON writes FeatureCollection into the file
func (res *Result) ExportToGeoJSON(fname string) error {
	fc, err := res.FeatureCollection()
	if err != nil {
		return errors.Wrap(err, "Can't prepare features")
	}
	data, err := fc.MarshalJSON()
	if err != nil {
		return errors.Wrap(err, "Can't marshal features")
	}
	if err := os.WriteFile(fname, data, 0644); err != nil {
		return errors.Wrap(err, "Can't write file")
	}
	return nil
}
