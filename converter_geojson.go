package osm2street

import (
	"fmt"

	geojson "github.com/paulmach/go.geojson"
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
)

// toGeoJSONGeometry converts orb geometry into go.geojson one. Only geometries produced by the converter are handled
func toGeoJSONGeometry(g orb.Geometry) (*geojson.Geometry, error) {
	switch v := g.(type) {
	case orb.Point:
		return geojson.NewPointGeometry([]float64{v[0], v[1]}), nil
	case orb.LineString:
		return geojson.NewLineStringGeometry(pointsToSlice(v)), nil
	case orb.Ring:
		return geojson.NewPolygonGeometry([][][]float64{pointsToSlice(v)}), nil
	case orb.Polygon:
		rings := make([][][]float64, len(v))
		for i, ring := range v {
			rings[i] = pointsToSlice(ring)
		}
		return geojson.NewPolygonGeometry(rings), nil
	default:
		return nil, fmt.Errorf("Geometry type '%s' is not handled", g.GeoJSONType())
	}
}

func pointsToSlice[T ~[]orb.Point](pts T) [][]float64 {
	result := make([][]float64, len(pts))
	for i, pt := range pts {
		result[i] = []float64{pt[0], pt[1]}
	}
	return result
}

// PrepareGeoJSON returns GeoJSON representation of geometry
func PrepareGeoJSON(g orb.Geometry) (string, error) {
	geom, err := toGeoJSONGeometry(g)
	if err != nil {
		return "", err
	}
	b, err := geom.MarshalJSON()
	if err != nil {
		return "", errors.Wrap(err, "Can't marshal geometry")
	}
	return string(b), nil
}
