package osm2street

import (
	"math"

	"github.com/paulmach/orb"
)

// GPSBounds maps geographic coordinates [lon, lat] into local planar meters.
// The minimum corner of the bounds becomes the origin
type GPSBounds struct {
	bound orb.Bound
	// meters per degree along each axis at the middle latitude
	metersPerLon float64
	metersPerLat float64
}

// NewGPSBounds prepares projection for given geographic bound
func NewGPSBounds(bound orb.Bound) *GPSBounds {
	midLat := (bound.Min.Lat() + bound.Max.Lat()) / 2.0
	oneLon := greatCircleDistance(orb.Point{0, midLat}, orb.Point{1, midLat}) * 1000.0
	oneLat := greatCircleDistance(orb.Point{0, midLat - 0.5}, orb.Point{0, midLat + 0.5}) * 1000.0
	return &GPSBounds{
		bound:        bound,
		metersPerLon: oneLon,
		metersPerLat: oneLat,
	}
}

// Bound returns geographic bound
func (gb *GPSBounds) Bound() orb.Bound {
	return gb.bound
}

// Contains tells if geographic point is inside the bound
func (gb *GPSBounds) Contains(pt orb.Point) bool {
	return gb.bound.Contains(pt)
}

// Convert projects geographic point into planar one
func (gb *GPSBounds) Convert(pt orb.Point) orb.Point {
	return orb.Point{
		(pt.Lon() - gb.bound.Min.Lon()) * gb.metersPerLon,
		(pt.Lat() - gb.bound.Min.Lat()) * gb.metersPerLat,
	}
}

// ConvertBack turns planar point into geographic one
func (gb *GPSBounds) ConvertBack(pt orb.Point) orb.Point {
	return orb.Point{
		gb.bound.Min.Lon() + pt.X()/gb.metersPerLon,
		gb.bound.Min.Lat() + pt.Y()/gb.metersPerLat,
	}
}

// ConvertLine projects geographic line into planar one
func (gb *GPSBounds) ConvertLine(line orb.LineString) orb.LineString {
	newLine := make(orb.LineString, len(line))
	for i, pt := range line {
		newLine[i] = gb.Convert(pt)
	}
	return newLine
}

// ConvertBackLine turns planar line into geographic one
func (gb *GPSBounds) ConvertBackLine(line orb.LineString) orb.LineString {
	newLine := make(orb.LineString, len(line))
	for i, pt := range line {
		newLine[i] = gb.ConvertBack(pt)
	}
	return newLine
}

// ConvertBackRing turns planar ring into geographic one
func (gb *GPSBounds) ConvertBackRing(ring orb.Ring) orb.Ring {
	return orb.Ring(gb.ConvertBackLine(orb.LineString(ring)))
}

// PlanarBound returns bound of the projected area in meters
func (gb *GPSBounds) PlanarBound() orb.Bound {
	return orb.Bound{Min: gb.Convert(gb.bound.Min), Max: gb.Convert(gb.bound.Max)}
}

// angleOf returns direction angle (radians) of the vector
func angleOf(vec orb.Point) float64 {
	return normalizeAngle(math.Atan2(vec[1], vec[0]))
}
