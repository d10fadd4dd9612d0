package osm2street

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
)

// RawMap is the input of the conversion. Coordinates are planar meters
type RawMap struct {
	Intersections map[OriginalIntersection]*RawIntersection
	Roads         map[OriginalRoad]*RawRoad
	Buildings     map[OriginalBuilding]*RawBuilding
	Config        MapConfig
	// Bounds is optional. When provided it is used to turn planar output back into geographic coordinates
	Bounds *GPSBounds
}

// MapConfig contains region-wide settings
type MapConfig struct {
	DrivingSide DrivingSide
}

// NewRawMap returns empty RawMap
func NewRawMap(cfg MapConfig) *RawMap {
	return &RawMap{
		Intersections: make(map[OriginalIntersection]*RawIntersection),
		Roads:         make(map[OriginalRoad]*RawRoad),
		Buildings:     make(map[OriginalBuilding]*RawBuilding),
		Config:        cfg,
	}
}

type RawIntersection struct {
	Point            orb.Point
	IntersectionType IntersectionType
	// Elevation is used for grade-separated structures only
	Elevation float64
}

type RawRoad struct {
	CenterPoints orb.LineString
	Tags         osm.Tags
	// LaneSpecs overrides lane specifier when not empty
	LaneSpecs []LaneSpec
}

type RawBuilding struct {
	Polygon          orb.Ring
	Tags             osm.Tags
	Amenities        []Amenity
	PublicGarageName string
	NumParkingSpots  int
}

// Amenity is a (name, type) pair of point of interest inside a building
type Amenity struct {
	Name string
	Kind string
}
