package osm2street

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
)

// LaneID is dense identifier of the lane. Lanes are numbered by road order, then by lane order across the road
type LaneID int

// Lane is single lane of the finalized road
type Lane struct {
	ID        LaneID
	Road      OriginalRoad
	Index     int
	LaneType  LaneType
	Direction DirectionType
	Width     float64
	// CenterPts goes in the direction of travel: backward lanes go from Dst to Src
	CenterPts orb.LineString
}

// FeatureID is needed to satisfy LineFeature interface
func (l *Lane) FeatureID() int {
	return int(l.ID)
}

// FeatureLine is needed to satisfy LineFeature interface
func (l *Lane) FeatureLine() orb.LineString {
	return l.CenterPts
}

// IsWalkable tells if pedestrians use the lane
func (l *Lane) IsWalkable() bool {
	return l.LaneType.IsWalkable()
}

// Road is finalized road
type Road struct {
	ID        OriginalRoad
	Src       OriginalIntersection
	Dst       OriginalIntersection
	CenterPts orb.LineString
	HalfWidth float64
	LaneSpecs []LaneSpec
	Lanes     []LaneID
	Tags      osm.Tags
}

// Name returns `name` tag of the road or its identifier when there is no name
func (r *Road) Name() string {
	if name := r.Tags.Find("name"); name != "" {
		return name
	}
	return r.ID.String()
}

// Length returns length of the trimmed center line
func (r *Road) Length() float64 {
	return lineLength(r.CenterPts)
}

// Intersection is finalized intersection
type Intersection struct {
	ID               OriginalIntersection
	Point            orb.Point
	Polygon          orb.Ring
	Roads            []OriginalRoad
	IntersectionType IntersectionType
	Elevation        float64
}

// Map is immutable result of the network construction. Consumers must treat returned objects as read-only
type Map struct {
	roads           map[OriginalRoad]*Road
	roadIDs         []OriginalRoad
	intersections   map[OriginalIntersection]*Intersection
	intersectionIDs []OriginalIntersection
	lanes           []*Lane
	drivingSide     DrivingSide
	bounds          *GPSBounds
	boundary        orb.Bound
}

// Finalize freezes the graph into Map. The InitialMap must not be used afterwards
func (m *InitialMap) Finalize() (*Map, error) {
	if err := m.validateReferences(); err != nil {
		return nil, err
	}
	result := &Map{
		roads:           make(map[OriginalRoad]*Road, len(m.Roads)),
		roadIDs:         sortedRoadIDs(m.Roads),
		intersections:   make(map[OriginalIntersection]*Intersection, len(m.Intersections)),
		intersectionIDs: sortedIntersectionIDs(m.Intersections),
		drivingSide:     m.DrivingSide,
		bounds:          m.Bounds,
	}
	boundary := orb.Bound{Min: orb.Point{math.Inf(1), math.Inf(1)}, Max: orb.Point{math.Inf(-1), math.Inf(-1)}}

	for _, iID := range result.intersectionIDs {
		i := m.Intersections[iID]
		if len(i.Polygon) < 3 {
			return nil, fmt.Errorf("Intersection %s has no polygon. Should not happen", iID)
		}
		polygon := closeRing(i.Polygon)
		boundary = boundary.Union(polygon.Bound())
		result.intersections[iID] = &Intersection{
			ID:               iID,
			Point:            i.Point,
			Polygon:          polygon,
			Roads:            i.SortedRoads(),
			IntersectionType: i.IntersectionType,
			Elevation:        i.Elevation,
		}
	}

	for _, rID := range result.roadIDs {
		r := m.Roads[rID]
		road := &Road{
			ID:        rID,
			Src:       r.Src,
			Dst:       r.Dst,
			CenterPts: r.TrimmedCenterPts,
			HalfWidth: r.HalfWidth,
			LaneSpecs: r.LaneSpecs,
			Lanes:     make([]LaneID, 0, len(r.LaneSpecs)),
			Tags:      r.Tags,
		}
		boundary = boundary.Union(road.CenterPts.Bound())
		// Offsets are measured from the center line, positive to the left
		leftEdge := r.HalfWidth
		for idx, spec := range r.LaneSpecs {
			offset := leftEdge - spec.Width/2.0
			leftEdge -= spec.Width
			center := offsetCurve(road.CenterPts, offset)
			if spec.Direction == DIRECTION_BACKWARD {
				center = reverseLine(center)
			}
			lane := &Lane{
				ID:        LaneID(len(result.lanes)),
				Road:      rID,
				Index:     idx,
				LaneType:  spec.LaneType,
				Direction: spec.Direction,
				Width:     spec.Width,
				CenterPts: center,
			}
			result.lanes = append(result.lanes, lane)
			road.Lanes = append(road.Lanes, lane.ID)
		}
		result.roads[rID] = road
	}

	if m.Bounds != nil {
		result.boundary = m.Bounds.PlanarBound()
	} else if len(result.intersectionIDs) > 0 {
		result.boundary = boundary
	}
	return result, nil
}

// Roads returns roads in identifier order
func (m *Map) Roads() []*Road {
	roads := make([]*Road, len(m.roadIDs))
	for i, id := range m.roadIDs {
		roads[i] = m.roads[id]
	}
	return roads
}

// Intersections returns intersections in identifier order
func (m *Map) Intersections() []*Intersection {
	intersections := make([]*Intersection, len(m.intersectionIDs))
	for i, id := range m.intersectionIDs {
		intersections[i] = m.intersections[id]
	}
	return intersections
}

// Lanes returns lanes in identifier order
func (m *Map) Lanes() []*Lane {
	lanes := make([]*Lane, len(m.lanes))
	copy(lanes, m.lanes)
	return lanes
}

// Road returns road by identifier
func (m *Map) Road(id OriginalRoad) (*Road, bool) {
	r, ok := m.roads[id]
	return r, ok
}

// Intersection returns intersection by identifier
func (m *Map) Intersection(id OriginalIntersection) (*Intersection, bool) {
	i, ok := m.intersections[id]
	return i, ok
}

// Lane returns lane by identifier
func (m *Map) Lane(id LaneID) (*Lane, bool) {
	if id < 0 || int(id) >= len(m.lanes) {
		return nil, false
	}
	return m.lanes[id], true
}

// DrivingSide returns driving side the map has been built for
func (m *Map) DrivingSide() DrivingSide {
	return m.drivingSide
}

// Bounds returns geographic projection. Could be nil for synthetic maps
func (m *Map) Bounds() *GPSBounds {
	return m.bounds
}

// Boundary returns planar area covered by the map
func (m *Map) Boundary() orb.Bound {
	return m.boundary
}

// WalkableLanes returns lanes pedestrians could use
func (m *Map) WalkableLanes() []*Lane {
	lanes := make([]*Lane, 0)
	for _, l := range m.lanes {
		if l.IsWalkable() {
			lanes = append(lanes, l)
		}
	}
	return lanes
}
