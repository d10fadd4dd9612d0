package osm2street

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
)

// InitialRoad is the mutable road used during construction
type InitialRoad struct {
	ID  OriginalRoad
	Src OriginalIntersection
	Dst OriginalIntersection
	// TrimmedCenterPts is the true center of the road, including sidewalks. Goes from Src to Dst
	TrimmedCenterPts orb.LineString
	OriginalLength   float64
	HalfWidth        float64
	LaneSpecs        []LaneSpec
	Tags             osm.Tags
}

// InitialIntersection is the mutable intersection used during construction
type InitialIntersection struct {
	ID               OriginalIntersection
	Point            orb.Point
	Polygon          []orb.Point
	Roads            map[OriginalRoad]struct{}
	IntersectionType IntersectionType
	Elevation        float64
}

// SortedRoads returns incident roads in identifier order
func (i *InitialIntersection) SortedRoads() []OriginalRoad {
	return sortedRoadIDs(i.Roads)
}

// InitialMap is the graph of intersections and roads before it is frozen into Map.
// Roads and intersections refer to each other by identifiers only
type InitialMap struct {
	Roads         map[OriginalRoad]*InitialRoad
	Intersections map[OriginalIntersection]*InitialIntersection
	DrivingSide   DrivingSide
	Bounds        *GPSBounds
}

// BuildInitialMap creates graph from raw data. Degenerate roads are skipped with warning.
// Overlapping roads are fatal: *OverlapError is returned and no graph is produced
func BuildInitialMap(raw *RawMap, specifier LaneSpecifier, diag *Diagnostics) (*InitialMap, error) {
	if specifier == nil {
		specifier = DefaultLaneSpecs
	}
	side := raw.Config.DrivingSide
	if side == 0 {
		side = DRIVING_SIDE_RIGHT
	}
	m := &InitialMap{
		Roads:         make(map[OriginalRoad]*InitialRoad, len(raw.Roads)),
		Intersections: make(map[OriginalIntersection]*InitialIntersection, len(raw.Intersections)),
		DrivingSide:   side,
		Bounds:        raw.Bounds,
	}

	for _, id := range sortedIntersectionIDs(raw.Intersections) {
		i := raw.Intersections[id]
		intersectionType := i.IntersectionType
		if intersectionType == 0 {
			intersectionType = INTERSECTION_PLAIN
		}
		m.Intersections[id] = &InitialIntersection{
			ID:               id,
			Point:            i.Point,
			Roads:            make(map[OriginalRoad]struct{}),
			IntersectionType: intersectionType,
			Elevation:        i.Elevation,
		}
	}

	for _, id := range sortedRoadIDs(raw.Roads) {
		r := raw.Roads[id]
		if id.I1 == id.I2 {
			diag.Report(WARNING_SKIPPED_LOOP, id, "road starts and ends at the same intersection")
			continue
		}
		src, srcOK := m.Intersections[id.Src()]
		dst, dstOK := m.Intersections[id.Dst()]
		if !srcOK || !dstOK {
			diag.Report(WARNING_SKIPPED_MISSING_INTERSECTION, id, "road refers to unknown intersection")
			continue
		}
		centerPts, err := newPolyLine(r.CenterPoints)
		if err != nil {
			diag.Report(WARNING_SKIPPED_BROKEN_GEOMETRY, id, err.Error())
			continue
		}

		laneSpecs := r.LaneSpecs
		if len(laneSpecs) == 0 {
			laneSpecs = specifier.LaneSpecs(r.Tags, side)
		}
		if len(laneSpecs) == 0 {
			laneSpecs = []LaneSpec{{LaneType: LANE_DRIVING, Direction: DIRECTION_FORWARD, Width: laneWidth}}
		}
		src.Roads[id] = struct{}{}
		dst.Roads[id] = struct{}{}
		m.Roads[id] = &InitialRoad{
			ID:               id,
			Src:              id.Src(),
			Dst:              id.Dst(),
			TrimmedCenterPts: centerPts,
			OriginalLength:   lineLength(centerPts),
			HalfWidth:        totalWidth(laneSpecs) / 2.0,
			LaneSpecs:        laneSpecs,
			Tags:             r.Tags,
		}
	}

	for _, id := range sortedIntersectionIDs(m.Intersections) {
		if len(m.Intersections[id].Roads) == 0 {
			// Nothing left to build polygon from
			delete(m.Intersections, id)
		}
	}

	if err := m.detectOverlaps(); err != nil {
		return nil, err
	}
	return m, nil
}

// detectOverlaps finds every pair of roads sharing intersection and having identical geometry
func (m *InitialMap) detectOverlaps() error {
	type pair struct {
		first  OriginalRoad
		second OriginalRoad
	}
	seen := make(map[pair]struct{})
	overlaps := []Overlap{}
	for _, iID := range sortedIntersectionIDs(m.Intersections) {
		roads := m.Intersections[iID].SortedRoads()
		for a := 0; a < len(roads); a++ {
			for b := a + 1; b < len(roads); b++ {
				r1, r2 := m.Roads[roads[a]], m.Roads[roads[b]]
				reason := ""
				if orb.Equal(r1.TrimmedCenterPts, r2.TrimmedCenterPts) {
					reason = "identical center lines"
				} else if orb.Equal(r1.TrimmedCenterPts, reverseLine(r2.TrimmedCenterPts)) {
					reason = "identical center lines in opposite directions"
				} else {
					continue
				}
				key := pair{first: r1.ID, second: r2.ID}
				if _, ok := seen[key]; ok {
					continue
				}
				seen[key] = struct{}{}
				overlaps = append(overlaps, Overlap{
					Intersection: iID,
					First:        r1.ID,
					Second:       r2.ID,
					Reason:       reason,
				})
			}
		}
	}
	if len(overlaps) > 0 {
		return &OverlapError{Overlaps: overlaps}
	}
	return nil
}

// validateReferences checks that roads and intersections refer to each other in both directions
func (m *InitialMap) validateReferences() error {
	for _, rID := range sortedRoadIDs(m.Roads) {
		r := m.Roads[rID]
		for _, iID := range []OriginalIntersection{r.Src, r.Dst} {
			i, ok := m.Intersections[iID]
			if !ok {
				return fmt.Errorf("Road %s refers to missing intersection %s. Should not happen", rID, iID)
			}
			if _, ok := i.Roads[rID]; !ok {
				return fmt.Errorf("Intersection %s does not list road %s. Should not happen", iID, rID)
			}
		}
	}
	for _, iID := range sortedIntersectionIDs(m.Intersections) {
		for rID := range m.Intersections[iID].Roads {
			r, ok := m.Roads[rID]
			if !ok {
				return fmt.Errorf("Intersection %s refers to missing road %s. Should not happen", iID, rID)
			}
			if r.Src != iID && r.Dst != iID {
				return fmt.Errorf("Road %s does not touch intersection %s. Should not happen", rID, iID)
			}
		}
	}
	return nil
}
