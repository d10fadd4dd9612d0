package osm2street

import (
	"fmt"
	"sort"

	"github.com/paulmach/osm"
)

// OriginalIntersection identifies an intersection by the OSM node it was built from
type OriginalIntersection struct {
	NodeID osm.NodeID
}

func (id OriginalIntersection) String() string {
	return fmt.Sprintf("i%d", id.NodeID)
}

// Less gives total order over intersections
func (id OriginalIntersection) Less(other OriginalIntersection) bool {
	return id.NodeID < other.NodeID
}

// OriginalRoad identifies a road by the OSM way it belongs to and the pair of nodes it spans.
// The node pair is the topological identity, the way is kept for reporting
type OriginalRoad struct {
	WayID osm.WayID
	I1    osm.NodeID
	I2    osm.NodeID
}

func (id OriginalRoad) String() string {
	return fmt.Sprintf("r%d (%d->%d)", id.WayID, id.I1, id.I2)
}

// WayURL returns link to the source way. Useful for fixing input data
func (id OriginalRoad) WayURL() string {
	return fmt.Sprintf("https://www.openstreetmap.org/way/%d", id.WayID)
}

// Src returns source intersection identifier
func (id OriginalRoad) Src() OriginalIntersection {
	return OriginalIntersection{NodeID: id.I1}
}

// Dst returns target intersection identifier
func (id OriginalRoad) Dst() OriginalIntersection {
	return OriginalIntersection{NodeID: id.I2}
}

// Less gives total order over roads: way first, then source node, then target node
func (id OriginalRoad) Less(other OriginalRoad) bool {
	if id.WayID != other.WayID {
		return id.WayID < other.WayID
	}
	if id.I1 != other.I1 {
		return id.I1 < other.I1
	}
	return id.I2 < other.I2
}

// OriginalBuilding identifies a building by its outline way
type OriginalBuilding struct {
	WayID osm.WayID
}

func (id OriginalBuilding) String() string {
	return fmt.Sprintf("b%d", id.WayID)
}

// Less gives total order over buildings
func (id OriginalBuilding) Less(other OriginalBuilding) bool {
	return id.WayID < other.WayID
}

func sortedIntersectionIDs[T any](m map[OriginalIntersection]T) []OriginalIntersection {
	ids := make([]OriginalIntersection, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return ids[i].Less(ids[j])
	})
	return ids
}

func sortedRoadIDs[T any](m map[OriginalRoad]T) []OriginalRoad {
	ids := make([]OriginalRoad, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sortRoadIDs(ids)
	return ids
}

func sortRoadIDs(ids []OriginalRoad) {
	sort.Slice(ids, func(i, j int) bool {
		return ids[i].Less(ids[j])
	})
}

func sortedBuildingIDs[T any](m map[OriginalBuilding]T) []OriginalBuilding {
	ids := make([]OriginalBuilding, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return ids[i].Less(ids[j])
	})
	return ids
}
