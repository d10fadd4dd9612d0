package osm2street

import (
	"fmt"
	"math/rand"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/paulmach/osm"
)

// BuildingID is dense identifier assigned after filtering. Stable within one run only
type BuildingID int

// Building is the building connected to the network
type Building struct {
	ID          BuildingID
	OriginalID  OriginalBuilding
	Polygon     orb.Ring
	Address     string
	Name        string
	LabelCenter orb.Point
	Amenities   []Amenity
	Type        BuildingType
	Parking     OffstreetParking
	// SidewalkPos is the position on the sidewalk lane (Position.Feature is LaneID)
	SidewalkPos Position
	// DrivewayGeom goes from the building's border to the sidewalk
	DrivewayGeom orb.LineString
}

// Sidewalk returns lane the building is connected to
func (b *Building) Sidewalk() LaneID {
	return LaneID(b.SidewalkPos.Feature)
}

// MakeAllBuildings connects buildings to the closest sidewalks. Buildings which can't be connected are dropped and reported
func MakeAllBuildings(input map[OriginalBuilding]*RawBuilding, m *Map, opts MatchOptions, diag *Diagnostics) []*Building {
	ids := sortedBuildingIDs(input)
	centers := make(map[OriginalBuilding]orb.Point, len(ids))
	query := make([]orb.Point, 0, len(ids))
	for _, id := range ids {
		b := input[id]
		ring := closeRing(b.Polygon)
		if len(dedupPoints(openRing(ring))) < 3 {
			diag.Report(WARNING_SKIPPED_BROKEN_GEOMETRY, id, "building polygon has less than 3 distinct points")
			continue
		}
		center, _ := planar.CentroidArea(ring)
		centers[id] = center
		query = append(query, center)
	}

	sidewalkPts := MatchPoints(query, m.Lanes(), (*Lane).IsWalkable, opts)

	results := make([]*Building, 0, len(centers))
	for _, id := range ids {
		center, ok := centers[id]
		if !ok {
			continue
		}
		sidewalkPos, ok := sidewalkPts[center]
		if !ok {
			diag.Report(WARNING_BUILDING_NO_SIDEWALK, id, fmt.Sprintf("no sidewalk within %.0f meters", opts.MaxRadius))
			continue
		}
		if samePoint(center, sidewalkPos.Pt) {
			diag.Report(WARNING_BUILDING_ZERO_LENGTH_PATH, id, "front path has 0 length")
			continue
		}
		b := input[id]
		ring := closeRing(b.Polygon)
		rng := rand.New(rand.NewSource(int64(id.WayID)))
		parking := OffstreetParking{Kind: PARKING_PRIVATE, Spots: b.NumParkingSpots}
		if b.PublicGarageName != "" {
			parking = OffstreetParking{Kind: PARKING_PUBLIC_GARAGE, Name: b.PublicGarageName, Spots: b.NumParkingSpots}
		}
		results = append(results, &Building{
			ID:           BuildingID(len(results)),
			OriginalID:   id,
			Polygon:      ring,
			Address:      buildingAddress(b.Tags, LaneID(sidewalkPos.Feature), m),
			Name:         b.Tags.Find("name"),
			LabelCenter:  polylabel(ring),
			Amenities:    b.Amenities,
			Type:         classifyBuilding(b.Tags, b.Amenities, planar.Area(ring), rng),
			Parking:      parking,
			SidewalkPos:  sidewalkPos,
			DrivewayGeom: trimPath(ring, orb.LineString{center, sidewalkPos.Pt}),
		})
	}
	return results
}

// trimPath moves start of the path from the building's center to its border.
// The first edge (in ring order) crossed by the path wins. Untrimmed path is returned when nothing is crossed
func trimPath(ring orb.Ring, path orb.LineString) orb.LineString {
	end := path[len(path)-1]
	for i := 1; i < len(ring); i++ {
		if samePoint(ring[i-1], ring[i]) {
			continue
		}
		hit, ok := segmentsIntersection(ring[i-1], ring[i], path[0], end)
		if !ok || samePoint(hit, end) {
			continue
		}
		return orb.LineString{hit, end}
	}
	return path
}

func buildingAddress(tags osm.Tags, sidewalk LaneID, m *Map) string {
	num, street := tags.Find("addr:housenumber"), tags.Find("addr:street")
	switch {
	case num != "" && street != "":
		return fmt.Sprintf("%s %s", num, street)
	case street != "":
		return fmt.Sprintf("??? %s", street)
	}
	lane, ok := m.Lane(sidewalk)
	if !ok {
		return "???"
	}
	road, ok := m.Road(lane.Road)
	if !ok {
		return "???"
	}
	return fmt.Sprintf("??? %s", road.Name())
}
