package osm2street

import (
	"fmt"
	"math/rand"
	"strconv"

	"github.com/paulmach/osm"
)

type BuildingKind uint16

const (
	BUILDING_RESIDENTIAL = BuildingKind(iota + 1)
	BUILDING_RESIDENTIAL_COMMERCIAL
	BUILDING_COMMERCIAL
	BUILDING_EMPTY
)

func (iotaIdx BuildingKind) String() string {
	return [...]string{"residential", "residential_commercial", "commercial", "empty"}[iotaIdx-1]
}

// BuildingType is the kind of the building plus number of residents for residential ones
type BuildingType struct {
	Kind      BuildingKind
	Residents int
}

func (bt BuildingType) String() string {
	switch bt.Kind {
	case BUILDING_RESIDENTIAL, BUILDING_RESIDENTIAL_COMMERCIAL:
		return fmt.Sprintf("%s(%d)", bt.Kind, bt.Residents)
	default:
		return bt.Kind.String()
	}
}

// classifyBuilding guesses usage of the building. The rng must be seeded by the building's identifier to keep results reproducible
func classifyBuilding(tags osm.Tags, amenities []Amenity, areaSqMeters float64, rng *rand.Rand) BuildingType {
	commercial := len(amenities) > 0
	if tags.Find("ruins") == "yes" {
		if commercial {
			return BuildingType{Kind: BUILDING_COMMERCIAL}
		}
		return BuildingType{Kind: BUILDING_EMPTY}
	}

	residents := 0
	switch {
	case tagIn(tags, "building", commercialBuildingTags):
		return BuildingType{Kind: BUILDING_COMMERCIAL}
	case tagIn(tags, "building", institutionalBuildingTags), tagIn(tags, "building", auxiliaryBuildingTags):
		return BuildingType{Kind: BUILDING_EMPTY}
	case tagIn(tags, "building", houseBuildingTags):
		residents = rng.Intn(3)
	case tagIn(tags, "building", cabinBuildingTags):
		residents = rng.Intn(2)
	case tagIn(tags, "building", apartmentBuildingTags):
		levels, err := strconv.Atoi(tags.Find("building:levels"))
		if err != nil || levels <= 0 {
			levels = 1
		}
		// 1 person per 10 square meters, third of them live here
		residents = int(float64(levels)*areaSqMeters/10.0) / 3
	default:
		residents = rng.Intn(2)
	}
	if commercial {
		if residents > 0 {
			return BuildingType{Kind: BUILDING_RESIDENTIAL_COMMERCIAL, Residents: residents}
		}
		return BuildingType{Kind: BUILDING_COMMERCIAL}
	}
	return BuildingType{Kind: BUILDING_RESIDENTIAL, Residents: residents}
}

type ParkingKind uint16

const (
	PARKING_PUBLIC_GARAGE = ParkingKind(iota + 1)
	PARKING_PRIVATE
)

func (iotaIdx ParkingKind) String() string {
	return [...]string{"public_garage", "private"}[iotaIdx-1]
}

// OffstreetParking describes parking spots inside the building
type OffstreetParking struct {
	Kind ParkingKind
	// Name is set for public garages only
	Name  string
	Spots int
}

func (p OffstreetParking) String() string {
	if p.Kind == PARKING_PUBLIC_GARAGE {
		return fmt.Sprintf("%s %q (%d spots)", p.Kind, p.Name, p.Spots)
	}
	return fmt.Sprintf("%s (%d spots)", p.Kind, p.Spots)
}
