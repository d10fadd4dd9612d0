package osm2street

import (
	"github.com/paulmach/osm"
)

var (
	junctionTypes = map[string]struct{}{
		"circular":   {},
		"roundabout": {},
	}

	negligibleHighwayTags = map[string]struct{}{
		"construction": {},
		"proposed":     {},
		"raceway":      {},
		"bridleway":    {},
		"rest_area":    {},
		"su":           {},
		"abandoned":    {},
		"planned":      {},
		"trailhead":    {},
		"stairs":       {},
		"dismantled":   {},
		"disused":      {},
		"razed":        {},
		"access":       {},
		"corridor":     {},
		"stop":         {},
		"elevator":     {},
		"escalator":    {},
		"bus_stop":     {},
		"platform":     {},
	}

	// Ways which are walkable surfaces by themselves
	footwayHighwayTags = map[string]struct{}{
		"footway":    {},
		"path":       {},
		"pedestrian": {},
		"steps":      {},
	}

	// Roads without pedestrian infrastructure unless it has been tagged explicitly
	noSidewalkHighwayTags = map[string]struct{}{
		"motorway":      {},
		"motorway_link": {},
		"trunk":         {},
		"trunk_link":    {},
		"service":       {},
		"track":         {},
		"cycleway":      {},
	}

	// Pedestrians are not allowed at all
	noPedestrianHighwayTags = map[string]struct{}{
		"motorway":      {},
		"motorway_link": {},
	}

	// See ref.: https://wiki.openstreetmap.org/wiki/Tag:oneway%3Dreversible
	onewayReversible = map[string]struct{}{
		"reversible":  {},
		"alternating": {},
	}

	commercialBuildingTags = map[string]struct{}{
		"office":     {},
		"industrial": {},
		"commercial": {},
		"retail":     {},
		"warehouse":  {},
		"civic":      {},
		"public":     {},
	}

	institutionalBuildingTags = map[string]struct{}{
		"school":       {},
		"university":   {},
		"construction": {},
		"church":       {},
	}

	auxiliaryBuildingTags = map[string]struct{}{
		"garage":         {},
		"garages":        {},
		"shed":           {},
		"roof":           {},
		"greenhouse":     {},
		"farm_auxiliary": {},
		"barn":           {},
		"service":        {},
	}

	houseBuildingTags = map[string]struct{}{
		"house":              {},
		"detached":           {},
		"semidetached_house": {},
		"farm":               {},
	}

	cabinBuildingTags = map[string]struct{}{
		"hut":            {},
		"static_caravan": {},
		"cabin":          {},
	}

	apartmentBuildingTags = map[string]struct{}{
		"apartments":  {},
		"terrace":     {},
		"residential": {},
	}
)

// tagIn tells if value of given key is one of allowed values
func tagIn(tags osm.Tags, key string, allowed map[string]struct{}) bool {
	_, ok := allowed[tags.Find(key)]
	return ok
}
