package osm2street

import (
	"math"
	"regexp"
	"strconv"

	"github.com/paulmach/osm"
)

// LaneSpecifier turns road's tags into lanes layout. Lanes must be listed from the left edge to the right edge
type LaneSpecifier interface {
	LaneSpecs(tags osm.Tags, side DrivingSide) []LaneSpec
}

// LaneSpecifierFunc is an adapter to use ordinary functions as LaneSpecifier
type LaneSpecifierFunc func(tags osm.Tags, side DrivingSide) []LaneSpec

// LaneSpecs calls f(tags, side)
func (f LaneSpecifierFunc) LaneSpecs(tags osm.Tags, side DrivingSide) []LaneSpec {
	return f(tags, side)
}

var (
	lanesRegExp = regexp.MustCompile(`\d+`)
)

// DefaultLaneSpecs is the basic tag-driven lanes layout.
// It reads `lanes`, `lanes:forward`, `lanes:backward`, `oneway`, `junction`, `sidewalk`, `parking:lane:*` and `cycleway*`
var DefaultLaneSpecs = LaneSpecifierFunc(defaultLaneSpecs)

func defaultLaneSpecs(tags osm.Tags, side DrivingSide) []LaneSpec {
	highway := tags.Find("highway")
	if _, ok := footwayHighwayTags[highway]; ok {
		return []LaneSpec{{LaneType: LANE_SIDEWALK, Direction: DIRECTION_FORWARD, Width: footwayWidth}}
	}
	if highway == "cycleway" {
		if isOneway(tags) {
			return []LaneSpec{{LaneType: LANE_BIKING, Direction: DIRECTION_FORWARD, Width: bikeWidth}}
		}
		return assembleLanes(
			[]LaneSpec{{LaneType: LANE_BIKING, Direction: DIRECTION_FORWARD, Width: bikeWidth}},
			[]LaneSpec{{LaneType: LANE_BIKING, Direction: DIRECTION_BACKWARD, Width: bikeWidth}},
			side,
		)
	}

	oneway := isOneway(tags)
	forwardLanes, backwardLanes := drivingLanesCount(tags, oneway)
	if tags.Find("oneway") == "-1" {
		forwardLanes, backwardLanes = backwardLanes, forwardLanes
	}

	// Each side is listed from the center line to the curb
	forwardSide := make([]LaneSpec, 0, forwardLanes+3)
	backwardSide := make([]LaneSpec, 0, backwardLanes+3)
	for i := 0; i < forwardLanes; i++ {
		forwardSide = append(forwardSide, LaneSpec{LaneType: LANE_DRIVING, Direction: DIRECTION_FORWARD, Width: laneWidth})
	}
	for i := 0; i < backwardLanes; i++ {
		backwardSide = append(backwardSide, LaneSpec{LaneType: LANE_DRIVING, Direction: DIRECTION_BACKWARD, Width: laneWidth})
	}
	if tags.Find("busway") == "lane" || tags.Find("lanes:bus") != "" {
		forwardSide = append(forwardSide, LaneSpec{LaneType: LANE_BUS, Direction: DIRECTION_FORWARD, Width: busLaneWidth})
		if !oneway {
			backwardSide = append(backwardSide, LaneSpec{LaneType: LANE_BUS, Direction: DIRECTION_BACKWARD, Width: busLaneWidth})
		}
	}

	// "right"/"left" below are the curb sides relative to the way direction
	forwardCurb, backwardCurb := "right", "left"
	if side == DRIVING_SIDE_LEFT {
		forwardCurb, backwardCurb = "left", "right"
	}

	if hasBikeLane(tags, forwardCurb) {
		forwardSide = append(forwardSide, LaneSpec{LaneType: LANE_BIKING, Direction: DIRECTION_FORWARD, Width: bikeWidth})
	}
	if hasBikeLane(tags, backwardCurb) && !oneway {
		backwardSide = append(backwardSide, LaneSpec{LaneType: LANE_BIKING, Direction: DIRECTION_BACKWARD, Width: bikeWidth})
	}
	if hasParking(tags, forwardCurb) {
		forwardSide = append(forwardSide, LaneSpec{LaneType: LANE_PARKING, Direction: DIRECTION_FORWARD, Width: parkingWidth})
	}
	if hasParking(tags, backwardCurb) {
		backwardSide = append(backwardSide, LaneSpec{LaneType: LANE_PARKING, Direction: DIRECTION_BACKWARD, Width: parkingWidth})
	}

	forwardWalk, backwardWalk := sidewalkSides(tags, highway, forwardCurb, backwardCurb)
	forwardSide = append(forwardSide, forwardWalk...)
	backwardSide = append(backwardSide, backwardWalk...)

	return assembleLanes(forwardSide, backwardSide, side)
}

// assembleLanes lays both sides out from the left edge to the right edge
func assembleLanes(forwardSide, backwardSide []LaneSpec, side DrivingSide) []LaneSpec {
	left, right := backwardSide, forwardSide
	if side == DRIVING_SIDE_LEFT {
		left, right = forwardSide, backwardSide
	}
	specs := make([]LaneSpec, 0, len(left)+len(right))
	for i := len(left) - 1; i >= 0; i-- {
		specs = append(specs, left[i])
	}
	specs = append(specs, right...)
	return specs
}

func isOneway(tags osm.Tags) bool {
	onewayText := tags.Find("oneway")
	switch onewayText {
	case "yes", "1", "-1":
		return true
	case "":
		_, ok := junctionTypes[tags.Find("junction")]
		return ok
	default:
		return false
	}
}

func parseCount(tags osm.Tags, key string) int {
	text := lanesRegExp.FindString(tags.Find(key))
	if text == "" {
		return -1
	}
	value, err := strconv.Atoi(text)
	if err != nil {
		return -1
	}
	return value
}

func drivingLanesCount(tags osm.Tags, oneway bool) (int, int) {
	lanes := parseCount(tags, "lanes")
	if oneway {
		if lanes <= 0 {
			return 1, 0
		}
		return lanes, 0
	}
	forward := parseCount(tags, "lanes:forward")
	backward := parseCount(tags, "lanes:backward")
	if forward > 0 && backward >= 0 {
		return forward, backward
	}
	if lanes <= 0 {
		return 1, 1
	}
	if forward > 0 {
		return forward, maxInt(lanes-forward, 0)
	}
	if backward >= 0 {
		return maxInt(lanes-backward, 1), backward
	}
	forward = int(math.Ceil(float64(lanes) / 2.0))
	return forward, maxInt(lanes-forward, 1)
}

func hasBikeLane(tags osm.Tags, curb string) bool {
	for _, key := range []string{"cycleway", "cycleway:both", "cycleway:" + curb} {
		switch tags.Find(key) {
		case "lane", "track":
			return true
		}
	}
	return false
}

func hasParking(tags osm.Tags, curb string) bool {
	for _, key := range []string{"parking:lane:both", "parking:lane:" + curb} {
		switch tags.Find(key) {
		case "parallel", "diagonal", "perpendicular":
			return true
		}
	}
	return false
}

// sidewalkSides returns walkable lanes for forward and backward curbs
func sidewalkSides(tags osm.Tags, highway, forwardCurb, backwardCurb string) ([]LaneSpec, []LaneSpec) {
	if _, ok := noPedestrianHighwayTags[highway]; ok {
		return nil, nil
	}
	forward := []LaneSpec{{LaneType: LANE_SIDEWALK, Direction: DIRECTION_FORWARD, Width: sidewalkWidth}}
	backward := []LaneSpec{{LaneType: LANE_SIDEWALK, Direction: DIRECTION_BACKWARD, Width: sidewalkWidth}}
	forwardShoulder := []LaneSpec{{LaneType: LANE_SHOULDER, Direction: DIRECTION_FORWARD, Width: shoulderWidth}}
	backwardShoulder := []LaneSpec{{LaneType: LANE_SHOULDER, Direction: DIRECTION_BACKWARD, Width: shoulderWidth}}
	switch tags.Find("sidewalk") {
	case "both":
		return forward, backward
	case forwardCurb:
		return forward, backwardShoulder
	case backwardCurb:
		return forwardShoulder, backward
	case "no", "none", "separate":
		return forwardShoulder, backwardShoulder
	case "":
		if _, ok := noSidewalkHighwayTags[highway]; ok {
			return forwardShoulder, backwardShoulder
		}
		return forward, backward
	default:
		return forward, backward
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
