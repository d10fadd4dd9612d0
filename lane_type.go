package osm2street

type LaneType uint16

const (
	LANE_DRIVING = LaneType(iota + 1)
	LANE_PARKING
	LANE_SIDEWALK
	LANE_SHOULDER
	LANE_BIKING
	LANE_BUS
)

func (iotaIdx LaneType) String() string {
	return [...]string{"driving", "parking", "sidewalk", "shoulder", "biking", "bus"}[iotaIdx-1]
}

// IsWalkable tells if pedestrians may use lane of such type
func (iotaIdx LaneType) IsWalkable() bool {
	return iotaIdx == LANE_SIDEWALK || iotaIdx == LANE_SHOULDER
}

type DirectionType uint16

const (
	DIRECTION_FORWARD = DirectionType(iota + 1)
	DIRECTION_BACKWARD
)

func (iotaIdx DirectionType) String() string {
	return [...]string{"forward", "backward"}[iotaIdx-1]
}

const (
	laneWidth     = 3.5
	busLaneWidth  = 3.5
	parkingWidth  = 2.5
	bikeWidth     = 2.0
	sidewalkWidth = 1.5
	shoulderWidth = 0.5
	footwayWidth  = 2.0
)

// LaneSpec describes single lane of a road. Road lanes are listed from the left edge to the right edge
// (looking along the road's direction from its source intersection to its target one)
type LaneSpec struct {
	LaneType  LaneType
	Direction DirectionType
	Width     float64
}

// totalWidth returns sum of all lanes widths
func totalWidth(specs []LaneSpec) float64 {
	total := 0.0
	for _, spec := range specs {
		total += spec.Width
	}
	return total
}
