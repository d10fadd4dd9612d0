package osm2street

type IntersectionType uint16

const (
	INTERSECTION_PLAIN = IntersectionType(iota + 1)
	INTERSECTION_DEAD_END
	INTERSECTION_CONTROLLED
	INTERSECTION_BORDER
)

func (iotaIdx IntersectionType) String() string {
	return [...]string{"plain", "dead_end", "controlled", "border"}[iotaIdx-1]
}

type DrivingSide uint16

const (
	DRIVING_SIDE_RIGHT = DrivingSide(iota + 1)
	DRIVING_SIDE_LEFT
)

func (iotaIdx DrivingSide) String() string {
	return [...]string{"right", "left"}[iotaIdx-1]
}

// ParseDrivingSide converts textual representation into DrivingSide
func ParseDrivingSide(s string) (DrivingSide, bool) {
	switch s {
	case "right":
		return DRIVING_SIDE_RIGHT, true
	case "left":
		return DRIVING_SIDE_LEFT, true
	default:
		return DRIVING_SIDE_RIGHT, false
	}
}
