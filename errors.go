package osm2street

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// ErrOverlappingRoads is matched by *OverlapError
var ErrOverlappingRoads = errors.New("Some roads have overlapping segments")

// Overlap describes two roads sharing an intersection with identical geometry
type Overlap struct {
	Intersection OriginalIntersection
	First        OriginalRoad
	Second       OriginalRoad
	Reason       string
}

func (o Overlap) String() string {
	return fmt.Sprintf("%s and %s overlap at %s (%s)", o.First.WayURL(), o.Second.WayURL(), o.Intersection, o.Reason)
}

// OverlapError is fatal: network with duplicated geometry can't be converted
type OverlapError struct {
	Overlaps []Overlap
}

func (e *OverlapError) Error() string {
	lines := make([]string, 0, len(e.Overlaps)+1)
	lines = append(lines, fmt.Sprintf("%s (%d conflicts). You likely need to fix OSM and make the two ways meet at exactly one node:", ErrOverlappingRoads, len(e.Overlaps)))
	for _, o := range e.Overlaps {
		lines = append(lines, fmt.Sprintf("- %s: %s vs %s", o, o.First, o.Second))
	}
	return strings.Join(lines, "\n")
}

func (e *OverlapError) Unwrap() error {
	return ErrOverlappingRoads
}

// Roads returns every road mentioned in the conflicts (sorted, no duplicates)
func (e *OverlapError) Roads() []OriginalRoad {
	seen := make(map[OriginalRoad]struct{})
	for _, o := range e.Overlaps {
		seen[o.First] = struct{}{}
		seen[o.Second] = struct{}{}
	}
	return sortedRoadIDs(seen)
}
