package osm2street

import (
	"fmt"

	"github.com/LdDl/ch"
	"github.com/pkg/errors"
)

// ErrNotContracted is returned by queries made before Contract
var ErrNotContracted = errors.New("routing graph is not contracted")

// RoutingGraph is intersection-level graph of the map for shortest path queries
type RoutingGraph struct {
	Graph      *ch.Graph
	vertices   map[OriginalIntersection]int64
	labels     map[int64]OriginalIntersection
	contracted bool
}

// NewRoutingGraph puts every intersection as vertex (labeled by OSM node ID) and every road as two weighted edges (meters).
// Oneway roads are added in their direction only
func NewRoutingGraph(m *Map) (*RoutingGraph, error) {
	rg := &RoutingGraph{
		Graph:    &ch.Graph{},
		vertices: make(map[OriginalIntersection]int64),
		labels:   make(map[int64]OriginalIntersection),
	}
	for _, i := range m.Intersections() {
		label := int64(i.ID.NodeID)
		if err := rg.Graph.CreateVertex(label); err != nil {
			return nil, errors.Wrapf(err, "Can't create vertex for intersection %s", i.ID)
		}
		rg.vertices[i.ID] = label
		rg.labels[label] = i.ID
	}
	for _, r := range m.Roads() {
		forward, backward := roadDirections(r.LaneSpecs)
		cost := r.Length()
		source, target := rg.vertices[r.Src], rg.vertices[r.Dst]
		if forward {
			if err := rg.Graph.AddEdge(source, target, cost); err != nil {
				return nil, errors.Wrapf(err, "Can't add edge for road %s", r.ID)
			}
		}
		if backward {
			if err := rg.Graph.AddEdge(target, source, cost); err != nil {
				return nil, errors.Wrapf(err, "Can't add reversed edge for road %s", r.ID)
			}
		}
	}
	return rg, nil
}

// Contract prepares contraction hierarchies. It must be called once before any query.
// Contracted graph is read-only, so queries could run concurrently
func (rg *RoutingGraph) Contract() {
	rg.Graph.PrepareContractionHierarchies()
	rg.contracted = true
}

// roadDirections tells if road could be passed forward and backward by vehicles.
// Roads without vehicle lanes are footways and could be passed both ways
func roadDirections(specs []LaneSpec) (bool, bool) {
	forward, backward, vehicles := false, false, false
	for _, spec := range specs {
		switch spec.LaneType {
		case LANE_DRIVING, LANE_BUS, LANE_BIKING:
			vehicles = true
			if spec.Direction == DIRECTION_FORWARD {
				forward = true
			} else {
				backward = true
			}
		}
	}
	if !vehicles {
		return true, true
	}
	return forward, backward
}

// ShortestPath returns cost (meters) and intersections of the shortest path between two intersections.
// ErrNotContracted is returned until Contract has been called
func (rg *RoutingGraph) ShortestPath(from, to OriginalIntersection) (float64, []OriginalIntersection, error) {
	if !rg.contracted {
		return -1, nil, ErrNotContracted
	}
	source, ok := rg.vertices[from]
	if !ok {
		return -1, nil, fmt.Errorf("Intersection %s is not in the graph", from)
	}
	target, ok := rg.vertices[to]
	if !ok {
		return -1, nil, fmt.Errorf("Intersection %s is not in the graph", to)
	}
	cost, path := rg.Graph.ShortestPath(source, target)
	if cost < 0 || len(path) == 0 {
		return -1, nil, fmt.Errorf("No path between %s and %s", from, to)
	}
	result := make([]OriginalIntersection, len(path))
	for i, label := range path {
		result[i] = rg.labels[label]
	}
	return cost, result, nil
}

// ExportShortcuts writes shortcuts of contracted graph into the file
func (rg *RoutingGraph) ExportShortcuts(fname string) error {
	if err := rg.Graph.ExportShortcutsToFile(fname); err != nil {
		return errors.Wrap(err, "Can't export shortcuts")
	}
	return nil
}
