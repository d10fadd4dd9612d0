package osm2street

import (
	"container/heap"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

const polylabelPrecision = 0.1

// labelCell is square cell of the polylabel search
type labelCell struct {
	center orb.Point
	half   float64
	// distance from the center to the polygon border, negative outside
	dist float64
	// max possible distance for any point inside the cell
	max float64
}

func newLabelCell(center orb.Point, half float64, ring orb.Ring) *labelCell {
	d := signedDistanceToRing(center, ring)
	return &labelCell{center: center, half: half, dist: d, max: d + half*math.Sqrt2}
}

type labelCellQueue []*labelCell

func (q labelCellQueue) Len() int { return len(q) }
func (q labelCellQueue) Less(i, j int) bool { return q[i].max > q[j].max }
func (q labelCellQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }
func (q *labelCellQueue) Push(x interface{}) { *q = append(*q, x.(*labelCell)) }
func (q *labelCellQueue) Pop() interface{} {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}

// polylabel returns pole of inaccessibility: interior point which is the most distant from the border
func polylabel(ring orb.Ring) orb.Point {
	ring = closeRing(ring)
	bound := ring.Bound()
	width := bound.Max[0] - bound.Min[0]
	height := bound.Max[1] - bound.Min[1]
	cellSize := math.Min(width, height)
	if cellSize == 0 {
		return bound.Center()
	}
	half := cellSize / 2.0

	queue := &labelCellQueue{}
	for x := bound.Min[0]; x < bound.Max[0]; x += cellSize {
		for y := bound.Min[1]; y < bound.Max[1]; y += cellSize {
			heap.Push(queue, newLabelCell(orb.Point{x + half, y + half}, half, ring))
		}
	}

	centroid, _ := planar.CentroidArea(ring)
	best := newLabelCell(centroid, 0, ring)
	if bboxCell := newLabelCell(bound.Center(), 0, ring); bboxCell.dist > best.dist {
		best = bboxCell
	}

	for queue.Len() > 0 {
		cell := heap.Pop(queue).(*labelCell)
		if cell.dist > best.dist {
			best = cell
		}
		if cell.max-best.dist <= polylabelPrecision {
			continue
		}
		h := cell.half / 2.0
		for _, shift := range [4]orb.Point{{-h, -h}, {h, -h}, {-h, h}, {h, h}} {
			heap.Push(queue, newLabelCell(orb.Point{cell.center[0] + shift[0], cell.center[1] + shift[1]}, h, ring))
		}
	}
	return best.center
}

// signedDistanceToRing is positive for points inside the ring
func signedDistanceToRing(pt orb.Point, ring orb.Ring) float64 {
	minDist := math.Inf(1)
	for i := 1; i < len(ring); i++ {
		closest, _ := projectOnSegment(ring[i-1], ring[i], pt)
		minDist = math.Min(minDist, findDistance(closest, pt))
	}
	if planar.RingContains(ring, pt) {
		return minDist
	}
	return -minDist
}
