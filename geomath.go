package osm2street

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

const (
	earthRadius = 6370.986884258304
	pi180       = math.Pi / 180.0

	// epsilonDist is the smallest distance (meters) two points are distinguished by
	epsilonDist = 0.01
)

// degreesToRadians deg = r * pi / 180
func degreesToRadians(d float64) float64 {
	return d * pi180
}

// greatCircleDistance returns distance between two geo-points (kilometers). Points are [lon, lat]
func greatCircleDistance(p, q orb.Point) float64 {
	lat1 := degreesToRadians(p.Lat())
	lon1 := degreesToRadians(p.Lon())
	lat2 := degreesToRadians(q.Lat())
	lon2 := degreesToRadians(q.Lon())
	diffLat := lat2 - lat1
	diffLon := lon2 - lon1
	a := math.Pow(math.Sin(diffLat/2), 2) + math.Cos(lat1)*math.Cos(lat2)*math.Pow(math.Sin(diffLon/2), 2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	ans := c * earthRadius
	return ans
}

// findDistance returns Euclidean distance between two points
func findDistance(p, q orb.Point) float64 {
	xdistance := p[0] - q[0]
	ydistance := p[1] - q[1]
	return math.Sqrt(xdistance*xdistance + ydistance*ydistance)
}

// samePoint tells if two points are closer than epsilonDist
func samePoint(p, q orb.Point) bool {
	return findDistance(p, q) < epsilonDist
}

// unitVector returns normalized vector from p to q and its original length
func unitVector(p, q orb.Point) (orb.Point, float64) {
	vec := orb.Point{q[0] - p[0], q[1] - p[1]}
	vecLen := math.Sqrt(vec[0]*vec[0] + vec[1]*vec[1])
	if vecLen == 0 {
		return orb.Point{}, 0
	}
	return orb.Point{vec[0] / vecLen, vec[1] / vecLen}, vecLen
}

// leftNormal rotates vector by 90 degrees counterclockwise
func leftNormal(vec orb.Point) orb.Point {
	return orb.Point{-vec[1], vec[0]}
}

func dot(a, b orb.Point) float64 {
	return a[0]*b[0] + a[1]*b[1]
}

func cross(a, b orb.Point) float64 {
	return a[0]*b[1] - a[1]*b[0]
}

// projectAway returns point shifted from p along vec (not necessary normalized) by distance
func projectAway(p, vec orb.Point, distance float64) orb.Point {
	return orb.Point{p[0] + vec[0]*distance, p[1] + vec[1]*distance}
}

// normalizeAngle maps angle (radians) into [0, 2*Pi)
func normalizeAngle(angle float64) float64 {
	angle = math.Mod(angle, 2*math.Pi)
	if angle < 0 {
		angle += 2 * math.Pi
	}
	return angle
}

// Check if two lines intersects and returns intersections Point
// p1, p2 - first line
// p3, p4 - second line
// Note: lines are infinite, Euclidean space
func intersect(p1, p2, p3, p4 orb.Point) (orb.Point, error) {
	// Calculate the coefficients of the linear equations
	a1 := p2[1] - p1[1]
	b1 := p1[0] - p2[0]
	c1 := a1*p1[0] + b1*p1[1]
	a2 := p4[1] - p3[1]
	b2 := p3[0] - p4[0]
	c2 := a2*p3[0] + b2*p3[1]

	// Calculate the determinant
	det := a1*b2 - a2*b1
	if det == 0 {
		return orb.Point{}, fmt.Errorf("The lines are parallel")
	}

	// Calculate the intersection point
	x := (b2*c1 - b1*c2) / det
	y := (a1*c2 - a2*c1) / det
	return orb.Point{x, y}, nil
}

// segmentsIntersection returns intersection point of two segments [p1, p2] and [p3, p4] if there is one
func segmentsIntersection(p1, p2, p3, p4 orb.Point) (orb.Point, bool) {
	r := orb.Point{p2[0] - p1[0], p2[1] - p1[1]}
	s := orb.Point{p4[0] - p3[0], p4[1] - p3[1]}
	denom := cross(r, s)
	if denom == 0 {
		// Parallel or collinear segments do not produce single hit
		return orb.Point{}, false
	}
	qp := orb.Point{p3[0] - p1[0], p3[1] - p1[1]}
	t := cross(qp, s) / denom
	u := cross(qp, r) / denom
	const tolerance = 1e-9
	if t < -tolerance || t > 1+tolerance || u < -tolerance || u > 1+tolerance {
		return orb.Point{}, false
	}
	return orb.Point{p1[0] + t*r[0], p1[1] + t*r[1]}, true
}

// projectOnSegment returns closest point on segment [p, q] to pt and the distance from p to it
func projectOnSegment(p, q, pt orb.Point) (orb.Point, float64) {
	vec, vecLen := unitVector(p, q)
	if vecLen == 0 {
		return p, 0
	}
	along := dot(orb.Point{pt[0] - p[0], pt[1] - p[1]}, vec)
	if along <= 0 {
		return p, 0
	}
	if along >= vecLen {
		return q, vecLen
	}
	return projectAway(p, vec, along), along
}

// offsetCurve shifts given line by distance: positive distance shifts to the left, negative - to the right
func offsetCurve(line orb.LineString, distance float64) orb.LineString {
	// Initialize result list and segment list
	var result orb.LineString
	var segments [][2]orb.Point

	// Iterate over line segments and calculate offset segments
	for i := 1; i < len(line); i++ {
		p1 := line[i-1]
		p2 := line[i]
		vec, vecLen := unitVector(p1, p2)
		if vecLen == 0 {
			continue
		}
		// Rotate the vector by 90 degrees and scale it by the distance
		rotated := leftNormal(vec)
		offset := [2]float64{rotated[0] * distance, rotated[1] * distance}
		op1 := orb.Point{p1[0] + offset[0], p1[1] + offset[1]}
		op2 := orb.Point{p2[0] + offset[0], p2[1] + offset[1]}
		segments = append(segments, [2]orb.Point{op1, op2})
	}
	if len(segments) == 0 {
		return result
	}

	result = append(result, segments[0][0])
	// Iterate over the segments and calculate the intersections
	for i := 1; i < len(segments); i++ {
		seg1 := segments[i-1]
		seg2 := segments[i]
		intersection, err := intersect(seg1[0], seg1[1], seg2[0], seg2[1])
		if err != nil {
			continue
		}
		result = append(result, intersection)
	}
	result = append(result, segments[len(segments)-1][1])
	return result
}
