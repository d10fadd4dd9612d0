package osm2street

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
)

// PrepareWKT returns WKT representation of geometry
func PrepareWKT(g orb.Geometry) string {
	return wkt.MarshalString(g)
}
