package transport

import (
	"encoding/json"
	"fmt"
	"math"
)

// Point3 represents a point in 3-dimensional space.
type Point3 struct {
	X, Y, Z Real
}

// Origin is where every photon is emitted.
var Origin = Point3{}

// Add lets you translate a Point3 by a Vector3.
func (p Point3) Add(v Vector3) Point3 {
	return Point3{p.X + v.X, p.Y + v.Y, p.Z + v.Z}
}

// Dist returns the distance from the origin.
func (p Point3) Dist() Real {
	return math.Sqrt(p.X*p.X + p.Y*p.Y + p.Z*p.Z)
}

// MarshalJSON encodes the point as a compact [x, y, z] triple,
// the shape plotting tools expect for a trajectory vertex.
func (p Point3) MarshalJSON() ([]byte, error) {
	return json.Marshal([3]Real{p.X, p.Y, p.Z})
}

func (p *Point3) UnmarshalJSON(data []byte) error {
	var xyz [3]Real
	if err := json.Unmarshal(data, &xyz); err != nil {
		return fmt.Errorf("point must be [x, y, z]: %w", err)
	}
	p.X, p.Y, p.Z = xyz[0], xyz[1], xyz[2]
	return nil
}
