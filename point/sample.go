package point

import "github.com/golang/geo/r3"

// Sample is a Point with an optional normal and tangent, plus the mutable
// selection bookkeeping the dart-throwing and greedy selection engines
// maintain in place. A Sample is owned by exactly one octree leaf once
// inserted; nothing about Sample itself enforces that ownership.
type Sample struct {
	Point

	normal  r3.Vector
	tangent r3.Vector

	selected bool
	covered  bool
	ncovered uint32
}

// NewSample returns an unoriented Sample (zero normal) at the given
// coordinates, initially selected and uncovered.
func NewSample(x, y, z float64) *Sample {
	return &Sample{
		Point:    New(x, y, z),
		selected: true,
	}
}

// NewOrientedSample returns a Sample at the given coordinates with the given
// normal, initially selected and uncovered.
func NewOrientedSample(x, y, z, nx, ny, nz float64) *Sample {
	return &Sample{
		Point:    New(x, y, z),
		normal:   r3.Vector{X: nx, Y: ny, Z: nz},
		selected: true,
	}
}

// Normal returns the sample's normal vector.
func (s *Sample) Normal() r3.Vector { return s.normal }

// SetNormal sets the sample's normal vector.
func (s *Sample) SetNormal(n r3.Vector) { s.normal = n }

// Tangent returns the sample's tangent vector, if any was set.
func (s *Sample) Tangent() r3.Vector { return s.tangent }

// SetTangent sets the sample's tangent vector.
func (s *Sample) SetTangent(t r3.Vector) { s.tangent = t }

// Selected reports whether the sample is currently part of the output set.
func (s *Sample) Selected() bool { return s.selected }

// SetSelected sets the sample's selected flag.
func (s *Sample) SetSelected(v bool) { s.selected = v }

// Covered reports whether a selected sample lies within the active
// selection radius of this one; a selected sample covers itself.
func (s *Sample) Covered() bool { return s.covered }

// SetCovered sets the sample's covered flag.
func (s *Sample) SetCovered(v bool) { s.covered = v }

// NCovered returns the number of times this sample has been covered by a
// selected neighbor.
func (s *Sample) NCovered() uint32 { return s.ncovered }

// IncreaseNCovered increments the coverage counter by one.
func (s *Sample) IncreaseNCovered() { s.ncovered++ }

// DecreaseNCovered decrements the coverage counter by one, floored at zero.
func (s *Sample) DecreaseNCovered() {
	if s.ncovered > 0 {
		s.ncovered--
	}
}
