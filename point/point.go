// Package point defines the immutable 3D coordinate type and the mutable
// oriented sample type that the octree, iterator and selection packages
// operate on.
package point

import "github.com/golang/geo/r3"

// Point is an immutable 3D coordinate triple.
type Point struct {
	pos r3.Vector
}

// New returns a Point at the given coordinates.
func New(x, y, z float64) Point {
	return Point{pos: r3.Vector{X: x, Y: y, Z: z}}
}

// NewFromVector returns a Point wrapping the given vector.
func NewFromVector(v r3.Vector) Point {
	return Point{pos: v}
}

// X returns the x coordinate.
func (p Point) X() float64 { return p.pos.X }

// Y returns the y coordinate.
func (p Point) Y() float64 { return p.pos.Y }

// Z returns the z coordinate.
func (p Point) Z() float64 { return p.pos.Z }

// Vector returns the underlying r3.Vector.
func (p Point) Vector() r3.Vector { return p.pos }

// SquaredDistance returns the squared Euclidean distance between p and q.
func (p Point) SquaredDistance(q Point) float64 {
	d := p.pos.Sub(q.pos)
	return d.Dot(d)
}

// Distance returns the Euclidean distance between p and q.
func (p Point) Distance(q Point) float64 {
	return p.pos.Sub(q.pos).Norm()
}
