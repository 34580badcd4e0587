package point

import (
	"testing"

	"go.viam.com/test"
)

func TestPointCoordinates(t *testing.T) {
	p := New(1, 2, 3)
	test.That(t, p.X(), test.ShouldEqual, 1.0)
	test.That(t, p.Y(), test.ShouldEqual, 2.0)
	test.That(t, p.Z(), test.ShouldEqual, 3.0)
}

func TestSquaredDistance(t *testing.T) {
	a := New(0, 0, 0)
	b := New(3, 4, 0)
	test.That(t, a.SquaredDistance(b), test.ShouldEqual, 25.0)
	test.That(t, a.Distance(b), test.ShouldEqual, 5.0)
}

func TestSampleFlags(t *testing.T) {
	s := NewSample(1, 2, 3)
	test.That(t, s.Selected(), test.ShouldBeTrue)
	test.That(t, s.Covered(), test.ShouldBeFalse)
	test.That(t, s.NCovered(), test.ShouldEqual, uint32(0))

	s.SetSelected(false)
	s.SetCovered(true)
	s.IncreaseNCovered()
	s.IncreaseNCovered()
	test.That(t, s.Selected(), test.ShouldBeFalse)
	test.That(t, s.Covered(), test.ShouldBeTrue)
	test.That(t, s.NCovered(), test.ShouldEqual, uint32(2))

	s.DecreaseNCovered()
	test.That(t, s.NCovered(), test.ShouldEqual, uint32(1))
}

func TestOrientedSample(t *testing.T) {
	s := NewOrientedSample(0, 0, 0, 0, 0, 1)
	test.That(t, s.Normal().Z, test.ShouldEqual, 1.0)
}
