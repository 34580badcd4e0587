package pointfile

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"go.viam.com/test"

	"go.viam.com/pointthin/point"
)

// xyzn projects a Sample's coordinates and normal into a plain comparable
// struct: Point and Sample carry unexported fields, so cmp.Diff needs
// something with only exported fields to compare, per S6.
type xyzn struct {
	Pos    r3.Vector
	Normal r3.Vector
}

func project(s *point.Sample) xyzn {
	return xyzn{Pos: s.Vector(), Normal: s.Normal()}
}

func TestReadPointsDetectsUnoriented(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "in.asc")
	test.That(t, os.WriteFile(path, []byte("0 0 0\n1 1 1\n"), 0o644), test.ShouldBeNil)

	samples, oriented, err := ReadPoints(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, oriented, test.ShouldBeFalse)
	test.That(t, len(samples), test.ShouldEqual, 2)
	test.That(t, samples[1].X(), test.ShouldEqual, 1.0)
}

func TestReadPointsDetectsOriented(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "in.asc")
	test.That(t, os.WriteFile(path, []byte("0 0 0 0 0 1\n1 1 1 0 0 1\n"), 0o644), test.ShouldBeNil)

	samples, oriented, err := ReadPoints(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, oriented, test.ShouldBeTrue)
	test.That(t, samples[0].Normal().Z, test.ShouldEqual, 1.0)
}

func TestReadPointsMissingFile(t *testing.T) {
	_, _, err := ReadPoints(filepath.Join(t.TempDir(), "does-not-exist.asc"))
	test.That(t, err, test.ShouldNotBeNil)
}

func TestReadPointsRejectsShortLine(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "in.asc")
	test.That(t, os.WriteFile(path, []byte("0 0 0 0 0 1\n1 1\n"), 0o644), test.ShouldBeNil)

	_, _, err := ReadPoints(path)
	test.That(t, err, test.ShouldNotBeNil)
}

// TestASCIIRoundTrip covers S6: writing then reading back preserves
// coordinates to 8 decimal digits.
func TestASCIIRoundTrip(t *testing.T) {
	samples := make([]*point.Sample, 0, 100)
	for i := 0; i < 100; i++ {
		x := float64(i) * 0.123456789
		samples = append(samples, point.NewOrientedSample(x, x+1, x+2, 0, 0, 1))
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "out_seeds.asc")
	test.That(t, WriteASCII(path, samples), test.ShouldBeNil)

	readBack, oriented, err := ReadPoints(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, oriented, test.ShouldBeTrue)
	test.That(t, len(readBack), test.ShouldEqual, len(samples))

	for i, s := range samples {
		want, got := project(s), project(readBack[i])
		if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-8)); diff != "" {
			t.Errorf("sample %d mismatch (-want +got):\n%s", i, diff)
		}
	}
}

func TestWriteOFFHeader(t *testing.T) {
	samples := []*point.Sample{
		point.NewOrientedSample(1, 2, 3, 0, 0, 1),
		point.NewOrientedSample(4, 5, 6, 0, 1, 0),
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "out_seeds.off")
	test.That(t, WriteOFF(path, samples), test.ShouldBeNil)

	f, err := os.Open(path)
	test.That(t, err, test.ShouldBeNil)
	defer f.Close()

	scanner := bufio.NewScanner(f)
	test.That(t, scanner.Scan(), test.ShouldBeTrue)
	test.That(t, scanner.Text(), test.ShouldEqual, "OFF")
	test.That(t, scanner.Scan(), test.ShouldBeTrue)
	test.That(t, strings.Fields(scanner.Text()), test.ShouldResemble, []string{"2", "0", "0"})
	test.That(t, scanner.Scan(), test.ShouldBeTrue)
	test.That(t, strings.HasPrefix(scanner.Text(), "1.00000000"), test.ShouldBeTrue)
}

func TestWriteOFFEmptySelection(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty_seeds.off")
	test.That(t, WriteOFF(path, nil), test.ShouldBeNil)

	data, err := os.ReadFile(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, strings.HasPrefix(string(data), "OFF\n0\t0\t0\n"), test.ShouldBeTrue)
}
