// Package pointfile reads and writes the ASCII point-cloud formats
// consumed and produced by cmd/pointthin. Point-cloud I/O sits outside the
// core selection algorithms (spec.md section 1 treats it as an external
// collaborator); this package's only contract toward the rest of the
// module is that it produces and accepts *point.Sample values.
package pointfile

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/pointthin/point"
)

// ReadPoints reads an ASCII point cloud from path. Each non-blank line
// holds either three whitespace-separated fields (x y z) or six (x y z nx
// ny nz); the format is detected from the first non-blank line and then
// applied to every remaining line in the file.
func ReadPoints(path string) (samples []*point.Sample, oriented bool, err error) {
	f, openErr := os.Open(path)
	if openErr != nil {
		return nil, false, errors.Wrapf(openErr, "opening %q", path)
	}
	defer func() {
		err = multierr.Combine(err, f.Close())
	}()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	detected := false
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if !detected {
			oriented = len(fields) >= 6
			detected = true
		}

		want := 3
		if oriented {
			want = 6
		}
		if len(fields) < want {
			return nil, false, errors.Errorf("%s:%d: expected %d fields, got %d", path, lineNo, want, len(fields))
		}

		vals := make([]float64, want)
		for i := 0; i < want; i++ {
			v, parseErr := strconv.ParseFloat(fields[i], 64)
			if parseErr != nil {
				return nil, false, errors.Wrapf(parseErr, "%s:%d: field %d", path, lineNo, i+1)
			}
			vals[i] = v
		}

		if oriented {
			samples = append(samples, point.NewOrientedSample(vals[0], vals[1], vals[2], vals[3], vals[4], vals[5]))
		} else {
			samples = append(samples, point.NewSample(vals[0], vals[1], vals[2]))
		}
	}
	if scanErr := scanner.Err(); scanErr != nil {
		return nil, false, errors.Wrapf(scanErr, "reading %q", path)
	}
	if len(samples) == 0 {
		return nil, false, errors.Errorf("%s: no points read", path)
	}
	return samples, oriented, nil
}

// WriteOFF writes selected to path in this project's OFF variant: a first
// line "OFF", a second line "<n>\t0\t0", then one 8-decimal-digit
// "x y z nx ny nz" line per sample.
func WriteOFF(path string, selected []*point.Sample) (err error) {
	f, createErr := os.Create(path)
	if createErr != nil {
		return errors.Wrapf(createErr, "creating %q", path)
	}
	defer func() {
		err = multierr.Combine(err, f.Close())
	}()

	w := bufio.NewWriter(f)
	defer func() {
		err = multierr.Combine(err, w.Flush())
	}()

	if _, werr := fmt.Fprintln(w, "OFF"); werr != nil {
		return werr
	}
	if _, werr := fmt.Fprintf(w, "%d\t0\t0\n", len(selected)); werr != nil {
		return werr
	}
	return writeSampleLines(w, selected)
}

// WriteASCII writes selected to path with no header, one 8-decimal-digit
// "x y z nx ny nz" line per sample.
func WriteASCII(path string, selected []*point.Sample) (err error) {
	f, createErr := os.Create(path)
	if createErr != nil {
		return errors.Wrapf(createErr, "creating %q", path)
	}
	defer func() {
		err = multierr.Combine(err, f.Close())
	}()

	w := bufio.NewWriter(f)
	defer func() {
		err = multierr.Combine(err, w.Flush())
	}()

	return writeSampleLines(w, selected)
}

func writeSampleLines(w *bufio.Writer, samples []*point.Sample) error {
	for _, s := range samples {
		n := s.Normal()
		if _, err := fmt.Fprintf(w, "%.8f\t%.8f\t%.8f\t%.8f\t%.8f\t%.8f\n",
			s.X(), s.Y(), s.Z(), n.X, n.Y, n.Z); err != nil {
			return err
		}
	}
	return nil
}
