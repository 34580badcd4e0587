// Command pointthin subsamples an oriented 3D point cloud to a Poisson-disk
// distributed subset: every pair of output points is separated by at
// least the requested radius, and every input point lies within that
// radius of some output point.
package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"

	"go.viam.com/pointthin/octree"
	"go.viam.com/pointthin/point"
	"go.viam.com/pointthin/pointfile"
	"go.viam.com/pointthin/selection"
)

var logger = golog.NewDevelopmentLogger("pointthin")

func main() {
	inFile := flag.String("i", "", "input point cloud (required)")
	outFile := flag.String("o", "", "output file prefix (required)")
	radius := flag.Float64("r", -1, "minimum separation radius (required)")
	ascii := flag.Bool("a", false, "write ASCII output instead of OFF")
	greedy := flag.Bool("greedy", false, "use the deterministic greedy engine instead of parallel dart throwing")
	workers := flag.Int("j", runtime.GOMAXPROCS(0), "max concurrent workers for dart throwing (ignored with -greedy)")
	flag.Parse()

	if err := run(*inFile, *outFile, *radius, *ascii, *greedy, *workers); err != nil {
		logger.Error(err)
		os.Exit(1)
	}
}

func run(inFile, outFile string, radius float64, ascii, greedy bool, workers int) error {
	if inFile == "" {
		return errors.New("no input file given (use -i)")
	}
	if outFile == "" {
		return errors.New("no output file given (use -o)")
	}
	if radius <= 0 {
		return errors.New("no positive radius given (use -r)")
	}

	readStart := time.Now()
	samples, oriented, err := pointfile.ReadPoints(inFile)
	if err != nil {
		return errors.Wrap(err, "reading input")
	}
	if !oriented {
		logger.Warn("input has no normals; samples were read with a zero normal")
	}
	logger.Infof("%d points read", len(samples))

	lo, hi := bounds(samples)
	origin, size, depth, err := octree.BoundingBox(lo, hi, radius)
	if err != nil {
		return errors.Wrap(err, "computing bounding box")
	}

	tree := octree.New(depth)
	tree.Initialize(origin, size)
	tree.AddPoints(samples)
	readElapsed := time.Since(readStart)

	logger.Infof("octree with depth %d created, bounding cube side %g", depth, size)
	logger.Infof("reading and building the octree took %s", readElapsed)
	printOctreeStats(tree)

	it := octree.NewIterator(tree)
	sel, err := selection.New(tree, it, radius)
	if err != nil {
		return errors.Wrap(err, "configuring selection")
	}

	selectStart := time.Now()
	if greedy {
		sel.PerformSelection()
	} else {
		if err := sel.PerformDartThrowingSelection(context.Background(), workers); err != nil {
			return errors.Wrap(err, "dart throwing selection")
		}
	}
	selectElapsed := time.Since(selectStart)

	logger.Infof("%d of %d points selected", sel.NSelected(), tree.NPoints())
	logger.Infof("selection took %s", selectElapsed)
	logger.Infof("cover rate: %.6f", sel.CoverRate())

	suffix := "_seeds.off"
	writeFn := pointfile.WriteOFF
	if ascii {
		suffix = "_seeds.asc"
		writeFn = pointfile.WriteASCII
	}
	if err := writeFn(outFile+suffix, sel.SelectedSamples()); err != nil {
		return errors.Wrap(err, "saving seeds")
	}
	return nil
}

// bounds returns the axis-aligned min and max corners of samples.
func bounds(samples []*point.Sample) (lo, hi r3.Vector) {
	lo = samples[0].Vector()
	hi = lo
	for _, s := range samples[1:] {
		v := s.Vector()
		if v.X < lo.X {
			lo.X = v.X
		}
		if v.Y < lo.Y {
			lo.Y = v.Y
		}
		if v.Z < lo.Z {
			lo.Z = v.Z
		}
		if v.X > hi.X {
			hi.X = v.X
		}
		if v.Y > hi.Y {
			hi.Y = v.Y
		}
		if v.Z > hi.Z {
			hi.Z = v.Z
		}
	}
	return lo, hi
}

// printOctreeStats logs a per-level occupancy table: the number of non-empty
// cells created at each depth below the root, and their mean occupancy,
// descending from just below the root to the leaves.
func printOctreeStats(tree *octree.Octree) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"depth", "non-empty cells", "mean points/cell"})

	for k := tree.Depth() - 1; k >= 0; k-- {
		var cells []*octree.Node
		tree.GetNodes(k, tree.Root(), &cells)
		if len(cells) == 0 {
			continue
		}

		occupancy := make([]float64, len(cells))
		for i, c := range cells {
			occupancy[i] = float64(subtreePoints(c))
		}
		t.AppendRow(table.Row{k, len(cells), stat.Mean(occupancy, nil)})
	}
	t.Render()
}

// subtreePoints counts every sample stored in n's subtree, recursing down to
// the leaves.
func subtreePoints(n *octree.Node) int {
	if n.Depth() == 0 {
		return n.NPoints()
	}
	total := 0
	for i := 0; i < 8; i++ {
		if c := n.Child(i); c != nil {
			total += subtreePoints(c)
		}
	}
	return total
}
