// Package box generates structured box meshes: a regular lattice of vertices
// spanning an axis aligned box, the hexahedral or tetrahedral cells that tile
// it, and optionally the faces and edges shared between those cells.
package box

import (
	"math"

	"github.com/notargets/boxmesh/mesh"
	"gonum.org/v1/gonum/spatial/r3"
)

// MaxVertices bounds the number of lattice points, so vertex ids fit in an
// Int32 and every count derived from them fits in an int.
const MaxVertices = math.MaxInt32

// Lattice describes a box split into Cells[axis] intervals along each axis.
// Vertex ids run x fastest, then y, then z.
type Lattice struct {
	Lower, Upper r3.Vec
	Cells        [3]int
}

// NewLattice validates the bounds and per-axis counts. Counts are rejected
// before anything is allocated when the lattice would hold more than
// MaxVertices points.
func NewLattice(lower, upper r3.Vec, cells [3]int) (*Lattice, error) {
	lo, hi := components(lower), components(upper)
	for axis := 0; axis < 3; axis++ {
		if !(lo[axis] < hi[axis]) || math.IsInf(lo[axis], 0) || math.IsInf(hi[axis], 0) {
			return nil, &mesh.InvalidBoundsError{Axis: axis, Lower: lo[axis], Upper: hi[axis]}
		}
	}
	for axis, n := range cells {
		if n < 1 {
			return nil, &mesh.InvalidCountError{Axis: axis, Count: n}
		}
	}
	total := 1
	for axis, n := range cells {
		if n >= MaxVertices || total > MaxVertices/(n+1) {
			return nil, &mesh.InvalidCountError{Axis: axis, Count: n, Limit: MaxVertices}
		}
		total *= n + 1
	}
	return &Lattice{Lower: lower, Upper: upper, Cells: cells}, nil
}

func components(v r3.Vec) [3]float64 { return [3]float64{v.X, v.Y, v.Z} }

// Points returns the number of lattice points along axis
func (l *Lattice) Points(axis int) int { return l.Cells[axis] + 1 }

func (l *Lattice) NumVertices() int {
	return l.Points(0) * l.Points(1) * l.Points(2)
}

// NumCubes is the number of lattice cubes, one hexahedron each
func (l *Lattice) NumCubes() int {
	return l.Cells[0] * l.Cells[1] * l.Cells[2]
}

// VertexID is the offset of lattice point (i,j,k) in the vertex sequence
func (l *Lattice) VertexID(i, j, k int) int {
	return i + l.Points(0)*(j+l.Points(1)*k)
}

// Coordinate returns the position of lattice plane i along axis. The last
// plane lands exactly on the upper bound.
func (l *Lattice) Coordinate(axis, i int) float64 {
	lo, hi := components(l.Lower)[axis], components(l.Upper)[axis]
	n := l.Cells[axis]
	if i >= n {
		return hi
	}
	return lo + (hi-lo)*float64(i)/float64(n)
}

// GenerateVertices returns every lattice point in vertex id order
func (l *Lattice) GenerateVertices() []r3.Vec {
	var (
		nx, ny, nz = l.Points(0), l.Points(1), l.Points(2)
		xs         = make([]float64, nx)
		ys         = make([]float64, ny)
		zs         = make([]float64, nz)
		verts      = make([]r3.Vec, 0, nx*ny*nz)
	)
	for i := range xs {
		xs[i] = l.Coordinate(0, i)
	}
	for j := range ys {
		ys[j] = l.Coordinate(1, j)
	}
	for k := range zs {
		zs[k] = l.Coordinate(2, k)
	}
	for k := 0; k < nz; k++ {
		for j := 0; j < ny; j++ {
			for i := 0; i < nx; i++ {
				verts = append(verts, r3.Vec{X: xs[i], Y: ys[j], Z: zs[k]})
			}
		}
	}
	return verts
}
