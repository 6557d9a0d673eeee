package box

import (
	"strings"

	"github.com/notargets/boxmesh/mesh"
)

// Shape selects hexahedral (tensor) or tetrahedral (simplex) cells
type Shape int

const (
	Tensor Shape = iota
	Simplex
)

func (s Shape) String() string {
	switch s {
	case Tensor:
		return "tensor"
	case Simplex:
		return "simplex"
	default:
		return "unknown"
	}
}

// ElementType is the cell type a shape produces
func (s Shape) ElementType() mesh.ElementType {
	if s == Simplex {
		return mesh.Tet
	}
	return mesh.Hex
}

// CellsPerCube is the number of cells each lattice cube is split into
func (s Shape) CellsPerCube() int {
	if s == Simplex {
		return len(mesh.KuhnTets)
	}
	return 1
}

// ParseShape accepts tensor|hex and simplex|tet, in any case
func ParseShape(name string) (Shape, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "tensor", "hex", "hexahedron":
		return Tensor, nil
	case "simplex", "tet", "tetrahedron":
		return Simplex, nil
	default:
		return 0, &mesh.UnsupportedShapeError{Shape: name}
	}
}

// cubeCorners returns the 8 corners of cube (i,j,k) in VTK hexahedron order
func (l *Lattice) cubeCorners(i, j, k int) [8]int {
	return [8]int{
		l.VertexID(i, j, k),
		l.VertexID(i+1, j, k),
		l.VertexID(i+1, j+1, k),
		l.VertexID(i, j+1, k),
		l.VertexID(i, j, k+1),
		l.VertexID(i+1, j, k+1),
		l.VertexID(i+1, j+1, k+1),
		l.VertexID(i, j+1, k+1),
	}
}

// BuildCells connects the lattice points into cells, cube by cube in vertex
// order. Every cube gets the same tetrahedral split so that the diagonals of
// neighboring cubes agree on their shared face.
func (l *Lattice) BuildCells(shape Shape) ([]mesh.Cell, error) {
	if shape != Tensor && shape != Simplex {
		return nil, &mesh.UnsupportedShapeError{Shape: shape.String()}
	}
	var (
		nx, ny, nz = l.Cells[0], l.Cells[1], l.Cells[2]
		cells      = make([]mesh.Cell, 0, l.NumCubes()*shape.CellsPerCube())
	)
	for k := 0; k < nz; k++ {
		for j := 0; j < ny; j++ {
			for i := 0; i < nx; i++ {
				c := l.cubeCorners(i, j, k)
				if shape == Tensor {
					cells = append(cells, mesh.Cell{Type: mesh.Hex, Vertices: c[:]})
					continue
				}
				for _, t := range mesh.KuhnTets {
					cells = append(cells, mesh.Cell{
						Type:     mesh.Tet,
						Vertices: []int{c[t[0]], c[t[1]], c[t[2]], c[t[3]]},
					})
				}
			}
		}
	}
	return cells, nil
}
