package mesh

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// KuhnTets splits a hexahedron, in VTK corner order, into six positively
// oriented tetrahedra that all share the diagonal from corner 0 to corner 6.
// One tet per monotone lattice path from (0,0,0) to (1,1,1); odd paths have
// their last two corners swapped to keep the orientation positive.
var KuhnTets = [6][4]int{
	{0, 1, 2, 6}, // x, y, z
	{0, 1, 6, 5}, // x, z, y
	{0, 3, 6, 2}, // y, x, z
	{0, 3, 7, 6}, // y, z, x
	{0, 4, 5, 6}, // z, x, y
	{0, 4, 6, 7}, // z, y, x
}

// TetVolume returns the signed volume of a tetrahedron, positive when
// (p1-p0, p2-p0, p3-p0) is a right handed frame
func TetVolume(p0, p1, p2, p3 r3.Vec) float64 {
	var (
		a = r3.Sub(p1, p0)
		b = r3.Sub(p2, p0)
		c = r3.Sub(p3, p0)
	)
	J := mat.NewDense(3, 3, []float64{
		a.X, b.X, c.X,
		a.Y, b.Y, c.Y,
		a.Z, b.Z, c.Z,
	})
	return mat.Det(J) / 6.
}

// CellVolume returns the signed volume of cell id. Hexahedra are integrated
// as the sum of their Kuhn tetrahedra, exact for parallelepipeds.
func (m *Mesh) CellVolume(id int) float64 {
	if id < 0 || id >= len(m.cells) {
		return 0
	}
	c := m.cells[id]
	x := func(i int) r3.Vec { return m.vertices[c.Vertices[i]] }
	switch c.Type {
	case Tet:
		return TetVolume(x(0), x(1), x(2), x(3))
	case Hex:
		var vol float64
		for _, t := range KuhnTets {
			vol += TetVolume(x(t[0]), x(t[1]), x(t[2]), x(t[3]))
		}
		return vol
	default:
		return 0
	}
}

// Volume returns the sum of all cell volumes
func (m *Mesh) Volume() (vol float64) {
	for id := range m.cells {
		vol += m.CellVolume(id)
	}
	return
}
