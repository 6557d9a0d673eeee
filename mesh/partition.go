package mesh

import (
	"fmt"
	"slices"

	"github.com/notargets/boxmesh/utils"
	"gonum.org/v1/gonum/spatial/r3"
)

// Piece is one contiguous slab of cells carved out of a larger mesh, with its
// own local numbering.
type Piece struct {
	Rank         int
	Mesh         *Mesh
	GlobalVertex []int // local vertex id -> id in the parent mesh
	GlobalCell   []int // local cell id -> id in the parent mesh
}

// Partition splits the cells into n contiguous ranges, differing in size by
// at most one cell, and builds a self contained Mesh for each. Vertices on
// the seam between two pieces are repeated in both. Pieces carry no
// interpolated entities.
func (m *Mesh) Partition(n int) ([]*Piece, error) {
	if n < 1 || n > len(m.cells) {
		return nil, fmt.Errorf("cannot split %d cells into %d pieces", len(m.cells), n)
	}
	var (
		pm     = utils.NewPartitionMap(n, len(m.cells))
		pieces = make([]*Piece, n)
	)
	for rank := 0; rank < n; rank++ {
		p := &Piece{Rank: rank, GlobalCell: make([]int, pm.GetBucketDimension(rank))}
		used := make(map[int]struct{})
		for local := range p.GlobalCell {
			k := pm.GetGlobalK(local, rank)
			p.GlobalCell[local] = k
			for _, v := range m.cells[k].Vertices {
				used[v] = struct{}{}
			}
		}
		p.GlobalVertex = make([]int, 0, len(used))
		for v := range used {
			p.GlobalVertex = append(p.GlobalVertex, v)
		}
		slices.Sort(p.GlobalVertex)
		toLocal := make(map[int]int, len(p.GlobalVertex))
		verts := make([]r3.Vec, len(p.GlobalVertex))
		for local, global := range p.GlobalVertex {
			toLocal[global] = local
			verts[local] = m.vertices[global]
		}
		cells := make([]Cell, len(p.GlobalCell))
		for local, global := range p.GlobalCell {
			c := m.cells[global]
			lv := make([]int, len(c.Vertices))
			for i, v := range c.Vertices {
				lv[i] = toLocal[v]
			}
			cells[local] = Cell{Type: c.Type, Vertices: lv}
		}
		pmesh, err := New(verts, cells, nil)
		if err != nil {
			return nil, fmt.Errorf("piece %d: %w", rank, err)
		}
		p.Mesh = pmesh
		pieces[rank] = p
	}
	return pieces, nil
}

// LocateCell returns the piece that Partition(n) places cell id in and the
// cell's local id within that piece
func (m *Mesh) LocateCell(n, id int) (rank, local int, ok bool) {
	if n < 1 || n > len(m.cells) || id < 0 || id >= len(m.cells) {
		return -1, -1, false
	}
	local, _, rank = utils.NewPartitionMap(n, len(m.cells)).GetLocalK(id)
	return rank, local, true
}
