package mesh

import (
	"slices"

	"github.com/james-bowman/sparse"
)

// supportIndex is the entity-to-cell incidence matrix, one row per entity and
// one column per cell. Assembled as DOK and frozen to CSR.
type supportIndex struct {
	csr *sparse.CSR
}

func newSupportIndex(support [][]int, nCells int) *supportIndex {
	if len(support) == 0 || nCells == 0 {
		return nil
	}
	dok := sparse.NewDOK(len(support), nCells)
	for e, cells := range support {
		for _, c := range cells {
			dok.Set(e, c, 1)
		}
	}
	return &supportIndex{csr: dok.ToCSR()}
}

func (s *supportIndex) row(e int) []int {
	raw := s.csr.RawMatrix()
	return raw.Ind[raw.Indptr[e]:raw.Indptr[e+1]]
}

func (s *supportIndex) cells(e int) []int {
	if s == nil {
		return nil
	}
	out := slices.Clone(s.row(e))
	slices.Sort(out)
	return out
}

func (s *supportIndex) count(e int) int {
	if s == nil {
		return 0
	}
	return len(s.row(e))
}
