package mesh

import (
	"fmt"
	"io"
	"iter"
	"math"
	"slices"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"
)

// EntityKey is the canonical form of a face or edge: its vertex ids sorted
// ascending, padded with -1.
type EntityKey [4]int

// NewEntityKey returns the canonical key for up to four vertex ids
func NewEntityKey(verts []int) (key EntityKey, ok bool) {
	if len(verts) < 2 || len(verts) > 4 {
		return key, false
	}
	for i := range key {
		key[i] = -1
	}
	copy(key[:], verts)
	sort.Ints(key[:len(verts)])
	return key, true
}

// Mesh represents a finalized box mesh. It is read-only once New returns and
// may be shared between goroutines.
type Mesh struct {
	vertices []r3.Vec
	cells    []Cell

	// Present only when the mesh was interpolated
	faces, edges []Entity
	faceSupport  *supportIndex
	edgeSupport  *supportIndex
	faceIndex    map[EntityKey]int
	interpolated bool
}

// New validates the vertex, cell and entity sets and assembles a Mesh. Either
// a complete Mesh is returned or a *ConsistencyError and nil. The inputs are
// copied.
func New(vertices []r3.Vec, cells []Cell, ents *Entities) (*Mesh, error) {
	nv := len(vertices)
	for i, v := range vertices {
		if !finite(v) {
			return nil, &ConsistencyError{Kind: "vertex", ID: i,
				Reason: fmt.Sprintf("non finite coordinate %v", v)}
		}
	}
	for i, c := range cells {
		if err := checkVertexList("cell", i, c.Vertices, c.Type.NumVertices(), nv); err != nil {
			if c.Type.NumVertices() == 0 {
				return nil, &ConsistencyError{Kind: "cell", ID: i,
					Reason: fmt.Sprintf("unknown cell type %s", c.Type)}
			}
			return nil, err
		}
	}
	m := &Mesh{
		vertices: slices.Clone(vertices),
		cells:    make([]Cell, len(cells)),
	}
	for i, c := range cells {
		m.cells[i] = Cell{Type: c.Type, Vertices: slices.Clone(c.Vertices)}
	}
	if ents == nil {
		return m, nil
	}

	if err := checkEntities("face", 2, ents.Faces, ents.FaceSupport, nv, len(cells)); err != nil {
		return nil, err
	}
	if err := checkEntities("edge", 1, ents.Edges, ents.EdgeSupport, nv, len(cells)); err != nil {
		return nil, err
	}
	m.interpolated = true
	m.faces = cloneEntities(ents.Faces)
	m.edges = cloneEntities(ents.Edges)
	m.faceSupport = newSupportIndex(ents.FaceSupport, len(cells))
	m.edgeSupport = newSupportIndex(ents.EdgeSupport, len(cells))
	m.faceIndex = make(map[EntityKey]int, len(m.faces))
	for id, f := range m.faces {
		key, _ := NewEntityKey(f.Vertices)
		if prev, dup := m.faceIndex[key]; dup {
			return nil, &ConsistencyError{Kind: "face", ID: id,
				Reason: fmt.Sprintf("duplicates face %d", prev)}
		}
		m.faceIndex[key] = id
	}
	return m, nil
}

func checkVertexList(kind string, id int, verts []int, arity, nv int) error {
	if arity == 0 || len(verts) != arity {
		return &ConsistencyError{Kind: kind, ID: id,
			Reason: fmt.Sprintf("has %d vertices, want %d", len(verts), arity)}
	}
	for i, v := range verts {
		if v < 0 || v >= nv {
			return &ConsistencyError{Kind: kind, ID: id,
				Reason: fmt.Sprintf("references vertex %d, mesh has %d", v, nv)}
		}
		for _, w := range verts[:i] {
			if w == v {
				return &ConsistencyError{Kind: kind, ID: id,
					Reason: fmt.Sprintf("repeats vertex %d", v)}
			}
		}
	}
	return nil
}

func checkEntities(kind string, dim int, ents []Entity, support [][]int, nv, nc int) error {
	if len(support) != len(ents) {
		return &ConsistencyError{Kind: "support", ID: len(support),
			Reason: fmt.Sprintf("%d %s support lists for %d %ss", len(support), kind, len(ents), kind)}
	}
	for i, e := range ents {
		if e.Dim != dim {
			return &ConsistencyError{Kind: kind, ID: i,
				Reason: fmt.Sprintf("has dimension %d, want %d", e.Dim, dim)}
		}
		arity := 2
		if dim == 2 {
			arity = len(e.Vertices)
			if arity != 3 && arity != 4 {
				arity = 0
			}
		}
		if err := checkVertexList(kind, i, e.Vertices, arity, nv); err != nil {
			return err
		}
		if len(support[i]) == 0 {
			return &ConsistencyError{Kind: kind, ID: i, Reason: "is not owned by any cell"}
		}
		for _, c := range support[i] {
			if c < 0 || c >= nc {
				return &ConsistencyError{Kind: "support", ID: i,
					Reason: fmt.Sprintf("%s references cell %d, mesh has %d", kind, c, nc)}
			}
		}
	}
	return nil
}

func cloneEntities(ents []Entity) []Entity {
	out := make([]Entity, len(ents))
	for i, e := range ents {
		out[i] = Entity{Dim: e.Dim, Vertices: slices.Clone(e.Vertices)}
	}
	return out
}

func finite(v r3.Vec) bool {
	for _, x := range [3]float64{v.X, v.Y, v.Z} {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

func (m *Mesh) NumVertices() int { return len(m.vertices) }
func (m *Mesh) NumCells() int    { return len(m.cells) }
func (m *Mesh) NumFaces() int    { return len(m.faces) }
func (m *Mesh) NumEdges() int    { return len(m.edges) }

// Interpolated reports whether faces and edges were derived for this mesh
func (m *Mesh) Interpolated() bool { return m.interpolated }

// Count returns the number of entities of a topological dimension:
// 0 vertices, 1 edges, 2 faces, 3 cells.
func (m *Mesh) Count(dim int) int {
	switch dim {
	case 0:
		return len(m.vertices)
	case 1:
		return len(m.edges)
	case 2:
		return len(m.faces)
	case 3:
		return len(m.cells)
	default:
		return 0
	}
}

func (m *Mesh) Vertex(id int) (r3.Vec, bool) {
	if id < 0 || id >= len(m.vertices) {
		return r3.Vec{}, false
	}
	return m.vertices[id], true
}

// Cell returns a copy of cell id
func (m *Mesh) Cell(id int) (Cell, bool) {
	if id < 0 || id >= len(m.cells) {
		return Cell{}, false
	}
	c := m.cells[id]
	return Cell{Type: c.Type, Vertices: slices.Clone(c.Vertices)}, true
}

func (m *Mesh) Face(id int) (Entity, bool) { return entityAt(m.faces, id) }
func (m *Mesh) Edge(id int) (Entity, bool) { return entityAt(m.edges, id) }

func entityAt(ents []Entity, id int) (Entity, bool) {
	if id < 0 || id >= len(ents) {
		return Entity{}, false
	}
	e := ents[id]
	return Entity{Dim: e.Dim, Vertices: slices.Clone(e.Vertices)}, true
}

// Vertices iterates over (id, coordinate) in id order
func (m *Mesh) Vertices() iter.Seq2[int, r3.Vec] {
	return func(yield func(int, r3.Vec) bool) {
		for i, v := range m.vertices {
			if !yield(i, v) {
				return
			}
		}
	}
}

// Cells iterates over (id, cell) in id order. The yielded vertex slices
// belong to the mesh and must not be modified.
func (m *Mesh) Cells() iter.Seq2[int, Cell] {
	return func(yield func(int, Cell) bool) {
		for i, c := range m.cells {
			if !yield(i, c) {
				return
			}
		}
	}
}

// Faces iterates over (id, face); same ownership rule as Cells
func (m *Mesh) Faces() iter.Seq2[int, Entity] { return entitySeq(m.faces) }

// Edges iterates over (id, edge); same ownership rule as Cells
func (m *Mesh) Edges() iter.Seq2[int, Entity] { return entitySeq(m.edges) }

func entitySeq(ents []Entity) iter.Seq2[int, Entity] {
	return func(yield func(int, Entity) bool) {
		for i, e := range ents {
			if !yield(i, e) {
				return
			}
		}
	}
}

// FaceID finds the face with exactly the given vertex set, in any order
func (m *Mesh) FaceID(verts ...int) (int, bool) {
	key, ok := NewEntityKey(verts)
	if !ok || m.faceIndex == nil {
		return -1, false
	}
	id, ok := m.faceIndex[key]
	return id, ok
}

// Support returns the ids of the cells that contain entity id of dimension
// dim (1 edges, 2 faces), ascending. Nil when the mesh was not interpolated.
func (m *Mesh) Support(dim, id int) []int {
	switch dim {
	case 1:
		if id < 0 || id >= len(m.edges) {
			return nil
		}
		return m.edgeSupport.cells(id)
	case 2:
		if id < 0 || id >= len(m.faces) {
			return nil
		}
		return m.faceSupport.cells(id)
	default:
		return nil
	}
}

// IsBoundaryFace reports whether face id lies on the domain surface
func (m *Mesh) IsBoundaryFace(id int) bool {
	return m.faceSupport != nil && id >= 0 && id < len(m.faces) && m.faceSupport.count(id) == 1
}

// BoundaryFacesPerCell counts, for every cell, how many of its faces lie on
// the domain surface. Nil when the mesh was not interpolated.
func (m *Mesh) BoundaryFacesPerCell() []int {
	if !m.interpolated {
		return nil
	}
	counts := make([]int, len(m.cells))
	for f := range m.faces {
		if m.faceSupport.count(f) == 1 {
			counts[m.faceSupport.cells(f)[0]]++
		}
	}
	return counts
}

// Bounds returns the axis aligned box enclosing all vertices
func (m *Mesh) Bounds() Box {
	if len(m.vertices) == 0 {
		return Box{}
	}
	b := Box{Min: m.vertices[0], Max: m.vertices[0]}
	for _, v := range m.vertices[1:] {
		b.Min = r3.Vec{X: math.Min(b.Min.X, v.X), Y: math.Min(b.Min.Y, v.Y), Z: math.Min(b.Min.Z, v.Z)}
		b.Max = r3.Vec{X: math.Max(b.Max.X, v.X), Y: math.Max(b.Max.Y, v.Y), Z: math.Max(b.Max.Z, v.Z)}
	}
	return b
}

// CellTypes returns the number of cells of each type
func (m *Mesh) CellTypes() map[ElementType]int {
	counts := make(map[ElementType]int)
	for _, c := range m.cells {
		counts[c.Type]++
	}
	return counts
}

// Statistics summarizes a mesh
type Statistics struct {
	Vertices, Cells, Faces, Edges int
	BoundaryFaces                 int
	CellTypes                     map[ElementType]int
	Volume                        float64
}

func (m *Mesh) Statistics() Statistics {
	st := Statistics{
		Vertices:  len(m.vertices),
		Cells:     len(m.cells),
		Faces:     len(m.faces),
		Edges:     len(m.edges),
		CellTypes: m.CellTypes(),
		Volume:    m.Volume(),
	}
	for f := range m.faces {
		if m.IsBoundaryFace(f) {
			st.BoundaryFaces++
		}
	}
	return st
}

// PrintStatistics prints mesh statistics
func (m *Mesh) PrintStatistics(w io.Writer) {
	st := m.Statistics()
	fmt.Fprintf(w, "Mesh Statistics:\n")
	fmt.Fprintf(w, "  Vertices: %d\n", st.Vertices)
	fmt.Fprintf(w, "  Cells: %d\n", st.Cells)
	if m.interpolated {
		fmt.Fprintf(w, "  Faces: %d\n", st.Faces)
		fmt.Fprintf(w, "  Edges: %d\n", st.Edges)
		fmt.Fprintf(w, "  Boundary faces: %d\n", st.BoundaryFaces)
	}
	fmt.Fprintf(w, "  Cell types:\n")
	for _, t := range []ElementType{Tet, Hex} {
		if n := st.CellTypes[t]; n > 0 {
			fmt.Fprintf(w, "    %s: %d\n", t, n)
		}
	}
	fmt.Fprintf(w, "  Volume: %.6g\n", st.Volume)
}
