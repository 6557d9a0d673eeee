package mesh

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// ElementType represents the cell shapes a box mesh can hold
type ElementType int

const (
	Tet ElementType = iota
	Hex
)

func (e ElementType) String() string {
	switch e {
	case Tet:
		return "Tet"
	case Hex:
		return "Hex"
	default:
		return fmt.Sprintf("ElementType(%d)", int(e))
	}
}

// NumVertices returns the cell arity, 0 for unknown types
func (e ElementType) NumVertices() int {
	switch e {
	case Tet:
		return 4
	case Hex:
		return 8
	default:
		return 0
	}
}

// VTK cell type codes from vtkCellType.h
const (
	VTKTetra      uint8 = 10
	VTKHexahedron uint8 = 12
)

// VTKType returns the VTK cell type code
func (e ElementType) VTKType() uint8 {
	switch e {
	case Tet:
		return VTKTetra
	case Hex:
		return VTKHexahedron
	default:
		return 0
	}
}

// ElementTypeFromVTK maps a VTK cell type code back to an ElementType
func ElementTypeFromVTK(code uint8) (ElementType, bool) {
	switch code {
	case VTKTetra:
		return Tet, true
	case VTKHexahedron:
		return Hex, true
	default:
		return 0, false
	}
}

// Cell is one volume element: its type and ordered corner vertex ids
type Cell struct {
	Type     ElementType
	Vertices []int
}

// Entity is a face (Dim 2) or edge (Dim 1) derived from cell boundaries
type Entity struct {
	Dim      int
	Vertices []int // Boundary vertices, ordered as seen from the first owning cell
}

// Entities holds deduplicated faces and edges along with the cells that
// contain each of them.
type Entities struct {
	Faces       []Entity
	Edges       []Entity
	FaceSupport [][]int // [nfaces][owning cells]
	EdgeSupport [][]int // [nedges][owning cells]
}

// GetElementFaces returns the face vertices for each element type, with
// outward normals by the right hand rule
func GetElementFaces(elemType ElementType, vertices []int) [][]int {
	switch elemType {
	case Tet:
		return [][]int{
			{vertices[0], vertices[2], vertices[1]}, // Face 0
			{vertices[0], vertices[1], vertices[3]}, // Face 1
			{vertices[1], vertices[2], vertices[3]}, // Face 2
			{vertices[0], vertices[3], vertices[2]}, // Face 3
		}
	case Hex:
		return [][]int{
			{vertices[0], vertices[3], vertices[2], vertices[1]}, // Face 0 (bottom)
			{vertices[4], vertices[5], vertices[6], vertices[7]}, // Face 1 (top)
			{vertices[0], vertices[1], vertices[5], vertices[4]}, // Face 2
			{vertices[1], vertices[2], vertices[6], vertices[5]}, // Face 3
			{vertices[2], vertices[3], vertices[7], vertices[6]}, // Face 4
			{vertices[3], vertices[0], vertices[4], vertices[7]}, // Face 5
		}
	default:
		return [][]int{}
	}
}

// GetElementEdges returns the edge vertex pairs for each element type
func GetElementEdges(elemType ElementType, vertices []int) [][]int {
	switch elemType {
	case Tet:
		return [][]int{
			{vertices[0], vertices[1]},
			{vertices[1], vertices[2]},
			{vertices[2], vertices[0]},
			{vertices[0], vertices[3]},
			{vertices[1], vertices[3]},
			{vertices[2], vertices[3]},
		}
	case Hex:
		return [][]int{
			{vertices[0], vertices[1]}, {vertices[1], vertices[2]},
			{vertices[2], vertices[3]}, {vertices[3], vertices[0]},
			{vertices[4], vertices[5]}, {vertices[5], vertices[6]},
			{vertices[6], vertices[7]}, {vertices[7], vertices[4]},
			{vertices[0], vertices[4]}, {vertices[1], vertices[5]},
			{vertices[2], vertices[6]}, {vertices[3], vertices[7]},
		}
	default:
		return [][]int{}
	}
}

// Box is an axis aligned bounding box
type Box struct {
	Min, Max r3.Vec
}
