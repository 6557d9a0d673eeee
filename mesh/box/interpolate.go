package box

import (
	"slices"

	"github.com/notargets/boxmesh/mesh"
)

// Interpolate derives the faces and edges of a cell set. Entities shared by
// neighboring cells are stored once, keyed by their sorted vertex ids, and
// each entity records the cells that contain it. Faces keep the vertex order
// of their first owner, so boundary faces point out of the domain.
func Interpolate(cells []mesh.Cell) *mesh.Entities {
	var (
		ents    = &mesh.Entities{}
		faceMap = make(map[mesh.EntityKey]int)
		edgeMap = make(map[mesh.EntityKey]int)
	)
	for elemID, c := range cells {
		for _, fv := range mesh.GetElementFaces(c.Type, c.Vertices) {
			ents.Faces, ents.FaceSupport = addEntity(faceMap, ents.Faces, ents.FaceSupport, 2, fv, elemID)
		}
		for _, ev := range mesh.GetElementEdges(c.Type, c.Vertices) {
			ents.Edges, ents.EdgeSupport = addEntity(edgeMap, ents.Edges, ents.EdgeSupport, 1, ev, elemID)
		}
	}
	return ents
}

func addEntity(index map[mesh.EntityKey]int, ents []mesh.Entity, support [][]int,
	dim int, verts []int, elemID int) ([]mesh.Entity, [][]int) {
	key, _ := mesh.NewEntityKey(verts)
	if id, exists := index[key]; exists {
		// Already seen from a neighbor
		if !slices.Contains(support[id], elemID) {
			support[id] = append(support[id], elemID)
		}
		return ents, support
	}
	index[key] = len(ents)
	ents = append(ents, mesh.Entity{Dim: dim, Vertices: slices.Clone(verts)})
	support = append(support, []int{elemID})
	return ents, support
}
