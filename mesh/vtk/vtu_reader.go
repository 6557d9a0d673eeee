package vtk

import (
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/notargets/boxmesh/mesh"
	"gonum.org/v1/gonum/spatial/r3"
)

// Grid is the raw content of a VTU file
type Grid struct {
	Points       []r3.Vec
	Connectivity []int64
	Offsets      []int64
	Types        []uint8
	CellData     map[string][]int64
	FieldData    map[string][]int64
}

// ReadVTU reads a .vtu file and rebuilds the mesh it describes. Interpolated
// entities are not stored in the file and are not restored.
func ReadVTU(path string) (*mesh.Mesh, error) {
	g, err := ReadGrid(path)
	if err != nil {
		return nil, err
	}
	return g.Mesh()
}

// ReadGrid reads the raw arrays of a .vtu file
func ReadGrid(path string) (*Grid, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &IOError{Op: "open", Path: path, Err: err}
	}
	defer file.Close()
	g, err := DecodeVTU(file)
	if err != nil {
		return nil, &IOError{Op: "read", Path: path, Err: err}
	}
	return g, nil
}

// DecodeVTU parses a VTU document
func DecodeVTU(r io.Reader) (*Grid, error) {
	var f vtkFile
	if err := xml.NewDecoder(r).Decode(&f); err != nil {
		return nil, err
	}
	if f.Type != "UnstructuredGrid" || f.Grid == nil {
		return nil, fmt.Errorf("not an UnstructuredGrid file: type %q", f.Type)
	}
	if f.ByteOrder != "" && f.ByteOrder != "LittleEndian" {
		return nil, fmt.Errorf("unsupported byte order %q", f.ByteOrder)
	}
	var (
		p  = f.Grid.Piece
		ht = f.HeaderType
		g  = &Grid{}
	)
	if len(p.Points.Arrays) == 0 {
		return nil, fmt.Errorf("missing Points DataArray")
	}
	coords, err := decodeFloats(p.Points.Arrays[0], ht)
	if err != nil {
		return nil, err
	}
	if len(coords) != 3*p.NumberOfPoints {
		return nil, fmt.Errorf("%d point coordinates for %d points", len(coords), p.NumberOfPoints)
	}
	g.Points = make([]r3.Vec, p.NumberOfPoints)
	for i := range g.Points {
		g.Points[i] = r3.Vec{X: coords[3*i], Y: coords[3*i+1], Z: coords[3*i+2]}
	}
	for _, name := range []string{"connectivity", "offsets", "types"} {
		da, ok := p.Cells.find(name)
		if !ok {
			return nil, fmt.Errorf("missing Cells DataArray %q", name)
		}
		vals, err := decodeInts(da, ht)
		if err != nil {
			return nil, err
		}
		switch name {
		case "connectivity":
			g.Connectivity = vals
		case "offsets":
			g.Offsets = vals
		case "types":
			g.Types = make([]uint8, len(vals))
			for i, v := range vals {
				if v < 0 || v > math.MaxUint8 {
					return nil, fmt.Errorf("cell %d: type code %d out of range", i, v)
				}
				g.Types[i] = uint8(v)
			}
		}
	}
	if len(g.Offsets) != p.NumberOfCells || len(g.Types) != p.NumberOfCells {
		return nil, fmt.Errorf("%d offsets and %d types for %d cells",
			len(g.Offsets), len(g.Types), p.NumberOfCells)
	}
	if g.CellData, err = decodeIntSet(p.CellData, ht); err != nil {
		return nil, err
	}
	if g.FieldData, err = decodeIntSet(f.Grid.FieldData, ht); err != nil {
		return nil, err
	}
	return g, nil
}

func decodeIntSet(ds *dataSet, headerType string) (map[string][]int64, error) {
	if ds == nil {
		return nil, nil
	}
	out := make(map[string][]int64, len(ds.Arrays))
	for _, da := range ds.Arrays {
		vals, err := decodeInts(da, headerType)
		if err != nil {
			return nil, err
		}
		out[da.Name] = vals
	}
	return out, nil
}

// Mesh validates the grid and builds a mesh from it
func (g *Grid) Mesh() (*mesh.Mesh, error) {
	if len(g.Types) != len(g.Offsets) {
		return nil, &mesh.ConsistencyError{Kind: "cell", ID: min(len(g.Types), len(g.Offsets)),
			Reason: fmt.Sprintf("%d offsets but %d cell types", len(g.Offsets), len(g.Types))}
	}
	var (
		cells = make([]mesh.Cell, len(g.Offsets))
		start int64
	)
	for i, end := range g.Offsets {
		if end < start || end > int64(len(g.Connectivity)) {
			return nil, &mesh.ConsistencyError{Kind: "cell", ID: i,
				Reason: fmt.Sprintf("offset %d out of range [%d,%d]", end, start, len(g.Connectivity))}
		}
		et, ok := mesh.ElementTypeFromVTK(g.Types[i])
		if !ok {
			return nil, &mesh.ConsistencyError{Kind: "cell", ID: i,
				Reason: fmt.Sprintf("unsupported VTK cell type %d", g.Types[i])}
		}
		verts := make([]int, 0, end-start)
		for _, v := range g.Connectivity[start:end] {
			verts = append(verts, int(v))
		}
		cells[i] = mesh.Cell{Type: et, Vertices: verts}
		start = end
	}
	return mesh.New(g.Points, cells, nil)
}
