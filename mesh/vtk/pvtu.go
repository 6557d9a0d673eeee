package vtk

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

type pUnstructuredGrid struct {
	GhostLevel int          `xml:"GhostLevel,attr"`
	PCellData  *pDataSet    `xml:"PCellData,omitempty"`
	PPoints    pDataSet     `xml:"PPoints"`
	Pieces     []pieceEntry `xml:"Piece"`
}

type pDataSet struct {
	Arrays []pDataArray `xml:"PDataArray"`
}

type pDataArray struct {
	Type               string `xml:"type,attr"`
	Name               string `xml:"Name,attr,omitempty"`
	NumberOfComponents int    `xml:"NumberOfComponents,attr,omitempty"`
}

type pieceEntry struct {
	Source string `xml:"Source,attr"`
}

// PieceName returns the file name of piece rank for a .pvtu path:
// out/mesh.pvtu -> out/mesh_0.vtu
func PieceName(pvtuPath string, rank int) string {
	base := strings.TrimSuffix(pvtuPath, filepath.Ext(pvtuPath))
	return fmt.Sprintf("%s_%d.vtu", base, rank)
}

// WritePVTU writes the parallel index file listing pieces. Piece paths are
// stored relative to the directory of path.
func WritePVTU(path string, pieces []string, opts Options) error {
	if len(pieces) == 0 {
		return &IOError{Op: "write", Path: path, Err: errors.New("no pieces")}
	}
	dir := filepath.Dir(path)
	f := newVTKFile("PUnstructuredGrid")
	f.PGrid = &pUnstructuredGrid{
		PPoints: pDataSet{Arrays: []pDataArray{
			{Type: "Float64", Name: "Points", NumberOfComponents: 3},
		}},
	}
	if opts.Entities {
		f.PGrid.PCellData = &pDataSet{Arrays: []pDataArray{
			{Type: "Int32", Name: "boundary_faces"},
		}}
	}
	for _, p := range pieces {
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			rel = p
		}
		f.PGrid.Pieces = append(f.PGrid.Pieces, pieceEntry{Source: filepath.ToSlash(rel)})
	}
	return writeAtomic(path, func(w io.Writer) error {
		return encodeXML(w, f)
	})
}

// ReadPVTU returns the piece file paths named by a .pvtu file, resolved
// against its directory
func ReadPVTU(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &IOError{Op: "open", Path: path, Err: err}
	}
	defer file.Close()
	var f vtkFile
	if err = xml.NewDecoder(file).Decode(&f); err != nil {
		return nil, &IOError{Op: "read", Path: path, Err: err}
	}
	if f.Type != "PUnstructuredGrid" || f.PGrid == nil {
		return nil, &IOError{Op: "read", Path: path,
			Err: fmt.Errorf("not a PUnstructuredGrid file: type %q", f.Type)}
	}
	dir := filepath.Dir(path)
	out := make([]string, len(f.PGrid.Pieces))
	for i, p := range f.PGrid.Pieces {
		out[i] = filepath.Join(dir, filepath.FromSlash(p.Source))
	}
	return out, nil
}
