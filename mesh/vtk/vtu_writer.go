// Package vtk writes and reads meshes as VTK XML UnstructuredGrid (.vtu)
// files, plus the parallel .pvtu index that ties piece files together.
package vtk

import (
	"bufio"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/notargets/boxmesh/mesh"
)

// IOError reports a failed file operation. No file is left at Path when a
// write fails.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// Options controls the written file
type Options struct {
	Encoding Encoding
	// Entities adds the interpolated face and edge counts as FieldData and the
	// per-cell number of boundary faces as CellData, when the mesh has them
	Entities bool
}

type vtkFile struct {
	XMLName    xml.Name           `xml:"VTKFile"`
	Type       string             `xml:"type,attr"`
	Version    string             `xml:"version,attr"`
	ByteOrder  string             `xml:"byte_order,attr"`
	HeaderType string             `xml:"header_type,attr"`
	Grid       *unstructuredGrid  `xml:"UnstructuredGrid,omitempty"`
	PGrid      *pUnstructuredGrid `xml:"PUnstructuredGrid,omitempty"`
}

type unstructuredGrid struct {
	FieldData *dataSet `xml:"FieldData,omitempty"`
	Piece     piece    `xml:"Piece"`
}

type piece struct {
	NumberOfPoints int      `xml:"NumberOfPoints,attr"`
	NumberOfCells  int      `xml:"NumberOfCells,attr"`
	CellData       *dataSet `xml:"CellData,omitempty"`
	Points         dataSet  `xml:"Points"`
	Cells          dataSet  `xml:"Cells"`
}

type dataSet struct {
	Arrays []dataArray `xml:"DataArray"`
}

type dataArray struct {
	Type               string `xml:"type,attr"`
	Name               string `xml:"Name,attr,omitempty"`
	NumberOfComponents int    `xml:"NumberOfComponents,attr,omitempty"`
	NumberOfTuples     int    `xml:"NumberOfTuples,attr,omitempty"`
	Format             string `xml:"format,attr"`
	Data               string `xml:",chardata"`
}

func (ds *dataSet) find(name string) (dataArray, bool) {
	if ds == nil {
		return dataArray{}, false
	}
	for _, da := range ds.Arrays {
		if da.Name == name {
			return da, true
		}
	}
	return dataArray{}, false
}

func newVTKFile(kind string) *vtkFile {
	return &vtkFile{
		Type:       kind,
		Version:    "0.1",
		ByteOrder:  "LittleEndian",
		HeaderType: "UInt32",
	}
}

// WriteVTU serializes m to path. The file is written under a temporary name
// in the same directory and renamed into place once complete. It is created
// with mode 0666 filtered by the process umask, like os.Create.
func WriteVTU(path string, m *mesh.Mesh, opts Options) error {
	if m == nil {
		return &IOError{Op: "write", Path: path, Err: errors.New("nil mesh")}
	}
	return writeAtomic(path, func(w io.Writer) error {
		return EncodeVTU(w, m, opts)
	})
}

// EncodeVTU writes the VTU document for m to w
func EncodeVTU(w io.Writer, m *mesh.Mesh, opts Options) error {
	var (
		nv     = m.NumVertices()
		nc     = m.NumCells()
		points = make([]float64, 0, 3*nv)
		conn   = make([]int64, 0, 8*nc)
		offs   = make([]int64, 0, nc)
		types  = make([]uint8, 0, nc)
	)
	for _, v := range m.Vertices() {
		points = append(points, v.X, v.Y, v.Z)
	}
	for _, c := range m.Cells() {
		for _, v := range c.Vertices {
			conn = append(conn, int64(v))
		}
		offs = append(offs, int64(len(conn)))
		types = append(types, c.Type.VTKType())
	}
	enc := opts.Encoding
	f := newVTKFile("UnstructuredGrid")
	f.Grid = &unstructuredGrid{
		Piece: piece{
			NumberOfPoints: nv,
			NumberOfCells:  nc,
			Points: dataSet{Arrays: []dataArray{
				newDataArray("Points", 3, points, enc),
			}},
			Cells: dataSet{Arrays: []dataArray{
				newDataArray("connectivity", 0, conn, enc),
				newDataArray("offsets", 0, offs, enc),
				newDataArray("types", 0, types, enc),
			}},
		},
	}
	if opts.Entities && m.Interpolated() {
		counts := m.BoundaryFacesPerCell()
		bf := make([]int32, len(counts))
		for i, n := range counts {
			bf[i] = int32(n)
		}
		f.Grid.Piece.CellData = &dataSet{Arrays: []dataArray{
			newDataArray("boundary_faces", 0, bf, enc),
		}}
		nf := newDataArray("NumberOfFaces", 0, []int64{int64(m.NumFaces())}, enc)
		nf.NumberOfTuples = 1
		ne := newDataArray("NumberOfEdges", 0, []int64{int64(m.NumEdges())}, enc)
		ne.NumberOfTuples = 1
		f.Grid.FieldData = &dataSet{Arrays: []dataArray{nf, ne}}
	}
	return encodeXML(w, f)
}

func encodeXML(w io.Writer, f *vtkFile) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(f); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// writeAtomic streams write into a temp file next to path, syncs it and
// renames it over path. On any failure the temp file is removed.
func writeAtomic(path string, write func(io.Writer) error) (err error) {
	if path == "" {
		return &IOError{Op: "create", Path: path, Err: errors.New("empty output path")}
	}
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	tmp, err := os.OpenFile(filepath.Join(dir, "."+base+".tmp-"+uuid.NewString()),
		os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o666)
	if err != nil {
		return &IOError{Op: "create", Path: path, Err: err}
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()
	bw := bufio.NewWriter(tmp)
	if err = write(bw); err != nil {
		return &IOError{Op: "write", Path: path, Err: err}
	}
	if err = bw.Flush(); err != nil {
		return &IOError{Op: "write", Path: path, Err: err}
	}
	if err = tmp.Sync(); err != nil {
		return &IOError{Op: "sync", Path: path, Err: err}
	}
	if err = tmp.Close(); err != nil {
		return &IOError{Op: "close", Path: path, Err: err}
	}
	if err = os.Rename(tmpName, path); err != nil {
		return &IOError{Op: "rename", Path: path, Err: err}
	}
	return nil
}
