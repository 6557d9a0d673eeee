package vtk

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/notargets/boxmesh/mesh"
	"github.com/notargets/boxmesh/mesh/box"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func boxMesh(t *testing.T, cells [3]int, shape box.Shape, interpolate bool) *mesh.Mesh {
	t.Helper()
	lat, err := box.NewLattice(r3.Vec{X: -0.3, Y: 0, Z: 1e-3}, r3.Vec{X: 0.7, Y: 1. / 3., Z: 2}, cells)
	require.NoError(t, err)
	cs, err := lat.BuildCells(shape)
	require.NoError(t, err)
	var ents *mesh.Entities
	if interpolate {
		ents = box.Interpolate(cs)
	}
	m, err := mesh.New(lat.GenerateVertices(), cs, ents)
	require.NoError(t, err)
	return m
}

func assertSameMesh(t *testing.T, want, got *mesh.Mesh) {
	t.Helper()
	require.Equal(t, want.NumVertices(), got.NumVertices())
	require.Equal(t, want.NumCells(), got.NumCells())
	for i, v := range want.Vertices() {
		g, _ := got.Vertex(i)
		assert.InDelta(t, v.X, g.X, 1e-12)
		assert.InDelta(t, v.Y, g.Y, 1e-12)
		assert.InDelta(t, v.Z, g.Z, 1e-12)
	}
	for i, c := range want.Cells() {
		g, _ := got.Cell(i)
		assert.Equal(t, c.Type, g.Type)
		assert.Equal(t, c.Vertices, g.Vertices)
	}
}

func TestWriteReadVTU_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	for _, enc := range []Encoding{ASCII, Binary} {
		for _, shape := range []box.Shape{box.Tensor, box.Simplex} {
			m := boxMesh(t, [3]int{3, 2, 2}, shape, false)
			path := filepath.Join(dir, shape.String()+"_"+enc.String()+".vtu")
			require.NoError(t, WriteVTU(path, m, Options{Encoding: enc}))

			got, err := ReadVTU(path)
			require.NoError(t, err)
			assertSameMesh(t, m, got)
		}
	}
}

func TestEncodeVTU_Layout(t *testing.T) {
	lat, err := box.NewLattice(r3.Vec{}, r3.Vec{X: 1, Y: 1, Z: 1}, [3]int{1, 1, 1})
	require.NoError(t, err)
	cs, err := lat.BuildCells(box.Tensor)
	require.NoError(t, err)
	m, err := mesh.New(lat.GenerateVertices(), cs, nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, EncodeVTU(&buf, m, Options{}))
	doc := buf.String()
	assert.True(t, strings.HasPrefix(doc, "<?xml"))
	for _, want := range []string{
		`<VTKFile type="UnstructuredGrid" version="0.1" byte_order="LittleEndian" header_type="UInt32">`,
		`<Piece NumberOfPoints="8" NumberOfCells="1">`,
		`<DataArray type="Float64" Name="Points" NumberOfComponents="3" format="ascii">`,
		`<DataArray type="Int64" Name="connectivity" format="ascii">`,
		`<DataArray type="Int64" Name="offsets" format="ascii">`,
		`<DataArray type="UInt8" Name="types" format="ascii">`,
	} {
		assert.Contains(t, doc, want)
	}

	g, err := DecodeVTU(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, []int64{0, 1, 3, 2, 4, 5, 7, 6}, g.Connectivity)
	assert.Equal(t, []int64{8}, g.Offsets)
	assert.Equal(t, []uint8{mesh.VTKHexahedron}, g.Types)
	assert.Nil(t, g.CellData)
}

func TestEncodeVTU_Entities(t *testing.T) {
	m := boxMesh(t, [3]int{2, 1, 1}, box.Tensor, true)
	for _, enc := range []Encoding{ASCII, Binary} {
		var buf bytes.Buffer
		require.NoError(t, EncodeVTU(&buf, m, Options{Encoding: enc, Entities: true}))
		g, err := DecodeVTU(&buf)
		require.NoError(t, err)
		assert.Equal(t, []int64{int64(m.NumFaces())}, g.FieldData["NumberOfFaces"])
		assert.Equal(t, []int64{int64(m.NumEdges())}, g.FieldData["NumberOfEdges"])
		// Two hexes side by side each show five faces to the outside
		assert.Equal(t, []int64{5, 5}, g.CellData["boundary_faces"])
	}
}

func TestDecodeVTU_Foreign(t *testing.T) {
	// Int32 connectivity and Float32 points, as other writers produce
	doc := `<?xml version="1.0"?>
<VTKFile type="UnstructuredGrid" version="0.1" byte_order="LittleEndian">
  <UnstructuredGrid>
    <Piece NumberOfPoints="4" NumberOfCells="1">
      <Points>
        <DataArray type="Float32" NumberOfComponents="3" format="ascii">
          0 0 0  1 0 0  0 1 0  0 0 1
        </DataArray>
      </Points>
      <Cells>
        <DataArray type="Int32" Name="connectivity" format="ascii">0 1 2 3</DataArray>
        <DataArray type="Int32" Name="offsets" format="ascii">4</DataArray>
        <DataArray type="UInt8" Name="types" format="ascii">10</DataArray>
      </Cells>
    </Piece>
  </UnstructuredGrid>
</VTKFile>`
	g, err := DecodeVTU(strings.NewReader(doc))
	require.NoError(t, err)
	m, err := g.Mesh()
	require.NoError(t, err)
	assert.InDelta(t, 1./6., m.Volume(), 1e-7)

	bad := strings.Replace(doc, ">10<", ">13<", 1)
	g, err = DecodeVTU(strings.NewReader(bad))
	require.NoError(t, err)
	_, err = g.Mesh()
	var cErr *mesh.ConsistencyError
	assert.True(t, errors.As(err, &cErr))

	bad = strings.Replace(doc, ">0 1 2 3<", ">0 1 2 7<", 1)
	g, err = DecodeVTU(strings.NewReader(bad))
	require.NoError(t, err)
	_, err = g.Mesh()
	assert.True(t, errors.As(err, &cErr))

	// Type codes that do not fit their array type are rejected, not wrapped
	bad = strings.Replace(doc, ">10<", ">268<", 1)
	_, err = DecodeVTU(strings.NewReader(bad))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")
	bad = strings.Replace(doc, `type="UInt8" Name="types" format="ascii">10<`, `type="Int32" Name="types" format="ascii">268<`, 1)
	_, err = DecodeVTU(strings.NewReader(bad))
	require.Error(t, err)
	bad = strings.Replace(doc, ">0 1 2 3<", ">0 1 2 -3<", 1)
	_, err = DecodeVTU(strings.NewReader(strings.Replace(bad, `type="Int32" Name="connectivity"`, `type="UInt32" Name="connectivity"`, 1)))
	require.Error(t, err)

	_, err = DecodeVTU(strings.NewReader(strings.Replace(doc, `NumberOfPoints="4"`, `NumberOfPoints="5"`, 1)))
	assert.Error(t, err)
	_, err = DecodeVTU(strings.NewReader(strings.Replace(doc, `format="ascii">4<`, `format="raw">4<`, 1)))
	assert.Error(t, err)
}

func TestGrid_MeshMismatchedTypes(t *testing.T) {
	g := &Grid{
		Points:       []r3.Vec{{}, {X: 1}, {Y: 1}, {Z: 1}},
		Connectivity: []int64{0, 1, 2, 3},
		Offsets:      []int64{4},
	}
	_, err := g.Mesh()
	var cErr *mesh.ConsistencyError
	require.True(t, errors.As(err, &cErr))
	assert.Contains(t, cErr.Reason, "1 offsets but 0 cell types")

	g.Types = []uint8{mesh.VTKTetra, mesh.VTKTetra}
	_, err = g.Mesh()
	require.True(t, errors.As(err, &cErr))

	g.Types = g.Types[:1]
	m, err := g.Mesh()
	require.NoError(t, err)
	assert.InDelta(t, 1./6., m.Volume(), 1e-14)
}

func TestWriteVTU_Failures(t *testing.T) {
	m := boxMesh(t, [3]int{1, 1, 1}, box.Simplex, false)
	dir := t.TempDir()
	var ioErr *IOError

	// Missing directory
	path := filepath.Join(dir, "missing", "mesh.vtu")
	err := WriteVTU(path, m, Options{})
	require.True(t, errors.As(err, &ioErr))
	assert.Equal(t, path, ioErr.Path)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))

	// Destination is a directory: the rename fails and nothing is left behind
	target := filepath.Join(dir, "taken.vtu")
	require.NoError(t, os.Mkdir(target, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(target, "keep"), nil, 0o644))
	err = WriteVTU(target, m, Options{})
	require.True(t, errors.As(err, &ioErr))
	assert.Equal(t, "rename", ioErr.Op)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp file left behind")
	assert.Equal(t, "taken.vtu", entries[0].Name())

	require.True(t, errors.As(WriteVTU("", m, Options{}), &ioErr))
	require.True(t, errors.As(WriteVTU(filepath.Join(dir, "nil.vtu"), nil, Options{}), &ioErr))

	_, err = ReadVTU(filepath.Join(dir, "nope.vtu"))
	require.True(t, errors.As(err, &ioErr))
	assert.Equal(t, "open", ioErr.Op)
}

func TestWriteVTU_Replaces(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mesh.vtu")
	require.NoError(t, os.WriteFile(path, []byte("stale"), 0o644))
	m := boxMesh(t, [3]int{1, 1, 2}, box.Tensor, false)
	require.NoError(t, WriteVTU(path, m, Options{Encoding: Binary}))
	got, err := ReadVTU(path)
	require.NoError(t, err)
	assertSameMesh(t, m, got)
}

func TestPVTU(t *testing.T) {
	dir := t.TempDir()
	m := boxMesh(t, [3]int{2, 2, 3}, box.Simplex, false)
	pieces, err := m.Partition(3)
	require.NoError(t, err)

	pvtu := filepath.Join(dir, "out.pvtu")
	names := make([]string, len(pieces))
	for i, p := range pieces {
		names[i] = PieceName(pvtu, p.Rank)
		require.NoError(t, WriteVTU(names[i], p.Mesh, Options{Encoding: Binary}))
	}
	assert.Equal(t, filepath.Join(dir, "out_2.vtu"), names[2])
	require.NoError(t, WritePVTU(pvtu, names, Options{}))

	data, err := os.ReadFile(pvtu)
	require.NoError(t, err)
	assert.Contains(t, string(data), `<Piece Source="out_0.vtu">`)

	files, err := ReadPVTU(pvtu)
	require.NoError(t, err)
	assert.Equal(t, names, files)
	var cells int
	for _, f := range files {
		pm, err := ReadVTU(f)
		require.NoError(t, err)
		cells += pm.NumCells()
	}
	assert.Equal(t, m.NumCells(), cells)

	var ioErr *IOError
	assert.True(t, errors.As(WritePVTU(pvtu, nil, Options{}), &ioErr))
	_, err = ReadPVTU(names[0])
	assert.True(t, errors.As(err, &ioErr))
}

func TestParseEncoding(t *testing.T) {
	for name, want := range map[string]Encoding{"": ASCII, "ascii": ASCII, "Binary": Binary, "base64": Binary} {
		got, err := ParseEncoding(name)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseEncoding("appended")
	assert.Error(t, err)
}
