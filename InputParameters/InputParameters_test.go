package InputParameters

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoxMeshParameters_Parse(t *testing.T) {
	fileInput := []byte(`
Title: Test Case
UpperBound: [2, 1, 0.5]
CellsPerAxis: [4, 2, 1]
CellShape: simplex # Can be tensor
Interpolate: false
Pieces: 2
`)
	ip := NewBoxMeshParameters()
	require.NoError(t, ip.Parse(fileInput))
	assert.Equal(t, "Test Case", ip.Title)
	assert.Equal(t, [3]float64{2, 1, 0.5}, ip.UpperBound)
	assert.Equal(t, [3]int{4, 2, 1}, ip.CellsPerAxis)
	assert.Equal(t, "simplex", ip.CellShape)
	assert.False(t, ip.Interpolate)
	assert.Equal(t, 2, ip.Pieces)
	// Absent keys keep their defaults
	assert.Equal(t, 3, ip.Dimension)
	assert.Equal(t, [3]float64{0, 0, 0}, ip.LowerBound)
	assert.Equal(t, "mesh.vtu", ip.OutputPath)
	assert.Equal(t, "ascii", ip.Encoding)
	assert.Equal(t, [3]float64{1, 1, 1}, NewBoxMeshParameters().UpperBound)

	assert.Error(t, ip.Parse([]byte("CellsPerAxis: many")))
}

func TestBoxMeshParameters_MarshalPrint(t *testing.T) {
	ip := NewBoxMeshParameters()
	ip.Title = "Unit cube"
	data, err := ip.Marshal()
	require.NoError(t, err)
	assert.Contains(t, string(data), "CellShape: tensor")
	assert.Contains(t, string(data), "Interpolate: true")

	back := &BoxMeshParameters{}
	require.NoError(t, back.Parse(data))
	assert.Equal(t, ip, back)

	var buf bytes.Buffer
	ip.Print(&buf)
	assert.Contains(t, buf.String(), "\"Unit cube\"")
	assert.Contains(t, buf.String(), "[tensor]\t\t= Cell Shape")
	assert.Contains(t, buf.String(), "[1 1 1]\t\t= Cells Per Axis")
}
