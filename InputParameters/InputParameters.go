package InputParameters

import (
	"fmt"
	"io"

	"github.com/ghodss/yaml"
)

// BoxMeshParameters describes one box mesh job, obtained from defaults, a
// YAML job file and command line overrides
type BoxMeshParameters struct {
	Title        string     `json:"Title,omitempty"`
	Dimension    int        `json:"Dimension"`
	LowerBound   [3]float64 `json:"LowerBound"`
	UpperBound   [3]float64 `json:"UpperBound"`
	CellsPerAxis [3]int     `json:"CellsPerAxis"`
	CellShape    string     `json:"CellShape"`   // tensor or simplex
	Interpolate  bool       `json:"Interpolate"` // Derive faces and edges
	OutputPath   string     `json:"OutputPath"`
	Encoding     string     `json:"Encoding"` // ascii or binary
	Pieces       int        `json:"Pieces"`   // Number of slab files, 1 writes a single .vtu
}

// NewBoxMeshParameters returns the defaults: a unit cube holding one
// interpolated hexahedron, written to mesh.vtu
func NewBoxMeshParameters() *BoxMeshParameters {
	return &BoxMeshParameters{
		Dimension:    3,
		LowerBound:   [3]float64{0, 0, 0},
		UpperBound:   [3]float64{1, 1, 1},
		CellsPerAxis: [3]int{1, 1, 1},
		CellShape:    "tensor",
		Interpolate:  true,
		OutputPath:   "mesh.vtu",
		Encoding:     "ascii",
		Pieces:       1,
	}
}

// Parse overlays the YAML document on the receiver, keys absent from the
// document keep their current values
func (ip *BoxMeshParameters) Parse(data []byte) error {
	return yaml.Unmarshal(data, ip)
}

// Marshal renders the parameters as a YAML job file
func (ip *BoxMeshParameters) Marshal() ([]byte, error) {
	return yaml.Marshal(ip)
}

func (ip *BoxMeshParameters) Print(w io.Writer) {
	if ip.Title != "" {
		fmt.Fprintf(w, "\"%s\"\t\t= Title\n", ip.Title)
	}
	fmt.Fprintf(w, "[%d]\t\t\t= Dimension\n", ip.Dimension)
	fmt.Fprintf(w, "%v\t\t= Lower Bound\n", ip.LowerBound)
	fmt.Fprintf(w, "%v\t\t= Upper Bound\n", ip.UpperBound)
	fmt.Fprintf(w, "%v\t\t= Cells Per Axis\n", ip.CellsPerAxis)
	fmt.Fprintf(w, "[%s]\t\t= Cell Shape\n", ip.CellShape)
	fmt.Fprintf(w, "[%v]\t\t= Interpolate\n", ip.Interpolate)
	fmt.Fprintf(w, "[%s]\t\t= Output Path\n", ip.OutputPath)
	fmt.Fprintf(w, "[%s]\t\t= Encoding\n", ip.Encoding)
	fmt.Fprintf(w, "[%d]\t\t\t= Pieces\n", ip.Pieces)
}
