// Package driver runs a box mesh job end to end: validate the parameters,
// generate the lattice, build the cells, assemble the mesh and export it.
package driver

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/notargets/boxmesh/InputParameters"
	"github.com/notargets/boxmesh/mesh"
	"github.com/notargets/boxmesh/mesh/box"
	"github.com/notargets/boxmesh/mesh/vtk"
	"github.com/notargets/boxmesh/utils"
	"gonum.org/v1/gonum/spatial/r3"
)

// Stage names the step of a run that failed
type Stage string

const (
	StageConfig    Stage = "config"
	StageGenerate  Stage = "generate"
	StageTopology  Stage = "topology"
	StageContainer Stage = "container"
	StagePartition Stage = "partition"
	StageExport    Stage = "export"
)

// StageError attaches the failing stage and its inputs to the first error of
// a run
type StageError struct {
	Stage  Stage
	Detail string // Inputs that triggered the failure
	Err    error
}

func (e *StageError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("%s (%s): %v", e.Stage, e.Detail, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Result describes a completed run
type Result struct {
	RunID    string
	Mesh     *mesh.Mesh
	Files    []string // Written files, the .pvtu index last when Pieces > 1
	Elapsed  time.Duration
	Encoding vtk.Encoding
}

// Run executes the job described by ip. A nil logger discards logs. On error
// nothing is written and the returned error is a *StageError.
func Run(ip *InputParameters.BoxMeshParameters, logger *slog.Logger) (*Result, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	var (
		start = time.Now()
		res   = &Result{RunID: uuid.New().String()}
		log   = logger.With("run", res.RunID)
	)

	enc, err := validate(ip)
	if err != nil {
		return nil, &StageError{Stage: StageConfig, Err: err}
	}
	res.Encoding = enc
	log.Debug("parameters", "lower", ip.LowerBound, "upper", ip.UpperBound,
		"cells", ip.CellsPerAxis, "shape", ip.CellShape, "interpolate", ip.Interpolate)

	lower, upper := toVec(ip.LowerBound), toVec(ip.UpperBound)
	lat, err := box.NewLattice(lower, upper, ip.CellsPerAxis)
	if err != nil {
		return nil, &StageError{Stage: StageGenerate,
			Detail: fmt.Sprintf("lower=%v upper=%v cells=%v", ip.LowerBound, ip.UpperBound, ip.CellsPerAxis),
			Err:    err}
	}
	t0 := time.Now()
	verts := lat.GenerateVertices()
	log.Debug("generated vertices", "count", len(verts), "elapsed", time.Since(t0))

	t0 = time.Now()
	shape, err := box.ParseShape(ip.CellShape)
	if err != nil {
		return nil, &StageError{Stage: StageTopology, Detail: "shape=" + ip.CellShape, Err: err}
	}
	cells, err := lat.BuildCells(shape)
	if err != nil {
		return nil, &StageError{Stage: StageTopology, Detail: "shape=" + ip.CellShape, Err: err}
	}
	var ents *mesh.Entities
	if ip.Interpolate {
		ents = box.Interpolate(cells)
	}
	log.Debug("built topology", "cells", len(cells), "elapsed", time.Since(t0))

	m, err := mesh.New(verts, cells, ents)
	if err != nil {
		return nil, &StageError{Stage: StageContainer, Err: err}
	}
	res.Mesh = m
	log.Info("mesh constructed", "vertices", m.NumVertices(), "cells", m.NumCells(),
		"faces", m.NumFaces(), "edges", m.NumEdges(), utils.MemUsageAttr())

	opts := vtk.Options{Encoding: enc, Entities: ip.Interpolate}
	if ip.Pieces <= 1 {
		if err = vtk.WriteVTU(ip.OutputPath, m, opts); err != nil {
			return nil, &StageError{Stage: StageExport, Detail: "path=" + ip.OutputPath, Err: err}
		}
		res.Files = []string{ip.OutputPath}
	} else {
		pieces, err := m.Partition(ip.Pieces)
		if err != nil {
			return nil, &StageError{Stage: StagePartition, Detail: fmt.Sprintf("pieces=%d", ip.Pieces), Err: err}
		}
		if res.Files, err = writePieces(PVTUPath(ip.OutputPath), pieces, opts, log); err != nil {
			return nil, &StageError{Stage: StageExport, Detail: "path=" + ip.OutputPath, Err: err}
		}
	}
	res.Elapsed = time.Since(start)
	log.Info("mesh written", "files", res.Files, "elapsed", res.Elapsed)
	return res, nil
}

// writePieces writes every piece concurrently, waits for all of them and only
// then writes the .pvtu index. If any piece fails, the pieces already written
// are removed.
func writePieces(pvtuPath string, pieces []*mesh.Piece, opts vtk.Options,
	log *slog.Logger) ([]string, error) {
	var (
		wg    sync.WaitGroup
		names = make([]string, len(pieces))
		errs  = make([]error, len(pieces))
	)
	// Pieces carry no entities
	pieceOpts := vtk.Options{Encoding: opts.Encoding}
	for i, p := range pieces {
		names[i] = vtk.PieceName(pvtuPath, p.Rank)
		wg.Add(1)
		go func(i int, p *mesh.Piece) {
			defer wg.Done()
			errs[i] = vtk.WriteVTU(names[i], p.Mesh, pieceOpts)
			log.Debug("piece written", "rank", p.Rank, "cells", p.Mesh.NumCells(), "err", errs[i])
		}(i, p)
	}
	wg.Wait()
	err := errors.Join(errs...)
	if err == nil {
		err = vtk.WritePVTU(pvtuPath, names, pieceOpts)
	}
	if err != nil {
		for i, name := range names {
			if errs[i] == nil {
				_ = os.Remove(name)
			}
		}
		return nil, err
	}
	return append(names, pvtuPath), nil
}

func validate(ip *InputParameters.BoxMeshParameters) (vtk.Encoding, error) {
	if ip == nil {
		return 0, errors.New("no parameters")
	}
	if ip.Dimension != 3 {
		return 0, fmt.Errorf("dimension %d not supported, only 3", ip.Dimension)
	}
	enc, err := vtk.ParseEncoding(ip.Encoding)
	if err != nil {
		return 0, err
	}
	if ip.Pieces < 1 {
		return 0, fmt.Errorf("pieces must be at least 1, got %d", ip.Pieces)
	}
	if ip.OutputPath == "" {
		return 0, errors.New("output path is empty")
	}
	return enc, nil
}

// PVTUPath swaps the extension of an output path for .pvtu
func PVTUPath(path string) string {
	ext := filepath.Ext(path)
	if ext == ".pvtu" {
		return path
	}
	return strings.TrimSuffix(path, ext) + ".pvtu"
}

func toVec(x [3]float64) r3.Vec { return r3.Vec{X: x[0], Y: x[1], Z: x[2]} }
