/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/notargets/boxmesh/InputParameters"
	"github.com/notargets/boxmesh/driver"
	"github.com/notargets/boxmesh/utils"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// BoxCmd represents the box command
var BoxCmd = &cobra.Command{
	Use:   "box",
	Short: "Generate a box mesh and write it as a VTK unstructured grid",
	Long: `
Generates a structured mesh of an axis aligned box, tensor (hexahedra) or
simplex (six tetrahedra per lattice cube), optionally derives the faces and
edges shared between cells, and writes the result to a .vtu file.

Parameters come from, highest priority first: command line flags, BOXMESH_*
environment variables, the config file, the YAML job file (-I), defaults.

Example job file:
########################################
Title: "Unit cube"
LowerBound: [0, 0, 0]
UpperBound: [1, 1, 1]
CellsPerAxis: [4, 4, 4]
CellShape: tensor # Can be "simplex"
Interpolate: true
OutputPath: mesh.vtu
Encoding: ascii    # Can be "binary"
Pieces: 1
########################################`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := viper.BindPFlags(cmd.Flags()); err != nil {
			return err
		}
		ip, err := resolveParameters(cmd, viper.GetViper())
		if err != nil {
			return &driver.StageError{Stage: driver.StageConfig, Err: err}
		}
		verbose, _ := cmd.Flags().GetBool("verbose")
		if verbose {
			ip.Print(os.Stderr)
		}
		res, err := driver.Run(ip, logger)
		if err != nil {
			return err
		}
		if verbose {
			res.Mesh.PrintStatistics(os.Stderr)
			fmt.Fprintln(os.Stderr, utils.GetMemUsage())
		}
		fmt.Printf("Mesh written to %s. Open this file in ParaView.\n", res.Files[len(res.Files)-1])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(BoxCmd)
	addBoxFlags(BoxCmd)
}

func addBoxFlags(cmd *cobra.Command) {
	def := InputParameters.NewBoxMeshParameters()
	cmd.Flags().StringP("inputFile", "I", "", "YAML job file describing the mesh, see the example above")
	cmd.Flags().StringP("lower", "l", join3(def.LowerBound), "lower corner of the box: x,y,z")
	cmd.Flags().StringP("upper", "u", join3(def.UpperBound), "upper corner of the box: x,y,z")
	cmd.Flags().StringP("cells", "n", join3(def.CellsPerAxis), "cells per axis: nx,ny,nz")
	cmd.Flags().StringP("shape", "s", def.CellShape, "cell shape: tensor (hexahedra) or simplex (tetrahedra)")
	cmd.Flags().BoolP("interpolate", "i", def.Interpolate, "derive faces and edges and add them to the output")
	cmd.Flags().StringP("output", "o", def.OutputPath, "output file, .vtu (or .pvtu when pieces > 1)")
	cmd.Flags().StringP("encoding", "e", def.Encoding, "DataArray encoding: ascii or binary")
	cmd.Flags().IntP("pieces", "p", def.Pieces, "number of slab piece files, written in parallel with a .pvtu index")
}

// resolveParameters layers defaults, the job file and the viper keys (flags,
// environment, config file) into one parameter record
func resolveParameters(cmd *cobra.Command, v *viper.Viper) (ip *InputParameters.BoxMeshParameters, err error) {
	ip = InputParameters.NewBoxMeshParameters()
	if file := v.GetString("inputFile"); file != "" {
		var data []byte
		if data, err = os.ReadFile(file); err != nil {
			return nil, err
		}
		if err = ip.Parse(data); err != nil {
			return nil, fmt.Errorf("job file %s: %w", file, err)
		}
	}
	isSet := func(key string) bool {
		if cmd.Flags().Changed(key) || v.InConfig(key) {
			return true
		}
		_, ok := os.LookupEnv(envKey(key))
		return ok
	}
	if isSet("lower") {
		if ip.LowerBound, err = parseFloat3(v.Get("lower")); err != nil {
			return nil, fmt.Errorf("lower: %w", err)
		}
	}
	if isSet("upper") {
		if ip.UpperBound, err = parseFloat3(v.Get("upper")); err != nil {
			return nil, fmt.Errorf("upper: %w", err)
		}
	}
	if isSet("cells") {
		if ip.CellsPerAxis, err = parseInt3(v.Get("cells")); err != nil {
			return nil, fmt.Errorf("cells: %w", err)
		}
	}
	if isSet("shape") {
		ip.CellShape = v.GetString("shape")
	}
	if isSet("interpolate") {
		ip.Interpolate = v.GetBool("interpolate")
	}
	if isSet("output") {
		ip.OutputPath = v.GetString("output")
	}
	if isSet("encoding") {
		ip.Encoding = v.GetString("encoding")
	}
	if isSet("pieces") {
		ip.Pieces = v.GetInt("pieces")
	}
	return ip, nil
}

// split3 accepts "x,y,z" (spaces allowed) or a three element list from a
// config file
func split3(val interface{}) ([]string, error) {
	var parts []string
	switch x := val.(type) {
	case string:
		parts = strings.FieldsFunc(x, func(r rune) bool { return r == ',' || r == ' ' })
	case []interface{}:
		for _, e := range x {
			parts = append(parts, fmt.Sprint(e))
		}
	case []string:
		parts = x
	default:
		return nil, fmt.Errorf("want three comma separated values, got %v", val)
	}
	if len(parts) != 3 {
		return nil, fmt.Errorf("want three comma separated values, got %d in %v", len(parts), val)
	}
	return parts, nil
}

func parseFloat3(val interface{}) (out [3]float64, err error) {
	parts, err := split3(val)
	if err != nil {
		return
	}
	for i, p := range parts {
		if out[i], err = strconv.ParseFloat(strings.TrimSpace(p), 64); err != nil {
			return
		}
	}
	return
}

func parseInt3(val interface{}) (out [3]int, err error) {
	parts, err := split3(val)
	if err != nil {
		return
	}
	for i, p := range parts {
		if out[i], err = strconv.Atoi(strings.TrimSpace(p)); err != nil {
			return
		}
	}
	return
}

func join3[T int | float64](x [3]T) string {
	return fmt.Sprintf("%v,%v,%v", x[0], x[1], x[2])
}
