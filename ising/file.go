/*
 * Licensed to the Apache Software Foundation (ASF) under one or more
 * contributor license agreements.  See the NOTICE file distributed with
 * this work for additional information regarding copyright ownership.
 * The ASF licenses this file to You under the Apache License, Version 2.0
 * (the "License"); you may not use this file except in compliance with
 * the License.  You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package ising

import (
	"errors"
	"fmt"
	"io"
	"math"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

var ErrInvalidProblem = errors.New("invalid problem file")

// problemFile is the YAML encoding of a problem. Exactly one of Matrix and
// Couplings is set; couplings are [i, j, value] triples.
type problemFile struct {
	Matrix    [][]float64 `yaml:"matrix"`
	Couplings [][]float64 `yaml:"couplings"`
}

// LoadProblem decodes a YAML problem description. All validation errors of
// the file are reported together.
func LoadProblem(r io.Reader) (Problem, error) {
	var f problemFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return Problem{}, fmt.Errorf("%w: %v", ErrInvalidProblem, err)
	}
	if err := f.validate(); err != nil {
		return Problem{}, err
	}
	if f.Matrix != nil {
		return ReadMatrix(f.Matrix)
	}
	rows := make([]Row, len(f.Couplings))
	for i, c := range f.Couplings {
		rows[i] = Row{I: int(c[0]), J: int(c[1]), Value: c[2]}
	}
	return ReadRows(rows), nil
}

func (f *problemFile) validate() error {
	switch {
	case f.Matrix == nil && f.Couplings == nil:
		return fmt.Errorf("%w: either matrix or couplings must be given", ErrInvalidProblem)
	case f.Matrix != nil && f.Couplings != nil:
		return fmt.Errorf("%w: matrix and couplings are mutually exclusive", ErrInvalidProblem)
	}

	var err error
	for i, row := range f.Matrix {
		if len(row) != len(f.Matrix) {
			err = multierr.Append(err, fmt.Errorf("%w: matrix row %d has %d columns, expected %d", ErrInvalidProblem, i, len(row), len(f.Matrix)))
		}
		err = multierr.Append(err, checkFinite(row, fmt.Sprintf("matrix row %d", i)))
	}
	for i, c := range f.Couplings {
		if len(c) != 3 {
			err = multierr.Append(err, fmt.Errorf("%w: coupling %d has %d fields, expected [i, j, value]", ErrInvalidProblem, i, len(c)))
			continue
		}
		if !HasSpinLabels([][]float64{c}) {
			err = multierr.Append(err, fmt.Errorf("%w: coupling %d: spin labels must be non-negative integers", ErrInvalidProblem, i))
		}
		err = multierr.Append(err, checkFinite(c[2:], fmt.Sprintf("coupling %d", i)))
	}
	return err
}

func checkFinite(values []float64, where string) error {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s holds non-finite value %v", ErrInvalidProblem, where, v)
		}
	}
	return nil
}

type solutionFile struct {
	Fingerprint string          `yaml:"fingerprint"`
	Labels      []int           `yaml:"labels,flow"`
	Solutions   []solutionEntry `yaml:"solutions"`
}

type solutionEntry struct {
	Energy float64 `yaml:"energy"`
	State  *uint64 `yaml:"state,omitempty"`
	Spins  []int8  `yaml:"spins,omitempty,flow"`
}

// WriteSolution encodes s as YAML. Spins are listed in label order.
func WriteSolution(w io.Writer, s *Solution) error {
	out := solutionFile{
		Fingerprint: fmt.Sprintf("%016x", s.Fingerprint),
		Labels:      s.Labels,
		Solutions:   make([]solutionEntry, len(s.Energies)),
	}
	for i, energy := range s.Energies {
		entry := solutionEntry{Energy: energy}
		if s.States != nil {
			state := s.States[i]
			entry.State = &state
			spins := s.Spins(i)
			entry.Spins = make([]int8, len(s.Labels))
			for j, l := range s.Labels {
				entry.Spins[j] = spins[l]
			}
		}
		out.Solutions[i] = entry
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(out); err != nil {
		return err
	}
	return enc.Close()
}
