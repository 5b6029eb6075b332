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
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

func TestLoadProblem_Matrix(t *testing.T) {
	input := `
matrix:
  - [1, 2]
  - [3, -1]
`
	p, err := LoadProblem(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, p.Labels)
	assert.Equal(t, [][]float64{{1, 5}, {0, -1}}, p.Matrix)
}

func TestLoadProblem_Couplings(t *testing.T) {
	input := `
couplings:
  - [4, 2, 1.5]
  - [2, 4, 0.5]
  - [9, 9, -1]
`
	p, err := LoadProblem(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, []int{2, 4, 9}, p.Labels)
	assert.Equal(t, [][]float64{{0, 2, 0}, {0, 0, 0}, {0, 0, -1}}, p.Matrix)
}

func TestLoadProblem_Errors(t *testing.T) {
	testCases := []struct {
		name   string
		input  string
		errors int
	}{
		{name: "nothing", input: "{}", errors: 1},
		{name: "both", input: "matrix: [[1]]\ncouplings: [[0, 0, 1]]", errors: 1},
		{name: "unknown field", input: "graph: [[1]]", errors: 1},
		{name: "ragged matrix", input: "matrix: [[1, 2, 3], [3]]", errors: 2},
		{name: "non-finite matrix", input: "matrix: [[.nan]]", errors: 1},
		{
			name:   "bad couplings",
			input:  "couplings: [[0, 1], [-1, 2, 1], [0.5, 1, .inf]]",
			errors: 4,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadProblem(strings.NewReader(tc.input))
			require.ErrorIs(t, err, ErrInvalidProblem)
			assert.Len(t, multierr.Errors(err), tc.errors)
		})
	}
}

func TestWriteSolution(t *testing.T) {
	p := ReadMapping(map[Edge]float64{
		{I: 3, J: 7}: 1,
		{I: 7, J: 7}: 0.5,
	})
	s, err := Search(context.Background(), p, WithNumStates(2), WithChunkExponent(1))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteSolution(&buf, s))
	assert.Contains(t, buf.String(), "labels: [3, 7]")

	var out solutionFile
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, fmt.Sprintf("%016x", s.Fingerprint), out.Fingerprint)
	assert.Equal(t, []int{3, 7}, out.Labels)
	require.Len(t, out.Solutions, 2)
	assert.Equal(t, -1.5, out.Solutions[0].Energy)
	require.NotNil(t, out.Solutions[0].State)
	assert.Equal(t, uint64(3), *out.Solutions[0].State)
	assert.Equal(t, []int8{1, 1}, out.Solutions[0].Spins)
	assert.Equal(t, []int8{-1, -1}, out.Solutions[1].Spins)
}

func TestWriteSolution_EnergiesOnly(t *testing.T) {
	s := &Solution{Energies: []float64{-2, 1}, Labels: []int{0, 1}}

	var out solutionFile
	var buf bytes.Buffer
	require.NoError(t, WriteSolution(&buf, s))
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &out))
	require.Len(t, out.Solutions, 2)
	assert.Nil(t, out.Solutions[0].State)
	assert.Empty(t, out.Solutions[0].Spins)
	assert.Equal(t, 1.0, out.Solutions[1].Energy)
}
