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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasSpinLabels(t *testing.T) {
	testCases := []struct {
		name     string
		graph    [][]float64
		expected bool
	}{
		{name: "integral columns", graph: [][]float64{{1, 2, 2.3}, {1.0, 2.0, 4}, {4, 3, 10}}, expected: true},
		{name: "non-integral float", graph: [][]float64{{1.5, 2, 3}, {2, 3, -1}}, expected: false},
		{name: "negative label", graph: [][]float64{{-2, 3, 0}, {1, 2, 5}}, expected: false},
		{name: "too few columns", graph: [][]float64{{1}}, expected: false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, HasSpinLabels(tc.graph))
		})
	}
}

func TestReadGraph_Rows(t *testing.T) {
	p, err := ReadGraph([][]float64{{1, 2, -1}, {2, 3, 10.0}, {5, 5, 2}})
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2, 3, 5}, p.Labels)
	assert.Equal(t, [][]float64{
		{0, -1, 0, 0},
		{0, 0, 10, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 2},
	}, p.Matrix)
}

func TestReadMapping(t *testing.T) {
	p := ReadMapping(map[Edge]float64{
		{I: 7, J: 1}: -1.2,
		{I: 3, J: 4}: 5.0,
		{I: 4, J: 1}: 0.5,
		{I: 7, J: 7}: 10.0,
	})

	assert.Equal(t, []int{1, 3, 4, 7}, p.Labels)
	assert.Equal(t, [][]float64{
		{0, 0, 0.5, -1.2},
		{0, 0, 5.0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 10.0},
	}, p.Matrix)
}

func TestReadGraph_Matrix(t *testing.T) {
	p, err := ReadGraph([][]float64{
		{-2.0, 0, 4.5, 2},
		{0, 5.0, 4, 1},
		{2, 3, 0, 0},
		{0, 0, -1, 2.5},
	})
	require.NoError(t, err)

	assert.Equal(t, []int{0, 1, 2, 3}, p.Labels)
	assert.Equal(t, [][]float64{
		{-2.0, 0, 6.5, 2},
		{0, 5.0, 7, 1},
		{0, 0, 0, -1},
		{0, 0, 0, 2.5},
	}, p.Matrix)
}

func TestReadGraph_Errors(t *testing.T) {
	_, err := ReadGraph(nil)
	assert.ErrorIs(t, err, ErrEmptyProblem)

	_, err = ReadGraph([][]float64{{1, 2}, {3, 4}, {5, 6}})
	assert.ErrorIs(t, err, ErrUnsupportedGraph)

	_, err = ReadMatrix([][]float64{{1, 2}, {3}})
	assert.ErrorIs(t, err, ErrUnsupportedGraph)
}
