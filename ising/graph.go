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
	"math"
	"slices"
)

var (
	ErrUnsupportedGraph = errors.New("unsupported graph format")
	ErrEmptyProblem     = errors.New("problem has no spins")
)

// Edge identifies a coupler between spins I and J, or the local field of
// spin I when I == J.
type Edge struct {
	I int
	J int
}

// Row is the row-format encoding of a single coupler or field.
type Row struct {
	I     int
	J     int
	Value float64
}

// Problem is an Ising model in upper triangular form. Matrix[i][j] with i < j
// is the coupling between spins Labels[i] and Labels[j]; Matrix[i][i] is the
// local field of spin Labels[i].
type Problem struct {
	Matrix [][]float64
	Labels []int
}

// Size returns the number of spins.
func (p Problem) Size() int {
	return len(p.Labels)
}

// ReadMapping builds a Problem from couplers keyed by spin labels. Labels are
// sorted ascending and renumbered densely; values for (i, j) and (j, i) are
// summed.
func ReadMapping(graph map[Edge]float64) Problem {
	seen := make(map[int]struct{}, len(graph))
	for e := range graph {
		seen[e.I] = struct{}{}
		seen[e.J] = struct{}{}
	}
	labels := make([]int, 0, len(seen))
	for l := range seen {
		labels = append(labels, l)
	}
	slices.Sort(labels)

	index := make(map[int]int, len(labels))
	for i, l := range labels {
		index[l] = i
	}
	matrix := newSquare(len(labels))
	for e, v := range graph {
		first, second := ordered(index[e.I], index[e.J])
		matrix[first][second] += v
	}
	return Problem{Matrix: matrix, Labels: labels}
}

// ReadRows builds a Problem from row-format couplers.
func ReadRows(rows []Row) Problem {
	graph := make(map[Edge]float64, len(rows))
	for _, r := range rows {
		graph[Edge{I: r.I, J: r.J}] += r.Value
	}
	return ReadMapping(graph)
}

// ReadMatrix builds a Problem from a square coupling matrix. Entries below
// the diagonal are folded onto their upper triangular counterpart and spins
// are labelled 0..n-1.
func ReadMatrix(graph [][]float64) (Problem, error) {
	n := len(graph)
	for i, row := range graph {
		if len(row) != n {
			return Problem{}, fmt.Errorf("%w: row %d has %d columns, expected %d", ErrUnsupportedGraph, i, len(row), n)
		}
	}
	matrix := newSquare(n)
	labels := make([]int, n)
	for i, row := range graph {
		labels[i] = i
		for j, v := range row {
			first, second := ordered(i, j)
			matrix[first][second] += v
		}
	}
	return Problem{Matrix: matrix, Labels: labels}, nil
}

// ReadGraph detects the encoding of a dense two-dimensional graph. Three
// column input whose first two columns hold non-negative integers is read as
// rows, square input as a matrix.
func ReadGraph(graph [][]float64) (Problem, error) {
	if len(graph) == 0 {
		return Problem{}, ErrEmptyProblem
	}
	cols := len(graph[0])
	if cols == 3 && HasSpinLabels(graph) {
		rows := make([]Row, len(graph))
		for i, r := range graph {
			rows[i] = Row{I: int(r[0]), J: int(r[1]), Value: r[2]}
		}
		return ReadRows(rows), nil
	}
	if cols == len(graph) {
		return ReadMatrix(graph)
	}
	return Problem{}, fmt.Errorf("%w: %d rows of %d columns", ErrUnsupportedGraph, len(graph), cols)
}

// HasSpinLabels reports whether the first two columns of every row are
// non-negative integral values.
func HasSpinLabels(graph [][]float64) bool {
	for _, row := range graph {
		if len(row) < 2 {
			return false
		}
		for _, v := range row[:2] {
			if v < 0 || v != math.Trunc(v) || v > math.MaxInt32 {
				return false
			}
		}
	}
	return true
}

func newSquare(n int) [][]float64 {
	backing := make([]float64, n*n)
	m := make([][]float64, n)
	for i := range m {
		m[i] = backing[i*n : (i+1)*n : (i+1)*n]
	}
	return m
}

func ordered(i, j int) (int, int) {
	if i > j {
		return j, i
	}
	return i, j
}
