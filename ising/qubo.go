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
	"encoding/binary"
	"math"

	"github.com/twmb/murmur3"
)

const fingerprintSeed = uint64(9001)

// QUBO is a quadratic unconstrained binary optimization problem over NumBits
// binary variables. Coefficients is a row-major upper triangular
// NumBits x NumBits matrix.
type QUBO struct {
	NumBits      int
	Coefficients []float64
}

// ToQUBO converts an Ising problem with spins s in {-1, 1} into a QUBO over
// bits b = (s + 1) / 2. The returned constant must be added to QUBO energies
// to obtain Ising energies.
func ToQUBO(p Problem) (QUBO, float64) {
	n := p.Size()
	q := QUBO{NumBits: n, Coefficients: make([]float64, n*n)}
	constant := 0.0
	for i := 0; i < n; i++ {
		h := p.Matrix[i][i]
		q.Coefficients[i*n+i] += 2 * h
		constant += h
		for j := i + 1; j < n; j++ {
			coupling := p.Matrix[i][j]
			constant -= coupling
			q.Coefficients[i*n+i] -= 2 * coupling
			q.Coefficients[j*n+j] -= 2 * coupling
			q.Coefficients[i*n+j] += 4 * coupling
		}
	}
	return q, constant
}

// Energy returns -sum over i <= j of Q[i][j] * b_i * b_j, where b_i is bit i
// of state.
func (q QUBO) Energy(state uint64) float64 {
	n := q.NumBits
	energy := 0.0
	for i := 0; i < n; i++ {
		if state>>i&1 == 0 {
			continue
		}
		row := q.Coefficients[i*n : (i+1)*n]
		for j := i; j < n; j++ {
			if state>>j&1 == 1 {
				energy -= row[j]
			}
		}
	}
	return energy
}

// EnergyBound returns the sum of absolute coefficients, which bounds the
// magnitude of every energy. It is +Inf when energies may overflow.
func (q QUBO) EnergyBound() float64 {
	bound := 0.0
	for _, c := range q.Coefficients {
		bound += math.Abs(c)
	}
	return bound
}

// Fingerprint returns a 64-bit hash of the problem size and coefficients, so
// stored results can be matched with the problem they were computed for.
func (q QUBO) Fingerprint() uint64 {
	buf := make([]byte, 8*(len(q.Coefficients)+1))
	binary.LittleEndian.PutUint64(buf, uint64(q.NumBits))
	for i, c := range q.Coefficients {
		binary.LittleEndian.PutUint64(buf[8*(i+1):], math.Float64bits(c))
	}
	return murmur3.SeedSum64(fingerprintSeed, buf)
}

// DecodeState maps bit i of state to the spin of labels[i]: 1 when the bit
// is set, -1 otherwise.
func DecodeState(state uint64, labels []int) map[int]int8 {
	spins := make(map[int]int8, len(labels))
	for i, l := range labels {
		if state>>i&1 == 1 {
			spins[l] = 1
		} else {
			spins[l] = -1
		}
	}
	return spins
}
