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
	"cmp"
	"context"
	"errors"
	"fmt"
	"math"
	"slices"

	"go.uber.org/atomic"

	"github.com/isingsearch/bucketselect-go/internal"
	"github.com/isingsearch/bucketselect-go/selection"
)

const (
	DefaultNumStates = 10
	// MaxBits is the largest number of spins a state representation holds.
	MaxBits = 63
	// minEnergySpan is the smallest number of states evaluated by one worker.
	minEnergySpan = 1 << 12
	// stopCheckInterval is how many states a worker evaluates between checks
	// of the stop flag.
	stopCheckInterval = 1 << 10
)

var (
	ErrInvalidChunkExponent = errors.New("chunk exponent must not be negative")
	ErrInvalidNumStates     = errors.New("number of states must be positive")
	ErrTooManyBits          = errors.New("problems with more than 63 spins are not supported")
	ErrAborted              = errors.New("search aborted")
	ErrEnergyOverflow       = errors.New("coefficients are too large, energies overflow float64")

	errStopped = errors.New("evaluation stopped")
)

// ProgressFunc is called after every chunk with the index of the finished
// chunk and the total number of chunks. A non-nil error stops the search.
type ProgressFunc func(chunk, total uint64) error

type searchOptions struct {
	numStates     int
	chunkExponent int
	exponentSet   bool
	energiesOnly  bool
	workers       int
	progress      ProgressFunc
	logger        *Logger
	selection     []selection.Option
}

// SearchOption configures Search.
type SearchOption func(*searchOptions)

// WithNumStates sets how many lowest states are kept.
func WithNumStates(n int) SearchOption {
	return func(o *searchOptions) {
		o.numStates = n
	}
}

// WithChunkExponent sets the chunk size to 2^exponent states. Without it the
// exponent is derived from the memory available on the host.
func WithChunkExponent(exponent int) SearchOption {
	return func(o *searchOptions) {
		o.chunkExponent = exponent
		o.exponentSet = true
	}
}

// WithEnergiesOnly skips tracking of states; Solution.States stays nil.
func WithEnergiesOnly(energiesOnly bool) SearchOption {
	return func(o *searchOptions) {
		o.energiesOnly = energiesOnly
	}
}

// WithWorkers sets the number of workers for energy evaluation and
// selection. Zero means GOMAXPROCS.
func WithWorkers(n int) SearchOption {
	return func(o *searchOptions) {
		o.workers = n
	}
}

// WithProgress registers a callback invoked after every chunk.
func WithProgress(fn ProgressFunc) SearchOption {
	return func(o *searchOptions) {
		o.progress = fn
	}
}

// WithLogger configures structured logging.
func WithLogger(logger *Logger) SearchOption {
	return func(o *searchOptions) {
		o.logger = logger
	}
}

// WithSelectionOptions passes options to every top-k selection.
func WithSelectionOptions(opts ...selection.Option) SearchOption {
	return func(o *searchOptions) {
		o.selection = append(o.selection, opts...)
	}
}

// Solution holds the lowest energies found, sorted ascending, and the
// states they belong to.
type Solution struct {
	Energies []float64
	// States is nil when the search ran with WithEnergiesOnly.
	States      []uint64
	Labels      []int
	Fingerprint uint64
}

// Spins decodes the i-th state into spin values keyed by label.
func (s *Solution) Spins(i int) map[int]int8 {
	return DecodeState(s.States[i], s.Labels)
}

// Search enumerates all 2^n spin configurations of p in chunks and returns the
// lowest energies. Every chunk is reduced to its best states with a top-k
// selection, which are then merged with the best states of all previous
// chunks. An error from the progress callback or a cancelled context aborts
// the search; no partial solution is returned.
func Search(ctx context.Context, p Problem, opts ...SearchOption) (*Solution, error) {
	o := searchOptions{
		numStates: DefaultNumStates,
		logger:    NoopLogger(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	n := p.Size()
	switch {
	case n == 0:
		return nil, ErrEmptyProblem
	case n > MaxBits:
		return nil, fmt.Errorf("%w: got %d", ErrTooManyBits, n)
	case o.numStates < 1:
		return nil, fmt.Errorf("%w: got %d", ErrInvalidNumStates, o.numStates)
	case o.exponentSet && o.chunkExponent < 0:
		return nil, fmt.Errorf("%w: got %d", ErrInvalidChunkExponent, o.chunkExponent)
	}

	exponent := o.chunkExponent
	if !o.exponentSet {
		mem, err := AvailableMemory()
		if err != nil {
			return nil, fmt.Errorf("cannot deduce chunk exponent: %w", err)
		}
		exponent = MaxChunkExponent(mem)
		o.logger.DebugContext(ctx, "deduced chunk exponent from available memory", "bytes", mem, "chunk_exponent", exponent)
	}
	if exponent > n {
		o.logger.DebugContext(ctx, "clipping chunk exponent to the number of spins", "chunk_exponent", exponent, "bits", n)
		exponent = n
	}
	chunkSize := 1 << exponent
	numStates := o.numStates
	if numStates > chunkSize {
		o.logger.WarnContext(ctx, "requested more states than a chunk holds, clipping", "num_states", numStates, "chunk_size", chunkSize)
		numStates = chunkSize
	}

	q, constant := ToQUBO(p)
	if bound := q.EnergyBound() + math.Abs(constant); math.IsInf(bound, 0) || math.IsNaN(bound) {
		return nil, ErrEnergyOverflow
	}
	e := newEnumerator(q, constant, &o, chunkSize, numStates)
	o.logger.LogStart(ctx, n, exponent, numStates, o.energiesOnly)

	chunks := uint64(1) << (n - exponent)
	if err := e.run(ctx, chunks); err != nil {
		return nil, err
	}

	solution := e.solution()
	solution.Labels = slices.Clone(p.Labels)
	solution.Fingerprint = q.Fingerprint()
	return solution, nil
}

// enumerator owns the chunk buffers of one search. best holds room for two
// best-of sets: the running best of all chunks and the best of the current
// chunk.
type enumerator struct {
	q         QUBO
	constant  float64
	opts      *searchOptions
	selection []selection.Option
	numStates int

	energies     []float64
	states       []uint64
	bestEnergies []float64
	bestStates   []uint64
}

func newEnumerator(q QUBO, constant float64, o *searchOptions, chunkSize, numStates int) *enumerator {
	e := &enumerator{
		q:            q,
		constant:     constant,
		opts:         o,
		selection:    append([]selection.Option{selection.WithWorkers(o.workers)}, o.selection...),
		numStates:    numStates,
		energies:     make([]float64, chunkSize),
		bestEnergies: make([]float64, 2*numStates),
	}
	if !o.energiesOnly {
		e.states = make([]uint64, chunkSize)
		e.bestStates = make([]uint64, 2*numStates)
	}
	return e
}

func (e *enumerator) run(ctx context.Context, chunks uint64) error {
	stopped := atomic.NewBool(false)
	stop := context.AfterFunc(ctx, func() {
		stopped.Store(true)
	})
	defer stop()

	for m := uint64(0); m < chunks; m++ {
		if err := ctx.Err(); err != nil {
			return e.abort(ctx, m, context.Cause(ctx))
		}
		if err := e.evaluate(m, stopped); err != nil {
			return e.abort(ctx, m, context.Cause(ctx))
		}
		if err := e.keepLowest(m); err != nil {
			return err
		}
		e.opts.logger.LogChunk(ctx, m, chunks, slices.Min(e.bestEnergies[:e.numStates])+e.constant)
		if e.opts.progress != nil {
			if err := e.opts.progress(m, chunks); err != nil {
				return e.abort(ctx, m, err)
			}
		}
	}
	e.opts.logger.LogFinish(ctx, chunks, nil)
	return nil
}

func (e *enumerator) abort(ctx context.Context, chunk uint64, cause error) error {
	err := fmt.Errorf("%w in chunk %d: %w", ErrAborted, chunk, cause)
	e.opts.logger.LogFinish(ctx, chunk, err)
	return err
}

// evaluate computes the energy of every state of chunk m in parallel.
func (e *enumerator) evaluate(m uint64, stopped *atomic.Bool) error {
	base := m * uint64(len(e.energies))
	_, err := internal.ParallelMap(len(e.energies), e.opts.workers, minEnergySpan, func(s internal.Span) (struct{}, error) {
		for i := s.Lo; i < s.Hi; i++ {
			if (i-s.Lo)%stopCheckInterval == 0 && stopped.Load() {
				return struct{}{}, errStopped
			}
			state := base + uint64(i)
			e.energies[i] = e.q.Energy(state)
			if e.states != nil {
				e.states[i] = state
			}
		}
		return struct{}{}, nil
	})
	return err
}

// keepLowest reduces chunk m to its numStates lowest energies and merges them
// into the running best.
func (e *enumerator) keepLowest(m uint64) error {
	k := e.numStates
	if k < len(e.energies) {
		if err := e.lowest(e.states, e.energies, k); err != nil {
			return err
		}
	}
	if m == 0 {
		e.copyBest(0, k)
		return nil
	}
	e.copyBest(k, k)
	var bestStates []uint64
	if e.states != nil {
		bestStates = e.bestStates
	}
	return e.lowest(bestStates, e.bestEnergies, k)
}

func (e *enumerator) copyBest(offset, k int) {
	copy(e.bestEnergies[offset:offset+k], e.energies[:k])
	if e.states != nil {
		copy(e.bestStates[offset:offset+k], e.states[:k])
	}
}

func (e *enumerator) lowest(states []uint64, energies []float64, k int) error {
	var err error
	if states == nil {
		_, err = selection.SmallestK(energies, k, e.selection...)
	} else {
		_, err = selection.SmallestKByKey(states, energies, k, e.selection...)
	}
	if err != nil {
		return fmt.Errorf("cannot select %d lowest energies: %w", k, err)
	}
	return nil
}

// solution returns the running best sorted by energy.
func (e *enumerator) solution() *Solution {
	k := e.numStates
	order := make([]int, k)
	for i := range order {
		order[i] = i
	}
	slices.SortFunc(order, func(a, b int) int {
		if c := cmp.Compare(e.bestEnergies[a], e.bestEnergies[b]); c != 0 {
			return c
		}
		if e.states == nil {
			return 0
		}
		return cmp.Compare(e.bestStates[a], e.bestStates[b])
	})

	s := &Solution{Energies: make([]float64, k)}
	if e.states != nil {
		s.States = make([]uint64, k)
	}
	for i, j := range order {
		s.Energies[i] = e.bestEnergies[j] + e.constant
		if s.States != nil {
			s.States[i] = e.bestStates[j]
		}
	}
	return s
}
