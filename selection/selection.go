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

// Package selection finds exact order statistics of large float slices and
// partitions slices around them without sorting.
//
// The engine buckets the value range of the input, locates the bucket holding
// the requested rank and then narrows that bucket, either in place for inputs
// up to Config.Cutoff elements or by compacting it into a smaller array for
// larger inputs. Per-element passes run on a fork-join worker pool.
package selection

import (
	"errors"
	"fmt"

	"golang.org/x/exp/constraints"
)

var (
	ErrEmpty          = errors.New("operation is undefined for an empty slice")
	ErrInvalidRank    = errors.New("rank must be between 1 and the number of elements inclusive")
	ErrLengthMismatch = errors.New("labels and keys must have the same length")
	ErrNaN            = errors.New("operation is undefined for NaN")
	ErrInfinite       = errors.New("operation is undefined for infinite values")
	ErrInvalidConfig  = errors.New("invalid selection config")
	ErrNotConverged   = errors.New("selection did not converge within the round limit, result is an upper bound")
)

// Result is the outcome of a selection.
type Result[T constraints.Float] struct {
	// Value is the requested order statistic, or an upper bound of it when
	// Exact is false.
	Value T
	Exact bool
	// Rounds is the number of bucketing passes over any population.
	Rounds int
	// Compactions is the number of candidate arrays gathered.
	Compactions int
}

// Select returns the k-th smallest (1-based) element of values. values is not
// modified. The returned error is nil for inexact results; check
// Result.Exact, or use SelectKth which reports them as ErrNotConverged.
func Select[T constraints.Float](values []T, k int, opts ...Option) (Result[T], error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return Result[T]{}, err
	}
	if err := checkRank(len(values), k); err != nil {
		return Result[T]{}, err
	}
	return selectWith(&cfg, values, k)
}

func selectWith[T constraints.Float](cfg *Config, values []T, k int) (Result[T], error) {
	s := selector[T]{cfg: cfg}
	v, err := s.selectRank(values, k)
	if err != nil {
		return Result[T]{}, err
	}
	return Result[T]{
		Value:       T(v),
		Exact:       s.exact,
		Rounds:      s.rounds,
		Compactions: s.passes,
	}, nil
}

// SelectKth returns the k-th smallest (1-based) element of values without
// modifying values. If the refinement did not converge and exact fallback is
// disabled, an upper bound is returned together with ErrNotConverged.
func SelectKth[T constraints.Float](values []T, k int, opts ...Option) (T, error) {
	r, err := Select(values, k, opts...)
	if err != nil {
		return 0, err
	}
	if !r.Exact {
		return r.Value, ErrNotConverged
	}
	return r.Value, nil
}

// TopK rearranges values so that values[len(values)-k:] holds the k largest
// elements and values[:len(values)-k] the rest. Elements equal to the pivot
// may end up on both sides of the boundary; order within each side is
// unspecified.
func TopK[T constraints.Float](values []T, k int, opts ...Option) (Partition[T], error) {
	return partitionAt(values, len(values)-k+1, k, opts)
}

// SmallestK rearranges values so that values[:m] holds the m smallest
// elements. It is TopK counted from the other end and also accepts m equal
// to len(values).
func SmallestK[T constraints.Float](values []T, m int, opts ...Option) (Partition[T], error) {
	return partitionAt(values, m, m, opts)
}

func partitionAt[T constraints.Float](values []T, rank int, count int, opts []Option) (Partition[T], error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return Partition[T]{}, err
	}
	if err := checkRank(len(values), count); err != nil {
		return Partition[T]{}, err
	}
	r, err := selectWith(&cfg, values, rank)
	if err != nil {
		return Partition[T]{}, err
	}
	less, equal := partition3(values, r.Value)
	p := Partition[T]{Pivot: r.Value, Less: less, Equal: equal, Exact: r.Exact}
	if !r.Exact {
		return p, ErrNotConverged
	}
	return p, nil
}

// TopKByKey is TopK on keys that permutes labels identically, so that after
// the call labels[len-k:] are the owners of the k largest keys.
func TopKByKey[L any, T constraints.Float](labels []L, keys []T, k int, opts ...Option) (Partition[T], error) {
	return partitionByKeyAt(labels, keys, len(keys)-k+1, k, opts)
}

// SmallestKByKey is SmallestK on keys that permutes labels identically.
func SmallestKByKey[L any, T constraints.Float](labels []L, keys []T, m int, opts ...Option) (Partition[T], error) {
	return partitionByKeyAt(labels, keys, m, m, opts)
}

func partitionByKeyAt[L any, T constraints.Float](labels []L, keys []T, rank int, count int, opts []Option) (Partition[T], error) {
	if len(labels) != len(keys) {
		return Partition[T]{}, fmt.Errorf("%w: %d labels, %d keys", ErrLengthMismatch, len(labels), len(keys))
	}
	cfg, err := newConfig(opts)
	if err != nil {
		return Partition[T]{}, err
	}
	if err := checkRank(len(keys), count); err != nil {
		return Partition[T]{}, err
	}
	r, err := selectWith(&cfg, keys, rank)
	if err != nil {
		return Partition[T]{}, err
	}
	less, equal := partition3ByKey(labels, keys, r.Value)
	p := Partition[T]{Pivot: r.Value, Less: less, Equal: equal, Exact: r.Exact}
	if !r.Exact {
		return p, ErrNotConverged
	}
	return p, nil
}

func checkRank(n int, k int) error {
	if n == 0 {
		return ErrEmpty
	}
	if k < 1 || k > n {
		return fmt.Errorf("%w: got %d for %d elements", ErrInvalidRank, k, n)
	}
	return nil
}
