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

package selection

import (
	"fmt"
	"math"

	"golang.org/x/exp/constraints"

	"github.com/isingsearch/bucketselect-go/internal"
)

// valueRange is the observed [lo, hi] of a population.
type valueRange struct {
	lo float64
	hi float64
}

// scanRange returns the minimum and maximum of values and rejects NaN and
// infinite elements, for which the bucket map is undefined.
func scanRange[T constraints.Float](cfg *Config, values []T) (float64, float64, error) {
	parts, err := internal.ParallelMap(len(values), cfg.Workers, cfg.MinParallelChunk, func(s internal.Span) (valueRange, error) {
		r := valueRange{lo: math.Inf(1), hi: math.Inf(-1)}
		for i := s.Lo; i < s.Hi; i++ {
			v := float64(values[i])
			if math.IsNaN(v) {
				return r, fmt.Errorf("%w: at index %d", ErrNaN, i)
			}
			if math.IsInf(v, 0) {
				return r, fmt.Errorf("%w: at index %d", ErrInfinite, i)
			}
			r.lo = math.Min(r.lo, v)
			r.hi = math.Max(r.hi, v)
		}
		return r, nil
	})
	if err != nil {
		return 0, 0, err
	}
	r := parts[0]
	for _, p := range parts[1:] {
		r.lo = math.Min(r.lo, p.lo)
		r.hi = math.Max(r.hi, p.hi)
	}
	return r.lo, r.hi, nil
}

// selector runs one selection call. It owns no scratch memory itself: every
// bucket map and compacted array belongs to the stack frame that created it
// and is released when that frame returns.
type selector[T constraints.Float] struct {
	cfg    *Config
	rounds int
	passes int
	exact  bool
}

// selectRank returns the k-th smallest (1-based) value of values.
// Preconditions: values is non-empty and 1 <= k <= len(values).
func (s *selector[T]) selectRank(values []T, k int) (float64, error) {
	lo, hi, err := scanRange(s.cfg, values)
	if err != nil {
		return 0, err
	}
	s.exact = true
	switch {
	case lo == hi:
		return lo, nil
	case k == 1:
		return lo, nil
	case k == len(values):
		return hi, nil
	}
	if len(values) <= s.cfg.Cutoff {
		return s.refine(values, k, lo, hi), nil
	}
	return s.compact(values, k, lo, hi, 0), nil
}

// refine narrows the value range in place until the bucket holding rank k
// contains a single element or a single distinct value.
func (s *selector[T]) refine(values []T, k int, lo, hi float64) float64 {
	if lo == hi {
		return lo
	}
	buckets := make([]int32, len(values))
	h := assignBuckets(s.cfg, values, newBucketMap(lo, hi, s.cfg.NumBuckets), buckets)
	s.rounds++
	b, boundary := locateRank(h.counts, k)

	for refinements := 0; h.counts[b] > 1; refinements++ {
		// Rank k is now relative to the members of bucket b.
		k -= boundary - h.counts[b]
		lo, hi = h.lo[b], h.hi[b]
		if lo == hi {
			return lo
		}
		if refinements == s.cfg.MaxRounds {
			return s.roundCapReached(values, buckets, int32(b), h.counts[b], k, hi)
		}
		h = reassignBuckets(s.cfg, values, newBucketMap(lo, hi, s.cfg.NumBuckets), buckets, int32(b))
		s.rounds++
		b, boundary = locateRank(h.counts, k)
	}
	return h.lo[b]
}

// roundCapReached resolves a refinement that did not converge within
// MaxRounds. The remaining candidates are either selected exactly or the
// upper bound of their range is returned as an approximation.
func (s *selector[T]) roundCapReached(values []T, buckets []int32, target int32, count int, k int, upper float64) float64 {
	if !s.cfg.ExactFallback {
		s.exact = false
		return upper
	}
	candidates := compactBucket(s.cfg, values, buckets, target, count)
	s.passes++
	return float64(internal.QuickSelect(candidates, 0, len(candidates)-1, k-1))
}

// compact buckets values once, copies the bucket holding rank k into a new
// array and continues on that array: once more in compaction mode when it is
// still larger than the cutoff and depth allows it, in place otherwise.
func (s *selector[T]) compact(values []T, k int, lo, hi float64, depth int) float64 {
	buckets := make([]int32, len(values))
	h := assignBuckets(s.cfg, values, newBucketMap(lo, hi, s.cfg.NumBuckets), buckets)
	s.rounds++
	b, boundary := locateRank(h.counts, k)
	count := h.counts[b]
	k -= boundary - count
	lo, hi = h.lo[b], h.hi[b]
	if count == 1 || lo == hi {
		return lo
	}

	candidates := compactBucket(s.cfg, values, buckets, int32(b), count)
	s.passes++

	if count > s.cfg.Cutoff && depth < maxCompactDepth {
		return s.compact(candidates, k, lo, hi, depth+1)
	}
	return s.refine(candidates, k, lo, hi)
}
