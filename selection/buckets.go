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
	"math"

	"golang.org/x/exp/constraints"

	"github.com/isingsearch/bucketselect-go/internal"
)

// bucketMap is the affine transform from the value range [minimum, maximum]
// onto bucket ids [0, numBuckets).
type bucketMap struct {
	minimum float64
	maximum float64
	slope   float64
	scale   float64
	last    int32
}

func newBucketMap(minimum, maximum float64, numBuckets int) bucketMap {
	scale := 1.0
	span := maximum - minimum
	if math.IsInf(span, 1) {
		// The width of the range overflows; map halved values instead.
		scale = 0.5
		span = maximum*scale - minimum*scale
	}
	return bucketMap{
		minimum: minimum,
		maximum: maximum,
		slope:   float64(numBuckets-1) / span,
		scale:   scale,
		last:    int32(numBuckets - 1),
	}
}

// index returns floor((v - minimum) * slope) clamped to [0, numBuckets-1].
// The maximum always lands in the last bucket and the minimum in the first.
func (m bucketMap) index(v float64) int32 {
	if v >= m.maximum {
		return m.last
	}
	x := (v*m.scale - m.minimum*m.scale) * m.slope
	if !(x > 0) {
		return 0
	}
	if x >= float64(m.last) {
		return m.last
	}
	return int32(x)
}

// histogram holds per-bucket counts together with the smallest and largest
// value observed in each bucket.
type histogram struct {
	counts []int
	lo     []float64
	hi     []float64
}

func newHistogram(numBuckets int) *histogram {
	h := &histogram{
		counts: make([]int, numBuckets),
		lo:     make([]float64, numBuckets),
		hi:     make([]float64, numBuckets),
	}
	for i := range h.lo {
		h.lo[i] = math.Inf(1)
		h.hi[i] = math.Inf(-1)
	}
	return h
}

func (h *histogram) add(b int32, v float64) {
	h.counts[b]++
	if v < h.lo[b] {
		h.lo[b] = v
	}
	if v > h.hi[b] {
		h.hi[b] = v
	}
}

func (h *histogram) merge(other *histogram) {
	for b, c := range other.counts {
		if c == 0 {
			continue
		}
		h.counts[b] += c
		h.lo[b] = math.Min(h.lo[b], other.lo[b])
		h.hi[b] = math.Max(h.hi[b], other.hi[b])
	}
}

// total returns the number of elements still under consideration.
func (h *histogram) total() int {
	n := 0
	for _, c := range h.counts {
		n += c
	}
	return n
}

func reduceHistograms(numBuckets int, parts []*histogram) *histogram {
	if len(parts) == 0 {
		return newHistogram(numBuckets)
	}
	merged := parts[0]
	for _, p := range parts[1:] {
		merged.merge(p)
	}
	return merged
}

// assignBuckets writes the bucket id of every element of values into buckets
// and returns the merged histogram. Every worker fills a private histogram;
// the partial histograms are reduced after all workers finish, so the result
// does not depend on scheduling.
func assignBuckets[T constraints.Float](cfg *Config, values []T, m bucketMap, buckets []int32) *histogram {
	parts, _ := internal.ParallelMap(len(values), cfg.Workers, cfg.MinParallelChunk, func(s internal.Span) (*histogram, error) {
		h := newHistogram(cfg.NumBuckets)
		for i := s.Lo; i < s.Hi; i++ {
			v := float64(values[i])
			b := m.index(v)
			buckets[i] = b
			h.add(b, v)
		}
		return h, nil
	})
	return reduceHistograms(cfg.NumBuckets, parts)
}

// reassignBuckets re-buckets the elements whose previous bucket is target
// under the narrowed map m. All other elements are marked excluded, so only
// members of the target bucket can receive a valid id.
func reassignBuckets[T constraints.Float](cfg *Config, values []T, m bucketMap, buckets []int32, target int32) *histogram {
	excluded := int32(cfg.NumBuckets)
	parts, _ := internal.ParallelMap(len(values), cfg.Workers, cfg.MinParallelChunk, func(s internal.Span) (*histogram, error) {
		h := newHistogram(cfg.NumBuckets)
		for i := s.Lo; i < s.Hi; i++ {
			if buckets[i] != target {
				buckets[i] = excluded
				continue
			}
			v := float64(values[i])
			b := m.index(v)
			buckets[i] = b
			h.add(b, v)
		}
		return h, nil
	})
	return reduceHistograms(cfg.NumBuckets, parts)
}

// locateRank scans the bucket counts and returns the first bucket whose
// cumulative count reaches k (1-based), together with that cumulative count.
func locateRank(counts []int, k int) (int, int) {
	boundary := 0
	for b, c := range counts {
		boundary += c
		if boundary >= k {
			return b, boundary
		}
	}
	return len(counts) - 1, boundary
}
