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

package internal

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Span is the half-open index range [Lo, Hi).
type Span struct {
	Lo int
	Hi int
}

// Len returns the number of indices covered by the span.
func (s Span) Len() int {
	return s.Hi - s.Lo
}

// ResolveWorkers maps a non-positive worker count to GOMAXPROCS.
func ResolveWorkers(workers int) int {
	if workers <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return workers
}

// SplitSpans splits [0, n) into at most workers contiguous spans of at least
// minChunk indices each. The last span absorbs the remainder.
func SplitSpans(n int, workers int, minChunk int) []Span {
	if n <= 0 {
		return nil
	}
	if minChunk < 1 {
		minChunk = 1
	}
	parts := ResolveWorkers(workers)
	if maxParts := n / minChunk; parts > maxParts {
		parts = maxParts
	}
	if parts < 1 {
		parts = 1
	}
	spans := make([]Span, parts)
	size := n / parts
	lo := 0
	for i := range spans {
		hi := lo + size
		if i == parts-1 {
			hi = n
		}
		spans[i] = Span{Lo: lo, Hi: hi}
		lo = hi
	}
	return spans
}

// ParallelMap runs fn once per span of [0, n) and returns the results in span
// order. Spans run concurrently; a single span runs on the calling goroutine.
// The first error returned by fn is returned after all spans finish.
func ParallelMap[R any](n int, workers int, minChunk int, fn func(Span) (R, error)) ([]R, error) {
	spans := SplitSpans(n, workers, minChunk)
	results := make([]R, len(spans))
	if len(spans) == 1 {
		r, err := fn(spans[0])
		results[0] = r
		return results, err
	}
	var g errgroup.Group
	for i, s := range spans {
		i, s := i, s
		g.Go(func() error {
			r, err := fn(s)
			results[i] = r
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// ParallelFor runs fn once per span of [0, n) and waits for all of them.
func ParallelFor(n int, workers int, minChunk int, fn func(Span)) {
	_, _ = ParallelMap(n, workers, minChunk, func(s Span) (struct{}, error) {
		fn(s)
		return struct{}{}, nil
	})
}
