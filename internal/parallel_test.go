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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitSpans(t *testing.T) {
	testCases := []struct {
		name     string
		n        int
		workers  int
		minChunk int
		expected []Span
	}{
		{
			name:     "empty range",
			n:        0,
			workers:  4,
			minChunk: 1,
			expected: nil,
		},
		{
			name:     "fewer elements than min chunk",
			n:        10,
			workers:  4,
			minChunk: 100,
			expected: []Span{{0, 10}},
		},
		{
			name:     "even split",
			n:        12,
			workers:  3,
			minChunk: 1,
			expected: []Span{{0, 4}, {4, 8}, {8, 12}},
		},
		{
			name:     "remainder goes to last span",
			n:        10,
			workers:  3,
			minChunk: 1,
			expected: []Span{{0, 3}, {3, 6}, {6, 10}},
		},
		{
			name:     "min chunk limits span count",
			n:        10,
			workers:  8,
			minChunk: 4,
			expected: []Span{{0, 5}, {5, 10}},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, SplitSpans(tc.n, tc.workers, tc.minChunk))
		})
	}
}

func TestSplitSpansCoversRange(t *testing.T) {
	for _, n := range []int{1, 7, 1000, 12345} {
		spans := SplitSpans(n, 0, 3)
		require.NotEmpty(t, spans)
		assert.Equal(t, 0, spans[0].Lo)
		assert.Equal(t, n, spans[len(spans)-1].Hi)
		for i := 1; i < len(spans); i++ {
			assert.Equal(t, spans[i-1].Hi, spans[i].Lo)
		}
	}
}

func TestParallelMap(t *testing.T) {
	values := make([]int, 10_000)
	for i := range values {
		values[i] = i
	}

	sums, err := ParallelMap(len(values), 8, 100, func(s Span) (int, error) {
		sum := 0
		for _, v := range values[s.Lo:s.Hi] {
			sum += v
		}
		return sum, nil
	})
	require.NoError(t, err)
	require.Len(t, sums, 8)

	total := 0
	for _, s := range sums {
		total += s
	}
	assert.Equal(t, len(values)*(len(values)-1)/2, total)
}

func TestParallelMapError(t *testing.T) {
	errBoom := errors.New("boom")
	_, err := ParallelMap(1000, 4, 10, func(s Span) (int, error) {
		if s.Lo == 0 {
			return 0, errBoom
		}
		return s.Len(), nil
	})
	assert.ErrorIs(t, err, errBoom)
}

func TestParallelFor(t *testing.T) {
	out := make([]int, 4096)
	ParallelFor(len(out), 4, 16, func(s Span) {
		for i := s.Lo; i < s.Hi; i++ {
			out[i] = i * 2
		}
	})
	for i, v := range out {
		require.Equal(t, i*2, v)
	}
}
