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
	"go.uber.org/atomic"
	"golang.org/x/exp/constraints"

	"github.com/isingsearch/bucketselect-go/internal"
)

// compactBatch is the number of matches a worker buffers before reserving
// space in the output.
const compactBatch = 256

// compactBucket gathers every element whose bucket id equals target into a
// new slice of length count. Workers reserve output ranges through a shared
// atomic cursor, so the order of the result is an arbitrary permutation of
// the matched elements and must not be relied upon.
func compactBucket[T constraints.Float](cfg *Config, values []T, buckets []int32, target int32, count int) []T {
	out := make([]T, count)
	cursor := atomic.NewInt64(0)
	internal.ParallelFor(len(values), cfg.Workers, cfg.MinParallelChunk, func(s internal.Span) {
		var batch [compactBatch]T
		n := 0
		flush := func() {
			end := int(cursor.Add(int64(n)))
			copy(out[end-n:end], batch[:n])
			n = 0
		}
		for i := s.Lo; i < s.Hi; i++ {
			if buckets[i] != target {
				continue
			}
			batch[n] = values[i]
			n++
			if n == compactBatch {
				flush()
			}
		}
		if n > 0 {
			flush()
		}
	})
	return out
}
