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

import "golang.org/x/exp/constraints"

// Partition describes the three regions of a partitioned slice:
// [0, Less) holds elements smaller than Pivot, [Less, Less+Equal) elements
// equal to it and [Less+Equal, n) larger elements. Order inside a region is
// unspecified.
type Partition[T any] struct {
	Pivot T
	Less  int
	Equal int
	// Exact is false when Pivot is only an upper bound of the requested
	// order statistic (see ErrNotConverged).
	Exact bool
}

// partition3 rearranges values into [< pivot][== pivot][> pivot] using two
// sequential passes and returns the sizes of the first two regions.
func partition3[T constraints.Float](values []T, pivot T) (int, int) {
	less := 0
	for i, v := range values {
		if v < pivot {
			values[i], values[less] = values[less], v
			less++
		}
	}
	equal := less
	for i := less; i < len(values); i++ {
		if values[i] == pivot {
			values[i], values[equal] = values[equal], values[i]
			equal++
		}
	}
	return less, equal - less
}

// partition3ByKey is partition3 on keys that applies every swap to labels as
// well, so labels[i] keeps belonging to keys[i].
func partition3ByKey[L any, T constraints.Float](labels []L, keys []T, pivot T) (int, int) {
	less := 0
	for i, v := range keys {
		if v < pivot {
			keys[i], keys[less] = keys[less], v
			labels[i], labels[less] = labels[less], labels[i]
			less++
		}
	}
	equal := less
	for i := less; i < len(keys); i++ {
		if keys[i] == pivot {
			keys[i], keys[equal] = keys[equal], keys[i]
			labels[i], labels[equal] = labels[equal], labels[i]
			equal++
		}
	}
	return less, equal - less
}
