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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaxChunkExponent(t *testing.T) {
	const base = 2 * 16 * (1 << 30)
	testCases := []struct {
		name     string
		memBytes uint64
		expected int
	}{
		{name: "base plus 500 MiB", memBytes: base + 500<<20, expected: 29},
		{name: "base plus 600 MiB", memBytes: base + 600<<20, expected: 29},
		{name: "base", memBytes: base, expected: 29},
		{name: "base plus margin", memBytes: base + 1024<<20, expected: 30},
		{name: "less than margin", memBytes: 1 << 20, expected: 14},
		{name: "nothing", memBytes: 0, expected: 0},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, MaxChunkExponent(tc.memBytes))
		})
	}
}
