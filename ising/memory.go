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
	"errors"
	"fmt"

	"github.com/prometheus/procfs"

	"github.com/isingsearch/bucketselect-go/internal"
)

const (
	// bytesPerState covers one energy and one state representation.
	bytesPerState = 16
	// memoryMargin is left free for everything besides the chunk buffers.
	memoryMargin = 1 << 30
)

var errNoMemAvailable = errors.New("MemAvailable missing from meminfo")

// MaxChunkExponent returns the largest m such that a search over chunks of
// 2^m states, with its double-size best-of buffers, fits into memBytes while
// leaving a fixed margin.
func MaxChunkExponent(memBytes uint64) int {
	exponent := internal.FloorLog2(memBytes / bytesPerState / 2)
	if 2*bytesPerState*(uint64(1)<<exponent)+memoryMargin > memBytes {
		exponent--
	}
	if exponent < 0 {
		return 0
	}
	return exponent
}

// AvailableMemory returns the memory available to new allocations on the
// host, as reported by /proc/meminfo.
func AvailableMemory() (uint64, error) {
	fs, err := procfs.NewFS(procfs.DefaultMountPoint)
	if err != nil {
		return 0, fmt.Errorf("failed to initialize procfs: %w", err)
	}
	info, err := fs.Meminfo()
	if err != nil {
		return 0, fmt.Errorf("failed to get meminfo: %w", err)
	}
	if info.MemAvailable == nil {
		return 0, errNoMemAvailable
	}
	return *info.MemAvailable * 1024, nil
}
