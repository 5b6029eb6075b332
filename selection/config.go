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

	"github.com/isingsearch/bucketselect-go/internal"
)

const (
	// DefaultNumBuckets is the number of value-range buckets used per pass.
	DefaultNumBuckets = 1024
	// DefaultCutoff is the input size above which the engine compacts the
	// target bucket into a new array instead of refining in place.
	DefaultCutoff = 2_200_000
	// DefaultMaxRounds bounds the number of in-place refinement rounds.
	DefaultMaxRounds = 1000
	// MaxNumBuckets is the largest accepted bucket count.
	MaxNumBuckets = 1 << 20
	// DefaultMinParallelChunk is the smallest number of elements handed to a
	// single worker during a parallel pass.
	DefaultMinParallelChunk = 1 << 14
)

// maxCompactDepth is the number of extra compaction levels allowed after the
// first one.
const maxCompactDepth = 1

// Config holds the tuning knobs of the selection engine. None of them changes
// the selected value, only how fast and with how much scratch memory it is
// found.
type Config struct {
	// NumBuckets is the number of buckets the value range is split into.
	NumBuckets int
	// Cutoff switches between in-place refinement (n <= Cutoff) and
	// compaction of the target bucket (n > Cutoff).
	Cutoff int
	// MaxRounds caps the refinement rounds of the in-place mode.
	MaxRounds int
	// Workers is the size of the fork-join pool. Zero means GOMAXPROCS.
	Workers int
	// MinParallelChunk is the minimum span length given to one worker.
	MinParallelChunk int
	// ExactFallback resolves the remaining candidates with an exact
	// quickselect when MaxRounds is reached. When false the upper bound of
	// the remaining range is returned and the result is flagged inexact.
	ExactFallback bool
}

// DefaultConfig returns the configuration used when no options are given.
func DefaultConfig() Config {
	return Config{
		NumBuckets:       DefaultNumBuckets,
		Cutoff:           DefaultCutoff,
		MaxRounds:        DefaultMaxRounds,
		Workers:          0,
		MinParallelChunk: DefaultMinParallelChunk,
		ExactFallback:    true,
	}
}

// Option modifies a Config.
type Option func(*Config)

// WithNumBuckets sets the number of buckets per pass. Must be at least 2.
func WithNumBuckets(n int) Option {
	return func(c *Config) {
		c.NumBuckets = n
	}
}

// WithCutoff sets the size threshold between the two selection strategies.
func WithCutoff(n int) Option {
	return func(c *Config) {
		c.Cutoff = n
	}
}

// WithMaxRounds sets the refinement round cap.
func WithMaxRounds(n int) Option {
	return func(c *Config) {
		c.MaxRounds = n
	}
}

// WithWorkers sets the number of workers used by parallel passes.
// Zero selects runtime.GOMAXPROCS(0).
func WithWorkers(n int) Option {
	return func(c *Config) {
		c.Workers = n
	}
}

// WithMinParallelChunk sets the smallest span processed by a single worker.
func WithMinParallelChunk(n int) Option {
	return func(c *Config) {
		c.MinParallelChunk = n
	}
}

// WithExactFallback controls what happens when MaxRounds is reached.
func WithExactFallback(exact bool) Option {
	return func(c *Config) {
		c.ExactFallback = exact
	}
}

// WithConfig replaces the whole configuration.
func WithConfig(cfg Config) Option {
	return func(c *Config) {
		*c = cfg
	}
}

func newConfig(opts []Option) (Config, error) {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	cfg.Workers = internal.ResolveWorkers(cfg.Workers)
	return cfg, nil
}

// Validate reports whether every knob is within its accepted range.
func (c Config) Validate() error {
	switch {
	case c.NumBuckets < 2 || c.NumBuckets > MaxNumBuckets:
		return fmt.Errorf("%w: number of buckets must be in [2, %d], got %d", ErrInvalidConfig, MaxNumBuckets, c.NumBuckets)
	case c.Cutoff < 1:
		return fmt.Errorf("%w: cutoff must be positive, got %d", ErrInvalidConfig, c.Cutoff)
	case c.MaxRounds < 1:
		return fmt.Errorf("%w: max rounds must be positive, got %d", ErrInvalidConfig, c.MaxRounds)
	case c.Workers < 0:
		return fmt.Errorf("%w: workers cannot be negative, got %d", ErrInvalidConfig, c.Workers)
	case c.MinParallelChunk < 1:
		return fmt.Errorf("%w: min parallel chunk must be positive, got %d", ErrInvalidConfig, c.MinParallelChunk)
	}
	return nil
}
