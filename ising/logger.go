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
	"context"
	"io"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with the fields the search reports.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a Logger with the given handler. A nil handler logs
// text to stderr at info level.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that writes human-readable text to stderr.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NoopLogger creates a Logger that discards all output.
func NoopLogger() *Logger {
	return NewLogger(slog.NewTextHandler(io.Discard, nil))
}

// LogStart logs the parameters a search runs with.
func (l *Logger) LogStart(ctx context.Context, numBits, chunkExponent, numStates int, energiesOnly bool) {
	l.InfoContext(ctx, "search started",
		"bits", numBits,
		"chunk_exponent", chunkExponent,
		"num_states", numStates,
		"energies_only", energiesOnly,
	)
}

// LogChunk logs the completion of one chunk.
func (l *Logger) LogChunk(ctx context.Context, chunk, total uint64, best float64) {
	l.DebugContext(ctx, "chunk completed",
		"chunk", chunk,
		"chunks", total,
		"best_energy", best,
	)
}

// LogFinish logs the end of a search.
func (l *Logger) LogFinish(ctx context.Context, chunks uint64, err error) {
	if err != nil {
		l.WarnContext(ctx, "search aborted",
			"chunks_done", chunks,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "search completed",
		"chunks", chunks,
	)
}
