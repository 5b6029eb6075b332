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

// Command isingsearch finds the lowest energy states of an Ising problem by
// exhaustive enumeration.
//
//	isingsearch --problem problem.yaml --num-states 10 > solution.yaml
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/isingsearch/bucketselect-go/ising"
)

var argv struct {
	problem       string
	numStates     int
	chunkExponent int
	energiesOnly  bool
	workers       int
	logLevel      string
	progress      bool
	help          bool
}

func parseArgs() {
	pflag.StringVarP(&argv.problem, "problem", "p", "-", "path to the YAML problem file, - reads stdin")
	pflag.IntVarP(&argv.numStates, "num-states", "n", ising.DefaultNumStates, "number of lowest energy states to report")
	pflag.IntVar(&argv.chunkExponent, "chunk-exponent", -1, "evaluate 2^exponent states per chunk, negative derives it from available memory")
	pflag.BoolVar(&argv.energiesOnly, "energies-only", false, "report energies without states")
	pflag.IntVar(&argv.workers, "workers", 0, "number of worker goroutines, 0 means GOMAXPROCS")
	pflag.StringVar(&argv.logLevel, "log-level", "info", "log level: debug, info, warn or error")
	pflag.BoolVar(&argv.progress, "progress", false, "log every finished chunk")
	pflag.BoolVarP(&argv.help, "help", "h", false, "print usage instructions and exit")

	pflag.Parse()
}

func main() {
	parseArgs()
	if argv.help {
		pflag.Usage()
		return
	}
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "isingsearch: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(argv.logLevel)); err != nil {
		return fmt.Errorf("invalid --log-level: %w", err)
	}
	logger := ising.NewTextLogger(level)

	p, err := loadProblem(argv.problem)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := []ising.SearchOption{
		ising.WithNumStates(argv.numStates),
		ising.WithEnergiesOnly(argv.energiesOnly),
		ising.WithWorkers(argv.workers),
		ising.WithLogger(logger),
	}
	if argv.chunkExponent >= 0 {
		opts = append(opts, ising.WithChunkExponent(argv.chunkExponent))
	}
	if argv.progress {
		opts = append(opts, ising.WithProgress(func(chunk, total uint64) error {
			logger.InfoContext(ctx, "progress", "chunk", chunk+1, "chunks", total)
			return nil
		}))
	}

	s, err := ising.Search(ctx, p, opts...)
	if err != nil {
		return err
	}
	return ising.WriteSolution(os.Stdout, s)
}

func loadProblem(path string) (ising.Problem, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return ising.Problem{}, fmt.Errorf("could not open problem: %w", err)
		}
		defer f.Close()
		r = f
	}
	p, err := ising.LoadProblem(r)
	if err != nil {
		return ising.Problem{}, fmt.Errorf("could not load %s: %w", path, err)
	}
	return p, nil
}
