// Copyright 2026 The CompiledNN Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package main is a small diagnostic/benchmark tool: load a model file,
// compile it, print its input/output counts and buffer plan, then
// run Apply in a loop and report timing. The model-loading/compiling half
// mirrors internal/cpuinfo/main.go's "print what this process can see"
// shape; the timing loop is new, since compilednn has no other runnable
// entry point to sanity-check a compiled model against real latency.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/nncompile/compilednn"
)

func main() {
	path := flag.String("model", "", "path to a Keras-style model_config JSON file")
	iters := flag.Int("iters", 1000, "number of Apply iterations to time")
	flag.Parse()

	if *path == "" {
		fmt.Fprintln(os.Stderr, "usage: compilednn-bench -model path/to/model.json [-iters N]")
		os.Exit(2)
	}

	f, err := os.Open(*path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	m, err := compilednn.Load(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load: %v\n", err)
		os.Exit(1)
	}

	settings := compilednn.DefaultSettings()
	c, err := m.Compile(settings)
	if err != nil {
		fmt.Fprintf(os.Stderr, "compile: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("inputs: %d  outputs: %d\n", c.NumInputs(), c.NumOutputs())
	fmt.Println(c.BufferInfo())

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < c.NumInputs(); i++ {
		buf := c.Input(i)
		for j := range buf {
			buf[j] = rng.Float32()*2 - 1
		}
	}

	// Warm up once outside the timed loop so the first Apply's cache
	// effects don't skew the measurement.
	c.Apply()

	start := time.Now()
	for i := 0; i < *iters; i++ {
		c.Apply()
	}
	elapsed := time.Since(start)

	fmt.Printf("%d iterations in %s (%s/iter)\n", *iters, elapsed, elapsed/time.Duration(*iters))
}
