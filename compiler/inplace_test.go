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

package compiler

import (
	"testing"

	"github.com/nncompile/compilednn/activation"
	"github.com/nncompile/compilednn/graph"
)

// runInplaceCase compiles build twice — once against disjoint input/output
// buffers, once against a single buffer used as both — and requires the
// two runs to agree. Every layer kind with graph.Layer.CanBeInplace() true
// promises this (spec.md §8); a buffer-reuse bug that only shows up when
// input and output alias would otherwise pass every other test in this
// package undetected.
func runInplaceCase(t *testing.T, name string, input []float32, build func(in, out []float32) (Op, error)) {
	t.Helper()

	disjointIn := append([]float32(nil), input...)
	disjointOut := make([]float32, len(input))
	opDisjoint, err := build(disjointIn, disjointOut)
	if err != nil {
		t.Fatalf("%s: compile (disjoint): %v", name, err)
	}
	opDisjoint.Run()

	aliased := append([]float32(nil), input...)
	opAliased, err := build(aliased, aliased)
	if err != nil {
		t.Fatalf("%s: compile (aliased): %v", name, err)
	}
	if !opAliased.CanInplace {
		t.Fatalf("%s: Op.CanInplace is false for a layer whose graph.Layer.CanBeInplace() is true", name)
	}
	opAliased.Run()

	for i := range disjointOut {
		if disjointOut[i] != aliased[i] {
			t.Fatalf("%s: aliased run disagrees with disjoint run at index %d: got %v, want %v", name, i, aliased[i], disjointOut[i])
		}
	}
}

func TestInplaceSafetyActivationFamily(t *testing.T) {
	input := []float32{-2, -0.5, 0, 0.5, 2, 5}

	t.Run("Activation/Tanh", func(t *testing.T) {
		l := &graph.ActivationLayer{Activation: graph.ActTanh}
		node := &graph.Node{InputDims: [][]int{{len(input)}}, OutputDims: [][]int{{len(input)}}}
		runInplaceCase(t, "ActivationLayer", input, func(in, out []float32) (Op, error) {
			return compileActivationLayer(l, node, in, out, activation.NewHandler(false, false))
		})
	})

	t.Run("Relu", func(t *testing.T) {
		l := &graph.ReluLayer{MaxValue: 3, NegativeSlope: 0.1}
		runInplaceCase(t, "ReluLayer", input, func(in, out []float32) (Op, error) {
			return compileRelu(l, in, out, activation.NewHandler(false, false))
		})
	})

	t.Run("LeakyRelu", func(t *testing.T) {
		l := &graph.LeakyReluLayer{Alpha: 0.2}
		runInplaceCase(t, "LeakyReluLayer", input, func(in, out []float32) (Op, error) {
			return compileLeakyRelu(l, in, out, activation.NewHandler(false, false))
		})
	})

	t.Run("Elu", func(t *testing.T) {
		l := &graph.EluLayer{Alpha: 1.0}
		runInplaceCase(t, "EluLayer", input, func(in, out []float32) (Op, error) {
			return compileElu(l, in, out, activation.NewHandler(false, false))
		})
	})

	t.Run("ThresholdedRelu", func(t *testing.T) {
		l := &graph.ThresholdedReluLayer{Theta: 1.0}
		runInplaceCase(t, "ThresholdedReluLayer", input, func(in, out []float32) (Op, error) {
			return compileThresholdedRelu(l, in, out)
		})
	})
}

func TestInplaceSafetyBatchNorm(t *testing.T) {
	l := &graph.BatchNormalizationLayer{
		Axis:   -1,
		Factor: []float32{2, 0.5},
		Offset: []float32{1, -1},
	}
	input := []float32{1, 2, 3, 4, 5, 6}
	runInplaceCase(t, "BatchNormalizationLayer", input, func(in, out []float32) (Op, error) {
		return compileBatchNorm(l, in, out)
	})
}

func TestInplaceSafetyIdentityFamily(t *testing.T) {
	input := []float32{1, 2, 3, 4}

	for _, name := range []string{"Dropout", "Reshape", "Flatten"} {
		t.Run(name, func(t *testing.T) {
			runInplaceCase(t, name+"Layer", input, func(in, out []float32) (Op, error) {
				return compileIdentity(in, out), nil
			})
		})
	}
}

func TestInplaceSafetyMergeFamily(t *testing.T) {
	a := []float32{1, 2, 3, 4}
	b := []float32{4, 3, 2, 1}

	cases := []struct {
		name string
		op   mergeOp
	}{
		{"Add", mergeAdd},
		{"Subtract", mergeSub},
		{"Multiply", mergeMul},
		{"Minimum", mergeMin},
		{"Maximum", mergeMax},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			// The shared a/b slices are read-only inputs; only the first
			// input may legally alias the output (spec.md §4.8's in-place
			// merge keeps its own accumulator in inputs[0]'s buffer), so
			// only inputs[0] is duplicated per run the same way
			// runInplaceCase duplicates its single input.
			disjointA := append([]float32(nil), a...)
			disjointOut := make([]float32, len(a))
			opDisjoint := compileMerge([][]float32{disjointA, b}, disjointOut, c.op)
			opDisjoint.Run()

			aliasedA := append([]float32(nil), a...)
			opAliased := compileMerge([][]float32{aliasedA, b}, aliasedA, c.op)
			if !opAliased.CanInplace {
				t.Fatalf("%sLayer: Op.CanInplace is false", c.name)
			}
			opAliased.Run()

			for i := range disjointOut {
				if disjointOut[i] != aliasedA[i] {
					t.Fatalf("%sLayer: aliased run disagrees at index %d: got %v, want %v", c.name, i, aliasedA[i], disjointOut[i])
				}
			}
		})
	}

	t.Run("Average", func(t *testing.T) {
		disjointA := append([]float32(nil), a...)
		disjointOut := make([]float32, len(a))
		opDisjoint := compileAverage([][]float32{disjointA, b}, disjointOut)
		opDisjoint.Run()

		aliasedA := append([]float32(nil), a...)
		opAliased := compileAverage([][]float32{aliasedA, b}, aliasedA)
		if !opAliased.CanInplace {
			t.Fatal("AverageLayer: Op.CanInplace is false")
		}
		opAliased.Run()

		for i := range disjointOut {
			if disjointOut[i] != aliasedA[i] {
				t.Fatalf("AverageLayer: aliased run disagrees at index %d: got %v, want %v", i, aliasedA[i], disjointOut[i])
			}
		}
	})
}
