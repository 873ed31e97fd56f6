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
	"github.com/nncompile/compilednn/graph"
	"github.com/nncompile/compilednn/internal/hwy"
)

// mergeOp folds b into a lanewise; the six merge kinds (spec.md §4.8) are
// picked by passing one of these in rather than branching per-element.
type mergeOp func(a, b hwy.Vec[float32]) hwy.Vec[float32]

func mergeAdd(a, b hwy.Vec[float32]) hwy.Vec[float32] { return hwy.Add(a, b) }
func mergeSub(a, b hwy.Vec[float32]) hwy.Vec[float32] { return hwy.Sub(a, b) }
func mergeMul(a, b hwy.Vec[float32]) hwy.Vec[float32] { return hwy.Mul(a, b) }
func mergeMin(a, b hwy.Vec[float32]) hwy.Vec[float32] { return hwy.Min(a, b) }
func mergeMax(a, b hwy.Vec[float32]) hwy.Vec[float32] { return hwy.Max(a, b) }

// compileMerge folds inputs[1:] into a copy of inputs[0] with op, matching
// spec.md §4.8's "packed instruction per pair, accumulated left to right"
// description (generalized beyond pairs to N inputs since Keras's merge
// layers accept an arbitrary input count).
func compileMerge(inputs [][]float32, output []float32, op mergeOp) Op {
	n := len(output)
	lanes := hwy.MaxLanes[float32]()
	run := func() {
		copy(output, inputs[0])
		for _, in := range inputs[1:] {
			i := 0
			for ; i+lanes <= n; i += lanes {
				av := hwy.Load(output[i : i+lanes])
				bv := hwy.Load(in[i : i+lanes])
				hwy.Store(op(av, bv), output[i:i+lanes])
			}
			for ; i < n; i++ {
				output[i] = scalarMerge(op, output[i], in[i])
			}
		}
	}
	return Op{Run: run, CanInplace: true}
}

// compileAverage is average's own entry point (distinct from compileMerge
// since it needs the 1/n scale pass the other five merge kinds don't).
func compileAverage(inputs [][]float32, output []float32) Op {
	addOp := compileMerge(inputs, output, mergeAdd)
	inv := 1 / float32(len(inputs))
	return Op{
		Run: func() {
			addOp.Run()
			for i := range output {
				output[i] *= inv
			}
		},
		CanInplace: true,
	}
}

// scalarMerge applies op's semantics to a single pair, used for n's
// remainder below one full vector width.
func scalarMerge(op func(a, b hwy.Vec[float32]) hwy.Vec[float32], a, b float32) float32 {
	av := hwy.Set(a)
	bv := hwy.Set(b)
	r := op(av, bv)
	out := make([]float32, 1)
	hwy.Store(r, out)
	return out[0]
}

// compileConcatenate copies each input into its axis-offset slice of the
// output (spec.md §4.1, §4.8).
func compileConcatenate(l *graph.ConcatenateLayer, node *graph.Node, inputs [][]float32, output []float32) (Op, error) {
	dims := node.OutputDims[0]
	axis := l.Axis
	if axis < 0 {
		axis += len(dims)
	}
	outer, totalAxisLen, inner := splitAxis(dims, axis)

	axisLens := make([]int, len(inputs))
	for i, d := range node.InputDims {
		axisLens[i] = d[axis]
	}

	run := func() {
		for o := 0; o < outer; o++ {
			outOffset := 0
			for idx, in := range inputs {
				al := axisLens[idx]
				srcBase := o * al * inner
				dstBase := (o*totalAxisLen + outOffset) * inner
				copy(output[dstBase:dstBase+al*inner], in[srcBase:srcBase+al*inner])
				outOffset += al
			}
		}
	}
	return Op{Run: run, CanInplace: false}, nil
}
