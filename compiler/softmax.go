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
	"fmt"
	"math"

	"github.com/nncompile/compilednn/activation"
	"github.com/nncompile/compilednn/graph"
)

func expExact(x float32) float32 { return float32(math.Exp(float64(x))) }

// compileSoftmax emits the four-pass routine of spec.md §4.10: max over
// the axis, subtract-and-exp, sum, reciprocal-multiply. This reimplements
// internal/hwy/contrib/nn/softmax_base.go's BaseSoftmax directly against
// the activation handler's own exp approximation rather than patching
// that file's call to the undefined math.BaseExpVec (see DESIGN.md) —
// softmax needs the handler's shared constant-block bookkeeping (its exp
// approximation toggle lives on the same Handler every other activation
// uses) more than it needs a standalone vector helper.
func compileSoftmax(l *graph.SoftmaxLayer, node *graph.Node, input, output []float32, act *activation.Handler) (Op, error) {
	dims := node.OutputDims[0]
	axis := l.Axis
	if axis < 0 {
		axis += len(dims)
	}
	if axis < 0 || axis >= len(dims) {
		return Op{}, fmt.Errorf("compiler: %w: softmax axis %d out of range for rank %d", ErrCompile, l.Axis, len(dims))
	}

	outer, axisLen, inner := splitAxis(dims, axis)
	useApprox := act.UseExpApproxInSigmoid // softmax reuses the sigmoid exp-approx toggle; no separate setting exists in spec.md §3

	run := func() {
		for o := 0; o < outer; o++ {
			for i := 0; i < inner; i++ {
				base := o*axisLen*inner + i

				max := input[base]
				for a := 1; a < axisLen; a++ {
					v := input[base+a*inner]
					if v > max {
						max = v
					}
				}

				var sum float32
				for a := 0; a < axisLen; a++ {
					idx := base + a*inner
					var e float32
					if useApprox {
						e = activation.ExpApprox(input[idx] - max)
					} else {
						e = expExact(input[idx] - max)
					}
					output[idx] = e
					sum += e
				}

				inv := 1 / sum
				for a := 0; a < axisLen; a++ {
					output[base+a*inner] *= inv
				}
			}
		}
	}
	return Op{Run: run, CanInplace: false}, nil
}

func splitAxis(dims []int, axis int) (outer, axisLen, inner int) {
	outer, inner = 1, 1
	for i, d := range dims {
		switch {
		case i < axis:
			outer *= d
		case i == axis:
			axisLen = d
		default:
			inner *= d
		}
	}
	return
}
