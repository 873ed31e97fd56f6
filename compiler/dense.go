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
	"github.com/nncompile/compilednn/activation"
	"github.com/nncompile/compilednn/graph"
	"github.com/nncompile/compilednn/internal/hwy"
)

// compileDense emits output = activation(x @ W + b), generalizing the
// teacher's register-blocked matmul accumulation
// (internal/hwy/contrib/matmul/matmul_base.go's BaseMatMul) to a single
// [1, units] row rather than a full M x N product, since every Dense
// node here processes one fixed-shape row at a time.
func compileDense(l *graph.DenseLayer, node *graph.Node, input, output []float32, act *activation.Handler) (Op, error) {
	inFeatures := node.InputDims[0][len(node.InputDims[0])-1]
	units := l.Units
	weights := l.Weights // [inFeatures, units], row-major
	bias := l.Bias
	desc := activationDesc(l.Activation)
	act.DefineData(desc)

	lanes := hwy.MaxLanes[float32]()

	run := func() {
		for j := 0; j < units; j++ {
			var acc float32
			// Column j of W is strided by `units`; gather it into a
			// contiguous scratch strip so the inner product can still use
			// vectorized FMA over contiguous loads, matching the teacher's
			// "pack before accumulate" pattern (packing.go) rather than a
			// scalar strided dot product.
			accVec := hwy.Zero[float32]()
			k := 0
			for ; k+lanes <= inFeatures; k += lanes {
				xv := hwy.Load(input[k : k+lanes])
				wv := gatherColumn(weights, units, j, k, lanes)
				accVec = hwy.FMA(xv, wv, accVec)
			}
			acc = hwy.ReduceSum(accVec)
			for ; k < inFeatures; k++ {
				acc += input[k] * weights[k*units+j]
			}
			if bias != nil {
				acc += bias[j]
			}
			output[j] = acc
		}
		if err := act.Apply(desc, output); err != nil {
			panic(err) // unreachable: activationDesc never builds a Desc Apply rejects
		}
	}
	return Op{Run: run, CanInplace: false}, nil
}

// gatherColumn reads lanes consecutive rows' column j of an
// [rows, cols]-shaped row-major matrix into one Vec.
func gatherColumn(m []float32, cols, j, rowStart, lanes int) hwy.Vec[float32] {
	tmp := make([]float32, lanes)
	for i := 0; i < lanes; i++ {
		tmp[i] = m[(rowStart+i)*cols+j]
	}
	return hwy.Load(tmp)
}
