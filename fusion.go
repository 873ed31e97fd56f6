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

package compilednn

import "github.com/nncompile/compilednn/graph"

// fuseConvBatchNorm folds each BatchNormalizationLayer's (Factor, Offset)
// directly into a preceding Conv2DLayer's (Weights, Bias) whenever the
// conv's output has no consumer other than the batchnorm, reducing the
// batchnorm op at Apply time to an identity pass (spec.md §4.4 "Bias
// fusion", restated as an equivalence property in spec.md §8).
//
// The batchnorm node is left in place rather than removed from the
// graph: removing it would require renumbering every TensorLocation that
// references later nodes, so instead its own Factor/Offset are rewritten
// to the identity (1, 0) and compiler.compileBatchNorm degenerates into a
// copy. Fusion only applies when the conv's activation is linear — an
// activation baked into the conv's own emitted closure runs before
// batchnorm would, so folding the scale/shift into the conv's weights
// would move it to the wrong side of a nonlinearity.
func fuseConvBatchNorm(m *graph.Model) {
	consumers := make([]int, len(m.Nodes))
	for _, node := range m.Nodes {
		for _, in := range node.Inputs {
			consumers[in.NodeIndex]++
		}
	}
	isModelOutput := make(map[int]bool, len(m.Outputs))
	for _, loc := range m.Outputs {
		consumers[loc.NodeIndex]++
		isModelOutput[loc.NodeIndex] = true
	}

	for _, node := range m.Nodes {
		bn, ok := node.Layer.(*graph.BatchNormalizationLayer)
		if !ok || len(node.Inputs) != 1 {
			continue
		}
		convLoc := node.Inputs[0]
		if consumers[convLoc.NodeIndex] != 1 || isModelOutput[convLoc.NodeIndex] {
			continue
		}
		conv, ok := m.Nodes[convLoc.NodeIndex].Layer.(*graph.Conv2DLayer)
		if !ok || conv.Activation != graph.ActLinear {
			continue
		}
		filters := conv.Filters
		if len(bn.Factor) != filters || len(bn.Offset) != filters || len(conv.Weights)%filters != 0 {
			continue
		}

		// Weights is [kh, kw, inC, Filters]: Filters is the fastest-varying
		// axis, so every filters-sized run scales by the same per-channel
		// factor.
		for base := 0; base < len(conv.Weights); base += filters {
			for oc := 0; oc < filters; oc++ {
				conv.Weights[base+oc] *= bn.Factor[oc]
			}
		}
		for oc := 0; oc < filters; oc++ {
			conv.Bias[oc] = conv.Bias[oc]*bn.Factor[oc] + bn.Offset[oc]
		}

		for oc := range bn.Factor {
			bn.Factor[oc] = 1
			bn.Offset[oc] = 0
		}
	}
}
