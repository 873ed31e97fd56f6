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

import "github.com/nncompile/compilednn/graph"

// compileBatchNorm emits output = input*factor + offset, per channel
// (spec.md §4.1: batchNormalization is shape-preserving, axis recorded).
// Every batchnorm node is compiled here. When the driver has fused the
// batchnorm into a preceding conv (spec.md §4.4 "Bias fusion"), its
// factor/offset are already 1/0 and this op is an identity pass; otherwise
// (e.g. the preceding node isn't a convolution, or batchnorm is the
// network's first layer) it applies the real scale and shift.
func compileBatchNorm(l *graph.BatchNormalizationLayer, input, output []float32) (Op, error) {
	factor := l.Factor
	offset := l.Offset
	channels := len(factor)
	return Op{
		Run: func() {
			for i := 0; i < len(input); i += channels {
				for c := 0; c < channels; c++ {
					output[i+c] = input[i+c]*factor[c] + offset[c]
				}
			}
		},
		CanInplace: true,
	}, nil
}
