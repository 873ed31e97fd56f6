// Copyright 2025 go-highway Authors
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

// Package nn provides SIMD-accelerated neural network layer operations.
// This package corresponds to common operations in deep learning layers.
//
// # Supported Operations
//
// Normalization operations:
//   - BaseSoftmax, BaseSoftmaxInPlace - Softmax normalization over a slice
//   - BaseLogSoftmax, BaseLogSoftmaxInPlace - Log of softmax
//   - BaseSoftmaxScalar - Scalar-loop softmax
//   - BaseSoftmaxWithTemperature - Softmax of input/temperature
//
// Quantization operations:
//   - QuantizeAffine - float32 to uint8 with a computed scale and zero point
//   - DequantizeInt32ToFloat32 - int32 accumulators back to float32
//
// Future operations (planned):
//   - BatchNorm - Batch normalization
//   - RMSNorm - Root mean square normalization
//
// # Example Usage
//
//	import "github.com/nncompile/compilednn/internal/hwy/contrib/nn"
//
//	func ComputeSoftmax(logits []float32) []float32 {
//	    probs := make([]float32, len(logits))
//	    nn.BaseSoftmax(logits, probs)
//	    return probs
//	}
//
// # Build Requirements
//
// Every function here is written against the portable hwy.Vec operations;
// there are no per-ISA variants.
package nn
