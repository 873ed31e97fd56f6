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

package activation

import "github.com/nncompile/compilednn/internal/hwy"

// =============================================================================
// Per-type constants for activation functions
//
// Using typed constants avoids precision loss from hwy.Const's float32
// parameter when generating float64 specializations. Exported so the
// top-level activation package can build its constant blocks (spec.md
// §4.9's shared-constant-table requirement) from the same typed values
// instead of re-deriving them.
// =============================================================================

// Float16 constants for activations
var (
	ZeroF16           hwy.Float16 = hwy.Float32ToFloat16(0.0)
	OneF16            hwy.Float16 = hwy.Float32ToFloat16(1.0)
	HalfF16           hwy.Float16 = hwy.Float32ToFloat16(0.5)
	InvSqrt2F16       hwy.Float16 = hwy.Float32ToFloat16(0.7071067811865476)
	GeluApproxCoeffF16 hwy.Float16 = hwy.Float32ToFloat16(1.702)
	HardSwishScaleF16 hwy.Float16 = hwy.Float32ToFloat16(0.16666666666666666)
)

// BFloat16 constants for activations
var (
	ZeroBF16           hwy.BFloat16 = hwy.Float32ToBFloat16(0.0)
	OneBF16            hwy.BFloat16 = hwy.Float32ToBFloat16(1.0)
	HalfBF16           hwy.BFloat16 = hwy.Float32ToBFloat16(0.5)
	InvSqrt2BF16       hwy.BFloat16 = hwy.Float32ToBFloat16(0.7071067811865476)
	GeluApproxCoeffBF16 hwy.BFloat16 = hwy.Float32ToBFloat16(1.702)
	HardSwishScaleBF16 hwy.BFloat16 = hwy.Float32ToBFloat16(0.16666666666666666)
)

// Float32 constants for activations. These are the precisions the model
// compiler actually instantiates (tensors are float32, spec.md §3); the
// f16/bf16 tables above and the f64 table below exist only so the shared generic callers
// compile for every precision the underlying vector library supports.
var (
	ZeroF32           float32 = 0.0
	OneF32            float32 = 1.0
	HalfF32           float32 = 0.5
	InvSqrt2F32       float32 = 0.7071067811865476
	GeluApproxCoeffF32 float32 = 1.702
	HardSwishScaleF32 float32 = 0.16666666666666666
)

// Float64 constants for activations
var (
	ZeroF64           float64 = 0.0
	OneF64            float64 = 1.0
	HalfF64           float64 = 0.5
	InvSqrt2F64       float64 = 0.7071067811865475244008443621048490392848359376884740365883398689
	GeluApproxCoeffF64 float64 = 1.702
	HardSwishScaleF64 float64 = 0.16666666666666666666666666666666666666666666666666666666666666666
)
