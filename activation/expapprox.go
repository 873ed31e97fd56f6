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

package activation

import "math"

// Schraudolph's fast exp approximation (spec.md §9 "Exp approximation"):
// reinterpret a packed integer as a float. CONST_F = 2^23/ln(2), and the
// bias below is the larger constant from the original paper (60801,
// grounded on original_source/Src/CompiledNN/Util/ExpApprox.cpp), giving
// mean absolute error around 0.02 on normalised activation inputs. The
// register-level form emits this as mulps+cvtps2dq+paddd; ExpApprox is
// the scalar equivalent every compiled closure's tail loop and the
// reference interpreter both call.
const (
	schraudolphConstF = float32(1 << 23 / 0.6931471805599453) // 2^23 / ln(2)
	schraudolphBias   = 60801
	schraudolphConstI = int32(127) << 23
)

// ExpApprox approximates e^x using the Schraudolph bit trick.
func ExpApprox(x float32) float32 {
	i := int32(schraudolphConstF*x) + (schraudolphConstI - schraudolphBias)
	return math.Float32frombits(uint32(i))
}

func sigmoidApprox(x float32) float32 {
	return 1 / (1 + ExpApprox(-x))
}

func tanhApprox(x float32) float32 {
	e := ExpApprox(2 * x)
	return (e - 1) / (e + 1)
}
