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

	"github.com/nncompile/compilednn/graph"
	"github.com/nncompile/compilednn/internal/hwy/contrib/nn"
)

// compileQuantizedInputConvStrided4x4WithReLU realizes spec.md §4.4's
// uint8, 4x4-kernel, stride-4 fast path on top of the same float32 arena
// slots every other op uses: the input tile is quantized to uint8 on
// each Run (internal/hwy/contrib/nn.QuantizeAffine), accumulated the way
// pmaddubsw would — unsigned input lane times signed weight lane, summed
// in a wider integer than the asm's 16-bit lanes to absorb what would
// otherwise be per-pair saturation — then shifted right by Scale,
// bias-added, and clamped to [0,255] (packuswb's unsigned saturation,
// which is simultaneously the layer's ReLU). The clamped accumulator is
// widened back to float32 with no extra multiply
// (internal/hwy/contrib/nn.DequantizeInt32ToFloat32 with combinedScale
// 1.0), mirroring the asm path's optional cvtdq2ps tail exactly: that
// instruction only converts, it does not rescale.
func compileQuantizedInputConvStrided4x4WithReLU(l *graph.QuantizedInputConvStrided4x4WithReLULayer, node *graph.Node, input, output []float32, xmmRegs int) (Op, error) {
	in := node.InputDims[0]
	inH, inW, inC := in[0], in[1], in[2]
	if inW%16 != 0 {
		return Op{}, fmt.Errorf("compiler: %w: quantizedInputConvStrided4x4WithReLU requires input_width mod 16 == 0, got %d", ErrCompile, inW)
	}
	if xmmRegs <= 14 {
		return Op{}, fmt.Errorf("compiler: %w: quantizedInputConvStrided4x4WithReLU requires more than 14 free XMM registers, have %d", ErrCompile, xmmRegs)
	}

	out := node.OutputDims[0]
	outH, outW, outC := out[0], out[1], out[2]
	weights := l.Weights // [4, 4, inC, outC]
	bias := l.Bias
	shift := uint(l.Scale)

	qInput := make([]uint8, inH*inW*inC)
	acc := make([]int32, outC)

	run := func() {
		_, zp := nn.QuantizeAffine(input, qInput, len(input))

		for oy := 0; oy < outH; oy++ {
			for ox := 0; ox < outW; ox++ {
				for c := range acc {
					acc[c] = 0
				}
				for ky := 0; ky < 4; ky++ {
					iy := oy*4 + ky
					if iy >= inH {
						continue
					}
					for kx := 0; kx < 4; kx++ {
						ix := ox*4 + kx
						if ix >= inW {
							continue
						}
						base := (iy*inW + ix) * inC
						wbase := (ky*4 + kx) * inC * outC
						for ic := 0; ic < inC; ic++ {
							// pmaddubsw's unsigned operand is the quantized
							// input; subtract its zero point so the product
							// reflects the dequantized input value rather
							// than the raw uint8 code.
							px := int32(qInput[base+ic]) - int32(zp)
							wrow := wbase + ic*outC
							for oc := 0; oc < outC; oc++ {
								acc[oc] += px * int32(weights[wrow+oc])
							}
						}
					}
				}
				obase := (oy*outW + ox) * outC
				for oc := 0; oc < outC; oc++ {
					v := acc[oc]>>shift + bias[oc]
					if v < 0 {
						v = 0
					} else if v > 255 {
						v = 255
					}
					acc[oc] = v
				}
				nn.DequantizeInt32ToFloat32(acc, output[obase:obase+outC], outC, 1.0)
			}
		}
	}

	return Op{Run: run, CanInplace: false}, nil
}
