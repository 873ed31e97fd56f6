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

// padOffsets computes the symmetric-with-remainder-to-bottom-right
// padding split spec.md §4.4 describes for "same" padding: total padding
// is distributed symmetrically, with an odd extra cell going to the
// bottom/right.
func padOffsets(in, kernel, stride, out int) (before, after int) {
	total := (out-1)*stride + kernel - in
	if total < 0 {
		total = 0
	}
	before = total / 2
	after = total - before
	return
}

// im2colRow gathers one output position's receptive field into a flat
// [kh*kw*inC] row, zero-filling any cell that falls in the padding
// border (spec.md §4.5's im2col helper, minus its register-strategy
// selection: that's a code-size/perf concern of the literal x86 emitter
// this module doesn't have, see SPEC_FULL.md §1).
func im2colRow(input []float32, inH, inW, inC int, oy, ox, kh, kw, strideH, strideW, padTop, padLeft int, row []float32) {
	idx := 0
	for ky := 0; ky < kh; ky++ {
		iy := oy*strideH - padTop + ky
		for kx := 0; kx < kw; kx++ {
			ix := ox*strideW - padLeft + kx
			if iy < 0 || iy >= inH || ix < 0 || ix >= inW {
				for c := 0; c < inC; c++ {
					row[idx] = 0
					idx++
				}
				continue
			}
			base := (iy*inW + ix) * inC
			copy(row[idx:idx+inC], input[base:base+inC])
			idx += inC
		}
	}
}

func compileConv2D(l *graph.Conv2DLayer, node *graph.Node, input, output []float32, act *activation.Handler) (Op, error) {
	in := node.InputDims[0]
	inH, inW, inC := in[0], in[1], in[2]
	out := node.OutputDims[0]
	outH, outW, outC := out[0], out[1], out[2]
	kh, kw := l.KernelH, l.KernelW
	sh, sw := l.StrideH, l.StrideW

	var padTop, padLeft int
	if l.Padding == graph.PaddingSame {
		padTop, _ = padOffsets(inH, kh, sh, outH)
		padLeft, _ = padOffsets(inW, kw, sw, outW)
	}

	desc := activationDesc(l.Activation)
	act.DefineData(desc)
	weights := l.Weights // [kh, kw, inC, outC]
	bias := l.Bias
	rowLen := kh * kw * inC
	lanes := hwy.MaxLanes[float32]()

	run := func() {
		row := make([]float32, rowLen)
		for oy := 0; oy < outH; oy++ {
			for ox := 0; ox < outW; ox++ {
				im2colRow(input, inH, inW, inC, oy, ox, kh, kw, sh, sw, padTop, padLeft, row)
				outBase := (oy*outW + ox) * outC
				// Each output channel's weight column is a strided
				// [rowLen] slice of `weights` (column j of a [rowLen,
				// outC] matrix); accumulate it the same vectorized way
				// compileDense does (spec.md §4.4's channel-batch tiling,
				// generalized to one channel per gather rather than 4 at
				// a time since register-level rotation tricks have no Go
				// analogue, see SPEC_FULL.md §1).
				for j := 0; j < outC; j++ {
					accVec := hwy.Zero[float32]()
					k := 0
					for ; k+lanes <= rowLen; k += lanes {
						xv := hwy.Load(row[k : k+lanes])
						wv := gatherColumn(weights, outC, j, k, lanes)
						accVec = hwy.FMA(xv, wv, accVec)
					}
					acc := hwy.ReduceSum(accVec)
					for ; k < rowLen; k++ {
						acc += row[k] * weights[k*outC+j]
					}
					if bias != nil {
						acc += bias[j]
					}
					output[outBase+j] = acc
				}
			}
		}
		if err := act.Apply(desc, output); err != nil {
			panic(err)
		}
	}
	return Op{Run: run, CanInplace: false}, nil
}

func compileConv1D(l *graph.Conv1DLayer, node *graph.Node, input, output []float32, act *activation.Handler) (Op, error) {
	in := node.InputDims[0]
	inLen, inC := in[0], in[1]
	out := node.OutputDims[0]
	outLen, outC := out[0], l.Filters

	var padBefore int
	if l.Padding == graph.PaddingSame {
		padBefore, _ = padOffsets(inLen, l.Kernel, l.Stride, outLen)
	}

	desc := activationDesc(l.Activation)
	act.DefineData(desc)
	weights := l.Weights // [kernel, inC, outC]
	bias := l.Bias
	rowLen := l.Kernel * inC

	run := func() {
		row := make([]float32, rowLen)
		for ot := 0; ot < outLen; ot++ {
			idx := 0
			for k := 0; k < l.Kernel; k++ {
				it := ot*l.Stride - padBefore + k
				if it < 0 || it >= inLen {
					for c := 0; c < inC; c++ {
						row[idx] = 0
						idx++
					}
					continue
				}
				copy(row[idx:idx+inC], input[it*inC:it*inC+inC])
				idx += inC
			}
			outBase := ot * outC
			for j := 0; j < outC; j++ {
				var acc float32
				for k := 0; k < rowLen; k++ {
					acc += row[k] * weights[k*outC+j]
				}
				if bias != nil {
					acc += bias[j]
				}
				output[outBase+j] = acc
			}
		}
		if err := act.Apply(desc, output); err != nil {
			panic(err)
		}
	}
	return Op{Run: run, CanInplace: false}, nil
}

// compileDepthwiseConv2D emits per-channel convolution with no
// cross-channel accumulation (spec.md §4.4).
func compileDepthwiseConv2D(l *graph.DepthwiseConv2DLayer, node *graph.Node, input, output []float32, act *activation.Handler) (Op, error) {
	in := node.InputDims[0]
	inH, inW, inC := in[0], in[1], in[2]
	out := node.OutputDims[0]
	outH, outW, outC := out[0], out[1], out[2]
	kh, kw := l.KernelH, l.KernelW
	sh, sw := l.StrideH, l.StrideW
	dm := l.DepthMultiplier

	var padTop, padLeft int
	if l.Padding == graph.PaddingSame {
		padTop, _ = padOffsets(inH, kh, sh, outH)
		padLeft, _ = padOffsets(inW, kw, sw, outW)
	}

	desc := activationDesc(l.Activation)
	act.DefineData(desc)
	weights := l.Weights // [kh, kw, inC, dm]
	bias := l.Bias

	run := func() {
		for oy := 0; oy < outH; oy++ {
			for ox := 0; ox < outW; ox++ {
				outBase := (oy*outW + ox) * outC
				for c := 0; c < inC; c++ {
					for m := 0; m < dm; m++ {
						var acc float32
						for ky := 0; ky < kh; ky++ {
							iy := oy*sh - padTop + ky
							if iy < 0 || iy >= inH {
								continue
							}
							for kx := 0; kx < kw; kx++ {
								ix := ox*sw - padLeft + kx
								if ix < 0 || ix >= inW {
									continue
								}
								wv := weights[((ky*kw+kx)*inC+c)*dm+m]
								acc += input[(iy*inW+ix)*inC+c] * wv
							}
						}
						j := c*dm + m
						if bias != nil {
							acc += bias[j]
						}
						output[outBase+j] = acc
					}
				}
			}
		}
		if err := act.Apply(desc, output); err != nil {
			panic(err)
		}
	}
	return Op{Run: run, CanInplace: false}, nil
}

// compileSeparableConv2D emits depthwise-then-1x1-pointwise through an
// implicit intermediate buffer (spec.md §4.4).
func compileSeparableConv2D(l *graph.SeparableConv2DLayer, node *graph.Node, input, output []float32, act *activation.Handler) (Op, error) {
	in := node.InputDims[0]
	inH, inW, inC := in[0], in[1], in[2]
	out := node.OutputDims[0]
	outH, outW := out[0], out[1]
	dm := l.DepthMultiplier
	midC := inC * dm

	depthwise := &graph.DepthwiseConv2DLayer{
		KernelH: l.KernelH, KernelW: l.KernelW,
		StrideH: l.StrideH, StrideW: l.StrideW,
		DepthMultiplier: dm, Padding: l.Padding,
		Weights: l.DepthwiseWeights,
	}
	midNode := &graph.Node{InputDims: [][]int{in}, OutputDims: [][]int{{outH, outW, midC}}}
	noopAct := activation.NewHandler(false, false)
	mid := make([]float32, outH*outW*midC)
	depthOp, err := compileDepthwiseConv2D(depthwise, midNode, input, mid, noopAct)
	if err != nil {
		return Op{}, err
	}

	desc := activationDesc(l.Activation)
	act.DefineData(desc)
	pointwise := l.PointwiseWeights // [midC, Filters]
	bias := l.Bias
	filters := l.Filters
	lanes := hwy.MaxLanes[float32]()

	run := func() {
		depthOp.Run()
		for p := 0; p < outH*outW; p++ {
			midBase := p * midC
			outBase := p * filters
			for j := 0; j < filters; j++ {
				accVec := hwy.Zero[float32]()
				k := 0
				for ; k+lanes <= midC; k += lanes {
					xv := hwy.Load(mid[midBase+k : midBase+k+lanes])
					wv := gatherColumn(pointwise, filters, j, k, lanes)
					accVec = hwy.FMA(xv, wv, accVec)
				}
				acc := hwy.ReduceSum(accVec)
				for ; k < midC; k++ {
					acc += mid[midBase+k] * pointwise[k*filters+j]
				}
				if bias != nil {
					acc += bias[j]
				}
				output[outBase+j] = acc
			}
		}
		if err := act.Apply(desc, output); err != nil {
			panic(err)
		}
	}
	return Op{Run: run, CanInplace: false}, nil
}
