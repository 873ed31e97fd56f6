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

package interp

import (
	"math"

	"github.com/nncompile/compilednn/graph"
)

// softmax applies the standard max-subtract-exp-normalize softmax along
// axis in place, matching compiler/softmax.go's compiled routine exactly
// (without the exp-approximation toggle: the reference always uses
// math.Exp, spec.md §8's oracle tolerance accounts for that gap).
func softmax(dims []int, axis int, x []float32) {
	if axis < 0 {
		axis += len(dims)
	}
	outer, inner := 1, 1
	axisLen := dims[axis]
	for i, d := range dims {
		if i < axis {
			outer *= d
		} else if i > axis {
			inner *= d
		}
	}
	for o := 0; o < outer; o++ {
		for i := 0; i < inner; i++ {
			base := o*axisLen*inner + i
			max := x[base]
			for a := 1; a < axisLen; a++ {
				if v := x[base+a*inner]; v > max {
					max = v
				}
			}
			var sum float32
			for a := 0; a < axisLen; a++ {
				idx := base + a*inner
				e := float32(math.Exp(float64(x[idx] - max)))
				x[idx] = e
				sum += e
			}
			inv := 1 / sum
			for a := 0; a < axisLen; a++ {
				x[base+a*inner] *= inv
			}
		}
	}
}

func padOffsets(in, kernel, stride, out int) (before int) {
	total := (out-1)*stride + kernel - in
	if total < 0 {
		total = 0
	}
	return total / 2
}

func conv1D(l *graph.Conv1DLayer, node *graph.Node, input, output []float32) []float32 {
	in := node.InputDims[0]
	inLen, inC := in[0], in[1]
	out := node.OutputDims[0]
	outLen, outC := out[0], l.Filters

	var padBefore int
	if l.Padding == graph.PaddingSame {
		padBefore = padOffsets(inLen, l.Kernel, l.Stride, outLen)
	}

	for ot := 0; ot < outLen; ot++ {
		for j := 0; j < outC; j++ {
			var acc float32
			for k := 0; k < l.Kernel; k++ {
				it := ot*l.Stride - padBefore + k
				if it < 0 || it >= inLen {
					continue
				}
				for c := 0; c < inC; c++ {
					acc += input[it*inC+c] * l.Weights[(k*inC+c)*outC+j]
				}
			}
			if l.Bias != nil {
				acc += l.Bias[j]
			}
			output[ot*outC+j] = acc
		}
	}
	applyActivation(l.Activation, 0, output)
	return output
}

func conv2D(l *graph.Conv2DLayer, node *graph.Node, input, output []float32) []float32 {
	in := node.InputDims[0]
	inH, inW, inC := in[0], in[1], in[2]
	out := node.OutputDims[0]
	outH, outW, outC := out[0], out[1], out[2]

	var padTop, padLeft int
	if l.Padding == graph.PaddingSame {
		padTop = padOffsets(inH, l.KernelH, l.StrideH, outH)
		padLeft = padOffsets(inW, l.KernelW, l.StrideW, outW)
	}

	for oy := 0; oy < outH; oy++ {
		for ox := 0; ox < outW; ox++ {
			outBase := (oy*outW + ox) * outC
			for j := 0; j < outC; j++ {
				var acc float32
				for ky := 0; ky < l.KernelH; ky++ {
					iy := oy*l.StrideH - padTop + ky
					if iy < 0 || iy >= inH {
						continue
					}
					for kx := 0; kx < l.KernelW; kx++ {
						ix := ox*l.StrideW - padLeft + kx
						if ix < 0 || ix >= inW {
							continue
						}
						for c := 0; c < inC; c++ {
							w := l.Weights[((ky*l.KernelW+kx)*inC+c)*outC+j]
							acc += input[(iy*inW+ix)*inC+c] * w
						}
					}
				}
				if l.Bias != nil {
					acc += l.Bias[j]
				}
				output[outBase+j] = acc
			}
		}
	}
	applyActivation(l.Activation, 0, output)
	return output
}

func depthwiseConv2D(l *graph.DepthwiseConv2DLayer, node *graph.Node, input, output []float32) []float32 {
	in := node.InputDims[0]
	inH, inW, inC := in[0], in[1], in[2]
	out := node.OutputDims[0]
	outH, outW, outC := out[0], out[1], out[2]
	dm := l.DepthMultiplier

	var padTop, padLeft int
	if l.Padding == graph.PaddingSame {
		padTop = padOffsets(inH, l.KernelH, l.StrideH, outH)
		padLeft = padOffsets(inW, l.KernelW, l.StrideW, outW)
	}

	for oy := 0; oy < outH; oy++ {
		for ox := 0; ox < outW; ox++ {
			outBase := (oy*outW + ox) * outC
			for c := 0; c < inC; c++ {
				for m := 0; m < dm; m++ {
					var acc float32
					for ky := 0; ky < l.KernelH; ky++ {
						iy := oy*l.StrideH - padTop + ky
						if iy < 0 || iy >= inH {
							continue
						}
						for kx := 0; kx < l.KernelW; kx++ {
							ix := ox*l.StrideW - padLeft + kx
							if ix < 0 || ix >= inW {
								continue
							}
							w := l.Weights[((ky*l.KernelW+kx)*inC+c)*dm+m]
							acc += input[(iy*inW+ix)*inC+c] * w
						}
					}
					j := c*dm + m
					if l.Bias != nil {
						acc += l.Bias[j]
					}
					output[outBase+j] = acc
				}
			}
		}
	}
	applyActivation(l.Activation, 0, output)
	return output
}

func separableConv2D(l *graph.SeparableConv2DLayer, node *graph.Node, input, output []float32) []float32 {
	in := node.InputDims[0]
	inC := in[2]
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
	mid := make([]float32, outH*outW*midC)
	depthwiseConv2D(depthwise, midNode, input, mid)

	for p := 0; p < outH*outW; p++ {
		for j := 0; j < l.Filters; j++ {
			var acc float32
			for k := 0; k < midC; k++ {
				acc += mid[p*midC+k] * l.PointwiseWeights[k*l.Filters+j]
			}
			if l.Bias != nil {
				acc += l.Bias[j]
			}
			output[p*l.Filters+j] = acc
		}
	}
	applyActivation(l.Activation, 0, output)
	return output
}

func pooling2D(node *graph.Node, input, output []float32) {
	in := node.InputDims[0]
	inH, inW, c := in[0], in[1], in[2]
	out := node.OutputDims[0]
	outH, outW := out[0], out[1]

	var poolH, poolW, strideH, strideW int
	var padTop, padLeft int
	isMax := false
	switch l := node.Layer.(type) {
	case *graph.MaxPooling2DLayer:
		isMax = true
		poolH, poolW, strideH, strideW = l.PoolH, l.PoolW, l.StrideH, l.StrideW
		if l.Padding == graph.PaddingSame {
			padTop = padOffsets(inH, poolH, strideH, outH)
			padLeft = padOffsets(inW, poolW, strideW, outW)
		}
	case *graph.AveragePooling2DLayer:
		poolH, poolW, strideH, strideW = l.PoolH, l.PoolW, l.StrideH, l.StrideW
		if l.Padding == graph.PaddingSame {
			padTop = padOffsets(inH, poolH, strideH, outH)
			padLeft = padOffsets(inW, poolW, strideW, outW)
		}
	}

	for oy := 0; oy < outH; oy++ {
		for ox := 0; ox < outW; ox++ {
			outBase := (oy*outW + ox) * c
			for ch := 0; ch < c; ch++ {
				var acc float32
				var count int
				first := true
				for ky := 0; ky < poolH; ky++ {
					iy := oy*strideH - padTop + ky
					if iy < 0 || iy >= inH {
						continue
					}
					for kx := 0; kx < poolW; kx++ {
						ix := ox*strideW - padLeft + kx
						if ix < 0 || ix >= inW {
							continue
						}
						v := input[(iy*inW+ix)*c+ch]
						if first {
							acc, first = v, false
						} else if isMax {
							if v > acc {
								acc = v
							}
						} else {
							acc += v
						}
						count++
					}
				}
				if !isMax && count > 0 {
					acc /= float32(count)
				}
				output[outBase+ch] = acc
			}
		}
	}
}

func pooling1D(node *graph.Node, input, output []float32) {
	in := node.InputDims[0]
	inLen, c := in[0], in[1]
	out := node.OutputDims[0]
	outLen := out[0]

	var pool, stride, padBefore int
	isMax := false
	switch l := node.Layer.(type) {
	case *graph.MaxPooling1DLayer:
		isMax = true
		pool, stride = l.PoolSize, l.Stride
		if l.Padding == graph.PaddingSame {
			padBefore = padOffsets(inLen, pool, stride, outLen)
		}
	case *graph.AveragePooling1DLayer:
		pool, stride = l.PoolSize, l.Stride
		if l.Padding == graph.PaddingSame {
			padBefore = padOffsets(inLen, pool, stride, outLen)
		}
	}

	for ot := 0; ot < outLen; ot++ {
		for ch := 0; ch < c; ch++ {
			var acc float32
			var count int
			first := true
			for k := 0; k < pool; k++ {
				it := ot*stride - padBefore + k
				if it < 0 || it >= inLen {
					continue
				}
				v := input[it*c+ch]
				if first {
					acc, first = v, false
				} else if isMax {
					if v > acc {
						acc = v
					}
				} else {
					acc += v
				}
				count++
			}
			if !isMax && count > 0 {
				acc /= float32(count)
			}
			output[ot*c+ch] = acc
		}
	}
}

func globalPooling2D(node *graph.Node, input, output []float32, isMax bool) {
	in := node.InputDims[0]
	inH, inW, c := in[0], in[1], in[2]
	n := inH * inW
	for ch := 0; ch < c; ch++ {
		acc := input[ch]
		for p := 1; p < n; p++ {
			v := input[p*c+ch]
			if isMax {
				if v > acc {
					acc = v
				}
			} else {
				acc += v
			}
		}
		if !isMax {
			acc /= float32(n)
		}
		output[ch] = acc
	}
}

func zeroPadding1D(l *graph.ZeroPadding1DLayer, node *graph.Node, input, output []float32) {
	in := node.InputDims[0]
	inLen, c := in[0], in[1]
	for t := 0; t < inLen; t++ {
		copy(output[(t+l.Left)*c:(t+l.Left)*c+c], input[t*c:t*c+c])
	}
}

func zeroPadding2D(l *graph.ZeroPadding2DLayer, node *graph.Node, input, output []float32) {
	in := node.InputDims[0]
	inH, inW, c := in[0], in[1], in[2]
	out := node.OutputDims[0]
	outW := out[1]
	for y := 0; y < inH; y++ {
		for x := 0; x < inW; x++ {
			dst := ((y+l.Top)*outW + (x + l.Left)) * c
			src := (y*inW + x) * c
			copy(output[dst:dst+c], input[src:src+c])
		}
	}
}

func cropping2D(l *graph.Cropping2DLayer, node *graph.Node, input, output []float32) {
	in := node.InputDims[0]
	inW, c := in[1], in[2]
	out := node.OutputDims[0]
	outH, outW := out[0], out[1]
	for y := 0; y < outH; y++ {
		for x := 0; x < outW; x++ {
			dst := (y*outW + x) * c
			src := ((y+l.Top)*inW + (x + l.Left)) * c
			copy(output[dst:dst+c], input[src:src+c])
		}
	}
}

func upSampling2D(l *graph.UpSampling2DLayer, node *graph.Node, input, output []float32) {
	in := node.InputDims[0]
	inH, inW, c := in[0], in[1], in[2]
	out := node.OutputDims[0]
	outH, outW := out[0], out[1]

	if l.Interpolation == graph.InterpNearest {
		for oy := 0; oy < outH; oy++ {
			for ox := 0; ox < outW; ox++ {
				iy := oy / l.SizeH
				ix := ox / l.SizeW
				dst := (oy*outW + ox) * c
				src := (iy*inW + ix) * c
				copy(output[dst:dst+c], input[src:src+c])
			}
		}
		return
	}

	for oy := 0; oy < outH; oy++ {
		for ox := 0; ox < outW; ox++ {
			fy := (float32(oy)+0.5)/float32(l.SizeH) - 0.5
			fx := (float32(ox)+0.5)/float32(l.SizeW) - 0.5
			y0 := clampInt(int(floor32(fy)), 0, inH-1)
			x0 := clampInt(int(floor32(fx)), 0, inW-1)
			y1 := clampInt(y0+1, 0, inH-1)
			x1 := clampInt(x0+1, 0, inW-1)
			ty := fy - floor32(fy)
			tx := fx - floor32(fx)
			if ty < 0 {
				ty = 0
			}
			if tx < 0 {
				tx = 0
			}
			dst := (oy*outW + ox) * c
			for ch := 0; ch < c; ch++ {
				v00 := input[(y0*inW+x0)*c+ch]
				v01 := input[(y0*inW+x1)*c+ch]
				v10 := input[(y1*inW+x0)*c+ch]
				v11 := input[(y1*inW+x1)*c+ch]
				top := v00 + (v01-v00)*tx
				bot := v10 + (v11-v10)*tx
				output[dst+ch] = top + (bot-top)*ty
			}
		}
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func floor32(x float32) float32 {
	i := int(x)
	if x < 0 && float32(i) != x {
		i--
	}
	return float32(i)
}

func concatenate(l *graph.ConcatenateLayer, node *graph.Node, inputs [][]float32, output []float32) {
	dims := node.OutputDims[0]
	axis := l.Axis
	if axis < 0 {
		axis += len(dims)
	}
	outer, inner := 1, 1
	for i, d := range dims {
		if i < axis {
			outer *= d
		} else if i > axis {
			inner *= d
		}
	}
	totalAxisLen := dims[axis]

	axisLens := make([]int, len(inputs))
	for i, d := range node.InputDims {
		axisLens[i] = d[axis]
	}

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

func merge(inputs [][]float32, output []float32, op func(a, b float32) float32) {
	copy(output, inputs[0])
	for _, in := range inputs[1:] {
		for i := range output {
			output[i] = op(output[i], in[i])
		}
	}
}
