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

// compileZeroPadding1D emits zero fill plus a shifted copy (spec.md §4.7).
func compileZeroPadding1D(l *graph.ZeroPadding1DLayer, node *graph.Node, input, output []float32) (Op, error) {
	in := node.InputDims[0]
	inLen, c := in[0], in[1]
	left := l.Left

	run := func() {
		if len(input) > 0 && len(output) > 0 && &input[0] == &output[0] {
			return // aliased only when the padding is all zero: identity
		}
		for i := range output {
			output[i] = 0
		}
		for t := 0; t < inLen; t++ {
			copy(output[(t+left)*c:(t+left)*c+c], input[t*c:t*c+c])
		}
	}
	return Op{Run: run, CanInplace: l.CanBeInplace()}, nil
}

func compileZeroPadding2D(l *graph.ZeroPadding2DLayer, node *graph.Node, input, output []float32) (Op, error) {
	in := node.InputDims[0]
	inH, inW, c := in[0], in[1], in[2]
	out := node.OutputDims[0]
	outW := out[1]
	top, left := l.Top, l.Left

	run := func() {
		if len(input) > 0 && len(output) > 0 && &input[0] == &output[0] {
			return // aliased only when the padding is all zero: identity
		}
		for i := range output {
			output[i] = 0
		}
		for y := 0; y < inH; y++ {
			for x := 0; x < inW; x++ {
				dst := ((y+top)*outW + (x + left)) * c
				src := (y*inW + x) * c
				copy(output[dst:dst+c], input[src:src+c])
			}
		}
	}
	return Op{Run: run, CanInplace: l.CanBeInplace()}, nil
}

// compileCropping2D emits a plain windowed copy, no zero fill (spec.md §4.7).
func compileCropping2D(l *graph.Cropping2DLayer, node *graph.Node, input, output []float32) (Op, error) {
	in := node.InputDims[0]
	inW, c := in[1], in[2]
	out := node.OutputDims[0]
	outH, outW := out[0], out[1]
	top, left := l.Top, l.Left

	run := func() {
		for y := 0; y < outH; y++ {
			for x := 0; x < outW; x++ {
				dst := (y*outW + x) * c
				src := ((y+top)*inW + (x + left)) * c
				copy(output[dst:dst+c], input[src:src+c])
			}
		}
	}
	return Op{Run: run, CanInplace: l.CanBeInplace()}, nil
}

// compileUpSampling2D emits nearest or bilinear upsampling (spec.md §4.7).
// Bilinear samples the four nearest source cells at the fractional
// source coordinate implied by the integer scale factor.
func compileUpSampling2D(l *graph.UpSampling2DLayer, node *graph.Node, input, output []float32) (Op, error) {
	in := node.InputDims[0]
	inH, inW, c := in[0], in[1], in[2]
	out := node.OutputDims[0]
	outH, outW := out[0], out[1]
	sizeH, sizeW := l.SizeH, l.SizeW

	run := func() {
		for oy := 0; oy < outH; oy++ {
			for ox := 0; ox < outW; ox++ {
				dst := (oy*outW + ox) * c
				if l.Interpolation == graph.InterpNearest {
					iy := oy / sizeH
					ix := ox / sizeW
					src := (iy*inW + ix) * c
					copy(output[dst:dst+c], input[src:src+c])
					continue
				}
				fy := (float32(oy)+0.5)/float32(sizeH) - 0.5
				fx := (float32(ox)+0.5)/float32(sizeW) - 0.5
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
	return Op{Run: run, CanInplace: l.CanBeInplace()}, nil
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
