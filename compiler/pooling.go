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

// compilePooling2D emits max/average pooling over [H, W] (spec.md §4.6):
// the accumulator starts at the footprint's first cell, then folds in the
// remaining cells with a max or running sum, matching the teacher's
// "start with the first tap, fold the rest" accumulation shape even
// though the per-cell op here is scalar rather than a packed compare/add
// (see SPEC_FULL.md §1 on why this module has no literal x86 emitter).
func compilePooling2D(node *graph.Node, input, output []float32, isMax, _ bool) (Op, error) {
	in := node.InputDims[0]
	inH, inW, c := in[0], in[1], in[2]
	out := node.OutputDims[0]
	outH, outW := out[0], out[1]

	var poolH, poolW, strideH, strideW int
	var padTop, padLeft int
	switch l := node.Layer.(type) {
	case *graph.MaxPooling2DLayer:
		poolH, poolW, strideH, strideW = l.PoolH, l.PoolW, l.StrideH, l.StrideW
		if l.Padding == graph.PaddingSame {
			padTop, _ = padOffsets(inH, poolH, strideH, outH)
			padLeft, _ = padOffsets(inW, poolW, strideW, outW)
		}
	case *graph.AveragePooling2DLayer:
		poolH, poolW, strideH, strideW = l.PoolH, l.PoolW, l.StrideH, l.StrideW
		if l.Padding == graph.PaddingSame {
			padTop, _ = padOffsets(inH, poolH, strideH, outH)
			padLeft, _ = padOffsets(inW, poolW, strideW, outW)
		}
	}

	run := func() {
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
								acc = v
								first = false
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
	return Op{Run: run, CanInplace: false}, nil
}

func compilePooling1D(node *graph.Node, input, output []float32, isMax bool) (Op, error) {
	in := node.InputDims[0]
	inLen, c := in[0], in[1]
	out := node.OutputDims[0]
	outLen := out[0]

	var pool, stride int
	var padBefore int
	switch l := node.Layer.(type) {
	case *graph.MaxPooling1DLayer:
		pool, stride = l.PoolSize, l.Stride
		if l.Padding == graph.PaddingSame {
			padBefore, _ = padOffsets(inLen, pool, stride, outLen)
		}
	case *graph.AveragePooling1DLayer:
		pool, stride = l.PoolSize, l.Stride
		if l.Padding == graph.PaddingSame {
			padBefore, _ = padOffsets(inLen, pool, stride, outLen)
		}
	}

	run := func() {
		for ot := 0; ot < outLen; ot++ {
			outBase := ot * c
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
						acc = v
						first = false
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
				output[outBase+ch] = acc
			}
		}
	}
	return Op{Run: run, CanInplace: false}, nil
}

// compileGlobalPooling2D reduces the full [H, W] extent to one value per
// channel (spec.md §4.1, §4.6).
func compileGlobalPooling2D(node *graph.Node, input, output []float32, isMax bool) (Op, error) {
	in := node.InputDims[0]
	inH, inW, c := in[0], in[1], in[2]
	n := inH * inW

	run := func() {
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
	return Op{Run: run, CanInplace: false}, nil
}
