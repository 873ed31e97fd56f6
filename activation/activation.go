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

// Package activation is the activation-function handler (spec.md §4.9):
// it tracks the set of distinct (id, parameters) descriptors in use,
// shares one constant block across descriptors with identical
// parameters, reports how many spare accumulator lanes each activation
// needs, and applies the function in place over a float32 slice.
package activation

import (
	"fmt"

	actconst "github.com/nncompile/compilednn/internal/hwy/contrib/activation"
	actmath "github.com/nncompile/compilednn/internal/hwy/contrib/math"
)

// ID is the closed activation set spec.md §3 enumerates for a layer's
// "activation" parameter.
type ID int

const (
	Linear ID = iota
	Relu
	Tanh
	Sigmoid
	HardSigmoid
	Elu
	Selu
	Exponential
	Softsign
	Softmax
)

// Desc describes one activation instantiation: its kind plus the
// parameters that change its constant block (e.g. ELU's alpha). Two
// Descs with equal Kind and Params share a constant block (spec.md §4.9
// "distinct activations sharing identical parameters share a single
// constant block (hash-key: (id, params))").
type Desc struct {
	Kind   ID
	Alpha  float32 // elu
	MaxVal float32 // relu
	Slope  float32 // relu negative slope
}

// key is the hashable form of a Desc used to dedupe constant blocks.
type key struct {
	Kind   ID
	Alpha  float32
	MaxVal float32
	Slope  float32
}

func (d Desc) key() key { return key(d) }

// block is one shared constant block, holding the first descriptor that
// registered its key.
type block struct {
	desc Desc
}

// Handler tracks every distinct activation descriptor a compile uses and
// shares constant blocks across descriptors with identical parameters.
type Handler struct {
	// Settings controls exp-approximation use (spec.md §3
	// useExpApproxInSigmoid/useExpApproxInTanh).
	UseExpApproxInSigmoid bool
	UseExpApproxInTanh    bool

	blocks map[key]*block
}

// NewHandler returns a Handler ready to register descriptors.
func NewHandler(useExpApproxInSigmoid, useExpApproxInTanh bool) *Handler {
	return &Handler{
		UseExpApproxInSigmoid: useExpApproxInSigmoid,
		UseExpApproxInTanh:    useExpApproxInTanh,
		blocks:                map[key]*block{},
	}
}

// DefineData registers a descriptor, allocating a new constant block only
// if no equal-parameter descriptor has been seen yet (spec.md §4.9's
// DefineData pass).
func (h *Handler) DefineData(d Desc) {
	k := d.key()
	if _, ok := h.blocks[k]; !ok {
		h.blocks[k] = &block{desc: d}
	}
}

// NumBlocks reports how many distinct constant blocks are in use, for
// tests that assert sharing actually happened.
func (h *Handler) NumBlocks() int { return len(h.blocks) }

// NeededSpares reports the number of spare accumulator lanes this
// descriptor needs (spec.md §4.9's neededSpares(desc), used by op
// compilers to size their accumulator tile). relu with a negative slope
// needs one spare for the blend mask; elu/selu need one for the exp
// intermediate; everything else needs none.
func NeededSpares(d Desc) int {
	switch d.Kind {
	case Relu:
		if d.Slope != 0 {
			return 1
		}
		return 0
	case Elu, Selu:
		return 1
	default:
		return 0
	}
}

// Apply transforms x in place according to d (spec.md §4.9's Apply pass,
// minus the register-level framing: this is the scalar reference that
// every compiled closure's tail loop, and the reference interpreter,
// both call).
func (h *Handler) Apply(d Desc, x []float32) error {
	switch d.Kind {
	case Linear:
		return nil
	case Relu:
		applyRelu(d, x)
		return nil
	case Tanh:
		for i, v := range x {
			if h.UseExpApproxInTanh {
				x[i] = tanhApprox(v)
			} else {
				x[i] = actmath.Tanh32Scalar(v)
			}
		}
		return nil
	case Sigmoid:
		for i, v := range x {
			if h.UseExpApproxInSigmoid {
				x[i] = sigmoidApprox(v)
			} else {
				x[i] = sigmoidExact(v)
			}
		}
		return nil
	case HardSigmoid:
		for i, v := range x {
			x[i] = hardSigmoid(v)
		}
		return nil
	case Elu:
		for i, v := range x {
			x[i] = elu(v, d.Alpha)
		}
		return nil
	case Selu:
		for i, v := range x {
			x[i] = selu(v)
		}
		return nil
	case Exponential:
		for i, v := range x {
			x[i] = actmath.Exp32Scalar(v)
		}
		return nil
	case Softsign:
		for i, v := range x {
			x[i] = v / (1 + abs32(v))
		}
		return nil
	default:
		return fmt.Errorf("activation: %w: kind %d has no scalar Apply (softmax is applied by compiler/softmax.go)", errUnsupported, d.Kind)
	}
}

func applyRelu(d Desc, x []float32) {
	for i, v := range x {
		out := v
		if out < 0 {
			if d.Slope != 0 {
				out *= d.Slope
			} else {
				out = 0
			}
		}
		if d.MaxVal != 0 && out > d.MaxVal {
			out = d.MaxVal
		}
		x[i] = out
	}
}

func elu(x, alpha float32) float32 {
	if x >= 0 {
		return x
	}
	return alpha * (actmath.Exp32Scalar(x) - 1)
}

// selu constants per Keras's default (scale, alpha) for SELU.
const (
	seluScale = 1.0507009873554805
	seluAlpha = 1.6732632423543772
)

func selu(x float32) float32 {
	if x >= 0 {
		return seluScale * x
	}
	return seluScale * seluAlpha * (actmath.Exp32Scalar(x) - 1)
}

func hardSigmoid(x float32) float32 {
	v := actconst.HalfF32 + x*0.2
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func sigmoidExact(x float32) float32 {
	return actconst.OneF32 / (actconst.OneF32 + actmath.Exp32Scalar(-x))
}

func abs32(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
