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

// Package compiler holds the operation compilers: one emitter per layer
// kind (spec.md §4.3-§4.10). "Emitting" a node means building a
// shape-specialized closure over internal/hwy's Vec/Tile primitives and
// the node's preassigned buffer slices — the idiomatic-Go realization of
// spec.md §4.3's "compile(asm, activationHandler, input, output)" against
// a register-level code-generation surface (see SPEC_FULL.md §1).
// Each emitter is a free function, not a method on an object hierarchy
// (spec.md §9 Design Notes: "Emitter as a function, not an object
// hierarchy").
package compiler

import (
	"errors"
	"fmt"

	"github.com/nncompile/compilednn/activation"
	"github.com/nncompile/compilednn/graph"
)

// ErrCompile is the sentinel for spec.md §7's CompileError kind: an
// emitter hit an unimplemented fast-path or rejected a shape it cannot
// handle.
var ErrCompile = errors.New("compile error")

// Op is the result of compiling one node: a closure that performs the
// node's computation over its preassigned buffers, plus whether the
// emitted closure tolerates input/output aliasing. CanInplace equals
// Layer.CanBeInplace for every kind except depthwise conv2d and an
// activation layer naming softmax, which report false; the arena planner
// decides aliasing from Layer.CanBeInplace, not from this field.
type Op struct {
	Run        func()
	CanInplace bool
}

// activationDesc converts a graph.ActivationID (a layer's built-in
// "activation" parameter) into the activation package's Desc. Standalone
// activation-family layers (ReluLayer, EluLayer, ...) build their own Desc
// directly in their own Compile* function instead of going through this.
func activationDesc(id graph.ActivationID) activation.Desc {
	switch id {
	case graph.ActRelu:
		return activation.Desc{Kind: activation.Relu}
	case graph.ActTanh:
		return activation.Desc{Kind: activation.Tanh}
	case graph.ActSigmoid:
		return activation.Desc{Kind: activation.Sigmoid}
	case graph.ActHardSigmoid:
		return activation.Desc{Kind: activation.HardSigmoid}
	case graph.ActElu:
		return activation.Desc{Kind: activation.Elu, Alpha: 1.0}
	case graph.ActSelu:
		return activation.Desc{Kind: activation.Selu}
	case graph.ActExponential:
		return activation.Desc{Kind: activation.Exponential}
	case graph.ActSoftsign:
		return activation.Desc{Kind: activation.Softsign}
	default:
		return activation.Desc{Kind: activation.Linear}
	}
}

// Compile dispatches on the node's layer kind and returns its Op. inputs
// holds one preassigned buffer slice per node.Inputs entry (in order);
// output is the node's single preassigned output buffer (every kind in
// the closed set has exactly one output, the quantized conv and softmax
// included). xmmRegs is the constricted CompilationSettings.XMMRegs,
// needed only by the quantized conv fast path's register-budget
// precondition (spec.md §4.4).
func Compile(node *graph.Node, inputs [][]float32, output []float32, act *activation.Handler, xmmRegs int) (Op, error) {
	switch l := node.Layer.(type) {
	case *graph.InputLayer:
		return Op{Run: func() {}, CanInplace: false}, nil
	case *graph.DenseLayer:
		return compileDense(l, node, inputs[0], output, act)
	case *graph.ActivationLayer:
		return compileActivationLayer(l, node, inputs[0], output, act)
	case *graph.ReluLayer:
		return compileRelu(l, inputs[0], output, act)
	case *graph.LeakyReluLayer:
		return compileLeakyRelu(l, inputs[0], output, act)
	case *graph.EluLayer:
		return compileElu(l, inputs[0], output, act)
	case *graph.ThresholdedReluLayer:
		return compileThresholdedRelu(l, inputs[0], output)
	case *graph.SoftmaxLayer:
		return compileSoftmax(l, node, inputs[0], output, act)
	case *graph.Conv2DLayer:
		return compileConv2D(l, node, inputs[0], output, act)
	case *graph.DepthwiseConv2DLayer:
		return compileDepthwiseConv2D(l, node, inputs[0], output, act)
	case *graph.SeparableConv2DLayer:
		return compileSeparableConv2D(l, node, inputs[0], output, act)
	case *graph.Conv1DLayer:
		return compileConv1D(l, node, inputs[0], output, act)
	case *graph.QuantizedInputConvStrided4x4WithReLULayer:
		return compileQuantizedInputConvStrided4x4WithReLU(l, node, inputs[0], output, xmmRegs)
	case *graph.MaxPooling2DLayer:
		return compilePooling2D(node, inputs[0], output, true, false)
	case *graph.AveragePooling2DLayer:
		return compilePooling2D(node, inputs[0], output, false, false)
	case *graph.MaxPooling1DLayer:
		return compilePooling1D(node, inputs[0], output, true)
	case *graph.AveragePooling1DLayer:
		return compilePooling1D(node, inputs[0], output, false)
	case *graph.GlobalMaxPooling2DLayer:
		return compileGlobalPooling2D(node, inputs[0], output, true)
	case *graph.GlobalAveragePooling2DLayer:
		return compileGlobalPooling2D(node, inputs[0], output, false)
	case *graph.BatchNormalizationLayer:
		return compileBatchNorm(l, inputs[0], output)
	case *graph.DropoutLayer:
		return compileIdentity(inputs[0], output), nil
	case *graph.ReshapeLayer:
		return compileIdentity(inputs[0], output), nil
	case *graph.FlattenLayer:
		return compileIdentity(inputs[0], output), nil
	case *graph.ZeroPadding1DLayer:
		return compileZeroPadding1D(l, node, inputs[0], output)
	case *graph.ZeroPadding2DLayer:
		return compileZeroPadding2D(l, node, inputs[0], output)
	case *graph.Cropping2DLayer:
		return compileCropping2D(l, node, inputs[0], output)
	case *graph.UpSampling2DLayer:
		return compileUpSampling2D(l, node, inputs[0], output)
	case *graph.ConcatenateLayer:
		return compileConcatenate(l, node, inputs, output)
	case *graph.AddLayer:
		return compileMerge(inputs, output, mergeAdd), nil
	case *graph.SubtractLayer:
		return compileMerge(inputs, output, mergeSub), nil
	case *graph.MultiplyLayer:
		return compileMerge(inputs, output, mergeMul), nil
	case *graph.AverageLayer:
		return compileAverage(inputs, output), nil
	case *graph.MinimumLayer:
		return compileMerge(inputs, output, mergeMin), nil
	case *graph.MaximumLayer:
		return compileMerge(inputs, output, mergeMax), nil
	default:
		return Op{}, fmt.Errorf("compiler: %w: no emitter for layer kind %q", ErrCompile, node.Layer.Kind())
	}
}

func compileIdentity(input, output []float32) Op {
	return Op{
		Run: func() {
			if &input[0] == &output[0] {
				return
			}
			copy(output, input)
		},
		CanInplace: true,
	}
}
