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

// Package interp is a plain-Go reference evaluator for graph.Model,
// independent of internal/hwy and the compiler package entirely. Its only
// job is to be slow, obviously-correct, and a check that the compiled
// closures a given model produces compute the same thing (spec.md §8's
// round-trip oracle property: "compiled(model)(x) == interpret(model, x)
// within tolerance").
package interp

import (
	"fmt"
	"math"

	"github.com/nncompile/compilednn/graph"
)

// Run evaluates m against inputs (one []float32 per m.Inputs entry, in
// order) and returns one []float32 per m.Outputs entry, in order.
func Run(m *graph.Model, inputs [][]float32) ([][]float32, error) {
	if len(inputs) != len(m.Inputs) {
		return nil, fmt.Errorf("interp: got %d inputs, model declares %d", len(inputs), len(m.Inputs))
	}

	values := make([][][]float32, len(m.Nodes))
	inputOf := make(map[int]int) // node index -> position in m.Inputs, for the implicit input nodes
	for i, loc := range m.Inputs {
		inputOf[loc.NodeIndex] = i
	}

	for i, node := range m.Nodes {
		if _, isInput := node.Layer.(*graph.InputLayer); isInput {
			pos, ok := inputOf[i]
			if !ok {
				return nil, fmt.Errorf("interp: input node %d has no matching Model.Inputs entry", i)
			}
			values[i] = [][]float32{inputs[pos]}
			continue
		}

		nodeInputs := make([][]float32, len(node.Inputs))
		for j, loc := range node.Inputs {
			nodeInputs[j] = values[loc.NodeIndex][loc.OutputIndex]
		}

		out, err := eval(node, nodeInputs)
		if err != nil {
			return nil, fmt.Errorf("interp: node %d (%s): %w", i, node.Layer.Kind(), err)
		}
		values[i] = out
	}

	results := make([][]float32, len(m.Outputs))
	for i, loc := range m.Outputs {
		results[i] = values[loc.NodeIndex][loc.OutputIndex]
	}
	return results, nil
}

func eval(node *graph.Node, inputs [][]float32) ([][]float32, error) {
	dims := node.OutputDims[0]
	out := make([]float32, numElements(dims))

	switch l := node.Layer.(type) {
	case *graph.DenseLayer:
		inFeatures := node.InputDims[0][len(node.InputDims[0])-1]
		x := inputs[0]
		for j := 0; j < l.Units; j++ {
			var acc float32
			for k := 0; k < inFeatures; k++ {
				acc += x[k] * l.Weights[k*l.Units+j]
			}
			if l.Bias != nil {
				acc += l.Bias[j]
			}
			out[j] = acc
		}
		applyActivation(l.Activation, 0, out)
		return [][]float32{out}, nil

	case *graph.ReluLayer:
		for i, v := range inputs[0] {
			if v < 0 {
				if l.NegativeSlope != 0 {
					v *= l.NegativeSlope
				} else {
					v = 0
				}
			}
			if l.MaxValue != 0 && v > l.MaxValue {
				v = l.MaxValue
			}
			out[i] = v
		}
		return [][]float32{out}, nil

	case *graph.LeakyReluLayer:
		for i, v := range inputs[0] {
			if v < 0 {
				v *= l.Alpha
			}
			out[i] = v
		}
		return [][]float32{out}, nil

	case *graph.EluLayer:
		for i, v := range inputs[0] {
			if v < 0 {
				v = l.Alpha * (float32(math.Exp(float64(v))) - 1)
			}
			out[i] = v
		}
		return [][]float32{out}, nil

	case *graph.ThresholdedReluLayer:
		for i, v := range inputs[0] {
			if v <= l.Theta {
				v = 0
			}
			out[i] = v
		}
		return [][]float32{out}, nil

	case *graph.ActivationLayer:
		copy(out, inputs[0])
		if l.Activation == graph.ActSoftmax {
			softmax(dims, l.Axis, out)
		} else {
			applyActivation(l.Activation, 0, out)
		}
		return [][]float32{out}, nil

	case *graph.SoftmaxLayer:
		copy(out, inputs[0])
		softmax(dims, l.Axis, out)
		return [][]float32{out}, nil

	case *graph.BatchNormalizationLayer:
		channels := len(l.Factor)
		for i := 0; i < len(inputs[0]); i += channels {
			for c := 0; c < channels; c++ {
				out[i+c] = inputs[0][i+c]*l.Factor[c] + l.Offset[c]
			}
		}
		return [][]float32{out}, nil

	case *graph.DropoutLayer, *graph.ReshapeLayer, *graph.FlattenLayer:
		copy(out, inputs[0])
		return [][]float32{out}, nil

	case *graph.Conv1DLayer:
		return [][]float32{conv1D(l, node, inputs[0], out)}, nil
	case *graph.Conv2DLayer:
		return [][]float32{conv2D(l, node, inputs[0], out)}, nil
	case *graph.DepthwiseConv2DLayer:
		return [][]float32{depthwiseConv2D(l, node, inputs[0], out)}, nil
	case *graph.SeparableConv2DLayer:
		return [][]float32{separableConv2D(l, node, inputs[0], out)}, nil

	case *graph.MaxPooling2DLayer, *graph.AveragePooling2DLayer:
		pooling2D(node, inputs[0], out)
		return [][]float32{out}, nil
	case *graph.MaxPooling1DLayer, *graph.AveragePooling1DLayer:
		pooling1D(node, inputs[0], out)
		return [][]float32{out}, nil
	case *graph.GlobalMaxPooling2DLayer:
		globalPooling2D(node, inputs[0], out, true)
		return [][]float32{out}, nil
	case *graph.GlobalAveragePooling2DLayer:
		globalPooling2D(node, inputs[0], out, false)
		return [][]float32{out}, nil

	case *graph.ZeroPadding1DLayer:
		zeroPadding1D(l, node, inputs[0], out)
		return [][]float32{out}, nil
	case *graph.ZeroPadding2DLayer:
		zeroPadding2D(l, node, inputs[0], out)
		return [][]float32{out}, nil
	case *graph.Cropping2DLayer:
		cropping2D(l, node, inputs[0], out)
		return [][]float32{out}, nil
	case *graph.UpSampling2DLayer:
		upSampling2D(l, node, inputs[0], out)
		return [][]float32{out}, nil

	case *graph.ConcatenateLayer:
		concatenate(l, node, inputs, out)
		return [][]float32{out}, nil
	case *graph.AddLayer:
		merge(inputs, out, func(a, b float32) float32 { return a + b })
		return [][]float32{out}, nil
	case *graph.SubtractLayer:
		merge(inputs, out, func(a, b float32) float32 { return a - b })
		return [][]float32{out}, nil
	case *graph.MultiplyLayer:
		merge(inputs, out, func(a, b float32) float32 { return a * b })
		return [][]float32{out}, nil
	case *graph.MinimumLayer:
		merge(inputs, out, func(a, b float32) float32 {
			if a < b {
				return a
			}
			return b
		})
		return [][]float32{out}, nil
	case *graph.MaximumLayer:
		merge(inputs, out, func(a, b float32) float32 {
			if a > b {
				return a
			}
			return b
		})
		return [][]float32{out}, nil
	case *graph.AverageLayer:
		merge(inputs, out, func(a, b float32) float32 { return a + b })
		inv := 1 / float32(len(inputs))
		for i := range out {
			out[i] *= inv
		}
		return [][]float32{out}, nil

	default:
		return nil, fmt.Errorf("no reference evaluator for layer kind %q", node.Layer.Kind())
	}
}

func applyActivation(id graph.ActivationID, alpha float32, x []float32) {
	switch id {
	case graph.ActRelu:
		for i, v := range x {
			if v < 0 {
				v = 0
			}
			x[i] = v
		}
	case graph.ActTanh:
		for i, v := range x {
			x[i] = float32(math.Tanh(float64(v)))
		}
	case graph.ActSigmoid:
		for i, v := range x {
			x[i] = 1 / (1 + float32(math.Exp(float64(-v))))
		}
	case graph.ActHardSigmoid:
		for i, v := range x {
			v = 0.5 + v*0.2
			if v < 0 {
				v = 0
			}
			if v > 1 {
				v = 1
			}
			x[i] = v
		}
	case graph.ActElu:
		for i, v := range x {
			if v < 0 {
				v = float32(math.Exp(float64(v))) - 1
			}
			x[i] = v
		}
	case graph.ActSelu:
		const scale = 1.0507009873554805
		const a = 1.6732632423543772
		for i, v := range x {
			if v >= 0 {
				x[i] = scale * v
			} else {
				x[i] = scale * a * (float32(math.Exp(float64(v))) - 1)
			}
		}
	case graph.ActExponential:
		for i, v := range x {
			x[i] = float32(math.Exp(float64(v)))
		}
	case graph.ActSoftsign:
		for i, v := range x {
			a := v
			if a < 0 {
				a = -a
			}
			x[i] = v / (1 + a)
		}
	}
}

func numElements(dims []int) int {
	n := 1
	for _, d := range dims {
		n *= d
	}
	return n
}
