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
)

func compileActivationLayer(l *graph.ActivationLayer, node *graph.Node, input, output []float32, act *activation.Handler) (Op, error) {
	if l.Activation == graph.ActSoftmax {
		return compileSoftmax(&graph.SoftmaxLayer{Axis: l.Axis}, node, input, output, act)
	}
	desc := activationDesc(l.Activation)
	act.DefineData(desc)
	return Op{
		Run: func() {
			copyIfNeeded(input, output)
			if err := act.Apply(desc, output); err != nil {
				panic(err)
			}
		},
		CanInplace: true,
	}, nil
}

func compileRelu(l *graph.ReluLayer, input, output []float32, act *activation.Handler) (Op, error) {
	desc := activation.Desc{Kind: activation.Relu, MaxVal: l.MaxValue, Slope: l.NegativeSlope}
	act.DefineData(desc)
	return Op{
		Run: func() {
			copyIfNeeded(input, output)
			if err := act.Apply(desc, output); err != nil {
				panic(err)
			}
		},
		CanInplace: true,
	}, nil
}

func compileLeakyRelu(l *graph.LeakyReluLayer, input, output []float32, act *activation.Handler) (Op, error) {
	desc := activation.Desc{Kind: activation.Relu, Slope: l.Alpha}
	act.DefineData(desc)
	return Op{
		Run: func() {
			copyIfNeeded(input, output)
			if err := act.Apply(desc, output); err != nil {
				panic(err)
			}
		},
		CanInplace: true,
	}, nil
}

func compileElu(l *graph.EluLayer, input, output []float32, act *activation.Handler) (Op, error) {
	desc := activation.Desc{Kind: activation.Elu, Alpha: l.Alpha}
	act.DefineData(desc)
	return Op{
		Run: func() {
			copyIfNeeded(input, output)
			if err := act.Apply(desc, output); err != nil {
				panic(err)
			}
		},
		CanInplace: true,
	}, nil
}

func compileThresholdedRelu(l *graph.ThresholdedReluLayer, input, output []float32) (Op, error) {
	theta := l.Theta
	return Op{
		Run: func() {
			for i, v := range input {
				if v > theta {
					output[i] = v
				} else {
					output[i] = 0
				}
			}
		},
		CanInplace: true,
	}, nil
}

func copyIfNeeded(input, output []float32) {
	if len(input) == 0 || &input[0] == &output[0] {
		return
	}
	copy(output, input)
}
