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

package compilednn

import (
	"math"
	"testing"

	"github.com/nncompile/compilednn/graph"
)

func almostEqual(a, b, tol float32) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= tol
}

func TestCompileDenseIdentity(t *testing.T) {
	m := &graph.Model{}
	in, _ := m.AddNode(&graph.InputLayer{Dims: []int{2}}, nil)
	dense, _ := m.AddNode(&graph.DenseLayer{
		Units:   2,
		Weights: []float32{1, 0, 0, 1},
		Bias:    []float32{0, 0},
	}, []graph.TensorLocation{{NodeIndex: in}})
	m.Inputs = []graph.TensorLocation{{NodeIndex: in}}
	m.Outputs = []graph.TensorLocation{{NodeIndex: dense}}

	settings := DefaultSettings()
	c, err := Compile(m, &settings)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	copy(c.Input(0), []float32{3, 4})
	c.Apply()
	got := c.Output(0)
	if got[0] != 3 || got[1] != 4 {
		t.Fatalf("got %v, want [3 4]", got)
	}
}

func TestCompileReluBasic(t *testing.T) {
	m := &graph.Model{}
	in, _ := m.AddNode(&graph.InputLayer{Dims: []int{3}}, nil)
	relu, _ := m.AddNode(&graph.ReluLayer{}, []graph.TensorLocation{{NodeIndex: in}})
	m.Inputs = []graph.TensorLocation{{NodeIndex: in}}
	m.Outputs = []graph.TensorLocation{{NodeIndex: relu}}

	settings := DefaultSettings()
	c, err := Compile(m, &settings)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	copy(c.Input(0), []float32{-1, 0, 2})
	c.Apply()
	want := []float32{0, 0, 2}
	got := c.Output(0)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

// TestCompileConv2DSamePadding exercises a 3x3 same-padded conv over a 4x4
// single-channel input, checking an interior pixel (fully covered, no
// zero-padding contribution) against a hand-computed sum.
func TestCompileConv2DSamePadding(t *testing.T) {
	m := &graph.Model{}
	in, _ := m.AddNode(&graph.InputLayer{Dims: []int{4, 4, 1}}, nil)

	weights := make([]float32, 3*3*1*1)
	for i := range weights {
		weights[i] = 1
	}
	conv, _ := m.AddNode(&graph.Conv2DLayer{
		Filters: 1, KernelH: 3, KernelW: 3, StrideH: 1, StrideW: 1,
		Padding: graph.PaddingSame,
		Weights: weights,
		Bias:    []float32{0},
	}, []graph.TensorLocation{{NodeIndex: in}})
	m.Inputs = []graph.TensorLocation{{NodeIndex: in}}
	m.Outputs = []graph.TensorLocation{{NodeIndex: conv}}

	settings := DefaultSettings()
	c, err := Compile(m, &settings)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	input := c.Input(0)
	for i := range input {
		input[i] = 1
	}
	c.Apply()
	out := c.Output(0)
	// Output position (1,1) (0-indexed) has its full 3x3 receptive field
	// inside the 4x4 input, so the sum is 9.
	if out[1*4+1] != 9 {
		t.Fatalf("interior pixel = %v, want 9", out[1*4+1])
	}
	// Corner (0,0) only sees a 2x2 neighborhood inside bounds.
	if out[0] != 4 {
		t.Fatalf("corner pixel = %v, want 4", out[0])
	}
}

func TestCompileConcatenateAxisMinusOne(t *testing.T) {
	m := &graph.Model{}
	a, _ := m.AddNode(&graph.InputLayer{Dims: []int{2}}, nil)
	b, _ := m.AddNode(&graph.InputLayer{Dims: []int{3}}, nil)
	cat, err := m.AddNode(&graph.ConcatenateLayer{Axis: -1}, []graph.TensorLocation{{NodeIndex: a}, {NodeIndex: b}})
	if err != nil {
		t.Fatalf("AddNode: %v", err)
	}
	m.Inputs = []graph.TensorLocation{{NodeIndex: a}, {NodeIndex: b}}
	m.Outputs = []graph.TensorLocation{{NodeIndex: cat}}

	settings := DefaultSettings()
	c, err := Compile(m, &settings)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	copy(c.Input(0), []float32{1, 2})
	copy(c.Input(1), []float32{3, 4, 5})
	c.Apply()
	want := []float32{1, 2, 3, 4, 5}
	got := c.Output(0)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestCompileAveragePooling2D(t *testing.T) {
	m := &graph.Model{}
	in, _ := m.AddNode(&graph.InputLayer{Dims: []int{2, 2, 1}}, nil)
	pool, _ := m.AddNode(&graph.AveragePooling2DLayer{
		PoolH: 2, PoolW: 2, StrideH: 2, StrideW: 2, Padding: graph.PaddingValid,
	}, []graph.TensorLocation{{NodeIndex: in}})
	m.Inputs = []graph.TensorLocation{{NodeIndex: in}}
	m.Outputs = []graph.TensorLocation{{NodeIndex: pool}}

	settings := DefaultSettings()
	c, err := Compile(m, &settings)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	copy(c.Input(0), []float32{1, 2, 3, 4})
	c.Apply()
	if got := c.Output(0)[0]; got != 2.5 {
		t.Fatalf("got %v, want 2.5", got)
	}
}

func TestCompileSoftmax(t *testing.T) {
	m := &graph.Model{}
	in, _ := m.AddNode(&graph.InputLayer{Dims: []int{3}}, nil)
	sm, _ := m.AddNode(&graph.SoftmaxLayer{Axis: -1}, []graph.TensorLocation{{NodeIndex: in}})
	m.Inputs = []graph.TensorLocation{{NodeIndex: in}}
	m.Outputs = []graph.TensorLocation{{NodeIndex: sm}}

	settings := DefaultSettings()
	c, err := Compile(m, &settings)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	copy(c.Input(0), []float32{1, 1, 1})
	c.Apply()
	out := c.Output(0)
	var sum float32
	for _, v := range out {
		sum += v
		if !almostEqual(v, 1.0/3.0, 1e-3) {
			t.Fatalf("expected uniform softmax, got %v", out)
		}
	}
	if !almostEqual(sum, 1, 1e-3) {
		t.Fatalf("softmax output should sum to 1, got %v", sum)
	}
}

// TestCompileZeroWeightConvIsZero checks that a conv with all-zero weights
// and bias produces an all-zero output for every attached activation that
// maps 0 to 0 (relu, tanh, elu, softsign, linear). sigmoid(0)=0.5,
// hardSigmoid(0)=0.5 and exponential(0)=1 do not, so the test restricts
// itself to activations with a zero fixed point.
func TestCompileZeroWeightConvIsZero(t *testing.T) {
	for _, act := range []graph.ActivationID{graph.ActRelu, graph.ActTanh, graph.ActElu, graph.ActSoftsign} {
		m := &graph.Model{}
		in, _ := m.AddNode(&graph.InputLayer{Dims: []int{3, 3, 2}}, nil)
		conv, _ := m.AddNode(&graph.Conv2DLayer{
			Filters: 2, KernelH: 3, KernelW: 3, StrideH: 1, StrideW: 1,
			Padding:    graph.PaddingSame,
			Activation: act,
			Weights:    make([]float32, 3*3*2*2),
			Bias:       make([]float32, 2),
		}, []graph.TensorLocation{{NodeIndex: in}})
		m.Inputs = []graph.TensorLocation{{NodeIndex: in}}
		m.Outputs = []graph.TensorLocation{{NodeIndex: conv}}

		settings := DefaultSettings()
		c, err := Compile(m, &settings)
		if err != nil {
			t.Fatalf("act %v: Compile: %v", act, err)
		}
		input := c.Input(0)
		for i := range input {
			input[i] = float32(i) - 4
		}
		c.Apply()
		for _, v := range c.Output(0) {
			if v != 0 {
				t.Fatalf("act %v: got %v, want all-zero output", act, v)
			}
		}
	}
}

// TestCompileBatchNormIdentity checks factor=1, offset=0 is the identity
// transform.
func TestCompileBatchNormIdentity(t *testing.T) {
	m := &graph.Model{}
	in, _ := m.AddNode(&graph.InputLayer{Dims: []int{4}}, nil)
	bn, _ := m.AddNode(&graph.BatchNormalizationLayer{
		Axis:   -1,
		Factor: []float32{1, 1, 1, 1},
		Offset: []float32{0, 0, 0, 0},
	}, []graph.TensorLocation{{NodeIndex: in}})
	m.Inputs = []graph.TensorLocation{{NodeIndex: in}}
	m.Outputs = []graph.TensorLocation{{NodeIndex: bn}}

	settings := DefaultSettings()
	c, err := Compile(m, &settings)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	want := []float32{1, -2, 3.5, 0}
	copy(c.Input(0), want)
	c.Apply()
	got := c.Output(0)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

// TestCompileConvBatchNormFusionEquivalence checks that Compile's
// internal fuseConvBatchNorm pass — which runs on the "unfused" model
// below and rewrites its conv's weights/bias in place before arena.Plan
// ever sees the graph — produces the same output as a model built with
// the fusion already done by hand. If fuseConvBatchNorm regressed into a
// no-op, this would still pass as long as compiler/batchnorm.go's
// separate op were correct, so TestFuseConvBatchNormMutatesConvInPlace
// below additionally asserts the pass actually ran.
func TestCompileConvBatchNormFusionEquivalence(t *testing.T) {
	kernel := []float32{1, -1, 0.5, 2}
	bias := []float32{0.25}
	factor := float32(1.5)
	offset := float32(-0.5)

	unfused := &graph.Model{}
	in1, _ := unfused.AddNode(&graph.InputLayer{Dims: []int{2, 2, 1}}, nil)
	conv1, _ := unfused.AddNode(&graph.Conv2DLayer{
		Filters: 1, KernelH: 2, KernelW: 2, StrideH: 1, StrideW: 1,
		Padding: graph.PaddingValid, Weights: kernel, Bias: bias,
	}, []graph.TensorLocation{{NodeIndex: in1}})
	bn1, _ := unfused.AddNode(&graph.BatchNormalizationLayer{
		Axis: -1, Factor: []float32{factor}, Offset: []float32{offset},
	}, []graph.TensorLocation{{NodeIndex: conv1}})
	unfused.Inputs = []graph.TensorLocation{{NodeIndex: in1}}
	unfused.Outputs = []graph.TensorLocation{{NodeIndex: bn1}}

	fusedKernel := make([]float32, len(kernel))
	for i, w := range kernel {
		fusedKernel[i] = w * factor
	}
	fusedBias := []float32{bias[0]*factor + offset}

	fused := &graph.Model{}
	in2, _ := fused.AddNode(&graph.InputLayer{Dims: []int{2, 2, 1}}, nil)
	conv2, _ := fused.AddNode(&graph.Conv2DLayer{
		Filters: 1, KernelH: 2, KernelW: 2, StrideH: 1, StrideW: 1,
		Padding: graph.PaddingValid, Weights: fusedKernel, Bias: fusedBias,
	}, []graph.TensorLocation{{NodeIndex: in2}})
	fused.Inputs = []graph.TensorLocation{{NodeIndex: in2}}
	fused.Outputs = []graph.TensorLocation{{NodeIndex: conv2}}

	s1, s2 := DefaultSettings(), DefaultSettings()
	cUnfused, err := Compile(unfused, &s1)
	if err != nil {
		t.Fatalf("Compile unfused: %v", err)
	}
	cFused, err := Compile(fused, &s2)
	if err != nil {
		t.Fatalf("Compile fused: %v", err)
	}

	input := []float32{1, 2, 3, 4}
	copy(cUnfused.Input(0), input)
	copy(cFused.Input(0), input)
	cUnfused.Apply()
	cFused.Apply()

	got, want := cFused.Output(0)[0], cUnfused.Output(0)[0]
	if !almostEqual(got, want, 1e-4) {
		t.Fatalf("fused = %v, unfused = %v, want equal", got, want)
	}
}

// TestFuseConvBatchNormMutatesConvInPlace checks that fuseConvBatchNorm
// itself rewrites the conv's weights/bias and reduces the batchnorm to
// the identity, rather than relying on output equivalence alone to catch
// a regression where the pass silently stops running.
func TestFuseConvBatchNormMutatesConvInPlace(t *testing.T) {
	m := &graph.Model{}
	in, _ := m.AddNode(&graph.InputLayer{Dims: []int{2, 2, 1}}, nil)
	conv, _ := m.AddNode(&graph.Conv2DLayer{
		Filters: 1, KernelH: 2, KernelW: 2, StrideH: 1, StrideW: 1,
		Padding: graph.PaddingValid,
		Weights: []float32{1, -1, 0.5, 2},
		Bias:    []float32{0.25},
	}, []graph.TensorLocation{{NodeIndex: in}})
	bn, _ := m.AddNode(&graph.BatchNormalizationLayer{
		Axis: -1, Factor: []float32{1.5}, Offset: []float32{-0.5},
	}, []graph.TensorLocation{{NodeIndex: conv}})
	m.Inputs = []graph.TensorLocation{{NodeIndex: in}}
	m.Outputs = []graph.TensorLocation{{NodeIndex: bn}}

	fuseConvBatchNorm(m)

	convLayer := m.Nodes[conv].Layer.(*graph.Conv2DLayer)
	wantWeights := []float32{1.5, -1.5, 0.75, 3}
	for i, w := range wantWeights {
		if !almostEqual(convLayer.Weights[i], w, 1e-6) {
			t.Fatalf("conv.Weights[%d] = %v, want %v", i, convLayer.Weights[i], w)
		}
	}
	if wantBias := float32(0.25*1.5 - 0.5); !almostEqual(convLayer.Bias[0], wantBias, 1e-6) {
		t.Fatalf("conv.Bias[0] = %v, want %v", convLayer.Bias[0], wantBias)
	}

	bnLayer := m.Nodes[bn].Layer.(*graph.BatchNormalizationLayer)
	if bnLayer.Factor[0] != 1 || bnLayer.Offset[0] != 0 {
		t.Fatalf("fused batchnorm should degenerate to identity, got factor=%v offset=%v", bnLayer.Factor, bnLayer.Offset)
	}
}

// TestFuseConvBatchNormSkipsWhenConvIsModelOutput checks that fusion
// leaves a conv's weights untouched when the conv's own output is also
// an external model output, since fusing would silently change what
// Output(i) reports for that conv.
func TestFuseConvBatchNormSkipsWhenConvIsModelOutput(t *testing.T) {
	m := &graph.Model{}
	in, _ := m.AddNode(&graph.InputLayer{Dims: []int{2, 2, 1}}, nil)
	origWeights := []float32{1, -1, 0.5, 2}
	weights := append([]float32(nil), origWeights...)
	conv, _ := m.AddNode(&graph.Conv2DLayer{
		Filters: 1, KernelH: 2, KernelW: 2, StrideH: 1, StrideW: 1,
		Padding: graph.PaddingValid,
		Weights: weights,
		Bias:    []float32{0.25},
	}, []graph.TensorLocation{{NodeIndex: in}})
	bn, _ := m.AddNode(&graph.BatchNormalizationLayer{
		Axis: -1, Factor: []float32{1.5}, Offset: []float32{-0.5},
	}, []graph.TensorLocation{{NodeIndex: conv}})
	m.Inputs = []graph.TensorLocation{{NodeIndex: in}}
	m.Outputs = []graph.TensorLocation{{NodeIndex: conv}, {NodeIndex: bn}}

	fuseConvBatchNorm(m)

	convLayer := m.Nodes[conv].Layer.(*graph.Conv2DLayer)
	for i, w := range origWeights {
		if convLayer.Weights[i] != w {
			t.Fatalf("conv.Weights[%d] changed to %v, want untouched %v (conv is itself a model output)", i, convLayer.Weights[i], w)
		}
	}
}

// TestCompileParallelIndependentInstances checks that eight CompiledNN
// instances from the same Model Apply concurrently without interfering,
// since each holds its own arena (spec.md §5).
func TestCompileParallelIndependentInstances(t *testing.T) {
	m := &graph.Model{}
	in, _ := m.AddNode(&graph.InputLayer{Dims: []int{2}}, nil)
	dense, _ := m.AddNode(&graph.DenseLayer{
		Units:   1,
		Weights: []float32{1, 1},
		Bias:    []float32{0},
	}, []graph.TensorLocation{{NodeIndex: in}})
	m.Inputs = []graph.TensorLocation{{NodeIndex: in}}
	m.Outputs = []graph.TensorLocation{{NodeIndex: dense}}

	for i := 0; i < 8; i++ {
		i := i
		t.Run("instance", func(t *testing.T) {
			t.Parallel()
			settings := DefaultSettings()
			c, err := Compile(m, &settings)
			if err != nil {
				t.Fatalf("Compile: %v", err)
			}
			x := float32(i)
			copy(c.Input(0), []float32{x, x + 1})
			c.Apply()
			want := 2*x + 1
			if got := c.Output(0)[0]; !almostEqual(got, want, 1e-5) {
				t.Fatalf("got %v, want %v", got, want)
			}
		})
	}
}

func TestCompileInvalidGraphRejected(t *testing.T) {
	m := &graph.Model{}
	in, _ := m.AddNode(&graph.InputLayer{Dims: []int{2}}, nil)
	m.Inputs = []graph.TensorLocation{{NodeIndex: in}}
	// Outputs references a node index that was never appended.
	m.Outputs = []graph.TensorLocation{{NodeIndex: 99}}

	settings := DefaultSettings()
	if _, err := Compile(m, &settings); err == nil {
		t.Fatal("expected an error for a model whose output references a nonexistent node")
	}
}

func TestConstrictNeverUpgrades(t *testing.T) {
	s := CompilationSettings{UseSSE42: false, UseAVX2: false, UseFMA3: false}
	s.Constrict()
	if s.UseSSE42 || s.UseAVX2 || s.UseFMA3 {
		t.Fatal("Constrict must never turn a disabled field back on")
	}
}

func TestSigmoidFixedPointNotAffectedByZeroWeights(t *testing.T) {
	// Documents one of the exceptions called out in
	// TestCompileZeroWeightConvIsZero: sigmoid(0) = 0.5, not 0.
	if got := 1 / (1 + math.Exp(0)); got != 0.5 {
		t.Fatalf("sigmoid(0) = %v, want 0.5", got)
	}
}
