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

package activation

import (
	"math"
	"testing"
)

func TestReluBasic(t *testing.T) {
	h := NewHandler(false, false)
	x := []float32{-1.5, 0.0, 2.0, -0.25}
	if err := h.Apply(Desc{Kind: Relu}, x); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	want := []float32{0, 0, 2, 0}
	for i := range want {
		if x[i] != want[i] {
			t.Fatalf("relu[%d] = %v, want %v", i, x[i], want[i])
		}
	}
}

func TestReluMaxValueAndSlope(t *testing.T) {
	h := NewHandler(false, false)
	x := []float32{-2, 5}
	if err := h.Apply(Desc{Kind: Relu, MaxVal: 3, Slope: 0.1}, x); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if x[0] != -0.2 {
		t.Fatalf("negative branch with slope: got %v, want -0.2", x[0])
	}
	if x[1] != 3 {
		t.Fatalf("clamp to MaxVal: got %v, want 3", x[1])
	}
}

func TestSigmoidExactMatchesMath(t *testing.T) {
	h := NewHandler(false, false)
	x := []float32{0, 1, -1}
	if err := h.Apply(Desc{Kind: Sigmoid}, x); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if math.Abs(float64(x[0])-0.5) > 1e-6 {
		t.Fatalf("sigmoid(0) = %v, want 0.5", x[0])
	}
}

func TestExpApproxWithinSchraudolphBound(t *testing.T) {
	inputs := []float32{-2, -1, -0.5, 0, 0.5, 1, 2}
	for _, v := range inputs {
		got := ExpApprox(v)
		want := float32(math.Exp(float64(v)))
		relErr := math.Abs(float64(got-want)) / float64(want)
		if relErr > 5e-2 {
			t.Fatalf("ExpApprox(%v) = %v, want ~%v (rel err %v > 5e-2)", v, got, want, relErr)
		}
	}
}

func TestDefineDataSharesBlockByParams(t *testing.T) {
	h := NewHandler(false, false)
	h.DefineData(Desc{Kind: Elu, Alpha: 1.0})
	h.DefineData(Desc{Kind: Elu, Alpha: 1.0})
	h.DefineData(Desc{Kind: Elu, Alpha: 2.0})
	if got := h.NumBlocks(); got != 2 {
		t.Fatalf("NumBlocks = %d, want 2 (two distinct alphas)", got)
	}
}

func TestNeededSparesForLeakyRelu(t *testing.T) {
	if NeededSpares(Desc{Kind: Relu}) != 0 {
		t.Fatalf("plain relu needs no spares")
	}
	if NeededSpares(Desc{Kind: Relu, Slope: 0.1}) != 1 {
		t.Fatalf("leaky relu needs one spare for the blend mask")
	}
	if NeededSpares(Desc{Kind: Elu}) != 1 {
		t.Fatalf("elu needs one spare for the exp intermediate")
	}
}
