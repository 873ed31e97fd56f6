// Copyright 2025 go-highway Authors
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

package hwy

import "math"

// Float16 is an IEEE-754 binary16 value stored as its raw bit pattern.
// The compiler never uses Float16 tensors itself (model weights and
// activations are float32, or uint8 for quantized input); it exists so the
// per-precision constant tables and the Float16 cases of the package's type
// switches compile unmodified from the vector library this package is
// adapted from. It is not a member of the Lanes constraint.
type Float16 uint16

// BFloat16 is a bfloat16 value (top 16 bits of a float32) stored as its raw
// bit pattern.
type BFloat16 uint16

// Float32 widens f to a float32.
func (f Float16) Float32() float32 {
	bits := uint32(f)
	sign := bits >> 15
	exp := (bits >> 10) & 0x1F
	mant := bits & 0x3FF

	var out uint32
	switch {
	case exp == 0 && mant == 0:
		out = sign << 31
	case exp == 0x1F:
		out = (sign << 31) | (0xFF << 23) | (mant << 13)
	case exp == 0:
		// Subnormal float16: normalize into float32's wider exponent range.
		e := 0
		for mant&0x400 == 0 {
			mant <<= 1
			e--
		}
		mant &= 0x3FF
		exp32 := uint32(127 - 15 + e + 1)
		out = (sign << 31) | (exp32 << 23) | (mant << 13)
	default:
		exp32 := exp - 15 + 127
		out = (sign << 31) | (exp32 << 23) | (mant << 13)
	}
	return math.Float32frombits(out)
}

// Float32ToFloat16 narrows f to a Float16, rounding to nearest-even.
func Float32ToFloat16(f float32) Float16 {
	bits := math.Float32bits(f)
	sign := uint16((bits >> 16) & 0x8000)
	exp := int32((bits>>23)&0xFF) - 127 + 15
	mant := bits & 0x7FFFFF

	switch {
	case exp >= 0x1F:
		if (bits>>23)&0xFF == 0xFF && mant != 0 {
			return Float16(sign | 0x7E00) // NaN
		}
		return Float16(sign | 0x7C00) // Inf / overflow -> Inf
	case exp <= 0:
		// Too small to represent as normal float16; flush to zero.
		return Float16(sign)
	default:
		h := uint32(exp)<<10 | mant>>13
		if rem := mant & 0x1FFF; rem > 0x1000 || (rem == 0x1000 && h&1 == 1) {
			h++ // a mantissa carry moves into the exponent; 0x7C00 is Inf
		}
		return Float16(sign | uint16(h))
	}
}

// Float32 widens b to a float32.
func (b BFloat16) Float32() float32 {
	return math.Float32frombits(uint32(b) << 16)
}

// Float32ToBFloat16 narrows f to a BFloat16 by dropping the low 16 bits,
// rounding to nearest-even.
func Float32ToBFloat16(f float32) BFloat16 {
	bits := math.Float32bits(f)
	rounded := bits + 0x7FFF + ((bits >> 16) & 1)
	return BFloat16(rounded >> 16)
}
