package matmul

import (
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/nncompile/compilednn/internal/hwy"
)

// referenceBlockMulAdd computes C += A * B using naive triple loop.
// aT is the transposed A (rows are original A columns).
// b is normal B (rows are B rows).
// This computes C += (aT)^T * b = A * B
func referenceBlockMulAdd(aT, b, c []float32, blockDim int) {
	for i := 0; i < blockDim; i++ {
		for j := 0; j < blockDim; j++ {
			var sum float32
			for k := 0; k < blockDim; k++ {
				// A[i,k] = aT[k,i]
				// B[k,j] = b[k*blockDim+j]
				aik := aT[k*blockDim+i]
				bkj := b[k*blockDim+j]
				sum += aik * bkj
			}
			c[i*blockDim+j] += sum
		}
	}
}

// transposeBlock transposes a blockDim x blockDim matrix.
// result[j*blockDim+i] = m[i*blockDim+j]
func transposeBlock(m []float32, blockDim int) []float32 {
	result := make([]float32, blockDim*blockDim)
	for i := 0; i < blockDim; i++ {
		for j := 0; j < blockDim; j++ {
			result[j*blockDim+i] = m[i*blockDim+j]
		}
	}
	return result
}

func TestBlockMulAdd(t *testing.T) {
	t.Logf("Dispatch level: %s", hwy.CurrentName())

	blockSizes := []int{8, 16, 32, 48, 64}

	for _, blockDim := range blockSizes {
		t.Run(sizeStr(blockDim), func(t *testing.T) {
			size := blockDim * blockDim

			// Create test matrices
			a := make([]float32, size)     // Original A
			b := make([]float32, size)     // Original B (NOT transposed)
			c := make([]float32, size)
			expected := make([]float32, size)

			// Fill with random values
			for i := range a {
				a[i] = rand.Float32()*2 - 1
			}
			for i := range b {
				b[i] = rand.Float32()*2 - 1
			}

			// Initialize C with some values (to test accumulation)
			for i := range c {
				c[i] = rand.Float32() * 0.1
				expected[i] = c[i]
			}

			// Transpose A for the optimized kernel
			aT := transposeBlock(a, blockDim)

			// Compute reference: C += A * B (using transposed A format)
			referenceBlockMulAdd(aT, b, expected, blockDim)

			// Compute using BlockMulAdd
			BlockMulAdd(aT, b, c, blockDim)

			// Check results
			var maxErr float32
			for i := range c {
				err := float32(math.Abs(float64(c[i] - expected[i])))
				if err > maxErr {
					maxErr = err
				}
			}

			tolerance := float32(1e-4) * float32(blockDim)
			if maxErr > tolerance {
				t.Errorf("BlockMulAdd: max error %e exceeds tolerance %e", maxErr, tolerance)
			} else {
				t.Logf("blockDim=%d: max error %e", blockDim, maxErr)
			}
		})
	}
}

func TestBlockMulAdd2(t *testing.T) {
	t.Logf("Dispatch level: %s", hwy.CurrentName())

	blockSizes := []int{8, 16, 32, 48, 64}

	for _, blockDim := range blockSizes {
		t.Run(sizeStr(blockDim), func(t *testing.T) {
			size := blockDim * blockDim

			a := make([]float32, size)
			b := make([]float32, size)
			c := make([]float32, size)
			expected := make([]float32, size)

			for i := range a {
				a[i] = rand.Float32()*2 - 1
			}
			for i := range b {
				b[i] = rand.Float32()*2 - 1
			}
			for i := range c {
				c[i] = rand.Float32() * 0.1
				expected[i] = c[i]
			}

			aT := transposeBlock(a, blockDim)
			referenceBlockMulAdd(aT, b, expected, blockDim)
			BlockMulAdd2(aT, b, c, blockDim)

			var maxErr float32
			for i := range c {
				err := float32(math.Abs(float64(c[i] - expected[i])))
				if err > maxErr {
					maxErr = err
				}
			}

			tolerance := float32(1e-4) * float32(blockDim)
			if maxErr > tolerance {
				t.Errorf("BlockMulAdd2: max error %e exceeds tolerance %e", maxErr, tolerance)
			} else {
				t.Logf("blockDim=%d: max error %e", blockDim, maxErr)
			}
		})
	}
}

func TestBlockMulAdd4(t *testing.T) {
	t.Logf("Dispatch level: %s", hwy.CurrentName())

	blockSizes := []int{8, 16, 32, 48, 64}

	for _, blockDim := range blockSizes {
		t.Run(sizeStr(blockDim), func(t *testing.T) {
			size := blockDim * blockDim

			a := make([]float32, size)
			b := make([]float32, size)
			c := make([]float32, size)
			expected := make([]float32, size)

			for i := range a {
				a[i] = rand.Float32()*2 - 1
			}
			for i := range b {
				b[i] = rand.Float32()*2 - 1
			}
			for i := range c {
				c[i] = rand.Float32() * 0.1
				expected[i] = c[i]
			}

			aT := transposeBlock(a, blockDim)
			referenceBlockMulAdd(aT, b, expected, blockDim)
			BlockMulAdd4(aT, b, c, blockDim)

			var maxErr float32
			for i := range c {
				err := float32(math.Abs(float64(c[i] - expected[i])))
				if err > maxErr {
					maxErr = err
				}
			}

			tolerance := float32(1e-4) * float32(blockDim)
			if maxErr > tolerance {
				t.Errorf("BlockMulAdd4: max error %e exceeds tolerance %e", maxErr, tolerance)
			} else {
				t.Logf("blockDim=%d: max error %e", blockDim, maxErr)
			}
		})
	}
}

func BenchmarkBlockMulAdd(b *testing.B) {
	b.Logf("Dispatch level: %s", hwy.CurrentName())

	blockSizes := []int{32, 48, 64}

	for _, blockDim := range blockSizes {
		size := blockDim * blockDim

		aT := make([]float32, size)
		bMat := make([]float32, size)
		c := make([]float32, size)

		for i := range aT {
			aT[i] = rand.Float32()
		}
		for i := range bMat {
			bMat[i] = rand.Float32()
		}

		flops := float64(2*blockDim*blockDim*blockDim) / 1e9

		b.Run(sizeStr(blockDim)+"/BlockMulAdd", func(b *testing.B) {
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				BlockMulAdd(aT, bMat, c, blockDim)
			}
			b.StopTimer()
			elapsed := b.Elapsed().Seconds()
			gflops := flops * float64(b.N) / elapsed
			b.ReportMetric(gflops, "GFLOPS")
		})

		b.Run(sizeStr(blockDim)+"/BlockMulAdd2", func(b *testing.B) {
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				BlockMulAdd2(aT, bMat, c, blockDim)
			}
			b.StopTimer()
			elapsed := b.Elapsed().Seconds()
			gflops := flops * float64(b.N) / elapsed
			b.ReportMetric(gflops, "GFLOPS")
		})

		b.Run(sizeStr(blockDim)+"/BlockMulAdd4", func(b *testing.B) {
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				BlockMulAdd4(aT, bMat, c, blockDim)
			}
			b.StopTimer()
			elapsed := b.Elapsed().Seconds()
			gflops := flops * float64(b.N) / elapsed
			b.ReportMetric(gflops, "GFLOPS")
		})
	}
}

func sizeStr(blockDim int) string {
	return fmt.Sprintf("dim=%d", blockDim)
}
