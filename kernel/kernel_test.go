package kernel

import (
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opd-ai/mpeg2stinx/video"
)

var widthFormats = []video.Format{video.Gray8, video.Gray16, video.Gray32}

// grayFrame builds a gray frame from row-major samples.
func grayFrame(format video.Format, w, h int, samples ...uint32) *video.Frame {
	f := video.NewFrame(format, w, h)
	for i, v := range samples {
		f.Planes[0].Set(i%w, i/w, v)
	}
	return f
}

func randomFrame(rng *rand.Rand, format video.Format, w, h int) *video.Frame {
	f := video.NewFrame(format, w, h)
	max := format.MaxValue()
	for _, p := range f.Planes {
		for y := 0; y < p.Height; y++ {
			for x := 0; x < p.Width; x++ {
				p.Set(x, y, uint32(rng.Uint64()%(max+1)))
			}
		}
	}
	return f
}

func samples(f *video.Frame, plane int) []uint32 {
	p := f.Planes[plane]
	out := make([]uint32, 0, p.Width*p.Height)
	for y := 0; y < p.Height; y++ {
		for x := 0; x < p.Width; x++ {
			out = append(out, p.At(x, y))
		}
	}
	return out
}

func TestIdentities(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for _, format := range widthFormats {
		t.Run(format.String(), func(t *testing.T) {
			a := randomFrame(rng, format, 7, 5)

			got, err := Min(a, a)
			require.NoError(t, err)
			assert.Empty(t, cmp.Diff(samples(a, 0), samples(got, 0)), "min(a,a)")

			got, err = Max(a, a)
			require.NoError(t, err)
			assert.Empty(t, cmp.Diff(samples(a, 0), samples(got, 0)), "max(a,a)")

			got, err = Median3(a, a, a, true)
			require.NoError(t, err)
			assert.Empty(t, cmp.Diff(samples(a, 0), samples(got, 0)), "median3(a,a,a)")

			got, err = Diff(a, a)
			require.NoError(t, err)
			for _, v := range samples(got, 0) {
				assert.Zero(t, v)
			}

			blurred := randomFrame(rng, format, 7, 5)
			got, err = Sharp(a, blurred, 0)
			require.NoError(t, err)
			assert.Empty(t, cmp.Diff(samples(a, 0), samples(got, 0)), "sharp with zero strength")
		})
	}
}

func TestCommutative(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	ops := map[string]func(a, b *video.Frame) (*video.Frame, error){
		"min":  Min,
		"max":  Max,
		"diff": Diff,
	}
	for _, format := range widthFormats {
		a := randomFrame(rng, format, 6, 4)
		b := randomFrame(rng, format, 6, 4)
		for name, op := range ops {
			t.Run(format.String()+"/"+name, func(t *testing.T) {
				ab, err := op(a, b)
				require.NoError(t, err)
				ba, err := op(b, a)
				require.NoError(t, err)
				assert.Equal(t, samples(ab, 0), samples(ba, 0))
			})
		}
	}
}

func TestOutputsSaturate(t *testing.T) {
	for _, format := range widthFormats {
		t.Run(format.String(), func(t *testing.T) {
			max := uint32(format.MaxValue())
			lo := grayFrame(format, 2, 1, 0, max)
			hi := grayFrame(format, 2, 1, max, 0)

			got, err := MakeDiff(lo, hi, BiasHalfRange)
			require.NoError(t, err)
			assert.Equal(t, []uint32{0, max}, samples(got, 0))

			got, err = AddDiff(hi, hi, BiasHalfRange)
			require.NoError(t, err)
			assert.Equal(t, []uint32{max, 0}, samples(got, 0))

			got, err = Sharp(hi, lo, 100)
			require.NoError(t, err)
			assert.Equal(t, []uint32{max, 0}, samples(got, 0))

			got, err = SharpD(lo, hi, -3.5, BiasHalfRange)
			require.NoError(t, err)
			assert.Equal(t, []uint32{max, 0}, samples(got, 0))

			got, err = Diff(lo, hi)
			require.NoError(t, err)
			assert.Equal(t, []uint32{max, max}, samples(got, 0))
		})
	}
}

func TestAddDiffInvertsMakeDiff(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for _, format := range widthFormats {
		t.Run(format.String(), func(t *testing.T) {
			half := uint64(1) << uint(format.BitsPerSample-1)
			a := video.NewFrame(format, 8, 8)
			b := video.NewFrame(format, 8, 8)
			for y := 0; y < 8; y++ {
				for x := 0; x < 8; x++ {
					a.Planes[0].Set(x, y, uint32(rng.Uint64()%half))
					b.Planes[0].Set(x, y, uint32(rng.Uint64()%half))
				}
			}
			d, err := MakeDiff(a, b, BiasHalfRange)
			require.NoError(t, err)
			back, err := AddDiff(b, d, BiasHalfRange)
			require.NoError(t, err)
			assert.Equal(t, samples(a, 0), samples(back, 0))
		})
	}
}

func TestBiasModes(t *testing.T) {
	assert.Equal(t, uint64(128), BiasHalfRange.Bias(8))
	assert.Equal(t, uint64(16), BiasLegacy.Bias(8))
	assert.Equal(t, uint64(1<<15), BiasHalfRange.Bias(16))
	assert.Equal(t, uint64(256), BiasLegacy.Bias(16))
	assert.Equal(t, "legacy", BiasLegacy.String())

	a := grayFrame(video.Gray8, 1, 1, 20)
	b := grayFrame(video.Gray8, 1, 1, 10)
	got, err := MakeDiff(a, b, BiasLegacy)
	require.NoError(t, err)
	assert.Equal(t, uint32(26), got.Planes[0].At(0, 0))
}

func TestLimD(t *testing.T) {
	// Deviations from 128: a = {+10, -10, +4, -30}, b = {-4, +20, +8, -6}.
	a := grayFrame(video.Gray8, 4, 1, 138, 118, 132, 98)
	b := grayFrame(video.Gray8, 4, 1, 124, 148, 136, 122)

	t.Run("unit scale picks smaller deviation", func(t *testing.T) {
		got, err := LimD(a, b, 1.0, BiasHalfRange)
		require.NoError(t, err)
		assert.Equal(t, []uint32{124, 118, 132, 122}, samples(got, 0))
	})

	t.Run("disagreeing signs are scaled", func(t *testing.T) {
		got, err := LimD(a, b, 0.5, BiasHalfRange)
		require.NoError(t, err)
		// -4*0.5 = -2, -10*0.5 = -5; agreeing signs keep their deviation.
		assert.Equal(t, []uint32{126, 123, 132, 122}, samples(got, 0))
	})

	t.Run("equal deviations keep b", func(t *testing.T) {
		// +10 against -10, then -6 against -6 and +3 against +3.
		ta := grayFrame(video.Gray8, 3, 1, 138, 122, 131)
		tb := grayFrame(video.Gray8, 3, 1, 118, 122, 131)
		got, err := LimD(ta, tb, 0.25, BiasHalfRange)
		require.NoError(t, err)
		// -10*0.25 = -2.5 -> -2
		assert.Equal(t, []uint32{126, 122, 131}, samples(got, 0))

		got, err = LimD(tb, ta, 0.25, BiasHalfRange)
		require.NoError(t, err)
		assert.Equal(t, uint32(130), samples(got, 0)[0])
	})
}

func TestSharpTruncatesTowardZero(t *testing.T) {
	cur := grayFrame(video.Gray8, 2, 1, 100, 100)
	blurred := grayFrame(video.Gray8, 2, 1, 97, 103)

	got, err := Sharp(cur, blurred, 0.5)
	require.NoError(t, err)
	// 3*0.5 = 1.5 -> 1, -3*0.5 = -1.5 -> -1
	assert.Equal(t, []uint32{101, 99}, samples(got, 0))

	got, err = SharpD(cur, blurred, 2, BiasHalfRange)
	require.NoError(t, err)
	assert.Equal(t, []uint32{134, 122}, samples(got, 0))
}

func TestAverage(t *testing.T) {
	a := grayFrame(video.Gray8, 3, 1, 0, 255, 10)
	b := grayFrame(video.Gray8, 3, 1, 1, 255, 13)
	got, err := Average(a, b)
	require.NoError(t, err)
	assert.Equal(t, []uint32{1, 255, 12}, samples(got, 0))
}

func TestMedian3(t *testing.T) {
	a := video.NewFrame(video.YUV444P8, 2, 1)
	b := video.NewFrame(video.YUV444P8, 2, 1)
	c := video.NewFrame(video.YUV444P8, 2, 1)
	for i := range a.Planes {
		a.Planes[i].Fill(10)
		b.Planes[i].Fill(30)
		c.Planes[i].Fill(20)
	}

	t.Run("all planes", func(t *testing.T) {
		got, err := Median3(a, b, c, true)
		require.NoError(t, err)
		for i := range got.Planes {
			assert.Equal(t, []uint32{20, 20}, samples(got, i))
		}
	})

	t.Run("luma only copies chroma from first operand", func(t *testing.T) {
		got, err := Median3(a, b, c, false)
		require.NoError(t, err)
		assert.Equal(t, []uint32{20, 20}, samples(got, 0))
		assert.Equal(t, []uint32{10, 10}, samples(got, 1))
		assert.Equal(t, []uint32{10, 10}, samples(got, 2))
	})

	t.Run("mismatches", func(t *testing.T) {
		tests := []struct {
			name string
			c    *video.Frame
			msg  string
		}{
			{"plane count", video.NewFrame(video.Gray8, 2, 1), "plane count is 1, expected 3"},
			{"bit depth", video.NewFrame(video.YUV444P16, 2, 1), "bit depth is 16, expected 8"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := Median3(a, b, tt.c, true)
				require.Error(t, err)
				assert.ErrorIs(t, err, video.ErrFormatMismatch)
				assert.Contains(t, err.Error(), tt.msg)
			})
		}
	})
}

func TestInputsAreNotModified(t *testing.T) {
	a := grayFrame(video.Gray8, 2, 1, 1, 2)
	b := grayFrame(video.Gray8, 2, 1, 5, 0)
	before := a.Clone()
	_, err := Sharp(a, b, 3)
	require.NoError(t, err)
	assert.Equal(t, before.Planes[0].Data, a.Planes[0].Data)
}
