package kernel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opd-ai/mpeg2stinx/video"
)

func TestBlurKernel(t *testing.T) {
	tests := []struct {
		strength float64
		want     [3]int
	}{
		{0, [3]int{0, 1023, 0}},
		{0.9, [3]int{238, 548, 238}},
		{1, [3]int{256, 512, 256}},
		{2, [3]int{384, 256, 384}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, BlurKernel(tt.strength), "strength %v", tt.strength)
	}
}

func TestConvolveV(t *testing.T) {
	comb := grayFrame(video.Gray8, 1, 4, 0, 200, 0, 200)

	t.Run("identity kernel", func(t *testing.T) {
		got, err := ConvolveV(comb, BlurKernel(0), AllPlanes)
		require.NoError(t, err)
		assert.Equal(t, samples(comb, 0), samples(got, 0))
	})

	t.Run("blur with mirrored edges", func(t *testing.T) {
		got, err := ConvolveV(comb, [3]int{1, 2, 1}, AllPlanes)
		require.NoError(t, err)
		// row 0 mirrors row 1 above itself: (200 + 0 + 200) / 4 = 100
		// row 3 mirrors row 2 below itself: (0 + 400 + 0) / 4 = 100
		assert.Equal(t, []uint32{100, 100, 100, 100}, samples(got, 0))
	})

	t.Run("flat stays flat", func(t *testing.T) {
		flat := video.NewFrame(video.Gray16, 3, 3)
		flat.Planes[0].Fill(4000)
		got, err := ConvolveV(flat, BlurKernel(0.9), AllPlanes)
		require.NoError(t, err)
		for _, v := range samples(got, 0) {
			assert.Equal(t, uint32(4000), v)
		}
	})

	t.Run("zero taps", func(t *testing.T) {
		_, err := ConvolveV(comb, [3]int{}, AllPlanes)
		assert.ErrorIs(t, err, video.ErrInvalidConfig)
	})
}

func TestMirror(t *testing.T) {
	assert.Equal(t, 1, mirror(-1, 4))
	assert.Equal(t, 2, mirror(4, 4))
	assert.Equal(t, 0, mirror(-1, 1))
	assert.Equal(t, 0, mirror(1, 1))
}
