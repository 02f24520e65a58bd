package real

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	testsim "github.com/opd-ai/mpeg2stinx/testing"
	"github.com/opd-ai/mpeg2stinx/video"
)

// rampFrame returns a 3x3 gray frame holding 10, 20, ... 90 row-major.
func rampFrame() *video.Frame {
	f := video.NewFrame(video.Gray8, 3, 3)
	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			f.Planes[0].Set(x, y, uint32(10*(1+x+3*y)))
		}
	}
	return f
}

func TestRepairClampsToNeighbourhood(t *testing.T) {
	ref := testsim.MustMemoryClip("ref", rampFrame())
	tests := []struct {
		name  string
		mode  int
		value uint32
		want  uint32
	}{
		{"mode 1 above", 1, 95, 90},
		{"mode 1 below", 1, 0, 10},
		{"mode 1 inside", 1, 42, 42},
		{"mode 2 above", 2, 95, 80},
		{"mode 2 below", 2, 0, 20},
		{"mode 4 below", 4, 0, 40},
		{"mode 4 above", 4, 255, 60},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := testsim.FlatClip(video.Gray8, 3, 3, 1, tt.value)
			out, err := NewRepairer().Repair(src, ref, tt.mode)
			require.NoError(t, err)
			assert.Equal(t, tt.want, get(t, out, 0).Planes[0].At(1, 1))
		})
	}
}

func TestRepairCornerRepeatsEdge(t *testing.T) {
	// Corner (0,0) sees 10 four times, 20 and 40 twice and 50 once.
	ref := testsim.MustMemoryClip("ref", rampFrame())
	src := testsim.FlatClip(video.Gray8, 3, 3, 1, 255)
	out, err := NewRepairer().Repair(src, ref, 1)
	require.NoError(t, err)
	assert.Equal(t, uint32(50), get(t, out, 0).Planes[0].At(0, 0))
}

func TestRepairRejectsMode(t *testing.T) {
	src := testsim.FlatClip(video.Gray8, 4, 4, 1, 0)
	for _, mode := range []int{0, 5, 17} {
		_, err := NewRepairer().Repair(src, src, mode)
		assert.ErrorIs(t, err, video.ErrUnimplemented, "mode %d", mode)
	}
}

func TestClense(t *testing.T) {
	frames := []*video.Frame{
		testsim.FlatFrame(video.YUV444P8, 2, 2, 10),
		testsim.FlatFrame(video.YUV444P8, 2, 2, 50),
		testsim.FlatFrame(video.YUV444P8, 2, 2, 30),
	}
	src := testsim.MustMemoryClip("src", frames...)

	t.Run("luma only", func(t *testing.T) {
		out, err := NewRepairer().Clense(src, nil, nil, []int{0})
		require.NoError(t, err)
		f := get(t, out, 1)
		assert.Equal(t, uint32(30), f.Planes[0].At(0, 0))
		assert.Equal(t, uint32(50), f.Planes[1].At(0, 0), "unselected planes pass through")
	})

	t.Run("explicit neighbours", func(t *testing.T) {
		prev := testsim.FlatClip(video.YUV444P8, 2, 2, 3, 40)
		next := testsim.FlatClip(video.YUV444P8, 2, 2, 3, 45)
		out, err := NewRepairer().Clense(src, prev, next, []int{0, 1, 2})
		require.NoError(t, err)
		f := get(t, out, 0)
		for i := range f.Planes {
			assert.Equal(t, uint32(40), f.Planes[i].At(1, 1))
		}
	})

	t.Run("bad plane", func(t *testing.T) {
		_, err := NewRepairer().Clense(src, nil, nil, []int{3})
		assert.ErrorIs(t, err, video.ErrInvalidConfig)
	})
}
