package video

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFrame_PlaneDimensions(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		planes [][2]int
	}{
		{"gray8", Gray8, [][2]int{{8, 6}}},
		{"yuv420p8", YUV420P8, [][2]int{{8, 6}, {4, 3}, {4, 3}}},
		{"yuv422p8", YUV422P8, [][2]int{{8, 6}, {4, 6}, {4, 6}}},
		{"yuv444p16", YUV444P16, [][2]int{{8, 6}, {8, 6}, {8, 6}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewFrame(tt.format, 8, 6)
			require.Len(t, f.Planes, len(tt.planes))
			for i, want := range tt.planes {
				assert.Equal(t, want[0], f.Planes[i].Width, "plane %d width", i)
				assert.Equal(t, want[1], f.Planes[i].Height, "plane %d height", i)
				assert.Len(t, f.Planes[i].Data, want[0]*want[1]*tt.format.BytesPerSample)
			}
		})
	}
}

func TestPlane_AtSet(t *testing.T) {
	for _, bytes := range []int{1, 2, 4} {
		p := NewPlane(4, 3, bytes)
		p.Set(2, 1, 200)
		assert.Equal(t, uint32(200), p.At(2, 1))
		assert.Equal(t, uint32(0), p.At(-1, 0))
		assert.Equal(t, uint32(0), p.At(4, 0))
		p.Set(9, 9, 1)
	}

	p := NewPlane(2, 2, 4)
	p.Set(1, 1, 0xFFFFFFFF)
	assert.Equal(t, uint32(0xFFFFFFFF), p.At(1, 1))
}

func TestRow_TypedAccess(t *testing.T) {
	p := NewPlane(5, 2, 2)
	row := Row[uint16](p, 1)
	require.Len(t, row, 5)
	row[3] = 1000
	assert.Equal(t, uint32(1000), p.At(3, 1))

	assert.Nil(t, Row[uint8](p, 0), "mismatched storage width")
	assert.Nil(t, Row[uint16](p, 2), "row out of range")
}

func TestFrame_CloneIndependent(t *testing.T) {
	f := NewFrame(YUV420P8, 4, 4)
	f.Planes[1].Set(0, 0, 7)
	c := f.Clone()
	c.Planes[1].Set(0, 0, 9)
	assert.Equal(t, uint32(7), f.Planes[1].At(0, 0))
	assert.True(t, c.Matches(Info{Format: YUV420P8, Width: 4, Height: 4}))
}

func TestCheckCompatible(t *testing.T) {
	a := NewFrame(Gray8, 4, 4)
	assert.NoError(t, CheckCompatible(a, NewFrame(Gray8, 4, 4)))

	err := CheckCompatible(a, NewFrame(YUV444P8, 4, 4))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFormatMismatch))
	assert.Contains(t, err.Error(), "plane count is 3, expected 1")

	err = CheckCompatible(a, NewFrame(Gray16, 4, 4))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bit depth is 16, expected 8")
}

func TestStageError(t *testing.T) {
	err := NewStageError("CrossFieldRepair2", 3, ErrDependencyUnavailable)
	assert.True(t, errors.Is(err, ErrDependencyUnavailable))

	var se *StageError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "CrossFieldRepair2", se.Stage)
	assert.Equal(t, 3, se.Frame)
	assert.Nil(t, NewStageError("x", 0, nil))
}

func TestFormat_String(t *testing.T) {
	assert.Equal(t, "Gray8", Gray8.String())
	assert.Equal(t, "YUV420P16", YUV420P16.String())
	assert.Equal(t, "Undefined", Format{}.String())
	assert.Equal(t, uint64(255), Gray8.MaxValue())
	assert.Equal(t, uint64(0xFFFFFFFF), Gray32.MaxValue())
	assert.Equal(t, 4, Gray32.BytesPerSample)
}
