package y4m

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	testsim "github.com/opd-ai/mpeg2stinx/testing"
	"github.com/opd-ai/mpeg2stinx/video"
)

func TestParseHeader(t *testing.T) {
	h, err := ParseHeader("YUV4MPEG2 W720 H480 F30000:1001 It A10:11 C420mpeg2 XYSCSS=420MPEG2\n")
	require.NoError(t, err)
	assert.Equal(t, 720, h.Width)
	assert.Equal(t, 480, h.Height)
	assert.Equal(t, Ratio{30000, 1001}, h.FrameRate)
	assert.Equal(t, Ratio{10, 11}, h.Aspect)
	assert.Equal(t, video.TopFieldFirst, h.FieldOrder)
	assert.Equal(t, video.YUV420P8, h.Format)
	assert.Equal(t, 720*480*3/2, h.FrameSize())

	h, err = ParseHeader("YUV4MPEG2 W4 H2")
	require.NoError(t, err)
	assert.Equal(t, video.YUV420P8, h.Format, "missing C tag means 420jpeg")
	assert.Equal(t, video.Progressive, h.FieldOrder)
}

func TestParseHeaderErrors(t *testing.T) {
	for _, line := range []string{
		"",
		"YUV4MPEG W4 H2",
		"YUV4MPEG2 W4",
		"YUV4MPEG2 Wfour H2",
		"YUV4MPEG2 W4 H2 F25",
		"YUV4MPEG2 W4 H2 Im",
		"YUV4MPEG2 W4 H2 Z1",
	} {
		_, err := ParseHeader(line)
		assert.ErrorIs(t, err, ErrBadHeader, line)
	}

	_, err := ParseHeader("YUV4MPEG2 W4 H2 C444alpha")
	assert.ErrorIs(t, err, ErrUnsupportedColorspace)
	assert.ErrorIs(t, err, video.ErrFormatMismatch)
}

func TestColorspace(t *testing.T) {
	tests := []struct {
		tag    string
		format video.Format
	}{
		{"420jpeg", video.YUV420P8},
		{"422", video.YUV422P8},
		{"444", video.YUV444P8},
		{"411", video.NewFormat(video.ColorFamilyYUV, 8, 2, 0)},
		{"mono", video.Gray8},
		{"mono16", video.Gray16},
		{"420p16", video.YUV420P16},
		{"444p16", video.YUV444P16},
	}
	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			f, err := ParseColorspace(tt.tag)
			require.NoError(t, err)
			assert.Equal(t, tt.format, f)

			tag, err := Colorspace(tt.format)
			require.NoError(t, err)
			assert.Equal(t, tt.tag, tag)
		})
	}

	f, err := ParseColorspace("420paldv")
	require.NoError(t, err)
	assert.Equal(t, video.YUV420P8, f)

	for _, tag := range []string{"rgb", "420p7", "420p32", "monoX"} {
		_, err := ParseColorspace(tag)
		assert.ErrorIs(t, err, ErrUnsupportedColorspace, tag)
	}
	_, err = Colorspace(video.YUV420P32)
	assert.ErrorIs(t, err, ErrUnsupportedColorspace)
}

func encode(t *testing.T, info video.Info, frames ...*video.Frame) []byte {
	t.Helper()
	header, err := HeaderFor(info, Ratio{25, 1})
	require.NoError(t, err)

	var buf bytes.Buffer
	w := NewWriter(&buf, header)
	for _, f := range frames {
		require.NoError(t, w.WriteFrame(f))
	}
	require.NoError(t, w.Flush())
	assert.Equal(t, len(frames), w.Frames())
	return buf.Bytes()
}

func TestRoundTrip(t *testing.T) {
	for _, format := range []video.Format{video.YUV420P8, video.Gray16, video.YUV422P8} {
		t.Run(format.String(), func(t *testing.T) {
			src := testsim.NoiseClip(format, 8, 4, 3, 7)
			info := src.Info()
			info.FieldOrder = video.BottomFieldFirst

			data := encode(t, info, src.Frame(0), src.Frame(1), src.Frame(2))
			clip, err := NewClip("input", bytes.NewReader(data), int64(len(data)))
			require.NoError(t, err)

			assert.Equal(t, info, clip.Info())
			assert.Equal(t, video.BottomFieldFirst, clip.Header().FieldOrder)
			for n := 0; n < 3; n++ {
				got, err := clip.Compute(n, nil)
				require.NoError(t, err)
				for i, p := range got.Planes {
					assert.Empty(t, cmp.Diff(src.Frame(n).Planes[i].Data, p.Data), "frame %d plane %d", n, i)
				}
			}

			_, err = clip.Compute(3, nil)
			assert.Error(t, err)
		})
	}
}

func TestStreamLayout(t *testing.T) {
	f := testsim.FlatFrame(video.Gray16, 2, 2, 0x0102)
	data := encode(t, video.Info{Format: video.Gray16, Width: 2, Height: 2, FieldOrder: video.TopFieldFirst}, f)

	want := "YUV4MPEG2 W2 H2 F25:1 It A0:0 Cmono16\nFRAME\n" + string(bytes.Repeat([]byte{0x02, 0x01}, 4))
	assert.Equal(t, want, string(data))
}

func TestNewClipErrors(t *testing.T) {
	frame := string(bytes.Repeat([]byte{16}, 12))
	tests := []struct {
		name   string
		stream string
		want   error
	}{
		{"no frames", "YUV4MPEG2 W4 H2 C420jpeg\n", ErrTruncated},
		{"short frame", "YUV4MPEG2 W4 H2 C420jpeg\nFRAME\n" + frame[:5], ErrTruncated},
		{"bad marker", "YUV4MPEG2 W4 H2 C420jpeg\nFRAMX\n" + frame, ErrBadHeader},
		{"unterminated header", "YUV4MPEG2 W4 H2", ErrTruncated},
		{"bad header", "MPEG2 W4 H2\n", ErrBadHeader},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewClip("input", bytes.NewReader([]byte(tt.stream)), int64(len(tt.stream)))
			assert.ErrorIs(t, err, tt.want)
		})
	}

	stream := "YUV4MPEG2 W4 H2 C420jpeg\nFRAME Ixyz\n" + frame + "FRAME\n" + frame
	clip, err := NewClip("input", bytes.NewReader([]byte(stream)), int64(len(stream)))
	require.NoError(t, err)
	assert.Equal(t, 2, clip.Info().NumFrames, "frame parameters are skipped")
}

func TestWriterRejectsMismatchedFrame(t *testing.T) {
	header, err := HeaderFor(video.Info{Format: video.Gray8, Width: 4, Height: 2}, Ratio{25, 1})
	require.NoError(t, err)

	var buf bytes.Buffer
	w := NewWriter(&buf, header)
	err = w.WriteFrame(testsim.FlatFrame(video.Gray8, 2, 2, 0))
	assert.ErrorIs(t, err, video.ErrFormatMismatch)
	require.NoError(t, w.Flush())
	assert.Zero(t, buf.Len(), "nothing is written before the first valid frame")
}
