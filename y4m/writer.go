package y4m

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/opd-ai/mpeg2stinx/video"
)

// Writer emits a YUV4MPEG2 stream. The header is written with the first frame.
type Writer struct {
	w           *bufio.Writer
	header      Header
	wroteHeader bool
	frames      int
	scratch     []byte
}

// NewWriter creates a writer for frames described by header.
func NewWriter(w io.Writer, header Header) *Writer {
	return &Writer{w: bufio.NewWriter(w), header: header}
}

// WriteFrame appends one frame. The frame must match the header.
func (w *Writer) WriteFrame(f *video.Frame) error {
	if !f.Matches(w.header.Info(0)) {
		return video.MismatchError("y4m frame",
			fmt.Sprintf("%s %dx%d", f.Format, f.Width(), f.Height()),
			fmt.Sprintf("%s %dx%d", w.header.Format, w.header.Width, w.header.Height))
	}
	if !w.wroteHeader {
		if _, err := fmt.Fprintf(w.w, "%s\n", w.header); err != nil {
			return fmt.Errorf("failed to write stream header: %w", err)
		}
		w.wroteHeader = true
	}
	if _, err := w.w.WriteString(frameMagic + "\n"); err != nil {
		return fmt.Errorf("failed to write frame %d header: %w", w.frames, err)
	}
	for i, p := range f.Planes {
		if _, err := w.w.Write(w.packPlane(p)); err != nil {
			return fmt.Errorf("failed to write frame %d plane %d: %w", w.frames, i, err)
		}
	}
	w.frames++
	return nil
}

func (w *Writer) packPlane(p *video.Plane) []byte {
	if p.BytesPerSample == 1 && p.Stride == p.Width {
		return p.Data
	}
	size := p.Width * p.Height * p.BytesPerSample
	if cap(w.scratch) < size {
		w.scratch = make([]byte, size)
	}
	buf := w.scratch[:size]
	i := 0
	for y := 0; y < p.Height; y++ {
		for x := 0; x < p.Width; x++ {
			if p.BytesPerSample == 1 {
				buf[i] = uint8(p.At(x, y))
				i++
				continue
			}
			binary.LittleEndian.PutUint16(buf[i:], uint16(p.At(x, y)))
			i += 2
		}
	}
	return buf
}

// Frames returns the number of frames written.
func (w *Writer) Frames() int {
	return w.frames
}

// Flush writes buffered data to the underlying writer.
func (w *Writer) Flush() error {
	return w.w.Flush()
}
