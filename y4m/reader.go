package y4m

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/mpeg2stinx/graph"
	"github.com/opd-ai/mpeg2stinx/video"
)

// Clip serves the frames of an indexed YUV4MPEG2 stream.
type Clip struct {
	graph.Base
	header  Header
	r       io.ReaderAt
	offsets []int64
}

// NewClip indexes the stream in r, which holds size bytes. Frames are read
// on demand; r must stay open for the life of the clip.
func NewClip(name string, r io.ReaderAt, size int64) (*Clip, error) {
	br := bufio.NewReader(io.NewSectionReader(r, 0, size))

	line, err := readLine(br)
	if err != nil {
		return nil, err
	}
	header, err := ParseHeader(line)
	if err != nil {
		return nil, err
	}

	pos := int64(len(line))
	frameSize := header.FrameSize()
	var offsets []int64
	for {
		line, err := readLine(br)
		if errors.Is(err, io.EOF) && line == "" {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("frame %d: %w", len(offsets), err)
		}
		if !strings.HasPrefix(line, frameMagic) {
			return nil, fmt.Errorf("%w: frame %d: missing %s marker", ErrBadHeader, len(offsets), frameMagic)
		}
		pos += int64(len(line))
		offsets = append(offsets, pos)

		skipped, err := br.Discard(frameSize)
		pos += int64(skipped)
		if err != nil {
			return nil, fmt.Errorf("%w: frame %d has %d of %d bytes", ErrTruncated, len(offsets)-1, skipped, frameSize)
		}
	}
	if len(offsets) == 0 {
		return nil, fmt.Errorf("%w: stream has no frames", ErrTruncated)
	}

	logrus.WithFields(logrus.Fields{
		"function": "NewClip",
		"name":     name,
		"format":   header.Format.String(),
		"width":    header.Width,
		"height":   header.Height,
		"frames":   len(offsets),
	}).Info("Indexed YUV4MPEG2 stream")

	return &Clip{
		Base:    graph.NewBase(name, header.Info(len(offsets))),
		header:  header,
		r:       r,
		offsets: offsets,
	}, nil
}

// readLine returns the next newline terminated line including the newline.
// An empty result with io.EOF marks the end of the stream.
func readLine(br *bufio.Reader) (string, error) {
	var sb strings.Builder
	for sb.Len() <= maxHeaderLength {
		c, err := br.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) && sb.Len() > 0 {
				return "", fmt.Errorf("%w: header without newline", ErrTruncated)
			}
			return "", err
		}
		sb.WriteByte(c)
		if c == '\n' {
			return sb.String(), nil
		}
	}
	return "", fmt.Errorf("%w: header exceeds %d bytes", ErrBadHeader, maxHeaderLength)
}

// Header returns the stream header.
func (c *Clip) Header() Header {
	return c.header
}

// Requests implements graph.Node.
func (c *Clip) Requests(int) []graph.Request { return nil }

// Compute implements graph.Node.
func (c *Clip) Compute(n int, _ []*video.Frame) (*video.Frame, error) {
	if n < 0 || n >= len(c.offsets) {
		return nil, fmt.Errorf("%s: frame %d out of range [0, %d)", c.Name(), n, len(c.offsets))
	}
	buf := make([]byte, c.header.FrameSize())
	if read, err := c.r.ReadAt(buf, c.offsets[n]); read < len(buf) {
		return nil, fmt.Errorf("%w: frame %d: %w", ErrTruncated, n, err)
	}
	return decodeFrame(c.header, buf), nil
}

// decodeFrame unpacks planar samples in Y, U, V order.
func decodeFrame(h Header, data []byte) *video.Frame {
	f := video.NewFrame(h.Format, h.Width, h.Height)
	offset := 0
	for _, p := range f.Planes {
		size := p.Width * p.Height * p.BytesPerSample
		unpackPlane(p, data[offset:offset+size])
		offset += size
	}
	return f
}

func unpackPlane(p *video.Plane, data []byte) {
	if p.BytesPerSample == 1 {
		copy(p.Data, data)
		return
	}
	i := 0
	for y := 0; y < p.Height; y++ {
		for x := 0; x < p.Width; x++ {
			p.Set(x, y, uint32(binary.LittleEndian.Uint16(data[i:])))
			i += 2
		}
	}
}
