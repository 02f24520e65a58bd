// Package y4m reads and writes YUV4MPEG2 streams, the uncompressed planar
// container used to pipe video between tools.
//
// A Clip indexes the frames of a stream once and then serves them at random
// through io.ReaderAt, so it can sit at the head of a frame graph. A Writer
// emits frames in order. Samples wider than 8 bits are little-endian.
package y4m

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/opd-ai/mpeg2stinx/video"
)

const (
	streamMagic = "YUV4MPEG2"
	frameMagic  = "FRAME"

	// maxHeaderLength bounds stream and frame header lines
	maxHeaderLength = 1024
)

var (
	// ErrBadHeader indicates a malformed stream or frame header
	ErrBadHeader = errors.New("malformed YUV4MPEG2 header")

	// ErrUnsupportedColorspace indicates a C tag or format without a mapping
	ErrUnsupportedColorspace = fmt.Errorf("%w: unsupported YUV4MPEG2 colorspace", video.ErrFormatMismatch)

	// ErrTruncated indicates a stream that ends inside a frame
	ErrTruncated = errors.New("truncated YUV4MPEG2 frame")
)

// Ratio is a rational frame rate or sample aspect.
type Ratio struct {
	Num int
	Den int
}

// String formats the ratio as "num:den".
func (r Ratio) String() string {
	return fmt.Sprintf("%d:%d", r.Num, r.Den)
}

func parseRatio(s string) (Ratio, error) {
	num, den, ok := strings.Cut(s, ":")
	if !ok {
		return Ratio{}, fmt.Errorf("%w: ratio %q", ErrBadHeader, s)
	}
	n, err := strconv.Atoi(num)
	if err != nil {
		return Ratio{}, fmt.Errorf("%w: ratio %q: %w", ErrBadHeader, s, err)
	}
	d, err := strconv.Atoi(den)
	if err != nil {
		return Ratio{}, fmt.Errorf("%w: ratio %q: %w", ErrBadHeader, s, err)
	}
	return Ratio{Num: n, Den: d}, nil
}

// Header is the stream header of a YUV4MPEG2 file.
type Header struct {
	Width      int
	Height     int
	FrameRate  Ratio
	Aspect     Ratio
	FieldOrder video.FieldOrder
	Format     video.Format
	// Colorspace is the C tag as written, e.g. "420jpeg"
	Colorspace string
}

// HeaderFor describes a clip for writing.
func HeaderFor(info video.Info, rate Ratio) (Header, error) {
	cs, err := Colorspace(info.Format)
	if err != nil {
		return Header{}, err
	}
	return Header{
		Width:      info.Width,
		Height:     info.Height,
		FrameRate:  rate,
		Aspect:     Ratio{Num: 0, Den: 0},
		FieldOrder: info.FieldOrder,
		Format:     info.Format,
		Colorspace: cs,
	}, nil
}

// Info returns the clip description for a stream of numFrames frames.
func (h Header) Info(numFrames int) video.Info {
	return video.Info{
		Format:     h.Format,
		Width:      h.Width,
		Height:     h.Height,
		NumFrames:  numFrames,
		FieldOrder: h.FieldOrder,
	}
}

// FrameSize returns the payload size of one frame in bytes.
func (h Header) FrameSize() int {
	size := 0
	for i := 0; i < h.Format.NumPlanes(); i++ {
		w, ht := h.Format.PlaneDimensions(i, h.Width, h.Height)
		size += w * ht * h.Format.BytesPerSample
	}
	return size
}

// String formats the header line without the trailing newline.
func (h Header) String() string {
	interlace := "p"
	switch h.FieldOrder {
	case video.TopFieldFirst:
		interlace = "t"
	case video.BottomFieldFirst:
		interlace = "b"
	}
	return fmt.Sprintf("%s W%d H%d F%s I%s A%s C%s", streamMagic, h.Width, h.Height,
		h.FrameRate, interlace, h.Aspect, h.Colorspace)
}

// ParseHeader parses a stream header line, with or without its newline.
func ParseHeader(line string) (Header, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 || fields[0] != streamMagic {
		return Header{}, fmt.Errorf("%w: missing %s signature", ErrBadHeader, streamMagic)
	}

	h := Header{
		FrameRate:  Ratio{Num: 25, Den: 1},
		FieldOrder: video.Progressive,
		Colorspace: "420jpeg",
	}
	for _, tok := range fields[1:] {
		tag, value := tok[0], tok[1:]
		var err error
		switch tag {
		case 'W':
			h.Width, err = strconv.Atoi(value)
		case 'H':
			h.Height, err = strconv.Atoi(value)
		case 'F':
			h.FrameRate, err = parseRatio(value)
		case 'A':
			h.Aspect, err = parseRatio(value)
		case 'I':
			h.FieldOrder, err = parseInterlace(value)
		case 'C':
			h.Colorspace = value
		case 'X':
			// Application specific, ignored
		default:
			err = fmt.Errorf("unknown tag %q", tag)
		}
		if err != nil {
			return Header{}, fmt.Errorf("%w: %s: %w", ErrBadHeader, tok, err)
		}
	}
	if h.Width <= 0 || h.Height <= 0 {
		return Header{}, fmt.Errorf("%w: dimensions %dx%d", ErrBadHeader, h.Width, h.Height)
	}

	format, err := ParseColorspace(h.Colorspace)
	if err != nil {
		return Header{}, err
	}
	h.Format = format
	return h, nil
}

func parseInterlace(value string) (video.FieldOrder, error) {
	switch value {
	case "p", "?":
		return video.Progressive, nil
	case "t":
		return video.TopFieldFirst, nil
	case "b":
		return video.BottomFieldFirst, nil
	default:
		return video.Progressive, fmt.Errorf("unsupported interlacing %q", value)
	}
}

// ParseColorspace maps a C tag to a format. Missing bit depths mean 8 bit;
// "420p16" and "mono16" style suffixes select deeper samples.
func ParseColorspace(cs string) (video.Format, error) {
	family := video.ColorFamilyYUV
	var subW, subH int
	rest := cs
	switch {
	case strings.HasPrefix(cs, "mono"):
		family = video.ColorFamilyGray
		rest = strings.TrimPrefix(cs, "mono")
	case strings.HasPrefix(cs, "420"):
		subW, subH = 1, 1
		rest = cs[3:]
	case strings.HasPrefix(cs, "422"):
		subW = 1
		rest = cs[3:]
	case strings.HasPrefix(cs, "411"):
		subW = 2
		rest = cs[3:]
	case strings.HasPrefix(cs, "444"):
		rest = cs[3:]
		if rest == "alpha" {
			return video.Format{}, fmt.Errorf("%w: %q", ErrUnsupportedColorspace, cs)
		}
	default:
		return video.Format{}, fmt.Errorf("%w: %q", ErrUnsupportedColorspace, cs)
	}

	bits := 8
	switch rest {
	case "", "jpeg", "mpeg2", "paldv":
	default:
		digits := strings.TrimPrefix(rest, "p")
		if family == video.ColorFamilyGray {
			digits = rest
		}
		n, err := strconv.Atoi(digits)
		if err != nil || n <= 8 || n > 16 {
			return video.Format{}, fmt.Errorf("%w: %q", ErrUnsupportedColorspace, cs)
		}
		bits = n
	}
	return video.NewFormat(family, bits, subW, subH), nil
}

// Colorspace returns the C tag for a format.
func Colorspace(f video.Format) (string, error) {
	if f.IsZero() || f.BitsPerSample < 8 || f.BitsPerSample > 16 {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedColorspace, f)
	}
	depth := ""
	if f.BitsPerSample > 8 {
		depth = strconv.Itoa(f.BitsPerSample)
	}
	if f.ColorFamily == video.ColorFamilyGray {
		return "mono" + depth, nil
	}

	var sub string
	switch {
	case f.SubSamplingW == 1 && f.SubSamplingH == 1:
		sub = "420"
	case f.SubSamplingW == 1 && f.SubSamplingH == 0:
		sub = "422"
	case f.SubSamplingW == 2 && f.SubSamplingH == 0:
		sub = "411"
	case f.SubSamplingW == 0 && f.SubSamplingH == 0:
		sub = "444"
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedColorspace, f)
	}
	if depth != "" {
		return sub + "p" + depth, nil
	}
	if sub == "420" {
		return "420jpeg", nil
	}
	return sub, nil
}
