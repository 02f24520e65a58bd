package real

import (
	"bufio"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/opd-ai/mpeg2stinx/graph"
	"github.com/opd-ai/mpeg2stinx/interfaces"
	"github.com/opd-ai/mpeg2stinx/video"
)

// maxMessageSize bounds one framed message.
const maxMessageSize = 512 << 20

// WirePlane is one plane on the worker wire. Data holds native-endian
// samples, Width*Height*BytesPerSample bytes, rows packed.
type WirePlane struct {
	Width  int    `msgpack:"width"`
	Height int    `msgpack:"height"`
	Data   []byte `msgpack:"data"`
}

// WorkerRequest asks the worker to rebuild a full frame from one field.
type WorkerRequest struct {
	ID     string      `msgpack:"id"`
	Parity int         `msgpack:"parity"` // kept field: 0 top, 1 bottom
	Device string      `msgpack:"device"`
	Bits   int         `msgpack:"bits"`
	Planes []WirePlane `msgpack:"planes"`
}

// WorkerResponse carries the interpolated frame or the worker's error.
type WorkerResponse struct {
	ID     string      `msgpack:"id"`
	Planes []WirePlane `msgpack:"planes"`
	Error  string      `msgpack:"error,omitempty"`
}

// ErrWorkerBroken indicates an earlier call left the worker stream in an
// unknown state.
var ErrWorkerBroken = errors.New("interpolator worker stream broken")

// writeMessage writes v as a 4-byte big-endian length prefix followed by
// its msgpack encoding.
func writeMessage(w io.Writer, v any) error {
	payload, err := msgpack.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal msgpack message: %w", err)
	}
	prefix := make([]byte, 4)
	binary.BigEndian.PutUint32(prefix, uint32(len(payload)))
	if _, err := w.Write(prefix); err != nil {
		return fmt.Errorf("failed to write length prefix: %w", err)
	}
	if _, err := w.Write(payload); err != nil {
		return fmt.Errorf("failed to write msgpack data: %w", err)
	}
	return nil
}

// readMessage reads one framed msgpack message into v.
func readMessage(r io.Reader, v any) error {
	prefix := make([]byte, 4)
	if _, err := io.ReadFull(r, prefix); err != nil {
		return fmt.Errorf("failed to read length prefix: %w", err)
	}
	size := binary.BigEndian.Uint32(prefix)
	if size > maxMessageSize {
		return fmt.Errorf("message of %d bytes exceeds limit %d", size, maxMessageSize)
	}
	payload := make([]byte, size)
	if _, err := io.ReadFull(r, payload); err != nil {
		return fmt.Errorf("failed to read msgpack data: %w", err)
	}
	if err := msgpack.Unmarshal(payload, v); err != nil {
		return fmt.Errorf("failed to unmarshal msgpack message: %w", err)
	}
	return nil
}

// Worker is a request/response client for an interpolation worker speaking
// length-prefixed msgpack over a byte stream. One call is in flight at a
// time.
type Worker struct {
	mu      sync.Mutex
	r       io.Reader
	w       io.WriteCloser
	timeout time.Duration
	broken  error

	cmd    *exec.Cmd
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewWorker creates a client over an existing stream pair.
func NewWorker(r io.Reader, w io.WriteCloser, timeout time.Duration) *Worker {
	return &Worker{r: r, w: w, timeout: timeout}
}

// StartWorker spawns command and talks to it over its stdin and stdout.
// Its stderr is forwarded to the log.
func StartWorker(ctx context.Context, command []string, timeout time.Duration) (*Worker, error) {
	if len(command) == 0 {
		return nil, fmt.Errorf("%w: empty interpolator worker command", video.ErrInvalidConfig)
	}
	ctx, cancel := context.WithCancel(ctx)
	cmd := exec.CommandContext(ctx, command[0], command[1:]...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to create stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to create stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to create stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		cancel()
		return nil, fmt.Errorf("%w: failed to start interpolator worker: %w", video.ErrExternalFilter, err)
	}

	logrus.WithFields(logrus.Fields{
		"function": "StartWorker",
		"command":  strings.Join(command, " "),
		"pid":      cmd.Process.Pid,
	}).Info("Interpolator worker spawned")

	w := NewWorker(stdout, stdin, timeout)
	w.cmd = cmd
	w.cancel = cancel
	w.wg.Add(1)
	go w.logStderr(stderr)
	return w, nil
}

func (w *Worker) logStderr(stderr io.Reader) {
	defer w.wg.Done()
	scanner := bufio.NewScanner(stderr)
	for scanner.Scan() {
		logrus.WithFields(logrus.Fields{
			"function": "Worker.logStderr",
			"log":      scanner.Text(),
		}).Debug("Interpolator worker output")
	}
}

// Call sends req and waits for the matching response.
func (w *Worker) Call(req *WorkerRequest) (*WorkerResponse, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.broken != nil {
		return nil, w.broken
	}

	type result struct {
		resp *WorkerResponse
		err  error
	}
	done := make(chan result, 1)
	go func() {
		if err := writeMessage(w.w, req); err != nil {
			done <- result{err: err}
			return
		}
		var resp WorkerResponse
		if err := readMessage(w.r, &resp); err != nil {
			done <- result{err: err}
			return
		}
		done <- result{resp: &resp}
	}()

	var res result
	if w.timeout > 0 {
		select {
		case res = <-done:
		case <-time.After(w.timeout):
			w.abort()
			<-done
			res.err = fmt.Errorf("no response within %v", w.timeout)
		}
	} else {
		res = <-done
	}

	if res.err != nil {
		w.broken = fmt.Errorf("%w: %w", ErrWorkerBroken, res.err)
		logrus.WithFields(logrus.Fields{
			"function":   "Worker.Call",
			"request_id": req.ID,
			"error":      res.err.Error(),
		}).Error("Interpolator worker call failed")
		return nil, w.broken
	}
	if res.resp.ID != req.ID {
		w.broken = fmt.Errorf("%w: response %q for request %q", ErrWorkerBroken, res.resp.ID, req.ID)
		return nil, w.broken
	}
	return res.resp, nil
}

// abort closes both streams and stops the process so that a pending
// exchange returns. The worker is unusable afterwards.
func (w *Worker) abort() {
	w.w.Close()
	if c, ok := w.r.(io.Closer); ok {
		c.Close()
	}
	if w.cancel != nil {
		w.cancel()
	}
}

// Close shuts the worker down by closing its input and waiting for the
// process, if one was spawned.
func (w *Worker) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.broken == nil {
		w.broken = fmt.Errorf("%w: closed", ErrWorkerBroken)
	}
	err := w.w.Close()
	if w.cmd != nil {
		waitErr := w.cmd.Wait()
		w.cancel()
		w.wg.Wait()
		if waitErr != nil {
			logrus.WithFields(logrus.Fields{
				"function": "Worker.Close",
				"error":    waitErr.Error(),
			}).Warn("Interpolator worker exited with error")
		}
	}
	return err
}

// WorkerInterpolator implements interfaces.IFieldInterpolator by sending
// every field to a Worker.
type WorkerInterpolator struct {
	worker *Worker
}

// NewWorkerInterpolator creates an interpolator backed by worker.
func NewWorkerInterpolator(worker *Worker) *WorkerInterpolator {
	return &WorkerInterpolator{worker: worker}
}

// Interpolate implements interfaces.IFieldInterpolator.
func (wi *WorkerInterpolator) Interpolate(src graph.Node, field interfaces.FieldSelector, device interfaces.Device) (graph.Node, error) {
	if !field.Valid() {
		return nil, fmt.Errorf("%w: field selector %d", video.ErrInvalidConfig, field)
	}
	info := src.Info()
	if field.DoublesRate() {
		info.NumFrames *= 2
	}
	info.FieldOrder = video.Progressive

	logrus.WithFields(logrus.Fields{
		"function": "WorkerInterpolator.Interpolate",
		"source":   src.Name(),
		"field":    int(field),
		"device":   device.String(),
	}).Info("Creating worker field interpolation")

	return &interpolateNode{
		Base:   graph.NewBase("FieldInterpolate("+device.String()+")", info),
		src:    src,
		field:  field,
		device: device,
		worker: wi.worker,
	}, nil
}

type interpolateNode struct {
	graph.Base
	src    graph.Node
	field  interfaces.FieldSelector
	device interfaces.Device
	worker *Worker
}

func (in *interpolateNode) Requests(n int) []graph.Request {
	frame, _ := in.field.Source(n)
	return []graph.Request{{Node: in.src, N: frame}}
}

func (in *interpolateNode) Compute(n int, frames []*video.Frame) (*video.Frame, error) {
	_, parity := in.field.Source(n)
	src := frames[0]
	req := &WorkerRequest{
		ID:     uuid.NewString(),
		Parity: parity,
		Device: in.device.String(),
		Bits:   src.Format.BitsPerSample,
		Planes: make([]WirePlane, len(src.Planes)),
	}
	for i, p := range src.Planes {
		req.Planes[i] = toWire(p)
	}

	resp, err := in.worker.Call(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", video.ErrExternalFilter, err)
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("%w: interpolator worker: %s", video.ErrExternalFilter, resp.Error)
	}

	out := &video.Frame{Format: src.Format, Planes: make([]*video.Plane, len(resp.Planes))}
	for i, wp := range resp.Planes {
		if want := wp.Width * wp.Height * src.Format.BytesPerSample; len(wp.Data) != want || want == 0 {
			return nil, fmt.Errorf("%w: interpolator worker plane %d has %d bytes, expected %d",
				video.ErrExternalFilter, i, len(wp.Data), want)
		}
		out.Planes[i] = fromWire(wp, src.Format.BytesPerSample)
	}
	if err := video.CheckCompatible(src, out); err != nil {
		return nil, fmt.Errorf("%w: interpolator worker returned %w", video.ErrExternalFilter, err)
	}
	return out, nil
}

func toWire(p *video.Plane) WirePlane {
	row := p.Width * p.BytesPerSample
	data := make([]byte, 0, row*p.Height)
	for y := 0; y < p.Height; y++ {
		off := y * p.Stride * p.BytesPerSample
		data = append(data, p.Data[off:off+row]...)
	}
	return WirePlane{Width: p.Width, Height: p.Height, Data: data}
}

func fromWire(wp WirePlane, bytesPerSample int) *video.Plane {
	p := video.NewPlane(wp.Width, wp.Height, bytesPerSample)
	copy(p.Data, wp.Data)
	return p
}
