package real

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opd-ai/mpeg2stinx/graph"
	"github.com/opd-ai/mpeg2stinx/interfaces"
	testsim "github.com/opd-ai/mpeg2stinx/testing"
	"github.com/opd-ai/mpeg2stinx/video"
)

// fakeWorker serves requests on an in-memory stream pair with handle.
// A nil response from handle drops the request.
func fakeWorker(t *testing.T, handle func(*WorkerRequest) *WorkerResponse) *Worker {
	t.Helper()
	reqR, reqW := io.Pipe()
	respR, respW := io.Pipe()
	go func() {
		for {
			var req WorkerRequest
			if err := readMessage(reqR, &req); err != nil {
				return
			}
			if resp := handle(&req); resp != nil {
				if err := writeMessage(respW, resp); err != nil {
					return
				}
			}
		}
	}()
	t.Cleanup(func() {
		respW.Close()
		reqR.Close()
	})
	return NewWorker(respR, reqW, time.Second)
}

func echo(req *WorkerRequest) *WorkerResponse {
	return &WorkerResponse{ID: req.ID, Planes: req.Planes}
}

func TestMessageFraming(t *testing.T) {
	var buf bytes.Buffer
	in := WorkerRequest{ID: "abc", Parity: 1, Device: "opencl", Bits: 16,
		Planes: []WirePlane{{Width: 2, Height: 1, Data: []byte{1, 2, 3, 4}}}}
	require.NoError(t, writeMessage(&buf, &in))
	assert.Equal(t, uint32(buf.Len()-4), uint32(buf.Bytes()[0])<<24|uint32(buf.Bytes()[1])<<16|
		uint32(buf.Bytes()[2])<<8|uint32(buf.Bytes()[3]))

	var out WorkerRequest
	require.NoError(t, readMessage(&buf, &out))
	assert.Equal(t, in, out)

	oversized := bytes.NewReader([]byte{0xff, 0xff, 0xff, 0xff})
	assert.Error(t, readMessage(oversized, &out))
}

func TestWorkerInterpolatorRoundTrip(t *testing.T) {
	var seen []int
	worker := fakeWorker(t, func(req *WorkerRequest) *WorkerResponse {
		seen = append(seen, req.Parity)
		assert.Equal(t, "cpu", req.Device)
		assert.Equal(t, 16, req.Bits)
		return echo(req)
	})
	src := testsim.NoiseClip(video.YUV420P16, 4, 4, 2, 7)

	node, err := NewWorkerInterpolator(worker).Interpolate(src, interfaces.FieldBoth, interfaces.DeviceCPU)
	require.NoError(t, err)
	assert.Equal(t, 4, node.Info().NumFrames)

	resolver := graph.NewResolver(1)
	for n := 0; n < 2; n++ {
		f, err := resolver.GetFrame(context.Background(), node, n)
		require.NoError(t, err)
		want := src.Frame(0)
		for i := range want.Planes {
			assert.Equal(t, want.Planes[i].Data, f.Planes[i].Data)
		}
	}
	assert.Equal(t, []int{0, 1}, seen)
}

func TestWorkerErrorResponse(t *testing.T) {
	worker := fakeWorker(t, func(req *WorkerRequest) *WorkerResponse {
		return &WorkerResponse{ID: req.ID, Error: "no device"}
	})
	src := testsim.FlatClip(video.Gray8, 4, 4, 1, 0)
	node, err := NewWorkerInterpolator(worker).Interpolate(src, interfaces.FieldTop, interfaces.DeviceOpenCL)
	require.NoError(t, err)

	_, err = graph.NewResolver(1).GetFrame(context.Background(), node, 0)
	assert.ErrorIs(t, err, video.ErrExternalFilter)
	assert.Contains(t, err.Error(), "no device")

	// A reported error leaves the stream usable.
	resp, err := worker.Call(&WorkerRequest{ID: "next"})
	require.NoError(t, err)
	assert.Equal(t, "next", resp.ID)
}

func TestWorkerBadPlaneSize(t *testing.T) {
	worker := fakeWorker(t, func(req *WorkerRequest) *WorkerResponse {
		planes := append([]WirePlane(nil), req.Planes...)
		planes[0].Data = planes[0].Data[1:]
		return &WorkerResponse{ID: req.ID, Planes: planes}
	})
	src := testsim.FlatClip(video.Gray8, 4, 4, 1, 0)
	node, err := NewWorkerInterpolator(worker).Interpolate(src, interfaces.FieldBottom, interfaces.DeviceCPU)
	require.NoError(t, err)

	_, err = graph.NewResolver(1).GetFrame(context.Background(), node, 0)
	assert.ErrorIs(t, err, video.ErrExternalFilter)
}

func TestWorkerIDMismatchBreaksStream(t *testing.T) {
	worker := fakeWorker(t, func(req *WorkerRequest) *WorkerResponse {
		return &WorkerResponse{ID: "someone-else"}
	})
	_, err := worker.Call(&WorkerRequest{ID: "mine"})
	assert.ErrorIs(t, err, ErrWorkerBroken)

	_, err = worker.Call(&WorkerRequest{ID: "again"})
	assert.ErrorIs(t, err, ErrWorkerBroken)
}

func TestWorkerTimeout(t *testing.T) {
	worker := fakeWorker(t, func(*WorkerRequest) *WorkerResponse { return nil })
	worker.timeout = 20 * time.Millisecond

	_, err := worker.Call(&WorkerRequest{ID: "slow"})
	assert.ErrorIs(t, err, ErrWorkerBroken)
	assert.Contains(t, err.Error(), "no response")
}

func TestWorkerTimeoutClosesStreams(t *testing.T) {
	reqR, reqW := io.Pipe()
	respR, respW := io.Pipe()
	go io.Copy(io.Discard, reqR)
	worker := NewWorker(respR, reqW, 20*time.Millisecond)

	_, err := worker.Call(&WorkerRequest{ID: "slow"})
	assert.ErrorIs(t, err, ErrWorkerBroken)

	_, err = respW.Write([]byte{0})
	assert.ErrorIs(t, err, io.ErrClosedPipe, "response stream is closed once the call gives up")
	assert.NoError(t, worker.Close())
}

func TestWorkerClose(t *testing.T) {
	worker := fakeWorker(t, echo)
	require.NoError(t, worker.Close())
	_, err := worker.Call(&WorkerRequest{ID: "late"})
	assert.ErrorIs(t, err, ErrWorkerBroken)
}

func TestStartWorkerEmptyCommand(t *testing.T) {
	_, err := StartWorker(context.Background(), nil, time.Second)
	assert.ErrorIs(t, err, video.ErrInvalidConfig)
}

func TestNewCollaborators(t *testing.T) {
	c := NewCollaborators(nil)
	assert.NoError(t, c.Check(interfaces.NeedResizer|interfaces.NeedRepairer|
		interfaces.NeedMotionDeinterlacer|interfaces.NeedAverager))
	assert.ErrorIs(t, c.Check(interfaces.NeedInterpolator), interfaces.ErrMissingCollaborator)

	c = NewCollaborators(fakeWorker(t, echo))
	assert.NoError(t, c.Check(interfaces.NeedInterpolator))
}
