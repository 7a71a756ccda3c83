package gpu

import (
	"encoding/binary"
	"errors"
	"fmt"
	"unsafe"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// DefaultAlphaThreshold is the alpha byte above which a pixel counts as
// content: 76/255 is just over 0.3 coverage.
const DefaultAlphaThreshold uint8 = 76

// Bounds is the reduction result in pixel coordinates: the extreme
// positions of every qualifying pixel, edges inclusive.
type Bounds struct {
	MinX, MinY, MaxX, MaxY uint32
}

// ErrNotReady is returned when a reduction is requested before Open
// succeeded.
var ErrNotReady = errors.New("gpu: runtime not initialized")

const (
	boundsParamsSize = 16 // width, height, threshold, pad
	boundsAccumSize  = 16 // four u32 accumulator words
	sentinelMin      = ^uint32(0)
)

// ContentBounds runs the reduction kernel over premultiplied RGBA
// pixels and returns the extreme coordinates of pixels whose alpha
// byte exceeds threshold. found is false when no pixel qualifies.
//
// The accumulator is allocated fresh per call, zero-extreme
// initialized (min words at MAX, max words at 0), and read back by
// mapping a staging buffer once the submission has retired.
func (r *Runtime) ContentBounds(pixels []uint8, width, height int, threshold uint8) (Bounds, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.ready {
		return Bounds{}, false, ErrNotReady
	}
	if width <= 0 || height <= 0 || len(pixels) < width*height*4 {
		return Bounds{}, false, nil
	}

	w, h := uint32(width), uint32(height) //nolint:gosec // image dimensions fit uint32
	pixelBufSize := uint64(w) * uint64(h) * 4

	pixelBuf, err := r.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "bounds_pixels", Size: pixelBufSize,
		Usage: gputypes.BufferUsageStorage | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return Bounds{}, false, fmt.Errorf("gpu: device stage: create pixel buffer: %w", err)
	}
	defer r.device.DestroyBuffer(pixelBuf)

	accumBuf, err := r.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "bounds_accum", Size: boundsAccumSize,
		Usage: gputypes.BufferUsageStorage | gputypes.BufferUsageCopySrc | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return Bounds{}, false, fmt.Errorf("gpu: device stage: create accumulator: %w", err)
	}
	defer r.device.DestroyBuffer(accumBuf)

	stagingBuf, err := r.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "bounds_staging", Size: boundsAccumSize,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return Bounds{}, false, fmt.Errorf("gpu: device stage: create staging buffer: %w", err)
	}
	defer r.device.DestroyBuffer(stagingBuf)

	paramsBuf, err := r.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "bounds_params", Size: boundsParamsSize,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return Bounds{}, false, fmt.Errorf("gpu: device stage: create params buffer: %w", err)
	}
	defer r.device.DestroyBuffer(paramsBuf)

	// RGBA bytes in memory are already the little-endian u32 packing
	// the shader expects, so the pixels upload verbatim.
	if err := r.queue.WriteBuffer(pixelBuf, 0, pixels[:pixelBufSize]); err != nil {
		return Bounds{}, false, fmt.Errorf("gpu: queue stage: upload pixels: %w", err)
	}
	if err := r.queue.WriteBuffer(accumBuf, 0, initialAccum()); err != nil {
		return Bounds{}, false, fmt.Errorf("gpu: queue stage: seed accumulator: %w", err)
	}
	if err := r.queue.WriteBuffer(paramsBuf, 0, packParams(w, h, uint32(threshold))); err != nil {
		return Bounds{}, false, fmt.Errorf("gpu: queue stage: upload params: %w", err)
	}

	bindGroup, err := r.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label: "bounds_bind", Layout: r.boundsBindLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{Buffer: paramsBuf.NativeHandle(), Offset: 0, Size: boundsParamsSize}},
			{Binding: 1, Resource: gputypes.BufferBinding{Buffer: pixelBuf.NativeHandle(), Offset: 0, Size: pixelBufSize}},
			{Binding: 2, Resource: gputypes.BufferBinding{Buffer: accumBuf.NativeHandle(), Offset: 0, Size: boundsAccumSize}},
		},
	})
	if err != nil {
		return Bounds{}, false, fmt.Errorf("gpu: kernel stage: create bind group: %w", err)
	}
	defer r.device.DestroyBindGroup(bindGroup)

	readback, err := r.dispatchBounds(bindGroup, accumBuf, stagingBuf, w, h)
	if err != nil {
		return Bounds{}, false, err
	}

	b := Bounds{
		MinX: binary.LittleEndian.Uint32(readback[0:4]),
		MinY: binary.LittleEndian.Uint32(readback[4:8]),
		MaxX: binary.LittleEndian.Uint32(readback[8:12]),
		MaxY: binary.LittleEndian.Uint32(readback[12:16]),
	}
	if b.MinX == sentinelMin {
		// No pixel cleared the threshold; the accumulator is untouched.
		return Bounds{}, false, nil
	}
	slogger().Debug("gpu: bounds reduced",
		"width", width, "height", height,
		"minX", b.MinX, "minY", b.MinY, "maxX", b.MaxX, "maxY", b.MaxY)
	return b, true, nil
}

func (r *Runtime) dispatchBounds(bindGroup hal.BindGroup, accumBuf, stagingBuf hal.Buffer, w, h uint32) ([]byte, error) {
	encoder, err := r.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "bounds_encoder"})
	if err != nil {
		return nil, fmt.Errorf("gpu: queue stage: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("bounds"); err != nil {
		return nil, fmt.Errorf("gpu: queue stage: begin encoding: %w", err)
	}

	pass := encoder.BeginComputePass(&hal.ComputePassDescriptor{Label: "bounds_pass"})
	pass.SetPipeline(r.boundsPipeline)
	pass.SetBindGroup(0, bindGroup, nil)
	pass.Dispatch((w+7)/8, (h+7)/8, 1)
	pass.End()

	encoder.CopyBufferToBuffer(accumBuf, stagingBuf, []hal.BufferCopy{
		{SrcOffset: 0, DstOffset: 0, Size: boundsAccumSize},
	})
	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return nil, fmt.Errorf("gpu: queue stage: end encoding: %w", err)
	}
	defer r.device.FreeCommandBuffer(cmdBuf)

	subIdx, err := r.queue.Submit([]hal.CommandBuffer{cmdBuf})
	if err != nil {
		return nil, fmt.Errorf("gpu: queue stage: submit: %w", err)
	}
	// The HAL tracks submission fences internally; drain the device and
	// confirm the submission index retired before touching the staging
	// buffer.
	if err := r.device.WaitIdle(); err != nil {
		return nil, fmt.Errorf("gpu: queue stage: wait: %w", err)
	}
	if done := r.queue.PollCompleted(); done < subIdx {
		return nil, fmt.Errorf("gpu: queue stage: submission %d not completed (last retired %d)", subIdx, done)
	}

	mapping, err := r.device.MapBuffer(stagingBuf, 0, boundsAccumSize)
	if err != nil {
		return nil, fmt.Errorf("gpu: queue stage: map staging buffer: %w", err)
	}
	readback := make([]byte, boundsAccumSize)
	copy(readback, unsafe.Slice((*byte)(mapping.Ptr), boundsAccumSize))
	if err := r.device.UnmapBuffer(stagingBuf); err != nil {
		return nil, fmt.Errorf("gpu: queue stage: unmap staging buffer: %w", err)
	}
	return readback, nil
}

func initialAccum() []byte {
	out := make([]byte, boundsAccumSize)
	binary.LittleEndian.PutUint32(out[0:4], sentinelMin)
	binary.LittleEndian.PutUint32(out[4:8], sentinelMin)
	// max words start at zero
	return out
}

func packParams(w, h, threshold uint32) []byte {
	out := make([]byte, boundsParamsSize)
	binary.LittleEndian.PutUint32(out[0:4], w)
	binary.LittleEndian.PutUint32(out[4:8], h)
	binary.LittleEndian.PutUint32(out[8:12], threshold)
	return out
}
