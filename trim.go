package iconic

import (
	"fmt"
	"sync"

	"github.com/philocalyst/iconic/internal/gpu"
)

// DefaultAlphaThreshold is the alpha byte a pixel must exceed to count
// as content when trimming.
const DefaultAlphaThreshold = gpu.DefaultAlphaThreshold

// Reducer finds the extreme coordinates of content pixels in a
// premultiplied RGBA grid. The GPU runtime implements it; a sequential
// scan backs machines without a device.
type Reducer interface {
	ContentBounds(pixels []uint8, width, height int, threshold uint8) (gpu.Bounds, bool, error)
}

// cpuReducer is the sequential fallback Reducer.
type cpuReducer struct{}

func (cpuReducer) ContentBounds(pixels []uint8, width, height int, threshold uint8) (gpu.Bounds, bool, error) {
	b, found := gpu.CPUBounds(pixels, width, height, threshold)
	return b, found, nil
}

// CPUReducer returns a Reducer that scans on the CPU.
func CPUReducer() Reducer { return cpuReducer{} }

// Trimmer computes content bounding boxes using an injected Reducer.
type Trimmer struct {
	reducer   Reducer
	threshold uint8
}

// NewTrimmer builds a Trimmer around the given Reducer. A nil reducer
// selects the CPU scan.
func NewTrimmer(r Reducer) *Trimmer {
	if r == nil {
		r = cpuReducer{}
	}
	return &Trimmer{reducer: r, threshold: DefaultAlphaThreshold}
}

// SetThreshold overrides the alpha byte threshold.
func (t *Trimmer) SetThreshold(threshold uint8) {
	t.threshold = threshold
}

// Trim returns the smallest rectangle, in the image's own coordinate
// space, containing every pixel whose alpha exceeds the threshold.
//
// A degenerate image (infinite, zero-area, or null extent) returns
// RectNull without touching the reducer: nothing to trim is defined
// behavior, not an error. An image with no qualifying pixel also
// returns RectNull.
func (t *Trimmer) Trim(im *Image) (Rect, error) {
	if im == nil || im.extent.IsNull() || im.extent.IsInfinite() || im.extent.IsEmpty() {
		return RectNull, nil
	}

	// Render with the origin shifted to (0, 0) so the reduction works
	// in surface coordinates.
	surface := im.extent.Integral()
	pix, err := im.Rasterize(surface)
	if err != nil {
		return RectNull, fmt.Errorf("trim: render: %w", err)
	}

	b, found, err := t.reducer.ContentBounds(pix.Data(), pix.Width(), pix.Height(), t.threshold)
	if err != nil {
		return RectNull, fmt.Errorf("trim: reduce: %w", err)
	}
	if !found || b.MinX > b.MaxX || b.MinY > b.MaxY {
		return RectNull, nil
	}

	// Shift back into the image's coordinate space. The +1 converts
	// the inclusive last-pixel index into a pixel count.
	return Rect{
		X: float64(b.MinX) + surface.X,
		Y: float64(b.MinY) + surface.Y,
		W: float64(b.MaxX-b.MinX) + 1,
		H: float64(b.MaxY-b.MinY) + 1,
	}, nil
}

// Trimmed crops the image to its content bounding box. An image with
// no content is returned unchanged.
func (t *Trimmer) Trimmed(im *Image) (*Image, error) {
	r, err := t.Trim(im)
	if err != nil {
		return nil, err
	}
	if r.IsNull() {
		return im, nil
	}
	return im.Cropped(r), nil
}

var (
	sharedRuntime     *gpu.Runtime
	sharedRuntimeOnce sync.Once
	sharedRuntimeErr  error
)

func openSharedRuntime() {
	sharedRuntimeOnce.Do(func() {
		rt := &gpu.Runtime{}
		if err := rt.Open(); err != nil {
			sharedRuntimeErr = err
			Logger().Warn("trim: GPU unavailable, using CPU scan", "error", err)
			return
		}
		sharedRuntime = rt
	})
}

// SharedTrimmer returns a process-wide Trimmer backed by the GPU
// runtime, opening the device on first use. When no device is usable
// it falls back to the CPU scan; TrimAcceleration reports which path
// was taken.
func SharedTrimmer() *Trimmer {
	openSharedRuntime()
	if sharedRuntime == nil {
		return NewTrimmer(cpuReducer{})
	}
	return NewTrimmer(sharedRuntime)
}

// TrimAcceleration reports whether SharedTrimmer dispatches on the
// GPU, opening the device on first use. When accelerated is false the
// error explains why initialization failed.
func TrimAcceleration() (accelerated bool, err error) {
	openSharedRuntime()
	return sharedRuntime != nil, sharedRuntimeErr
}
