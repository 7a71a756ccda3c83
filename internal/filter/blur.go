package filter

import "sync"

// tempPool holds float32 scratch buffers for the blur passes.
var tempPool = sync.Pool{
	New: func() any {
		return make([]float32, 0)
	},
}

func getTempBuffer(size int) []float32 {
	buf := tempPool.Get().([]float32)
	if cap(buf) < size {
		return make([]float32, size)
	}
	return buf[:size]
}

func putTempBuffer(buf []float32) {
	tempPool.Put(buf[:0]) //nolint:staticcheck // slice put is intentional
}

// GaussianBlur applies a separable Gaussian blur to premultiplied RGBA
// bytes in place. radiusX and radiusY are independent, so a strongly
// lopsided pair produces a directional smear. Edges are clamped, never
// wrapped.
//
// The separable algorithm runs a horizontal then a vertical 1D pass,
// giving O(w*h*(rx+ry)) work instead of O(w*h*rx*ry).
func GaussianBlur(data []uint8, width, height int, radiusX, radiusY float64) {
	if width <= 0 || height <= 0 {
		return
	}
	if radiusX <= 0 && radiusY <= 0 {
		return
	}

	temp := getTempBuffer(width * height * 4)
	defer putTempBuffer(temp)

	if radiusX > 0 {
		blurHorizontal(data, temp, width, height, CachedGaussianKernel(radiusX))
	} else {
		for i, v := range data {
			temp[i] = float32(v)
		}
	}

	if radiusY > 0 {
		blurVertical(temp, data, width, height, CachedGaussianKernel(radiusY))
	} else {
		for i, v := range temp {
			data[i] = roundByte(v)
		}
	}
}

// blurHorizontal convolves each row with the kernel, reading bytes and
// writing floats.
func blurHorizontal(src []uint8, dst []float32, width, height int, kernel []float32) {
	halfKernel := len(kernel) / 2

	for y := 0; y < height; y++ {
		row := y * width * 4
		for x := 0; x < width; x++ {
			var r, g, b, a float32
			for k, w := range kernel {
				kx := x + k - halfKernel
				if kx < 0 {
					kx = 0
				} else if kx >= width {
					kx = width - 1
				}
				i := row + kx*4
				r += w * float32(src[i+0])
				g += w * float32(src[i+1])
				b += w * float32(src[i+2])
				a += w * float32(src[i+3])
			}
			o := row + x*4
			dst[o+0] = r
			dst[o+1] = g
			dst[o+2] = b
			dst[o+3] = a
		}
	}
}

// blurVertical convolves each column with the kernel, reading floats
// and writing bytes.
func blurVertical(src []float32, dst []uint8, width, height int, kernel []float32) {
	halfKernel := len(kernel) / 2

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var r, g, b, a float32
			for k, w := range kernel {
				ky := y + k - halfKernel
				if ky < 0 {
					ky = 0
				} else if ky >= height {
					ky = height - 1
				}
				i := (ky*width + x) * 4
				r += w * src[i+0]
				g += w * src[i+1]
				b += w * src[i+2]
				a += w * src[i+3]
			}
			o := (y*width + x) * 4
			dst[o+0] = roundByte(r)
			dst[o+1] = roundByte(g)
			dst[o+2] = roundByte(b)
			dst[o+3] = roundByte(a)
		}
	}
}

func roundByte(v float32) uint8 {
	v += 0.5
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
