package gpu

// CPUBounds is the reference reduction: the same scan as the kernel,
// run sequentially. It backs tests and machines without a GPU.
func CPUBounds(pixels []uint8, width, height int, threshold uint8) (Bounds, bool) {
	if width <= 0 || height <= 0 || len(pixels) < width*height*4 {
		return Bounds{}, false
	}

	b := Bounds{MinX: sentinelMin, MinY: sentinelMin, MaxX: 0, MaxY: 0}
	found := false
	for y := 0; y < height; y++ {
		row := y * width * 4
		for x := 0; x < width; x++ {
			if pixels[row+x*4+3] > threshold {
				ux, uy := uint32(x), uint32(y) //nolint:gosec // loop bounds fit uint32
				if ux < b.MinX {
					b.MinX = ux
				}
				if uy < b.MinY {
					b.MinY = uy
				}
				if ux > b.MaxX {
					b.MaxX = ux
				}
				if uy > b.MaxY {
					b.MaxY = uy
				}
				found = true
			}
		}
	}
	if !found {
		return Bounds{}, false
	}
	return b, true
}
