package iconic

import (
	"errors"
	"fmt"
	"math"
)

// ErrInfiniteExtent is returned when an operation needs a finite pixel
// region but the image's extent is unbounded.
var ErrInfiniteExtent = errors.New("iconic: image has infinite extent")

// Image is an immutable picture value. Operations never mutate an
// Image; they return a new one sharing or replacing the backing
// buffer.
//
// An Image is either backed by a Pixmap placed at a canvas origin, or
// a generator: a solid color covering the infinite plane. The extent
// starts out covering the whole pixmap and can shrink under Cropped
// without moving the backing. Pixels outside the extent read as
// transparent, so compositing does not require images to agree on
// size.
type Image struct {
	pix *Pixmap
	// ox, oy are the canvas coordinates of the pixmap's first pixel.
	// The extent is always contained in the pixmap's placed region.
	ox, oy float64
	extent Rect
	fill   RGBA
}

// NewImage wraps a pixmap as an image whose extent starts at the
// origin.
func NewImage(p *Pixmap) *Image {
	return NewImageAt(p, 0, 0)
}

// NewImageAt wraps a pixmap positioned at (x, y).
func NewImageAt(p *Pixmap, x, y float64) *Image {
	return &Image{
		pix:    p,
		ox:     x,
		oy:     y,
		extent: NewRect(x, y, float64(p.Width()), float64(p.Height())),
	}
}

// NewColorImage returns a generator image: the given color over the
// infinite plane. It has no pixel backing until cropped.
func NewColorImage(c RGBA) *Image {
	return &Image{extent: RectInfinite, fill: c}
}

// Extent returns the region of the plane this image covers.
func (im *Image) Extent() Rect {
	return im.extent
}

// IsGenerator reports whether the image is a procedural fill with no
// pixel backing.
func (im *Image) IsGenerator() bool {
	return im.pix == nil
}

// Width returns the extent width rounded to pixels, or 0 for an
// unbounded image.
func (im *Image) Width() int {
	if im.extent.IsInfinite() {
		return 0
	}
	return int(math.Round(im.extent.W))
}

// Height returns the extent height rounded to pixels, or 0 for an
// unbounded image.
func (im *Image) Height() int {
	if im.extent.IsInfinite() {
		return 0
	}
	return int(math.Round(im.extent.H))
}

// At returns the straight-alpha color at canvas coordinates (x, y).
// Coordinates outside the extent read as transparent.
func (im *Image) At(x, y float64) RGBA {
	if !im.extent.IsInfinite() && !im.extent.Contains(x, y) {
		return Transparent
	}
	if im.pix == nil {
		return im.fill
	}
	px := int(math.Floor(x - im.ox))
	py := int(math.Floor(y - im.oy))
	return im.pix.GetPixel(px, py)
}

// Cropped restricts the image to r, intersecting with the current
// extent. The backing stays in place; only the visible region shrinks.
// Cropping a generator image materializes nothing; the fill simply
// gains a boundary.
func (im *Image) Cropped(r Rect) *Image {
	ext := im.extent.Intersect(r)
	return &Image{pix: im.pix, ox: im.ox, oy: im.oy, extent: ext, fill: im.fill}
}

// Translated shifts the image by (dx, dy). The backing pixels are
// shared; only the placement moves.
func (im *Image) Translated(dx, dy float64) *Image {
	return &Image{
		pix:    im.pix,
		ox:     im.ox + dx,
		oy:     im.oy + dy,
		extent: im.extent.Translated(dx, dy),
		fill:   im.fill,
	}
}

// Rasterize renders the region r of the image into a fresh pixmap.
// The pixmap's (0, 0) corresponds to r's origin. An infinite r is an
// error; a null r yields an empty pixmap.
func (im *Image) Rasterize(r Rect) (*Pixmap, error) {
	if r.IsInfinite() {
		return nil, ErrInfiniteExtent
	}
	if r.IsNull() || r.IsEmpty() {
		return NewPixmap(0, 0), nil
	}
	r = r.Integral()
	w := int(r.W)
	h := int(r.H)
	out := NewPixmap(w, h)

	ov := im.extent.Intersect(r)
	if ov.IsNull() || ov.IsEmpty() {
		return out, nil
	}
	// Rounding the overlap outward can poke one pixel past either the
	// destination grid or, for fractional extent origins, the backing
	// pixmap. Clamp the copy region to both.
	ov = ov.Integral()
	dstX := int(ov.X - r.X)
	dstY := int(ov.Y - r.Y)
	cw := int(ov.W)
	ch := int(ov.H)

	if im.pix == nil {
		// Generator: fill the overlap with the solid color.
		dstX, dstY, cw, ch = clampRegion(dstX, dstY, cw, ch, w, h)
		if cw <= 0 || ch <= 0 {
			return out, nil
		}
		pm := im.fill.Premultiply()
		cr := uint8(clamp255(pm.R * 255))
		cg := uint8(clamp255(pm.G * 255))
		cb := uint8(clamp255(pm.B * 255))
		ca := uint8(clamp255(pm.A * 255))
		for y := 0; y < ch; y++ {
			row := ((dstY+y)*w + dstX) * 4
			for x := 0; x < cw; x++ {
				i := row + x*4
				out.data[i+0] = cr
				out.data[i+1] = cg
				out.data[i+2] = cb
				out.data[i+3] = ca
			}
		}
		return out, nil
	}

	// Backed image: copy the overlapping rows, sampling the pixmap the
	// way At does (floor of the canvas offset from the backing origin).
	srcX := int(math.Floor(ov.X - im.ox))
	srcY := int(math.Floor(ov.Y - im.oy))
	if srcX < 0 {
		dstX -= srcX
		cw += srcX
		srcX = 0
	}
	if srcY < 0 {
		dstY -= srcY
		ch += srcY
		srcY = 0
	}
	if srcX+cw > im.pix.width {
		cw = im.pix.width - srcX
	}
	if srcY+ch > im.pix.height {
		ch = im.pix.height - srcY
	}
	if dstX < 0 {
		srcX -= dstX
		cw += dstX
		dstX = 0
	}
	if dstY < 0 {
		srcY -= dstY
		ch += dstY
		dstY = 0
	}
	if dstX+cw > w {
		cw = w - dstX
	}
	if dstY+ch > h {
		ch = h - dstY
	}
	if cw <= 0 || ch <= 0 {
		return out, nil
	}
	for y := 0; y < ch; y++ {
		si := ((srcY+y)*im.pix.width + srcX) * 4
		di := ((dstY+y)*w + dstX) * 4
		copy(out.data[di:di+cw*4], im.pix.data[si:si+cw*4])
	}
	return out, nil
}

// clampRegion trims a destination rectangle to a w x h grid.
func clampRegion(x, y, rw, rh, w, h int) (int, int, int, int) {
	if x < 0 {
		rw += x
		x = 0
	}
	if y < 0 {
		rh += y
		y = 0
	}
	if x+rw > w {
		rw = w - x
	}
	if y+rh > h {
		rh = h - y
	}
	return x, y, rw, rh
}

// Materialize returns the image flattened to a pixmap covering its own
// extent. Fails for unbounded images.
func (im *Image) Materialize() (*Pixmap, error) {
	if im.extent.IsInfinite() {
		return nil, ErrInfiniteExtent
	}
	return im.Rasterize(im.extent)
}

func (im *Image) String() string {
	kind := "pixmap"
	if im.pix == nil {
		kind = "fill"
	}
	return fmt.Sprintf("Image(%s, extent=%v)", kind, im.extent)
}
