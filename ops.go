package iconic

import (
	"errors"
	"fmt"
	"image"
	"math"

	xdraw "golang.org/x/image/draw"

	"github.com/philocalyst/iconic/internal/blend"
	"github.com/philocalyst/iconic/internal/filter"
)

// ErrBadScale is returned when a scale operation resolves to a zero or
// negative factor.
var ErrBadScale = errors.New("iconic: scale factor must be positive")

// Tint replaces the image's chroma with a flat color while keeping its
// alpha as a multiplicative mask: a solid fill clipped to the source's
// footprint.
func (im *Image) Tint(c RGBA) (*Image, error) {
	src, err := im.Materialize()
	if err != nil {
		return nil, fmt.Errorf("tint: %w", err)
	}
	out := NewPixmap(src.Width(), src.Height())
	out.Clear(c)
	blend.ApplyMask(out.Data(), src.Data(), blend.SourceIn)
	return NewImageAt(out, im.extent.X, im.extent.Y), nil
}

// FillColorize has the same observable contract as Tint: solid fill
// clipped to the source alpha.
func (im *Image) FillColorize(c RGBA) (*Image, error) {
	out, err := im.Tint(c)
	if err != nil {
		return nil, fmt.Errorf("fill-colorize: %w", err)
	}
	return out, nil
}

// InvertedAlphaWhiteBackground produces white where the source was
// transparent and transparency where it was opaque: the source alpha
// inverted and used to mask white over clear.
func (im *Image) InvertedAlphaWhiteBackground() (*Image, error) {
	src, err := im.Materialize()
	if err != nil {
		return nil, fmt.Errorf("inverted-alpha-white-background: %w", err)
	}
	out := NewPixmap(src.Width(), src.Height())
	sd := src.Data()
	od := out.Data()
	for i := 0; i+3 < len(sd); i += 4 {
		inv := 255 - sd[i+3]
		// White premultiplied by the inverted alpha.
		od[i+0] = inv
		od[i+1] = inv
		od[i+2] = inv
		od[i+3] = inv
	}
	return NewImageAt(out, im.extent.X, im.extent.Y), nil
}

// BlurDown applies a downward motion blur of the given spread, then
// shifts the result down by pageOffset pixels. The two steps always
// travel together because the engraving effect always pairs them.
//
// A non-positive spread skips the blur stage and only applies the
// offset; the result degrades to a shifted copy rather than failing.
func (im *Image) BlurDown(spread, pageOffset float64) (*Image, error) {
	if spread <= 0 {
		return im.Translated(0, pageOffset), nil
	}

	// Pad vertically so the smear has room instead of clamping against
	// the content edge.
	pad := math.Ceil(spread * 3)
	region := NewRect(
		im.extent.X, im.extent.Y-pad,
		im.extent.W, im.extent.H+2*pad,
	)
	src, err := im.Rasterize(region)
	if err != nil {
		return nil, fmt.Errorf("blur-down: %w", err)
	}
	filter.GaussianBlur(src.Data(), src.Width(), src.Height(), 0, spread)
	return NewImageAt(src, region.X, region.Y+pageOffset), nil
}

// ApplyingOpacity multiplies the alpha channel by alpha, clamped to
// [0, 1]. Color content is unchanged; in the premultiplied buffer this
// scales all four bytes uniformly.
func (im *Image) ApplyingOpacity(alpha float64) (*Image, error) {
	if alpha < 0 {
		alpha = 0
	}
	if alpha > 1 {
		alpha = 1
	}
	if im.pix == nil {
		return &Image{extent: im.extent, fill: im.fill.WithAlpha(alpha)}, nil
	}
	src, err := im.Materialize()
	if err != nil {
		return nil, fmt.Errorf("applying-opacity: %w", err)
	}
	d := src.Data()
	scale := uint32(math.Round(alpha * 255))
	for i := range d {
		d[i] = uint8((uint32(d[i])*scale + 127) / 255)
	}
	return NewImageAt(src, im.extent.X, im.extent.Y), nil
}

// Composite layers the image over background using the given operator.
// The result covers the union of both extents, which must be finite.
func (im *Image) Composite(background *Image, op blend.Op) (*Image, error) {
	region := im.extent.Union(background.extent)
	if region.IsInfinite() {
		return nil, fmt.Errorf("composite: %w", ErrInfiniteExtent)
	}
	region = region.Integral()

	bot, err := background.Rasterize(region)
	if err != nil {
		return nil, fmt.Errorf("composite: background: %w", err)
	}
	top, err := im.Rasterize(region)
	if err != nil {
		return nil, fmt.Errorf("composite: top layer: %w", err)
	}
	blend.Composite(bot.Data(), top.Data(), op)
	return NewImageAt(bot, region.X, region.Y), nil
}

// Masked applies the image through mask using the given mask operator.
// The mask is sampled in the same canvas space as the image.
func (im *Image) Masked(mask *Image, op blend.MaskOp) (*Image, error) {
	src, err := im.Materialize()
	if err != nil {
		return nil, fmt.Errorf("masked: %w", err)
	}
	mk, err := mask.Rasterize(im.extent.Integral())
	if err != nil {
		return nil, fmt.Errorf("masked: mask: %w", err)
	}
	blend.ApplyMask(src.Data(), mk.Data(), op)
	return NewImageAt(src, im.extent.X, im.extent.Y), nil
}

// Scaled uniformly scales the image so it fits within maxW x maxH
// preserving aspect ratio, then divides the scale by ratio. A ratio
// above 1 shrinks the fitted result further.
func (im *Image) Scaled(maxW, maxH, ratio float64) (*Image, error) {
	if ratio <= 0 {
		return nil, fmt.Errorf("scaled: ratio %g: %w", ratio, ErrBadScale)
	}
	if im.extent.IsInfinite() || im.extent.IsEmpty() {
		return nil, fmt.Errorf("scaled: %w", ErrInfiniteExtent)
	}
	fit := math.Min(maxW/im.extent.W, maxH/im.extent.H)
	scale := fit / ratio
	if scale <= 0 || math.IsInf(scale, 0) || math.IsNaN(scale) {
		return nil, fmt.Errorf("scaled: computed factor %g: %w", scale, ErrBadScale)
	}
	return im.resample(im.extent.W*scale, im.extent.H*scale)
}

// ScaledTo resamples the image to exactly w x h pixels.
func (im *Image) ScaledTo(w, h int) (*Image, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("scaled-to: %dx%d: %w", w, h, ErrBadScale)
	}
	return im.resample(float64(w), float64(h))
}

func (im *Image) resample(w, h float64) (*Image, error) {
	src, err := im.Materialize()
	if err != nil {
		return nil, fmt.Errorf("resample: %w", err)
	}
	dw := int(math.Round(w))
	dh := int(math.Round(h))
	if dw < 1 {
		dw = 1
	}
	if dh < 1 {
		dh = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src.ToImage(), src.Bounds(), xdraw.Src, nil)
	out := NewPixmap(dw, dh)
	copy(out.Data(), dst.Pix)
	return NewImageAt(out, im.extent.X, im.extent.Y), nil
}

// Centering translates the image so its center coincides with the
// background's center. Both extents must be finite.
func (im *Image) Centering(background *Image) (*Image, error) {
	if im.extent.IsInfinite() || background.extent.IsInfinite() {
		return nil, fmt.Errorf("centering: %w", ErrInfiniteExtent)
	}
	dx := background.extent.MidX() - im.extent.MidX()
	dy := background.extent.MidY() - im.extent.MidY()
	return im.Translated(dx, dy), nil
}

// Blurred applies an isotropic Gaussian blur, expanding the extent so
// the falloff is not clipped.
func (im *Image) Blurred(radius float64) (*Image, error) {
	if radius <= 0 {
		return im, nil
	}
	pad := math.Ceil(radius * 3)
	region := NewRect(
		im.extent.X-pad, im.extent.Y-pad,
		im.extent.W+2*pad, im.extent.H+2*pad,
	)
	src, err := im.Rasterize(region)
	if err != nil {
		return nil, fmt.Errorf("blurred: %w", err)
	}
	filter.GaussianBlur(src.Data(), src.Width(), src.Height(), radius, radius)
	return NewImageAt(src, region.X, region.Y), nil
}

// InvertedMask inverts both color and alpha of every pixel.
func (im *Image) InvertedMask() (*Image, error) {
	src, err := im.Materialize()
	if err != nil {
		return nil, fmt.Errorf("inverted-mask: %w", err)
	}
	d := src.Data()
	for i := 0; i+3 < len(d); i += 4 {
		a := d[i+3]
		// Unpremultiply, invert, re-premultiply against the inverted
		// alpha.
		var r, g, b uint8
		if a > 0 {
			r = uint8(uint16(d[i+0]) * 255 / uint16(a))
			g = uint8(uint16(d[i+1]) * 255 / uint16(a))
			b = uint8(uint16(d[i+2]) * 255 / uint16(a))
		}
		na := 255 - a
		d[i+0] = uint8((uint16(255-r)*uint16(na) + 127) / 255)
		d[i+1] = uint8((uint16(255-g)*uint16(na) + 127) / 255)
		d[i+2] = uint8((uint16(255-b)*uint16(na) + 127) / 255)
		d[i+3] = na
	}
	return NewImageAt(src, im.extent.X, im.extent.Y), nil
}
