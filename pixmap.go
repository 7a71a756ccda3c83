package iconic

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
)

// Pixmap is a rectangular pixel buffer in premultiplied RGBA, 4 bytes
// per pixel, row-major from the top-left corner.
type Pixmap struct {
	width  int
	height int
	data   []uint8
}

// NewPixmap creates a transparent pixmap with the given dimensions.
func NewPixmap(width, height int) *Pixmap {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Pixmap{
		width:  width,
		height: height,
		data:   make([]uint8, width*height*4),
	}
}

// Width returns the width of the pixmap.
func (p *Pixmap) Width() int {
	return p.width
}

// Height returns the height of the pixmap.
func (p *Pixmap) Height() int {
	return p.height
}

// Data returns the raw premultiplied pixel data.
func (p *Pixmap) Data() []uint8 {
	return p.data
}

// SetPixel sets the color of a single pixel. The color is premultiplied
// before storage. Out-of-bounds coordinates are ignored.
func (p *Pixmap) SetPixel(x, y int, c RGBA) {
	if x < 0 || x >= p.width || y < 0 || y >= p.height {
		return
	}
	pm := c.Premultiply()
	i := (y*p.width + x) * 4
	p.data[i+0] = uint8(clamp255(pm.R * 255))
	p.data[i+1] = uint8(clamp255(pm.G * 255))
	p.data[i+2] = uint8(clamp255(pm.B * 255))
	p.data[i+3] = uint8(clamp255(pm.A * 255))
}

// GetPixel returns the straight-alpha color of a single pixel.
// Out-of-bounds coordinates read as transparent.
func (p *Pixmap) GetPixel(x, y int) RGBA {
	if x < 0 || x >= p.width || y < 0 || y >= p.height {
		return Transparent
	}
	i := (y*p.width + x) * 4
	a := float64(p.data[i+3]) / 255
	if a == 0 {
		return Transparent
	}
	return RGBA{
		R: float64(p.data[i+0]) / 255 / a,
		G: float64(p.data[i+1]) / 255 / a,
		B: float64(p.data[i+2]) / 255 / a,
		A: a,
	}
}

// Alpha returns the alpha byte of a single pixel without conversion.
func (p *Pixmap) Alpha(x, y int) uint8 {
	if x < 0 || x >= p.width || y < 0 || y >= p.height {
		return 0
	}
	return p.data[(y*p.width+x)*4+3]
}

// Clear fills the entire pixmap with a color.
func (p *Pixmap) Clear(c RGBA) {
	pm := c.Premultiply()
	r := uint8(clamp255(pm.R * 255))
	g := uint8(clamp255(pm.G * 255))
	b := uint8(clamp255(pm.B * 255))
	a := uint8(clamp255(pm.A * 255))

	for i := 0; i < len(p.data); i += 4 {
		p.data[i+0] = r
		p.data[i+1] = g
		p.data[i+2] = b
		p.data[i+3] = a
	}
}

// Clone returns a deep copy of the pixmap.
func (p *Pixmap) Clone() *Pixmap {
	out := &Pixmap{
		width:  p.width,
		height: p.height,
		data:   make([]uint8, len(p.data)),
	}
	copy(out.data, p.data)
	return out
}

// ToImage converts the pixmap to an image.RGBA (premultiplied).
func (p *Pixmap) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, p.width, p.height))
	copy(img.Pix, p.data)
	return img
}

// FromImage creates a pixmap from an image. The fast path copies
// *image.RGBA and *image.NRGBA buffers directly; everything else goes
// through the color interface.
func FromImage(img image.Image) *Pixmap {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	pm := NewPixmap(width, height)

	switch src := img.(type) {
	case *image.RGBA:
		for y := 0; y < height; y++ {
			si := src.PixOffset(bounds.Min.X, bounds.Min.Y+y)
			di := y * width * 4
			copy(pm.data[di:di+width*4], src.Pix[si:si+width*4])
		}
	case *image.NRGBA:
		rgba := image.NewRGBA(image.Rect(0, 0, width, height))
		draw.Draw(rgba, rgba.Bounds(), src, bounds.Min, draw.Src)
		copy(pm.data, rgba.Pix)
	default:
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				c := img.At(bounds.Min.X+x, bounds.Min.Y+y)
				pm.SetPixel(x, y, FromColor(c))
			}
		}
	}

	return pm
}

// SavePNG saves the pixmap to a PNG file.
func (p *Pixmap) SavePNG(path string) error {
	f, err := os.Create(path) //nolint:gosec // path is user-provided intentionally
	if err != nil {
		return err
	}
	defer func() {
		_ = f.Close()
	}()

	return png.Encode(f, p.ToImage())
}

// At implements the image.Image interface.
func (p *Pixmap) At(x, y int) color.Color {
	if x < 0 || x >= p.width || y < 0 || y >= p.height {
		return color.RGBA{}
	}
	i := (y*p.width + x) * 4
	return color.RGBA{
		R: p.data[i+0],
		G: p.data[i+1],
		B: p.data[i+2],
		A: p.data[i+3],
	}
}

// Bounds implements the image.Image interface.
func (p *Pixmap) Bounds() image.Rectangle {
	return image.Rect(0, 0, p.width, p.height)
}

// ColorModel implements the image.Image interface.
func (p *Pixmap) ColorModel() color.Model {
	return color.RGBAModel
}
