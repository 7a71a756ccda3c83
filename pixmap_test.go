package iconic

import (
	"image"
	"testing"
)

func TestPixmapSetGetOpaque(t *testing.T) {
	p := NewPixmap(4, 4)
	p.SetPixel(2, 1, RGB(1, 0, 0))
	got := p.GetPixel(2, 1)
	if !colorsClose(got, RGB(1, 0, 0)) {
		t.Errorf("GetPixel(2, 1) = %v, want opaque red", got)
	}
	if got := p.GetPixel(0, 0); !colorsClose(got, Transparent) {
		t.Errorf("untouched pixel = %v, want transparent", got)
	}
}

func TestPixmapOutOfBounds(t *testing.T) {
	p := NewPixmap(2, 2)
	p.SetPixel(-1, 0, White) // must not panic
	p.SetPixel(5, 5, White)
	if got := p.GetPixel(-1, 0); !colorsClose(got, Transparent) {
		t.Errorf("out-of-bounds read = %v, want transparent", got)
	}
	if got := p.Alpha(7, 7); got != 0 {
		t.Errorf("out-of-bounds Alpha = %d, want 0", got)
	}
}

func TestPixmapClear(t *testing.T) {
	p := NewPixmap(3, 3)
	p.Clear(RGB(0, 0, 1))
	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			if got := p.GetPixel(x, y); !colorsClose(got, RGB(0, 0, 1)) {
				t.Fatalf("pixel (%d, %d) = %v, want blue", x, y, got)
			}
		}
	}
}

func TestPixmapStoresPremultiplied(t *testing.T) {
	p := NewPixmap(1, 1)
	p.SetPixel(0, 0, RGBA2(1, 1, 1, 0.5))
	d := p.Data()
	// White at half alpha premultiplies to ~128 per channel.
	if d[0] < 126 || d[0] > 129 {
		t.Errorf("premultiplied red byte = %d, want ~128", d[0])
	}
	if d[3] < 126 || d[3] > 129 {
		t.Errorf("alpha byte = %d, want ~128", d[3])
	}
}

func TestFromImageRGBAFastPath(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 2, 2))
	src.Pix[0], src.Pix[1], src.Pix[2], src.Pix[3] = 10, 20, 30, 255
	p := FromImage(src)
	d := p.Data()
	if d[0] != 10 || d[1] != 20 || d[2] != 30 || d[3] != 255 {
		t.Errorf("FromImage copied %v, want [10 20 30 255]", d[:4])
	}
}

func TestPixmapClone(t *testing.T) {
	p := NewPixmap(2, 2)
	p.SetPixel(0, 0, White)
	c := p.Clone()
	c.SetPixel(0, 0, Transparent)
	if got := p.GetPixel(0, 0); !colorsClose(got, White) {
		t.Error("mutating a clone must not touch the original")
	}
}
