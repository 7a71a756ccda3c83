package iconic

import (
	"errors"
	"testing"

	"github.com/philocalyst/iconic/internal/blend"
)

// maskImage builds a 2x2 image whose only content pixel is (0, 0).
func maskImage() *Image {
	p := NewPixmap(2, 2)
	p.SetPixel(0, 0, White)
	return NewImage(p)
}

func TestTintKeepsAlphaFootprint(t *testing.T) {
	out, err := maskImage().Tint(RGB(1, 0, 0))
	if err != nil {
		t.Fatalf("Tint: %v", err)
	}
	pm, err := out.Materialize()
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	if got := pm.GetPixel(0, 0); !colorsClose(got, RGB(1, 0, 0)) {
		t.Errorf("content pixel = %v, want opaque red", got)
	}
	if got := pm.Alpha(1, 1); got != 0 {
		t.Errorf("empty pixel alpha = %d, want 0", got)
	}
}

func TestFillColorizeMatchesTint(t *testing.T) {
	a, err := maskImage().Tint(Blue)
	if err != nil {
		t.Fatalf("Tint: %v", err)
	}
	b, err := maskImage().FillColorize(Blue)
	if err != nil {
		t.Fatalf("FillColorize: %v", err)
	}
	pa, _ := a.Materialize()
	pb, _ := b.Materialize()
	for i := range pa.Data() {
		if pa.Data()[i] != pb.Data()[i] {
			t.Fatalf("byte %d differs: tint %d, fill-colorize %d", i, pa.Data()[i], pb.Data()[i])
		}
	}
}

func TestInvertedAlphaWhiteBackground(t *testing.T) {
	out, err := maskImage().InvertedAlphaWhiteBackground()
	if err != nil {
		t.Fatalf("InvertedAlphaWhiteBackground: %v", err)
	}
	pm, _ := out.Materialize()
	if got := pm.Alpha(0, 0); got != 0 {
		t.Errorf("opaque source pixel alpha = %d, want 0", got)
	}
	if got := pm.GetPixel(1, 1); !colorsClose(got, White) {
		t.Errorf("transparent source pixel = %v, want opaque white", got)
	}
}

func TestApplyingOpacity(t *testing.T) {
	p := NewPixmap(1, 1)
	p.SetPixel(0, 0, White)
	im := NewImage(p)

	out, err := im.ApplyingOpacity(0.5)
	if err != nil {
		t.Fatalf("ApplyingOpacity: %v", err)
	}
	pm, _ := out.Materialize()
	if a := pm.Alpha(0, 0); a < 126 || a > 129 {
		t.Errorf("alpha byte = %d, want ~128", a)
	}

	// Out-of-range factors clamp instead of failing.
	out, err = im.ApplyingOpacity(5)
	if err != nil {
		t.Fatalf("ApplyingOpacity(5): %v", err)
	}
	pm, _ = out.Materialize()
	if a := pm.Alpha(0, 0); a != 255 {
		t.Errorf("alpha after clamped factor = %d, want 255", a)
	}
}

func TestCompositeSourceOver(t *testing.T) {
	top := NewPixmap(2, 2)
	top.SetPixel(0, 0, RGB(1, 0, 0))
	bg := NewPixmap(2, 2)
	bg.Clear(Blue)

	out, err := NewImage(top).Composite(NewImage(bg), blend.SourceOver)
	if err != nil {
		t.Fatalf("Composite: %v", err)
	}
	pm, _ := out.Materialize()
	if got := pm.GetPixel(0, 0); !colorsClose(got, RGB(1, 0, 0)) {
		t.Errorf("covered pixel = %v, want red", got)
	}
	if got := pm.GetPixel(1, 1); !colorsClose(got, Blue) {
		t.Errorf("uncovered pixel = %v, want blue", got)
	}
}

func TestCompositeUnionExtent(t *testing.T) {
	top := NewImageAt(NewPixmap(2, 2), 0, 0)
	bg := NewImageAt(NewPixmap(2, 2), 2, 2)
	out, err := top.Composite(bg, blend.SourceOver)
	if err != nil {
		t.Fatalf("Composite: %v", err)
	}
	if out.Extent() != NewRect(0, 0, 4, 4) {
		t.Errorf("result extent = %v, want union (0, 0, 4x4)", out.Extent())
	}
}

func TestCompositeInfiniteBackgroundFails(t *testing.T) {
	_, err := maskImage().Composite(NewColorImage(White), blend.SourceOver)
	if !errors.Is(err, ErrInfiniteExtent) {
		t.Errorf("Composite over infinite background: err = %v, want ErrInfiniteExtent", err)
	}
}

func TestMasked(t *testing.T) {
	src := NewPixmap(2, 2)
	src.Clear(RGB(0, 1, 0))
	im := NewImage(src)

	in, err := im.Masked(maskImage(), blend.SourceIn)
	if err != nil {
		t.Fatalf("Masked(source-in): %v", err)
	}
	pm, _ := in.Materialize()
	if a := pm.Alpha(0, 0); a != 255 {
		t.Errorf("source-in kept pixel alpha = %d, want 255", a)
	}
	if a := pm.Alpha(1, 1); a != 0 {
		t.Errorf("source-in dropped pixel alpha = %d, want 0", a)
	}

	out, err := im.Masked(maskImage(), blend.SourceOut)
	if err != nil {
		t.Fatalf("Masked(source-out): %v", err)
	}
	pm, _ = out.Materialize()
	if a := pm.Alpha(0, 0); a != 0 {
		t.Errorf("source-out masked pixel alpha = %d, want 0", a)
	}
	if a := pm.Alpha(1, 1); a != 255 {
		t.Errorf("source-out kept pixel alpha = %d, want 255", a)
	}
}

func TestScaled(t *testing.T) {
	p := NewPixmap(4, 2)
	p.Clear(White)
	im := NewImage(p)

	out, err := im.Scaled(2, 2, 1)
	if err != nil {
		t.Fatalf("Scaled: %v", err)
	}
	if out.Width() != 2 || out.Height() != 1 {
		t.Errorf("scaled size = %dx%d, want 2x1 (aspect preserved)", out.Width(), out.Height())
	}

	if _, err := im.Scaled(2, 2, 0); !errors.Is(err, ErrBadScale) {
		t.Errorf("Scaled(ratio 0) err = %v, want ErrBadScale", err)
	}
	if _, err := im.Scaled(2, 2, -1); !errors.Is(err, ErrBadScale) {
		t.Errorf("Scaled(ratio -1) err = %v, want ErrBadScale", err)
	}
}

func TestScaledRatioShrinks(t *testing.T) {
	p := NewPixmap(8, 8)
	p.Clear(White)
	out, err := NewImage(p).Scaled(8, 8, 2)
	if err != nil {
		t.Fatalf("Scaled: %v", err)
	}
	if out.Width() != 4 || out.Height() != 4 {
		t.Errorf("scaled size = %dx%d, want 4x4 (ratio 2 halves the fit)", out.Width(), out.Height())
	}
}

func TestCentering(t *testing.T) {
	small := NewImage(NewPixmap(2, 2))
	big := NewImage(NewPixmap(6, 6))
	out, err := small.Centering(big)
	if err != nil {
		t.Fatalf("Centering: %v", err)
	}
	if out.Extent() != NewRect(2, 2, 2, 2) {
		t.Errorf("centered extent = %v, want (2, 2, 2x2)", out.Extent())
	}
}

func TestBlurDownZeroSpreadShifts(t *testing.T) {
	im := maskImage()
	out, err := im.BlurDown(0, 3)
	if err != nil {
		t.Fatalf("BlurDown: %v", err)
	}
	if out.Extent() != NewRect(0, 3, 2, 2) {
		t.Errorf("extent after zero-spread blur = %v, want shifted (0, 3, 2x2)", out.Extent())
	}
}

func TestBlurDownExpandsExtent(t *testing.T) {
	im := maskImage()
	out, err := im.BlurDown(1, 0)
	if err != nil {
		t.Fatalf("BlurDown: %v", err)
	}
	ext := out.Extent()
	if ext.H <= im.Extent().H {
		t.Errorf("blurred extent height = %v, want taller than %v", ext.H, im.Extent().H)
	}
}

func TestInvertedMask(t *testing.T) {
	out, err := maskImage().InvertedMask()
	if err != nil {
		t.Fatalf("InvertedMask: %v", err)
	}
	pm, _ := out.Materialize()
	if a := pm.Alpha(0, 0); a != 0 {
		t.Errorf("inverted opaque pixel alpha = %d, want 0", a)
	}
	if got := pm.GetPixel(1, 1); !colorsClose(got, White) {
		t.Errorf("inverted transparent pixel = %v, want opaque white", got)
	}
}

func TestBlurredPreservesUniformRegion(t *testing.T) {
	p := NewPixmap(9, 9)
	p.Clear(White)
	out, err := NewImage(p).Blurred(1)
	if err != nil {
		t.Fatalf("Blurred: %v", err)
	}
	pm, _ := out.Materialize()
	// The interior of a uniform region is unchanged by a normalized
	// kernel; only the expanded border fades.
	cx := pm.Width() / 2
	cy := pm.Height() / 2
	if a := pm.Alpha(cx, cy); a < 254 {
		t.Errorf("center alpha after blur = %d, want ~255", a)
	}
}
