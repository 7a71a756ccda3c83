package iconic

import (
	"bytes"
	"errors"
	"testing"
)

// testMask builds a silhouette: an opaque block in the middle of a
// transparent field.
func testMask(size int) *Image {
	p := NewPixmap(size, size)
	for y := size / 4; y < 3*size/4; y++ {
		for x := size / 4; x < 3*size/4; x++ {
			p.SetPixel(x, y, White)
		}
	}
	return NewImage(p)
}

// testTemplate builds a semi-transparent flat backdrop so layers
// beneath it stay visible in the composite.
func testTemplate(size int) *Image {
	p := NewPixmap(size, size)
	p.Clear(RGBA2(0.2, 0.4, 0.8, 0.5))
	return NewImage(p)
}

func materializedBytes(t *testing.T, im *Image) []byte {
	t.Helper()
	pm, err := im.Materialize()
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	return pm.Data()
}

func TestEngraveLayerDeterministic(t *testing.T) {
	e := NewEngraver(DefaultEngravingInputs())
	mask := testMask(16)
	tpl := testTemplate(32)

	a, err := e.EngraveLayer(mask, tpl)
	if err != nil {
		t.Fatalf("EngraveLayer: %v", err)
	}
	b, err := e.EngraveLayer(mask, tpl)
	if err != nil {
		t.Fatalf("EngraveLayer (second run): %v", err)
	}
	if !bytes.Equal(materializedBytes(t, a), materializedBytes(t, b)) {
		t.Error("two runs over identical inputs produced different pixels")
	}
}

func TestEngraveReusesSingleMask(t *testing.T) {
	e := NewEngraver(DefaultEngravingInputs())
	templates := []*Image{
		testTemplate(32),
		testTemplate(64),
		testTemplate(128),
	}
	layers, err := e.Engrave(testMask(16), templates)
	if err != nil {
		t.Fatalf("Engrave: %v", err)
	}
	if len(layers) != len(templates) {
		t.Fatalf("got %d layers, want %d (one mask reused per template)", len(layers), len(templates))
	}
}

func TestEngraveNoTemplates(t *testing.T) {
	_, err := NewEngraver(DefaultEngravingInputs()).Engrave(testMask(16), nil)
	if !errors.Is(err, ErrNoTemplates) {
		t.Errorf("Engrave with no templates: err = %v, want ErrNoTemplates", err)
	}
}

func TestEngraveLayerMatchesTemplateExtent(t *testing.T) {
	e := NewEngraver(DefaultEngravingInputs())
	tpl := testTemplate(32)
	mask, err := e.fitMask(testMask(16), tpl)
	if err != nil {
		t.Fatalf("fitMask: %v", err)
	}
	out, err := e.EngraveLayer(mask, tpl)
	if err != nil {
		t.Fatalf("EngraveLayer: %v", err)
	}
	if out.Extent() != tpl.Extent() {
		t.Errorf("result extent %v, want template extent %v", out.Extent(), tpl.Extent())
	}
}

func TestEngraveKeepsEachResolution(t *testing.T) {
	// Small templates are narrower than the bezel blur padding; the
	// finished layers must still come out at each template's size.
	e := NewEngraver(DefaultEngravingInputs())
	sizes := []int{16, 32, 256}
	templates := make([]*Image, len(sizes))
	for i, s := range sizes {
		templates[i] = testTemplate(s)
	}
	layers, err := e.Engrave(testMask(128), templates)
	if err != nil {
		t.Fatalf("Engrave: %v", err)
	}
	if len(layers) != len(sizes) {
		t.Fatalf("got %d layers, want %d", len(layers), len(sizes))
	}
	for i, layer := range layers {
		pm, err := layer.Materialize()
		if err != nil {
			t.Fatalf("size %d: Materialize: %v", sizes[i], err)
		}
		if pm.Width() != sizes[i] || pm.Height() != sizes[i] {
			t.Errorf("size %d: layer is %dx%d, want %dx%d (extent %v)",
				sizes[i], pm.Width(), pm.Height(), sizes[i], sizes[i], layer.Extent())
		}
	}
}

func TestEngraveOpaqueTemplateStaysOpaque(t *testing.T) {
	// A fully opaque template composited on top must leave every output
	// pixel opaque, whatever the bezel layers did underneath.
	size := 64
	p := NewPixmap(size, size)
	p.Clear(RGBA2(0.2, 0.4, 0.8, 1))
	tpl := NewImage(p)

	layers, err := NewEngraver(DefaultEngravingInputs()).Engrave(testMask(128), []*Image{tpl})
	if err != nil {
		t.Fatalf("Engrave: %v", err)
	}
	if len(layers) != 1 {
		t.Fatalf("got %d layers, want 1", len(layers))
	}
	pm, err := layers[0].Materialize()
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	if pm.Width() != size || pm.Height() != size {
		t.Fatalf("layer is %dx%d, want %dx%d", pm.Width(), pm.Height(), size, size)
	}
	d := pm.Data()
	for i := 3; i < len(d); i += 4 {
		if d[i] != 255 {
			t.Fatalf("pixel %d alpha = %d, want 255", i/4, d[i])
		}
	}
}

func TestFitMaskScalesWithinTemplate(t *testing.T) {
	e := NewEngraver(DefaultEngravingInputs())
	tpl := testTemplate(128)
	fitted, err := e.fitMask(testMask(64), tpl)
	if err != nil {
		t.Fatalf("fitMask: %v", err)
	}
	ext := fitted.Extent()
	if ext.W > tpl.Extent().W || ext.H > tpl.Extent().H {
		t.Errorf("fitted mask %v larger than template %v", ext, tpl.Extent())
	}
	// Horizontal centering is exact.
	if ext.MidX() != tpl.Extent().MidX() {
		t.Errorf("horizontal center %v, want %v", ext.MidX(), tpl.Extent().MidX())
	}
}

func TestStageSinkObservesStages(t *testing.T) {
	e := NewEngraver(DefaultEngravingInputs())
	var stages []string
	e.SetStageSink(func(stage string, _ *Image) {
		stages = append(stages, stage)
	})
	tpl := testTemplate(32)
	mask, err := e.fitMask(testMask(16), tpl)
	if err != nil {
		t.Fatalf("fitMask: %v", err)
	}
	if _, err := e.EngraveLayer(mask, tpl); err != nil {
		t.Fatalf("EngraveLayer: %v", err)
	}
	want := []string{"fill", "top-bezel", "bottom-bezel", "result"}
	if len(stages) != len(want) {
		t.Fatalf("sink saw %v, want %v", stages, want)
	}
	for i := range want {
		if stages[i] != want[i] {
			t.Errorf("stage %d = %q, want %q", i, stages[i], want[i])
		}
	}
}
