package iconic

import (
	"errors"
	"fmt"

	"github.com/philocalyst/iconic/internal/blend"
)

// verticalCenterBias scales the raw vertical centering offset when
// placing the silhouette on a folder template. The value is an
// empirically tuned visual correction, not a geometric identity; treat
// it as a tunable constant.
const verticalCenterBias = 0.87

// defaultScaleRatio controls how much of the template the silhouette
// occupies after fitting: the fitted scale is divided by this ratio.
const defaultScaleRatio = 1.8

// ErrNoTemplates is returned when an engraving run receives an empty
// template list.
var ErrNoTemplates = errors.New("iconic: no template representations")

// BlurSpec describes the directional blur applied to a bezel layer.
type BlurSpec struct {
	SpreadPx   float64 // blur magnitude in pixels
	PageOffset float64 // vertical shift applied after the blur
}

// Bezel describes one engraving bezel layer.
type Bezel struct {
	Color   RGBA
	Blur    BlurSpec
	MaskOp  blend.MaskOp
	Opacity float64
}

// EngravingInputs is the read-only configuration for one engraving
// run: the fill color plus the top and bottom bezel settings.
type EngravingInputs struct {
	FillColor   RGBA
	TopBezel    Bezel
	BottomBezel Bezel
	ScaleRatio  float64
}

// DefaultEngravingInputs returns the stock folder-engraving look: a
// half-opacity blue fill, a soft raised highlight above, and a darker
// recess below.
func DefaultEngravingInputs() EngravingInputs {
	return EngravingInputs{
		FillColor: Hex("#0B5F9E"),
		TopBezel: Bezel{
			Color:   White,
			Blur:    BlurSpec{SpreadPx: 2, PageOffset: 1},
			MaskOp:  blend.SourceIn,
			Opacity: 0.5,
		},
		BottomBezel: Bezel{
			Color:   Hex("#041C33"),
			Blur:    BlurSpec{SpreadPx: 2, PageOffset: -1},
			MaskOp:  blend.SourceIn,
			Opacity: 0.6,
		},
		ScaleRatio: defaultScaleRatio,
	}
}

// StageSink receives each intermediate layer as the pipeline runs,
// for debugging the visual stages. The default sink discards them.
type StageSink func(stage string, im *Image)

func nopSink(string, *Image) {}

// Engraver runs the engraving pipeline.
type Engraver struct {
	inputs EngravingInputs
	sink   StageSink
}

// NewEngraver builds an Engraver. Zero-value fields of inputs fall
// back to their defaults where a zero is unusable.
func NewEngraver(inputs EngravingInputs) *Engraver {
	if inputs.ScaleRatio <= 0 {
		inputs.ScaleRatio = defaultScaleRatio
	}
	return &Engraver{inputs: inputs, sink: nopSink}
}

// SetStageSink installs a debug sink for intermediate layers. A nil
// sink restores the discard default.
func (e *Engraver) SetStageSink(s StageSink) {
	if s == nil {
		s = nopSink
	}
	e.sink = s
}

// EngraveLayer produces one finished icon layer from a prepared
// silhouette and the template it sits on. The mask is expected to be
// positioned in the template's coordinate space already; use Engrave
// for the fitting and multi-resolution loop.
//
// The layer order is fixed:
//
//	result = template over (topBezel over (fill over bottomBezel))
func (e *Engraver) EngraveLayer(mask, template *Image) (*Image, error) {
	in := e.inputs

	// Fill layer: half-opacity flat-colored silhouette.
	fill, err := mask.Tint(in.FillColor)
	if err != nil {
		return nil, fmt.Errorf("engrave: fill: %w", err)
	}
	fill, err = fill.ApplyingOpacity(0.5)
	if err != nil {
		return nil, fmt.Errorf("engrave: fill: %w", err)
	}
	e.sink("fill", fill)

	top, err := e.topBezelLayer(mask)
	if err != nil {
		return nil, err
	}
	e.sink("top-bezel", top)

	bottom, err := e.bottomBezelLayer(mask)
	if err != nil {
		return nil, err
	}
	e.sink("bottom-bezel", bottom)

	// Back-to-front source-over stack.
	stack, err := fill.Composite(bottom, blend.SourceOver)
	if err != nil {
		return nil, fmt.Errorf("engrave: composite fill: %w", err)
	}
	stack, err = top.Composite(stack, blend.SourceOver)
	if err != nil {
		return nil, fmt.Errorf("engrave: composite top bezel: %w", err)
	}
	result, err := template.Composite(stack, blend.SourceOver)
	if err != nil {
		return nil, fmt.Errorf("engrave: composite template: %w", err)
	}
	// The bezel blur pads past small templates; the finished layer must
	// stay at the template's resolution.
	result = result.Cropped(template.Extent())
	e.sink("result", result)
	return result, nil
}

// topBezelLayer builds the raised highlight: the silhouette's
// complement in white, tinted, smeared downward, clipped back to the
// silhouette.
func (e *Engraver) topBezelLayer(mask *Image) (*Image, error) {
	bz := e.inputs.TopBezel
	layer, err := mask.InvertedAlphaWhiteBackground()
	if err != nil {
		return nil, fmt.Errorf("engrave: top bezel: %w", err)
	}
	layer, err = layer.Tint(bz.Color)
	if err != nil {
		return nil, fmt.Errorf("engrave: top bezel: %w", err)
	}
	layer, err = layer.BlurDown(bz.Blur.SpreadPx, bz.Blur.PageOffset)
	if err != nil {
		return nil, fmt.Errorf("engrave: top bezel: %w", err)
	}
	layer, err = layer.Masked(mask, bz.MaskOp)
	if err != nil {
		return nil, fmt.Errorf("engrave: top bezel: %w", err)
	}
	layer, err = layer.ApplyingOpacity(bz.Opacity)
	if err != nil {
		return nil, fmt.Errorf("engrave: top bezel: %w", err)
	}
	return layer, nil
}

// bottomBezelLayer builds the recess shadow: the silhouette tinted
// dark, smeared, clipped back to the silhouette.
func (e *Engraver) bottomBezelLayer(mask *Image) (*Image, error) {
	bz := e.inputs.BottomBezel
	layer, err := mask.Tint(bz.Color)
	if err != nil {
		return nil, fmt.Errorf("engrave: bottom bezel: %w", err)
	}
	layer, err = layer.BlurDown(bz.Blur.SpreadPx, bz.Blur.PageOffset)
	if err != nil {
		return nil, fmt.Errorf("engrave: bottom bezel: %w", err)
	}
	layer, err = layer.Masked(mask, bz.MaskOp)
	if err != nil {
		return nil, fmt.Errorf("engrave: bottom bezel: %w", err)
	}
	layer, err = layer.ApplyingOpacity(bz.Opacity)
	if err != nil {
		return nil, fmt.Errorf("engrave: bottom bezel: %w", err)
	}
	return layer, nil
}

// fitMask scales the silhouette to the template and centers it, with
// the vertical offset scaled by verticalCenterBias.
func (e *Engraver) fitMask(mask, template *Image) (*Image, error) {
	ext := template.Extent()
	fitted, err := mask.Scaled(ext.W, ext.H, e.inputs.ScaleRatio)
	if err != nil {
		return nil, fmt.Errorf("engrave: fit mask: %w", err)
	}
	// Horizontal centering is exact; the vertical offset carries the
	// tuned correction.
	dx := ext.MidX() - fitted.Extent().MidX()
	dy := (ext.MidY() - fitted.Extent().MidY()) * verticalCenterBias
	return fitted.Translated(dx, dy), nil
}

// Engrave runs the full pipeline: for every template representation
// the single silhouette is rescaled and centered, then engraved. A
// silhouette with fewer representations than the template is reused
// rather than an error.
//
// A failure on one representation aborts only that resolution; the
// error is returned alongside the layers that did succeed so the
// caller can choose to continue.
func (e *Engraver) Engrave(mask *Image, templates []*Image) ([]*Image, error) {
	if len(templates) == 0 {
		return nil, ErrNoTemplates
	}

	out := make([]*Image, 0, len(templates))
	var firstErr error
	for i, tpl := range templates {
		fitted, err := e.fitMask(mask, tpl)
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("representation %d: %w", i, err)
			}
			Logger().Warn("engrave: skipping representation", "index", i, "error", err)
			continue
		}
		layer, err := e.EngraveLayer(fitted, tpl)
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("representation %d: %w", i, err)
			}
			Logger().Warn("engrave: skipping representation", "index", i, "error", err)
			continue
		}
		out = append(out, layer)
	}
	if len(out) == 0 && firstErr != nil {
		return nil, firstErr
	}
	return out, firstErr
}
