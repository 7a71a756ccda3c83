package iconic

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/philocalyst/iconic/internal/blend"
)

// engraveConfig mirrors the TOML layout of an engraving settings file.
type engraveConfig struct {
	FillColor   string      `toml:"fill-color"`
	ScaleRatio  float64     `toml:"scale-ratio"`
	TopBezel    bezelConfig `toml:"top-bezel"`
	BottomBezel bezelConfig `toml:"bottom-bezel"`
}

type bezelConfig struct {
	Color      string  `toml:"color"`
	Spread     float64 `toml:"spread"`
	PageOffset float64 `toml:"page-offset"`
	MaskOp     string  `toml:"mask-op"`
	Opacity    float64 `toml:"opacity"`
}

// LoadEngravingInputs reads an engraving settings file in TOML form.
// Fields left out keep their defaults; an unknown mask operator or a
// malformed color is an error at load time, not at engraving time.
func LoadEngravingInputs(path string) (EngravingInputs, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is user-provided intentionally
	if err != nil {
		return EngravingInputs{}, fmt.Errorf("engraving config: %w", err)
	}
	return ParseEngravingInputs(data)
}

// ParseEngravingInputs decodes TOML engraving settings from memory.
func ParseEngravingInputs(data []byte) (EngravingInputs, error) {
	in := DefaultEngravingInputs()
	var cfg engraveConfig
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return EngravingInputs{}, fmt.Errorf("engraving config: %w", err)
	}

	if cfg.FillColor != "" {
		c, err := ParseHex(cfg.FillColor)
		if err != nil {
			return EngravingInputs{}, fmt.Errorf("engraving config: fill-color: %w", err)
		}
		in.FillColor = c
	}
	if cfg.ScaleRatio > 0 {
		in.ScaleRatio = cfg.ScaleRatio
	}

	top, err := applyBezelConfig(in.TopBezel, cfg.TopBezel)
	if err != nil {
		return EngravingInputs{}, fmt.Errorf("engraving config: top-bezel: %w", err)
	}
	in.TopBezel = top

	bottom, err := applyBezelConfig(in.BottomBezel, cfg.BottomBezel)
	if err != nil {
		return EngravingInputs{}, fmt.Errorf("engraving config: bottom-bezel: %w", err)
	}
	in.BottomBezel = bottom

	return in, nil
}

func applyBezelConfig(base Bezel, cfg bezelConfig) (Bezel, error) {
	if cfg.Color != "" {
		c, err := ParseHex(cfg.Color)
		if err != nil {
			return Bezel{}, err
		}
		base.Color = c
	}
	if cfg.Spread != 0 {
		base.Blur.SpreadPx = cfg.Spread
	}
	if cfg.PageOffset != 0 {
		base.Blur.PageOffset = cfg.PageOffset
	}
	if cfg.MaskOp != "" {
		op, err := blend.ParseMaskOp(cfg.MaskOp)
		if err != nil {
			return Bezel{}, err
		}
		base.MaskOp = op
	}
	if cfg.Opacity != 0 {
		if cfg.Opacity < 0 || cfg.Opacity > 1 {
			return Bezel{}, fmt.Errorf("opacity %g out of range [0, 1]", cfg.Opacity)
		}
		base.Opacity = cfg.Opacity
	}
	return base, nil
}
