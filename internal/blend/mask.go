package blend

import "fmt"

// MaskOp selects how an image's alpha interacts with a mask.
type MaskOp uint8

const (
	SourceIn  MaskOp = iota // keep pixels where the mask is opaque
	SourceOut               // keep pixels where the mask is transparent
	WithMask                // weight pixels by the mask's coverage (luminance * alpha)
)

var maskOpNames = map[MaskOp]string{
	SourceIn:  "source-in",
	SourceOut: "source-out",
	WithMask:  "blend-with-mask",
}

func (op MaskOp) String() string {
	if s, ok := maskOpNames[op]; ok {
		return s
	}
	return fmt.Sprintf("MaskOp(%d)", uint8(op))
}

// ParseMaskOp maps a mask operator name to its MaskOp value. Unknown
// names are an error, never a silent default.
func ParseMaskOp(name string) (MaskOp, error) {
	for op, s := range maskOpNames {
		if s == name {
			return op, nil
		}
	}
	return SourceIn, fmt.Errorf("blend: unknown mask operator %q", name)
}

// ApplyMask scales dst's premultiplied pixels by the mask's coverage
// in place. The two buffers must describe the same pixel grid.
func ApplyMask(dst, mask []uint8, op MaskOp) {
	n := len(dst)
	if len(mask) < n {
		n = len(mask)
	}
	for i := 0; i+3 < n; i += 4 {
		var w byte
		switch op {
		case SourceOut:
			w = 255 - mask[i+3]
		case WithMask:
			w = coverage(mask[i], mask[i+1], mask[i+2], mask[i+3])
		default:
			w = mask[i+3]
		}
		dst[i+0] = mulDiv255(dst[i+0], w)
		dst[i+1] = mulDiv255(dst[i+1], w)
		dst[i+2] = mulDiv255(dst[i+2], w)
		dst[i+3] = mulDiv255(dst[i+3], w)
	}
}

// coverage computes a mask weight from a premultiplied pixel: its
// luminance already carries the alpha factor, so a bright opaque pixel
// weighs 255 and a dark or transparent one weighs 0.
func coverage(r, g, b, a byte) byte {
	if a == 0 {
		return 0
	}
	// Rec. 601 luma in integer form.
	l := (299*uint32(r) + 587*uint32(g) + 114*uint32(b)) / 1000
	if l > 255 {
		l = 255
	}
	return byte(l)
}
