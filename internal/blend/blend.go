// Package blend implements the compositing operators used by the icon
// pipeline.
//
// All operations work on premultiplied-alpha RGBA bytes, 4 bytes per
// pixel. The operator set is closed: parsing an unknown operator name
// fails instead of falling back to a default.
//
// References:
//   - Porter-Duff: "Compositing Digital Images" (1984)
//   - W3C Compositing and Blending Level 1: https://www.w3.org/TR/compositing-1/
package blend

import "fmt"

// Op is a compositing operator for layering one image over another.
type Op uint8

const (
	SourceOver Op = iota // S + D*(1-Sa), the default
	Multiply             // separable: B(Cb, Cs) = Cb * Cs
	Screen               // separable: B(Cb, Cs) = 1 - (1-Cb)*(1-Cs)
	Overlay              // separable: HardLight with layers swapped
	Darken               // separable: B(Cb, Cs) = min(Cb, Cs)
)

var opNames = map[Op]string{
	SourceOver: "source-over",
	Multiply:   "multiply",
	Screen:     "screen",
	Overlay:    "overlay",
	Darken:     "darken",
}

func (op Op) String() string {
	if s, ok := opNames[op]; ok {
		return s
	}
	return fmt.Sprintf("Op(%d)", uint8(op))
}

// ParseOp maps an operator name to its Op value. Unknown names are an
// error, never a silent default.
func ParseOp(name string) (Op, error) {
	for op, s := range opNames {
		if s == name {
			return op, nil
		}
	}
	return SourceOver, fmt.Errorf("blend: unknown operator %q", name)
}

// pixelFunc combines one source pixel with one destination pixel.
// All values are premultiplied, 0-255.
type pixelFunc func(sr, sg, sb, sa, dr, dg, db, da byte) (r, g, b, a byte)

func (op Op) pixel() pixelFunc {
	switch op {
	case Multiply:
		return blendMultiply
	case Screen:
		return blendScreen
	case Overlay:
		return blendOverlay
	case Darken:
		return blendDarken
	default:
		return blendSourceOver
	}
}

// Composite applies src over dst in place, pixel by pixel. The two
// buffers must have the same length, a multiple of 4.
func Composite(dst, src []uint8, op Op) {
	fn := op.pixel()
	n := len(dst)
	if len(src) < n {
		n = len(src)
	}
	for i := 0; i+3 < n; i += 4 {
		dst[i], dst[i+1], dst[i+2], dst[i+3] = fn(
			src[i], src[i+1], src[i+2], src[i+3],
			dst[i], dst[i+1], dst[i+2], dst[i+3],
		)
	}
}

// blendSourceOver composites source over destination.
// Formula: S + D * (1 - Sa)
func blendSourceOver(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	invSa := 255 - sa
	return addDiv255(sr, mulDiv255(dr, invSa)),
		addDiv255(sg, mulDiv255(dg, invSa)),
		addDiv255(sb, mulDiv255(db, invSa)),
		addDiv255(sa, mulDiv255(da, invSa))
}

// separableBlend applies a per-channel blend function using the
// standard formula
//
//	Result = (1 - Sa)*D + (1 - Da)*S + Sa*Da*B(Sc, Dc)
//
// where B operates on unmultiplied channel values.
func separableBlend(sr, sg, sb, sa, dr, dg, db, da byte, blendChan func(s, d byte) byte) (byte, byte, byte, byte) {
	if sa == 0 {
		return dr, dg, db, da
	}
	if da == 0 {
		return sr, sg, sb, sa
	}

	// Unpremultiply both layers for the channel blend.
	sur := byte((uint16(sr) * 255) / uint16(sa))
	sug := byte((uint16(sg) * 255) / uint16(sa))
	sub := byte((uint16(sb) * 255) / uint16(sa))
	dur := byte((uint16(dr) * 255) / uint16(da))
	dug := byte((uint16(dg) * 255) / uint16(da))
	dub := byte((uint16(db) * 255) / uint16(da))

	blendR := blendChan(sur, dur)
	blendG := blendChan(sug, dug)
	blendB := blendChan(sub, dub)

	invSa := 255 - sa
	invDa := 255 - da
	finalA := addDiv255(sa, mulDiv255(da, invSa))

	finalR := addDiv255(mulDiv255(dr, invSa), mulDiv255(sr, invDa))
	finalG := addDiv255(mulDiv255(dg, invSa), mulDiv255(sg, invDa))
	finalB := addDiv255(mulDiv255(db, invSa), mulDiv255(sb, invDa))

	saDa := mulDiv255(sa, da)
	finalR = addDiv255(finalR, mulDiv255(saDa, blendR))
	finalG = addDiv255(finalG, mulDiv255(saDa, blendG))
	finalB = addDiv255(finalB, mulDiv255(saDa, blendB))

	return finalR, finalG, finalB, finalA
}

func blendMultiply(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return separableBlend(sr, sg, sb, sa, dr, dg, db, da, mulDiv255)
}

func blendScreen(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return separableBlend(sr, sg, sb, sa, dr, dg, db, da, func(s, d byte) byte {
		return 255 - mulDiv255(255-s, 255-d)
	})
}

func blendOverlay(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return separableBlend(sr, sg, sb, sa, dr, dg, db, da, func(s, d byte) byte {
		// Overlay is HardLight with the layers swapped: multiply for
		// dark backdrops, screen for light ones.
		if d <= 128 {
			return mulDiv255(clampMul2(d), s)
		}
		return 255 - mulDiv255(clampMul2(255-d), 255-s)
	})
}

func blendDarken(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return separableBlend(sr, sg, sb, sa, dr, dg, db, da, func(s, d byte) byte {
		if s < d {
			return s
		}
		return d
	})
}

// mulDiv255 multiplies two byte values and divides by 255 with rounding.
func mulDiv255(a, b byte) byte {
	return byte((uint16(a)*uint16(b) + 127) / 255)
}

// addDiv255 adds two byte values with clamping to 255.
func addDiv255(a, b byte) byte {
	sum := uint16(a) + uint16(b)
	if sum > 255 {
		return 255
	}
	return byte(sum)
}

// clampMul2 doubles a byte value with clamping to 255.
func clampMul2(a byte) byte {
	v := uint16(a) * 2
	if v > 255 {
		return 255
	}
	return byte(v)
}
