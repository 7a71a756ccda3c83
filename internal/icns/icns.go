// Package icns reads and writes Apple icon container files with PNG
// payloads. Only the square PNG-bearing element types are handled; the
// legacy packed-RLE elements are ignored on read and never written.
package icns

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
)

var (
	// ErrBadMagic is returned when the stream does not start with the
	// container signature.
	ErrBadMagic = errors.New("icns: bad magic")

	// ErrUnsupportedSize is returned when an image's pixel size has no
	// container element type.
	ErrUnsupportedSize = errors.New("icns: unsupported icon size")
)

var magic = [4]byte{'i', 'c', 'n', 's'}

// elementTypes maps a square pixel size to its PNG element type.
var elementTypes = map[int]string{
	16:   "icp4",
	32:   "icp5",
	64:   "icp6",
	128:  "ic07",
	256:  "ic08",
	512:  "ic09",
	1024: "ic10",
}

var pngSignature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

// SupportedSize reports whether a square icon of the given pixel size
// can be stored.
func SupportedSize(size int) bool {
	_, ok := elementTypes[size]
	return ok
}

// Encode writes the images as an icon container. Every image must be
// square with a supported size; duplicates of a size keep the first.
func Encode(w io.Writer, images []image.Image) error {
	if len(images) == 0 {
		return errors.New("icns: no images to encode")
	}

	seen := make(map[int]bool)
	var body bytes.Buffer
	for _, img := range images {
		b := img.Bounds()
		if b.Dx() != b.Dy() {
			return fmt.Errorf("icns: image %dx%d is not square", b.Dx(), b.Dy())
		}
		size := b.Dx()
		elem, ok := elementTypes[size]
		if !ok {
			return fmt.Errorf("icns: %d px: %w", size, ErrUnsupportedSize)
		}
		if seen[size] {
			continue
		}
		seen[size] = true

		var payload bytes.Buffer
		if err := png.Encode(&payload, img); err != nil {
			return fmt.Errorf("icns: encode %d px element: %w", size, err)
		}
		body.WriteString(elem)
		var lenBuf [4]byte
		binary.BigEndian.PutUint32(lenBuf[:], uint32(payload.Len()+8)) //nolint:gosec // element size fits uint32
		body.Write(lenBuf[:])
		body.Write(payload.Bytes())
	}

	var header [8]byte
	copy(header[:4], magic[:])
	binary.BigEndian.PutUint32(header[4:], uint32(body.Len()+8)) //nolint:gosec // container size fits uint32
	if _, err := w.Write(header[:]); err != nil {
		return fmt.Errorf("icns: write header: %w", err)
	}
	if _, err := w.Write(body.Bytes()); err != nil {
		return fmt.Errorf("icns: write body: %w", err)
	}
	return nil
}

// Decode reads every PNG-bearing element from an icon container,
// ordered as stored. Elements with non-PNG payloads are skipped.
func Decode(r io.Reader) ([]image.Image, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("icns: read: %w", err)
	}
	if len(data) < 8 || !bytes.Equal(data[:4], magic[:]) {
		return nil, ErrBadMagic
	}
	total := int(binary.BigEndian.Uint32(data[4:8]))
	if total > len(data) {
		total = len(data)
	}

	var out []image.Image
	off := 8
	for off+8 <= total {
		elemLen := int(binary.BigEndian.Uint32(data[off+4 : off+8]))
		if elemLen < 8 || off+elemLen > total {
			break
		}
		payload := data[off+8 : off+elemLen]
		off += elemLen

		if !bytes.HasPrefix(payload, pngSignature) {
			continue
		}
		img, err := png.Decode(bytes.NewReader(payload))
		if err != nil {
			return nil, fmt.Errorf("icns: decode element: %w", err)
		}
		out = append(out, img)
	}
	return out, nil
}
