// Package imageio loads and stores icon images in the formats the tool
// meets in the wild: plain PNG, Apple icon containers, and Windows ICO
// containers. Container formats carry multiple representations; a PNG
// carries exactly one.
package imageio

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	ico "github.com/sergeymakinen/go-ico"

	"github.com/philocalyst/iconic/internal/icns"
)

// ErrUnreadableFormat is returned when a file's contents match no
// supported image format.
var ErrUnreadableFormat = errors.New("imageio: unreadable image format")

var (
	pngSignature  = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}
	icnsSignature = []byte{'i', 'c', 'n', 's'}
	icoSignature  = []byte{0x00, 0x00, 0x01, 0x00}
)

// Load decodes the image at path. For container formats the largest
// representation wins.
func Load(path string) (image.Image, error) {
	reps, err := LoadAll(path)
	if err != nil {
		return nil, err
	}
	best := reps[0]
	for _, r := range reps[1:] {
		if r.Bounds().Dx() > best.Bounds().Dx() {
			best = r
		}
	}
	return best, nil
}

// LoadAll decodes every representation stored at path, ordered as
// stored. A missing file surfaces as fs.ErrNotExist; unrecognized
// contents as ErrUnreadableFormat.
func LoadAll(path string) ([]image.Image, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is user-provided intentionally
	if err != nil {
		return nil, fmt.Errorf("imageio: %w", err)
	}

	switch {
	case bytes.HasPrefix(data, pngSignature):
		img, err := png.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("imageio: %s: %w", path, err)
		}
		return []image.Image{img}, nil

	case bytes.HasPrefix(data, icnsSignature):
		reps, err := icns.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("imageio: %s: %w", path, err)
		}
		if len(reps) == 0 {
			return nil, fmt.Errorf("imageio: %s: empty container", path)
		}
		return reps, nil

	case bytes.HasPrefix(data, icoSignature):
		reps, err := ico.DecodeAll(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("imageio: %s: %w", path, err)
		}
		if len(reps) == 0 {
			return nil, fmt.Errorf("imageio: %s: empty container", path)
		}
		return reps, nil
	}

	return nil, fmt.Errorf("imageio: %s: %w", path, ErrUnreadableFormat)
}

// WriteContainer stores the representations at dest, picking the
// format from the destination:
//
//   - an existing directory gets one "WxH.png" file per representation
//   - a ".icns" path gets an Apple icon container
//   - a ".ico" path gets a Windows icon container
//   - anything else gets a single PNG of the largest representation
func WriteContainer(dest string, images []image.Image) error {
	if len(images) == 0 {
		return errors.New("imageio: no images to write")
	}

	if info, err := os.Stat(dest); err == nil && info.IsDir() {
		return writeDirectory(dest, images)
	}

	switch strings.ToLower(filepath.Ext(dest)) {
	case ".icns":
		return writeFile(dest, func(f *os.File) error {
			return icns.Encode(f, images)
		})
	case ".ico":
		return writeFile(dest, func(f *os.File) error {
			return ico.EncodeAll(f, images)
		})
	default:
		best := images[0]
		for _, img := range images[1:] {
			if img.Bounds().Dx() > best.Bounds().Dx() {
				best = img
			}
		}
		return writeFile(dest, func(f *os.File) error {
			return png.Encode(f, best)
		})
	}
}

func writeDirectory(dir string, images []image.Image) error {
	for _, img := range images {
		b := img.Bounds()
		name := fmt.Sprintf("%dx%d.png", b.Dx(), b.Dy())
		err := writeFile(filepath.Join(dir, name), func(f *os.File) error {
			return png.Encode(f, img)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func writeFile(path string, encode func(*os.File) error) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, fs.FileMode(0o644)) //nolint:gosec // path is user-provided intentionally
	if err != nil {
		return fmt.Errorf("imageio: %w", err)
	}
	if err := encode(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("imageio: encode %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("imageio: close %s: %w", path, err)
	}
	return nil
}
