//go:build !darwin

package platform

import "image"

// IconForPath is unavailable off macOS.
func IconForPath(string) (image.Image, error) {
	return nil, ErrUnsupported
}

// SetIconForPath is unavailable off macOS.
func SetIconForPath(string, image.Image) error {
	return ErrUnsupported
}
