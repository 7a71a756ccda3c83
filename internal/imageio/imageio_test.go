package imageio

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

func writeTestPNG(t *testing.T, path string, size int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.SetRGBA(x, y, color.RGBA{R: 200, A: 255})
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
}

func TestLoadPNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.png")
	writeTestPNG(t, path, 16)

	img, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if img.Bounds().Dx() != 16 {
		t.Errorf("loaded width = %d, want 16", img.Bounds().Dx())
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.png"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("err = %v, want fs.ErrNotExist", err)
	}
}

func TestLoadUnreadableFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junk.bin")
	if err := os.WriteFile(path, []byte("not an image at all"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Load(path)
	if !errors.Is(err, ErrUnreadableFormat) {
		t.Errorf("err = %v, want ErrUnreadableFormat", err)
	}
}

func TestWriteContainerDirectory(t *testing.T) {
	dir := t.TempDir()
	images := []image.Image{
		image.NewRGBA(image.Rect(0, 0, 16, 16)),
		image.NewRGBA(image.Rect(0, 0, 32, 32)),
	}
	if err := WriteContainer(dir, images); err != nil {
		t.Fatalf("WriteContainer: %v", err)
	}
	for _, name := range []string{"16x16.png", "32x32.png"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}
}

func TestWriteContainerICNSRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.icns")
	images := []image.Image{
		image.NewRGBA(image.Rect(0, 0, 16, 16)),
		image.NewRGBA(image.Rect(0, 0, 32, 32)),
	}
	if err := WriteContainer(path, images); err != nil {
		t.Fatalf("WriteContainer: %v", err)
	}

	reps, err := LoadAll(path)
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(reps) != 2 {
		t.Errorf("loaded %d representations, want 2", len(reps))
	}
}

func TestWriteContainerPNGPicksLargest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.png")
	images := []image.Image{
		image.NewRGBA(image.Rect(0, 0, 16, 16)),
		image.NewRGBA(image.Rect(0, 0, 64, 64)),
		image.NewRGBA(image.Rect(0, 0, 32, 32)),
	}
	if err := WriteContainer(path, images); err != nil {
		t.Fatalf("WriteContainer: %v", err)
	}
	img, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if img.Bounds().Dx() != 64 {
		t.Errorf("written PNG width = %d, want the largest (64)", img.Bounds().Dx())
	}
}

func TestLoadLargestRepresentation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "multi.icns")
	images := []image.Image{
		image.NewRGBA(image.Rect(0, 0, 16, 16)),
		image.NewRGBA(image.Rect(0, 0, 128, 128)),
	}
	if err := WriteContainer(path, images); err != nil {
		t.Fatalf("WriteContainer: %v", err)
	}
	img, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if img.Bounds().Dx() != 128 {
		t.Errorf("Load picked %d px, want the largest (128)", img.Bounds().Dx())
	}
}
