package iconic

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/philocalyst/iconic/internal/blend"
)

func TestParseEngravingInputs(t *testing.T) {
	data := []byte(`
fill-color = "#FF0000"
scale-ratio = 2.0

[top-bezel]
mask-op = "source-out"
opacity = 0.25

[bottom-bezel]
color = "#00FF00"
spread = 4.0
page-offset = -2.0
`)
	got, err := ParseEngravingInputs(data)
	if err != nil {
		t.Fatalf("ParseEngravingInputs: %v", err)
	}

	want := DefaultEngravingInputs()
	want.FillColor = Hex("#FF0000")
	want.ScaleRatio = 2.0
	want.TopBezel.MaskOp = blend.SourceOut
	want.TopBezel.Opacity = 0.25
	want.BottomBezel.Color = Hex("#00FF00")
	want.BottomBezel.Blur.SpreadPx = 4.0
	want.BottomBezel.Blur.PageOffset = -2.0

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("engraving inputs mismatch (-want +got):\n%s", diff)
	}
}

func TestParseEngravingInputsDefaults(t *testing.T) {
	got, err := ParseEngravingInputs([]byte(""))
	if err != nil {
		t.Fatalf("ParseEngravingInputs: %v", err)
	}
	if diff := cmp.Diff(DefaultEngravingInputs(), got); diff != "" {
		t.Errorf("empty config should keep defaults (-want +got):\n%s", diff)
	}
}

func TestParseEngravingInputsRejectsUnknownMaskOp(t *testing.T) {
	_, err := ParseEngravingInputs([]byte("[top-bezel]\nmask-op = \"xor\"\n"))
	if err == nil {
		t.Fatal("unknown mask operator accepted, want an error at load time")
	}
	if !strings.Contains(err.Error(), "xor") {
		t.Errorf("error %q should name the rejected operator", err)
	}
}

func TestParseEngravingInputsRejectsBadColor(t *testing.T) {
	cases := []struct {
		name string
		data string
	}{
		{"fill", "fill-color = \"#zzzzzz\"\n"},
		{"bezel", "[top-bezel]\ncolor = \"notacolor\"\n"},
		{"truncated", "fill-color = \"#FF00F\"\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseEngravingInputs([]byte(tc.data))
			if err == nil {
				t.Fatal("malformed color accepted, want an error at load time")
			}
		})
	}
}

func TestParseHexRejectsMalformed(t *testing.T) {
	for _, bad := range []string{"", "#", "#GG0000", "12345", "#0B5F9", "red"} {
		if _, err := ParseHex(bad); err == nil {
			t.Errorf("ParseHex(%q) accepted, want an error", bad)
		}
	}
	got, err := ParseHex("#0B5F9E")
	if err != nil {
		t.Fatalf("ParseHex valid input: %v", err)
	}
	if !colorsClose(got, Hex("#0B5F9E")) {
		t.Errorf("ParseHex = %v, want %v", got, Hex("#0B5F9E"))
	}
}

func TestParseEngravingInputsRejectsBadOpacity(t *testing.T) {
	_, err := ParseEngravingInputs([]byte("[bottom-bezel]\nopacity = 1.5\n"))
	if err == nil {
		t.Fatal("out-of-range opacity accepted, want an error")
	}
}
