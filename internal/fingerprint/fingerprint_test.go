package fingerprint

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math/rand"
	"testing"
)

// blocky draws an 8x8 grid of random gray blocks. Low-frequency structure
// like this is what the hash keys on.
func blocky(seed int64, size int) *image.Gray {
	rng := rand.New(rand.NewSource(seed))
	var cells [8][8]uint8
	for y := range cells {
		for x := range cells[y] {
			cells[y][x] = uint8(rng.Intn(256))
		}
	}
	img := image.NewGray(image.Rect(0, 0, size, size))
	cell := size / 8
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.SetGray(x, y, color.Gray{Y: cells[y/cell%8][x/cell%8]})
		}
	}
	return img
}

func invert(src *image.Gray) *image.Gray {
	out := image.NewGray(src.Bounds())
	for i, v := range src.Pix {
		out.Pix[i] = 255 - v
	}
	return out
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png encode: %v", err)
	}
	return buf.Bytes()
}

func encodeJPEG(t *testing.T, img image.Image, quality int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		t.Fatalf("jpeg encode: %v", err)
	}
	return buf.Bytes()
}

func mustCompute(t *testing.T, data []byte) Code {
	t.Helper()
	c, err := Compute(data)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	return c
}

func TestCompute_SameImageSameCode(t *testing.T) {
	img := blocky(7, 256)
	a := mustCompute(t, encodePNG(t, img))
	b := mustCompute(t, encodePNG(t, img))
	if a != b {
		t.Fatalf("expected identical codes, got %s and %s", a, b)
	}
}

func TestCompute_RecompressedStaysSimilar(t *testing.T) {
	img := blocky(11, 256)
	orig := mustCompute(t, encodePNG(t, img))
	recompressed := mustCompute(t, encodeJPEG(t, img, 90))
	if d := Distance(orig, recompressed); d > DefaultThreshold {
		t.Fatalf("jpeg re-save drifted too far: distance %d", d)
	}
}

func TestCompute_DifferentImagesAreFar(t *testing.T) {
	img := blocky(3, 256)
	a := mustCompute(t, encodePNG(t, img))
	b := mustCompute(t, encodePNG(t, invert(img)))
	if d := Distance(a, b); d <= DefaultThreshold {
		t.Fatalf("inverted image should not match: distance %d", d)
	}
}

func TestCompute_RejectsGarbage(t *testing.T) {
	cases := map[string][]byte{
		"empty":    nil,
		"text":     []byte("definitely not an image"),
		"truncpng": encodePNG(t, blocky(1, 64))[:20],
	}
	for name, data := range cases {
		if _, err := Compute(data); !errors.Is(err, ErrDecode) {
			t.Fatalf("%s: expected ErrDecode, got %v", name, err)
		}
	}
}

func TestDistance(t *testing.T) {
	cases := []struct {
		a, b Code
		want int
	}{
		{0, 0, 0},
		{0, 1, 1},
		{0xFFFFFFFFFFFFFFFF, 0, 64},
		{0xF0F0, 0x0F0F, 16},
	}
	for _, tc := range cases {
		if got := Distance(tc.a, tc.b); got != tc.want {
			t.Fatalf("Distance(%s, %s) = %d, want %d", tc.a, tc.b, got, tc.want)
		}
	}
	if !Similar(0, 0x1F, DefaultThreshold) {
		t.Fatalf("distance 5 must be similar at threshold 5")
	}
	if Similar(0, 0x3F, DefaultThreshold) {
		t.Fatalf("distance 6 must not be similar at threshold 5")
	}
}
