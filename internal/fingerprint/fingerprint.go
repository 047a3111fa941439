// Package fingerprint computes 64-bit perceptual hashes of screenshots so that
// re-saved, re-compressed or lightly cropped copies of the same image land
// within a small Hamming distance of each other.
package fingerprint

import (
	"bytes"
	"errors"
	"fmt"
	"math/bits"

	"github.com/corona10/goimagehash"
	"github.com/disintegration/imaging"
)

// DefaultThreshold is the largest distance still treated as the same evidence.
const DefaultThreshold = 5

// maxSide bounds the decoded image before hashing. The hash works on a 32x32
// thumbnail, so larger inputs only cost time.
const maxSide = 1024

var ErrDecode = errors.New("decode image")

// Code is a 64-bit perceptual hash.
type Code uint64

func (c Code) String() string {
	return fmt.Sprintf("%016x", uint64(c))
}

// Compute decodes imageBytes and returns its perceptual hash.
func Compute(imageBytes []byte) (Code, error) {
	if len(imageBytes) == 0 {
		return 0, fmt.Errorf("%w: empty input", ErrDecode)
	}
	img, err := imaging.Decode(bytes.NewReader(imageBytes), imaging.AutoOrientation(true))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return 0, fmt.Errorf("%w: empty image", ErrDecode)
	}
	if b.Dx() > maxSide || b.Dy() > maxSide {
		img = imaging.Fit(img, maxSide, maxSide, imaging.Box)
	}

	hash, err := goimagehash.PerceptionHash(img)
	if err != nil {
		return 0, fmt.Errorf("perception hash: %w", err)
	}
	return Code(hash.GetHash()), nil
}

// Distance is the Hamming distance between two codes.
func Distance(a, b Code) int {
	return bits.OnesCount64(uint64(a) ^ uint64(b))
}

// Similar reports whether a and b are within threshold of each other.
func Similar(a, b Code, threshold int) bool {
	return Distance(a, b) <= threshold
}
