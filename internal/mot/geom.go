package mot

import "math"

// Box is an axis-aligned bounding box in top-left/width/height form.
// Coordinates may be pixels or normalised [0,1] units; the convention is
// fixed by the tracker's configuration and must be consistent across frames.
type Box struct {
	X float64 // Left edge
	Y float64 // Top edge
	W float64 // Width
	H float64 // Height
}

// X2 returns the right edge of the box.
func (b Box) X2() float64 { return b.X + b.W }

// Y2 returns the bottom edge of the box.
func (b Box) Y2() float64 { return b.Y + b.H }

// Area returns the box area.
func (b Box) Area() float64 { return b.W * b.H }

// CenterX returns the horizontal centre of the box.
func (b Box) CenterX() float64 { return b.X + b.W/2 }

// CenterY returns the vertical centre of the box.
func (b Box) CenterY() float64 { return b.Y + b.H/2 }

// Valid reports whether the box has finite coordinates and non-negative
// dimensions. A zero-area box is valid geometry; it simply never overlaps.
func (b Box) Valid() bool {
	for _, v := range [4]float64{b.X, b.Y, b.W, b.H} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return b.W >= 0 && b.H >= 0
}

// IoU returns the intersection-over-union of two boxes: 1 for identical
// boxes, 0 for disjoint ones. Degenerate (zero-area) boxes yield 0.
func IoU(a, b Box) float64 {
	ix1 := math.Max(a.X, b.X)
	iy1 := math.Max(a.Y, b.Y)
	ix2 := math.Min(a.X2(), b.X2())
	iy2 := math.Min(a.Y2(), b.Y2())

	iw := ix2 - ix1
	ih := iy2 - iy1
	if iw <= 0 || ih <= 0 {
		return 0
	}

	inter := iw * ih
	union := a.Area() + b.Area() - inter
	if union <= 0 {
		return 0
	}
	return inter / union
}
