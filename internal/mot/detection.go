package mot

import "math"

// Detection is one frame's raw observation from the upstream detector:
// a bounding box with a confidence score and an optional class label.
// Detections are ephemeral; the tracker never retains them across frames.
type Detection struct {
	Box   Box
	Score float64 // Confidence in [0,1]
	Label string  // Optional class label ("" when the detector has none)
}

// Valid reports whether the detection is well formed: finite box geometry
// with non-negative dimensions and a score inside [0,1].
func (d Detection) Valid() bool {
	if !d.Box.Valid() {
		return false
	}
	if math.IsNaN(d.Score) || d.Score < 0 || d.Score > 1 {
		return false
	}
	return true
}

// sanitizeDetections filters out malformed detections in place-order so the
// survivors keep their relative ordering. Malformed input is silently
// excluded; it never reaches the cost engine or the estimator.
func sanitizeDetections(dets []Detection) []Detection {
	clean := make([]Detection, 0, len(dets))
	for _, d := range dets {
		if d.Valid() {
			clean = append(clean, d)
		}
	}
	return clean
}
