package mot

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// TrackerStats is a snapshot of lifetime tracker counters.
type TrackerStats struct {
	FramesProcessed   int64 `json:"frames_processed"`
	TracksCreated     int64 `json:"tracks_created"`
	TracksRemoved     int64 `json:"tracks_removed"`
	DetectionsDropped int64 `json:"detections_dropped"`

	ActiveTotal     int `json:"active_total"`
	ActiveTentative int `json:"active_tentative"`
	ActiveConfirmed int `json:"active_confirmed"`
	ActiveLost      int `json:"active_lost"`
}

// Stats returns the tracker's lifetime counters and current state census.
func (t *Tracker) Stats() TrackerStats {
	total, tentative, confirmed, lost := t.TrackCount()
	return TrackerStats{
		FramesProcessed:   t.framesProcessed,
		TracksCreated:     t.tracksCreated,
		TracksRemoved:     t.tracksRemoved,
		DetectionsDropped: t.detectionsDropped,
		ActiveTotal:       total,
		ActiveTentative:   tentative,
		ActiveConfirmed:   confirmed,
		ActiveLost:        lost,
	}
}

// SpeedPercentiles computes the p50/p85/p95 of a track's speed samples
// (coordinate units per frame). Returns zeros for an empty sample set.
func SpeedPercentiles(samples []float64) (p50, p85, p95 float64) {
	if len(samples) == 0 {
		return 0, 0, 0
	}
	sorted := make([]float64, len(samples))
	copy(sorted, samples)
	sort.Float64s(sorted)

	p50 = stat.Quantile(0.50, stat.Empirical, sorted, nil)
	p85 = stat.Quantile(0.85, stat.Empirical, sorted, nil)
	p95 = stat.Quantile(0.95, stat.Empirical, sorted, nil)
	return p50, p85, p95
}
