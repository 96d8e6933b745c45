package mot

import (
	"log"
	"math"

	"gonum.org/v1/gonum/mat"
)

// TrackState represents the lifecycle state of a track.
type TrackState string

const (
	TrackTentative TrackState = "tentative" // Seen once, not yet confirmed
	TrackConfirmed TrackState = "confirmed" // Matched enough consecutive frames
	TrackLost      TrackState = "lost"      // Missed this frame, within grace period
	TrackRemoved   TrackState = "removed"   // Terminal, purged from the active set
)

// CoordinateSpace documents the box coordinate convention the tracker was
// constructed with. It is fixed at construction and must be consistent
// across all Update calls.
type CoordinateSpace string

const (
	CoordinatePixel      CoordinateSpace = "pixel"
	CoordinateNormalized CoordinateSpace = "normalized"
)

// TrackerConfig holds configuration parameters for the tracker.
// All values are fixed at construction, not per-call.
type TrackerConfig struct {
	HighScoreThreshold float64 // Detections at or above this score drive the first pass and spawn tracks
	LowScoreThreshold  float64 // Detections below this score are discarded as noise
	IoUThresholdHigh   float64 // Minimum IoU for a first-pass match
	IoUThresholdLow    float64 // Minimum IoU for a second-pass (rescue) match
	MinHits            int     // Consecutive hits needed for confirmation
	MaxAge             int     // Consecutive misses before a confirmed/lost track is removed
	TentativeMaxAge    int     // Consecutive misses before an unconfirmed track is removed
	ProcessNoiseScale  float64 // Position noise as a fraction of box height
	VelocityNoiseScale float64 // Velocity noise as a fraction of box height
	MaxHistory         int     // Maximum position trail length per track (0 = unlimited)

	// ReportLost includes lost tracks in per-frame output with their last
	// predicted (unverified) box. When false, a track disappears from the
	// output on its first missed frame and reappears when re-matched.
	ReportLost bool

	Coordinates CoordinateSpace // Box coordinate convention for all frames
	Verbose     bool            // Per-frame lifecycle logging
}

// DefaultTrackerConfig returns default tracker configuration.
func DefaultTrackerConfig() TrackerConfig {
	return TrackerConfig{
		HighScoreThreshold: 0.5,
		LowScoreThreshold:  0.1,
		IoUThresholdHigh:   0.2,
		IoUThresholdLow:    0.2,
		MinHits:            2,
		MaxAge:             30,
		TentativeMaxAge:    3,
		ProcessNoiseScale:  1.0 / 20,
		VelocityNoiseScale: 1.0 / 160,
		MaxHistory:         300,
		ReportLost:         false,
		Coordinates:        CoordinatePixel,
	}
}

// TrackPoint is a single point in a track's position trail.
type TrackPoint struct {
	Frame int
	X     float64 // Box centre X
	Y     float64 // Box centre Y
}

// Track is one tracked object across time. The tracker owns all tracks
// exclusively; callers receive value snapshots (TrackOutput), never
// long-lived references.
type Track struct {
	// Identity
	ID    int64
	State TrackState
	Label string

	// Lifecycle counters
	HitStreak       int // Consecutive frames matched
	TimeSinceUpdate int // Frames since last successful match
	Age             int // Total frames since creation

	// Last associated detection
	Score   float64
	LastBox Box

	// Position trail (box centres, capped at MaxHistory)
	History []TrackPoint

	// Kalman state: [cx, cy, a, h] + velocities, with error covariance
	mean *mat.VecDense
	cov  *mat.Dense

	// Speed samples (units/frame) for percentile computation
	speedHistory []float64
}

// predictedBox returns the box implied by the track's current state estimate.
func (t *Track) predictedBox() Box {
	return stateBox(t.mean)
}

// Speed returns the current centre speed magnitude in coordinate units per frame.
func (t *Track) Speed() float64 {
	return math.Hypot(t.mean.AtVec(4), t.mean.AtVec(5))
}

// SpeedHistory returns a copy of the track's speed samples.
func (t *Track) SpeedHistory() []float64 {
	if t.speedHistory == nil {
		return nil
	}
	out := make([]float64, len(t.speedHistory))
	copy(out, t.speedHistory)
	return out
}

// TrackOutput is the per-frame snapshot of a reported track.
type TrackOutput struct {
	ID    int64
	Box   Box
	Label string
	Age   int
	State TrackState
	Score float64
}

// Tracker assigns stable identities to per-frame detections using the
// two-stage (high/low confidence) association cascade, with a per-track
// constant-velocity Kalman motion model and optimal bipartite matching.
//
// A Tracker instance is single-threaded by design: Update processes one
// frame to completion before returning, and concurrent calls into the same
// instance are not supported; callers must serialize, typically one
// tracker per camera stream. Each instance keeps its own identifier
// counter, so independent instances never cross-contaminate.
type Tracker struct {
	Config TrackerConfig

	kf     *kalmanFilter
	tracks []*Track // Creation order; ordering is what makes runs reproducible
	nextID int64
	frame  int

	// Counters over the tracker's lifetime
	framesProcessed   int64
	tracksCreated     int64
	tracksRemoved     int64
	detectionsDropped int64 // Malformed detections excluded at the boundary
}

// NewTracker creates a new tracker with the specified configuration.
func NewTracker(config TrackerConfig) *Tracker {
	return &Tracker{
		Config: config,
		kf:     newKalmanFilter(config.ProcessNoiseScale, config.VelocityNoiseScale),
		nextID: 1,
	}
}

// Update processes one frame's detections to completion and returns the
// reported track set for that frame. This is the tracker's only entry point.
func (t *Tracker) Update(detections []Detection) []TrackOutput {
	t.frame++
	t.framesProcessed++

	// Malformed detections are dropped before partitioning; they never
	// reach the cost engine.
	clean := sanitizeDetections(detections)
	t.detectionsDropped += int64(len(detections) - len(clean))

	for _, trk := range t.tracks {
		trk.Age++
	}

	// Step 1: Predict confirmed and lost tracks forward one frame. Tentative
	// tracks keep their freshly-corrected state (zero initial velocity), so
	// their predicted box is their current box.
	for _, trk := range t.tracks {
		if trk.State == TrackConfirmed || trk.State == TrackLost {
			t.kf.predict(trk.mean, trk.cov)
		}
	}

	// Step 2: Partition detections by confidence. Below the low threshold is
	// noise and discarded outright.
	var high, low []Detection
	for _, d := range clean {
		switch {
		case d.Score >= t.Config.HighScoreThreshold:
			high = append(high, d)
		case d.Score >= t.Config.LowScoreThreshold:
			low = append(low, d)
		}
	}

	matched := make([]bool, len(t.tracks))

	// Step 3: First association pass, all active tracks against
	// high-confidence detections.
	firstPass := assign(costMatrix(t.tracks, high), len(high), 1-t.Config.IoUThresholdHigh)
	for _, pair := range firstPass.pairs {
		if t.applyMatch(t.tracks[pair[0]], high[pair[1]]) {
			matched[pair[0]] = true
		}
	}

	// Step 4: Second association pass: the tracks left unmatched (typically
	// occluded ones with degraded detections) against low-confidence
	// detections. This rescue pass is what keeps a track's identity through
	// partial occlusion instead of dropping and re-spawning it.
	var leftover []*Track
	var leftoverIdx []int
	for i, trk := range t.tracks {
		if !matched[i] {
			leftover = append(leftover, trk)
			leftoverIdx = append(leftoverIdx, i)
		}
	}
	secondPass := assign(costMatrix(leftover, low), len(low), 1-t.Config.IoUThresholdLow)
	for _, pair := range secondPass.pairs {
		if t.applyMatch(leftover[pair[0]], low[pair[1]]) {
			matched[leftoverIdx[pair[0]]] = true
		}
	}

	// Step 5: Age out tracks unmatched after both passes.
	for i, trk := range t.tracks {
		if matched[i] {
			continue
		}
		trk.TimeSinceUpdate++
		trk.HitStreak = 0

		switch trk.State {
		case TrackConfirmed:
			trk.State = TrackLost
		case TrackTentative:
			if trk.TimeSinceUpdate > t.Config.TentativeMaxAge {
				trk.State = TrackRemoved
			}
		}
		if trk.State == TrackLost && trk.TimeSinceUpdate > t.Config.MaxAge {
			trk.State = TrackRemoved
		}
		if trk.State == TrackRemoved && t.Config.Verbose {
			log.Printf("mot: removed track %d after %d missed frames", trk.ID, trk.TimeSinceUpdate)
		}
	}

	// Step 6: Spawn tentative tracks from unmatched high-confidence
	// detections. Low-confidence leftovers never spawn tracks.
	for _, col := range firstPass.unmatchedCols {
		t.spawnTrack(high[col])
	}

	// Step 7: Evict removed tracks. Removal is terminal; identifiers are
	// never reused.
	if t.anyRemoved() {
		kept := t.tracks[:0]
		for _, trk := range t.tracks {
			if trk.State == TrackRemoved {
				t.tracksRemoved++
			} else {
				kept = append(kept, trk)
			}
		}
		// Clear trailing slots so evicted tracks are collectable.
		for i := len(kept); i < len(t.tracks); i++ {
			t.tracks[i] = nil
		}
		t.tracks = kept
	}

	return t.report()
}

// applyMatch runs the Kalman correction for a matched track/detection pair
// and advances the track's lifecycle. A rejected correction (degenerate
// covariance) leaves the track's state untouched and returns false so the
// caller routes the track through the ordinary miss path for this frame.
func (t *Tracker) applyMatch(trk *Track, det Detection) bool {
	if err := t.kf.correct(trk.mean, trk.cov, det.Box); err != nil {
		if t.Config.Verbose {
			log.Printf("mot: track %d correction rejected: %v", trk.ID, err)
		}
		return false
	}

	trk.HitStreak++
	trk.TimeSinceUpdate = 0
	trk.Score = det.Score
	trk.LastBox = det.Box
	if det.Label != "" {
		trk.Label = det.Label
	}

	switch trk.State {
	case TrackLost:
		trk.State = TrackConfirmed
	case TrackTentative:
		if trk.HitStreak >= t.Config.MinHits {
			trk.State = TrackConfirmed
		}
	}

	trk.speedHistory = append(trk.speedHistory, trk.Speed())
	t.appendHistory(trk)
	return true
}

// spawnTrack creates a tentative track from an unmatched high-confidence
// detection, with a fresh identifier and zero initial velocity.
func (t *Tracker) spawnTrack(det Detection) {
	mean, cov := t.kf.initiate(det.Box)
	trk := &Track{
		ID:        t.nextID,
		State:     TrackTentative,
		Label:     det.Label,
		HitStreak: 1,
		Age:       1,
		Score:     det.Score,
		LastBox:   det.Box,
		mean:      mean,
		cov:       cov,
	}
	t.nextID++
	t.tracksCreated++
	if t.Config.MinHits <= 1 {
		trk.State = TrackConfirmed
	}
	t.appendHistory(trk)
	t.tracks = append(t.tracks, trk)
	if t.Config.Verbose {
		log.Printf("mot: new track %d at (%.1f, %.1f) score=%.2f", trk.ID, det.Box.CenterX(), det.Box.CenterY(), det.Score)
	}
}

func (t *Tracker) appendHistory(trk *Track) {
	b := trk.predictedBox()
	trk.History = append(trk.History, TrackPoint{Frame: t.frame, X: b.CenterX(), Y: b.CenterY()})
	if max := t.Config.MaxHistory; max > 0 && len(trk.History) > max {
		trk.History = trk.History[len(trk.History)-max:]
	}
}

func (t *Tracker) anyRemoved() bool {
	for _, trk := range t.tracks {
		if trk.State == TrackRemoved {
			return true
		}
	}
	return false
}

// report builds the frame's output: all confirmed tracks, plus lost tracks
// with their stale predicted box when ReportLost is set. Output order is
// track creation order.
func (t *Tracker) report() []TrackOutput {
	out := make([]TrackOutput, 0, len(t.tracks))
	for _, trk := range t.tracks {
		if trk.State != TrackConfirmed && !(t.Config.ReportLost && trk.State == TrackLost) {
			continue
		}
		out = append(out, TrackOutput{
			ID:    trk.ID,
			Box:   trk.predictedBox(),
			Label: trk.Label,
			Age:   trk.Age,
			State: trk.State,
			Score: trk.Score,
		})
	}
	return out
}

// Frame returns the number of frames processed so far.
func (t *Tracker) Frame() int { return t.frame }

// ActiveTracks returns snapshots of all non-removed tracks regardless of
// state. Intended for persistence and diagnostics, not per-frame output.
func (t *Tracker) ActiveTracks() []*Track {
	out := make([]*Track, len(t.tracks))
	copy(out, t.tracks)
	return out
}

// TrackCount returns counts of active tracks by state.
func (t *Tracker) TrackCount() (total, tentative, confirmed, lost int) {
	for _, trk := range t.tracks {
		total++
		switch trk.State {
		case TrackTentative:
			tentative++
		case TrackConfirmed:
			confirmed++
		case TrackLost:
			lost++
		}
	}
	return
}
