package mot

import (
	"math"
	"testing"
)

func newTestTrack(t *testing.T, b Box) *Track {
	t.Helper()
	kf := newKalmanFilter(1.0/20, 1.0/160)
	mean, cov := kf.initiate(b)
	return &Track{ID: 1, State: TrackConfirmed, mean: mean, cov: cov}
}

func TestCostMatrix_Values(t *testing.T) {
	trk := newTestTrack(t, Box{0, 0, 10, 10})
	dets := []Detection{
		{Box: Box{0, 0, 10, 10}, Score: 0.9},     // identical → cost 0
		{Box: Box{100, 100, 10, 10}, Score: 0.9}, // disjoint → cost 1
	}

	cost := costMatrix([]*Track{trk}, dets)
	if len(cost) != 1 || len(cost[0]) != 2 {
		t.Fatalf("expected 1x2 matrix, got %dx%d", len(cost), len(cost[0]))
	}
	if math.Abs(cost[0][0]) > 1e-9 {
		t.Errorf("identical boxes: expected cost ~0, got %v", cost[0][0])
	}
	if cost[0][1] != 1 {
		t.Errorf("disjoint boxes: expected cost 1, got %v", cost[0][1])
	}
}

func TestCostMatrix_NoDetections(t *testing.T) {
	trk := newTestTrack(t, Box{0, 0, 10, 10})
	cost := costMatrix([]*Track{trk}, nil)
	if len(cost) != 1 || len(cost[0]) != 0 {
		t.Fatalf("expected 1 empty row, got %v", cost)
	}
}

func TestAssign_MaxCostGate(t *testing.T) {
	// One pair under the gate, one over it.
	cost := [][]float64{
		{0.1, 1.0},
		{1.0, 0.9},
	}
	res := assign(cost, 2, 0.8)

	if len(res.pairs) != 1 {
		t.Fatalf("expected 1 pair, got %v", res.pairs)
	}
	if res.pairs[0] != [2]int{0, 0} {
		t.Errorf("expected pair {0,0}, got %v", res.pairs[0])
	}
	if len(res.unmatchedRows) != 1 || res.unmatchedRows[0] != 1 {
		t.Errorf("expected row 1 unmatched, got %v", res.unmatchedRows)
	}
	if len(res.unmatchedCols) != 1 || res.unmatchedCols[0] != 1 {
		t.Errorf("expected col 1 unmatched, got %v", res.unmatchedCols)
	}
}

func TestAssign_EmptyRows(t *testing.T) {
	// No tracks: every detection column must come back unmatched.
	res := assign(nil, 3, 0.8)
	if len(res.pairs) != 0 {
		t.Errorf("expected no pairs, got %v", res.pairs)
	}
	if len(res.unmatchedCols) != 3 {
		t.Errorf("expected 3 unmatched cols, got %v", res.unmatchedCols)
	}
}

func TestAssign_EmptyCols(t *testing.T) {
	// No detections: every track row must come back unmatched.
	cost := [][]float64{{}, {}}
	res := assign(cost, 0, 0.8)
	if len(res.pairs) != 0 {
		t.Errorf("expected no pairs, got %v", res.pairs)
	}
	if len(res.unmatchedRows) != 2 {
		t.Errorf("expected 2 unmatched rows, got %v", res.unmatchedRows)
	}
	if len(res.unmatchedCols) != 0 {
		t.Errorf("expected no unmatched cols, got %v", res.unmatchedCols)
	}
}
