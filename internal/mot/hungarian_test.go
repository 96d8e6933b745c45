package mot

import (
	"testing"
)

func TestHungarianAssign_Empty(t *testing.T) {
	result := hungarianAssign(nil)
	if result != nil {
		t.Errorf("expected nil for empty cost matrix, got %v", result)
	}
}

func TestHungarianAssign_SingleElement(t *testing.T) {
	cost := [][]float64{{5.0}}
	result := hungarianAssign(cost)
	if len(result) != 1 || result[0] != 0 {
		t.Errorf("expected [0], got %v", result)
	}
}

func TestHungarianAssign_SquareOptimal(t *testing.T) {
	// Classic 3x3 assignment problem:
	//   [1 2 3]     Optimal: row0→col0 (1), row1→col1 (4), row2→col2 (5) = 10
	//   [4 4 6]     NOT: row0→col0 (1), row1→col2 (6), row2→col1 (8) = 15
	//   [9 8 5]
	cost := [][]float64{
		{1, 2, 3},
		{4, 4, 6},
		{9, 8, 5},
	}
	result := hungarianAssign(cost)

	if len(result) != 3 {
		t.Fatalf("expected 3 assignments, got %d", len(result))
	}

	totalCost := 0.0
	for i, j := range result {
		if j < 0 {
			t.Errorf("row %d unassigned", i)
			continue
		}
		totalCost += cost[i][j]
	}

	if totalCost != 10.0 {
		t.Errorf("expected optimal cost 10, got %v (assignments: %v)", totalCost, result)
	}
}

func TestHungarianAssign_Forbidden(t *testing.T) {
	// Row 1 has no reachable column (all forbidden).
	cost := [][]float64{
		{1, 2},
		{forbiddenCost, forbiddenCost},
	}
	result := hungarianAssign(cost)

	if len(result) != 2 {
		t.Fatalf("expected 2 assignments, got %d", len(result))
	}
	if result[0] < 0 {
		t.Errorf("row 0 should be assigned, got %d", result[0])
	}
	if result[1] != -1 {
		t.Errorf("row 1 should be unassigned (-1), got %d", result[1])
	}
}

func TestHungarianAssign_MoreRowsThanCols(t *testing.T) {
	// 3 rows, 2 cols → one row must go unassigned.
	cost := [][]float64{
		{1, 10},
		{10, 1},
		{5, 5},
	}
	result := hungarianAssign(cost)

	if len(result) != 3 {
		t.Fatalf("expected 3 assignments, got %d", len(result))
	}

	assigned := 0
	totalCost := 0.0
	for _, j := range result {
		if j >= 0 {
			assigned++
		}
	}
	for i, j := range result {
		if j >= 0 {
			totalCost += cost[i][j]
		}
	}
	if assigned != 2 {
		t.Errorf("expected exactly 2 assigned rows, got %d (result: %v)", assigned, result)
	}
	// Optimal: row0→col0(1), row1→col1(1) = 2
	if totalCost != 2.0 {
		t.Errorf("expected optimal cost 2, got %v (assignments: %v)", totalCost, result)
	}
}

func TestHungarianAssign_MoreColsThanRows(t *testing.T) {
	// 2 rows, 3 cols → all rows assigned.
	cost := [][]float64{
		{10, 1, 5},
		{5, 10, 1},
	}
	result := hungarianAssign(cost)

	if len(result) != 2 {
		t.Fatalf("expected 2 assignments, got %d", len(result))
	}
	if result[0] != 1 {
		t.Errorf("row 0 should take col 1, got %d", result[0])
	}
	if result[1] != 2 {
		t.Errorf("row 1 should take col 2, got %d", result[1])
	}
}

func TestHungarianAssign_Deterministic(t *testing.T) {
	// Symmetric ties must resolve identically on every run.
	cost := [][]float64{
		{1, 1},
		{1, 1},
	}
	first := hungarianAssign(cost)
	for i := 0; i < 50; i++ {
		again := hungarianAssign(cost)
		if first[0] != again[0] || first[1] != again[1] {
			t.Fatalf("assignment not deterministic: %v vs %v", first, again)
		}
	}
}
