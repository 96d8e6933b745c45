package mot

// costMatrix builds the dense track-by-detection dissimilarity matrix used
// by the assignment solver: cost = 1 - IoU(predicted box, detection box).
// Pairs with zero overlap get the maximum cost of 1; they are never rejected
// here, rejection happens against the solver's max-cost threshold.
func costMatrix(tracks []*Track, dets []Detection) [][]float64 {
	cost := make([][]float64, len(tracks))
	for i, trk := range tracks {
		row := make([]float64, len(dets))
		pb := trk.predictedBox()
		for j, det := range dets {
			row[j] = 1 - IoU(pb, det.Box)
		}
		cost[i] = row
	}
	return cost
}

// assignment is the result of one bipartite matching pass.
type assignment struct {
	pairs         [][2]int // {row, col} matched pairs, in row order
	unmatchedRows []int    // Rows with no acceptable column
	unmatchedCols []int    // Columns with no acceptable row
}

// assign solves minimum-cost bipartite matching over the full cost matrix,
// then demotes any pair whose cost exceeds maxCost to the unmatched sets.
// nCols is passed explicitly so an empty matrix (no rows) still reports
// every column as unmatched. Row and column ordering is preserved
// throughout, so identical input yields identical output across runs.
func assign(cost [][]float64, nCols int, maxCost float64) assignment {
	var out assignment

	rowToCol := hungarianAssign(cost)

	colMatched := make([]bool, nCols)
	for row, col := range rowToCol {
		if col >= 0 && cost[row][col] <= maxCost {
			out.pairs = append(out.pairs, [2]int{row, col})
			colMatched[col] = true
		} else {
			out.unmatchedRows = append(out.unmatchedRows, row)
		}
	}
	for col := 0; col < nCols; col++ {
		if !colMatched[col] {
			out.unmatchedCols = append(out.unmatchedCols, col)
		}
	}
	return out
}
