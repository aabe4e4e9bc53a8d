// Package knapsack solves the 0/1 knapsack problem exactly with dynamic
// programming and reconstructs one canonical optimal selection.
//
// The table T[i][c] holds the best profit reachable with the first i items
// and a cost budget of c. Reconstruction walks the items backwards and keeps
// item i-1 whenever T[i][c] differs from T[i-1][c], so ties resolve towards
// leaving the later item out. Both memory strategies (full table and rolling
// row with replay) return the same selection for the same input.
package knapsack
