package knapsack

import (
	"fmt"
	"slices"
	"strings"
)

type dpSolver struct {
	opts Options
}

// New creates a Solver based on dynamic programming.
func New(opts Options) Solver {
	return &dpSolver{opts: opts}
}

// Solve runs the solver with DefaultOptions.
func Solve(items []Item, capacity int) (Solution, error) {
	return New(DefaultOptions()).Solve(items, capacity)
}

func (s *dpSolver) Solve(items []Item, capacity int) (Solution, error) {
	if err := Validate(items, capacity); err != nil {
		return Solution{}, err
	}

	// Nothing can be selected; answer before sizing any table.
	if len(items) == 0 || capacity == 0 {
		return Solution{Selected: []int{}}, nil
	}

	switch mode := s.opts.Resolve(len(items), capacity); mode {
	case FullTable:
		if !fitsCellLimit(len(items), capacity, s.opts.CellLimit) {
			return Solution{}, fmt.Errorf("%w: %d items x capacity %d", ErrTableTooLarge, len(items), capacity)
		}
		return solveFullTable(items, capacity), nil
	case RollingRow:
		if _, ok := tableCells(0, capacity); !ok {
			return Solution{}, fmt.Errorf("%w: capacity %d", ErrTableTooLarge, capacity)
		}
		return solveRollingRow(items, capacity), nil
	default:
		return Solution{}, fmt.Errorf("%w: %s", ErrUnknownMemoryMode, mode)
	}
}

// Validate checks the solver preconditions. Zero items and zero capacity are valid.
func Validate(items []Item, capacity int) error {
	if capacity < 0 {
		return ErrNegativeCapacity
	}
	for i, it := range items {
		switch {
		case strings.TrimSpace(it.Name) == "":
			return fmt.Errorf("%w: item %d: name must not be empty", ErrInvalidItem, i)
		case it.Cost <= 0:
			return fmt.Errorf("%w: item %d (%s): cost must be positive, got %d", ErrInvalidItem, i, it.Name, it.Cost)
		case it.Profit < 0:
			return fmt.Errorf("%w: item %d (%s): profit must be non-negative, got %d", ErrInvalidItem, i, it.Name, it.Profit)
		}
	}
	return nil
}

// solveFullTable fills the (n+1)x(capacity+1) table in one contiguous slice
// and backtracks through it.
func solveFullTable(items []Item, capacity int) Solution {
	n := len(items)
	width := capacity + 1
	table := make([]int, (n+1)*width)

	for i := 1; i <= n; i++ {
		cost, profit := items[i-1].Cost, items[i-1].Profit
		prev := table[(i-1)*width : i*width]
		row := table[i*width : (i+1)*width]
		for c := 0; c <= capacity; c++ {
			row[c] = prev[c]
			if cost <= c && prev[c-cost]+profit > row[c] {
				row[c] = prev[c-cost] + profit
			}
		}
	}

	selected := make([]int, 0, n)
	c := capacity
	for i := n; i >= 1; i-- {
		if table[i*width+c] != table[(i-1)*width+c] {
			selected = append(selected, i-1)
			c -= items[i-1].Cost
		}
	}
	slices.Reverse(selected)

	return newSolution(items, table[n*width+capacity], selected)
}

// solveRollingRow keeps a single DP row. Reconstruction replays the prefix
// items[:i-1] for every step to recover T[i-1][0..c], so the selection is the
// same one solveFullTable produces.
func solveRollingRow(items []Item, capacity int) Solution {
	n := len(items)
	row := make([]int, capacity+1)
	fillRow(row, items)
	maxProfit := row[capacity]

	selected := make([]int, 0, n)
	c := capacity
	// target is T[i][c] for the current i.
	target := maxProfit
	for i := n; i >= 1 && target > 0; i-- {
		prev := row[:c+1]
		fillRow(prev, items[:i-1])
		if target != prev[c] {
			selected = append(selected, i-1)
			c -= items[i-1].Cost
		}
		target = prev[c]
	}
	slices.Reverse(selected)

	return newSolution(items, maxProfit, selected)
}

// fillRow overwrites row with T[len(items)][0..len(row)-1].
func fillRow(row []int, items []Item) {
	clear(row)
	last := len(row) - 1
	for _, it := range items {
		for c := last; c >= it.Cost; c-- {
			if v := row[c-it.Cost] + it.Profit; v > row[c] {
				row[c] = v
			}
		}
	}
}

func newSolution(items []Item, maxProfit int, selected []int) Solution {
	sol := Solution{
		MaxProfit: maxProfit,
		Selected:  selected,
	}
	for _, idx := range selected {
		sol.TotalCost += items[idx].Cost
		sol.TotalProfit += items[idx].Profit
	}
	return sol
}
