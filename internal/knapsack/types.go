package knapsack

import (
	"fmt"
	"math"
	"math/bits"
	"strings"
)

// DefaultCellLimit bounds the full DP table to 16Mi cells (128MiB of int64)
// when no explicit limit is configured.
const DefaultCellLimit = 1 << 24

// Item is a single candidate for the knapsack. Items are identified by their
// position in the slice handed to the solver.
type Item struct {
	Name   string `json:"name"`
	Cost   int    `json:"cost"`
	Profit int    `json:"profit"`
}

// Solution is the outcome of one solver invocation.
// Selected holds indices into the input slice in strictly increasing order.
type Solution struct {
	MaxProfit   int   `json:"maxProfit"`
	Selected    []int `json:"selected"`
	TotalCost   int   `json:"totalCost"`
	TotalProfit int   `json:"totalProfit"`
}

// Empty reports whether the solution selected no items.
func (s Solution) Empty() bool {
	return len(s.Selected) == 0
}

// MemoryMode controls how the solver stores its DP table.
//
//   - Auto: FullTable while the table fits the cell limit, RollingRow beyond it.
//   - FullTable: keep all (n+1)x(capacity+1) cells; backtracking reads the table directly.
//     Memory: O(n·capacity).
//   - RollingRow: keep a single row of capacity+1 cells and replay shorter prefixes
//     during reconstruction. Memory: O(capacity), time O(n²·capacity) in the worst case.
type MemoryMode int

const (
	// Auto picks FullTable or RollingRow based on Options.CellLimit.
	Auto MemoryMode = iota
	// FullTable stores every row of the DP table.
	FullTable
	// RollingRow stores a single DP row.
	RollingRow
)

// String returns the configuration name of the mode.
func (m MemoryMode) String() string {
	switch m {
	case Auto:
		return "auto"
	case FullTable:
		return "full"
	case RollingRow:
		return "rolling"
	default:
		return fmt.Sprintf("MemoryMode(%d)", int(m))
	}
}

// ParseMemoryMode converts a configuration value into a MemoryMode.
func ParseMemoryMode(raw string) (MemoryMode, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "auto":
		return Auto, nil
	case "full", "full_table", "full-table":
		return FullTable, nil
	case "rolling", "rolling_row", "rolling-row":
		return RollingRow, nil
	default:
		return Auto, fmt.Errorf("%w: %q", ErrUnknownMemoryMode, raw)
	}
}

// Options configures the solver.
//
// Fields:
//   - MemoryMode: storage strategy, see MemoryMode.
//   - CellLimit: maximum number of cells a full table may hold. Zero or a
//     negative value disables the limit.
type Options struct {
	MemoryMode MemoryMode
	CellLimit  int
}

// DefaultOptions returns Auto mode bounded by DefaultCellLimit.
func DefaultOptions() Options {
	return Options{
		MemoryMode: Auto,
		CellLimit:  DefaultCellLimit,
	}
}

// Resolve returns the concrete mode used for n items and the given capacity.
// Auto resolves to FullTable or RollingRow; explicit modes are returned as is.
func (o Options) Resolve(n, capacity int) MemoryMode {
	if o.MemoryMode != Auto {
		return o.MemoryMode
	}
	if fitsCellLimit(n, capacity, o.CellLimit) {
		return FullTable
	}
	return RollingRow
}

// Solver describes the behaviour required from a knapsack solver.
type Solver interface {
	Solve(items []Item, capacity int) (Solution, error)
}

// maxCells is the largest int slice length make accepts on this platform.
const maxCells = math.MaxInt / (bits.UintSize / 8)

// tableCells returns (n+1)*(capacity+1), or false when the product cannot be
// allocated as a single slice.
func tableCells(n, capacity int) (int, bool) {
	if n >= maxCells || capacity >= maxCells {
		return 0, false
	}
	rows, cols := n+1, capacity+1
	if cols > maxCells/rows {
		return 0, false
	}
	return rows * cols, true
}

// fitsCellLimit reports whether (n+1)*(capacity+1) <= limit without overflowing.
// A non-positive limit only requires the table to be allocatable.
func fitsCellLimit(n, capacity, limit int) bool {
	cells, ok := tableCells(n, capacity)
	if !ok {
		return false
	}
	return limit <= 0 || cells <= limit
}
