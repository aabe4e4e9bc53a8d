package bundle

import (
	"slices"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/eugenenazirov/bundle-optimizer/internal/knapsack"
)

// Request is the immutable input of one optimization run.
type Request struct {
	Items    []knapsack.Item `json:"items"`
	Capacity int             `json:"capacity"`
}

func (r Request) snapshot() []knapsack.Item {
	return slices.Clone(r.Items)
}

// Pick is a selected item together with its position in the request.
type Pick struct {
	Index  int    `json:"index"`
	Name   string `json:"name"`
	Cost   int    `json:"cost"`
	Profit int    `json:"profit"`
}

// Report is the outcome of a run as presented to the shells.
type Report struct {
	Capacity    int           `json:"capacity"`
	ItemCount   int           `json:"itemCount"`
	MaxProfit   int           `json:"maxProfit"`
	TotalCost   int           `json:"totalCost"`
	TotalProfit int           `json:"totalProfit"`
	Remaining   int           `json:"remaining"`
	Selected    []Pick        `json:"selected"`
	Mode        string        `json:"memoryMode"`
	Elapsed     time.Duration `json:"-"`
	ElapsedMs   int64         `json:"calculationTimeMs"`
}

func newReport(items []knapsack.Item, capacity int, sol knapsack.Solution, mode knapsack.MemoryMode, elapsed time.Duration) Report {
	picks := make([]Pick, 0, len(sol.Selected))
	for _, idx := range sol.Selected {
		it := items[idx]
		picks = append(picks, Pick{Index: idx, Name: it.Name, Cost: it.Cost, Profit: it.Profit})
	}
	return Report{
		Capacity:    capacity,
		ItemCount:   len(items),
		MaxProfit:   sol.MaxProfit,
		TotalCost:   sol.TotalCost,
		TotalProfit: sol.TotalProfit,
		Remaining:   capacity - sol.TotalCost,
		Selected:    picks,
		Mode:        mode.String(),
		Elapsed:     elapsed,
		ElapsedMs:   elapsed.Milliseconds(),
	}
}

// Empty reports whether the run selected nothing. This is a valid outcome
// when every item is too expensive for the capacity.
func (r Report) Empty() bool {
	return len(r.Selected) == 0
}

// Summary renders the "last run" line with thousands separators for lang.
func (r Report) Summary(lang language.Tag) string {
	p := message.NewPrinter(lang)
	return p.Sprintf("Profit = %d (Capacity %d)", r.MaxProfit, r.Capacity)
}

// Totals renders the total cost and profit line for lang.
func (r Report) Totals(lang language.Tag) string {
	p := message.NewPrinter(lang)
	return p.Sprintf("Total Cost: %d  Total Profit: %d", r.TotalCost, r.TotalProfit)
}

// Bar is one column of the selected-profit chart.
type Bar struct {
	Name   string `json:"name"`
	Profit int    `json:"profit"`
	Length int    `json:"length"`
}

// Bars scales the profit of each selected item to at most width cells.
// Items with a positive profit get at least one cell.
func (r Report) Bars(width int) []Bar {
	if width <= 0 {
		width = 1
	}
	peak := 0
	for _, p := range r.Selected {
		peak = max(peak, p.Profit)
	}

	bars := make([]Bar, 0, len(r.Selected))
	for _, p := range r.Selected {
		length := 0
		if peak > 0 {
			length = p.Profit * width / peak
			if length == 0 && p.Profit > 0 {
				length = 1
			}
		}
		bars = append(bars, Bar{Name: p.Name, Profit: p.Profit, Length: length})
	}
	return bars
}
