package mcptool

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/eugenenazirov/bundle-optimizer/internal/bundle"
	"github.com/eugenenazirov/bundle-optimizer/internal/knapsack"
)

// SolveToolName is the name clients use to call the optimizer.
const SolveToolName = "knapsack_solve"

// SolveItem is one candidate product.
type SolveItem struct {
	Name   string `json:"name" jsonschema:"product name"`
	Cost   int    `json:"cost" jsonschema:"positive integer cost"`
	Profit int    `json:"profit" jsonschema:"non-negative integer profit"`
}

// SolveInput represents the MCP tool input for one optimization run.
type SolveInput struct {
	Items    []SolveItem `json:"items" jsonschema:"candidate products in order; ties favour earlier items"`
	Capacity int         `json:"capacity" jsonschema:"positive budget the selected costs must fit in"`
}

// SolvePick is a selected product and its index in the input.
type SolvePick struct {
	Index  int    `json:"index" jsonschema:"position of the product in the input items"`
	Name   string `json:"name" jsonschema:"product name"`
	Cost   int    `json:"cost" jsonschema:"product cost"`
	Profit int    `json:"profit" jsonschema:"product profit"`
}

// SolveResult represents the MCP tool output.
type SolveResult struct {
	MaxProfit   int         `json:"max_profit" jsonschema:"best achievable total profit"`
	TotalCost   int         `json:"total_cost" jsonschema:"summed cost of the selected products"`
	TotalProfit int         `json:"total_profit" jsonschema:"summed profit of the selected products"`
	Capacity    int         `json:"capacity" jsonschema:"budget used for the run"`
	Selected    []SolvePick `json:"selected" jsonschema:"selected products in ascending index order"`
	MemoryMode  string      `json:"memory_mode" jsonschema:"table strategy the solver used"`
	Summary     string      `json:"summary" jsonschema:"one-line human readable result"`
}

// SolveTool defines the MCP tool schema for the optimizer.
func SolveTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        SolveToolName,
		Description: "Pick the subset of products with the highest total profit whose total cost fits the capacity (0/1 knapsack)",
	}
}

// SolveHandler executes an optimization request through planner.
func SolveHandler(planner Planner, logger *zap.Logger) mcp.ToolHandlerFor[SolveInput, SolveResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input SolveInput) (*mcp.CallToolResult, SolveResult, error) {
		items := make([]knapsack.Item, len(input.Items))
		for i, it := range input.Items {
			items[i] = knapsack.Item{Name: it.Name, Cost: it.Cost, Profit: it.Profit}
		}

		report, err := planner.Plan(ctx, bundle.Request{Items: items, Capacity: input.Capacity})
		if err != nil {
			logger.Debug("knapsack_solve rejected", zap.Error(err))
			return nil, SolveResult{}, fmt.Errorf("solve: %w", err)
		}

		picks := make([]SolvePick, 0, len(report.Selected))
		for _, p := range report.Selected {
			picks = append(picks, SolvePick{Index: p.Index, Name: p.Name, Cost: p.Cost, Profit: p.Profit})
		}

		return nil, SolveResult{
			MaxProfit:   report.MaxProfit,
			TotalCost:   report.TotalCost,
			TotalProfit: report.TotalProfit,
			Capacity:    report.Capacity,
			Selected:    picks,
			MemoryMode:  report.Mode,
			Summary:     report.Summary(language.English),
		}, nil
	}
}
