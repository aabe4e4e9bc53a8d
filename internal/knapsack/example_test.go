package knapsack_test

import (
	"fmt"

	"github.com/eugenenazirov/bundle-optimizer/internal/knapsack"
)

// ExampleSolve picks the two most profitable items that fit a budget of 50.
func ExampleSolve() {
	items := []knapsack.Item{
		{Name: "X", Cost: 10, Profit: 60},
		{Name: "Y", Cost: 20, Profit: 100},
		{Name: "Z", Cost: 30, Profit: 120},
	}

	sol, err := knapsack.Solve(items, 50)
	if err != nil {
		fmt.Println("error:", err)

		return
	}
	for _, idx := range sol.Selected {
		fmt.Println(items[idx].Name)
	}
	fmt.Printf("profit=%d cost=%d\n", sol.MaxProfit, sol.TotalCost)
	// Output:
	// Y
	// Z
	// profit=220 cost=50
}

// ExampleNew_rollingRow keeps a single DP row; the selection is the same one
// the full table would produce.
func ExampleNew_rollingRow() {
	items := []knapsack.Item{
		{Name: "A", Cost: 1, Profit: 1},
		{Name: "B", Cost: 1, Profit: 1},
	}

	sol, _ := knapsack.New(knapsack.Options{MemoryMode: knapsack.RollingRow}).Solve(items, 1)
	fmt.Println(sol.Selected, sol.MaxProfit)
	// Output:
	// [0] 1
}
