package knapsack

import "errors"

var (
	// ErrNegativeCapacity is returned when the capacity is below zero.
	ErrNegativeCapacity = errors.New("knapsack: capacity must be a non-negative integer")
	// ErrInvalidItem is returned when an item has an empty name, a non-positive cost or a negative profit.
	ErrInvalidItem = errors.New("knapsack: invalid item")
	// ErrTableTooLarge is returned when FullTable mode would allocate more cells than the configured limit,
	// or when capacity+1 cells cannot be allocated at all.
	ErrTableTooLarge = errors.New("knapsack: DP table exceeds the configured cell limit")
	// ErrUnknownMemoryMode is returned when a memory mode name cannot be parsed.
	ErrUnknownMemoryMode = errors.New("knapsack: unknown memory mode")
)
