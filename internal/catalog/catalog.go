package catalog

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/eugenenazirov/bundle-optimizer/internal/knapsack"
)

// DefaultCapacity is the budget a fresh workspace starts with.
const DefaultCapacity = 50

var (
	// ErrInvalidItem indicates the provided item violates validation rules.
	ErrInvalidItem = errors.New("name must be non-empty, cost a positive integer and profit a non-negative integer")
	// ErrInvalidCapacity indicates a non-positive capacity.
	ErrInvalidCapacity = errors.New("capacity must be a positive integer")
	// ErrItemNotFound indicates no entry carries the requested id.
	ErrItemNotFound = errors.New("item not found")
)

// Entry is an item stored in the workspace together with its stable id.
type Entry struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Cost   int    `json:"cost"`
	Profit int    `json:"profit"`
}

// Item converts the entry into the solver's item type.
func (e Entry) Item() knapsack.Item {
	return knapsack.Item{Name: e.Name, Cost: e.Cost, Profit: e.Profit}
}

// Snapshot is an immutable copy of the workspace handed to the planner.
// Generation identifies the workspace the copy was taken from; it changes on Clear.
type Snapshot struct {
	Entries    []Entry
	Capacity   int
	Generation uint64
}

// Items returns the solver items in insertion order.
func (s Snapshot) Items() []knapsack.Item {
	items := make([]knapsack.Item, len(s.Entries))
	for i, e := range s.Entries {
		items[i] = e.Item()
	}
	return items
}

// Catalog provides access to the user's item list and capacity.
type Catalog interface {
	Add(name string, cost, profit int) (Entry, error)
	Remove(id string) error
	Clear()
	List() []Entry
	Capacity() int
	SetCapacity(capacity int) error
	Snapshot() Snapshot
	Generation() uint64
}

// MemoryCatalog keeps the workspace in-memory and guards access with a RWMutex.
type MemoryCatalog struct {
	mu         sync.RWMutex
	entries    []Entry
	capacity   int
	generation uint64
	newID      func() string
}

// Option configures a MemoryCatalog.
type Option func(*MemoryCatalog)

// WithIDGenerator overrides the id source, primarily for tests.
func WithIDGenerator(gen func() string) Option {
	return func(c *MemoryCatalog) {
		c.newID = gen
	}
}

// NewMemoryCatalog initialises an empty workspace with DefaultCapacity.
func NewMemoryCatalog(opts ...Option) *MemoryCatalog {
	c := &MemoryCatalog{
		entries:  []Entry{},
		capacity: DefaultCapacity,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Add validates and appends a new item. The name is trimmed before storing.
func (c *MemoryCatalog) Add(name string, cost, profit int) (Entry, error) {
	name = strings.TrimSpace(name)
	if name == "" || cost <= 0 || profit < 0 {
		return Entry{}, ErrInvalidItem
	}

	entry := Entry{
		ID:     c.newID(),
		Name:   name,
		Cost:   cost,
		Profit: profit,
	}

	c.mu.Lock()
	c.entries = append(c.entries, entry)
	c.mu.Unlock()

	return entry, nil
}

// Remove deletes exactly the entry with the given id.
func (c *MemoryCatalog) Remove(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx := slices.IndexFunc(c.entries, func(e Entry) bool { return e.ID == id })
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}
	c.entries = slices.Delete(c.entries, idx, idx+1)
	return nil
}

// Clear removes every item and starts a new generation. The capacity is kept.
func (c *MemoryCatalog) Clear() {
	c.mu.Lock()
	c.entries = []Entry{}
	c.generation++
	c.mu.Unlock()
}

// Generation returns the current workspace generation.
func (c *MemoryCatalog) Generation() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.generation
}

// List returns a defensive copy of the entries in insertion order.
func (c *MemoryCatalog) List() []Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return slices.Clone(c.entries)
}

// Capacity returns the current budget.
func (c *MemoryCatalog) Capacity() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.capacity
}

// SetCapacity stores a new positive budget.
func (c *MemoryCatalog) SetCapacity(capacity int) error {
	if capacity <= 0 {
		return ErrInvalidCapacity
	}

	c.mu.Lock()
	c.capacity = capacity
	c.mu.Unlock()

	return nil
}

// Snapshot copies entries and capacity under a single read lock.
func (c *MemoryCatalog) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return Snapshot{
		Entries:    slices.Clone(c.entries),
		Capacity:   c.capacity,
		Generation: c.generation,
	}
}
