// Package tui is the terminal front end of the bundle optimizer. It keeps the
// product list in a catalog, collects the budget, and hands immutable
// snapshots to the planner through Bubble Tea commands.
package tui

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/eugenenazirov/bundle-optimizer/internal/bundle"
	"github.com/eugenenazirov/bundle-optimizer/internal/catalog"
)

const (
	fieldName = iota
	fieldCost
	fieldProfit
	fieldCapacity
	focusProducts
	focusCount
)

const (
	msgFillAllFields    = "Please fill all fields (Name, Cost, Profit)."
	msgCostProfitRange  = "Cost must be > 0 and Profit must be >= 0 (integers)."
	msgCostProfitInts   = "Cost and Profit must be integer numbers."
	msgSelectToRemove   = "Please select a product in the product list to remove."
	msgConfirmClear     = "Clear all products and results? (y/n)"
	msgNoItems          = "Please add some products first."
	msgCapacityMissing  = "Please enter budget / capacity (integer)."
	msgCapacityPositive = "Capacity must be a positive integer."
	msgCapacityInt      = "Capacity must be an integer."
	msgNothingSelected  = "No items selected (infeasible or capacity 0)"
	lastRunNone         = "Last Run Result: N/A"
)

// Planner runs one optimization for an immutable request.
type Planner interface {
	Plan(ctx context.Context, req bundle.Request) (bundle.Report, error)
}

// Model is the Bubble Tea model of the optimizer window.
type Model struct {
	ctx     context.Context
	catalog catalog.Catalog
	planner Planner
	logger  *zap.Logger
	lang    language.Tag

	inputs   []textinput.Model
	products table.Model
	selected table.Model
	help     help.Model
	keys     keyMap
	focus    int

	status     string
	statusErr  bool
	confirming bool
	running    bool
	report     *bundle.Report
	lastRun    string
	width      int
}

// Option configures a Model.
type Option func(*Model)

// WithLogger sets the logger used for user actions. Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(m *Model) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithContext sets the context handed to the planner.
func WithContext(ctx context.Context) Option {
	return func(m *Model) {
		if ctx != nil {
			m.ctx = ctx
		}
	}
}

// WithLanguage selects the locale used for number formatting.
func WithLanguage(tag language.Tag) Option {
	return func(m *Model) {
		m.lang = tag
	}
}

// New builds the model around store and planner.
func New(store catalog.Catalog, planner Planner, opts ...Option) Model {
	m := Model{
		ctx:     context.Background(),
		catalog: store,
		planner: planner,
		logger:  zap.NewNop(),
		lang:    language.English,
		help:    help.New(),
		keys:    defaultKeyMap(),
		lastRun: lastRunNone,
		width:   80,
	}
	for _, opt := range opts {
		opt(&m)
	}

	m.inputs = make([]textinput.Model, fieldCapacity+1)
	for i, field := range []struct {
		placeholder string
		limit       int
	}{
		{"Name", 64},
		{"Cost", 12},
		{"Profit", 12},
		{"Capacity", 12},
	} {
		ti := textinput.New()
		ti.Placeholder = field.placeholder
		ti.Prompt = field.placeholder + ": "
		ti.CharLimit = field.limit
		ti.Width = 16
		m.inputs[i] = ti
	}
	m.inputs[fieldCapacity].SetValue(strconv.Itoa(store.Capacity()))
	m.inputs[fieldName].Focus()

	m.products = table.New(
		table.WithColumns(itemColumns()),
		table.WithHeight(8),
	)
	m.selected = table.New(
		table.WithColumns(itemColumns()),
		table.WithHeight(6),
	)
	m.refreshProducts()

	return m
}

func itemColumns() []table.Column {
	return []table.Column{
		{Title: "Name", Width: 20},
		{Title: "Cost", Width: 10},
		{Title: "Profit", Width: 10},
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil
	case solvedMsg:
		m.running = false
		m.applyResult(msg)
		return m, nil
	case tea.KeyMsg:
		if m.confirming {
			return m.updateConfirm(msg)
		}
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Add):
			m.addItem()
			return m, nil
		case key.Matches(msg, m.keys.Remove):
			m.removeSelected()
			return m, nil
		case key.Matches(msg, m.keys.Clear):
			m.confirming = true
			m.setStatus(msgConfirmClear, false)
			return m, nil
		case key.Matches(msg, m.keys.Run):
			return m, m.run()
		case key.Matches(msg, m.keys.Next):
			return m, m.moveFocus(1)
		case key.Matches(msg, m.keys.Prev):
			return m, m.moveFocus(-1)
		case key.Matches(msg, m.keys.Submit) && m.focus != focusProducts:
			if m.focus == fieldCapacity {
				return m, m.run()
			}
			m.addItem()
			return m, nil
		}
	}

	var cmd tea.Cmd
	if m.focus == focusProducts {
		m.products, cmd = m.products.Update(msg)
		return m, cmd
	}
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		m.confirming = false
		m.clearAll()
	case key.Matches(msg, m.keys.Cancel):
		m.confirming = false
		m.setStatus("", false)
	}
	return m, nil
}

func (m *Model) addItem() {
	name := strings.TrimSpace(m.inputs[fieldName].Value())
	costRaw := strings.TrimSpace(m.inputs[fieldCost].Value())
	profitRaw := strings.TrimSpace(m.inputs[fieldProfit].Value())

	if name == "" || costRaw == "" || profitRaw == "" {
		m.setStatus(msgFillAllFields, true)
		return
	}
	cost, costErr := strconv.Atoi(costRaw)
	profit, profitErr := strconv.Atoi(profitRaw)
	if costErr != nil || profitErr != nil {
		m.setStatus(msgCostProfitInts, true)
		return
	}

	entry, err := m.catalog.Add(name, cost, profit)
	if err != nil {
		if errors.Is(err, catalog.ErrInvalidItem) {
			m.setStatus(msgCostProfitRange, true)
			return
		}
		m.setStatus(err.Error(), true)
		return
	}
	m.logger.Debug("item added", zap.String("id", entry.ID), zap.String("name", entry.Name))

	for _, idx := range []int{fieldName, fieldCost, fieldProfit} {
		m.inputs[idx].SetValue("")
	}
	m.setFocus(fieldName)
	m.refreshProducts()
	m.setStatus("", false)
}

func (m *Model) removeSelected() {
	entries := m.catalog.List()
	cursor := m.products.Cursor()
	if len(entries) == 0 || cursor < 0 || cursor >= len(entries) {
		m.setStatus(msgSelectToRemove, true)
		return
	}

	id := entries[cursor].ID
	if err := m.catalog.Remove(id); err != nil {
		m.setStatus(err.Error(), true)
		return
	}
	m.logger.Debug("item removed", zap.String("id", id))
	m.refreshProducts()
	m.setStatus("", false)
}

func (m *Model) clearAll() {
	m.catalog.Clear()
	m.report = nil
	m.lastRun = lastRunNone
	m.selected.SetRows(nil)
	m.refreshProducts()
	m.setStatus("", false)
	m.logger.Debug("workspace cleared")
}

func (m *Model) run() tea.Cmd {
	if m.running {
		return nil
	}

	snap := m.catalog.Snapshot()
	if len(snap.Entries) == 0 {
		m.setStatus(msgNoItems, false)
		return nil
	}

	raw := strings.TrimSpace(m.inputs[fieldCapacity].Value())
	if raw == "" {
		m.setStatus(msgCapacityMissing, true)
		return nil
	}
	capacity, err := strconv.Atoi(raw)
	if err != nil {
		m.setStatus(msgCapacityInt, true)
		return nil
	}
	if err := m.catalog.SetCapacity(capacity); err != nil {
		m.setStatus(msgCapacityPositive, true)
		return nil
	}

	m.running = true
	m.setStatus("Solving...", false)
	return solveCmd(m.ctx, m.planner, snap.Generation, bundle.Request{Items: snap.Items(), Capacity: capacity})
}

func (m *Model) applyResult(msg solvedMsg) {
	// The workspace was cleared while the run was in flight.
	if msg.generation != m.catalog.Generation() {
		m.logger.Debug("dropping result of a cleared workspace")
		return
	}

	if msg.err != nil {
		if errors.Is(msg.err, bundle.ErrNoItems) {
			m.setStatus(msgNoItems, false)
			return
		}
		m.logger.Warn("optimization failed", zap.Error(msg.err))
		m.setStatus(msg.err.Error(), true)
		return
	}

	report := msg.report
	m.report = &report
	m.lastRun = "Last Run Result: " + report.Summary(m.lang)

	rows := make([]table.Row, 0, len(report.Selected))
	for _, pick := range report.Selected {
		rows = append(rows, m.row(pick.Name, pick.Cost, pick.Profit))
	}
	m.selected.SetRows(rows)
	m.setStatus("", false)
}

func (m *Model) refreshProducts() {
	entries := m.catalog.List()
	rows := make([]table.Row, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, m.row(e.Name, e.Cost, e.Profit))
	}
	m.products.SetRows(rows)
	if c := m.products.Cursor(); c >= len(rows) && len(rows) > 0 {
		m.products.SetCursor(len(rows) - 1)
	}
}

func (m *Model) moveFocus(delta int) tea.Cmd {
	return m.setFocus((m.focus + delta + focusCount) % focusCount)
}

func (m *Model) setFocus(target int) tea.Cmd {
	if m.focus == focusProducts {
		m.products.Blur()
	} else {
		m.inputs[m.focus].Blur()
	}
	m.focus = target
	if target == focusProducts {
		m.products.Focus()
		return nil
	}
	return m.inputs[target].Focus()
}

func (m *Model) setStatus(text string, isErr bool) {
	m.status = text
	m.statusErr = isErr
}

// Run starts the program on the alternate screen and blocks until the user quits.
func Run(ctx context.Context, store catalog.Catalog, planner Planner, opts ...Option) error {
	opts = append([]Option{WithContext(ctx)}, opts...)
	p := tea.NewProgram(New(store, planner, opts...), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
