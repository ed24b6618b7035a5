// Package overview provides the summary tab: totals, model breakdown and
// the daily cost chart.
package overview

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"

	"github.com/j-veylop/openai-costs-tui/internal/app"
	"github.com/j-veylop/openai-costs-tui/internal/ui/components"
)

// keyMap defines the key bindings specific to the overview tab.
type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	Top      key.Binding
	ShowMore key.Binding
}

// defaultKeyMap returns the default key bindings for the overview tab.
func defaultKeyMap() keyMap {
	return keyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "scroll down"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "top"),
		),
		ShowMore: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "all models"),
		),
	}
}

// collapsedModels is how many models the breakdown shows before "m".
const collapsedModels = 8

// Model represents the overview tab state.
type Model struct {
	state     *app.State
	spinner   components.LoadingSpinner
	keys      keyMap
	viewport  viewport.Model
	shareBar  components.ShareBar
	threshold decimal.Decimal
	width     int
	height    int
	allModels bool
}

// New creates a new overview model.
func New(state *app.State) *Model {
	return &Model{
		state:    state,
		spinner:  components.NewSpinner("Loading costs..."),
		keys:     defaultKeyMap(),
		viewport: viewport.New(0, 0),
		shareBar: components.NewShareBar(24),
	}
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	return m.spinner.Tick()
}

// Update handles messages and updates the model.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	switch msg := msg.(type) {
	case app.LoadStartedMsg:
		m.spinner.SetLabel(fmt.Sprintf("Loading %s...", msg.Range.Label))
		return m, m.spinner.Tick()

	case app.DataAppliedMsg, app.LoggedOutMsg:
		m.viewport.GotoTop()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m, m.handleKeyMsg(msg)
	}

	return m, nil
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Top):
		m.viewport.GotoTop()
	case key.Matches(msg, m.keys.ShowMore):
		m.allModels = !m.allModels
	default:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return cmd
	}
	return nil
}

// SetAlertThreshold sets the amount the month-end projection is graded
// against. Zero disables grading.
func (m *Model) SetAlertThreshold(amount float64) {
	m.threshold = decimal.NewFromFloat(amount)
}

// SetSize sets the available size for the overview.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{m.keys.Down, m.keys.Up, m.keys.ShowMore}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.Down, m.keys.Up, m.keys.Top},
		{m.keys.ShowMore},
	}
}
