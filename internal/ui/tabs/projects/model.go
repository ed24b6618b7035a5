// Package projects provides the per-project cost tab.
package projects

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/j-veylop/openai-costs-tui/internal/app"
	"github.com/j-veylop/openai-costs-tui/internal/services/billing"
	"github.com/j-veylop/openai-costs-tui/internal/ui/components"
	"github.com/j-veylop/openai-costs-tui/internal/ui/styles"
	"github.com/j-veylop/openai-costs-tui/internal/usage"
)

// sortOrder selects how the table is ordered.
type sortOrder int

const (
	sortByCost sortOrder = iota
	sortByName
)

func (s sortOrder) String() string {
	if s == sortByName {
		return "name"
	}
	return "cost"
}

// keyMap defines the key bindings specific to the projects tab.
type keyMap struct {
	Open key.Binding
	Back key.Binding
	Sort key.Binding
	Up   key.Binding
	Down key.Binding
}

// defaultKeyMap returns the default key bindings for the projects tab.
func defaultKeyMap() keyMap {
	return keyMap{
		Open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "daily chart"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "backspace"),
			key.WithHelp("esc", "back"),
		),
		Sort: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "sort by cost/name"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
	}
}

// row is one project line with its display name resolved.
type row struct {
	project usage.ProjectUsage
	name    string
}

// Model represents the projects tab state.
type Model struct {
	state    *app.State
	table    table.Model
	rows     []row
	spinner  components.LoadingSpinner
	keys     keyMap
	selected string
	width    int
	height   int
	order    sortOrder
}

// New creates a new projects model.
func New(state *app.State) *Model {
	t := table.New(
		table.WithColumns(columnsFor(100)),
		table.WithFocused(true),
		table.WithHeight(10),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(styles.Subtle).
		BorderBottom(true).
		Bold(true).
		Foreground(styles.Primary)
	s.Selected = s.Selected.
		Foreground(styles.TextPrimary).
		Background(styles.BgAccent).
		Bold(true)
	t.SetStyles(s)

	return &Model{
		state:   state,
		table:   t,
		spinner: components.NewSpinner("Loading projects..."),
		keys:    defaultKeyMap(),
	}
}

func columnsFor(width int) []table.Column {
	nameWidth := min(max(width-102, 16), 40)
	return []table.Column{
		{Title: "Project", Width: nameWidth},
		{Title: "ID", Width: 24},
		{Title: "Total", Width: 12},
		{Title: "Share", Width: 7},
		{Title: "Avg/day", Width: 10},
		{Title: "Models", Width: 7},
		{Title: "Days", Width: 5},
		{Title: "Trend", Width: 14},
	}
}

// Init initializes the projects tab.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the projects tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	switch msg := msg.(type) {
	case app.DataAppliedMsg:
		m.rebuild(msg.Snapshot)
		if m.selected != "" && !lo.ContainsBy(m.rows, func(r row) bool { return r.project.ProjectID == m.selected }) {
			m.selected = ""
		}

	case app.LoggedOutMsg:
		m.rebuild(nil)
		m.selected = ""

	case tea.KeyMsg:
		return m, m.handleKeyMsg(msg)
	}
	return m, nil
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	if m.selected != "" {
		if key.Matches(msg, m.keys.Back) {
			m.selected = ""
		}
		return nil
	}

	switch {
	case key.Matches(msg, m.keys.Open):
		if i := m.table.Cursor(); i >= 0 && i < len(m.rows) {
			m.selected = m.rows[i].project.ProjectID
		}
	case key.Matches(msg, m.keys.Sort):
		m.order = (m.order + 1) % 2
		m.sortRows()
		m.refreshTable()
	default:
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return cmd
	}
	return nil
}

// rebuild replaces the rows with the projects of snap.
func (m *Model) rebuild(snap *billing.Snapshot) {
	m.rows = nil
	if snap != nil && snap.Usage != nil {
		m.rows = lo.Map(snap.Usage.ProjectsByCost(), func(p usage.ProjectUsage, _ int) row {
			return row{project: p, name: snap.Directory.Name(p.ProjectID)}
		})
	}
	m.sortRows()
	m.refreshTable()
}

func (m *Model) sortRows() {
	if m.order == sortByName {
		slices.SortStableFunc(m.rows, func(a, b row) int {
			return strings.Compare(strings.ToLower(a.name), strings.ToLower(b.name))
		})
		return
	}
	slices.SortStableFunc(m.rows, func(a, b row) int {
		return b.project.TotalCost.Cmp(a.project.TotalCost)
	})
}

func (m *Model) refreshTable() {
	total := m.totalCost()
	rows := lo.Map(m.rows, func(r row, _ int) table.Row {
		p := r.project
		return table.Row{
			r.name,
			p.ProjectID,
			components.FormatCurrency(p.TotalCost),
			components.FormatPercent(usage.Percent(p.TotalCost, total)),
			components.FormatCurrency(usage.AverageDailyCost(p)),
			fmt.Sprint(len(p.ModelsUsed)),
			fmt.Sprint(len(p.DailyCosts)),
			components.RenderSparkline(dailyValues(p.DailyCosts), 14),
		}
	})
	m.table.SetRows(rows)
	if m.table.Cursor() >= len(rows) {
		m.table.SetCursor(max(len(rows)-1, 0))
	}
}

func (m *Model) totalCost() decimal.Decimal {
	if snap := m.state.Snapshot(); snap != nil && snap.Usage != nil {
		return snap.Usage.TotalCost()
	}
	return lo.Reduce(m.rows, func(sum decimal.Decimal, r row, _ int) decimal.Decimal {
		return sum.Add(r.project.TotalCost)
	}, decimal.Zero)
}

func dailyValues(days []usage.DailyProjectCost) []float64 {
	return lo.Map(days, func(d usage.DailyProjectCost, _ int) float64 {
		return d.TotalCost.InexactFloat64()
	})
}

// SetSize sets the available size for the projects tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.table.SetHeight(max(height-10, 3))
	m.table.SetColumns(columnsFor(width))
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	if m.selected != "" {
		return []key.Binding{m.keys.Back}
	}
	return []key.Binding{m.keys.Open, m.keys.Sort}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.Up, m.keys.Down},
		{m.keys.Open, m.keys.Back, m.keys.Sort},
	}
}
