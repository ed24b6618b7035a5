// Package directory provides the project directory tab: searchable,
// paginated project metadata.
package directory

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/paginator"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/openai-costs-tui/internal/app"
	"github.com/j-veylop/openai-costs-tui/internal/models"
	"github.com/j-veylop/openai-costs-tui/internal/projects"
)

// PageSize is the number of projects per page.
const PageSize = 10

// keyMap defines the key bindings specific to the directory tab.
type keyMap struct {
	Search   key.Binding
	Clear    key.Binding
	Accept   key.Binding
	Up       key.Binding
	Down     key.Binding
	NextPage key.Binding
	PrevPage key.Binding
}

// defaultKeyMap returns the default key bindings for the directory tab.
func defaultKeyMap() keyMap {
	return keyMap{
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		Clear: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "clear search"),
		),
		Accept: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "apply search"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		NextPage: key.NewBinding(
			key.WithKeys("right", "l", "pgdown"),
			key.WithHelp("→/l", "next page"),
		),
		PrevPage: key.NewBinding(
			key.WithKeys("left", "h", "pgup"),
			key.WithHelp("←/h", "prev page"),
		),
	}
}

// Model represents the directory tab state.
type Model struct {
	state     *app.State
	dir       *projects.Directory
	search    textinput.Model
	paginator paginator.Model
	filtered  []models.Project
	keys      keyMap
	width     int
	height    int
	cursor    int
	searching bool
}

// New creates a new directory model.
func New(state *app.State) *Model {
	search := textinput.New()
	search.Placeholder = "id, title, name or description"
	search.Prompt = "/ "
	search.CharLimit = 100
	search.Width = 40

	p := paginator.New()
	p.Type = paginator.Arabic
	p.PerPage = PageSize

	return &Model{
		state:     state,
		search:    search,
		paginator: p,
		keys:      defaultKeyMap(),
	}
}

// Init initializes the directory tab.
func (m *Model) Init() tea.Cmd {
	return nil
}

// CapturingInput reports whether the search box has focus.
func (m *Model) CapturingInput() bool {
	return m.searching
}

// Update handles messages for the directory tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	switch msg := msg.(type) {
	case app.DataAppliedMsg:
		m.dir = nil
		if msg.Snapshot != nil {
			m.dir = msg.Snapshot.Directory
		}
		m.applyFilter()

	case app.LoggedOutMsg:
		m.dir = nil
		m.searching = false
		m.search.Blur()
		m.search.SetValue("")
		m.applyFilter()

	case tea.KeyMsg:
		if m.searching {
			return m, m.updateSearch(msg)
		}
		return m, m.handleKeyMsg(msg)
	}
	return m, nil
}

func (m *Model) updateSearch(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Clear):
		m.searching = false
		m.search.Blur()
		m.search.SetValue("")
		m.applyFilter()
		return nil
	case key.Matches(msg, m.keys.Accept):
		m.searching = false
		m.search.Blur()
		return nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.applyFilter()
	return cmd
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Search):
		m.searching = true
		return m.search.Focus()
	case key.Matches(msg, m.keys.Clear):
		if m.search.Value() != "" {
			m.search.SetValue("")
			m.applyFilter()
		}
	case key.Matches(msg, m.keys.Up):
		m.cursor = max(m.cursor-1, 0)
	case key.Matches(msg, m.keys.Down):
		m.cursor = min(m.cursor+1, max(m.pageLen()-1, 0))
	case key.Matches(msg, m.keys.NextPage):
		m.paginator.NextPage()
		m.cursor = 0
	case key.Matches(msg, m.keys.PrevPage):
		m.paginator.PrevPage()
		m.cursor = 0
	}
	return nil
}

// applyFilter reruns the search and returns to the first page.
func (m *Model) applyFilter() {
	m.filtered = nil
	if m.dir != nil {
		m.filtered = m.dir.Search(m.search.Value())
	}
	m.paginator.SetTotalPages(len(m.filtered))
	m.paginator.Page = 0
	m.cursor = 0
}

// page returns the projects on the current page.
func (m *Model) page() []models.Project {
	start, end := m.paginator.GetSliceBounds(len(m.filtered))
	return m.filtered[start:end]
}

func (m *Model) pageLen() int {
	return len(m.page())
}

// Query returns the active search text.
func (m *Model) Query() string {
	return m.search.Value()
}

// SetSize sets the available size for the directory tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.search.Width = min(max(width-20, 20), 60)
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	if m.searching {
		return []key.Binding{m.keys.Accept, m.keys.Clear}
	}
	return []key.Binding{m.keys.Search, m.keys.NextPage, m.keys.PrevPage}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.Search, m.keys.Accept, m.keys.Clear},
		{m.keys.Up, m.keys.Down, m.keys.NextPage, m.keys.PrevPage},
	}
}
