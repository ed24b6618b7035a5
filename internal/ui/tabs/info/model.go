// Package info provides the info tab: configuration, session details and
// the password change form.
package info

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/openai-costs-tui/internal/app"
	"github.com/j-veylop/openai-costs-tui/internal/config"
	"github.com/j-veylop/openai-costs-tui/internal/services/auth"
)

// keyMap defines the key bindings specific to the info tab.
type keyMap struct {
	Password key.Binding
	Next     key.Binding
	Prev     key.Binding
	Submit   key.Binding
	Cancel   key.Binding
	Up       key.Binding
	Down     key.Binding
}

// defaultKeyMap returns the default key bindings for the info tab.
func defaultKeyMap() keyMap {
	return keyMap{
		Password: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "change password"),
		),
		Next: key.NewBinding(
			key.WithKeys("tab", "down"),
			key.WithHelp("tab", "next field"),
		),
		Prev: key.NewBinding(
			key.WithKeys("shift+tab", "up"),
			key.WithHelp("shift+tab", "prev field"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "submit"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
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

const (
	fieldCurrent = iota
	fieldNext
	fieldConfirm
	fieldCount
)

// Model represents the info tab state.
type Model struct {
	state    *app.State
	config   *config.Config
	inputs   []textinput.Model
	formErr  string
	keys     keyMap
	viewport viewport.Model
	width    int
	height   int
	focus    int
	editing  bool
	pending  bool
}

// New creates a new info model.
func New(state *app.State, cfg *config.Config) *Model {
	labels := []string{"Current password", "New password", "Confirm new password"}
	inputs := make([]textinput.Model, fieldCount)
	for i := range inputs {
		ti := textinput.New()
		ti.Placeholder = labels[i]
		ti.EchoMode = textinput.EchoPassword
		ti.EchoCharacter = '•'
		ti.CharLimit = 128
		ti.Width = 32
		inputs[i] = ti
	}

	return &Model{
		state:    state,
		config:   cfg,
		inputs:   inputs,
		keys:     defaultKeyMap(),
		viewport: viewport.New(0, 0),
	}
}

// Init initializes the info tab.
func (m *Model) Init() tea.Cmd {
	return nil
}

// CapturingInput reports whether the password form is open.
func (m *Model) CapturingInput() bool {
	return m.editing
}

// Update handles messages for the info tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	switch msg := msg.(type) {
	case app.PasswordChangedMsg:
		m.pending = false
		if msg.Err != nil {
			m.formErr = msg.Err.Error()
			return m, nil
		}
		m.closeForm()

	case app.LoggedOutMsg:
		m.closeForm()

	case tea.KeyMsg:
		if m.editing {
			return m, m.updateForm(msg)
		}
		if key.Matches(msg, m.keys.Password) {
			return m, m.openForm()
		}
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) openForm() tea.Cmd {
	m.editing = true
	m.formErr = ""
	m.focus = fieldCurrent
	for i := range m.inputs {
		m.inputs[i].SetValue("")
		m.inputs[i].Blur()
	}
	return m.inputs[fieldCurrent].Focus()
}

func (m *Model) closeForm() {
	m.editing = false
	m.pending = false
	m.formErr = ""
	for i := range m.inputs {
		m.inputs[i].SetValue("")
		m.inputs[i].Blur()
	}
}

func (m *Model) updateForm(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.closeForm()
		return nil
	case key.Matches(msg, m.keys.Next):
		return m.setFocus((m.focus + 1) % fieldCount)
	case key.Matches(msg, m.keys.Prev):
		return m.setFocus((m.focus + fieldCount - 1) % fieldCount)
	case key.Matches(msg, m.keys.Submit):
		if m.focus < fieldConfirm {
			return m.setFocus(m.focus + 1)
		}
		return m.submit()
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return cmd
}

func (m *Model) setFocus(i int) tea.Cmd {
	m.inputs[m.focus].Blur()
	m.focus = i
	return m.inputs[i].Focus()
}

// submit validates the form locally before asking the app to change the
// password.
func (m *Model) submit() tea.Cmd {
	if m.pending {
		return nil
	}

	current := m.inputs[fieldCurrent].Value()
	next := m.inputs[fieldNext].Value()

	var problem string
	switch {
	case current == "":
		problem = "Enter your current password"
	case len(next) < auth.MinPasswordLength:
		problem = auth.ErrPasswordTooShort.Error()
	case next != m.inputs[fieldConfirm].Value():
		problem = "New passwords do not match"
	}
	if problem != "" {
		m.formErr = problem
		return app.NotifyError(problem)
	}

	m.formErr = ""
	m.pending = true
	return func() tea.Msg {
		return app.ChangePasswordRequestMsg{Current: current, Next: next}
	}
}

// SetSize sets the available size for the info tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	if m.editing {
		return []key.Binding{m.keys.Next, m.keys.Submit, m.keys.Cancel}
	}
	return []key.Binding{m.keys.Password}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.Password, m.keys.Up, m.keys.Down},
		{m.keys.Next, m.keys.Prev, m.keys.Submit, m.keys.Cancel},
	}
}
