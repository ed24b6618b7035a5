// Package login provides the form shown while nobody is logged in.
package login

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/openai-costs-tui/internal/app"
	"github.com/j-veylop/openai-costs-tui/internal/services/auth"
	"github.com/j-veylop/openai-costs-tui/internal/ui/styles"
	"github.com/j-veylop/openai-costs-tui/internal/version"
)

type formField int

const (
	fieldUsername formField = iota
	fieldPassword
	fieldCount
)

type keyMap struct {
	Next   key.Binding
	Prev   key.Binding
	Submit key.Binding
	Quit   key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
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
			key.WithHelp("enter", "log in"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
	}
}

// Model is the login form.
type Model struct {
	usernameInput textinput.Model
	passwordInput textinput.Model
	message       string
	keys          keyMap
	focusedField  formField
	width         int
	height        int
	submitting    bool
}

// New creates a login form with the username field focused.
func New() *Model {
	usernameInput := textinput.New()
	usernameInput.Placeholder = "username"
	usernameInput.CharLimit = 64
	usernameInput.Width = 30
	usernameInput.Focus()

	passwordInput := textinput.New()
	passwordInput.Placeholder = "password"
	passwordInput.CharLimit = 128
	passwordInput.Width = 30
	passwordInput.EchoMode = textinput.EchoPassword
	passwordInput.EchoCharacter = '•'

	return &Model{
		usernameInput: usernameInput,
		passwordInput: passwordInput,
		keys:          defaultKeyMap(),
		focusedField:  fieldUsername,
	}
}

// Init starts the cursor blinking.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// CapturingInput is always true: every key belongs to the form.
func (m *Model) CapturingInput() bool {
	return true
}

// Update handles messages for the login form.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	switch msg := msg.(type) {
	case app.LoginResultMsg:
		m.submitting = false
		if msg.Err != nil {
			m.setError(describeLoginError(msg.Err))
			m.passwordInput.SetValue("")
			return m, m.setFocus(fieldPassword)
		}
		m.reset()

	case app.LoggedOutMsg:
		m.reset()
		if reason := describeLogout(msg.Reason); reason != "" {
			m.setError(reason)
		}
		return m, textinput.Blink

	case tea.KeyMsg:
		return m, m.handleKeyMsg(msg)
	}
	return m, nil
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Next):
		return m.setFocus((m.focusedField + 1) % fieldCount)
	case key.Matches(msg, m.keys.Prev):
		return m.setFocus((m.focusedField + fieldCount - 1) % fieldCount)
	case key.Matches(msg, m.keys.Submit):
		if m.focusedField == fieldUsername {
			return m.setFocus(fieldPassword)
		}
		return m.submit()
	}

	var cmd tea.Cmd
	switch m.focusedField {
	case fieldUsername:
		m.usernameInput, cmd = m.usernameInput.Update(msg)
	case fieldPassword:
		m.passwordInput, cmd = m.passwordInput.Update(msg)
	}
	return cmd
}

func (m *Model) submit() tea.Cmd {
	if m.submitting {
		return nil
	}

	username := strings.TrimSpace(m.usernameInput.Value())
	password := m.passwordInput.Value()
	if username == "" || password == "" {
		m.setError("Enter a username and password")
		return nil
	}

	m.submitting = true
	m.message = ""
	return func() tea.Msg {
		return app.LoginRequestMsg{Username: username, Password: password}
	}
}

func (m *Model) setFocus(f formField) tea.Cmd {
	m.focusedField = f
	if f == fieldUsername {
		m.passwordInput.Blur()
		return m.usernameInput.Focus()
	}
	m.usernameInput.Blur()
	return m.passwordInput.Focus()
}

func (m *Model) setError(text string) {
	m.message = text
}

// reset clears both fields and focuses the username.
func (m *Model) reset() {
	m.usernameInput.SetValue("")
	m.passwordInput.SetValue("")
	m.message = ""
	m.submitting = false
	m.setFocus(fieldUsername)
}

func describeLoginError(err error) string {
	if errors.Is(err, auth.ErrInvalidCredentials) {
		return "Invalid username or password"
	}
	return "Login failed: " + err.Error()
}

func describeLogout(reason error) string {
	switch {
	case reason == nil:
		return ""
	case errors.Is(reason, auth.ErrSessionExpired):
		return "Your session expired. Please log in again."
	default:
		return "Your session is no longer valid. Please log in again."
	}
}

// SetSize sets the available size for the form.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{m.keys.Next, m.keys.Submit, m.keys.Quit}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{{m.keys.Next, m.keys.Prev, m.keys.Submit, m.keys.Quit}}
}

// View renders the form centered in the available space.
func (m *Model) View() string {
	field := func(label string, input textinput.Model, focused bool) string {
		style := styles.BlurredBorderStyle
		labelStyle := styles.BlurredStyle
		if focused {
			style = styles.FocusedBorderStyle
			labelStyle = styles.FocusedStyle
		}
		return lipgloss.JoinVertical(lipgloss.Left,
			labelStyle.Render(label),
			style.Width(36).Render(input.View()))
	}

	status := styles.HelpStyle.Render("enter: log in • tab: switch field")
	switch {
	case m.submitting:
		status = styles.HelpStyle.Render("Logging in...")
	case m.message != "":
		status = styles.ErrorTextStyle.Render(m.message)
	}

	form := lipgloss.JoinVertical(lipgloss.Left,
		styles.TitleStyle.Render(version.Name+" · OpenAI costs"),
		field("Username", m.usernameInput, m.focusedField == fieldUsername),
		field("Password", m.passwordInput, m.focusedField == fieldPassword),
		"",
		status,
	)

	return styles.CenterBoth(styles.CardStyle.Render(form), m.width, m.height)
}
