// Package app implements the main Bubble Tea application with tab-based navigation.
package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/j-veylop/openai-costs-tui/internal/logger"
	"github.com/j-veylop/openai-costs-tui/internal/services"
	"github.com/j-veylop/openai-costs-tui/internal/services/auth"
	"github.com/j-veylop/openai-costs-tui/internal/services/billing"
	"github.com/j-veylop/openai-costs-tui/internal/ui/styles"
)

// TabID represents the identifier for a tab in the application.
type TabID int

const (
	// TabOverview is the ID for the overview tab.
	TabOverview TabID = iota
	// TabProjects is the ID for the per-project cost tab.
	TabProjects
	// TabDirectory is the ID for the project directory tab.
	TabDirectory
	// TabInfo is the ID for the info tab.
	TabInfo
)

var tabNames = []string{"Overview", "Projects", "Directory", "Info"}

// String returns the string representation of the TabID.
func (t TabID) String() string {
	if t < 0 || int(t) >= len(tabNames) {
		return "Unknown"
	}
	return tabNames[t]
}

// Tab defines the interface that all tabs must implement.
type Tab interface {
	// Init initializes the tab and returns any initial commands.
	Init() tea.Cmd

	// Update handles messages and returns the updated tab and any commands.
	Update(msg tea.Msg) (Tab, tea.Cmd)

	// View renders the tab content.
	View() string

	// SetSize sets the available size for the tab.
	SetSize(width, height int)

	// ShortHelp returns key bindings for the short help view.
	ShortHelp() []key.Binding

	// FullHelp returns key bindings for the full help view.
	FullHelp() [][]key.Binding
}

// InputCapturer is implemented by views with a focused text input. While it
// reports true, keys go to the view instead of the global bindings.
type InputCapturer interface {
	CapturingInput() bool
}

// KeyMap defines the keybindings for the application.
type KeyMap struct {
	Tab1    key.Binding
	Tab2    key.Binding
	Tab3    key.Binding
	Tab4    key.Binding
	NextTab key.Binding
	PrevTab key.Binding
	Range   key.Binding
	Refresh key.Binding
	Logout  key.Binding
	Help    key.Binding
	Quit    key.Binding
	Escape  key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Tab1:    key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "overview")),
		Tab2:    key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "projects")),
		Tab3:    key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "directory")),
		Tab4:    key.NewBinding(key.WithKeys("4"), key.WithHelp("4", "info")),
		NextTab: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
		PrevTab: key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev tab")),
		Range:   key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "cycle date range")),
		Refresh: key.NewBinding(key.WithKeys("r", "ctrl+r"), key.WithHelp("r", "refresh")),
		Logout:  key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "log out")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Escape:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
	}
}

// ShortHelp returns key bindings for the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Range, k.Refresh, k.Help, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab1, k.Tab2, k.Tab3, k.Tab4},
		{k.NextTab, k.PrevTab},
		{k.Range, k.Refresh, k.Logout},
		{k.Help, k.Quit},
	}
}

// Styles defines the application styles.
type Styles struct {
	TabBar      lipgloss.Style
	ActiveTab   lipgloss.Style
	InactiveTab lipgloss.Style
	StatusBar   lipgloss.Style

	NotificationSuccess lipgloss.Style
	NotificationError   lipgloss.Style
	NotificationWarning lipgloss.Style
	NotificationInfo    lipgloss.Style

	Content   lipgloss.Style
	Toast     lipgloss.Style
	Title     lipgloss.Style
	Subtle    lipgloss.Style
	Highlight lipgloss.Style
}

// DefaultStyles returns the default application styles.
func DefaultStyles() Styles {
	subtle := lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#5C5C5C"}
	highlight := lipgloss.AdaptiveColor{Light: "#0E7C66", Dark: "#10A37F"}
	success := lipgloss.AdaptiveColor{Light: "#04B575", Dark: "#04B575"}
	warning := lipgloss.AdaptiveColor{Light: "#FF8C00", Dark: "#FF8C00"}
	errorColor := lipgloss.AdaptiveColor{Light: "#FF5F87", Dark: "#FF5F87"}
	info := lipgloss.AdaptiveColor{Light: "#0087D7", Dark: "#5FAFFF"}

	s := Styles{}
	s.TabBar = lipgloss.NewStyle().Padding(0, 1).BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).BorderForeground(subtle)
	s.ActiveTab = lipgloss.NewStyle().Bold(true).Foreground(highlight).Padding(0, 2)
	s.InactiveTab = lipgloss.NewStyle().Foreground(subtle).Padding(0, 2)
	s.StatusBar = lipgloss.NewStyle().Foreground(subtle).Padding(0, 1)

	s.NotificationSuccess = lipgloss.NewStyle().Foreground(success).Padding(0, 1)
	s.NotificationError = lipgloss.NewStyle().Foreground(errorColor).Bold(true).Padding(0, 1)
	s.NotificationWarning = lipgloss.NewStyle().Foreground(warning).Padding(0, 1)
	s.NotificationInfo = lipgloss.NewStyle().Foreground(info).Padding(0, 1)

	s.Content = lipgloss.NewStyle().Padding(1, 2)
	s.Toast = styles.ToastStyle
	s.Title = lipgloss.NewStyle().Bold(true).Foreground(highlight)
	s.Subtle = lipgloss.NewStyle().Foreground(subtle)
	s.Highlight = lipgloss.NewStyle().Foreground(highlight)

	return s
}

// Model is the main application model.
type Model struct {
	state        *State
	services     *services.Manager
	login        Tab
	eventChannel chan services.ServiceEvent
	tabs         []Tab
	styles       Styles
	keymap       KeyMap
	spinner      spinner.Model
	activeTab    TabID
	width        int
	height       int
	showHelp     bool
	ready        bool
}

// NewModel initializes a new application model. mgr may be nil in tests.
func NewModel(mgr *services.Manager) *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(styles.Primary)

	return &Model{
		activeTab: TabOverview,
		tabs:      make([]Tab, len(tabNames)),
		state:     NewState(),
		services:  mgr,
		keymap:    DefaultKeyMap(),
		styles:    DefaultStyles(),
		spinner:   s,
	}
}

// SetTabs sets the tabs for the model.
func (m *Model) SetTabs(tabs []Tab) {
	m.tabs = tabs
	if m.width > 0 && m.height > 0 {
		m.updateSizes()
	}
}

// SetLoginView sets the view shown while nobody is logged in.
func (m *Model) SetLoginView(login Tab) {
	m.login = login
	if m.width > 0 && m.height > 0 {
		m.updateSizes()
	}
}

// GetState returns the application state.
func (m *Model) GetState() *State {
	return m.state
}

// GetActiveTab returns the currently active tab ID.
func (m *Model) GetActiveTab() TabID {
	return m.activeTab
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.spinner.Tick,
		defaultTickCmd(),
	}

	if m.services != nil {
		cmds = append(cmds, subscribeToServicesCmd(m.services), restoreSessionCmd(m.services))
	}

	if m.login != nil {
		cmds = append(cmds, m.login.Init())
	}
	for _, tab := range m.tabs {
		if tab != nil {
			cmds = append(cmds, tab.Init())
		}
	}

	return tea.Batch(cmds...)
}

// Update handles messages and updates the model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.updateSizes()
		return m, nil

	case tea.KeyMsg:
		return m, m.handleKeyMsg(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	default:
		cmds = append(cmds, m.handleAppMsg(msg)...)
	}

	if cmd := m.updateCurrentView(msg); cmd != nil {
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) handleAppMsg(msg tea.Msg) []tea.Cmd {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case TickMsg:
		m.state.ClearExpiredNotifications()
		cmds = append(cmds, defaultTickCmd())

	case SubscriptionEventMsg:
		m.eventChannel = msg.Channel
		cmds = append(cmds, waitForServiceEventCmd(m.eventChannel))

	case ServiceEventMsg:
		cmds = append(cmds, m.handleServiceEvent(msg.Event)...)
		if m.eventChannel != nil {
			cmds = append(cmds, waitForServiceEventCmd(m.eventChannel))
		}

	case SessionRestoredMsg:
		cmds = append(cmds, m.handleSessionRestored(msg)...)

	case LoginRequestMsg:
		if m.services != nil {
			cmds = append(cmds, loginCmd(m.services, msg.Username, msg.Password))
		}

	case LoginResultMsg:
		if msg.Err == nil && msg.Session != nil {
			m.state.SetSession(msg.Session)
			m.activeTab = TabOverview
			cmds = append(cmds,
				notifySuccessCmd(fmt.Sprintf("Logged in as %s", msg.Session.Username)),
				m.startLoad(false))
		}

	case LogoutResultMsg:
		if msg.Err != nil {
			cmds = append(cmds, notifyErrorCmd(fmt.Sprintf("Logout failed: %v", msg.Err)))
		} else {
			cmds = append(cmds, m.endSession(nil)...)
		}

	case DataLoadedMsg:
		cmds = append(cmds, m.handleDataLoaded(msg)...)

	case RefreshMsg:
		cmds = append(cmds, m.startLoad(true))

	case ChangePasswordRequestMsg:
		if m.services != nil {
			cmds = append(cmds, changePasswordCmd(m.services, msg.Current, msg.Next))
		}

	case PasswordChangedMsg:
		cmds = append(cmds, m.handlePasswordChanged(msg)...)

	case AddNotificationMsg:
		id := m.state.AddNotification(msg.Type, msg.Message, msg.Duration)
		if msg.Duration > 0 {
			cmds = append(cmds, clearNotificationCmd(id, msg.Duration))
		}

	case RemoveNotificationMsg:
		m.state.RemoveNotification(msg.ID)

	case TabSwitchMsg:
		m.activeTab = msg.Tab

	case ToggleHelpMsg:
		m.showHelp = !m.showHelp
	}

	return cmds
}

func (m *Model) handleSessionRestored(msg SessionRestoredMsg) []tea.Cmd {
	switch {
	case msg.Err != nil:
		cmds := m.endSession(msg.Err)
		if !isAuthFailure(msg.Err) {
			cmds = append(cmds, notifyErrorCmd(fmt.Sprintf("Could not restore session: %v", msg.Err)))
		}
		return cmds
	case msg.Session == nil:
		return nil
	}

	prev := m.state.Session()
	m.state.SetSession(msg.Session)
	if prev != nil && prev.Token == msg.Session.Token {
		return nil
	}
	return []tea.Cmd{m.startLoad(false)}
}

func (m *Model) handlePasswordChanged(msg PasswordChangedMsg) []tea.Cmd {
	switch {
	case msg.Err == nil:
		return []tea.Cmd{notifySuccessCmd("Password changed")}
	case isAuthFailure(msg.Err):
		return m.endSession(msg.Err)
	default:
		return []tea.Cmd{notifyErrorCmd(msg.Err.Error())}
	}
}

// endSession returns to the login view. It is a no-op when already logged out.
func (m *Model) endSession(reason error) []tea.Cmd {
	if !m.state.IsLoggedIn() {
		return nil
	}

	m.state.SetSession(nil)
	m.state.ClearLoadingNotification()
	m.activeTab = TabOverview
	m.showHelp = false

	cmds := m.broadcastToViews(LoggedOutMsg{Reason: reason})
	switch {
	case errors.Is(reason, auth.ErrSessionExpired):
		cmds = append(cmds, notifyWarningCmd("Session expired, please log in again"))
	case reason != nil:
		cmds = append(cmds, notifyWarningCmd("Session is no longer valid, please log in again"))
	default:
		cmds = append(cmds, notifyInfoCmd("Logged out"))
	}
	return cmds
}

// startLoad begins a fetch for the selected preset. A refresh drops cached
// responses first.
func (m *Model) startLoad(refresh bool) tea.Cmd {
	if m.services == nil || !m.state.IsLoggedIn() {
		return nil
	}
	if refresh {
		m.services.Refresh()
	}

	r := m.state.Preset().Resolve(time.Now())
	ctx, seq := m.services.BeginFetch(context.Background())
	m.state.BeginLoad(seq, r)
	m.state.SetLoadingNotification(fmt.Sprintf("Loading %s...", r.Label))

	cmds := m.broadcastToViews(LoadStartedMsg{Seq: seq, Range: r})
	cmds = append(cmds, fetchCmd(ctx, m.services, seq, r))
	return tea.Batch(cmds...)
}

func (m *Model) handleDataLoaded(msg DataLoadedMsg) []tea.Cmd {
	if msg.Err != nil {
		if !m.state.ApplyError(msg.Seq, msg.Err) {
			logger.Debug("discarding stale load error", "seq", msg.Seq)
			return nil
		}
		m.state.ClearLoadingNotification()
		return []tea.Cmd{notifyErrorCmd(describeLoadError(msg.Err))}
	}

	if !m.state.ApplySnapshot(msg.Snapshot) {
		logger.Debug("discarding stale snapshot", "seq", msg.Seq)
		return nil
	}
	m.state.ClearLoadingNotification()
	return m.broadcastToViews(DataAppliedMsg{Snapshot: msg.Snapshot})
}

func (m *Model) handleServiceEvent(event services.ServiceEvent) []tea.Cmd {
	switch e := event.(type) {
	case services.SessionChangedEvent:
		if m.services != nil {
			return []tea.Cmd{restoreSessionCmd(m.services)}
		}

	case services.SessionClearedEvent:
		return m.endSession(e.Reason)

	case services.CostAlertEvent:
		return []tea.Cmd{notifyWarningCmd(fmt.Sprintf("%s spend reached $%s (alert at $%s)",
			e.Range.Label, e.Total.StringFixed(2), e.Threshold.StringFixed(2)))}

	case services.ErrorEvent:
		return []tea.Cmd{notifyErrorCmd(fmt.Sprintf("[%s] %v", e.Service, e.Error))}
	}
	return nil
}

// describeLoadError turns a load error into a toast message.
func describeLoadError(err error) string {
	var apiErr *billing.APIError
	switch {
	case errors.Is(err, billing.ErrUnauthorized):
		return "Data load failed: the admin key was rejected"
	case errors.As(err, &apiErr):
		return fmt.Sprintf("Data load failed: API returned %d", apiErr.StatusCode)
	case errors.Is(err, context.DeadlineExceeded):
		return "Data load failed: request timed out"
	default:
		return "Data load failed"
	}
}

func isAuthFailure(err error) bool {
	return errors.Is(err, auth.ErrSessionExpired) || errors.Is(err, auth.ErrInvalidSession)
}

// broadcastToViews delivers msg to every tab and the login view.
func (m *Model) broadcastToViews(msg tea.Msg) []tea.Cmd {
	var cmds []tea.Cmd
	for i, tab := range m.tabs {
		if tab == nil {
			continue
		}
		var cmd tea.Cmd
		m.tabs[i], cmd = tab.Update(msg)
		cmds = append(cmds, cmd)
	}
	if m.login != nil {
		var cmd tea.Cmd
		m.login, cmd = m.login.Update(msg)
		cmds = append(cmds, cmd)
	}
	return cmds
}

// updateCurrentView forwards msg to the login view or the active tab.
func (m *Model) updateCurrentView(msg tea.Msg) tea.Cmd {
	switch msg.(type) {
	case LoggedOutMsg, LoadStartedMsg, DataAppliedMsg, RangeChangedMsg:
		// Already broadcast.
		return nil
	}

	_, isLoginResult := msg.(LoginResultMsg)
	if isLoginResult || !m.state.IsLoggedIn() {
		if m.login == nil {
			return nil
		}
		var cmd tea.Cmd
		m.login, cmd = m.login.Update(msg)
		return cmd
	}

	if int(m.activeTab) < len(m.tabs) && m.tabs[m.activeTab] != nil {
		var cmd tea.Cmd
		m.tabs[m.activeTab], cmd = m.tabs[m.activeTab].Update(msg)
		return cmd
	}
	return nil
}

func (m *Model) updateSizes() {
	contentHeight := max(0, m.height-5)

	for _, tab := range m.tabs {
		if tab != nil {
			tab.SetSize(m.width, contentHeight)
		}
	}
	if m.login != nil {
		m.login.SetSize(m.width, contentHeight)
	}
}

func (m *Model) capturingInput() bool {
	var view Tab
	if m.state.IsLoggedIn() {
		if int(m.activeTab) < len(m.tabs) {
			view = m.tabs[m.activeTab]
		}
	} else {
		view = m.login
	}
	if c, ok := view.(InputCapturer); ok {
		return c.CapturingInput()
	}
	return false
}

// handleKeyMsg handles keyboard input.
func (m *Model) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	if msg.Type == tea.KeyCtrlC {
		return tea.Quit
	}

	if m.capturingInput() || !m.state.IsLoggedIn() {
		return m.updateCurrentView(msg)
	}

	switch {
	case key.Matches(msg, m.keymap.Quit):
		return tea.Quit

	case key.Matches(msg, m.keymap.Help):
		m.showHelp = !m.showHelp
		return nil

	case key.Matches(msg, m.keymap.Escape) && m.showHelp:
		m.showHelp = false
		return nil

	case key.Matches(msg, m.keymap.Tab1):
		m.activeTab = TabOverview
		return nil

	case key.Matches(msg, m.keymap.Tab2):
		m.activeTab = TabProjects
		return nil

	case key.Matches(msg, m.keymap.Tab3):
		m.activeTab = TabDirectory
		return nil

	case key.Matches(msg, m.keymap.Tab4):
		m.activeTab = TabInfo
		return nil

	case key.Matches(msg, m.keymap.NextTab):
		m.activeTab = TabID((int(m.activeTab) + 1) % len(m.tabs))
		return nil

	case key.Matches(msg, m.keymap.PrevTab):
		m.activeTab = TabID((int(m.activeTab) - 1 + len(m.tabs)) % len(m.tabs))
		return nil

	case key.Matches(msg, m.keymap.Range):
		preset := m.state.CyclePreset()
		cmds := m.broadcastToViews(RangeChangedMsg{Preset: preset})
		cmds = append(cmds, m.startLoad(false))
		return tea.Batch(cmds...)

	case key.Matches(msg, m.keymap.Refresh):
		return m.startLoad(true)

	case key.Matches(msg, m.keymap.Logout):
		if m.services != nil {
			return logoutCmd(m.services)
		}
		return tea.Batch(m.endSession(nil)...)
	}

	return m.updateCurrentView(msg)
}

// View renders the application UI.
func (m *Model) View() string {
	if !m.ready {
		return m.styles.Content.Render(fmt.Sprintf("%s Loading...", m.spinner.View()))
	}

	var mainView string
	if m.state.IsLoggedIn() {
		mainView = m.renderMain()
	} else {
		mainView = m.renderLogin()
	}

	if notifications := m.renderNotifications(); len(notifications) > 0 {
		return m.overlayToasts(mainView, notifications)
	}
	return mainView
}

func (m *Model) renderLogin() string {
	var b strings.Builder
	b.WriteString(m.styles.TabBar.Width(m.width).Render(m.styles.Title.Render("OpenAI Costs")))
	b.WriteString("\n")
	if m.login != nil {
		b.WriteString(m.login.View())
	}
	return b.String()
}

func (m *Model) renderMain() string {
	var b strings.Builder

	b.WriteString(m.renderNavbar())
	b.WriteString("\n")

	if int(m.activeTab) < len(m.tabs) && m.tabs[m.activeTab] != nil {
		b.WriteString(m.tabs[m.activeTab].View())
	} else {
		b.WriteString(m.styles.Content.Render(m.styles.Subtle.Render("Nothing to show.")))
	}
	b.WriteString("\n")
	b.WriteString(m.renderStatusBar())

	mainView := b.String()
	if m.showHelp {
		mainView = m.overlayCentered(mainView, m.renderHelp())
	}
	return mainView
}

func (m *Model) renderNavbar() string {
	tabs := make([]string, 0, len(tabNames))
	for i, name := range tabNames {
		if TabID(i) == m.activeTab {
			tabs = append(tabs, m.styles.ActiveTab.Render(fmt.Sprintf("[%d] %s", i+1, name)))
		} else {
			tabs = append(tabs, m.styles.InactiveTab.Render(fmt.Sprintf(" %d  %s", i+1, name)))
		}
	}

	rangeLabel := m.styles.Highlight.Render("[t] " + m.state.Preset().String())
	tabBar := lipgloss.JoinHorizontal(lipgloss.Top, append(tabs, "  ", rangeLabel)...)

	return m.styles.TabBar.Width(m.width).Render(tabBar)
}

func (m *Model) renderStatusBar() string {
	parts := []string{}
	if sess := m.state.Session(); sess != nil {
		parts = append(parts, sess.Username)
	}
	if r := m.state.DateRange(); !r.Start.IsZero() {
		parts = append(parts, r.Describe())
	}
	if t := m.state.LastUpdated(); !t.IsZero() {
		parts = append(parts, "updated "+t.Local().Format("15:04:05"))
	}
	parts = append(parts, "? help")
	return m.styles.StatusBar.Render(strings.Join(parts, " • "))
}

func (m *Model) renderNotifications() []string {
	notifications := m.state.GetNotifications()
	if len(notifications) == 0 {
		return nil
	}

	toasts := make([]string, 0, len(notifications))
	for _, n := range notifications {
		var style lipgloss.Style
		var prefix string

		switch n.Type {
		case NotificationSuccess:
			style = m.styles.NotificationSuccess
			prefix = "[OK]"
		case NotificationError:
			style = m.styles.NotificationError
			prefix = "[ERR]"
		case NotificationWarning:
			style = m.styles.NotificationWarning
			prefix = "[WARN]"
		case NotificationInfo:
			style = m.styles.NotificationInfo
			prefix = "[INFO]"
		case NotificationLoading:
			style = m.styles.NotificationInfo
			prefix = m.spinner.View()
		}

		content := style.Render(fmt.Sprintf("%s %s", prefix, n.Message))
		toasts = append(toasts, m.styles.Toast.Render(content))
	}
	return toasts
}

func (m *Model) overlayCentered(mainView string, overlay string) string {
	mainLines := m.padLines(strings.Split(mainView, "\n"))
	overlayLines := strings.Split(overlay, "\n")

	y := max((m.height-len(overlayLines))/2, 0)
	overlayWidth := lipgloss.Width(overlay)
	x := max((m.width-overlayWidth)/2, 0)

	for i, overlayLine := range overlayLines {
		mainY := y + i
		if mainY >= len(mainLines) {
			break
		}

		mainLine := mainLines[mainY]
		left := ansi.Truncate(mainLine, x, "")
		right := ansi.TruncateLeft(mainLine, x+overlayWidth, "")
		if w := lipgloss.Width(left); w < x {
			left += strings.Repeat(" ", x-w)
		}

		mainLines[mainY] = left + overlayLine + right
	}

	return strings.Join(mainLines, "\n")
}

// padLines extends lines to the window height so overlays have rows to land on.
func (m *Model) padLines(lines []string) []string {
	for len(lines) < m.height {
		lines = append(lines, "")
	}
	return lines
}

func (m *Model) overlayToasts(mainView string, toasts []string) string {
	toastStack := lipgloss.JoinVertical(lipgloss.Right, toasts...)
	toastLines := strings.Split(toastStack, "\n")
	mainLines := m.padLines(strings.Split(mainView, "\n"))

	startX := max(m.width-lipgloss.Width(toastStack)-2, 0)
	const startY = 2

	for i, toastLine := range toastLines {
		lineIdx := startY + i
		if lineIdx >= len(mainLines) {
			break
		}

		mainLine := mainLines[lineIdx]
		if w := lipgloss.Width(mainLine); w < startX {
			mainLines[lineIdx] = mainLine + strings.Repeat(" ", startX-w) + toastLine
		} else {
			mainLines[lineIdx] = ansi.Truncate(mainLine, startX, "") + toastLine
		}
	}

	return strings.Join(mainLines, "\n")
}

func (m *Model) renderHelp() string {
	lines := []string{
		m.styles.Title.Render("Keyboard Shortcuts"),
		"",
		m.styles.Highlight.Render("Navigation"),
		"  1-4        Switch tabs",
		"  Tab        Next tab",
		"  Shift+Tab  Previous tab",
		"",
		m.styles.Highlight.Render("Data"),
		"  t          Cycle date range",
		"  r          Refresh (skips cache)",
		"",
		m.styles.Highlight.Render("Session"),
		"  L          Log out",
		"  ?          Toggle help",
		"  q/Ctrl+C   Quit",
		"",
	}

	if int(m.activeTab) < len(m.tabs) && m.tabs[m.activeTab] != nil {
		if tabHelp := m.tabs[m.activeTab].ShortHelp(); len(tabHelp) > 0 {
			lines = append(lines, m.styles.Highlight.Render(fmt.Sprintf("%s Tab", m.activeTab)))
			for _, binding := range tabHelp {
				lines = append(lines, fmt.Sprintf("  %-10s %s", binding.Help().Key, binding.Help().Desc))
			}
			lines = append(lines, "")
		}
	}

	lines = append(lines, m.styles.Subtle.Render("Press ? or Esc to close"))

	return styles.HelpPanelStyle.Render(strings.Join(lines, "\n"))
}
