package info

import (
	"fmt"
	"runtime"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/j-veylop/openai-costs-tui/internal/ui/styles"
	"github.com/j-veylop/openai-costs-tui/internal/version"
)

// View renders the info tab.
func (m *Model) View() string {
	sections := []string{
		m.renderTitle(),
		m.renderSessionCard(),
	}
	if m.editing {
		sections = append(sections, m.renderPasswordForm())
	}
	sections = append(sections, m.renderConfigCard(), m.renderAboutCard())

	m.viewport.SetContent(lipgloss.JoinVertical(lipgloss.Left, sections...))

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render("Info")
	subtitle := styles.HelpStyle.Render("Session, configuration and build information")

	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

func (m *Model) cardWidth() int {
	return min(max(m.width-6, 50), 80)
}

func (m *Model) renderSessionCard() string {
	rows := []string{styles.CardTitleStyle.Render("Session"), ""}

	sess := m.state.Session()
	if sess == nil {
		rows = append(rows, styles.HelpStyle.Render("Not logged in"))
	} else {
		rows = append(rows,
			m.renderConfigRow("User", sess.Username),
			m.renderConfigRow("Role", sess.Role),
			m.renderConfigRow("Expires", fmt.Sprintf("%s (%s)",
				sess.ExpiresAt.Local().Format("2006-01-02 15:04"),
				humanize.Time(sess.ExpiresAt))),
		)
		if !m.editing {
			rows = append(rows, "", styles.HelpStyle.Render("Press 'p' to change your password"))
		}
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m *Model) renderPasswordForm() string {
	rows := []string{styles.CardTitleStyle.Render("Change password"), ""}

	for i := range m.inputs {
		style := styles.BlurredBorderStyle
		if i == m.focus {
			style = styles.FocusedBorderStyle
		}
		rows = append(rows, style.Width(40).Render(m.inputs[i].View()))
	}

	switch {
	case m.pending:
		rows = append(rows, styles.HelpStyle.Render("Saving..."))
	case m.formErr != "":
		rows = append(rows, styles.ErrorTextStyle.Render(m.formErr))
	default:
		rows = append(rows, styles.HelpStyle.Render("tab: next field • enter: submit • esc: cancel"))
	}

	return styles.CardStyle.
		BorderForeground(styles.Primary).
		Width(m.cardWidth()).
		Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m *Model) renderConfigCard() string {
	rows := []string{styles.CardTitleStyle.Render("Configuration"), ""}

	if m.config == nil {
		rows = append(rows, styles.HelpStyle.Render("Configuration not loaded"))
		return styles.CardStyle.Width(m.cardWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
	}

	org := m.config.OrganizationID
	if org == "" {
		org = "(default)"
	}
	alert := "off"
	if m.config.CostAlertThreshold > 0 {
		alert = fmt.Sprintf("$%.2f", m.config.CostAlertThreshold)
	}

	rows = append(rows,
		m.renderConfigRow("API Base", m.config.APIBase),
		m.renderConfigRow("Organization", org),
		m.renderConfigRow("Database", m.config.DatabasePath),
		m.renderConfigRow("Session File", m.config.SessionPath),
		m.renderConfigRow("Cache TTL", m.config.CacheTTL.String()),
		m.renderConfigRow("Request Timeout", m.config.RequestTimeout.String()),
		m.renderConfigRow("Session TTL", m.config.SessionTTL.String()),
		m.renderConfigRow("Cost Alert", alert),
	)

	return styles.CardStyle.Width(m.cardWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

// renderConfigRow renders a key-value row.
func (m *Model) renderConfigRow(label, value string) string {
	labelStyle := lipgloss.NewStyle().
		Width(18).
		Foreground(styles.TextMuted)

	valueStyle := lipgloss.NewStyle().
		Foreground(styles.TextPrimary)

	return labelStyle.Render(label+":") + " " + valueStyle.Render(value)
}

func (m *Model) renderAboutCard() string {
	rows := []string{
		styles.CardTitleStyle.Render("About " + version.Name),
		"",
		m.renderConfigRow("Version", version.GetVersion()),
		m.renderConfigRow("Build Date", version.GetDate()),
		m.renderConfigRow("Git Commit", version.GetCommit()),
		m.renderConfigRow("Go Version", runtime.Version()),
		m.renderConfigRow("Platform", fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)),
	}

	if updated := m.state.LastUpdated(); !updated.IsZero() {
		rows = append(rows, "", m.renderConfigRow("Data Fetched", humanize.Time(updated)))
	}
	if snap := m.state.Snapshot(); snap != nil {
		rows = append(rows, m.renderConfigRow("Range", snap.Range.Describe()))
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
