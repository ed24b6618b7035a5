package projects

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/openai-costs-tui/internal/app"
	"github.com/j-veylop/openai-costs-tui/internal/ui/components"
	"github.com/j-veylop/openai-costs-tui/internal/ui/styles"
	"github.com/j-veylop/openai-costs-tui/internal/usage"
)

// View renders the projects tab.
func (m *Model) View() string {
	switch {
	case m.state.Status() == app.StatusFailed:
		return m.frame(styles.ErrorTextStyle.Render("Data load failed. Press r to retry."))
	case m.state.IsLoading() || m.state.Snapshot() == nil:
		return components.RenderSpinnerCentered(m.spinner, m.width, m.height)
	case len(m.rows) == 0:
		return m.frame(lipgloss.JoinVertical(lipgloss.Left,
			styles.TitleStyle.Render("Projects"),
			styles.HelpStyle.Render("No project has costs in this range."),
		))
	}

	if m.selected != "" {
		if r, ok := m.rowFor(m.selected); ok {
			return m.frame(m.renderDetail(r))
		}
	}
	return m.frame(lipgloss.JoinVertical(lipgloss.Left, m.renderTitle(), m.renderTable()))
}

func (m *Model) frame(content string) string {
	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(content)
}

func (m *Model) rowFor(id string) (row, bool) {
	for _, r := range m.rows {
		if r.project.ProjectID == id {
			return r, true
		}
	}
	return row{}, false
}

func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render("Projects")
	subtitle := styles.HelpStyle.Render(fmt.Sprintf("%d projects • %s total • sorted by %s",
		len(m.rows), components.FormatCurrency(m.totalCost()), m.order))
	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

func (m *Model) renderTable() string {
	cardWidth := max(m.width-6, 60)
	return styles.CardStyle.Width(cardWidth).Render(m.table.View())
}

func (m *Model) renderDetail(r row) string {
	p := r.project
	cardWidth := max(m.width-8, 50)

	header := lipgloss.JoinVertical(lipgloss.Left,
		styles.TitleStyle.Render(r.name),
		styles.HelpStyle.Render(fmt.Sprintf("%s • %s total • %s/day over %d days",
			p.ProjectID,
			components.FormatCurrency(p.TotalCost),
			components.FormatCurrency(usage.AverageDailyCost(p)),
			len(p.DailyCosts))),
		"",
	)

	chart := styles.CardStyle.Width(cardWidth).Render(lipgloss.JoinVertical(lipgloss.Left,
		styles.CardTitleStyle.Render("Daily cost"),
		"",
		components.RenderProjectDailyChart(p.DailyCosts, cardWidth-16, 8),
	))

	modelRows := []string{styles.CardTitleStyle.Render("Models"), ""}
	for _, k := range usage.ModelKeysByCost(p.ModelsUsed) {
		amount := p.ModelsUsed[k]
		modelRows = append(modelRows, fmt.Sprintf("%-24s %12s %s",
			k.Label(),
			components.FormatCurrency(amount),
			components.SimpleShareBar(usage.Percent(amount, p.TotalCost), 30)))
	}
	models := styles.CardStyle.Width(cardWidth).Render(lipgloss.JoinVertical(lipgloss.Left, modelRows...))

	footer := styles.HelpStyle.Render("esc: back to list")
	return lipgloss.JoinVertical(lipgloss.Left, header, chart, models, footer)
}
