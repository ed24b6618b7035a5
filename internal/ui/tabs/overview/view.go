package overview

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"

	"github.com/j-veylop/openai-costs-tui/internal/app"
	"github.com/j-veylop/openai-costs-tui/internal/services/billing"
	"github.com/j-veylop/openai-costs-tui/internal/ui/components"
	"github.com/j-veylop/openai-costs-tui/internal/ui/styles"
	"github.com/j-veylop/openai-costs-tui/internal/usage"
)

const topProjects = 5

// View renders the overview tab.
func (m *Model) View() string {
	snap := m.state.Snapshot()

	switch {
	case m.state.Status() == app.StatusFailed:
		return m.frame(m.renderError())
	case m.state.IsLoading() || snap == nil:
		return components.RenderSpinnerCentered(m.spinner, m.width, m.height)
	case snap.Usage.IsEmpty():
		return m.frame(m.renderEmpty(snap))
	}

	sections := []string{
		m.renderTitle(snap),
		m.renderCards(snap),
	}
	if proj, ok := usage.ProjectMonthEnd(snap.Usage, snap.Range, m.threshold); ok {
		sections = append(sections, m.renderProjection(proj))
	}
	sections = append(sections,
		m.renderModelBreakdown(snap.Usage),
		m.renderTopProjects(snap),
		m.renderDailyChart(snap.Usage),
	)
	return m.frame(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (m *Model) frame(content string) string {
	m.viewport.SetContent(content)
	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

func (m *Model) contentWidth() int {
	return max(m.width-8, 40)
}

func (m *Model) renderTitle(snap *billing.Snapshot) string {
	title := styles.TitleStyle.Render("Cost Overview")
	subtitle := styles.HelpStyle.Render(fmt.Sprintf("%s • %s", snap.Range.Label, snap.Range.Describe()))
	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

func (m *Model) renderError() string {
	msg := "Data load failed"
	if err := m.state.LoadError(); err != nil {
		msg = fmt.Sprintf("Data load failed: %v", err)
	}

	rows := []string{
		styles.ErrorTextStyle.Bold(true).Render("✗ " + msg),
		"",
		styles.HelpStyle.Render("Press r to retry or t to pick another range."),
	}
	return styles.CardStyle.Width(m.contentWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m *Model) renderEmpty(snap *billing.Snapshot) string {
	rows := []string{
		styles.CardTitleStyle.Render("No usage"),
		"",
		fmt.Sprintf("No cost records for %s (%s).", snap.Range.Label, snap.Range.Describe()),
		styles.HelpStyle.Render("Press t to pick another range."),
	}
	return styles.CardStyle.Width(m.contentWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m *Model) renderCards(snap *billing.Snapshot) string {
	u := snap.Usage
	cardWidth := max((m.contentWidth()-8)/4, 16)

	card := func(title, value string) string {
		return styles.CardStyle.Width(cardWidth).Render(lipgloss.JoinVertical(lipgloss.Left,
			styles.CardTitleStyle.Render(title),
			styles.CardValueStyle.Render(value),
		))
	}

	cards := lipgloss.JoinHorizontal(lipgloss.Top,
		card("Total cost", components.FormatCurrency(u.TotalCost())),
		card("Projects", components.FormatCount(u.ProjectCount())),
		card("Models", components.FormatCount(len(u.UsageByModel()))),
		card("Days with usage", components.FormatCount(len(u.AllDates()))),
	)
	return lipgloss.JoinVertical(lipgloss.Left, cards, "")
}

func (m *Model) renderProjection(p usage.Projection) string {
	statusStyle := styles.HelpStyle
	switch p.Status {
	case usage.ProjectionSafe:
		statusStyle = styles.SuccessTextStyle
	case usage.ProjectionWarning:
		statusStyle = styles.WarningTextStyle
	case usage.ProjectionCritical:
		statusStyle = styles.ErrorTextStyle.Bold(true)
	}

	headline := fmt.Sprintf("%s at %s/day",
		styles.CardValueStyle.Render(components.FormatCurrency(p.Projected)),
		components.FormatCurrency(p.DailyRate))
	detail := fmt.Sprintf("%d days left • %s confidence", p.DaysLeft, p.Confidence)
	if p.Status != usage.ProjectionUnknown {
		detail += fmt.Sprintf(" • alert at %s: %s", components.FormatCurrency(p.Threshold), statusStyle.Render(p.Status.String()))
	}

	rows := []string{
		styles.CardTitleStyle.Render("Projected month end"),
		headline,
		styles.HelpStyle.Render(detail),
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		styles.CardStyle.Width(m.contentWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, rows...)),
		"")
}

func (m *Model) renderModelBreakdown(u *usage.Usage) string {
	byModel := u.UsageByModel()
	keys := usage.ModelKeysByCost(byModel)
	total := u.TotalCost()

	rows := []string{styles.CardTitleStyle.Render("Cost by model"), ""}
	if len(keys) == 0 {
		rows = append(rows, styles.HelpStyle.Render("No model charges in this range"))
	}

	shown := keys
	if !m.allModels && len(keys) > collapsedModels {
		shown = keys[:collapsedModels]
	}
	for _, k := range shown {
		rows = append(rows, m.shareBar.View(k.Label(), byModel[k], usage.Percent(byModel[k], total), m.contentWidth()-6))
	}
	if hidden := len(keys) - len(shown); hidden > 0 {
		rows = append(rows, styles.HelpStyle.Render(fmt.Sprintf("… %d more (press m)", hidden)))
	}

	return styles.CardStyle.Width(m.contentWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m *Model) renderTopProjects(snap *billing.Snapshot) string {
	projects := snap.Usage.ProjectsByCost()
	items := lo.Map(lo.Slice(projects, 0, topProjects), func(p usage.ProjectUsage, _ int) components.BarItem {
		return components.BarItem{Label: projectName(snap, p.ProjectID), Value: p.TotalCost}
	})

	rows := []string{
		styles.CardTitleStyle.Render(fmt.Sprintf("Top projects (%d of %d)", len(items), len(projects))),
		"",
		components.RenderBarChart(items, m.contentWidth()-6),
	}
	return styles.CardStyle.Width(m.contentWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m *Model) renderDailyChart(u *usage.Usage) string {
	chart := components.RenderDailyTotalsChart(u.DailyTotals(), m.contentWidth()-16, 8)
	rows := []string{styles.CardTitleStyle.Render("Daily cost"), "", chart}
	return styles.CardStyle.Width(m.contentWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func projectName(snap *billing.Snapshot, id string) string {
	return snap.Directory.Name(id)
}
