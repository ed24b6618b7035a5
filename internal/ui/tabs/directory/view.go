package directory

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/openai-costs-tui/internal/app"
	"github.com/j-veylop/openai-costs-tui/internal/models"
	"github.com/j-veylop/openai-costs-tui/internal/projects"
	"github.com/j-veylop/openai-costs-tui/internal/ui/styles"
)

// View renders the directory tab.
func (m *Model) View() string {
	var sections []string
	sections = append(sections, m.renderTitle(), m.renderSearch())

	switch {
	case m.state.Status() == app.StatusFailed:
		sections = append(sections, styles.ErrorTextStyle.Render("Data load failed. Press r to retry."))
	case m.dir == nil:
		sections = append(sections, styles.HelpStyle.Render("Loading projects..."))
	case len(m.filtered) == 0:
		sections = append(sections, m.renderNoMatches())
	default:
		sections = append(sections, m.renderList(), m.renderPager())
	}

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render("Project Directory")

	known := 0
	if m.dir != nil {
		known = m.dir.Len()
	}
	subtitle := fmt.Sprintf("%d projects", known)
	if q := m.search.Value(); q != "" {
		subtitle = fmt.Sprintf("%d of %d projects match %q", len(m.filtered), known, q)
	}
	return lipgloss.JoinVertical(lipgloss.Left, title, styles.HelpStyle.Render(subtitle), "")
}

func (m *Model) renderSearch() string {
	style := styles.BlurredBorderStyle
	if m.searching {
		style = styles.FocusedBorderStyle
	}
	return style.Width(min(max(m.width-10, 30), 70)).Render(m.search.View())
}

func (m *Model) renderNoMatches() string {
	if m.search.Value() == "" {
		return styles.HelpStyle.Render("No projects in this organization.")
	}
	return styles.HelpStyle.Render("No projects match the search. Press esc to clear.")
}

func (m *Model) renderList() string {
	page := m.page()
	lines := make([]string, 0, len(page)*2)

	for i := range page {
		p := &page[i]
		name := projects.DisplayName(p)

		header := fmt.Sprintf("%s  %s  %s",
			lipgloss.NewStyle().Bold(true).Render(name),
			styles.HelpStyle.Render(p.ID),
			strings.Join(badges(p), " "))

		if i == m.cursor {
			header = styles.SelectedListItemStyle.Render("▸ ") + header
		} else {
			header = styles.ListItemStyle.Render(header)
		}
		lines = append(lines, header)

		details := []string{}
		if desc := p.DescriptionText(); desc != "" {
			details = append(details, desc)
		}
		if created := p.CreatedTime(); !created.IsZero() {
			details = append(details, "created "+created.Format("2006-01-02"))
		}
		if len(details) > 0 {
			lines = append(lines, styles.ListItemStyle.Render("  "+styles.HelpStyle.Render(strings.Join(details, " • "))))
		}
	}

	cardWidth := max(m.width-6, 50)
	return styles.CardStyle.Width(cardWidth).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (m *Model) renderPager() string {
	if m.paginator.TotalPages <= 1 {
		return ""
	}
	return styles.HelpStyle.Render(fmt.Sprintf("Page %s  (←/→ to change)", m.paginator.View()))
}

// badges renders the status and permission markers of p.
func badges(p *models.Project) []string {
	var out []string
	if p.Archived || p.ArchivedAt != nil {
		out = append(out, styles.BadgeArchivedStyle.Render("[archived]"))
	} else {
		out = append(out, styles.BadgeActiveStyle.Render("[active]"))
	}
	if perm := p.PermissionLevel(); perm != "" {
		out = append(out, styles.BadgePermissionStyle.Render("["+perm+"]"))
	}
	return out
}
