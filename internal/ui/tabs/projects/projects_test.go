package projects

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"

	"github.com/j-veylop/openai-costs-tui/internal/app"
	"github.com/j-veylop/openai-costs-tui/internal/models"
	dir "github.com/j-veylop/openai-costs-tui/internal/projects"
	"github.com/j-veylop/openai-costs-tui/internal/services/billing"
	"github.com/j-veylop/openai-costs-tui/internal/usage"
)

var day = time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

func bucket(offset int, results ...models.CostResult) models.CostBucket {
	start := day.AddDate(0, 0, offset)
	return models.CostBucket{StartTime: start.Unix(), EndTime: start.Add(24 * time.Hour).Unix(), Results: results}
}

func charge(project, model, amount string) models.CostResult {
	return models.CostResult{
		ProjectID: project,
		LineItem:  models.StringPtr(model),
		Amount:    models.Amount{Value: decimal.RequireFromString(amount)},
	}
}

func loaded(t *testing.T) (*Model, *app.State) {
	t.Helper()

	page := &models.CostsPage{Data: []models.CostBucket{
		bucket(0, charge("p1", "gpt-4o", "2"), charge("p2", "o1", "10")),
		bucket(2, charge("p1", "gpt-4o-mini", "4")),
	}}

	state := app.NewState()
	r := models.RangeLast30Days.Resolve(day)
	state.BeginLoad(1, r)
	snap := &billing.Snapshot{
		Seq:   1,
		Range: r,
		Usage: usage.New(page),
		Directory: dir.New([]models.Project{
			{ID: "p1", Title: models.StringPtr("Zeta app")},
			{ID: "p2", Name: models.StringPtr("Alpha batch")},
		}),
	}
	state.ApplySnapshot(snap)

	m := New(state)
	m.SetSize(160, 40)
	m.Update(app.DataAppliedMsg{Snapshot: snap})
	return m, state
}

func TestNew(t *testing.T) {
	m := New(app.NewState())
	if m == nil {
		t.Fatal("New returned nil")
	}
	if m.Init() != nil {
		t.Error("Init should not schedule anything")
	}
}

func TestModel_RowsSortedByCost(t *testing.T) {
	m, _ := loaded(t)

	rows := m.table.Rows()
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}

	tests := []struct {
		col  int
		want [2]string
	}{
		{0, [2]string{"Alpha batch", "Zeta app"}},
		{2, [2]string{"$10.00", "$6.00"}},
		{3, [2]string{"62.5%", "37.5%"}},
		// p1 spent on two of the three dates.
		{4, [2]string{"$10.00", "$3.00"}},
		{5, [2]string{"1", "2"}},
		{6, [2]string{"1", "2"}},
	}
	for _, tt := range tests {
		for i := range 2 {
			if got := rows[i][tt.col]; got != tt.want[i] {
				t.Errorf("row %d col %d = %q, want %q", i, tt.col, got, tt.want[i])
			}
		}
	}
}

func TestModel_SortByName(t *testing.T) {
	m, _ := loaded(t)
	m.rows[0], m.rows[1] = m.rows[1], m.rows[0]
	m.order = sortByName
	m.sortRows()
	m.refreshTable()

	if got := m.table.Rows()[0][0]; got != "Alpha batch" {
		t.Errorf("first row = %q", got)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")})
	if m.order != sortByCost {
		t.Error("s should cycle the sort order")
	}
}

func TestModel_DetailView(t *testing.T) {
	m, _ := loaded(t)

	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.selected != "p1" {
		t.Fatalf("selected = %q, want p1", m.selected)
	}

	view := m.View()
	for _, want := range []string{"Zeta app", "Daily cost", "gpt-4o-mini", "esc: back"} {
		if !strings.Contains(view, want) {
			t.Errorf("detail view missing %q", want)
		}
	}

	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.selected != "" {
		t.Error("esc should return to the list")
	}
}

func TestModel_LoggedOutClearsRows(t *testing.T) {
	m, state := loaded(t)
	m.selected = "p1"

	state.SetSession(nil)
	m.Update(app.LoggedOutMsg{})

	if len(m.table.Rows()) != 0 || m.selected != "" {
		t.Error("logout should clear the table")
	}
}

func TestModel_View_States(t *testing.T) {
	state := app.NewState()
	m := New(state)
	m.SetSize(120, 30)

	if !strings.Contains(m.View(), "Loading projects") {
		t.Error("idle state should show the spinner")
	}

	state.BeginLoad(1, models.RangeToday.Resolve(day))
	state.ApplyError(1, billing.ErrLoadFailed)
	if !strings.Contains(m.View(), "Data load failed") {
		t.Error("failed load should be shown")
	}

	state.BeginLoad(2, models.RangeToday.Resolve(day))
	snap := &billing.Snapshot{Seq: 2, Usage: usage.New(nil), Directory: dir.New(nil)}
	state.ApplySnapshot(snap)
	m.Update(app.DataAppliedMsg{Snapshot: snap})
	if !strings.Contains(m.View(), "No project has costs") {
		t.Error("empty data should be shown")
	}
}
