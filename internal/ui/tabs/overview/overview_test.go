package overview

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"

	"github.com/j-veylop/openai-costs-tui/internal/app"
	"github.com/j-veylop/openai-costs-tui/internal/models"
	"github.com/j-veylop/openai-costs-tui/internal/projects"
	"github.com/j-veylop/openai-costs-tui/internal/services/billing"
	"github.com/j-veylop/openai-costs-tui/internal/usage"
)

var day = time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

func result(project, model, amount string) models.CostResult {
	r := models.CostResult{
		ProjectID: project,
		Amount:    models.Amount{Currency: "usd", Value: decimal.RequireFromString(amount)},
	}
	if model != "" {
		r.LineItem = models.StringPtr(model)
	}
	return r
}

func stateWith(page *models.CostsPage) *app.State {
	return stateFor(models.RangeLast30Days, page)
}

func stateFor(preset models.DateRangePreset, page *models.CostsPage) *app.State {
	state := app.NewState()
	r := preset.Resolve(day)
	state.BeginLoad(1, r)
	state.ApplySnapshot(&billing.Snapshot{
		Seq:   1,
		Range: r,
		Usage: usage.New(page),
		Directory: projects.New([]models.Project{
			{ID: "p1", Title: models.StringPtr("Checkout")},
		}),
		FetchedAt: day,
	})
	return state
}

func samplePage() *models.CostsPage {
	return &models.CostsPage{Data: []models.CostBucket{
		{
			StartTime: day.Unix(),
			EndTime:   day.Add(24 * time.Hour).Unix(),
			Results: []models.CostResult{
				result("p1", "gpt-4o", "1200.50"),
				result("p2", "", "0.25"),
			},
		},
	}}
}

func TestNew(t *testing.T) {
	m := New(app.NewState())
	if m == nil {
		t.Fatal("New returned nil")
	}
	if m.Init() == nil {
		t.Error("Init should start the spinner")
	}
}

func TestModel_View_Loading(t *testing.T) {
	m := New(app.NewState())
	m.SetSize(100, 30)

	if !strings.Contains(m.View(), "Loading costs...") {
		t.Error("idle state should show the spinner")
	}

	m.Update(app.LoadStartedMsg{Seq: 1, Range: models.RangeToday.Resolve(day)})
	if !strings.Contains(m.View(), "Loading Today...") {
		t.Error("spinner label should name the range being loaded")
	}
}

func TestModel_View_Data(t *testing.T) {
	m := New(stateWith(samplePage()))
	m.SetSize(120, 80)

	view := m.View()
	for _, want := range []string{"Cost Overview", "$1,200.75", "gpt-4o", usage.UnknownModelLabel, "Checkout", "Daily cost"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q", want)
		}
	}
}

func TestModel_View_Projection(t *testing.T) {
	m := New(stateWith(samplePage()))
	m.SetSize(120, 80)
	if strings.Contains(m.View(), "Projected month end") {
		t.Error("rolling windows should not be projected")
	}

	m = New(stateFor(models.RangeThisMonth, samplePage()))
	m.SetSize(120, 80)
	m.SetAlertThreshold(2000)

	view := m.View()
	for _, want := range []string{"Projected month end", "$4,135.92", "$133.42/day", "WARNING"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q", want)
		}
	}
}

func TestModel_View_Empty(t *testing.T) {
	m := New(stateWith(&models.CostsPage{}))
	m.SetSize(100, 30)

	if !strings.Contains(m.View(), "No cost records") {
		t.Error("empty response should render the empty state")
	}
}

func TestModel_View_EmptyBucketsAreNotEmpty(t *testing.T) {
	page := &models.CostsPage{Data: []models.CostBucket{{StartTime: day.Unix()}}}
	m := New(stateWith(page))
	m.SetSize(100, 40)

	view := m.View()
	if strings.Contains(view, "No cost records") {
		t.Error("a response with buckets is not empty")
	}
	if !strings.Contains(view, "$0.00") {
		t.Error("zero total should be shown")
	}
}

func TestModel_View_Error(t *testing.T) {
	state := app.NewState()
	state.BeginLoad(1, models.RangeToday.Resolve(day))
	state.ApplyError(1, errors.Join(billing.ErrLoadFailed, errors.New("boom")))

	m := New(state)
	m.SetSize(100, 30)

	view := m.View()
	if !strings.Contains(view, "Data load failed") {
		t.Errorf("error state missing:\n%s", view)
	}
}

func TestModel_ShowMoreModels(t *testing.T) {
	var results []models.CostResult
	for _, name := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"} {
		results = append(results, result("p1", "model-"+name, "1"))
	}
	page := &models.CostsPage{Data: []models.CostBucket{{StartTime: day.Unix(), Results: results}}}

	m := New(stateWith(page))
	m.SetSize(120, 100)

	if !strings.Contains(m.View(), "2 more") {
		t.Error("breakdown should collapse past the limit")
	}

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("m")})
	view := m.View()
	if strings.Contains(view, "more (press m)") || !strings.Contains(view, "model-j") {
		t.Error("m should expand the breakdown")
	}
}

func TestModel_Help(t *testing.T) {
	m := New(app.NewState())
	if len(m.ShortHelp()) == 0 || len(m.FullHelp()) == 0 {
		t.Error("help should list bindings")
	}
}
