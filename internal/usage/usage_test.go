package usage

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/j-veylop/openai-costs-tui/internal/models"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func result(projectID string, lineItem *string, value string) models.CostResult {
	return models.CostResult{
		Object:         "organization.costs.result",
		ProjectID:      projectID,
		OrganizationID: "org-1",
		LineItem:       lineItem,
		Amount:         models.Amount{Currency: "usd", Value: dec(value)},
	}
}

func bucket(start time.Time, results ...models.CostResult) models.CostBucket {
	return models.CostBucket{
		Object:    "bucket",
		StartTime: start.Unix(),
		EndTime:   start.Add(24 * time.Hour).Unix(),
		Results:   results,
	}
}

func page(buckets ...models.CostBucket) *models.CostsPage {
	return &models.CostsPage{Object: "page", Data: buckets}
}

func TestNew_SingleBucketScenario(t *testing.T) {
	start := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	u := New(page(bucket(start,
		result("p1", models.StringPtr("gpt-4"), "10.00"),
		result("p1", nil, "5.00"),
	)))

	if got := u.ProjectCount(); got != 1 {
		t.Fatalf("ProjectCount() = %d, want 1", got)
	}
	if got := u.ProjectTotalCost("p1"); !got.Equal(dec("15")) {
		t.Errorf("ProjectTotalCost(p1) = %s, want 15", got)
	}

	days := u.ProjectDailyCosts("p1")
	if len(days) != 1 {
		t.Fatalf("len(ProjectDailyCosts) = %d, want 1", len(days))
	}
	if days[0].Date != "2024-03-01" {
		t.Errorf("Date = %q, want 2024-03-01", days[0].Date)
	}
	if !days[0].TotalCost.Equal(dec("15")) {
		t.Errorf("daily TotalCost = %s, want 15", days[0].TotalCost)
	}
	if !days[0].Models[Model("gpt-4")].Equal(dec("10")) {
		t.Errorf("daily gpt-4 = %s, want 10", days[0].Models[Model("gpt-4")])
	}
	if !days[0].Models[Unspecified].Equal(dec("5")) {
		t.Errorf("daily unknown = %s, want 5", days[0].Models[Unspecified])
	}

	byModel := u.UsageByModel()
	if len(byModel) != 2 {
		t.Fatalf("len(UsageByModel) = %d, want 2", len(byModel))
	}
	if !byModel[Model("gpt-4")].Equal(dec("10")) || !byModel[Unspecified].Equal(dec("5")) {
		t.Errorf("UsageByModel() = %v", byModel)
	}
}

func TestNew_EmptyInput(t *testing.T) {
	tests := []struct {
		name string
		page *models.CostsPage
	}{
		{"nil page", nil},
		{"no buckets", page()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := New(tt.page)
			if !u.IsEmpty() {
				t.Error("IsEmpty() = false, want true")
			}
			if !u.TotalCost().IsZero() {
				t.Errorf("TotalCost() = %s, want 0", u.TotalCost())
			}
			if u.ProjectCount() != 0 {
				t.Errorf("ProjectCount() = %d, want 0", u.ProjectCount())
			}
			if len(u.AllDates()) != 0 {
				t.Errorf("AllDates() = %v, want empty", u.AllDates())
			}
		})
	}
}

func TestIsEmpty_BucketWithoutResults(t *testing.T) {
	u := New(page(bucket(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))))

	if u.IsEmpty() {
		t.Error("IsEmpty() = true for a response with one empty bucket, want false")
	}
	if u.ProjectCount() != 0 {
		t.Errorf("ProjectCount() = %d, want 0", u.ProjectCount())
	}
}

func TestNew_MergesBucketsOnSameDate(t *testing.T) {
	morning := time.Date(2024, 3, 1, 1, 0, 0, 0, time.UTC)
	evening := time.Date(2024, 3, 1, 22, 30, 0, 0, time.UTC)

	u := New(page(
		bucket(evening, result("p1", models.StringPtr("gpt-4"), "1.25")),
		bucket(morning, result("p1", models.StringPtr("gpt-4"), "2.75")),
	))

	days := u.ProjectDailyCosts("p1")
	if len(days) != 1 {
		t.Fatalf("len(ProjectDailyCosts) = %d, want 1", len(days))
	}
	if !days[0].TotalCost.Equal(dec("4")) {
		t.Errorf("TotalCost = %s, want 4", days[0].TotalCost)
	}
	if !days[0].Models[Model("gpt-4")].Equal(dec("4")) {
		t.Errorf("gpt-4 = %s, want 4", days[0].Models[Model("gpt-4")])
	}
}

func TestNew_DateUsesBucketStartInUTC(t *testing.T) {
	// 23:30 in UTC-5 is already the next day in UTC.
	loc := time.FixedZone("EST", -5*3600)
	start := time.Date(2024, 3, 1, 23, 30, 0, 0, loc)

	u := New(page(bucket(start, result("p1", nil, "1"))))

	if got := u.AllDates(); len(got) != 1 || got[0] != "2024-03-02" {
		t.Errorf("AllDates() = %v, want [2024-03-02]", got)
	}
}

func TestNew_DailyCostsSortedAscending(t *testing.T) {
	d := func(day int) time.Time { return time.Date(2024, 3, day, 0, 0, 0, 0, time.UTC) }

	u := New(page(
		bucket(d(5), result("p1", nil, "1"), result("p2", nil, "1")),
		bucket(d(2), result("p1", nil, "1")),
		bucket(d(9), result("p2", nil, "1")),
		bucket(d(3), result("p1", nil, "1")),
	))

	var got []string
	for _, day := range u.ProjectDailyCosts("p1") {
		got = append(got, day.Date)
	}
	want := []string{"2024-03-02", "2024-03-03", "2024-03-05"}
	if len(got) != len(want) {
		t.Fatalf("dates = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("dates[%d] = %s, want %s", i, got[i], want[i])
		}
	}

	all := u.AllDates()
	wantAll := []string{"2024-03-02", "2024-03-03", "2024-03-05", "2024-03-09"}
	if len(all) != len(wantAll) {
		t.Fatalf("AllDates() = %v, want %v", all, wantAll)
	}
	for i := range wantAll {
		if all[i] != wantAll[i] {
			t.Errorf("AllDates()[%d] = %s, want %s", i, all[i], wantAll[i])
		}
	}
}

func TestSentinel_DoesNotCollideWithRealModel(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	u := New(page(bucket(start,
		result("p1", nil, "1"),
		result("p1", nil, "2"),
		result("p1", models.StringPtr(UnknownModelLabel), "4"),
	)))

	byModel := u.UsageByModel()
	if len(byModel) != 2 {
		t.Fatalf("len(UsageByModel) = %d, want 2: %v", len(byModel), byModel)
	}
	if !byModel[Unspecified].Equal(dec("3")) {
		t.Errorf("unspecified = %s, want 3", byModel[Unspecified])
	}
	if !byModel[Model(UnknownModelLabel)].Equal(dec("4")) {
		t.Errorf("literal model = %s, want 4", byModel[Model(UnknownModelLabel)])
	}
}

func TestModelOf(t *testing.T) {
	tests := []struct {
		name     string
		lineItem *string
		want     ModelKey
	}{
		{"nil", nil, Unspecified},
		{"empty", models.StringPtr(""), Unspecified},
		{"named", models.StringPtr("gpt-4o"), Model("gpt-4o")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ModelOf(tt.lineItem); got != tt.want {
				t.Errorf("ModelOf() = %+v, want %+v", got, tt.want)
			}
		})
	}

	if Unspecified.String() != UnknownModelLabel {
		t.Errorf("Unspecified.String() = %q", Unspecified.String())
	}
}

func TestModelKey_Label(t *testing.T) {
	tests := []struct {
		name string
		key  ModelKey
		want string
	}{
		{"unspecified", Unspecified, UnknownModelLabel},
		{"real model", Model("gpt-4o"), "gpt-4o"},
		{"real model named like sentinel", Model(UnknownModelLabel), `"<unknown>"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.key.Label(); got != tt.want {
				t.Errorf("Label() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUnseenProjectDefaults(t *testing.T) {
	u := New(page(bucket(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), result("p1", nil, "1"))))

	if got := u.ProjectTotalCost("missing"); !got.IsZero() {
		t.Errorf("ProjectTotalCost(missing) = %s, want 0", got)
	}
	days := u.ProjectDailyCosts("missing")
	if days == nil || len(days) != 0 {
		t.Errorf("ProjectDailyCosts(missing) = %v, want empty non-nil", days)
	}
}

func TestProjectsByCost(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		results []models.CostResult
		want    []string
	}{
		{
			name: "descending",
			results: []models.CostResult{
				result("p2", nil, "10"),
				result("p1", nil, "30"),
			},
			want: []string{"p1", "p2"},
		},
		{
			name: "ties keep first-seen order",
			results: []models.CostResult{
				result("b", nil, "5"),
				result("a", nil, "5"),
				result("c", nil, "7"),
			},
			want: []string{"c", "b", "a"},
		},
		{
			name: "negative totals sort last",
			results: []models.CostResult{
				result("refund", nil, "-3"),
				result("zero", nil, "0"),
				result("spend", nil, "2"),
			},
			want: []string{"spend", "zero", "refund"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := New(page(bucket(start, tt.results...)))
			got := u.ProjectsByCost()
			if len(got) != len(tt.want) {
				t.Fatalf("len = %d, want %d", len(got), len(tt.want))
			}
			for i, id := range tt.want {
				if got[i].ProjectID != id {
					t.Errorf("ProjectsByCost()[%d] = %s, want %s", i, got[i].ProjectID, id)
				}
			}
		})
	}
}

func TestProjects_FirstSeenOrderAndZeroCost(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	u := New(page(bucket(start,
		result("z", nil, "0"),
		result("a", nil, "1"),
		result("z", nil, "0"),
	)))

	got := u.Projects()
	if len(got) != 2 || got[0].ProjectID != "z" || got[1].ProjectID != "a" {
		t.Fatalf("Projects() = %+v, want [z a]", got)
	}
	if !got[0].TotalCost.IsZero() {
		t.Errorf("zero-cost project total = %s, want 0", got[0].TotalCost)
	}
}

func TestProjectTotalsSumToOrganizationTotal(t *testing.T) {
	d := func(day, hour int) time.Time { return time.Date(2024, 3, day, hour, 0, 0, 0, time.UTC) }
	gpt4 := models.StringPtr("gpt-4")
	mini := models.StringPtr("gpt-4o-mini")

	raw := page(
		bucket(d(1, 0), result("p1", gpt4, "1.10"), result("p2", mini, "0.33"), result("p1", nil, "0.01")),
		bucket(d(1, 12), result("p1", gpt4, "2.20"), result("p2", gpt4, "-0.50")),
		bucket(d(2, 0), result("p3", mini, "7.77"), result("p1", mini, "0.07")),
		bucket(d(4, 0)),
		bucket(d(3, 0), result("p2", nil, "12.345678")),
	)
	u := New(raw)

	recordSum := decimal.Zero
	for _, b := range raw.Data {
		for _, r := range b.Results {
			recordSum = recordSum.Add(r.Amount.Value)
		}
	}
	if !u.TotalCost().Equal(recordSum) {
		t.Errorf("TotalCost() = %s, want record sum %s", u.TotalCost(), recordSum)
	}

	projectSum := decimal.Zero
	for _, p := range u.Projects() {
		projectSum = projectSum.Add(p.TotalCost)

		daySum := decimal.Zero
		for _, day := range p.DailyCosts {
			daySum = daySum.Add(day.TotalCost)

			dayModelSum := decimal.Zero
			for _, c := range day.Models {
				dayModelSum = dayModelSum.Add(c)
			}
			if !dayModelSum.Equal(day.TotalCost) {
				t.Errorf("%s %s: model sum %s != daily total %s", p.ProjectID, day.Date, dayModelSum, day.TotalCost)
			}
		}
		if !daySum.Equal(p.TotalCost) {
			t.Errorf("%s: daily sum %s != total %s", p.ProjectID, daySum, p.TotalCost)
		}

		modelSum := decimal.Zero
		for _, c := range p.ModelsUsed {
			modelSum = modelSum.Add(c)
		}
		if !modelSum.Equal(p.TotalCost) {
			t.Errorf("%s: model sum %s != total %s", p.ProjectID, modelSum, p.TotalCost)
		}
	}
	if !projectSum.Equal(u.TotalCost()) {
		t.Errorf("project sum %s != TotalCost() %s", projectSum, u.TotalCost())
	}

	overallModelSum := decimal.Zero
	for _, c := range u.UsageByModel() {
		overallModelSum = overallModelSum.Add(c)
	}
	if !overallModelSum.Equal(u.TotalCost()) {
		t.Errorf("overall model sum %s != TotalCost() %s", overallModelSum, u.TotalCost())
	}

	var dailySum decimal.Decimal
	for _, dt := range u.DailyTotals() {
		dailySum = dailySum.Add(dt.Cost)
	}
	if !dailySum.Equal(u.TotalCost()) {
		t.Errorf("DailyTotals sum %s != TotalCost() %s", dailySum, u.TotalCost())
	}
}

func TestNew_Idempotent(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	raw := page(
		bucket(start, result("p1", models.StringPtr("a"), "1"), result("p2", nil, "2")),
		bucket(start.Add(48*time.Hour), result("p1", models.StringPtr("b"), "3")),
	)

	first, second := New(raw), New(raw)

	if !first.TotalCost().Equal(second.TotalCost()) {
		t.Errorf("TotalCost differs: %s vs %s", first.TotalCost(), second.TotalCost())
	}
	a, b := first.ProjectsByCost(), second.ProjectsByCost()
	for i := range a {
		if a[i].ProjectID != b[i].ProjectID || !a[i].TotalCost.Equal(b[i].TotalCost) {
			t.Errorf("ProjectsByCost()[%d] differs: %+v vs %+v", i, a[i], b[i])
		}
		if len(a[i].DailyCosts) != len(b[i].DailyCosts) {
			t.Errorf("DailyCosts length differs for %s", a[i].ProjectID)
		}
	}
}

func TestAccessorsReturnCopies(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	u := New(page(bucket(start, result("p1", models.StringPtr("gpt-4"), "1"))))

	u.UsageByModel()[Model("gpt-4")] = dec("99")
	u.ProjectDailyCosts("p1")[0].Models[Model("gpt-4")] = dec("99")
	u.Projects()[0].ModelsUsed[Model("gpt-4")] = dec("99")
	u.AllDates()[0] = "1999-01-01"

	if !u.UsageByModel()[Model("gpt-4")].Equal(dec("1")) {
		t.Error("UsageByModel() exposed internal state")
	}
	if !u.ProjectDailyCosts("p1")[0].Models[Model("gpt-4")].Equal(dec("1")) {
		t.Error("ProjectDailyCosts() exposed internal state")
	}
	if !u.Projects()[0].ModelsUsed[Model("gpt-4")].Equal(dec("1")) {
		t.Error("Projects() exposed internal state")
	}
	if u.AllDates()[0] != "2024-03-01" {
		t.Error("AllDates() exposed internal state")
	}
}

func TestPercent(t *testing.T) {
	tests := []struct {
		name  string
		part  string
		total string
		want  float64
	}{
		{"quarter", "25", "100", 25},
		{"zero total", "5", "0", 0},
		{"negative total", "-1", "-4", 25},
		{"whole", "3.5", "3.5", 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Percent(dec(tt.part), dec(tt.total)); got != tt.want {
				t.Errorf("Percent() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAverageDailyCost(t *testing.T) {
	d := func(day int) time.Time { return time.Date(2024, 3, day, 0, 0, 0, 0, time.UTC) }

	// Two active days out of a ten-day span: average uses active days only.
	u := New(page(
		bucket(d(1), result("p1", nil, "6")),
		bucket(d(10), result("p1", nil, "4")),
	))

	p := u.Projects()[0]
	if got := AverageDailyCost(p); !got.Equal(dec("5")) {
		t.Errorf("AverageDailyCost() = %s, want 5", got)
	}
	if got := AverageDailyCost(ProjectUsage{}); !got.IsZero() {
		t.Errorf("AverageDailyCost(empty) = %s, want 0", got)
	}
}

func TestModelKeysByCost(t *testing.T) {
	m := map[ModelKey]decimal.Decimal{
		Model("b"):               dec("1"),
		Model("a"):               dec("1"),
		Model("big"):             dec("10"),
		Unspecified:              dec("0.5"),
		Model(UnknownModelLabel): dec("0.5"),
	}

	got := ModelKeysByCost(m)
	want := []ModelKey{Model("big"), Model("a"), Model("b"), Model(UnknownModelLabel), Unspecified}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ModelKeysByCost()[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestDailyTotals(t *testing.T) {
	d := func(day int) time.Time { return time.Date(2024, 3, day, 0, 0, 0, 0, time.UTC) }
	u := New(page(
		bucket(d(2), result("p1", nil, "1"), result("p2", nil, "2")),
		bucket(d(1), result("p2", nil, "4")),
	))

	got := u.DailyTotals()
	if len(got) != 2 {
		t.Fatalf("len(DailyTotals) = %d, want 2", len(got))
	}
	if got[0].Date != "2024-03-01" || !got[0].Cost.Equal(dec("4")) {
		t.Errorf("DailyTotals()[0] = %+v", got[0])
	}
	if got[1].Date != "2024-03-02" || !got[1].Cost.Equal(dec("3")) {
		t.Errorf("DailyTotals()[1] = %+v", got[1])
	}
}
