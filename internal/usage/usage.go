// Package usage aggregates raw cost buckets into per-project, per-day and
// per-model totals.
package usage

import (
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/j-veylop/openai-costs-tui/internal/models"
)

// UnknownModelLabel is how records without a line item are displayed.
const UnknownModelLabel = "<unknown>"

// dateLayout is fixed width so lexical order equals calendar order.
const dateLayout = "2006-01-02"

// ModelKey identifies the model a charge is attributed to. Records without
// a line item share the Unspecified key, which never equals a real model,
// even one named like UnknownModelLabel.
type ModelKey struct {
	Name        string
	Unspecified bool
}

// Unspecified is the key shared by all records without a line item.
var Unspecified = ModelKey{Unspecified: true}

// Model returns the key for a named model.
func Model(name string) ModelKey {
	return ModelKey{Name: name}
}

// ModelOf resolves the key of a record's line item.
func ModelOf(lineItem *string) ModelKey {
	if lineItem == nil || *lineItem == "" {
		return Unspecified
	}
	return Model(*lineItem)
}

// String returns the display label of the key.
func (k ModelKey) String() string {
	if k.Unspecified {
		return UnknownModelLabel
	}
	return k.Name
}

// Label is String for display, except that a real model whose name equals
// UnknownModelLabel is quoted so it cannot be mistaken for Unspecified.
func (k ModelKey) Label() string {
	if !k.Unspecified && k.Name == UnknownModelLabel {
		return strconv.Quote(k.Name)
	}
	return k.String()
}

// DailyProjectCost is the cost of one project on one UTC calendar date.
type DailyProjectCost struct {
	Models    map[ModelKey]decimal.Decimal
	Date      string
	ProjectID string
	TotalCost decimal.Decimal
}

// ProjectUsage is the aggregate of one project over the whole window.
type ProjectUsage struct {
	ModelsUsed map[ModelKey]decimal.Decimal
	ProjectID  string
	TotalCost  decimal.Decimal
	DailyCosts []DailyProjectCost
}

// DailyTotal is the cost of all projects on one date.
type DailyTotal struct {
	Date string
	Cost decimal.Decimal
}

// Usage is an immutable aggregate built from one costs response.
// All accessors return copies.
type Usage struct {
	byProject map[string]*ProjectUsage
	byModel   map[ModelKey]decimal.Decimal
	raw       []models.CostBucket
	order     []string
	dates     []string
	total     decimal.Decimal
}

// New aggregates every bucket of page. A nil page yields an empty Usage.
func New(page *models.CostsPage) *Usage {
	u := &Usage{
		byProject: make(map[string]*ProjectUsage),
		byModel:   make(map[ModelKey]decimal.Decimal),
	}
	if page == nil {
		return u
	}

	u.raw = slices.Clone(page.Data)
	daily := make(map[string]map[string]*DailyProjectCost)

	for _, bucket := range page.Data {
		date := bucket.Start().Format(dateLayout)

		for _, result := range bucket.Results {
			model := ModelOf(result.LineItem)
			amount := result.Amount.Value

			p, ok := u.byProject[result.ProjectID]
			if !ok {
				p = &ProjectUsage{
					ProjectID:  result.ProjectID,
					ModelsUsed: make(map[ModelKey]decimal.Decimal),
				}
				u.byProject[result.ProjectID] = p
				u.order = append(u.order, result.ProjectID)
				daily[result.ProjectID] = make(map[string]*DailyProjectCost)
			}

			day, ok := daily[result.ProjectID][date]
			if !ok {
				day = &DailyProjectCost{
					Date:      date,
					ProjectID: result.ProjectID,
					Models:    make(map[ModelKey]decimal.Decimal),
				}
				daily[result.ProjectID][date] = day
			}

			p.TotalCost = p.TotalCost.Add(amount)
			p.ModelsUsed[model] = p.ModelsUsed[model].Add(amount)
			day.TotalCost = day.TotalCost.Add(amount)
			day.Models[model] = day.Models[model].Add(amount)
		}
	}

	var allDates []string
	for _, id := range u.order {
		p := u.byProject[id]

		days := lo.MapToSlice(daily[id], func(_ string, d *DailyProjectCost) DailyProjectCost {
			return *d
		})
		slices.SortFunc(days, func(a, b DailyProjectCost) int {
			return strings.Compare(a.Date, b.Date)
		})
		p.DailyCosts = days

		u.total = u.total.Add(p.TotalCost)
		for model, cost := range p.ModelsUsed {
			u.byModel[model] = u.byModel[model].Add(cost)
		}
		for _, d := range days {
			allDates = append(allDates, d.Date)
		}
	}

	u.dates = lo.Uniq(allDates)
	slices.Sort(u.dates)

	return u
}

// TotalCost returns the cost of all projects.
func (u *Usage) TotalCost() decimal.Decimal {
	return u.total
}

// ProjectTotalCost returns the cost of one project, zero when unseen.
func (u *Usage) ProjectTotalCost(projectID string) decimal.Decimal {
	p, ok := u.byProject[projectID]
	if !ok {
		return decimal.Zero
	}
	return p.TotalCost
}

// ProjectDailyCosts returns the ascending daily costs of one project,
// empty when unseen.
func (u *Usage) ProjectDailyCosts(projectID string) []DailyProjectCost {
	p, ok := u.byProject[projectID]
	if !ok {
		return []DailyProjectCost{}
	}
	return cloneDays(p.DailyCosts)
}

// AllDates returns every distinct date seen across projects, ascending.
func (u *Usage) AllDates() []string {
	return slices.Clone(u.dates)
}

// UsageByModel returns the overall per-model cost.
func (u *Usage) UsageByModel() map[ModelKey]decimal.Decimal {
	return maps.Clone(u.byModel)
}

// ProjectCount returns the number of distinct projects seen.
func (u *Usage) ProjectCount() int {
	return len(u.order)
}

// IsEmpty reports whether the response contained no buckets at all.
// A response made only of empty buckets is not empty.
func (u *Usage) IsEmpty() bool {
	return len(u.raw) == 0
}

// Projects returns every project aggregate in first-seen order.
func (u *Usage) Projects() []ProjectUsage {
	return lo.Map(u.order, func(id string, _ int) ProjectUsage {
		return cloneProject(u.byProject[id])
	})
}

// ProjectsByCost returns every project aggregate sorted by descending total.
// Equal totals keep first-seen order.
func (u *Usage) ProjectsByCost() []ProjectUsage {
	projects := u.Projects()
	slices.SortStableFunc(projects, func(a, b ProjectUsage) int {
		return b.TotalCost.Cmp(a.TotalCost)
	})
	return projects
}

// DailyTotals returns the cost of all projects per date, ascending.
func (u *Usage) DailyTotals() []DailyTotal {
	sums := make(map[string]decimal.Decimal, len(u.dates))
	for _, p := range u.byProject {
		for _, d := range p.DailyCosts {
			sums[d.Date] = sums[d.Date].Add(d.TotalCost)
		}
	}
	return lo.Map(u.dates, func(date string, _ int) DailyTotal {
		return DailyTotal{Date: date, Cost: sums[date]}
	})
}

// Raw returns the buckets the aggregate was built from.
func (u *Usage) Raw() []models.CostBucket {
	return slices.Clone(u.raw)
}

// Percent returns part as a percentage of total, or 0 when total is zero.
func Percent(part, total decimal.Decimal) float64 {
	if total.IsZero() {
		return 0
	}
	return part.Div(total).Mul(decimal.NewFromInt(100)).InexactFloat64()
}

// AverageDailyCost divides the project total by the number of days that
// had any charge. Days without records do not count.
func AverageDailyCost(p ProjectUsage) decimal.Decimal {
	if len(p.DailyCosts) == 0 {
		return decimal.Zero
	}
	return p.TotalCost.Div(decimal.NewFromInt(int64(len(p.DailyCosts))))
}

// ModelKeysByCost returns the keys of m by descending cost, ties by label.
func ModelKeysByCost(m map[ModelKey]decimal.Decimal) []ModelKey {
	keys := lo.Keys(m)
	slices.SortFunc(keys, func(a, b ModelKey) int {
		if c := m[b].Cmp(m[a]); c != 0 {
			return c
		}
		if c := strings.Compare(a.String(), b.String()); c != 0 {
			return c
		}
		// Real model named like the sentinel sorts before the sentinel.
		switch {
		case a.Unspecified == b.Unspecified:
			return 0
		case b.Unspecified:
			return -1
		default:
			return 1
		}
	})
	return keys
}

func cloneProject(p *ProjectUsage) ProjectUsage {
	return ProjectUsage{
		ProjectID:  p.ProjectID,
		TotalCost:  p.TotalCost,
		ModelsUsed: maps.Clone(p.ModelsUsed),
		DailyCosts: cloneDays(p.DailyCosts),
	}
}

func cloneDays(days []DailyProjectCost) []DailyProjectCost {
	out := make([]DailyProjectCost, len(days))
	for i, d := range days {
		d.Models = maps.Clone(d.Models)
		out[i] = d
	}
	return out
}
