package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/j-veylop/openai-costs-tui/internal/config"
	"github.com/j-veylop/openai-costs-tui/internal/logger"
	"github.com/j-veylop/openai-costs-tui/internal/models"
	"github.com/j-veylop/openai-costs-tui/internal/projects"
	"github.com/j-veylop/openai-costs-tui/internal/services/billing"
	"github.com/j-veylop/openai-costs-tui/internal/ui/components"
	"github.com/j-veylop/openai-costs-tui/internal/usage"
)

func newReportCmd() *cobra.Command {
	var (
		rangeSlug string
		asJSON    bool
		limit     int
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Fetch costs once and print a summary",
		Long: `Fetch costs for one date range and print totals, the model breakdown
and projects ordered by cost.

Examples:
  oct report
  oct report --range last-30-days
  oct report --range last-month --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			preset, err := parsePreset(rangeSlug)
			if err != nil {
				return err
			}
			snap, cfg, err := fetchSnapshot(cmd.Context(), preset)
			if err != nil {
				return err
			}
			if asJSON {
				return writeReportJSON(cmd.OutOrStdout(), snap)
			}
			return writeReport(cmd.OutOrStdout(), snap, reportOptions{
				Limit:     limit,
				Threshold: decimal.NewFromFloat(cfg.CostAlertThreshold),
			})
		},
	}

	cmd.Flags().StringVar(&rangeSlug, "range", models.RangeThisMonth.Slug(), "date range ("+presetSlugs()+")")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of tables")
	cmd.Flags().IntVar(&limit, "limit", 0, "show at most this many projects (0 = all)")
	return cmd
}

// fetchSnapshot runs a single load without the session layer.
func fetchSnapshot(ctx context.Context, preset models.DateRangePreset) (*billing.Snapshot, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logCloser, err := logger.Init(cfg.LogLevel, cfg.LogPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	defer logCloser.Close()

	client, err := billing.NewClient(billing.Config{
		BaseURL:        cfg.APIBase,
		AdminKey:       cfg.AdminKey,
		OrganizationID: cfg.OrganizationID,
		Timeout:        cfg.RequestTimeout,
		CacheTTL:       cfg.CacheTTL,
	})
	if err != nil {
		return nil, nil, err
	}
	defer client.Close()

	svc := billing.NewService(client, billing.ServiceConfig{
		CostsLimit:    cfg.CostsLimit,
		ProjectsLimit: cfg.ProjectsLimit,
	})
	defer svc.Close()

	fetchCtx, seq := svc.BeginFetch(ctx)
	snap, err := svc.Fetch(fetchCtx, seq, preset.Resolve(time.Now()))
	return snap, cfg, err
}

type reportOptions struct {
	Threshold decimal.Decimal
	Limit     int
}

// writeReport prints snap as aligned text tables.
func writeReport(out io.Writer, snap *billing.Snapshot, opts reportOptions) error {
	u := snap.Usage
	total := u.TotalCost()

	fmt.Fprintf(out, "OpenAI costs, %s\n", snap.Range.Describe())
	fmt.Fprintf(out, "Total: %s across %d projects\n", components.FormatCurrency(total), u.ProjectCount())
	if p, ok := usage.ProjectMonthEnd(u, snap.Range, opts.Threshold); ok {
		fmt.Fprintf(out, "Projected month end: %s (%s/day, %s confidence)",
			components.FormatCurrency(p.Projected), components.FormatCurrency(p.DailyRate), p.Confidence)
		if p.Status != usage.ProjectionUnknown {
			fmt.Fprintf(out, ", alert %s", p.Status)
		}
		fmt.Fprintln(out)
	}
	fmt.Fprintln(out)

	if u.IsEmpty() {
		fmt.Fprintln(out, "No cost records in this range.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "MODEL\tCOST\tSHARE\t")
	byModel := u.UsageByModel()
	for _, k := range usage.ModelKeysByCost(byModel) {
		fmt.Fprintf(w, "%s\t%s\t%s\t\n", k.Label(), components.FormatCurrency(byModel[k]),
			components.FormatPercent(usage.Percent(byModel[k], total)))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintln(out)

	rows := u.ProjectsByCost()
	if opts.Limit > 0 && len(rows) > opts.Limit {
		rows = rows[:opts.Limit]
	}

	w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PROJECT\tID\tCOST\tSHARE\tAVG/DAY\tMODELS")
	for _, p := range rows {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			projectName(snap.Directory, p.ProjectID),
			p.ProjectID,
			components.FormatCurrency(p.TotalCost),
			components.FormatPercent(usage.Percent(p.TotalCost, total)),
			components.FormatCurrency(usage.AverageDailyCost(p)),
			strings.Join(modelNames(p), ", "))
	}
	return w.Flush()
}

type reportProject struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Models      []reportModel   `json:"models"`
	TotalCost   decimal.Decimal `json:"total_cost"`
	AverageCost decimal.Decimal `json:"average_daily_cost"`
}

// reportModel carries the raw model name. Charges without a line item set
// Unspecified instead, so a real model called "<unknown>" stays distinct.
type reportModel struct {
	Model       string          `json:"model"`
	Unspecified bool            `json:"unspecified,omitempty"`
	Cost        decimal.Decimal `json:"cost"`
}

func reportModels(costs map[usage.ModelKey]decimal.Decimal) []reportModel {
	return lo.Map(usage.ModelKeysByCost(costs), func(k usage.ModelKey, _ int) reportModel {
		return reportModel{Model: k.String(), Unspecified: k.Unspecified, Cost: costs[k]}
	})
}

type reportJSON struct {
	FetchedAt time.Time       `json:"fetched_at"`
	Range     string          `json:"range"`
	Start     string          `json:"start"`
	End       string          `json:"end"`
	Models    []reportModel   `json:"models"`
	Projects  []reportProject `json:"projects"`
	Total     decimal.Decimal `json:"total"`
}

// writeReportJSON prints snap as indented JSON. Amounts are strings so no
// precision is lost.
func writeReportJSON(out io.Writer, snap *billing.Snapshot) error {
	u := snap.Usage
	byModel := u.UsageByModel()

	report := reportJSON{
		FetchedAt: snap.FetchedAt,
		Range:     snap.Range.Label,
		Start:     snap.Range.StartDate(),
		End:       snap.Range.EndDate(),
		Total:     u.TotalCost(),
		Models:    reportModels(byModel),
		Projects: lo.Map(u.ProjectsByCost(), func(p usage.ProjectUsage, _ int) reportProject {
			return reportProject{
				ID:          p.ProjectID,
				Name:        projectName(snap.Directory, p.ProjectID),
				Models:      reportModels(p.ModelsUsed),
				TotalCost:   p.TotalCost,
				AverageCost: usage.AverageDailyCost(p),
			}
		}),
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(report)
}

func projectName(dir *projects.Directory, id string) string {
	return dir.Name(id)
}

func parsePreset(slug string) (models.DateRangePreset, error) {
	preset, ok := models.ParseDateRangePreset(slug)
	if !ok {
		return 0, fmt.Errorf("unknown range %q (want one of %s)", slug, presetSlugs())
	}
	return preset, nil
}

func presetSlugs() string {
	return strings.Join(lo.Map(models.DateRangePresets(), func(p models.DateRangePreset, _ int) string {
		return p.Slug()
	}), "|")
}

// modelNames lists the models p used, most expensive first.
func modelNames(p usage.ProjectUsage) []string {
	return lo.Map(usage.ModelKeysByCost(p.ModelsUsed), func(k usage.ModelKey, _ int) string {
		return k.Label()
	})
}
