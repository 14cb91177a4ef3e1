package sims

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/omarshaarawi/upgradebot/internal/models"
	"github.com/omarshaarawi/upgradebot/internal/upgrade"
)

// ReportSource fetches a report's raw table.
type ReportSource interface {
	FetchReport(ctx context.Context, link string) (models.RawTable, error)
}

// Parser turns a raw table into a player report.
type Parser func(table models.RawTable, marker string) (models.PlayerReport, error)

type API struct {
	source      ReportSource
	parse       Parser
	marker      string
	concurrency int
}

func NewAPI(source ReportSource, parse Parser, marker string, concurrency int) *API {
	if concurrency < 1 {
		concurrency = 1
	}
	return &API{source: source, parse: parse, marker: marker, concurrency: concurrency}
}

type linkResult struct {
	report models.PlayerReport
	err    error
}

// Harvest fetches and parses every link, then reduces the reports into a matrix in link
// order. A failing link is logged and recorded; it never stops the others.
func (a *API) Harvest(ctx context.Context, links []string) models.Harvest {
	results := make([]linkResult, len(links))

	var g errgroup.Group
	g.SetLimit(a.concurrency)
	for i, link := range links {
		i, link := i, link
		g.Go(func() error {
			results[i] = a.harvestLink(ctx, link)
			return nil
		})
	}
	_ = g.Wait()

	harvest := models.Harvest{Links: links}
	acc := upgrade.NewAccumulator()
	for i, res := range results {
		link := links[i]
		if res.err != nil {
			slog.Error("Dropping report", "link", link, "error", res.err)
			harvest.Failures = append(harvest.Failures, models.LinkFailure{Link: link, Err: res.err})
			continue
		}
		for _, issue := range res.report.Issues {
			slog.Warn("Dropped invalid trial value", "link", link, "player", res.report.Player, "error", issue)
			harvest.Issues = append(harvest.Issues, fmt.Errorf("%s: %w", link, issue))
		}
		acc.AddReport(res.report)
	}

	harvest.Matrix = upgrade.BuildMatrix(acc)
	slog.Info("Harvested reports",
		"links", len(links),
		"players", len(harvest.Matrix.Rows),
		"columns", len(harvest.Matrix.Columns),
		"failures", len(harvest.Failures))
	return harvest
}

func (a *API) harvestLink(ctx context.Context, link string) linkResult {
	table, err := a.source.FetchReport(ctx, link)
	if err != nil {
		return linkResult{err: err}
	}

	report, err := a.parse(table, a.marker)
	if err != nil {
		return linkResult{err: fmt.Errorf("parsing %s: %w", link, err)}
	}
	return linkResult{report: report}
}
