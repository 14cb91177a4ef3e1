package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/omarshaarawi/upgradebot/internal/api/raidbots"
	"github.com/omarshaarawi/upgradebot/internal/models"
	"github.com/omarshaarawi/upgradebot/internal/repository/memory"
	"github.com/omarshaarawi/upgradebot/internal/sink"
)

const noDataMessage = "No sims loaded yet. Paste a report list with /sims."

var markdownEscaper = strings.NewReplacer("_", "\\_", "*", "\\*", "`", "\\`", "[", "\\[")

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

type Harvester interface {
	Harvest(ctx context.Context, links []string) models.Harvest
}

type UpgradeService struct {
	api  Harvester
	repo *memory.Repository
	out  sink.Sink
	host string
}

func NewUpgradeService(api Harvester, repo *memory.Repository, out sink.Sink, host string) *UpgradeService {
	return &UpgradeService{api: api, repo: repo, out: out, host: host}
}

// Refresh harvests every report anchor found in text and replaces the stored matrix.
func (s *UpgradeService) Refresh(ctx context.Context, text string) (string, error) {
	return s.RefreshLinks(ctx, s.ExtractLinks(text))
}

func (s *UpgradeService) RefreshLinks(ctx context.Context, links []string) (string, error) {
	harvest := s.api.Harvest(ctx, links)
	s.repo.SaveMatrix(harvest.Matrix)

	if s.out != nil {
		if err := s.out.Write(ctx, harvest.Matrix); err != nil {
			slog.Error("Error writing matrix", "error", err)
			return "", fmt.Errorf("matrix updated but writing output failed: %w", err)
		}
	}

	return formatHarvestSummary(harvest), nil
}

func (s *UpgradeService) ExtractLinks(text string) []string {
	return raidbots.ExtractLinks(text, s.host)
}

// MatchLink reports whether raw is a report link on the configured host.
func (s *UpgradeService) MatchLink(raw string) (string, bool) {
	return raidbots.MatchReportLink(raw, s.host)
}

func formatHarvestSummary(h models.Harvest) string {
	var sb strings.Builder
	sb.WriteString("🎰 *Upgrade Sims Updated*\n\n")
	sb.WriteString(fmt.Sprintf("Links: %d\n", len(h.Links)))
	sb.WriteString(fmt.Sprintf("Players: %d\n", len(h.Matrix.Rows)))
	sb.WriteString(fmt.Sprintf("Stats: %d\n", len(h.Matrix.Columns)))

	if len(h.Links) == 0 {
		sb.WriteString("\nNo report links found in the input.")
		return sb.String()
	}

	if len(h.Failures) > 0 {
		sb.WriteString(fmt.Sprintf("\n⚠️ *%d failed:*\n", len(h.Failures)))
		for _, f := range h.Failures {
			sb.WriteString(fmt.Sprintf("  • %s\n", escapeMarkdown(f.Link)))
		}
	}
	if len(h.Issues) > 0 {
		sb.WriteString(fmt.Sprintf("\n%d invalid values skipped.\n", len(h.Issues)))
	}

	return sb.String()
}

// Matrix renders the stored matrix as a monospace table.
func (s *UpgradeService) Matrix() (string, error) {
	matrix := s.repo.GetMatrix()
	if matrix == nil {
		return noDataMessage, nil
	}
	if matrix.IsEmpty() {
		return "📊 The last update found no players.", nil
	}

	var table strings.Builder
	w := tabwriter.NewWriter(&table, 0, 0, 1, ' ', 0)
	for i, record := range matrix.Table() {
		if i > 0 {
			record = roundRecord(record)
		}
		fmt.Fprintln(w, strings.Join(record, "\t"))
	}
	if err := w.Flush(); err != nil {
		return "", fmt.Errorf("error rendering matrix: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("📊 *Upgrade Matrix*\n")
	sb.WriteString("```\n")
	sb.WriteString(table.String())
	sb.WriteString("```\n")
	sb.WriteString(formatUpdated(matrix.UpdatedAt))
	return sb.String(), nil
}

func roundRecord(record []string) []string {
	out := make([]string, len(record))
	out[0] = record[0]
	for i := 1; i < len(record); i++ {
		if record[i] == "" {
			out[i] = "-"
			continue
		}
		v, err := strconv.ParseFloat(record[i], 64)
		if err != nil {
			out[i] = record[i]
			continue
		}
		out[i] = strconv.FormatFloat(v, 'f', 1, 64)
	}
	return out
}

// PlayerUpgrades lists one player's deltas, best first.
func (s *UpgradeService) PlayerUpgrades(name string) (string, error) {
	matrix := s.repo.GetMatrix()
	if matrix == nil {
		return noDataMessage, nil
	}

	players := make([]string, len(matrix.Rows))
	for i, row := range matrix.Rows {
		players[i] = row.Player
	}
	player, ok := bestMatch(name, players)
	if !ok {
		return fmt.Sprintf("🔍 No player found matching '%s'.", escapeMarkdown(name)), nil
	}

	var upgrades []models.PlayerUpgrade
	for _, row := range matrix.Rows {
		if row.Player != player {
			continue
		}
		for stat, delta := range row.Deltas {
			upgrades = append(upgrades, models.PlayerUpgrade{Stat: stat, Delta: delta})
		}
	}
	sort.Slice(upgrades, func(i, j int) bool {
		if upgrades[i].Delta != upgrades[j].Delta {
			return upgrades[i].Delta > upgrades[j].Delta
		}
		return upgrades[i].Stat < upgrades[j].Stat
	})

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("*%s*\n", escapeMarkdown(player)))
	sb.WriteString("━━━━━━━━━━━━━━━━\n")
	if len(upgrades) == 0 {
		sb.WriteString("No upgrade sims for this player.")
		return sb.String(), nil
	}
	for _, u := range upgrades {
		sb.WriteString(fmt.Sprintf("%s: %+.1f\n", escapeMarkdown(u.Stat), u.Delta))
	}
	return sb.String(), nil
}

// StatRanking ranks players by how much a single stat label gains them.
func (s *UpgradeService) StatRanking(label string) (string, error) {
	matrix := s.repo.GetMatrix()
	if matrix == nil {
		return noDataMessage, nil
	}

	stat, ok := bestMatch(label, matrix.Columns)
	if !ok {
		return fmt.Sprintf("🔍 No stat found matching '%s'.", escapeMarkdown(label)), nil
	}

	var ranking []models.StatRankingEntry
	for _, row := range matrix.Rows {
		if delta, ok := row.Deltas[stat]; ok {
			ranking = append(ranking, models.StatRankingEntry{Player: row.Player, Delta: delta})
		}
	}
	sort.SliceStable(ranking, func(i, j int) bool {
		return ranking[i].Delta > ranking[j].Delta
	})

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🏆 *%s*\n\n", escapeMarkdown(stat)))
	for i, r := range ranking {
		sb.WriteString(fmt.Sprintf("%d. %s %+.1f\n", i+1, escapeMarkdown(r.Player), r.Delta))
	}
	return sb.String(), nil
}

func (s *UpgradeService) LastUpdated() (string, error) {
	matrix := s.repo.GetMatrix()
	if matrix == nil {
		return noDataMessage, nil
	}
	return formatUpdated(matrix.UpdatedAt), nil
}

func formatUpdated(t time.Time) string {
	return fmt.Sprintf("Last Updated: %s", t.Format(time.DateOnly))
}
