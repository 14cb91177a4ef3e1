// Package upgrade turns parsed trial values into per-player deltas and merges them into
// an upgrade matrix.
package upgrade

import "github.com/omarshaarawi/upgradebot/internal/models"

// ComputeDeltas subtracts the baseline from every trial. The baseline itself and empty
// labels are skipped.
func ComputeDeltas(trials models.PlayerTrials) models.Deltas {
	baseline := trials[models.CurrentLabel]

	deltas := make(models.Deltas, len(trials))
	for label, value := range trials {
		if label == models.CurrentLabel || label == "" {
			continue
		}
		deltas[label] = value - baseline
	}
	return deltas
}

// Accumulator collects per-player deltas in first-seen order. A second report for the
// same player replaces the earlier deltas but keeps the original row position.
// It is not safe for concurrent use.
type Accumulator struct {
	order  []string
	deltas map[string]models.Deltas
}

func NewAccumulator() *Accumulator {
	return &Accumulator{deltas: make(map[string]models.Deltas)}
}

func (a *Accumulator) Add(player string, deltas models.Deltas) {
	if _, ok := a.deltas[player]; !ok {
		a.order = append(a.order, player)
	}
	a.deltas[player] = deltas
}

func (a *Accumulator) AddReport(report models.PlayerReport) {
	a.Add(report.Player, ComputeDeltas(report.Trials))
}

func (a *Accumulator) Len() int {
	return len(a.order)
}
