package raidbots

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/omarshaarawi/upgradebot/internal/models"
)

const labelSeparator = "//"

var (
	errMissingValue = errors.New("missing value field")
	errNotFinite    = errors.New("value is not a finite number")
)

// ParseReport reads one player's baseline and trial values out of a report table.
//
// Row 1 holds the player name and the baseline. Any row whose first field contains
// marker is a trial: its label is the last "//" segment and its value the second field.
// A label seen more than once keeps its highest value. Trial cells that are not numbers
// are dropped and reported in Issues.
func ParseReport(table models.RawTable, marker string) (models.PlayerReport, error) {
	if len(table) < 2 {
		return models.PlayerReport{}, fmt.Errorf("%w: expected at least 2 rows, got %d", ErrMalformedReport, len(table))
	}
	nameRow := table[1]
	if len(nameRow) < 2 {
		return models.PlayerReport{}, fmt.Errorf("%w: row 1 has %d fields, expected at least 2", ErrMalformedReport, len(nameRow))
	}

	player := nameRow[0]
	baseline, err := parseValue(nameRow[1])
	if err != nil {
		return models.PlayerReport{}, fmt.Errorf("%w: baseline for %q: %w", ErrMalformedReport, player, &NumericParseError{
			Row:   1,
			Label: models.CurrentLabel,
			Value: nameRow[1],
			Err:   err,
		})
	}

	report := models.PlayerReport{
		Player: player,
		Trials: models.PlayerTrials{models.CurrentLabel: baseline},
	}

	for i, row := range table {
		if len(row) == 0 || !strings.Contains(row[0], marker) {
			continue
		}

		label := TrialLabel(row[0])
		if len(row) < 2 {
			report.Issues = append(report.Issues, &NumericParseError{Row: i, Label: label, Err: errMissingValue})
			continue
		}

		value, err := parseValue(row[1])
		if err != nil {
			report.Issues = append(report.Issues, &NumericParseError{Row: i, Label: label, Value: row[1], Err: err})
			continue
		}

		if existing, ok := report.Trials[label]; ok && existing >= value {
			continue
		}
		report.Trials[label] = value
	}

	report.Baseline = report.Trials[models.CurrentLabel]
	return report, nil
}

// TrialLabel returns the last "//" segment of a profile field with one trailing slash
// removed.
func TrialLabel(field string) string {
	parts := strings.Split(field, labelSeparator)
	return strings.TrimSuffix(parts[len(parts)-1], "/")
}

func parseValue(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errNotFinite
	}
	return v, nil
}
