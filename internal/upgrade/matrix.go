package upgrade

import (
	"sort"
	"time"

	"github.com/omarshaarawi/upgradebot/internal/models"
)

// BuildMatrix lays the accumulated deltas out as a matrix whose columns are the sorted
// union of every player's stat labels.
func BuildMatrix(acc *Accumulator) models.UpgradeMatrix {
	seen := make(map[string]struct{})
	for _, deltas := range acc.deltas {
		for stat := range deltas {
			seen[stat] = struct{}{}
		}
	}

	columns := make([]string, 0, len(seen))
	for stat := range seen {
		columns = append(columns, stat)
	}
	sort.Strings(columns)

	rows := make([]models.UpgradeRow, 0, len(acc.order))
	for _, player := range acc.order {
		rows = append(rows, models.UpgradeRow{Player: player, Deltas: acc.deltas[player]})
	}

	return models.UpgradeMatrix{
		Columns:   columns,
		Rows:      rows,
		UpdatedAt: time.Now(),
	}
}
