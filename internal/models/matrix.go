package models

import "strconv"

const PersonHeader = "Person"

// Table renders the matrix as a header row plus one row per player. Missing cells are
// left blank so they stay distinct from a zero delta.
func (m UpgradeMatrix) Table() [][]string {
	table := make([][]string, 0, len(m.Rows)+1)

	header := make([]string, 0, len(m.Columns)+1)
	header = append(header, PersonHeader)
	header = append(header, m.Columns...)
	table = append(table, header)

	for _, row := range m.Rows {
		record := make([]string, 0, len(m.Columns)+1)
		record = append(record, row.Player)
		for _, col := range m.Columns {
			v, ok := row.Deltas[col]
			if !ok {
				record = append(record, "")
				continue
			}
			record = append(record, FormatDelta(v))
		}
		table = append(table, record)
	}

	return table
}

func (m UpgradeMatrix) Value(player, stat string) (float64, bool) {
	for _, row := range m.Rows {
		if row.Player == player {
			v, ok := row.Deltas[stat]
			return v, ok
		}
	}
	return 0, false
}

func (m UpgradeMatrix) IsEmpty() bool {
	return len(m.Rows) == 0
}

func FormatDelta(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
