package models

import "time"

// CurrentLabel is the reserved trial label holding a player's baseline.
const CurrentLabel = "current"

// RawTable is one report's data.csv, row by row.
type RawTable [][]string

// PlayerTrials maps a trial label to its simulated value. It includes CurrentLabel.
type PlayerTrials map[string]float64

// Deltas maps a stat label to trial value minus baseline.
type Deltas map[string]float64

type PlayerReport struct {
	Player   string
	Baseline float64
	Trials   PlayerTrials
	// Issues holds per-cell problems that were dropped instead of failing the report.
	Issues []error
}

type UpgradeRow struct {
	Player string
	Deltas Deltas
}

// UpgradeMatrix is the player × stat delta table.
type UpgradeMatrix struct {
	Columns   []string
	Rows      []UpgradeRow
	UpdatedAt time.Time
}

type LinkFailure struct {
	Link string
	Err  error
}

type Harvest struct {
	Links    []string
	Matrix   UpgradeMatrix
	Failures []LinkFailure
	Issues   []error
}

type PlayerUpgrade struct {
	Stat  string
	Delta float64
}

type StatRankingEntry struct {
	Player string
	Delta  float64
}
