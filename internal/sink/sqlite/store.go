package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/omarshaarawi/upgradebot/internal/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS matrix_runs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	created_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS matrix_columns (
	run_id INTEGER NOT NULL REFERENCES matrix_runs(id) ON DELETE CASCADE,
	position INTEGER NOT NULL,
	stat TEXT NOT NULL,
	PRIMARY KEY (run_id, position)
);
CREATE TABLE IF NOT EXISTS matrix_rows (
	run_id INTEGER NOT NULL REFERENCES matrix_runs(id) ON DELETE CASCADE,
	row_index INTEGER NOT NULL,
	player TEXT NOT NULL,
	PRIMARY KEY (run_id, row_index)
);
CREATE TABLE IF NOT EXISTS matrix_cells (
	run_id INTEGER NOT NULL,
	row_index INTEGER NOT NULL,
	stat TEXT NOT NULL,
	delta REAL NOT NULL,
	PRIMARY KEY (run_id, row_index, stat),
	FOREIGN KEY (run_id, row_index) REFERENCES matrix_rows(run_id, row_index) ON DELETE CASCADE
);
`

// Store keeps produced upgrade matrices in SQLite so the latest one survives restarts.
type Store struct {
	sqlDB *sql.DB
}

// Open opens the database at path and creates the matrix tables.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Write stores matrix as a new run. Older runs are removed.
func (s *Store) Write(ctx context.Context, matrix models.UpgradeMatrix) (err error) {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	createdAt := matrix.UpdatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	res, err := tx.ExecContext(ctx, `INSERT INTO matrix_runs (created_at) VALUES (?)`, createdAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("run id: %w", err)
	}

	for i, stat := range matrix.Columns {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO matrix_columns (run_id, position, stat) VALUES (?, ?, ?)`,
			runID, i, stat,
		); err != nil {
			return fmt.Errorf("insert column %q: %w", stat, err)
		}
	}

	for i, row := range matrix.Rows {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO matrix_rows (run_id, row_index, player) VALUES (?, ?, ?)`,
			runID, i, row.Player,
		); err != nil {
			return fmt.Errorf("insert row %q: %w", row.Player, err)
		}
		for stat, delta := range row.Deltas {
			if _, err = tx.ExecContext(ctx,
				`INSERT INTO matrix_cells (run_id, row_index, stat, delta) VALUES (?, ?, ?, ?)`,
				runID, i, stat, delta,
			); err != nil {
				return fmt.Errorf("insert cell %q/%q: %w", row.Player, stat, err)
			}
		}
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM matrix_runs WHERE id < ?`, runID); err != nil {
		return fmt.Errorf("prune runs: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Latest loads the most recently written matrix.
func (s *Store) Latest(ctx context.Context) (models.UpgradeMatrix, bool, error) {
	if s == nil || s.sqlDB == nil {
		return models.UpgradeMatrix{}, false, fmt.Errorf("storage is not configured")
	}

	var runID, createdAt int64
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT id, created_at FROM matrix_runs ORDER BY id DESC LIMIT 1`,
	).Scan(&runID, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.UpgradeMatrix{}, false, nil
	}
	if err != nil {
		return models.UpgradeMatrix{}, false, fmt.Errorf("query latest run: %w", err)
	}

	matrix := models.UpgradeMatrix{
		Columns:   []string{},
		Rows:      []models.UpgradeRow{},
		UpdatedAt: time.UnixMilli(createdAt),
	}

	if err := s.loadColumns(ctx, runID, &matrix); err != nil {
		return models.UpgradeMatrix{}, false, err
	}
	if err := s.loadRows(ctx, runID, &matrix); err != nil {
		return models.UpgradeMatrix{}, false, err
	}
	return matrix, true, nil
}

func (s *Store) loadColumns(ctx context.Context, runID int64, matrix *models.UpgradeMatrix) error {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT stat FROM matrix_columns WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return fmt.Errorf("query columns: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var stat string
		if err := rows.Scan(&stat); err != nil {
			return fmt.Errorf("scan column: %w", err)
		}
		matrix.Columns = append(matrix.Columns, stat)
	}
	return rows.Err()
}

func (s *Store) loadRows(ctx context.Context, runID int64, matrix *models.UpgradeMatrix) error {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT r.row_index, r.player, c.stat, c.delta
		 FROM matrix_rows r
		 LEFT JOIN matrix_cells c ON c.run_id = r.run_id AND c.row_index = r.row_index
		 WHERE r.run_id = ?
		 ORDER BY r.row_index`, runID)
	if err != nil {
		return fmt.Errorf("query rows: %w", err)
	}
	defer rows.Close()

	lastIndex := int64(-1)
	for rows.Next() {
		var (
			index  int64
			player string
			stat   sql.NullString
			delta  sql.NullFloat64
		)
		if err := rows.Scan(&index, &player, &stat, &delta); err != nil {
			return fmt.Errorf("scan row: %w", err)
		}
		if index != lastIndex {
			matrix.Rows = append(matrix.Rows, models.UpgradeRow{Player: player, Deltas: models.Deltas{}})
			lastIndex = index
		}
		if stat.Valid && delta.Valid {
			matrix.Rows[len(matrix.Rows)-1].Deltas[stat.String] = delta.Float64
		}
	}
	return rows.Err()
}
