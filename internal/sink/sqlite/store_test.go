package sqlite

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/omarshaarawi/upgradebot/internal/models"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "upgrades.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}
	})
	return store
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open("")
	if err == nil {
		t.Fatalf("expected error")
	}
}

func TestLatestEmptyStore(t *testing.T) {
	store := openStore(t)

	_, ok, err := store.Latest(context.Background())
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if ok {
		t.Fatalf("Latest() ok = true, want false")
	}
}

func TestWriteThenLatestRestoresTable(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	first := models.UpgradeMatrix{
		Columns:   []string{"crit"},
		Rows:      []models.UpgradeRow{{Player: "Old", Deltas: models.Deltas{"crit": 1}}},
		UpdatedAt: time.UnixMilli(1_700_000_000_000),
	}
	if err := store.Write(ctx, first); err != nil {
		t.Fatalf("write first: %v", err)
	}

	second := models.UpgradeMatrix{
		Columns: []string{"agi", "str", "zeal"},
		Rows: []models.UpgradeRow{
			{Player: "Jaina", Deltas: models.Deltas{"agi": 2.5, "zeal": 0}},
			{Player: "Arthas", Deltas: models.Deltas{}},
			{Player: "Thrall", Deltas: models.Deltas{"str": -4}},
		},
		UpdatedAt: time.UnixMilli(1_700_000_360_000),
	}
	if err := store.Write(ctx, second); err != nil {
		t.Fatalf("write second: %v", err)
	}

	got, ok, err := store.Latest(ctx)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if !ok {
		t.Fatalf("Latest() ok = false, want true")
	}
	if !got.UpdatedAt.Equal(second.UpdatedAt) {
		t.Fatalf("UpdatedAt = %v, want %v", got.UpdatedAt, second.UpdatedAt)
	}
	if !reflect.DeepEqual(got.Table(), second.Table()) {
		t.Fatalf("Table() = %v, want %v", got.Table(), second.Table())
	}

	var runs int
	if err := store.sqlDB.QueryRow(`SELECT COUNT(*) FROM matrix_runs`).Scan(&runs); err != nil {
		t.Fatalf("count runs: %v", err)
	}
	if runs != 1 {
		t.Fatalf("runs = %d, want 1", runs)
	}
}
