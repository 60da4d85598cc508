package db

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"
)

func TestOpen_CreatesDatabase(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	database, err := Open(dbPath, Options{})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer database.Close()

	tables := []string{"projects", "operations", "config", "_migrations"}
	for _, table := range tables {
		var name string
		err := database.Conn().QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %s not found: %v", table, err)
		}
	}
}

func TestOpen_WALEnabled(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	database, err := Open(dbPath, Options{})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer database.Close()

	var journalMode string
	err = database.Conn().QueryRow("PRAGMA journal_mode").Scan(&journalMode)
	if err != nil {
		t.Fatalf("PRAGMA journal_mode error = %v", err)
	}

	if journalMode != "wal" {
		t.Errorf("journal_mode = %s, want wal", journalMode)
	}
}

func TestOpen_MigrationsIdempotent(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	db1, err := Open(dbPath, Options{})
	if err != nil {
		t.Fatalf("first Open() error = %v", err)
	}
	db1.Close()

	db2, err := Open(dbPath, Options{})
	if err != nil {
		t.Fatalf("second Open() error = %v", err)
	}
	defer db2.Close()

	var count int
	err = db2.Conn().QueryRow("SELECT COUNT(*) FROM _migrations").Scan(&count)
	if err != nil {
		t.Fatalf("count migrations error = %v", err)
	}

	if count != 2 {
		t.Errorf("migration count = %d, want 2", count)
	}
}

func TestPruneHistory(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	database, err := Open(dbPath, Options{})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer database.Close()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		_, err := database.Conn().Exec(`
			INSERT INTO operations (id, type, project_path, status, created_at)
			VALUES (?, 'add_shot', '/p', 'succeeded', ?)
		`, fmt.Sprintf("op-%d", i), base.Add(time.Duration(i)*time.Minute).Format(time.RFC3339))
		if err != nil {
			t.Fatalf("insert operation error = %v", err)
		}
	}

	if err := database.pruneHistory(2); err != nil {
		t.Fatalf("pruneHistory() error = %v", err)
	}

	rows, err := database.Conn().Query("SELECT id FROM operations ORDER BY created_at DESC")
	if err != nil {
		t.Fatalf("query error = %v", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			t.Fatalf("scan error = %v", err)
		}
		ids = append(ids, id)
	}
	if len(ids) != 2 || ids[0] != "op-4" || ids[1] != "op-3" {
		t.Errorf("remaining operations = %v, want [op-4 op-3]", ids)
	}
}

func insertOperations(t *testing.T, database *DB, n int) {
	t.Helper()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		_, err := database.Conn().Exec(`
			INSERT INTO operations (id, type, project_path, status, created_at)
			VALUES (?, 'add_folder', '/p', 'succeeded', ?)
		`, fmt.Sprintf("op-%d", i), base.Add(time.Duration(i)*time.Minute).Format(time.RFC3339))
		if err != nil {
			t.Fatalf("insert operation error = %v", err)
		}
	}
}

func countOperations(t *testing.T, database *DB) int {
	t.Helper()
	var n int
	if err := database.Conn().QueryRow("SELECT COUNT(*) FROM operations").Scan(&n); err != nil {
		t.Fatalf("count operations error = %v", err)
	}
	return n
}

func TestOpen_HistoryLimit(t *testing.T) {
	tests := []struct {
		name  string
		limit int
		want  int
	}{
		{"explicit limit", 3, 3},
		{"default keeps all below cap", 0, 5},
		{"negative keeps all", -1, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dbPath := filepath.Join(t.TempDir(), "test.db")

			first, err := Open(dbPath, Options{})
			if err != nil {
				t.Fatalf("Open() error = %v", err)
			}
			insertOperations(t, first, 5)
			first.Close()

			reopened, err := Open(dbPath, Options{HistoryLimit: tt.limit})
			if err != nil {
				t.Fatalf("reopen error = %v", err)
			}
			defer reopened.Close()

			if got := countOperations(t, reopened); got != tt.want {
				t.Errorf("operations after reopen = %d, want %d", got, tt.want)
			}
		})
	}
}
