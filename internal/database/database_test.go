package database

import (
	"path/filepath"
	"testing"

	"ledgerengine/internal/logger"
)

func init() {
	logger.Init("test")
}

func TestNewConfig_RejectsUnknownDriver(t *testing.T) {
	t.Setenv("DB_DRIVER", "oracle")

	if _, err := NewConfig(); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}

func TestConfig_URLs(t *testing.T) {
	cfg := &Config{Host: "db", Port: "5432", User: "u", Password: "p", DBName: "ledger", SSLMode: "disable"}

	if got := cfg.DSN(); got != "host=db port=5432 user=u password=p dbname=ledger sslmode=disable" {
		t.Errorf("unexpected DSN %q", got)
	}
	if got := cfg.MigrationURL(); got != "postgres://u:p@db:5432/ledger?sslmode=disable" {
		t.Errorf("unexpected migration URL %q", got)
	}
}

func TestManager_SQLiteMigrate(t *testing.T) {
	cfg := &Config{Driver: DriverSQLite, SQLitePath: filepath.Join(t.TempDir(), "ledger.db")}

	m, err := NewManager(cfg)
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	defer m.Close()

	if err := m.Migrate(); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}

	for _, table := range []string{"users", "categories", "incomes", "expenses", "goals"} {
		if !m.DB().Migrator().HasTable(table) {
			t.Errorf("expected table %q after migration", table)
		}
	}
}
