package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/swiftbasket/swiftbasket-backend/pkg/migrate"
)

func TestWalletMigrationContainsConstraints(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_wallet.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no wallet migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS wallet_accounts",
		"CHECK (balance >= 0)",
		"CREATE TABLE IF NOT EXISTS wallet_entries",
		"CHECK (amount > 0)",
		"reference TEXT NOT NULL UNIQUE",
		"DROP TABLE IF EXISTS wallet_entries",
		"DROP TABLE IF EXISTS wallet_accounts",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestMigrationDirIsValid(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("migrations dir invalid: %v", err)
	}
}
