package backup_test

import (
	"compress/gzip"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"winsbygroup.com/prodreg/internal/backup"
	"winsbygroup.com/prodreg/internal/product"
	"winsbygroup.com/prodreg/internal/registration"
	"winsbygroup.com/prodreg/internal/sqlite"
	"winsbygroup.com/prodreg/internal/testutil"
)

func readDump(t *testing.T, path string) string {
	t.Helper()
	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open backup file: %v", err)
	}
	defer file.Close()

	gz, err := gzip.NewReader(file)
	if err != nil {
		t.Fatalf("create gzip reader: %v", err)
	}
	defer gz.Close()

	content, err := io.ReadAll(gz)
	if err != nil {
		t.Fatalf("read gzip content: %v", err)
	}
	return string(content)
}

func TestBackupService(t *testing.T) {
	ctx := context.Background()
	tmpDir := t.TempDir()

	db := testutil.NewTestDBAt(t, filepath.Join(tmpDir, "test.db"))

	if _, err := product.NewService(db).Create(ctx, &product.Product{ProductID: 7, ProductName: "O'Brien Kettle"}); err != nil {
		t.Fatalf("create product: %v", err)
	}
	regSvc := registration.NewService(db)
	if _, err := regSvc.Create(ctx, "ABC123", 7); err != nil {
		t.Fatalf("create registration: %v", err)
	}
	if _, err := regSvc.Claim(ctx, "ABC123", 7, 99, "2025/01/receipt.pdf"); err != nil {
		t.Fatalf("claim: %v", err)
	}

	backupSvc := backup.NewService(db, filepath.Join(tmpDir, "backups"), 0)
	result, err := backupSvc.Create(ctx)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if result.Size == 0 {
		t.Error("expected size > 0")
	}
	if !strings.HasSuffix(result.Filename, "_prodreg.sql.gz") {
		t.Errorf("expected filename to end with _prodreg.sql.gz, got %s", result.Filename)
	}

	dump := readDump(t, result.Path)
	for _, want := range []string{
		"CREATE TABLE",
		"BEGIN TRANSACTION",
		"COMMIT",
		"PRAGMA application_id",
		"'O''Brien Kettle'",
		"'ABC123'",
		"'2025/01/receipt.pdf'",
	} {
		if !strings.Contains(dump, want) {
			t.Errorf("expected dump to contain %q", want)
		}
	}

	t.Run("restores into a valid database", func(t *testing.T) {
		raw, err := sqlx.Open("sqlite3", filepath.Join(t.TempDir(), "restored.db"))
		if err != nil {
			t.Fatalf("open: %v", err)
		}
		defer raw.Close()

		if _, err := raw.Exec(dump); err != nil {
			t.Fatalf("restore: %v", err)
		}
		if err := sqlite.RunMigrations(raw.DB); err != nil {
			t.Fatalf("restored database rejected: %v", err)
		}

		var userID int64
		if err := raw.QueryRow(`SELECT user_id FROM product_registration WHERE serial_number = 'ABC123'`).Scan(&userID); err != nil {
			t.Fatalf("query restored row: %v", err)
		}
		if userID != 99 {
			t.Errorf("expected owner 99, got %d", userID)
		}
	})

	t.Run("no snapshot left behind", func(t *testing.T) {
		entries, _ := os.ReadDir(filepath.Join(tmpDir, "backups"))
		for _, e := range entries {
			if !strings.HasSuffix(e.Name(), "_prodreg.sql.gz") {
				t.Errorf("unexpected file %s", e.Name())
			}
		}
	})
}

func TestBackupRetention(t *testing.T) {
	ctx := context.Background()
	tmpDir := t.TempDir()
	dir := filepath.Join(tmpDir, "backups")
	db := testutil.NewTestDBAt(t, filepath.Join(tmpDir, "test.db"))

	// older dumps from earlier runs
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"2020-01-01_00.00.00", "2020-01-02_00.00.00", "2020-01-03_00.00.00"} {
		if err := os.WriteFile(filepath.Join(dir, name+"_prodreg.sql.gz"), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("keep me"), 0644); err != nil {
		t.Fatal(err)
	}

	svc := backup.NewService(db, dir, 2)
	result, err := svc.Create(ctx)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	list, err := svc.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 dumps kept, got %d", len(list))
	}
	if list[0].Filename != result.Filename {
		t.Errorf("expected newest dump first, got %s", list[0].Filename)
	}
	if list[1].Filename != "2020-01-03_00.00.00_prodreg.sql.gz" {
		t.Errorf("expected newest old dump kept, got %s", list[1].Filename)
	}
	if _, err := os.Stat(filepath.Join(dir, "notes.txt")); err != nil {
		t.Error("unrelated files must not be pruned")
	}
}

func TestListMissingDirectory(t *testing.T) {
	db := testutil.NewTestDB(t)
	list, err := backup.NewService(db, filepath.Join(t.TempDir(), "none"), 0).List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("expected empty list, got %d", len(list))
	}
}
