package demodata_test

import (
	"os"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"winsbygroup.com/prodreg/internal/demodata"
	"winsbygroup.com/prodreg/internal/sqlite"
)

// TestDemoDataNotLoadedOnExistingDB verifies that demo data is only loaded
// when the database is newly created, not when it already exists.
// This mirrors the logic in server.Build() that checks isNewDB before loading.
func TestDemoDataNotLoadedOnExistingDB(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	// Step 1: Create database and add existing data
	db, err := sqlite.Open(dbPath, "DELETE")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	_, err = db.Exec(`INSERT INTO product (product_id, product_name) VALUES (7, 'Existing Kettle')`)
	if err != nil {
		db.Close()
		t.Fatalf("insert existing product: %v", err)
	}
	db.Close()

	// Step 2: Simulate server.Build() logic - check if DB exists BEFORE opening
	isNewDB := false
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		isNewDB = true
	}
	if isNewDB {
		t.Fatal("expected isNewDB to be false for existing database")
	}

	// Step 3: Reopen database (simulating server startup)
	db, err = sqlite.Open(dbPath, "DELETE")
	if err != nil {
		t.Fatalf("reopen db: %v", err)
	}
	defer db.Close()

	// Step 4: Simulate DemoMode=true with existing DB - should NOT load demo data
	demoMode := true
	if demoMode && isNewDB {
		if err := demodata.Load(db.DB); err != nil {
			t.Fatalf("load demo data: %v", err)
		}
	}

	// Step 5: Verify original data is intact (demo data was NOT loaded)
	var name string
	if err := db.QueryRow(`SELECT product_name FROM product WHERE product_id = 7`).Scan(&name); err != nil {
		t.Fatalf("existing product should still exist: %v", err)
	}
	if name != "Existing Kettle" {
		t.Errorf("existing product was overwritten: %q", name)
	}

	var demoCount int
	if err := db.QueryRow(`SELECT COUNT(*) FROM product_registration`).Scan(&demoCount); err != nil {
		t.Fatalf("count registrations: %v", err)
	}
	if demoCount != 0 {
		t.Error("demo data should NOT have been loaded on existing database")
	}
}

// TestDemoDataLoadedOnNewDB verifies that demo data IS loaded on a fresh database.
func TestDemoDataLoadedOnNewDB(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "newtest.db")

	isNewDB := false
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		isNewDB = true
	}
	if !isNewDB {
		t.Fatal("expected isNewDB to be true for non-existent database")
	}

	db, err := sqlite.Open(dbPath, "DELETE")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()

	if err := demodata.Load(db.DB); err != nil {
		t.Fatalf("load demo data: %v", err)
	}

	var unclaimed, claimed int
	if err := db.QueryRow(`SELECT COUNT(*) FROM product_registration WHERE user_id = 0`).Scan(&unclaimed); err != nil {
		t.Fatalf("count unclaimed: %v", err)
	}
	if err := db.QueryRow(`SELECT COUNT(*) FROM product_registration WHERE user_id <> 0`).Scan(&claimed); err != nil {
		t.Fatalf("count claimed: %v", err)
	}
	if unclaimed == 0 || claimed == 0 {
		t.Errorf("expected both unclaimed and claimed demo rows, got %d/%d", unclaimed, claimed)
	}

	var login string
	if err := db.QueryRow(`SELECT user_login FROM account WHERE user_id = ?`, demodata.CustomerID).Scan(&login); err != nil {
		t.Fatalf("demo customer missing: %v", err)
	}
}
