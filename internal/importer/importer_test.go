package importer_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/unicode"

	"winsbygroup.com/prodreg/internal/importer"
	"winsbygroup.com/prodreg/internal/registration"
	"winsbygroup.com/prodreg/internal/testutil"
)

func newImporter(t *testing.T) (*importer.Service, *registration.Service) {
	t.Helper()
	db := testutil.NewTestDB(t)
	regSvc := registration.NewService(db)
	return importer.NewService(regSvc), regSvc
}

func TestImportCSV(t *testing.T) {
	ctx := context.Background()
	imp, regSvc := newImporter(t)

	input := strings.Join([]string{
		"SN-100,42",
		"SN-101, 42 ",
		"\"SN,102\",43",
		"SN-103,42,extra",
		"SN-104,abc",
		"SN-105",
		"SN-106,4.2",
		",42",
		"",
		"SN-100,44",
		"SN-107,-3",
	}, "\n")

	res, err := imp.Import(ctx, "serials.csv", strings.NewReader(input))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if res.Imported != 3 {
		t.Errorf("expected 3 imported, got %d", res.Imported)
	}
	if res.Skipped != 7 {
		t.Errorf("expected 7 skipped, got %d", res.Skipped)
	}

	t.Run("accepted rows are unclaimed", func(t *testing.T) {
		reg, err := regSvc.GetBySerial(ctx, "SN-100")
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if reg.ProductID != 42 {
			t.Errorf("expected product 42, got %d", reg.ProductID)
		}
		if reg.Claimed() || reg.PurchaseProof != "" {
			t.Errorf("expected unclaimed row, got %+v", reg)
		}
		if reg.RegistrationDate == "" {
			t.Error("expected creation date")
		}
	})

	t.Run("quoted serial keeps its comma", func(t *testing.T) {
		reg, err := regSvc.GetBySerial(ctx, "SN,102")
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if reg.ProductID != 43 {
			t.Errorf("expected product 43, got %d", reg.ProductID)
		}
	})

	t.Run("rejected rows are absent", func(t *testing.T) {
		for _, serial := range []string{"SN-103", "SN-104", "SN-105", "SN-106", "SN-107"} {
			if _, err := regSvc.GetBySerial(ctx, serial); !errors.Is(err, registration.ErrNotFound) {
				t.Errorf("%s: expected ErrNotFound, got %v", serial, err)
			}
		}
	})

	t.Run("duplicate keeps first mapping", func(t *testing.T) {
		reg, _ := regSvc.GetBySerial(ctx, "SN-100")
		if reg.ProductID != 42 {
			t.Errorf("duplicate line overwrote product: %d", reg.ProductID)
		}
	})
}

func TestImportUnterminatedQuote(t *testing.T) {
	ctx := context.Background()
	imp, regSvc := newImporter(t)

	input := "SN-1,7\n\"SN-2,7\nSN-3,7\r\nSN-4,7\nSN-5,7\n"

	res, err := imp.Import(ctx, "serials.csv", strings.NewReader(input))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if res.Imported != 4 {
		t.Errorf("expected 4 imported, got %d", res.Imported)
	}
	if res.Skipped != 1 {
		t.Errorf("expected 1 skipped, got %d", res.Skipped)
	}

	for _, serial := range []string{"SN-1", "SN-3", "SN-4", "SN-5"} {
		if _, err := regSvc.GetBySerial(ctx, serial); err != nil {
			t.Errorf("expected %s imported: %v", serial, err)
		}
	}
	if _, err := regSvc.GetBySerial(ctx, "SN-2"); !errors.Is(err, registration.ErrNotFound) {
		t.Errorf("expected malformed line skipped, got %v", err)
	}
}

func TestImportQuotedFieldStaysOnItsLine(t *testing.T) {
	ctx := context.Background()
	imp, regSvc := newImporter(t)

	input := "\"SN-A\nSN-B\",7\nSN-C,7\n"

	res, err := imp.Import(ctx, "serials.csv", strings.NewReader(input))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	// the opening line has one field; the next reads as `SN-B"` and 7
	if res.Imported != 2 || res.Skipped != 1 {
		t.Errorf("expected 2 imported and 1 skipped, got %d and %d", res.Imported, res.Skipped)
	}
	if _, err := regSvc.GetBySerial(ctx, "SN-C"); err != nil {
		t.Errorf("expected SN-C imported: %v", err)
	}
	if _, err := regSvc.GetBySerial(ctx, "SN-A SN-B"); !errors.Is(err, registration.ErrNotFound) {
		t.Errorf("quoted field must not join two lines, got %v", err)
	}
}

func TestImportExistingSerialSkipped(t *testing.T) {
	ctx := context.Background()
	imp, regSvc := newImporter(t)

	if _, err := regSvc.Create(ctx, "OLD-1", 1); err != nil {
		t.Fatalf("create: %v", err)
	}
	if ok, err := regSvc.Claim(ctx, "OLD-1", 1, 99, ""); err != nil || !ok {
		t.Fatalf("claim: ok=%v err=%v", ok, err)
	}

	res, err := imp.Import(ctx, "serials.txt", strings.NewReader("OLD-1,1\nNEW-1,1\n"))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if res.Imported != 1 || res.Skipped != 1 {
		t.Errorf("expected 1/1, got %d/%d", res.Imported, res.Skipped)
	}

	reg, _ := regSvc.GetBySerial(ctx, "OLD-1")
	if reg.UserID != 99 {
		t.Errorf("import must not reset a claimed row, owner %d", reg.UserID)
	}
}

func TestImportEncodings(t *testing.T) {
	ctx := context.Background()

	t.Run("utf-8 with BOM", func(t *testing.T) {
		imp, regSvc := newImporter(t)
		input := "\ufeffBOM-1,5\r\nBOM-2,5\r\n"

		res, err := imp.Import(ctx, "serials.csv", strings.NewReader(input))
		if err != nil {
			t.Fatalf("import: %v", err)
		}
		if res.Imported != 2 {
			t.Fatalf("expected 2 imported, got %d", res.Imported)
		}
		if _, err := regSvc.GetBySerial(ctx, "BOM-1"); err != nil {
			t.Errorf("BOM must not be part of the serial: %v", err)
		}
	})

	t.Run("utf-16 little endian", func(t *testing.T) {
		imp, regSvc := newImporter(t)

		enc := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()
		data, err := enc.Bytes([]byte("Größe-1\t,9\r\nGröße-2,9\r\n"))
		if err != nil {
			t.Fatalf("encode: %v", err)
		}

		res, err := imp.Import(ctx, "export.xls", bytes.NewReader(data))
		if err != nil {
			t.Fatalf("import: %v", err)
		}
		if res.Imported != 2 {
			t.Fatalf("expected 2 imported, got %d (skipped %d)", res.Imported, res.Skipped)
		}
		if _, err := regSvc.GetBySerial(ctx, "Größe-1"); err != nil {
			t.Errorf("expected decoded serial: %v", err)
		}
	})
}

func TestImportXLSX(t *testing.T) {
	ctx := context.Background()
	imp, regSvc := newImporter(t)

	f := excelize.NewFile()
	defer f.Close()

	rows := [][]any{
		{"XL-1", 42},
		{"XL-2", "43"},
		{"XL-3", 42, "extra"},
		{"XL-4", "n/a"},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}

	res, err := imp.Import(ctx, "serials.XLSX", bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if res.Imported != 2 || res.Skipped != 2 {
		t.Errorf("expected 2 imported 2 skipped, got %d/%d", res.Imported, res.Skipped)
	}

	reg, err := regSvc.GetBySerial(ctx, "XL-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if reg.ProductID != 42 {
		t.Errorf("expected product 42, got %d", reg.ProductID)
	}
}

func TestImportUnsupportedFile(t *testing.T) {
	imp, _ := newImporter(t)

	_, err := imp.Import(context.Background(), "serials.json", strings.NewReader(`[]`))
	if !errors.Is(err, importer.ErrUnsupportedFile) {
		t.Fatalf("expected ErrUnsupportedFile, got %v", err)
	}

	if importer.Supported("a.json") || !importer.Supported("a.CSV") {
		t.Error("Supported reports wrong result")
	}
}

func TestImportBrokenWorkbook(t *testing.T) {
	imp, _ := newImporter(t)

	_, err := imp.Import(context.Background(), "serials.xlsx", strings.NewReader("not a zip"))
	if err == nil {
		t.Fatal("expected error for broken workbook")
	}
}
