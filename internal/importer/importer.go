package importer

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"winsbygroup.com/prodreg/internal/registration"
	"winsbygroup.com/prodreg/internal/sqlite"
)

var ErrUnsupportedFile = errors.New("unsupported file type")

// Result counts accepted and rejected data lines. Blank lines count as
// neither.
type Result struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

type Service struct {
	regSvc *registration.Service
}

func NewService(regSvc *registration.Service) *Service {
	return &Service{regSvc: regSvc}
}

// Supported reports whether filename has an extension Import can read.
func Supported(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".txt", ".xls", ".xlsx":
		return true
	}
	return false
}

// Import bulk loads serial number to product id pairs as unclaimed rows.
// Each line must hold exactly two fields: serial number and a base 10
// product id. Bad lines and serials that already exist are skipped.
func (s *Service) Import(ctx context.Context, filename string, r io.Reader) (*Result, error) {
	rows, err := readRows(filename, r)
	if err != nil {
		return nil, err
	}

	res := &Result{}
	date := s.regSvc.Now()

	err = s.regSvc.WithTx(ctx, func(tx *sqlx.Tx) error {
		for i, row := range rows {
			rec := i + 1
			if row == nil {
				res.Skipped++
				log.Printf("import %s record %d: unreadable", filename, rec)
				continue
			}
			serial, productID, err := parseRow(row)
			if err != nil {
				res.Skipped++
				log.Printf("import %s record %d: %v", filename, rec, err)
				continue
			}

			// A failed insert aborts only its own statement
			if err := s.regSvc.CreateTx(ctx, tx, serial, productID, date); err != nil {
				res.Skipped++
				if sqlite.IsUniqueConstraintError(err) {
					log.Printf("import %s record %d: serial %q already exists", filename, rec, serial)
				} else {
					log.Printf("import %s record %d: %v", filename, rec, err)
				}
				continue
			}
			res.Imported++
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("import %s: %w", filename, err)
	}

	log.Printf("import %s: %d imported, %d skipped", filename, res.Imported, res.Skipped)
	return res, nil
}

func parseRow(row []string) (string, int64, error) {
	if len(row) != 2 {
		return "", 0, fmt.Errorf("expected 2 fields, got %d", len(row))
	}

	serial := registration.SanitizeSerial(row[0])
	if serial == "" {
		return "", 0, errors.New("empty serial number")
	}

	raw := strings.TrimSpace(row[1])
	productID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || productID <= 0 {
		return "", 0, fmt.Errorf("invalid product id %q", raw)
	}

	return serial, productID, nil
}

// readRows returns the data lines of the file. A nil row marks a line the
// parser could not read.
func readRows(filename string, r io.Reader) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".txt", ".xls":
		return readText(r)
	case ".xlsx":
		return readWorkbook(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFile, filepath.Ext(filename))
	}
}

// maxLine bounds a single text line; anything longer fails the import.
const maxLine = 1 << 20

// readText parses every line on its own, so a stray quote spoils only its
// own line. Blank lines are dropped.
func readText(r io.Reader) ([][]string, error) {
	// UTF-8 without BOM passes through; a UTF-8 or UTF-16 BOM selects the decoder
	dec := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))

	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 64*1024), maxLine)

	var rows [][]string
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		rows = append(rows, parseLine(line))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read table: %w", err)
	}
	return rows, nil
}

// parseLine splits one line into fields, or returns nil when it cannot.
func parseLine(line string) []string {
	cr := csv.NewReader(strings.NewReader(line))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	rec, err := cr.Read()
	if err != nil {
		return nil
	}
	return rec
}

func readWorkbook(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}

	all, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}

	rows := make([][]string, 0, len(all))
	for _, row := range all {
		if isBlank(row) {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
