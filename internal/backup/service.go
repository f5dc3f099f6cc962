// Package backup writes compressed SQL dumps of the registration database.
package backup

import (
	"bufio"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"winsbygroup.com/prodreg/internal/sqlite"
)

const suffix = "_prodreg.sql.gz"

type Service struct {
	db   *sqlx.DB
	dir  string
	keep int
}

// NewService writes dumps into dir. Only the newest keep dumps are retained;
// keep <= 0 retains all of them.
func NewService(db *sqlx.DB, dir string, keep int) *Service {
	return &Service{db: db, dir: dir, keep: keep}
}

// Result describes one dump file.
type Result struct {
	Filename string    `json:"filename"`
	Path     string    `json:"path"`
	Size     int64     `json:"size"`
	Created  time.Time `json:"created"`
}

// Create snapshots the database and writes it as a gzip compressed dump that
// restores into a valid prodreg database.
func (s *Service) Create(ctx context.Context) (*Result, error) {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return nil, fmt.Errorf("create backup directory: %w", err)
	}

	now := time.Now().UTC()
	filename := now.Format("2006-01-02_15.04.05") + suffix
	path := filepath.Join(s.dir, filename)

	// VACUUM INTO gives a consistent copy while claims keep arriving
	snapshot := filepath.Join(s.dir, "snapshot.tmp.db")
	os.Remove(snapshot)
	defer os.Remove(snapshot)
	if _, err := s.db.ExecContext(ctx, `VACUUM INTO ?`, snapshot); err != nil {
		return nil, fmt.Errorf("vacuum into snapshot: %w", err)
	}

	src, err := sqlx.Open("sqlite3", "file:"+snapshot+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	defer src.Close()

	if err := writeFile(ctx, path, src, now); err != nil {
		os.Remove(path)
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat backup file: %w", err)
	}

	if err := s.prune(); err != nil {
		log.Printf("backup: prune: %v", err)
	}

	return &Result{Filename: filename, Path: path, Size: info.Size(), Created: now}, nil
}

// List returns the dumps on disk, newest first.
func (s *Service) List() ([]Result, error) {
	entries, err := os.ReadDir(s.dir)
	if os.IsNotExist(err) {
		return []Result{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read backup directory: %w", err)
	}

	out := []Result{}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), suffix) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, Result{
			Filename: e.Name(),
			Path:     filepath.Join(s.dir, e.Name()),
			Size:     info.Size(),
			Created:  info.ModTime().UTC(),
		})
	}

	// names start with the timestamp
	sort.Slice(out, func(i, j int) bool { return out[i].Filename > out[j].Filename })
	return out, nil
}

func (s *Service) prune() error {
	if s.keep <= 0 {
		return nil
	}
	all, err := s.List()
	if err != nil {
		return err
	}
	for _, r := range all[min(s.keep, len(all)):] {
		if err := os.Remove(r.Path); err != nil {
			return err
		}
	}
	return nil
}

func writeFile(ctx context.Context, path string, db *sqlx.DB, now time.Time) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create backup file: %w", err)
	}
	defer file.Close()

	gz := gzip.NewWriter(file)
	w := bufio.NewWriter(gz)
	if err := dump(ctx, w, db, now); err != nil {
		return fmt.Errorf("generate dump: %w", err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("write gzip data: %w", err)
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("close gzip writer: %w", err)
	}
	return file.Close()
}

// dump writes schema and rows as SQL statements
func dump(ctx context.Context, w io.Writer, db *sqlx.DB, now time.Time) error {
	fmt.Fprintf(w, "-- Prodreg Database Backup\n")
	fmt.Fprintf(w, "-- Generated: %s\n", now.Format(time.RFC3339))
	fmt.Fprintf(w, "PRAGMA application_id = %d;\n", sqlite.ApplicationID)
	fmt.Fprintf(w, "BEGIN TRANSACTION;\n\n")

	schemas, err := getSchemas(ctx, db)
	if err != nil {
		return err
	}
	for _, schema := range schemas {
		fmt.Fprintf(w, "%s;\n", schema.SQL)
	}
	fmt.Fprintln(w)

	tables, err := getUserTables(ctx, db)
	if err != nil {
		return err
	}
	for _, table := range tables {
		if err := writeInserts(ctx, w, db, table); err != nil {
			return fmt.Errorf("generate inserts for %s: %w", table, err)
		}
	}

	fmt.Fprintf(w, "COMMIT;\n")
	_, err = fmt.Fprintf(w, "PRAGMA journal_mode=WAL;\n")
	return err
}

type schemaObject struct {
	Type string `db:"type"`
	Name string `db:"name"`
	SQL  string `db:"sql"`
}

func getSchemas(ctx context.Context, db *sqlx.DB) ([]schemaObject, error) {
	var schemas []schemaObject
	query := `
		SELECT type, name, sql
		FROM sqlite_master
		WHERE sql IS NOT NULL
		  AND name NOT LIKE 'sqlite_%'
		ORDER BY
			CASE type
				WHEN 'table' THEN 1
				WHEN 'index' THEN 2
				WHEN 'trigger' THEN 3
				WHEN 'view' THEN 4
			END,
			name
	`
	if err := db.SelectContext(ctx, &schemas, query); err != nil {
		return nil, fmt.Errorf("query schemas: %w", err)
	}
	return schemas, nil
}

func getUserTables(ctx context.Context, db *sqlx.DB) ([]string, error) {
	var tables []string
	query := `
		SELECT name
		FROM sqlite_master
		WHERE type = 'table'
		  AND name NOT LIKE 'sqlite_%'
		ORDER BY name
	`
	if err := db.SelectContext(ctx, &tables, query); err != nil {
		return nil, fmt.Errorf("query tables: %w", err)
	}
	return tables, nil
}

func writeInserts(ctx context.Context, w io.Writer, db *sqlx.DB, table string) error {
	rows, err := db.QueryxContext(ctx, fmt.Sprintf("SELECT * FROM %q", table))
	if err != nil {
		return fmt.Errorf("query rows: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return fmt.Errorf("get columns: %w", err)
	}
	cols := strings.Join(quoteColumns(columns), ", ")

	for rows.Next() {
		row, err := rows.SliceScan()
		if err != nil {
			return fmt.Errorf("scan row: %w", err)
		}

		values := make([]string, len(row))
		for i, v := range row {
			values[i] = formatValue(v)
		}
		fmt.Fprintf(w, "INSERT INTO %q (%s) VALUES (%s);\n", table, cols, strings.Join(values, ", "))
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate rows: %w", err)
	}
	_, err = fmt.Fprintln(w)
	return err
}

func quoteColumns(columns []string) []string {
	quoted := make([]string, len(columns))
	for i, col := range columns {
		quoted[i] = fmt.Sprintf("%q", col)
	}
	return quoted
}

func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return quote(string(val))
	case string:
		return quote(val)
	case int64, float64:
		return fmt.Sprintf("%v", val)
	case bool:
		if val {
			return "1"
		}
		return "0"
	case time.Time:
		return quote(val.UTC().Format("2006-01-02 15:04:05"))
	default:
		return quote(fmt.Sprintf("%v", val))
	}
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
