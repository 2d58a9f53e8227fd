package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"github.com/gardar/hybridparse/pkg/document"
)

// SQLiteDBName is the database file created inside the storage directory.
const SQLiteDBName = "documents.db"

// SQLiteStore keeps records in a single SQLite table, with the parsed
// document stored as JSON next to the record columns.
type SQLiteStore struct {
	db     *sql.DB
	logger *logrus.Logger
}

// OpenSQLite opens (creating if needed) the database in dir.
func OpenSQLite(dir string, logger *logrus.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	dsn := filepath.Join(dir, SQLiteDBName) + "?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(10000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &SQLiteStore{db: db, logger: logger}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS documents (
			id                TEXT PRIMARY KEY,
			filename          TEXT NOT NULL,
			original_filename TEXT NOT NULL,
			file_path         TEXT NOT NULL,
			file_size         INTEGER NOT NULL,
			content_type      TEXT NOT NULL DEFAULT '',
			upload_time       INTEGER NOT NULL,
			parsing_status    TEXT NOT NULL,
			error_message     TEXT NOT NULL DEFAULT '',
			parsed_json       TEXT
		);
		CREATE INDEX IF NOT EXISTS idx_documents_upload ON documents(upload_time DESC);
	`)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// Close closes the database
func (s *SQLiteStore) Close() error { return s.db.Close() }

const selectColumns = `id, filename, original_filename, file_path, file_size, content_type,
	upload_time, parsing_status, error_message, parsed_json`

func (s *SQLiteStore) LoadRecord(ctx context.Context, id string) (*document.Record, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM documents WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load record %s: %w", id, err)
	}
	return rec, nil
}

func (s *SQLiteStore) SaveRecord(ctx context.Context, rec *document.Record) error {
	var parsed sql.NullString
	if rec.Parsed != nil {
		b, err := json.Marshal(rec.Parsed)
		if err != nil {
			return fmt.Errorf("failed to encode parsed document: %w", err)
		}
		parsed = sql.NullString{String: string(b), Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (id, filename, original_filename, file_path, file_size, content_type,
			upload_time, parsing_status, error_message, parsed_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			filename = excluded.filename,
			original_filename = excluded.original_filename,
			file_path = excluded.file_path,
			file_size = excluded.file_size,
			content_type = excluded.content_type,
			upload_time = excluded.upload_time,
			parsing_status = excluded.parsing_status,
			error_message = excluded.error_message,
			parsed_json = excluded.parsed_json`,
		rec.ID, rec.Filename, rec.OriginalFilename, rec.FilePath, rec.FileSize, rec.ContentType,
		rec.UploadTime.UnixNano(), string(rec.Status), rec.ErrorMessage, parsed)
	if err != nil {
		return fmt.Errorf("failed to save record %s: %w", rec.ID, err)
	}
	return nil
}

func (s *SQLiteStore) SaveParsedDocument(ctx context.Context, id string, doc *document.ParsedDocument) error {
	b, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode parsed document: %w", err)
	}
	res, err := s.db.ExecContext(ctx, `UPDATE documents SET parsed_json = ? WHERE id = ?`, string(b), id)
	if err != nil {
		return fmt.Errorf("failed to save parsed document %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("failed to save parsed document: record %s not found", id)
	}
	return nil
}

func (s *SQLiteStore) ListRecords(ctx context.Context) ([]*document.Record, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+selectColumns+` FROM documents ORDER BY upload_time DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	defer rows.Close()

	var recs []*document.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	return recs, nil
}

func (s *SQLiteStore) DeleteRecord(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete record %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to delete record %s: %w", id, err)
	}
	return n > 0, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(sc scanner) (*document.Record, error) {
	var (
		rec    document.Record
		status string
		nanos  int64
		parsed sql.NullString
	)
	err := sc.Scan(&rec.ID, &rec.Filename, &rec.OriginalFilename, &rec.FilePath, &rec.FileSize,
		&rec.ContentType, &nanos, &status, &rec.ErrorMessage, &parsed)
	if err != nil {
		return nil, err
	}
	rec.Status = document.Status(status)
	rec.UploadTime = time.Unix(0, nanos).UTC()

	if rec.Status == document.StatusCompleted && parsed.Valid {
		var doc document.ParsedDocument
		if err := json.Unmarshal([]byte(parsed.String), &doc); err != nil {
			return nil, fmt.Errorf("failed to decode parsed document: %w", err)
		}
		rec.Parsed = &doc
	}
	return &rec, nil
}
