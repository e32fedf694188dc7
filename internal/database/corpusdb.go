package database

import (
	"bufio"
	"context"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/crypto/sha3"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/leakscan/internal/model"
)

// FileName is the name of the index file inside the index directory.
const FileName = "leakscan.db"

// CorpusDB is a hashed index of email addresses and phone numbers found in
// imported breach dumps.
type CorpusDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures CorpusDB behavior.
type Options struct {
	// CreateIfNotExists creates the index file if it doesn't exist.
	// Lookups during a check open the index without it so that a missing
	// index is reported instead of silently created.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the options used by "corpus import".
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Match is one imported dump that contains the looked-up identifier.
type Match struct {
	// Source is the dump name given at import time.
	Source string

	// Kind is the kind of the matched token.
	Kind model.Kind

	// ImportedAt is when the token was first imported from Source.
	ImportedAt time.Time
}

// SourceSummary describes one imported dump.
type SourceSummary struct {
	// Name is the dump name given at import time.
	Name string

	// Entries is the number of distinct identifiers indexed from the dump.
	Entries int

	// LastImport is the time of the most recent import into this source.
	LastImport time.Time
}

// Open opens or creates the index in dbDir.
func Open(dbDir string, opts Options) (*CorpusDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w at %s (run \"leakscan corpus import\" first)", ErrDatabaseNotFound, dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check index path: %w", err)
		}
	} else if err := os.MkdirAll(dbDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create index directory: %w", err)
	}

	// mode=rw refuses to create a missing file, mode=rwc allows it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open index: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cdb := &CorpusDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := cdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return cdb, nil
}

// Close closes the database connection.
func (cdb *CorpusDB) Close() error {
	return cdb.db.Close()
}

// Path returns the index file path.
func (cdb *CorpusDB) Path() string {
	return cdb.dbPath
}

func (cdb *CorpusDB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS entries (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		source TEXT NOT NULL,
		kind TEXT NOT NULL,
		token_hash TEXT NOT NULL,
		imported_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(source, token_hash)
	);

	CREATE INDEX IF NOT EXISTS idx_entries_hash ON entries(token_hash);
	CREATE INDEX IF NOT EXISTS idx_entries_source ON entries(source);
	`

	_, err := cdb.db.ExecContext(context.Background(), schema)
	return err
}

// Import indexes every email address and phone number found in r under the
// given source name and returns how many new entries were stored.
// Tokens already indexed for the same source are ignored.
func (cdb *CorpusDB) Import(ctx context.Context, source string, r io.Reader) (int, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return 0, ErrEmptySourceName
	}

	tx, err := cdb.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin import: %w", err)
	}
	defer func() { _ = tx.Rollback() }() //nolint:errcheck // no-op after Commit

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR IGNORE INTO entries (source, kind, token_hash) VALUES (?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare import: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	reader := bufio.NewReader(transform.NewReader(r, unicode.BOMOverride(transform.Nop)))
	for {
		line, readErr := reader.ReadString('\n')
		for _, token := range Tokenize(strings.ToValidUTF8(line, "")) {
			target := model.NewTarget(token, model.KindUnknown)
			if target.Kind() != model.KindEmail && target.Kind() != model.KindPhone {
				continue
			}

			res, err := stmt.ExecContext(ctx, source, target.Kind().String(), HashToken(target.Value()))
			if err != nil {
				return 0, fmt.Errorf("failed to insert entry: %w", err)
			}
			if n, err := res.RowsAffected(); err == nil {
				inserted += int(n)
			}
		}

		if errors.Is(readErr, io.EOF) {
			break
		}
		if readErr != nil {
			return 0, fmt.Errorf("failed to read corpus: %w", readErr)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit import: %w", err)
	}
	return inserted, nil
}

// Lookup returns every dump that contains target, ordered by dump name.
// Password and unknown targets are never indexed and always yield no matches.
func (cdb *CorpusDB) Lookup(ctx context.Context, target model.Target) ([]Match, error) {
	if target.Kind() != model.KindEmail && target.Kind() != model.KindPhone {
		return nil, nil
	}

	query := `
	SELECT source, kind, MIN(imported_at)
	FROM entries
	WHERE token_hash = ?
	GROUP BY source, kind
	ORDER BY source
	`

	rows, err := cdb.db.QueryContext(ctx, query, HashToken(target.Value()))
	if err != nil {
		return nil, fmt.Errorf("failed to query index: %w", err)
	}
	defer rows.Close()

	var matches []Match
	for rows.Next() {
		var m Match
		var kind, timestamp string
		if err := rows.Scan(&m.Source, &kind, &timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}
		m.Kind = model.Kind(kind)
		m.ImportedAt = parseTimestamp(timestamp)
		matches = append(matches, m)
	}

	return matches, rows.Err()
}

// Sources lists every imported dump.
func (cdb *CorpusDB) Sources(ctx context.Context) ([]SourceSummary, error) {
	query := `
	SELECT source, COUNT(*), MAX(imported_at)
	FROM entries
	GROUP BY source
	ORDER BY source
	`

	rows, err := cdb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list sources: %w", err)
	}
	defer rows.Close()

	var sources []SourceSummary
	for rows.Next() {
		var s SourceSummary
		var timestamp string
		if err := rows.Scan(&s.Name, &s.Entries, &timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan source: %w", err)
		}
		s.LastImport = parseTimestamp(timestamp)
		sources = append(sources, s)
	}

	return sources, rows.Err()
}

// tokenSeparators split a corpus line into candidate identifiers.
const tokenSeparators = ":;,|\t "

// Tokenize splits a corpus line on common dump separators.
func Tokenize(line string) []string {
	return strings.FieldsFunc(strings.TrimSpace(line), func(r rune) bool {
		return strings.ContainsRune(tokenSeparators, r)
	})
}

// HashToken returns the hex SHA3-256 digest stored for a normalized identifier.
func HashToken(value string) string {
	sum := sha3.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}

// timestampFormats contains the timestamp formats that SQLite may return.
var timestampFormats = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999",
}

// parseTimestamp tries each known format and returns the zero time if none match.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
