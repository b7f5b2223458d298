package infra

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/marcboeker/go-duckdb/v2"
	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/reclaim/internal/domain"
)

// ErrNoSessions is returned by LatestSession on an empty store.
var ErrNoSessions = errors.New("no scan sessions stored")

// DuckCatalogStore implements domain.CatalogStore on a DuckDB file.
type DuckCatalogStore struct {
	db     *sql.DB
	path   string
	logger *zap.Logger
}

// NewCatalogStore opens (or creates) the DuckDB file at dbPath.
func NewCatalogStore(dbPath string, logger *zap.Logger) (*DuckCatalogStore, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create export directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog database: %w", err)
	}

	cs := &DuckCatalogStore{db: db, path: dbPath, logger: logger}
	if err := cs.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return cs, nil
}

func (cs *DuckCatalogStore) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS scan_sessions (
		session_id VARCHAR PRIMARY KEY,
		started_at TIMESTAMP NOT NULL,
		duration_ms BIGINT NOT NULL,
		roots VARCHAR NOT NULL,
		visited BIGINT NOT NULL,
		restricted BIGINT NOT NULL,
		saved_seq BIGINT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS scan_files (
		session_id VARCHAR NOT NULL,
		path VARCHAR NOT NULL,
		size BIGINT NOT NULL,
		modified_at TIMESTAMP NOT NULL,
		category VARCHAR NOT NULL,
		safety VARCHAR NOT NULL,
		mime VARCHAR,
		PRIMARY KEY (session_id, path)
	);

	CREATE INDEX IF NOT EXISTS idx_scan_files_category ON scan_files(session_id, category);
	`
	_, err := cs.db.Exec(schema)
	return err
}

// Path returns the database file path.
func (cs *DuckCatalogStore) Path() string {
	return cs.path
}

// SaveCatalog writes the session row and every record in one transaction.
// Saving the same session twice replaces its rows.
func (cs *DuckCatalogStore) SaveCatalog(c *domain.Catalog) error {
	if c == nil {
		return fmt.Errorf("nil catalog")
	}

	tx, err := cs.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.Exec(`DELETE FROM scan_files WHERE session_id = ?`, c.SessionID); err != nil {
		return fmt.Errorf("failed to clear session files: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM scan_sessions WHERE session_id = ?`, c.SessionID); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}

	var seq int64
	if err := tx.QueryRow(`SELECT COALESCE(MAX(saved_seq), 0) + 1 FROM scan_sessions`).Scan(&seq); err != nil {
		return fmt.Errorf("failed to read session sequence: %w", err)
	}

	roots := strings.Join(c.Roots, string(os.PathListSeparator))
	if _, err := tx.Exec(`
		INSERT INTO scan_sessions (session_id, started_at, duration_ms, roots, visited, restricted, saved_seq)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.SessionID, c.StartedAt.UTC(), c.DurationMs, roots, int64(c.Visited), int64(len(c.Restricted)), seq,
	); err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO scan_files (session_id, path, size, modified_at, category, safety, mime)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range c.Records {
		var mime sql.NullString
		if r.MimeHint != "" {
			mime = sql.NullString{String: r.MimeHint, Valid: true}
		}
		if _, err := stmt.Exec(c.SessionID, r.Path, r.Size, r.ModifiedAt.UTC(),
			r.Category.String(), r.Safety.String(), mime); err != nil {
			return fmt.Errorf("failed to insert %s: %w", r.Path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit catalog: %w", err)
	}

	cs.logger.Info("catalog exported",
		zap.String("session", c.SessionID),
		zap.Int("records", len(c.Records)),
		zap.String("db", cs.path))
	return nil
}

// Summary aggregates one session per category, largest total first.
func (cs *DuckCatalogStore) Summary(sessionID string) ([]domain.CategoryTotal, error) {
	rows, err := cs.db.Query(`
		SELECT category, COUNT(*), CAST(SUM(size) AS BIGINT) AS total
		FROM scan_files
		WHERE session_id = ?
		GROUP BY category
		ORDER BY total DESC, category ASC`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize session: %w", err)
	}
	defer rows.Close()

	var totals []domain.CategoryTotal
	for rows.Next() {
		var (
			name  string
			files int64
			size  int64
		)
		if err := rows.Scan(&name, &files, &size); err != nil {
			return nil, err
		}
		cat, err := domain.ParseCategory(name)
		if err != nil {
			return nil, err
		}
		totals = append(totals, domain.CategoryTotal{Category: cat, Files: int(files), TotalSize: size})
	}
	return totals, rows.Err()
}

// LatestSession returns the most recently saved session ID.
func (cs *DuckCatalogStore) LatestSession() (string, error) {
	var id string
	err := cs.db.QueryRow(`SELECT session_id FROM scan_sessions ORDER BY saved_seq DESC LIMIT 1`).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNoSessions
	}
	if err != nil {
		return "", fmt.Errorf("failed to read latest session: %w", err)
	}
	return id, nil
}

// Close releases the database connection.
func (cs *DuckCatalogStore) Close() error {
	if cs.db != nil {
		return cs.db.Close()
	}
	return nil
}

// Ensure DuckCatalogStore implements domain.CatalogStore.
var _ domain.CatalogStore = (*DuckCatalogStore)(nil)
