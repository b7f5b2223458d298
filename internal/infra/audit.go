package infra

import (
	"database/sql"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	sqlcipher "github.com/mutecomm/go-sqlcipher/v4"

	"github.com/eliteGoblin/focusd/reclaim/internal/domain"
)

// Ensure sqlcipher driver is registered.
var _ = sqlcipher.ErrBusy

const (
	// AuditDBName is the default audit database file name inside the data dir.
	AuditDBName = "audit.db"
)

// AuditLog implements domain.AuditSink using a SQLCipher encrypted SQLite database.
// Rows can only be inserted; triggers reject UPDATE and DELETE.
type AuditLog struct {
	db     *sql.DB
	dbPath string
}

// NewAuditLog opens (or creates) the encrypted audit database at dbPath.
// The key is used as the SQLCipher passphrase via PRAGMA key.
func NewAuditLog(dbPath string, key []byte) (*AuditLog, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	keyHex := hex.EncodeToString(key)
	dsn := fmt.Sprintf("%s?_pragma_key=x'%s'&_pragma_cipher_page_size=4096", dbPath, keyHex)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit database: %w", err)
	}
	// Single writer.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to audit database: %w", err)
	}

	log := &AuditLog{db: db, dbPath: dbPath}
	if err := log.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return log, nil
}

func (a *AuditLog) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS audit_log (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		ts INTEGER NOT NULL,
		path TEXT NOT NULL,
		size INTEGER NOT NULL,
		category TEXT NOT NULL,
		safety TEXT NOT NULL,
		outcome TEXT NOT NULL,
		reason TEXT NOT NULL DEFAULT '',
		disposal TEXT NOT NULL,
		dry_run INTEGER NOT NULL DEFAULT 0,
		backup_path TEXT NOT NULL DEFAULT ''
	);

	CREATE TRIGGER IF NOT EXISTS audit_log_no_update
	BEFORE UPDATE ON audit_log
	BEGIN
		SELECT RAISE(ABORT, 'audit log is append-only');
	END;

	CREATE TRIGGER IF NOT EXISTS audit_log_no_delete
	BEFORE DELETE ON audit_log
	BEGIN
		SELECT RAISE(ABORT, 'audit log is append-only');
	END;
	`
	_, err := a.db.Exec(schema)
	return err
}

// Append persists one entry.
func (a *AuditLog) Append(e domain.AuditEntry) error {
	ts := e.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	dryRun := 0
	if e.DryRun {
		dryRun = 1
	}
	_, err := a.db.Exec(`
		INSERT INTO audit_log (session_id, ts, path, size, category, safety, outcome, reason, disposal, dry_run, backup_path)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.SessionID, ts.UnixNano(), e.Path, e.Size, e.Category.String(), e.Safety.String(),
		string(e.Outcome), e.Reason, string(e.Disposal), dryRun, e.BackupPath,
	)
	if err != nil {
		return fmt.Errorf("failed to append audit entry: %w", err)
	}
	return nil
}

// List returns the newest limit entries, oldest first. limit <= 0 returns everything.
func (a *AuditLog) List(limit int) ([]domain.AuditEntry, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	rows, err := a.db.Query(`
		SELECT id, session_id, ts, path, size, category, safety, outcome, reason, disposal, dry_run, backup_path
		FROM (SELECT * FROM audit_log ORDER BY id DESC LIMIT ?)
		ORDER BY id ASC`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.AuditEntry
	for rows.Next() {
		var (
			e                 domain.AuditEntry
			ts                int64
			category, safety  string
			outcome, disposal string
			dryRun            int
		)
		if err := rows.Scan(&e.ID, &e.SessionID, &ts, &e.Path, &e.Size, &category, &safety,
			&outcome, &e.Reason, &disposal, &dryRun, &e.BackupPath); err != nil {
			return nil, err
		}
		if e.Category, err = domain.ParseCategory(category); err != nil {
			return nil, fmt.Errorf("audit entry %d: %w", e.ID, err)
		}
		if e.Safety, err = domain.ParseSafetyLevel(safety); err != nil {
			return nil, fmt.Errorf("audit entry %d: %w", e.ID, err)
		}
		e.Timestamp = time.Unix(0, ts)
		e.Outcome = domain.OutcomeStatus(outcome)
		e.Disposal = domain.DisposalMode(disposal)
		e.DryRun = dryRun != 0
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Count returns the number of stored entries.
func (a *AuditLog) Count() (int, error) {
	var n int
	err := a.db.QueryRow(`SELECT COUNT(*) FROM audit_log`).Scan(&n)
	return n, err
}

// Path returns the database file path.
func (a *AuditLog) Path() string {
	return a.dbPath
}

// Close releases the database connection.
func (a *AuditLog) Close() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

// Ensure AuditLog implements domain.AuditSink.
var _ domain.AuditSink = (*AuditLog)(nil)
