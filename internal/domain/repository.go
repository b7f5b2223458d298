package domain

import (
	"context"
	"io/fs"
	"time"
)

// ProcessEnumerator captures running processes.
// Implementation: uses gopsutil for cross-platform support.
type ProcessEnumerator interface {
	// Snapshot returns running names and the install dirs of processes
	// whose executable lives under an OS/program directory.
	Snapshot(ctx context.Context) (*ProcessSnapshot, error)
}

// LiveProbe checks whether a file is currently held open by someone else.
type LiveProbe interface {
	// InUse reports true only on a recognized busy/lock signal.
	// Any other failure is returned wrapped in ErrProbeInconclusive with inUse=false.
	InUse(path string) (bool, error)
}

// FileSystemManager handles filesystem queries used while scanning and deleting.
type FileSystemManager interface {
	// Exists checks if a path exists (without following a final symlink).
	Exists(path string) bool

	// ExpandHome expands ~ to the user's home directory.
	ExpandHome(path string) string

	// Canonical returns the absolute, symlink-resolved form used for dedup.
	Canonical(path string) (string, error)

	// Times extracts modified/created/accessed timestamps from stat info.
	Times(info fs.FileInfo) FileTimes

	// RemoveEmptyDir removes path only if it is a directory with no entries.
	RemoveEmptyDir(path string) error
}

// DisposalStrategy removes a file. It either fully succeeds or returns an error.
type DisposalStrategy interface {
	// Mode identifies the strategy (trash or permanent).
	Mode() DisposalMode

	// Dispose removes the file at path.
	Dispose(path string) error
}

// BackupStore copies a file into the session backup location.
type BackupStore interface {
	// Backup copies path byte-for-byte and returns the backup location.
	Backup(path string) (string, error)

	// Dir returns the session backup directory.
	Dir() string
}

// AuditSink is the append-only deletion log.
type AuditSink interface {
	// Append persists one entry; entries are never rewritten.
	Append(entry AuditEntry) error

	// List returns the newest limit entries in insertion order (limit <= 0 means all).
	List(limit int) ([]AuditEntry, error)

	// Close releases resources (e.g., database connection).
	Close() error
}

// CatalogStore persists scan catalogs for later reporting.
type CatalogStore interface {
	// SaveCatalog writes every record of the catalog under its session ID.
	SaveCatalog(c *Catalog) error

	// Summary aggregates a stored session by category, largest first.
	Summary(sessionID string) ([]CategoryTotal, error)

	// LatestSession returns the most recently saved session ID.
	LatestSession() (string, error)

	// Close releases the database connection.
	Close() error
}

// KeyProvider abstracts the source of encryption keys.
type KeyProvider interface {
	// GetKey returns the encryption key bytes.
	GetKey() ([]byte, error)

	// StoreKey persists a new encryption key.
	StoreKey(key []byte) error

	// KeyExists checks if a key has been generated.
	KeyExists() bool
}

// Clock abstracts time retrieval so age rules are deterministic in tests.
type Clock interface {
	Now() time.Time
}

// IDGenerator produces session identifiers.
type IDGenerator interface {
	New() string
}

// Classifier maps a path to a category. Pure; no I/O.
type Classifier interface {
	Categorize(path string) Category
}

// Assessor maps a path to a safety level.
type Assessor interface {
	// Assess evaluates the path against the snapshot and the live probe.
	Assess(path string, snapshot *ProcessSnapshot) SafetyLevel
}

// Scanner walks roots and builds a catalog.
type Scanner interface {
	// Scan records every regular file of at least minSize bytes.
	Scan(ctx context.Context, roots []string, minSize int64) (*Catalog, error)
}

// SuggestionEngine turns a catalog into ordered cleanup suggestions.
type SuggestionEngine interface {
	Suggest(c *Catalog) []Suggestion
}

// DeleteManager is the single gate for deletion.
type DeleteManager interface {
	// Delete runs the gate for one record and always returns an outcome.
	Delete(ctx context.Context, rec *FileRecord, opts DeleteOptions) Outcome

	// DeleteAll processes records in order, stopping between files on cancellation.
	DeleteAll(ctx context.Context, recs []*FileRecord, opts DeleteOptions) *BatchResult
}
