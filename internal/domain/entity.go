// Package domain contains core business entities and interfaces.
// This is the innermost layer in Clean Architecture - no external dependencies.
package domain

import (
	"fmt"
	"strings"
	"time"
)

// FileRecord is the scanned view of a single file.
// Created once per scanned path and never mutated afterwards; share it by pointer.
type FileRecord struct {
	Path       string // absolute, platform-native
	Size       int64
	ModifiedAt time.Time
	CreatedAt  time.Time
	AccessedAt time.Time
	Category   Category
	Safety     SafetyLevel
	MimeHint   string // best-effort, empty when unknown
}

// NewFileRecord validates the enums and returns a record.
func NewFileRecord(path string, size int64, times FileTimes, category Category, safety SafetyLevel, mime string) (*FileRecord, error) {
	if !category.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownCategory, int(category))
	}
	if !safety.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownSafety, int(safety))
	}
	if size < 0 {
		return nil, fmt.Errorf("negative size %d for %s", size, path)
	}
	return &FileRecord{
		Path:       path,
		Size:       size,
		ModifiedAt: times.Modified,
		CreatedAt:  times.Created,
		AccessedAt: times.Accessed,
		Category:   category,
		Safety:     safety,
		MimeHint:   mime,
	}, nil
}

// FileTimes holds the timestamps a platform can report for a file.
// Created and Accessed fall back to Modified where the OS has no value.
type FileTimes struct {
	Modified time.Time
	Created  time.Time
	Accessed time.Time
}

// Suggestion groups files sharing a cleanup rationale.
type Suggestion struct {
	Key         string // e.g. "cache", "temp-old"
	Category    Category
	Description string
	Files       []*FileRecord
	TotalSize   int64
	Safety      SafetyLevel // dominant level; used for ordering and default action only
}

// NewSuggestion builds a suggestion and caches the total size of its members.
func NewSuggestion(key string, category Category, description string, safety SafetyLevel, files []*FileRecord) Suggestion {
	var total int64
	for _, f := range files {
		total += f.Size
	}
	return Suggestion{
		Key:         key,
		Category:    category,
		Description: description,
		Files:       files,
		TotalSize:   total,
		Safety:      safety,
	}
}

// ProcessSnapshot is a point-in-time view of running processes.
// Read-only after construction.
type ProcessSnapshot struct {
	runningNames      map[string]struct{}
	SystemProcessDirs []string
	CapturedAt        time.Time
}

// NewProcessSnapshot normalizes names (lowercase, without .exe) and copies dirs.
func NewProcessSnapshot(names []string, systemDirs []string, capturedAt time.Time) *ProcessSnapshot {
	s := &ProcessSnapshot{
		runningNames:      make(map[string]struct{}, len(names)),
		SystemProcessDirs: append([]string(nil), systemDirs...),
		CapturedAt:        capturedAt,
	}
	for _, n := range names {
		n = NormalizeProcessName(n)
		if n != "" {
			s.runningNames[n] = struct{}{}
		}
	}
	return s
}

// IsRunning reports whether a process with this name was running at capture time.
func (s *ProcessSnapshot) IsRunning(name string) bool {
	if s == nil {
		return false
	}
	_, ok := s.runningNames[NormalizeProcessName(name)]
	return ok
}

// Len returns the number of distinct running names.
func (s *ProcessSnapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.runningNames)
}

// NormalizeProcessName lowercases and strips a trailing .exe.
func NormalizeProcessName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.TrimSuffix(name, ".exe")
}

// ScanError records a path the scanner had to skip.
type ScanError struct {
	Path string
	Dir  string // containing directory, reported as restricted
	Err  error
}

func (e ScanError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e ScanError) Unwrap() error { return e.Err }

// Catalog is the result of one scan.
type Catalog struct {
	SessionID  string
	Roots      []string
	Records    []*FileRecord
	ByCategory map[Category][]*FileRecord
	Errors     []ScanError
	Restricted []string // directories with at least one skipped entry
	Excluded   int      // directories not descended by policy
	Visited    int      // regular files seen, any size
	StartedAt  time.Time
	DurationMs int64
}

// NewCatalog creates an empty catalog.
func NewCatalog(sessionID string, roots []string, startedAt time.Time) *Catalog {
	return &Catalog{
		SessionID:  sessionID,
		Roots:      roots,
		Records:    make([]*FileRecord, 0),
		ByCategory: make(map[Category][]*FileRecord),
		Errors:     make([]ScanError, 0),
		Restricted: make([]string, 0),
		StartedAt:  startedAt,
	}
}

// Add appends a record to the flat list and its category bucket.
func (c *Catalog) Add(r *FileRecord) {
	c.Records = append(c.Records, r)
	c.ByCategory[r.Category] = append(c.ByCategory[r.Category], r)
}

// TotalSize sums every record in the catalog.
func (c *Catalog) TotalSize() int64 {
	var total int64
	for _, r := range c.Records {
		total += r.Size
	}
	return total
}

// CategoryTotal is an aggregate row for reporting.
type CategoryTotal struct {
	Category  Category
	Files     int
	TotalSize int64
}

// DisposalMode selects how a file is removed.
type DisposalMode string

const (
	DisposalTrash     DisposalMode = "trash"
	DisposalPermanent DisposalMode = "permanent"
)

// DeleteOptions are read at the start of each delete call.
type DeleteOptions struct {
	DryRun         bool
	OverrideSafety bool
	Backup         bool
	Disposal       DisposalMode
}

// OutcomeStatus is the terminal state of one delete call.
type OutcomeStatus string

const (
	OutcomeRemoved OutcomeStatus = "removed"
	OutcomeBlocked OutcomeStatus = "blocked"
	OutcomeFailed  OutcomeStatus = "failed"
)

// Outcome reports what happened to a single file.
type Outcome struct {
	Path       string
	Status     OutcomeStatus
	Reason     string
	Err        error // wraps one of the Err* kinds when not removed
	Safety     SafetyLevel
	Size       int64
	BackupPath string
	DryRun     bool
}

// Freed returns the bytes released, zero for dry runs and non-removals.
func (o Outcome) Freed() int64 {
	if o.Status != OutcomeRemoved || o.DryRun {
		return 0
	}
	return o.Size
}

// BatchResult captures a sequence of delete calls.
type BatchResult struct {
	SessionID  string
	Outcomes   []Outcome
	Removed    int
	Blocked    int
	Failed     int
	FreedBytes int64
	Cancelled  bool
	ExecutedAt time.Time
	DurationMs int64
}

// AuditEntry is one persisted deletion attempt. Append-only.
type AuditEntry struct {
	ID         int64
	SessionID  string
	Timestamp  time.Time
	Path       string
	Size       int64
	Category   Category
	Safety     SafetyLevel
	Outcome    OutcomeStatus
	Reason     string
	Disposal   DisposalMode
	DryRun     bool
	BackupPath string
}

// Rules is the flattened rule table consumed by the classifier and assessor.
// All markers are lowercase with forward slashes.
type Rules struct {
	OS string

	// Classification
	CacheMarkers      []string
	DevMarkers        []CategoryMarker
	ThumbnailMarkers  []string
	ThumbnailExts     []string
	LocationMarkers   []CategoryMarker // temp / recycle / downloads, checked in order
	TempDirs          []string
	TrashDirs         []string
	BackupMarkers     []string
	CrashDumpMarkers  []string
	ExecutableExts    []string
	InstallerKeywords []string
	TrustedAppDirs    []string
	Extensions        map[string]Category
	ModelKeywords     []string
	SharedLibExts     []string

	// Assessment
	CriticalRoots []string
	ProgramDirs   []string
	SafeMarkers   []string
	SafeLocations []string
	UserMarkers   []string

	// Scanning
	ScanExclusions []string // markers matched below each scan root
	ExcludedDirs   []string // absolute dirs never descended
}

// CategoryMarker maps a path marker to the category it implies.
type CategoryMarker struct {
	Marker   string
	Category Category
}
