package usecase

import (
	"context"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/reclaim/internal/domain"
)

// ScanOptions tune directory traversal.
type ScanOptions struct {
	// IncludeHidden descends into dot-directories below the roots.
	IncludeHidden bool
}

// ScannerImpl implements domain.Scanner. Traversal is sequential and
// never follows symlinks.
type ScannerImpl struct {
	rules      domain.Rules
	classifier domain.Classifier
	assessor   domain.Assessor
	processes  domain.ProcessEnumerator
	fsManager  domain.FileSystemManager
	clock      domain.Clock
	ids        domain.IDGenerator
	opts       ScanOptions
	logger     *zap.Logger
}

// NewScanner creates a scanner. processes may be nil, which yields an
// empty snapshot.
func NewScanner(
	rules domain.Rules,
	classifier domain.Classifier,
	assessor domain.Assessor,
	processes domain.ProcessEnumerator,
	fsManager domain.FileSystemManager,
	opts ScanOptions,
	logger *zap.Logger,
) *ScannerImpl {
	return &ScannerImpl{
		rules:      rules,
		classifier: classifier,
		assessor:   assessor,
		processes:  processes,
		fsManager:  fsManager,
		clock:      RealClock{},
		ids:        UUIDGenerator{},
		opts:       opts,
		logger:     logger,
	}
}

// WithClock replaces the clock (for testing).
func (s *ScannerImpl) WithClock(c domain.Clock) *ScannerImpl {
	s.clock = c
	return s
}

// WithIDGenerator replaces the session ID source (for testing).
func (s *ScannerImpl) WithIDGenerator(g domain.IDGenerator) *ScannerImpl {
	s.ids = g
	return s
}

// scanState is the per-call bookkeeping shared across roots.
type scanState struct {
	catalog    *domain.Catalog
	snapshot   *domain.ProcessSnapshot
	minSize    int64
	seen       map[string]struct{}
	restricted map[string]struct{}
}

// Scan walks every root and records regular files of at least minSize bytes.
// Item-level failures land in Catalog.Errors; only cancellation stops the walk,
// in which case the partial catalog is returned with ctx.Err().
func (s *ScannerImpl) Scan(ctx context.Context, roots []string, minSize int64) (*domain.Catalog, error) {
	start := s.clock.Now()
	st := &scanState{
		catalog:    domain.NewCatalog(s.ids.New(), append([]string(nil), roots...), start),
		snapshot:   s.snapshot(ctx),
		minSize:    minSize,
		seen:       make(map[string]struct{}),
		restricted: make(map[string]struct{}),
	}

	s.logger.Info("scan started",
		zap.String("session", st.catalog.SessionID),
		zap.Strings("roots", roots),
		zap.Int64("min_size", minSize))

	var walkErr error
	for _, root := range roots {
		if err := s.scanRoot(ctx, st, root); err != nil {
			walkErr = err
			break
		}
	}

	st.catalog.DurationMs = s.clock.Now().Sub(start).Milliseconds()

	s.logger.Info("scan finished",
		zap.String("session", st.catalog.SessionID),
		zap.Int("records", len(st.catalog.Records)),
		zap.Int("visited", st.catalog.Visited),
		zap.Int("errors", len(st.catalog.Errors)),
		zap.Int("excluded", st.catalog.Excluded),
		zap.Int64("duration_ms", st.catalog.DurationMs))

	return st.catalog, walkErr
}

func (s *ScannerImpl) snapshot(ctx context.Context) *domain.ProcessSnapshot {
	if s.processes == nil {
		return domain.NewProcessSnapshot(nil, nil, s.clock.Now())
	}
	snap, err := s.processes.Snapshot(ctx)
	if err != nil || snap == nil {
		s.logger.Warn("process snapshot unavailable, continuing without it", zap.Error(err))
		return domain.NewProcessSnapshot(nil, nil, s.clock.Now())
	}
	return snap
}

func (s *ScannerImpl) scanRoot(ctx context.Context, st *scanState, root string) error {
	root = filepath.Clean(s.fsManager.ExpandHome(root))
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	// A symlinked root is walked at its target; links below it are not followed.
	if fi, err := os.Lstat(root); err == nil && fi.Mode()&fs.ModeSymlink != 0 {
		if resolved, err := filepath.EvalSymlinks(root); err == nil {
			root = resolved
		}
	}
	normRoot := domain.NormalizeDir(root)

	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			s.recordError(st, path, d, err)
			if d != nil && d.IsDir() && path != root {
				return fs.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			if path != root && s.excluded(path, d.Name(), normRoot) {
				st.catalog.Excluded++
				return fs.SkipDir
			}
			return nil
		}

		if !d.Type().IsRegular() {
			return nil
		}
		st.catalog.Visited++

		info, err := d.Info()
		if err != nil {
			s.recordError(st, path, d, err)
			return nil
		}
		if info.Size() < st.minSize {
			return nil
		}

		canonical, err := s.fsManager.Canonical(path)
		if err != nil {
			canonical = path
		}
		if _, dup := st.seen[canonical]; dup {
			return nil
		}
		st.seen[canonical] = struct{}{}

		s.addRecord(st, path, info)
		return nil
	})
}

func (s *ScannerImpl) addRecord(st *scanState, path string, info fs.FileInfo) {
	category := s.classifier.Categorize(path)
	safety := s.assessor.Assess(path, st.snapshot)

	rec, err := domain.NewFileRecord(
		path,
		info.Size(),
		s.fsManager.Times(info),
		category,
		safety,
		mime.TypeByExtension(filepath.Ext(path)),
	)
	if err != nil {
		s.recordError(st, path, nil, err)
		return
	}
	st.catalog.Add(rec)
}

// excluded reports whether a directory below the root is skipped by policy.
func (s *ScannerImpl) excluded(path, name, normRoot string) bool {
	if !s.opts.IncludeHidden && strings.HasPrefix(name, ".") {
		return true
	}
	p := domain.NormalizePath(path)
	if underAny(p, s.rules.ExcludedDirs) {
		return true
	}
	below := strings.TrimPrefix(p, normRoot)
	return containsAny(below, s.rules.ScanExclusions)
}

func (s *ScannerImpl) recordError(st *scanState, path string, d fs.DirEntry, err error) {
	dir := filepath.Dir(path)
	if d != nil && d.IsDir() {
		dir = path
	}
	st.catalog.Errors = append(st.catalog.Errors, domain.ScanError{Path: path, Dir: dir, Err: err})
	if _, ok := st.restricted[dir]; !ok {
		st.restricted[dir] = struct{}{}
		st.catalog.Restricted = append(st.catalog.Restricted, dir)
	}
	s.logger.Debug("skipped path during scan",
		zap.String("path", path),
		zap.Error(err))
}

// Ensure ScannerImpl implements domain.Scanner.
var _ domain.Scanner = (*ScannerImpl)(nil)
