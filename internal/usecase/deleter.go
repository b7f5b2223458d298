package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/reclaim/internal/domain"
)

// SafeDeleteManager implements domain.DeleteManager. Every removal in the
// program goes through Delete.
type SafeDeleteManager struct {
	fsManager  domain.FileSystemManager
	probe      domain.LiveProbe
	strategies map[domain.DisposalMode]domain.DisposalStrategy
	backup     domain.BackupStore
	audit      domain.AuditSink
	clock      domain.Clock
	sessionID  string
	logger     *zap.Logger
}

// NewSafeDeleteManager creates a delete manager. probe, backup and audit may
// be nil: no re-probe, backups always fail, nothing is logged to the audit sink.
func NewSafeDeleteManager(
	fs domain.FileSystemManager,
	probe domain.LiveProbe,
	strategies []domain.DisposalStrategy,
	backup domain.BackupStore,
	audit domain.AuditSink,
	logger *zap.Logger,
) *SafeDeleteManager {
	m := &SafeDeleteManager{
		fsManager:  fs,
		probe:      probe,
		strategies: make(map[domain.DisposalMode]domain.DisposalStrategy, len(strategies)),
		backup:     backup,
		audit:      audit,
		clock:      RealClock{},
		sessionID:  UUIDGenerator{}.New(),
		logger:     logger,
	}
	for _, s := range strategies {
		m.strategies[s.Mode()] = s
	}
	return m
}

// WithClock replaces the clock (for testing).
func (m *SafeDeleteManager) WithClock(c domain.Clock) *SafeDeleteManager {
	m.clock = c
	return m
}

// WithSessionID tags audit entries with an existing session, e.g. the scan's.
func (m *SafeDeleteManager) WithSessionID(id string) *SafeDeleteManager {
	m.sessionID = id
	return m
}

// SessionID returns the ID written to audit entries.
func (m *SafeDeleteManager) SessionID() string {
	return m.sessionID
}

// Delete runs exists, dry-run, safety gate, backup and disposal in that
// order, then records the attempt. It never panics and always returns an outcome.
func (m *SafeDeleteManager) Delete(ctx context.Context, rec *domain.FileRecord, opts domain.DeleteOptions) domain.Outcome {
	out := m.decide(rec, opts)
	m.record(rec, out, opts)
	return out
}

func (m *SafeDeleteManager) decide(rec *domain.FileRecord, opts domain.DeleteOptions) domain.Outcome {
	out := domain.Outcome{
		Path:   rec.Path,
		Safety: rec.Safety,
		Size:   rec.Size,
	}

	if !m.fsManager.Exists(rec.Path) {
		return m.fail(out, domain.ErrNotFound, "not found")
	}

	// Re-check the live state; it may have changed since the scan.
	if m.probe != nil {
		if busy, err := m.probe.InUse(rec.Path); err == nil && busy {
			out.Safety = domain.SafetyInUse
		}
	}
	refused := out.Safety.Blocking() && !opts.OverrideSafety

	if opts.DryRun {
		out.Status = domain.OutcomeRemoved
		out.DryRun = true
		out.Reason = "dry run"
		if refused {
			out.Reason = fmt.Sprintf("dry run (would be blocked: %s)", out.Safety)
		}
		return out
	}

	if refused {
		out.Status = domain.OutcomeBlocked
		out.Reason = fmt.Sprintf("safety level %s", out.Safety)
		out.Err = fmt.Errorf("%w: %s", domain.ErrBlocked, out.Safety)
		m.logger.Info("deletion blocked",
			zap.String("path", rec.Path),
			zap.Stringer("safety", out.Safety))
		return out
	}

	if opts.OverrideSafety && out.Safety.Blocking() {
		m.logger.Warn("safety override in effect",
			zap.String("path", rec.Path),
			zap.Stringer("safety", out.Safety))
	}

	if opts.Backup {
		if m.backup == nil {
			return m.fail(out, domain.ErrBackupFailed, "backup failed")
		}
		dst, err := m.backup.Backup(rec.Path)
		if err != nil {
			return m.fail(out, fmt.Errorf("%w: %w", domain.ErrBackupFailed, err), "backup failed")
		}
		out.BackupPath = dst
	}

	mode := opts.Disposal
	if mode == "" {
		mode = domain.DisposalTrash
	}
	strategy, ok := m.strategies[mode]
	if !ok {
		return m.fail(out, fmt.Errorf("%w: no strategy for %q", domain.ErrDisposalFailed, mode),
			fmt.Sprintf("no %s disposal available", mode))
	}

	if err := strategy.Dispose(rec.Path); err != nil {
		return m.fail(out, fmt.Errorf("%w: %w", domain.ErrDisposalFailed, err), err.Error())
	}

	out.Status = domain.OutcomeRemoved
	m.logger.Info("removed file",
		zap.String("path", rec.Path),
		zap.Int64("size", rec.Size),
		zap.String("disposal", string(mode)))
	return out
}

func (m *SafeDeleteManager) fail(out domain.Outcome, err error, reason string) domain.Outcome {
	out.Status = domain.OutcomeFailed
	out.Err = err
	out.Reason = reason
	m.logger.Warn("deletion failed",
		zap.String("path", out.Path),
		zap.String("reason", reason),
		zap.Error(err))
	return out
}

// record appends the audit entry. A failed write is logged and otherwise ignored.
func (m *SafeDeleteManager) record(rec *domain.FileRecord, out domain.Outcome, opts domain.DeleteOptions) {
	if m.audit == nil {
		return
	}
	mode := opts.Disposal
	if mode == "" {
		mode = domain.DisposalTrash
	}
	entry := domain.AuditEntry{
		SessionID:  m.sessionID,
		Timestamp:  m.clock.Now(),
		Path:       rec.Path,
		Size:       rec.Size,
		Category:   rec.Category,
		Safety:     out.Safety,
		Outcome:    out.Status,
		Reason:     out.Reason,
		Disposal:   mode,
		DryRun:     out.DryRun,
		BackupPath: out.BackupPath,
	}
	if err := m.audit.Append(entry); err != nil {
		m.logger.Warn("failed to write audit entry",
			zap.String("path", rec.Path),
			zap.Error(err))
	}
}

// DeleteAll processes records one at a time in the given order. Cancellation
// is honored between files; the file in progress always completes.
func (m *SafeDeleteManager) DeleteAll(ctx context.Context, recs []*domain.FileRecord, opts domain.DeleteOptions) *domain.BatchResult {
	start := m.clock.Now()

	result := &domain.BatchResult{
		SessionID:  m.sessionID,
		Outcomes:   make([]domain.Outcome, 0, len(recs)),
		ExecutedAt: start,
	}

	for _, rec := range recs {
		if ctx.Err() != nil {
			result.Cancelled = true
			m.logger.Info("batch cancelled",
				zap.Int("processed", len(result.Outcomes)),
				zap.Int("remaining", len(recs)-len(result.Outcomes)))
			break
		}

		out := m.Delete(ctx, rec, opts)
		result.Outcomes = append(result.Outcomes, out)

		switch out.Status {
		case domain.OutcomeRemoved:
			result.Removed++
			result.FreedBytes += out.Freed()
		case domain.OutcomeBlocked:
			result.Blocked++
		case domain.OutcomeFailed:
			result.Failed++
		}
	}

	result.DurationMs = m.clock.Now().Sub(start).Milliseconds()

	return result
}

// Ensure SafeDeleteManager implements domain.DeleteManager.
var _ domain.DeleteManager = (*SafeDeleteManager)(nil)
