package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/reclaim/internal/domain"
	"github.com/eliteGoblin/focusd/reclaim/internal/testutil"
)

type deleteFixture struct {
	fs        *mockFileSystemManager
	probe     *mockProbe
	trash     *mockStrategy
	permanent *mockStrategy
	backup    *mockBackupStore
	audit     *mockAuditSink
	manager   *SafeDeleteManager
}

func newDeleteFixture(paths ...string) *deleteFixture {
	f := &deleteFixture{
		fs:        &mockFileSystemManager{existingPaths: map[string]bool{}},
		probe:     &mockProbe{busy: map[string]bool{}},
		trash:     &mockStrategy{mode: domain.DisposalTrash},
		permanent: &mockStrategy{mode: domain.DisposalPermanent},
		backup:    &mockBackupStore{},
		audit:     &mockAuditSink{},
	}
	for _, p := range paths {
		f.fs.existingPaths[p] = true
	}
	f.manager = NewSafeDeleteManager(
		f.fs,
		f.probe,
		[]domain.DisposalStrategy{f.trash, f.permanent},
		f.backup,
		f.audit,
		zap.NewNop(),
	).WithClock(testutil.FixedClock()).WithSessionID("session-1")
	return f
}

func record(t *testing.T, path string, size int64, safety domain.SafetyLevel) *domain.FileRecord {
	t.Helper()
	now := time.Now()
	rec, err := domain.NewFileRecord(path, size, domain.FileTimes{Modified: now, Created: now, Accessed: now},
		domain.CategoryCache, safety, "")
	require.NoError(t, err)
	return rec
}

func trashOpts() domain.DeleteOptions {
	return domain.DeleteOptions{Disposal: domain.DisposalTrash}
}

func TestDelete_RemovesSafeFile(t *testing.T) {
	f := newDeleteFixture("/home/alice/.cache/pip/a.whl")
	rec := record(t, "/home/alice/.cache/pip/a.whl", 5<<20, domain.SafetySafe)

	out := f.manager.Delete(context.Background(), rec, trashOpts())

	assert.Equal(t, domain.OutcomeRemoved, out.Status)
	assert.NoError(t, out.Err)
	assert.Equal(t, int64(5<<20), out.Freed())
	assert.Equal(t, []string{rec.Path}, f.trash.disposed)
	assert.Empty(t, f.permanent.disposed)

	require.Len(t, f.audit.entries, 1)
	entry := f.audit.entries[0]
	assert.Equal(t, "session-1", entry.SessionID)
	assert.Equal(t, domain.OutcomeRemoved, entry.Outcome)
	assert.Equal(t, domain.DisposalTrash, entry.Disposal)
	assert.Equal(t, domain.CategoryCache, entry.Category)
	assert.Equal(t, testutil.FixedClock().Now(), entry.Timestamp)
}

func TestDelete_NotFound(t *testing.T) {
	f := newDeleteFixture()
	rec := record(t, "/home/alice/gone.txt", 10, domain.SafetySafe)

	out := f.manager.Delete(context.Background(), rec, trashOpts())

	assert.Equal(t, domain.OutcomeFailed, out.Status)
	assert.ErrorIs(t, out.Err, domain.ErrNotFound)
	assert.Equal(t, "not found", out.Reason)
	assert.Empty(t, f.trash.disposed)
	require.Len(t, f.audit.entries, 1)
	assert.Equal(t, domain.OutcomeFailed, f.audit.entries[0].Outcome)
}

func TestDelete_BlockingLevelsWithoutOverride(t *testing.T) {
	for _, level := range []domain.SafetyLevel{
		domain.SafetyCritical, domain.SafetySystem, domain.SafetyRunning, domain.SafetyInUse,
	} {
		t.Run(level.String(), func(t *testing.T) {
			f := newDeleteFixture("/srv/file")
			rec := record(t, "/srv/file", 100, level)

			out := f.manager.Delete(context.Background(), rec, trashOpts())

			assert.Equal(t, domain.OutcomeBlocked, out.Status)
			assert.ErrorIs(t, out.Err, domain.ErrBlocked)
			assert.Zero(t, out.Freed())
			assert.Empty(t, f.trash.disposed)
			assert.Empty(t, f.backup.copied)
		})
	}
}

func TestDelete_NonBlockingLevels(t *testing.T) {
	for _, level := range []domain.SafetyLevel{domain.SafetyUnknown, domain.SafetyUser, domain.SafetySafe} {
		t.Run(level.String(), func(t *testing.T) {
			f := newDeleteFixture("/srv/file")
			out := f.manager.Delete(context.Background(), record(t, "/srv/file", 1, level), trashOpts())
			assert.Equal(t, domain.OutcomeRemoved, out.Status)
		})
	}
}

func TestDelete_OverrideAllowsBlockedLevel(t *testing.T) {
	f := newDeleteFixture("/usr/lib/libx.so")
	rec := record(t, "/usr/lib/libx.so", 100, domain.SafetyCritical)

	opts := trashOpts()
	opts.OverrideSafety = true
	out := f.manager.Delete(context.Background(), rec, opts)

	assert.Equal(t, domain.OutcomeRemoved, out.Status)
	assert.Equal(t, []string{rec.Path}, f.trash.disposed)
}

func TestDelete_ReprobesInUse(t *testing.T) {
	f := newDeleteFixture("/home/alice/docs/a.odt")
	f.probe.busy["/home/alice/docs/a.odt"] = true
	rec := record(t, "/home/alice/docs/a.odt", 100, domain.SafetyUser)

	out := f.manager.Delete(context.Background(), rec, trashOpts())

	assert.Equal(t, domain.OutcomeBlocked, out.Status)
	assert.Equal(t, domain.SafetyInUse, out.Safety)
	assert.Equal(t, domain.SafetyUser, rec.Safety, "record must not be mutated")
	assert.Empty(t, f.trash.disposed)
}

func TestDelete_InconclusiveProbeDoesNotBlock(t *testing.T) {
	f := newDeleteFixture("/home/alice/docs/a.odt")
	f.probe.err = domain.ErrProbeInconclusive
	rec := record(t, "/home/alice/docs/a.odt", 100, domain.SafetyUser)

	out := f.manager.Delete(context.Background(), rec, trashOpts())

	assert.Equal(t, domain.OutcomeRemoved, out.Status)
}

func TestDelete_DryRun(t *testing.T) {
	f := newDeleteFixture("/home/alice/.cache/a")
	rec := record(t, "/home/alice/.cache/a", 100, domain.SafetySafe)

	opts := trashOpts()
	opts.DryRun = true
	opts.Backup = true
	out := f.manager.Delete(context.Background(), rec, opts)

	assert.Equal(t, domain.OutcomeRemoved, out.Status)
	assert.True(t, out.DryRun)
	assert.Equal(t, "dry run", out.Reason)
	assert.Zero(t, out.Freed())
	assert.Empty(t, f.trash.disposed)
	assert.Empty(t, f.backup.copied)
	require.Len(t, f.audit.entries, 1)
	assert.True(t, f.audit.entries[0].DryRun)
}

func TestDelete_DryRunReportsWouldBeBlocked(t *testing.T) {
	f := newDeleteFixture("/etc/hosts")
	rec := record(t, "/etc/hosts", 100, domain.SafetyCritical)

	opts := trashOpts()
	opts.DryRun = true
	out := f.manager.Delete(context.Background(), rec, opts)

	assert.Equal(t, domain.OutcomeRemoved, out.Status)
	assert.Equal(t, "dry run (would be blocked: critical)", out.Reason)
	assert.Empty(t, f.trash.disposed)
}

func TestDelete_BackupFailureKeepsOriginal(t *testing.T) {
	f := newDeleteFixture("/home/alice/a.txt")
	f.backup.err = errors.New("no space left on device")
	rec := record(t, "/home/alice/a.txt", 100, domain.SafetySafe)

	opts := trashOpts()
	opts.Backup = true
	out := f.manager.Delete(context.Background(), rec, opts)

	assert.Equal(t, domain.OutcomeFailed, out.Status)
	assert.ErrorIs(t, out.Err, domain.ErrBackupFailed)
	assert.Equal(t, "backup failed", out.Reason)
	assert.Empty(t, f.trash.disposed)
}

func TestDelete_BackupRequestedWithoutStore(t *testing.T) {
	f := newDeleteFixture("/home/alice/a.txt")
	m := NewSafeDeleteManager(f.fs, nil, []domain.DisposalStrategy{f.trash}, nil, nil, zap.NewNop())

	opts := trashOpts()
	opts.Backup = true
	out := m.Delete(context.Background(), record(t, "/home/alice/a.txt", 1, domain.SafetySafe), opts)

	assert.ErrorIs(t, out.Err, domain.ErrBackupFailed)
	assert.Empty(t, f.trash.disposed)
}

func TestDelete_BackupThenDispose(t *testing.T) {
	f := newDeleteFixture("/home/alice/a.txt")
	rec := record(t, "/home/alice/a.txt", 100, domain.SafetySafe)

	opts := domain.DeleteOptions{Disposal: domain.DisposalPermanent, Backup: true}
	out := f.manager.Delete(context.Background(), rec, opts)

	assert.Equal(t, domain.OutcomeRemoved, out.Status)
	assert.Equal(t, "/saved/session/home/alice/a.txt", out.BackupPath)
	assert.Equal(t, []string{rec.Path}, f.backup.copied)
	assert.Equal(t, []string{rec.Path}, f.permanent.disposed)
	assert.Equal(t, out.BackupPath, f.audit.entries[0].BackupPath)
}

func TestDelete_DisposalFailureDoesNotFallBack(t *testing.T) {
	f := newDeleteFixture("/home/alice/a.txt")
	f.trash.err = errDiskGone
	rec := record(t, "/home/alice/a.txt", 100, domain.SafetySafe)

	out := f.manager.Delete(context.Background(), rec, trashOpts())

	assert.Equal(t, domain.OutcomeFailed, out.Status)
	assert.ErrorIs(t, out.Err, domain.ErrDisposalFailed)
	assert.ErrorIs(t, out.Err, errDiskGone)
	assert.Equal(t, errDiskGone.Error(), out.Reason)
	assert.Empty(t, f.permanent.disposed, "must not escalate to permanent deletion")
}

func TestDelete_UnknownDisposalMode(t *testing.T) {
	f := newDeleteFixture("/home/alice/a.txt")
	m := NewSafeDeleteManager(f.fs, nil, []domain.DisposalStrategy{f.permanent}, nil, nil, zap.NewNop())

	out := m.Delete(context.Background(), record(t, "/home/alice/a.txt", 1, domain.SafetySafe), trashOpts())

	assert.Equal(t, domain.OutcomeFailed, out.Status)
	assert.ErrorIs(t, out.Err, domain.ErrDisposalFailed)
	assert.Empty(t, f.permanent.disposed)
}

func TestDelete_EmptyModeDefaultsToTrash(t *testing.T) {
	f := newDeleteFixture("/home/alice/a.txt")

	out := f.manager.Delete(context.Background(), record(t, "/home/alice/a.txt", 1, domain.SafetySafe), domain.DeleteOptions{})

	assert.Equal(t, domain.OutcomeRemoved, out.Status)
	assert.Len(t, f.trash.disposed, 1)
}

func TestDelete_AuditFailureKeepsOutcome(t *testing.T) {
	f := newDeleteFixture("/home/alice/a.txt")
	f.audit.err = errors.New("database is locked")

	out := f.manager.Delete(context.Background(), record(t, "/home/alice/a.txt", 1, domain.SafetySafe), trashOpts())

	assert.Equal(t, domain.OutcomeRemoved, out.Status)
	assert.NoError(t, out.Err)
}

func TestDeleteAll_Counts(t *testing.T) {
	f := newDeleteFixture("/a", "/b", "/c")
	recs := []*domain.FileRecord{
		record(t, "/a", 10, domain.SafetySafe),
		record(t, "/b", 20, domain.SafetyCritical),
		record(t, "/c", 30, domain.SafetyUser),
		record(t, "/missing", 40, domain.SafetySafe),
	}

	res := f.manager.DeleteAll(context.Background(), recs, trashOpts())

	assert.Equal(t, "session-1", res.SessionID)
	assert.Len(t, res.Outcomes, 4)
	assert.Equal(t, 2, res.Removed)
	assert.Equal(t, 1, res.Blocked)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, int64(40), res.FreedBytes)
	assert.False(t, res.Cancelled)
	assert.Equal(t, []string{"/a", "/c"}, f.trash.disposed)
	assert.Len(t, f.audit.entries, 4)
}

func TestDeleteAll_StopsBetweenFilesOnCancel(t *testing.T) {
	f := newDeleteFixture("/a", "/b", "/c")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f.trash.onCall = cancel

	recs := []*domain.FileRecord{
		record(t, "/a", 10, domain.SafetySafe),
		record(t, "/b", 20, domain.SafetySafe),
		record(t, "/c", 30, domain.SafetySafe),
	}

	res := f.manager.DeleteAll(ctx, recs, trashOpts())

	assert.True(t, res.Cancelled)
	require.Len(t, res.Outcomes, 1)
	assert.Equal(t, domain.OutcomeRemoved, res.Outcomes[0].Status)
	assert.Equal(t, []string{"/a"}, f.trash.disposed)
}

func TestDeleteAll_DryRunFreesNothing(t *testing.T) {
	f := newDeleteFixture("/a", "/b")
	recs := []*domain.FileRecord{
		record(t, "/a", 10, domain.SafetySafe),
		record(t, "/b", 20, domain.SafetySafe),
	}

	res := f.manager.DeleteAll(context.Background(), recs, domain.DeleteOptions{DryRun: true})

	assert.Equal(t, 2, res.Removed)
	assert.Zero(t, res.FreedBytes)
	assert.Empty(t, f.trash.disposed)
}
