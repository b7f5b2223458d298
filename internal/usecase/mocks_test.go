package usecase

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/eliteGoblin/focusd/reclaim/internal/domain"
	"github.com/eliteGoblin/focusd/reclaim/internal/policy"
)

// linuxRules returns the Linux rule table for a fake home at /home/alice.
func linuxRules() domain.Rules {
	return policy.ToRules(policy.NewLinuxPolicyWithEnv(policy.Env{
		Home:    "/home/alice",
		TempDir: "/tmp",
	}))
}

// windowsRules returns the Windows rule table for a default C: install.
func windowsRules() domain.Rules {
	return policy.ToRules(policy.NewWindowsPolicyWithEnv(policy.Env{
		Home: `C:\Users\alice`,
		Vars: map[string]string{
			"SYSTEMDRIVE":  "C:",
			"USERPROFILE":  `C:\Users\alice`,
			"LOCALAPPDATA": `C:\Users\alice\AppData\Local`,
			"TEMP":         `C:\Users\alice\AppData\Local\Temp`,
		},
	}))
}

// mockProbe implements domain.LiveProbe for testing
type mockProbe struct {
	busy map[string]bool
	err  error
}

func (m *mockProbe) InUse(path string) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	return m.busy[path], nil
}

// mockProcessEnumerator implements domain.ProcessEnumerator for testing
type mockProcessEnumerator struct {
	snapshot *domain.ProcessSnapshot
	err      error
}

func (m *mockProcessEnumerator) Snapshot(ctx context.Context) (*domain.ProcessSnapshot, error) {
	return m.snapshot, m.err
}

// mockFileSystemManager implements domain.FileSystemManager for testing.
// It reports existence from a fixed set.
type mockFileSystemManager struct {
	existingPaths map[string]bool
	removedDirs   []string
}

func (m *mockFileSystemManager) Exists(path string) bool {
	return m.existingPaths[path]
}

func (m *mockFileSystemManager) ExpandHome(path string) string {
	return path // No expansion in tests
}

func (m *mockFileSystemManager) Canonical(path string) (string, error) {
	return filepath.Clean(path), nil
}

func (m *mockFileSystemManager) Times(info fs.FileInfo) domain.FileTimes {
	t := info.ModTime()
	return domain.FileTimes{Modified: t, Created: t, Accessed: t}
}

func (m *mockFileSystemManager) RemoveEmptyDir(path string) error {
	m.removedDirs = append(m.removedDirs, path)
	return nil
}

// osFileSystem is a real-disk FileSystemManager used by scanner tests.
type osFileSystem struct{}

func (osFileSystem) Exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

func (osFileSystem) ExpandHome(path string) string { return path }

func (osFileSystem) Canonical(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}

func (osFileSystem) Times(info fs.FileInfo) domain.FileTimes {
	t := info.ModTime()
	return domain.FileTimes{Modified: t, Created: t, Accessed: t}
}

func (osFileSystem) RemoveEmptyDir(path string) error {
	info, err := os.Lstat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s: not a directory", path)
	}
	return os.Remove(path)
}

// removeStrategy deletes files for real; used with osFileSystem.
type removeStrategy struct{}

func (removeStrategy) Mode() domain.DisposalMode { return domain.DisposalPermanent }

func (removeStrategy) Dispose(path string) error { return os.Remove(path) }

// mockStrategy implements domain.DisposalStrategy for testing
type mockStrategy struct {
	mode     domain.DisposalMode
	err      error
	disposed []string
	onCall   func()
}

func (m *mockStrategy) Mode() domain.DisposalMode { return m.mode }

func (m *mockStrategy) Dispose(path string) error {
	if m.onCall != nil {
		m.onCall()
	}
	if m.err != nil {
		return m.err
	}
	m.disposed = append(m.disposed, path)
	return nil
}

// mockBackupStore implements domain.BackupStore for testing
type mockBackupStore struct {
	err    error
	copied []string
}

func (m *mockBackupStore) Backup(path string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.copied = append(m.copied, path)
	return filepath.Join("/saved/session", path), nil
}

func (m *mockBackupStore) Dir() string { return "/saved/session" }

// mockAuditSink implements domain.AuditSink for testing
type mockAuditSink struct {
	mu      sync.Mutex
	entries []domain.AuditEntry
	err     error
}

func (m *mockAuditSink) Append(e domain.AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.entries = append(m.entries, e)
	return nil
}

func (m *mockAuditSink) List(limit int) ([]domain.AuditEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if limit <= 0 || limit >= len(m.entries) {
		return append([]domain.AuditEntry(nil), m.entries...), nil
	}
	return append([]domain.AuditEntry(nil), m.entries[len(m.entries)-limit:]...), nil
}

func (m *mockAuditSink) Close() error { return nil }

var errDiskGone = errors.New("device not ready")
