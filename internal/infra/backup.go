package infra

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/reclaim/internal/domain"
)

// backupSessionLayout names one session directory under the backup root.
const backupSessionLayout = "20060102-150405"

// SessionBackupStore implements domain.BackupStore.
// Files are mirrored by absolute path under <root>/<session timestamp>/.
type SessionBackupStore struct {
	root       string
	sessionDir string
	logger     *zap.Logger
}

// NewSessionBackupStore creates a store whose session dir is tagged with started.
// Nothing is created on disk until the first backup.
func NewSessionBackupStore(root string, started time.Time, logger *zap.Logger) *SessionBackupStore {
	return &SessionBackupStore{
		root:       root,
		sessionDir: filepath.Join(root, started.Format(backupSessionLayout)),
		logger:     logger,
	}
}

// Dir returns the session backup directory.
func (bs *SessionBackupStore) Dir() string {
	return bs.sessionDir
}

// Backup copies path into the session dir and verifies the copy by SHA256.
func (bs *SessionBackupStore) Backup(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}

	dst := filepath.Join(bs.sessionDir, mirrorPath(abs))
	if err := os.MkdirAll(filepath.Dir(dst), 0700); err != nil {
		return "", fmt.Errorf("failed to create backup dir: %w", err)
	}
	if _, err := os.Lstat(dst); err == nil {
		return "", fmt.Errorf("backup target already exists: %s", dst)
	}

	srcInfo, err := os.Stat(abs)
	if err != nil {
		return "", err
	}

	if err := copyFile(abs, dst); err != nil {
		return "", fmt.Errorf("failed to copy %s: %w", abs, err)
	}

	srcSHA, err := computeSHA256(abs)
	if err != nil {
		os.Remove(dst)
		return "", fmt.Errorf("failed to hash source: %w", err)
	}
	dstSHA, err := computeSHA256(dst)
	if err != nil || dstSHA != srcSHA {
		os.Remove(dst)
		return "", fmt.Errorf("backup verification failed for %s", abs)
	}

	// Preserve mode and modification time; failures here do not void the copy.
	_ = os.Chmod(dst, srcInfo.Mode().Perm())
	_ = os.Chtimes(dst, srcInfo.ModTime(), srcInfo.ModTime())

	bs.logger.Info("backed up file",
		zap.String("path", abs),
		zap.String("backup", dst),
		zap.String("sha256", srcSHA))

	return dst, nil
}

// mirrorPath turns an absolute path into a relative one, keeping the
// drive letter as a directory on Windows ("C:\x" -> "C/x").
func mirrorPath(abs string) string {
	vol := filepath.VolumeName(abs)
	rest := strings.TrimLeft(abs[len(vol):], `\/`)
	vol = strings.Trim(strings.TrimSuffix(vol, ":"), `\/`)
	if vol == "" {
		return rest
	}
	return filepath.Join(vol, rest)
}

// computeSHA256 computes the SHA256 hash of a file
func computeSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// copyFile copies a file from src to dst using atomic write pattern.
// Writes to temp file first, then renames to prevent partial copies.
func copyFile(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	// Create temp file in same directory for atomic rename
	tmpFile, err := os.CreateTemp(filepath.Dir(dst), ".reclaim-copy-*")
	if err != nil {
		return err
	}
	tmpPath := tmpFile.Name()

	// Clean up temp file on any error
	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err = io.Copy(tmpFile, sourceFile); err != nil {
		tmpFile.Close()
		return err
	}

	// Sync to disk before rename
	if err = tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return err
	}
	if err = tmpFile.Close(); err != nil {
		return err
	}

	if err = os.Rename(tmpPath, dst); err != nil {
		return err
	}

	success = true
	return nil
}

// Ensure SessionBackupStore implements domain.BackupStore.
var _ domain.BackupStore = (*SessionBackupStore)(nil)
