package infra

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/eliteGoblin/focusd/reclaim/internal/domain"
)

// FileSystemManagerImpl implements domain.FileSystemManager.
type FileSystemManagerImpl struct {
	homeDir string
}

// NewFileSystemManager creates a new filesystem manager.
func NewFileSystemManager() *FileSystemManagerImpl {
	return &FileSystemManagerImpl{homeDir: GetRealUserHome()}
}

// NewFileSystemManagerWithHome creates a filesystem manager with custom home (for testing).
func NewFileSystemManagerWithHome(home string) *FileSystemManagerImpl {
	return &FileSystemManagerImpl{homeDir: home}
}

// Exists checks if a path exists. A dangling symlink still exists.
func (fm *FileSystemManagerImpl) Exists(path string) bool {
	_, err := os.Lstat(fm.ExpandHome(path))
	return err == nil
}

// ExpandHome expands ~ to the user's home directory.
func (fm *FileSystemManagerImpl) ExpandHome(path string) string {
	if strings.HasPrefix(path, "~/") || strings.HasPrefix(path, `~\`) {
		return filepath.Join(fm.homeDir, path[2:])
	}
	if path == "~" {
		return fm.homeDir
	}
	return path
}

// Canonical returns the absolute, symlink-resolved path. On Windows the
// result is lowercased since the filesystem is case-insensitive.
func (fm *FileSystemManagerImpl) Canonical(path string) (string, error) {
	abs, err := filepath.Abs(fm.ExpandHome(path))
	if err != nil {
		return "", err
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", err
	}
	if runtime.GOOS == "windows" {
		resolved = strings.ToLower(resolved)
	}
	return resolved, nil
}

// Times extracts the timestamps the platform reports for info.
func (fm *FileSystemManagerImpl) Times(info fs.FileInfo) domain.FileTimes {
	return fileTimes(info)
}

// RemoveEmptyDir removes path if it is a directory with no entries.
// A non-empty directory or any other file type is left alone.
func (fm *FileSystemManagerImpl) RemoveEmptyDir(path string) error {
	info, err := os.Lstat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s: not a directory", path)
	}
	return os.Remove(path)
}

// Ensure FileSystemManagerImpl implements domain.FileSystemManager.
var _ domain.FileSystemManager = (*FileSystemManagerImpl)(nil)
