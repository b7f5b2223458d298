// Package fixtures provides test helpers for integration tests.
package fixtures

import (
	"os"
	"path/filepath"
	"time"

	"github.com/eliteGoblin/focusd/reclaim/internal/policy"
)

// FakeHome builds a disposable home directory tree with files of chosen
// size and age. Sizes are produced with Truncate, so large files are sparse.
type FakeHome struct {
	HomeDir string
	TempDir string
}

// NewFakeHome creates the home and a private temp dir below root.
func NewFakeHome(root string) (*FakeHome, error) {
	f := &FakeHome{
		HomeDir: filepath.Join(root, "home"),
		TempDir: filepath.Join(root, "tmp"),
	}
	for _, d := range []string{f.HomeDir, f.TempDir} {
		if err := os.MkdirAll(d, 0755); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// Env returns a policy environment pointing at the fake home.
func (f *FakeHome) Env() policy.Env {
	return policy.Env{Home: f.HomeDir, TempDir: f.TempDir, Vars: map[string]string{}}
}

// Path joins rel onto the home directory.
func (f *FakeHome) Path(rel string) string {
	return filepath.Join(f.HomeDir, filepath.FromSlash(rel))
}

// TempPath joins rel onto the fake temp directory.
func (f *FakeHome) TempPath(rel string) string {
	return filepath.Join(f.TempDir, filepath.FromSlash(rel))
}

// WriteFile creates path with size bytes and sets its modification
// time age in the past. It returns path.
func (f *FakeHome) WriteFile(path string, size int64, age time.Duration) (string, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", err
	}
	file, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if err := file.Truncate(size); err != nil {
		file.Close()
		return "", err
	}
	if err := file.Close(); err != nil {
		return "", err
	}
	mtime := time.Now().Add(-age)
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		return "", err
	}
	return path, nil
}

// Exists reports whether path is still present.
func (f *FakeHome) Exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

// TrashFiles lists the names in the freedesktop trash of the fake home.
func (f *FakeHome) TrashFiles() []string {
	entries, err := os.ReadDir(f.Path(".local/share/Trash/files"))
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

// Cleanup removes the whole tree.
func (f *FakeHome) Cleanup() error {
	return os.RemoveAll(filepath.Dir(f.HomeDir))
}
