//go:build !windows

package infra

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/reclaim/internal/domain"
)

// trashInfoTime is the DeletionDate layout of freedesktop .trashinfo files.
const trashInfoTime = "2006-01-02T15:04:05"

// TrashStrategy moves files to the per-user trash. Linux and other Unix
// systems use the freedesktop layout; macOS uses ~/.Trash.
type TrashStrategy struct {
	goos     string
	home     string
	dataHome string
	now      func() time.Time
	logger   *zap.Logger
}

// NewTrashStrategy creates a trash strategy for the current OS, honoring XDG_DATA_HOME.
func NewTrashStrategy(home string, logger *zap.Logger) *TrashStrategy {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		dataHome = filepath.Join(home, ".local", "share")
	}
	return &TrashStrategy{
		goos:     runtime.GOOS,
		home:     home,
		dataHome: dataHome,
		now:      time.Now,
		logger:   logger,
	}
}

// NewTrashStrategyFor creates a strategy with a fixed OS layout (for testing).
func NewTrashStrategyFor(goos, home string, logger *zap.Logger) *TrashStrategy {
	return &TrashStrategy{
		goos:     goos,
		home:     home,
		dataHome: filepath.Join(home, ".local", "share"),
		now:      time.Now,
		logger:   logger,
	}
}

func (t *TrashStrategy) Mode() domain.DisposalMode {
	return domain.DisposalTrash
}

// Dir returns the directory trashed files land in.
func (t *TrashStrategy) Dir() string {
	if t.goos == "darwin" {
		return filepath.Join(t.home, ".Trash")
	}
	return filepath.Join(t.dataHome, "Trash", "files")
}

// Dispose moves path into the trash. A move across filesystems fails with
// a CrossDeviceError; the file is never copied.
func (t *TrashStrategy) Dispose(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if t.goos == "darwin" {
		return t.disposeDarwin(abs)
	}
	return t.disposeFreedesktop(abs)
}

func (t *TrashStrategy) disposeDarwin(abs string) error {
	dir := t.Dir()
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create trash dir: %w", err)
	}
	dst, err := uniqueName(dir, filepath.Base(abs), func(candidate string) (bool, error) {
		_, err := os.Lstat(candidate)
		if os.IsNotExist(err) {
			return true, nil
		}
		return false, err
	})
	if err != nil {
		return err
	}
	if err := moveFile(abs, dst); err != nil {
		return err
	}
	t.logger.Debug("moved to trash", zap.String("path", abs), zap.String("trash", dst))
	return nil
}

func (t *TrashStrategy) disposeFreedesktop(abs string) error {
	trashDir := filepath.Join(t.dataHome, "Trash")
	filesDir := filepath.Join(trashDir, "files")
	infoDir := filepath.Join(trashDir, "info")
	for _, d := range []string{filesDir, infoDir} {
		if err := os.MkdirAll(d, 0700); err != nil {
			return fmt.Errorf("failed to create trash dir: %w", err)
		}
	}

	info := trashInfo(abs, t.now())
	var infoPath string

	// The .trashinfo file is created exclusively first; it reserves the name.
	dst, err := uniqueName(filesDir, filepath.Base(abs), func(candidate string) (bool, error) {
		if _, err := os.Lstat(candidate); err == nil {
			return false, nil
		}
		ip := filepath.Join(infoDir, filepath.Base(candidate)+".trashinfo")
		f, err := os.OpenFile(ip, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
		if errors.Is(err, os.ErrExist) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		_, werr := f.WriteString(info)
		cerr := f.Close()
		if werr != nil || cerr != nil {
			os.Remove(ip)
			return false, errors.Join(werr, cerr)
		}
		infoPath = ip
		return true, nil
	})
	if err != nil {
		return fmt.Errorf("failed to reserve trash entry: %w", err)
	}

	if err := moveFile(abs, dst); err != nil {
		os.Remove(infoPath)
		return err
	}
	t.logger.Debug("moved to trash", zap.String("path", abs), zap.String("trash", dst))
	return nil
}

// trashInfo renders a .trashinfo body. Path is URL-escaped per segment.
func trashInfo(abs string, deleted time.Time) string {
	segments := strings.Split(filepath.ToSlash(abs), "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return "[Trash Info]\n" +
		"Path=" + strings.Join(segments, "/") + "\n" +
		"DeletionDate=" + deleted.Format(trashInfoTime) + "\n"
}

// uniqueName tries name, then "stem.2.ext", "stem.3.ext"... until free accepts one.
func uniqueName(dir, name string, free func(candidate string) (bool, error)) (string, error) {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for i := 1; i < 10000; i++ {
		candidate := name
		if i > 1 {
			candidate = stem + "." + strconv.Itoa(i) + ext
		}
		full := filepath.Join(dir, candidate)
		ok, err := free(full)
		if err != nil {
			return "", err
		}
		if ok {
			return full, nil
		}
	}
	return "", fmt.Errorf("no free trash name for %s", name)
}

// Ensure TrashStrategy implements domain.DisposalStrategy.
var _ domain.DisposalStrategy = (*TrashStrategy)(nil)
