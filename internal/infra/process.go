// Package infra implements infrastructure concerns (processes, filesystem, disposal, storage).
package infra

import (
	"context"
	"path/filepath"
	"time"

	"github.com/shirou/gopsutil/v3/process"
	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/reclaim/internal/domain"
)

// ProcessEnumeratorImpl implements domain.ProcessEnumerator using gopsutil.
type ProcessEnumeratorImpl struct {
	programDirs []string
	logger      *zap.Logger
}

// NewProcessEnumerator creates an enumerator. A process whose executable lives
// under one of programDirs contributes its install directory to the snapshot.
func NewProcessEnumerator(programDirs []string, logger *zap.Logger) *ProcessEnumeratorImpl {
	dirs := make([]string, 0, len(programDirs))
	for _, d := range programDirs {
		if n := domain.NormalizeDir(d); n != "" {
			dirs = append(dirs, n)
		}
	}
	return &ProcessEnumeratorImpl{programDirs: dirs, logger: logger}
}

// Snapshot captures running process names and system process install dirs.
// Processes that exit mid-enumeration or deny access are skipped.
func (pe *ProcessEnumeratorImpl) Snapshot(ctx context.Context) (*domain.ProcessSnapshot, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(procs))
	seenDirs := make(map[string]struct{})
	var dirs []string

	for _, p := range procs {
		name, err := p.NameWithContext(ctx)
		if err != nil {
			continue // Process may have exited
		}
		names = append(names, name)

		exe, err := p.ExeWithContext(ctx)
		if err != nil || exe == "" {
			continue
		}
		if !pe.isProgramPath(exe) {
			continue
		}
		dir := filepath.Dir(exe)
		if _, ok := seenDirs[dir]; !ok {
			seenDirs[dir] = struct{}{}
			dirs = append(dirs, dir)
		}
	}

	pe.logger.Debug("process snapshot captured",
		zap.Int("processes", len(procs)),
		zap.Int("system_dirs", len(dirs)))

	return domain.NewProcessSnapshot(names, dirs, time.Now()), nil
}

func (pe *ProcessEnumeratorImpl) isProgramPath(exe string) bool {
	p := domain.NormalizePath(exe)
	for _, d := range pe.programDirs {
		if domain.UnderDir(p, d) {
			return true
		}
	}
	return false
}

// Ensure ProcessEnumeratorImpl implements domain.ProcessEnumerator.
var _ domain.ProcessEnumerator = (*ProcessEnumeratorImpl)(nil)
