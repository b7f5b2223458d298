package usecase

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/reclaim/internal/domain"
)

const trashInfoExt = ".trashinfo"

// Sweep empties roots of recs. Files go first; directories left empty by
// removed files are pruned up to (never including) their root. Each
// info/<name>.trashinfo is handled last and only once files/<name> is gone,
// so the trash never holds metadata without an item or an item without
// metadata. A kept item keeps its .trashinfo, which is reported as blocked.
func (m *SafeDeleteManager) Sweep(ctx context.Context, recs []*domain.FileRecord, roots []string, opts domain.DeleteOptions) *domain.BatchResult {
	var items, infos []*domain.FileRecord
	for _, r := range recs {
		if trashEntryFor(r.Path) != "" {
			infos = append(infos, r)
		} else {
			items = append(items, r)
		}
	}

	result := m.DeleteAll(ctx, items, opts)
	if result.Cancelled {
		return result
	}

	var left []string
	for _, o := range result.Outcomes {
		if o.Status != domain.OutcomeRemoved {
			left = append(left, o.Path)
		}
	}

	if !opts.DryRun {
		m.pruneEmptyDirs(result.Outcomes, roots)
	}

	var ready []*domain.FileRecord
	for _, r := range infos {
		entry := trashEntryFor(r.Path)
		if !opts.DryRun && !holds(entry, left) {
			// A trashed directory that held no files is just an empty dir.
			_ = m.fsManager.RemoveEmptyDir(entry)
		}
		if holds(entry, left) || (!opts.DryRun && m.fsManager.Exists(entry)) {
			out := domain.Outcome{
				Path:   r.Path,
				Safety: r.Safety,
				Size:   r.Size,
				Status: domain.OutcomeBlocked,
				Reason: "trashed item still present",
				Err:    fmt.Errorf("%w: %s still present", domain.ErrBlocked, entry),
			}
			m.record(r, out, opts)
			result.Outcomes = append(result.Outcomes, out)
			result.Blocked++
			continue
		}
		ready = append(ready, r)
	}

	rest := m.DeleteAll(ctx, ready, opts)
	result.Outcomes = append(result.Outcomes, rest.Outcomes...)
	result.Removed += rest.Removed
	result.Blocked += rest.Blocked
	result.Failed += rest.Failed
	result.FreedBytes += rest.FreedBytes
	result.Cancelled = rest.Cancelled
	result.DurationMs = m.clock.Now().Sub(result.ExecutedAt).Milliseconds()
	return result
}

// pruneEmptyDirs removes the parents of removed files while they are empty,
// deepest first. Roots and the files/ and info/ dirs of a trash root stay.
func (m *SafeDeleteManager) pruneEmptyDirs(outcomes []domain.Outcome, roots []string) {
	// The scanner walks a symlinked root at its target, e.g. /tmp on macOS.
	all := append([]string(nil), roots...)
	for _, r := range roots {
		if c, err := m.fsManager.Canonical(r); err == nil && c != filepath.Clean(r) {
			all = append(all, c)
		}
	}
	roots = all

	keep := make(map[string]bool, len(roots)*3)
	for _, r := range roots {
		r = filepath.Clean(r)
		keep[r] = true
		keep[filepath.Join(r, "files")] = true
		keep[filepath.Join(r, "info")] = true
	}

	dirs := make(map[string]bool)
	for _, o := range outcomes {
		if o.Status != domain.OutcomeRemoved {
			continue
		}
		root := rootOf(o.Path, roots)
		if root == "" {
			continue
		}
		for d := filepath.Dir(o.Path); d != root && strings.HasPrefix(d, root+string(filepath.Separator)); d = filepath.Dir(d) {
			dirs[d] = true
		}
	}

	ordered := make([]string, 0, len(dirs))
	for d := range dirs {
		if !keep[d] {
			ordered = append(ordered, d)
		}
	}
	// Longer paths are deeper; children go before their parents.
	sort.Slice(ordered, func(i, j int) bool { return len(ordered[i]) > len(ordered[j]) })

	for _, d := range ordered {
		if err := m.fsManager.RemoveEmptyDir(d); err != nil {
			m.logger.Debug("directory kept", zap.String("path", d), zap.Error(err))
			continue
		}
		m.logger.Info("removed empty directory", zap.String("path", d))
	}
}

func rootOf(path string, roots []string) string {
	for _, r := range roots {
		r = filepath.Clean(r)
		if strings.HasPrefix(path, r+string(filepath.Separator)) {
			return r
		}
	}
	return ""
}

// trashEntryFor maps <trash>/info/<name>.trashinfo to <trash>/files/<name>.
// Any other path maps to "".
func trashEntryFor(path string) string {
	dir, base := filepath.Split(path)
	dir = filepath.Clean(dir)
	if filepath.Base(dir) != "info" || !strings.HasSuffix(base, trashInfoExt) {
		return ""
	}
	name := strings.TrimSuffix(base, trashInfoExt)
	if name == "" {
		return ""
	}
	return filepath.Join(filepath.Dir(dir), "files", name)
}

// holds reports whether entry is one of paths or an ancestor of one.
func holds(entry string, paths []string) bool {
	prefix := entry + string(filepath.Separator)
	for _, p := range paths {
		if p == entry || strings.HasPrefix(p, prefix) {
			return true
		}
	}
	return false
}
