package infra

import (
	"context"
	"fmt"

	"github.com/shirou/gopsutil/v3/disk"

	"github.com/eliteGoblin/focusd/reclaim/internal/domain"
)

// DiskUsage is the free/used space of the filesystem holding a path.
type DiskUsage struct {
	Path        string
	Fstype      string
	Total       uint64
	Free        uint64
	Used        uint64
	UsedPercent float64
}

// Usage reports the usage of the filesystem that contains path.
func Usage(ctx context.Context, path string) (DiskUsage, error) {
	st, err := disk.UsageWithContext(ctx, path)
	if err != nil {
		return DiskUsage{}, fmt.Errorf("failed to read disk usage for %s: %w", path, err)
	}
	return DiskUsage{
		Path:        st.Path,
		Fstype:      st.Fstype,
		Total:       st.Total,
		Free:        st.Free,
		Used:        st.Used,
		UsedPercent: st.UsedPercent,
	}, nil
}

// UsageForRoots reports usage once per distinct mount among roots.
// Roots whose usage cannot be read are skipped.
func UsageForRoots(ctx context.Context, roots []string) []DiskUsage {
	mounts := mountPoints(ctx)
	seen := make(map[string]struct{})
	var out []DiskUsage
	for _, r := range roots {
		key := mountFor(r, mounts)
		if _, ok := seen[key]; ok {
			continue
		}
		u, err := Usage(ctx, r)
		if err != nil {
			continue
		}
		seen[key] = struct{}{}
		if key != r {
			u.Path = key
		}
		out = append(out, u)
	}
	return out
}

func mountPoints(ctx context.Context) []string {
	parts, err := disk.PartitionsWithContext(ctx, false)
	if err != nil {
		return nil
	}
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, p.Mountpoint)
	}
	return out
}

// mountFor returns the longest mount point containing path, or path itself.
func mountFor(path string, mounts []string) string {
	np := domain.NormalizePath(path)
	best := ""
	for _, m := range mounts {
		nm := domain.NormalizeDir(m)
		if nm == "" || domain.UnderDir(np, nm) {
			if len(m) > len(best) {
				best = m
			}
		}
	}
	if best == "" {
		return path
	}
	return best
}
