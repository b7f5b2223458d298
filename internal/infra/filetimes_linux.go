package infra

import (
	"io/fs"
	"syscall"
	"time"

	"github.com/eliteGoblin/focusd/reclaim/internal/domain"
)

// fileTimes reads atime from the stat data. Linux stat has no birth time,
// so Created falls back to the modification time.
func fileTimes(info fs.FileInfo) domain.FileTimes {
	mod := info.ModTime()
	t := domain.FileTimes{Modified: mod, Created: mod, Accessed: mod}

	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return t
	}
	t.Accessed = time.Unix(stat.Atim.Unix())
	return t
}
