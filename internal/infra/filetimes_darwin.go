package infra

import (
	"io/fs"
	"syscall"
	"time"

	"github.com/eliteGoblin/focusd/reclaim/internal/domain"
)

func fileTimes(info fs.FileInfo) domain.FileTimes {
	mod := info.ModTime()
	t := domain.FileTimes{Modified: mod, Created: mod, Accessed: mod}

	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return t
	}
	t.Accessed = time.Unix(stat.Atimespec.Unix())
	if stat.Birthtimespec.Sec > 0 {
		t.Created = time.Unix(stat.Birthtimespec.Unix())
	}
	return t
}
