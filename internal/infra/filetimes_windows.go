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

	data, ok := info.Sys().(*syscall.Win32FileAttributeData)
	if !ok {
		return t
	}
	t.Created = time.Unix(0, data.CreationTime.Nanoseconds())
	t.Accessed = time.Unix(0, data.LastAccessTime.Nanoseconds())
	return t
}
