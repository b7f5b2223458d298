//go:build !linux && !darwin && !windows

package infra

import (
	"io/fs"

	"github.com/eliteGoblin/focusd/reclaim/internal/domain"
)

func fileTimes(info fs.FileInfo) domain.FileTimes {
	mod := info.ModTime()
	return domain.FileTimes{Modified: mod, Created: mod, Accessed: mod}
}
