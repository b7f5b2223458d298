package infra

import (
	"errors"
	"fmt"

	"golang.org/x/sys/windows"

	"github.com/eliteGoblin/focusd/reclaim/internal/domain"
)

// LiveProbeImpl implements domain.LiveProbe with an exclusive CreateFile.
type LiveProbeImpl struct{}

// NewLiveProbe creates the platform in-use probe.
func NewLiveProbe() *LiveProbeImpl {
	return &LiveProbeImpl{}
}

// InUse opens path for read-write with no sharing. Sharing and lock
// violations mean another process holds the file.
func (p *LiveProbeImpl) InUse(path string) (bool, error) {
	name, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return false, fmt.Errorf("%w: %s: %v", domain.ErrProbeInconclusive, path, err)
	}

	h, err := windows.CreateFile(
		name,
		windows.GENERIC_READ|windows.GENERIC_WRITE,
		0, // no sharing
		nil,
		windows.OPEN_EXISTING,
		windows.FILE_ATTRIBUTE_NORMAL,
		0,
	)
	if err == nil {
		_ = windows.CloseHandle(h)
		return false, nil
	}
	if errors.Is(err, windows.ERROR_SHARING_VIOLATION) || errors.Is(err, windows.ERROR_LOCK_VIOLATION) {
		return true, nil
	}
	return false, fmt.Errorf("%w: %s: %v", domain.ErrProbeInconclusive, path, err)
}

// Ensure LiveProbeImpl implements domain.LiveProbe.
var _ domain.LiveProbe = (*LiveProbeImpl)(nil)
