//go:build unix

package infra

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/eliteGoblin/focusd/reclaim/internal/domain"
)

// LiveProbeImpl implements domain.LiveProbe by opening the file read-write.
type LiveProbeImpl struct{}

// NewLiveProbe creates the platform in-use probe.
func NewLiveProbe() *LiveProbeImpl {
	return &LiveProbeImpl{}
}

// InUse opens path for read-write without truncating it. A busy text file
// or device counts as in use; any other failure is inconclusive.
func (p *LiveProbeImpl) InUse(path string) (bool, error) {
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err == nil {
		_ = unix.Close(fd)
		return false, nil
	}
	if errors.Is(err, unix.ETXTBSY) || errors.Is(err, unix.EBUSY) {
		return true, nil
	}
	return false, fmt.Errorf("%w: %s: %v", domain.ErrProbeInconclusive, path, err)
}

// Ensure LiveProbeImpl implements domain.LiveProbe.
var _ domain.LiveProbe = (*LiveProbeImpl)(nil)
