//go:build !unix && !windows

package infra

import (
	"fmt"

	"github.com/eliteGoblin/focusd/reclaim/internal/domain"
)

// LiveProbeImpl reports every probe as inconclusive on this platform.
type LiveProbeImpl struct{}

func NewLiveProbe() *LiveProbeImpl {
	return &LiveProbeImpl{}
}

func (p *LiveProbeImpl) InUse(path string) (bool, error) {
	return false, fmt.Errorf("%w: %s: unsupported platform", domain.ErrProbeInconclusive, path)
}
