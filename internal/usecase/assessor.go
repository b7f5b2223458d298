package usecase

import (
	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/reclaim/internal/domain"
)

// SafetyAssessorImpl implements domain.Assessor.
type SafetyAssessorImpl struct {
	rules  domain.Rules
	probe  domain.LiveProbe
	logger *zap.Logger
}

// NewSafetyAssessor creates an assessor. probe may be nil, in which case
// no file is ever reported as in use.
func NewSafetyAssessor(rules domain.Rules, probe domain.LiveProbe, logger *zap.Logger) *SafetyAssessorImpl {
	return &SafetyAssessorImpl{
		rules:  rules,
		probe:  probe,
		logger: logger,
	}
}

// Assess returns the safety level of path. First matching rule wins.
func (a *SafetyAssessorImpl) Assess(path string, snapshot *domain.ProcessSnapshot) domain.SafetyLevel {
	p := domain.NormalizePath(path)
	name := domain.BaseName(p)
	ext := domain.Ext(name)

	if a.isCritical(p, snapshot) {
		return domain.SafetyCritical
	}

	if a.inUse(path) {
		return domain.SafetyInUse
	}

	if hasSuffixIn(ext, a.rules.SharedLibExts) {
		return domain.SafetySystem
	}

	if snapshot.IsRunning(a.processName(name, ext)) {
		return domain.SafetyRunning
	}

	if containsAny(p, a.rules.SafeMarkers) || underAny(p, a.rules.SafeLocations) {
		return domain.SafetySafe
	}

	if containsAny(p, a.rules.UserMarkers) {
		return domain.SafetyUser
	}

	return domain.SafetyUnknown
}

// IsInUse runs only the live probe. The delete gate uses it to re-check
// a file right before disposal.
func (a *SafetyAssessorImpl) IsInUse(path string) bool {
	return a.inUse(path)
}

func (a *SafetyAssessorImpl) isCritical(p string, snapshot *domain.ProcessSnapshot) bool {
	if underAny(p, a.rules.CriticalRoots) {
		return true
	}
	if snapshot == nil {
		return false
	}
	for _, dir := range snapshot.SystemProcessDirs {
		if domain.UnderDir(p, domain.NormalizeDir(dir)) {
			return true
		}
	}
	return false
}

// inUse never fails: an inconclusive probe counts as accessible.
func (a *SafetyAssessorImpl) inUse(path string) bool {
	if a.probe == nil {
		return false
	}
	busy, err := a.probe.InUse(path)
	if err != nil {
		a.logger.Debug("in-use probe inconclusive",
			zap.String("path", path),
			zap.Error(err))
		return false
	}
	return busy
}

// processName strips an executable extension so "Game.exe" matches "game".
func (a *SafetyAssessorImpl) processName(name, ext string) string {
	if hasSuffixIn(ext, a.rules.ExecutableExts) {
		return name[:len(name)-len(ext)]
	}
	return name
}

// Ensure SafetyAssessorImpl implements domain.Assessor.
var _ domain.Assessor = (*SafetyAssessorImpl)(nil)
