// Package usecase contains application business logic.
package usecase

import (
	"strings"

	"github.com/eliteGoblin/focusd/reclaim/internal/domain"
)

// PathClassifier implements domain.Classifier over a flattened rule table.
// It never touches the filesystem.
type PathClassifier struct {
	rules domain.Rules
}

// NewPathClassifier creates a classifier for the given rules.
func NewPathClassifier(rules domain.Rules) *PathClassifier {
	return &PathClassifier{rules: rules}
}

// Categorize returns the category of path. The first matching rule wins:
// directory context beats name keywords, which beat the extension table.
func (c *PathClassifier) Categorize(path string) domain.Category {
	p := domain.NormalizePath(path)
	name := domain.BaseName(p)
	ext := domain.Ext(name)

	if containsAny(p, c.rules.CacheMarkers) {
		return domain.CategoryCache
	}

	for _, m := range c.rules.DevMarkers {
		if strings.Contains(p, m.Marker) {
			return m.Category
		}
	}

	if containsAny(p, c.rules.ThumbnailMarkers) && hasSuffixIn(ext, c.rules.ThumbnailExts) {
		return domain.CategoryThumbnails
	}

	if cat, ok := c.location(p); ok {
		return cat
	}

	if containsAny(p, c.rules.BackupMarkers) {
		return domain.CategoryBackups
	}
	if containsAny(p, c.rules.CrashDumpMarkers) {
		return domain.CategoryCrashDumps
	}

	if hasSuffixIn(ext, c.rules.ExecutableExts) {
		switch {
		case containsAny(name, c.rules.InstallerKeywords):
			return domain.CategoryInstallers
		case underAny(p, c.rules.TrustedAppDirs):
			return domain.CategorySystem
		default:
			return domain.CategoryExecutables
		}
	}

	if cat, ok := c.rules.Extensions[ext]; ok {
		return cat
	}

	if containsAny(name, c.rules.ModelKeywords) {
		return domain.CategoryModels
	}
	if isSharedLib(name, ext, c.rules.SharedLibExts) {
		return domain.CategorySystem
	}

	return domain.CategoryOther
}

func (c *PathClassifier) location(p string) (domain.Category, bool) {
	if underAny(p, c.rules.TempDirs) {
		return domain.CategoryTemp, true
	}
	if underAny(p, c.rules.TrashDirs) {
		return domain.CategoryRecycle, true
	}
	for _, m := range c.rules.LocationMarkers {
		if strings.Contains(p, m.Marker) {
			return m.Category, true
		}
	}
	return 0, false
}

// isSharedLib matches library extensions, including versioned
// sonames such as libfoo.so.6.
func isSharedLib(name, ext string, exts []string) bool {
	if hasSuffixIn(ext, exts) {
		return true
	}
	return strings.Contains(name, ".so.")
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if m != "" && strings.Contains(s, m) {
			return true
		}
	}
	return false
}

func hasSuffixIn(ext string, exts []string) bool {
	if ext == "" {
		return false
	}
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}

func underAny(p string, dirs []string) bool {
	for _, d := range dirs {
		if domain.UnderDir(p, d) {
			return true
		}
	}
	return false
}

// Ensure PathClassifier implements domain.Classifier.
var _ domain.Classifier = (*PathClassifier)(nil)
