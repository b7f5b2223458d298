package domain

import (
	"fmt"
	"strings"
)

// Category is the semantic kind assigned to a file path.
type Category int

const (
	CategorySystem Category = iota
	CategoryMedia
	CategoryDocuments
	CategoryImages
	CategoryArchives
	CategoryTemp
	CategoryBackups
	CategoryInstallers
	CategoryVirtual
	CategoryModels
	CategoryCrashDumps
	CategoryCache
	CategoryRecycle
	CategoryDownloads
	CategoryExecutables
	CategoryDevDependencies
	CategoryBuildOutput
	CategoryDevCache
	CategoryThumbnails
	CategoryOther

	categoryCount
)

var categoryNames = [...]string{
	CategorySystem:          "system",
	CategoryMedia:           "media",
	CategoryDocuments:       "documents",
	CategoryImages:          "images",
	CategoryArchives:        "archives",
	CategoryTemp:            "temp",
	CategoryBackups:         "backups",
	CategoryInstallers:      "installers",
	CategoryVirtual:         "virtual",
	CategoryModels:          "models",
	CategoryCrashDumps:      "crashdumps",
	CategoryCache:           "cache",
	CategoryRecycle:         "recycle",
	CategoryDownloads:       "downloads",
	CategoryExecutables:     "executables",
	CategoryDevDependencies: "devDependencies",
	CategoryBuildOutput:     "buildOutput",
	CategoryDevCache:        "devCache",
	CategoryThumbnails:      "thumbnails",
	CategoryOther:           "other",
}

// One name per category; fails to compile when the two drift apart.
var _ = [1]struct{}{}[len(categoryNames)-int(categoryCount)]

func (c Category) String() string {
	if !c.Valid() {
		return fmt.Sprintf("Category(%d)", int(c))
	}
	return categoryNames[c]
}

// Valid reports whether c is one of the declared categories.
func (c Category) Valid() bool {
	return c >= 0 && c < categoryCount
}

// ParseCategory maps a category name (case-insensitive) back to its value.
func ParseCategory(s string) (Category, error) {
	for i, name := range categoryNames {
		if strings.EqualFold(name, s) {
			return Category(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}

// AllCategories returns every category in declaration order.
func AllCategories() []Category {
	out := make([]Category, 0, categoryCount)
	for c := Category(0); c < categoryCount; c++ {
		out = append(out, c)
	}
	return out
}

// SafetyLevel is a risk tier, most restrictive first.
type SafetyLevel int

const (
	SafetyCritical SafetyLevel = iota
	SafetySystem
	SafetyRunning
	SafetyInUse
	SafetyUnknown
	SafetyUser
	SafetySafe

	safetyCount
)

var safetyNames = [...]string{
	SafetyCritical: "critical",
	SafetySystem:   "system",
	SafetyRunning:  "running",
	SafetyInUse:    "inUse",
	SafetyUnknown:  "unknown",
	SafetyUser:     "user",
	SafetySafe:     "safe",
}

var _ = [1]struct{}{}[len(safetyNames)-int(safetyCount)]

func (s SafetyLevel) String() string {
	if !s.Valid() {
		return fmt.Sprintf("SafetyLevel(%d)", int(s))
	}
	return safetyNames[s]
}

// Valid reports whether s is one of the declared safety levels.
func (s SafetyLevel) Valid() bool {
	return s >= 0 && s < safetyCount
}

// Blocking reports whether the delete gate refuses this level without override.
func (s SafetyLevel) Blocking() bool {
	switch s {
	case SafetyCritical, SafetySystem, SafetyRunning, SafetyInUse:
		return true
	}
	return false
}

// ParseSafetyLevel maps a safety name (case-insensitive) back to its value.
func ParseSafetyLevel(s string) (SafetyLevel, error) {
	for i, name := range safetyNames {
		if strings.EqualFold(name, s) {
			return SafetyLevel(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownSafety, s)
}
