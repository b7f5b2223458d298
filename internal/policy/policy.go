// Package policy implements the Strategy pattern for platform-specific rule tables.
// Each OS (Linux, macOS, Windows) defines its own protected, safe and user locations.
package policy

import (
	"os"
	"strings"

	"github.com/eliteGoblin/focusd/reclaim/internal/domain"
)

// PlatformPolicy defines the directories that shape classification on one OS.
// Paths are platform-native; ToRules normalizes them.
type PlatformPolicy interface {
	// ID returns the GOOS this policy serves (e.g., "linux", "darwin").
	ID() string

	// Name returns human-readable name for display.
	Name() string

	// CriticalRoots returns OS and program directories that are never touched.
	CriticalRoots() []string

	// ProgramDirs returns dirs whose running executables make their install dir critical.
	ProgramDirs() []string

	// TrustedAppDirs returns dirs where executables are classified as system.
	TrustedAppDirs() []string

	// TempDirs returns temporary directories.
	TempDirs() []string

	// CacheDirs returns per-user cache directories.
	CacheDirs() []string

	// TrashDirs returns the per-user trash/recycle locations.
	TrashDirs() []string

	// SafeLocations returns absolute dirs whose contents are freely disposable.
	SafeLocations() []string

	// UserMarkers returns extra platform markers for user content.
	UserMarkers() []string

	// ExcludedDirs returns absolute dirs the scanner never descends into.
	ExcludedDirs() []string
}

// Env carries the environment a policy derives its paths from.
type Env struct {
	Home    string
	TempDir string
	Vars    map[string]string
}

// CurrentEnv reads the process environment.
func CurrentEnv() Env {
	home, _ := os.UserHomeDir()
	vars := make(map[string]string)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			vars[strings.ToUpper(k)] = v
		}
	}
	return Env{Home: home, TempDir: os.TempDir(), Vars: vars}
}

// Get returns the variable or fallback when unset or empty.
func (e Env) Get(key, fallback string) string {
	if v := e.Vars[strings.ToUpper(key)]; v != "" {
		return v
	}
	return fallback
}

// ToRules flattens a PlatformPolicy and the shared tables into domain.Rules.
// extraCritical adds user-configured protected roots.
func ToRules(p PlatformPolicy, extraCritical ...string) domain.Rules {
	critical := append(append([]string{}, p.CriticalRoots()...), extraCritical...)

	return domain.Rules{
		OS:                p.ID(),
		CacheMarkers:      cloneStrings(cacheMarkers),
		DevMarkers:        append([]domain.CategoryMarker(nil), devMarkers...),
		ThumbnailMarkers:  cloneStrings(thumbnailMarkers),
		ThumbnailExts:     cloneStrings(thumbnailExts),
		LocationMarkers:   append([]domain.CategoryMarker(nil), locationMarkers...),
		TempDirs:          normalizeDirs(p.TempDirs()),
		TrashDirs:         normalizeDirs(p.TrashDirs()),
		BackupMarkers:     cloneStrings(backupMarkers),
		CrashDumpMarkers:  cloneStrings(crashDumpMarkers),
		ExecutableExts:    cloneStrings(executableExts),
		InstallerKeywords: cloneStrings(installerKeywords),
		TrustedAppDirs:    normalizeDirs(p.TrustedAppDirs()),
		Extensions:        ExtensionIndex(),
		ModelKeywords:     cloneStrings(modelKeywords),
		SharedLibExts:     cloneStrings(sharedLibExts),
		CriticalRoots:     normalizeDirs(critical),
		ProgramDirs:       normalizeDirs(p.ProgramDirs()),
		SafeMarkers:       cloneStrings(safeMarkers),
		SafeLocations:     normalizeDirs(append(append(append([]string{}, p.SafeLocations()...), p.TempDirs()...), p.CacheDirs()...)),
		UserMarkers:       append(cloneStrings(userMarkers), normalizeMarkers(p.UserMarkers())...),
		ScanExclusions:    cloneStrings(scanExclusions),
		ExcludedDirs:      normalizeDirs(p.ExcludedDirs()),
	}
}

// normalizeDirs drops empty entries and duplicates, keeping order.
func normalizeDirs(dirs []string) []string {
	seen := make(map[string]bool, len(dirs))
	out := make([]string, 0, len(dirs))
	for _, d := range dirs {
		n := domain.NormalizeDir(d)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

func normalizeMarkers(markers []string) []string {
	out := make([]string, 0, len(markers))
	for _, m := range markers {
		out = append(out, domain.NormalizePath(m))
	}
	return out
}

func cloneStrings(s []string) []string {
	return append([]string(nil), s...)
}
