package policy

import "path/filepath"

// DarwinPolicy implements PlatformPolicy for macOS.
type DarwinPolicy struct {
	env Env
}

// NewDarwinPolicy creates a macOS policy from the current environment.
func NewDarwinPolicy() *DarwinPolicy {
	return &DarwinPolicy{env: CurrentEnv()}
}

// NewDarwinPolicyWithEnv creates a macOS policy with a custom environment (for testing).
func NewDarwinPolicyWithEnv(env Env) *DarwinPolicy {
	return &DarwinPolicy{env: env}
}

func (p *DarwinPolicy) ID() string {
	return "darwin"
}

func (p *DarwinPolicy) Name() string {
	return "macOS"
}

// CriticalRoots covers the sealed system volume, shared Library and app bundles.
// The per-user ~/Library is not included.
func (p *DarwinPolicy) CriticalRoots() []string {
	return []string{
		"/System", "/Library", "/Applications", "/bin", "/sbin", "/usr",
		"/private/etc", "/private/var/db", "/opt/homebrew",
	}
}

func (p *DarwinPolicy) ProgramDirs() []string {
	return []string{"/System", "/Applications", "/usr", "/Library/Apple"}
}

func (p *DarwinPolicy) TrustedAppDirs() []string {
	return []string{"/Applications", "/System/Applications", "/usr/bin", "/usr/local/bin", "/opt/homebrew/bin"}
}

func (p *DarwinPolicy) TempDirs() []string {
	tmp := p.env.TempDir
	if tmp == "" {
		tmp = "/tmp"
	}
	return []string{tmp, "/private/tmp"}
}

func (p *DarwinPolicy) CacheDirs() []string {
	return []string{filepath.Join(p.env.Home, "Library", "Caches")}
}

func (p *DarwinPolicy) TrashDirs() []string {
	return []string{filepath.Join(p.env.Home, ".Trash")}
}

func (p *DarwinPolicy) SafeLocations() []string {
	return []string{
		filepath.Join(p.env.Home, ".Trash"),
		filepath.Join(p.env.Home, "Library", "Logs"),
		filepath.Join(p.env.Home, "Library", "Logs", "DiagnosticReports"),
		"/cores",
	}
}

func (p *DarwinPolicy) UserMarkers() []string {
	return []string{"/library/application support/steam/", "/library/mobile documents/"}
}

func (p *DarwinPolicy) ExcludedDirs() []string {
	return []string{"/dev", "/System/Volumes"}
}

// Ensure DarwinPolicy implements PlatformPolicy.
var _ PlatformPolicy = (*DarwinPolicy)(nil)
