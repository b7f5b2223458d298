package policy

import "path/filepath"

// LinuxPolicy implements PlatformPolicy for Linux and other Unix-likes.
type LinuxPolicy struct {
	env Env
}

// NewLinuxPolicy creates a Linux policy from the current environment.
func NewLinuxPolicy() *LinuxPolicy {
	return &LinuxPolicy{env: CurrentEnv()}
}

// NewLinuxPolicyWithEnv creates a Linux policy with a custom environment (for testing).
func NewLinuxPolicyWithEnv(env Env) *LinuxPolicy {
	return &LinuxPolicy{env: env}
}

func (p *LinuxPolicy) ID() string {
	return "linux"
}

func (p *LinuxPolicy) Name() string {
	return "Linux"
}

func (p *LinuxPolicy) CriticalRoots() []string {
	return []string{
		"/bin", "/boot", "/dev", "/etc", "/lib", "/lib32", "/lib64", "/libx32",
		"/opt", "/proc", "/run", "/sbin", "/snap", "/sys", "/usr", "/var/lib",
	}
}

func (p *LinuxPolicy) ProgramDirs() []string {
	return []string{"/usr", "/opt", "/snap", "/bin", "/sbin", "/lib"}
}

func (p *LinuxPolicy) TrustedAppDirs() []string {
	return []string{"/usr/bin", "/usr/sbin", "/usr/local/bin", "/usr/lib", "/opt", "/snap", "/bin", "/sbin"}
}

func (p *LinuxPolicy) TempDirs() []string {
	tmp := p.env.TempDir
	if tmp == "" {
		tmp = "/tmp"
	}
	return []string{tmp, "/var/tmp"}
}

func (p *LinuxPolicy) CacheDirs() []string {
	return []string{p.env.Get("XDG_CACHE_HOME", filepath.Join(p.env.Home, ".cache"))}
}

func (p *LinuxPolicy) TrashDirs() []string {
	return []string{filepath.Join(p.dataHome(), "Trash")}
}

func (p *LinuxPolicy) SafeLocations() []string {
	return []string{
		filepath.Join(p.dataHome(), "Trash"),
		filepath.Join(p.env.Home, ".npm", "_cacache"),
		"/var/crash",
	}
}

func (p *LinuxPolicy) UserMarkers() []string {
	return []string{"/.steam/", "/.local/share/steam/"}
}

func (p *LinuxPolicy) ExcludedDirs() []string {
	return []string{"/proc", "/sys", "/dev", "/run"}
}

func (p *LinuxPolicy) dataHome() string {
	return p.env.Get("XDG_DATA_HOME", filepath.Join(p.env.Home, ".local", "share"))
}

// Ensure LinuxPolicy implements PlatformPolicy.
var _ PlatformPolicy = (*LinuxPolicy)(nil)
