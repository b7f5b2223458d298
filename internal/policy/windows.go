package policy

import "strings"

// WindowsPolicy implements PlatformPolicy for Windows.
// Paths come from the environment and are joined with backslashes so the
// policy can be built and inspected on any OS.
type WindowsPolicy struct {
	env Env
}

// NewWindowsPolicy creates a Windows policy from the current environment.
func NewWindowsPolicy() *WindowsPolicy {
	return &WindowsPolicy{env: CurrentEnv()}
}

// NewWindowsPolicyWithEnv creates a Windows policy with a custom environment (for testing).
func NewWindowsPolicyWithEnv(env Env) *WindowsPolicy {
	return &WindowsPolicy{env: env}
}

func (p *WindowsPolicy) ID() string {
	return "windows"
}

func (p *WindowsPolicy) Name() string {
	return "Windows"
}

func (p *WindowsPolicy) CriticalRoots() []string {
	drive := p.systemDrive()
	return []string{
		p.winDir(),
		p.programFiles(),
		p.programFilesX86(),
		p.env.Get("PROGRAMDATA", drive+`\ProgramData`),
		drive + `\Boot`,
		drive + `\Recovery`,
		drive + `\EFI`,
		drive + `\System Volume Information`,
	}
}

func (p *WindowsPolicy) ProgramDirs() []string {
	return []string{p.winDir(), p.programFiles(), p.programFilesX86()}
}

func (p *WindowsPolicy) TrustedAppDirs() []string {
	return []string{
		p.programFiles(),
		p.programFilesX86(),
		winJoin(p.localAppData(), "Programs"),
	}
}

func (p *WindowsPolicy) TempDirs() []string {
	return []string{
		p.env.TempDir,
		p.env.Get("TEMP", ""),
		p.env.Get("TMP", ""),
		winJoin(p.localAppData(), "Temp"),
	}
}

func (p *WindowsPolicy) CacheDirs() []string {
	return []string{
		winJoin(p.localAppData(), `pip\Cache`),
		winJoin(p.env.Get("APPDATA", winJoin(p.profile(), `AppData\Roaming`)), "npm-cache"),
		winJoin(p.localAppData(), `NuGet\v3-cache`),
		winJoin(p.localAppData(), "CrashDumps"),
	}
}

func (p *WindowsPolicy) TrashDirs() []string {
	return []string{p.systemDrive() + `\$Recycle.Bin`}
}

func (p *WindowsPolicy) SafeLocations() []string {
	return []string{
		winJoin(p.localAppData(), "CrashDumps"),
		winJoin(p.localAppData(), `Microsoft\Windows\INetCache`),
		winJoin(p.localAppData(), `D3DSCache`),
	}
}

func (p *WindowsPolicy) UserMarkers() []string {
	return []string{"/onedrive/", "/steam/userdata/"}
}

func (p *WindowsPolicy) ExcludedDirs() []string {
	return []string{p.systemDrive() + `\System Volume Information`}
}

func (p *WindowsPolicy) systemDrive() string {
	return p.env.Get("SYSTEMDRIVE", "C:")
}

func (p *WindowsPolicy) winDir() string {
	return p.env.Get("WINDIR", p.systemDrive()+`\Windows`)
}

func (p *WindowsPolicy) programFiles() string {
	return p.env.Get("PROGRAMFILES", p.systemDrive()+`\Program Files`)
}

func (p *WindowsPolicy) programFilesX86() string {
	return p.env.Get("PROGRAMFILES(X86)", p.systemDrive()+`\Program Files (x86)`)
}

func (p *WindowsPolicy) profile() string {
	return p.env.Get("USERPROFILE", p.env.Home)
}

func (p *WindowsPolicy) localAppData() string {
	return p.env.Get("LOCALAPPDATA", winJoin(p.profile(), `AppData\Local`))
}

// winJoin joins with a backslash; empty base yields empty so unset
// variables never produce a relative path.
func winJoin(base, rel string) string {
	if base == "" {
		return ""
	}
	return strings.TrimRight(base, `\/`) + `\` + rel
}

// Ensure WindowsPolicy implements PlatformPolicy.
var _ PlatformPolicy = (*WindowsPolicy)(nil)
