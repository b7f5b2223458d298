package infra

import (
	"os"
	"os/user"
	"path/filepath"
)

// ExecMode represents the execution mode of the application.
type ExecMode string

const (
	// ExecModeUser runs as a regular user with data under the home directory.
	ExecModeUser ExecMode = "user"
	// ExecModeSystem runs as root with data under /var/lib.
	ExecModeSystem ExecMode = "system"
)

const (
	ConfigFileName = "config.toml"
	LogFileName    = "reclaim.log"
	backupDirName  = "backups"
	systemDataDir  = "/var/lib/reclaim"
	userDataDir    = ".reclaim"
)

// ExecModeConfig holds paths derived from the execution mode.
type ExecModeConfig struct {
	Mode        ExecMode
	DataDir     string // Where config, audit database and key live
	ConfigPath  string
	AuditDBPath string
	BackupDir   string
	LogPath     string
	IsRoot      bool
}

// DetectExecMode determines the execution mode based on effective UID.
func DetectExecMode() *ExecModeConfig {
	if os.Geteuid() == 0 && os.Getenv("SUDO_USER") == "" {
		return newExecModeConfig(ExecModeSystem, systemDataDir, true)
	}
	return GetUserModeConfig()
}

// GetUserModeConfig returns user mode config regardless of current euid.
// When running under sudo, uses SUDO_USER to get the invoking user's home directory.
func GetUserModeConfig() *ExecModeConfig {
	home := GetRealUserHome()
	return newExecModeConfig(ExecModeUser, filepath.Join(home, userDataDir), os.Geteuid() == 0)
}

// ExecModeConfigAt builds a user mode config rooted at an explicit data dir.
func ExecModeConfigAt(dataDir string) *ExecModeConfig {
	return newExecModeConfig(ExecModeUser, dataDir, os.Geteuid() == 0)
}

func newExecModeConfig(mode ExecMode, dataDir string, isRoot bool) *ExecModeConfig {
	return &ExecModeConfig{
		Mode:        mode,
		DataDir:     dataDir,
		ConfigPath:  filepath.Join(dataDir, ConfigFileName),
		AuditDBPath: filepath.Join(dataDir, AuditDBName),
		BackupDir:   filepath.Join(dataDir, backupDirName),
		LogPath:     filepath.Join(dataDir, LogFileName),
		IsRoot:      isRoot,
	}
}

// String returns a human-readable description of the mode.
func (m ExecMode) String() string {
	switch m {
	case ExecModeSystem:
		return "system (root, " + systemDataDir + ")"
	case ExecModeUser:
		return "user (~/" + userDataDir + ")"
	default:
		return "unknown"
	}
}

// GetRealUserHome returns the real user's home directory, even when running under sudo.
// Under sudo, os.UserHomeDir() returns /var/root, so we use SUDO_USER to find the real user.
func GetRealUserHome() string {
	if sudoUser := os.Getenv("SUDO_USER"); sudoUser != "" {
		if u, err := user.Lookup(sudoUser); err == nil {
			return u.HomeDir
		}
	}
	home, _ := os.UserHomeDir()
	return home
}
