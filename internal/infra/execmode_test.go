package infra

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDetectExecMode_ReturnsCorrectPaths(t *testing.T) {
	t.Setenv("SUDO_USER", "")
	config := DetectExecMode()

	if os.Geteuid() == 0 {
		if config.Mode != ExecModeSystem {
			t.Errorf("expected system mode when euid=0, got %s", config.Mode)
		}
		if config.DataDir != "/var/lib/reclaim" {
			t.Errorf("expected /var/lib/reclaim, got %s", config.DataDir)
		}
		return
	}

	if config.Mode != ExecModeUser {
		t.Errorf("expected user mode when euid!=0, got %s", config.Mode)
	}
	home, _ := os.UserHomeDir()
	if want := filepath.Join(home, ".reclaim"); config.DataDir != want {
		t.Errorf("expected %s, got %s", want, config.DataDir)
	}
}

func TestExecModeConfig_PathsAreConsistent(t *testing.T) {
	config := ExecModeConfigAt(filepath.Join("/data", "reclaim"))

	for name, p := range map[string]string{
		"ConfigPath":  config.ConfigPath,
		"AuditDBPath": config.AuditDBPath,
		"BackupDir":   config.BackupDir,
		"LogPath":     config.LogPath,
	} {
		if filepath.Dir(p) != config.DataDir {
			t.Errorf("%s (%s) should be inside DataDir (%s)", name, p, config.DataDir)
		}
	}
	if filepath.Base(config.AuditDBPath) != AuditDBName {
		t.Errorf("AuditDBPath should end with %s, got %s", AuditDBName, config.AuditDBPath)
	}
	if filepath.Base(config.ConfigPath) != "config.toml" {
		t.Errorf("ConfigPath should end with config.toml, got %s", config.ConfigPath)
	}
}

func TestExecMode_String(t *testing.T) {
	tests := []struct {
		mode     ExecMode
		expected string
	}{
		{ExecModeUser, "user (~/.reclaim)"},
		{ExecModeSystem, "system (root, /var/lib/reclaim)"},
		{ExecMode("invalid"), "unknown"},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			if got := tt.mode.String(); got != tt.expected {
				t.Errorf("ExecMode.String() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestGetRealUserHome_FallsBackWithoutSudo(t *testing.T) {
	t.Setenv("SUDO_USER", "")
	home, _ := os.UserHomeDir()
	if got := GetRealUserHome(); got != home {
		t.Errorf("GetRealUserHome() = %q, want %q", got, home)
	}
}
