package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/eliteGoblin/focusd/reclaim/internal/config"
	"github.com/eliteGoblin/focusd/reclaim/internal/infra"
)

var auditLimit int

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Show the newest entries of the audit log",
	RunE:  runAudit,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show disk usage and where reclaim keeps its data",
	RunE:  runStatus,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with the default settings",
	RunE:  runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE:  runConfigShow,
}

var versionJSON bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run:   runVersion,
}

func init() {
	auditCmd.Flags().IntVarP(&auditLimit, "limit", "n", 20, "Number of entries to show (0 for all)")
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	versionCmd.Flags().BoolVar(&versionJSON, "json", false, "Output in JSON format")
}

func runAudit(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	if _, err := os.Stat(a.paths.AuditDBPath); os.IsNotExist(err) {
		a.out.Info("No audit log yet at %s", a.paths.AuditDBPath)
		return nil
	}

	audit, err := infra.OpenAuditLog(a.paths.DataDir, a.paths.AuditDBPath)
	if err != nil {
		return err
	}
	defer audit.Close()

	entries, err := audit.List(auditLimit)
	if err != nil {
		return err
	}
	a.out.AuditEntries(entries)
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	a.out.Banner("reclaim status")
	a.out.Info("Mode:      %s", a.paths.Mode)
	a.out.Info("Platform:  %s", a.platform.Name())
	a.out.Info("Config:    %s", a.configPath)
	a.out.Info("Data dir:  %s", a.paths.DataDir)
	a.out.Info("Backups:   %s", a.paths.BackupDir)
	a.out.Info("Log:       %s", a.paths.LogPath)

	if _, err := os.Stat(a.paths.AuditDBPath); err == nil {
		audit, err := infra.OpenAuditLog(a.paths.DataDir, a.paths.AuditDBPath)
		if err != nil {
			a.out.Warn("Audit log: %v", err)
		} else {
			n, err := audit.Count()
			_ = audit.Close()
			if err != nil {
				a.out.Warn("Audit log: %v", err)
			} else {
				a.out.Info("Audit log: %s (%d entries)", a.paths.AuditDBPath, n)
			}
		}
	} else {
		a.out.Info("Audit log: %s (not created yet)", a.paths.AuditDBPath)
	}

	roots := a.cfg.ScanRoots(a.platform, a.env)
	a.out.Banner("Disk usage")
	usages := infra.UsageForRoots(context.Background(), roots)
	if len(usages) == 0 {
		a.out.Info("Disk usage unavailable.")
	}
	for _, u := range usages {
		a.out.DiskLine(u.Path, u.Free, u.Total, u.UsedPercent)
	}
	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	if err := config.Init(a.configPath); err != nil {
		return err
	}
	a.out.Info("Wrote default configuration to %s", a.configPath)
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	out, err := a.cfg.Show()
	if err != nil {
		return err
	}
	fmt.Printf("# %s\n%s", a.configPath, out)
	return nil
}

func runVersion(cmd *cobra.Command, args []string) {
	if versionJSON {
		info := map[string]string{
			"version":    Version,
			"commit":     Commit,
			"build_time": BuildTime,
			"go_version": runtime.Version(),
			"os":         runtime.GOOS,
			"arch":       runtime.GOARCH,
		}
		data, _ := json.MarshalIndent(info, "", "  ")
		fmt.Println(string(data))
		return
	}

	fmt.Printf("reclaim %s\n", Version)
	fmt.Printf("  Commit:     %s\n", Commit)
	fmt.Printf("  Built:      %s\n", BuildTime)
	fmt.Printf("  Go version: %s\n", runtime.Version())
	fmt.Printf("  OS/Arch:    %s/%s\n", runtime.GOOS, runtime.GOARCH)
}
