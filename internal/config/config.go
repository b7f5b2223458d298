// Package config reads and writes the reclaim TOML configuration file.
package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/eliteGoblin/focusd/reclaim/internal/domain"
	"github.com/eliteGoblin/focusd/reclaim/internal/policy"
	"github.com/eliteGoblin/focusd/reclaim/internal/usecase"
)

// EnvConfigPath overrides the config file location.
const EnvConfigPath = "RECLAIM_CONFIG"

const (
	defaultThresholdMB = 100
	defaultMaxDisplay  = 50
)

// Config is the full configuration file.
type Config struct {
	Settings    SettingsConfig    `toml:"settings"`
	Paths       PathsConfig       `toml:"paths"`
	Suggestions SuggestionsConfig `toml:"suggestions"`
	Storage     StorageConfig     `toml:"storage"`
}

// SettingsConfig holds scan and delete behavior.
type SettingsConfig struct {
	LargeFileThresholdMB  int64 `toml:"large_file_threshold_mb"`
	MaxFilesToDisplay     int   `toml:"max_files_to_display"`
	BackupBeforeDelete    bool  `toml:"backup_before_delete"`
	UseTrash              bool  `toml:"use_trash"`
	DryRun                bool  `toml:"dry_run"`
	OverrideSafety        bool  `toml:"override_safety"`
	ScanHiddenFolders     bool  `toml:"scan_hidden_folders"`
	CleanTempByDefault    bool  `toml:"clean_temp_by_default"`
	CleanRecycleByDefault bool  `toml:"clean_recycle_by_default"`
}

// PathsConfig selects the scan roots.
type PathsConfig struct {
	IncludeUserProfile  bool     `toml:"include_user_profile"`
	IncludeDownloads    bool     `toml:"include_downloads"`
	IncludeDocuments    bool     `toml:"include_documents"`
	IncludeDesktop      bool     `toml:"include_desktop"`
	IncludePictures     bool     `toml:"include_pictures"`
	IncludeVideos       bool     `toml:"include_videos"`
	IncludeMusic        bool     `toml:"include_music"`
	IncludeTempFolders  bool     `toml:"include_temp_folders"`
	IncludeCacheFolders bool     `toml:"include_cache_folders"`
	CustomScanPaths     []string `toml:"custom_scan_paths"`
	ExtraCriticalRoots  []string `toml:"extra_critical_roots"`
}

// SuggestionsConfig switches optional suggestion groups.
type SuggestionsConfig struct {
	SuggestInstallerCleanup bool `toml:"suggest_installer_cleanup"`
	SuggestVideoCleanup     bool `toml:"suggest_video_cleanup"`
	SuggestBackupCleanup    bool `toml:"suggest_backup_cleanup"`
	SuggestTrashCleanup     bool `toml:"suggest_trash_cleanup"`
}

// StorageConfig overrides the data locations. Empty values are derived
// from the execution mode.
type StorageConfig struct {
	DataDir   string `toml:"data_dir"`
	BackupDir string `toml:"backup_dir"`
	AuditDB   string `toml:"audit_db"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Settings: SettingsConfig{
			LargeFileThresholdMB:  defaultThresholdMB,
			MaxFilesToDisplay:     defaultMaxDisplay,
			UseTrash:              true,
			CleanTempByDefault:    true,
			CleanRecycleByDefault: true,
		},
		Paths: PathsConfig{
			IncludeUserProfile:  true,
			IncludeDownloads:    true,
			IncludeDocuments:    true,
			IncludeDesktop:      true,
			IncludePictures:     true,
			IncludeVideos:       true,
			IncludeMusic:        true,
			IncludeTempFolders:  true,
			IncludeCacheFolders: true,
			CustomScanPaths:     []string{},
			ExtraCriticalRoots:  []string{},
		},
		Suggestions: SuggestionsConfig{
			SuggestInstallerCleanup: true,
			SuggestVideoCleanup:     true,
			SuggestBackupCleanup:    true,
			SuggestTrashCleanup:     true,
		},
	}
}

// Read decodes a Config on top of the defaults, so missing keys keep
// their default value. Out-of-range numbers are reset to defaults.
func Read(r io.Reader) (*Config, error) {
	cfg := Default()
	md, err := toml.NewDecoder(r).Decode(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return nil, fmt.Errorf("unknown config keys: %s", strings.Join(keys, ", "))
	}
	cfg.fill()
	return cfg, nil
}

// Write encodes a Config to the provided writer.
func Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// Load reads the config at path. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	cfg, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

// Init writes the defaults to path. An existing file is never overwritten.
func Init(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	if err := Write(f, Default()); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}

// Show renders the effective configuration as TOML.
func (c *Config) Show() (string, error) {
	var buf bytes.Buffer
	if err := Write(&buf, c); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (c *Config) fill() {
	if c.Settings.LargeFileThresholdMB < 0 {
		c.Settings.LargeFileThresholdMB = defaultThresholdMB
	}
	if c.Settings.MaxFilesToDisplay <= 0 {
		c.Settings.MaxFilesToDisplay = defaultMaxDisplay
	}
	if c.Paths.CustomScanPaths == nil {
		c.Paths.CustomScanPaths = []string{}
	}
	if c.Paths.ExtraCriticalRoots == nil {
		c.Paths.ExtraCriticalRoots = []string{}
	}
}

// ThresholdBytes is the minimum size of a recorded file.
func (c *Config) ThresholdBytes() int64 {
	return c.Settings.LargeFileThresholdMB * 1024 * 1024
}

// DeleteOptions builds the options handed to the delete manager.
func (c *Config) DeleteOptions() domain.DeleteOptions {
	mode := domain.DisposalPermanent
	if c.Settings.UseTrash {
		mode = domain.DisposalTrash
	}
	return domain.DeleteOptions{
		DryRun:         c.Settings.DryRun,
		OverrideSafety: c.Settings.OverrideSafety,
		Backup:         c.Settings.BackupBeforeDelete,
		Disposal:       mode,
	}
}

// Toggles returns the enabled suggestion groups.
func (c *Config) Toggles() usecase.SuggestionToggles {
	return usecase.SuggestionToggles{
		Installers: c.Suggestions.SuggestInstallerCleanup,
		Media:      c.Suggestions.SuggestVideoCleanup,
		Backups:    c.Suggestions.SuggestBackupCleanup,
		Trash:      c.Suggestions.SuggestTrashCleanup,
	}
}

// ScanOptions returns the scanner options.
func (c *Config) ScanOptions() usecase.ScanOptions {
	return usecase.ScanOptions{IncludeHidden: c.Settings.ScanHiddenFolders}
}

// ScanRoots derives the directories to scan for the platform p: the profile,
// the enabled known folders, temp and cache folders and the custom paths.
// Only existing directories are returned, deduplicated and sorted.
func (c *Config) ScanRoots(p policy.PlatformPolicy, env policy.Env) []string {
	var candidates []string
	home := env.Home

	if home != "" {
		if c.Paths.IncludeUserProfile {
			candidates = append(candidates, home)
		}
		for _, f := range c.knownFolders(p.ID()) {
			candidates = append(candidates, filepath.Join(home, f))
		}
	}
	if c.Paths.IncludeTempFolders {
		for _, key := range []string{"TMPDIR", "TEMP", "TMP"} {
			if v := env.Get(key, ""); v != "" {
				candidates = append(candidates, v)
			}
		}
		candidates = append(candidates, p.TempDirs()...)
	}
	if c.Paths.IncludeCacheFolders {
		candidates = append(candidates, p.CacheDirs()...)
	}
	for _, custom := range c.Paths.CustomScanPaths {
		candidates = append(candidates, expandHome(custom, home))
	}

	return existingDirs(candidates, p.ID() == "windows")
}

func (c *Config) knownFolders(goos string) []string {
	videos := "Videos"
	if goos == "darwin" {
		videos = "Movies"
	}
	var out []string
	for _, f := range []struct {
		on   bool
		name string
	}{
		{c.Paths.IncludeDownloads, "Downloads"},
		{c.Paths.IncludeDocuments, "Documents"},
		{c.Paths.IncludeDesktop, "Desktop"},
		{c.Paths.IncludePictures, "Pictures"},
		{c.Paths.IncludeVideos, videos},
		{c.Paths.IncludeMusic, "Music"},
	} {
		if f.on {
			out = append(out, f.name)
		}
	}
	return out
}

func existingDirs(candidates []string, foldCase bool) []string {
	seen := make(map[string]bool, len(candidates))
	var out []string
	for _, d := range candidates {
		if d == "" {
			continue
		}
		d = filepath.Clean(d)
		key := d
		if foldCase {
			key = strings.ToLower(d)
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		if info, err := os.Stat(d); err == nil && info.IsDir() {
			out = append(out, d)
		}
	}
	sort.Strings(out)
	return out
}

func expandHome(p, home string) string {
	if p == "~" {
		return home
	}
	if strings.HasPrefix(p, "~/") || strings.HasPrefix(p, `~\`) {
		return filepath.Join(home, p[2:])
	}
	return p
}
