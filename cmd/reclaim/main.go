// Package main is the CLI entry point for reclaim.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/eliteGoblin/focusd/reclaim/internal/config"
	"github.com/eliteGoblin/focusd/reclaim/internal/domain"
	"github.com/eliteGoblin/focusd/reclaim/internal/infra"
	"github.com/eliteGoblin/focusd/reclaim/internal/policy"
	"github.com/eliteGoblin/focusd/reclaim/internal/ui"
	"github.com/eliteGoblin/focusd/reclaim/internal/usecase"
)

var (
	// Version info (set via ldflags)
	Version   = "0.1.0"
	Commit    = "dev"
	BuildTime = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "reclaim",
	Short: "Find and safely remove files that waste disk space",
	Long: `reclaim scans your user folders for large and disposable files,
groups them into cleanup suggestions and removes what you pick.

Every removal passes a safety gate: system files, files of running
programs and files held open elsewhere are never touched unless you
explicitly override it. Every attempt is written to an encrypted,
append-only audit log.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: false,
}

var globalFlags struct {
	configPath string
	dataDir    string
	debug      bool
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&globalFlags.configPath, "config", "", "Config file (default <data dir>/config.toml, or $"+config.EnvConfigPath+")")
	pf.StringVar(&globalFlags.dataDir, "data-dir", "", "Data directory for config, audit log and backups")
	pf.BoolVar(&globalFlags.debug, "debug", false, "Log debug output to stderr")

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(suggestCmd)
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(tempCmd)
	rootCmd.AddCommand(emptyTrashCmd)
	rootCmd.AddCommand(auditCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

// app holds everything a command needs, built once per invocation.
type app struct {
	cfg        *config.Config
	configPath string
	paths      *infra.ExecModeConfig
	env        policy.Env
	platform   policy.PlatformPolicy
	rules      domain.Rules
	fs         *infra.FileSystemManagerImpl
	logger     *zap.Logger
	out        *ui.Renderer
}

func newApp() (*app, error) {
	paths := infra.DetectExecMode()
	if globalFlags.dataDir != "" {
		paths = infra.ExecModeConfigAt(globalFlags.dataDir)
	}

	configPath := paths.ConfigPath
	if p := os.Getenv(config.EnvConfigPath); p != "" {
		configPath = p
	}
	if globalFlags.configPath != "" {
		configPath = globalFlags.configPath
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	paths = applyStorage(paths, cfg.Storage)

	env := policy.CurrentEnv()
	env.Home = infra.GetRealUserHome()
	platform, ok := policy.NewRegistry(env).ForCurrentOS()
	if !ok {
		return nil, fmt.Errorf("no platform policy for this system")
	}

	return &app{
		cfg:        cfg,
		configPath: configPath,
		paths:      paths,
		env:        env,
		platform:   platform,
		rules:      policy.ToRules(platform, cfg.Paths.ExtraCriticalRoots...),
		fs:         infra.NewFileSystemManagerWithHome(env.Home),
		logger:     createLogger(paths.LogPath, globalFlags.debug),
		out:        ui.NewRenderer(os.Stdout),
	}, nil
}

// applyStorage lets the [storage] section override derived locations.
func applyStorage(paths *infra.ExecModeConfig, st config.StorageConfig) *infra.ExecModeConfig {
	if st.DataDir != "" && st.DataDir != paths.DataDir {
		paths = infra.ExecModeConfigAt(st.DataDir)
	}
	out := *paths
	if st.BackupDir != "" {
		out.BackupDir = st.BackupDir
	}
	if st.AuditDB != "" {
		out.AuditDBPath = st.AuditDB
	}
	return &out
}

func (a *app) close() {
	_ = a.logger.Sync()
}

func (a *app) scanner(opts usecase.ScanOptions) *usecase.ScannerImpl {
	return usecase.NewScanner(
		a.rules,
		usecase.NewPathClassifier(a.rules),
		usecase.NewSafetyAssessor(a.rules, infra.NewLiveProbe(), a.logger),
		infra.NewProcessEnumerator(a.platform.ProgramDirs(), a.logger),
		a.fs,
		opts,
		a.logger,
	)
}

// deleteManager builds the delete gate for one session. The returned func
// closes the audit log.
func (a *app) deleteManager(sessionID string) (*usecase.SafeDeleteManager, func(), error) {
	audit, closeAudit := openAuditSink(a.paths, a.logger)
	if audit == nil {
		a.out.Warn("Audit log unavailable; this run will not be recorded.")
	}
	backup := infra.NewSessionBackupStore(a.paths.BackupDir, usecase.RealClock{}.Now(), a.logger)
	m := usecase.NewSafeDeleteManager(
		a.fs,
		infra.NewLiveProbe(),
		infra.NewDisposalStrategies(a.env.Home, a.logger),
		backup,
		audit,
		a.logger,
	)
	if sessionID != "" {
		m.WithSessionID(sessionID)
	}
	return m, closeAudit, nil
}

// openAuditSink opens the audit log. When it cannot be opened, deletion still
// runs: the failure is logged and a nil sink is returned.
func openAuditSink(paths *infra.ExecModeConfig, logger *zap.Logger) (domain.AuditSink, func()) {
	audit, err := infra.OpenAuditLog(paths.DataDir, paths.AuditDBPath)
	if err != nil {
		logger.Warn("audit log unavailable, deleting without audit",
			zap.String("path", paths.AuditDBPath),
			zap.Error(err))
		return nil, func() {}
	}
	return audit, func() { _ = audit.Close() }
}

// signalContext is cancelled on Ctrl-C so batches stop between files.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func interactive() bool {
	fd := os.Stdin.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func createLogger(logPath string, debug bool) *zap.Logger {
	if debug {
		logger, err := zap.NewDevelopment()
		if err == nil {
			return logger
		}
	}

	if err := os.MkdirAll(filepath.Dir(logPath), 0700); err != nil {
		logger, _ := zap.NewProduction()
		return logger
	}

	config := zap.NewProductionConfig()
	config.OutputPaths = []string{logPath}
	config.ErrorOutputPaths = []string{logPath}
	config.EncoderConfig.TimeKey = "time"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := config.Build()
	if err != nil {
		// Fallback to stderr if file logging fails
		logger, _ = zap.NewProduction()
	}
	return logger
}
