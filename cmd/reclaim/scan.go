package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/reclaim/internal/domain"
	"github.com/eliteGoblin/focusd/reclaim/internal/infra"
	"github.com/eliteGoblin/focusd/reclaim/internal/ui"
	"github.com/eliteGoblin/focusd/reclaim/internal/usecase"
)

var scanFlags struct {
	thresholdMB int64
	top         int
	export      string
	hidden      bool
}

var scanCmd = &cobra.Command{
	Use:   "scan [path...]",
	Short: "Scan for large files and show the biggest ones",
	Long: `Scan the configured areas (or the given paths) for files at or above
the size threshold, then list the largest ones with their category and
safety level. Nothing is deleted.

Use --export to store the catalog in a DuckDB file for 'reclaim report'.`,
	RunE: runScan,
}

var suggestCmd = &cobra.Command{
	Use:   "suggest [path...]",
	Short: "Scan and show cleanup suggestions",
	RunE:  runSuggest,
}

var reportFlags struct {
	db      string
	session string
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Summarize an exported scan by category",
	RunE:  runReport,
}

func init() {
	for _, cmd := range []*cobra.Command{scanCmd, suggestCmd} {
		cmd.Flags().Int64Var(&scanFlags.thresholdMB, "threshold-mb", -1, "Minimum file size in MB (default from config)")
		cmd.Flags().BoolVar(&scanFlags.hidden, "hidden", false, "Descend into hidden directories")
	}
	scanCmd.Flags().IntVar(&scanFlags.top, "top", 0, "Number of files to list (default from config)")
	scanCmd.Flags().StringVar(&scanFlags.export, "export", "", "Write the catalog to this DuckDB file")

	reportCmd.Flags().StringVar(&reportFlags.db, "db", "", "DuckDB file written by 'scan --export' (required)")
	reportCmd.Flags().StringVar(&reportFlags.session, "session", "", "Session to report (default: latest)")
	_ = reportCmd.MarkFlagRequired("db")
}

// scanFromFlags scans args, or the configured roots when no args are given.
func (a *app) scanFromFlags(ctx context.Context, args []string) (*domain.Catalog, error) {
	roots := args
	if len(roots) == 0 {
		roots = a.cfg.ScanRoots(a.platform, a.env)
	}
	if len(roots) == 0 {
		return nil, fmt.Errorf("nothing to scan: no configured folder exists")
	}

	minSize := a.cfg.ThresholdBytes()
	if scanFlags.thresholdMB >= 0 {
		minSize = scanFlags.thresholdMB * 1024 * 1024
	}
	opts := a.cfg.ScanOptions()
	if scanFlags.hidden {
		opts.IncludeHidden = true
	}

	a.out.Roots(roots)
	a.out.Info("Scanning for files of %s or more...", formatThreshold(minSize))

	catalog, err := a.scanner(opts).Scan(ctx, roots, minSize)
	if err != nil && !errors.Is(err, context.Canceled) {
		return nil, fmt.Errorf("scan failed: %w", err)
	}
	if err != nil {
		a.out.Warn("Scan interrupted; showing partial results.")
	}
	return catalog, nil
}

func formatThreshold(n int64) string {
	if n == 0 {
		return "any size"
	}
	return ui.FormatSize(n)
}

func runScan(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	ctx, stop := signalContext()
	defer stop()

	catalog, err := a.scanFromFlags(ctx, args)
	if err != nil {
		return err
	}

	top := a.cfg.Settings.MaxFilesToDisplay
	if scanFlags.top > 0 {
		top = scanFlags.top
	}
	a.out.TopRecords(catalog.Records, top)
	a.out.ScanSummary(catalog)

	if scanFlags.export != "" {
		if err := exportCatalog(scanFlags.export, catalog, a.logger); err != nil {
			return err
		}
		a.out.Info("Catalog saved to %s (session %s)", scanFlags.export, catalog.SessionID)
	}
	return nil
}

func exportCatalog(path string, catalog *domain.Catalog, logger *zap.Logger) error {
	store, err := infra.NewCatalogStore(path, logger)
	if err != nil {
		return err
	}
	defer store.Close()
	return store.SaveCatalog(catalog)
}

func runSuggest(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	ctx, stop := signalContext()
	defer stop()

	catalog, err := a.scanFromFlags(ctx, args)
	if err != nil {
		return err
	}
	a.out.ScanSummary(catalog)
	a.out.Suggestions(usecase.NewSuggestionEngine(usecase.RealClock{}, a.cfg.Toggles()).Suggest(catalog))
	return nil
}

func runReport(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	store, err := infra.NewCatalogStore(reportFlags.db, a.logger)
	if err != nil {
		return err
	}
	defer store.Close()

	session := reportFlags.session
	if session == "" {
		session, err = store.LatestSession()
		if err != nil {
			return err
		}
	}
	totals, err := store.Summary(session)
	if err != nil {
		return err
	}
	a.out.CategoryTotals(session, totals)
	return nil
}
