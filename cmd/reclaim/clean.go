package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/reclaim/internal/domain"
	"github.com/eliteGoblin/focusd/reclaim/internal/infra"
	"github.com/eliteGoblin/focusd/reclaim/internal/ui"
	"github.com/eliteGoblin/focusd/reclaim/internal/usecase"
)

// deleteFlags are shared by every command that removes files.
var deleteFlags struct {
	dryRun    bool
	override  bool
	backup    bool
	permanent bool
	yes       bool
}

var cleanFlags struct {
	allSafe    bool
	categories []string
	review     bool
}

var cleanCmd = &cobra.Command{
	Use:   "clean [path...]",
	Short: "Scan, pick suggestions and remove their files",
	Long: `Scan, build suggestions and remove the files of the ones you pick.

On a terminal the suggestions are shown in a selector (safe ones start
selected). Without a terminal, pick with --all-safe or --category.
--review asks about every file before it is removed.

Files are moved to the trash unless --permanent is given or use_trash
is off. Protected, running and in-use files are always skipped unless
--override is given, which requires typing the confirmation phrase.`,
	RunE: runClean,
}

var tempCmd = &cobra.Command{
	Use:   "temp",
	Short: "Remove files from the temporary folders",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSweep(sweepTemp)
	},
}

var emptyTrashCmd = &cobra.Command{
	Use:   "empty-trash",
	Short: "Permanently remove everything in the trash",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSweep(sweepTrash)
	},
}

func init() {
	for _, cmd := range []*cobra.Command{cleanCmd, tempCmd, emptyTrashCmd} {
		f := cmd.Flags()
		f.BoolVar(&deleteFlags.dryRun, "dry-run", false, "Show what would be removed without removing anything")
		f.BoolVar(&deleteFlags.override, "override", false, "Ignore the safety gate (asks for confirmation)")
		f.BoolVar(&deleteFlags.backup, "backup", false, "Copy every file to the backup directory first")
		f.BoolVarP(&deleteFlags.yes, "yes", "y", false, "Do not ask for confirmation")
	}
	cleanCmd.Flags().BoolVar(&deleteFlags.permanent, "permanent", false, "Delete instead of moving to the trash")
	cleanCmd.Flags().BoolVar(&scanFlags.hidden, "hidden", false, "Descend into hidden directories")
	cleanCmd.Flags().Int64Var(&scanFlags.thresholdMB, "threshold-mb", -1, "Minimum file size in MB (default from config)")
	cleanCmd.Flags().BoolVar(&cleanFlags.allSafe, "all-safe", false, "Pick every suggestion whose safety is safe")
	cleanCmd.Flags().StringSliceVar(&cleanFlags.categories, "category", nil, "Pick suggestions by key (repeatable)")
	cleanCmd.Flags().BoolVar(&cleanFlags.review, "review", false, "Ask about every file before removing it")
}

// deleteOptions merges the config with the command line flags.
func (a *app) deleteOptions() domain.DeleteOptions {
	opts := a.cfg.DeleteOptions()
	opts.DryRun = opts.DryRun || deleteFlags.dryRun
	opts.OverrideSafety = opts.OverrideSafety || deleteFlags.override
	opts.Backup = opts.Backup || deleteFlags.backup
	if deleteFlags.permanent {
		opts.Disposal = domain.DisposalPermanent
	}
	return opts
}

// confirmOverride asks for the phrase when the safety gate is off.
func confirmOverride(p *ui.Prompter, out *ui.Renderer, opts domain.DeleteOptions, count int) (bool, error) {
	if !opts.OverrideSafety || opts.DryRun {
		return true, nil
	}
	out.Warn("WARNING: safety checks are disabled.")
	out.Warn("System files, files of running programs and files in use may be removed.")
	return p.ConfirmPhrase(fmt.Sprintf("%d files will be removed without safety checks.", count), ui.DeleteAllPhrase)
}

func runClean(cmd *cobra.Command, args []string) error {
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
	sugs := usecase.NewSuggestionEngine(usecase.RealClock{}, a.cfg.Toggles()).Suggest(catalog)
	if len(sugs) == 0 {
		a.out.Info("Nothing to clean.")
		return nil
	}

	picked, err := a.pickSuggestions(sugs)
	if err != nil {
		return err
	}
	if len(picked) == 0 {
		a.out.Info("No suggestions selected.")
		return nil
	}

	recs := filesOf(picked)
	prompter := ui.NewPrompter(os.Stdin, os.Stdout)
	if cleanFlags.review {
		if recs, err = prompter.Review(recs); err != nil {
			return err
		}
		if len(recs) == 0 {
			a.out.Info("No files selected.")
			return nil
		}
	}

	opts := a.deleteOptions()
	if !deleteFlags.yes && !cleanFlags.review && !opts.DryRun {
		ok, err := prompter.Confirm(fmt.Sprintf("Remove %d files (%s, %s)?", len(recs), ui.FormatSize(sizeOf(recs)), opts.Disposal))
		if err != nil {
			return err
		}
		if !ok {
			a.out.Info("Cancelled.")
			return nil
		}
	}
	if ok, err := confirmOverride(prompter, a.out, opts, len(recs)); err != nil || !ok {
		if err == nil {
			a.out.Info("Cancelled.")
		}
		return err
	}

	return a.deleteBatch(ctx, catalog.SessionID, catalog.Roots, recs, opts, false)
}

func (a *app) pickSuggestions(sugs []domain.Suggestion) ([]domain.Suggestion, error) {
	if cleanFlags.allSafe || len(cleanFlags.categories) > 0 {
		return selectByFlags(sugs, cleanFlags.allSafe, cleanFlags.categories), nil
	}
	if !interactive() {
		a.out.Suggestions(sugs)
		return nil, errors.New("no terminal: choose suggestions with --all-safe or --category")
	}
	return ui.RunSelector(sugs, os.Stdin, os.Stdout)
}

// selectByFlags keeps suggestions that are safe (when allSafe) or whose key is listed.
func selectByFlags(sugs []domain.Suggestion, allSafe bool, keys []string) []domain.Suggestion {
	want := make(map[string]bool, len(keys))
	for _, k := range keys {
		want[k] = true
	}
	var out []domain.Suggestion
	for _, s := range sugs {
		if want[s.Key] || (allSafe && s.Safety == domain.SafetySafe) {
			out = append(out, s)
		}
	}
	return out
}

// filesOf flattens suggestions in order, dropping repeated paths.
func filesOf(sugs []domain.Suggestion) []*domain.FileRecord {
	seen := make(map[string]bool)
	var out []*domain.FileRecord
	for _, s := range sugs {
		for _, f := range s.Files {
			if seen[f.Path] {
				continue
			}
			seen[f.Path] = true
			out = append(out, f)
		}
	}
	return out
}

func sizeOf(recs []*domain.FileRecord) int64 {
	var n int64
	for _, r := range recs {
		n += r.Size
	}
	return n
}

// deleteBatch runs recs through the delete manager and prints the result
// with free space before and after. A sweep also prunes emptied dirs below
// roots and keeps trash metadata in step with its items.
func (a *app) deleteBatch(ctx context.Context, sessionID string, roots []string, recs []*domain.FileRecord, opts domain.DeleteOptions, sweep bool) error {
	before := infra.UsageForRoots(ctx, roots)

	manager, closeAudit, err := a.deleteManager(sessionID)
	if err != nil {
		return err
	}
	defer closeAudit()

	if opts.DryRun {
		a.out.Banner("Dry run")
	} else {
		a.out.Banner("Removing files")
	}
	var res *domain.BatchResult
	if sweep {
		res = manager.Sweep(ctx, recs, roots, opts)
	} else {
		res = manager.DeleteAll(ctx, recs, opts)
	}
	a.out.Batch(res)

	a.logger.Info("batch finished",
		zap.String("session", res.SessionID),
		zap.Int("removed", res.Removed),
		zap.Int("blocked", res.Blocked),
		zap.Int("failed", res.Failed),
		zap.Int64("freed", res.FreedBytes),
		zap.Bool("cancelled", res.Cancelled))

	if len(before) > 0 && !opts.DryRun {
		a.out.Banner("Disk space")
		for _, u := range infra.UsageForRoots(context.Background(), roots) {
			for _, b := range before {
				if b.Path == u.Path && u.Free > b.Free {
					a.out.Info("%s: %s more free", u.Path, ui.FormatSize(int64(u.Free-b.Free)))
				}
			}
			a.out.DiskLine(u.Path, u.Free, u.Total, u.UsedPercent)
		}
	}
	return nil
}

type sweepKind int

const (
	sweepTemp sweepKind = iota
	sweepTrash
)

// runSweep removes every file below the temp or trash folders, then the
// directories it emptied. Trash is never a target disposal here: moving temp
// files to the trash frees nothing.
func runSweep(kind sweepKind) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	ctx, stop := signalContext()
	defer stop()

	var (
		label      string
		dirs       []string
		defaultYes bool
	)
	switch kind {
	case sweepTemp:
		label, dirs, defaultYes = "temporary files", a.platform.TempDirs(), a.cfg.Settings.CleanTempByDefault
	default:
		label, dirs, defaultYes = "items in the trash", a.platform.TrashDirs(), a.cfg.Settings.CleanRecycleByDefault
	}

	roots := existingRoots(dirs)
	if len(roots) == 0 {
		a.out.Info("No %s found.", label)
		return nil
	}
	a.out.Roots(roots)

	catalog, err := a.scanner(usecase.ScanOptions{IncludeHidden: true}).Scan(ctx, roots, 0)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("scan failed: %w", err)
	}
	if len(catalog.Records) == 0 {
		a.out.Info("No %s found.", label)
		return nil
	}
	a.out.Info("Found %d %s (%s).", len(catalog.Records), label, ui.FormatSize(catalog.TotalSize()))

	opts := a.deleteOptions()
	opts.Disposal = domain.DisposalPermanent

	prompter := ui.NewPrompter(os.Stdin, os.Stdout)
	proceed := deleteFlags.yes || opts.DryRun
	if !proceed {
		if interactive() {
			if proceed, err = prompter.Confirm(fmt.Sprintf("Permanently delete all %s?", label)); err != nil {
				return err
			}
		} else {
			proceed = defaultYes
		}
	}
	if !proceed {
		a.out.Info("Cancelled.")
		return nil
	}
	if ok, err := confirmOverride(prompter, a.out, opts, len(catalog.Records)); err != nil || !ok {
		if err == nil {
			a.out.Info("Cancelled.")
		}
		return err
	}

	return a.deleteBatch(ctx, catalog.SessionID, roots, catalog.Records, opts, true)
}

func existingRoots(dirs []string) []string {
	var out []string
	for _, d := range dirs {
		if fi, err := os.Stat(d); err == nil && fi.IsDir() {
			out = append(out, d)
		}
	}
	return out
}
