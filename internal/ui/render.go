// Package ui renders scan results, suggestions and outcomes for the terminal.
package ui

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/eliteGoblin/focusd/reclaim/internal/domain"
)

// Colors shared by the renderer and the selector.
var (
	ColorPrimary = lipgloss.Color("#7D56F4")
	ColorSafe    = lipgloss.Color("#04B575")
	ColorWarning = lipgloss.Color("#FFB347")
	ColorDanger  = lipgloss.Color("#FF5F87")
	ColorMuted   = lipgloss.Color("#626262")
)

var sizeUnits = []string{"B", "KB", "MB", "GB", "TB"}

// FormatSize renders bytes with two decimals in 1024 steps ("1.50 GB").
func FormatSize(n int64) string {
	v := float64(n)
	unit := 0
	for v >= 1024 && unit < len(sizeUnits)-1 {
		v /= 1024
		unit++
	}
	return fmt.Sprintf("%.2f %s", v, sizeUnits[unit])
}

// Renderer writes styled output. Colors are dropped when out is not a terminal.
type Renderer struct {
	out    io.Writer
	title  lipgloss.Style
	muted  lipgloss.Style
	safe   lipgloss.Style
	warn   lipgloss.Style
	danger lipgloss.Style
	bold   lipgloss.Style
}

// NewRenderer creates a renderer whose color profile follows out.
func NewRenderer(out io.Writer) *Renderer {
	r := lipgloss.NewRenderer(out)
	return &Renderer{
		out:    out,
		title:  r.NewStyle().Bold(true).Foreground(ColorPrimary),
		muted:  r.NewStyle().Foreground(ColorMuted),
		safe:   r.NewStyle().Foreground(ColorSafe),
		warn:   r.NewStyle().Foreground(ColorWarning),
		danger: r.NewStyle().Bold(true).Foreground(ColorDanger),
		bold:   r.NewStyle().Bold(true),
	}
}

func (r *Renderer) printf(format string, args ...any) {
	fmt.Fprintf(r.out, format, args...)
}

// Banner prints "=== title ===".
func (r *Renderer) Banner(title string) {
	r.printf("\n%s\n", r.title.Render("=== "+title+" ==="))
}

// Info prints a plain line.
func (r *Renderer) Info(format string, args ...any) {
	r.printf(format+"\n", args...)
}

// Warn prints a highlighted warning line.
func (r *Renderer) Warn(format string, args ...any) {
	r.printf("%s\n", r.danger.Render(fmt.Sprintf(format, args...)))
}

// SafetyLabel colors a safety level by how freely it may be deleted.
func (r *Renderer) SafetyLabel(s domain.SafetyLevel) string {
	switch {
	case s == domain.SafetySafe:
		return r.safe.Render(s.String())
	case s.Blocking():
		return r.danger.Render(s.String())
	default:
		return r.warn.Render(s.String())
	}
}

// Roots lists the directories about to be scanned.
func (r *Renderer) Roots(roots []string) {
	r.printf("Will scan these areas:\n")
	for _, root := range roots {
		r.printf("  • %s\n", root)
	}
}

// ScanSummary prints the counters of a finished scan.
func (r *Renderer) ScanSummary(c *domain.Catalog) {
	r.Banner("Scan summary")
	r.printf("Session:     %s\n", c.SessionID)
	r.printf("Files seen:  %d\n", c.Visited)
	r.printf("Recorded:    %d (%s)\n", len(c.Records), FormatSize(c.TotalSize()))
	r.printf("Duration:    %s\n", (time.Duration(c.DurationMs) * time.Millisecond).String())
	if c.Excluded > 0 {
		r.printf("Skipped:     %d directories by policy\n", c.Excluded)
	}
	if len(c.Restricted) > 0 {
		r.printf("%s\n", r.warn.Render(fmt.Sprintf("Restricted:  %d directories could not be fully read", len(c.Restricted))))
	}
}

// TopRecords prints the largest max records, biggest first. The input is not reordered.
func (r *Renderer) TopRecords(recs []*domain.FileRecord, max int) {
	sorted := append([]*domain.FileRecord(nil), recs...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Size > sorted[j].Size })
	if max > 0 && len(sorted) > max {
		sorted = sorted[:max]
	}

	r.Banner(fmt.Sprintf("Largest files (%d of %d)", len(sorted), len(recs)))
	if len(sorted) == 0 {
		r.printf("%s\n", r.muted.Render("  (none)"))
		return
	}
	for i, rec := range sorted {
		r.printf("%3d. %10s  %-15s %-8s %s\n",
			i+1, FormatSize(rec.Size), rec.Category, r.SafetyLabel(rec.Safety), rec.Path)
	}
}

// Suggestions prints a numbered suggestion list.
func (r *Renderer) Suggestions(sugs []domain.Suggestion) {
	r.Banner("Suggestions")
	if len(sugs) == 0 {
		r.printf("%s\n", r.muted.Render("  Nothing to suggest."))
		return
	}
	var total int64
	for i, s := range sugs {
		total += s.TotalSize
		r.printf("[%d] %s  %s\n", i+1, r.bold.Render(s.Description), r.muted.Render("("+s.Key+")"))
		r.printf("    %d files, %s, %s\n", len(s.Files), FormatSize(s.TotalSize), r.SafetyLabel(s.Safety))
	}
	r.printf("\nPotential savings: %s\n", FormatSize(total))
}

// Outcome prints one delete result.
func (r *Renderer) Outcome(o domain.Outcome) {
	var status string
	switch o.Status {
	case domain.OutcomeRemoved:
		status = r.safe.Render("removed")
	case domain.OutcomeBlocked:
		status = r.warn.Render("blocked")
	default:
		status = r.danger.Render("failed")
	}
	line := fmt.Sprintf("%-8s %10s  %s", status, FormatSize(o.Size), o.Path)
	if o.Reason != "" {
		line += r.muted.Render("  (" + o.Reason + ")")
	}
	r.printf("%s\n", line)
}

// Batch prints every outcome followed by the totals.
func (r *Renderer) Batch(res *domain.BatchResult) {
	for _, o := range res.Outcomes {
		r.Outcome(o)
	}
	r.Banner("Result")
	r.printf("Removed: %d  Blocked: %d  Failed: %d\n", res.Removed, res.Blocked, res.Failed)
	r.printf("Freed:   %s\n", FormatSize(res.FreedBytes))
	if res.Cancelled {
		r.printf("%s\n", r.warn.Render("Cancelled before all files were processed."))
	}
}

// CategoryTotals prints an aggregated report.
func (r *Renderer) CategoryTotals(session string, totals []domain.CategoryTotal) {
	r.Banner("Report for " + session)
	var files int
	var size int64
	for _, t := range totals {
		files += t.Files
		size += t.TotalSize
		r.printf("%-16s %6d files  %10s\n", t.Category, t.Files, FormatSize(t.TotalSize))
	}
	r.printf("%s\n", strings.Repeat("-", 40))
	r.printf("%-16s %6d files  %10s\n", "total", files, FormatSize(size))
}

// AuditEntries prints audit log rows oldest first.
func (r *Renderer) AuditEntries(entries []domain.AuditEntry) {
	r.Banner("Audit log")
	if len(entries) == 0 {
		r.printf("%s\n", r.muted.Render("  (empty)"))
		return
	}
	for _, e := range entries {
		mode := string(e.Disposal)
		if e.DryRun {
			mode = "dry-run"
		}
		line := fmt.Sprintf("%s  %-7s %-9s %10s  %s",
			e.Timestamp.Local().Format("2006-01-02 15:04:05"), e.Outcome, mode, FormatSize(e.Size), e.Path)
		if e.Reason != "" {
			line += "  (" + e.Reason + ")"
		}
		r.printf("%s\n", line)
	}
}

// DiskLine prints the usage of one filesystem.
func (r *Renderer) DiskLine(path string, free, total uint64, usedPercent float64) {
	style := r.safe
	if usedPercent >= 90 {
		style = r.danger
	} else if usedPercent >= 75 {
		style = r.warn
	}
	r.printf("%-30s %10s free of %10s  %s\n", path,
		FormatSize(int64(free)), FormatSize(int64(total)), style.Render(fmt.Sprintf("%.1f%% used", usedPercent)))
}
