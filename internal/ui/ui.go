// package ui renders styled terminal output for batch summaries with [lipgloss].
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/shelfsync/internal/models"
	"github.com/desertthunder/shelfsync/internal/tasks"
)

var styles = NewPalette("#7D56F4", "#04B575", "#FF0000", "#FFA500", "#626262")

// struct Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	title lipgloss.Style
	ok    lipgloss.Style
	err   lipgloss.Style
	warn  lipgloss.Style
	help  lipgloss.Style
}

func NewPalette(t, s, e, w, h string) *Palette {
	return &Palette{
		title: NewBold(t).MarginBottom(1),
		ok:    NewBold(s),
		err:   NewBold(e),
		warn:  NewStyle(w),
		help:  NewEm(h),
	}
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}

// RenderSummary renders the end-of-batch summary with per-stage counts and
// every per-item failure enumerated.
func RenderSummary(result *tasks.BatchResult) string {
	var b strings.Builder

	b.WriteString(styles.title.Render("Batch Summary"))
	b.WriteString("\n")

	if result.Import != nil {
		b.WriteString(fmt.Sprintf("%s  %d rows read, %d skipped, %d imported\n",
			styles.ok.Render("inventory"),
			result.Import.RowsRead, result.Import.SkippedRows, result.Import.Inserted))
	}
	if result.Reconcile != nil {
		b.WriteString(fmt.Sprintf("%s  %d created, %d reactivated, %d unchanged\n",
			styles.ok.Render("reconcile"),
			result.Reconcile.Created, result.Reconcile.Activated, result.Reconcile.Unchanged))
	}
	if result.Diff != nil {
		style := styles.ok
		if len(result.Diff.FeedErrors) > 0 {
			style = styles.warn
		}
		b.WriteString(fmt.Sprintf("%s  %d missing, %d feeds failed, %d entries skipped\n",
			style.Render("wishlist"),
			len(result.Diff.Missing), len(result.Diff.FeedErrors), result.Diff.SkippedEntries))
	}
	if result.Acquire != nil {
		style := styles.ok
		if result.Acquire.SearchFailures+result.Acquire.SubmitFailures > 0 {
			style = styles.warn
		}
		b.WriteString(fmt.Sprintf("%s  %d submitted, %d no match, %d search failures, %d submission failures\n",
			style.Render("acquire"),
			result.Acquire.Submitted, result.Acquire.NoMatch,
			result.Acquire.SearchFailures, result.Acquire.SubmitFailures))
	}

	renderFailures(&b, result)
	return b.String()
}

func renderFailures(b *strings.Builder, result *tasks.BatchResult) {
	var lines []string

	if result.Diff != nil {
		for _, feedErr := range result.Diff.FeedErrors {
			lines = append(lines, fmt.Sprintf("feed %s: %v", feedErr.URL, feedErr.Err))
		}
	}
	if result.Acquire != nil {
		for _, outcome := range result.Acquire.Outcomes {
			if outcome.Error == nil {
				continue
			}
			lines = append(lines, fmt.Sprintf("%s - %s: %s: %v",
				outcome.Entry.Author, outcome.Entry.Title, outcome.Status, outcome.Error))
		}
	}

	if len(lines) == 0 {
		return
	}

	b.WriteString("\n")
	b.WriteString(styles.err.Render("Failures"))
	b.WriteString("\n")
	for _, line := range lines {
		b.WriteString("  " + line + "\n")
	}
}

// RenderMissing renders the wishlist diff as a numbered list. An empty list
// renders a short all-owned notice.
func RenderMissing(entries []models.MissingEntry) string {
	if len(entries) == 0 {
		return styles.help.Render("Nothing missing, the wishlist is fully owned.") + "\n"
	}

	var b strings.Builder
	b.WriteString(styles.title.Render(fmt.Sprintf("Missing (%d)", len(entries))))
	b.WriteString("\n")
	for i, entry := range entries {
		b.WriteString(fmt.Sprintf("%d. %s - %s\n", i+1, entry.Author, entry.Title))
	}
	return b.String()
}
