package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/sfseed/sfseed/pkg/models"
)

// maxErrorLines bounds the error listing; the debug log carries the rest.
const maxErrorLines = 20

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// RenderSummary writes the per-object counter table, the file summary,
// and up to maxErrorLines error lines.
func RenderSummary(w io.Writer, results *models.SeedResults) {
	rows := results.AllObjectResults()
	if len(rows) > 0 {
		nameWidth := len("Object")
		for _, row := range rows {
			if len(row.Object) > nameWidth {
				nameWidth = len(row.Object)
			}
		}

		fmt.Fprintln(w)
		fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%-*s %8s %8s %8s %8s %8s",
			nameWidth, "Object", "Queried", "Inserted", "Updated", "Failed", "Skipped")))
		fmt.Fprintln(w, dimStyle.Render(strings.Repeat("─", nameWidth+45)))
		for _, row := range rows {
			fmt.Fprintf(w, "%-*s %8d %8d %8d %8d %8d\n",
				nameWidth, row.Object, row.Queried, row.Inserted, row.Updated, row.Failed, row.Skipped)
		}
	}

	if f := results.Files; f != nil {
		fmt.Fprintf(w, "\nFiles: %d documents, %d versions, %d links, %d failed (%s)\n",
			f.Documents, f.Versions, f.Links, f.Failed, humanBytes(f.TotalBytes))
	}

	if len(results.Errors) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, errStyle.Render(fmt.Sprintf("%d errors:", len(results.Errors))))
	for i, e := range results.Errors {
		if i == maxErrorLines {
			fmt.Fprintln(w, dimStyle.Render(fmt.Sprintf("  … and %d more", len(results.Errors)-maxErrorLines)))
			break
		}
		id := e.SourceID
		if id == "" {
			id = "-"
		}
		fmt.Fprintf(w, "  [%s] %s %s: %s\n", e.Stage, e.Object, id, e.Message)
	}
}

func humanBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
