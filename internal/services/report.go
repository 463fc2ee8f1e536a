package services

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"ecg-annotator/internal/labels"
	"ecg-annotator/internal/models"
)

// PruneMissing deletes rows whose image is not among scanned and returns the
// removed keys in order. This is the only operation that drops rows.
func PruneMissing(table *models.AnnotationTable, scanned []string) []string {
	present := make(map[string]struct{}, len(scanned))
	for _, p := range scanned {
		present[p] = struct{}{}
	}

	var removed []string
	for _, p := range table.Paths() {
		if _, ok := present[p]; ok {
			continue
		}
		if table.Delete(p) {
			removed = append(removed, p)
		}
	}
	sort.Strings(removed)
	return removed
}

// WriteSummary prints per-tag counts as an aligned table
func WriteSummary(w io.Writer, stats models.TableStats) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Images\t%d\n", stats.Rows)
	fmt.Fprintf(tw, "Seen\t%d\n", stats.Seen)
	fmt.Fprintf(tw, "Labeled\t%d\n", stats.Annotated)
	fmt.Fprintln(tw, "\t")
	for _, tag := range labels.All() {
		fmt.Fprintf(tw, "%s\t%d\t%s\n", tag, stats.PerTag[tag], tag.Description())
	}
	return tw.Flush()
}
