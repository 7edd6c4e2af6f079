package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bookdenapp/bookden-bot/internal/domain"
)

// descriptionCutoff bounds how much of a description the export quotes.
const descriptionCutoff = 200

func (d *Dispatcher) handleExport(ctx context.Context, userID int64) error {
	rows, err := d.store.ExportRows(ctx)
	if err != nil {
		return fmt.Errorf("export rows: %w", err)
	}
	if len(rows) == 0 {
		d.send(ctx, userID, "Your library is empty, nothing to export.")
		return nil
	}

	stats, err := d.store.ComputeStatistics(ctx, userID)
	if err != nil {
		return fmt.Errorf("compute statistics: %w", err)
	}

	now := time.Now()
	report := BuildExport(rows, stats, now)
	filename := fmt.Sprintf("library_export_%s.txt", now.Format("20060102_150405"))

	if err := d.sender.SendDocument(ctx, userID, []byte(report), filename); err != nil {
		return fmt.Errorf("send export: %w", err)
	}
	return nil
}

// BuildExport renders the plain-text library report: every book with its
// authors, series, ISBN, and a truncated description, then aggregate
// counts and the generation timestamp.
func BuildExport(rows []domain.BookDetail, stats *domain.Statistics, now time.Time) string {
	var b strings.Builder
	b.WriteString("BOOKDEN LIBRARY EXPORT\n")
	b.WriteString(strings.Repeat("=", 40) + "\n\n")

	for i, row := range rows {
		fmt.Fprintf(&b, "%d. %s\n", i+1, row.Title)
		if len(row.Authors) > 0 {
			fmt.Fprintf(&b, "   Authors: %s\n", strings.Join(row.Authors, ", "))
		}
		if row.SeriesName != "" {
			if row.SeriesOrder != nil {
				fmt.Fprintf(&b, "   Series: %s (book %d)\n", row.SeriesName, *row.SeriesOrder)
			} else {
				fmt.Fprintf(&b, "   Series: %s\n", row.SeriesName)
			}
		}
		if row.ISBN != "" {
			fmt.Fprintf(&b, "   ISBN: %s\n", row.ISBN)
		}
		if row.Description != "" {
			fmt.Fprintf(&b, "   %s\n", truncate(row.Description, descriptionCutoff))
		}
		b.WriteByte('\n')
	}

	b.WriteString(strings.Repeat("-", 40) + "\n")
	fmt.Fprintf(&b, "Books: %d\nSeries: %d\nAuthors: %d\n", stats.TotalBooks, stats.TotalSeries, stats.TotalAuthors)
	fmt.Fprintf(&b, "\nGenerated: %s\n", now.Format("2006-01-02 15:04:05"))
	return b.String()
}

// truncate cuts a string to limit runes, appending an ellipsis marker
// when anything was dropped.
func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
