package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/bookdenapp/bookden-bot/internal/domain"
)

// The stateless read commands. Each fetches through the store and
// formats a reply; none of them touches conversation state.

func (d *Dispatcher) handleList(ctx context.Context, userID int64) error {
	books, err := d.store.ListBooks(ctx)
	if err != nil {
		return fmt.Errorf("list books: %w", err)
	}
	if len(books) == 0 {
		d.send(ctx, userID, "Your library is empty. Add a book with /add.")
		return nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📚 Your library (%d):\n", len(books))
	for i, book := range books {
		fmt.Fprintf(&b, "%d. %s", i+1, book.Title)
		if book.Authors != "" {
			fmt.Fprintf(&b, " — %s", book.Authors)
		}
		b.WriteByte('\n')
	}
	d.send(ctx, userID, strings.TrimRight(b.String(), "\n"))
	return nil
}

func (d *Dispatcher) handleMyBooks(ctx context.Context, userID int64) error {
	books, err := d.store.ListUserBooks(ctx, userID)
	if err != nil {
		return fmt.Errorf("list user books: %w", err)
	}
	if len(books) == 0 {
		d.send(ctx, userID, "You haven't set a reading status yet. Use /status to mark a book.")
		return nil
	}

	var b strings.Builder
	b.WriteString("📖 Your reading list:\n")
	for _, ub := range books {
		fmt.Fprintf(&b, "%s — %s\n", ub.Title, ub.Status.Label())
	}
	d.send(ctx, userID, strings.TrimRight(b.String(), "\n"))
	return nil
}

func (d *Dispatcher) handleSeries(ctx context.Context, userID int64) error {
	series, err := d.store.ListSeries(ctx)
	if err != nil {
		return fmt.Errorf("list series: %w", err)
	}
	if len(series) == 0 {
		d.send(ctx, userID, "No series yet. Books join a series when you add or edit them.")
		return nil
	}

	var b strings.Builder
	b.WriteString("📗 Series:\n")
	for _, s := range series {
		fmt.Fprintf(&b, "%s:\n", s.Name)
		for i, title := range s.Titles {
			fmt.Fprintf(&b, "  %d. %s\n", i+1, title)
		}
	}
	d.send(ctx, userID, strings.TrimRight(b.String(), "\n"))
	return nil
}

func (d *Dispatcher) handleCovers(ctx context.Context, userID int64) error {
	titles, err := d.store.ListBooksWithCovers(ctx)
	if err != nil {
		return fmt.Errorf("list covers: %w", err)
	}
	if len(titles) == 0 {
		d.send(ctx, userID, "No covers stored yet.")
		return nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🖼 Books with covers (%d):\n", len(titles))
	for i, title := range titles {
		fmt.Fprintf(&b, "%d. %s\n", i+1, title)
	}
	d.send(ctx, userID, strings.TrimRight(b.String(), "\n"))
	return nil
}

func (d *Dispatcher) handleStatistics(ctx context.Context, userID int64) error {
	stats, err := d.store.ComputeStatistics(ctx, userID)
	if err != nil {
		return fmt.Errorf("compute statistics: %w", err)
	}
	d.send(ctx, userID, formatStatistics(stats))
	return nil
}

func formatStatistics(stats *domain.Statistics) string {
	var b strings.Builder
	b.WriteString("📊 Library statistics\n")
	fmt.Fprintf(&b, "Books: %d\nSeries: %d\nAuthors: %d\n", stats.TotalBooks, stats.TotalSeries, stats.TotalAuthors)

	if stats.UserTotal() > 0 {
		b.WriteString("\nYour reading:\n")
		for _, st := range domain.AllStatuses {
			if n := stats.ByStatus[st]; n > 0 {
				fmt.Fprintf(&b, "%s: %d\n", st.Label(), n)
			}
		}
	}

	if len(stats.TopAuthors) > 0 {
		b.WriteString("\nTop authors:\n")
		for _, a := range stats.TopAuthors {
			fmt.Fprintf(&b, "%s — %d\n", a.Name, a.Count)
		}
	}
	if len(stats.TopSeries) > 0 {
		b.WriteString("\nTop series:\n")
		for _, s := range stats.TopSeries {
			fmt.Fprintf(&b, "%s — %d\n", s.Name, s.Count)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
