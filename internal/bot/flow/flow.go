// Package flow defines the conversation state graphs for the library
// wizards: add, edit, delete, status, search, and book info. Each flow
// builds a wizard.Conversation closed over its own draft state; the
// engine stays generic and never sees a book.
package flow

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/bookdenapp/bookden-bot/internal/domain"
	"github.com/bookdenapp/bookden-bot/internal/store"
	"github.com/bookdenapp/bookden-bot/internal/transport"
	"github.com/bookdenapp/bookden-bot/internal/validation"
)

// Deps carries the collaborators every flow needs.
type Deps struct {
	Store     store.Store
	Sender    transport.Sender
	Validator *validation.Validator
	Logger    *slog.Logger
}

// send is a convenience wrapper; a transport failure is logged but does
// not abort the conversation, the next input still routes normally.
func (d Deps) send(ctx context.Context, userID int64, text string) {
	if err := d.Sender.SendText(ctx, userID, text); err != nil {
		d.Logger.Warn("send failed", "user_id", userID, "error", err)
	}
}

// failNotice is the shared hook body for unexpected internal failures.
func (d Deps) failNotice(userID int64) func(context.Context) {
	return func(ctx context.Context) {
		d.send(ctx, userID, "Something went wrong on my side. The conversation was aborted, please try again.")
	}
}

// cancelNotice builds a flow-specific cancellation acknowledgment.
func (d Deps) cancelNotice(userID int64, text string) func(context.Context) {
	return func(ctx context.Context) {
		d.send(ctx, userID, text)
	}
}

// numberedTitles renders book summaries as a numbered selection list.
func numberedTitles(books []domain.BookSummary) string {
	var b strings.Builder
	for i, book := range books {
		fmt.Fprintf(&b, "%d. %s", i+1, book.Title)
		if book.Authors != "" {
			fmt.Fprintf(&b, " — %s", book.Authors)
		}
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n")
}

// pickBook resolves a numbered-list selection. The second return is
// false for non-numeric or out-of-range input; the caller re-prompts
// without losing the fetched list.
func pickBook(books []domain.BookSummary, input string) (domain.BookSummary, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil || n < 1 || n > len(books) {
		return domain.BookSummary{}, false
	}
	return books[n-1], true
}

// splitAuthors splits comma-separated author names, trimming each and
// dropping empties.
func splitAuthors(input string) []string {
	parts := strings.Split(input, ",")
	authors := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			authors = append(authors, p)
		}
	}
	return authors
}

const skipToken = "-"
