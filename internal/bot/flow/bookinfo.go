package flow

import (
	"context"
	"fmt"
	"strings"

	"github.com/bookdenapp/bookden-bot/internal/domain"
	"github.com/bookdenapp/bookden-bot/internal/wizard"
)

const infoSelectBook wizard.State = "info_select_book"

// BookInfo builds the book-detail wizard: pick a book, get its full
// card, with the cover photo when one is stored.
func BookInfo(deps Deps, userID int64) *wizard.Conversation {
	var books []domain.BookSummary

	return &wizard.Conversation{
		Name: "book_info",
		Start: func(ctx context.Context) (wizard.State, error) {
			var err error
			books, err = deps.Store.ListBooks(ctx)
			if err != nil {
				return "", fmt.Errorf("list books: %w", err)
			}
			if len(books) == 0 {
				deps.send(ctx, userID, "Your library is empty. Add a book first with /add.")
				return wizard.StateDone, nil
			}
			deps.send(ctx, userID, "Which book do you want details for? Send its number:\n"+numberedTitles(books))
			return infoSelectBook, nil
		},
		Steps: map[wizard.State]wizard.StepFunc{
			infoSelectBook: func(ctx context.Context, in wizard.Input) (wizard.State, error) {
				selected, ok := pickBook(books, in.Text)
				if !ok {
					deps.send(ctx, userID, fmt.Sprintf("Please send a number between 1 and %d.", len(books)))
					return infoSelectBook, nil
				}

				detail, err := deps.Store.GetBookDetail(ctx, selected.ID)
				if err != nil {
					return "", fmt.Errorf("get book detail: %w", err)
				}
				card := FormatBookCard(detail)

				if detail.HasCover {
					book, err := deps.Store.GetBook(ctx, selected.ID)
					if err != nil {
						return "", fmt.Errorf("get book: %w", err)
					}
					if err := deps.Sender.SendPhoto(ctx, userID, book.CoverImage, card); err != nil {
						deps.Logger.Warn("send cover failed", "user_id", userID, "error", err)
						deps.send(ctx, userID, card)
					}
				} else {
					deps.send(ctx, userID, card)
				}
				return wizard.StateDone, nil
			},
		},
		OnCancel: deps.cancelNotice(userID, "Okay."),
		OnError:  deps.failNotice(userID),
	}
}

// FormatBookCard renders a book's full detail as a reply or caption.
func FormatBookCard(d *domain.BookDetail) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📖 %s\n", d.Title)
	if len(d.Authors) > 0 {
		fmt.Fprintf(&b, "Authors: %s\n", strings.Join(d.Authors, ", "))
	}
	if d.SeriesName != "" {
		if d.SeriesOrder != nil {
			fmt.Fprintf(&b, "Series: %s (book %d)\n", d.SeriesName, *d.SeriesOrder)
		} else {
			fmt.Fprintf(&b, "Series: %s\n", d.SeriesName)
		}
	}
	if d.ISBN != "" {
		fmt.Fprintf(&b, "ISBN: %s\n", d.ISBN)
	}
	if d.Description != "" {
		fmt.Fprintf(&b, "\n%s\n", d.Description)
	}
	return strings.TrimRight(b.String(), "\n")
}
