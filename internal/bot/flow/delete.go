package flow

import (
	"context"
	"fmt"
	"strings"

	"github.com/bookdenapp/bookden-bot/internal/domain"
	"github.com/bookdenapp/bookden-bot/internal/wizard"
)

const (
	deleteSelectBook wizard.State = "delete_select_book"
	deleteConfirm    wizard.State = "delete_confirm"
)

// Delete builds the delete-book wizard. Only an exact "yes" triggers the
// cascade delete; "no" keeps the book, anything else re-prompts.
func Delete(deps Deps, userID int64) *wizard.Conversation {
	var (
		books []domain.BookSummary
		book  domain.BookSummary
	)

	return &wizard.Conversation{
		Name: "delete",
		Start: func(ctx context.Context) (wizard.State, error) {
			var err error
			books, err = deps.Store.ListBooks(ctx)
			if err != nil {
				return "", fmt.Errorf("list books: %w", err)
			}
			if len(books) == 0 {
				deps.send(ctx, userID, "Your library is empty, there is nothing to delete.")
				return wizard.StateDone, nil
			}
			deps.send(ctx, userID, "Which book do you want to delete? Send its number:\n"+numberedTitles(books))
			return deleteSelectBook, nil
		},
		Steps: map[wizard.State]wizard.StepFunc{
			deleteSelectBook: func(ctx context.Context, in wizard.Input) (wizard.State, error) {
				selected, ok := pickBook(books, in.Text)
				if !ok {
					deps.send(ctx, userID, fmt.Sprintf("Please send a number between 1 and %d.", len(books)))
					return deleteSelectBook, nil
				}
				book = selected
				deps.send(ctx, userID, fmt.Sprintf("Delete %q? This also removes its author links and reading statuses. Send yes to confirm or no to keep it.", book.Title))
				return deleteConfirm, nil
			},
			deleteConfirm: func(ctx context.Context, in wizard.Input) (wizard.State, error) {
				switch strings.ToLower(strings.TrimSpace(in.Text)) {
				case "yes":
					if err := deps.Store.DeleteBookCascade(ctx, book.ID); err != nil {
						return "", fmt.Errorf("delete book: %w", err)
					}
					deps.send(ctx, userID, fmt.Sprintf("Deleted %q. 🗑", book.Title))
					return wizard.StateDone, nil
				case "no":
					deps.send(ctx, userID, fmt.Sprintf("Okay, %q stays in your library.", book.Title))
					return wizard.StateDone, nil
				default:
					deps.send(ctx, userID, "Please answer yes or no.")
					return deleteConfirm, nil
				}
			},
		},
		OnCancel: deps.cancelNotice(userID, "Okay, nothing was deleted."),
		OnError:  deps.failNotice(userID),
	}
}
