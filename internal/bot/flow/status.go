package flow

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bookdenapp/bookden-bot/internal/domain"
	"github.com/bookdenapp/bookden-bot/internal/store"
	"github.com/bookdenapp/bookden-bot/internal/wizard"
)

const (
	statusSelectBook   wizard.State = "status_select_book"
	statusSelectStatus wizard.State = "status_select_status"
)

// Status builds the reading-status wizard. The user's current status for
// the selected book is shown before asking for the new one.
func Status(deps Deps, userID int64) *wizard.Conversation {
	var (
		books []domain.BookSummary
		book  domain.BookSummary
	)

	return &wizard.Conversation{
		Name: "status",
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
			deps.send(ctx, userID, "Which book do you want to set a status for? Send its number:\n"+numberedTitles(books))
			return statusSelectBook, nil
		},
		Steps: map[wizard.State]wizard.StepFunc{
			statusSelectBook: func(ctx context.Context, in wizard.Input) (wizard.State, error) {
				selected, ok := pickBook(books, in.Text)
				if !ok {
					deps.send(ctx, userID, fmt.Sprintf("Please send a number between 1 and %d.", len(books)))
					return statusSelectBook, nil
				}
				book = selected

				current := "not set"
				st, err := deps.Store.GetUserStatus(ctx, userID, book.ID)
				switch {
				case err == nil:
					current = st.Label()
				case errors.Is(err, store.ErrNotFound):
					// first status for this book
				default:
					return "", fmt.Errorf("get status: %w", err)
				}

				deps.send(ctx, userID, fmt.Sprintf("Current status of %q: %s.\nChoose a new one: %s.",
					book.Title, current, statusChoices()))
				return statusSelectStatus, nil
			},
			statusSelectStatus: func(ctx context.Context, in wizard.Input) (wizard.State, error) {
				st, ok := parseStatusInput(in.Text)
				if !ok {
					deps.send(ctx, userID, "I don't know that status. Choose one of: "+statusChoices()+".")
					return statusSelectStatus, nil
				}
				if err := deps.Store.UpsertUserStatus(ctx, userID, book.ID, st); err != nil {
					return "", fmt.Errorf("set status: %w", err)
				}
				deps.send(ctx, userID, fmt.Sprintf("Status of %q is now %s.", book.Title, st.Label()))
				return wizard.StateDone, nil
			},
		},
		OnCancel: deps.cancelNotice(userID, "Okay, the status was not changed."),
		OnError:  deps.failNotice(userID),
	}
}

// parseStatusInput accepts either the display label (with emoji) or the
// bare status word.
func parseStatusInput(input string) (domain.ReadingStatus, bool) {
	input = strings.TrimSpace(input)
	if st, ok := domain.ParseStatusLabel(input); ok {
		return st, true
	}
	st := domain.ReadingStatus(strings.ToLower(input))
	if st.Valid() {
		return st, true
	}
	return "", false
}

func statusChoices() string {
	labels := make([]string, 0, len(domain.AllStatuses))
	for _, s := range domain.AllStatuses {
		labels = append(labels, s.Label())
	}
	return strings.Join(labels, ", ")
}
