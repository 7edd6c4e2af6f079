package flow

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/bookdenapp/bookden-bot/internal/domain"
	"github.com/bookdenapp/bookden-bot/internal/validation"
	"github.com/bookdenapp/bookden-bot/internal/wizard"
)

const (
	editSelectBook  wizard.State = "edit_select_book"
	editSelectField wizard.State = "edit_select_field"
	editValue       wizard.State = "edit_value"
)

// Edit builds the edit-book wizard: pick a book from a numbered list,
// pick one editable field, then supply the new value. The update is a
// single-field write; the conversation ends after it.
func Edit(deps Deps, userID int64) *wizard.Conversation {
	var (
		books []domain.BookSummary
		book  domain.BookSummary
		field string
	)

	return &wizard.Conversation{
		Name: "edit",
		Start: func(ctx context.Context) (wizard.State, error) {
			var err error
			books, err = deps.Store.ListBooks(ctx)
			if err != nil {
				return "", fmt.Errorf("list books: %w", err)
			}
			if len(books) == 0 {
				deps.send(ctx, userID, "Your library is empty, there is nothing to edit. Add a book first with /add.")
				return wizard.StateDone, nil
			}
			deps.send(ctx, userID, "Which book do you want to edit? Send its number:\n"+numberedTitles(books))
			return editSelectBook, nil
		},
		Steps: map[wizard.State]wizard.StepFunc{
			editSelectBook: func(ctx context.Context, in wizard.Input) (wizard.State, error) {
				selected, ok := pickBook(books, in.Text)
				if !ok {
					deps.send(ctx, userID, fmt.Sprintf("Please send a number between 1 and %d.", len(books)))
					return editSelectBook, nil
				}
				book = selected
				deps.send(ctx, userID, fmt.Sprintf("Editing %q. What do you want to change? Send one of: description, isbn, authors, series.", book.Title))
				return editSelectField, nil
			},
			editSelectField: func(ctx context.Context, in wizard.Input) (wizard.State, error) {
				switch strings.ToLower(strings.TrimSpace(in.Text)) {
				case "description":
					field = "description"
					deps.send(ctx, userID, "Send the new description.")
				case "isbn":
					field = "isbn"
					deps.send(ctx, userID, "Send the new ISBN, or - to clear it.")
				case "authors":
					field = "authors"
					deps.send(ctx, userID, "Send the new author list, comma-separated. It replaces the current one.")
				case "series":
					field = "series"
					deps.send(ctx, userID, "Send the series name and position separated by a comma, like Discworld, 4. Send - to remove the book from its series.")
				default:
					deps.send(ctx, userID, "I can change one of: description, isbn, authors, series. Which one?")
					return editSelectField, nil
				}
				return editValue, nil
			},
			editValue: func(ctx context.Context, in wizard.Input) (wizard.State, error) {
				next, err := applyEdit(ctx, deps, userID, book, field, in.Text)
				if err != nil {
					return "", err
				}
				return next, nil
			},
		},
		OnCancel: deps.cancelNotice(userID, "Okay, nothing was changed."),
		OnError:  deps.failNotice(userID),
	}
}

// applyEdit validates and persists one field edit. It returns editValue
// to re-prompt on invalid input, StateDone after a successful write.
func applyEdit(ctx context.Context, deps Deps, userID int64, book domain.BookSummary, field, input string) (wizard.State, error) {
	switch field {
	case "description":
		if err := deps.Store.SetBookDescription(ctx, book.ID, input); err != nil {
			return "", fmt.Errorf("set description: %w", err)
		}
		deps.send(ctx, userID, fmt.Sprintf("Updated the description of %q.", book.Title))

	case "isbn":
		text := strings.TrimSpace(input)
		if text == skipToken {
			if err := deps.Store.SetBookISBN(ctx, book.ID, ""); err != nil {
				return "", fmt.Errorf("clear isbn: %w", err)
			}
			deps.send(ctx, userID, fmt.Sprintf("Cleared the ISBN of %q.", book.Title))
			return wizard.StateDone, nil
		}
		if !validation.ValidISBN(text) {
			deps.send(ctx, userID, "That ISBN doesn't look right. Send 10 characters (ISBN-10, last may be X) or 13 digits (ISBN-13), or - to clear it.")
			return editValue, nil
		}
		if err := deps.Store.SetBookISBN(ctx, book.ID, validation.NormalizeISBN(text)); err != nil {
			return "", fmt.Errorf("set isbn: %w", err)
		}
		deps.send(ctx, userID, fmt.Sprintf("Updated the ISBN of %q.", book.Title))

	case "authors":
		authors := splitAuthors(input)
		if len(authors) == 0 {
			deps.send(ctx, userID, "Please send at least one author name, comma-separated.")
			return editValue, nil
		}
		if err := deps.Store.ReplaceBookAuthors(ctx, book.ID, authors); err != nil {
			return "", fmt.Errorf("replace authors: %w", err)
		}
		deps.send(ctx, userID, fmt.Sprintf("Updated the authors of %q.", book.Title))

	case "series":
		text := strings.TrimSpace(input)
		if text == skipToken {
			if err := deps.Store.ClearBookSeries(ctx, book.ID); err != nil {
				return "", fmt.Errorf("clear series: %w", err)
			}
			deps.send(ctx, userID, fmt.Sprintf("Removed %q from its series.", book.Title))
			return wizard.StateDone, nil
		}
		name, order, ok := parseSeriesValue(text)
		if !ok {
			deps.send(ctx, userID, "Send the series name and its number separated by a comma, like Discworld, 4. Send - to remove the series.")
			return editValue, nil
		}
		if err := deps.Store.SetBookSeries(ctx, book.ID, name, &order); err != nil {
			return "", fmt.Errorf("set series: %w", err)
		}
		deps.send(ctx, userID, fmt.Sprintf("Set %q as book %d of %q.", book.Title, order, name))

	default:
		return "", fmt.Errorf("unknown edit field %q", field)
	}

	return wizard.StateDone, nil
}

// parseSeriesValue splits "Name, N" into a series name and position.
// The series name itself may contain commas; only the last segment is
// taken as the number.
func parseSeriesValue(text string) (string, int, bool) {
	idx := strings.LastIndex(text, ",")
	if idx < 0 {
		return "", 0, false
	}
	name := strings.TrimSpace(text[:idx])
	order, err := strconv.Atoi(strings.TrimSpace(text[idx+1:]))
	if name == "" || err != nil {
		return "", 0, false
	}
	return name, order, true
}
