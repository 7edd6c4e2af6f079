package flow

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/bookdenapp/bookden-bot/internal/domain"
	"github.com/bookdenapp/bookden-bot/internal/media/cover"
	"github.com/bookdenapp/bookden-bot/internal/store"
	"github.com/bookdenapp/bookden-bot/internal/validation"
	"github.com/bookdenapp/bookden-bot/internal/wizard"
)

const (
	addTitle       wizard.State = "add_title"
	addDescription wizard.State = "add_description"
	addCover       wizard.State = "add_cover"
	addISBN        wizard.State = "add_isbn"
	addAuthors     wizard.State = "add_authors"
	addSeries      wizard.State = "add_series"
	addSeriesOrder wizard.State = "add_series_order"
)

// Add builds the add-book wizard. The draft lives in this closure and
// dies with the conversation.
func Add(deps Deps, userID int64) *wizard.Conversation {
	draft := &domain.BookDraft{}

	finalize := func(ctx context.Context) (wizard.State, error) {
		if err := deps.Validator.Validate(draft); err != nil {
			return "", fmt.Errorf("validate draft: %w", err)
		}

		_, err := deps.Store.CreateBook(ctx, draft)
		if errors.Is(err, store.ErrAlreadyExists) {
			deps.send(ctx, userID, fmt.Sprintf("A book titled %q already exists, so nothing was added.", draft.Title))
			return wizard.StateDone, nil
		}
		if err != nil {
			return "", fmt.Errorf("create book: %w", err)
		}

		deps.send(ctx, userID, fmt.Sprintf("Added %q to your library! 🎉", draft.Title))
		return wizard.StateDone, nil
	}

	return &wizard.Conversation{
		Name: "add",
		Start: func(ctx context.Context) (wizard.State, error) {
			deps.send(ctx, userID, "Let's add a new book! 📚\nFirst, send me the title.")
			return addTitle, nil
		},
		Steps: map[wizard.State]wizard.StepFunc{
			addTitle: func(ctx context.Context, in wizard.Input) (wizard.State, error) {
				title := strings.TrimSpace(in.Text)
				if title == "" {
					deps.send(ctx, userID, "The title can't be empty. Please send the book's title.")
					return addTitle, nil
				}
				draft.Title = title
				deps.send(ctx, userID, "Got it. Now send a description of the book.")
				return addDescription, nil
			},
			addDescription: func(ctx context.Context, in wizard.Input) (wizard.State, error) {
				draft.Description = in.Text
				deps.send(ctx, userID, "Now send the cover as a photo.")
				return addCover, nil
			},
			addCover: func(ctx context.Context, in wizard.Input) (wizard.State, error) {
				if len(in.Photo) == 0 {
					deps.send(ctx, userID, "I need the cover as a photo. Please send an image.")
					return addCover, nil
				}
				info, err := cover.Process(in.Photo)
				if err != nil {
					deps.send(ctx, userID, "That attachment doesn't look like an image I can read. Please send the cover again.")
					return addCover, nil
				}
				draft.CoverImage = in.Photo
				draft.BlurHash = info.BlurHash
				deps.send(ctx, userID, "Nice cover! Send the ISBN, or - to skip.")
				return addISBN, nil
			},
			addISBN: func(ctx context.Context, in wizard.Input) (wizard.State, error) {
				text := strings.TrimSpace(in.Text)
				if text == skipToken {
					draft.ISBN = ""
					deps.send(ctx, userID, "Skipping the ISBN. Who wrote it? Send the authors, comma-separated.")
					return addAuthors, nil
				}
				if !validation.ValidISBN(text) {
					deps.send(ctx, userID, "That ISBN doesn't look right. Send 10 characters (ISBN-10, last may be X) or 13 digits (ISBN-13), or - to skip.")
					return addISBN, nil
				}
				draft.ISBN = validation.NormalizeISBN(text)
				deps.send(ctx, userID, "Who wrote it? Send the authors, comma-separated.")
				return addAuthors, nil
			},
			addAuthors: func(ctx context.Context, in wizard.Input) (wizard.State, error) {
				authors := splitAuthors(in.Text)
				if len(authors) == 0 {
					deps.send(ctx, userID, "Please send at least one author name, comma-separated.")
					return addAuthors, nil
				}
				draft.Authors = authors
				deps.send(ctx, userID, "Does it belong to a series? Send the series name, or - for none.")
				return addSeries, nil
			},
			addSeries: func(ctx context.Context, in wizard.Input) (wizard.State, error) {
				text := strings.TrimSpace(in.Text)
				if text == skipToken {
					draft.SeriesName = ""
					draft.SeriesOrder = nil
					return finalize(ctx)
				}
				draft.SeriesName = text
				deps.send(ctx, userID, fmt.Sprintf("Which number is it in %q? Send a whole number.", text))
				return addSeriesOrder, nil
			},
			addSeriesOrder: func(ctx context.Context, in wizard.Input) (wizard.State, error) {
				order, err := strconv.Atoi(strings.TrimSpace(in.Text))
				if err != nil {
					deps.send(ctx, userID, "Please send a whole number for the position in the series.")
					return addSeriesOrder, nil
				}
				draft.SeriesOrder = &order
				return finalize(ctx)
			},
		},
		OnCancel: deps.cancelNotice(userID, "Okay, the book was not added."),
		OnError:  deps.failNotice(userID),
	}
}
