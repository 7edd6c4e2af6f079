package flow

import (
	"context"
	"fmt"
	"strings"

	"github.com/bookdenapp/bookden-bot/internal/wizard"
)

const searchQuery wizard.State = "search_query"

// Search builds the single-state search wizard: one non-empty query,
// then results. Zero matches is a normal terminal outcome.
func Search(deps Deps, userID int64) *wizard.Conversation {
	return &wizard.Conversation{
		Name: "search",
		Start: func(ctx context.Context) (wizard.State, error) {
			deps.send(ctx, userID, "What should I look for? Send part of a title or an author name.")
			return searchQuery, nil
		},
		Steps: map[wizard.State]wizard.StepFunc{
			searchQuery: func(ctx context.Context, in wizard.Input) (wizard.State, error) {
				term := strings.TrimSpace(in.Text)
				if term == "" {
					deps.send(ctx, userID, "The search query can't be empty. What should I look for?")
					return searchQuery, nil
				}
				if err := RunSearch(ctx, deps, userID, term); err != nil {
					return "", err
				}
				return wizard.StateDone, nil
			},
		},
		OnCancel: deps.cancelNotice(userID, "Search cancelled."),
		OnError:  deps.failNotice(userID),
	}
}

// RunSearch executes one search and sends the results. It also backs
// the inline "/search term" command, which skips the wizard.
func RunSearch(ctx context.Context, deps Deps, userID int64, term string) error {
	books, err := deps.Store.SearchBooks(ctx, term)
	if err != nil {
		return fmt.Errorf("search books: %w", err)
	}
	if len(books) == 0 {
		deps.send(ctx, userID, fmt.Sprintf("Nothing found for %q.", term))
		return nil
	}
	deps.send(ctx, userID, fmt.Sprintf("🔍 Found %d:\n%s", len(books), numberedTitles(books)))
	return nil
}
