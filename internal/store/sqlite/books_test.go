package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/bookdenapp/bookden-bot/internal/domain"
	"github.com/bookdenapp/bookden-bot/internal/store"
)

func TestCreateAndGetBook(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	order := 2
	draft := makeTestDraft("The Two Towers", "J. R. R. Tolkien")
	draft.SeriesName = "The Lord of the Rings"
	draft.SeriesOrder = &order
	draft.BlurHash = "LEHV6nWB2yk8pyo0adR*.7kCMdnj"

	id := mustCreateBook(t, s, draft)

	got, err := s.GetBook(ctx, id)
	if err != nil {
		t.Fatalf("GetBook: %v", err)
	}
	if got.Title != draft.Title {
		t.Errorf("Title: got %q, want %q", got.Title, draft.Title)
	}
	if got.Description != draft.Description {
		t.Errorf("Description: got %q, want %q", got.Description, draft.Description)
	}
	if got.ISBN != draft.ISBN {
		t.Errorf("ISBN: got %q, want %q", got.ISBN, draft.ISBN)
	}
	if got.BlurHash != draft.BlurHash {
		t.Errorf("BlurHash: got %q, want %q", got.BlurHash, draft.BlurHash)
	}
	if !got.HasSeries() {
		t.Fatal("expected book to have a series")
	}
	if got.SeriesOrder == nil || *got.SeriesOrder != 2 {
		t.Errorf("SeriesOrder: got %v, want 2", got.SeriesOrder)
	}
	if len(got.CoverImage) == 0 {
		t.Error("CoverImage: expected stored blob")
	}

	byTitle, err := s.FindBookByTitle(ctx, "The Two Towers")
	if err != nil {
		t.Fatalf("FindBookByTitle: %v", err)
	}
	if byTitle.ID != id {
		t.Errorf("FindBookByTitle id: got %d, want %d", byTitle.ID, id)
	}
}

func TestCreateBookDuplicateTitle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustCreateBook(t, s, makeTestDraft("Dune", "Frank Herbert"))

	_, err := s.CreateBook(ctx, makeTestDraft("Dune", "Someone Else"))
	if !errors.Is(err, store.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}

	// The failed finalize must not have written anything.
	titles, err := s.ListBookTitles(ctx)
	if err != nil {
		t.Fatalf("ListBookTitles: %v", err)
	}
	if len(titles) != 1 {
		t.Errorf("expected 1 book, got %d", len(titles))
	}

	var authorCount int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM authors WHERE name = 'Someone Else'`).Scan(&authorCount); err != nil {
		t.Fatalf("count authors: %v", err)
	}
	if authorCount != 0 {
		t.Error("duplicate finalize leaked an author row")
	}
}

func TestFindBookByTitleCaseSensitive(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustCreateBook(t, s, makeTestDraft("Dune"))

	if _, err := s.FindBookByTitle(ctx, "dune"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("title lookup should be case-sensitive, got %v", err)
	}
}

func TestLinkBookAuthorsIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id := mustCreateBook(t, s, makeTestDraft("Good Omens", "Terry Pratchett", "Neil Gaiman"))

	// Linking the same names again must not duplicate rows.
	if err := s.LinkBookAuthors(ctx, id, []string{"Terry Pratchett", "Neil Gaiman"}); err != nil {
		t.Fatalf("LinkBookAuthors: %v", err)
	}

	var links int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM book_authors WHERE book_id = ?`, id).Scan(&links); err != nil {
		t.Fatalf("count links: %v", err)
	}
	if links != 2 {
		t.Errorf("expected 2 author links, got %d", links)
	}
}

func TestReplaceBookAuthors(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id := mustCreateBook(t, s, makeTestDraft("Hyperion", "Dan Simmons"))

	if err := s.ReplaceBookAuthors(ctx, id, []string{"D. Simmons"}); err != nil {
		t.Fatalf("ReplaceBookAuthors: %v", err)
	}

	detail, err := s.GetBookDetail(ctx, id)
	if err != nil {
		t.Fatalf("GetBookDetail: %v", err)
	}
	if len(detail.Authors) != 1 || detail.Authors[0] != "D. Simmons" {
		t.Errorf("Authors: got %v, want [D. Simmons]", detail.Authors)
	}

	// The unlinked author row stays; orphans are not garbage collected.
	var orphan int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM authors WHERE name = 'Dan Simmons'`).Scan(&orphan); err != nil {
		t.Fatalf("count orphan: %v", err)
	}
	if orphan != 1 {
		t.Error("expected orphaned author row to persist")
	}
}

func TestDeleteBookCascade(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id := mustCreateBook(t, s, makeTestDraft("Neuromancer", "William Gibson"))
	if err := s.UpsertUserStatus(ctx, 7, id, domain.StatusReading); err != nil {
		t.Fatalf("UpsertUserStatus: %v", err)
	}

	if err := s.DeleteBookCascade(ctx, id); err != nil {
		t.Fatalf("DeleteBookCascade: %v", err)
	}

	for _, q := range []string{
		`SELECT COUNT(*) FROM book_authors WHERE book_id = ?`,
		`SELECT COUNT(*) FROM user_books WHERE book_id = ?`,
	} {
		var n int
		if err := s.db.QueryRow(q, id).Scan(&n); err != nil {
			t.Fatalf("count: %v", err)
		}
		if n != 0 {
			t.Errorf("%s: expected 0 rows, got %d", q, n)
		}
	}

	if _, err := s.FindBookByTitle(ctx, "Neuromancer"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound after cascade, got %v", err)
	}
}

func TestDeleteBookCascadeMissing(t *testing.T) {
	s := newTestStore(t)

	if err := s.DeleteBookCascade(context.Background(), 999); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSetBookFields(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id := mustCreateBook(t, s, makeTestDraft("Solaris", "Stanisław Lem"))

	if err := s.SetBookDescription(ctx, id, "A sentient ocean"); err != nil {
		t.Fatalf("SetBookDescription: %v", err)
	}
	if err := s.SetBookISBN(ctx, id, "9780156027601"); err != nil {
		t.Fatalf("SetBookISBN: %v", err)
	}

	got, err := s.GetBook(ctx, id)
	if err != nil {
		t.Fatalf("GetBook: %v", err)
	}
	if got.Description != "A sentient ocean" {
		t.Errorf("Description: got %q", got.Description)
	}
	if got.ISBN != "9780156027601" {
		t.Errorf("ISBN: got %q", got.ISBN)
	}

	// Clearing the ISBN stores NULL, not an empty string.
	if err := s.SetBookISBN(ctx, id, ""); err != nil {
		t.Fatalf("SetBookISBN clear: %v", err)
	}
	var isbnNull int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM books WHERE id = ? AND isbn IS NULL`, id).Scan(&isbnNull); err != nil {
		t.Fatalf("count: %v", err)
	}
	if isbnNull != 1 {
		t.Error("expected NULL isbn after clearing")
	}
}

func TestSetAndClearBookSeries(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id := mustCreateBook(t, s, makeTestDraft("Consider Phlebas", "Iain M. Banks"))

	order := 1
	if err := s.SetBookSeries(ctx, id, "Culture", &order); err != nil {
		t.Fatalf("SetBookSeries: %v", err)
	}

	got, err := s.GetBook(ctx, id)
	if err != nil {
		t.Fatalf("GetBook: %v", err)
	}
	if !got.HasSeries() || got.SeriesOrder == nil || *got.SeriesOrder != 1 {
		t.Fatalf("series not set: %+v", got)
	}

	// Series matching is case-insensitive: no second row for "culture".
	if _, err := s.UpsertSeries(ctx, "CULTURE"); err != nil {
		t.Fatalf("UpsertSeries: %v", err)
	}
	var seriesCount int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM series`).Scan(&seriesCount); err != nil {
		t.Fatalf("count series: %v", err)
	}
	if seriesCount != 1 {
		t.Errorf("expected 1 series, got %d", seriesCount)
	}

	if err := s.ClearBookSeries(ctx, id); err != nil {
		t.Fatalf("ClearBookSeries: %v", err)
	}
	got, err = s.GetBook(ctx, id)
	if err != nil {
		t.Fatalf("GetBook: %v", err)
	}
	// series_id and series_order are cleared together.
	if got.HasSeries() || got.SeriesOrder != nil {
		t.Errorf("expected series cleared, got %+v", got)
	}
}
