package flow

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookdenapp/bookden-bot/internal/domain"
	"github.com/bookdenapp/bookden-bot/internal/store/sqlite"
	"github.com/bookdenapp/bookden-bot/internal/transport"
	"github.com/bookdenapp/bookden-bot/internal/validation"
	"github.com/bookdenapp/bookden-bot/internal/wizard"
)

const testUser int64 = 7

// fixture bundles a real sqlite store, a recording sender, and an
// engine so flows can be driven end to end.
type fixture struct {
	deps   Deps
	engine *wizard.Engine
	sender *transport.Recorder
	store  *sqlite.Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	st, err := sqlite.Open(filepath.Join(t.TempDir(), "flow_test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	sender := transport.NewRecorder()
	return &fixture{
		deps: Deps{
			Store:     st,
			Sender:    sender,
			Validator: validation.New(),
			Logger:    logger,
		},
		engine: wizard.NewEngine(logger, 0),
		sender: sender,
		store:  st,
	}
}

func (f *fixture) say(t *testing.T, text string) {
	t.Helper()
	require.NoError(t, f.engine.Step(context.Background(), testUser, wizard.Input{Text: text}))
}

func (f *fixture) sendPhoto(t *testing.T, data []byte) {
	t.Helper()
	require.NoError(t, f.engine.Step(context.Background(), testUser, wizard.Input{Photo: data}))
}

func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 12))
	for y := 0; y < 12; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 30), G: uint8(y * 20), B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// addBook drives the full add wizard with the given answers.
func (f *fixture) addBook(t *testing.T, title, description, isbn, authors, series, order string) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, f.engine.Start(ctx, testUser, Add(f.deps, testUser)))
	f.say(t, title)
	f.say(t, description)
	f.sendPhoto(t, testPNG(t))
	f.say(t, isbn)
	f.say(t, authors)
	f.say(t, series)
	if order != "" {
		f.say(t, order)
	}
	require.False(t, f.engine.Active(testUser), "add wizard should have finished")
}

func TestAddWizardEndToEnd(t *testing.T) {
	f := newFixture(t)
	f.addBook(t, "X", "Y", "-", "A, B", "-", "")

	ctx := context.Background()
	books, err := f.store.ListBooks(ctx)
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "X", books[0].Title)

	detail, err := f.store.GetBookDetail(ctx, books[0].ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, detail.Authors)
	assert.Empty(t, detail.ISBN)
	assert.Empty(t, detail.SeriesName)
	assert.True(t, detail.HasCover)
	assert.NotEmpty(t, detail.BlurHash)

	last := f.sender.Last()
	assert.Contains(t, last.Text, "Added")
}

func TestAddWizardWithSeriesAndISBN(t *testing.T) {
	f := newFixture(t)
	f.addBook(t, "Going Postal", "A con man runs the post office.", "978-3-16-148410-0", "Terry Pratchett", "Discworld", "33")

	ctx := context.Background()
	book, err := f.store.FindBookByTitle(ctx, "Going Postal")
	require.NoError(t, err)
	assert.Equal(t, "9783161484100", book.ISBN, "hyphens are stripped before storing")
	require.NotNil(t, book.SeriesOrder)
	assert.Equal(t, 33, *book.SeriesOrder)

	detail, err := f.store.GetBookDetail(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, "Discworld", detail.SeriesName)
}

func TestAddWizardEmptyTitleRePrompts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.engine.Start(ctx, testUser, Add(f.deps, testUser)))

	f.say(t, "   ")
	assert.Contains(t, f.sender.Last().Text, "can't be empty")
	assert.True(t, f.engine.Active(testUser))

	// Valid title still advances afterwards.
	f.say(t, "Dune")
	assert.Contains(t, f.sender.Last().Text, "description")
}

func TestAddWizardRejectsBadISBN(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.engine.Start(ctx, testUser, Add(f.deps, testUser)))
	f.say(t, "Dune")
	f.say(t, "Spice.")
	f.sendPhoto(t, testPNG(t))

	f.say(t, "123")
	assert.Contains(t, f.sender.Last().Text, "ISBN doesn't look right")
	assert.True(t, f.engine.Active(testUser))

	f.say(t, "316148410X")
	assert.Contains(t, f.sender.Last().Text, "authors")
}

func TestAddWizardRejectsNonImageCover(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.engine.Start(ctx, testUser, Add(f.deps, testUser)))
	f.say(t, "Dune")
	f.say(t, "Spice.")

	f.say(t, "not a photo")
	assert.Contains(t, f.sender.Last().Text, "photo")
	assert.True(t, f.engine.Active(testUser))

	f.sendPhoto(t, []byte("garbage bytes"))
	assert.Contains(t, f.sender.Last().Text, "doesn't look like an image")
	assert.True(t, f.engine.Active(testUser))
}

func TestAddWizardDuplicateTitleAborts(t *testing.T) {
	f := newFixture(t)
	f.addBook(t, "X", "first", "-", "A", "-", "")
	f.addBook(t, "X", "second", "-", "B", "-", "")

	assert.Contains(t, f.sender.Last().Text, "already exists")

	ctx := context.Background()
	books, err := f.store.ListBooks(ctx)
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "A", books[0].Authors, "second draft must not have written anything")
}

func TestAddWizardCancelMidway(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.engine.Start(ctx, testUser, Add(f.deps, testUser)))
	f.say(t, "Dune")

	require.True(t, f.engine.Cancel(ctx, testUser))
	assert.Contains(t, f.sender.Last().Text, "not added")

	books, err := f.store.ListBooks(ctx)
	require.NoError(t, err)
	assert.Empty(t, books)
}

func TestEditWizardDescription(t *testing.T) {
	f := newFixture(t)
	f.addBook(t, "Dune", "old", "-", "Frank Herbert", "-", "")

	ctx := context.Background()
	require.NoError(t, f.engine.Start(ctx, testUser, Edit(f.deps, testUser)))
	f.say(t, "1")
	f.say(t, "description")
	f.say(t, "A desert planet and its spice.")
	assert.False(t, f.engine.Active(testUser))

	book, err := f.store.FindBookByTitle(ctx, "Dune")
	require.NoError(t, err)
	assert.Equal(t, "A desert planet and its spice.", book.Description)
}

func TestEditWizardOutOfRangeSelectionRePrompts(t *testing.T) {
	f := newFixture(t)
	f.addBook(t, "Dune", "d", "-", "Frank Herbert", "-", "")

	ctx := context.Background()
	require.NoError(t, f.engine.Start(ctx, testUser, Edit(f.deps, testUser)))

	f.say(t, "5")
	assert.Contains(t, f.sender.Last().Text, "between 1 and 1")
	f.say(t, "abc")
	assert.Contains(t, f.sender.Last().Text, "between 1 and 1")
	assert.True(t, f.engine.Active(testUser))

	// The fetched list survives the re-prompts.
	f.say(t, "1")
	assert.Contains(t, f.sender.Last().Text, "Editing \"Dune\"")
}

func TestEditWizardSeriesSetAndClear(t *testing.T) {
	f := newFixture(t)
	f.addBook(t, "Dune", "d", "-", "Frank Herbert", "-", "")

	ctx := context.Background()
	require.NoError(t, f.engine.Start(ctx, testUser, Edit(f.deps, testUser)))
	f.say(t, "1")
	f.say(t, "series")
	f.say(t, "Dune Chronicles, 1")

	book, err := f.store.FindBookByTitle(ctx, "Dune")
	require.NoError(t, err)
	require.NotNil(t, book.SeriesID)
	require.NotNil(t, book.SeriesOrder)
	assert.Equal(t, 1, *book.SeriesOrder)

	require.NoError(t, f.engine.Start(ctx, testUser, Edit(f.deps, testUser)))
	f.say(t, "1")
	f.say(t, "series")
	f.say(t, "-")

	book, err = f.store.FindBookByTitle(ctx, "Dune")
	require.NoError(t, err)
	assert.Nil(t, book.SeriesID)
	assert.Nil(t, book.SeriesOrder)
}

func TestEditWizardEmptyLibraryEndsImmediately(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.engine.Start(context.Background(), testUser, Edit(f.deps, testUser)))
	assert.False(t, f.engine.Active(testUser))
	assert.Contains(t, f.sender.Last().Text, "empty")
}

func TestDeleteWizardConfirm(t *testing.T) {
	f := newFixture(t)
	f.addBook(t, "Dune", "d", "-", "Frank Herbert", "-", "")

	ctx := context.Background()
	require.NoError(t, f.store.UpsertUserStatus(ctx, testUser, mustBookID(t, f, "Dune"), domain.StatusReading))

	require.NoError(t, f.engine.Start(ctx, testUser, Delete(f.deps, testUser)))
	f.say(t, "1")

	// Anything but yes/no re-prompts.
	f.say(t, "maybe")
	assert.Contains(t, f.sender.Last().Text, "yes or no")
	assert.True(t, f.engine.Active(testUser))

	f.say(t, "yes")
	assert.False(t, f.engine.Active(testUser))

	_, err := f.store.FindBookByTitle(ctx, "Dune")
	assert.Error(t, err)
	statuses, err := f.store.ListUserBooks(ctx, testUser)
	require.NoError(t, err)
	assert.Empty(t, statuses)
}

func TestDeleteWizardDeclined(t *testing.T) {
	f := newFixture(t)
	f.addBook(t, "Dune", "d", "-", "Frank Herbert", "-", "")

	ctx := context.Background()
	require.NoError(t, f.engine.Start(ctx, testUser, Delete(f.deps, testUser)))
	f.say(t, "1")
	f.say(t, "no")
	assert.False(t, f.engine.Active(testUser))

	_, err := f.store.FindBookByTitle(ctx, "Dune")
	assert.NoError(t, err, "declining must not delete")
}

func TestStatusWizardShowsCurrentAndUpserts(t *testing.T) {
	f := newFixture(t)
	f.addBook(t, "Dune", "d", "-", "Frank Herbert", "-", "")

	ctx := context.Background()
	require.NoError(t, f.engine.Start(ctx, testUser, Status(f.deps, testUser)))
	f.say(t, "1")
	assert.Contains(t, f.sender.Last().Text, "not set")

	f.say(t, "rereading")
	assert.Contains(t, f.sender.Last().Text, "don't know that status")

	f.say(t, "reading")
	assert.False(t, f.engine.Active(testUser))

	st, err := f.store.GetUserStatus(ctx, testUser, mustBookID(t, f, "Dune"))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusReading, st)

	// Second run shows the current status and accepts the emoji label.
	require.NoError(t, f.engine.Start(ctx, testUser, Status(f.deps, testUser)))
	f.say(t, "1")
	assert.Contains(t, f.sender.Last().Text, "📖 Reading")
	f.say(t, "✅ Finished")

	st, err = f.store.GetUserStatus(ctx, testUser, mustBookID(t, f, "Dune"))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFinished, st)
}

func TestSearchWizard(t *testing.T) {
	f := newFixture(t)
	f.addBook(t, "Война и мир", "d", "-", "Лев Толстой", "-", "")
	f.addBook(t, "Анна Каренина", "d", "-", "Лев Толстой", "-", "")

	ctx := context.Background()
	require.NoError(t, f.engine.Start(ctx, testUser, Search(f.deps, testUser)))

	f.say(t, "   ")
	assert.Contains(t, f.sender.Last().Text, "can't be empty")
	assert.True(t, f.engine.Active(testUser))

	f.say(t, "Война")
	assert.False(t, f.engine.Active(testUser))
	last := f.sender.Last().Text
	assert.Contains(t, last, "Война и мир")
	assert.NotContains(t, last, "Анна Каренина")
}

func TestSearchWizardNoResults(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.engine.Start(ctx, testUser, Search(f.deps, testUser)))
	f.say(t, "nothing here")
	assert.False(t, f.engine.Active(testUser))
	assert.Contains(t, f.sender.Last().Text, "Nothing found")
}

func TestBookInfoWizardSendsCover(t *testing.T) {
	f := newFixture(t)
	f.addBook(t, "Dune", "A desert planet.", "316148410X", "Frank Herbert", "Dune Chronicles", "1")

	ctx := context.Background()
	require.NoError(t, f.engine.Start(ctx, testUser, BookInfo(f.deps, testUser)))
	f.say(t, "1")
	assert.False(t, f.engine.Active(testUser))

	last := f.sender.Last()
	require.NotEmpty(t, last.Photo, "detail reply should carry the stored cover")
	assert.Contains(t, last.Caption, "Dune")
	assert.Contains(t, last.Caption, "Frank Herbert")
	assert.Contains(t, last.Caption, "Dune Chronicles")
	assert.Contains(t, last.Caption, "316148410X")
}

func TestFormatBookCard(t *testing.T) {
	order := 4
	card := FormatBookCard(&domain.BookDetail{
		Title:       "Mort",
		Authors:     []string{"Terry Pratchett"},
		SeriesName:  "Discworld",
		SeriesOrder: &order,
		ISBN:        "9783161484100",
		Description: "Death takes an apprentice.",
	})
	assert.Contains(t, card, "📖 Mort")
	assert.Contains(t, card, "Discworld (book 4)")
	assert.Contains(t, card, "ISBN: 9783161484100")
	assert.Contains(t, card, "Death takes an apprentice.")
}

func TestParseSeriesValue(t *testing.T) {
	name, order, ok := parseSeriesValue("Discworld, 4")
	require.True(t, ok)
	assert.Equal(t, "Discworld", name)
	assert.Equal(t, 4, order)

	// A comma inside the series name is fine, only the last segment is
	// the number.
	name, order, ok = parseSeriesValue("Blood, Sweat, 2")
	require.True(t, ok)
	assert.Equal(t, "Blood, Sweat", name)
	assert.Equal(t, 2, order)

	_, _, ok = parseSeriesValue("Discworld")
	assert.False(t, ok)
	_, _, ok = parseSeriesValue("Discworld, four")
	assert.False(t, ok)
}

func TestSplitAuthors(t *testing.T) {
	assert.Equal(t, []string{"A", "B"}, splitAuthors("A, B"))
	assert.Equal(t, []string{"A"}, splitAuthors(" A ,, "))
	assert.Empty(t, splitAuthors(" , ,"))
}

func mustBookID(t *testing.T, f *fixture, title string) int64 {
	t.Helper()
	book, err := f.store.FindBookByTitle(context.Background(), title)
	require.NoError(t, err)
	return book.ID
}
