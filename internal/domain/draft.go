package domain

// BookDraft accumulates the fields of a book across the add-wizard steps.
// It lives only inside a wizard session: created on start, committed on
// finalize, discarded on cancel. It is never reused across conversations.
type BookDraft struct {
	Title       string `validate:"required"`
	Description string
	CoverImage  []byte `validate:"required"`
	BlurHash    string
	ISBN        string   `validate:"omitempty,bookisbn"`
	Authors     []string `validate:"min=1,dive,required"`
	SeriesName  string
	SeriesOrder *int
}

// Statistics aggregates library-wide and per-user counts.
type Statistics struct {
	TotalBooks   int
	TotalSeries  int
	TotalAuthors int
	// ByStatus holds the acting user's book counts per reading status.
	ByStatus   map[ReadingStatus]int
	TopAuthors []NameCount
	TopSeries  []NameCount
}

// UserTotal sums the per-status counts.
func (s *Statistics) UserTotal() int {
	total := 0
	for _, n := range s.ByStatus {
		total += n
	}
	return total
}

// NameCount is a name with an associated book count, used for top-N lists.
type NameCount struct {
	Name  string
	Count int
}
