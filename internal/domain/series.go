package domain

// Series represents a book series. Names are unique case-insensitively;
// a series is created lazily the first time a book references it.
type Series struct {
	ID   int64
	Name string
}

// SeriesWithBooks is a series together with its member book titles,
// ordered by their position in the series.
type SeriesWithBooks struct {
	ID     int64
	Name   string
	Titles []string
}
