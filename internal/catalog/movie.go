// Package catalog holds the in-memory movie catalog and the helpers that
// load and filter it.
package catalog

// Movie is one catalog row.
type Movie struct {
	Title    string
	Genres   []string
	Overview string
}

// MovieRef is the public view of a movie returned by queries.
// The overview is intentionally left out.
type MovieRef struct {
	Title  string   `json:"title"`
	Genres []string `json:"genres"`
}

// Ref returns the reference view of m.
func (m Movie) Ref() MovieRef {
	genres := make([]string, len(m.Genres))
	copy(genres, m.Genres)
	return MovieRef{Title: m.Title, Genres: genres}
}
