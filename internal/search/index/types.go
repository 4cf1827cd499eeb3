package index

import (
	"time"

	"github.com/kamusis/movierec/internal/catalog"
	"github.com/kamusis/movierec/internal/search"
)

// Index is an immutable content-similarity index over a catalog.
// All structures share the catalog's row order; nothing is mutated after
// Build returns, so an Index may be queried from any number of goroutines.
type Index struct {
	movies  []catalog.Movie
	docs    []search.Document
	vocab   []string
	rows    []Vector
	sim     []float32 // n*n, row-major
	titles  map[string]int
	builtAt time.Time
}

// Match is one ranked result of a similarity query.
type Match struct {
	catalog.MovieRef
	Score float64 `json:"score"`
	Row   int     `json:"-"`
}

// Len returns the number of movies in the index.
func (idx *Index) Len() int { return len(idx.movies) }

// VocabularySize returns the number of distinct terms.
func (idx *Index) VocabularySize() int { return len(idx.vocab) }

// BuiltAt returns when the index was built.
func (idx *Index) BuiltAt() time.Time { return idx.builtAt }

// Movie returns the catalog movie at row.
func (idx *Index) Movie(row int) catalog.Movie { return idx.movies[row] }

// Movies returns the indexed catalog. Callers must not modify it.
func (idx *Index) Movies() []catalog.Movie { return idx.movies }

// Vector returns the feature vector of row.
func (idx *Index) Vector(row int) Vector { return idx.rows[row] }

// Similarity returns the cosine similarity between rows i and j.
func (idx *Index) Similarity(i, j int) float64 {
	return float64(idx.sim[i*len(idx.movies)+j])
}

// Lookup returns the row for title after normalization.
func (idx *Index) Lookup(title string) (int, bool) {
	row, ok := idx.titles[NormalizeTitle(title)]
	return row, ok
}
