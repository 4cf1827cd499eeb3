package index

import (
	"github.com/kamusis/movierec/internal/catalog"
	"github.com/kamusis/movierec/internal/metrics"
	"github.com/kamusis/movierec/internal/search"
)

// FindSimilar returns up to topN movies most similar to title, best first.
// The queried movie itself is never included.
func (idx *Index) FindSimilar(title string, topN int) ([]catalog.MovieRef, error) {
	matches, err := idx.Rank(title, topN)
	if err != nil {
		return nil, err
	}
	out := make([]catalog.MovieRef, len(matches))
	for i, m := range matches {
		out[i] = m.MovieRef
	}
	return out, nil
}

// Rank is FindSimilar with scores attached. Results are ordered by score
// descending, ties by catalog row ascending.
func (idx *Index) Rank(title string, topN int) ([]Match, error) {
	if topN <= 0 {
		metrics.SimilarQueries.WithLabelValues("invalid").Inc()
		return nil, ErrInvalidLimit
	}
	row, ok := idx.Lookup(title)
	if !ok {
		metrics.SimilarQueries.WithLabelValues("not_found").Inc()
		return nil, &NotFoundError{Title: title}
	}

	n := len(idx.movies)
	base := row * n
	results := make([]search.SearchResult, 0, n-1)
	for j := 0; j < n; j++ {
		if j == row {
			continue
		}
		results = append(results, search.SearchResult{Doc: idx.docs[j], Score: float64(idx.sim[base+j])})
	}
	search.SortResults(results)
	if len(results) > topN {
		results = results[:topN]
	}

	out := make([]Match, len(results))
	for i, r := range results {
		out[i] = Match{
			MovieRef: idx.movies[r.Doc.Row].Ref(),
			Score:    r.Score,
			Row:      r.Doc.Row,
		}
	}
	metrics.SimilarQueries.WithLabelValues("ok").Inc()
	return out, nil
}

// Suggest returns up to limit catalog titles containing every word of query.
func (idx *Index) Suggest(query string, limit int) []string {
	results := search.KeywordSearch(idx.docs, query, limit)
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Doc.Title
	}
	return out
}
