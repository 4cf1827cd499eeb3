package index

import (
	"math"
	"sort"
	"time"

	"github.com/kamusis/movierec/internal/catalog"
	"github.com/kamusis/movierec/internal/logging"
	"github.com/kamusis/movierec/internal/metrics"
	"github.com/kamusis/movierec/internal/search"
)

// Build vectorizes every overview with TF-IDF weights, computes the full
// cosine similarity matrix and the title lookup table.
//
// Build is a blocking, single-threaded step. The returned Index is never
// modified; to pick up a changed catalog, build a new one.
func Build(movies []catalog.Movie) (*Index, error) {
	start := time.Now()
	if len(movies) == 0 {
		metrics.IndexBuilds.WithLabelValues("error").Inc()
		return nil, ErrEmptyCatalog
	}

	own := make([]catalog.Movie, len(movies))
	copy(own, movies)

	vocab, rows := vectorize(own)
	sim := pairwiseSimilarity(rows, len(vocab))

	titles := make(map[string]int, len(own))
	docs := make([]search.Document, len(own))
	for i, m := range own {
		// Duplicate normalized titles: last write wins.
		titles[NormalizeTitle(m.Title)] = i
		docs[i] = search.Document{Row: i, Title: m.Title}
	}

	idx := &Index{
		movies:  own,
		docs:    docs,
		vocab:   vocab,
		rows:    rows,
		sim:     sim,
		titles:  titles,
		builtAt: time.Now(),
	}

	elapsed := time.Since(start)
	metrics.IndexBuilds.WithLabelValues("ok").Inc()
	metrics.IndexBuildDuration.Observe(elapsed.Seconds())
	metrics.IndexMovies.Set(float64(len(own)))
	metrics.IndexVocabulary.Set(float64(len(vocab)))
	logging.Debug().
		Int("movies", len(own)).
		Int("terms", len(vocab)).
		Int("titles", len(titles)).
		Dur("elapsed", elapsed).
		Msg("similarity index built")

	return idx, nil
}

// vectorize returns the sorted vocabulary and one unit-length TF-IDF row per
// movie. IDF is smoothed: ln((1+n)/(1+df)) + 1.
func vectorize(movies []catalog.Movie) ([]string, []Vector) {
	n := len(movies)
	tokens := make([][]string, n)
	df := make(map[string]int)
	for i, m := range movies {
		tokens[i] = Tokenize(m.Overview)
		seen := make(map[string]struct{}, len(tokens[i]))
		for _, tok := range tokens[i] {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}

	vocab := make([]string, 0, len(df))
	for tok := range df {
		vocab = append(vocab, tok)
	}
	sort.Strings(vocab)

	termID := make(map[string]int, len(vocab))
	idf := make([]float64, len(vocab))
	for id, tok := range vocab {
		termID[tok] = id
		idf[id] = math.Log(float64(1+n)/float64(1+df[tok])) + 1
	}

	rows := make([]Vector, n)
	for i, toks := range tokens {
		counts := make(map[int]int, len(toks))
		for _, tok := range toks {
			counts[termID[tok]]++
		}
		terms := make([]int, 0, len(counts))
		for id := range counts {
			terms = append(terms, id)
		}
		sort.Ints(terms)
		weights := make([]float64, len(terms))
		for k, id := range terms {
			weights[k] = float64(counts[id]) * idf[id]
		}
		rows[i] = NormalizeL2(Vector{Terms: terms, Weights: weights})
	}
	return vocab, rows
}

type posting struct {
	row    int
	weight float64
}

// pairwiseSimilarity computes the dense n×n cosine matrix from unit rows.
// Each unordered pair is computed once through an inverted index and mirrored,
// so the matrix is exactly symmetric. The diagonal is 1 for non-zero rows.
func pairwiseSimilarity(rows []Vector, vocabSize int) []float32 {
	n := len(rows)
	postings := make([][]posting, vocabSize)
	for i, v := range rows {
		for k, id := range v.Terms {
			postings[id] = append(postings[id], posting{row: i, weight: v.Weights[k]})
		}
	}

	sim := make([]float32, n*n)
	acc := make([]float64, n)
	touched := make([]int, 0, n)
	for i, v := range rows {
		if !v.IsZero() {
			sim[i*n+i] = 1
		}
		for k, id := range v.Terms {
			w := v.Weights[k]
			ps := postings[id]
			from := sort.Search(len(ps), func(p int) bool { return ps[p].row > i })
			for _, p := range ps[from:] {
				if acc[p.row] == 0 {
					touched = append(touched, p.row)
				}
				acc[p.row] += w * p.weight
			}
		}
		for _, j := range touched {
			s := float32(clamp01(acc[j]))
			sim[i*n+j] = s
			sim[j*n+i] = s
			acc[j] = 0
		}
		touched = touched[:0]
	}
	return sim
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
