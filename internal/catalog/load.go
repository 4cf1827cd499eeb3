package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/goccy/go-json"
)

// DefaultTitleColumn is the TMDB column used for movie titles.
const DefaultTitleColumn = "original_title"

// LoadOptions controls CSV catalog loading.
type LoadOptions struct {
	TitleColumn    string
	GenresColumn   string
	OverviewColumn string
}

func (o LoadOptions) withDefaults() LoadOptions {
	if o.TitleColumn == "" {
		o.TitleColumn = DefaultTitleColumn
	}
	if o.GenresColumn == "" {
		o.GenresColumn = "genres"
	}
	if o.OverviewColumn == "" {
		o.OverviewColumn = "overview"
	}
	return o
}

// LoadStats reports what happened while reading a catalog.
type LoadStats struct {
	Rows            int
	Loaded          int
	MissingTitle    int
	MissingOverview int
	BadGenres       int
}

// LoadCSV reads a TMDB-style movies CSV from path.
func LoadCSV(path string, opts LoadOptions) ([]Movie, LoadStats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, LoadStats{}, fmt.Errorf("cannot open catalog %s: %w", path, err)
	}
	defer f.Close()

	movies, stats, err := ReadCSV(f, opts)
	if err != nil {
		return nil, stats, fmt.Errorf("cannot read catalog %s: %w", path, err)
	}
	return movies, stats, nil
}

// ReadCSV parses a movies CSV. Rows without a title or overview are skipped;
// a genres cell that cannot be decoded yields an empty genre list.
func ReadCSV(r io.Reader, opts LoadOptions) ([]Movie, LoadStats, error) {
	opts = opts.withDefaults()
	var stats LoadStats

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, stats, fmt.Errorf("catalog is empty (no header row)")
		}
		return nil, stats, fmt.Errorf("cannot read header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}

	titleCol, ok := cols[opts.TitleColumn]
	if !ok {
		return nil, stats, fmt.Errorf("missing column %q", opts.TitleColumn)
	}
	genresCol, ok := cols[opts.GenresColumn]
	if !ok {
		return nil, stats, fmt.Errorf("missing column %q", opts.GenresColumn)
	}
	overviewCol, ok := cols[opts.OverviewColumn]
	if !ok {
		return nil, stats, fmt.Errorf("missing column %q", opts.OverviewColumn)
	}

	var out []Movie
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, stats, fmt.Errorf("line %d: %w", stats.Rows+2, err)
		}
		stats.Rows++

		title := strings.TrimSpace(cell(rec, titleCol))
		if title == "" {
			stats.MissingTitle++
			continue
		}
		overview := cell(rec, overviewCol)
		if strings.TrimSpace(overview) == "" {
			stats.MissingOverview++
			continue
		}
		genres, err := ParseGenres(cell(rec, genresCol))
		if err != nil {
			stats.BadGenres++
			genres = []string{}
		}

		out = append(out, Movie{Title: title, Genres: genres, Overview: overview})
	}
	stats.Loaded = len(out)
	return out, stats, nil
}

func cell(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return rec[i]
}

// ParseGenres decodes a TMDB genres cell such as
// [{"id": 28, "name": "Action"}, {"id": 12, "name": "Adventure"}].
func ParseGenres(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []string{}, nil
	}
	var parsed []struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, fmt.Errorf("invalid genres cell: %w", err)
	}
	out := make([]string, 0, len(parsed))
	for _, g := range parsed {
		if name := strings.TrimSpace(g.Name); name != "" {
			out = append(out, name)
		}
	}
	return out, nil
}
