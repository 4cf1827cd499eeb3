package catalog

import (
	"sort"
	"strings"
)

// FilterByGenres returns movies whose genre list intersects selected,
// preserving catalog order and capped at topN. Genre names are compared
// case-insensitively.
func FilterByGenres(movies []Movie, selected []string, topN int) []MovieRef {
	if topN <= 0 || len(selected) == 0 {
		return []MovieRef{}
	}

	want := make(map[string]struct{}, len(selected))
	for _, g := range selected {
		g = strings.ToLower(strings.TrimSpace(g))
		if g != "" {
			want[g] = struct{}{}
		}
	}
	if len(want) == 0 {
		return []MovieRef{}
	}

	out := make([]MovieRef, 0, topN)
	for _, m := range movies {
		if !hasAnyGenre(m.Genres, want) {
			continue
		}
		out = append(out, m.Ref())
		if len(out) == topN {
			break
		}
	}
	return out
}

func hasAnyGenre(genres []string, want map[string]struct{}) bool {
	for _, g := range genres {
		if _, ok := want[strings.ToLower(g)]; ok {
			return true
		}
	}
	return false
}

// AllGenres returns the sorted set of genre names used in the catalog.
func AllGenres(movies []Movie) []string {
	seen := make(map[string]struct{})
	for _, m := range movies {
		for _, g := range m.Genres {
			seen[g] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for g := range seen {
		out = append(out, g)
	}
	sort.Strings(out)
	return out
}
