package search

import (
	"strings"
)

// KeywordSearch matches titles by case-insensitive keyword containment.
// All query tokens must match (AND semantics). Shorter titles score higher,
// so an exact title outranks longer titles that merely contain it.
func KeywordSearch(docs []Document, query string, limit int) []SearchResult {
	tokens := tokenize(query)
	if len(tokens) == 0 {
		return []SearchResult{}
	}
	queryLen := len(strings.Join(tokens, " "))

	out := []SearchResult{}
	for _, d := range docs {
		blob := strings.ToLower(d.Title)
		ok := true
		for _, tok := range tokens {
			if !strings.Contains(blob, tok) {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}
		score := 1.0
		if len(blob) > 0 {
			score = float64(queryLen) / float64(len(blob))
			if score > 1 {
				score = 1
			}
		}
		out = append(out, SearchResult{Doc: d, Score: score})
	}

	SortResults(out)

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func tokenize(q string) []string {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil
	}
	parts := strings.Fields(q)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}
