package search

import "sort"

// SortResults sorts results by score (descending), then by row (ascending).
func SortResults(results []SearchResult) {
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score == results[j].Score {
			return results[i].Doc.Row < results[j].Doc.Row
		}
		return results[i].Score > results[j].Score
	})
}
