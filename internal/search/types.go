package search

// Document is one searchable catalog title, addressed by its catalog row.
type Document struct {
	Row   int
	Title string
}

// SearchResult is one scored document.
type SearchResult struct {
	Doc   Document
	Score float64
}
