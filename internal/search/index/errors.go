package index

import (
	"errors"
	"fmt"
)

// ErrEmptyCatalog is returned by Build when the catalog has no movies.
var ErrEmptyCatalog = errors.New("catalog is empty")

// ErrInvalidLimit is returned when a query asks for fewer than one result.
var ErrInvalidLimit = errors.New("result limit must be positive")

// NotFoundError reports a title that is not in the index.
type NotFoundError struct {
	Title string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("movie %q not found in catalog", e.Title)
}
