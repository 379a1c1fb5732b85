// Package pagination computes page windows and navigation metadata for the
// paginated listings.  It has no side effects.
package pagination

import (
	"errors"
	"strconv"
	"strings"
)

// ErrPageOutOfRange is returned when the requested page is below 1 or past
// the last page of a non-empty collection.
var ErrPageOutOfRange = errors.New("page out of range")

// Window is the (offset, limit) pair used to read one page.
type Window struct {
	Offset int
	Limit  int
}

// Page describes the requested page of a collection.
type Page struct {
	Number     int    // 1-based page number
	TotalPages int    // at least 1
	TotalItems int    // items in the whole collection
	Window     Window // rows to read for this page
}

// HasNext reports whether a page follows this one.
func (p Page) HasNext() bool { return p.Number < p.TotalPages }

// Next returns the following page number, or 0 when this is the last page.
func (p Page) Next() int {
	if !p.HasNext() {
		return 0
	}
	return p.Number + 1
}

// ParsePageNo reads the pageNo query value.  Absent or non-numeric input
// selects the first page; numeric values are returned as-is so that
// Compute can reject them.
func ParsePageNo(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 1
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 1
	}
	return n
}

// Compute derives the page for pageNo over totalItems with the given page
// size.  An empty collection is page 1 of 1 and is never out of range.
func Compute(totalItems, pageNo, size int) (Page, error) {
	if size < 1 {
		size = 1
	}
	if totalItems < 0 {
		totalItems = 0
	}
	if totalItems == 0 {
		return Page{Number: 1, TotalPages: 1, Window: Window{Offset: 0, Limit: size}}, nil
	}
	totalPages := (totalItems + size - 1) / size
	if pageNo < 1 || pageNo > totalPages {
		return Page{}, ErrPageOutOfRange
	}
	return Page{
		Number:     pageNo,
		TotalPages: totalPages,
		TotalItems: totalItems,
		Window:     Window{Offset: size * (pageNo - 1), Limit: size},
	}, nil
}
