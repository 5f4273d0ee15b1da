package common

import (
	"net/http"
	"strconv"
)

// maxPerPage caps a single page; the order ledger is the only paginated
// collection and pages larger than this defeat the point of asking.
const maxPerPage = 200

// Pagination is the metadata block attached to paginated list responses.
type Pagination struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	TotalItems int `json:"total_items"`
}

// ParsePagination reads ?page= and ?limit= from the request, falling back
// to page 1 and the given default size. Non-positive and malformed values
// keep the defaults.
func ParsePagination(r *http.Request, defaultPerPage int) (page, perPage int) {
	page = 1
	perPage = defaultPerPage
	if p, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && p > 0 {
		page = p
	}
	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 {
		perPage = l
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	return
}
